package scope

import (
	"fmt"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
)

// Scope is one level of the name-resolution chain. Lookup walks Outer
// links from innermost to outermost, so shadowing an outer declaration is
// legal. A scope is never mutated after its owning block is exited and
// never outlives the compilation run.
type Scope struct {
	Decls map[string]ast.Declaration
	Outer *Scope
}

func NewScope(outer *Scope) *Scope {
	return &Scope{
		Decls: make(map[string]ast.Declaration),
		Outer: outer,
	}
}

// Define adds a declaration ONLY to the current scope level. It returns
// an error if the name is already declared at this level; the first
// declaration stays visible.
func (s *Scope) Define(name string, decl ast.Declaration) error {
	if _, exists := s.Decls[name]; exists {
		return fmt.Errorf("identifier %q already declared in this scope", name)
	}
	s.Decls[name] = decl
	return nil
}

// Lookup searches for a declaration starting from the current scope and
// traversing outwards, returning the first match.
func (s *Scope) Lookup(name string) (ast.Declaration, bool) {
	for sc := s; sc != nil; sc = sc.Outer {
		if decl, ok := sc.Decls[name]; ok {
			return decl, true
		}
	}
	return nil, false
}

// LookupLocal checks ONLY the current scope level.
func (s *Scope) LookupLocal(name string) (ast.Declaration, bool) {
	decl, ok := s.Decls[name]
	return decl, ok
}
