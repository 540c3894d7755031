// Package encoder generates TAM code from a checked (and possibly
// folded) AST. One depth-first walk assigns every declared entity a
// (static level, displacement) runtime address and emits the instruction
// stream, resolving forward jump targets by backward patching once the
// enclosing construct has been fully emitted. It assumes the reporter
// held zero errors when it started; it must never see an erroneous tree.
package encoder

import (
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/checker"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/tam"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/types"
)

// frame tracks the encoder's position in the runtime stack layout: the
// current routine's lexical level and the next free displacement in its
// frame.
type frame struct {
	level int
	size  int
}

func (f frame) grown(by int) frame {
	return frame{level: f.level, size: f.size + by}
}

type Encoder struct {
	reporter *report.Reporter
	code     []tam.Instruction
}

// Encode generates the object code for a fully checked program.
func Encode(prog *ast.Program, reporter *report.Reporter) []tam.Instruction {
	e := &Encoder{reporter: reporter}
	e.encodeCommand(prog.Command, frame{level: 0, size: 0})
	e.emit(tam.HALTop, 0, 0, 0)
	return e.code
}

// --- Emission ---

// emit appends one instruction and returns its address, so forward jumps
// can be patched later.
func (e *Encoder) emit(op, n, r, d int) int {
	addr := len(e.code)
	e.code = append(e.code, tam.Instruction{Op: op, R: r, N: n, D: d})
	return addr
}

// patch fills in the operand of a previously emitted jump.
func (e *Encoder) patch(addr, d int) {
	e.code[addr].D = d
}

func (e *Encoder) nextAddr() int {
	return len(e.code)
}

// displayRegister selects the register through which code running at
// curLevel addresses a frame at entityLevel: SB for globals, LB for the
// current frame, L1..L6 for enclosing frames.
func (e *Encoder) displayRegister(curLevel, entityLevel int) int {
	switch {
	case entityLevel == 0:
		return tam.SBr
	case curLevel == entityLevel:
		return tam.LBr
	case curLevel-entityLevel <= 6:
		return tam.L1r + curLevel - entityLevel - 1
	default:
		e.reporter.Error(0, 0, "code generation: accessing data more than 6 levels out")
		return tam.LBr
	}
}

// --- Commands ---

func (e *Encoder) encodeCommand(cmd ast.Command, f frame) {
	switch cmd := cmd.(type) {
	case *ast.AssignCommand:
		size := e.encodeExpr(cmd.Expr, f)
		e.encodeStore(cmd.V, f.grown(size), size)

	case *ast.CallCommand:
		e.encodeCall(cmd.Name, cmd.Args, f)

	case *ast.SequentialCommand:
		for _, sub := range cmd.Commands {
			e.encodeCommand(sub, f)
		}

	case *ast.EmptyCommand:
		// no code

	case *ast.LetCommand:
		extra := e.encodeDecls(cmd.Decls, f)
		e.encodeCommand(cmd.Body, f.grown(extra))
		if extra > 0 {
			e.emit(tam.POPop, 0, 0, extra)
		}

	case *ast.IfCommand:
		e.encodeExpr(cmd.Cond, f)
		toElse := e.emit(tam.JUMPIFop, tam.FalseValue, tam.CBr, 0)
		e.encodeCommand(cmd.Then, f)
		toEnd := e.emit(tam.JUMPop, 0, tam.CBr, 0)
		e.patch(toElse, e.nextAddr())
		e.encodeCommand(cmd.Else, f)
		e.patch(toEnd, e.nextAddr())

	case *ast.WhileCommand:
		toCond := e.emit(tam.JUMPop, 0, tam.CBr, 0)
		loopAddr := e.nextAddr()
		e.encodeCommand(cmd.Body, f)
		e.patch(toCond, e.nextAddr())
		e.encodeExpr(cmd.Cond, f)
		e.emit(tam.JUMPIFop, tam.TrueValue, tam.CBr, loopAddr)

	default:
		panic("encoder: unhandled command node")
	}
}

// --- Declarations ---

// encodeDecls elaborates a declaration sequence and returns the total
// frame space the declarations claimed.
func (e *Encoder) encodeDecls(decls []ast.Declaration, f frame) int {
	extra := 0
	for _, d := range decls {
		extra += e.encodeDecl(d, f.grown(extra))
	}
	return extra
}

func (e *Encoder) encodeDecl(decl ast.Declaration, f frame) int {
	switch decl := decl.(type) {
	case *ast.ConstDecl:
		size := decl.Type.Size()
		if v, ok := checker.ConstValue(decl.Value); ok {
			decl.Entity = &KnownValue{Size: size, Value: v}
			return 0
		}
		// The checker requires constant initializers to be compile-time
		// evaluable, so this arm only runs for trees it rejected; keep
		// the runtime fallback anyway.
		e.encodeExpr(decl.Value, f)
		decl.Entity = &UnknownValue{Size: size, Addr: Address{Level: f.level, Displ: f.size}}
		return size

	case *ast.VarDecl:
		size := decl.Type.Size()
		e.emit(tam.PUSHop, 0, 0, size)
		decl.Entity = &KnownAddress{Size: size, Addr: Address{Level: f.level, Displ: f.size}}
		return size

	case *ast.TypeDecl:
		return 0

	case *ast.ProcDecl:
		over := e.emit(tam.JUMPop, 0, tam.CBr, 0)
		// The entity is installed before the body is encoded so
		// recursive calls resolve.
		decl.Entity = &KnownRoutine{Addr: Address{Level: f.level, Displ: e.nextAddr()}}
		paramsSize := e.elaborateParams(decl.Params, f.level+1)
		e.encodeCommand(decl.Body, frame{level: f.level + 1, size: tam.LinkDataSize})
		e.emit(tam.RETURNop, 0, 0, paramsSize)
		e.patch(over, e.nextAddr())
		return 0

	case *ast.FuncDecl:
		over := e.emit(tam.JUMPop, 0, tam.CBr, 0)
		decl.Entity = &KnownRoutine{Addr: Address{Level: f.level, Displ: e.nextAddr()}}
		paramsSize := e.elaborateParams(decl.Params, f.level+1)
		resultSize := e.encodeExpr(decl.Expr, frame{level: f.level + 1, size: tam.LinkDataSize})
		e.emit(tam.RETURNop, resultSize, 0, paramsSize)
		e.patch(over, e.nextAddr())
		return 0

	default:
		panic("encoder: unhandled declaration node")
	}
}

// elaborateParams assigns each formal parameter its address: parameters
// sit below the frame base, at negative displacements from LB. Returns
// the total argument size the caller will have pushed.
func (e *Encoder) elaborateParams(params []*ast.FormalParam, level int) int {
	paramsSize := 0
	sizes := make([]int, len(params))
	for i, p := range params {
		if p.ByRef {
			sizes[i] = 1 // an address occupies one word
		} else {
			sizes[i] = p.Type.Size()
		}
		paramsSize += sizes[i]
	}
	offset := -paramsSize
	for i, p := range params {
		addr := Address{Level: level, Displ: offset}
		if p.ByRef {
			p.Entity = &UnknownAddress{Size: p.Type.Size(), Addr: addr}
		} else {
			p.Entity = &UnknownValue{Size: sizes[i], Addr: addr}
		}
		offset += sizes[i]
	}
	return paramsSize
}

// --- Expressions ---

// encodeExpr emits code that leaves the expression's value on the stack
// top and returns the value's size in words.
func (e *Encoder) encodeExpr(expr ast.Expression, f frame) int {
	switch expr := expr.(type) {
	case *ast.IntegerLiteral:
		e.emit(tam.LOADLop, 0, 0, expr.Value)
		return 1

	case *ast.CharLiteral:
		e.emit(tam.LOADLop, 0, 0, int(expr.Value))
		return 1

	case *ast.VnameExpr:
		return e.encodeFetch(expr.V, f)

	case *ast.CallExpr:
		return e.encodeCall(expr.Name, expr.Args, f)

	case *ast.UnaryExpr:
		e.encodeExpr(expr.Operand, f)
		switch expr.Op {
		case "-":
			e.emit(tam.CALLop, tam.SBr, tam.PBr, tam.NegDispl)
		case `\`:
			e.emit(tam.CALLop, tam.SBr, tam.PBr, tam.NotDispl)
		}
		return 1

	case *ast.BinaryExpr:
		leftSize := e.encodeExpr(expr.Left, f)
		e.encodeExpr(expr.Right, f.grown(leftSize))
		e.encodeBinaryOp(expr.Op, expr.Left.ExprType())
		return 1

	case *ast.IfExpr:
		e.encodeExpr(expr.Cond, f)
		toElse := e.emit(tam.JUMPIFop, tam.FalseValue, tam.CBr, 0)
		size := e.encodeExpr(expr.Then, f)
		toEnd := e.emit(tam.JUMPop, 0, tam.CBr, 0)
		e.patch(toElse, e.nextAddr())
		e.encodeExpr(expr.Else, f)
		e.patch(toEnd, e.nextAddr())
		return size

	case *ast.LetExpr:
		extra := e.encodeDecls(expr.Decls, f)
		size := e.encodeExpr(expr.Expr, f.grown(extra))
		if extra > 0 {
			e.emit(tam.POPop, size, 0, extra)
		}
		return size

	case *ast.ArrayExpr:
		size := 0
		for _, elem := range expr.Elems {
			size += e.encodeExpr(elem, f.grown(size))
		}
		return size

	case *ast.RecordExpr:
		size := 0
		for _, field := range expr.Fields {
			size += e.encodeExpr(field.Value, f.grown(size))
		}
		return size

	default:
		panic("encoder: unhandled expression node")
	}
}

// encodeBinaryOp emits the primitive call that consumes two operands and
// leaves the result. Equality works on operands of any one size, so it
// takes that size as an extra literal argument.
func (e *Encoder) encodeBinaryOp(op string, operandType types.Type) {
	var displ int
	switch op {
	case "+":
		displ = tam.AddDispl
	case "-":
		displ = tam.SubDispl
	case "*":
		displ = tam.MultDispl
	case "/":
		displ = tam.DivDispl
	case "//":
		displ = tam.ModDispl
	case "<":
		displ = tam.LtDispl
	case "<=":
		displ = tam.LeDispl
	case ">":
		displ = tam.GtDispl
	case ">=":
		displ = tam.GeDispl
	case `/\`:
		displ = tam.AndDispl
	case `\/`:
		displ = tam.OrDispl
	case "=":
		e.emit(tam.LOADLop, 0, 0, operandType.Size())
		displ = tam.EqDispl
	case `\=`:
		e.emit(tam.LOADLop, 0, 0, operandType.Size())
		displ = tam.NeDispl
	default:
		panic("encoder: unhandled operator " + op)
	}
	e.emit(tam.CALLop, tam.SBr, tam.PBr, displ)
}

// --- Calls ---

// encodeCall pushes the arguments (values for value parameters,
// addresses for var parameters) and transfers control. Returns the
// result size (0 for procedures).
func (e *Encoder) encodeCall(name *ast.Identifier, args []ast.Expression, f frame) int {
	switch decl := name.Decl.(type) {
	case *ast.ProcDecl:
		e.encodeArgs(args, declByRef(decl.Params), f)
		e.emitRoutineCall(decl.Entity, f)
		return 0

	case *ast.FuncDecl:
		e.encodeArgs(args, declByRef(decl.Params), f)
		e.emitRoutineCall(decl.Entity, f)
		return decl.ReturnType.Size()

	case *ast.PrimitiveDecl:
		e.encodeArgs(args, decl.ByRef, f)
		e.emit(tam.CALLop, tam.SBr, tam.PBr, decl.Displ)
		if decl.Kind == ast.PrimitiveFunc {
			return decl.Type.Size()
		}
		return 0

	default:
		panic("encoder: call to non-routine")
	}
}

func declByRef(params []*ast.FormalParam) []bool {
	refs := make([]bool, len(params))
	for i, p := range params {
		refs[i] = p.ByRef
	}
	return refs
}

func (e *Encoder) encodeArgs(args []ast.Expression, byRef []bool, f frame) {
	pushed := 0
	for i, a := range args {
		if i < len(byRef) && byRef[i] {
			// The checker guarantees a var argument is a vname.
			ve := a.(*ast.VnameExpr)
			e.encodeFetchAddress(ve.V, f.grown(pushed))
			pushed++
		} else {
			pushed += e.encodeExpr(a, f.grown(pushed))
		}
	}
}

func (e *Encoder) emitRoutineCall(entity any, f frame) {
	routine := entity.(*KnownRoutine)
	staticLink := e.displayRegister(f.level, routine.Addr.Level)
	e.emit(tam.CALLop, staticLink, tam.CBr, routine.Addr.Displ)
}

// --- Vname fetch/store ---

// encodeFetch leaves the vname's current value on the stack and returns
// its size.
func (e *Encoder) encodeFetch(v ast.Vname, f frame) int {
	size := v.VnameType().Size()
	if sv, ok := v.(*ast.SimpleVname); ok {
		switch entity := declEntity(sv.Name.Decl).(type) {
		case *KnownValue:
			e.emit(tam.LOADLop, 0, 0, entity.Value)
			return size
		case *UnknownValue:
			reg := e.displayRegister(f.level, entity.Addr.Level)
			e.emit(tam.LOADop, size, reg, entity.Addr.Displ)
			return size
		case *KnownAddress:
			reg := e.displayRegister(f.level, entity.Addr.Level)
			e.emit(tam.LOADop, size, reg, entity.Addr.Displ)
			return size
		}
	}
	e.encodeFetchAddress(v, f)
	e.emit(tam.LOADIop, size, 0, 0)
	return size
}

// encodeStore pops size words into the storage the vname denotes.
func (e *Encoder) encodeStore(v ast.Vname, f frame, size int) {
	if sv, ok := v.(*ast.SimpleVname); ok {
		if entity, ok := declEntity(sv.Name.Decl).(*KnownAddress); ok {
			reg := e.displayRegister(f.level, entity.Addr.Level)
			e.emit(tam.STOREop, size, reg, entity.Addr.Displ)
			return
		}
	}
	e.encodeFetchAddress(v, f)
	e.emit(tam.STOREIop, size, 0, 0)
}

// encodeFetchAddress leaves the vname's address on the stack (one word).
func (e *Encoder) encodeFetchAddress(v ast.Vname, f frame) {
	switch v := v.(type) {
	case *ast.SimpleVname:
		switch entity := declEntity(v.Name.Decl).(type) {
		case *KnownAddress:
			reg := e.displayRegister(f.level, entity.Addr.Level)
			e.emit(tam.LOADAop, 0, reg, entity.Addr.Displ)
		case *UnknownAddress:
			// A var parameter's slot holds the address itself.
			reg := e.displayRegister(f.level, entity.Addr.Level)
			e.emit(tam.LOADop, 1, reg, entity.Addr.Displ)
		default:
			e.reporter.Error(v.Name.Token.Line, v.Name.Token.Column,
				"code generation: %q has no address", v.Name.Value)
			e.emit(tam.LOADLop, 0, 0, 0)
		}

	case *ast.DotVname:
		e.encodeFetchAddress(v.Base, f)
		record := v.Base.VnameType().(*types.Record)
		offset, _ := record.FieldOffset(v.Field.Value)
		if offset != 0 {
			e.emit(tam.LOADLop, 0, 0, offset)
			e.emit(tam.CALLop, tam.SBr, tam.PBr, tam.AddDispl)
		}

	case *ast.SubscriptVname:
		e.encodeFetchAddress(v.Base, f)
		array := v.Base.VnameType().(*types.Array)
		elemSize := array.Elem.Size()
		if lit, ok := v.Index.(*ast.IntegerLiteral); ok {
			if offset := lit.Value * elemSize; offset != 0 {
				e.emit(tam.LOADLop, 0, 0, offset)
				e.emit(tam.CALLop, tam.SBr, tam.PBr, tam.AddDispl)
			}
			return
		}
		e.encodeExpr(v.Index, f.grown(1))
		if elemSize != 1 {
			e.emit(tam.LOADLop, 0, 0, elemSize)
			e.emit(tam.CALLop, tam.SBr, tam.PBr, tam.MultDispl)
		}
		e.emit(tam.CALLop, tam.SBr, tam.PBr, tam.AddDispl)

	default:
		panic("encoder: unhandled vname node")
	}
}

// declEntity reads the Entity annotation off whichever declaration kind
// the identifier resolved to. Standard-environment constants have no
// encoder pass over their declarations, so they elaborate here.
func declEntity(decl ast.Declaration) any {
	switch decl := decl.(type) {
	case *ast.ConstDecl:
		return decl.Entity
	case *ast.VarDecl:
		return decl.Entity
	case *ast.FormalParam:
		return decl.Entity
	case *ast.PrimitiveDecl:
		if decl.Kind == ast.PrimitiveConst {
			return &KnownValue{Size: decl.Type.Size(), Value: decl.Value}
		}
	}
	return nil
}
