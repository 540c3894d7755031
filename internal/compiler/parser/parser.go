package parser

import (
	"slices"
	"strconv"

	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/ast"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/lexer"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/report"
	"github.com/Sivdeg/a5-triangle-tools/internal/compiler/token"
)

// Parser is a recursive-descent parser with one token of lookahead and no
// backtracking. Operator precedence is encoded in the rule hierarchy:
// let/if expressions bind loosest, then disjunction, conjunction,
// relational, additive, multiplicative, and unary operators, with each
// binary tier left-associative.
//
// The first syntax error abandons the parse of the unit: parseAbort
// unwinds the descent back to ParseProgram, which returns nil. Only that
// first diagnostic reaches the reporter.
type Parser struct {
	l        *lexer.Lexer
	curTok   token.Token
	peekTok  token.Token
	reporter *report.Reporter
}

// parseAbort is the sentinel recovered in ParseProgram.
type parseAbort struct{}

func NewParser(l *lexer.Lexer, reporter *report.Reporter) *Parser {
	p := &Parser{l: l, reporter: reporter}
	// Prime curTok and peekTok.
	p.nextToken()
	p.nextToken()
	return p
}

// --- Token handling ---

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) syntaxError(tok token.Token, format string, args ...any) {
	p.reporter.Error(tok.Line, tok.Column, "syntax error: "+format, args...)
	panic(parseAbort{})
}

// expect consumes the current token if it has the wanted type, otherwise
// records a syntax error and aborts.
func (p *Parser) expect(t token.TokenType, what string) token.Token {
	if p.curTok.Type != t {
		p.syntaxError(p.curTok, "expected %s, found %q", what, p.curTok.Literal)
	}
	tok := p.curTok
	p.nextToken()
	return tok
}

func (p *Parser) expectIdent() *ast.Identifier {
	tok := p.expect(token.TokenIdent, "an identifier")
	return &ast.Identifier{Token: tok, Value: tok.Literal}
}

// --- Entry point ---

// ParseProgram parses a whole source unit: a single command followed by
// end of input. It returns nil if a syntax error was recorded.
func ParseProgram(l *lexer.Lexer, reporter *report.Reporter) *ast.Program {
	return NewParser(l, reporter).ParseProgram()
}

func (p *Parser) ParseProgram() (prog *ast.Program) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseAbort); !ok {
				panic(r)
			}
			prog = nil
		}
	}()

	cmd := p.parseCommand()
	p.expect(token.TokenEOF, "end of program")
	return &ast.Program{Command: cmd}
}

// --- Commands ---

// parseCommand parses a semicolon-separated command sequence.
func (p *Parser) parseCommand() ast.Command {
	firstTok := p.curTok
	first := p.parseSingleCommand()
	if p.curTok.Type != token.TokenSemicolon {
		return first
	}

	seq := &ast.SequentialCommand{Token: firstTok, Commands: []ast.Command{first}}
	for p.curTok.Type == token.TokenSemicolon {
		p.nextToken()
		seq.Commands = append(seq.Commands, p.parseSingleCommand())
	}
	return seq
}

func (p *Parser) parseSingleCommand() ast.Command {
	switch p.curTok.Type {
	case token.TokenIdent:
		return p.parseAssignOrCall()

	case token.TokenBegin:
		beginTok := p.curTok
		p.nextToken()
		cmd := p.parseCommand()
		p.expect(token.TokenEnd, "'end'")
		if seq, ok := cmd.(*ast.SequentialCommand); ok {
			seq.Token = beginTok
			return seq
		}
		return cmd

	case token.TokenLet:
		letTok := p.curTok
		p.nextToken()
		decls := p.parseDeclarations()
		p.expect(token.TokenIn, "'in'")
		body := p.parseSingleCommand()
		return &ast.LetCommand{Token: letTok, Decls: decls, Body: body}

	case token.TokenIf:
		ifTok := p.curTok
		p.nextToken()
		cond := p.parseExpression()
		p.expect(token.TokenThen, "'then'")
		thenCmd := p.parseSingleCommand()
		p.expect(token.TokenElse, "'else'")
		elseCmd := p.parseSingleCommand()
		return &ast.IfCommand{Token: ifTok, Cond: cond, Then: thenCmd, Else: elseCmd}

	case token.TokenWhile:
		whileTok := p.curTok
		p.nextToken()
		cond := p.parseExpression()
		p.expect(token.TokenDo, "'do'")
		body := p.parseSingleCommand()
		return &ast.WhileCommand{Token: whileTok, Cond: cond, Body: body}

	default:
		// The empty command: consumes nothing. Whatever follows must be a
		// legal continuation (end, else, EOF, ...) or the caller's expect
		// reports it.
		return &ast.EmptyCommand{Token: p.curTok}
	}
}

// parseAssignOrCall handles the two commands that start with an
// identifier: name(args) and vname := expr.
func (p *Parser) parseAssignOrCall() ast.Command {
	identTok := p.curTok
	ident := &ast.Identifier{Token: identTok, Value: identTok.Literal}
	p.nextToken()

	if p.curTok.Type == token.TokenLParen {
		p.nextToken()
		args := p.parseActuals()
		p.expect(token.TokenRParen, "')'")
		return &ast.CallCommand{Token: identTok, Name: ident, Args: args}
	}

	v := p.parseRestOfVname(&ast.SimpleVname{Token: identTok, Name: ident})
	becomes := p.expect(token.TokenBecomes, "':=' or '('")
	expr := p.parseExpression()
	return &ast.AssignCommand{Token: becomes, V: v, Expr: expr}
}

// --- Declarations ---

// parseDeclarations parses a semicolon-separated declaration sequence.
func (p *Parser) parseDeclarations() []ast.Declaration {
	decls := []ast.Declaration{p.parseDeclaration()}
	for p.curTok.Type == token.TokenSemicolon {
		p.nextToken()
		decls = append(decls, p.parseDeclaration())
	}
	return decls
}

func (p *Parser) parseDeclaration() ast.Declaration {
	switch p.curTok.Type {
	case token.TokenConst:
		constTok := p.curTok
		p.nextToken()
		name := p.expectIdent()
		p.expect(token.TokenIs, "'~'")
		value := p.parseExpression()
		return &ast.ConstDecl{Token: constTok, Name: name, Value: value}

	case token.TokenVar:
		varTok := p.curTok
		p.nextToken()
		name := p.expectIdent()
		p.expect(token.TokenColon, "':'")
		denoter := p.parseTypeDenoter()
		return &ast.VarDecl{Token: varTok, Name: name, Denoter: denoter}

	case token.TokenProc:
		procTok := p.curTok
		p.nextToken()
		name := p.expectIdent()
		p.expect(token.TokenLParen, "'('")
		params := p.parseFormals()
		p.expect(token.TokenRParen, "')'")
		p.expect(token.TokenIs, "'~'")
		body := p.parseSingleCommand()
		return &ast.ProcDecl{Token: procTok, Name: name, Params: params, Body: body}

	case token.TokenFunc:
		funcTok := p.curTok
		p.nextToken()
		name := p.expectIdent()
		p.expect(token.TokenLParen, "'('")
		params := p.parseFormals()
		p.expect(token.TokenRParen, "')'")
		p.expect(token.TokenColon, "':'")
		ret := p.parseTypeDenoter()
		p.expect(token.TokenIs, "'~'")
		expr := p.parseExpression()
		return &ast.FuncDecl{Token: funcTok, Name: name, Params: params, ReturnDenoter: ret, Expr: expr}

	case token.TokenTypeKw:
		typeTok := p.curTok
		p.nextToken()
		name := p.expectIdent()
		p.expect(token.TokenIs, "'~'")
		denoter := p.parseTypeDenoter()
		return &ast.TypeDecl{Token: typeTok, Name: name, Denoter: denoter}

	default:
		p.syntaxError(p.curTok, "expected a declaration, found %q", p.curTok.Literal)
		return nil // unreachable
	}
}

// parseFormals parses a possibly empty, comma-separated formal parameter
// list. A leading 'var' makes the parameter pass by reference.
func (p *Parser) parseFormals() []*ast.FormalParam {
	var params []*ast.FormalParam
	if p.curTok.Type == token.TokenRParen {
		return params
	}
	for {
		param := &ast.FormalParam{Token: p.curTok}
		if p.curTok.Type == token.TokenVar {
			param.ByRef = true
			p.nextToken()
		}
		param.Name = p.expectIdent()
		p.expect(token.TokenColon, "':'")
		param.Denoter = p.parseTypeDenoter()
		params = append(params, param)

		if p.curTok.Type != token.TokenComma {
			return params
		}
		p.nextToken()
	}
}

// --- Expressions ---

func (p *Parser) parseExpression() ast.Expression {
	switch p.curTok.Type {
	case token.TokenLet:
		letTok := p.curTok
		p.nextToken()
		decls := p.parseDeclarations()
		p.expect(token.TokenIn, "'in'")
		expr := p.parseExpression()
		return &ast.LetExpr{Token: letTok, Decls: decls, Expr: expr}

	case token.TokenIf:
		ifTok := p.curTok
		p.nextToken()
		cond := p.parseExpression()
		p.expect(token.TokenThen, "'then'")
		thenExpr := p.parseExpression()
		p.expect(token.TokenElse, "'else'")
		elseExpr := p.parseExpression()
		return &ast.IfExpr{Token: ifTok, Cond: cond, Then: thenExpr, Else: elseExpr}

	default:
		return p.parseDisjunction()
	}
}

// Each binary tier is the same shape: parse the next-tighter tier, then
// fold further operands in from the left.
func (p *Parser) parseBinaryTier(next func() ast.Expression, ops ...string) ast.Expression {
	left := next()
	for p.curTok.Type == token.TokenOperator && slices.Contains(ops, p.curTok.Literal) {
		opTok := p.curTok
		p.nextToken()
		right := next()
		left = &ast.BinaryExpr{Token: opTok, Op: opTok.Literal, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseDisjunction() ast.Expression {
	return p.parseBinaryTier(p.parseConjunction, `\/`)
}

func (p *Parser) parseConjunction() ast.Expression {
	return p.parseBinaryTier(p.parseRelational, `/\`)
}

func (p *Parser) parseRelational() ast.Expression {
	return p.parseBinaryTier(p.parseAdditive, "=", `\=`, "<", "<=", ">", ">=")
}

func (p *Parser) parseAdditive() ast.Expression {
	return p.parseBinaryTier(p.parseMultiplicative, "+", "-")
}

func (p *Parser) parseMultiplicative() ast.Expression {
	return p.parseBinaryTier(p.parseUnary, "*", "/", "//")
}

func (p *Parser) parseUnary() ast.Expression {
	if p.curTok.Type == token.TokenOperator && (p.curTok.Literal == "-" || p.curTok.Literal == `\`) {
		opTok := p.curTok
		p.nextToken()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Token: opTok, Op: opTok.Literal, Operand: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expression {
	switch p.curTok.Type {
	case token.TokenInt:
		tok := p.curTok
		p.nextToken()
		value, err := strconv.Atoi(tok.Literal)
		if err != nil {
			p.syntaxError(tok, "integer literal %q out of range", tok.Literal)
		}
		return &ast.IntegerLiteral{Token: tok, Value: value}

	case token.TokenChar:
		tok := p.curTok
		p.nextToken()
		return &ast.CharLiteral{Token: tok, Value: tok.Literal[0]}

	case token.TokenIdent:
		identTok := p.curTok
		ident := &ast.Identifier{Token: identTok, Value: identTok.Literal}
		p.nextToken()
		if p.curTok.Type == token.TokenLParen {
			p.nextToken()
			args := p.parseActuals()
			p.expect(token.TokenRParen, "')'")
			return &ast.CallExpr{Token: identTok, Name: ident, Args: args}
		}
		v := p.parseRestOfVname(&ast.SimpleVname{Token: identTok, Name: ident})
		return &ast.VnameExpr{Token: identTok, V: v}

	case token.TokenLParen:
		p.nextToken()
		expr := p.parseExpression()
		p.expect(token.TokenRParen, "')'")
		return expr

	case token.TokenLBracket:
		bracketTok := p.curTok
		p.nextToken()
		var elems []ast.Expression
		if p.curTok.Type != token.TokenRBracket {
			elems = append(elems, p.parseExpression())
			for p.curTok.Type == token.TokenComma {
				p.nextToken()
				elems = append(elems, p.parseExpression())
			}
		}
		p.expect(token.TokenRBracket, "']'")
		return &ast.ArrayExpr{Token: bracketTok, Elems: elems}

	case token.TokenLBrace:
		braceTok := p.curTok
		p.nextToken()
		var fields []*ast.RecordField
		if p.curTok.Type != token.TokenRBrace {
			fields = append(fields, p.parseRecordField())
			for p.curTok.Type == token.TokenComma {
				p.nextToken()
				fields = append(fields, p.parseRecordField())
			}
		}
		p.expect(token.TokenRBrace, "'}'")
		return &ast.RecordExpr{Token: braceTok, Fields: fields}

	default:
		p.syntaxError(p.curTok, "expected an expression, found %q", p.curTok.Literal)
		return nil // unreachable
	}
}

func (p *Parser) parseRecordField() *ast.RecordField {
	name := p.expectIdent()
	p.expect(token.TokenIs, "'~'")
	value := p.parseExpression()
	return &ast.RecordField{Name: name, Value: value}
}

// parseActuals parses a possibly empty, comma-separated argument list.
func (p *Parser) parseActuals() []ast.Expression {
	var args []ast.Expression
	if p.curTok.Type == token.TokenRParen {
		return args
	}
	args = append(args, p.parseExpression())
	for p.curTok.Type == token.TokenComma {
		p.nextToken()
		args = append(args, p.parseExpression())
	}
	return args
}

// --- Vnames ---

// parseRestOfVname extends a base vname with any .field and [index]
// selectors that follow.
func (p *Parser) parseRestOfVname(base ast.Vname) ast.Vname {
	for {
		switch p.curTok.Type {
		case token.TokenDot:
			dotTok := p.curTok
			p.nextToken()
			field := p.expectIdent()
			base = &ast.DotVname{Token: dotTok, Base: base, Field: field}
		case token.TokenLBracket:
			bracketTok := p.curTok
			p.nextToken()
			index := p.parseExpression()
			p.expect(token.TokenRBracket, "']'")
			base = &ast.SubscriptVname{Token: bracketTok, Base: base, Index: index}
		default:
			return base
		}
	}
}

// --- Type denoters ---

func (p *Parser) parseTypeDenoter() ast.TypeDenoter {
	switch p.curTok.Type {
	case token.TokenIdent:
		ident := p.expectIdent()
		return &ast.NamedTypeDenoter{Token: ident.Token, Name: ident}

	case token.TokenArray:
		arrayTok := p.curTok
		p.nextToken()
		length := p.parseExpression()
		p.expect(token.TokenOf, "'of'")
		elem := p.parseTypeDenoter()
		return &ast.ArrayTypeDenoter{Token: arrayTok, Len: length, Elem: elem}

	case token.TokenRecord:
		recordTok := p.curTok
		p.nextToken()
		var fields []*ast.FieldDecl
		fields = append(fields, p.parseFieldDecl())
		for p.curTok.Type == token.TokenComma {
			p.nextToken()
			fields = append(fields, p.parseFieldDecl())
		}
		p.expect(token.TokenEnd, "'end'")
		return &ast.RecordTypeDenoter{Token: recordTok, Fields: fields}

	default:
		p.syntaxError(p.curTok, "expected a type denoter, found %q", p.curTok.Literal)
		return nil // unreachable
	}
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	name := p.expectIdent()
	p.expect(token.TokenColon, "':'")
	denoter := p.parseTypeDenoter()
	return &ast.FieldDecl{Name: name, Denoter: denoter}
}
