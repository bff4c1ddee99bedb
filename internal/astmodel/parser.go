package astmodel

import (
	"fmt"

	"github.com/circomspect-lang/circomspect-go/internal/source"
)

// Parser is a small recursive-descent parser, grounded on the teacher's
// single-lookahead lexer-driven style (internal/lexer + internal/parser),
// scoped to the circuit grammar subset: template/function definitions,
// declarations, substitutions, if/while, return, constraint equality, log
// and assert calls.
type Parser struct {
	lx       *lexer
	file     source.FileID
	cur, peekTok token
	Errors   []string
}

// NewParser tokenizes text (already registered as fileID in the source
// library) and prepares a parser positioned at the first token.
func NewParser(fileID source.FileID, text string) *Parser {
	p := &Parser{lx: newLexer(text), file: fileID}
	p.cur = p.lx.next()
	p.peekTok = p.lx.next()
	return p
}

func (p *Parser) advance() {
	p.cur = p.peekTok
	p.peekTok = p.lx.next()
}

func (p *Parser) span(startTok token) source.Span {
	return source.Span{File: p.file, Start: startTok.start, End: p.cur.end, Line: startTok.line, Column: startTok.column}
}

func (p *Parser) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Sprintf("%d:%d: %s", p.cur.line, p.cur.column, fmt.Sprintf(format, args...)))
}

func (p *Parser) expect(k tokenKind, what string) token {
	if p.cur.kind != k {
		p.errorf("expected %s, found %q", what, p.cur.text)
	}
	t := p.cur
	p.advance()
	return t
}

// ParseFile parses a whole source file into a sequence of template and
// function definitions (spec §3.6).
func (p *Parser) ParseFile() *File {
	f := NewFile()
	for p.cur.kind != tEOF {
		switch p.cur.kind {
		case tKwTemplate:
			f.AddDef(p.parseDef(DefTemplate))
		case tKwFunction:
			f.AddDef(p.parseDef(DefFunction))
		default:
			p.errorf("expected 'template' or 'function', found %q", p.cur.text)
			p.advance()
		}
	}
	return f
}

func (p *Parser) parseDef(kind DefKind) *Def {
	start := p.cur
	p.advance() // 'template'/'function'
	name := p.expect(tIdent, "definition name").text
	p.expect(tLParen, "'('")
	var params []Param
	for p.cur.kind != tRParen && p.cur.kind != tEOF {
		nameTok := p.expect(tIdent, "parameter name")
		params = append(params, Param{Name: nameTok.text, Span: p.span(nameTok)})
		if p.cur.kind == tComma {
			p.advance()
		}
	}
	p.expect(tRParen, "')'")
	body := p.parseBlockStmts()
	return &Def{Name: name, Kind: kind, Params: params, Body: body, span: p.span(start)}
}

func (p *Parser) parseBlockStmts() []Stmt {
	p.expect(tLBrace, "'{'")
	var stmts []Stmt
	for p.cur.kind != tRBrace && p.cur.kind != tEOF {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(tRBrace, "'}'")
	return stmts
}

func (p *Parser) parseStmt() Stmt {
	start := p.cur
	switch p.cur.kind {
	case tKwSignal:
		return p.parseSignalDecl(start)
	case tKwVar:
		return p.parseVarDecl(start)
	case tKwComponent:
		return p.parseComponentDecl(start)
	case tKwIf:
		return p.parseIf(start)
	case tKwWhile:
		return p.parseWhile(start)
	case tKwReturn:
		p.advance()
		var val Expr
		if p.cur.kind != tSemicolon {
			val = p.parseExpr()
		}
		p.expect(tSemicolon, "';'")
		return &ReturnStmt{baseStmt{p.span(start)}, val}
	case tKwLog:
		p.advance()
		p.expect(tLParen, "'('")
		arg := p.parseExpr()
		p.expect(tRParen, "')'")
		p.expect(tSemicolon, "';'")
		return &LogStmt{baseStmt{p.span(start)}, arg}
	case tKwAssert:
		p.advance()
		p.expect(tLParen, "'('")
		arg := p.parseExpr()
		p.expect(tRParen, "')'")
		p.expect(tSemicolon, "';'")
		return &AssertStmt{baseStmt{p.span(start)}, arg}
	case tLBrace:
		return &BlockStmt{baseStmt{p.span(start)}, p.parseBlockStmts()}
	default:
		return p.parseSubstOrConstraint(start)
	}
}

func (p *Parser) parseDims() []Expr {
	var dims []Expr
	for p.cur.kind == tLBracket {
		p.advance()
		dims = append(dims, p.parseExpr())
		p.expect(tRBracket, "']'")
	}
	return dims
}

func (p *Parser) parseNameList() []string {
	var names []string
	for {
		names = append(names, p.expect(tIdent, "name").text)
		// dims are attached to the individual name in real circom; here we
		// require a shared shape across one declaration statement, consumed
		// by the caller after the comma-separated name list.
		if p.cur.kind == tComma {
			p.advance()
			continue
		}
		break
	}
	return names
}

func (p *Parser) parseSignalDecl(start token) Stmt {
	p.advance() // 'signal'
	kind := KindSignalIntermediate
	switch p.cur.kind {
	case tKwInput:
		kind = KindSignalInput
		p.advance()
	case tKwOutput:
		kind = KindSignalOutput
		p.advance()
	}
	var tags []string
	if p.cur.kind == tLBrace {
		p.advance()
		for p.cur.kind != tRBrace && p.cur.kind != tEOF {
			tags = append(tags, p.expect(tIdent, "tag name").text)
			if p.cur.kind == tComma {
				p.advance()
			}
		}
		p.expect(tRBrace, "'}'")
	}
	names := p.parseNameList()
	dims := p.parseDims()
	p.expect(tSemicolon, "';'")
	return &DeclStmt{baseStmt{p.span(start)}, kind, names, tags, dims}
}

func (p *Parser) parseVarDecl(start token) Stmt {
	p.advance() // 'var'
	names := p.parseNameList()
	dims := p.parseDims()
	p.expect(tSemicolon, "';'")
	return &DeclStmt{baseStmt{p.span(start)}, KindVar, names, nil, dims}
}

func (p *Parser) parseComponentDecl(start token) Stmt {
	p.advance() // 'component'
	names := p.parseNameList()
	dims := p.parseDims()
	p.expect(tSemicolon, "';'")
	return &DeclStmt{baseStmt{p.span(start)}, KindComponent, names, nil, dims}
}

func (p *Parser) parseIf(start token) Stmt {
	p.advance() // 'if'
	p.expect(tLParen, "'('")
	cond := p.parseExpr()
	p.expect(tRParen, "')'")
	then := p.parseBlockStmts()
	var els []Stmt
	if p.cur.kind == tKwElse {
		p.advance()
		if p.cur.kind == tKwIf {
			els = []Stmt{p.parseIf(p.cur)}
		} else {
			els = p.parseBlockStmts()
		}
	}
	return &IfStmt{baseStmt{p.span(start)}, cond, then, els}
}

func (p *Parser) parseWhile(start token) Stmt {
	p.advance() // 'while'
	p.expect(tLParen, "'('")
	cond := p.parseExpr()
	p.expect(tRParen, "')'")
	body := p.parseBlockStmts()
	return &WhileStmt{baseStmt{p.span(start)}, cond, body}
}

// parseSubstOrConstraint handles `target = rhs;`, `target <-- rhs;`,
// `target <== rhs;` and `lhs === rhs;`.
func (p *Parser) parseSubstOrConstraint(start token) Stmt {
	lhs := p.parseExpr()
	switch p.cur.kind {
	case tAssign, tLArrowLArrow, tLArrowEqEq:
		op := p.opText(p.cur.kind)
		p.advance()
		rhs := p.parseExpr()
		p.expect(tSemicolon, "';'")
		access, ok := toAccessExpr(lhs)
		if !ok {
			p.errorf("left-hand side of assignment must be a variable or access expression")
			access = AccessExpr{baseExpr{p.span(start)}, "", nil}
		}
		return &SubstStmt{baseStmt{p.span(start)}, access, op, rhs}
	case tEqEqEq:
		p.advance()
		rhs := p.parseExpr()
		p.expect(tSemicolon, "';'")
		return &ConstraintEqStmt{baseStmt{p.span(start)}, lhs, rhs}
	default:
		p.errorf("expected assignment or constraint operator, found %q", p.cur.text)
		p.expect(tSemicolon, "';'")
		return &ConstraintEqStmt{baseStmt{p.span(start)}, lhs, lhs}
	}
}

func (p *Parser) opText(k tokenKind) string {
	switch k {
	case tAssign:
		return "="
	case tLArrowLArrow:
		return "<--"
	case tLArrowEqEq:
		return "<=="
	default:
		return "?"
	}
}

func toAccessExpr(e Expr) (AccessExpr, bool) {
	if a, ok := e.(*AccessExpr); ok {
		return *a, true
	}
	return AccessExpr{}, false
}

// Expression grammar, lowest to highest precedence:
//
//	ternary  : logicOr ('?' expr ':' expr)?
//	logicOr  : logicAnd ('||' logicAnd)*
//	logicAnd : equality ('&&' equality)*
//	equality : relational (('=='|'!=') relational)*
//	relational: shift (('<'|'>'|'<='|'>=') shift)*
//	shift    : additive (('<<'|'>>') additive)*
//	additive : multiplicative (('+'|'-') multiplicative)*
//	multiplicative: unary (('*'|'/'|'%'|'\\') unary)*
//	unary    : ('-'|'!')? power
//	power    : postfix ('**' unary)?
//	postfix  : primary ('[' expr ']' | '.' ident)*
func (p *Parser) parseExpr() Expr { return p.parseTernary() }

func (p *Parser) parseTernary() Expr {
	start := p.cur
	cond := p.parseLogicOr()
	if p.cur.kind == tQuestion {
		p.advance()
		ifTrue := p.parseExpr()
		p.expect(tColon, "':'")
		ifFalse := p.parseExpr()
		return &TernaryExpr{baseExpr{p.span(start)}, cond, ifTrue, ifFalse}
	}
	return cond
}

func (p *Parser) parseLogicOr() Expr {
	start := p.cur
	l := p.parseLogicAnd()
	for p.cur.kind == tOrOr {
		p.advance()
		r := p.parseLogicAnd()
		l = &InfixExpr{baseExpr{p.span(start)}, "||", l, r}
	}
	return l
}

func (p *Parser) parseLogicAnd() Expr {
	start := p.cur
	l := p.parseEquality()
	for p.cur.kind == tAndAnd {
		p.advance()
		r := p.parseEquality()
		l = &InfixExpr{baseExpr{p.span(start)}, "&&", l, r}
	}
	return l
}

func (p *Parser) parseEquality() Expr {
	start := p.cur
	l := p.parseRelational()
	for p.cur.kind == tEqEq || p.cur.kind == tNotEq {
		op := p.cur.text
		p.advance()
		r := p.parseRelational()
		l = &InfixExpr{baseExpr{p.span(start)}, op, l, r}
	}
	return l
}

func (p *Parser) parseRelational() Expr {
	start := p.cur
	l := p.parseShift()
	for p.cur.kind == tLt || p.cur.kind == tGt || p.cur.kind == tLe || p.cur.kind == tGe {
		op := p.cur.text
		p.advance()
		r := p.parseShift()
		l = &InfixExpr{baseExpr{p.span(start)}, op, l, r}
	}
	return l
}

// parseShift sits between relational and additive, the usual C-family slot
// for bitwise/field shift operators.
func (p *Parser) parseShift() Expr {
	start := p.cur
	l := p.parseAdditive()
	for p.cur.kind == tShl || p.cur.kind == tShr {
		op := p.cur.text
		p.advance()
		r := p.parseAdditive()
		l = &InfixExpr{baseExpr{p.span(start)}, op, l, r}
	}
	return l
}

func (p *Parser) parseAdditive() Expr {
	start := p.cur
	l := p.parseMultiplicative()
	for p.cur.kind == tPlus || p.cur.kind == tMinus {
		op := p.cur.text
		p.advance()
		r := p.parseMultiplicative()
		l = &InfixExpr{baseExpr{p.span(start)}, op, l, r}
	}
	return l
}

func (p *Parser) parseMultiplicative() Expr {
	start := p.cur
	l := p.parseUnary()
	for p.cur.kind == tStar || p.cur.kind == tSlash || p.cur.kind == tPercent || p.cur.kind == tBackslash {
		op := p.cur.text
		p.advance()
		r := p.parseUnary()
		l = &InfixExpr{baseExpr{p.span(start)}, op, l, r}
	}
	return l
}

func (p *Parser) parseUnary() Expr {
	start := p.cur
	if p.cur.kind == tMinus || p.cur.kind == tBang {
		op := p.cur.text
		p.advance()
		x := p.parseUnary()
		return &PrefixExpr{baseExpr{p.span(start)}, op, x}
	}
	return p.parsePower()
}

func (p *Parser) parsePower() Expr {
	start := p.cur
	base := p.parsePostfix()
	if p.cur.kind == tPow {
		p.advance()
		exp := p.parseUnary()
		return &InfixExpr{baseExpr{p.span(start)}, "**", base, exp}
	}
	return base
}

func (p *Parser) parsePostfix() Expr {
	start := p.cur
	prim := p.parsePrimary()
	access, isAccess := prim.(*AccessExpr)
	var steps []AccessStep
	if isAccess {
		steps = access.Path
	}
	for p.cur.kind == tLBracket || p.cur.kind == tDot {
		if !isAccess {
			p.errorf("only a variable reference may be indexed or accessed")
			break
		}
		if p.cur.kind == tLBracket {
			p.advance()
			idx := p.parseExpr()
			p.expect(tRBracket, "']'")
			steps = append(steps, AccessStep{Kind: StepIndex, Index: idx})
		} else {
			p.advance()
			member := p.expect(tIdent, "member name").text
			steps = append(steps, AccessStep{Kind: StepMember, Member: member})
		}
	}
	if isAccess {
		return &AccessExpr{baseExpr{p.span(start)}, access.Name, steps}
	}
	return prim
}

func (p *Parser) parsePrimary() Expr {
	start := p.cur
	switch p.cur.kind {
	case tNumber:
		text := p.cur.text
		p.advance()
		return &NumberLit{baseExpr{p.span(start)}, text}
	case tLParen:
		p.advance()
		e := p.parseExpr()
		p.expect(tRParen, "')'")
		return e
	case tLBracket:
		p.advance()
		var elems []Expr
		for p.cur.kind != tRBracket && p.cur.kind != tEOF {
			elems = append(elems, p.parseExpr())
			if p.cur.kind == tComma {
				p.advance()
			}
		}
		p.expect(tRBracket, "']'")
		return &ArrayExpr{baseExpr{p.span(start)}, elems}
	case tKwParallel:
		p.advance()
		child := p.parseExpr()
		return &ParallelExpr{baseExpr{p.span(start)}, child}
	case tIdent:
		name := p.cur.text
		p.advance()
		if p.cur.kind == tLParen {
			p.advance()
			var args []Expr
			for p.cur.kind != tRParen && p.cur.kind != tEOF {
				args = append(args, p.parseExpr())
				if p.cur.kind == tComma {
					p.advance()
				}
			}
			p.expect(tRParen, "')'")
			return &CallExpr{baseExpr{p.span(start)}, name, args}
		}
		return &AccessExpr{baseExpr{p.span(start)}, name, nil}
	}
	p.errorf("unexpected token %q in expression", p.cur.text)
	p.advance()
	return &NumberLit{baseExpr{p.span(start)}, "0"}
}
