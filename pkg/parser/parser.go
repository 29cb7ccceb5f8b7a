// Package parser implements the recursive-descent parser of spec.md §4.2:
// operator-precedence expressions, postfix cast/call, and the
// declaration/expression ambiguity at both top level and statement level.
package parser

import (
	"cc32/pkg/ast"
	"cc32/pkg/diag"
	"cc32/pkg/lexer"
	"cc32/pkg/token"
)

// Parser consumes tokens lazily from a Lexer, one token of lookahead at a
// time, and builds the flat top-level declaration sequence.
type Parser struct {
	lex *lexer.Lexer
	cur token.Token
}

// New primes the tokenizer (one Advance call) and returns a ready Parser.
func New(lex *lexer.Lexer) (*Parser, error) {
	p := &Parser{lex: lex}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Advance()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) expect(kind token.Kind, what string) (token.Token, error) {
	if p.cur.Kind != kind {
		return token.Token{}, diag.New(diag.UnexpectedToken, p.cur.Location, "expected %s, got %s", what, p.cur.Kind)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) expectIdentifier(what string) (*ast.Identifier, error) {
	if p.cur.Kind != token.Identifier {
		return nil, diag.New(diag.UnexpectedToken, p.cur.Location, "expected %s, got %s", what, p.cur.Kind)
	}
	id := ast.NewIdentifier(p.cur.Location, p.cur.Lexeme)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return id, nil
}

// ParseFile returns the ordered sequence of top-level declarations
// (*ast.VariableDeclaration or *ast.FunctionDeclaration) until EndOfFile.
func ParseFile(lex *lexer.Lexer) ([]ast.Stmt, error) {
	p, err := New(lex)
	if err != nil {
		return nil, err
	}
	var decls []ast.Stmt
	for p.cur.Kind != token.EndOfFile {
		decl, err := p.parseTopLevelDeclaration()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// parseTopLevelDeclaration resolves the declaration ambiguity of spec.md
// §4.2: read one identifier; a second identifier means the first was a
// type; "=" or "(" means the first identifier was the name itself.
func (p *Parser) parseTopLevelDeclaration() (ast.Stmt, error) {
	loc := p.cur.Location
	first, err := p.expectIdentifier("a type or declaration name")
	if err != nil {
		return nil, err
	}

	if p.cur.Kind == token.Identifier {
		// first was the type; this identifier is the name.
		name := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.finishDeclaration(loc, first, name)
	}

	// first is the name; no explicit type.
	return p.finishDeclaration(loc, nil, first.Name)
}

func (p *Parser) finishDeclaration(loc token.Location, typeExpr *ast.Identifier, name string) (ast.Stmt, error) {
	switch p.cur.Kind {
	case token.Equals:
		if err := p.advance(); err != nil {
			return nil, err
		}
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "';'"); err != nil {
			return nil, err
		}
		return ast.NewVariableDeclaration(loc, typeExpr, name, init), nil

	case token.LeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "')'"); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LeftBrace, "'{'"); err != nil {
			return nil, err
		}
		body, err := p.parseStatementsUntilRBrace()
		if err != nil {
			return nil, err
		}
		return ast.NewFunctionDeclaration(loc, typeExpr, name, args, body), nil

	default:
		return nil, diag.New(diag.UnexpectedToken, p.cur.Location, "expected '=' or '(' in declaration, got %s", p.cur.Kind)
	}
}

func (p *Parser) parseArgList() ([]*ast.FunctionArgumentDeclaration, error) {
	var args []*ast.FunctionArgumentDeclaration
	if p.cur.Kind == token.RightParen {
		return args, nil
	}
	for {
		loc := p.cur.Location
		typeExpr, err := p.expectIdentifier("a parameter type")
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdentifier("a parameter name")
		if err != nil {
			return nil, err
		}
		args = append(args, ast.NewFunctionArgumentDeclaration(loc, typeExpr, name.Name))
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, nil
}

func (p *Parser) parseStatementsUntilRBrace() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for p.cur.Kind != token.RightBrace {
		if p.cur.Kind == token.EndOfFile {
			return nil, diag.New(diag.UnexpectedToken, p.cur.Location, "expected '}', got %s", p.cur.Kind)
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return stmts, nil
}

// parseStatement implements:
//
//	statement := "return" expression? ";"
//	           | type identifier "=" expression ";"         // local declaration
//	           | expression ( "=" expression )? ";"          // assignment or bare call
func (p *Parser) parseStatement() (ast.Stmt, error) {
	loc := p.cur.Location

	if p.cur.Kind == token.Return {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Semicolon {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return ast.NewReturn(loc, nil), nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "';'"); err != nil {
			return nil, err
		}
		return ast.NewReturn(loc, expr), nil
	}

	// Local variable declaration: identifier identifier "=" ...
	if p.cur.Kind == token.Identifier {
		save := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Kind == token.Identifier {
			name := p.cur.Lexeme
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Equals, "'='"); err != nil {
				return nil, err
			}
			init, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Semicolon, "';'"); err != nil {
				return nil, err
			}
			typeExpr := ast.NewIdentifier(save.Location, save.Lexeme)
			return ast.NewVariableDeclaration(loc, typeExpr, name, init), nil
		}
		// Not a declaration after all: re-synthesize the identifier as the
		// start of an expression and continue parsing postfix/binary ops
		// from exactly where the lookahead left off.
		expr, err := p.parsePostfixFrom(loc, ast.Expr(ast.NewIdentifier(save.Location, save.Lexeme)))
		if err != nil {
			return nil, err
		}
		expr, err = p.parseMultiplicativeFrom(expr)
		if err != nil {
			return nil, err
		}
		expr, err = p.parseBinaryFrom(expr, 0)
		if err != nil {
			return nil, err
		}
		return p.finishExprStatement(loc, expr)
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return p.finishExprStatement(loc, expr)
}

func (p *Parser) finishExprStatement(loc token.Location, expr ast.Expr) (ast.Stmt, error) {
	if p.cur.Kind == token.Equals {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "';'"); err != nil {
			return nil, err
		}
		return ast.NewAssignment(loc, expr, rhs), nil
	}

	call, ok := expr.(*ast.FunctionCall)
	if !ok {
		return nil, diag.New(diag.UnexpectedToken, loc, "expected '=' after expression used as a statement")
	}
	if _, err := p.expect(token.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return ast.NewExprStmt(loc, call), nil
}

// parseExpression := additive
func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parseAdditive()
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	return p.parseBinaryFrom(left, 0)
}

// parseBinaryFrom continues parsing level-0 operators (+/-), given that left
// has already been parsed; each right operand is parsed at level 1 (*, /)
// by parseMultiplicative. A minLevel above 0 returns left unchanged.
func (p *Parser) parseBinaryFrom(left ast.Expr, minLevel int) (ast.Expr, error) {
	if minLevel > 0 {
		return left, nil
	}
	for {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.Plus:
			op = ast.Add
		case token.Minus:
			op = ast.Sub
		default:
			return left, nil
		}
		loc := p.cur.Location
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(loc, op, left, right)
	}
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parsePrimaryWithPostfix()
	if err != nil {
		return nil, err
	}
	return p.parseMultiplicativeFrom(left)
}

func (p *Parser) parseMultiplicativeFrom(left ast.Expr) (ast.Expr, error) {
	for {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		default:
			return left, nil
		}
		loc := p.cur.Location
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePrimaryWithPostfix()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(loc, op, left, right)
	}
}

// parsePrimaryWithPostfix := "-"? atom (":" type | "(" callargs? ")")*
func (p *Parser) parsePrimaryWithPostfix() (ast.Expr, error) {
	loc := p.cur.Location
	if p.cur.Kind == token.Minus {
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parsePrimaryWithPostfix()
		if err != nil {
			return nil, err
		}
		return ast.NewNegation(loc, inner), nil
	}

	atom, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	return p.parsePostfixFrom(loc, atom)
}

func (p *Parser) parsePostfixFrom(loc token.Location, atom ast.Expr) (ast.Expr, error) {
	for {
		switch p.cur.Kind {
		case token.Colon:
			if err := p.advance(); err != nil {
				return nil, err
			}
			target, err := p.expectIdentifier("a type name")
			if err != nil {
				return nil, err
			}
			atom = ast.NewTypeCast(loc, atom, target)
		case token.LeftParen:
			if err := p.advance(); err != nil {
				return nil, err
			}
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RightParen, "')'"); err != nil {
				return nil, err
			}
			atom = ast.NewFunctionCall(loc, atom, args)
		default:
			return atom, nil
		}
	}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	var args []ast.Expr
	if p.cur.Kind == token.RightParen {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// atom := identifier | integer | "(" expression ")"
func (p *Parser) parseAtom() (ast.Expr, error) {
	loc := p.cur.Location
	switch p.cur.Kind {
	case token.Identifier:
		name := p.cur.Lexeme
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewIdentifier(loc, name), nil
	case token.IntegerLiteral:
		v := p.cur.IntValue
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewInteger(loc, v), nil
	case token.LeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, diag.New(diag.UnexpectedToken, loc, "expected an expression, got %s", p.cur.Kind)
	}
}
