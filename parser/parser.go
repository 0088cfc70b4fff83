// Package parser implements a recursive-descent parser that turns a bit-DSL
// token stream into the tagged-variant AST of package ast.
//
// https://en.wikipedia.org/wiki/Recursive_descent_parser
package parser

import (
	"fmt"
	"strconv"

	"bitforge/ast"
	"bitforge/token"
)

// rejectedOperators are binop tokens the grammar recognizes (spec §6) but
// the evaluator does not implement. The parser fails fast with a named
// error instead of letting them reach analysis.
var rejectedOperators = map[token.TokenType]bool{
	token.EQUAL_EQUAL: true,
	token.NOT_EQUAL:    true,
	token.AND_AND:      true,
	token.OR_OR:        true,
}

// Parser holds the token stream and the parser's current read position.
// The position always points one token past the one last consumed.
type Parser struct {
	tokens   []token.Token
	position int
}

// Make constructs a Parser over the given token stream.
func Make(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, position: 0}
}

func (p *Parser) peek() token.Token {
	return p.tokens[p.position]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.position-1]
}

func (p *Parser) advance() token.Token {
	if !p.isFinished() {
		p.position++
	}
	return p.previous()
}

func (p *Parser) isFinished() bool {
	return p.peek().TokenType == token.EOF
}

func (p *Parser) checkType(tokenType token.TokenType) bool {
	if p.isFinished() {
		return tokenType == token.EOF
	}
	return p.peek().TokenType == tokenType
}

func (p *Parser) isMatch(tokenTypes ...token.TokenType) bool {
	for _, tokenType := range tokenTypes {
		if p.checkType(tokenType) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tokenType token.TokenType, errorMessage string) (token.Token, error) {
	if p.checkType(tokenType) {
		return p.advance(), nil
	}
	current := p.peek()
	return token.Token{}, CreateSyntaxError(current.Line, current.Column, errorMessage)
}

// Parse parses the entire token stream into a Program. Unlike the
// teacher's Parse, which collects every recoverable error and keeps
// going, a bit-DSL source file is small enough, and errors compound
// quickly enough across function bodies, that the parser here stops at
// the first error - matching spec §7's "first error terminates the run".
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{}
	for !p.isFinished() {
		fn, err := p.functionDecl()
		if err != nil {
			return nil, err
		}
		program.Funcs = append(program.Funcs, fn)
	}
	return program, nil
}

func (p *Parser) functionDecl() (*ast.Func, error) {
	if _, err := p.consume(token.FUNCTION, "expected 'function'"); err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}

	fn := &ast.Func{Name: name}
	if p.isMatch(token.COLON) {
		data, err := p.dataLiteral()
		if err != nil {
			return nil, err
		}
		if data.Kind != token.BitKind {
			return nil, CreateSyntaxError(data.Line, data.Column, "function argument bit-width must be a decimal literal")
		}
		bits, convErr := strconv.Atoi(data.Digits)
		if convErr != nil || bits <= 0 {
			return nil, CreateSyntaxError(data.Line, data.Column, fmt.Sprintf("invalid argument bit-width: %q", data.Digits))
		}
		fn.HasArgBits = true
		fn.ArgBits = bits
	}

	if _, err := p.consume(token.LCUR, "expected '{' to open function body"); err != nil {
		return nil, err
	}

	for !p.checkType(token.RCUR) && !p.isFinished() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		fn.Body = append(fn.Body, stmt)
	}
	if _, err := p.consume(token.RCUR, "expected '}' to close function body"); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	if p.isMatch(token.RETURN) {
		value, err := p.primitive()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.SEMICOLON, "expected ';' after return"); err != nil {
			return nil, err
		}
		return ast.Return{Value: value}, nil
	}
	return p.assignment()
}

func (p *Parser) assignment() (ast.Stmt, error) {
	target, err := p.assignmentTarget()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.ASSIGN, "expected '=' in assignment"); err != nil {
		return nil, err
	}
	value, err := p.rhs()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after assignment"); err != nil {
		return nil, err
	}
	return ast.Assign{Target: target, Value: value}, nil
}

// assignmentTarget parses `ident [index | slice]` for the left-hand side of
// an assignment statement.
func (p *Parser) assignmentTarget() (ast.Expr, error) {
	name, err := p.consume(token.IDENTIFIER, "expected identifier")
	if err != nil {
		return nil, err
	}
	if p.checkType(token.LBRACKET) {
		return p.indexOrSlice(name)
	}
	return ast.Variable{Name: name}, nil
}

// rhs parses the four alternatives of the grammar's `rhs` production.
func (p *Parser) rhs() (ast.Expr, error) {
	if p.isMatch(token.TILDE) {
		opTok := p.previous()
		operand, err := p.primitive()
		if err != nil {
			return nil, err
		}
		return ast.Not{Operand: operand, Op: opTok}, nil
	}

	if p.checkType(token.IDENTIFIER) && p.peekNext().TokenType == token.LPA {
		return p.callExpr()
	}

	first, err := p.primitive()
	if err != nil {
		return nil, err
	}

	if p.checkType(token.CONCAT) {
		operands := []ast.Primitive{first}
		for p.isMatch(token.CONCAT) {
			next, err := p.primitive()
			if err != nil {
				return nil, err
			}
			operands = append(operands, next)
		}
		return ast.Concat{Operands: operands}, nil
	}

	if p.isBinop() {
		opTok := p.advance()
		if rejectedOperators[opTok.TokenType] {
			return nil, CreateSyntaxError(opTok.Line, opTok.Column, fmt.Sprintf("invalid binary operator: %q", opTok.Lexeme))
		}
		right, err := p.primitive()
		if err != nil {
			return nil, err
		}
		return ast.Binary{Left: first, Op: opTok, Right: right}, nil
	}

	return first, nil
}

func (p *Parser) isBinop() bool {
	for _, tt := range token.BinaryOperators {
		if p.checkType(tt) {
			return true
		}
	}
	return false
}

func (p *Parser) callExpr() (ast.Expr, error) {
	callee, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPA, "expected '(' in call"); err != nil {
		return nil, err
	}
	arg, err := p.primitive()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPA, "expected ')' to close call"); err != nil {
		return nil, err
	}
	return ast.Call{Callee: callee, Arg: arg}, nil
}

// primitive parses `ident [index | slice] | data-literal`.
func (p *Parser) primitive() (ast.Primitive, error) {
	if p.checkType(token.DATA) {
		data, err := p.dataLiteral()
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	name, err := p.consume(token.IDENTIFIER, "expected identifier or data literal")
	if err != nil {
		return nil, err
	}
	if p.checkType(token.LBRACKET) {
		expr, err := p.indexOrSlice(name)
		if err != nil {
			return nil, err
		}
		return expr.(ast.Primitive), nil
	}
	if p.checkType(token.LPA) {
		current := p.peek()
		return nil, CreateSyntaxError(current.Line, current.Column, "primitive expression cannot have function call")
	}
	return ast.Variable{Name: name}, nil
}

// indexOrSlice parses `'[' data ']'` or `'[' [data] ':' [data] ']'`,
// disambiguating on whether a ':' appears before the closing bracket.
func (p *Parser) indexOrSlice(name token.Token) (ast.Expr, error) {
	if _, err := p.consume(token.LBRACKET, "expected '['"); err != nil {
		return nil, err
	}

	var start ast.Bound
	if !p.checkType(token.COLON) {
		data, err := p.dataLiteral()
		if err != nil {
			return nil, err
		}
		start = ast.Bound{Literal: &data}
	}

	if p.isMatch(token.COLON) {
		var end ast.Bound
		if !p.checkType(token.RBRACKET) {
			data, err := p.dataLiteral()
			if err != nil {
				return nil, err
			}
			end = ast.Bound{Literal: &data}
		}
		if _, err := p.consume(token.RBRACKET, "expected ']' to close slice"); err != nil {
			return nil, err
		}
		return ast.VariableSlice{Name: name, Start: start, End: end}, nil
	}

	if _, err := p.consume(token.RBRACKET, "expected ']' to close index"); err != nil {
		return nil, err
	}
	if start.Omitted() {
		current := p.peek()
		return nil, CreateSyntaxError(current.Line, current.Column, "expected index value")
	}
	return ast.VariableIndex{Name: name, Index: *start.Literal}, nil
}

func (p *Parser) dataLiteral() (ast.Data, error) {
	tok, err := p.consume(token.DATA, "expected data literal")
	if err != nil {
		return ast.Data{}, err
	}
	lit, ok := tok.Literal.(token.DataLiteral)
	if !ok {
		return ast.Data{}, CreateSyntaxError(tok.Line, tok.Column, "malformed data literal")
	}
	return ast.Data{Kind: lit.Kind, Digits: lit.Digits, Line: tok.Line, Column: tok.Column}, nil
}

// peekNext looks one token past the current position without consuming
// anything; used only to disambiguate `ident(` call syntax from a bare
// identifier primitive.
func (p *Parser) peekNext() token.Token {
	if p.position+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.position+1]
}
