package parser

import (
	"strconv"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/lexer"
)

func (p *parser) parseLiteral() (ast.Expression, error) {
	tok := p.advance()
	switch tok.Type {
	case lexer.INT:
		val, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, &SyntaxError{Line: tok.Line, Message: "Integer literal out of range: " + tok.Literal}
		}
		return ast.WithLine(ast.NewIntegerLiteral(val), tok.Line), nil
	case lexer.FLOAT:
		val, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, &SyntaxError{Line: tok.Line, Message: "Invalid float literal: " + tok.Literal}
		}
		return ast.WithLine(ast.NewFloatLiteral(val), tok.Line), nil
	case lexer.STRING:
		return ast.WithLine(ast.NewStringLiteral(tok.Literal), tok.Line), nil
	default:
		return ast.WithLine(ast.NewBooleanLiteral(tok.Type == lexer.TRUE), tok.Line), nil
	}
}

func (p *parser) parseArrayLiteral() (*ast.ArrayLiteral, error) {
	line := p.advance().Line
	elements := make([]ast.Expression, 0)
	err := p.parseList(lexer.RBRACKET, "array elements", func() error {
		elem, err := p.parseExpression()
		if err != nil {
			return err
		}
		elements = append(elements, elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewArrayLiteral(elements), line), nil
}

// parseLengthExpression parses `|e|`. The operand stops at the closing bar
// because '|' is not a binary operator.
func (p *parser) parseLengthExpression() (*ast.LengthExpression, error) {
	line := p.advance().Line
	operand, err := p.parseBinary(precOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.BAR, "to close a length expression"); err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewLengthExpression(operand), line), nil
}

// parseInstantiation parses `new Name { field = value, ... }`. Commas between
// initializers are optional.
func (p *parser) parseInstantiation() (*ast.Instantiation, error) {
	line := p.advance().Line
	name, err := p.expect(lexer.IDENT, "after 'new'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "after complex type name"); err != nil {
		return nil, err
	}
	fields := make([]*ast.FieldInitializer, 0)
	for !p.accept(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			return nil, p.errorf("Reached end of file while parsing instantiation of %s", name.Literal)
		}
		field, err := p.expect(lexer.IDENT, "as a field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ASSIGN, "after field name"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldInitializer{Name: field.Literal, Value: value, Line: field.Line})
		p.accept(lexer.COMMA)
	}
	return ast.WithLine(ast.NewInstantiation(name.Literal, fields), line), nil
}

func (p *parser) parseInternalCall() (*ast.InternalCall, error) {
	line := p.advance().Line
	name, err := p.expect(lexer.IDENT, "as internal function name")
	if err != nil {
		return nil, err
	}
	args, err := p.parseCallArguments()
	if err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewInternalCall(name.Literal, args), line), nil
}
