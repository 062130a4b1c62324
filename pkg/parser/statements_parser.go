package parser

import (
	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/lexer"
)

func (p *parser) parseStatement() (ast.Node, error) {
	switch p.cur().Type {
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.BREAK:
		return ast.WithLine(ast.NewBreakStatement(), p.advance().Line), nil
	case lexer.CONTINUE:
		return ast.WithLine(ast.NewContinueStatement(), p.advance().Line), nil
	case lexer.COMPLEX:
		return p.parseRecordDefinition()
	case lexer.MODULE, lexer.IMPORT:
		return nil, p.errorf("%s must appear at the start of a module", p.cur())
	default:
		return p.parseExpression()
	}
}

// parseReturnStatement treats a return followed by a closing brace, a
// separator, or a token on a later line as returning void.
func (p *parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	line := p.advance().Line
	switch {
	case p.at(lexer.RBRACE), p.at(lexer.SEMICOLON), p.at(lexer.EOF), p.cur().Line != line:
		return ast.WithLine(ast.NewReturnStatement(nil), line), nil
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewReturnStatement(value), line), nil
}

func (p *parser) parseBlockExpression() (*ast.BlockExpression, error) {
	open, err := p.expect(lexer.LBRACE, "at the start of a block")
	if err != nil {
		return nil, err
	}
	body := make([]ast.Node, 0)
	for p.skipSeparators(); !p.at(lexer.RBRACE); p.skipSeparators() {
		if p.at(lexer.EOF) {
			return nil, p.errorf("Reached end of file while parsing block starting on line %d", open.Line)
		}
		node, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, node)
	}
	p.advance()
	return ast.WithLine(ast.NewBlockExpression(body), open.Line), nil
}

// parseRecordDefinition parses `complex Name { field: type, ... }`. Commas
// between fields are optional.
func (p *parser) parseRecordDefinition() (*ast.RecordDefinition, error) {
	line := p.advance().Line
	name, err := p.expect(lexer.IDENT, "after 'complex'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBRACE, "after complex type name"); err != nil {
		return nil, err
	}
	fields := make([]*ast.FieldDefinition, 0)
	for !p.accept(lexer.RBRACE) {
		if p.at(lexer.EOF) {
			return nil, p.errorf("Reached end of file while parsing complex type %s", name.Literal)
		}
		fieldName, err := p.expect(lexer.IDENT, "as a field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "after field name"); err != nil {
			return nil, err
		}
		fieldType, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldDefinition{Name: fieldName.Literal, Type: fieldType, Line: fieldName.Line})
		p.accept(lexer.COMMA)
	}
	return ast.WithLine(ast.NewRecordDefinition(name.Literal, fields), line), nil
}
