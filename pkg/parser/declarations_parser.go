package parser

import (
	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/lexer"
	"avo/interpreter-go/pkg/types"
)

// parseVariableDeclaration parses `var name[: type] [= value]`. A missing
// type annotation means the type is inferred from the value.
func (p *parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	line := p.advance().Line
	name, err := p.expect(lexer.IDENT, "as variable name")
	if err != nil {
		return nil, err
	}
	var dataType types.DataType = types.Inferred
	if p.accept(lexer.COLON) {
		if dataType, err = p.parseDataType(); err != nil {
			return nil, err
		}
	}
	var value ast.Expression
	if p.accept(lexer.ASSIGN) {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return ast.WithLine(ast.NewVariableDeclaration(name.Literal, dataType, value), line), nil
}

// parseFunctionDefinition parses `fun [name][(p: T, ...)] [-> R] { ... }`.
// Without an arrow the function returns void.
func (p *parser) parseFunctionDefinition() (*ast.FunctionDefinition, error) {
	line := p.advance().Line
	name := ""
	if p.at(lexer.IDENT) {
		name = p.advance().Literal
	}

	params := make([]*ast.Parameter, 0)
	if p.accept(lexer.LPAREN) {
		err := p.parseList(lexer.RPAREN, "parameters", func() error {
			id, err := p.expect(lexer.IDENT, "as parameter name")
			if err != nil {
				return err
			}
			if _, err := p.expect(lexer.COLON, "after parameter name"); err != nil {
				return err
			}
			dt, err := p.parseDataType()
			if err != nil {
				return err
			}
			params = append(params, &ast.Parameter{Name: id.Literal, Type: dt})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var returnType types.DataType = types.Void
	if p.accept(lexer.ARROW) {
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		returnType = dt
	}

	body, err := p.parseBlockExpression()
	if err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewFunctionDefinition(name, params, returnType, body), line), nil
}
