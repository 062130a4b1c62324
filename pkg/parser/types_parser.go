package parser

import (
	"avo/interpreter-go/pkg/lexer"
	"avo/interpreter-go/pkg/types"
)

var primitiveTypes = map[lexer.TokenType]types.DataType{
	lexer.KW_INT:    types.Integer,
	lexer.KW_FLOAT:  types.Float,
	lexer.KW_STRING: types.String,
	lexer.KW_BOOL:   types.Boolean,
	lexer.KW_VOID:   types.Void,
	lexer.QUESTION:  types.Inferred,
}

// parseDataType accepts a primitive keyword, `?`, a complex type name,
// `[T]` for arrays and `[(A, B) -> R]` for lambdas.
func (p *parser) parseDataType() (types.DataType, error) {
	tok := p.cur()
	if dt, ok := primitiveTypes[tok.Type]; ok {
		p.advance()
		return dt, nil
	}
	switch tok.Type {
	case lexer.IDENT:
		p.advance()
		return types.Record{Name: tok.Literal}, nil
	case lexer.LBRACKET:
		p.advance()
		if p.at(lexer.LPAREN) {
			return p.parseLambdaType()
		}
		elem, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET, "after array element type"); err != nil {
			return nil, err
		}
		return types.ArrayOf(elem), nil
	}
	return nil, p.errorf("Invalid data type %s", tok)
}

func (p *parser) parseLambdaType() (types.DataType, error) {
	p.advance()
	params := make([]types.DataType, 0)
	err := p.parseList(lexer.RPAREN, "parameter types", func() error {
		dt, err := p.parseDataType()
		if err != nil {
			return err
		}
		params = append(params, dt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ARROW, "in lambda type"); err != nil {
		return nil, err
	}
	returns, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBRACKET, "after lambda type"); err != nil {
		return nil, err
	}
	return types.FunctionOf(returns, params...), nil
}
