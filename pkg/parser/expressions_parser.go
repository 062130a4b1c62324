package parser

import (
	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/lexer"
)

// Binding power of the infix operators, lowest first.
const (
	_ int = iota
	precOr
	precAnd
	precEquality
	precComparison
	precSum
	precProduct
	precPower
)

var binaryOperators = map[lexer.TokenType]struct {
	op   ast.BinaryOperator
	prec int
}{
	lexer.OR:       {ast.OpOr, precOr},
	lexer.AND:      {ast.OpAnd, precAnd},
	lexer.EQ:       {ast.OpEqual, precEquality},
	lexer.NOT_EQ:   {ast.OpNotEqual, precEquality},
	lexer.LT:       {ast.OpLess, precComparison},
	lexer.GT:       {ast.OpGreater, precComparison},
	lexer.LTE:      {ast.OpLessEqual, precComparison},
	lexer.GTE:      {ast.OpGreaterEqual, precComparison},
	lexer.PLUS:     {ast.OpPlus, precSum},
	lexer.MINUS:    {ast.OpMinus, precSum},
	lexer.ASTERISK: {ast.OpMultiply, precProduct},
	lexer.SLASH:    {ast.OpDivide, precProduct},
	lexer.PERCENT:  {ast.OpModulo, precProduct},
	lexer.CARET:    {ast.OpPower, precPower},
}

// parseExpression parses an assignment or any lower-level expression.
// Assignment is right associative.
func (p *parser) parseExpression() (ast.Expression, error) {
	left, err := p.parseBinary(precOr)
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.ASSIGN) {
		return left, nil
	}
	target, ok := left.(ast.AssignmentTarget)
	if !ok {
		return nil, p.errorf("Invalid assignment target %s", left.NodeType())
	}
	p.advance()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewAssignment(target, value), left.Line()), nil
}

func (p *parser) parseBinary(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		info, ok := binaryOperators[tok.Type]
		if !ok || info.prec < minPrec {
			return left, nil
		}
		p.advance()
		next := info.prec + 1
		if tok.Type == lexer.CARET {
			next = info.prec
		}
		right, err := p.parseBinary(next)
		if err != nil {
			return nil, err
		}
		left = ast.WithLine(ast.NewBinaryExpression(info.op, left, right), tok.Line)
	}
}

func (p *parser) parseUnary() (ast.Expression, error) {
	if !p.at(lexer.MINUS) {
		return p.parsePostfix()
	}
	line := p.advance().Line
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewUnaryExpression(ast.OpNegate, operand), line), nil
}

// parsePostfix applies calls, member access and indexing. A '(' or '[' only
// continues the expression when it sits on the line the operand ended on,
// so a new statement may start with either.
func (p *parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		switch {
		case tok.Type == lexer.LPAREN && tok.Line == p.prevLine():
			args, err := p.parseCallArguments()
			if err != nil {
				return nil, err
			}
			expr = ast.WithLine(ast.NewFunctionCall(expr, args), tok.Line)
		case tok.Type == lexer.LBRACKET && tok.Line == p.prevLine():
			p.advance()
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET, "after index"); err != nil {
				return nil, err
			}
			expr = ast.WithLine(ast.NewIndexExpression(expr, index), tok.Line)
		case tok.Type == lexer.DOT:
			p.advance()
			member, err := p.expect(lexer.IDENT, "after '.'")
			if err != nil {
				return nil, err
			}
			expr = ast.WithLine(ast.NewMemberAccess(expr, member.Literal), tok.Line)
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseCallArguments() ([]ast.Expression, error) {
	if _, err := p.expect(lexer.LPAREN, "before arguments"); err != nil {
		return nil, err
	}
	args := make([]ast.Expression, 0)
	err := p.parseList(lexer.RPAREN, "arguments", func() error {
		arg, err := p.parseExpression()
		if err != nil {
			return err
		}
		args = append(args, arg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.TRUE, lexer.FALSE:
		return p.parseLiteral()
	case lexer.IDENT:
		p.advance()
		return ast.WithLine(ast.NewIdentifier(tok.Literal), tok.Line), nil
	case lexer.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "after a sub-expression"); err != nil {
			return nil, err
		}
		return expr, nil
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.BAR:
		return p.parseLengthExpression()
	case lexer.LBRACE:
		return p.parseBlockExpression()
	case lexer.VAR:
		return p.parseVariableDeclaration()
	case lexer.IF:
		return p.parseIfExpression()
	case lexer.LOOP:
		return p.parseLoopExpression()
	case lexer.FUN:
		return p.parseFunctionDefinition()
	case lexer.NEW:
		return p.parseInstantiation()
	case lexer.INTERNAL:
		return p.parseInternalCall()
	}
	return nil, p.errorf("Expected an expression, got %s", tok)
}
