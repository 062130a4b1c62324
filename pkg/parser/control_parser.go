package parser

import (
	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/lexer"
)

func (p *parser) parseIfExpression() (*ast.IfExpression, error) {
	line := p.cur().Line
	branches := make([]*ast.IfBranch, 0)
	var elseBody *ast.BlockExpression
	for {
		p.advance() // 'if'
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlockExpression()
		if err != nil {
			return nil, err
		}
		branches = append(branches, &ast.IfBranch{Condition: cond, Body: body})
		if !p.accept(lexer.ELSE) {
			break
		}
		if p.at(lexer.IF) {
			continue
		}
		if elseBody, err = p.parseBlockExpression(); err != nil {
			return nil, err
		}
		if p.at(lexer.ELSE) {
			return nil, p.errorf("A conditional expression cannot have more than one default branch")
		}
		break
	}
	return ast.WithLine(ast.NewIfExpression(branches, elseBody), line), nil
}

// parseLoopExpression parses
// `loop i [excl|incl] start -> [excl|incl] end [step s] { ... }`.
// Bounds are inclusive unless marked excl and the step defaults to 1.
func (p *parser) parseLoopExpression() (*ast.LoopExpression, error) {
	line := p.advance().Line
	variable, err := p.expect(lexer.IDENT, "as loop variable")
	if err != nil {
		return nil, err
	}
	start, err := p.parseLoopBound()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ARROW, "between loop bounds"); err != nil {
		return nil, err
	}
	end, err := p.parseLoopBound()
	if err != nil {
		return nil, err
	}
	var step ast.Expression = ast.WithLine(ast.NewIntegerLiteral(1), line)
	if p.accept(lexer.STEP) {
		if step, err = p.parseBinary(precOr); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlockExpression()
	if err != nil {
		return nil, err
	}
	return ast.WithLine(ast.NewLoopExpression(variable.Literal, start, end, step, body), line), nil
}

func (p *parser) parseLoopBound() (ast.LoopBound, error) {
	exclusive := false
	switch {
	case p.accept(lexer.EXCL):
		exclusive = true
	case p.accept(lexer.INCL):
	}
	value, err := p.parseBinary(precOr)
	if err != nil {
		return ast.LoopBound{}, err
	}
	return ast.LoopBound{Value: value, Exclusive: exclusive}, nil
}
