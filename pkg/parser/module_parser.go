package parser

import (
	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/lexer"
)

// DefaultModuleName names a module that has no module header.
const DefaultModuleName = "main"

func (p *parser) parseModule() (*ast.Module, error) {
	name := DefaultModuleName
	if p.accept(lexer.MODULE) {
		tok, err := p.expect(lexer.IDENT, "after 'module'")
		if err != nil {
			return nil, err
		}
		name = tok.Literal
	}

	imports := make([]*ast.Import, 0)
	seen := make(map[string]bool)
	for p.skipSeparators(); p.at(lexer.IMPORT); p.skipSeparators() {
		line := p.advance().Line
		tok, err := p.expect(lexer.IDENT, "after 'import'")
		if err != nil {
			return nil, err
		}
		if seen[tok.Literal] {
			return nil, &SyntaxError{Line: line, Message: "Duplicate import of module " + tok.Literal}
		}
		seen[tok.Literal] = true
		imports = append(imports, ast.WithLine(ast.NewImport(tok.Literal), line))
	}

	body := make([]ast.Node, 0)
	for p.skipSeparators(); !p.at(lexer.EOF); p.skipSeparators() {
		node, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, node)
	}
	return ast.WithLine(ast.NewModule(name, imports, body), 1), nil
}

func (p *parser) skipSeparators() {
	for p.accept(lexer.SEMICOLON) {
	}
}
