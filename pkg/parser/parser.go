package parser

import (
	"fmt"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/lexer"
)

// SyntaxError reports source that does not form a valid program.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParseModule parses Avo source into an AST module. Lexer failures are
// returned as *lexer.Error, everything else as *SyntaxError.
func ParseModule(source []byte) (*ast.Module, error) {
	tokens, err := lexer.Tokenize(string(source))
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseModule()
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// prevLine is the line of the most recently consumed token.
func (p *parser) prevLine() int {
	if p.pos == 0 {
		return p.cur().Line
	}
	return p.tokens[p.pos-1].Line
}

func (p *parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if tok.Type != lexer.EOF {
		p.pos++
	}
	return tok
}

func (p *parser) at(tt lexer.TokenType) bool {
	return p.cur().Type == tt
}

// accept consumes the current token when it has type tt.
func (p *parser) accept(tt lexer.TokenType) bool {
	if p.at(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(tt lexer.TokenType, context string) (lexer.Token, error) {
	if !p.at(tt) {
		return lexer.Token{}, p.errorf("Expected %s %s, got %s", tt, context, p.cur())
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: p.cur().Line, Message: fmt.Sprintf(format, args...)}
}

// parseList parses comma separated items up to and including the closing
// token. A trailing comma is rejected.
func (p *parser) parseList(closing lexer.TokenType, what string, item func() error) error {
	for !p.at(closing) {
		if p.at(lexer.EOF) {
			return p.errorf("Reached end of file while parsing %s", what)
		}
		if err := item(); err != nil {
			return err
		}
		if !p.accept(lexer.COMMA) {
			break
		}
		if p.at(closing) {
			return p.errorf("Expected more %s after ','", what)
		}
	}
	_, err := p.expect(closing, "after "+what)
	return err
}
