package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType identifies the kind of a token.
type TokenType int

const (
	EOF TokenType = iota

	IDENT  // counter, main, Point
	INT    // 42
	FLOAT  // 3.25
	STRING // "text"

	// Keywords
	VAR
	IF
	ELSE
	FUN
	TRUE
	FALSE
	RETURN
	CONTINUE
	BREAK
	LOOP
	EXCL
	INCL
	STEP
	KW_INT
	KW_FLOAT
	KW_STRING
	KW_BOOL
	KW_VOID
	COMPLEX
	NEW
	INTERNAL
	MODULE
	IMPORT

	// Symbols
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	COLON     // :
	SEMICOLON // ;
	ASSIGN    // =
	AT        // @
	AMPERSAND // &
	PLUS      // +
	MINUS     // -
	SLASH     // /
	ASTERISK  // *
	LT        // <
	GT        // >
	DOT       // .
	CARET     // ^
	QUESTION  // ?
	PERCENT   // %
	BAR       // |
	BANG      // !

	// Compound symbols
	ARROW  // ->
	EQ     // ==
	NOT_EQ // !=
	GTE    // >=
	LTE    // <=
	AND    // &&
	OR     // ||
)

var keywords = map[string]TokenType{
	"var":      VAR,
	"if":       IF,
	"else":     ELSE,
	"fun":      FUN,
	"true":     TRUE,
	"false":    FALSE,
	"return":   RETURN,
	"continue": CONTINUE,
	"break":    BREAK,
	"loop":     LOOP,
	"excl":     EXCL,
	"incl":     INCL,
	"step":     STEP,
	"int":      KW_INT,
	"float":    KW_FLOAT,
	"string":   KW_STRING,
	"bool":     KW_BOOL,
	"void":     KW_VOID,
	"complex":  COMPLEX,
	"new":      NEW,
	"internal": INTERNAL,
	"module":   MODULE,
	"import":   IMPORT,
}

var symbols = map[byte]TokenType{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	',': COMMA,
	':': COLON,
	';': SEMICOLON,
	'=': ASSIGN,
	'@': AT,
	'&': AMPERSAND,
	'+': PLUS,
	'-': MINUS,
	'/': SLASH,
	'*': ASTERISK,
	'<': LT,
	'>': GT,
	'.': DOT,
	'^': CARET,
	'?': QUESTION,
	'%': PERCENT,
	'|': BAR,
	'!': BANG,
}

var compounds = map[string]TokenType{
	"->": ARROW,
	"==": EQ,
	"!=": NOT_EQ,
	">=": GTE,
	"<=": LTE,
	"&&": AND,
	"||": OR,
}

var typeNames = map[TokenType]string{
	EOF:    "EOF",
	IDENT:  "identifier",
	INT:    "integer literal",
	FLOAT:  "float literal",
	STRING: "string literal",
}

func init() {
	for word, tt := range keywords {
		typeNames[tt] = "'" + word + "'"
	}
	for ch, tt := range symbols {
		typeNames[tt] = "'" + string(ch) + "'"
	}
	for text, tt := range compounds {
		typeNames[tt] = "'" + text + "'"
	}
}

func (tt TokenType) String() string {
	if name, ok := typeNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(tt))
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// Token is a single lexeme with the line it starts on.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "EOF"
	}
	return "'" + t.Literal + "'"
}

// Error reports malformed input.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Lexer splits Avo source text into tokens.
type Lexer struct {
	input string
	pos   int
	line  int
}

// New returns a lexer positioned at the start of input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1}
}

// Tokenize lexes the whole input. The result always ends with an EOF token.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) peekChar(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch {
		case ch == '\n':
			l.line++
			l.pos++
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			if !unicode.IsSpace(r) {
				return
			}
			l.pos += size
		}
	}
}

// NextToken returns the next token, or an EOF token at the end of input.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespaceAndComments()
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Line: l.line}, nil
	}

	ch := l.input[l.pos]
	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	switch {
	case ch == '"':
		return l.readString()
	case isDigit(ch):
		return l.readNumber(), nil
	case isIdentStart(r):
		ident := l.readIdentifier()
		return Token{Type: LookupIdent(ident), Literal: ident, Line: l.line}, nil
	}

	if l.pos+1 < len(l.input) {
		if tt, ok := compounds[l.input[l.pos:l.pos+2]]; ok {
			tok := Token{Type: tt, Literal: l.input[l.pos : l.pos+2], Line: l.line}
			l.pos += 2
			return tok, nil
		}
	}
	if tt, ok := symbols[ch]; ok {
		l.pos++
		return Token{Type: tt, Literal: string(ch), Line: l.line}, nil
	}
	return Token{}, &Error{Line: l.line, Message: fmt.Sprintf("Unknown symbol: %c", r)}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentStart(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}
	return l.input[start:l.pos]
}

// readNumber reads digits with at most one fractional part. A dot that is not
// followed by a digit is left for the member access operator.
func (l *Lexer) readNumber() Token {
	start := l.pos
	for isDigit(l.peekChar(0)) {
		l.pos++
	}
	tt := INT
	if l.peekChar(0) == '.' && isDigit(l.peekChar(1)) {
		tt = FLOAT
		l.pos++
		for isDigit(l.peekChar(0)) {
			l.pos++
		}
	}
	return Token{Type: tt, Literal: l.input[start:l.pos], Line: l.line}
}

func (l *Lexer) readString() (Token, error) {
	startLine := l.line
	l.pos++ // opening quote
	var out strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Token{}, &Error{Line: startLine, Message: "Unterminated string literal"}
		}
		ch := l.input[l.pos]
		switch ch {
		case '"':
			l.pos++
			return Token{Type: STRING, Literal: out.String(), Line: startLine}, nil
		case '\n':
			l.line++
			out.WriteByte(ch)
			l.pos++
		case '\\':
			next := l.peekChar(1)
			switch next {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case '"':
				out.WriteByte('"')
			case '\\':
				out.WriteByte('\\')
			default:
				return Token{}, &Error{Line: l.line, Message: fmt.Sprintf("Invalid escape sequence: \\%c", next)}
			}
			l.pos += 2
		default:
			out.WriteByte(ch)
			l.pos++
		}
	}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
