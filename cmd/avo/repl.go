package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/interpreter"
	"avo/interpreter-go/pkg/native"
	"avo/interpreter-go/pkg/parser"
	"avo/interpreter-go/pkg/report"
	"avo/interpreter-go/pkg/runtime"
)

const (
	replPrompt         = "avo> "
	replContinuePrompt = "...> "
	replHistoryFile    = "repl_history"
)

var replKeywords = []string{
	"var", "if", "else", "fun", "true", "false", "return", "continue", "break",
	"loop", "excl", "incl", "step", "int", "float", "string", "bool", "void",
	"complex", "new", "internal",
}

// session keeps one root scope alive across inputs.
type session struct {
	interp  *interpreter.Interpreter
	natives *native.Registry
	scope   *runtime.Scope
	out     io.Writer
	errors  report.Handler
}

func newSession(out io.Writer, in io.Reader, logger *slog.Logger) *session {
	natives := native.Default(out, in)
	return &session{
		interp: interpreter.NewWithOptions(interpreter.Options{
			Natives:      natives,
			Logger:       logger,
			MaxCallDepth: interpreter.DefaultMaxCallDepth,
		}),
		natives: natives,
		scope:   runtime.NewScope(nil),
		out:     out,
		errors:  report.NewBoxed(out),
	}
}

// eval runs one complete input and prints the value of its last node unless
// it is void or a named function definition.
func (s *session) eval(source string) error {
	mod, err := parser.ParseModule([]byte(source))
	if err != nil {
		return err
	}
	if len(mod.Imports) > 0 {
		return errors.New("imports are not available in the REPL")
	}
	var last runtime.Value
	for _, node := range mod.Body {
		value, err := s.interp.Evaluate(node, s.scope)
		if err != nil {
			return err
		}
		last = value
		if def, ok := node.(*ast.FunctionDefinition); ok && def.Name != "" {
			last = nil
		}
	}
	if last != nil && last.Kind() != runtime.KindVoid {
		fmt.Fprintln(s.out, runtime.Inspect(last))
	}
	return nil
}

// command handles a ':' input and reports whether the REPL should exit.
func (s *session) command(cmd string) bool {
	switch cmd {
	case ":quit", ":q":
		return true
	case ":scope":
		names := s.scope.Names()
		if len(names) == 0 {
			fmt.Fprintln(s.out, "(empty scope)")
			return false
		}
		for _, name := range names {
			sym, _ := s.scope.Local(name)
			fmt.Fprintf(s.out, "  %s: %s\n", name, sym.SymbolKind())
		}
	case ":help":
		fmt.Fprintln(s.out, "  :scope   list the names bound in the session")
		fmt.Fprintln(s.out, "  :quit    leave the REPL")
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
	return false
}

// complete suggests keywords and bound names, or host functions after
// `internal`.
func (s *session) complete(line string) []string {
	if line == "" || strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
		return nil
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil
	}
	word := words[len(words)-1]
	prefix := line[:len(line)-len(word)]

	var candidates []string
	if len(words) > 1 && words[len(words)-2] == "internal" {
		candidates = s.natives.Names()
	} else {
		candidates = append(append([]string{}, replKeywords...), s.scope.Names()...)
	}
	var matches []string
	for _, c := range candidates {
		if strings.HasPrefix(c, word) {
			matches = append(matches, prefix+c)
		}
	}
	return matches
}

// needsMoreInput reports whether input still has unclosed braces, brackets
// or parentheses outside string literals.
func needsMoreInput(input string) bool {
	depth := 0
	inString, escaped, inComment := false, false, false
	for _, ch := range input {
		switch {
		case inComment:
			if ch == '\n' {
				inComment = false
			}
		case escaped:
			escaped = false
		case inString:
			switch ch {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
		case ch == '"':
			inString = true
		case ch == '#':
			inComment = true
		case ch == '{' || ch == '[' || ch == '(':
			depth++
		case ch == '}' || ch == ']' || ch == ')':
			depth--
		}
	}
	return depth > 0
}

func replCommand(args []string) int {
	fs := newFlagSet("repl")
	logLevel := fs.String("log-level", "warn", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "avo repl does not take arguments (received %s)\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}
	logger, err := newLogger(*logLevel)
	if err != nil {
		return reportStartup(err)
	}

	s := newSession(os.Stdout, os.Stdin, logger)
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	var historyPath string
	if home, err := resolveAvoHome(); err == nil {
		historyPath = filepath.Join(home, replHistoryFile)
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if historyPath == "" {
			return
		}
		if err := os.MkdirAll(filepath.Dir(historyPath), 0o755); err != nil {
			return
		}
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(os.Stdout, "%s (type :help for commands, :quit to leave)\n", cliToolVersion)
	var buffer strings.Builder
	for {
		prompt := replPrompt
		if buffer.Len() > 0 {
			prompt = replContinuePrompt
		}
		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				buffer.Reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(os.Stdout)
				return exitOK
			}
			fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
			return exitError
		}

		trimmed := strings.TrimSpace(input)
		if buffer.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				if s.command(trimmed) {
					return exitOK
				}
				continue
			}
		}

		if buffer.Len() > 0 {
			buffer.WriteByte('\n')
		}
		buffer.WriteString(input)
		source := buffer.String()
		if needsMoreInput(source) {
			continue
		}
		buffer.Reset()
		line.AppendHistory(source)
		if err := s.eval(source); err != nil {
			s.errors.Report(err)
		}
	}
}
