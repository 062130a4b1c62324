package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"avo/interpreter-go/pkg/driver"
	"avo/interpreter-go/pkg/lexer"
	"avo/interpreter-go/pkg/parser"
	"avo/interpreter-go/pkg/runtime"
)

// Handler reports a failure to the user.
type Handler interface {
	Report(err error)
}

// Config pairs a handler with the exit policy from the manifest.
type Config struct {
	Handler     Handler
	ExitOnError bool
}

// Handle reports err and tells the caller whether to stop.
func (c Config) Handle(err error) bool {
	if err == nil {
		return false
	}
	c.Handler.Report(err)
	return c.ExitOnError
}

// ByName builds the handler selected by errors.handler in avo.yml.
func ByName(name string, w io.Writer) (Handler, error) {
	switch name {
	case "", "boxed":
		return NewBoxed(w), nil
	case "plain":
		return Plain{W: w}, nil
	case "silent":
		return Silent{}, nil
	default:
		return nil, fmt.Errorf("unknown error handler %q", name)
	}
}

// Plain writes each error on a single line.
type Plain struct {
	W io.Writer
}

func (p Plain) Report(err error) {
	fmt.Fprintln(p.W, err.Error())
}

// Silent drops every report.
type Silent struct{}

func (Silent) Report(error) {}

const (
	colorReset      = "\x1b[0m"
	colorRed        = "\x1b[31m"
	colorBrightRed  = "\x1b[91m"
	colorBrightCyan = "\x1b[96m"
	colorWhite      = "\x1b[37m"
	colorGrey       = "\x1b[38;2;149;165;166m"
)

// Boxed draws a heavy bordered box holding the error class, its location and
// the message.
type Boxed struct {
	W     io.Writer
	Color bool
}

// NewBoxed returns a Boxed handler that colours its output only when w is a
// terminal.
func NewBoxed(w io.Writer) *Boxed {
	return &Boxed{W: w, Color: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type entry struct {
	title    string
	subtitle string
	message  string
	color    string
	trace    []runtime.Frame
}

func describe(err error) entry {
	var srcErr *driver.SourceError
	file := ""
	if errors.As(err, &srcErr) {
		file = srcErr.File
	}

	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		return entry{"Syntax Error", lineSubtitle(syntaxErr.Line, file), syntaxErr.Message, colorRed, nil}
	}
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		return entry{"Lexer Error", lineSubtitle(lexErr.Line, file), lexErr.Message, colorBrightRed, nil}
	}
	var rtErr *runtime.Error
	if errors.As(err, &rtErr) {
		return entry{"Runtime Error", lineSubtitle(rtErr.Line, file), rtErr.Message, colorBrightRed, rtErr.Trace}
	}
	if srcErr != nil {
		message := srcErr.Message
		if srcErr.Err != nil {
			message += ": " + srcErr.Err.Error()
		}
		return entry{"Source Error", "File " + srcErr.File, message, colorBrightCyan, nil}
	}
	var validationErr *driver.ValidationError
	if errors.As(err, &validationErr) {
		return entry{"Manifest Error", driver.ManifestName, strings.Join(validationErr.Issues, "\n"), colorBrightCyan, nil}
	}
	return entry{"Error", "", err.Error(), colorBrightRed, nil}
}

func lineSubtitle(line int, file string) string {
	if file == "" {
		return fmt.Sprintf("Line %d", line)
	}
	return fmt.Sprintf("Line %d in %s", line, file)
}

func (b *Boxed) paint(color, s string) string {
	if !b.Color || s == "" {
		return s
	}
	return color + s + colorReset
}

// Report renders err. The left column holds the title above the subtitle,
// the right column holds the message lines aligned to the right border.
func (b *Boxed) Report(err error) {
	e := describe(err)
	left := []string{e.title, e.subtitle}
	right := strings.Split(e.message, "\n")
	rows := max(len(left), len(right))

	leftWidth, rightWidth := 0, 0
	for _, s := range left {
		leftWidth = max(leftWidth, runewidth.StringWidth(s))
	}
	for _, s := range right {
		rightWidth = max(rightWidth, runewidth.StringWidth(s))
	}
	inner := leftWidth + rightWidth + 4
	if rightWidth > 0 {
		inner++
	}

	var out strings.Builder
	out.WriteString(b.paint(e.color, "┏"+strings.Repeat("━", inner)+"┓"))
	out.WriteByte('\n')
	for row := 0; row < rows; row++ {
		l, r := "", ""
		if row < len(left) {
			l = left[row]
		}
		if row < len(right) {
			r = right[row]
		}
		labelColor := e.color
		if row > 0 {
			labelColor = colorGrey
		}
		out.WriteString(b.paint(e.color, "┃"))
		out.WriteString("  ")
		out.WriteString(b.paint(labelColor, l))
		out.WriteString(strings.Repeat(" ", leftWidth-runewidth.StringWidth(l)))
		if rightWidth > 0 {
			out.WriteString(" ")
			out.WriteString(strings.Repeat(" ", rightWidth-runewidth.StringWidth(r)))
			out.WriteString(b.paint(colorWhite, r))
		}
		out.WriteString("  ")
		out.WriteString(b.paint(e.color, "┃"))
		out.WriteByte('\n')
	}
	out.WriteString(b.paint(e.color, "┗"+strings.Repeat("━", inner)+"┛"))
	out.WriteByte('\n')
	for _, frame := range e.trace {
		out.WriteString(b.paint(colorGrey, fmt.Sprintf("  at %s (line %d)", frame.Function, frame.Line)))
		out.WriteByte('\n')
	}
	io.WriteString(b.W, out.String())
}
