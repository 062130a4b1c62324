package native

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Console returns print, println and read_line bound to the given streams.
func Console(stdout io.Writer, stdin io.Reader) []Func {
	reader := bufio.NewReader(stdin)
	return []Func{
		{
			Name:   "print",
			Params: []Type{String},
			Impl: func(args []any) (any, error) {
				_, err := fmt.Fprint(stdout, args[0].(string))
				return nil, err
			},
		},
		{
			Name:   "println",
			Params: []Type{String},
			Impl: func(args []any) (any, error) {
				_, err := fmt.Fprintln(stdout, args[0].(string))
				return nil, err
			},
		},
		{
			Name:   "read_line",
			Params: []Type{},
			Impl: func(_ []any) (any, error) {
				line, err := reader.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return nil, err
				}
				return strings.TrimRight(line, "\r\n"), nil
			},
		},
	}
}
