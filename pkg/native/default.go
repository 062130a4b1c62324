package native

import "io"

// Default returns a registry holding the console, math and string libraries.
func Default(stdout io.Writer, stdin io.Reader) *Registry {
	r := NewRegistry()
	for _, lib := range [][]Func{Console(stdout, stdin), Math(), Strings()} {
		if err := r.RegisterAll(lib); err != nil {
			// The built-in libraries never overlap.
			panic(err)
		}
	}
	return r
}
