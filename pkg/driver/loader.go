package driver

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/parser"
	"avo/interpreter-go/pkg/types"
)

// SourceExt is the file extension of Avo sources.
const SourceExt = ".avo"

// SourceError reports a problem tied to a source file rather than a line.
type SourceError struct {
	File    string
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.File, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Module is one parsed source file.
type Module struct {
	Name    string
	Path    string
	AST     *ast.Module
	Imports []string
}

// Program contains the entry module and its dependencies in load order,
// dependencies before dependents.
type Program struct {
	Entry   *Module
	Modules []*Module
	ByName  map[string]*Module
}

// Loader discovers, parses and orders the modules reachable from Main.
type Loader struct {
	Main   string
	Logger *slog.Logger
}

// NewLoader returns a loader for the given main module name.
func NewLoader(main string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{Main: main, Logger: logger}
}

// ScanSources returns every .avo file below root in sorted order. Hidden
// directories are skipped.
func ScanSources(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile reads and parses a single source file.
func ParseFile(path string) (*Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, &SourceError{File: path, Message: "cannot read source", Err: err}
	}
	mod, err := parser.ParseModule(source)
	if err != nil {
		return nil, &SourceError{File: path, Message: "cannot parse source", Err: err}
	}
	imports := make([]string, len(mod.Imports))
	for i, imp := range mod.Imports {
		imports[i] = imp.Name
	}
	return &Module{Name: mod.Name, Path: path, AST: mod, Imports: imports}, nil
}

// Parse parses every source under roots and indexes the modules by name.
func (l *Loader) Parse(roots ...string) (map[string]*Module, error) {
	index := make(map[string]*Module)
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve root %q: %w", root, err)
		}
		files, err := ScanSources(abs)
		if err != nil {
			return nil, err
		}
		l.Logger.Debug("scanned source root", "root", abs, "files", len(files))
		for _, path := range files {
			mod, err := ParseFile(path)
			if err != nil {
				return nil, err
			}
			if other, exists := index[mod.Name]; exists {
				return nil, &SourceError{File: path, Message: fmt.Sprintf("module %s is already defined in %s", mod.Name, other.Path)}
			}
			index[mod.Name] = mod
		}
	}
	return index, nil
}

// Load parses the roots and resolves the import graph of the main module.
func (l *Loader) Load(roots ...string) (*Program, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("loader: no source roots")
	}
	index, err := l.Parse(roots...)
	if err != nil {
		return nil, err
	}
	entry, ok := index[l.Main]
	if !ok {
		return nil, &SourceError{File: roots[0], Message: fmt.Sprintf("main module %s not found", l.Main)}
	}

	loaded := make(map[string]*Module, len(index))
	inProgress := make(map[string]bool)
	var ordered []*Module

	var loadModule func(*Module) error
	loadModule = func(mod *Module) error {
		if _, ok := loaded[mod.Name]; ok {
			return nil
		}
		if inProgress[mod.Name] {
			return &SourceError{File: mod.Path, Message: fmt.Sprintf("import cycle detected at module %s", mod.Name)}
		}
		inProgress[mod.Name] = true
		defer delete(inProgress, mod.Name)

		for _, dep := range mod.Imports {
			target, ok := index[dep]
			if !ok {
				return &SourceError{File: mod.Path, Message: fmt.Sprintf("module %s imports unknown module %s", mod.Name, dep)}
			}
			if err := loadModule(target); err != nil {
				return err
			}
		}
		loaded[mod.Name] = mod
		ordered = append(ordered, mod)
		l.Logger.Debug("loaded module", "module", mod.Name, "file", mod.Path)
		return nil
	}

	if err := loadModule(entry); err != nil {
		return nil, err
	}
	return &Program{Entry: entry, Modules: ordered, ByName: loaded}, nil
}

// MainFunction returns the module's top-level main function. It must be
// unique, take no parameters and return void.
func (m *Module) MainFunction() (*ast.FunctionDefinition, error) {
	var found *ast.FunctionDefinition
	for _, node := range m.AST.Body {
		fn, ok := node.(*ast.FunctionDefinition)
		if !ok || fn.Name != "main" {
			continue
		}
		if found != nil {
			return nil, &SourceError{File: m.Path, Message: fmt.Sprintf("module %s defines main more than once", m.Name)}
		}
		found = fn
	}
	if found == nil {
		return nil, &SourceError{File: m.Path, Message: fmt.Sprintf("module %s does not define a main function", m.Name)}
	}
	if len(found.Params) != 0 {
		return nil, &SourceError{File: m.Path, Message: fmt.Sprintf("main must not take parameters, found %d", len(found.Params))}
	}
	if !types.Equal(found.ReturnType, types.Void) {
		return nil, &SourceError{File: m.Path, Message: fmt.Sprintf("main must return Void, found %s", found.ReturnType)}
	}
	return found, nil
}
