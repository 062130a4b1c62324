package driver

import (
	"avo/interpreter-go/pkg/interpreter"
	"avo/interpreter-go/pkg/runtime"
)

// Run evaluates every module in load order, then calls main in the entry
// module. Each module gets its own root scope with its imports bound as
// namespaces.
func Run(program *Program, interp *interpreter.Interpreter) error {
	if _, err := program.Entry.MainFunction(); err != nil {
		return err
	}
	scopes := make(map[string]*runtime.Scope, len(program.Modules))
	for _, mod := range program.Modules {
		imports := make(map[string]*runtime.Scope, len(mod.Imports))
		for _, name := range mod.Imports {
			imports[name] = scopes[name]
		}
		scope, err := interp.RunModule(mod.AST, imports)
		if err != nil {
			return err
		}
		scopes[mod.Name] = scope
	}
	_, err := interp.CallFunction(scopes[program.Entry.Name], "main", nil)
	return err
}
