package interpreter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/runtime"
	"avo/interpreter-go/pkg/types"
)

// DefaultMaxCallDepth bounds recursion when Options does not override it.
const DefaultMaxCallDepth = 10000

// ErrNoEvaluator is the cause of the internal error raised when a node kind has
// no evaluation rule.
var ErrNoEvaluator = errors.New("no evaluator registered for node")

// NativeInvoker resolves and invokes host functions for internal calls.
type NativeInvoker interface {
	Invoke(name string, args []runtime.Value, line int) (runtime.Value, error)
}

// Options configures an Interpreter.
type Options struct {
	Natives NativeInvoker
	Logger  *slog.Logger
	// MaxCallDepth limits nested calls; zero means unbounded.
	MaxCallDepth int
}

// DefaultOptions returns options with the default call depth and no natives.
func DefaultOptions() Options {
	return Options{MaxCallDepth: DefaultMaxCallDepth}
}

// Interpreter drives evaluation of Avo AST nodes.
type Interpreter struct {
	natives  NativeInvoker
	logger   *slog.Logger
	maxDepth int
	frames   []runtime.Frame
}

// New returns an interpreter configured with DefaultOptions.
func New() *Interpreter {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions returns an interpreter configured with opts.
func NewWithOptions(opts Options) *Interpreter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Interpreter{
		natives:  opts.Natives,
		logger:   logger,
		maxDepth: opts.MaxCallDepth,
	}
}

// NewRootScope creates a module root scope with each import bound as a namespace.
func (i *Interpreter) NewRootScope(mod *ast.Module, imports map[string]*runtime.Scope) (*runtime.Scope, error) {
	root := runtime.NewScope(nil)
	for _, imp := range mod.Imports {
		scope, ok := imports[imp.Name]
		if !ok {
			return nil, runtime.Errorf(runtime.UndefinedReference, imp.Line(), "Unresolved import: %s", imp.Name)
		}
		if _, err := root.DeclareNamespace(imp.Name, scope, imp.Line()); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// RunModule executes a module's top-level nodes in a fresh root scope and
// returns that scope.
func (i *Interpreter) RunModule(mod *ast.Module, imports map[string]*runtime.Scope) (*runtime.Scope, error) {
	i.logger.Debug("run module", "module", mod.Name, "imports", len(mod.Imports), "nodes", len(mod.Body))
	root, err := i.NewRootScope(mod, imports)
	if err != nil {
		return nil, err
	}
	for _, node := range mod.Body {
		if _, err := i.Evaluate(node, root); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Evaluate runs one top-level node in scope. Control signals cannot escape the
// top level.
func (i *Interpreter) Evaluate(node ast.Node, scope *runtime.Scope) (runtime.Value, error) {
	res, err := i.evaluate(node, scope)
	if err != nil {
		return nil, err
	}
	if !res.IsValue() {
		return nil, runtime.Errorf(runtime.ControlFlowMisuse, node.Line(), "%s is not allowed at the top level of a module", res.Name())
	}
	return res.Value, nil
}

// CallFunction invokes the function bound to name in scope with already
// evaluated arguments.
func (i *Interpreter) CallFunction(scope *runtime.Scope, name string, args []runtime.Value) (runtime.Value, error) {
	sym, err := scope.Symbol(name, 0)
	if err != nil {
		return nil, err
	}
	fn, ok := sym.(*runtime.Function)
	if !ok {
		return nil, runtime.Errorf(runtime.NotCallable, 0, "Symbol is not a function: %s", name)
	}
	return i.invoke(fn, args, 0)
}

// Depth reports the number of active call frames.
func (i *Interpreter) Depth() int {
	return len(i.frames)
}

func (i *Interpreter) evaluate(node ast.Node, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	if node == nil {
		return runtime.ControlFlowResult{}, &runtime.Error{Kind: runtime.Internal, Message: "cannot evaluate a nil node", Cause: ErrNoEvaluator}
	}
	for kind := node.NodeType(); kind != ""; kind = ast.Supertype(kind) {
		if rule, ok := rules[kind]; ok {
			return rule(i, node, scope)
		}
	}
	return runtime.ControlFlowResult{}, &runtime.Error{
		Kind:    runtime.Internal,
		Message: fmt.Sprintf("no evaluator for node type %s", node.NodeType()),
		Line:    node.Line(),
		Cause:   ErrNoEvaluator,
	}
}

// evaluateValue evaluates a node whose result must be a plain value.
func (i *Interpreter) evaluateValue(node ast.Node, scope *runtime.Scope) (runtime.Value, error) {
	res, err := i.evaluate(node, scope)
	if err != nil {
		return nil, err
	}
	if !res.IsValue() {
		return nil, runtime.Errorf(runtime.ControlFlowMisuse, node.Line(), "Expected a value, but received %s", res.Name())
	}
	return res.Value, nil
}

func (i *Interpreter) evaluateValues(nodes []ast.Expression, scope *runtime.Scope) ([]runtime.Value, error) {
	values := make([]runtime.Value, len(nodes))
	for idx, node := range nodes {
		val, err := i.evaluateValue(node, scope)
		if err != nil {
			return nil, err
		}
		values[idx] = val
	}
	return values, nil
}

//-----------------------------------------------------------------------------
// Calls
//-----------------------------------------------------------------------------

func quotedName(fn *runtime.Function) string {
	if fn.Name == "" {
		return fn.DisplayName()
	}
	return fmt.Sprintf("%q", fn.Name)
}

func (i *Interpreter) invoke(fn *runtime.Function, args []runtime.Value, line int) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, runtime.Errorf(runtime.ArityMismatch, line, "Function %s expected %d parameters, but received %d", quotedName(fn), len(fn.Params), len(args))
	}
	callScope := runtime.NewScope(fn.Scope)
	for idx, param := range fn.Params {
		arg := args[idx]
		if !types.Equal(arg.DataType(), param.Type) {
			return nil, runtime.Errorf(runtime.TypeMismatch, line, "Parameter %q of function %s expects %s, but received %s", param.Name, quotedName(fn), param.Type, arg.DataType())
		}
		if _, err := callScope.DeclareVariable(param.Name, param.Type, arg, line); err != nil {
			return nil, err
		}
	}

	if err := i.pushFrame(fn, line); err != nil {
		return nil, err
	}
	res, err := i.evaluateBlock(fn.Body, callScope)
	if err != nil {
		i.recordTrace(err)
		i.popFrame()
		return nil, err
	}
	i.popFrame()

	var result runtime.Value
	switch res.Signal {
	case runtime.SignalReturn, runtime.SignalValue:
		result = res.Value
	default:
		return nil, runtime.Errorf(runtime.ControlFlowMisuse, line, "%s escaped function %s", res.Name(), quotedName(fn))
	}
	if !types.Equal(result.DataType(), fn.ReturnType) {
		return nil, runtime.Errorf(runtime.TypeMismatch, line, "Function %s must return %s, but returned %s", quotedName(fn), fn.ReturnType, result.DataType())
	}
	return result, nil
}

func (i *Interpreter) pushFrame(fn *runtime.Function, line int) error {
	if i.maxDepth > 0 && len(i.frames) >= i.maxDepth {
		return runtime.Errorf(runtime.Internal, line, "Maximum call depth exceeded (%d)", i.maxDepth)
	}
	i.frames = append(i.frames, runtime.Frame{Function: fn.DisplayName(), Line: line})
	i.logger.Debug("push frame", "function", fn.DisplayName(), "depth", len(i.frames))
	return nil
}

func (i *Interpreter) popFrame() {
	top := i.frames[len(i.frames)-1]
	i.frames = i.frames[:len(i.frames)-1]
	i.logger.Debug("pop frame", "function", top.Function, "depth", len(i.frames))
}

// recordTrace snapshots the active frames, innermost first, onto an error that
// does not carry a trace yet.
func (i *Interpreter) recordTrace(err error) {
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) || rtErr.Trace != nil {
		return
	}
	trace := make([]runtime.Frame, len(i.frames))
	for idx := range i.frames {
		trace[idx] = i.frames[len(i.frames)-1-idx]
	}
	rtErr.Trace = trace
}
