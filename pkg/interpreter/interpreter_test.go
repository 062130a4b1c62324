package interpreter

import (
	"errors"
	"strings"
	"testing"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/runtime"
	"avo/interpreter-go/pkg/types"
)

// evalAll evaluates nodes in order in one root scope and returns the last value.
func evalAll(t *testing.T, interp *Interpreter, nodes ...ast.Node) (runtime.Value, error) {
	t.Helper()
	scope := runtime.NewScope(nil)
	var last runtime.Value = runtime.VoidValue{}
	for _, node := range nodes {
		val, err := interp.Evaluate(node, scope)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

func mustEvalAll(t *testing.T, interp *Interpreter, nodes ...ast.Node) runtime.Value {
	t.Helper()
	val, err := evalAll(t, interp, nodes...)
	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}
	return val
}

func expectKind(t *testing.T, err error, kind runtime.ErrorKind) *runtime.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var rtErr *runtime.Error
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected runtime error, got %T: %v", err, err)
	}
	if rtErr.Kind != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, rtErr.Kind, err)
	}
	return rtErr
}

func expectInt(t *testing.T, val runtime.Value, want int64) {
	t.Helper()
	iv, ok := val.(runtime.IntegerValue)
	if !ok || iv.Val != want {
		t.Fatalf("expected integer %d, got %#v", want, val)
	}
}

func TestLiteralAndArithmetic(t *testing.T) {
	interp := New()
	val := mustEvalAll(t, interp, ast.Bin(ast.OpPlus, ast.Int(2), ast.Bin(ast.OpMultiply, ast.Int(3), ast.Int(4))))
	expectInt(t, val, 14)

	val = mustEvalAll(t, interp, ast.Bin(ast.OpMultiply, ast.Str("ab"), ast.Int(3)))
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "ababab" {
		t.Fatalf("expected repeated string, got %#v", val)
	}
	val = mustEvalAll(t, interp, ast.Bin(ast.OpMultiply, ast.Int(3), ast.Str("ab")))
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "ababab" {
		t.Fatalf("expected repeated string, got %#v", val)
	}
	val = mustEvalAll(t, interp, ast.Neg(ast.Flt(2.5)))
	if f, ok := val.(runtime.FloatValue); !ok || f.Val != -2.5 {
		t.Fatalf("expected -2.5, got %#v", val)
	}
}

func TestVariableDeclarationAndInference(t *testing.T) {
	interp := New()
	val := mustEvalAll(t, interp,
		ast.Infer("x", ast.Flt(1.5)),
		ast.AssignName("x", ast.Flt(2.5)),
		ast.ID("x"),
	)
	if f, ok := val.(runtime.FloatValue); !ok || f.Val != 2.5 {
		t.Fatalf("expected 2.5, got %#v", val)
	}

	val = mustEvalAll(t, interp, ast.Var("s", types.String, nil), ast.ID("s"))
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "" {
		t.Fatalf("expected empty default string, got %#v", val)
	}

	_, err := evalAll(t, interp, ast.Infer("y", nil))
	expectKind(t, err, runtime.TypeMismatch)

	_, err = evalAll(t, interp, ast.Var("f", types.FunctionOf(types.Void), nil))
	expectKind(t, err, runtime.TypeMismatch)
}

func TestInferredDeclarationDoesNotMutateNode(t *testing.T) {
	interp := New()
	decl := ast.Infer("x", ast.Int(1))
	mustEvalAll(t, interp, decl)
	if !types.Equal(decl.Type, types.Inferred) {
		t.Fatalf("declaration type was rewritten to %s", decl.Type)
	}
	mustEvalAll(t, interp, decl)
}

func TestTypeExactness(t *testing.T) {
	interp := New()
	_, err := evalAll(t, interp, ast.Var("x", types.Integer, ast.Flt(1.0)))
	expectKind(t, err, runtime.TypeMismatch)

	_, err = evalAll(t, interp, ast.Var("x", types.Float, ast.Int(1)), ast.AssignName("x", ast.Int(2)))
	expectKind(t, err, runtime.TypeMismatch)

	_, err = evalAll(t, interp, ast.Var("x", types.Float, ast.Flt(1)), ast.AssignName("x", ast.Int(2)))
	expectKind(t, err, runtime.TypeMismatch)
}

func TestClosureAliasing(t *testing.T) {
	interp := New()
	val := mustEvalAll(t, interp,
		ast.Var("x", types.Integer, ast.Int(1)),
		ast.Var("f", types.FunctionOf(types.Integer), ast.Lambda(nil, types.Integer, ast.Ret(ast.ID("x")))),
		ast.AssignName("x", ast.Int(2)),
		ast.CallName("f"),
	)
	expectInt(t, val, 2)
}

func TestClosureWritesThroughSharedCell(t *testing.T) {
	interp := New()
	val := mustEvalAll(t, interp,
		ast.Var("count", types.Integer, ast.Int(0)),
		ast.Fn("bump", nil, types.Void, ast.AssignName("count", ast.Bin(ast.OpPlus, ast.ID("count"), ast.Int(1)))),
		ast.CallName("bump"),
		ast.CallName("bump"),
		ast.ID("count"),
	)
	expectInt(t, val, 2)
}

func TestScopeIsolationAfterCapture(t *testing.T) {
	interp := New()
	_, err := evalAll(t, interp,
		ast.Fn("f", nil, types.Integer, ast.Ret(ast.ID("late"))),
		ast.Var("late", types.Integer, ast.Int(1)),
		ast.CallName("f"),
	)
	rtErr := expectKind(t, err, runtime.UndefinedReference)
	if rtErr.Message != "Undefined symbol: late" {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
}

func TestRecursiveFunction(t *testing.T) {
	interp := New()
	n := ast.ID("n")
	fact := ast.Fn("fact", []*ast.Parameter{ast.Param("n", types.Integer)}, types.Integer,
		ast.If(ast.Bin(ast.OpLessEqual, n, ast.Int(1)), ast.Block(ast.Ret(ast.Int(1)))),
		ast.Ret(ast.Bin(ast.OpMultiply, n, ast.CallName("fact", ast.Bin(ast.OpMinus, n, ast.Int(1))))),
	)
	val := mustEvalAll(t, interp, fact, ast.CallName("fact", ast.Int(5)))
	expectInt(t, val, 120)
	if interp.Depth() != 0 {
		t.Fatalf("expected empty call stack, got depth %d", interp.Depth())
	}
}

func TestFunctionDefinitionYieldsLambda(t *testing.T) {
	interp := New()
	val := mustEvalAll(t, interp, ast.Fn("id", []*ast.Parameter{ast.Param("s", types.String)}, types.String, ast.Ret(ast.ID("s"))))
	lambda, ok := val.(runtime.LambdaValue)
	if !ok {
		t.Fatalf("expected lambda, got %#v", val)
	}
	if got := lambda.DataType().String(); got != "Lambda<(String) -> String>" {
		t.Fatalf("unexpected lambda type %s", got)
	}
}

func TestArityAndArgumentTypes(t *testing.T) {
	interp := New()
	def := ast.Fn("add", []*ast.Parameter{ast.Param("a", types.Integer), ast.Param("b", types.Integer)}, types.Integer,
		ast.Ret(ast.Bin(ast.OpPlus, ast.ID("a"), ast.ID("b"))))

	_, err := evalAll(t, interp, def, ast.CallName("add", ast.Int(1)))
	rtErr := expectKind(t, err, runtime.ArityMismatch)
	if rtErr.Message != `Function "add" expected 2 parameters, but received 1` {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}

	_, err = evalAll(t, interp, def, ast.CallName("add", ast.Int(1), ast.Flt(2)))
	expectKind(t, err, runtime.TypeMismatch)

	_, err = evalAll(t, interp, ast.Call(ast.Lambda(nil, types.Void), ast.Int(1)))
	rtErr = expectKind(t, err, runtime.ArityMismatch)
	if !strings.Contains(rtErr.Message, "<anonymous>") {
		t.Fatalf("expected anonymous name in %q", rtErr.Message)
	}
}

func TestCallingNonLambda(t *testing.T) {
	interp := New()
	_, err := evalAll(t, interp, ast.Call(ast.Int(1)))
	rtErr := expectKind(t, err, runtime.NotCallable)
	if rtErr.Message != "Expression is not callable" {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
}

func TestReturnTypeEnforcedAtCallCompletion(t *testing.T) {
	interp := New()
	def := ast.Fn("g", nil, types.Integer)
	if _, err := evalAll(t, interp, def); err != nil {
		t.Fatalf("definition should succeed: %v", err)
	}
	_, err := evalAll(t, New(), ast.Fn("g", nil, types.Integer), ast.CallName("g"))
	expectKind(t, err, runtime.TypeMismatch)

	_, err = evalAll(t, New(), ast.Fn("h", nil, types.Integer, ast.Ret(ast.Str("no"))), ast.CallName("h"))
	expectKind(t, err, runtime.TypeMismatch)
}

func TestLogicalOperatorsShortCircuit(t *testing.T) {
	interp := New()
	// The right operand would fail with an undefined reference if evaluated.
	val := mustEvalAll(t, interp, ast.Bin(ast.OpAnd, ast.Bool(false), ast.ID("missing")))
	if b, ok := val.(runtime.BooleanValue); !ok || b.Val {
		t.Fatalf("expected false, got %#v", val)
	}
	val = mustEvalAll(t, interp, ast.Bin(ast.OpOr, ast.Bool(true), ast.ID("missing")))
	if b, ok := val.(runtime.BooleanValue); !ok || !b.Val {
		t.Fatalf("expected true, got %#v", val)
	}
	_, err := evalAll(t, interp, ast.Bin(ast.OpAnd, ast.Bool(true), ast.Int(1)))
	expectKind(t, err, runtime.TypeMismatch)
}

func TestIfExpression(t *testing.T) {
	interp := New()
	val := mustEvalAll(t, interp,
		ast.Var("out", types.Integer, ast.Int(0)),
		ast.NewIfExpression([]*ast.IfBranch{
			ast.Branch(ast.Bool(false), ast.Block(ast.AssignName("out", ast.Int(1)))),
			ast.Branch(ast.Bool(true), ast.Block(ast.AssignName("out", ast.Int(2)))),
		}, ast.Block(ast.AssignName("out", ast.Int(3)))),
		ast.ID("out"),
	)
	expectInt(t, val, 2)

	_, err := evalAll(t, interp, ast.If(ast.Int(1), ast.Block()))
	expectKind(t, err, runtime.TypeMismatch)
}

type recordingNatives struct {
	calls []string
	err   error
}

func (r *recordingNatives) Invoke(name string, args []runtime.Value, line int) (runtime.Value, error) {
	r.calls = append(r.calls, name)
	if r.err != nil {
		return nil, r.err
	}
	return runtime.IntegerValue{Val: int64(len(args))}, nil
}

func TestInternalCallUsesNativeInvoker(t *testing.T) {
	natives := &recordingNatives{}
	interp := NewWithOptions(Options{Natives: natives})
	val := mustEvalAll(t, interp, ast.Internal("count", ast.Int(1), ast.Str("a")))
	expectInt(t, val, 2)
	if len(natives.calls) != 1 || natives.calls[0] != "count" {
		t.Fatalf("unexpected native calls %v", natives.calls)
	}

	boom := errors.New("boom")
	natives.err = boom
	_, err := evalAll(t, interp, ast.Internal("fail"))
	expectKind(t, err, runtime.Native)
	if !errors.Is(err, boom) {
		t.Fatalf("expected native cause to be preserved, got %v", err)
	}

	_, err = evalAll(t, New(), ast.Internal("count"))
	expectKind(t, err, runtime.UndefinedReference)
}

func TestRunModuleAndCallFunction(t *testing.T) {
	interp := New()
	mod := ast.Mod("main", nil,
		ast.Var("greeting", types.String, ast.Str("hi")),
		ast.Fn("main", nil, types.String, ast.Ret(ast.ID("greeting"))),
	)
	scope, err := interp.RunModule(mod, nil)
	if err != nil {
		t.Fatalf("module evaluation failed: %v", err)
	}
	val, err := interp.CallFunction(scope, "main", nil)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "hi" {
		t.Fatalf("unexpected result %#v", val)
	}
	if _, err := interp.CallFunction(scope, "greeting", nil); err == nil {
		t.Fatalf("expected error calling a variable")
	}
}
