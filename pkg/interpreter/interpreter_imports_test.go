package interpreter

import (
	"testing"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/runtime"
	"avo/interpreter-go/pkg/types"
)

func runUtil(t *testing.T, interp *Interpreter) *runtime.Scope {
	t.Helper()
	util := ast.Mod("util", nil,
		ast.Var("answer", types.Integer, ast.Int(42)),
		ast.Fn("double", []*ast.Parameter{ast.Param("n", types.Integer)}, types.Integer,
			ast.Ret(ast.Bin(ast.OpMultiply, ast.ID("n"), ast.Int(2)))),
	)
	scope, err := interp.RunModule(util, nil)
	if err != nil {
		t.Fatalf("util module failed: %v", err)
	}
	return scope
}

func TestNamespaceMemberAccess(t *testing.T) {
	interp := New()
	util := runUtil(t, interp)
	mainMod := ast.Mod("main", []string{"util"},
		ast.Infer("doubled", ast.Call(ast.Member(ast.ID("util"), "double"), ast.Int(4))),
	)
	root, err := interp.RunModule(mainMod, map[string]*runtime.Scope{"util": util})
	if err != nil {
		t.Fatalf("main module failed: %v", err)
	}
	val, err := interp.Evaluate(ast.ID("doubled"), root)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	expectInt(t, val, 8)

	val, err = interp.Evaluate(ast.Member(ast.ID("util"), "answer"), root)
	if err != nil {
		t.Fatalf("member access failed: %v", err)
	}
	expectInt(t, val, 42)

	val, err = interp.Evaluate(ast.ID("util"), root)
	if err != nil {
		t.Fatalf("namespace reference failed: %v", err)
	}
	if _, ok := val.(runtime.NamespaceValue); !ok {
		t.Fatalf("expected namespace value, got %#v", val)
	}

	_, err = interp.Evaluate(ast.Member(ast.ID("util"), "nope"), root)
	rtErr := expectKind(t, err, runtime.UndefinedReference)
	if rtErr.Message != `Namespace "util" does not have a member "nope"` {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
}

func TestNamespaceSymbolIsNotAssignable(t *testing.T) {
	interp := New()
	util := runUtil(t, interp)
	root, err := interp.RunModule(ast.Mod("main", []string{"util"}), map[string]*runtime.Scope{"util": util})
	if err != nil {
		t.Fatalf("main module failed: %v", err)
	}
	_, err = interp.Evaluate(ast.AssignName("util", ast.Int(1)), root)
	expectKind(t, err, runtime.NotAVariable)
}

func TestUnresolvedImport(t *testing.T) {
	_, err := New().RunModule(ast.Mod("main", []string{"missing"}), nil)
	expectKind(t, err, runtime.UndefinedReference)
}

func TestImportedFunctionKeepsItsModuleScope(t *testing.T) {
	interp := New()
	util := runUtil(t, interp)
	mainMod := ast.Mod("main", []string{"util"},
		ast.Var("answer", types.Integer, ast.Int(1)),
	)
	root, err := interp.RunModule(mainMod, map[string]*runtime.Scope{"util": util})
	if err != nil {
		t.Fatalf("main module failed: %v", err)
	}
	getter := ast.Mod("util2", nil,
		ast.Var("answer", types.Integer, ast.Int(7)),
		ast.Fn("get", nil, types.Integer, ast.Ret(ast.ID("answer"))),
	)
	scope, err := interp.RunModule(getter, nil)
	if err != nil {
		t.Fatalf("util2 failed: %v", err)
	}
	if _, err := root.DeclareNamespace("util2", scope, 0); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	val, err := interp.Evaluate(ast.Call(ast.Member(ast.ID("util2"), "get")), root)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	expectInt(t, val, 7)
}
