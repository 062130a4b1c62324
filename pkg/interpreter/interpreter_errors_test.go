package interpreter

import (
	"errors"
	"strings"
	"testing"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/runtime"
	"avo/interpreter-go/pkg/types"
)

func TestControlSignalsAtTopLevel(t *testing.T) {
	cases := []struct {
		name string
		node ast.Node
	}{
		{"break", ast.Brk()},
		{"continue", ast.Cont()},
		{"return", ast.Ret(ast.Int(1))},
		{"break in block", ast.Block(ast.Brk())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := evalAll(t, New(), tc.node)
			expectKind(t, err, runtime.ControlFlowMisuse)
		})
	}
}

func TestBreakEscapingFunction(t *testing.T) {
	_, err := evalAll(t, New(), ast.Fn("f", nil, types.Void, ast.Brk()), ast.CallName("f"))
	rtErr := expectKind(t, err, runtime.ControlFlowMisuse)
	if !strings.Contains(rtErr.Message, "Break Statement") {
		t.Fatalf("expected signal name in %q", rtErr.Message)
	}
}

func TestSignalInValuePosition(t *testing.T) {
	body := ast.Block(ast.Var("x", types.Integer, ast.Block(ast.Brk())))
	_, err := evalAll(t, New(), ast.Loop("i", ast.Int(0), ast.Int(1), body))
	expectKind(t, err, runtime.ControlFlowMisuse)
}

func TestErrorTraceRecordsFrames(t *testing.T) {
	interp := New()
	inner := ast.Fn("inner", nil, types.Void, ast.WithLine(ast.Bin(ast.OpDivide, ast.Int(1), ast.Int(0)), 2))
	outer := ast.Fn("outer", nil, types.Void, ast.WithLine(ast.CallName("inner"), 4))
	_, err := evalAll(t, interp, inner, outer, ast.WithLine(ast.CallName("outer"), 7))
	rtErr := expectKind(t, err, runtime.InvalidOperator)
	if rtErr.Line != 2 {
		t.Fatalf("expected error on line 2, got %d", rtErr.Line)
	}
	want := []runtime.Frame{{Function: "inner", Line: 4}, {Function: "outer", Line: 7}}
	if len(rtErr.Trace) != len(want) {
		t.Fatalf("unexpected trace %#v", rtErr.Trace)
	}
	for i := range want {
		if rtErr.Trace[i] != want[i] {
			t.Fatalf("frame %d = %#v, want %#v", i, rtErr.Trace[i], want[i])
		}
	}
	if interp.Depth() != 0 {
		t.Fatalf("frames should unwind after an error, depth %d", interp.Depth())
	}
}

func TestMaxCallDepth(t *testing.T) {
	interp := NewWithOptions(Options{MaxCallDepth: 5})
	_, err := evalAll(t, interp, ast.Fn("spin", nil, types.Void, ast.CallName("spin")), ast.CallName("spin"))
	rtErr := expectKind(t, err, runtime.Internal)
	if !strings.Contains(rtErr.Message, "Maximum call depth exceeded") {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
	if len(rtErr.Trace) != 5 {
		t.Fatalf("expected 5 frames in trace, got %d", len(rtErr.Trace))
	}
}

func TestUnboundedCallDepth(t *testing.T) {
	interp := NewWithOptions(Options{MaxCallDepth: 0})
	n := ast.ID("n")
	countdown := ast.Fn("down", []*ast.Parameter{ast.Param("n", types.Integer)}, types.Integer,
		ast.If(ast.Bin(ast.OpEqual, n, ast.Int(0)), ast.Block(ast.Ret(ast.Int(0)))),
		ast.Ret(ast.CallName("down", ast.Bin(ast.OpMinus, n, ast.Int(1)))),
	)
	val := mustEvalAll(t, interp, countdown, ast.CallName("down", ast.Int(12000)))
	expectInt(t, val, 0)
}

func TestAssignmentTargetErrors(t *testing.T) {
	_, err := evalAll(t, New(), ast.AssignName("nope", ast.Int(1)))
	rtErr := expectKind(t, err, runtime.UndefinedReference)
	if rtErr.Message != "Undefined variable: nope" {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}

	_, err = evalAll(t, New(), ast.Fn("f", nil, types.Void), ast.AssignName("f", ast.Int(1)))
	rtErr = expectKind(t, err, runtime.NotAVariable)
	if rtErr.Message != "Symbol is not a variable: f" {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}

	_, err = evalAll(t, New(), ast.Var("x", types.Integer, ast.Int(1)), ast.Var("x", types.Integer, ast.Int(2)))
	rtErr = expectKind(t, err, runtime.DuplicateIdentifier)
	if rtErr.Message != "Duplicate identifier: x" {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
}

func TestNoEvaluatorIsInternal(t *testing.T) {
	_, err := New().evaluate(ast.NewImport("util"), runtime.NewScope(nil))
	expectKind(t, err, runtime.Internal)
	if !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
}

func TestEveryEvaluableNodeHasRule(t *testing.T) {
	kinds := []ast.NodeType{
		ast.NodeIdentifier, ast.NodeIntegerLiteral, ast.NodeFloatLiteral, ast.NodeStringLiteral,
		ast.NodeBooleanLiteral, ast.NodeArrayLiteral, ast.NodeBinaryExpression, ast.NodeUnaryExpression,
		ast.NodeBlockExpression, ast.NodeIfExpression, ast.NodeLoopExpression, ast.NodeFunctionDefinition,
		ast.NodeFunctionCall, ast.NodeVariableDeclaration, ast.NodeAssignment, ast.NodeInstantiation,
		ast.NodeMemberAccess, ast.NodeIndexExpression, ast.NodeLengthExpression, ast.NodeInternalCall,
		ast.NodeRecordDefinition, ast.NodeReturnStatement, ast.NodeBreakStatement, ast.NodeContinueStatement,
	}
	for _, kind := range kinds {
		if _, ok := rules[kind]; !ok {
			t.Fatalf("no evaluation rule for %s", kind)
		}
	}
	if len(rules) != len(kinds) {
		t.Fatalf("expected %d rules, found %d", len(kinds), len(rules))
	}
}
