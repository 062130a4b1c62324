package interpreter

import (
	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/runtime"
)

type evalRule func(*Interpreter, ast.Node, *runtime.Scope) (runtime.ControlFlowResult, error)

// rules maps each node kind to the rule that evaluates it. Populated in init
// since the rules recurse back through evaluate.
var rules map[ast.NodeType]evalRule

func init() {
	rules = map[ast.NodeType]evalRule{
		ast.NodeIdentifier:          rule((*Interpreter).evaluateIdentifier),
		ast.NodeIntegerLiteral:      rule((*Interpreter).evaluateIntegerLiteral),
		ast.NodeFloatLiteral:        rule((*Interpreter).evaluateFloatLiteral),
		ast.NodeStringLiteral:       rule((*Interpreter).evaluateStringLiteral),
		ast.NodeBooleanLiteral:      rule((*Interpreter).evaluateBooleanLiteral),
		ast.NodeArrayLiteral:        rule((*Interpreter).evaluateArrayLiteral),
		ast.NodeBinaryExpression:    rule((*Interpreter).evaluateBinaryExpression),
		ast.NodeUnaryExpression:     rule((*Interpreter).evaluateUnaryExpression),
		ast.NodeBlockExpression:     rule((*Interpreter).evaluateBlock),
		ast.NodeIfExpression:        rule((*Interpreter).evaluateIfExpression),
		ast.NodeLoopExpression:      rule((*Interpreter).evaluateLoopExpression),
		ast.NodeFunctionDefinition:  rule((*Interpreter).evaluateFunctionDefinition),
		ast.NodeFunctionCall:        rule((*Interpreter).evaluateFunctionCall),
		ast.NodeVariableDeclaration: rule((*Interpreter).evaluateVariableDeclaration),
		ast.NodeAssignment:          rule((*Interpreter).evaluateAssignment),
		ast.NodeInstantiation:       rule((*Interpreter).evaluateInstantiation),
		ast.NodeMemberAccess:        rule((*Interpreter).evaluateMemberAccess),
		ast.NodeIndexExpression:     rule((*Interpreter).evaluateIndexExpression),
		ast.NodeLengthExpression:    rule((*Interpreter).evaluateLengthExpression),
		ast.NodeInternalCall:        rule((*Interpreter).evaluateInternalCall),
		ast.NodeRecordDefinition:    rule((*Interpreter).evaluateRecordDefinition),
		ast.NodeReturnStatement:     rule((*Interpreter).evaluateReturnStatement),
		ast.NodeBreakStatement:      rule((*Interpreter).evaluateBreakStatement),
		ast.NodeContinueStatement:   rule((*Interpreter).evaluateContinueStatement),
	}
}

func rule[T ast.Node](fn func(*Interpreter, T, *runtime.Scope) (runtime.ControlFlowResult, error)) evalRule {
	return func(i *Interpreter, node ast.Node, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
		typed, ok := node.(T)
		if !ok {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.Internal, node.Line(), "evaluator for %s received %T", node.NodeType(), node)
		}
		return fn(i, typed, scope)
	}
}
