package interpreter

import (
	"math"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/runtime"
	"avo/interpreter-go/pkg/types"
)

func (i *Interpreter) evaluateBlock(block *ast.BlockExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	inner := runtime.NewScope(scope)
	for _, node := range block.Body {
		res, err := i.evaluate(node, inner)
		if err != nil {
			return runtime.ControlFlowResult{}, err
		}
		if res.Interrupts() {
			return res, nil
		}
	}
	return runtime.VoidResult, nil
}

func (i *Interpreter) evaluateIfExpression(expr *ast.IfExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	for _, branch := range expr.Branches {
		cond, err := i.evaluateValue(branch.Condition, scope)
		if err != nil {
			return runtime.ControlFlowResult{}, err
		}
		b, ok := cond.(runtime.BooleanValue)
		if !ok {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, branch.Condition.Line(), "Condition must be of type Boolean, but received %s", cond.DataType())
		}
		if b.Val {
			return i.evaluateBlock(branch.Body, scope)
		}
	}
	if expr.Else != nil {
		return i.evaluateBlock(expr.Else, scope)
	}
	return runtime.VoidResult, nil
}

func (i *Interpreter) loopInteger(node ast.Expression, what string, scope *runtime.Scope, line int) (int64, error) {
	val, err := i.evaluate(node, scope)
	if err != nil {
		return 0, err
	}
	if !val.IsValue() {
		return 0, runtime.Errorf(runtime.ControlFlowMisuse, line, "%s of loop cannot evaluate to %s", what, val.Name())
	}
	n, ok := val.Value.(runtime.IntegerValue)
	if !ok {
		return 0, runtime.Errorf(runtime.TypeMismatch, line, "%s of loop is not an integer: %s", what, val.Value.DataType())
	}
	return n.Val, nil
}

func (i *Interpreter) evaluateLoopExpression(loop *ast.LoopExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	line := loop.Line()
	start, err := i.loopInteger(loop.Start.Value, "Lower bound", scope, line)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	end, err := i.loopInteger(loop.End.Value, "Upper bound", scope, line)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	step := int64(1)
	if loop.Step != nil {
		if step, err = i.loopInteger(loop.Step, "Step size", scope, line); err != nil {
			return runtime.ControlFlowResult{}, err
		}
	}
	if start > end {
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.Bounds, line, "Upper loop bound must be greater than the lower bound: %d -> %d", start, end)
	}
	if step <= 0 {
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.InvalidOperator, line, "Step size of loop must be > 0, got %d", step)
	}
	if loop.Start.Exclusive {
		start++
	}
	if loop.End.Exclusive {
		end--
	}

	result := runtime.VoidResult
	for n := start; n <= end; {
		iterScope := runtime.NewScope(scope)
		if _, err := iterScope.DeclareVariable(loop.Variable, types.Integer, runtime.IntegerValue{Val: n}, line); err != nil {
			return runtime.ControlFlowResult{}, err
		}
		res, err := i.evaluateBlock(loop.Body, iterScope)
		if err != nil {
			return runtime.ControlFlowResult{}, err
		}
		switch res.Signal {
		case runtime.SignalBreak:
			return result, nil
		case runtime.SignalReturn:
			return res, nil
		case runtime.SignalValue:
			result = res
		}
		if n > math.MaxInt64-step {
			break
		}
		n += step
	}
	return result, nil
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	if stmt.Argument == nil {
		return runtime.ReturnResult(runtime.VoidValue{}), nil
	}
	val, err := i.evaluateValue(stmt.Argument, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.ReturnResult(val), nil
}

func (i *Interpreter) evaluateBreakStatement(_ *ast.BreakStatement, _ *runtime.Scope) (runtime.ControlFlowResult, error) {
	return runtime.BreakResult, nil
}

func (i *Interpreter) evaluateContinueStatement(_ *ast.ContinueStatement, _ *runtime.Scope) (runtime.ControlFlowResult, error) {
	return runtime.ContinueResult, nil
}

func (i *Interpreter) evaluateFunctionDefinition(def *ast.FunctionDefinition, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	fn, err := scope.DefineFunction(def.Name, def.Params, def.ReturnType, def.Body, def.Line())
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(runtime.LambdaValue{Function: fn}), nil
}

func (i *Interpreter) evaluateRecordDefinition(def *ast.RecordDefinition, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	fields := make([]runtime.RecordField, len(def.Fields))
	for idx, f := range def.Fields {
		fields[idx] = runtime.RecordField{Name: f.Name, Type: f.Type}
	}
	if _, err := scope.DefineRecordType(def.Name, fields, def.Line()); err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.VoidResult, nil
}
