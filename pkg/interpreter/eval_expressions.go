package interpreter

import (
	"errors"
	"unicode/utf8"

	"avo/interpreter-go/pkg/ast"
	"avo/interpreter-go/pkg/runtime"
	"avo/interpreter-go/pkg/types"
)

//-----------------------------------------------------------------------------
// Literals and symbols
//-----------------------------------------------------------------------------

func (i *Interpreter) evaluateIntegerLiteral(lit *ast.IntegerLiteral, _ *runtime.Scope) (runtime.ControlFlowResult, error) {
	return runtime.Result(runtime.IntegerValue{Val: lit.Value}), nil
}

func (i *Interpreter) evaluateFloatLiteral(lit *ast.FloatLiteral, _ *runtime.Scope) (runtime.ControlFlowResult, error) {
	return runtime.Result(runtime.FloatValue{Val: lit.Value}), nil
}

func (i *Interpreter) evaluateStringLiteral(lit *ast.StringLiteral, _ *runtime.Scope) (runtime.ControlFlowResult, error) {
	return runtime.Result(runtime.StringValue{Val: lit.Value}), nil
}

func (i *Interpreter) evaluateBooleanLiteral(lit *ast.BooleanLiteral, _ *runtime.Scope) (runtime.ControlFlowResult, error) {
	return runtime.Result(runtime.BooleanValue{Val: lit.Value}), nil
}

func (i *Interpreter) evaluateArrayLiteral(lit *ast.ArrayLiteral, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	if len(lit.Elements) == 0 {
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, lit.Line(), "Cannot infer the element type of an empty array literal")
	}
	items, err := i.evaluateValues(lit.Elements, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	elem := items[0].DataType()
	for _, item := range items[1:] {
		if !types.Equal(item.DataType(), elem) {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, lit.Line(), "Array elements must share one type: expected %s, but received %s", elem, item.DataType())
		}
	}
	return runtime.Result(runtime.NewArray(elem, items)), nil
}

func symbolValue(sym runtime.Symbol) runtime.Value {
	switch s := sym.(type) {
	case *runtime.Variable:
		return s.Value
	case *runtime.Function:
		return runtime.LambdaValue{Function: s}
	case *runtime.Namespace:
		return runtime.NamespaceValue{Namespace: s}
	default:
		return nil
	}
}

func (i *Interpreter) evaluateIdentifier(id *ast.Identifier, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	sym, err := scope.Symbol(id.Name, id.Line())
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(symbolValue(sym)), nil
}

//-----------------------------------------------------------------------------
// Operators
//-----------------------------------------------------------------------------

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	if expr.Operator == ast.OpAnd || expr.Operator == ast.OpOr {
		return i.evaluateLogical(expr, scope)
	}
	left, err := i.evaluateValue(expr.Left, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	right, err := i.evaluateValue(expr.Right, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	val, err := runtime.Binary(expr.Operator, left, right, expr.Line())
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(val), nil
}

func (i *Interpreter) logicalOperand(expr *ast.BinaryExpression, node ast.Expression, scope *runtime.Scope) (bool, error) {
	val, err := i.evaluateValue(node, scope)
	if err != nil {
		return false, err
	}
	b, ok := val.(runtime.BooleanValue)
	if !ok {
		return false, runtime.Errorf(runtime.TypeMismatch, expr.Line(), "Operands of %s must be Boolean, but received %s", expr.Operator, val.DataType())
	}
	return b.Val, nil
}

func (i *Interpreter) evaluateLogical(expr *ast.BinaryExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	left, err := i.logicalOperand(expr, expr.Left, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	if expr.Operator == ast.OpAnd && !left {
		return runtime.Result(runtime.BooleanValue{Val: false}), nil
	}
	if expr.Operator == ast.OpOr && left {
		return runtime.Result(runtime.BooleanValue{Val: true}), nil
	}
	right, err := i.logicalOperand(expr, expr.Right, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(runtime.BooleanValue{Val: right}), nil
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	operand, err := i.evaluateValue(expr.Operand, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	val, err := runtime.Negate(operand, expr.Line())
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(val), nil
}

func (i *Interpreter) evaluateLengthExpression(expr *ast.LengthExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	operand, err := i.evaluateValue(expr.Operand, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	switch v := operand.(type) {
	case runtime.StringValue:
		return runtime.Result(runtime.IntegerValue{Val: int64(utf8.RuneCountInString(v.Val))}), nil
	case *runtime.ArrayValue:
		return runtime.Result(runtime.IntegerValue{Val: int64(len(v.Items))}), nil
	default:
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.InvalidOperator, expr.Line(), "Cannot take the length of a value of type %s", operand.DataType())
	}
}

//-----------------------------------------------------------------------------
// Calls
//-----------------------------------------------------------------------------

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	callee, err := i.evaluateValue(call.Callee, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	lambda, ok := callee.(runtime.LambdaValue)
	if !ok {
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.NotCallable, call.Line(), "Expression is not callable")
	}
	fn := lambda.Function
	if len(call.Arguments) != len(fn.Params) {
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.ArityMismatch, call.Line(), "Function %s expected %d parameters, but received %d", quotedName(fn), len(fn.Params), len(call.Arguments))
	}
	args, err := i.evaluateValues(call.Arguments, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	val, err := i.invoke(fn, args, call.Line())
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(val), nil
}

func (i *Interpreter) evaluateInternalCall(call *ast.InternalCall, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	if i.natives == nil {
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.UndefinedReference, call.Line(), "No native functions are available for internal call %q", call.Name)
	}
	args, err := i.evaluateValues(call.Arguments, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	i.logger.Debug("native call", "name", call.Name, "args", len(args), "line", call.Line())
	val, err := i.natives.Invoke(call.Name, args, call.Line())
	if err != nil {
		var rtErr *runtime.Error
		if !errors.As(err, &rtErr) {
			err = &runtime.Error{Kind: runtime.Native, Message: err.Error(), Line: call.Line(), Cause: err}
		}
		return runtime.ControlFlowResult{}, err
	}
	if val == nil {
		val = runtime.VoidValue{}
	}
	return runtime.Result(val), nil
}

//-----------------------------------------------------------------------------
// Declarations and assignment
//-----------------------------------------------------------------------------

func (i *Interpreter) evaluateVariableDeclaration(decl *ast.VariableDeclaration, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	line := decl.Line()
	declared := decl.Type
	if declared == nil {
		declared = types.Inferred
	}
	inferred := types.Equal(declared, types.Inferred)

	var value runtime.Value
	if decl.Value == nil {
		if inferred {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, line, "Cannot infer the type of variable %q without an initial value", decl.Name)
		}
		if err := checkRecordTypes(scope, declared, line); err != nil {
			return runtime.ControlFlowResult{}, err
		}
		def, ok := runtime.DefaultValue(declared)
		if !ok {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, line, "Variable %q of type %s requires an initial value", decl.Name, declared)
		}
		value = def
	} else {
		val, err := i.evaluateValue(decl.Value, scope)
		if err != nil {
			return runtime.ControlFlowResult{}, err
		}
		value = val
		if inferred {
			declared = value.DataType()
			if types.Equal(declared, types.Void) {
				return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, line, "Cannot declare variable %q of type %s", decl.Name, declared)
			}
		} else if !types.Equal(value.DataType(), declared) {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, line, "Cannot assign value of type %s to variable %q of type %s", value.DataType(), decl.Name, declared)
		}
	}
	if _, err := scope.DeclareVariable(decl.Name, declared, value, line); err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(value), nil
}

func checkRecordTypes(scope *runtime.Scope, dt types.DataType, line int) error {
	for _, name := range types.RecordNames(dt) {
		if _, err := scope.RecordType(name, line); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evaluateAssignment(assign *ast.Assignment, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	value, err := i.evaluateValue(assign.Value, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	line := assign.Line()
	switch target := assign.Target.(type) {
	case *ast.Identifier:
		err = assignSymbol(scope, target.Name, value, line)
	case *ast.MemberAccess:
		err = i.assignMember(target, value, scope, line)
	case *ast.IndexExpression:
		err = i.assignIndex(target, value, scope, line)
	default:
		err = runtime.Errorf(runtime.Internal, line, "unsupported assignment target %T", assign.Target)
	}
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(value), nil
}

func assignSymbol(scope *runtime.Scope, name string, value runtime.Value, line int) error {
	sym, err := scope.Symbol(name, line)
	if err != nil {
		return runtime.Errorf(runtime.UndefinedReference, line, "Undefined variable: %s", name)
	}
	v, ok := sym.(*runtime.Variable)
	if !ok {
		return runtime.Errorf(runtime.NotAVariable, line, "Symbol is not a variable: %s", name)
	}
	if !types.Equal(value.DataType(), v.Type) {
		return runtime.Errorf(runtime.TypeMismatch, line, "Cannot assign value of type %s to variable %q of type %s", value.DataType(), name, v.Type)
	}
	v.Value = value
	return nil
}

func (i *Interpreter) assignMember(target *ast.MemberAccess, value runtime.Value, scope *runtime.Scope, line int) error {
	obj, err := i.evaluateValue(target.Object, scope)
	if err != nil {
		return err
	}
	inst, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return runtime.Errorf(runtime.NotAVariable, line, "Cannot assign to member %q of a value of type %s", target.Member, obj.DataType())
	}
	field, ok := inst.Type.Field(target.Member)
	if !ok {
		return runtime.Errorf(runtime.UndefinedReference, line, "Complex type %q does not have a field %q", inst.Type.Name, target.Member)
	}
	if !types.Equal(value.DataType(), field.Type) {
		return runtime.Errorf(runtime.TypeMismatch, line, "Field %q of complex type %q expects %s, but received %s", field.Name, inst.Type.Name, field.Type, value.DataType())
	}
	inst.Fields[field.Name] = value
	return nil
}

func (i *Interpreter) assignIndex(target *ast.IndexExpression, value runtime.Value, scope *runtime.Scope, line int) error {
	arr, idx, err := i.resolveIndex(target, scope)
	if err != nil {
		return err
	}
	if !types.Equal(value.DataType(), arr.Type.Element) {
		return runtime.Errorf(runtime.TypeMismatch, line, "Cannot store value of type %s in an array of type %s", value.DataType(), arr.Type.Element)
	}
	arr.Items[idx] = value
	return nil
}

//-----------------------------------------------------------------------------
// Records, members and indexing
//-----------------------------------------------------------------------------

func (i *Interpreter) evaluateInstantiation(inst *ast.Instantiation, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	line := inst.Line()
	record, err := scope.RecordType(inst.TypeName, line)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	if len(inst.Fields) != len(record.Fields) {
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.ArityMismatch, line, "Complex type %q has %d fields, but %d were given", record.Name, len(record.Fields), len(inst.Fields))
	}
	seen := make(map[string]struct{}, len(inst.Fields))
	for _, f := range inst.Fields {
		if _, dup := seen[f.Name]; dup {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.DuplicateIdentifier, fieldLine(f, line), "Duplicate field %q in instantiation of complex type %q", f.Name, record.Name)
		}
		seen[f.Name] = struct{}{}
	}
	values := make(map[string]runtime.Value, len(inst.Fields))
	for _, f := range inst.Fields {
		decl, ok := record.Field(f.Name)
		if !ok {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.UndefinedReference, fieldLine(f, line), "Unknown field %q in instantiation of complex type %q", f.Name, record.Name)
		}
		val, err := i.evaluateValue(f.Value, scope)
		if err != nil {
			return runtime.ControlFlowResult{}, err
		}
		if !types.Equal(val.DataType(), decl.Type) {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, fieldLine(f, line), "Field %q of complex type %q expects %s, but received %s", f.Name, record.Name, decl.Type, val.DataType())
		}
		values[f.Name] = val
	}
	return runtime.Result(&runtime.InstanceValue{Type: record, Fields: values}), nil
}

func fieldLine(f *ast.FieldInitializer, fallback int) int {
	if f.Line > 0 {
		return f.Line
	}
	return fallback
}

func (i *Interpreter) evaluateMemberAccess(expr *ast.MemberAccess, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	obj, err := i.evaluateValue(expr.Object, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	line := expr.Line()
	switch v := obj.(type) {
	case *runtime.InstanceValue:
		val, ok := v.Fields[expr.Member]
		if !ok {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.UndefinedReference, line, "Complex type %q does not have a field %q", v.Type.Name, expr.Member)
		}
		return runtime.Result(val), nil
	case runtime.NamespaceValue:
		sym, ok := v.Namespace.Scope.Local(expr.Member)
		if !ok {
			return runtime.ControlFlowResult{}, runtime.Errorf(runtime.UndefinedReference, line, "Namespace %q does not have a member %q", v.Namespace.Name, expr.Member)
		}
		return runtime.Result(symbolValue(sym)), nil
	default:
		return runtime.ControlFlowResult{}, runtime.Errorf(runtime.TypeMismatch, line, "Cannot access member %q of a value of type %s", expr.Member, obj.DataType())
	}
}

func (i *Interpreter) resolveIndex(expr *ast.IndexExpression, scope *runtime.Scope) (*runtime.ArrayValue, int64, error) {
	obj, err := i.evaluateValue(expr.Object, scope)
	if err != nil {
		return nil, 0, err
	}
	line := expr.Line()
	arr, ok := obj.(*runtime.ArrayValue)
	if !ok {
		return nil, 0, runtime.Errorf(runtime.NotIndexable, line, "Value of type %s is not indexable", obj.DataType())
	}
	idxVal, err := i.evaluateValue(expr.Index, scope)
	if err != nil {
		return nil, 0, err
	}
	idx, ok := idxVal.(runtime.IntegerValue)
	if !ok {
		return nil, 0, runtime.Errorf(runtime.TypeMismatch, line, "Array index must be an Integer, but received %s", idxVal.DataType())
	}
	if idx.Val < 0 || idx.Val >= int64(len(arr.Items)) {
		return nil, 0, runtime.Errorf(runtime.Bounds, line, "Index %d is out of bounds for array of size %d", idx.Val, len(arr.Items))
	}
	return arr, idx.Val, nil
}

func (i *Interpreter) evaluateIndexExpression(expr *ast.IndexExpression, scope *runtime.Scope) (runtime.ControlFlowResult, error) {
	arr, idx, err := i.resolveIndex(expr, scope)
	if err != nil {
		return runtime.ControlFlowResult{}, err
	}
	return runtime.Result(arr.Items[idx]), nil
}
