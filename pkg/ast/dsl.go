package ast

import "avo/interpreter-go/pkg/types"

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Flt(value float64) *FloatLiteral {
	return NewFloatLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

// Expression helpers.

func Bin(op BinaryOperator, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Neg(operand Expression) *UnaryExpression {
	return NewUnaryExpression(OpNegate, operand)
}

func Block(body ...Node) *BlockExpression {
	return NewBlockExpression(body)
}

func If(condition Expression, body *BlockExpression) *IfExpression {
	return NewIfExpression([]*IfBranch{{Condition: condition, Body: body}}, nil)
}

func IfElse(condition Expression, body, elseBody *BlockExpression) *IfExpression {
	return NewIfExpression([]*IfBranch{{Condition: condition, Body: body}}, elseBody)
}

func Branch(condition Expression, body *BlockExpression) *IfBranch {
	return &IfBranch{Condition: condition, Body: body}
}

func Loop(variable string, start, end Expression, body *BlockExpression) *LoopExpression {
	return NewLoopExpression(variable, LoopBound{Value: start}, LoopBound{Value: end}, Int(1), body)
}

func LoopStep(variable string, start, end LoopBound, step Expression, body *BlockExpression) *LoopExpression {
	return NewLoopExpression(variable, start, end, step, body)
}

func Incl(value Expression) LoopBound {
	return LoopBound{Value: value}
}

func Excl(value Expression) LoopBound {
	return LoopBound{Value: value, Exclusive: true}
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func Brk() *BreakStatement {
	return NewBreakStatement()
}

func Cont() *ContinueStatement {
	return NewContinueStatement()
}

// Function helpers.

func Param(name string, dataType types.DataType) *Parameter {
	return &Parameter{Name: name, Type: dataType}
}

func Fn(name string, params []*Parameter, returnType types.DataType, body ...Node) *FunctionDefinition {
	return NewFunctionDefinition(name, params, returnType, NewBlockExpression(body))
}

func Lambda(params []*Parameter, returnType types.DataType, body ...Node) *FunctionDefinition {
	return NewFunctionDefinition("", params, returnType, NewBlockExpression(body))
}

func Call(callee Expression, args ...Expression) *FunctionCall {
	return NewFunctionCall(callee, args)
}

func CallName(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

func Internal(name string, args ...Expression) *InternalCall {
	return NewInternalCall(name, args)
}

// Variable helpers.

func Var(name string, dataType types.DataType, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(name, dataType, value)
}

func Infer(name string, value Expression) *VariableDeclaration {
	return NewVariableDeclaration(name, types.Inferred, value)
}

func Assign(target AssignmentTarget, value Expression) *Assignment {
	return NewAssignment(target, value)
}

func AssignName(name string, value Expression) *Assignment {
	return NewAssignment(ID(name), value)
}

// Record, member and array helpers.

func Field(name string, dataType types.DataType) *FieldDefinition {
	return &FieldDefinition{Name: name, Type: dataType}
}

func Record(name string, fields ...*FieldDefinition) *RecordDefinition {
	return NewRecordDefinition(name, fields)
}

func Init(name string, value Expression) *FieldInitializer {
	return &FieldInitializer{Name: name, Value: value}
}

func New(typeName string, fields ...*FieldInitializer) *Instantiation {
	return NewInstantiation(typeName, fields)
}

func Member(object Expression, member string) *MemberAccess {
	return NewMemberAccess(object, member)
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func Len(operand Expression) *LengthExpression {
	return NewLengthExpression(operand)
}

// Module helpers.

func Mod(name string, imports []string, body ...Node) *Module {
	imps := make([]*Import, len(imports))
	for i, name := range imports {
		imps[i] = NewImport(name)
	}
	return NewModule(name, imps, body)
}
