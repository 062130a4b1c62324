package ast

import "avo/interpreter-go/pkg/types"

type NodeType string

const (
	NodeModule              NodeType = "Module"
	NodeImport              NodeType = "Import"
	NodeIdentifier          NodeType = "Identifier"
	NodeIntegerLiteral      NodeType = "IntegerLiteral"
	NodeFloatLiteral        NodeType = "FloatLiteral"
	NodeStringLiteral       NodeType = "StringLiteral"
	NodeBooleanLiteral      NodeType = "BooleanLiteral"
	NodeArrayLiteral        NodeType = "ArrayLiteral"
	NodeBinaryExpression    NodeType = "BinaryExpression"
	NodeUnaryExpression     NodeType = "UnaryExpression"
	NodeBlockExpression     NodeType = "BlockExpression"
	NodeIfExpression        NodeType = "IfExpression"
	NodeLoopExpression      NodeType = "LoopExpression"
	NodeFunctionDefinition  NodeType = "FunctionDefinition"
	NodeFunctionCall        NodeType = "FunctionCall"
	NodeVariableDeclaration NodeType = "VariableDeclaration"
	NodeAssignment          NodeType = "Assignment"
	NodeInstantiation       NodeType = "Instantiation"
	NodeMemberAccess        NodeType = "MemberAccess"
	NodeIndexExpression     NodeType = "IndexExpression"
	NodeLengthExpression    NodeType = "LengthExpression"
	NodeInternalCall        NodeType = "InternalCall"
	NodeRecordDefinition    NodeType = "RecordDefinition"
	NodeReturnStatement     NodeType = "ReturnStatement"
	NodeBreakStatement      NodeType = "BreakStatement"
	NodeContinueStatement   NodeType = "ContinueStatement"

	// Abstract supertypes used when a concrete kind has no direct rule.
	NodeExpression NodeType = "Expression"
	NodeStatement  NodeType = "Statement"
)

// Supertype returns the declared parent kind of a node kind, or "" at the top.
func Supertype(kind NodeType) NodeType {
	switch kind {
	case NodeExpression, NodeStatement, NodeModule, NodeImport, "":
		return ""
	case NodeRecordDefinition, NodeReturnStatement, NodeBreakStatement, NodeContinueStatement:
		return NodeStatement
	default:
		return NodeExpression
	}
}

type Node interface {
	NodeType() NodeType
	Line() int
	setLine(line int)
}

type nodeImpl struct {
	Type       NodeType `json:"type"`
	SourceLine int      `json:"line"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n *nodeImpl) NodeType() NodeType { return n.Type }
func (n *nodeImpl) Line() int          { return n.SourceLine }
func (n *nodeImpl) setLine(line int)   { n.SourceLine = line }

// WithLine stamps a source line onto a freshly constructed node.
func WithLine[T Node](node T, line int) T {
	node.setLine(line)
	return node
}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// AssignmentTarget is implemented by the expressions allowed on the left of '='.
type AssignmentTarget interface {
	Expression
	assignmentTarget()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTarget() {}

// Module

type Import struct {
	nodeImpl

	Name string `json:"name"`
}

func NewImport(name string) *Import {
	return &Import{nodeImpl: newNodeImpl(NodeImport), Name: name}
}

// Module is a parsed source file: its declared name, imports and top-level nodes.
type Module struct {
	nodeImpl

	Name    string    `json:"name"`
	Imports []*Import `json:"imports"`
	Body    []Node    `json:"body"`
}

func NewModule(name string, imports []*Import, body []Node) *Module {
	return &Module{nodeImpl: newNodeImpl(NodeModule), Name: name, Imports: imports, Body: body}
}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type IntegerLiteral struct {
	nodeImpl
	expressionMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type FloatLiteral struct {
	nodeImpl
	expressionMarker

	Value float64 `json:"value"`
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{nodeImpl: newNodeImpl(NodeFloatLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// Operators

type BinaryOperator string

const (
	OpPlus         BinaryOperator = "+"
	OpMinus        BinaryOperator = "-"
	OpMultiply     BinaryOperator = "*"
	OpDivide       BinaryOperator = "/"
	OpModulo       BinaryOperator = "%"
	OpPower        BinaryOperator = "^"
	OpGreater      BinaryOperator = ">"
	OpLess         BinaryOperator = "<"
	OpGreaterEqual BinaryOperator = ">="
	OpLessEqual    BinaryOperator = "<="
	OpEqual        BinaryOperator = "=="
	OpNotEqual     BinaryOperator = "!="
	OpAnd          BinaryOperator = "&&"
	OpOr           BinaryOperator = "||"
)

type BinaryExpression struct {
	nodeImpl
	expressionMarker

	Operator BinaryOperator `json:"operator"`
	Left     Expression     `json:"left"`
	Right    Expression     `json:"right"`
}

func NewBinaryExpression(operator BinaryOperator, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type UnaryOperator string

const (
	OpNegate UnaryOperator = "-"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

// Control flow

type BlockExpression struct {
	nodeImpl
	expressionMarker

	Body []Node `json:"body"`
}

func NewBlockExpression(body []Node) *BlockExpression {
	return &BlockExpression{nodeImpl: newNodeImpl(NodeBlockExpression), Body: body}
}

type IfBranch struct {
	Condition Expression       `json:"condition"`
	Body      *BlockExpression `json:"body"`
}

type IfExpression struct {
	nodeImpl
	expressionMarker

	Branches []*IfBranch      `json:"branches"`
	Else     *BlockExpression `json:"else,omitempty"`
}

func NewIfExpression(branches []*IfBranch, elseBody *BlockExpression) *IfExpression {
	return &IfExpression{nodeImpl: newNodeImpl(NodeIfExpression), Branches: branches, Else: elseBody}
}

type LoopBound struct {
	Value     Expression `json:"value"`
	Exclusive bool       `json:"exclusive"`
}

type LoopExpression struct {
	nodeImpl
	expressionMarker

	Variable string           `json:"variable"`
	Start    LoopBound        `json:"start"`
	End      LoopBound        `json:"end"`
	Step     Expression       `json:"step"`
	Body     *BlockExpression `json:"body"`
}

func NewLoopExpression(variable string, start, end LoopBound, step Expression, body *BlockExpression) *LoopExpression {
	return &LoopExpression{
		nodeImpl: newNodeImpl(NodeLoopExpression),
		Variable: variable,
		Start:    start,
		End:      end,
		Step:     step,
		Body:     body,
	}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

type BreakStatement struct {
	nodeImpl
	statementMarker
}

func NewBreakStatement() *BreakStatement {
	return &BreakStatement{nodeImpl: newNodeImpl(NodeBreakStatement)}
}

type ContinueStatement struct {
	nodeImpl
	statementMarker
}

func NewContinueStatement() *ContinueStatement {
	return &ContinueStatement{nodeImpl: newNodeImpl(NodeContinueStatement)}
}

// Functions

type Parameter struct {
	Name string         `json:"name"`
	Type types.DataType `json:"type"`
}

type FunctionDefinition struct {
	nodeImpl
	expressionMarker

	// Name is empty for anonymous functions.
	Name       string           `json:"name,omitempty"`
	Params     []*Parameter     `json:"params"`
	ReturnType types.DataType   `json:"returnType"`
	Body       *BlockExpression `json:"body"`
}

func NewFunctionDefinition(name string, params []*Parameter, returnType types.DataType, body *BlockExpression) *FunctionDefinition {
	if returnType == nil {
		returnType = types.Void
	}
	return &FunctionDefinition{
		nodeImpl:   newNodeImpl(NodeFunctionDefinition),
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Body:       body,
	}
}

type FunctionCall struct {
	nodeImpl
	expressionMarker

	Callee    Expression   `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewFunctionCall(callee Expression, args []Expression) *FunctionCall {
	return &FunctionCall{nodeImpl: newNodeImpl(NodeFunctionCall), Callee: callee, Arguments: args}
}

type InternalCall struct {
	nodeImpl
	expressionMarker

	Name      string       `json:"name"`
	Arguments []Expression `json:"arguments"`
}

func NewInternalCall(name string, args []Expression) *InternalCall {
	return &InternalCall{nodeImpl: newNodeImpl(NodeInternalCall), Name: name, Arguments: args}
}

// Variables

type VariableDeclaration struct {
	nodeImpl
	expressionMarker

	Name  string         `json:"name"`
	Type  types.DataType `json:"type"`
	// Value is nil when the declaration relies on the type's default.
	Value Expression     `json:"value,omitempty"`
}

func NewVariableDeclaration(name string, dataType types.DataType, value Expression) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Name: name, Type: dataType, Value: value}
}

type Assignment struct {
	nodeImpl
	expressionMarker

	Target AssignmentTarget `json:"target"`
	Value  Expression       `json:"value"`
}

func NewAssignment(target AssignmentTarget, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

// Records, members and arrays

type FieldDefinition struct {
	Name string         `json:"name"`
	Type types.DataType `json:"type"`
	Line int            `json:"line"`
}

type RecordDefinition struct {
	nodeImpl
	statementMarker

	Name   string             `json:"name"`
	Fields []*FieldDefinition `json:"fields"`
}

func NewRecordDefinition(name string, fields []*FieldDefinition) *RecordDefinition {
	return &RecordDefinition{nodeImpl: newNodeImpl(NodeRecordDefinition), Name: name, Fields: fields}
}

type FieldInitializer struct {
	Name  string     `json:"name"`
	Value Expression `json:"value"`
	Line  int        `json:"line"`
}

type Instantiation struct {
	nodeImpl
	expressionMarker

	TypeName string              `json:"typeName"`
	Fields   []*FieldInitializer `json:"fields"`
}

func NewInstantiation(typeName string, fields []*FieldInitializer) *Instantiation {
	return &Instantiation{nodeImpl: newNodeImpl(NodeInstantiation), TypeName: typeName, Fields: fields}
}

type MemberAccess struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Member string     `json:"member"`
}

func NewMemberAccess(object Expression, member string) *MemberAccess {
	return &MemberAccess{nodeImpl: newNodeImpl(NodeMemberAccess), Object: object, Member: member}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type LengthExpression struct {
	nodeImpl
	expressionMarker

	Operand Expression `json:"operand"`
}

func NewLengthExpression(operand Expression) *LengthExpression {
	return &LengthExpression{nodeImpl: newNodeImpl(NodeLengthExpression), Operand: operand}
}
