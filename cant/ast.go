package cant

// Node is implemented by every parsed syntax node.
type Node interface {
	Pos() Position
}

// Statement nodes appear at the top level of a program or block.
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes produce a value when evaluated.
type Expression interface {
	Node
	exprNode()
}

// Program is the root of a parsed script.
type Program struct {
	Statements []Statement
}

// FunctionStmt declares a named function.
type FunctionStmt struct {
	Name   string
	Params []string
	Body   []Statement

	position Position
}

func (s *FunctionStmt) Pos() Position { return s.position }
func (s *FunctionStmt) stmtNode()     {}

// ReturnStmt returns a value from the enclosing function, or ends the
// script when used at the top level.
type ReturnStmt struct {
	Value Expression

	position Position
}

func (s *ReturnStmt) Pos() Position { return s.position }
func (s *ReturnStmt) stmtNode()     {}

// RaiseStmt raises an error condition. A bare raise inside a rescue
// block re-raises the condition being handled.
type RaiseStmt struct {
	Value Expression

	position Position
}

func (s *RaiseStmt) Pos() Position { return s.position }
func (s *RaiseStmt) stmtNode()     {}

// AssignStmt assigns to an identifier, member, or index target.
type AssignStmt struct {
	Target Expression
	Value  Expression

	position Position
}

func (s *AssignStmt) Pos() Position { return s.position }
func (s *AssignStmt) stmtNode()     {}

// ExprStmt wraps an expression used in statement position.
type ExprStmt struct {
	Value Expression

	position Position
}

func (s *ExprStmt) Pos() Position { return s.position }
func (s *ExprStmt) stmtNode()     {}

// AssertStmt checks a condition and raises when it is falsy.
type AssertStmt struct {
	Condition Expression
	Message   Expression

	position Position
}

func (s *AssertStmt) Pos() Position { return s.position }
func (s *AssertStmt) stmtNode()     {}

// IfStmt is a conditional with optional elsif chains and else branch.
type IfStmt struct {
	Condition  Expression
	Consequent []Statement
	ElseIf     []*IfStmt
	Alternate  []Statement

	position Position
}

func (s *IfStmt) Pos() Position { return s.position }
func (s *IfStmt) stmtNode()     {}

// WhileStmt loops while its condition is truthy.
type WhileStmt struct {
	Condition Expression
	Body      []Statement

	position Position
}

func (s *WhileStmt) Pos() Position { return s.position }
func (s *WhileStmt) stmtNode()     {}

// ForStmt iterates over an array, range, or hash keys.
type ForStmt struct {
	Iterator string
	Iterable Expression
	Body     []Statement

	position Position
}

func (s *ForStmt) Pos() Position { return s.position }
func (s *ForStmt) stmtNode()     {}

// BreakStmt exits the nearest enclosing loop.
type BreakStmt struct {
	position Position
}

func (s *BreakStmt) Pos() Position { return s.position }
func (s *BreakStmt) stmtNode()     {}

// NextStmt skips to the next iteration of the nearest enclosing loop.
type NextStmt struct {
	position Position
}

func (s *NextStmt) Pos() Position { return s.position }
func (s *NextStmt) stmtNode()     {}

// TryStmt runs its body and optionally handles raised conditions.
// RescueKind narrows the handler to a single error kind; it is empty
// when the handler catches everything. RescueVar names the binding
// that receives the condition hash inside the rescue block.
type TryStmt struct {
	Body       []Statement
	HasRescue  bool
	RescueKind string
	RescueVar  string
	Rescue     []Statement
	Ensure     []Statement

	position Position
}

func (s *TryStmt) Pos() Position { return s.position }
func (s *TryStmt) stmtNode()     {}

// Identifier references a variable or zero-argument callable by name.
type Identifier struct {
	Name string

	position Position
}

func (e *Identifier) Pos() Position { return e.position }
func (e *Identifier) exprNode()     {}

type IntLiteral struct {
	Value int64

	position Position
}

func (e *IntLiteral) Pos() Position { return e.position }
func (e *IntLiteral) exprNode()     {}

type FloatLiteral struct {
	Value float64

	position Position
}

func (e *FloatLiteral) Pos() Position { return e.position }
func (e *FloatLiteral) exprNode()     {}

type StringLiteral struct {
	Value string

	position Position
}

func (e *StringLiteral) Pos() Position { return e.position }
func (e *StringLiteral) exprNode()     {}

type BoolLiteral struct {
	Value bool

	position Position
}

func (e *BoolLiteral) Pos() Position { return e.position }
func (e *BoolLiteral) exprNode()     {}

type NilLiteral struct {
	position Position
}

func (e *NilLiteral) Pos() Position { return e.position }
func (e *NilLiteral) exprNode()     {}

type ArrayLiteral struct {
	Items []Expression

	position Position
}

func (e *ArrayLiteral) Pos() Position { return e.position }
func (e *ArrayLiteral) exprNode()     {}

// HashPair is a single key/value entry in a hash literal. Keys are
// identifiers or string literals; both denote the literal string key.
type HashPair struct {
	Key   string
	Value Expression
}

type HashLiteral struct {
	Pairs []HashPair

	position Position
}

func (e *HashLiteral) Pos() Position { return e.position }
func (e *HashLiteral) exprNode()     {}

// RangeExpr is an inclusive integer range such as 1..5.
type RangeExpr struct {
	Start Expression
	End   Expression

	position Position
}

func (e *RangeExpr) Pos() Position { return e.position }
func (e *RangeExpr) exprNode()     {}

// KeywordArg is a name: value argument in a call.
type KeywordArg struct {
	Name  string
	Value Expression
}

// CallExpr invokes a callable with positional and keyword arguments.
type CallExpr struct {
	Callee Expression
	Args   []Expression
	KwArgs []KeywordArg

	position Position
}

func (e *CallExpr) Pos() Position { return e.position }
func (e *CallExpr) exprNode()     {}

// MemberExpr accesses object.property.
type MemberExpr struct {
	Object   Expression
	Property string

	position Position
}

func (e *MemberExpr) Pos() Position { return e.position }
func (e *MemberExpr) exprNode()     {}

// IndexExpr accesses object[index].
type IndexExpr struct {
	Object Expression
	Index  Expression

	position Position
}

func (e *IndexExpr) Pos() Position { return e.position }
func (e *IndexExpr) exprNode()     {}

// UnaryExpr is a prefix operator application such as -x or !ok.
type UnaryExpr struct {
	Operator string
	Operand  Expression

	position Position
}

func (e *UnaryExpr) Pos() Position { return e.position }
func (e *UnaryExpr) exprNode()     {}

// BinaryExpr is an infix operator application.
type BinaryExpr struct {
	Operator string
	Left     Expression
	Right    Expression

	position Position
}

func (e *BinaryExpr) Pos() Position { return e.position }
func (e *BinaryExpr) exprNode()     {}

// AwaitExpr waits for a task to settle and yields its result. Awaiting
// a non-task value yields the value unchanged.
type AwaitExpr struct {
	Value Expression

	position Position
}

func (e *AwaitExpr) Pos() Position { return e.position }
func (e *AwaitExpr) exprNode()     {}
