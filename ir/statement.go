package ir

// Statement represents a statement in the IR.
// Statements have side effects and structured control flow, but do not produce values.
// The function body is represented as a tree of statements, with references to expressions.
type Statement struct {
	Kind StatementKind
}

// StatementKind represents the different kinds of statements.
type StatementKind interface {
	statementKind()
}

// Block represents a sequence of statements executed in order.
type Block []Statement

// Range represents a range of expression handles for Emit statements.
type Range struct {
	Start ExpressionHandle
	End   ExpressionHandle // Exclusive
}

// StmtEmit marks a range of expressions as evaluated at this point.
// The ESSL generator inlines expressions at their use sites, so Emit
// carries no text of its own.
type StmtEmit struct {
	Range Range
}

func (StmtEmit) statementKind() {}

// StmtBlock contains a sequence of statements to be executed in order.
type StmtBlock struct {
	Block Block
}

func (StmtBlock) statementKind() {}

// StmtIf conditionally executes one of two blocks based on the condition value.
type StmtIf struct {
	Condition ExpressionHandle // Must be a bool expression
	Accept    Block
	Reject    Block
}

func (StmtIf) statementKind() {}

// StmtSwitch executes one of multiple blocks based on the selector value (ESSL 3.00).
type StmtSwitch struct {
	Selector ExpressionHandle
	Cases    []SwitchCase
}

func (StmtSwitch) statementKind() {}

// SwitchCase represents a case in a switch statement.
type SwitchCase struct {
	Value       SwitchValue
	Body        Block
	FallThrough bool // If true, execution continues to next case
}

// SwitchValue represents the value that triggers a switch case.
type SwitchValue interface {
	switchValue()
}

// SwitchValueI32 represents a signed 32-bit integer switch value.
type SwitchValueI32 int32

func (SwitchValueI32) switchValue() {}

// SwitchValueU32 represents an unsigned 32-bit integer switch value.
type SwitchValueU32 uint32

func (SwitchValueU32) switchValue() {}

// SwitchValueDefault represents the default case in a switch statement.
type SwitchValueDefault struct{}

func (SwitchValueDefault) switchValue() {}

// StmtLoop executes a block repeatedly.
// Each iteration executes the Body block, followed by the Continuing block.
type StmtLoop struct {
	Body       Block
	Continuing Block
	BreakIf    *ExpressionHandle // Optional break-if expression evaluated after continuing
}

func (StmtLoop) statementKind() {}

// StmtBreak exits the innermost enclosing Loop or Switch statement.
type StmtBreak struct{}

func (StmtBreak) statementKind() {}

// StmtContinue skips to the continuing block of the innermost enclosing Loop.
type StmtContinue struct{}

func (StmtContinue) statementKind() {}

// StmtReturn returns from the function, possibly with a value.
type StmtReturn struct {
	Value *ExpressionHandle
}

func (StmtReturn) statementKind() {}

// StmtKill discards the current fragment.
type StmtKill struct{}

func (StmtKill) statementKind() {}

// StmtBarrier synchronizes invocations within the work group (ESSL 3.10 compute).
type StmtBarrier struct {
	Flags BarrierFlags
}

func (StmtBarrier) statementKind() {}

// BarrierFlags represents memory barrier flags using bitflags pattern.
type BarrierFlags uint32

const (
	// BarrierStorage affects buffer memory.
	BarrierStorage BarrierFlags = 1 << 0
	// BarrierWorkGroup affects shared memory.
	BarrierWorkGroup BarrierFlags = 1 << 1
	// BarrierTexture affects image memory.
	BarrierTexture BarrierFlags = 1 << 2
)

// AssignOp selects plain or compound assignment for a store.
type AssignOp uint8

const (
	AssignPlain    AssignOp = iota // =
	AssignAdd                      // +=
	AssignSubtract                 // -=
	AssignMultiply                 // *=
	AssignDivide                   // /=
)

// String returns the ESSL assignment operator.
func (op AssignOp) String() string {
	switch op {
	case AssignAdd:
		return "+="
	case AssignSubtract:
		return "-="
	case AssignMultiply:
		return "*="
	case AssignDivide:
		return "/="
	default:
		return "="
	}
}

// StmtStore assigns a value to an lvalue expression.
type StmtStore struct {
	Pointer ExpressionHandle
	Value   ExpressionHandle
	Op      AssignOp
}

func (StmtStore) statementKind() {}

// StmtCall calls a function that returns no value.
type StmtCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
}

func (StmtCall) statementKind() {}

// StmtExpression evaluates an expression for its side effects.
type StmtExpression struct {
	Expr ExpressionHandle
}

func (StmtExpression) statementKind() {}
