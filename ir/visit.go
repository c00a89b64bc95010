package ir

// MapExpressionOperands returns a copy of kind with every operand handle
// replaced by f(handle). It reports false for expression kinds it does not
// know, so rewriting passes can stay exhaustive over the IR.
//
//nolint:gocyclo,cyclop // Mapping requires handling all expression kinds
func MapExpressionOperands(kind ExpressionKind, f func(ExpressionHandle) ExpressionHandle) (ExpressionKind, bool) {
	switch k := kind.(type) {
	case Literal, ExprConstant, ExprZeroValue, ExprFunctionArgument, ExprGlobalVariable, ExprLocalVariable:
		return kind, true
	case ExprCompose:
		k.Components = mapHandles(k.Components, f)
		return k, true
	case ExprAccess:
		k.Base = f(k.Base)
		k.Index = f(k.Index)
		return k, true
	case ExprAccessIndex:
		k.Base = f(k.Base)
		return k, true
	case ExprSplat:
		k.Value = f(k.Value)
		return k, true
	case ExprSwizzle:
		k.Vector = f(k.Vector)
		return k, true
	case ExprLoad:
		k.Pointer = f(k.Pointer)
		return k, true
	case ExprUnary:
		k.Expr = f(k.Expr)
		return k, true
	case ExprBinary:
		k.Left = f(k.Left)
		k.Right = f(k.Right)
		return k, true
	case ExprSelect:
		k.Condition = f(k.Condition)
		k.Accept = f(k.Accept)
		k.Reject = f(k.Reject)
		return k, true
	case ExprDerivative:
		k.Expr = f(k.Expr)
		return k, true
	case ExprRelational:
		k.Argument = f(k.Argument)
		return k, true
	case ExprMath:
		k.Arg = f(k.Arg)
		k.Arg1 = mapHandlePtr(k.Arg1, f)
		k.Arg2 = mapHandlePtr(k.Arg2, f)
		return k, true
	case ExprAs:
		k.Expr = f(k.Expr)
		return k, true
	case ExprCall:
		k.Arguments = mapHandles(k.Arguments, f)
		return k, true
	case ExprBuiltinCall:
		k.Arguments = mapHandles(k.Arguments, f)
		return k, true
	case ExprArrayLength:
		k.Array = f(k.Array)
		return k, true
	default:
		return kind, false
	}
}

// MapStatementOperands returns a copy of kind with every expression handle
// it references directly replaced by f(handle). Nested blocks are not
// visited; callers recurse with the block walker of their choice.
// It reports false for statement kinds it does not know.
func MapStatementOperands(kind StatementKind, f func(ExpressionHandle) ExpressionHandle) (StatementKind, bool) {
	switch k := kind.(type) {
	case StmtEmit, StmtBlock, StmtBreak, StmtContinue, StmtKill, StmtBarrier:
		return kind, true
	case StmtIf:
		k.Condition = f(k.Condition)
		return k, true
	case StmtSwitch:
		k.Selector = f(k.Selector)
		return k, true
	case StmtLoop:
		k.BreakIf = mapHandlePtr(k.BreakIf, f)
		return k, true
	case StmtReturn:
		k.Value = mapHandlePtr(k.Value, f)
		return k, true
	case StmtStore:
		k.Pointer = f(k.Pointer)
		k.Value = f(k.Value)
		return k, true
	case StmtCall:
		k.Arguments = mapHandles(k.Arguments, f)
		return k, true
	case StmtExpression:
		k.Expr = f(k.Expr)
		return k, true
	default:
		return kind, false
	}
}

// ChildBlocks returns the blocks nested directly in a statement. The blocks
// share their backing arrays with the statement, so statements can be
// rewritten in place through them.
func ChildBlocks(stmt Statement) []Block {
	switch k := stmt.Kind.(type) {
	case StmtBlock:
		return []Block{k.Block}
	case StmtIf:
		return []Block{k.Accept, k.Reject}
	case StmtSwitch:
		out := make([]Block, len(k.Cases))
		for i := range k.Cases {
			out[i] = k.Cases[i].Body
		}
		return out
	case StmtLoop:
		return []Block{k.Body, k.Continuing}
	default:
		return nil
	}
}

func mapHandles(hs []ExpressionHandle, f func(ExpressionHandle) ExpressionHandle) []ExpressionHandle {
	if hs == nil {
		return nil
	}
	out := make([]ExpressionHandle, len(hs))
	for i, h := range hs {
		out[i] = f(h)
	}
	return out
}

func mapHandlePtr(h *ExpressionHandle, f func(ExpressionHandle) ExpressionHandle) *ExpressionHandle {
	if h == nil {
		return nil
	}
	v := f(*h)
	return &v
}
