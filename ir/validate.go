package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function   string
	Expression *ExpressionHandle
	Statement  int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Expression != nil {
			return fmt.Sprintf("in function %s, expression %d: %s", e.Function, *e.Expression, e.Message)
		}
		if e.Statement >= 0 {
			return fmt.Sprintf("in function %s, statement %d: %s", e.Function, e.Statement, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator checks handle integrity of IR modules.
type Validator struct {
	module  *Module
	errors  []ValidationError
	context validationContext
}

type validationContext struct {
	function     *Function
	functionName string
	loopDepth    int
	switchDepth  int
}

// Validate checks that every handle in the module points at an existing
// arena entry and that control flow statements appear where they may.
// Returns validation errors if any, or nil if the module is well formed.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{
		module: module,
		errors: make([]ValidationError, 0),
	}

	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateTypes()
	v.validateConstants()
	v.validateGlobalVariables()
	v.validateFunctions()

	if !v.isValidFunctionHandle(v.module.EntryPoint) {
		v.addError(fmt.Sprintf("entry point function %d does not exist", v.module.EntryPoint))
	}
	for i, dp := range v.module.DefaultPrecisions {
		if !v.isValidTypeHandle(dp.Type) {
			v.addError(fmt.Sprintf("default precision %d: type %d does not exist", i, dp.Type))
		}
	}
}

func (v *Validator) validateTypes() {
	for i := range v.module.Types {
		v.validateType(TypeHandle(i), &v.module.Types[i])
	}
}

//nolint:gocyclo,cyclop // Type validation requires checking many type variants
func (v *Validator) validateType(handle TypeHandle, typ *Type) {
	if typ.Inner == nil {
		v.addError(fmt.Sprintf("type %d has nil inner type", handle))
		return
	}

	switch inner := typ.Inner.(type) {
	case ScalarType, SamplerType:
	case VectorType:
		if !validSize(inner.Size) {
			v.addError(fmt.Sprintf("type %d: vector size must be 2, 3, or 4, got %d", handle, inner.Size))
		}
	case MatrixType:
		if !validSize(inner.Columns) {
			v.addError(fmt.Sprintf("type %d: matrix columns must be 2, 3, or 4, got %d", handle, inner.Columns))
		}
		if !validSize(inner.Rows) {
			v.addError(fmt.Sprintf("type %d: matrix rows must be 2, 3, or 4, got %d", handle, inner.Rows))
		}
	case ArrayType:
		if !v.isValidTypeHandle(inner.Base) {
			v.addError(fmt.Sprintf("type %d: array base type %d does not exist", handle, inner.Base))
		}
		if inner.Base == handle {
			v.addError(fmt.Sprintf("type %d: array has circular reference to itself", handle))
		}
	case StructType:
		if typ.Symbol.Kind == SymbolEmpty {
			v.addError(fmt.Sprintf("type %d: struct has no name", handle))
		}
		memberNames := make(map[string]bool)
		for j, member := range inner.Members {
			if member.Name == "" {
				v.addError(fmt.Sprintf("type %d: struct member %d has empty name", handle, j))
			}
			if memberNames[member.Name] {
				v.addError(fmt.Sprintf("type %d: duplicate struct member name %q", handle, member.Name))
			}
			memberNames[member.Name] = true
			if !v.isValidTypeHandle(member.Type) {
				v.addError(fmt.Sprintf("type %d: struct member %q type %d does not exist", handle, member.Name, member.Type))
			}
			if member.Type == handle {
				v.addError(fmt.Sprintf("type %d: struct member %q has circular reference", handle, member.Name))
			}
		}
	default:
		v.addError(fmt.Sprintf("type %d: unknown type kind %T", handle, inner))
	}
}

func validSize(s VectorSize) bool {
	return s == Vec2 || s == Vec3 || s == Vec4
}

func (v *Validator) validateConstants() {
	for i, c := range v.module.Constants {
		if !v.isValidTypeHandle(c.Type) {
			v.addError(fmt.Sprintf("constant %d (%s): type %d does not exist", i, c.Symbol.Name, c.Type))
		}
		if comp, ok := c.Value.(CompositeValue); ok {
			for _, h := range comp.Components {
				if !v.isValidConstantHandle(h) || int(h) == i {
					v.addError(fmt.Sprintf("constant %d (%s): component %d is invalid", i, c.Symbol.Name, h))
				}
			}
		}
	}
}

func (v *Validator) validateGlobalVariables() {
	for i, gv := range v.module.GlobalVariables {
		if !v.isValidTypeHandle(gv.Type) {
			v.addError(fmt.Sprintf("global variable %d (%s): type %d does not exist", i, gv.Symbol.Name, gv.Type))
		}
		if gv.Init != nil && !v.isValidConstantHandle(*gv.Init) {
			v.addError(fmt.Sprintf("global variable %q: init constant %d does not exist", gv.Symbol.Name, *gv.Init))
		}
	}
}

func (v *Validator) validateFunctions() {
	for i := range v.module.Functions {
		fn := &v.module.Functions[i]
		v.context = validationContext{
			function:     fn,
			functionName: fn.Symbol.Name,
		}
		v.validateFunction(fn)
	}
	v.context = validationContext{}
}

func (v *Validator) validateFunction(fn *Function) {
	for i, arg := range fn.Arguments {
		if !v.isValidTypeHandle(arg.Type) {
			v.addErrorInFunction(fmt.Sprintf("argument %d (%s): type %d does not exist", i, arg.Symbol.Name, arg.Type))
		}
	}

	if fn.Result != nil && !v.isValidTypeHandle(fn.Result.Type) {
		v.addErrorInFunction(fmt.Sprintf("result type %d does not exist", fn.Result.Type))
	}

	for i, lv := range fn.LocalVars {
		if !v.isValidTypeHandle(lv.Type) {
			v.addErrorInFunction(fmt.Sprintf("local variable %d (%s): type %d does not exist", i, lv.Symbol.Name, lv.Type))
		}
		if lv.Init != nil && !v.isValidExpressionHandle(*lv.Init) {
			v.addErrorInFunction(fmt.Sprintf("local variable %q: init expression %d does not exist", lv.Symbol.Name, *lv.Init))
		}
	}

	for i := range fn.Expressions {
		v.validateExpression(ExpressionHandle(i), &fn.Expressions[i])
	}

	v.validateBlock(fn.Body)
}

// validateExpression checks the handles referenced by a single expression.
//
//nolint:gocognit,gocyclo,cyclop,funlen // Expression validation requires checking many expression variants
func (v *Validator) validateExpression(handle ExpressionHandle, expr *Expression) {
	if expr.Kind == nil {
		v.addErrorInExpression(handle, "expression has nil kind")
		return
	}

	check := func(role string, h ExpressionHandle) {
		if !v.isValidExpressionHandle(h) {
			v.addErrorInExpression(handle, fmt.Sprintf("%s expression %d does not exist", role, h))
		}
	}

	switch kind := expr.Kind.(type) {
	case Literal:
		if kind.Value == nil {
			v.addErrorInExpression(handle, "literal has no value")
		}
	case ExprConstant:
		if !v.isValidConstantHandle(kind.Constant) {
			v.addErrorInExpression(handle, fmt.Sprintf("constant %d does not exist", kind.Constant))
		}
	case ExprZeroValue:
		if !v.isValidTypeHandle(kind.Type) {
			v.addErrorInExpression(handle, fmt.Sprintf("type %d does not exist", kind.Type))
		}
	case ExprCompose:
		if !v.isValidTypeHandle(kind.Type) {
			v.addErrorInExpression(handle, fmt.Sprintf("type %d does not exist", kind.Type))
		}
		for _, comp := range kind.Components {
			check("component", comp)
		}
	case ExprAccess:
		check("base", kind.Base)
		check("index", kind.Index)
	case ExprAccessIndex:
		check("base", kind.Base)
	case ExprSplat:
		if !validSize(kind.Size) {
			v.addErrorInExpression(handle, fmt.Sprintf("splat size must be 2, 3, or 4, got %d", kind.Size))
		}
		check("value", kind.Value)
	case ExprSwizzle:
		if kind.Size < 1 || kind.Size > Vec4 {
			v.addErrorInExpression(handle, fmt.Sprintf("swizzle size must be 1 to 4, got %d", kind.Size))
		}
		check("vector", kind.Vector)
		for i := 0; i < int(kind.Size) && i < len(kind.Pattern); i++ {
			if kind.Pattern[i] > SwizzleW {
				v.addErrorInExpression(handle, fmt.Sprintf("pattern[%d] invalid component %d", i, kind.Pattern[i]))
			}
		}
	case ExprFunctionArgument:
		if int(kind.Index) >= len(v.context.function.Arguments) {
			v.addErrorInExpression(handle, fmt.Sprintf("argument index %d out of range (function has %d args)",
				kind.Index, len(v.context.function.Arguments)))
		}
	case ExprGlobalVariable:
		if !v.isValidGlobalVariableHandle(kind.Variable) {
			v.addErrorInExpression(handle, fmt.Sprintf("global variable %d does not exist", kind.Variable))
		}
	case ExprLocalVariable:
		if int(kind.Variable) >= len(v.context.function.LocalVars) {
			v.addErrorInExpression(handle, fmt.Sprintf("local variable index %d out of range (function has %d vars)",
				kind.Variable, len(v.context.function.LocalVars)))
		}
	case ExprLoad:
		check("pointer", kind.Pointer)
	case ExprUnary:
		check("operand", kind.Expr)
	case ExprBinary:
		check("left", kind.Left)
		check("right", kind.Right)
	case ExprSelect:
		check("condition", kind.Condition)
		check("accept", kind.Accept)
		check("reject", kind.Reject)
	case ExprDerivative:
		check("operand", kind.Expr)
	case ExprRelational:
		check("argument", kind.Argument)
	case ExprMath:
		for _, arg := range MathOperands(kind) {
			check("argument", arg)
		}
	case ExprAs:
		check("operand", kind.Expr)
	case ExprCall:
		if !v.isValidFunctionHandle(kind.Function) {
			v.addErrorInExpression(handle, fmt.Sprintf("function %d does not exist", kind.Function))
		} else if v.module.Functions[kind.Function].Result == nil {
			v.addErrorInExpression(handle, fmt.Sprintf("function %d has no result", kind.Function))
		}
		for _, arg := range kind.Arguments {
			check("argument", arg)
		}
	case ExprBuiltinCall:
		if kind.Name == "" {
			v.addErrorInExpression(handle, "built-in call has no name")
		}
		for _, arg := range kind.Arguments {
			check("argument", arg)
		}
	case ExprArrayLength:
		check("array", kind.Array)
	default:
		v.addErrorInExpression(handle, fmt.Sprintf("unknown expression kind %T", kind))
	}
}

func (v *Validator) validateBlock(block Block) {
	for i := range block {
		v.validateStatement(i, &block[i])
	}
}

//nolint:gocyclo,cyclop,funlen // Statement validation requires checking many statement variants
func (v *Validator) validateStatement(index int, stmt *Statement) {
	if stmt.Kind == nil {
		v.addErrorInStatement(index, "statement has nil kind")
		return
	}

	check := func(role string, h ExpressionHandle) {
		if !v.isValidExpressionHandle(h) {
			v.addErrorInStatement(index, fmt.Sprintf("%s expression %d does not exist", role, h))
		}
	}

	switch kind := stmt.Kind.(type) {
	case StmtEmit:
		if kind.Range.Start > kind.Range.End || int(kind.Range.End) > len(v.context.function.Expressions) {
			v.addErrorInStatement(index, fmt.Sprintf("emit range [%d, %d) is invalid", kind.Range.Start, kind.Range.End))
		}
	case StmtBlock:
		v.validateBlock(kind.Block)
	case StmtIf:
		check("condition", kind.Condition)
		v.validateBlock(kind.Accept)
		v.validateBlock(kind.Reject)
	case StmtSwitch:
		check("selector", kind.Selector)
		v.context.switchDepth++
		for _, c := range kind.Cases {
			v.validateBlock(c.Body)
		}
		v.context.switchDepth--
	case StmtLoop:
		v.context.loopDepth++
		v.validateBlock(kind.Body)
		v.validateBlock(kind.Continuing)
		v.context.loopDepth--
		if kind.BreakIf != nil {
			check("break-if", *kind.BreakIf)
		}
	case StmtBreak:
		if v.context.loopDepth == 0 && v.context.switchDepth == 0 {
			v.addErrorInStatement(index, "break outside of loop or switch")
		}
	case StmtContinue:
		if v.context.loopDepth == 0 {
			v.addErrorInStatement(index, "continue outside of loop")
		}
	case StmtReturn:
		if kind.Value != nil {
			check("return value", *kind.Value)
		}
	case StmtKill, StmtBarrier:
	case StmtStore:
		check("pointer", kind.Pointer)
		check("value", kind.Value)
	case StmtCall:
		if !v.isValidFunctionHandle(kind.Function) {
			v.addErrorInStatement(index, fmt.Sprintf("function %d does not exist", kind.Function))
		}
		for _, arg := range kind.Arguments {
			check("argument", arg)
		}
	case StmtExpression:
		check("operand", kind.Expr)
	default:
		v.addErrorInStatement(index, fmt.Sprintf("unknown statement kind %T", kind))
	}
}

func (v *Validator) isValidTypeHandle(handle TypeHandle) bool {
	return int(handle) < len(v.module.Types)
}

func (v *Validator) isValidConstantHandle(handle ConstantHandle) bool {
	return int(handle) < len(v.module.Constants)
}

func (v *Validator) isValidGlobalVariableHandle(handle GlobalVariableHandle) bool {
	return int(handle) < len(v.module.GlobalVariables)
}

func (v *Validator) isValidFunctionHandle(handle FunctionHandle) bool {
	return int(handle) < len(v.module.Functions)
}

func (v *Validator) isValidExpressionHandle(handle ExpressionHandle) bool {
	if v.context.function == nil {
		return false
	}
	return int(handle) < len(v.context.function.Expressions)
}

func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Statement: -1,
	})
}

func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Statement: -1,
	})
}

func (v *Validator) addErrorInExpression(handle ExpressionHandle, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:    msg,
		Function:   v.context.functionName,
		Expression: &handle,
		Statement:  -1,
	})
}

func (v *Validator) addErrorInStatement(index int, msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:   msg,
		Function:  v.context.functionName,
		Statement: index,
	})
}
