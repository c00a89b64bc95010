package ir

import (
	"fmt"
	"strings"
)

var (
	scalarFloat = ScalarType{Kind: ScalarFloat}
	scalarInt   = ScalarType{Kind: ScalarSint}
	scalarBool  = ScalarType{Kind: ScalarBool}
)

// ResolveExpressionType resolves the type of an expression in a function.
// Returns a TypeResolution that either references a module type or contains an inline type.
//
//nolint:gocyclo,cyclop,funlen // Type resolution requires handling all expression kinds
func ResolveExpressionType(module *Module, fn *Function, handle ExpressionHandle) (TypeResolution, error) {
	if int(handle) >= len(fn.Expressions) {
		return TypeResolution{}, fmt.Errorf("expression handle %d out of range (max %d)", handle, len(fn.Expressions))
	}

	expr := fn.Expressions[handle]

	switch kind := expr.Kind.(type) {
	case Literal:
		return resolveLiteralType(kind)
	case ExprConstant:
		if int(kind.Constant) >= len(module.Constants) {
			return TypeResolution{}, fmt.Errorf("constant %d out of range", kind.Constant)
		}
		h := module.Constants[kind.Constant].Type
		return TypeResolution{Handle: &h}, nil
	case ExprZeroValue:
		h := kind.Type
		return TypeResolution{Handle: &h}, nil
	case ExprCompose:
		h := kind.Type
		return TypeResolution{Handle: &h}, nil
	case ExprAccess:
		return resolveIndexedType(module, fn, kind.Base, nil)
	case ExprAccessIndex:
		index := kind.Index
		return resolveIndexedType(module, fn, kind.Base, &index)
	case ExprSplat:
		return resolveSplatType(module, fn, kind)
	case ExprSwizzle:
		return resolveSwizzleType(module, fn, kind)
	case ExprFunctionArgument:
		if int(kind.Index) >= len(fn.Arguments) {
			return TypeResolution{}, fmt.Errorf("function argument index %d out of range", kind.Index)
		}
		h := fn.Arguments[kind.Index].Type
		return TypeResolution{Handle: &h}, nil
	case ExprGlobalVariable:
		if int(kind.Variable) >= len(module.GlobalVariables) {
			return TypeResolution{}, fmt.Errorf("global variable %d out of range", kind.Variable)
		}
		h := module.GlobalVariables[kind.Variable].Type
		return TypeResolution{Handle: &h}, nil
	case ExprLocalVariable:
		if int(kind.Variable) >= len(fn.LocalVars) {
			return TypeResolution{}, fmt.Errorf("local variable %d out of range", kind.Variable)
		}
		h := fn.LocalVars[kind.Variable].Type
		return TypeResolution{Handle: &h}, nil
	case ExprLoad:
		// Loads are implicit in ESSL, the value has the lvalue's type
		return ResolveExpressionType(module, fn, kind.Pointer)
	case ExprUnary:
		return ResolveExpressionType(module, fn, kind.Expr)
	case ExprBinary:
		return resolveBinaryType(module, fn, kind)
	case ExprSelect:
		return ResolveExpressionType(module, fn, kind.Accept)
	case ExprDerivative:
		return ResolveExpressionType(module, fn, kind.Expr)
	case ExprRelational:
		return resolveRelationalType(module, fn, kind)
	case ExprMath:
		return resolveMathType(module, fn, kind)
	case ExprAs:
		return resolveAsType(module, fn, kind)
	case ExprCall:
		if int(kind.Function) >= len(module.Functions) {
			return TypeResolution{}, fmt.Errorf("function %d out of range", kind.Function)
		}
		result := module.Functions[kind.Function].Result
		if result == nil {
			return TypeResolution{}, fmt.Errorf("function has no return type")
		}
		h := result.Type
		return TypeResolution{Handle: &h}, nil
	case ExprBuiltinCall:
		return resolveBuiltinCallType(module, fn, kind)
	case ExprArrayLength:
		return TypeResolution{Value: scalarInt}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unsupported expression kind: %T", kind)
	}
}

func resolveLiteralType(lit Literal) (TypeResolution, error) {
	switch v := lit.Value.(type) {
	case LiteralF32:
		return TypeResolution{Value: scalarFloat}, nil
	case LiteralU32:
		return TypeResolution{Value: ScalarType{Kind: ScalarUint}}, nil
	case LiteralI32:
		return TypeResolution{Value: scalarInt}, nil
	case LiteralBool:
		return TypeResolution{Value: scalarBool}, nil
	default:
		return TypeResolution{}, fmt.Errorf("unknown literal type: %T", v)
	}
}

// resolveIndexedType resolves base[index]. A nil index means a dynamic index,
// which cannot select a struct member.
func resolveIndexedType(module *Module, fn *Function, base ExpressionHandle, index *uint32) (TypeResolution, error) {
	baseType, err := ResolveExpressionType(module, fn, base)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("access base: %w", err)
	}

	switch t := baseType.Inner(module).(type) {
	case ArrayType:
		h := t.Base
		return TypeResolution{Handle: &h}, nil
	case VectorType:
		return TypeResolution{Value: t.Scalar}, nil
	case MatrixType:
		// Matrix access returns a column vector
		return TypeResolution{Value: VectorType{Size: t.Rows, Scalar: scalarFloat}}, nil
	case StructType:
		if index == nil {
			return TypeResolution{}, fmt.Errorf("struct requires a constant member index")
		}
		if int(*index) >= len(t.Members) {
			return TypeResolution{}, fmt.Errorf("struct member index %d out of range", *index)
		}
		h := t.Members[*index].Type
		return TypeResolution{Handle: &h}, nil
	default:
		return TypeResolution{}, fmt.Errorf("cannot index into type %T", t)
	}
}

func resolveSplatType(module *Module, fn *Function, expr ExprSplat) (TypeResolution, error) {
	valueType, err := ResolveExpressionType(module, fn, expr.Value)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("splat value: %w", err)
	}
	scalar, ok := valueType.Inner(module).(ScalarType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("splat value must be scalar, got %T", valueType.Inner(module))
	}
	return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: scalar}}, nil
}

func resolveSwizzleType(module *Module, fn *Function, expr ExprSwizzle) (TypeResolution, error) {
	vectorType, err := ResolveExpressionType(module, fn, expr.Vector)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("swizzle vector: %w", err)
	}
	vec, ok := vectorType.Inner(module).(VectorType)
	if !ok {
		return TypeResolution{}, fmt.Errorf("swizzle base must be vector, got %T", vectorType.Inner(module))
	}
	if expr.Size == 1 {
		return TypeResolution{Value: vec.Scalar}, nil
	}
	return TypeResolution{Value: VectorType{Size: expr.Size, Scalar: vec.Scalar}}, nil
}

func resolveBinaryType(module *Module, fn *Function, expr ExprBinary) (TypeResolution, error) {
	leftType, err := ResolveExpressionType(module, fn, expr.Left)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary left: %w", err)
	}

	switch {
	case expr.Op.IsComparison():
		// ESSL relational and equality operators always yield a scalar bool
		return TypeResolution{Value: scalarBool}, nil
	case expr.Op == BinaryLogicalAnd || expr.Op == BinaryLogicalOr || expr.Op == BinaryLogicalXor:
		return TypeResolution{Value: scalarBool}, nil
	}

	rightType, err := ResolveExpressionType(module, fn, expr.Right)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("binary right: %w", err)
	}
	if expr.Op == BinaryMultiply {
		return resolveMulResultType(module, leftType, rightType), nil
	}

	// scalar op vector broadcasts to the vector
	_, leftIsScalar := leftType.Inner(module).(ScalarType)
	if leftIsScalar {
		switch rightType.Inner(module).(type) {
		case VectorType, MatrixType:
			return rightType, nil
		}
	}
	return leftType, nil
}

// resolveMulResultType determines the result type of a multiplication:
// scalar*vec→vec, scalar*mat→mat, mat*vec→vec(rows), vec*mat→vec(cols).
func resolveMulResultType(module *Module, left, right TypeResolution) TypeResolution {
	leftInner := left.Inner(module)
	rightInner := right.Inner(module)

	_, leftIsScalar := leftInner.(ScalarType)
	_, leftIsVec := leftInner.(VectorType)
	_, rightIsVec := rightInner.(VectorType)
	leftMat, leftIsMat := leftInner.(MatrixType)
	rightMat, rightIsMat := rightInner.(MatrixType)

	switch {
	case leftIsScalar && (rightIsVec || rightIsMat):
		return right
	case leftIsMat && rightIsVec:
		return TypeResolution{Value: VectorType{Size: leftMat.Rows, Scalar: scalarFloat}}
	case leftIsVec && rightIsMat:
		return TypeResolution{Value: VectorType{Size: rightMat.Columns, Scalar: scalarFloat}}
	case leftIsMat && rightIsMat:
		return TypeResolution{Value: MatrixType{Columns: rightMat.Columns, Rows: leftMat.Rows}}
	default:
		return left
	}
}

func resolveRelationalType(module *Module, fn *Function, expr ExprRelational) (TypeResolution, error) {
	argType, err := ResolveExpressionType(module, fn, expr.Argument)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("relational argument: %w", err)
	}

	if vec, ok := argType.Inner(module).(VectorType); ok {
		switch expr.Fun {
		case RelationalAll, RelationalAny:
			return TypeResolution{Value: scalarBool}, nil
		default:
			return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: scalarBool}}, nil
		}
	}
	return TypeResolution{Value: scalarBool}, nil
}

func resolveMathType(module *Module, fn *Function, expr ExprMath) (TypeResolution, error) {
	argType, err := ResolveExpressionType(module, fn, expr.Arg)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("math argument: %w", err)
	}

	switch expr.Fun {
	case MathDot, MathLength, MathDistance, MathDeterminant:
		return TypeResolution{Value: scalarFloat}, nil
	case MathTranspose:
		if m, ok := argType.Inner(module).(MatrixType); ok {
			return TypeResolution{Value: MatrixType{Columns: m.Rows, Rows: m.Columns}}, nil
		}
		return argType, nil
	case MathOuter:
		if expr.Arg1 == nil {
			return TypeResolution{}, fmt.Errorf("outerProduct requires two arguments")
		}
		rightType, err := ResolveExpressionType(module, fn, *expr.Arg1)
		if err != nil {
			return TypeResolution{}, fmt.Errorf("math argument: %w", err)
		}
		c, cok := argType.Inner(module).(VectorType)
		r, rok := rightType.Inner(module).(VectorType)
		if !cok || !rok {
			return TypeResolution{}, fmt.Errorf("outerProduct requires vector arguments")
		}
		return TypeResolution{Value: MatrixType{Columns: r.Size, Rows: c.Size}}, nil
	default:
		// Most math functions preserve the argument type
		return argType, nil
	}
}

func resolveAsType(module *Module, fn *Function, expr ExprAs) (TypeResolution, error) {
	exprType, err := ResolveExpressionType(module, fn, expr.Expr)
	if err != nil {
		return TypeResolution{}, fmt.Errorf("as expr: %w", err)
	}
	target := ScalarType{Kind: expr.Kind}
	if vec, ok := exprType.Inner(module).(VectorType); ok {
		return TypeResolution{Value: VectorType{Size: vec.Size, Scalar: target}}, nil
	}
	return TypeResolution{Value: target}, nil
}

// resolveBuiltinCallType resolves named built-in calls. Texture lookups are
// typed by their sampler; anything else takes the type of its first argument.
func resolveBuiltinCallType(module *Module, fn *Function, call ExprBuiltinCall) (TypeResolution, error) {
	if len(call.Arguments) == 0 {
		return TypeResolution{}, fmt.Errorf("built-in %s has no arguments", call.Name)
	}
	first, err := ResolveExpressionType(module, fn, call.Arguments[0])
	if err != nil {
		return TypeResolution{}, fmt.Errorf("built-in %s argument: %w", call.Name, err)
	}
	sampler, ok := first.Inner(module).(SamplerType)
	if !ok {
		return first, nil
	}
	if call.Name == "textureSize" {
		if sampler.Dim == Dim3D || sampler.Arrayed {
			return TypeResolution{Value: VectorType{Size: Vec3, Scalar: scalarInt}}, nil
		}
		return TypeResolution{Value: VectorType{Size: Vec2, Scalar: scalarInt}}, nil
	}
	if sampler.Class == ImageClassDepth && !strings.HasPrefix(call.Name, "textureGather") {
		return TypeResolution{Value: scalarFloat}, nil
	}
	return TypeResolution{Value: VectorType{Size: Vec4, Scalar: ScalarType{Kind: sampler.Kind}}}, nil
}

// IsTextureFunction reports whether a built-in name is a texture lookup,
// whose result precision is the precision of its sampler argument.
func IsTextureFunction(name string) bool {
	return strings.HasPrefix(name, "texture") || strings.HasPrefix(name, "shadow")
}

// ResolveExpressionPrecision resolves the precision an expression is evaluated at,
// following the ESSL rule that an operation takes the highest precision of its
// operands.
//
//nolint:gocyclo,cyclop // Precision resolution requires handling all expression kinds
func ResolveExpressionPrecision(module *Module, fn *Function, handle ExpressionHandle) Precision {
	if int(handle) >= len(fn.Expressions) {
		return PrecisionUndefined
	}

	switch kind := fn.Expressions[handle].Kind.(type) {
	case Literal:
		return kind.Precision
	case ExprConstant:
		if int(kind.Constant) < len(module.Constants) {
			return module.Constants[kind.Constant].Precision
		}
	case ExprFunctionArgument:
		if int(kind.Index) < len(fn.Arguments) {
			return fn.Arguments[kind.Index].Precision
		}
	case ExprGlobalVariable:
		if int(kind.Variable) < len(module.GlobalVariables) {
			return module.GlobalVariables[kind.Variable].Precision
		}
	case ExprLocalVariable:
		if int(kind.Variable) < len(fn.LocalVars) {
			return fn.LocalVars[kind.Variable].Precision
		}
	case ExprLoad:
		return ResolveExpressionPrecision(module, fn, kind.Pointer)
	case ExprAccess:
		return ResolveExpressionPrecision(module, fn, kind.Base)
	case ExprAccessIndex:
		return resolveAccessIndexPrecision(module, fn, kind)
	case ExprSwizzle:
		return ResolveExpressionPrecision(module, fn, kind.Vector)
	case ExprSplat:
		return ResolveExpressionPrecision(module, fn, kind.Value)
	case ExprCompose:
		return maxPrecision(module, fn, kind.Components...)
	case ExprUnary:
		return ResolveExpressionPrecision(module, fn, kind.Expr)
	case ExprBinary:
		if kind.Op.IsComparison() || kind.Op == BinaryLogicalAnd || kind.Op == BinaryLogicalOr || kind.Op == BinaryLogicalXor {
			return PrecisionUndefined
		}
		return maxPrecision(module, fn, kind.Left, kind.Right)
	case ExprSelect:
		return maxPrecision(module, fn, kind.Accept, kind.Reject)
	case ExprDerivative:
		return ResolveExpressionPrecision(module, fn, kind.Expr)
	case ExprMath:
		return maxPrecision(module, fn, MathOperands(kind)...)
	case ExprAs:
		return ResolveExpressionPrecision(module, fn, kind.Expr)
	case ExprCall:
		if int(kind.Function) < len(module.Functions) && module.Functions[kind.Function].Result != nil {
			return module.Functions[kind.Function].Result.Precision
		}
	case ExprBuiltinCall:
		if IsTextureFunction(kind.Name) && len(kind.Arguments) > 0 {
			return ResolveExpressionPrecision(module, fn, kind.Arguments[0])
		}
		return maxPrecision(module, fn, kind.Arguments...)
	}
	return PrecisionUndefined
}

func resolveAccessIndexPrecision(module *Module, fn *Function, access ExprAccessIndex) Precision {
	baseType, err := ResolveExpressionType(module, fn, access.Base)
	if err == nil {
		if st, ok := baseType.Inner(module).(StructType); ok && int(access.Index) < len(st.Members) {
			return st.Members[access.Index].Precision
		}
	}
	return ResolveExpressionPrecision(module, fn, access.Base)
}

func maxPrecision(module *Module, fn *Function, handles ...ExpressionHandle) Precision {
	p := PrecisionUndefined
	for _, h := range handles {
		if hp := ResolveExpressionPrecision(module, fn, h); hp > p {
			p = hp
		}
	}
	return p
}

// MathOperands lists the argument handles of a math expression.
func MathOperands(m ExprMath) []ExpressionHandle {
	args := []ExpressionHandle{m.Arg}
	if m.Arg1 != nil {
		args = append(args, *m.Arg1)
	}
	if m.Arg2 != nil {
		args = append(args, *m.Arg2)
	}
	return args
}
