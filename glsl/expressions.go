// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/essl/builtins"
	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
)

// Legacy fragment outputs tracked for the header redeclarations.
const (
	fragColorName = "gl_FragColor"
	fragDataName  = "gl_FragData"
)

// writeExpression writes an expression and returns its ESSL representation.
func (w *Writer) writeExpression(handle ir.ExpressionHandle) (string, error) {
	if w.currentFunction == nil {
		return "", diag.Invariantf(pass, "expression %d outside a function", handle)
	}
	if int(handle) >= len(w.currentFunction.Expressions) {
		return "", diag.Invariantf(pass, "invalid expression handle: %d", handle)
	}

	expr := &w.currentFunction.Expressions[handle]
	return w.writeExpressionKind(expr.Kind, handle)
}

// writeExpressionKind writes the expression based on its kind.
//
//nolint:gocyclo,cyclop // Expression handling requires many cases
func (w *Writer) writeExpressionKind(kind ir.ExpressionKind, handle ir.ExpressionHandle) (string, error) {
	switch k := kind.(type) {
	case ir.Literal:
		return writeLiteral(k)
	case ir.ExprConstant:
		return w.writeConstant(k)
	case ir.ExprZeroValue:
		return w.writeZeroValue(k)
	case ir.ExprCompose:
		return w.writeCompose(k)
	case ir.ExprAccess:
		return w.writeAccess(k)
	case ir.ExprAccessIndex:
		return w.writeAccessIndex(k)
	case ir.ExprSplat:
		return w.writeSplat(k)
	case ir.ExprSwizzle:
		return w.writeSwizzle(k)
	case ir.ExprFunctionArgument:
		return w.writeFunctionArgument(k)
	case ir.ExprGlobalVariable:
		return w.writeGlobalVariableRef(k)
	case ir.ExprLocalVariable:
		return w.writeLocalVariable(k)
	case ir.ExprLoad:
		// Loads are implicit in ESSL
		return w.writeExpression(k.Pointer)
	case ir.ExprUnary:
		return w.writeUnary(k)
	case ir.ExprBinary:
		return w.writeBinary(k)
	case ir.ExprSelect:
		return w.writeSelect(k)
	case ir.ExprRelational:
		return w.writeRelational(k)
	case ir.ExprMath:
		return w.writeMath(k)
	case ir.ExprDerivative:
		return w.writeDerivative(k)
	case ir.ExprAs:
		return w.writeAs(k, handle)
	case ir.ExprCall:
		return w.writeCallExpression(k.Function, k.Arguments)
	case ir.ExprBuiltinCall:
		return w.writeBuiltinCall(k)
	case ir.ExprArrayLength:
		array, err := w.writeExpression(k.Array)
		if err != nil {
			return "", err
		}
		return array + ".length()", nil
	default:
		return "", diag.Invariantf(pass, "expression %d: unknown kind %T", handle, kind)
	}
}

// writeLiteral writes a literal expression.
func writeLiteral(lit ir.Literal) (string, error) {
	switch v := lit.Value.(type) {
	case ir.LiteralBool:
		if v {
			return "true", nil
		}
		return "false", nil
	case ir.LiteralI32:
		return fmt.Sprintf("%d", int32(v)), nil
	case ir.LiteralU32:
		return fmt.Sprintf("%du", uint32(v)), nil
	case ir.LiteralF32:
		return formatFloat(float32(v)), nil
	default:
		return "", diag.Invariantf(pass, "unknown literal %T", lit.Value)
	}
}

// writeConstant writes a constant reference.
func (w *Writer) writeConstant(c ir.ExprConstant) (string, error) {
	if int(c.Constant) >= len(w.module.Constants) {
		return "", diag.Invariantf(pass, "constant %d does not exist", c.Constant)
	}
	return w.names.Resolve(w.module.Constants[c.Constant].Symbol)
}

// writeZeroValue writes a zero-initialized value. ESSL has no zero
// initializer syntax for aggregates.
func (w *Writer) writeZeroValue(z ir.ExprZeroValue) (string, error) {
	switch t := w.innerType(z.Type).(type) {
	case ir.ScalarType:
		return zeroScalar(t.Kind), nil
	case ir.VectorType:
		return fmt.Sprintf("%s(%s)", vectorName(t), zeroScalar(t.Scalar.Kind)), nil
	case ir.MatrixType:
		return fmt.Sprintf("%s(0.0)", matrixName(t)), nil
	case ir.ArrayType, ir.StructType:
		return "", diag.Unimplementedf(pass, "zero value of aggregate type %d", z.Type)
	default:
		return "", diag.Invariantf(pass, "zero value of type %d (%T)", z.Type, t)
	}
}

func zeroScalar(kind ir.ScalarKind) string {
	switch kind {
	case ir.ScalarBool:
		return "false"
	case ir.ScalarSint:
		return "0"
	case ir.ScalarUint:
		return "0u"
	default:
		return "0.0"
	}
}

// writeCompose writes a constructor call.
func (w *Writer) writeCompose(c ir.ExprCompose) (string, error) {
	components, err := w.writeExpressionList(c.Components)
	if err != nil {
		return "", err
	}
	typeName := w.getTypeName(c.Type) + w.arraySuffix(c.Type)
	return fmt.Sprintf("%s(%s)", typeName, components), nil
}

// writeAccess writes a dynamic index. With ClampIndirectArrayBounds set the
// index is clamped into the bounds of a sized array, vector or matrix.
func (w *Writer) writeAccess(a ir.ExprAccess) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}
	index, err := w.writeExpression(a.Index)
	if err != nil {
		return "", err
	}

	if !w.options.CompileOptions.Has(legalize.ClampIndirectArrayBounds) {
		return fmt.Sprintf("%s[%s]", base, index), nil
	}
	if _, literal := w.currentFunction.Expressions[a.Index].Kind.(ir.Literal); literal {
		return fmt.Sprintf("%s[%s]", base, index), nil
	}

	baseType, err := ir.ResolveExpressionType(w.module, w.currentFunction, a.Base)
	if err != nil {
		return "", diag.Invariantf(pass, "indexed base: %v", err)
	}
	limit, ok := maxIndex(baseType.Inner(w.module))
	if !ok {
		return fmt.Sprintf("%s[%s]", base, index), nil
	}

	w.info.ClampedIndices++
	if w.options.ClampingStrategy == ClampWithUserDefinedIntClamp {
		w.info.NeedsIntClamp = true
		return fmt.Sprintf("%s[%s(%s, 0, %d)]", base, IntClampName, index, limit), nil
	}
	return fmt.Sprintf("%s[int(clamp(float(%s), 0.0, float(%d)))]", base, index, limit), nil
}

// writeAccessIndex writes a constant-index access, which is a member
// selection when the base is a struct.
func (w *Writer) writeAccessIndex(a ir.ExprAccessIndex) (string, error) {
	base, err := w.writeExpression(a.Base)
	if err != nil {
		return "", err
	}

	baseType, err := ir.ResolveExpressionType(w.module, w.currentFunction, a.Base)
	if err != nil {
		return "", diag.Invariantf(pass, "accessed base: %v", err)
	}
	if st, ok := baseType.Inner(w.module).(ir.StructType); ok {
		if int(a.Index) >= len(st.Members) {
			return "", diag.Invariantf(pass, "struct member %d out of range", a.Index)
		}
		return fmt.Sprintf("%s.%s", base, w.names.Field(st.Members[a.Index].Name)), nil
	}
	return fmt.Sprintf("%s[%d]", base, a.Index), nil
}

// writeSplat writes a scalar broadcast as a vector constructor.
func (w *Writer) writeSplat(s ir.ExprSplat) (string, error) {
	value, err := w.writeExpression(s.Value)
	if err != nil {
		return "", err
	}
	valueType, err := ir.ResolveExpressionType(w.module, w.currentFunction, s.Value)
	if err != nil {
		return "", diag.Invariantf(pass, "splat value: %v", err)
	}
	scalar, ok := valueType.Inner(w.module).(ir.ScalarType)
	if !ok {
		return "", diag.Invariantf(pass, "splat of non-scalar %T", valueType.Inner(w.module))
	}
	return fmt.Sprintf("%s(%s)", vectorName(ir.VectorType{Size: s.Size, Scalar: scalar}), value), nil
}

// writeSwizzle writes a swizzle expression.
func (w *Writer) writeSwizzle(s ir.ExprSwizzle) (string, error) {
	vector, err := w.writeExpression(s.Vector)
	if err != nil {
		return "", err
	}

	const components = "xyzw"
	var swizzle strings.Builder
	for i := ir.VectorSize(0); i < s.Size && i < 4; i++ {
		if int(s.Pattern[i]) >= len(components) {
			return "", diag.Invariantf(pass, "swizzle component %d", s.Pattern[i])
		}
		swizzle.WriteByte(components[s.Pattern[i]])
	}
	return fmt.Sprintf("%s.%s", vector, swizzle.String()), nil
}

// writeFunctionArgument writes a function argument reference.
func (w *Writer) writeFunctionArgument(a ir.ExprFunctionArgument) (string, error) {
	if int(a.Index) >= len(w.currentFunction.Arguments) {
		return "", diag.Invariantf(pass, "function argument %d does not exist", a.Index)
	}
	return w.names.Resolve(w.currentFunction.Arguments[a.Index].Symbol)
}

// writeGlobalVariableRef writes a global variable reference and records
// references to the legacy fragment outputs.
func (w *Writer) writeGlobalVariableRef(g ir.ExprGlobalVariable) (string, error) {
	if int(g.Variable) >= len(w.module.GlobalVariables) {
		return "", diag.Invariantf(pass, "global variable %d does not exist", g.Variable)
	}
	gv := &w.module.GlobalVariables[g.Variable]
	if gv.Symbol.Kind == ir.SymbolBuiltIn && w.module.Stage == ir.StageFragment && w.enforceESSL3() {
		switch gv.Symbol.Name {
		case fragColorName:
			w.info.UsesFragColor = true
		case fragDataName:
			w.info.UsesFragData = true
		}
	}
	return w.names.Resolve(gv.Symbol)
}

// writeLocalVariable writes a local variable reference.
func (w *Writer) writeLocalVariable(l ir.ExprLocalVariable) (string, error) {
	if int(l.Variable) >= len(w.currentFunction.LocalVars) {
		return "", diag.Invariantf(pass, "local variable %d does not exist", l.Variable)
	}
	return w.names.Resolve(w.currentFunction.LocalVars[l.Variable].Symbol)
}

// writeUnary writes a unary expression.
func (w *Writer) writeUnary(u ir.ExprUnary) (string, error) {
	operand, err := w.writeExpression(u.Expr)
	if err != nil {
		return "", err
	}

	switch u.Op {
	case ir.UnaryNegate:
		return fmt.Sprintf("-(%s)", operand), nil
	case ir.UnaryLogicalNot:
		return fmt.Sprintf("!(%s)", operand), nil
	case ir.UnaryBitwiseNot:
		return fmt.Sprintf("~(%s)", operand), nil
	default:
		return "", diag.Invariantf(pass, "unknown unary operator: %d", u.Op)
	}
}

var binaryOperators = map[ir.BinaryOperator]string{
	ir.BinaryAdd:          "+",
	ir.BinarySubtract:     "-",
	ir.BinaryMultiply:     "*",
	ir.BinaryDivide:       "/",
	ir.BinaryModulo:       "%",
	ir.BinaryEqual:        "==",
	ir.BinaryNotEqual:     "!=",
	ir.BinaryLess:         "<",
	ir.BinaryLessEqual:    "<=",
	ir.BinaryGreater:      ">",
	ir.BinaryGreaterEqual: ">=",
	ir.BinaryAnd:          "&",
	ir.BinaryExclusiveOr:  "^",
	ir.BinaryInclusiveOr:  "|",
	ir.BinaryLogicalAnd:   "&&",
	ir.BinaryLogicalOr:    "||",
	ir.BinaryLogicalXor:   "^^",
	ir.BinaryShiftLeft:    "<<",
	ir.BinaryShiftRight:   ">>",
}

// writeBinary writes a binary expression.
func (w *Writer) writeBinary(b ir.ExprBinary) (string, error) {
	op, ok := binaryOperators[b.Op]
	if !ok {
		return "", diag.Invariantf(pass, "unknown binary operator: %d", b.Op)
	}
	left, err := w.writeExpression(b.Left)
	if err != nil {
		return "", err
	}
	right, err := w.writeExpression(b.Right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", left, op, right), nil
}

// writeSelect writes a select (ternary) expression.
func (w *Writer) writeSelect(s ir.ExprSelect) (string, error) {
	condition, err := w.writeExpression(s.Condition)
	if err != nil {
		return "", err
	}
	accept, err := w.writeExpression(s.Accept)
	if err != nil {
		return "", err
	}
	reject, err := w.writeExpression(s.Reject)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s ? %s : %s)", condition, accept, reject), nil
}

// writeRelational writes a relational expression.
func (w *Writer) writeRelational(r ir.ExprRelational) (string, error) {
	argument, err := w.writeExpression(r.Argument)
	if err != nil {
		return "", err
	}

	switch r.Fun {
	case ir.RelationalAll:
		return fmt.Sprintf("all(%s)", argument), nil
	case ir.RelationalAny:
		return fmt.Sprintf("any(%s)", argument), nil
	case ir.RelationalNot:
		return fmt.Sprintf("not(%s)", argument), nil
	case ir.RelationalIsNan:
		return fmt.Sprintf("isnan(%s)", argument), nil
	case ir.RelationalIsInf:
		return fmt.Sprintf("isinf(%s)", argument), nil
	default:
		return "", diag.Invariantf(pass, "unknown relational function: %d", r.Fun)
	}
}

var mathFunctions = map[ir.MathFunction]string{
	ir.MathAbs:         "abs",
	ir.MathMin:         "min",
	ir.MathMax:         "max",
	ir.MathClamp:       "clamp",
	ir.MathCos:         "cos",
	ir.MathSin:         "sin",
	ir.MathTan:         "tan",
	ir.MathAcos:        "acos",
	ir.MathAsin:        "asin",
	ir.MathAtan:        "atan",
	ir.MathAtan2:       "atan",
	ir.MathRadians:     "radians",
	ir.MathDegrees:     "degrees",
	ir.MathCeil:        "ceil",
	ir.MathFloor:       "floor",
	ir.MathRound:       "round",
	ir.MathFract:       "fract",
	ir.MathTrunc:       "trunc",
	ir.MathMod:         "mod",
	ir.MathExp:         "exp",
	ir.MathExp2:        "exp2",
	ir.MathLog:         "log",
	ir.MathLog2:        "log2",
	ir.MathPow:         "pow",
	ir.MathSqrt:        "sqrt",
	ir.MathInverseSqrt: "inversesqrt",
	ir.MathDot:         "dot",
	ir.MathCross:       "cross",
	ir.MathDistance:    "distance",
	ir.MathLength:      "length",
	ir.MathNormalize:   "normalize",
	ir.MathFaceForward: "faceforward",
	ir.MathReflect:     "reflect",
	ir.MathRefract:     "refract",
	ir.MathSign:        "sign",
	ir.MathMix:         "mix",
	ir.MathStep:        "step",
	ir.MathSmoothStep:  "smoothstep",
	ir.MathTranspose:   "transpose",
	ir.MathDeterminant: "determinant",
	ir.MathInverse:     "inverse",
	ir.MathOuter:       "outerProduct",
}

// writeMath writes a math function call. Math functions are built-ins, so
// registered emulations apply to them (atan(y, x) in particular).
func (w *Writer) writeMath(m ir.ExprMath) (string, error) {
	name, ok := mathFunctions[m.Fun]
	if !ok {
		return "", diag.Invariantf(pass, "unknown math function: %d", m.Fun)
	}
	operands := ir.MathOperands(m)
	name, err := w.emulatedName(name, operands)
	if err != nil {
		return "", err
	}
	args, err := w.writeExpressionList(operands)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", name, args), nil
}

// writeDerivative writes a derivative expression.
func (w *Writer) writeDerivative(d ir.ExprDerivative) (string, error) {
	expr, err := w.writeExpression(d.Expr)
	if err != nil {
		return "", err
	}

	switch d.Axis {
	case ir.DerivativeX:
		return fmt.Sprintf("dFdx(%s)", expr), nil
	case ir.DerivativeY:
		return fmt.Sprintf("dFdy(%s)", expr), nil
	case ir.DerivativeWidth:
		return fmt.Sprintf("fwidth(%s)", expr), nil
	default:
		return "", diag.Invariantf(pass, "unknown derivative axis: %d", d.Axis)
	}
}

// writeAs writes a constructor-style conversion using the result type.
func (w *Writer) writeAs(a ir.ExprAs, handle ir.ExpressionHandle) (string, error) {
	expr, err := w.writeExpression(a.Expr)
	if err != nil {
		return "", err
	}
	result, err := ir.ResolveExpressionType(w.module, w.currentFunction, handle)
	if err != nil {
		return "", diag.Invariantf(pass, "conversion: %v", err)
	}
	return fmt.Sprintf("%s(%s)", w.typeInnerName(result.Inner(w.module)), expr), nil
}

// writeCallExpression writes a user function call.
func (w *Writer) writeCallExpression(function ir.FunctionHandle, arguments []ir.ExpressionHandle) (string, error) {
	if int(function) >= len(w.module.Functions) {
		return "", diag.Invariantf(pass, "function %d does not exist", function)
	}
	name, err := w.names.Resolve(w.module.Functions[function].Symbol)
	if err != nil {
		return "", err
	}
	args, err := w.writeExpressionList(arguments)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", name, args), nil
}

// writeBuiltinCall writes a built-in call under its output name: the rename
// tables apply first, then any registered emulation.
func (w *Writer) writeBuiltinCall(call ir.ExprBuiltinCall) (string, error) {
	name := builtins.TranslateCallName(call.Name, w.enforceESSL3())
	name, err := w.emulatedName(name, call.Arguments)
	if err != nil {
		return "", err
	}
	args, err := w.writeExpressionList(call.Arguments)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s(%s)", name, args), nil
}

// emulatedName returns the name a built-in is emitted as for the given
// arguments, marking the emulation used when one is registered.
func (w *Writer) emulatedName(name string, arguments []ir.ExpressionHandle) (string, error) {
	if w.options.Emulator == nil {
		return name, nil
	}
	types := make([]ir.TypeInner, len(arguments))
	for i, arg := range arguments {
		res, err := ir.ResolveExpressionType(w.module, w.currentFunction, arg)
		if err != nil {
			return "", diag.Invariantf(pass, "%s argument %d: %v", name, i, err)
		}
		types[i] = res.Inner(w.module)
	}
	emitted, _ := w.options.Emulator.Call(name, types...)
	return emitted, nil
}

// writeExpressionList writes comma separated expressions.
func (w *Writer) writeExpressionList(handles []ir.ExpressionHandle) (string, error) {
	parts := make([]string, 0, len(handles))
	for _, h := range handles {
		s, err := w.writeExpression(h)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", "), nil
}

// enforceESSL3 reports whether legacy rewriting is active.
func (w *Writer) enforceESSL3() bool {
	return w.options.CompileOptions.Has(legalize.EnforceOutputToESSL3)
}
