// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package precision implements the WebGL precision passes.
//
// Emulate makes a desktop driver, which evaluates everything at highp,
// behave like a mobile driver by rounding every lowp and mediump float result
// through webgl_frl and webgl_frm. RecordConstantPrecision keeps highp
// literals from being evaluated at the lower precision of their neighbours.
// Both passes return a rewritten copy and never touch the caller's module.
package precision

import (
	"fmt"

	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
)

const pass = "precision"

// Rounding selects a rounding helper.
type Rounding uint8

const (
	// RoundMedium rounds to mediump (fp16 range and mantissa).
	RoundMedium Rounding = iota
	// RoundLow rounds to lowp (10-bit fixed point in [-2, 2]).
	RoundLow
)

// Suffix returns the helper suffix, frm or frl.
func (r Rounding) Suffix() string {
	if r == RoundLow {
		return "frl"
	}
	return "frm"
}

// HelperName returns the rounding helper's name.
func (r Rounding) HelperName() string {
	return "webgl_" + r.Suffix()
}

func roundingFor(p ir.Precision) (Rounding, bool) {
	switch p {
	case ir.PrecisionMedium:
		return RoundMedium, true
	case ir.PrecisionLow:
		return RoundLow, true
	default:
		return 0, false
	}
}

// CompoundOp is a compound assignment rewritten into a helper call.
type CompoundOp struct {
	Op       ir.AssignOp
	LHS      string // ESSL type of the assigned variable
	RHS      string // ESSL type of the value
	Rounding Rounding
}

// HelperName returns the compound helper's name, e.g. webgl_compound_add_frm.
func (c CompoundOp) HelperName() string {
	return fmt.Sprintf("webgl_compound_%s_%s", compoundOpName(c.Op), c.Rounding.Suffix())
}

func compoundOpName(op ir.AssignOp) string {
	switch op {
	case ir.AssignAdd:
		return "add"
	case ir.AssignSubtract:
		return "sub"
	case ir.AssignMultiply:
		return "mul"
	default:
		return "div"
	}
}

// Report records what Emulate rewrote.
type Report struct {
	// Rounded counts wrapped expressions and stored values.
	Rounded int

	// Compound lists the compound assignment helpers needed, in first-use order.
	Compound []CompoundOp
}

func (r *Report) addCompound(c CompoundOp) {
	for _, have := range r.Compound {
		if have == c {
			return
		}
	}
	r.Compound = append(r.Compound, c)
}

// Emulate returns a copy of module in which every lowp and mediump float
// result is rounded to its precision.
//
// Arithmetic, negation, math and built-in calls, user calls, constructors and
// derivatives are wrapped where they are used as values. Values stored into
// or used to initialize a lowp or mediump variable are rounded to the
// variable's precision. Compound assignments become calls to
// webgl_compound_<op>_<frm|frl>(inout x, y).
func Emulate(module *ir.Module) (*ir.Module, *Report, error) {
	out := module.Clone()
	report := &Report{}
	for i := range out.Functions {
		e := &emulator{module: out, fn: &out.Functions[i], report: report}
		if err := e.run(); err != nil {
			return nil, nil, fmt.Errorf("function %s: %w", out.Functions[i].Symbol.Name, err)
		}
	}
	return out, report, nil
}

type emulator struct {
	module *ir.Module
	fn     *ir.Function
	report *Report

	// repl maps an original expression to its rounded wrapper.
	repl     map[ir.ExpressionHandle]ir.ExpressionHandle
	rounding map[ir.ExpressionHandle]Rounding
}

func (e *emulator) run() error {
	e.repl = make(map[ir.ExpressionHandle]ir.ExpressionHandle)
	e.rounding = make(map[ir.ExpressionHandle]Rounding)

	original := len(e.fn.Expressions)
	for h := 0; h < original; h++ {
		handle := ir.ExpressionHandle(h)
		r, ok, err := e.needsRounding(handle)
		if err != nil {
			return err
		}
		if ok {
			e.repl[handle] = e.wrap(handle, r)
			e.rounding[handle] = r
		}
	}

	// Point every value use at the wrapper. Wrappers themselves, appended
	// after the original arena, keep their original argument.
	for h := 0; h < original; h++ {
		kind, ok := ir.MapExpressionOperands(e.fn.Expressions[h].Kind, e.replace)
		if !ok {
			return diag.Invariantf(pass, "expression %d: cannot rewrite %T", h, e.fn.Expressions[h].Kind)
		}
		e.fn.Expressions[h].Kind = kind
	}

	for i := range e.fn.LocalVars {
		lv := &e.fn.LocalVars[i]
		if lv.Init == nil {
			continue
		}
		value := e.replace(*lv.Init)
		if r, ok := e.storeRounding(lv.Type, lv.Precision); ok {
			value = e.roundValue(*lv.Init, value, r)
		}
		lv.Init = &value
	}

	return e.rewriteBlock(e.fn.Body)
}

func (e *emulator) replace(h ir.ExpressionHandle) ir.ExpressionHandle {
	if w, ok := e.repl[h]; ok {
		return w
	}
	return h
}

func (e *emulator) wrap(h ir.ExpressionHandle, r Rounding) ir.ExpressionHandle {
	e.fn.Expressions = append(e.fn.Expressions, ir.Expression{Kind: ir.ExprBuiltinCall{
		Name:      r.HelperName(),
		Arguments: []ir.ExpressionHandle{h},
	}})
	e.report.Rounded++
	return ir.ExpressionHandle(len(e.fn.Expressions) - 1)
}

// needsRounding decides whether an expression's result is rounded.
func (e *emulator) needsRounding(h ir.ExpressionHandle) (Rounding, bool, error) {
	switch kind := e.fn.Expressions[h].Kind.(type) {
	case ir.ExprBinary:
		if !kind.Op.IsArithmetic() {
			return 0, false, nil
		}
	case ir.ExprUnary:
		if kind.Op != ir.UnaryNegate {
			return 0, false, nil
		}
	case ir.ExprMath, ir.ExprBuiltinCall, ir.ExprCall, ir.ExprCompose, ir.ExprDerivative:
	case ir.Literal, ir.ExprConstant, ir.ExprZeroValue, ir.ExprAccess, ir.ExprAccessIndex,
		ir.ExprSplat, ir.ExprSwizzle, ir.ExprFunctionArgument, ir.ExprGlobalVariable,
		ir.ExprLocalVariable, ir.ExprLoad, ir.ExprSelect, ir.ExprRelational, ir.ExprAs,
		ir.ExprArrayLength:
		return 0, false, nil
	default:
		return 0, false, diag.Invariantf(pass, "expression %d: unknown kind %T", h, kind)
	}

	r, ok := roundingFor(ir.ResolveExpressionPrecision(e.module, e.fn, h))
	if !ok {
		return 0, false, nil
	}
	res, err := ir.ResolveExpressionType(e.module, e.fn, h)
	if err != nil {
		return 0, false, diag.Invariantf(pass, "expression %d: %v", h, err)
	}
	if !isFloatType(res.Inner(e.module)) {
		return 0, false, nil
	}
	return r, true, nil
}

// storeRounding returns the rounding a value stored into a variable of the
// given type and precision needs.
func (e *emulator) storeRounding(ty ir.TypeHandle, p ir.Precision) (Rounding, bool) {
	if int(ty) >= len(e.module.Types) || !isFloatType(e.module.Types[ty].Inner) {
		return 0, false
	}
	return roundingFor(p)
}

// roundValue rounds a stored value unless it already went through the same helper.
func (e *emulator) roundValue(orig, value ir.ExpressionHandle, r Rounding) ir.ExpressionHandle {
	if have, ok := e.rounding[orig]; ok && have == r {
		return value
	}
	return e.wrap(value, r)
}

func (e *emulator) rewriteBlock(block ir.Block) error {
	for i := range block {
		if err := e.rewriteStatement(&block[i]); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

func (e *emulator) rewriteStatement(stmt *ir.Statement) error {
	if store, ok := stmt.Kind.(ir.StmtStore); ok {
		return e.rewriteStore(stmt, store)
	}

	kind, ok := ir.MapStatementOperands(stmt.Kind, e.replace)
	if !ok {
		return diag.Invariantf(pass, "cannot rewrite statement %T", stmt.Kind)
	}
	stmt.Kind = kind
	for _, child := range ir.ChildBlocks(*stmt) {
		if err := e.rewriteBlock(child); err != nil {
			return err
		}
	}
	return nil
}

func (e *emulator) rewriteStore(stmt *ir.Statement, store ir.StmtStore) error {
	target, err := ir.ResolveExpressionType(e.module, e.fn, store.Pointer)
	if err != nil {
		return diag.Invariantf(pass, "store target: %v", err)
	}
	value := e.replace(store.Value)

	r, ok := roundingFor(ir.ResolveExpressionPrecision(e.module, e.fn, store.Pointer))
	if !ok || !isFloatType(target.Inner(e.module)) {
		store.Value = value
		stmt.Kind = store
		return nil
	}

	if store.Op == ir.AssignPlain {
		store.Value = e.roundValue(store.Value, value, r)
		stmt.Kind = store
		return nil
	}

	valueType, err := ir.ResolveExpressionType(e.module, e.fn, store.Value)
	if err != nil {
		return diag.Invariantf(pass, "store value: %v", err)
	}
	lhs, okL := floatTypeName(target.Inner(e.module))
	rhs, okR := floatTypeName(valueType.Inner(e.module))
	if !okL || !okR {
		return diag.Invariantf(pass, "compound assignment of %T by %T", target.Inner(e.module), valueType.Inner(e.module))
	}
	op := CompoundOp{Op: store.Op, LHS: lhs, RHS: rhs, Rounding: r}
	e.report.addCompound(op)

	// The pointer stays an lvalue: it binds to the helper's inout parameter.
	e.fn.Expressions = append(e.fn.Expressions, ir.Expression{Kind: ir.ExprBuiltinCall{
		Name:      op.HelperName(),
		Arguments: []ir.ExpressionHandle{store.Pointer, value},
	}})
	stmt.Kind = ir.StmtExpression{Expr: ir.ExpressionHandle(len(e.fn.Expressions) - 1)}
	return nil
}

func isFloatType(t ir.TypeInner) bool {
	_, ok := floatTypeName(t)
	return ok
}

// floatTypeName returns the ESSL name of a float scalar, vector or matrix type.
func floatTypeName(t ir.TypeInner) (string, bool) {
	switch t := t.(type) {
	case ir.ScalarType:
		if t.Kind == ir.ScalarFloat {
			return "float", true
		}
	case ir.VectorType:
		if t.Scalar.Kind == ir.ScalarFloat {
			return fmt.Sprintf("vec%d", t.Size), true
		}
	case ir.MatrixType:
		if t.Columns == t.Rows {
			return fmt.Sprintf("mat%d", t.Columns), true
		}
		return fmt.Sprintf("mat%dx%d", t.Columns, t.Rows), true
	}
	return "", false
}
