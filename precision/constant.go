// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package precision

import (
	"fmt"

	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
)

// ConstantPrefix starts the names of hoisted highp constants.
const ConstantPrefix = "webgl_const_"

// RecordConstantPrecision returns a copy of module in which every highp
// literal that would otherwise be evaluated at a lower precision is moved
// into a const highp local, so the operation consuming it is highp too.
//
// A literal keeps its place when its precision cannot matter: when it is
// assigned, used as an initializer or an index, passed to a user function or
// a texture lookup, or when another non-literal operand is already highp.
func RecordConstantPrecision(module *ir.Module) (*ir.Module, error) {
	out := module.Clone()
	r := &recorder{module: out, nextID: maxSymbolID(out) + 1}
	for i := range out.Functions {
		if err := r.recordFunction(&out.Functions[i]); err != nil {
			return nil, fmt.Errorf("function %s: %w", out.Functions[i].Symbol.Name, err)
		}
	}
	return out, nil
}

type recorder struct {
	module *ir.Module
	nextID ir.SymbolID
	count  int
}

func (r *recorder) recordFunction(fn *ir.Function) error {
	consumers, err := r.consumers(fn)
	if err != nil {
		return err
	}

	original := len(fn.Expressions)
	for h := 0; h < original; h++ {
		handle := ir.ExpressionHandle(h)
		lit, ok := fn.Expressions[h].Kind.(ir.Literal)
		if !ok || lit.Precision != ir.PrecisionHigh {
			continue
		}
		if _, isBool := lit.Value.(ir.LiteralBool); isBool {
			continue
		}
		if !r.affectsAnyConsumer(fn, handle, consumers[handle]) {
			continue
		}
		if err := r.hoist(fn, handle, lit); err != nil {
			return err
		}
	}
	return nil
}

// consumers maps each expression to the expressions that use it as an
// operand. Statement and initializer uses are not recorded: a literal's
// precision never matters there.
func (r *recorder) consumers(fn *ir.Function) (map[ir.ExpressionHandle][]ir.ExpressionHandle, error) {
	out := make(map[ir.ExpressionHandle][]ir.ExpressionHandle)
	for h := range fn.Expressions {
		parent := ir.ExpressionHandle(h)
		_, ok := ir.MapExpressionOperands(fn.Expressions[h].Kind, func(child ir.ExpressionHandle) ir.ExpressionHandle {
			out[child] = append(out[child], parent)
			return child
		})
		if !ok {
			return nil, diag.Invariantf(pass, "expression %d: unknown kind %T", h, fn.Expressions[h].Kind)
		}
	}
	return out, nil
}

func (r *recorder) affectsAnyConsumer(fn *ir.Function, lit ir.ExpressionHandle, parents []ir.ExpressionHandle) bool {
	for _, p := range parents {
		if r.affectsConsumer(fn, lit, p) {
			return true
		}
	}
	return false
}

// affectsConsumer reports whether the literal's precision changes the
// precision its consumer is evaluated at.
func (r *recorder) affectsConsumer(fn *ir.Function, lit, parent ir.ExpressionHandle) bool {
	var others []ir.ExpressionHandle
	switch kind := fn.Expressions[parent].Kind.(type) {
	case ir.ExprBinary:
		if kind.Left == lit {
			others = []ir.ExpressionHandle{kind.Right}
		} else {
			others = []ir.ExpressionHandle{kind.Left}
		}
	case ir.ExprMath:
		others = ir.MathOperands(kind)
	case ir.ExprCompose:
		if res := r.module.Types[kind.Type].Inner; isBoolType(res) {
			return false
		}
		others = kind.Components
	case ir.ExprSelect:
		if kind.Condition == lit {
			return false
		}
		others = []ir.ExpressionHandle{kind.Accept, kind.Reject}
	case ir.ExprBuiltinCall:
		if ir.IsTextureFunction(kind.Name) {
			return false
		}
		others = kind.Arguments
	default:
		// Indexing, user calls and single-operand expressions take their
		// precision from elsewhere or from the literal alone.
		return false
	}

	for _, o := range others {
		if o == lit {
			continue
		}
		if _, isLit := fn.Expressions[o].Kind.(ir.Literal); isLit {
			continue
		}
		if ir.ResolveExpressionPrecision(r.module, fn, o) >= ir.PrecisionHigh {
			return false
		}
	}
	return true
}

// hoist turns the literal's slot into a load of a new const highp local whose
// initializer is the literal, moved to the end of the arena.
func (r *recorder) hoist(fn *ir.Function, h ir.ExpressionHandle, lit ir.Literal) error {
	res, err := ir.ResolveExpressionType(r.module, fn, h)
	if err != nil {
		return diag.Invariantf(pass, "literal %d: %v", h, err)
	}
	ty := r.typeHandle(res.Inner(r.module))

	fn.Expressions = append(fn.Expressions, ir.Expression{Kind: lit})
	init := ir.ExpressionHandle(len(fn.Expressions) - 1)

	fn.LocalVars = append(fn.LocalVars, ir.LocalVariable{
		Symbol:    ir.Symbol{ID: r.nextID, Name: fmt.Sprintf("%s%d", ConstantPrefix, r.count), Kind: ir.SymbolInternal},
		Type:      ty,
		Precision: ir.PrecisionHigh,
		Const:     true,
		Init:      &init,
	})
	r.nextID++
	r.count++

	fn.Expressions = append(fn.Expressions, ir.Expression{Kind: ir.ExprLocalVariable{Variable: uint32(len(fn.LocalVars) - 1)}})
	fn.Expressions[h] = ir.Expression{Kind: ir.ExprLoad{Pointer: ir.ExpressionHandle(len(fn.Expressions) - 1)}}
	return nil
}

// typeHandle finds inner in the type arena, appending it if missing.
func (r *recorder) typeHandle(inner ir.TypeInner) ir.TypeHandle {
	for i, t := range r.module.Types {
		if t.Inner == inner {
			return ir.TypeHandle(i)
		}
	}
	r.module.Types = append(r.module.Types, ir.Type{Inner: inner})
	return ir.TypeHandle(len(r.module.Types) - 1)
}

func isBoolType(t ir.TypeInner) bool {
	switch t := t.(type) {
	case ir.ScalarType:
		return t.Kind == ir.ScalarBool
	case ir.VectorType:
		return t.Scalar.Kind == ir.ScalarBool
	}
	return false
}

// maxSymbolID returns the largest symbol ID in the module.
func maxSymbolID(m *ir.Module) ir.SymbolID {
	var id ir.SymbolID
	see := func(s ir.Symbol) {
		if s.ID > id {
			id = s.ID
		}
	}
	for _, t := range m.Types {
		see(t.Symbol)
	}
	for _, c := range m.Constants {
		see(c.Symbol)
	}
	for _, gv := range m.GlobalVariables {
		see(gv.Symbol)
	}
	for _, fn := range m.Functions {
		see(fn.Symbol)
		for _, a := range fn.Arguments {
			see(a.Symbol)
		}
		for _, lv := range fn.LocalVars {
			see(lv.Symbol)
		}
	}
	return id
}
