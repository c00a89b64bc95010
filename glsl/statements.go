// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
)

// loopGatePrefix names the flag that skips a loop's continuing block on the
// first iteration.
const loopGatePrefix = "webgl_loop_init"

// writeBlock writes a block of statements.
func (w *Writer) writeBlock(block ir.Block) error {
	for i, stmt := range block {
		if err := w.writeStatement(stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}

// writeStatement writes a single statement.
//
//nolint:gocyclo,cyclop // Statement handling requires many cases
func (w *Writer) writeStatement(stmt ir.Statement) error {
	switch k := stmt.Kind.(type) {
	case ir.StmtEmit:
		// Expressions are written inline at their use sites.
		return nil

	case ir.StmtBlock:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(k.Block); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
		return nil

	case ir.StmtIf:
		return w.writeIf(k)

	case ir.StmtSwitch:
		return w.writeSwitch(k)

	case ir.StmtLoop:
		return w.writeLoop(k)

	case ir.StmtBreak:
		w.writeLine("break;")
		return nil

	case ir.StmtContinue:
		w.writeLine("continue;")
		return nil

	case ir.StmtReturn:
		return w.writeReturn(k)

	case ir.StmtKill:
		w.writeLine("discard;")
		return nil

	case ir.StmtBarrier:
		return w.writeBarrier(k)

	case ir.StmtStore:
		return w.writeStore(k)

	case ir.StmtCall:
		call, err := w.writeCallExpression(k.Function, k.Arguments)
		if err != nil {
			return err
		}
		w.writeLine("%s;", call)
		return nil

	case ir.StmtExpression:
		expr, err := w.writeExpression(k.Expr)
		if err != nil {
			return err
		}
		w.writeLine("%s;", expr)
		return nil

	default:
		return diag.Invariantf(pass, "unknown statement kind %T", stmt.Kind)
	}
}

// writeIf writes an if statement.
func (w *Writer) writeIf(ifStmt ir.StmtIf) error {
	condition, err := w.writeExpression(ifStmt.Condition)
	if err != nil {
		return err
	}

	w.writeLine("if (%s) {", condition)
	w.pushIndent()
	if err := w.writeBlock(ifStmt.Accept); err != nil {
		return err
	}
	w.popIndent()

	if len(ifStmt.Reject) > 0 {
		w.writeLine("} else {")
		w.pushIndent()
		if err := w.writeBlock(ifStmt.Reject); err != nil {
			return err
		}
		w.popIndent()
	}

	w.writeLine("}")
	return nil
}

// writeSwitch writes a switch statement.
func (w *Writer) writeSwitch(switchStmt ir.StmtSwitch) error {
	if w.options.Version.LessThan(300) {
		return diag.Unimplementedf(pass, "switch requires ESSL 3.00, output is %s", w.options.Version)
	}
	selector, err := w.writeExpression(switchStmt.Selector)
	if err != nil {
		return err
	}

	w.writeLine("switch (%s) {", selector)
	w.pushIndent()

	for _, switchCase := range switchStmt.Cases {
		switch v := switchCase.Value.(type) {
		case ir.SwitchValueI32:
			w.writeLine("case %d:", int32(v))
		case ir.SwitchValueU32:
			w.writeLine("case %du:", uint32(v))
		case ir.SwitchValueDefault:
			w.writeLine("default:")
		default:
			return diag.Invariantf(pass, "unknown switch value %T", switchCase.Value)
		}

		w.pushIndent()
		if err := w.writeBlock(switchCase.Body); err != nil {
			return err
		}

		// Add break unless fallthrough
		if !switchCase.FallThrough {
			w.writeLine("break;")
		}
		w.popIndent()
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeLoop writes a loop as for (;;). A continuing block or break-if runs
// at the top of every iteration but the first, guarded by a gate flag, so
// that continue statements in the body still reach it. Loops are written
// this way at every version, ESSL 1.00 included.
func (w *Writer) writeLoop(loop ir.StmtLoop) error {
	if len(loop.Continuing) == 0 && loop.BreakIf == nil {
		w.writeLine("for (;;) {")
		w.pushIndent()
		if err := w.writeBlock(loop.Body); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
		return nil
	}

	gate := w.names.Fresh(loopGatePrefix)
	w.writeLine("bool %s = true;", gate)
	w.writeLine("for (;;) {")
	w.pushIndent()

	w.writeLine("if (!%s) {", gate)
	w.pushIndent()
	if err := w.writeBlock(loop.Continuing); err != nil {
		return err
	}
	if loop.BreakIf != nil {
		condition, err := w.writeExpression(*loop.BreakIf)
		if err != nil {
			return err
		}
		w.writeLine("if (%s) {", condition)
		w.pushIndent()
		w.writeLine("break;")
		w.popIndent()
		w.writeLine("}")
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("%s = false;", gate)

	if err := w.writeBlock(loop.Body); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

// writeReturn writes a return statement.
func (w *Writer) writeReturn(ret ir.StmtReturn) error {
	if ret.Value == nil {
		w.writeLine("return;")
		return nil
	}
	if w.currentFunction.Result == nil {
		return diag.Invariantf(pass, "value returned from a void function")
	}
	value, err := w.writeExpression(*ret.Value)
	if err != nil {
		return err
	}
	w.writeLine("return %s;", value)
	return nil
}

// writeBarrier writes a barrier statement.
func (w *Writer) writeBarrier(barrier ir.StmtBarrier) error {
	if w.options.Version.LessThan(310) {
		return diag.Unimplementedf(pass, "barriers require ESSL 3.10, output is %s", w.options.Version)
	}

	// Memory barriers for the memory being synchronized, then the
	// execution barrier.
	if barrier.Flags&ir.BarrierStorage != 0 {
		w.writeLine("memoryBarrierBuffer();")
	}
	if barrier.Flags&ir.BarrierTexture != 0 {
		w.writeLine("memoryBarrierImage();")
	}
	if barrier.Flags&ir.BarrierWorkGroup != 0 {
		w.writeLine("memoryBarrierShared();")
	}
	w.writeLine("barrier();")
	return nil
}

// writeStore writes a plain or compound assignment.
func (w *Writer) writeStore(store ir.StmtStore) error {
	pointer, err := w.writeExpression(store.Pointer)
	if err != nil {
		return err
	}
	value, err := w.writeExpression(store.Value)
	if err != nil {
		return err
	}
	w.writeLine("%s %s %s;", pointer, store.Op, value)
	return nil
}
