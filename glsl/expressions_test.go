// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/essl/builtins"
	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
	"github.com/gogpu/essl/names"
)

func ptrU32(v uint32) *uint32 { return &v }

func ptrExpr(h ir.ExpressionHandle) *ir.ExpressionHandle { return &h }

// exprModule builds a fragment shader whose main function holds one
// expression of every kind the writer handles.
func exprModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat}
	return &ir.Module{
		Stage: ir.StageFragment,
		Types: []ir.Type{
			{Inner: f32},                                          // 0
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}},    // 1
			{Inner: ir.ScalarType{Kind: ir.ScalarSint}},           // 2
			{Inner: ir.ArrayType{Base: 0, Size: ir.ArraySize{Constant: ptrU32(4)}}}, // 3
			{Inner: ir.SamplerType{Dim: ir.Dim2D, Kind: ir.ScalarFloat}},            // 4
			{Inner: ir.VectorType{Size: ir.Vec2, Scalar: f32}},                      // 5
			{Symbol: ir.Symbol{ID: 60, Name: "Light"}, Inner: ir.StructType{Members: []ir.StructMember{
				{Name: "color", Type: 1, Precision: ir.PrecisionMedium},
				{Name: "intensity", Type: 0},
			}}}, // 6
			{Inner: ir.MatrixType{Columns: ir.Vec3, Rows: ir.Vec3}}, // 7
		},
		GlobalVariables: []ir.GlobalVariable{
			{Symbol: ir.Symbol{ID: 10, Name: "uTex"}, Space: ir.SpaceUniform, Type: 4, Precision: ir.PrecisionLow},
			{Symbol: ir.Symbol{ID: 11, Name: "gl_FragColor", Kind: ir.SymbolBuiltIn}, Space: ir.SpaceOutput, Type: 1},
			{Symbol: ir.Symbol{ID: 12, Name: "uLight"}, Space: ir.SpaceUniform, Type: 6},
			{Symbol: ir.Symbol{ID: 13, Name: "uWeights"}, Space: ir.SpaceUniform, Type: 3, Precision: ir.PrecisionMedium},
		},
		Functions: []ir.Function{{
			Symbol: ir.Symbol{ID: 1, Name: "main"},
			LocalVars: []ir.LocalVariable{
				{Symbol: ir.Symbol{ID: 20, Name: "i"}, Type: 2, Precision: ir.PrecisionHigh},
				{Symbol: ir.Symbol{ID: 21, Name: "v"}, Type: 1, Precision: ir.PrecisionMedium},
				{Symbol: ir.Symbol{ID: 22, Name: "uv"}, Type: 5, Precision: ir.PrecisionMedium},
				{Symbol: ir.Symbol{ID: 23, Name: "m"}, Type: 7, Precision: ir.PrecisionMedium},
			},
			Expressions: []ir.Expression{
				{Kind: ir.ExprLocalVariable{Variable: 0}},                // 0
				{Kind: ir.ExprLoad{Pointer: 0}},                          // 1
				{Kind: ir.ExprGlobalVariable{Variable: 3}},               // 2
				{Kind: ir.ExprAccess{Base: 2, Index: 1}},                 // 3
				{Kind: ir.Literal{Value: ir.LiteralI32(2)}},              // 4
				{Kind: ir.ExprAccess{Base: 2, Index: 4}},                 // 5
				{Kind: ir.ExprGlobalVariable{Variable: 0}},               // 6
				{Kind: ir.ExprLocalVariable{Variable: 2}},                // 7
				{Kind: ir.ExprLoad{Pointer: 7}},                          // 8
				{Kind: ir.ExprBuiltinCall{Name: "texture2D", Arguments: []ir.ExpressionHandle{6, 8}}}, // 9
				{Kind: ir.ExprGlobalVariable{Variable: 2}},               // 10
				{Kind: ir.ExprAccessIndex{Base: 10, Index: 1}},           // 11
				{Kind: ir.ExprLocalVariable{Variable: 1}},                // 12
				{Kind: ir.ExprLoad{Pointer: 12}},                         // 13
				{Kind: ir.ExprSwizzle{Size: ir.Vec2, Vector: 13, Pattern: [4]ir.SwizzleComponent{ir.SwizzleY, ir.SwizzleX}}}, // 14
				{Kind: ir.Literal{Value: ir.LiteralF32(0.5)}},            // 15
				{Kind: ir.Literal{Value: ir.LiteralF32(2)}},              // 16
				{Kind: ir.ExprMath{Fun: ir.MathAtan2, Arg: 15, Arg1: ptrExpr(16)}}, // 17
				{Kind: ir.Literal{Value: ir.LiteralBool(true)}},          // 18
				{Kind: ir.Literal{Value: ir.LiteralBool(false)}},         // 19
				{Kind: ir.ExprBinary{Op: ir.BinaryLogicalXor, Left: 18, Right: 19}}, // 20
				{Kind: ir.ExprAs{Expr: 1, Kind: ir.ScalarFloat}},         // 21
				{Kind: ir.ExprZeroValue{Type: 1}},                        // 22
				{Kind: ir.ExprLocalVariable{Variable: 3}},                // 23
				{Kind: ir.ExprLoad{Pointer: 23}},                         // 24
				{Kind: ir.ExprAccess{Base: 24, Index: 1}},                // 25
				{Kind: ir.ExprSplat{Size: ir.Vec4, Value: 15}},           // 26
				{Kind: ir.ExprBinary{Op: ir.BinaryModulo, Left: 1, Right: 4}}, // 27
				{Kind: ir.Literal{Value: ir.LiteralU32(3)}},              // 28
				{Kind: ir.Literal{Value: ir.LiteralI32(-3)}},             // 29
				{Kind: ir.ExprUnary{Op: ir.UnaryNegate, Expr: 15}},       // 30
				{Kind: ir.ExprSelect{Condition: 18, Accept: 15, Reject: 16}}, // 31
				{Kind: ir.ExprDerivative{Axis: ir.DerivativeX, Expr: 15}}, // 32
				{Kind: ir.ExprArrayLength{Array: 2}},                     // 33
				{Kind: ir.ExprCompose{Type: 5, Components: []ir.ExpressionHandle{15, 16}}}, // 34
				{Kind: ir.ExprMath{Fun: ir.MathClamp, Arg: 15, Arg1: ptrExpr(16), Arg2: ptrExpr(16)}}, // 35
				{Kind: ir.ExprGlobalVariable{Variable: 1}},               // 36
				{Kind: ir.ExprRelational{Fun: ir.RelationalAny, Argument: 18}}, // 37
				{Kind: ir.ExprZeroValue{Type: 6}},                        // 38
				{Kind: ir.ExprMath{Fun: ir.MathAtan, Arg: 15}},           // 39
				{Kind: ir.ExprBinary{Op: ir.BinaryMultiply, Left: 13, Right: 15}}, // 40
			},
		}},
	}
}

// newTestWriter creates a writer positioned inside the module's first function.
func newTestWriter(module *ir.Module, opts Options) *Writer {
	if opts.Resolver == nil {
		opts.Resolver = names.NewResolver(module.Stage, opts.CompileOptions.Has(legalize.EnforceOutputToESSL3), nil)
	}
	if opts.Version.IsZero() {
		opts.Version = legalize.Version300
	}
	w := newWriter(module, &opts)
	for handle, typ := range module.Types {
		if _, ok := typ.Inner.(ir.StructType); ok {
			w.typeNames[ir.TypeHandle(handle)] = typ.Symbol.Name
		}
	}
	w.currentFunction = &module.Functions[0]
	return w
}

func writeExpr(t *testing.T, w *Writer, h ir.ExpressionHandle) string {
	t.Helper()
	got, err := w.writeExpression(h)
	if err != nil {
		t.Fatalf("writeExpression(%d) error = %v", h, err)
	}
	return got
}

// =============================================================================
// Expressions
// =============================================================================

func TestWriteExpression(t *testing.T) {
	tests := []struct {
		name   string
		handle ir.ExpressionHandle
		want   string
	}{
		{"load", 1, "i"},
		{"dynamic index", 3, "uWeights[i]"},
		{"literal index", 5, "uWeights[2]"},
		{"texture lookup", 9, "texture2D(uTex, uv)"},
		{"struct member", 11, "uLight.intensity"},
		{"swizzle", 14, "v.yx"},
		{"float literal", 16, "2.0"},
		{"atan2", 17, "atan(0.5, 2.0)"},
		{"logical xor", 20, "(true ^^ false)"},
		{"conversion", 21, "float(i)"},
		{"zero vector", 22, "vec4(0.0)"},
		{"matrix column", 25, "m[i]"},
		{"splat", 26, "vec4(0.5)"},
		{"modulo", 27, "(i % 2)"},
		{"uint literal", 28, "3u"},
		{"negative literal", 29, "-3"},
		{"negate", 30, "-(0.5)"},
		{"select", 31, "(true ? 0.5 : 2.0)"},
		{"derivative", 32, "dFdx(0.5)"},
		{"array length", 33, "uWeights.length()"},
		{"constructor", 34, "vec2(0.5, 2.0)"},
		{"three argument math", 35, "clamp(0.5, 2.0, 2.0)"},
		{"builtin output", 36, "gl_FragColor"},
		{"relational", 37, "any(true)"},
		{"multiply", 40, "(v * 0.5)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWriter(exprModule(), Options{})
			if got := writeExpr(t, w, tt.handle); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteExpression_TextureRename(t *testing.T) {
	tests := []struct {
		name    string
		enforce bool
		call    string
		want    string
	}{
		{"legacy kept", false, "texture2D", "texture2D(uTex, uv)"},
		{"vendor suffix dropped", false, "texture2DLodEXT", "texture2DLod(uTex, uv)"},
		{"legacy to core", true, "texture2D", "texture(uTex, uv)"},
		{"cube to core", true, "textureCube", "texture(uTex, uv)"},
		{"unknown passes through", true, "myLookup", "myLookup(uTex, uv)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			module := exprModule()
			module.Functions[0].Expressions[9].Kind = ir.ExprBuiltinCall{Name: tt.call, Arguments: []ir.ExpressionHandle{6, 8}}
			var opts Options
			if tt.enforce {
				opts.CompileOptions = legalize.EnforceOutputToESSL3
			}
			w := newTestWriter(module, opts)
			if got := writeExpr(t, w, 9); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteExpression_AtanEmulation(t *testing.T) {
	emulator := builtins.NewEmulator()
	emulator.Init(legalize.EmulateAtan2FloatFunction)
	w := newTestWriter(exprModule(), Options{Emulator: emulator})

	if got := writeExpr(t, w, 17); got != "atan_emu(0.5, 2.0)" {
		t.Errorf("atan(y, x) = %q, want atan_emu(0.5, 2.0)", got)
	}
	// Single-argument atan is not emulated.
	if got := writeExpr(t, w, 39); got != "atan(0.5)" {
		t.Errorf("atan(x) = %q, want atan(0.5)", got)
	}
	if diff := cmp.Diff([]string{"atan(float,float)"}, emulator.Used()); diff != "" {
		t.Errorf("Used() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteExpression_LegacyOutputTracking(t *testing.T) {
	tests := []struct {
		name    string
		enforce bool
		want    string
		tracked bool
	}{
		{"not enforced", false, "gl_FragColor", false},
		{"enforced", true, "webgl_FragColor", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts Options
			if tt.enforce {
				opts.CompileOptions = legalize.EnforceOutputToESSL3
			}
			w := newTestWriter(exprModule(), opts)
			if got := writeExpr(t, w, 36); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if w.info.UsesFragColor != tt.tracked {
				t.Errorf("UsesFragColor = %v, want %v", w.info.UsesFragColor, tt.tracked)
			}
			if w.info.UsesFragData {
				t.Error("UsesFragData set for gl_FragColor")
			}
		})
	}
}

func TestWriteExpression_Clamping(t *testing.T) {
	tests := []struct {
		name     string
		strategy ClampingStrategy
		handle   ir.ExpressionHandle
		want     string
		clamped  int
	}{
		{"array intrinsic", ClampWithClampIntrinsic, 3, "uWeights[int(clamp(float(i), 0.0, float(3)))]", 1},
		{"matrix intrinsic", ClampWithClampIntrinsic, 25, "m[int(clamp(float(i), 0.0, float(2)))]", 1},
		{"array user-defined", ClampWithUserDefinedIntClamp, 3, "uWeights[webgl_int_clamp(i, 0, 3)]", 1},
		{"literal index untouched", ClampWithUserDefinedIntClamp, 5, "uWeights[2]", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWriter(exprModule(), Options{
				CompileOptions:   legalize.ClampIndirectArrayBounds,
				ClampingStrategy: tt.strategy,
			})
			if got := writeExpr(t, w, tt.handle); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if w.info.ClampedIndices != tt.clamped {
				t.Errorf("ClampedIndices = %d, want %d", w.info.ClampedIndices, tt.clamped)
			}
			wantHelper := tt.clamped > 0 && tt.strategy == ClampWithUserDefinedIntClamp
			if w.info.NeedsIntClamp != wantHelper {
				t.Errorf("NeedsIntClamp = %v, want %v", w.info.NeedsIntClamp, wantHelper)
			}
		})
	}
}

func TestWriteExpression_Errors(t *testing.T) {
	t.Run("aggregate zero value", func(t *testing.T) {
		w := newTestWriter(exprModule(), Options{})
		_, err := w.writeExpression(38)
		if !diag.IsUnimplemented(err) {
			t.Errorf("error = %v, want unimplemented", err)
		}
	})
	t.Run("unknown kind", func(t *testing.T) {
		module := exprModule()
		module.Functions[0].Expressions[0] = ir.Expression{}
		w := newTestWriter(module, Options{})
		_, err := w.writeExpression(0)
		if !diag.IsInvariantViolation(err) {
			t.Errorf("error = %v, want invariant violation", err)
		}
	})
	t.Run("out of range", func(t *testing.T) {
		w := newTestWriter(exprModule(), Options{})
		_, err := w.writeExpression(1000)
		if !diag.IsInvariantViolation(err) {
			t.Errorf("error = %v, want invariant violation", err)
		}
	})
}

// =============================================================================
// Statements
// =============================================================================

func writeStmts(t *testing.T, w *Writer, block ir.Block) string {
	t.Helper()
	if err := w.writeBlock(block); err != nil {
		t.Fatalf("writeBlock() error = %v", err)
	}
	return w.String()
}

func TestWriteStatement(t *testing.T) {
	tests := []struct {
		name  string
		block ir.Block
		want  string
	}{
		{
			name:  "store",
			block: ir.Block{{Kind: ir.StmtStore{Pointer: 12, Value: 22}}},
			want:  "v = vec4(0.0);\n",
		},
		{
			name:  "compound store",
			block: ir.Block{{Kind: ir.StmtStore{Pointer: 0, Value: 4, Op: ir.AssignAdd}}},
			want:  "i += 2;\n",
		},
		{
			name:  "emit writes nothing",
			block: ir.Block{{Kind: ir.StmtEmit{Range: ir.Range{Start: 0, End: 5}}}},
			want:  "",
		},
		{
			name: "if else",
			block: ir.Block{{Kind: ir.StmtIf{
				Condition: 18,
				Accept:    ir.Block{{Kind: ir.StmtKill{}}},
				Reject:    ir.Block{{Kind: ir.StmtReturn{}}},
			}}},
			want: "if (true) {\n    discard;\n} else {\n    return;\n}\n",
		},
		{
			name:  "nested block",
			block: ir.Block{{Kind: ir.StmtBlock{Block: ir.Block{{Kind: ir.StmtExpression{Expr: 9}}}}}},
			want:  "{\n    texture2D(uTex, uv);\n}\n",
		},
		{
			name:  "plain loop",
			block: ir.Block{{Kind: ir.StmtLoop{Body: ir.Block{{Kind: ir.StmtBreak{}}}}}},
			want:  "for (;;) {\n    break;\n}\n",
		},
		{
			name: "switch",
			block: ir.Block{{Kind: ir.StmtSwitch{Selector: 1, Cases: []ir.SwitchCase{
				{Value: ir.SwitchValueI32(1), Body: ir.Block{{Kind: ir.StmtStore{Pointer: 0, Value: 4}}}},
				{Value: ir.SwitchValueDefault{}, FallThrough: true},
			}}}},
			want: "switch (i) {\n    case 1:\n        i = 2;\n        break;\n    default:\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWriter(exprModule(), Options{})
			if got := writeStmts(t, w, tt.block); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestWriteStatement_LoopGate(t *testing.T) {
	loop := ir.Statement{Kind: ir.StmtLoop{
		Body:       ir.Block{{Kind: ir.StmtContinue{}}},
		Continuing: ir.Block{{Kind: ir.StmtStore{Pointer: 0, Value: 4, Op: ir.AssignAdd}}},
		BreakIf:    ptrExpr(18),
	}}
	w := newTestWriter(exprModule(), Options{})
	got := writeStmts(t, w, ir.Block{loop, loop})

	want := `bool webgl_loop_init = true;
for (;;) {
    if (!webgl_loop_init) {
        i += 2;
        if (true) {
            break;
        }
    }
    webgl_loop_init = false;
    continue;
}
bool webgl_loop_init_1 = true;
for (;;) {
    if (!webgl_loop_init_1) {
        i += 2;
        if (true) {
            break;
        }
    }
    webgl_loop_init_1 = false;
    continue;
}
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteStatement_VersionRequirements(t *testing.T) {
	tests := []struct {
		name    string
		version legalize.Version
		stmt    ir.StatementKind
		want    string
		unimpl  bool
	}{
		{"switch on 100", legalize.Version100, ir.StmtSwitch{Selector: 1}, "", true},
		{"loop on 100", legalize.Version100, ir.StmtLoop{Body: ir.Block{{Kind: ir.StmtBreak{}}}}, "for (;;) {\n    break;\n}\n", false},
		{"barrier on 300", legalize.Version300, ir.StmtBarrier{Flags: ir.BarrierWorkGroup}, "", true},
		{"barrier on 310", legalize.Version310, ir.StmtBarrier{Flags: ir.BarrierWorkGroup}, "memoryBarrierShared();\nbarrier();\n", false},
		{"execution barrier", legalize.Version310, ir.StmtBarrier{}, "barrier();\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWriter(exprModule(), Options{Version: tt.version})
			err := w.writeStatement(ir.Statement{Kind: tt.stmt})
			if tt.unimpl {
				if !diag.IsUnimplemented(err) {
					t.Errorf("error = %v, want unimplemented", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("writeStatement() error = %v", err)
			}
			if got := w.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteStatement_Errors(t *testing.T) {
	t.Run("unknown kind", func(t *testing.T) {
		w := newTestWriter(exprModule(), Options{})
		err := w.writeStatement(ir.Statement{})
		if !diag.IsInvariantViolation(err) {
			t.Errorf("error = %v, want invariant violation", err)
		}
	})
	t.Run("value from void function", func(t *testing.T) {
		w := newTestWriter(exprModule(), Options{})
		err := w.writeStatement(ir.Statement{Kind: ir.StmtReturn{Value: ptrExpr(15)}})
		if !diag.IsInvariantViolation(err) {
			t.Errorf("error = %v, want invariant violation", err)
		}
	})
	t.Run("error names statement", func(t *testing.T) {
		w := newTestWriter(exprModule(), Options{})
		err := w.writeBlock(ir.Block{{Kind: ir.StmtBreak{}}, {}})
		if err == nil || !strings.Contains(err.Error(), "statement 1") {
			t.Errorf("error = %v, want it to name statement 1", err)
		}
	})
}
