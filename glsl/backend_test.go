// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"math"
	"strings"
	"testing"

	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
	"github.com/gogpu/essl/names"
)

func generate(t *testing.T, module *ir.Module, opts Options) (string, TranslationInfo) {
	t.Helper()
	if opts.Resolver == nil {
		opts.Resolver = names.NewResolver(module.Stage, opts.CompileOptions.Has(legalize.EnforceOutputToESSL3), nil)
	}
	body, info, err := Generate(module, opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return body, info
}

// fragColorModule writes vec4(1.0) to gl_FragColor.
func fragColorModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat}
	return &ir.Module{
		Stage: ir.StageFragment,
		Types: []ir.Type{
			{Inner: f32},
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}},
		},
		DefaultPrecisions: []ir.DefaultPrecision{{Precision: ir.PrecisionMedium, Type: 0}},
		GlobalVariables: []ir.GlobalVariable{
			{Symbol: ir.Symbol{ID: 1, Name: "gl_FragColor", Kind: ir.SymbolBuiltIn}, Space: ir.SpaceOutput, Type: 1},
		},
		Functions: []ir.Function{{
			Symbol: ir.Symbol{ID: 2, Name: "fs_main"},
			Expressions: []ir.Expression{
				{Kind: ir.ExprGlobalVariable{Variable: 0}},
				{Kind: ir.Literal{Value: ir.LiteralF32(1)}},
				{Kind: ir.ExprSplat{Size: ir.Vec4, Value: 1}},
			},
			Body: ir.Block{{Kind: ir.StmtStore{Pointer: 0, Value: 2}}},
		}},
	}
}

// vertexModule writes aPos * uScale to gl_Position and declares a flat output.
func vertexModule() *ir.Module {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat}
	return &ir.Module{
		Stage: ir.StageVertex,
		Types: []ir.Type{
			{Inner: f32},
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}},
			{Inner: ir.VectorType{Size: ir.Vec2, Scalar: f32}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Symbol: ir.Symbol{ID: 1, Name: "aPos"}, Space: ir.SpaceInput, Type: 1, Precision: ir.PrecisionHigh, Location: ptrU32(0)},
			{Symbol: ir.Symbol{ID: 2, Name: "vUV"}, Space: ir.SpaceOutput, Type: 2, Precision: ir.PrecisionMedium, Location: ptrU32(1), Interpolation: ir.InterpolationFlat},
			{Symbol: ir.Symbol{ID: 3, Name: "uScale"}, Space: ir.SpaceUniform, Type: 0, Precision: ir.PrecisionHigh, Binding: ptrU32(2)},
			{Symbol: ir.Symbol{ID: 4, Name: "gl_Position", Kind: ir.SymbolBuiltIn}, Space: ir.SpaceOutput, Type: 1, Precision: ir.PrecisionHigh},
		},
		Functions: []ir.Function{{
			Symbol: ir.Symbol{ID: 5, Name: "vs_main"},
			Expressions: []ir.Expression{
				{Kind: ir.ExprGlobalVariable{Variable: 3}},
				{Kind: ir.ExprGlobalVariable{Variable: 0}},
				{Kind: ir.ExprLoad{Pointer: 1}},
				{Kind: ir.ExprGlobalVariable{Variable: 2}},
				{Kind: ir.ExprLoad{Pointer: 3}},
				{Kind: ir.ExprBinary{Op: ir.BinaryMultiply, Left: 2, Right: 4}},
			},
			Body: ir.Block{{Kind: ir.StmtStore{Pointer: 0, Value: 5}}},
		}},
	}
}

// =============================================================================
// Generate
// =============================================================================

func TestGenerate_FragColor(t *testing.T) {
	body, info := generate(t, fragColorModule(), Options{Version: legalize.Version100})
	want := `precision mediump float;

void main() {
    gl_FragColor = vec4(1.0);
}
`
	if body != want {
		t.Errorf("body:\n%s\nwant:\n%s", body, want)
	}
	if info.UsesFragColor {
		t.Error("UsesFragColor set without enforcement")
	}
}

func TestGenerate_FragColorEnforced(t *testing.T) {
	body, info := generate(t, fragColorModule(), Options{
		Version:        legalize.Version300,
		CompileOptions: legalize.EnforceOutputToESSL3,
	})
	if !strings.Contains(body, "    webgl_FragColor = vec4(1.0);\n") {
		t.Errorf("legacy output not renamed:\n%s", body)
	}
	if !info.UsesFragColor || info.UsesFragData {
		t.Errorf("info = %+v, want only UsesFragColor", info)
	}
}

func TestGenerate_ForceHighPrecision(t *testing.T) {
	body, _ := generate(t, fragColorModule(), Options{Version: legalize.Version100, ForceHighPrecision: true})
	if !strings.HasPrefix(body, "precision highp float;\n") {
		t.Errorf("default precision not forced:\n%s", body)
	}
	if strings.Contains(body, "mediump") {
		t.Errorf("mediump survived forcing:\n%s", body)
	}
}

func TestGenerate_StageDeclarations(t *testing.T) {
	tests := []struct {
		name    string
		version legalize.Version
		want    string
	}{
		{"essl 1.00", legalize.Version100, `attribute highp vec4 aPos;
varying mediump vec2 vUV;
uniform highp float uScale;
`},
		{"essl 3.00", legalize.Version300, `layout(location = 0) in highp vec4 aPos;
layout(location = 1) flat out mediump vec2 vUV;
uniform highp float uScale;
`},
		{"essl 3.10", legalize.Version310, `layout(location = 0) in highp vec4 aPos;
layout(location = 1) flat out mediump vec2 vUV;
layout(binding = 2) uniform highp float uScale;
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := generate(t, vertexModule(), Options{Version: tt.version})
			want := tt.want + "\nvoid main() {\n    gl_Position = (aPos * uScale);\n}\n"
			if body != want {
				t.Errorf("body:\n%s\nwant:\n%s", body, want)
			}
		})
	}
}

func TestGenerate_FlattenedInvariant(t *testing.T) {
	module := vertexModule()
	module.Pragma.STDGLInvariantAll = true

	body, _ := generate(t, module, Options{
		Version:        legalize.Version300,
		CompileOptions: legalize.FlattenPragmaSTDGLInvariantAll,
	})
	for _, line := range []string{
		"layout(location = 1) invariant flat out mediump vec2 vUV;\n",
		"invariant gl_Position;\n",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("missing %q in:\n%s", line, body)
		}
	}

	// Without flattening the pragma carries the invariance.
	body, _ = generate(t, vertexModule(), Options{Version: legalize.Version300})
	if strings.Contains(body, "invariant") {
		t.Errorf("invariant written without flattening:\n%s", body)
	}
}

func TestGenerate_Declarations(t *testing.T) {
	f32 := ir.ScalarType{Kind: ir.ScalarFloat}
	half := ir.ExpressionHandle(0)
	module := &ir.Module{
		Stage: ir.StageFragment,
		Types: []ir.Type{
			{Inner: f32}, // 0
			{Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}}, // 1
			{Symbol: ir.Symbol{ID: 1, Name: "Light"}, Inner: ir.StructType{Members: []ir.StructMember{
				{Name: "color", Type: 1, Precision: ir.PrecisionMedium},
				{Name: "intensity", Type: 0},
			}}}, // 2
		},
		Constants: []ir.Constant{
			{Symbol: ir.Symbol{ID: 2, Name: "kScale"}, Type: 0, Precision: ir.PrecisionMedium,
				Value: ir.ScalarValue{Bits: uint64(math.Float32bits(0.5)), Kind: ir.ScalarFloat}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Symbol: ir.Symbol{ID: 3, Name: "uLight"}, Space: ir.SpaceUniform, Type: 2},
		},
		Functions: []ir.Function{
			{
				Symbol: ir.Symbol{ID: 4, Name: "shade"},
				Arguments: []ir.FunctionArgument{
					{Symbol: ir.Symbol{ID: 5, Name: "x"}, Type: 0, Precision: ir.PrecisionHigh},
					{Symbol: ir.Symbol{ID: 6, Name: "c"}, Type: 1, Precision: ir.PrecisionMedium, Qualifier: ir.ParameterOut},
				},
				Result:      &ir.FunctionResult{Type: 0, Precision: ir.PrecisionMedium},
				Expressions: []ir.Expression{{Kind: ir.ExprFunctionArgument{Index: 0}}},
				Body:        ir.Block{{Kind: ir.StmtReturn{Value: ptrExpr(0)}}},
			},
			{
				Symbol: ir.Symbol{ID: 7, Name: "main"},
				LocalVars: []ir.LocalVariable{
					{Symbol: ir.Symbol{ID: 8, Name: "k"}, Type: 0, Precision: ir.PrecisionHigh, Const: true, Init: &half},
				},
				Expressions: []ir.Expression{{Kind: ir.Literal{Value: ir.LiteralF32(0.5)}}},
			},
		},
		EntryPoint: 1,
	}

	body, _ := generate(t, module, Options{Version: legalize.Version100})
	want := `struct Light {
    mediump vec4 color;
    float intensity;
};

const mediump float kScale = 0.5;

uniform Light uLight;

mediump float shade(highp float x, out mediump vec4 c) {
    return x;
}

void main() {
    const highp float k = 0.5;
}
`
	if body != want {
		t.Errorf("body:\n%s\nwant:\n%s", body, want)
	}
}

func TestGenerate_UserMainRenamed(t *testing.T) {
	module := fragColorModule()
	module.Functions = append(module.Functions, ir.Function{Symbol: ir.Symbol{ID: 9, Name: "main"}})
	module.Functions[0].Body = append(module.Functions[0].Body, ir.Statement{Kind: ir.StmtCall{Function: 1}})

	body, _ := generate(t, module, Options{Version: legalize.Version100})
	if !strings.Contains(body, "void main_1() {\n") || !strings.Contains(body, "    main_1();\n") {
		t.Errorf("user main not renamed:\n%s", body)
	}
	if strings.LastIndex(body, "void main() {") < strings.Index(body, "void main_1() {") {
		t.Errorf("entry point not written last:\n%s", body)
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("no resolver", func(t *testing.T) {
		_, _, err := Generate(fragColorModule(), Options{})
		if !diag.IsInvariantViolation(err) {
			t.Errorf("error = %v, want invariant violation", err)
		}
	})
	t.Run("missing entry point", func(t *testing.T) {
		module := fragColorModule()
		module.EntryPoint = 3
		_, _, err := Generate(module, Options{Resolver: names.NewResolver(module.Stage, false, nil)})
		if !diag.IsInvariantViolation(err) {
			t.Errorf("error = %v, want invariant violation", err)
		}
	})
	t.Run("external sampler binding", func(t *testing.T) {
		module := fragColorModule()
		module.Types = append(module.Types, ir.Type{Inner: ir.SamplerType{Class: ir.ImageClassExternal}})
		module.GlobalVariables = append(module.GlobalVariables, ir.GlobalVariable{
			Symbol: ir.Symbol{ID: 10, Name: "uVideo"}, Space: ir.SpaceUniform, Type: 2, Binding: ptrU32(0),
		})
		_, _, err := Generate(module, Options{Version: legalize.Version310, Resolver: names.NewResolver(module.Stage, false, nil)})
		if !diag.IsUnimplemented(err) {
			t.Errorf("error = %v, want unimplemented", err)
		}
		if err != nil && !strings.HasPrefix(err.Error(), "glsl: ") {
			t.Errorf("error %q not wrapped", err)
		}
	})
}

// =============================================================================
// Header pieces
// =============================================================================

func TestClampingStrategy(t *testing.T) {
	tests := []struct {
		name string
		want ClampingStrategy
	}{
		{"", ClampWithClampIntrinsic},
		{"intrinsic", ClampWithClampIntrinsic},
		{"user-defined", ClampWithUserDefinedIntClamp},
	}
	for _, tt := range tests {
		got, err := ParseClampingStrategy(tt.name)
		if err != nil {
			t.Fatalf("ParseClampingStrategy(%q) error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ParseClampingStrategy(%q) = %v, want %v", tt.name, got, tt.want)
		}
		if tt.name != "" && got.String() != tt.name {
			t.Errorf("String() = %q, want %q", got.String(), tt.name)
		}
	}
	if _, err := ParseClampingStrategy("saturate"); err == nil {
		t.Error("unknown strategy accepted")
	}
}

func TestWriteEntryDeclarations(t *testing.T) {
	tests := []struct {
		name   string
		module ir.Module
		want   string
	}{
		{
			name:   "compute local size",
			module: ir.Module{Stage: ir.StageCompute, Layout: ir.Layout{LocalSize: &[3]uint32{8, 4, 1}}},
			want:   "layout (local_size_x=8, local_size_y=4, local_size_z=1) in;\n",
		},
		{
			name:   "compute without size",
			module: ir.Module{Stage: ir.StageCompute},
			want:   "",
		},
		{
			name: "geometry full",
			module: ir.Module{Stage: ir.StageGeometry, Layout: ir.Layout{Geometry: ir.GeometryLayout{
				Input: ir.PrimitiveTriangles, Output: ir.PrimitiveTriangleStrip, Invocations: 3, MaxVertices: ptrU32(6),
			}}},
			want: "layout (triangles, invocations = 3) in;\nlayout (triangle_strip, max_vertices = 6) out;\n",
		},
		{
			name: "geometry max vertices only",
			module: ir.Module{Stage: ir.StageGeometry, Layout: ir.Layout{Geometry: ir.GeometryLayout{
				MaxVertices: ptrU32(4),
			}}},
			want: "layout (max_vertices = 4) out;\n",
		},
		{
			name:   "fragment",
			module: ir.Module{Stage: ir.StageFragment, Layout: ir.Layout{LocalSize: &[3]uint32{1, 1, 1}}},
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			WriteEntryDeclarations(&sb, &tt.module)
			if sb.String() != tt.want {
				t.Errorf("got %q, want %q", sb.String(), tt.want)
			}
		})
	}
}

func TestWriteOutputRedeclarations(t *testing.T) {
	withDefault := func(p ir.Precision) *ir.Module {
		m := fragColorModule()
		m.DefaultPrecisions = []ir.DefaultPrecision{{Precision: p, Type: 0}}
		return m
	}
	dataModule := fragColorModule()
	dataModule.GlobalVariables[0] = ir.GlobalVariable{
		Symbol: ir.Symbol{ID: 1, Name: "gl_FragData", Kind: ir.SymbolBuiltIn}, Space: ir.SpaceOutput, Type: 1, Precision: ir.PrecisionLow,
	}
	vertex := vertexModule()

	tests := []struct {
		name    string
		module  *ir.Module
		info    TranslationInfo
		enforce bool
		want    string
	}{
		{"frag color default precision", withDefault(ir.PrecisionHigh), TranslationInfo{UsesFragColor: true}, true, "out highp vec4 webgl_FragColor;\n"},
		{"frag color mediump fallback", withDefault(ir.PrecisionUndefined), TranslationInfo{UsesFragColor: true}, true, "out mediump vec4 webgl_FragColor;\n"},
		{"frag data own precision", dataModule, TranslationInfo{UsesFragData: true}, true, "out lowp vec4 webgl_FragData[gl_MaxDrawBuffers];\n"},
		{"not enforced", fragColorModule(), TranslationInfo{UsesFragColor: true}, false, ""},
		{"vertex stage", vertex, TranslationInfo{UsesFragColor: true}, true, ""},
		{"unused", fragColorModule(), TranslationInfo{}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			if err := WriteOutputRedeclarations(&sb, tt.module, tt.info, tt.enforce); err != nil {
				t.Fatalf("WriteOutputRedeclarations() error = %v", err)
			}
			if sb.String() != tt.want {
				t.Errorf("got %q, want %q", sb.String(), tt.want)
			}
		})
	}

	t.Run("both outputs", func(t *testing.T) {
		var sb strings.Builder
		err := WriteOutputRedeclarations(&sb, fragColorModule(), TranslationInfo{UsesFragColor: true, UsesFragData: true}, true)
		if !diag.IsInvariantViolation(err) {
			t.Errorf("error = %v, want invariant violation", err)
		}
	})
}

func TestWriteArrayBoundsHelper(t *testing.T) {
	var sb strings.Builder
	WriteArrayBoundsHelper(&sb, TranslationInfo{ClampedIndices: 2})
	if sb.Len() != 0 {
		t.Errorf("helper written for intrinsic clamping: %q", sb.String())
	}

	WriteArrayBoundsHelper(&sb, TranslationInfo{ClampedIndices: 1, NeedsIntClamp: true})
	want := `// BEGIN: Generated code for array bounds clamping

int webgl_int_clamp(int value, int minValue, int maxValue)
{
    return ((value < minValue) ? minValue : ((value > maxValue) ? maxValue : value));
}

// END: Generated code for array bounds clamping

`
	if sb.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", sb.String(), want)
	}
}
