// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtins

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
)

// =============================================================================
// Rename tables
// =============================================================================

func TestTranslateCallName_LegacyToCore(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"texture2D", "texture"},
		{"texture2DProj", "textureProj"},
		{"texture2DLod", "textureLod"},
		{"texture2DProjLod", "textureProjLod"},
		{"texture2DRect", "texture"},
		{"textureCube", "texture"},
		{"textureCubeLod", "textureLod"},
		{"texture2DLodEXT", "textureLod"},
		{"texture2DProjLodEXT", "textureProjLod"},
		{"textureCubeLodEXT", "textureLod"},
		{"texture2DGradEXT", "textureGrad"},
		{"texture2DProjGradEXT", "textureProjGrad"},
		{"textureCubeGradEXT", "textureGrad"},
		{"texture", "texture"},
		{"myFunction", "myFunction"},
	}
	for _, tt := range tests {
		if got := TranslateCallName(tt.in, true); got != tt.want {
			t.Errorf("TranslateCallName(%q, true) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslateCallName_Simple(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"texture2DLodEXT", "texture2DLod"},
		{"texture2DProjLodEXT", "texture2DProjLod"},
		{"textureCubeLodEXT", "textureCubeLod"},
		{"texture2DGradEXT", "texture2DGradARB"},
		{"texture2DProjGradEXT", "texture2DProjGradARB"},
		{"textureCubeGradEXT", "textureCubeGradARB"},
		{"texture2D", "texture2D"},
		{"textureCube", "textureCube"},
	}
	for _, tt := range tests {
		if got := TranslateCallName(tt.in, false); got != tt.want {
			t.Errorf("TranslateCallName(%q, false) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTranslateCallName_Deterministic(t *testing.T) {
	for _, r := range legacyToCoreRenames {
		name := r.from
		first := TranslateCallName(name, true)
		if second := TranslateCallName(name, true); first != second {
			t.Errorf("TranslateCallName(%q) = %q then %q", name, first, second)
		}
		if first == name {
			t.Errorf("TranslateCallName(%q) did not rewrite a table entry", name)
		}
	}
}

// =============================================================================
// Emulator
// =============================================================================

var (
	float = ir.ScalarType{Kind: ir.ScalarFloat}
	vec3  = ir.VectorType{Size: ir.Vec3, Scalar: ir.ScalarType{Kind: ir.ScalarFloat}}
)

func TestEmulator_NotRegistered(t *testing.T) {
	e := NewEmulator()
	e.Init(0)
	name, emulated := e.Call("atan", float, float)
	if emulated || name != "atan" {
		t.Errorf("Call() = %q, %v; want atan, false", name, emulated)
	}
	if !e.IsOutputEmpty() {
		t.Error("output not empty without emulation")
	}

	var sb strings.Builder
	e.WriteHelpers(&sb, ir.StageFragment)
	if sb.Len() != 0 {
		t.Errorf("WriteHelpers wrote %q with nothing used", sb.String())
	}
}

func TestEmulator_Atan(t *testing.T) {
	e := NewEmulator()
	e.Init(legalize.EmulateAtan2FloatFunction)

	if name, _ := e.Call("atan", float); name != "atan" {
		t.Errorf("one-argument atan rewritten to %q", name)
	}
	name, emulated := e.Call("atan", vec3, vec3)
	if !emulated || name != AtanEmulatedName {
		t.Fatalf("Call() = %q, %v; want %s, true", name, emulated, AtanEmulatedName)
	}

	// The vec3 overload depends on the float overload, which comes first.
	want := []string{"atan(float,float)", "atan(vec3,vec3)"}
	if diff := cmp.Diff(want, e.Used()); diff != "" {
		t.Errorf("Used() mismatch (-want +got):\n%s", diff)
	}
}

func TestEmulator_WriteHelpers(t *testing.T) {
	tests := []struct {
		name    string
		stage   ir.ShaderStage
		prelude string
	}{
		{
			name:  "fragment",
			stage: ir.StageFragment,
			prelude: "#if defined(GL_FRAGMENT_PRECISION_HIGH)\n" +
				"#define emu_precision highp\n" +
				"#else\n" +
				"#define emu_precision mediump\n" +
				"#endif\n\n",
		},
		{
			name:    "vertex",
			stage:   ir.StageVertex,
			prelude: "#define emu_precision highp\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEmulator()
			e.Init(legalize.EmulateAtan2FloatFunction)
			e.Call("atan", float, float)

			var sb strings.Builder
			e.WriteHelpers(&sb, tt.stage)
			got := sb.String()

			begin := "// BEGIN: Generated code for built-in function emulation\n\n"
			if !strings.HasPrefix(got, begin+tt.prelude) {
				t.Errorf("missing prelude:\n%s", got)
			}
			if !strings.HasSuffix(got, "// END: Generated code for built-in function emulation\n\n") {
				t.Errorf("missing end marker:\n%s", got)
			}
			if !strings.Contains(got, "emu_precision float atan_emu(emu_precision float y, emu_precision float x)") {
				t.Errorf("missing atan_emu definition:\n%s", got)
			}
			if strings.Contains(got, "vec2 atan_emu") {
				t.Error("unused overload emitted")
			}
		})
	}
}

func TestAtanVectorBody(t *testing.T) {
	want := "emu_precision vec2 atan_emu(emu_precision vec2 y, emu_precision vec2 x)\n" +
		"{\n    return vec2(atan_emu(y[0], x[0]), atan_emu(y[1], x[1]));\n}\n"
	if got := atanVectorBody(2); got != want {
		t.Errorf("atanVectorBody(2) =\n%s\nwant\n%s", got, want)
	}
}

func TestEmulatorsAreIndependent(t *testing.T) {
	a := NewEmulator()
	a.Init(legalize.EmulateAtan2FloatFunction)
	b := NewEmulator()
	b.Init(legalize.EmulateAtan2FloatFunction)

	a.Call("atan", float, float)
	if !b.IsOutputEmpty() {
		t.Error("usage leaked between emulators")
	}
}
