// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package legalize

import (
	"fmt"
	"math/bits"
	"strings"
)

// CompileOptions is an immutable set of translation toggles.
// Each flag affects exactly one decision point.
type CompileOptions uint32

const (
	// EnforceOutputToESSL3 upgrades legacy shaders to ESSL 3.00 output and
	// renames legacy built-ins and texture functions.
	EnforceOutputToESSL3 CompileOptions = 1 << iota

	// EmulateAtan2FloatFunction replaces atan(y, x) with an emulated helper.
	EmulateAtan2FloatFunction

	// InitializeBuiltinsForInstancedMultiview emulates multiview with instancing.
	InitializeBuiltinsForInstancedMultiview

	// SelectViewInNVGLSLVertexShader selects the view in the vertex stage
	// through GL_NV_viewport_array2.
	SelectViewInNVGLSLVertexShader

	// EnablePrecisionEmulationDebug requests precision emulation without the
	// webgl_debug_shader_precision pragma.
	EnablePrecisionEmulationDebug

	// ClampIndirectArrayBounds clamps dynamic indices into fixed-size arrays,
	// vectors and matrices.
	ClampIndirectArrayBounds

	// FlattenPragmaSTDGLInvariantAll drops #pragma STDGL invariant(all) and
	// qualifies vertex outputs as invariant instead.
	FlattenPragmaSTDGLInvariantAll
)

var optionNames = []struct {
	flag CompileOptions
	name string
}{
	{EnforceOutputToESSL3, "enforce_output_to_essl3"},
	{EmulateAtan2FloatFunction, "emulate_atan2_float_function"},
	{InitializeBuiltinsForInstancedMultiview, "initialize_builtins_for_instanced_multiview"},
	{SelectViewInNVGLSLVertexShader, "select_view_in_nv_glsl_vertex_shader"},
	{EnablePrecisionEmulationDebug, "enable_precision_emulation_debug"},
	{ClampIndirectArrayBounds, "clamp_indirect_array_bounds"},
	{FlattenPragmaSTDGLInvariantAll, "flatten_pragma_stdgl_invariant_all"},
}

// Has reports whether every flag in f is set.
func (o CompileOptions) Has(f CompileOptions) bool {
	return o&f == f
}

// With returns the options with f set.
func (o CompileOptions) With(f CompileOptions) CompileOptions {
	return o | f
}

// Without returns the options with f cleared.
func (o CompileOptions) Without(f CompileOptions) CompileOptions {
	return o &^ f
}

// MultiviewEmulated reports whether either multiview emulation path is requested.
func (o CompileOptions) MultiviewEmulated() bool {
	return o&(InitializeBuiltinsForInstancedMultiview|SelectViewInNVGLSLVertexShader) != 0
}

// String lists the set flags by name, joined with '|'.
func (o CompileOptions) String() string {
	if o == 0 {
		return "none"
	}
	parts := make([]string, 0, bits.OnesCount32(uint32(o)))
	rest := o
	for _, n := range optionNames {
		if o.Has(n.flag) {
			parts = append(parts, n.name)
			rest = rest.Without(n.flag)
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseCompileOption returns the flag with the given snake_case name.
func ParseCompileOption(name string) (CompileOptions, error) {
	for _, n := range optionNames {
		if n.name == name {
			return n.flag, nil
		}
	}
	return 0, fmt.Errorf("unknown compile option %q", name)
}
