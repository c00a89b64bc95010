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
	"github.com/gogpu/essl/names"
)

const pass = "glsl"

// ClampingStrategy selects how dynamic indices are clamped when
// legalize.ClampIndirectArrayBounds is set.
type ClampingStrategy uint8

const (
	// ClampWithClampIntrinsic writes int(clamp(float(i), 0.0, float(max))).
	ClampWithClampIntrinsic ClampingStrategy = iota
	// ClampWithUserDefinedIntClamp writes webgl_int_clamp(i, 0, max) and
	// defines the helper in the header.
	ClampWithUserDefinedIntClamp
)

// String returns the strategy name used in configuration files.
func (s ClampingStrategy) String() string {
	if s == ClampWithUserDefinedIntClamp {
		return "user-defined"
	}
	return "intrinsic"
}

// ParseClampingStrategy parses "intrinsic" or "user-defined".
func ParseClampingStrategy(name string) (ClampingStrategy, error) {
	switch name {
	case "", "intrinsic":
		return ClampWithClampIntrinsic, nil
	case "user-defined":
		return ClampWithUserDefinedIntClamp, nil
	default:
		return 0, fmt.Errorf("unknown clamping strategy %q", name)
	}
}

// IntClampName is the array bounds clamping helper.
const IntClampName = "webgl_int_clamp"

// Options configures ESSL body generation. Version and CompileOptions are
// the effective values chosen by legalize.Decide.
type Options struct {
	Version        legalize.Version
	CompileOptions legalize.CompileOptions

	// Resolver names every symbol. It must be created for this translation.
	Resolver *names.Resolver

	// Emulator rewrites built-in calls. Nil disables emulation.
	Emulator *builtins.Emulator

	// ForceHighPrecision writes highp for every declared precision.
	ForceHighPrecision bool

	ClampingStrategy ClampingStrategy
}

// TranslationInfo contains metadata about the generated body that the header
// depends on.
type TranslationInfo struct {
	// UsesFragColor and UsesFragData report static references to the legacy
	// fragment outputs.
	UsesFragColor bool
	UsesFragData  bool

	// ClampedIndices counts dynamic indices that were clamped.
	ClampedIndices int

	// NeedsIntClamp is set when the webgl_int_clamp helper must be defined.
	NeedsIntClamp bool
}

// Generate writes the ESSL body of a module: default precision statements,
// structs, constants, globals and functions, with the entry point last as
// main(). The header is assembled separately by the caller.
func Generate(module *ir.Module, options Options) (string, TranslationInfo, error) {
	if options.Resolver == nil {
		return "", TranslationInfo{}, diag.Invariantf(pass, "no name resolver")
	}

	w := newWriter(module, &options)
	if err := w.writeModule(); err != nil {
		return "", TranslationInfo{}, fmt.Errorf("glsl: %w", err)
	}
	return w.String(), w.info, nil
}

// WriteEntryDeclarations writes the stage-level layout declarations: the
// compute work-group size when declared, and the geometry input and output
// layouts.
func WriteEntryDeclarations(sb *strings.Builder, module *ir.Module) {
	switch module.Stage {
	case ir.StageCompute:
		if ls := module.Layout.LocalSize; ls != nil {
			fmt.Fprintf(sb, "layout (local_size_x=%d, local_size_y=%d, local_size_z=%d) in;\n", ls[0], ls[1], ls[2])
		}
	case ir.StageGeometry:
		writeGeometryLayout(sb, module.Layout.Geometry)
	}
}

func writeGeometryLayout(sb *strings.Builder, g ir.GeometryLayout) {
	if g.Input != ir.PrimitiveUndefined || g.Invocations > 1 {
		sb.WriteString("layout (")
		if g.Input != ir.PrimitiveUndefined {
			sb.WriteString(g.Input.String())
		}
		if g.Invocations > 1 {
			if g.Input != ir.PrimitiveUndefined {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "invocations = %d", g.Invocations)
		}
		sb.WriteString(") in;\n")
	}

	if g.Output != ir.PrimitiveUndefined || g.MaxVertices != nil {
		sb.WriteString("layout (")
		if g.Output != ir.PrimitiveUndefined {
			sb.WriteString(g.Output.String())
		}
		if g.MaxVertices != nil {
			if g.Output != ir.PrimitiveUndefined {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "max_vertices = %d", *g.MaxVertices)
		}
		sb.WriteString(") out;\n")
	}
}

// WriteOutputRedeclarations declares the legacy fragment outputs the body
// references as explicit outputs. It only applies to fragment shaders
// translated with legacy enforcement. A shader may use gl_FragColor or
// gl_FragData, never both.
func WriteOutputRedeclarations(sb *strings.Builder, module *ir.Module, info TranslationInfo, enforceESSL3 bool) error {
	if module.Stage != ir.StageFragment || !enforceESSL3 {
		return nil
	}
	if info.UsesFragColor && info.UsesFragData {
		return diag.Invariantf(pass, "shader writes both gl_FragColor and gl_FragData")
	}

	if info.UsesFragColor {
		fmt.Fprintf(sb, "out %s vec4 webgl_FragColor;\n", legacyOutputPrecision(module, "gl_FragColor"))
	}
	if info.UsesFragData {
		fmt.Fprintf(sb, "out %s vec4 webgl_FragData[gl_MaxDrawBuffers];\n", legacyOutputPrecision(module, "gl_FragData"))
	}
	return nil
}

// legacyOutputPrecision is the output's declared precision, else the default
// float precision, else mediump.
func legacyOutputPrecision(module *ir.Module, name string) ir.Precision {
	for _, gv := range module.GlobalVariables {
		if gv.Symbol.Kind == ir.SymbolBuiltIn && gv.Symbol.Name == name && gv.Precision != ir.PrecisionUndefined {
			return gv.Precision
		}
	}
	if p := module.DefaultFloatPrecision(); p != ir.PrecisionUndefined {
		return p
	}
	return ir.PrecisionMedium
}

// WriteArrayBoundsHelper writes the webgl_int_clamp definition when the body
// used it.
func WriteArrayBoundsHelper(sb *strings.Builder, info TranslationInfo) {
	if !info.NeedsIntClamp {
		return
	}
	sb.WriteString("// BEGIN: Generated code for array bounds clamping\n\n")
	fmt.Fprintf(sb, "int %s(int value, int minValue, int maxValue)\n{\n", IntClampName)
	sb.WriteString("    return ((value < minValue) ? minValue : ((value > maxValue) ? maxValue : value));\n}\n\n")
	sb.WriteString("// END: Generated code for array bounds clamping\n\n")
}
