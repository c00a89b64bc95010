// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package precision

import (
	"fmt"
	"strings"
)

// Dialect selects the output language of the helper definitions.
type Dialect uint8

const (
	// DialectESSL writes helpers for OpenGL ES shading language output.
	DialectESSL Dialect = iota
	// DialectGLSL writes helpers for desktop GLSL output.
	DialectGLSL
)

// HelperNames returns the names of the rounding helpers, which must never be
// taken by user identifiers.
func HelperNames() []string {
	return []string{RoundMedium.HelperName(), RoundLow.HelperName()}
}

// WriteHelpers writes the rounding helpers for every float type, followed by
// the compound assignment helpers the report lists. Non-square matrices are
// only written where the language version has them.
func WriteHelpers(sb *strings.Builder, version int, dialect Dialect, report *Report) {
	if dialect == DialectESSL {
		sb.WriteString("#ifdef GL_FRAGMENT_PRECISION_HIGH\n")
		sb.WriteString("#define emu_precision highp\n")
		sb.WriteString("#else\n")
		sb.WriteString("#define emu_precision mediump\n")
		sb.WriteString("#endif\n\n")
	} else {
		sb.WriteString("#define emu_precision highp\n\n")
	}

	writeScalarHelpers(sb)
	for n := 2; n <= 4; n++ {
		writeVectorHelpers(sb, n)
	}

	nonSquare := version >= 300
	if dialect == DialectGLSL {
		nonSquare = version >= 120
	}
	for c := 2; c <= 4; c++ {
		for r := 2; r <= 4; r++ {
			if c != r && !nonSquare {
				continue
			}
			writeMatrixHelpers(sb, c, r)
		}
	}

	if report != nil {
		for _, op := range report.Compound {
			writeCompoundHelper(sb, op)
		}
	}
}

func writeScalarHelpers(sb *strings.Builder) {
	sb.WriteString(`emu_precision float webgl_frm(in emu_precision float x) {
    x = clamp(x, -65504.0, 65504.0);
    emu_precision float exponent = floor(log2(abs(x) + 1e-30)) - 10.0;
    bool isNonZero = (exponent >= -25.0);
    x = x * exp2(-exponent);
    x = sign(x) * floor(abs(x));
    return x * exp2(exponent) * float(isNonZero);
}

emu_precision float webgl_frl(in emu_precision float x) {
    x = clamp(x, -2.0, 2.0);
    x = x * 256.0;
    x = sign(x) * floor(abs(x));
    return x * 0.00390625;
}

`)
}

func writeVectorHelpers(sb *strings.Builder, n int) {
	vec := fmt.Sprintf("vec%d", n)
	fmt.Fprintf(sb, "emu_precision %s webgl_frm(in emu_precision %s v) {\n", vec, vec)
	sb.WriteString("    v = clamp(v, -65504.0, 65504.0);\n")
	fmt.Fprintf(sb, "    emu_precision %s exponent = floor(log2(abs(v) + 1e-30)) - 10.0;\n", vec)
	fmt.Fprintf(sb, "    bvec%d isNonZero = greaterThanEqual(exponent, %s(-25.0));\n", n, vec)
	sb.WriteString("    v = v * exp2(-exponent);\n")
	sb.WriteString("    v = sign(v) * floor(abs(v));\n")
	fmt.Fprintf(sb, "    return v * exp2(exponent) * %s(isNonZero);\n}\n\n", vec)

	fmt.Fprintf(sb, "emu_precision %s webgl_frl(in emu_precision %s v) {\n", vec, vec)
	sb.WriteString("    v = clamp(v, -2.0, 2.0);\n")
	sb.WriteString("    v = v * 256.0;\n")
	sb.WriteString("    v = sign(v) * floor(abs(v));\n")
	sb.WriteString("    return v * 0.00390625;\n}\n\n")
}

func writeMatrixHelpers(sb *strings.Builder, columns, rows int) {
	mat := fmt.Sprintf("mat%d", columns)
	if columns != rows {
		mat = fmt.Sprintf("mat%dx%d", columns, rows)
	}
	for _, r := range []Rounding{RoundMedium, RoundLow} {
		fmt.Fprintf(sb, "emu_precision %s %s(in emu_precision %s m) {\n", mat, r.HelperName(), mat)
		fmt.Fprintf(sb, "    emu_precision %s rounded;\n", mat)
		for c := 0; c < columns; c++ {
			fmt.Fprintf(sb, "    rounded[%d] = %s(m[%d]);\n", c, r.HelperName(), c)
		}
		sb.WriteString("    return rounded;\n}\n\n")
	}
}

var compoundOperators = map[string]string{
	"add": "+",
	"sub": "-",
	"mul": "*",
	"div": "/",
}

func writeCompoundHelper(sb *strings.Builder, op CompoundOp) {
	fmt.Fprintf(sb, "emu_precision %s %s(inout emu_precision %s x, in emu_precision %s y) {\n",
		op.LHS, op.HelperName(), op.LHS, op.RHS)
	fmt.Fprintf(sb, "    x = %s(%s(x) %s y);\n", op.Rounding.HelperName(), op.Rounding.HelperName(),
		compoundOperators[compoundOpName(op.Op)])
	sb.WriteString("    return x;\n}\n\n")
}
