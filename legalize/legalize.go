// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package legalize decides the output ESSL version and writes the header
// directives (version, extensions, pragmas) a translated shader starts with.
package legalize

import (
	"fmt"
	"strings"

	"github.com/gogpu/essl/ir"
)

// Decision is the effective output version and options of one translation.
type Decision struct {
	Version Version
	Options CompileOptions

	// Upgraded is set when the version was raised to 300.
	Upgraded bool
}

// EnforcedESSL3 reports whether legacy rewriting is active.
func (d Decision) EnforcedESSL3() bool {
	return d.Options.Has(EnforceOutputToESSL3)
}

// Decide computes the effective output version.
//
// Shaders at 300 or later never need legacy rewriting, so enforcement is
// cleared. Older shaders are raised to 300 with enforcement on when
// enforcement was requested or a multiview extension is in use, because both
// the legacy rewriting and the num_views layout qualifier need the 3.00 grammar.
func Decide(requested Version, opts CompileOptions, table Table) Decision {
	d := Decision{Version: requested, Options: opts}
	switch {
	case !requested.LessThan(300):
		d.Options = d.Options.Without(EnforceOutputToESSL3)
	case opts.Has(EnforceOutputToESSL3) || table.MultiviewRequested():
		d.Version = Version300
		d.Options = d.Options.With(EnforceOutputToESSL3)
		d.Upgraded = true
	}
	return d
}

// WriteVersion writes the #version directive. ESSL 1.00 has none.
func WriteVersion(sb *strings.Builder, v Version) {
	if v.Number() > 100 {
		fmt.Fprintf(sb, "#version %s\n", v)
	}
}

// ExtensionContext is the state WriteExtensionBehavior consults.
type ExtensionContext struct {
	Stage      ir.ShaderStage
	Options    CompileOptions // effective options, see Decide
	Extensions Table
	Resources  Resources

	// NumViews is the declared num_views; 0 means undeclared.
	NumViews int
}

// WriteExtensionBehavior writes one directive per extension with a defined
// behavior, in table order. Special cases are checked in a fixed order:
// framebuffer fetch substitution, draw buffers substitution, multiview,
// geometry shader, then the plain directive.
func WriteExtensionBehavior(sb *strings.Builder, ctx ExtensionContext) {
	multiviewWritten := false
	ctx.Extensions.Each(func(ext Extension, b Behavior) {
		switch {
		case ext == EXTShaderFramebufferFetch && ctx.Resources.NVShaderFramebufferFetch:
			fmt.Fprintf(sb, "#extension GL_NV_shader_framebuffer_fetch : %s\n", b)
		case ext == EXTDrawBuffers && ctx.Resources.NVDrawBuffers:
			fmt.Fprintf(sb, "#extension GL_NV_draw_buffers : %s\n", b)
		case ext.IsMultiview():
			if !multiviewWritten {
				writeMultiview(sb, ctx, b)
				multiviewWritten = true
			}
		case ext == EXTGeometryShader:
			writeGeometryShader(sb, b)
		default:
			fmt.Fprintf(sb, "#extension %s : %s\n", ext, b)
		}
	})
}

// writeMultiview writes the multiview directive. Only the vertex stage
// declares anything.
func writeMultiview(sb *strings.Builder, ctx ExtensionContext, b Behavior) {
	if ctx.Stage != ir.StageVertex {
		return
	}
	if ctx.Options.MultiviewEmulated() && ctx.Options.Has(SelectViewInNVGLSLVertexShader) {
		sb.WriteString("#extension GL_NV_viewport_array2 : require\n")
		return
	}

	fmt.Fprintf(sb, "#extension GL_OVR_multiview2 : %s\n", b)

	// An undeclared num_views behaves as 1. WebGL 1.0 has no way to declare
	// it, so enforced output always asks for two views.
	numViews := ctx.NumViews
	if numViews == 0 {
		numViews = 1
	}
	if ctx.Options.Has(EnforceOutputToESSL3) {
		numViews = 2
	}
	if numViews >= 2 {
		fmt.Fprintf(sb, "layout(num_views=%d) in;\n", numViews)
	}
}

func writeGeometryShader(sb *strings.Builder, b Behavior) {
	sb.WriteString("#ifdef GL_EXT_geometry_shader\n")
	fmt.Fprintf(sb, "#extension GL_EXT_geometry_shader : %s\n", b)
	sb.WriteString("#elif defined GL_OES_geometry_shader\n")
	fmt.Fprintf(sb, "#extension GL_OES_geometry_shader : %s\n", b)
	if b == BehaviorRequire {
		sb.WriteString("#else\n")
		sb.WriteString("#error \"No geometry shader extensions available.\" // Only generate this if the extension is \"required\"\n")
	}
	sb.WriteString("#endif\n")
}

// WritePragma writes the pragmas that survive translation. A flattened
// invariant(all) pragma is expressed by qualifying outputs instead.
func WritePragma(sb *strings.Builder, pragma ir.Pragma, opts CompileOptions) {
	if pragma.STDGLInvariantAll && !opts.Has(FlattenPragmaSTDGLInvariantAll) {
		sb.WriteString("#pragma STDGL invariant(all)\n")
	}
}
