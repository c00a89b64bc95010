// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package builtins rewrites built-in function calls for the ESSL target.
//
// It holds the static texture function rename tables and the Emulator, which
// replaces built-ins that misbehave on some drivers with helper functions
// whose definitions are written into the shader header.
package builtins

import (
	"fmt"
	"strings"

	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
)

// PrecisionMacro is the precision qualifier macro emulation helpers use.
const PrecisionMacro = "emu_precision"

// signature identifies one overload of a built-in, e.g. "atan(vec2,vec2)".
type signature string

func makeSignature(name string, params []string) signature {
	return signature(name + "(" + strings.Join(params, ",") + ")")
}

// emulation is a registered replacement for one built-in overload.
type emulation struct {
	name string // emitted name
	body string // full definition text
	deps []signature
}

// Emulator tracks the built-in overloads that are emulated for one
// translation and which of them the shader actually calls.
type Emulator struct {
	registered map[signature]emulation
	used       map[signature]bool
	order      []signature // emission order, dependencies first
}

// NewEmulator creates an empty emulator.
func NewEmulator() *Emulator {
	return &Emulator{
		registered: make(map[signature]emulation),
		used:       make(map[signature]bool),
	}
}

// Init registers the emulations requested by the compile options.
func (e *Emulator) Init(opts legalize.CompileOptions) {
	if opts.Has(legalize.EmulateAtan2FloatFunction) {
		e.registerAtan()
	}
}

// register adds an emulation for name(params...).
func (e *Emulator) register(name string, params []string, emulated, body string, deps ...signature) signature {
	sig := makeSignature(name, params)
	e.registered[sig] = emulation{name: emulated, body: body, deps: deps}
	return sig
}

// Call returns the name a call to a built-in with the given argument types
// is emitted as. When an emulation is registered for the overload it is
// marked used and its name returned; otherwise name is returned unchanged.
func (e *Emulator) Call(name string, args ...ir.TypeInner) (string, bool) {
	params := make([]string, len(args))
	for i, a := range args {
		params[i] = typeKey(a)
	}
	sig := makeSignature(name, params)
	emu, ok := e.registered[sig]
	if !ok {
		return name, false
	}
	e.markUsed(sig)
	return emu.name, true
}

func (e *Emulator) markUsed(sig signature) {
	if e.used[sig] {
		return
	}
	e.used[sig] = true
	for _, dep := range e.registered[sig].deps {
		e.markUsed(dep)
	}
	e.order = append(e.order, sig)
}

// IsOutputEmpty reports whether no emulated function was called.
func (e *Emulator) IsOutputEmpty() bool {
	return len(e.order) == 0
}

// Used returns the signatures of the emulated functions that were called,
// in emission order.
func (e *Emulator) Used() []string {
	out := make([]string, len(e.order))
	for i, sig := range e.order {
		out[i] = string(sig)
	}
	return out
}

// HelperNames returns the emitted names of every registered emulation.
// They are reserved so no user identifier takes them.
func (e *Emulator) HelperNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, emu := range e.registered {
		if !seen[emu.name] {
			seen[emu.name] = true
			out = append(out, emu.name)
		}
	}
	return out
}

// WriteHelpers writes the definitions of the used emulated functions.
// Nothing is written when none was used. Fragment shaders may lack highp,
// so there the helper precision is chosen by the preprocessor.
func (e *Emulator) WriteHelpers(sb *strings.Builder, stage ir.ShaderStage) {
	if e.IsOutputEmpty() {
		return
	}
	sb.WriteString("// BEGIN: Generated code for built-in function emulation\n\n")
	if stage == ir.StageFragment {
		sb.WriteString("#if defined(GL_FRAGMENT_PRECISION_HIGH)\n")
		fmt.Fprintf(sb, "#define %s highp\n", PrecisionMacro)
		sb.WriteString("#else\n")
		fmt.Fprintf(sb, "#define %s mediump\n", PrecisionMacro)
		sb.WriteString("#endif\n\n")
	} else {
		fmt.Fprintf(sb, "#define %s highp\n", PrecisionMacro)
	}
	for _, sig := range e.order {
		sb.WriteString(e.registered[sig].body)
		sb.WriteString("\n")
	}
	sb.WriteString("// END: Generated code for built-in function emulation\n\n")
}

// typeKey names a float scalar or vector type the way overloads are keyed.
func typeKey(t ir.TypeInner) string {
	switch t := t.(type) {
	case ir.ScalarType:
		return scalarKey(t.Kind)
	case ir.VectorType:
		switch t.Scalar.Kind {
		case ir.ScalarSint:
			return fmt.Sprintf("ivec%d", t.Size)
		case ir.ScalarUint:
			return fmt.Sprintf("uvec%d", t.Size)
		case ir.ScalarBool:
			return fmt.Sprintf("bvec%d", t.Size)
		default:
			return fmt.Sprintf("vec%d", t.Size)
		}
	case ir.MatrixType:
		if t.Columns == t.Rows {
			return fmt.Sprintf("mat%d", t.Columns)
		}
		return fmt.Sprintf("mat%dx%d", t.Columns, t.Rows)
	default:
		return fmt.Sprintf("%T", t)
	}
}

func scalarKey(k ir.ScalarKind) string {
	switch k {
	case ir.ScalarSint:
		return "int"
	case ir.ScalarUint:
		return "uint"
	case ir.ScalarBool:
		return "bool"
	default:
		return "float"
	}
}
