// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
	"github.com/gogpu/essl/names"
)

// Writer generates ESSL source code from IR.
type Writer struct {
	module  *ir.Module
	options *Options
	names   *names.Resolver

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Struct type names, resolved once before any declaration is written.
	typeNames map[ir.TypeHandle]string

	// Function context (set during function writing)
	currentFunction *ir.Function

	info TranslationInfo
}

// newWriter creates a new ESSL writer.
func newWriter(module *ir.Module, options *Options) *Writer {
	return &Writer{
		module:    module,
		options:   options,
		names:     options.Resolver,
		typeNames: make(map[ir.TypeHandle]string),
	}
}

// String returns the generated source code.
func (w *Writer) String() string {
	return w.out.String()
}

// writeModule generates the body for the entire module.
func (w *Writer) writeModule() error {
	// 1. Bind the entry point to main so no other symbol takes the name
	if int(w.module.EntryPoint) >= len(w.module.Functions) {
		return diag.Invariantf(pass, "entry point function %d does not exist", w.module.EntryPoint)
	}
	w.names.Bind(w.module.Functions[w.module.EntryPoint].Symbol, names.EntryPointName)

	// 2. Default precision statements
	w.writeDefaultPrecisions()

	// 3. Register struct names, then write struct definitions
	if err := w.registerTypes(); err != nil {
		return err
	}
	if err := w.writeTypes(); err != nil {
		return err
	}

	// 4. Constants
	if err := w.writeConstants(); err != nil {
		return err
	}

	// 5. Global variables (uniforms, inputs, outputs)
	if err := w.writeGlobalVariables(); err != nil {
		return err
	}

	// 6. Functions, entry point last
	return w.writeFunctions()
}

// precision returns the qualifier for a declared precision followed by a
// space, or "" when the precision is undefined.
func (w *Writer) precision(p ir.Precision) string {
	if p == ir.PrecisionUndefined {
		return ""
	}
	if w.options.ForceHighPrecision {
		p = ir.PrecisionHigh
	}
	return p.String() + " "
}

// writeDefaultPrecisions writes the module's precision statements.
func (w *Writer) writeDefaultPrecisions() {
	written := false
	for _, dp := range w.module.DefaultPrecisions {
		if dp.Precision == ir.PrecisionUndefined {
			continue
		}
		w.writeLine("precision %s%s;", w.precision(dp.Precision), w.getTypeName(dp.Type))
		written = true
	}
	if written {
		w.writeLine("")
	}
}

// registerTypes resolves the names of all struct types.
func (w *Writer) registerTypes() error {
	for handle, typ := range w.module.Types {
		if _, ok := typ.Inner.(ir.StructType); !ok {
			continue
		}
		name, err := w.names.Resolve(typ.Symbol)
		if err != nil {
			return fmt.Errorf("struct type %d: %w", handle, err)
		}
		w.typeNames[ir.TypeHandle(handle)] = name //nolint:gosec // G115: handle is valid slice index
	}
	return nil
}

// writeTypes writes struct type definitions.
func (w *Writer) writeTypes() error {
	for handle, typ := range w.module.Types {
		st, ok := typ.Inner.(ir.StructType)
		if !ok {
			continue
		}

		w.writeLine("struct %s {", w.typeNames[ir.TypeHandle(handle)]) //nolint:gosec // G115: handle is valid slice index
		w.pushIndent()
		for memberIdx, member := range st.Members {
			if member.Name == "" {
				return diag.Invariantf(pass, "struct type %d member %d has no name", handle, memberIdx)
			}
			w.writeLine("%s%s;", w.precision(member.Precision), w.declaration(member.Type, w.names.Field(member.Name)))
		}
		w.popIndent()
		w.writeLine("};")
		w.writeLine("")
	}
	return nil
}

// writeConstants writes constant definitions.
func (w *Writer) writeConstants() error {
	for handle, constant := range w.module.Constants {
		name, err := w.names.Resolve(constant.Symbol)
		if err != nil {
			return fmt.Errorf("constant %d: %w", handle, err)
		}
		value, err := w.constantValue(ir.ConstantHandle(handle)) //nolint:gosec // G115: handle is valid slice index
		if err != nil {
			return err
		}
		w.writeLine("const %s%s = %s;", w.precision(constant.Precision), w.declaration(constant.Type, name), value)
	}
	if len(w.module.Constants) > 0 {
		w.writeLine("")
	}
	return nil
}

// constantValue returns the ESSL representation of a constant value.
func (w *Writer) constantValue(handle ir.ConstantHandle) (string, error) {
	if int(handle) >= len(w.module.Constants) {
		return "", diag.Invariantf(pass, "constant %d does not exist", handle)
	}
	constant := w.module.Constants[handle]
	switch v := constant.Value.(type) {
	case ir.ScalarValue:
		return scalarValue(v), nil
	case ir.CompositeValue:
		components := make([]string, 0, len(v.Components))
		for _, c := range v.Components {
			s, err := w.constantValue(c)
			if err != nil {
				return "", err
			}
			components = append(components, s)
		}
		return fmt.Sprintf("%s(%s)", w.getTypeName(constant.Type), strings.Join(components, ", ")), nil
	default:
		return "", diag.Invariantf(pass, "constant %d has unknown value %T", handle, constant.Value)
	}
}

// scalarValue returns the ESSL representation of a scalar constant.
func scalarValue(v ir.ScalarValue) string {
	switch v.Kind {
	case ir.ScalarBool:
		if v.Bits != 0 {
			return "true"
		}
		return "false"
	case ir.ScalarSint:
		return fmt.Sprintf("%d", int32(v.Bits)) //nolint:gosec // G115: bits hold an int32
	case ir.ScalarUint:
		return fmt.Sprintf("%du", uint32(v.Bits)) //nolint:gosec // G115: bits hold a uint32
	default:
		return formatFloat(math.Float32frombits(uint32(v.Bits))) //nolint:gosec // G115: bits hold a float32
	}
}

// writeGlobalVariables writes uniform, input, output and private declarations.
func (w *Writer) writeGlobalVariables() error {
	written := false
	for handle := range w.module.GlobalVariables {
		ok, err := w.writeGlobalVariable(&w.module.GlobalVariables[handle])
		if err != nil {
			return fmt.Errorf("global variable %d: %w", handle, err)
		}
		written = written || ok
	}
	if written {
		w.writeLine("")
	}
	return nil
}

// writeGlobalVariable writes one global declaration and reports whether a
// line was written. Built-in variables are never declared, but outputs may
// be redeclared invariant.
func (w *Writer) writeGlobalVariable(gv *ir.GlobalVariable) (bool, error) {
	if gv.Symbol.Kind == ir.SymbolBuiltIn {
		if gv.Space == ir.SpaceOutput && w.invariantOutput(gv) {
			w.writeLine("invariant %s;", gv.Symbol.Name)
			return true, nil
		}
		return false, nil
	}

	if s, ok := w.innerType(gv.Type).(ir.SamplerType); ok && s.Class == ir.ImageClassExternal && gv.Binding != nil {
		return false, diag.Unimplementedf(pass, "explicit binding on external sampler %q", gv.Symbol.Name)
	}

	name, err := w.names.Resolve(gv.Symbol)
	if err != nil {
		return false, err
	}

	var qualifiers strings.Builder
	if layout := w.layoutQualifier(gv); layout != "" {
		qualifiers.WriteString(layout)
		qualifiers.WriteByte(' ')
	}
	if gv.Space == ir.SpaceOutput && w.invariantOutput(gv) {
		qualifiers.WriteString("invariant ")
	}
	if interp := w.interpolationQualifier(gv); interp != "" {
		qualifiers.WriteString(interp)
		qualifiers.WriteByte(' ')
	}
	if storage := w.storageQualifier(gv.Space); storage != "" {
		qualifiers.WriteString(storage)
		qualifiers.WriteByte(' ')
	}
	qualifiers.WriteString(w.precision(gv.Precision))

	decl := w.declaration(gv.Type, name)
	if gv.Init != nil {
		value, err := w.constantValue(*gv.Init)
		if err != nil {
			return false, err
		}
		w.writeLine("%s%s = %s;", qualifiers.String(), decl, value)
		return true, nil
	}
	w.writeLine("%s%s;", qualifiers.String(), decl)
	return true, nil
}

// invariantOutput reports whether a stage output is qualified invariant,
// either explicitly or through a flattened invariant(all) pragma.
func (w *Writer) invariantOutput(gv *ir.GlobalVariable) bool {
	if gv.Invariant {
		return true
	}
	return w.module.Stage == ir.StageVertex &&
		w.module.Pragma.STDGLInvariantAll &&
		w.options.CompileOptions.Has(legalize.FlattenPragmaSTDGLInvariantAll)
}

// layoutQualifier returns the layout(...) qualifier of a global, if the
// effective version allows one.
func (w *Writer) layoutQualifier(gv *ir.GlobalVariable) string {
	var parts []string
	if gv.Location != nil && !w.options.Version.LessThan(300) &&
		(gv.Space == ir.SpaceInput || gv.Space == ir.SpaceOutput) {
		parts = append(parts, fmt.Sprintf("location = %d", *gv.Location))
	}
	if gv.Binding != nil && !w.options.Version.LessThan(310) {
		parts = append(parts, fmt.Sprintf("binding = %d", *gv.Binding))
	}
	if len(parts) == 0 {
		return ""
	}
	return "layout(" + strings.Join(parts, ", ") + ")"
}

// interpolationQualifier returns flat, smooth or centroid on ESSL 3.00 stage I/O.
func (w *Writer) interpolationQualifier(gv *ir.GlobalVariable) string {
	if w.options.Version.LessThan(300) || (gv.Space != ir.SpaceInput && gv.Space != ir.SpaceOutput) {
		return ""
	}
	switch gv.Interpolation {
	case ir.InterpolationFlat:
		return "flat"
	case ir.InterpolationSmooth:
		return "smooth"
	case ir.InterpolationCentroid:
		return "centroid"
	default:
		return ""
	}
}

// storageQualifier returns the storage qualifier of an address space for the
// effective version.
func (w *Writer) storageQualifier(space ir.AddressSpace) string {
	legacy := w.options.Version.LessThan(300)
	switch space {
	case ir.SpaceUniform:
		return "uniform"
	case ir.SpaceInput:
		switch {
		case !legacy:
			return "in"
		case w.module.Stage == ir.StageVertex:
			return "attribute"
		default:
			return "varying"
		}
	case ir.SpaceOutput:
		if legacy {
			return "varying"
		}
		return "out"
	case ir.SpaceWorkGroup:
		return "shared"
	default:
		return ""
	}
}

// writeFunctions writes function definitions. The entry point is written
// last, as void main().
func (w *Writer) writeFunctions() error {
	for handle := range w.module.Functions {
		if ir.FunctionHandle(handle) == w.module.EntryPoint { //nolint:gosec // G115: handle is valid slice index
			continue
		}
		if err := w.writeFunction(&w.module.Functions[handle], false); err != nil {
			return fmt.Errorf("function %d: %w", handle, err)
		}
	}
	if err := w.writeFunction(&w.module.Functions[w.module.EntryPoint], true); err != nil {
		return fmt.Errorf("entry point: %w", err)
	}
	return nil
}

// writeFunction writes a single function definition.
func (w *Writer) writeFunction(fn *ir.Function, entry bool) error {
	w.currentFunction = fn
	defer func() { w.currentFunction = nil }()

	name, err := w.names.Resolve(fn.Symbol)
	if err != nil {
		return err
	}

	returnType := "void"
	if fn.Result != nil && !entry {
		returnType = w.precision(fn.Result.Precision) + w.getTypeName(fn.Result.Type)
	}

	args := make([]string, 0, len(fn.Arguments))
	if !entry {
		for argIdx, arg := range fn.Arguments {
			argName, err := w.names.Resolve(arg.Symbol)
			if err != nil {
				return fmt.Errorf("argument %d: %w", argIdx, err)
			}
			args = append(args, parameterQualifier(arg.Qualifier)+w.precision(arg.Precision)+w.declaration(arg.Type, argName))
		}
	}

	w.writeLine("%s %s(%s) {", returnType, name, strings.Join(args, ", "))
	w.pushIndent()

	if err := w.writeLocalVars(fn); err != nil {
		return err
	}
	if err := w.writeBlock(fn.Body); err != nil {
		return err
	}

	w.popIndent()
	w.writeLine("}")
	if !entry {
		w.writeLine("")
	}
	return nil
}

func parameterQualifier(q ir.ParameterQualifier) string {
	switch q {
	case ir.ParameterOut:
		return "out "
	case ir.ParameterInOut:
		return "inout "
	case ir.ParameterConst:
		return "const "
	default:
		return ""
	}
}

// writeLocalVars writes local variable declarations, including initializers if present.
// Const locals come first since other initializers may read them.
func (w *Writer) writeLocalVars(fn *ir.Function) error {
	for _, consts := range []bool{true, false} {
		for localIdx, local := range fn.LocalVars {
			if local.Const != consts {
				continue
			}
			if err := w.writeLocalVar(localIdx, local); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) writeLocalVar(localIdx int, local ir.LocalVariable) error {
	name, err := w.names.Resolve(local.Symbol)
	if err != nil {
		return fmt.Errorf("local %d: %w", localIdx, err)
	}

	prefix := w.precision(local.Precision)
	if local.Const {
		prefix = "const " + prefix
	}
	decl := w.declaration(local.Type, name)

	if local.Init == nil {
		w.writeLine("%s%s;", prefix, decl)
		return nil
	}
	initStr, err := w.writeExpression(*local.Init)
	if err != nil {
		return err
	}
	w.writeLine("%s%s = %s;", prefix, decl, initStr)
	return nil
}

// Output helpers

// writeLine writes a line with indentation and newline.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// formatFloat formats a float32 for ESSL output. ESSL has no tokens for
// infinities or NaN, so those are written as divisions by zero.
func formatFloat(f float32) string {
	switch x := float64(f); {
	case math.IsNaN(x):
		return "(0.0 / 0.0)"
	case math.IsInf(x, 1):
		return "(1.0 / 0.0)"
	case math.IsInf(x, -1):
		return "(-1.0 / 0.0)"
	}
	s := fmt.Sprintf("%g", f)
	// Ensure it has a decimal point or exponent
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
