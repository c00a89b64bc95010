// Package essl translates validated shader IR into OpenGL ES shading language
// source for a chosen ESSL version.
//
// Translation runs a fixed pipeline over one module:
//  1. Validate the IR handles and control flow
//  2. Decide the effective version (legacy shaders may be raised to 3.00)
//  3. Round float results to their declared precision, when requested
//  4. Keep highp literals highp where their consumer would lower them
//  5. Generate the body
//  6. Assemble the header in front of it
//
// Example usage:
//
//	result, err := essl.Translate(module, essl.Options{
//	    Version:        legalize.Version100,
//	    CompileOptions: legalize.EnforceOutputToESSL3,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(result.Source)
//
// Every table a translation mutates is created inside the call, so
// independent translations may run concurrently.
package essl

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gogpu/essl/builtins"
	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/glsl"
	"github.com/gogpu/essl/ir"
	"github.com/gogpu/essl/legalize"
	"github.com/gogpu/essl/names"
	"github.com/gogpu/essl/precision"
)

const pass = "essl"

// Options configures a translation.
type Options struct {
	// Version is the requested output version. Zero means ESSL 1.00.
	Version legalize.Version

	// CompileOptions toggles legalization and instrumentation.
	CompileOptions legalize.CompileOptions

	// Extensions holds the behavior the shader requested per extension.
	Extensions legalize.Table

	// Resources describes host capabilities.
	Resources legalize.Resources

	// HashFunction, when set, replaces user identifiers by webgl_<hash>.
	HashFunction names.HashFunc

	// ForceHighPrecision writes highp for every declared precision.
	ForceHighPrecision bool

	// ClampingStrategy selects the form of dynamic index clamping.
	ClampingStrategy glsl.ClampingStrategy

	// Logger receives debug records of the pipeline decisions.
	// Nil discards them.
	Logger *slog.Logger
}

// Result describes a successful translation.
type Result struct {
	// Source is the complete ESSL text.
	Source string

	// Version is the effective output version.
	Version legalize.Version

	// PrecisionEmulated reports whether precision emulation ran.
	PrecisionEmulated bool

	// EnforcedESSL3 reports whether legacy rewriting was active.
	EnforcedESSL3 bool

	// NameMap maps renamed user identifiers to their output names.
	NameMap map[string]string

	// EmulatedFunctions lists the emulated built-in overloads the shader calls.
	EmulatedFunctions []string

	// ArrayBoundsClamped counts the dynamic indices that were clamped.
	ArrayBoundsClamped int
}

// Translate translates a module and returns the result.
func Translate(module *ir.Module, opts Options) (Result, error) {
	res, err := translate(module, opts)
	if err != nil {
		return Result{}, fmt.Errorf("essl: %w", err)
	}
	return res, nil
}

// TranslateTo translates a module and writes the source to sink. Nothing is
// written when translation fails.
func TranslateTo(sink io.Writer, module *ir.Module, opts Options) (Result, error) {
	res, err := Translate(module, opts)
	if err != nil {
		return Result{}, err
	}
	if _, err := io.WriteString(sink, res.Source); err != nil {
		return Result{}, fmt.Errorf("essl: write output: %w", err)
	}
	return res, nil
}

// Compile translates a module and returns the source alongside the result.
func Compile(module *ir.Module, opts Options) (string, Result, error) {
	res, err := Translate(module, opts)
	if err != nil {
		return "", Result{}, err
	}
	return res.Source, res, nil
}

func translate(module *ir.Module, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if module == nil {
		return Result{}, diag.Invariantf(pass, "no module")
	}
	validationErrors, err := ir.Validate(module)
	if err != nil {
		return Result{}, diag.Invariantf(pass, "validation: %v", err)
	}
	if len(validationErrors) > 0 {
		return Result{}, diag.Invariantf(pass, "invalid module: %s (%d errors)", validationErrors[0].Error(), len(validationErrors))
	}

	requested := opts.Version
	if requested.IsZero() {
		requested = legalize.Version100
	}
	decision := legalize.Decide(requested, opts.CompileOptions, opts.Extensions)
	enforce := decision.EnforcedESSL3()
	switch {
	case decision.Upgraded:
		logger.Debug("output version raised", "requested", requested.Number(), "effective", decision.Version.Number())
	case opts.CompileOptions.Has(legalize.EnforceOutputToESSL3) && !enforce:
		logger.Debug("legacy rewriting cleared", "version", decision.Version.Number())
	}

	work := module
	emulatePrecision := opts.Resources.WEBGLDebugShaderPrecision &&
		(module.Pragma.DebugShaderPrecision || decision.Options.Has(legalize.EnablePrecisionEmulationDebug))
	var report *precision.Report
	if emulatePrecision {
		work, report, err = precision.Emulate(work)
		if err != nil {
			return Result{}, err
		}
		logger.Debug("precision emulation", "rounded", report.Rounded, "compound", len(report.Compound))
	}

	work, err = precision.RecordConstantPrecision(work)
	if err != nil {
		return Result{}, err
	}

	emulator := builtins.NewEmulator()
	emulator.Init(decision.Options)

	var mapper names.Mapper
	if opts.HashFunction != nil {
		mapper = names.HashMapper{Hash: opts.HashFunction}
	}
	resolver := names.NewResolver(work.Stage, enforce, mapper)
	resolver.Reserve(precision.HelperNames()...)
	resolver.Reserve(emulator.HelperNames()...)
	resolver.Reserve(glsl.IntClampName, builtins.PrecisionMacro)

	body, info, err := glsl.Generate(work, glsl.Options{
		Version:            decision.Version,
		CompileOptions:     decision.Options,
		Resolver:           resolver,
		Emulator:           emulator,
		ForceHighPrecision: opts.ForceHighPrecision || emulatePrecision,
		ClampingStrategy:   opts.ClampingStrategy,
	})
	if err != nil {
		return Result{}, err
	}

	source, err := assemble(work, decision, opts, report, emulator, info, body)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("translated",
		"stage", work.Stage.String(),
		"version", decision.Version.Number(),
		"enforced", enforce,
		"emulated", len(emulator.Used()),
		"clamped", info.ClampedIndices)

	return Result{
		Source:             source,
		Version:            decision.Version,
		PrecisionEmulated:  emulatePrecision,
		EnforcedESSL3:      enforce,
		NameMap:            resolver.NameMap(),
		EmulatedFunctions:  emulator.Used(),
		ArrayBoundsClamped: info.ClampedIndices,
	}, nil
}

// assemble writes the header in front of the body: version, extensions,
// pragmas, precision helpers, built-in emulation helpers, the array bounds
// helper, entry declarations and legacy output redeclarations.
func assemble(
	module *ir.Module,
	decision legalize.Decision,
	opts Options,
	report *precision.Report,
	emulator *builtins.Emulator,
	info glsl.TranslationInfo,
	body string,
) (string, error) {
	var sb strings.Builder

	legalize.WriteVersion(&sb, decision.Version)
	legalize.WriteExtensionBehavior(&sb, legalize.ExtensionContext{
		Stage:      module.Stage,
		Options:    decision.Options,
		Extensions: opts.Extensions,
		Resources:  opts.Resources,
		NumViews:   module.Layout.NumViews,
	})
	legalize.WritePragma(&sb, module.Pragma, decision.Options)

	if report != nil {
		precision.WriteHelpers(&sb, decision.Version.Number(), precision.DialectESSL, report)
	}
	emulator.WriteHelpers(&sb, module.Stage)
	glsl.WriteArrayBoundsHelper(&sb, info)
	glsl.WriteEntryDeclarations(&sb, module)
	if err := glsl.WriteOutputRedeclarations(&sb, module, info, decision.EnforcedESSL3()); err != nil {
		return "", err
	}

	sb.WriteString(body)
	return sb.String(), nil
}
