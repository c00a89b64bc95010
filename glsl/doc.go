// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl generates OpenGL ES shading language source from the IR.
//
// Generate writes the translated body in a single traversal. Every symbol is
// named by a names.Resolver, every built-in call goes through the rename
// tables and the builtins.Emulator, and declarations follow the effective
// ESSL version:
//
//   - ESSL 1.00: attribute / varying storage, no layout qualifiers
//   - ESSL 3.00+: in / out with layout(location = N), flat and centroid
//   - ESSL 3.10+: layout(binding = N), shared variables and barriers
//
// # Basic Usage
//
//	body, info, err := glsl.Generate(module, glsl.Options{
//	    Version:  legalize.Version300,
//	    Resolver: names.NewResolver(module.Stage, false, nil),
//	})
//
// The header pieces that depend on the body (legacy output redeclarations,
// the array bounds helper) are written by WriteOutputRedeclarations and
// WriteArrayBoundsHelper from the returned TranslationInfo.
//
// # Expressions
//
// Expressions are written inline at their use sites, so Emit statements
// produce no text and the expression arena is expected to be a tree.
package glsl
