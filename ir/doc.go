// Package ir defines the intermediate representation consumed by the ESSL translator.
//
// The IR is produced by a front-end that has already parsed and type-checked
// the shader. It is organized around a Module that contains:
//   - Types: All type definitions used in the shader
//   - Constants: Module-scope constant values
//   - GlobalVariables: Module-scope variables (uniforms, stage I/O, built-ins)
//   - Functions: All function definitions, one of which is the entry point
//
// Every named entity carries a Symbol. The symbol ID, not the display name,
// is the identity the translator uses when choosing output identifiers, so two
// symbols that share a name stay distinct.
//
// # Translation Pipeline
//
//	front-end → IR → precision passes → ESSL text
//
// Everything in a Module is assumed semantically valid. Validate only checks
// handle integrity so that a malformed module fails before any text is emitted.
package ir
