// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package names chooses the output identifier of every IR symbol.
//
// A Resolver lives for one translation. It maps symbol IDs to identifiers
// injectively (two symbols never share an output name) and idempotently (a
// symbol always resolves to the same name), substitutes the legacy built-in
// names that ESSL 3.00 output cannot use, and delegates everything else to a
// Mapper: identity with keyword escaping, or a deterministic hash.
package names

import (
	"fmt"
	"hash/fnv"
	"maps"

	"github.com/gogpu/essl/diag"
	"github.com/gogpu/essl/ir"
)

const pass = "names"

// HashedPrefix starts every hashed identifier.
const HashedPrefix = "webgl_"

// EntryPointName is the name the entry function is always emitted as.
const EntryPointName = "main"

// HashFunc hashes an identifier to 64 bits.
type HashFunc func(name string) uint64

// Mapper is the generic naming strategy for user-defined identifiers.
type Mapper interface {
	Map(name string) string
}

// IdentityMapper keeps user names, escaping reserved words.
type IdentityMapper struct{}

// Map implements Mapper.
func (IdentityMapper) Map(name string) string {
	return Escape(name)
}

// HashMapper replaces user names by webgl_<hex> of their hash.
type HashMapper struct {
	// Hash defaults to FNV64 when nil.
	Hash HashFunc
}

// Map implements Mapper.
func (m HashMapper) Map(name string) string {
	h := m.Hash
	if h == nil {
		h = FNV64
	}
	return fmt.Sprintf("%s%x", HashedPrefix, h(name))
}

// FNV64 is the FNV-1a 64-bit hash of name.
func FNV64(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// legacyNames holds, per stage, the legacy identifiers that are replaced
// when output is enforced to ESSL 3.00. Stages without legacy names have no
// entry.
var legacyNames = map[ir.ShaderStage]map[string]string{
	ir.StageFragment: {
		"gl_FragColor": "webgl_FragColor",
		"gl_FragData":  "webgl_FragData",
		"sample":       "webgl_sample",
	},
	ir.StageVertex: {
		// gl_ViewID_OVR is uint in ESSL 3.00 but int in WebGL 1.0.
		"gl_ViewID_OVR": "int(gl_ViewID_OVR)",
	},
}

// LegacySubstitution returns the replacement for a legacy identifier in the
// given stage, if there is one.
func LegacySubstitution(stage ir.ShaderStage, name string) (string, bool) {
	sub, ok := legacyNames[stage][name]
	return sub, ok
}

// Resolver maps symbols to output identifiers for one translation.
type Resolver struct {
	stage   ir.ShaderStage
	enforce bool
	mapper  Mapper

	byID    map[ir.SymbolID]string
	used    map[string]struct{}
	nameMap map[string]string
	counter uint32
}

// NewResolver creates a resolver for a stage. enforceESSL3 turns on legacy
// identifier substitution. A nil mapper means IdentityMapper.
func NewResolver(stage ir.ShaderStage, enforceESSL3 bool, mapper Mapper) *Resolver {
	if mapper == nil {
		mapper = IdentityMapper{}
	}
	r := &Resolver{
		stage:   stage,
		enforce: enforceESSL3,
		mapper:  mapper,
		byID:    make(map[ir.SymbolID]string),
		used:    make(map[string]struct{}),
		nameMap: make(map[string]string),
	}
	r.used[EntryPointName] = struct{}{}
	return r
}

// Reserve marks names as taken so no user symbol resolves to them.
func (r *Resolver) Reserve(names ...string) {
	for _, name := range names {
		r.used[name] = struct{}{}
	}
}

// Bind fixes the output name of a symbol. It is used for the entry point,
// which is always main regardless of its source name.
func (r *Resolver) Bind(sym ir.Symbol, name string) {
	r.byID[sym.ID] = name
	r.used[name] = struct{}{}
}

// Resolve returns the output identifier for a symbol.
func (r *Resolver) Resolve(sym ir.Symbol) (string, error) {
	if name, ok := r.byID[sym.ID]; ok {
		return name, nil
	}

	if sym.Kind == ir.SymbolEmpty {
		return "", diag.Invariantf(pass, "symbol %d is anonymous and cannot be emitted", sym.ID)
	}
	if sym.Name == "" {
		return "", diag.Invariantf(pass, "%s symbol %d has no name", sym.Kind, sym.ID)
	}

	if r.enforce {
		if sub, ok := LegacySubstitution(r.stage, sym.Name); ok {
			r.byID[sym.ID] = sub
			return sub, nil
		}
	}

	var name string
	switch sym.Kind {
	case ir.SymbolBuiltIn, ir.SymbolInternal:
		name = sym.Name
		r.used[name] = struct{}{}
	case ir.SymbolUserDefined:
		mapped := r.mapper.Map(sym.Name)
		name = r.unique(mapped)
		if name != sym.Name {
			r.nameMap[sym.Name] = name
		}
	default:
		return "", diag.Invariantf(pass, "symbol %d (%s) has unknown kind %d", sym.ID, sym.Name, sym.Kind)
	}

	r.byID[sym.ID] = name
	return name, nil
}

// Field returns the output name of a struct member. Members are scoped by
// their struct, so they are mapped but not uniquified.
func (r *Resolver) Field(name string) string {
	return r.mapper.Map(name)
}

// NameMap returns the original → output names of user symbols whose output
// name differs from their source name.
func (r *Resolver) NameMap() map[string]string {
	return maps.Clone(r.nameMap)
}

// Fresh returns an unused identifier derived from base and marks it taken.
// The generator uses it for variables it introduces.
func (r *Resolver) Fresh(base string) string {
	return r.unique(base)
}

// unique generates a unique name based on the given base, adding numeric
// suffixes if needed.
func (r *Resolver) unique(base string) string {
	if _, used := r.used[base]; !used {
		r.used[base] = struct{}{}
		return base
	}
	for {
		r.counter++
		candidate := fmt.Sprintf("%s_%d", base, r.counter)
		if _, used := r.used[candidate]; !used {
			r.used[candidate] = struct{}{}
			return candidate
		}
	}
}
