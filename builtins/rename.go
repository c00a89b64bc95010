// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtins

// rename is one entry of an ordered rewrite table.
type rename struct {
	from string
	to   string
}

// simpleRenames drops vendor suffixes from texture functions that ESSL 1.00
// drivers expose under the core or ARB name.
var simpleRenames = []rename{
	{"texture2DLodEXT", "texture2DLod"},
	{"texture2DProjLodEXT", "texture2DProjLod"},
	{"textureCubeLodEXT", "textureCubeLod"},
	{"texture2DGradEXT", "texture2DGradARB"},
	{"texture2DProjGradEXT", "texture2DProjGradARB"},
	{"textureCubeGradEXT", "textureCubeGradARB"},
}

// legacyToCoreRenames maps every ESSL 1.00 texture function to its
// overloaded ESSL 3.00 equivalent.
var legacyToCoreRenames = []rename{
	{"texture2D", "texture"},
	{"texture2DProj", "textureProj"},
	{"texture2DLod", "textureLod"},
	{"texture2DProjLod", "textureProjLod"},
	{"texture2DRect", "texture"},
	{"textureCube", "texture"},
	{"textureCubeLod", "textureLod"},

	// Extensions
	{"texture2DLodEXT", "textureLod"},
	{"texture2DProjLodEXT", "textureProjLod"},
	{"textureCubeLodEXT", "textureLod"},
	{"texture2DGradEXT", "textureGrad"},
	{"texture2DProjGradEXT", "textureProjGrad"},
	{"textureCubeGradEXT", "textureGrad"},
}

// TranslateCallName returns the name a built-in call is emitted as.
// With enforceESSL3 the legacy-to-core table applies, otherwise the
// vendor-suffix table. Names in neither table pass through unchanged.
func TranslateCallName(name string, enforceESSL3 bool) string {
	table := simpleRenames
	if enforceESSL3 {
		table = legacyToCoreRenames
	}
	for _, r := range table {
		if r.from == name {
			return r.to
		}
	}
	return name
}
