// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package names

import "strings"

// esslKeywords contains the ESSL 1.00 and 3.x reserved words, the words
// reserved for future use, and the built-in function names a user identifier
// must not shadow in the translated output.
var esslKeywords = map[string]struct{}{
	// Basic types
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},
	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},

	// Sampler types
	"sampler2D": {}, "sampler3D": {}, "samplerCube": {}, "sampler2DRect": {},
	"sampler2DShadow": {}, "samplerCubeShadow": {}, "sampler2DArray": {}, "sampler2DArrayShadow": {},
	"sampler2DMS": {}, "sampler2DMSArray": {}, "samplerExternalOES": {}, "samplerExternal2DY2YEXT": {},
	"isampler2D": {}, "isampler3D": {}, "isamplerCube": {}, "isampler2DArray": {},
	"isampler2DMS": {}, "isampler2DMSArray": {},
	"usampler2D": {}, "usampler3D": {}, "usamplerCube": {}, "usampler2DArray": {},
	"usampler2DMS": {}, "usampler2DMSArray": {},
	"image2D": {}, "iimage2D": {}, "uimage2D": {}, "image3D": {}, "imageCube": {}, "image2DArray": {},
	"atomic_uint": {},

	// Keywords
	"attribute": {}, "const": {}, "uniform": {}, "varying": {}, "buffer": {}, "shared": {},
	"coherent": {}, "volatile": {}, "restrict": {}, "readonly": {}, "writeonly": {},
	"layout": {}, "centroid": {}, "flat": {}, "smooth": {}, "noperspective": {}, "sample": {},
	"break": {}, "continue": {}, "do": {}, "for": {}, "while": {}, "switch": {}, "case": {}, "default": {},
	"if": {}, "else": {}, "in": {}, "out": {}, "inout": {},
	"true": {}, "false": {}, "invariant": {}, "precise": {},
	"discard": {}, "return": {}, "struct": {},
	"lowp": {}, "mediump": {}, "highp": {}, "precision": {},

	// Reserved for future use
	"asm": {}, "class": {}, "union": {}, "enum": {}, "typedef": {}, "template": {}, "this": {},
	"packed": {}, "resource": {}, "goto": {}, "inline": {}, "noinline": {}, "public": {},
	"static": {}, "extern": {}, "external": {}, "interface": {}, "long": {}, "short": {},
	"double": {}, "half": {}, "fixed": {}, "unsigned": {}, "superp": {}, "input": {}, "output": {},
	"hvec2": {}, "hvec3": {}, "hvec4": {}, "dvec2": {}, "dvec3": {}, "dvec4": {},
	"fvec2": {}, "fvec3": {}, "fvec4": {}, "sampler1D": {}, "sampler1DShadow": {},
	"sampler3DRect": {}, "sampler2DRectShadow": {}, "filter": {}, "sizeof": {}, "cast": {},
	"namespace": {}, "using": {}, "subroutine": {}, "patch": {}, "common": {}, "partition": {}, "active": {},

	// Built-in functions
	"radians": {}, "degrees": {}, "sin": {}, "cos": {}, "tan": {},
	"asin": {}, "acos": {}, "atan": {}, "sinh": {}, "cosh": {}, "tanh": {},
	"asinh": {}, "acosh": {}, "atanh": {},
	"pow": {}, "exp": {}, "log": {}, "exp2": {}, "log2": {}, "sqrt": {}, "inversesqrt": {},
	"abs": {}, "sign": {}, "floor": {}, "trunc": {}, "round": {}, "roundEven": {}, "ceil": {}, "fract": {},
	"mod": {}, "modf": {}, "min": {}, "max": {}, "clamp": {}, "mix": {}, "step": {}, "smoothstep": {},
	"isnan": {}, "isinf": {},
	"floatBitsToInt": {}, "floatBitsToUint": {}, "intBitsToFloat": {}, "uintBitsToFloat": {},
	"packSnorm2x16": {}, "unpackSnorm2x16": {}, "packUnorm2x16": {}, "unpackUnorm2x16": {},
	"packHalf2x16": {}, "unpackHalf2x16": {},
	"length": {}, "distance": {}, "dot": {}, "cross": {}, "normalize": {}, "faceforward": {},
	"reflect": {}, "refract": {},
	"matrixCompMult": {}, "outerProduct": {}, "transpose": {}, "determinant": {}, "inverse": {},
	"lessThan": {}, "lessThanEqual": {}, "greaterThan": {}, "greaterThanEqual": {},
	"equal": {}, "notEqual": {}, "any": {}, "all": {}, "not": {},
	"texture": {}, "textureProj": {}, "textureLod": {}, "textureOffset": {}, "texelFetch": {},
	"texelFetchOffset": {}, "textureProjOffset": {}, "textureLodOffset": {}, "textureProjLod": {},
	"textureProjLodOffset": {}, "textureGrad": {}, "textureGradOffset": {}, "textureProjGrad": {},
	"textureProjGradOffset": {}, "textureSize": {}, "textureGather": {}, "textureGatherOffset": {},
	"texture2D": {}, "texture2DProj": {}, "texture2DLod": {}, "texture2DProjLod": {},
	"textureCube": {}, "textureCubeLod": {}, "texture2DRect": {}, "texture2DRectProj": {},
	"texture2DLodEXT": {}, "texture2DProjLodEXT": {}, "textureCubeLodEXT": {},
	"texture2DGradEXT": {}, "texture2DProjGradEXT": {}, "textureCubeGradEXT": {},
	"dFdx": {}, "dFdy": {}, "fwidth": {},
	"barrier": {}, "memoryBarrier": {}, "memoryBarrierShared": {}, "memoryBarrierImage": {},
	"memoryBarrierBuffer": {}, "groupMemoryBarrier": {},
	"imageLoad": {}, "imageStore": {}, "imageSize": {},
}

// IsKeyword reports whether a name is an ESSL keyword, reserved word or built-in function.
func IsKeyword(name string) bool {
	_, ok := esslKeywords[name]
	return ok
}

// Escape returns a name that cannot clash with the language.
// Keywords and the reserved gl_ and webgl_ prefixes are escaped with a
// leading underscore.
func Escape(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if IsKeyword(name) || strings.HasPrefix(name, "gl_") || strings.HasPrefix(name, HashedPrefix) {
		return "_" + name
	}
	return name
}
