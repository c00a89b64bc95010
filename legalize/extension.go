// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package legalize

import "fmt"

// Extension identifies a shading language extension.
// The declaration order is the order directives are written in.
type Extension uint8

const (
	ARBTextureRectangle Extension = iota
	ARMShaderFramebufferFetch
	ANGLETextureMultisample
	EXTBlendFuncExtended
	EXTDrawBuffers
	EXTFragDepth
	EXTGeometryShader
	EXTShaderFramebufferFetch
	EXTShaderTextureLOD
	EXTYUVTarget
	NVEGLStreamConsumerExternal
	NVShaderFramebufferFetch
	NVViewportArray2
	OESEGLImageExternal
	OESEGLImageExternalESSL3
	OESStandardDerivatives
	OESTextureStorageMultisample2DArray
	OVRMultiview
	OVRMultiview2

	extensionCount
)

var extensionNames = [extensionCount]string{
	ARBTextureRectangle:                 "GL_ARB_texture_rectangle",
	ARMShaderFramebufferFetch:           "GL_ARM_shader_framebuffer_fetch",
	ANGLETextureMultisample:             "GL_ANGLE_texture_multisample",
	EXTBlendFuncExtended:                "GL_EXT_blend_func_extended",
	EXTDrawBuffers:                      "GL_EXT_draw_buffers",
	EXTFragDepth:                        "GL_EXT_frag_depth",
	EXTGeometryShader:                   "GL_EXT_geometry_shader",
	EXTShaderFramebufferFetch:           "GL_EXT_shader_framebuffer_fetch",
	EXTShaderTextureLOD:                 "GL_EXT_shader_texture_lod",
	EXTYUVTarget:                        "GL_EXT_YUV_target",
	NVEGLStreamConsumerExternal:         "GL_NV_EGL_stream_consumer_external",
	NVShaderFramebufferFetch:            "GL_NV_shader_framebuffer_fetch",
	NVViewportArray2:                    "GL_NV_viewport_array2",
	OESEGLImageExternal:                 "GL_OES_EGL_image_external",
	OESEGLImageExternalESSL3:            "GL_OES_EGL_image_external_essl3",
	OESStandardDerivatives:              "GL_OES_standard_derivatives",
	OESTextureStorageMultisample2DArray: "GL_OES_texture_storage_multisample_2d_array",
	OVRMultiview:                        "GL_OVR_multiview",
	OVRMultiview2:                       "GL_OVR_multiview2",
}

// String returns the extension's directive name, e.g. GL_EXT_frag_depth.
func (e Extension) String() string {
	if e < extensionCount {
		return extensionNames[e]
	}
	return fmt.Sprintf("Extension(%d)", uint8(e))
}

// IsMultiview reports whether the extension is one of the OVR multiview extensions.
func (e Extension) IsMultiview() bool {
	return e == OVRMultiview || e == OVRMultiview2
}

// ParseExtension returns the extension with the given directive name.
func ParseExtension(name string) (Extension, error) {
	for e := Extension(0); e < extensionCount; e++ {
		if extensionNames[e] == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown extension %q", name)
}

// Behavior is the requested behavior of an extension directive.
type Behavior uint8

const (
	BehaviorUndefined Behavior = iota
	BehaviorRequire
	BehaviorEnable
	BehaviorWarn
	BehaviorDisable
)

// String returns the directive spelling of the behavior.
func (b Behavior) String() string {
	switch b {
	case BehaviorRequire:
		return "require"
	case BehaviorEnable:
		return "enable"
	case BehaviorWarn:
		return "warn"
	case BehaviorDisable:
		return "disable"
	default:
		return "UNDEFINED"
	}
}

// ParseBehavior returns the behavior with the given directive spelling.
func ParseBehavior(name string) (Behavior, error) {
	for b := BehaviorRequire; b <= BehaviorDisable; b++ {
		if b.String() == name {
			return b, nil
		}
	}
	return BehaviorUndefined, fmt.Errorf("unknown extension behavior %q", name)
}

// Table maps extensions to the behavior the shader requested.
// Missing entries are BehaviorUndefined.
type Table map[Extension]Behavior

// Each calls fn for every extension with a defined behavior, in directive order.
func (t Table) Each(fn func(Extension, Behavior)) {
	for e := Extension(0); e < extensionCount; e++ {
		if b := t[e]; b != BehaviorUndefined {
			fn(e, b)
		}
	}
}

// MultiviewRequested reports whether a multiview extension is referenced with
// a behavior other than undefined or disable.
func (t Table) MultiviewRequested() bool {
	for _, e := range []Extension{OVRMultiview, OVRMultiview2} {
		if b := t[e]; b != BehaviorUndefined && b != BehaviorDisable {
			return true
		}
	}
	return false
}

// Resources describes host capabilities that change the emitted header.
type Resources struct {
	// NVShaderFramebufferFetch substitutes GL_NV_shader_framebuffer_fetch for
	// GL_EXT_shader_framebuffer_fetch.
	NVShaderFramebufferFetch bool

	// NVDrawBuffers substitutes GL_NV_draw_buffers for GL_EXT_draw_buffers.
	NVDrawBuffers bool

	// WEBGLDebugShaderPrecision allows precision emulation to run.
	WEBGLDebugShaderPrecision bool
}
