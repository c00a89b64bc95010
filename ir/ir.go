package ir

// Module represents a validated shader in IR form.
type Module struct {
	// Stage is the pipeline stage this shader is compiled for.
	Stage ShaderStage

	// Types holds all type definitions
	Types []Type

	// Constants holds module-scope constants
	Constants []Constant

	// GlobalVariables holds module-scope variables, including the built-in
	// variables (gl_Position, gl_FragColor, ...) the shader references.
	GlobalVariables []GlobalVariable

	// Functions holds all function definitions
	Functions []Function

	// EntryPoint is the function emitted as main().
	EntryPoint FunctionHandle

	// DefaultPrecisions holds the default precision statements in source order.
	DefaultPrecisions []DefaultPrecision

	// Pragma holds the pragmas the front-end recognized.
	Pragma Pragma

	// Layout holds stage-level layout declarations.
	Layout Layout
}

// ShaderStage represents a shader stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
	StageGeometry
)

// String returns the lowercase stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Handle types for referencing IR objects
type (
	TypeHandle           uint32
	FunctionHandle       uint32
	GlobalVariableHandle uint32
	ConstantHandle       uint32
	ExpressionHandle     uint32
)

// SymbolID identifies a symbol uniquely within one module.
type SymbolID uint32

// SymbolKind classifies where a symbol comes from.
type SymbolKind uint8

const (
	// SymbolUserDefined is declared in the shader source.
	SymbolUserDefined SymbolKind = iota
	// SymbolBuiltIn is a language built-in (gl_Position, gl_FragColor, ...).
	SymbolBuiltIn
	// SymbolInternal is synthesized by the translator or the front-end
	// and must be emitted verbatim.
	SymbolInternal
	// SymbolEmpty is an anonymous symbol that has no textual name.
	SymbolEmpty
)

// String returns the symbol kind name.
func (k SymbolKind) String() string {
	switch k {
	case SymbolUserDefined:
		return "user"
	case SymbolBuiltIn:
		return "builtin"
	case SymbolInternal:
		return "internal"
	case SymbolEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Symbol names an IR entity.
type Symbol struct {
	ID   SymbolID
	Name string
	Kind SymbolKind
}

// Precision represents an ESSL precision qualifier.
type Precision uint8

const (
	PrecisionUndefined Precision = iota
	PrecisionLow
	PrecisionMedium
	PrecisionHigh
)

// String returns the ESSL keyword for the precision, or "" when undefined.
func (p Precision) String() string {
	switch p {
	case PrecisionLow:
		return "lowp"
	case PrecisionMedium:
		return "mediump"
	case PrecisionHigh:
		return "highp"
	default:
		return ""
	}
}

// DefaultPrecision is a `precision <p> <type>;` statement.
type DefaultPrecision struct {
	Precision Precision
	Type      TypeHandle
}

// DefaultFloatPrecision returns the last default precision declared for float,
// or PrecisionUndefined.
func (m *Module) DefaultFloatPrecision() Precision {
	p := PrecisionUndefined
	for _, dp := range m.DefaultPrecisions {
		if int(dp.Type) >= len(m.Types) {
			continue
		}
		if s, ok := m.Types[dp.Type].Inner.(ScalarType); ok && s.Kind == ScalarFloat {
			p = dp.Precision
		}
	}
	return p
}

// Pragma holds recognized #pragma settings.
type Pragma struct {
	// DebugShaderPrecision is set by `#pragma webgl_debug_shader_precision(on)`.
	DebugShaderPrecision bool
	// STDGLInvariantAll is set by `#pragma STDGL invariant(all)`.
	STDGLInvariantAll bool
}

// Layout holds stage-level layout qualifiers.
type Layout struct {
	// LocalSize is the compute work-group size, nil if undeclared.
	LocalSize *[3]uint32

	// Geometry holds the geometry-stage layout.
	Geometry GeometryLayout

	// NumViews is the multiview view count; 0 means undeclared.
	NumViews int
}

// GeometryLayout holds geometry-stage layout qualifiers.
type GeometryLayout struct {
	Input       PrimitiveType
	Output      PrimitiveType
	Invocations uint32  // 0 or 1 means default
	MaxVertices *uint32 // nil if undeclared
}

// PrimitiveType is a geometry-stage primitive type.
type PrimitiveType uint8

const (
	PrimitiveUndefined PrimitiveType = iota
	PrimitivePoints
	PrimitiveLines
	PrimitiveLinesAdjacency
	PrimitiveTriangles
	PrimitiveTrianglesAdjacency
	PrimitiveLineStrip
	PrimitiveTriangleStrip
)

// String returns the layout qualifier spelling of the primitive type.
func (p PrimitiveType) String() string {
	switch p {
	case PrimitivePoints:
		return "points"
	case PrimitiveLines:
		return "lines"
	case PrimitiveLinesAdjacency:
		return "lines_adjacency"
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveTrianglesAdjacency:
		return "triangles_adjacency"
	case PrimitiveLineStrip:
		return "line_strip"
	case PrimitiveTriangleStrip:
		return "triangle_strip"
	default:
		return ""
	}
}

// Type represents a type in the IR.
type Type struct {
	// Symbol names struct types; other types leave it zero.
	Symbol Symbol
	Inner  TypeInner
}

// TypeInner represents the inner type kind.
type TypeInner interface {
	typeInner()
}

// ScalarType represents scalar types.
type ScalarType struct {
	Kind ScalarKind
}

func (ScalarType) typeInner() {}

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarSint  ScalarKind = iota // Signed integer
	ScalarUint                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarBool                    // Boolean
)

// VectorType represents vector types.
type VectorType struct {
	Size   VectorSize
	Scalar ScalarType
}

func (VectorType) typeInner() {}

// VectorSize represents vector sizes.
type VectorSize uint8

const (
	Vec2 VectorSize = 2
	Vec3 VectorSize = 3
	Vec4 VectorSize = 4
)

// MatrixType represents float matrix types.
type MatrixType struct {
	Columns VectorSize
	Rows    VectorSize
}

func (MatrixType) typeInner() {}

// ArrayType represents array types.
type ArrayType struct {
	Base TypeHandle
	Size ArraySize
}

func (ArrayType) typeInner() {}

// ArraySize represents array size.
type ArraySize struct {
	Constant *uint32 // nil for runtime-sized arrays
}

// StructType represents struct types.
type StructType struct {
	Members []StructMember
}

func (StructType) typeInner() {}

// StructMember represents a struct member.
type StructMember struct {
	Name      string
	Type      TypeHandle
	Precision Precision
}

// SamplerType represents a combined texture/sampler type.
type SamplerType struct {
	Dim     ImageDimension
	Class   ImageClass
	Kind    ScalarKind // Sampled component kind (float, int or uint)
	Arrayed bool
	// Multisampled selects sampler2DMS / sampler2DMSArray.
	Multisampled bool
}

func (SamplerType) typeInner() {}

// ImageDimension represents image dimensions.
type ImageDimension uint8

const (
	Dim2D ImageDimension = iota
	Dim3D
	DimCube
	DimRect
)

// ImageClass represents image classification.
type ImageClass uint8

const (
	ImageClassSampled ImageClass = iota
	ImageClassDepth
	// ImageClassExternal is an EGL external image (samplerExternalOES).
	ImageClassExternal
)

// Constant represents a module-scope constant.
type Constant struct {
	Symbol    Symbol
	Type      TypeHandle
	Precision Precision
	Value     ConstantValue
}

// ConstantValue represents constant values.
type ConstantValue interface {
	constantValue()
}

// ScalarValue represents a scalar constant.
type ScalarValue struct {
	Bits uint64 // Bit representation
	Kind ScalarKind
}

func (ScalarValue) constantValue() {}

// CompositeValue represents a composite constant.
type CompositeValue struct {
	Components []ConstantHandle
}

func (CompositeValue) constantValue() {}

// AddressSpace represents the storage class of a global variable.
type AddressSpace uint8

const (
	SpacePrivate   AddressSpace = iota // Plain global
	SpaceUniform                       // uniform
	SpaceInput                         // attribute / varying in / in
	SpaceOutput                        // varying out / out
	SpaceWorkGroup                     // shared (compute)
)

// Interpolation represents an interpolation qualifier on stage I/O.
type Interpolation uint8

const (
	InterpolationDefault Interpolation = iota
	InterpolationSmooth
	InterpolationFlat
	InterpolationCentroid
)

// GlobalVariable represents a global variable.
type GlobalVariable struct {
	Symbol        Symbol
	Space         AddressSpace
	Type          TypeHandle
	Precision     Precision
	Location      *uint32 // layout(location = N)
	Binding       *uint32 // layout(binding = N)
	Interpolation Interpolation
	Invariant     bool
	Init          *ConstantHandle
}

// Function represents a function definition.
type Function struct {
	Symbol      Symbol
	Arguments   []FunctionArgument
	Result      *FunctionResult
	LocalVars   []LocalVariable
	Expressions []Expression
	Body        Block
}

// ParameterQualifier is the direction of a function parameter.
type ParameterQualifier uint8

const (
	ParameterIn ParameterQualifier = iota
	ParameterOut
	ParameterInOut
	ParameterConst
)

// FunctionArgument represents a function argument.
type FunctionArgument struct {
	Symbol    Symbol
	Type      TypeHandle
	Precision Precision
	Qualifier ParameterQualifier
}

// FunctionResult represents a function return type.
type FunctionResult struct {
	Type      TypeHandle
	Precision Precision
}

// LocalVariable represents a function-local variable.
type LocalVariable struct {
	Symbol    Symbol
	Type      TypeHandle
	Precision Precision
	Const     bool
	Init      *ExpressionHandle
}

// TypeResolution represents the resolved type of an expression.
// It can either reference a type in the module's type arena (Handle)
// or represent an inline/computed type (Value).
type TypeResolution struct {
	Handle *TypeHandle // If set, references a module type
	Value  TypeInner   // If Handle is nil, this is the inline type
}

// Inner returns the TypeInner of a resolution against the module's arena.
func (r TypeResolution) Inner(module *Module) TypeInner {
	if r.Handle != nil {
		if int(*r.Handle) < len(module.Types) {
			return module.Types[*r.Handle].Inner
		}
		return nil
	}
	return r.Value
}

// Expression types are defined in expression.go
// Statement types are defined in statement.go
