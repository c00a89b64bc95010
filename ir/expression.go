package ir

// Expression represents an expression in the IR.
// Expressions live in a per-function arena and reference each other by handle.
type Expression struct {
	Kind ExpressionKind
}

// ExpressionKind represents the different kinds of expressions.
type ExpressionKind interface {
	expressionKind()
}

// Literal represents a literal constant value.
type Literal struct {
	Value LiteralValue
	// Precision is the precision the front-end assigned to the literal.
	// Literals carry no qualifier in source; RecordConstantPrecision keeps
	// highp literals highp when their consumer would lower them.
	Precision Precision
}

func (Literal) expressionKind() {}

// LiteralValue represents the value of a literal.
type LiteralValue interface {
	literalValue()
}

// LiteralF32 represents a 32-bit float literal (may not be NaN or infinity).
type LiteralF32 float32

func (LiteralF32) literalValue() {}

// LiteralU32 represents a 32-bit unsigned integer literal.
type LiteralU32 uint32

func (LiteralU32) literalValue() {}

// LiteralI32 represents a 32-bit signed integer literal.
type LiteralI32 int32

func (LiteralI32) literalValue() {}

// LiteralBool represents a boolean literal.
type LiteralBool bool

func (LiteralBool) literalValue() {}

// ExprConstant references a module-scope constant.
type ExprConstant struct {
	Constant ConstantHandle
}

func (ExprConstant) expressionKind() {}

// ExprZeroValue represents a zero-initialized value of a given type.
type ExprZeroValue struct {
	Type TypeHandle
}

func (ExprZeroValue) expressionKind() {}

// ExprCompose constructs a composite value (vector, matrix, array, or struct).
type ExprCompose struct {
	Type       TypeHandle
	Components []ExpressionHandle
}

func (ExprCompose) expressionKind() {}

// ExprAccess performs array/vector/matrix access with a computed index.
type ExprAccess struct {
	Base  ExpressionHandle
	Index ExpressionHandle
}

func (ExprAccess) expressionKind() {}

// ExprAccessIndex performs access with a compile-time constant index.
// Can access arrays, vectors, matrices, and struct fields.
type ExprAccessIndex struct {
	Base  ExpressionHandle
	Index uint32
}

func (ExprAccessIndex) expressionKind() {}

// ExprSplat broadcasts a scalar value to all components of a vector.
type ExprSplat struct {
	Size  VectorSize
	Value ExpressionHandle
}

func (ExprSplat) expressionKind() {}

// ExprSwizzle reorders or duplicates vector components.
type ExprSwizzle struct {
	Size    VectorSize
	Vector  ExpressionHandle
	Pattern [4]SwizzleComponent
}

func (ExprSwizzle) expressionKind() {}

// SwizzleComponent represents a single component in a vector swizzle.
type SwizzleComponent uint8

const (
	SwizzleX SwizzleComponent = 0
	SwizzleY SwizzleComponent = 1
	SwizzleZ SwizzleComponent = 2
	SwizzleW SwizzleComponent = 3
)

// ExprFunctionArgument references a function parameter by its index.
type ExprFunctionArgument struct {
	Index uint32
}

func (ExprFunctionArgument) expressionKind() {}

// ExprGlobalVariable references a global variable as an lvalue.
type ExprGlobalVariable struct {
	Variable GlobalVariableHandle
}

func (ExprGlobalVariable) expressionKind() {}

// ExprLocalVariable references a local variable as an lvalue.
type ExprLocalVariable struct {
	Variable uint32 // Index into Function.LocalVars
}

func (ExprLocalVariable) expressionKind() {}

// ExprLoad reads the value behind an lvalue expression.
type ExprLoad struct {
	Pointer ExpressionHandle
}

func (ExprLoad) expressionKind() {}

// ExprUnary applies a unary operator to an expression.
type ExprUnary struct {
	Op   UnaryOperator
	Expr ExpressionHandle
}

func (ExprUnary) expressionKind() {}

// UnaryOperator represents unary operations.
type UnaryOperator uint8

const (
	UnaryNegate     UnaryOperator = iota // Arithmetic negation
	UnaryLogicalNot                      // Logical not (!)
	UnaryBitwiseNot                      // Bitwise not (~)
)

// ExprBinary applies a binary operator to two expressions.
type ExprBinary struct {
	Op    BinaryOperator
	Left  ExpressionHandle
	Right ExpressionHandle
}

func (ExprBinary) expressionKind() {}

// BinaryOperator represents binary operations.
type BinaryOperator uint8

const (
	// Arithmetic operations
	BinaryAdd      BinaryOperator = iota // Addition
	BinarySubtract                       // Subtraction
	BinaryMultiply                       // Multiplication
	BinaryDivide                         // Division
	BinaryModulo                         // Integer remainder (ESSL 3.00)

	// Comparison operations
	BinaryEqual        // Equal (==)
	BinaryNotEqual     // Not equal (!=)
	BinaryLess         // Less than (<)
	BinaryLessEqual    // Less than or equal (<=)
	BinaryGreater      // Greater than (>)
	BinaryGreaterEqual // Greater than or equal (>=)

	// Bitwise operations
	BinaryAnd         // Bitwise AND
	BinaryExclusiveOr // Bitwise XOR
	BinaryInclusiveOr // Bitwise OR

	// Logical operations
	BinaryLogicalAnd // Logical AND (&&)
	BinaryLogicalOr  // Logical OR (||)
	BinaryLogicalXor // Logical XOR (^^)

	// Shift operations
	BinaryShiftLeft  // Left shift (<<)
	BinaryShiftRight // Right shift (>>)
)

// IsArithmetic reports whether the operator is one of + - * /.
func (op BinaryOperator) IsArithmetic() bool {
	return op <= BinaryDivide
}

// IsComparison reports whether the operator yields a bool from two operands.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterEqual
}

// ExprSelect selects between two values based on a boolean condition.
// Equivalent to the ternary operator (condition ? accept : reject).
type ExprSelect struct {
	Condition ExpressionHandle
	Accept    ExpressionHandle
	Reject    ExpressionHandle
}

func (ExprSelect) expressionKind() {}

// ExprDerivative computes the derivative of an expression.
type ExprDerivative struct {
	Axis DerivativeAxis
	Expr ExpressionHandle
}

func (ExprDerivative) expressionKind() {}

// DerivativeAxis specifies the axis for derivative computation.
type DerivativeAxis uint8

const (
	DerivativeX     DerivativeAxis = iota // dFdx
	DerivativeY                           // dFdy
	DerivativeWidth                       // fwidth
)

// ExprRelational applies a relational function.
type ExprRelational struct {
	Fun      RelationalFunction
	Argument ExpressionHandle
}

func (ExprRelational) expressionKind() {}

// RelationalFunction represents built-in relational test functions.
type RelationalFunction uint8

const (
	RelationalAll   RelationalFunction = iota // All components are true
	RelationalAny                             // Any component is true
	RelationalNot                             // Component-wise not
	RelationalIsNan                           // Test for NaN (ESSL 3.00)
	RelationalIsInf                           // Test for infinity (ESSL 3.00)
)

// ExprMath applies a built-in mathematical function.
type ExprMath struct {
	Fun  MathFunction
	Arg  ExpressionHandle
	Arg1 *ExpressionHandle
	Arg2 *ExpressionHandle
}

func (ExprMath) expressionKind() {}

// MathFunction represents built-in mathematical functions.
type MathFunction uint8

const (
	// Comparison functions
	MathAbs   MathFunction = iota // Absolute value
	MathMin                       // Minimum
	MathMax                       // Maximum
	MathClamp                     // Clamp to range

	// Trigonometric functions
	MathCos   // Cosine
	MathSin   // Sine
	MathTan   // Tangent
	MathAcos  // Arc cosine
	MathAsin  // Arc sine
	MathAtan  // Arc tangent
	MathAtan2 // Two-argument arc tangent, atan(y, x)

	// Angle conversion
	MathRadians // Convert degrees to radians
	MathDegrees // Convert radians to degrees

	// Decomposition functions
	MathCeil  // Round up to integer
	MathFloor // Round down to integer
	MathRound // Round to nearest integer (ESSL 3.00)
	MathFract // Fractional part
	MathTrunc // Truncate to integer (ESSL 3.00)
	MathMod   // Floating-point modulus

	// Exponential functions
	MathExp         // Natural exponential (e^x)
	MathExp2        // Base-2 exponential (2^x)
	MathLog         // Natural logarithm
	MathLog2        // Base-2 logarithm
	MathPow         // Power (x^y)
	MathSqrt        // Square root
	MathInverseSqrt // Inverse square root

	// Geometric functions
	MathDot         // Dot product
	MathCross       // Cross product
	MathDistance    // Distance between points
	MathLength      // Vector length
	MathNormalize   // Normalize vector
	MathFaceForward // Orient vector
	MathReflect     // Reflect vector
	MathRefract     // Refract vector

	// Computational functions
	MathSign        // Sign of value (-1, 0, or 1)
	MathMix         // Linear interpolation
	MathStep        // Step function
	MathSmoothStep  // Smooth step function
	MathTranspose   // Matrix transpose (ESSL 3.00)
	MathDeterminant // Matrix determinant (ESSL 3.00)
	MathInverse     // Matrix inverse (ESSL 3.00)
	MathOuter       // Outer product (ESSL 3.00)
)

// ExprAs performs a constructor-style scalar conversion, e.g. float(i).
type ExprAs struct {
	Expr ExpressionHandle
	Kind ScalarKind
}

func (ExprAs) expressionKind() {}

// ExprCall calls a user-defined function and yields its result.
type ExprCall struct {
	Function  FunctionHandle
	Arguments []ExpressionHandle
}

func (ExprCall) expressionKind() {}

// ExprBuiltinCall calls a built-in function by its source name.
// Texture lookups (texture2D, textureCubeLod, texture, ...) are expressed
// this way so that legacy names survive until the generator decides how to
// spell them for the target version.
type ExprBuiltinCall struct {
	Name      string
	Arguments []ExpressionHandle
}

func (ExprBuiltinCall) expressionKind() {}

// ExprArrayLength evaluates to the length of an array (ESSL 3.00 .length()).
type ExprArrayLength struct {
	Array ExpressionHandle
}

func (ExprArrayLength) expressionKind() {}
