// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package builtins

import (
	"fmt"
	"strings"
)

// AtanEmulatedName is the emitted name of the atan(y, x) replacement.
const AtanEmulatedName = "atan_emu"

// atanScalarBody handles the quadrants explicitly; some drivers return wrong
// results for atan(y, x) when x is close to zero.
const atanScalarBody = `emu_precision float atan_emu(emu_precision float y, emu_precision float x)
{
    if (x > 0.0) return atan(y / x);
    else if (x < 0.0 && y >= 0.0) return atan(y / x) + 3.14159265;
    else if (x < 0.0 && y < 0.0) return atan(y / x) - 3.14159265;
    else return 1.57079632 * sign(y);
}
`

// registerAtan registers atan(y, x) for float and vec2 to vec4. The vector
// overloads apply the float overload per component.
func (e *Emulator) registerAtan() {
	scalar := e.register("atan", []string{"float", "float"}, AtanEmulatedName, atanScalarBody)
	for n := 2; n <= 4; n++ {
		vec := fmt.Sprintf("vec%d", n)
		e.register("atan", []string{vec, vec}, AtanEmulatedName, atanVectorBody(n), scalar)
	}
}

func atanVectorBody(n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "emu_precision vec%d atan_emu(emu_precision vec%d y, emu_precision vec%d x)\n{\n", n, n, n)
	fmt.Fprintf(&sb, "    return vec%d(", n)
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "atan_emu(y[%d], x[%d])", i, i)
	}
	sb.WriteString(");\n}\n")
	return sb.String()
}
