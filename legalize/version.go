// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package legalize

import "fmt"

// Version represents an ESSL version.
type Version struct {
	Major uint8
	Minor uint8
}

// ESSL versions.
var (
	Version100 = Version{Major: 1, Minor: 0}  // ES 2.0 / WebGL 1.0
	Version300 = Version{Major: 3, Minor: 0}  // ES 3.0 / WebGL 2.0
	Version310 = Version{Major: 3, Minor: 10} // ES 3.1 (compute shaders)
	Version320 = Version{Major: 3, Minor: 20} // ES 3.2 (geometry shaders)
)

// ParseVersion converts a #version number (100, 300, 310, 320) to a Version.
func ParseVersion(number int) (Version, error) {
	switch number {
	case 100, 300, 310, 320:
		return Version{Major: uint8(number / 100), Minor: uint8(number % 100)}, nil
	default:
		return Version{}, fmt.Errorf("unsupported ESSL version %d", number)
	}
}

// Number returns the numeric version (e.g., 100, 300).
func (v Version) Number() int {
	return int(v.Major)*100 + int(v.Minor)
}

// String returns the version as a #version directive value.
func (v Version) String() string {
	return fmt.Sprintf("%d es", v.Number())
}

// LessThan returns true if the numeric version is less than the given number.
func (v Version) LessThan(number int) bool {
	return v.Number() < number
}

// IsZero reports whether the version is unset.
func (v Version) IsZero() bool {
	return v.Major == 0
}
