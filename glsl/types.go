// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"

	"github.com/gogpu/essl/ir"
)

// ESSL scalar type names.
const (
	esslTypeFloat = "float"
	esslTypeInt   = "int"
	esslTypeUint  = "uint"
	esslTypeBool  = "bool"
)

// getTypeName returns the ESSL type name for a type handle. Array types
// return their element name; the size is written by declaration.
func (w *Writer) getTypeName(handle ir.TypeHandle) string {
	if int(handle) >= len(w.module.Types) {
		return fmt.Sprintf("type_%d", handle)
	}
	if name, ok := w.typeNames[handle]; ok {
		return name
	}
	return w.typeInnerName(w.module.Types[handle].Inner)
}

// typeInnerName returns the ESSL name for a TypeInner.
func (w *Writer) typeInnerName(inner ir.TypeInner) string {
	switch t := inner.(type) {
	case ir.ScalarType:
		return scalarName(t.Kind)
	case ir.VectorType:
		return vectorName(t)
	case ir.MatrixType:
		return matrixName(t)
	case ir.ArrayType:
		return w.getTypeName(t.Base)
	case ir.SamplerType:
		return samplerName(t)
	default:
		return "unknown_type"
	}
}

// innerType returns the TypeInner behind a handle, or nil.
func (w *Writer) innerType(handle ir.TypeHandle) ir.TypeInner {
	if int(handle) >= len(w.module.Types) {
		return nil
	}
	return w.module.Types[handle].Inner
}

// declaration returns "type name[N]..." for a declaration of the given type.
func (w *Writer) declaration(handle ir.TypeHandle, name string) string {
	return w.getTypeName(handle) + " " + name + w.arraySuffix(handle)
}

// arraySuffix returns the array dimensions of a type, outermost first.
func (w *Writer) arraySuffix(handle ir.TypeHandle) string {
	var suffix string
	for {
		arr, ok := w.innerType(handle).(ir.ArrayType)
		if !ok {
			return suffix
		}
		if arr.Size.Constant != nil {
			suffix += fmt.Sprintf("[%d]", *arr.Size.Constant)
		} else {
			suffix += "[]"
		}
		handle = arr.Base
	}
}

// scalarName returns the ESSL name for a scalar kind.
func scalarName(kind ir.ScalarKind) string {
	switch kind {
	case ir.ScalarBool:
		return esslTypeBool
	case ir.ScalarSint:
		return esslTypeInt
	case ir.ScalarUint:
		return esslTypeUint
	default:
		return esslTypeFloat
	}
}

// vectorName returns the ESSL name for a vector type.
func vectorName(t ir.VectorType) string {
	prefix := ""
	switch t.Scalar.Kind {
	case ir.ScalarBool:
		prefix = "b"
	case ir.ScalarSint:
		prefix = "i"
	case ir.ScalarUint:
		prefix = "u"
	}
	return fmt.Sprintf("%svec%d", prefix, t.Size)
}

// matrixName returns the ESSL name for a matrix type.
// Square matrices use the short form.
func matrixName(t ir.MatrixType) string {
	if t.Columns == t.Rows {
		return fmt.Sprintf("mat%d", t.Columns)
	}
	return fmt.Sprintf("mat%dx%d", t.Columns, t.Rows)
}

// samplerName returns the ESSL name for a sampler type.
func samplerName(t ir.SamplerType) string {
	if t.Class == ir.ImageClassExternal {
		return "samplerExternalOES"
	}

	prefix := ""
	switch t.Kind {
	case ir.ScalarSint:
		prefix = "i"
	case ir.ScalarUint:
		prefix = "u"
	}

	var dim string
	switch t.Dim {
	case ir.Dim3D:
		dim = "3D"
	case ir.DimCube:
		dim = "Cube"
	case ir.DimRect:
		dim = "2DRect"
	default:
		dim = "2D"
	}
	if t.Multisampled {
		dim += "MS"
	}
	if t.Arrayed {
		dim += "Array"
	}

	name := prefix + "sampler" + dim
	if t.Class == ir.ImageClassDepth {
		name += "Shadow"
	}
	return name
}

// maxIndex returns the largest valid index of a sized array, vector or
// matrix type.
func maxIndex(inner ir.TypeInner) (uint32, bool) {
	switch t := inner.(type) {
	case ir.ArrayType:
		if t.Size.Constant == nil || *t.Size.Constant == 0 {
			return 0, false
		}
		return *t.Size.Constant - 1, true
	case ir.VectorType:
		return uint32(t.Size) - 1, true
	case ir.MatrixType:
		return uint32(t.Columns) - 1, true
	default:
		return 0, false
	}
}
