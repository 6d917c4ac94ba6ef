// Package abi maps declarations onto the WebAssembly value model.
//
// Only four value tags cross the boundary: i32, i64, f32 and f64. Raw
// pointers and by-value structs both travel as i32 offsets into guest
// linear memory; a struct never occupies a value slot itself.
package abi

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/abigen/internal/spec"
)

// ArgPtrSuffix is appended to the import name of declarations that pass
// structs through pointers.
const ArgPtrSuffix = "_argptr_stub"

// Classify returns the value tag a type occupies at the boundary. ok is
// false for Void, which has no tag.
func Classify(t spec.TypeDescriptor) (vt api.ValueType, ok bool) {
	switch t.Tag {
	case spec.Int32, spec.RawPointer, spec.StructByValue:
		return api.ValueTypeI32, true
	case spec.Int64:
		return api.ValueTypeI64, true
	case spec.Float32:
		return api.ValueTypeF32, true
	case spec.Float64:
		return api.ValueTypeF64, true
	}
	return 0, false
}

// NeedsIndirection reports whether d passes or returns a struct by value.
func NeedsIndirection(d spec.Declaration) bool {
	if d.Return.Tag == spec.StructByValue {
		return true
	}
	for _, p := range d.Params {
		if p.Type.Tag == spec.StructByValue {
			return true
		}
	}
	return false
}

// ImportName is the name the guest imports d under.
func ImportName(d spec.Declaration) string {
	if NeedsIndirection(d) {
		return d.Name + ArgPtrSuffix
	}
	return d.Name
}

// GoValueType renders vt as the wazero api constant.
func GoValueType(vt api.ValueType) string {
	switch vt {
	case api.ValueTypeI32:
		return "api.ValueTypeI32"
	case api.ValueTypeI64:
		return "api.ValueTypeI64"
	case api.ValueTypeF32:
		return "api.ValueTypeF32"
	case api.ValueTypeF64:
		return "api.ValueTypeF64"
	}
	return fmt.Sprintf("api.ValueType(%#x)", vt)
}
