package abi

import (
	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/abigen/internal/spec"
)

// Convention holds the fixed registration conventions applied on top of
// the natural signature.
type Convention struct {
	// PadEmpty appends one dummy i32 parameter to an empty parameter list
	// and supplies an i32 return placeholder when nothing is returned.
	// The placeholder is never counted in NumReturns. This mirrors a
	// registration primitive that cannot express an empty list; wazero can,
	// so hosts whose guests import true (void) signatures disable it.
	PadEmpty bool
}

// DefaultConvention keeps the dummy-parameter convention.
func DefaultConvention() Convention {
	return Convention{PadEmpty: true}
}

// Signature is the WebAssembly-level shape an import is registered with.
type Signature struct {
	Params []api.ValueType
	// Return is meaningful only when NumReturns is 1; otherwise it is the
	// placeholder (or zero when padding is off).
	Return     api.ValueType
	NumReturns int
}

// ComputeSignature derives the registered signature of d. A struct return
// becomes a leading i32 destination offset and no result; struct and raw
// pointer parameters each contribute one i32.
func ComputeSignature(d spec.Declaration, conv Convention) (Signature, error) {
	var sig Signature

	switch d.Return.Tag {
	case spec.StructByValue:
		sig.Params = append(sig.Params, api.ValueTypeI32)
	case spec.Void:
	default:
		vt, ok := Classify(d.Return)
		if !ok || d.Return.Tag == spec.RawPointer {
			return Signature{}, &spec.UnrecognizedTypeTagError{Declaration: d.Name, Tag: d.Return.Tag.Letter()}
		}
		sig.Return = vt
		sig.NumReturns = 1
	}

	for _, p := range d.Params {
		vt, ok := Classify(p.Type)
		if !ok {
			return Signature{}, &spec.UnrecognizedTypeTagError{Declaration: d.Name, Parameter: p.Name, Tag: p.Type.Tag.Letter()}
		}
		sig.Params = append(sig.Params, vt)
	}

	if conv.PadEmpty {
		if sig.NumReturns == 0 {
			sig.Return = api.ValueTypeI32
		}
		if len(sig.Params) == 0 {
			sig.Params = append(sig.Params, api.ValueTypeI32)
		}
	}
	if sig.Params == nil {
		sig.Params = []api.ValueType{}
	}
	return sig, nil
}
