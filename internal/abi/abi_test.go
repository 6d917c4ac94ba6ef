package abi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/abigen/internal/spec"
)

func scalar(tag spec.Tag, name string) spec.TypeDescriptor {
	return spec.TypeDescriptor{Tag: tag, NativeTypeName: name}
}

func param(name string, tag spec.Tag) spec.Parameter {
	return spec.Parameter{Name: name, Type: scalar(tag, "t")}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tag  spec.Tag
		want api.ValueType
		ok   bool
	}{
		{spec.Int32, api.ValueTypeI32, true},
		{spec.Int64, api.ValueTypeI64, true},
		{spec.Float32, api.ValueTypeF32, true},
		{spec.Float64, api.ValueTypeF64, true},
		{spec.RawPointer, api.ValueTypeI32, true},
		{spec.StructByValue, api.ValueTypeI32, true},
		{spec.Void, 0, false},
		{spec.TagInvalid, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			got, ok := Classify(scalar(tt.tag, "x"))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportName(t *testing.T) {
	plain := spec.Declaration{Name: "draw", Return: scalar(spec.Void, ""), Params: []spec.Parameter{param("p", spec.RawPointer)}}
	assert.False(t, NeedsIndirection(plain))
	assert.Equal(t, "draw", ImportName(plain))

	byArg := spec.Declaration{Name: "fill", Return: scalar(spec.Void, ""), Params: []spec.Parameter{param("r", spec.StructByValue)}}
	assert.True(t, NeedsIndirection(byArg))
	assert.Equal(t, "fill_argptr_stub", ImportName(byArg))

	byRet := spec.Declaration{Name: "make", Return: scalar(spec.StructByValue, "vec")}
	assert.True(t, NeedsIndirection(byRet))
	assert.Equal(t, "make_argptr_stub", ImportName(byRet))
}

func TestGoValueType(t *testing.T) {
	assert.Equal(t, "api.ValueTypeI32", GoValueType(api.ValueTypeI32))
	assert.Equal(t, "api.ValueTypeI64", GoValueType(api.ValueTypeI64))
	assert.Equal(t, "api.ValueTypeF32", GoValueType(api.ValueTypeF32))
	assert.Equal(t, "api.ValueTypeF64", GoValueType(api.ValueTypeF64))
	assert.Equal(t, "api.ValueType(0x7b)", GoValueType(api.ValueType(0x7b)))
}

func TestComputeSignature_Scalars(t *testing.T) {
	// Non-indirect declarations keep one slot per parameter.
	d := spec.Declaration{
		Name:   "mix",
		Return: scalar(spec.Float64, "double"),
		Params: []spec.Parameter{
			param("a", spec.Int32),
			param("b", spec.Int64),
			param("c", spec.Float32),
			param("d", spec.Float64),
			param("e", spec.RawPointer),
		},
	}

	sig, err := ComputeSignature(d, DefaultConvention())
	require.NoError(t, err)
	assert.Equal(t, []api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeF32, api.ValueTypeF64, api.ValueTypeI32}, sig.Params)
	assert.Len(t, sig.Params, len(d.Params))
	assert.Equal(t, api.ValueTypeF64, sig.Return)
	assert.Equal(t, 1, sig.NumReturns)
}

func TestComputeSignature_StructReturn(t *testing.T) {
	d := spec.Declaration{
		Name:   "add",
		Return: scalar(spec.StructByValue, "vec"),
		Params: []spec.Parameter{param("a", spec.StructByValue), param("b", spec.StructByValue)},
	}

	sig, err := ComputeSignature(d, DefaultConvention())
	require.NoError(t, err)
	assert.Equal(t, []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}, sig.Params)
	assert.Equal(t, 0, sig.NumReturns)
}

func TestComputeSignature_Padding(t *testing.T) {
	d := spec.Declaration{Name: "tick", Return: scalar(spec.Void, "")}

	sig, err := ComputeSignature(d, DefaultConvention())
	require.NoError(t, err)
	assert.Equal(t, []api.ValueType{api.ValueTypeI32}, sig.Params)
	assert.Equal(t, api.ValueTypeI32, sig.Return)
	assert.Equal(t, 0, sig.NumReturns)

	sig, err = ComputeSignature(d, Convention{})
	require.NoError(t, err)
	assert.NotNil(t, sig.Params)
	assert.Empty(t, sig.Params)
	assert.Equal(t, api.ValueType(0), sig.Return)
	assert.Equal(t, 0, sig.NumReturns)
}

func TestComputeSignature_PaddingKeepsRealReturn(t *testing.T) {
	d := spec.Declaration{Name: "now", Return: scalar(spec.Int64, "i64")}

	sig, err := ComputeSignature(d, DefaultConvention())
	require.NoError(t, err)
	assert.Equal(t, []api.ValueType{api.ValueTypeI32}, sig.Params)
	assert.Equal(t, api.ValueTypeI64, sig.Return)
	assert.Equal(t, 1, sig.NumReturns)
}

func TestComputeSignature_Rejects(t *testing.T) {
	tests := []struct {
		name string
		decl spec.Declaration
	}{
		{"raw pointer return", spec.Declaration{Name: "d", Return: scalar(spec.RawPointer, "char*")}},
		{"invalid return", spec.Declaration{Name: "d", Return: scalar(spec.TagInvalid, "")}},
		{"void parameter", spec.Declaration{Name: "d", Return: scalar(spec.Void, ""), Params: []spec.Parameter{param("x", spec.Void)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSignature(tt.decl, DefaultConvention())
			var tagErr *spec.UnrecognizedTypeTagError
			assert.True(t, errors.As(err, &tagErr), "expected UnrecognizedTypeTagError, got %T", err)
		})
	}
}
