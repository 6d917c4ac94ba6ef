package bindgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/abigen/internal/abi"
	"github.com/woxQAQ/abigen/internal/spec"
)

func vec2() spec.TypeDescriptor {
	return spec.TypeDescriptor{Tag: spec.StructByValue, NativeTypeName: "geom_vec2", NativeTypeNameOverride: "Vec2"}
}

func TestBuild_Scalar(t *testing.T) {
	d := spec.Declaration{
		Name:         "geom_add_i32",
		NativeName:   "addI32",
		Return:       spec.TypeDescriptor{Tag: spec.Int32, NativeTypeName: "int"},
		Params:       []spec.Parameter{{Name: "x", Type: spec.TypeDescriptor{Tag: spec.Int32, NativeTypeName: "int"}}},
		GenerateStub: true,
	}

	b, err := Build("geom", []spec.Declaration{d}, abi.DefaultConvention())
	require.NoError(t, err)
	require.Len(t, b.Units, 1)

	u := b.Units[0]
	assert.False(t, u.Indirect)
	assert.Equal(t, "geom_add_i32", u.ImportName)
	assert.Nil(t, u.Guest)
	assert.Empty(t, b.GuestStubs())
	assert.True(t, b.HasBodies())

	tr := u.Trampoline
	assert.Equal(t, "addI32Trampoline", tr.Name)
	assert.Equal(t, "addI32", tr.Native)
	assert.Equal(t, []ArgDecoder{{Param: "x", Slot: 0, Tag: spec.Int32, HostType: "int32"}}, tr.Args)
	assert.Equal(t, ResultEncoder{Tag: spec.Int32, HostType: "int32", Slot: 0}, tr.Result)
}

func TestBuild_StructReturnShiftsSlots(t *testing.T) {
	d := spec.Declaration{
		Name:         "geom_vec2_add",
		NativeName:   "vec2Add",
		Return:       vec2(),
		Params:       []spec.Parameter{{Name: "a", Type: vec2()}, {Name: "b", Type: vec2()}},
		GenerateStub: true,
	}

	b, err := Build("geom", []spec.Declaration{d}, abi.DefaultConvention())
	require.NoError(t, err)
	u := b.Units[0]

	assert.True(t, u.Indirect)
	assert.Equal(t, "geom_vec2_add_argptr_stub", u.ImportName)
	assert.Equal(t, []api.ValueType{api.ValueTypeI32, api.ValueTypeI32, api.ValueTypeI32}, u.Signature.Params)
	assert.Equal(t, 0, u.Signature.NumReturns)

	require.Len(t, u.Trampoline.Args, 2)
	assert.Equal(t, 1, u.Trampoline.Args[0].Slot)
	assert.Equal(t, 2, u.Trampoline.Args[1].Slot)
	assert.Equal(t, "Vec2", u.Trampoline.Args[0].HostType)
	assert.Equal(t, ResultEncoder{Tag: spec.StructByValue, HostType: "Vec2", Slot: 0}, u.Trampoline.Result)

	g := u.Guest
	require.NotNil(t, g)
	assert.Equal(t, "geom_vec2_add", g.Name)
	assert.Equal(t, "geom_vec2_add_argptr_stub", g.HiddenName)
	assert.Equal(t, "geom_vec2", g.ReturnType)
	assert.Equal(t, "void", g.HiddenReturnType)
	assert.True(t, g.StructReturn)
	assert.Equal(t, []GuestParam{{"a", "geom_vec2"}, {"b", "geom_vec2"}}, g.Params)
	assert.Equal(t, []GuestParam{{GuestResultArg, "geom_vec2*"}, {"a", "geom_vec2*"}, {"b", "geom_vec2*"}}, g.HiddenParams)
	assert.Equal(t, []string{"&" + GuestResultVar, "&a", "&b"}, g.CallArgs)
}

func TestBuild_MixedStructArguments(t *testing.T) {
	d := spec.Declaration{
		Name:       "draw_sprite",
		NativeName: "drawSprite",
		Return:     spec.TypeDescriptor{Tag: spec.Void, NativeTypeName: "void"},
		Params: []spec.Parameter{
			{Name: "id", Type: spec.TypeDescriptor{Tag: spec.Int32, NativeTypeName: "int"}},
			{Name: "at", Type: vec2()},
			{Name: "name", Type: spec.TypeDescriptor{Tag: spec.RawPointer, NativeTypeName: "const char*"}},
		},
		GenerateStub: true,
	}

	b, err := Build("draw", []spec.Declaration{d}, abi.DefaultConvention())
	require.NoError(t, err)
	g := b.Units[0].Guest
	require.NotNil(t, g)

	assert.True(t, g.VoidReturn)
	assert.Equal(t, "void", g.HiddenReturnType)
	assert.Equal(t, []GuestParam{{"id", "int"}, {"at", "geom_vec2*"}, {"name", "const char*"}}, g.HiddenParams)
	assert.Equal(t, []string{"id", "&at", "name"}, g.CallArgs)

	assert.Equal(t, 0, b.Units[0].Trampoline.Args[0].Slot)
	assert.Equal(t, "[]byte", b.Units[0].Trampoline.Args[2].HostType)
}

func TestBuild_HandWritten(t *testing.T) {
	d := spec.Declaration{
		Name:       "geom_rect_area",
		NativeName: "rectArea",
		Return:     spec.TypeDescriptor{Tag: spec.Float64, NativeTypeName: "double"},
		Params:     []spec.Parameter{{Name: "r", Type: vec2()}},
	}

	b, err := Build("geom", []spec.Declaration{d}, abi.DefaultConvention())
	require.NoError(t, err)
	u := b.Units[0]

	assert.False(t, u.Trampoline.HasBody)
	assert.Nil(t, u.Guest)
	assert.Equal(t, "geom_rect_area_argptr_stub", u.ImportName)
	assert.False(t, b.HasBodies())
	assert.Empty(t, b.GuestStubs())
}

func TestBuild_DuplicateImport(t *testing.T) {
	void := spec.TypeDescriptor{Tag: spec.Void}
	decls := []spec.Declaration{
		{Name: "a", NativeName: "a", Return: void, GenerateStub: true},
		{Name: "b", NativeName: "b", Return: void, GenerateStub: true},
		{Name: "a", NativeName: "a2", Return: void, GenerateStub: true},
	}

	_, err := Build("x", decls, abi.DefaultConvention())

	var dupErr *DuplicateImportError
	require.True(t, errors.As(err, &dupErr), "expected DuplicateImportError, got %T", err)
	assert.Equal(t, "a", dupErr.Name)
	assert.Equal(t, 0, dupErr.First)
	assert.Equal(t, 2, dupErr.Second)
	assert.Equal(t, "import 'a' is declared twice (declarations 0 and 2)", dupErr.Error())
}

func TestBuild_UnrecognizedTag(t *testing.T) {
	decls := []spec.Declaration{{
		Name:         "bad",
		NativeName:   "bad",
		Return:       spec.TypeDescriptor{Tag: spec.Void},
		Params:       []spec.Parameter{{Name: "x", Type: spec.TypeDescriptor{Tag: spec.Tag(99)}}},
		GenerateStub: true,
	}}

	_, err := Build("x", decls, abi.DefaultConvention())

	var tagErr *spec.UnrecognizedTypeTagError
	require.True(t, errors.As(err, &tagErr))
	assert.Equal(t, "x", tagErr.Parameter)
}

func TestBuild_Empty(t *testing.T) {
	b, err := Build("none", nil, abi.DefaultConvention())
	require.NoError(t, err)
	assert.Empty(t, b.Units)
	assert.False(t, b.HasBodies())
}

func TestLinkFuncName(t *testing.T) {
	tests := []struct {
		api     string
		want    string
		wantErr bool
	}{
		{"geom", "LinkGeomAPI", false},
		{"canvas_api", "LinkCanvasApiAPI", false},
		{"orca-gles", "LinkOrcaGlesAPI", false},
		{"2d", "LinkX2dAPI", false},
		{"--", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.api, func(t *testing.T) {
			got, err := LinkFuncName(tt.api)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_SharedNativeRejected(t *testing.T) {
	i32 := spec.TypeDescriptor{Tag: spec.Int32, NativeTypeName: "int"}
	decls := []spec.Declaration{
		{Name: "add_one", NativeName: "addOne", Return: i32, Params: []spec.Parameter{{Name: "x", Type: i32}}, GenerateStub: true},
		{Name: "add_one_compat", NativeName: "addOne", Return: i32, Params: []spec.Parameter{{Name: "x", Type: i32}}, GenerateStub: true},
	}

	_, err := Build("compat", decls, abi.DefaultConvention())

	var dupErr *DuplicateTrampolineError
	require.True(t, errors.As(err, &dupErr), "expected DuplicateTrampolineError, got %T (%v)", err, err)
	assert.Equal(t, "addOneTrampoline", dupErr.Name)
	assert.Equal(t, "addOne", dupErr.Native)
	assert.Equal(t, "add_one", dupErr.First)
	assert.Equal(t, "add_one_compat", dupErr.Second)
}

func TestBuild_InvalidNativeNames(t *testing.T) {
	for _, native := range []string{"stack", "mod", "ctx", "ret", "api", "hostabi", "context", "arg0", "arg12", "geom.add", "func", ""} {
		t.Run(native, func(t *testing.T) {
			d := spec.Declaration{Name: "d", NativeName: native, Return: spec.TypeDescriptor{Tag: spec.Void}, GenerateStub: true}

			_, err := Build("x", []spec.Declaration{d}, abi.DefaultConvention())

			var nameErr *InvalidNativeNameError
			require.True(t, errors.As(err, &nameErr), "expected InvalidNativeNameError, got %T (%v)", err, err)
			assert.Equal(t, native, nameErr.Native)
			assert.Equal(t, "d", nameErr.Declaration)
		})
	}
}

func TestBuild_NativeNamesNearReservedAccepted(t *testing.T) {
	for _, native := range []string{"stacker", "args", "argMax", "retry", "api2"} {
		d := spec.Declaration{Name: "d_" + native, NativeName: native, Return: spec.TypeDescriptor{Tag: spec.Void}, GenerateStub: true}
		_, err := Build("x", []spec.Declaration{d}, abi.DefaultConvention())
		assert.NoError(t, err, native)
	}
}
