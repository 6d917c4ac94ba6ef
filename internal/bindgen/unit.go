// Package bindgen lowers declarations into emitted-unit records: one
// trampoline plan, one import entry and at most one guest stub per
// declaration. Rendering to text happens elsewhere.
package bindgen

import (
	"fmt"
	"go/token"
	"regexp"
	"strings"
	"unicode"

	"github.com/woxQAQ/abigen/internal/abi"
	"github.com/woxQAQ/abigen/internal/spec"
)

// Names of the locals the guest wrapper introduces.
const (
	GuestResultVar = "__ret"
	GuestResultArg = "__retArg"
)

// Batch is one generation run's worth of units, in declaration order.
type Batch struct {
	API   string
	Units []Unit
}

// Unit is everything emitted for a single declaration.
type Unit struct {
	Decl       spec.Declaration
	Indirect   bool
	ImportName string
	Signature  abi.Signature
	Trampoline Trampoline
	// Guest is nil when no guest stub is emitted.
	Guest *GuestStub
}

// Trampoline is the host function adapting the value stack to the native.
type Trampoline struct {
	Name   string
	Native string
	// HasBody is false for hand-written trampolines.
	HasBody bool
	Args    []ArgDecoder
	Result  ResultEncoder
}

// ArgDecoder reads one native argument from an incoming slot.
type ArgDecoder struct {
	Param    string
	Slot     int
	Tag      spec.Tag
	HostType string
}

// ResultEncoder describes where the native result goes. For a struct the
// slot holds the destination offset; for a scalar it is the outgoing slot.
type ResultEncoder struct {
	Tag      spec.Tag
	HostType string
	Slot     int
}

// GuestStub is a by-value wrapper forwarding to a pointer-passing import.
type GuestStub struct {
	Name       string
	HiddenName string
	// ReturnType is the wrapper's C return type.
	ReturnType string
	// HiddenReturnType is "void" for struct returns.
	HiddenReturnType string
	StructReturn     bool
	VoidReturn       bool
	Params           []GuestParam
	HiddenParams     []GuestParam
	// CallArgs are the expressions passed to the hidden import.
	CallArgs []string
}

// GuestParam is a C parameter.
type GuestParam struct {
	Name string
	Type string
}

// GuestStubs returns the units' guest stubs in order.
func (b *Batch) GuestStubs() []*GuestStub {
	var stubs []*GuestStub
	for i := range b.Units {
		if b.Units[i].Guest != nil {
			stubs = append(stubs, b.Units[i].Guest)
		}
	}
	return stubs
}

// HasBodies reports whether any trampoline is generated rather than
// hand-written.
func (b *Batch) HasBodies() bool {
	for i := range b.Units {
		if b.Units[i].Trampoline.HasBody {
			return true
		}
	}
	return false
}

// reservedIdents are names the generated host file declares or imports
// itself; a native with one of these names would be shadowed or clash.
var reservedIdents = map[string]bool{
	"ctx":     true,
	"mod":     true,
	"stack":   true,
	"ret":     true,
	"api":     true,
	"hostabi": true,
	"context": true,
}

var argIdent = regexp.MustCompile(`^arg[0-9]+$`)

// Build lowers decls into a batch. Import names and trampoline names must
// be unique.
func Build(api string, decls []spec.Declaration, conv abi.Convention) (*Batch, error) {
	b := &Batch{API: api, Units: make([]Unit, 0, len(decls))}
	imports := make(map[string]int, len(decls))
	trampolines := make(map[string]int, len(decls))

	for i, d := range decls {
		u, err := buildUnit(d, conv)
		if err != nil {
			return nil, err
		}
		if first, ok := imports[u.ImportName]; ok {
			return nil, &DuplicateImportError{Name: u.ImportName, First: first, Second: i}
		}
		if first, ok := trampolines[u.Trampoline.Name]; ok {
			return nil, &DuplicateTrampolineError{
				Name:   u.Trampoline.Name,
				Native: d.NativeName,
				First:  decls[first].Name,
				Second: d.Name,
			}
		}
		imports[u.ImportName] = i
		trampolines[u.Trampoline.Name] = i
		b.Units = append(b.Units, u)
	}
	return b, nil
}

func buildUnit(d spec.Declaration, conv abi.Convention) (Unit, error) {
	sig, err := abi.ComputeSignature(d, conv)
	if err != nil {
		return Unit{}, err
	}
	tr, err := buildTrampoline(d)
	if err != nil {
		return Unit{}, err
	}
	u := Unit{
		Decl:       d,
		Indirect:   abi.NeedsIndirection(d),
		ImportName: abi.ImportName(d),
		Signature:  sig,
		Trampoline: tr,
	}
	if u.Indirect && d.GenerateStub {
		u.Guest = buildGuestStub(d, u.ImportName)
	}
	return u, nil
}

func buildTrampoline(d spec.Declaration) (Trampoline, error) {
	if err := checkNative(d); err != nil {
		return Trampoline{}, err
	}
	tr := Trampoline{
		Name:    TrampolineName(d.NativeName),
		Native:  d.NativeName,
		HasBody: d.GenerateStub,
	}

	first := 0
	switch t := d.Return.Tag; {
	case t == spec.StructByValue:
		// Slot 0 carries the destination offset.
		tr.Result = ResultEncoder{Tag: t, HostType: d.Return.HostTypeName(), Slot: 0}
		first = 1
	case t.IsScalar():
		tr.Result = ResultEncoder{Tag: t, HostType: d.Return.HostTypeName(), Slot: 0}
	case t == spec.Void:
		tr.Result = ResultEncoder{Tag: t}
	default:
		return Trampoline{}, &spec.UnrecognizedTypeTagError{Declaration: d.Name, Tag: t.Letter()}
	}

	for i, p := range d.Params {
		switch t := p.Type.Tag; {
		case t.IsScalar(), t == spec.RawPointer, t == spec.StructByValue:
			tr.Args = append(tr.Args, ArgDecoder{
				Param:    p.Name,
				Slot:     first + i,
				Tag:      p.Type.Tag,
				HostType: p.Type.HostTypeName(),
			})
		default:
			return Trampoline{}, &spec.UnrecognizedTypeTagError{Declaration: d.Name, Parameter: p.Name, Tag: p.Type.Tag.Letter()}
		}
	}
	return tr, nil
}

// checkNative rejects native names the host file cannot call.
func checkNative(d spec.Declaration) error {
	n := d.NativeName
	switch {
	case !token.IsIdentifier(n):
		return &InvalidNativeNameError{Declaration: d.Name, Native: n, Reason: "not a Go identifier"}
	case reservedIdents[n], argIdent.MatchString(n):
		return &InvalidNativeNameError{Declaration: d.Name, Native: n, Reason: "clashes with a name used by the generated trampoline"}
	}
	return nil
}

func buildGuestStub(d spec.Declaration, hidden string) *GuestStub {
	g := &GuestStub{
		Name:             d.Name,
		HiddenName:       hidden,
		ReturnType:       d.Return.GuestTypeName(),
		HiddenReturnType: d.Return.GuestTypeName(),
		StructReturn:     d.Return.Tag == spec.StructByValue,
		VoidReturn:       d.Return.Tag == spec.Void,
	}
	if g.StructReturn {
		g.HiddenReturnType = "void"
		g.HiddenParams = append(g.HiddenParams, GuestParam{Name: GuestResultArg, Type: d.Return.GuestTypeName() + "*"})
		g.CallArgs = append(g.CallArgs, "&"+GuestResultVar)
	}
	for _, p := range d.Params {
		typ := p.Type.GuestTypeName()
		g.Params = append(g.Params, GuestParam{Name: p.Name, Type: typ})
		if p.Type.Tag == spec.StructByValue {
			g.HiddenParams = append(g.HiddenParams, GuestParam{Name: p.Name, Type: typ + "*"})
			g.CallArgs = append(g.CallArgs, "&"+p.Name)
			continue
		}
		g.HiddenParams = append(g.HiddenParams, GuestParam{Name: p.Name, Type: typ})
		g.CallArgs = append(g.CallArgs, p.Name)
	}
	return g
}

// TrampolineName is the Go identifier of the trampoline for native.
func TrampolineName(native string) string {
	return native + "Trampoline"
}

// LinkFuncName is the registration routine's name for api: "geom" gives
// "LinkGeomAPI", "canvas_api" gives "LinkCanvasApiAPI".
func LinkFuncName(api string) (string, error) {
	id := exportedIdent(api)
	if id == "" {
		return "", fmt.Errorf("api name '%s' has no identifier characters", api)
	}
	return "Link" + id + "API", nil
}

func exportedIdent(s string) string {
	var sb strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if sb.Len() == 0 && unicode.IsDigit(r) {
			sb.WriteRune('X')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
