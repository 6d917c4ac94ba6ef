// Package emit renders binding batches as source text.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"strings"

	"github.com/woxQAQ/abigen/internal/abi"
	"github.com/woxQAQ/abigen/internal/bindgen"
	"github.com/woxQAQ/abigen/internal/spec"
)

// RuntimeImport is the package generated host code links against.
const RuntimeImport = "github.com/woxQAQ/abigen/pkg/hostabi"

// HostOptions controls the host artifact.
type HostOptions struct {
	// Package is the Go package clause.
	Package string
	// Source names the input in the generated-code header.
	Source string
}

// RenderHost writes the trampolines and the registration routine of b as a
// gofmt-clean Go file.
func RenderHost(w io.Writer, b *bindgen.Batch, opts HostOptions) error {
	linkName, err := bindgen.LinkFuncName(b.API)
	if err != nil {
		return err
	}

	p := &printer{}
	p.printf("// Code generated by abigen from %s. DO NOT EDIT.\n\n", opts.Source)
	p.printf("package %s\n\n", opts.Package)
	p.printf("import (\n")
	if b.HasBodies() {
		p.printf("\t\"context\"\n\n")
	}
	if len(b.Units) > 0 {
		p.printf("\t\"github.com/tetratelabs/wazero/api\"\n")
	}
	p.printf("\t%q\n", RuntimeImport)
	p.printf(")\n")

	for i := range b.Units {
		u := &b.Units[i]
		p.printf("\n")
		if err := hostTrampoline(p, u); err != nil {
			return err
		}
	}

	p.printf("\n// %s registers the %s imports with pkg. Nothing is registered\n", linkName, b.API)
	p.printf("// unless every import is accepted.\n")
	p.printf("func %s(pkg *hostabi.Package) error {\n", linkName)
	if len(b.Units) == 0 {
		p.printf("\treturn pkg.AddFunctions()\n}\n")
	} else {
		p.printf("\treturn pkg.AddFunctions(\n")
		for i := range b.Units {
			p.printf("\t\t%s,\n", importLiteral(&b.Units[i]))
		}
		p.printf("\t)\n}\n")
	}

	src, err := format.Source(p.buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format host bindings: %w", err)
	}
	_, err = w.Write(src)
	return err
}

func hostTrampoline(p *printer, u *bindgen.Unit) error {
	tr := &u.Trampoline
	if !tr.HasBody {
		p.printf("// %s is hand-written; it serves the %s import.\n", tr.Name, u.ImportName)
		p.printf("var _ api.GoModuleFunc = %s\n", tr.Name)
		return nil
	}

	p.printf("// %s adapts %s to the %s import.\n", tr.Name, tr.Native, u.ImportName)
	p.printf("func %s(ctx context.Context, mod api.Module, stack []uint64) {\n", tr.Name)

	args := make([]string, 0, len(tr.Args))
	for i, a := range tr.Args {
		expr, err := decodeExpr(u.Decl.Name, a)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("arg%d", i)
		p.printf("\t%s := %s\n", name, expr)
		args = append(args, name)
	}

	call := fmt.Sprintf("%s(%s)", tr.Native, strings.Join(args, ", "))
	switch r := tr.Result; r.Tag {
	case spec.Void:
		p.printf("\t%s\n", call)
	case spec.StructByValue:
		p.printf("\tret := %s\n", call)
		p.printf("\thostabi.MustStore(mod, api.DecodeU32(stack[%d]), ret)\n", r.Slot)
	case spec.Int32, spec.Int64, spec.Float32, spec.Float64:
		p.printf("\tret := %s\n", call)
		p.printf("\tstack[%d] = %s\n", r.Slot, encodeExpr(r))
	default:
		return &spec.UnrecognizedTypeTagError{Declaration: u.Decl.Name, Tag: r.Tag.Letter()}
	}
	p.printf("}\n")
	return nil
}

// decodeExpr reads one argument from its incoming slot.
func decodeExpr(decl string, a bindgen.ArgDecoder) (string, error) {
	slot := fmt.Sprintf("stack[%d]", a.Slot)
	switch a.Tag {
	case spec.Int32:
		return convert(a.HostType, "int32", "api.DecodeI32("+slot+")"), nil
	case spec.Int64:
		return convert(a.HostType, "int64", "int64("+slot+")"), nil
	case spec.Float32:
		return convert(a.HostType, "float32", "api.DecodeF32("+slot+")"), nil
	case spec.Float64:
		return convert(a.HostType, "float64", "api.DecodeF64("+slot+")"), nil
	case spec.RawPointer:
		return "hostabi.MustResolveRange(mod, api.DecodeU32(" + slot + "), 1)", nil
	case spec.StructByValue:
		return "hostabi.MustLoad[" + a.HostType + "](mod, api.DecodeU32(" + slot + "))", nil
	}
	return "", &spec.UnrecognizedTypeTagError{Declaration: decl, Parameter: a.Param, Tag: a.Tag.Letter()}
}

func encodeExpr(r bindgen.ResultEncoder) string {
	switch r.Tag {
	case spec.Int32:
		return "api.EncodeI32(" + convert("int32", r.HostType, "ret") + ")"
	case spec.Int64:
		return "api.EncodeI64(" + convert("int64", r.HostType, "ret") + ")"
	case spec.Float32:
		return "api.EncodeF32(" + convert("float32", r.HostType, "ret") + ")"
	}
	return "api.EncodeF64(" + convert("float64", r.HostType, "ret") + ")"
}

// convert wraps expr, of type from, in a conversion to to when they differ.
func convert(to, from, expr string) string {
	if to == from || to == "" {
		return expr
	}
	return to + "(" + expr + ")"
}

func importLiteral(u *bindgen.Unit) string {
	params := make([]string, len(u.Signature.Params))
	for i, vt := range u.Signature.Params {
		params[i] = abi.GoValueType(vt)
	}
	lit := fmt.Sprintf("hostabi.Import{Name: %q, Func: api.GoModuleFunc(%s), Params: []api.ValueType{%s}",
		u.ImportName, u.Trampoline.Name, strings.Join(params, ", "))
	if u.Signature.Return != 0 {
		lit += ", Return: " + abi.GoValueType(u.Signature.Return)
	}
	if u.Signature.NumReturns != 0 {
		lit += fmt.Sprintf(", NumReturns: %d", u.Signature.NumReturns)
	}
	return lit + "}"
}

type printer struct {
	buf bytes.Buffer
}

func (p *printer) printf(format string, args ...any) {
	fmt.Fprintf(&p.buf, format, args...)
}
