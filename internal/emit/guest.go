package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/woxQAQ/abigen/internal/bindgen"
)

// GuestOptions controls the guest artifact.
type GuestOptions struct {
	// ImportModule is the wasm import module of the hidden imports.
	ImportModule string
	// ImportMacro, when set, wraps the hidden import's name instead of
	// the clang import attributes, as in "void MACRO(name) (args);".
	ImportMacro string
}

// GuestHeader is written once when the guest artifact is created.
func GuestHeader(source, include string) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated by abigen from %s. DO NOT EDIT.\n\n", source)
	if include != "" {
		// Header names take no escapes, so the path is written as is.
		sb.WriteString("#include \"" + include + "\"\n\n")
	}
	return []byte(sb.String())
}

// RenderGuest writes one forwarding stub per guest stub in b. Nothing is
// written when b has none, so a lazily opened w is never created. It
// returns the number of stubs written.
func RenderGuest(w io.Writer, b *bindgen.Batch, opts GuestOptions) (int, error) {
	n := 0
	for _, g := range b.GuestStubs() {
		var sb strings.Builder
		if n > 0 {
			sb.WriteString("\n")
		}
		guestStub(&sb, g, opts)
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func guestStub(sb *strings.Builder, g *bindgen.GuestStub, opts GuestOptions) {
	hidden := paramList(g.HiddenParams)
	if opts.ImportMacro != "" {
		fmt.Fprintf(sb, "%s %s(%s) (%s);\n\n", g.HiddenReturnType, opts.ImportMacro, g.HiddenName, hidden)
	} else {
		fmt.Fprintf(sb, "__attribute__((import_module(%q), import_name(%q)))\n", opts.ImportModule, g.HiddenName)
		fmt.Fprintf(sb, "%s %s(%s);\n\n", g.HiddenReturnType, g.HiddenName, hidden)
	}

	fmt.Fprintf(sb, "%s %s(%s)\n{\n", g.ReturnType, g.Name, paramList(g.Params))
	call := fmt.Sprintf("%s(%s)", g.HiddenName, strings.Join(g.CallArgs, ", "))
	switch {
	case g.StructReturn:
		fmt.Fprintf(sb, "\t%s %s;\n", g.ReturnType, bindgen.GuestResultVar)
		fmt.Fprintf(sb, "\t%s;\n", call)
		fmt.Fprintf(sb, "\treturn(%s);\n", bindgen.GuestResultVar)
	case g.VoidReturn:
		fmt.Fprintf(sb, "\t%s;\n", call)
	default:
		fmt.Fprintf(sb, "\t%s %s = %s;\n", g.ReturnType, bindgen.GuestResultVar, call)
		fmt.Fprintf(sb, "\treturn(%s);\n", bindgen.GuestResultVar)
	}
	sb.WriteString("}\n")
}

func paramList(params []bindgen.GuestParam) string {
	if len(params) == 0 {
		return "void"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type + " " + p.Name
	}
	return strings.Join(parts, ", ")
}
