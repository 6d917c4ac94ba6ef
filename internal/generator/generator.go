// Package generator runs one binding batch: load a declaration list, lower
// it, and write the host and guest artifacts.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/woxQAQ/abigen/internal/abi"
	"github.com/woxQAQ/abigen/internal/bindgen"
	"github.com/woxQAQ/abigen/internal/emit"
	"github.com/woxQAQ/abigen/internal/spec"
	"go.uber.org/zap"
)

// DefaultImportModule is used when Options.ImportModule is empty.
const DefaultImportModule = "env"

// Options describes one run.
type Options struct {
	APIName  string
	SpecPath string

	// HostOut defaults to bindgen_<api>_host.go.
	HostOut string
	// GuestOut defaults to bindgen_<api>_guest_stubs.c.
	GuestOut     string
	GuestInclude string

	// HostPackage defaults to the name of HostOut's directory.
	HostPackage  string
	ImportModule string
	ImportMacro  string

	PadEmptySignatures bool
}

// Result summarizes a successful run.
type Result struct {
	Declarations int
	HostPath     string
	// GuestPath is empty when no guest stub was needed.
	GuestPath  string
	GuestStubs int
}

// Generator writes binding artifacts.
type Generator struct {
	logger *zap.Logger
}

// New creates a generator.
func New(logger *zap.Logger) *Generator {
	return &Generator{
		logger: logger.With(zap.String("component", "generator")),
	}
}

// Run generates the artifacts described by opts. Nothing is written unless
// the whole declaration list lowers cleanly, and any artifact written
// before a failure is removed.
func (g *Generator) Run(opts Options) (*Result, error) {
	opts, err := withDefaults(opts)
	if err != nil {
		return nil, err
	}

	decls, err := spec.Load(opts.SpecPath)
	if err != nil {
		return nil, err
	}

	batch, err := bindgen.Build(opts.APIName, decls, abi.Convention{PadEmpty: opts.PadEmptySignatures})
	if err != nil {
		return nil, err
	}
	for i := range batch.Units {
		u := &batch.Units[i]
		g.logger.Debug("Declaration lowered",
			zap.String("name", u.Decl.Name),
			zap.String("import", u.ImportName),
			zap.Bool("indirect", u.Indirect),
			zap.Bool("stub", u.Guest != nil),
			zap.Int("params", len(u.Signature.Params)),
		)
	}

	source := filepath.Base(opts.SpecPath)

	var host bytes.Buffer
	if err := emit.RenderHost(&host, batch, emit.HostOptions{Package: opts.HostPackage, Source: source}); err != nil {
		return nil, err
	}

	hostSink := emit.NewLazyFile(opts.HostOut, nil)
	guestSink := emit.NewLazyFile(opts.GuestOut, emit.GuestHeader(source, opts.GuestInclude))

	stubs, err := writeArtifacts(hostSink, guestSink, host.Bytes(), batch, emit.GuestOptions{
		ImportModule: opts.ImportModule,
		ImportMacro:  opts.ImportMacro,
	})
	if err != nil {
		if derr := errors.Join(hostSink.Discard(), guestSink.Discard()); derr != nil {
			g.logger.Warn("Failed to remove partial output", zap.Error(derr))
		}
		return nil, err
	}

	res := &Result{
		Declarations: len(decls),
		HostPath:     hostSink.Path(),
		GuestStubs:   stubs,
	}
	if guestSink.Opened() {
		res.GuestPath = guestSink.Path()
	}

	g.logger.Info("Bindings generated",
		zap.String("api", opts.APIName),
		zap.Int("declarations", res.Declarations),
		zap.Int("guest_stubs", res.GuestStubs),
		zap.String("host_out", res.HostPath),
		zap.String("guest_out", res.GuestPath),
	)
	return res, nil
}

func writeArtifacts(hostSink, guestSink *emit.LazyFile, host []byte, b *bindgen.Batch, gopts emit.GuestOptions) (int, error) {
	if _, err := hostSink.Write(host); err != nil {
		return 0, err
	}
	if err := hostSink.Close(); err != nil {
		return 0, err
	}

	n, err := emit.RenderGuest(guestSink, b, gopts)
	if err != nil {
		return n, err
	}
	if err := guestSink.Close(); err != nil {
		return n, err
	}
	return n, nil
}

func withDefaults(opts Options) (Options, error) {
	if opts.APIName == "" {
		return opts, errors.New("api name is required")
	}
	if opts.SpecPath == "" {
		return opts, errors.New("spec path is required")
	}
	if opts.HostOut == "" {
		opts.HostOut = fmt.Sprintf("bindgen_%s_host.go", opts.APIName)
	}
	if opts.GuestOut == "" {
		opts.GuestOut = fmt.Sprintf("bindgen_%s_guest_stubs.c", opts.APIName)
	}
	if opts.ImportModule == "" {
		opts.ImportModule = DefaultImportModule
	}
	if opts.HostPackage == "" {
		pkg, err := PackageFor(opts.HostOut)
		if err != nil {
			return opts, err
		}
		opts.HostPackage = pkg
	}
	if !token.IsIdentifier(opts.HostPackage) {
		return opts, fmt.Errorf("invalid host package name '%s'", opts.HostPackage)
	}
	return opts, nil
}

// PackageFor derives a Go package name from the directory holding path:
// lower-cased, with characters that cannot appear in an identifier
// dropped.
func PackageFor(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve '%s': %w", path, err)
	}
	dir := filepath.Base(filepath.Dir(abs))

	var sb strings.Builder
	for _, r := range strings.ToLower(dir) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		}
	}
	name := sb.String()
	if !token.IsIdentifier(name) {
		return "", fmt.Errorf("cannot derive a package name from directory '%s'; set host.package", dir)
	}
	return name, nil
}
