package hostabi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// LinkFunc registers one generated API with a package. Generated
// Link<Name>API functions have this shape.
type LinkFunc func(pkg *Package) error

// Runtime owns a wazero runtime, the host packages linked into it and the
// guest modules instantiated against them.
type Runtime struct {
	// wazero runtime
	runtime wazero.Runtime

	// Host packages by module name
	packages sync.Map // map[string]*Package

	// Configuration
	config *RuntimeConfig

	// Logger
	logger     *zap.Logger
	// Unscoped logger handed to packages, which add their own component.
	baseLogger *zap.Logger

	// Shutdown management
	closeOnce sync.Once
	closed    chan struct{}
}

// RuntimeConfig holds runtime configuration.
type RuntimeConfig struct {
	// Memory limit for guest modules (in pages, 64KB each)
	// Default: 256 pages = 16MB
	MemoryPages uint32
}

// NewRuntime creates a wazero runtime with the given limits.
func NewRuntime(ctx context.Context, logger *zap.Logger, config *RuntimeConfig) (*Runtime, error) {
	if config == nil {
		config = DefaultRuntimeConfig()
	}

	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(config.MemoryPages))

	runtime := &Runtime{
		runtime:    r,
		config:     config,
		logger:     logger.With(zap.String("component", "hostabi-runtime")),
		baseLogger: logger,
		closed:     make(chan struct{}),
	}

	logger.Info("Wasm runtime initialized",
		zap.Uint32("memory_pages", config.MemoryPages),
	)

	return runtime, nil
}

// DefaultRuntimeConfig returns sensible defaults.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		MemoryPages: 256, // 16MB
	}
}

// Link registers every linker's imports in one host module named
// moduleName and instantiates it. Guests must be instantiated afterwards.
func (r *Runtime) Link(ctx context.Context, moduleName string, linkers ...LinkFunc) (*Package, error) {
	if _, exists := r.packages.Load(moduleName); exists {
		return nil, fmt.Errorf("host module '%s' is already linked", moduleName)
	}

	pkg := NewPackage(r.runtime, moduleName, r.baseLogger)
	for _, link := range linkers {
		if err := link(pkg); err != nil {
			return nil, fmt.Errorf("failed to link host module '%s': %w", moduleName, err)
		}
	}

	if _, err := pkg.Instantiate(ctx); err != nil {
		return nil, err
	}
	r.packages.Store(moduleName, pkg)

	return pkg, nil
}

// Package returns a linked host package.
func (r *Runtime) Package(moduleName string) (*Package, bool) {
	if val, ok := r.packages.Load(moduleName); ok {
		if pkg, ok := val.(*Package); ok {
			return pkg, true
		}
	}
	return nil, false
}

// Instantiate compiles wasmBytes and instantiates it as name.
func (r *Runtime) Instantiate(ctx context.Context, name string, wasmBytes []byte) (api.Module, error) {
	r.logger.Info("Compiling Wasm module",
		zap.String("module", name),
		zap.Int("size_bytes", len(wasmBytes)),
	)

	startTime := time.Now()

	compiled, err := r.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, &CompilationError{ModuleName: name, Err: err}
	}

	mod, err := r.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, &InstantiationError{ModuleName: name, Err: err}
	}

	r.logger.Info("Module instantiated successfully",
		zap.String("module", name),
		zap.Duration("duration", time.Since(startTime)),
	)

	return mod, nil
}

// Close gracefully shuts down the runtime.
// Safe to call multiple times (idempotent).
func (r *Runtime) Close(ctx context.Context) error {
	var err error
	r.closeOnce.Do(func() {
		r.logger.Info("Shutting down Wasm runtime")

		// Closing the runtime closes every module instantiated in it.
		err = r.runtime.Close(ctx)

		close(r.closed)
		r.logger.Info("Wasm runtime shutdown complete")
	})

	return err
}

// IsClosed returns whether the runtime has been closed.
func (r *Runtime) IsClosed() bool {
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}
