// Package hostabi is the host-side runtime generated bindings link
// against. It resolves guest offsets to host memory and registers
// trampolines as wazero host functions.
package hostabi

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
)

// Import is one host function offered to guests.
type Import struct {
	Name   string
	Func   api.GoModuleFunction
	Params []api.ValueType
	// Return is read only when NumReturns is 1.
	Return     api.ValueType
	NumReturns int
}

// Package collects imports into one wazero host module.
type Package struct {
	mu           sync.Mutex
	name         string
	builder      wazero.HostModuleBuilder
	names        map[string]struct{}
	order        []string
	instantiated bool
	logger       *zap.Logger
}

// NewPackage creates an empty package that will instantiate as the host
// module name in r.
func NewPackage(r wazero.Runtime, name string, logger *zap.Logger) *Package {
	return &Package{
		name:    name,
		builder: r.NewHostModuleBuilder(name),
		names:   make(map[string]struct{}),
		logger:  logger.With(zap.String("component", "hostabi-package"), zap.String("package", name)),
	}
}

// Name returns the host module name.
func (p *Package) Name() string {
	return p.name
}

// AddFunction registers a single import.
func (p *Package) AddFunction(fn api.GoModuleFunction, name string, params []api.ValueType, ret api.ValueType, numReturns int) error {
	return p.AddFunctions(Import{Name: name, Func: fn, Params: params, Return: ret, NumReturns: numReturns})
}

// AddFunctions registers imports in order. Every import is checked before
// any is added, so on error the package is unchanged.
func (p *Package) AddFunctions(imports ...Import) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	batch := make(map[string]struct{}, len(imports))
	for _, imp := range imports {
		if err := p.check(imp, batch); err != nil {
			p.logger.Debug("Import rejected",
				zap.String("name", imp.Name),
				zap.Stringer("code", err.Code),
			)
			return err
		}
		batch[imp.Name] = struct{}{}
	}

	for _, imp := range imports {
		p.builder.NewFunctionBuilder().
			WithGoModuleFunction(imp.Func, imp.Params, results(imp)).
			Export(imp.Name)
		p.names[imp.Name] = struct{}{}
		p.order = append(p.order, imp.Name)

		p.logger.Debug("Import registered",
			zap.String("name", imp.Name),
			zap.Int("params", len(imp.Params)),
			zap.Int("returns", imp.NumReturns),
		)
	}
	return nil
}

func (p *Package) check(imp Import, batch map[string]struct{}) *RegistrationError {
	fail := func(code RegistrationCode) *RegistrationError {
		return &RegistrationError{Package: p.name, Name: imp.Name, Code: code}
	}
	if p.instantiated {
		return fail(ErrPackageInstantiated)
	}
	if imp.Name == "" {
		return fail(ErrEmptyName)
	}
	if imp.Func == nil {
		return fail(ErrNilFunction)
	}
	if imp.NumReturns < 0 || imp.NumReturns > 1 {
		return fail(ErrInvalidSignature)
	}
	if _, ok := p.names[imp.Name]; ok {
		return fail(ErrDuplicateImport)
	}
	if _, ok := batch[imp.Name]; ok {
		return fail(ErrDuplicateImport)
	}
	return nil
}

func results(imp Import) []api.ValueType {
	if imp.NumReturns == 0 {
		return []api.ValueType{}
	}
	return []api.ValueType{imp.Return}
}

// Names returns the registered import names in registration order.
func (p *Package) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Instantiate makes the package visible to guests. No imports can be added
// afterwards.
func (p *Package) Instantiate(ctx context.Context) (api.Module, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.instantiated {
		return nil, &RegistrationError{Package: p.name, Code: ErrPackageInstantiated}
	}
	mod, err := p.builder.Instantiate(ctx)
	if err != nil {
		return nil, &InstantiationError{ModuleName: p.name, Err: err}
	}
	p.instantiated = true

	p.logger.Info("Host package instantiated",
		zap.Int("imports", len(p.order)),
	)
	return mod, nil
}
