package hostabi

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMemory is returned when the calling module has no linear memory.
	ErrNoMemory = errors.New("module has no memory")
	// ErrOutOfBounds is returned when a range falls outside linear memory.
	ErrOutOfBounds = errors.New("range out of bounds")
)

// MemoryAccessError occurs when a guest offset cannot be resolved.
type MemoryAccessError struct {
	Operation string
	Address   uint32
	Length    uint32
	Err       error
}

func (e *MemoryAccessError) Error() string {
	return fmt.Sprintf("memory access failed (op=%s, addr=%d, len=%d): %v",
		e.Operation, e.Address, e.Length, e.Err)
}

func (e *MemoryAccessError) Unwrap() error {
	return e.Err
}

// RegistrationCode classifies why an import was refused.
type RegistrationCode int

const (
	ErrDuplicateImport RegistrationCode = iota + 1
	ErrEmptyName
	ErrNilFunction
	ErrInvalidSignature
	ErrPackageInstantiated
)

func (c RegistrationCode) String() string {
	switch c {
	case ErrDuplicateImport:
		return "duplicate import"
	case ErrEmptyName:
		return "empty import name"
	case ErrNilFunction:
		return "nil function"
	case ErrInvalidSignature:
		return "invalid signature"
	case ErrPackageInstantiated:
		return "package already instantiated"
	}
	return fmt.Sprintf("registration code %d", int(c))
}

// RegistrationError occurs when an import cannot be added to a package.
type RegistrationError struct {
	Package string
	Name    string
	Code    RegistrationCode
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register import '%s' in package '%s': %s",
		e.Name, e.Package, e.Code)
}

// CompilationError occurs when guest module compilation fails
type CompilationError struct {
	ModuleName string
	Err        error
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("failed to compile Wasm module '%s': %v", e.ModuleName, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// InstantiationError occurs when module instantiation fails
type InstantiationError struct {
	ModuleName string
	Err        error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate module '%s': %v", e.ModuleName, e.Err)
}

func (e *InstantiationError) Unwrap() error {
	return e.Err
}
