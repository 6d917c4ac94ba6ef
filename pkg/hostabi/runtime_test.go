package hostabi

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRuntime(t *testing.T, logger *zap.Logger, config *RuntimeConfig) *Runtime {
	t.Helper()
	ctx := context.Background()
	runtime, err := NewRuntime(ctx, logger, config)
	require.NoError(t, err)
	require.NotNil(t, runtime)
	t.Cleanup(func() { runtime.Close(ctx) })
	return runtime
}

func TestNewRuntime(t *testing.T) {
	runtime := newTestRuntime(t, zaptest.NewLogger(t), nil)

	assert.NoError(t, runtime.Close(context.Background()))
}

func TestRuntimeCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	runtime := newTestRuntime(t, zaptest.NewLogger(t), nil)

	assert.NoError(t, runtime.Close(ctx), "first close")
	assert.NoError(t, runtime.Close(ctx), "second close")
}

func TestDefaultRuntimeConfig(t *testing.T) {
	assert.Equal(t, uint32(256), DefaultRuntimeConfig().MemoryPages)
}

func TestRuntimeConfiguration(t *testing.T) {
	runtime := newTestRuntime(t, zaptest.NewLogger(t), &RuntimeConfig{MemoryPages: 128})

	assert.Equal(t, uint32(128), runtime.config.MemoryPages)
}

func TestRuntimeIsClosed(t *testing.T) {
	runtime := newTestRuntime(t, zaptest.NewLogger(t), nil)
	assert.False(t, runtime.IsClosed(), "runtime should not be closed initially")

	require.NoError(t, runtime.Close(context.Background()))
	assert.True(t, runtime.IsClosed(), "runtime should be closed after Close()")
}

func TestRuntimeInstantiateInvalidModule(t *testing.T) {
	runtime := newTestRuntime(t, zaptest.NewLogger(t), nil)

	_, err := runtime.Instantiate(context.Background(), "garbage", []byte("not wasm"))

	var compErr *CompilationError
	require.True(t, errors.As(err, &compErr), "expected CompilationError, got %T (%v)", err, err)
	assert.Equal(t, "garbage", compErr.ModuleName)
}

// Package log lines carry a single component field even when the package
// was created by a runtime.
func TestLinkedPackageLogsOneComponent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	runtime := newTestRuntime(t, zap.New(core), nil)

	_, err := runtime.Link(context.Background(), "env", linkDouble)
	require.NoError(t, err)

	entries := logs.FilterMessage("Import registered").All()
	require.Len(t, entries, 1)

	var components []string
	for _, f := range entries[0].Context {
		if f.Key == "component" {
			components = append(components, f.String)
		}
	}
	assert.Equal(t, []string{"hostabi-package"}, components)
}

func TestCompilationError(t *testing.T) {
	err := &CompilationError{ModuleName: "test", Err: errTest}

	assert.EqualError(t, err, "failed to compile Wasm module 'test': test error")
	assert.ErrorIs(t, err, errTest)
}

func TestInstantiationError(t *testing.T) {
	err := &InstantiationError{ModuleName: "test", Err: errTest}

	assert.EqualError(t, err, "failed to instantiate module 'test': test error")
}

func TestMemoryAccessError(t *testing.T) {
	err := &MemoryAccessError{
		Operation: "resolve",
		Address:   16,
		Length:    8,
		Err:       ErrOutOfBounds,
	}

	assert.EqualError(t, err, "memory access failed (op=resolve, addr=16, len=8): range out of bounds")
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRegistrationError(t *testing.T) {
	err := &RegistrationError{
		Package: "env",
		Name:    "draw",
		Code:    ErrDuplicateImport,
	}

	assert.EqualError(t, err, "failed to register import 'draw' in package 'env': duplicate import")
}

var errTest = errors.New("test error")
