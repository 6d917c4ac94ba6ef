package hostabi

import (
	"unsafe"

	"github.com/tetratelabs/wazero/api"
)

// Resolve maps a guest offset to a host-addressable view of exactly size
// bytes. The view aliases linear memory: writes are visible to the guest,
// and it is invalidated if the memory grows.
func Resolve(mod api.Module, offset, size uint32) ([]byte, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, &MemoryAccessError{Operation: "resolve", Address: offset, Length: size, Err: ErrNoMemory}
	}
	buf, ok := mem.Read(offset, size)
	if !ok {
		return nil, &MemoryAccessError{Operation: "resolve", Address: offset, Length: size, Err: ErrOutOfBounds}
	}
	return buf, nil
}

// ResolveRange maps a guest offset to a view running to the end of linear
// memory. At least minSize bytes must be addressable. Raw pointers resolve
// this way since the callee alone knows how far it will read.
func ResolveRange(mod api.Module, offset, minSize uint32) ([]byte, error) {
	mem := mod.Memory()
	if mem == nil {
		return nil, &MemoryAccessError{Operation: "resolve-range", Address: offset, Length: minSize, Err: ErrNoMemory}
	}
	size := mem.Size()
	if offset > size || size-offset < minSize {
		return nil, &MemoryAccessError{Operation: "resolve-range", Address: offset, Length: minSize, Err: ErrOutOfBounds}
	}
	buf, ok := mem.Read(offset, size-offset)
	if !ok {
		return nil, &MemoryAccessError{Operation: "resolve-range", Address: offset, Length: minSize, Err: ErrOutOfBounds}
	}
	return buf, nil
}

// Load copies a T out of linear memory at offset.
//
// T must have the guest's wasm32 layout: fixed-size fields only, no
// pointers, slices, strings or ints of platform width.
func Load[T any](mod api.Module, offset uint32) (T, error) {
	var v T
	buf, err := Resolve(mod, offset, uint32(unsafe.Sizeof(v)))
	if err != nil {
		return v, err
	}
	copy(AsBytes(&v), buf)
	return v, nil
}

// Store copies v into linear memory at offset.
func Store[T any](mod api.Module, offset uint32, v T) error {
	buf, err := Resolve(mod, offset, uint32(unsafe.Sizeof(v)))
	if err != nil {
		return err
	}
	copy(buf, AsBytes(&v))
	return nil
}

// AsBytes views *v as its raw bytes.
func AsBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// MustResolveRange is ResolveRange for generated trampolines. A fault
// panics; wazero reports it to the guest's caller as an error.
func MustResolveRange(mod api.Module, offset, minSize uint32) []byte {
	buf, err := ResolveRange(mod, offset, minSize)
	if err != nil {
		panic(err)
	}
	return buf
}

// MustLoad is Load for generated trampolines.
func MustLoad[T any](mod api.Module, offset uint32) T {
	v, err := Load[T](mod, offset)
	if err != nil {
		panic(err)
	}
	return v
}

// MustStore is Store for generated trampolines.
func MustStore[T any](mod api.Module, offset uint32, v T) {
	if err := Store(mod, offset, v); err != nil {
		panic(err)
	}
}

// CString returns the NUL-terminated string at the start of buf, or all of
// buf when it holds no terminator.
func CString(buf []byte) string {
	end := len(buf)
	for i, b := range buf {
		if b == 0 {
			end = i
			break
		}
	}
	return string(buf[:end])
}
