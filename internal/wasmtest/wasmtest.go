// Package wasmtest provides a simulated linear memory and tiny hand-built
// guest modules for exercising trampolines in tests.
package wasmtest

import (
	"github.com/tetratelabs/wazero/api"
)

// Memory is a simulated linear memory. Only the methods trampolines use
// are implemented; the rest panic through the nil embedded interface.
type Memory struct {
	api.Memory
	Buf []byte
}

func (m *Memory) Size() uint32 {
	return uint32(len(m.Buf))
}

func (m *Memory) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(m.Buf)) {
		return nil, false
	}
	return m.Buf[offset:end:end], true
}

func (m *Memory) Write(offset uint32, v []byte) bool {
	buf, ok := m.Read(offset, uint32(len(v)))
	if !ok {
		return false
	}
	copy(buf, v)
	return true
}

// Module is a calling module backed by a simulated memory.
type Module struct {
	api.Module
	Mem *Memory
}

// NewModule returns a module with size bytes of zeroed memory.
func NewModule(size int) *Module {
	return &Module{Mem: &Memory{Buf: make([]byte, size)}}
}

// NewModuleWithoutMemory returns a module that exports no memory.
func NewModuleWithoutMemory() *Module {
	return &Module{}
}

func (m *Module) Memory() api.Memory {
	if m.Mem == nil {
		return nil
	}
	return m.Mem
}

var header = []byte{
	0x00, 0x61, 0x73, 0x6d, // Magic number: \0asm
	0x01, 0x00, 0x00, 0x00, // Version: 1
}

// ScalarCaller builds a guest that imports module.name as (i32) -> i32
// and exports run(i32) -> i32 forwarding its argument to the import.
func ScalarCaller(module, name string) []byte {
	b := append([]byte{}, header...)
	// Type section: type 0 = (i32) -> i32
	b = append(b, section(0x01, 0x01, 0x60, 0x01, 0x7f, 0x01, 0x7f)...)
	// Import section: module.name as function of type 0
	b = append(b, section(0x02, concat([]byte{0x01}, str(module), str(name), []byte{0x00, 0x00})...)...)
	// Function section: function 1 has type 0
	b = append(b, section(0x03, 0x01, 0x00)...)
	// Export section: "run" = function 1
	b = append(b, section(0x07, concat([]byte{0x01}, str("run"), []byte{0x00, 0x01})...)...)
	// Code section: local.get 0; call 0; end
	b = append(b, section(0x0a, 0x01, 0x06, 0x00, 0x20, 0x00, 0x10, 0x00, 0x0b)...)
	return b
}

// OutPointerCaller builds a guest with one page of exported memory that
// imports module.name as (i32) -> () and exports run() calling it with
// offset, the way a by-value stub passes the address of its result local.
// offset must be below 64.
func OutPointerCaller(module, name string, offset byte) []byte {
	if offset >= 64 {
		panic("wasmtest: offset must fit a one-byte signed LEB128")
	}
	b := append([]byte{}, header...)
	// Type section: type 0 = (i32) -> (), type 1 = () -> ()
	b = append(b, section(0x01, 0x02, 0x60, 0x01, 0x7f, 0x00, 0x60, 0x00, 0x00)...)
	// Import section: module.name as function of type 0
	b = append(b, section(0x02, concat([]byte{0x01}, str(module), str(name), []byte{0x00, 0x00})...)...)
	// Function section: function 1 has type 1
	b = append(b, section(0x03, 0x01, 0x01)...)
	// Memory section: one memory, min 1 page, no max
	b = append(b, section(0x05, 0x01, 0x00, 0x01)...)
	// Export section: "run" = function 1, "memory" = memory 0
	b = append(b, section(0x07, concat([]byte{0x02}, str("run"), []byte{0x00, 0x01}, str("memory"), []byte{0x02, 0x00})...)...)
	// Code section: i32.const offset; call 0; end
	b = append(b, section(0x0a, 0x01, 0x06, 0x00, 0x41, offset, 0x10, 0x00, 0x0b)...)
	return b
}

// VoidCaller builds a guest that imports module.name as () -> () and
// exports run() calling it, the shape a C guest declaring "void f(void)"
// compiles to.
func VoidCaller(module, name string) []byte {
	b := append([]byte{}, header...)
	// Type section: type 0 = () -> ()
	b = append(b, section(0x01, 0x01, 0x60, 0x00, 0x00)...)
	// Import section: module.name as function of type 0
	b = append(b, section(0x02, concat([]byte{0x01}, str(module), str(name), []byte{0x00, 0x00})...)...)
	// Function section: function 1 has type 0
	b = append(b, section(0x03, 0x01, 0x00)...)
	// Export section: "run" = function 1
	b = append(b, section(0x07, concat([]byte{0x01}, str("run"), []byte{0x00, 0x01})...)...)
	// Code section: call 0; end
	b = append(b, section(0x0a, 0x01, 0x04, 0x00, 0x10, 0x00, 0x0b)...)
	return b
}

// section frames content; content must be shorter than 128 bytes.
func section(id byte, content ...byte) []byte {
	if len(content) >= 128 {
		panic("wasmtest: section too large")
	}
	return append([]byte{id, byte(len(content))}, content...)
}

func str(s string) []byte {
	if len(s) >= 128 {
		panic("wasmtest: name too long")
	}
	return append([]byte{byte(len(s))}, s...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
