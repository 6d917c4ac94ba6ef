// Package sample is a small geometry API bound with abigen. Its host
// bindings and guest stubs are generated from geom.json and checked in.
package sample

//go:generate go run ../../cmd/abigen -config abigen.yaml -host-out bindgen_geom_host.go -guest-out guest/bindgen_geom_guest_stubs.c -guest-include geom.h geom geom.json

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/tetratelabs/wazero/api"
	"github.com/woxQAQ/abigen/pkg/hostabi"
)

// Vec2 matches geom_vec2 in guest/geom.h.
type Vec2 struct {
	X float32
	Y float32
}

// Rect matches geom_rect in guest/geom.h.
type Rect struct {
	Min Vec2
	Max Vec2
}

// Ticks counts geom_tick calls.
type Ticks int64

var tickCount atomic.Int64

func addI32(x int32) int32 {
	return x + 1
}

func scale(value float64, factor float32) float64 {
	return value * float64(factor)
}

func tick() {
	tickCount.Add(1)
}

func ticks() Ticks {
	return Ticks(tickCount.Load())
}

func fill(buf []byte, n uint32, value int32) {
	for i := uint32(0); i < n; i++ {
		buf[i] = byte(value)
	}
}

func labelLen(label []byte) uint32 {
	return uint32(len(hostabi.CString(label)))
}

func vec2Make() Vec2 {
	return Vec2{X: 3, Y: 4}
}

func vec2Length(v Vec2) float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

func vec2Add(a, b Vec2) Vec2 {
	return Vec2{X: a.X + b.X, Y: a.Y + b.Y}
}

func rectArea(r Rect) float64 {
	return float64(r.Max.X-r.Min.X) * float64(r.Max.Y-r.Min.Y)
}

// rectAreaTrampoline is written by hand; geom_rect_area sets gen_stub to
// false. An empty rectangle is reported as zero area rather than negative.
func rectAreaTrampoline(ctx context.Context, mod api.Module, stack []uint64) {
	r := hostabi.MustLoad[Rect](mod, api.DecodeU32(stack[0]))
	stack[0] = api.EncodeF64(math.Max(0, rectArea(r)))
}
