package codec

import (
	"testing"

	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/wire"
)

func TestZigzagRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 2, -2, 1000, -1000, 1 << 20, -(1 << 20)}
	for _, v := range cases {
		got := wire.Zagzig32(wire.Zigzag32(v))
		if got != v {
			t.Errorf("zigzag round trip failed for %d: got %d", v, got)
		}
	}
}

func TestWeave2DRoundTrip(t *testing.T) {
	cases := [][2]uint16{{0, 0}, {1, 0}, {0, 1}, {65535, 65535}, {1234, 5678}}
	for _, c := range cases {
		w := Weave2D(c[0], c[1])
		a, b := Unweave2D(w)
		if a != c[0] || b != c[1] {
			t.Errorf("weave2d round trip failed for %v: got (%d,%d)", c, a, b)
		}
	}
}

func TestWeave3DRoundTrip(t *testing.T) {
	cases := [][3]uint16{{0, 0, 0}, {1, 2, 3}, {65535, 65535, 65535}, {100, 0, 200}}
	for _, c := range cases {
		w := Weave3D(c[0], c[1], c[2])
		a, b, c2 := Unweave3D(w)
		if a != c[0] || b != c[1] || c2 != c[2] {
			t.Errorf("weave3d round trip failed for %v: got (%d,%d,%d)", c, a, b, c2)
		}
	}
}

func TestWeaveDeltaArrayRoundTrip(t *testing.T) {
	points := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 20}, {X: 5, Y: 5}, {X: -3, Y: 100}}
	encoded := WeaveDeltaEncodeArray(points)
	decoded := UnweaveDeltaDecodeArray(encoded)
	if len(decoded) != len(points) {
		t.Fatalf("length mismatch: got %d want %d", len(decoded), len(points))
	}
	for i, p := range points {
		if decoded[i].X != p.X || decoded[i].Y != p.Y {
			t.Errorf("point %d mismatch: got %+v want %+v", i, decoded[i], p)
		}
	}
}

func TestDeltaArrayRoundTrip(t *testing.T) {
	values := []uint32{0, 5, 3, 100, 99, 0}
	encoded := DeltaEncodeArray(values)
	decoded := DeltaDecodeArray(encoded)
	if len(decoded) != len(values) {
		t.Fatalf("length mismatch")
	}
	for i, v := range values {
		if decoded[i] != v {
			t.Errorf("index %d: got %d want %d", i, decoded[i], v)
		}
	}
}

func TestDequantizeBBoxScenario(t *testing.T) {
	// spec §8 concrete scenario 4
	b := geometry.BBox{Left: -0.5, Bottom: -162.2, Right: 122.8, Top: 77.4}
	buf := QuantizeBBox(b)
	if len(buf) != 12 {
		t.Fatalf("expected 12-byte bbox, got %d", len(buf))
	}
	got := DequantizeBBox(buf)
	want := geometry.BBox{Left: -0.49999598, Bottom: 17.80001448, Right: 122.80000107, Top: 77.39998981}
	const tol = 1e-6
	if abs(got.Left-want.Left) > tol || abs(got.Bottom-want.Bottom) > tol ||
		abs(got.Right-want.Right) > tol || abs(got.Top-want.Top) > tol {
		t.Errorf("dequantize mismatch: got %+v want %+v", got, want)
	}
}

func TestQuantizeBBox3DRoundTrip(t *testing.T) {
	b := geometry.BBox3D{Left: 10, Bottom: 20, Right: 30, Top: 40, Near: 1.5, Far: -2.5}
	buf := QuantizeBBox3D(b)
	if len(buf) != 20 {
		t.Fatalf("expected 20-byte bbox3d, got %d", len(buf))
	}
	got := DequantizeBBox3D(buf)
	const tol = 1e-4
	if abs(got.Near-b.Near) > tol || abs(got.Far-b.Far) > tol {
		t.Errorf("near/far mismatch: got %+v want near=%f far=%f", got, b.Near, b.Far)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
