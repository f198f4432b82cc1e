package geometry

import (
	"testing"

	"github.com/tilekiln/ovtile/internal/shape"
)

func TestPointEqualIgnoresM(t *testing.T) {
	a := Point{X: 1, Y: 2}
	mv := shape.Value{}
	b := Point{X: 1, Y: 2, M: &mv}
	if !a.Equal(b) {
		t.Error("Equal should ignore M when comparing coordinates")
	}
}

func TestPointLessOrdersByXThenY(t *testing.T) {
	a := Point{X: 1, Y: 5}
	b := Point{X: 1, Y: 6}
	c := Point{X: 2, Y: 0}
	if !a.Less(b) {
		t.Error("equal X should order by Y")
	}
	if !b.Less(c) {
		t.Error("lower X should order first regardless of Y")
	}
}

func TestLineWithOffsetHasMValues(t *testing.T) {
	mv := shape.Value{}
	l := LineWithOffset{Vertices: []Point{{X: 0, Y: 0}, {X: 1, Y: 1, M: &mv}}}
	if !l.HasMValues() {
		t.Error("a line with one M-bearing vertex should report HasMValues")
	}
	plain := LineWithOffset{Vertices: []Point{{X: 0, Y: 0}}}
	if plain.HasMValues() {
		t.Error("a line with no M-bearing vertices should not report HasMValues")
	}
}
