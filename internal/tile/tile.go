// Package tile implements the top-level container (spec §4.6): BaseTile
// accumulates named layers for writing, Tile holds every layer a decoded
// wire tile contained. Grounded on original_source/rust/vector_tile.rs and
// original_source/rust/base/vector_tile.rs.
package tile

import (
	"sort"

	"github.com/tilekiln/ovtile/internal/layer"
)

// BaseTile is the writer-side accumulator: a named set of layers, mirroring
// the original's `BTreeMap<String, BaseVectorLayer>` (sorted traversal on
// write is what makes EncodeTile's output deterministic — spec §6's
// bit-exactness requirement — without needing a separate ordered-keys
// side-structure).
type BaseTile struct {
	Layers map[string]*layer.BaseLayer
}

// NewBaseTile returns an empty tile.
func NewBaseTile() *BaseTile {
	return &BaseTile{Layers: map[string]*layer.BaseLayer{}}
}

// AddLayer inserts or replaces a layer by name.
func (t *BaseTile) AddLayer(l *layer.BaseLayer) {
	t.Layers[l.Name] = l
}

// Tile is the decoded, read-only view of a tile's layers.
type Tile struct {
	Layers map[string]*layer.Layer
}

// Layer looks up a decoded layer by name.
func (t *Tile) Layer(name string) (*layer.Layer, bool) {
	l, ok := t.Layers[name]
	return l, ok
}

// LayerNames returns the tile's layer names in sorted order.
func (t *Tile) LayerNames() []string {
	names := make([]string, 0, len(t.Layers))
	for n := range t.Layers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
