// Package spatial provides fast bbox queries over a decoded Open Vector
// Tile. It is additive and sits entirely downstream of decode: building a
// FeatureIndex never touches the column cache or triggers a re-encode, so
// it cannot perturb the codec's bit-exact output (spec §6). Ported from
// pkg/s57/index.go's ChartIndex.
package spatial

import (
	"github.com/dhconnelly/rtreego"

	"github.com/tilekiln/ovtile/pkg/ovtile"
)

// FeatureRef is one indexed feature: its layer, its resolved bbox, and the
// feature itself for further inspection.
type FeatureRef struct {
	Layer   string
	Feature *ovtile.Feature
	BBox    ovtile.BBox
}

// Bounds implements rtreego.Spatial.
func (r FeatureRef) Bounds() rtreego.Rect {
	point := rtreego.Point{r.BBox.Left, r.BBox.Bottom}
	lengths := []float64{
		r.BBox.Right - r.BBox.Left,
		r.BBox.Top - r.BBox.Bottom,
	}
	// A degenerate (zero-area) bbox is a valid rtreego rect only once its
	// side lengths are nudged off zero; rtreego rejects a zero-length side.
	const epsilon = 1e-9
	if lengths[0] <= 0 {
		lengths[0] = epsilon
	}
	if lengths[1] <= 0 {
		lengths[1] = epsilon
	}
	rect, _ := rtreego.NewRect(point, lengths)
	return rect
}

// FeatureIndex provides fast bbox intersection queries over every
// bbox-bearing feature in a decoded tile.
//
// Example:
//
//	t, err := ovtile.DecodeTile(data)
//	idx, err := spatial.BuildIndex(t)
//	hits := idx.Query(ovtile.BBox{Left: 0, Bottom: 0, Right: 4096, Top: 4096})
type FeatureIndex struct {
	refs  []FeatureRef
	rtree *rtreego.Rtree
}

// BuildIndex walks every layer of t and indexes each feature that carries a
// (2D) bbox. Features without a bbox, or whose bbox is 3D, are skipped —
// rtreego here models the tile's planar extent, not elevation.
func BuildIndex(t *ovtile.Tile) (*FeatureIndex, error) {
	rtree := rtreego.NewTree(2, 25, 50)
	var refs []FeatureRef

	for _, name := range t.LayerNames() {
		l, _ := t.Layer(name)
		for _, f := range l.Features() {
			bbox, bbox3d, has, err := f.BBox()
			if err != nil {
				return nil, err
			}
			if !has || bbox3d != nil {
				continue
			}
			ref := FeatureRef{Layer: name, Feature: f, BBox: bbox}
			refs = append(refs, ref)
			rtree.Insert(ref)
		}
	}

	return &FeatureIndex{refs: refs, rtree: rtree}, nil
}

// Query returns every indexed feature whose bbox intersects bounds.
func (idx *FeatureIndex) Query(bounds ovtile.BBox) []FeatureRef {
	point := rtreego.Point{bounds.Left, bounds.Bottom}
	lengths := []float64{
		bounds.Right - bounds.Left,
		bounds.Top - bounds.Bottom,
	}
	const epsilon = 1e-9
	if lengths[0] <= 0 {
		lengths[0] = epsilon
	}
	if lengths[1] <= 0 {
		lengths[1] = epsilon
	}
	queryRect, _ := rtreego.NewRect(point, lengths)

	spatials := idx.rtree.SearchIntersect(queryRect)
	result := make([]FeatureRef, len(spatials))
	for i, s := range spatials {
		result[i] = s.(FeatureRef)
	}
	return result
}

// Count returns the number of indexed features.
func (idx *FeatureIndex) Count() int {
	return len(idx.refs)
}

// All returns every indexed feature.
func (idx *FeatureIndex) All() []FeatureRef {
	return idx.refs
}
