package mapbox

import (
	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/layer"
)

// ToBaseLayer transcodes a decoded legacy layer into an OVT BaseLayer ready
// for the Open writer (spec §4.6's legacy→Open transcoder), grounded on
// `impl From<&mut MapboxVectorLayer> for BaseVectorLayer` in
// original_source/rust/base/vector_layer.rs: each legacy feature is
// converted in turn and folded in through AddFeature, which is what infers
// the layer's shape/mShape — a legacy layer carries no shape of its own.
func ToBaseLayer(l *Layer) (*layer.BaseLayer, error) {
	bl := layer.NewBaseLayer(l.Name, feature.Extent(l.Extent), nil, nil)
	for _, f := range l.Features {
		if err := bl.AddFeature(f.ToBaseFeature()); err != nil {
			return nil, err
		}
	}
	return bl, nil
}
