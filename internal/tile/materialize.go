package tile

import (
	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/layer"
)

// materializeFeatures resolves every lazy OpenFeature in l into a fully
// populated BaseFeature, the representation both the Open writer and the
// Mapbox export encoder consume.
func materializeFeatures(l *layer.Layer) ([]feature.BaseFeature, error) {
	out := make([]feature.BaseFeature, 0, len(l.Features))
	for _, f := range l.Features {
		bf, err := f.Geometry()
		if err != nil {
			return nil, err
		}
		idx, err := f.Indices()
		if err != nil {
			return nil, err
		}
		bf.Indices = idx

		if bf.Type == feature.Polygons3D {
			tess3d, err := f.Tessellation3D()
			if err != nil {
				return nil, err
			}
			bf.Tessellation3D = tess3d
		} else {
			tess, err := f.Tessellation()
			if err != nil {
				return nil, err
			}
			bf.Tessellation = tess
		}

		b2, b3, has, err := f.BBox()
		if err != nil {
			return nil, err
		}
		if has {
			if b3 != nil {
				bf.BBox3D = b3
			} else {
				bf.BBox = &b2
			}
		}
		out = append(out, bf)
	}
	return out, nil
}
