package mapbox

import (
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/wire"
)

// Legacy layer field table (spec §6): 15=version, 1=name, 2=feature
// (length-delimited, position captured for deferred decode), 3=key
// (appended to the layer key table), 4=value (sub-message, appended to the
// layer value table), 5=extent.
const (
	layerFieldVersion = 15
	layerFieldName    = 1
	layerFieldFeature = 2
	layerFieldKey     = 3
	layerFieldValue   = 4
	layerFieldExtent  = 5
)

// Layer is a decoded legacy MVT layer.
type Layer struct {
	Version  uint32
	Name     string
	Extent   uint32
	Keys     []string
	Values   []shape.PrimitiveValue
	Features []*Feature
}

// ReadLayer decodes a legacy layer submessage. Keys and values are
// collected in one linear pass alongside the raw feature bytes; only once
// the whole layer has been scanned are features resolved against the now-
// complete key/value tables (features are free to appear on the wire
// before the key/value entries they reference — the original's deferred-
// position read exists for exactly this reason).
func ReadLayer(data []byte) (*Layer, error) {
	r := wire.NewReader(data)
	l := &Layer{Version: 1, Extent: 4096}
	var rawFeatures [][]byte

	for r.Pos() < r.Len() {
		tag, _, err := r.ReadTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case layerFieldVersion:
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			l.Version = uint32(v)
		case layerFieldName:
			s, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			l.Name = s
		case layerFieldFeature:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			rawFeatures = append(rawFeatures, b)
		case layerFieldKey:
			s, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			l.Keys = append(l.Keys, s)
		case layerFieldValue:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			pv, err := DecodeValue(b)
			if err != nil {
				return nil, err
			}
			l.Values = append(l.Values, pv)
		case layerFieldExtent:
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			l.Extent = uint32(v)
		default:
			return nil, &ovterr.MalformedInput{Offset: r.Pos(), Reason: "unknown legacy layer field tag"}
		}
	}

	l.Features = make([]*Feature, 0, len(rawFeatures))
	for _, raw := range rawFeatures {
		f, err := decodeFeature(raw, l.Keys, l.Values)
		if err != nil {
			return nil, err
		}
		l.Features = append(l.Features, f)
	}
	return l, nil
}
