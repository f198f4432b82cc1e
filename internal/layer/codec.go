package layer

import (
	"sort"

	"github.com/tilekiln/ovtile/internal/column"
	"github.com/tilekiln/ovtile/internal/feature"
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/shape"
	"github.com/tilekiln/ovtile/internal/wire"
)

// Open-layer field table (spec §4.6): 1=version, 2=name (string-column
// index), 3=extent (3-bit code), 4=feature (repeated, submessage bytes),
// 5=shape (Shapes-column index), 6=m_shape (Shapes-column index, optional).
const (
	fieldVersion = 1
	fieldName    = 2
	fieldExtent  = 3
	fieldFeature = 4
	fieldShape   = 5
	fieldMShape  = 6
)

// WriteLayer serializes l against cache. Features are written in
// Type-ascending, otherwise-stable order (confirmed against
// OpenVectorLayer::write_layer, which sorts by get_type() before emitting),
// not their AddFeature insertion order.
func WriteLayer(l *BaseLayer, cache *column.Writer) ([]byte, error) {
	sorted := make([]feature.BaseFeature, len(l.Features))
	copy(sorted, l.Features)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Type < sorted[j].Type })

	w := wire.NewWriter()
	w.WriteVarintField(fieldVersion, uint64(l.Version))
	w.WriteVarintField(fieldName, cache.AddString(l.Name))
	w.WriteVarintField(fieldExtent, l.Extent.Code())
	w.WriteVarintField(fieldShape, column.EncodeShape(l.Shape, cache))
	if l.MShape != nil {
		w.WriteVarintField(fieldMShape, column.EncodeShape(*l.MShape, cache))
	}
	for _, f := range sorted {
		body, err := feature.WriteFeature(f, l.Shape, l.MShape, cache)
		if err != nil {
			return nil, err
		}
		w.WriteBytesField(fieldFeature, body)
	}
	return w.Bytes(), nil
}

// ReadLayer decodes a layer submessage. The shape/m_shape fields must
// precede any feature field in the wire stream (WriteLayer always emits
// them in that order) since each feature's properties/M-values are decoded
// against them as the feature is read.
func ReadLayer(data []byte, cache *column.Reader) (*Layer, error) {
	r := wire.NewReader(data)
	l := &Layer{Version: 1, Extent: feature.Extent512}
	haveShape := false
	var mShape shape.Shape

	for r.Pos() < r.Len() {
		tag, _, err := r.ReadTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case fieldVersion:
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			l.Version = uint8(v)
		case fieldName:
			idx, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			name, err := cache.GetString(idx)
			if err != nil {
				return nil, err
			}
			l.Name = name
		case fieldExtent:
			v, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			l.Extent = feature.ExtentFromCode(v)
		case fieldShape:
			idx, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			s, err := column.DecodeShape(idx, cache)
			if err != nil {
				return nil, err
			}
			l.Shape = s
			haveShape = true
		case fieldMShape:
			idx, err := r.ReadVarint()
			if err != nil {
				return nil, err
			}
			s, err := column.DecodeShape(idx, cache)
			if err != nil {
				return nil, err
			}
			mShape = s
			l.MShape = s
		case fieldFeature:
			body, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			if !haveShape {
				return nil, &ovterr.StreamDesync{Expected: "layer shape field before any feature", Got: "feature field"}
			}
			f, err := feature.ReadFeature(body, l.Extent, cache, l.Shape, mShape)
			if err != nil {
				return nil, err
			}
			l.Features = append(l.Features, f)
		default:
			return nil, &ovterr.MalformedInput{Offset: r.Pos(), Reason: "unknown layer field tag"}
		}
	}
	return l, nil
}
