package column

import (
	"math"

	"github.com/tilekiln/ovtile/internal/codec"
	"github.com/tilekiln/ovtile/internal/geometry"
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/wire"
)

// Reader is a materialized, random-access view of a decoded column cache.
// It is built once per tile decode and shared read-only by every feature in
// the tile (Design Note 9.2); no mutation occurs after construction.
type Reader struct {
	strings  []string
	unsigned []uint64
	signed   []int64
	float32s []float32
	float64s []float64
	points   [][]geometry.Point
	points3d [][]geometry.Point3D
	indices  [][]uint32
	shapes   [][]uint64
	bboxes   [][]byte
}

// Decode drains a length-delimited column-cache submessage (the bytes
// already sliced out by the caller at the tile's field-5 position) into a
// materialized Reader.
func Decode(data []byte) (*Reader, error) {
	r := &Reader{}
	rd := wire.NewReader(data)
	for rd.Pos() < rd.Len() {
		tag, typ, err := rd.ReadTag()
		if err != nil {
			return nil, err
		}
		id := IDFromTag(tag)
		switch id {
		case String:
			s, err := rd.ReadString()
			if err != nil {
				return nil, err
			}
			r.strings = append(r.strings, s)
		case Unsigned:
			v, err := rd.ReadVarint()
			if err != nil {
				return nil, err
			}
			r.unsigned = append(r.unsigned, v)
		case Signed:
			v, err := rd.ReadSVarint()
			if err != nil {
				return nil, err
			}
			r.signed = append(r.signed, v)
		case Float:
			v, err := rd.ReadFixed32()
			if err != nil {
				return nil, err
			}
			r.float32s = append(r.float32s, math.Float32frombits(v))
		case Double:
			v, err := rd.ReadFixed64()
			if err != nil {
				return nil, err
			}
			r.float64s = append(r.float64s, math.Float64frombits(v))
		case Points:
			vs, err := rd.ReadPackedVarint()
			if err != nil {
				return nil, err
			}
			r.points = append(r.points, codec.UnweaveDeltaDecodeArray(vs))
		case Points3D:
			vs, err := rd.ReadPackedVarint()
			if err != nil {
				return nil, err
			}
			r.points3d = append(r.points3d, codec.UnweaveDeltaDecode3DArray(vs))
		case Indices:
			vs, err := rd.ReadPackedVarint()
			if err != nil {
				return nil, err
			}
			r.indices = append(r.indices, codec.DeltaDecodeArray(vs))
		case Shapes:
			vs, err := rd.ReadPackedVarint()
			if err != nil {
				return nil, err
			}
			r.shapes = append(r.shapes, vs)
		case BBox:
			b, err := rd.ReadBytes()
			if err != nil {
				return nil, err
			}
			cp := make([]byte, len(b))
			copy(cp, b)
			r.bboxes = append(r.bboxes, cp)
		default:
			if err := rd.Skip(typ); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Reader) GetString(idx uint64) (string, error) {
	if int(idx) >= len(r.strings) {
		return "", &ovterr.MalformedInput{Offset: int(idx), Reason: "string column index out of range"}
	}
	return r.strings[idx], nil
}

func (r *Reader) GetU64(idx uint64) (uint64, error) {
	if int(idx) >= len(r.unsigned) {
		return 0, &ovterr.MalformedInput{Offset: int(idx), Reason: "unsigned column index out of range"}
	}
	return r.unsigned[idx], nil
}

func (r *Reader) GetI64(idx uint64) (int64, error) {
	if int(idx) >= len(r.signed) {
		return 0, &ovterr.MalformedInput{Offset: int(idx), Reason: "signed column index out of range"}
	}
	return r.signed[idx], nil
}

func (r *Reader) GetF32(idx uint64) (float32, error) {
	if int(idx) >= len(r.float32s) {
		return 0, &ovterr.MalformedInput{Offset: int(idx), Reason: "float column index out of range"}
	}
	return r.float32s[idx], nil
}

func (r *Reader) GetF64(idx uint64) (float64, error) {
	if int(idx) >= len(r.float64s) {
		return 0, &ovterr.MalformedInput{Offset: int(idx), Reason: "double column index out of range"}
	}
	return r.float64s[idx], nil
}

func (r *Reader) GetPoints(idx uint64) ([]geometry.Point, error) {
	if int(idx) >= len(r.points) {
		return nil, &ovterr.MalformedInput{Offset: int(idx), Reason: "points column index out of range"}
	}
	return r.points[idx], nil
}

func (r *Reader) GetPoints3D(idx uint64) ([]geometry.Point3D, error) {
	if int(idx) >= len(r.points3d) {
		return nil, &ovterr.MalformedInput{Offset: int(idx), Reason: "points3d column index out of range"}
	}
	return r.points3d[idx], nil
}

func (r *Reader) GetIndices(idx uint64) ([]uint32, error) {
	if int(idx) >= len(r.indices) {
		return nil, &ovterr.MalformedInput{Offset: int(idx), Reason: "indices column index out of range"}
	}
	return r.indices[idx], nil
}

func (r *Reader) GetShapes(idx uint64) ([]uint64, error) {
	if int(idx) >= len(r.shapes) {
		return nil, &ovterr.MalformedInput{Offset: int(idx), Reason: "shapes column index out of range"}
	}
	return r.shapes[idx], nil
}

// GetBBox resolves a BBox-column index, dispatching 2D vs 3D by the stored
// entry's byte length (12 vs 20, spec §4.2).
func (r *Reader) GetBBox(idx uint64) (geometry.BBox, *geometry.BBox3D, error) {
	if int(idx) >= len(r.bboxes) {
		return geometry.BBox{}, nil, &ovterr.MalformedInput{Offset: int(idx), Reason: "bbox column index out of range"}
	}
	b2, b3 := codec.DequantizeBBoxAny(r.bboxes[idx])
	return b2, b3, nil
}
