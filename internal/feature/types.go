// Package feature implements the per-feature wire codec (spec §4.5):
// BaseFeature, a tagged union over the six feature kinds used when
// writing, and OpenFeature, a lazily-materializing reader built from a
// decoded column cache. Both share FeatureType and the flags-byte layout
// documented alongside ReadFeature/WriteFeature.
package feature

import "github.com/tilekiln/ovtile/internal/ovterr"

// FeatureType is the feature-kind discriminant stored as the feature
// submessage's leading varint. Its numeric values double as the BaseFeature
// tagged union's Type discriminant.
type FeatureType uint8

const (
	Points FeatureType = iota + 1
	Lines
	Polygons
	Points3D
	Lines3D
	Polygons3D
)

// TypeFromU64 validates a decoded feature-type varint. Unlike the original's
// panicking BitCast, an unrecognized code is reported as an
// ovterr.UnknownFeatureType rather than aborting the decode.
func TypeFromU64(v uint64) (FeatureType, error) {
	switch FeatureType(v) {
	case Points, Lines, Polygons, Points3D, Lines3D, Polygons3D:
		return FeatureType(v), nil
	}
	return 0, &ovterr.UnknownFeatureType{Code: v}
}

// Extent is the tile-local coordinate space a feature's geometry is
// quantized against. Unlike FeatureType, an unrecognized wire value falls
// back to Extent512 rather than erroring (it is purely descriptive metadata,
// never a dispatch key).
type Extent uint32

const (
	Extent512   Extent = 512
	Extent1024  Extent = 1024
	Extent2048  Extent = 2048
	Extent4096  Extent = 4096
	Extent8192  Extent = 8192
	Extent16384 Extent = 16384
)

// ExtentFromCode maps the 3-bit wire code (0..5) used by the layer's extent
// field to an Extent, falling back to Extent512 for anything else.
func ExtentFromCode(code uint64) Extent {
	switch code {
	case 1:
		return Extent1024
	case 2:
		return Extent2048
	case 3:
		return Extent4096
	case 4:
		return Extent8192
	case 5:
		return Extent16384
	default:
		return Extent512
	}
}

// Code returns the 3-bit wire code for this extent.
func (e Extent) Code() uint64 {
	switch e {
	case Extent1024:
		return 1
	case Extent2048:
		return 2
	case Extent4096:
		return 3
	case Extent8192:
		return 4
	case Extent16384:
		return 5
	default:
		return 0
	}
}

// feature flags-byte bit positions (spec §4.5).
const (
	flagID           = 1 << 0
	flagBBox         = 1 << 1
	flagOffsets      = 1 << 2
	flagIndices      = 1 << 3
	flagTessellation = 1 << 4
	flagMValues      = 1 << 5
	flagSingle       = 1 << 6
)
