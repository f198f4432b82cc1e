package tile

import (
	"sort"

	"github.com/tilekiln/ovtile/internal/column"
	"github.com/tilekiln/ovtile/internal/layer"
	"github.com/tilekiln/ovtile/internal/mapbox"
	"github.com/tilekiln/ovtile/internal/ovterr"
	"github.com/tilekiln/ovtile/internal/wire"
)

// Tile field table (spec §6): 1,3=legacy Mapbox layer (3 is the S2
// variant), 4=Open layer, 5=column cache. Field ids 1 and 3 are read
// identically; SPEC_FULL.md 4.7 resolves the source's own inconsistency
// about which tag means what in favor of this table.
const (
	fieldLegacyLayer   = 1
	fieldLegacyLayerS2 = 3
	fieldOpenLayer     = 4
	fieldColumnCache   = 5
)

// EncodeTile serializes t: every layer as a field-4 submessage sharing one
// column cache, the cache itself emitted last (spec §4.6's tile write
// order). Layers are visited in sorted-by-name order for bit-exact output.
// A shape/value mismatch in any layer is fatal (spec §4.6: "write-side
// mismatches are fatal — they indicate caller error").
func EncodeTile(t *BaseTile) ([]byte, error) {
	cache := column.NewWriter()
	w := wire.NewWriter()

	names := make([]string, 0, len(t.Layers))
	for n := range t.Layers {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		body, err := layer.WriteLayer(t.Layers[n], cache)
		if err != nil {
			return nil, err
		}
		w.WriteBytesField(fieldOpenLayer, body)
	}
	w.WriteBytesField(fieldColumnCache, cache.Encode())
	return w.Bytes(), nil
}

// DecodeTile parses a tile written by EncodeTile (or any conformant Open
// tile), transcoding any legacy Mapbox layers it contains. Equivalent to
// DecodeTileOptions(data, true).
func DecodeTile(data []byte) (*Tile, error) {
	return DecodeTileOptions(data, true)
}

// DecodeTileOptions is DecodeTile with the legacy-transcode step made
// optional: a caller that knows its tiles never mix formats can set
// transcodeLegacy false to skip the reencode-then-redecode round trip
// legacy layers otherwise go through. Field-4 layer bodies are collected
// first and only resolved once the column cache (field 5) — wherever it
// falls in the stream — has been fully materialized, since a layer's own
// name is itself a cache-backed string index (spec §4.6 / Design Note 9.2).
func DecodeTileOptions(data []byte, transcodeLegacy bool) (*Tile, error) {
	r := wire.NewReader(data)
	var openLayerBodies [][]byte
	var cacheBody []byte
	var legacyLayers []*mapbox.Layer

	for r.Pos() < r.Len() {
		tag, _, err := r.ReadTag()
		if err != nil {
			return nil, err
		}
		switch tag {
		case fieldLegacyLayer, fieldLegacyLayerS2:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			ml, err := mapbox.ReadLayer(b)
			if err != nil {
				return nil, err
			}
			legacyLayers = append(legacyLayers, ml)
		case fieldOpenLayer:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			openLayerBodies = append(openLayerBodies, b)
		case fieldColumnCache:
			b, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			cacheBody = b
		default:
			return nil, &ovterr.MalformedInput{Offset: r.Pos(), Reason: "unknown tile field tag"}
		}
	}

	t := &Tile{Layers: map[string]*layer.Layer{}}

	if len(legacyLayers) > 0 && !transcodeLegacy {
		return nil, &ovterr.InvalidGeometry{Reason: "tile contains legacy Mapbox layers but legacy transcoding is disabled"}
	}

	if len(legacyLayers) > 0 {
		bt := NewBaseTile()
		for _, ml := range legacyLayers {
			bl, err := mapbox.ToBaseLayer(ml)
			if err != nil {
				return nil, err
			}
			bt.AddLayer(bl)
		}
		reencoded, err := EncodeTile(bt)
		if err != nil {
			return nil, err
		}
		transcoded, err := DecodeTile(reencoded)
		if err != nil {
			return nil, err
		}
		for name, l := range transcoded.Layers {
			t.Layers[name] = l
		}
	}

	if len(openLayerBodies) == 0 {
		return t, nil
	}
	if cacheBody == nil {
		return nil, &ovterr.StreamDesync{Expected: "column cache field before tile decode completes", Got: "none present"}
	}
	cache, err := column.Decode(cacheBody)
	if err != nil {
		return nil, err
	}
	for _, body := range openLayerBodies {
		l, err := layer.ReadLayer(body, cache)
		if err != nil {
			return nil, err
		}
		t.Layers[l.Name] = l
	}
	return t, nil
}

// EncodeMapbox serializes t back out as a legacy MVT tile (the supplemented
// reverse direction, SPEC_FULL.md §3), writing every layer via
// mapbox.EncodeLayer and materializing each layer's features through its
// OpenFeature accessors first.
func EncodeMapbox(t *Tile) ([]byte, error) {
	w := wire.NewWriter()
	for _, name := range t.LayerNames() {
		l := t.Layers[name]
		feats, err := materializeFeatures(l)
		if err != nil {
			return nil, err
		}
		body, err := mapbox.EncodeLayer(l.Name, uint32(l.Extent), feats)
		if err != nil {
			return nil, err
		}
		w.WriteBytesField(fieldLegacyLayer, body)
	}
	return w.Bytes(), nil
}
