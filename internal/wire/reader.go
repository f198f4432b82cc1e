package wire

import (
	"github.com/tilekiln/ovtile/internal/ovterr"
	"google.golang.org/protobuf/encoding/protowire"
)

// Reader consumes a protobuf-subset message from a byte slice, tracking a
// read cursor. The decoders in this module read each layer and feature
// sub-message by slicing it out with ReadBytes and wrapping the slice in a
// new Reader; SetPos seeks to an absolute offset, but no decoder uses it.
type Reader struct {
	Data []byte
	pos  int
}

// NewReader wraps data for reading starting at position 0.
func NewReader(data []byte) *Reader {
	return &Reader{Data: data}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// SetPos moves the read cursor to an absolute offset.
func (r *Reader) SetPos(pos int) { r.pos = pos }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.Data) }

// ReadTag consumes one field tag and returns its field number and wire type.
func (r *Reader) ReadTag() (int, protowire.Type, error) {
	if r.pos >= len(r.Data) {
		return 0, 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "truncated tag"}
	}
	v, n := protowire.ConsumeVarint(r.Data[r.pos:])
	if n < 0 {
		return 0, 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "invalid tag varint"}
	}
	r.pos += n
	num, typ := protowire.DecodeTag(v)
	return int(num), typ, nil
}

// ReadVarint consumes an unsigned varint.
func (r *Reader) ReadVarint() (uint64, error) {
	if r.pos >= len(r.Data) {
		return 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "truncated varint"}
	}
	v, n := protowire.ConsumeVarint(r.Data[r.pos:])
	if n < 0 {
		return 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "invalid varint"}
	}
	r.pos += n
	return v, nil
}

// ReadSVarint consumes a zigzag-encoded signed varint.
func (r *Reader) ReadSVarint() (int64, error) {
	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	return Zagzig64(v), nil
}

// ReadFixed32 consumes a raw little-endian 4-byte value.
func (r *Reader) ReadFixed32() (uint32, error) {
	if r.pos+4 > len(r.Data) {
		return 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "truncated fixed32"}
	}
	v, n := protowire.ConsumeFixed32(r.Data[r.pos:])
	if n < 0 {
		return 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "invalid fixed32"}
	}
	r.pos += n
	return v, nil
}

// ReadFixed64 consumes a raw little-endian 8-byte value.
func (r *Reader) ReadFixed64() (uint64, error) {
	if r.pos+8 > len(r.Data) {
		return 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "truncated fixed64"}
	}
	v, n := protowire.ConsumeFixed64(r.Data[r.pos:])
	if n < 0 {
		return 0, &ovterr.MalformedInput{Offset: r.pos, Reason: "invalid fixed64"}
	}
	r.pos += n
	return v, nil
}

// ReadBytes consumes a length-delimited payload and returns a view (not a
// copy) into the underlying buffer.
func (r *Reader) ReadBytes() ([]byte, error) {
	if r.pos >= len(r.Data) {
		return nil, &ovterr.MalformedInput{Offset: r.pos, Reason: "truncated length"}
	}
	v, n := protowire.ConsumeBytes(r.Data[r.pos:])
	if n < 0 {
		return nil, &ovterr.MalformedInput{Offset: r.pos, Reason: "length overruns buffer"}
	}
	r.pos += n
	return v, nil
}

// ReadString consumes a length-delimited utf-8 string.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadPackedVarint consumes a length-delimited payload and decodes it as a
// run of concatenated unsigned varints.
func (r *Reader) ReadPackedVarint() ([]uint64, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	return ParsePackedVarint(b)
}

// ParsePackedVarint decodes a byte slice as concatenated unsigned varints.
func ParsePackedVarint(b []byte) ([]uint64, error) {
	var out []uint64
	pos := 0
	for pos < len(b) {
		v, n := protowire.ConsumeVarint(b[pos:])
		if n < 0 {
			return nil, &ovterr.MalformedInput{Offset: pos, Reason: "invalid packed varint"}
		}
		out = append(out, v)
		pos += n
	}
	return out, nil
}

// Skip advances past a single value of the given wire type without
// interpreting it, used for defensive skipping of sub-messages that are not
// part of the documented field table (only ever invoked from contexts that
// explicitly tolerate forward-unknown fields; the Open Vector Tile format
// otherwise treats unknown tags as fatal per spec).
func (r *Reader) Skip(typ protowire.Type) error {
	if r.pos > len(r.Data) {
		return &ovterr.MalformedInput{Offset: r.pos, Reason: "truncated value"}
	}
	n := protowire.ConsumeFieldValue(0, typ, r.Data[r.pos:])
	if n < 0 {
		return &ovterr.MalformedInput{Offset: r.pos, Reason: "invalid field value"}
	}
	r.pos += n
	return nil
}
