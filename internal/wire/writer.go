// Package wire implements the subset of protobuf wire conventions the Open
// Vector Tile format uses: (field_id<<3)|wire_type tags over varint,
// zigzag-varint, fixed32, fixed64, and length-delimited payloads. It is not a
// descriptor-based protobuf encoder — there is no .proto schema, only a fixed
// per-message field table documented alongside each caller.
package wire

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Writer accumulates a single protobuf-subset message into a byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func tag(field int, typ protowire.Type) uint64 {
	return protowire.EncodeTag(protowire.Number(field), typ)
}

// WriteVarintField writes field as an unsigned varint.
func (w *Writer) WriteVarintField(field int, v uint64) {
	w.buf = protowire.AppendVarint(w.buf, tag(field, protowire.VarintType))
	w.buf = protowire.AppendVarint(w.buf, v)
}

// WriteSVarintField writes field as a zigzag-encoded signed varint.
func (w *Writer) WriteSVarintField(field int, v int64) {
	w.WriteVarintField(field, Zigzag64(v))
}

// WriteFixed32Field writes field as a raw little-endian 4-byte value.
func (w *Writer) WriteFixed32Field(field int, v uint32) {
	w.buf = protowire.AppendVarint(w.buf, tag(field, protowire.Fixed32Type))
	w.buf = protowire.AppendFixed32(w.buf, v)
}

// WriteFixed64Field writes field as a raw little-endian 8-byte value.
func (w *Writer) WriteFixed64Field(field int, v uint64) {
	w.buf = protowire.AppendVarint(w.buf, tag(field, protowire.Fixed64Type))
	w.buf = protowire.AppendFixed64(w.buf, v)
}

// WriteBytesField writes field as a length-delimited raw byte payload.
func (w *Writer) WriteBytesField(field int, v []byte) {
	w.buf = protowire.AppendVarint(w.buf, tag(field, protowire.BytesType))
	w.buf = protowire.AppendBytes(w.buf, v)
}

// WriteStringField writes field as a length-delimited utf-8 string.
func (w *Writer) WriteStringField(field int, s string) {
	w.WriteBytesField(field, []byte(s))
}

// WritePackedVarintField writes field as a length-delimited run of
// concatenated unsigned varints (used for the Points/Points3D/Indices/Shapes
// column entries, whose contents are already weave- or delta-coded into
// plain integers by the caller).
func (w *Writer) WritePackedVarintField(field int, values []uint64) {
	inner := make([]byte, 0, len(values)*2)
	for _, v := range values {
		inner = protowire.AppendVarint(inner, v)
	}
	w.WriteBytesField(field, inner)
}

// AppendPackedVarint appends values as concatenated unsigned varints to dst
// and returns the result, without a field tag. Used to build an inner
// payload (e.g. a feature body or a legacy command stream) before it is wrapped in WriteBytesField by
// a caller that needs to interleave it with other non-varint bytes.
func AppendPackedVarint(dst []byte, values []uint64) []byte {
	for _, v := range values {
		dst = protowire.AppendVarint(dst, v)
	}
	return dst
}
