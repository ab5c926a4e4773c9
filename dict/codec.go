package dict

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// codecMagic starts every binary resource.
const codecMagic = 0x3fd76c17

// Codec names and the format version this package reads and writes.
const (
	targetMapCodec = "kuromoji_dict_map"
	dictCodec      = "kuromoji_dict"
	posDictCodec   = "kuromoji_dict_pos"
	connCostsCodec = "kuromoji_cc"
	charDefCodec   = "kuromoji_cd"
	fstCodec       = "kuromoji_fst"
	formatVersion  = 1
)

// dataInput decodes primitives from an in-memory resource. The first decoding
// failure sticks: every later read returns zero values and err stays set.
type dataInput struct {
	buf []byte
	pos int
	err error
}

func newDataInput(buf []byte) *dataInput {
	return &dataInput{buf: buf}
}

func (in *dataInput) fail(format string, args ...interface{}) {
	if in.err == nil {
		in.err = errors.Wrapf(ErrCorruptData, format, args...)
	}
}

func (in *dataInput) remaining() int {
	return len(in.buf) - in.pos
}

func (in *dataInput) readBytes(n int) []byte {
	if in.err != nil {
		return nil
	}
	if n < 0 || n > in.remaining() {
		in.fail("need %d bytes at offset %d, have %d", n, in.pos, in.remaining())
		return nil
	}
	b := in.buf[in.pos : in.pos+n]
	in.pos += n
	return b
}

func (in *dataInput) readByte() byte {
	b := in.readBytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (in *dataInput) readInt32() int32 {
	b := in.readBytes(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

// readVInt decodes an int32 stored in 7-bit groups, low group first.
func (in *dataInput) readVInt() int32 {
	if in.err != nil {
		return 0
	}
	v, n := binary.Uvarint(in.buf[in.pos:])
	if n <= 0 || n > 5 || v > 0xffffffff {
		in.fail("malformed variable-length int at offset %d", in.pos)
		return 0
	}
	in.pos += n
	return int32(uint32(v))
}

// readZInt decodes a zig-zag encoded variable-length int32.
func (in *dataInput) readZInt() int32 {
	u := uint32(in.readVInt())
	return int32(u>>1) ^ -int32(u&1)
}

func (in *dataInput) readString() string {
	n := in.readVInt()
	return string(in.readBytes(int(n)))
}

// checkHeader consumes and validates a codec header.
func (in *dataInput) checkHeader(codec string, minVersion, maxVersion int32) (int32, error) {
	if m := in.readInt32(); in.err == nil && m != codecMagic {
		return 0, errors.Wrapf(ErrFormat, "codec header mismatch: magic %#x, expected %#x", uint32(m), codecMagic)
	}
	if name := in.readString(); in.err == nil && name != codec {
		return 0, errors.Wrapf(ErrFormat, "codec mismatch: actual %q, expected %q", name, codec)
	}
	version := in.readInt32()
	if in.err != nil {
		return 0, errors.Wrapf(ErrFormat, "truncated codec header for %q", codec)
	}
	if version < minVersion || version > maxVersion {
		return 0, errors.Wrapf(ErrFormat, "%s: version %d out of range [%d..%d]", codec, version, minVersion, maxVersion)
	}
	return version, nil
}

// --- Writing ---------------------------------------------------------------

// dataOutput encodes primitives into a growing buffer.
type dataOutput struct {
	bytes.Buffer
	scratch [binary.MaxVarintLen64]byte
}

func (out *dataOutput) writeInt32(v int32) {
	binary.BigEndian.PutUint32(out.scratch[:4], uint32(v))
	out.Write(out.scratch[:4])
}

func (out *dataOutput) writeInt16(v int16) {
	binary.BigEndian.PutUint16(out.scratch[:2], uint16(v))
	out.Write(out.scratch[:2])
}

func (out *dataOutput) writeVInt(v int32) {
	n := binary.PutUvarint(out.scratch[:], uint64(uint32(v)))
	out.Write(out.scratch[:n])
}

func (out *dataOutput) writeZInt(v int32) {
	out.writeVInt((v >> 31) ^ (v << 1))
}

func (out *dataOutput) writeString(s string) {
	out.writeVInt(int32(len(s)))
	out.WriteString(s)
}

func (out *dataOutput) writeHeader(codec string, version int32) {
	out.writeInt32(codecMagic)
	out.writeString(codec)
	out.writeInt32(version)
}

func (out *dataOutput) flushTo(w io.Writer) error {
	_, err := out.WriteTo(w)
	return err
}

// writeHeader writes a codec header for codec at the current format version,
// for resources wrapping foreign payloads such as the FST file.
func writeHeader(w io.Writer, codec string) error {
	var out dataOutput
	out.writeHeader(codec, formatVersion)
	return out.flushTo(w)
}

// stripHeader validates the codec header of data and returns the payload
// following it.
func stripHeader(data []byte, codec string) ([]byte, error) {
	in := newDataInput(data)
	if _, err := in.checkHeader(codec, formatVersion, formatVersion); err != nil {
		return nil, err
	}
	return data[in.pos:], nil
}
