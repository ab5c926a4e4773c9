package morph

import (
	"io"
)

// eof is returned by the rolling buffer for offsets past the end of input.
const eof = -1

// rollingBuffer gives random access to a window of an input stream, by
// absolute character offset. Characters are read lazily and released with
// freeBefore.
type rollingBuffer struct {
	reader io.RuneReader
	buf    []rune
	start  int // offset of buf[0]
	end    bool
	err    error // read error other than io.EOF
}

func (b *rollingBuffer) reset(reader io.RuneReader) {
	b.reader = reader
	b.buf = b.buf[:0]
	b.start = 0
	b.end = false
	b.err = nil
}

// get returns the character at offset pos or eof.
func (b *rollingBuffer) get(pos int) rune {
	for pos >= b.start+len(b.buf) {
		if b.end {
			return eof
		}
		r, _, err := b.reader.ReadRune()
		if err != nil {
			b.end = true
			if err != io.EOF {
				b.err = err
			}
			return eof
		}
		b.buf = append(b.buf, r)
	}
	assert(pos >= b.start, "character has already been freed")
	return b.buf[pos-b.start]
}

// RuneAt implements RuneSource.
func (b *rollingBuffer) RuneAt(pos int) rune {
	return b.get(pos)
}

// slice returns a copy of length characters starting at pos. All of them
// must have been read already.
func (b *rollingBuffer) slice(pos, length int) []rune {
	assert(pos >= b.start && pos+length <= b.start+len(b.buf), "slice outside of buffered window")
	s := make([]rune, length)
	copy(s, b.buf[pos-b.start:])
	return s
}

// freeBefore releases all characters before pos.
func (b *rollingBuffer) freeBefore(pos int) {
	n := pos - b.start
	assert(n >= 0 && n <= len(b.buf), "cannot free characters outside of the window")
	b.buf = append(b.buf[:0], b.buf[n:]...)
	b.start = pos
}
