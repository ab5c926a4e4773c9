package dict

import (
	"github.com/pkg/errors"
)

// posTable holds part-of-speech, inflection type and inflection form, indexed
// by the left context id of a word. Empty strings stand for "none".
type posTable struct {
	entries [][3]string
}

// Fields of a POS table entry.
const (
	posField = iota
	inflTypeField
	inflFormField
)

func readPOSTable(data []byte) (*posTable, error) {
	in := newDataInput(data)
	if _, err := in.checkHeader(posDictCodec, formatVersion, formatVersion); err != nil {
		return nil, err
	}
	count := int(in.readVInt())
	if in.err != nil {
		return nil, in.err
	}
	if count < 0 || 3*count > in.remaining() {
		return nil, errors.Wrapf(ErrCorruptData, "POS table: implausible entry count %d", count)
	}
	t := &posTable{entries: make([][3]string, count)}
	for i := range t.entries {
		for f := range t.entries[i] {
			t.entries[i][f] = in.readString()
		}
		if in.err != nil {
			return nil, errors.Wrapf(in.err, "POS table entry %d", i)
		}
	}
	return t, nil
}

func (t *posTable) get(id, field int) string {
	if t == nil || id < 0 || id >= len(t.entries) {
		return ""
	}
	return t.entries[id][field]
}
