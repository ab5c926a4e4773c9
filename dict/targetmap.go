package dict

import (
	"io"

	"github.com/pkg/errors"
)

// targetMap resolves a source id (an FST output or a character class) to
// the contiguous run of word ids sharing it.
type targetMap struct {
	offsets []int32 // len = sourceCount+1; run of source s is [offsets[s], offsets[s+1])
	targets []int32
}

// readTargetMap decodes the target map resource.
//
// Each value carries a delta to the previous word id in its upper bits; bit 0
// marks the first word id of the next source id.
func readTargetMap(data []byte) (*targetMap, error) {
	in := newDataInput(data)
	if _, err := in.checkHeader(targetMapCodec, formatVersion, formatVersion); err != nil {
		return nil, err
	}
	count := int(in.readVInt())
	offsetsLen := int(in.readVInt())
	if in.err != nil {
		return nil, in.err
	}
	if count < 0 || offsetsLen < 1 || count > in.remaining() || offsetsLen > count+1 {
		return nil, errors.Wrapf(ErrCorruptData, "target map: implausible sizes count=%d offsets=%d", count, offsetsLen)
	}
	tm := &targetMap{
		offsets: make([]int32, offsetsLen),
		targets: make([]int32, count),
	}
	var accum int32
	sourceID := 0
	for ofs := 0; ofs < count; ofs++ {
		val := in.readVInt()
		if val&1 != 0 {
			if sourceID >= offsetsLen {
				return nil, errors.Wrapf(ErrCorruptData, "target map: more sources than the announced %d", offsetsLen-1)
			}
			tm.offsets[sourceID] = int32(ofs)
			sourceID++
		}
		accum += int32(uint32(val) >> 1)
		tm.targets[ofs] = accum
	}
	if in.err != nil {
		return nil, in.err
	}
	if sourceID+1 != offsetsLen {
		return nil, errors.Wrapf(ErrCorruptData, "target map: source count %d does not match offsets %d",
			sourceID, offsetsLen)
	}
	tm.offsets[sourceID] = int32(count)
	return tm, nil
}

// lookup returns the word ids of sourceID. The result aliases internal
// storage and must not be modified.
func (tm *targetMap) lookup(sourceID int) []int32 {
	if sourceID < 0 || sourceID+1 >= len(tm.offsets) {
		return nil
	}
	return tm.targets[tm.offsets[sourceID]:tm.offsets[sourceID+1]]
}

func (tm *targetMap) sourceCount() int {
	return len(tm.offsets) - 1
}

// --- Building --------------------------------------------------------------

// targetMapBuilder collects word ids per source id. Source ids must be added
// in non-decreasing order and without gaps; both slices grow with demand.
type targetMapBuilder struct {
	starts  []int   // first index into targets per source id
	targets []int32 // word ids in insertion order
}

// put appends wordID to the run of sourceID.
func (b *targetMapBuilder) put(sourceID, wordID int) error {
	if sourceID < 0 || wordID < 0 {
		return errors.Wrapf(ErrIllegalEntry, "negative target mapping %d -> %d", sourceID, wordID)
	}
	last := len(b.starts) - 1
	switch {
	case sourceID == last:
	case sourceID == last+1:
		b.starts = append(b.starts, len(b.targets))
	default:
		return errors.Wrapf(ErrIllegalEntry, "source ids must be contiguous: got %d after %d", sourceID, last)
	}
	if n := len(b.targets); n > 0 && int32(wordID) < b.targets[n-1] {
		return errors.Wrapf(ErrIllegalEntry, "word ids must ascend: got %d after %d", wordID, b.targets[n-1])
	}
	b.targets = append(b.targets, int32(wordID))
	return nil
}

// writeTo serializes the collected mapping.
func (b *targetMapBuilder) writeTo(w io.Writer) error {
	var o dataOutput
	o.writeHeader(targetMapCodec, formatVersion)
	o.writeVInt(int32(len(b.targets)))
	o.writeVInt(int32(len(b.starts) + 1))
	var prev int32
	next := 0 // next source id whose run starts
	for i, t := range b.targets {
		delta := (t - prev) << 1
		if next < len(b.starts) && b.starts[next] == i {
			delta |= 1
			next++
		}
		o.writeVInt(delta)
		prev = t
	}
	return o.flushTo(w)
}
