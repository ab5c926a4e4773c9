package dict

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func buildTargetMap(t *testing.T, mappings [][2]int) *targetMap {
	t.Helper()
	var b targetMapBuilder
	for _, m := range mappings {
		if err := b.put(m[0], m[1]); err != nil {
			t.Fatalf("put(%d, %d) failed: %v", m[0], m[1], err)
		}
	}
	var buf bytes.Buffer
	if err := b.writeTo(&buf); err != nil {
		t.Fatalf("writeTo failed: %v", err)
	}
	tm, err := readTargetMap(buf.Bytes())
	if err != nil {
		t.Fatalf("readTargetMap failed: %v", err)
	}
	return tm
}

func TestTargetMapLookup(t *testing.T) {
	tm := buildTargetMap(t, [][2]int{{0, 0}, {0, 9}, {1, 20}, {2, 31}, {2, 40}, {2, 300}})
	if n := tm.sourceCount(); n != 3 {
		t.Fatalf("expected 3 sources, have %d", n)
	}
	covered := 0
	for source := 0; source < tm.sourceCount(); source++ {
		covered += len(tm.lookup(source))
	}
	if covered != len(tm.targets) {
		t.Fatalf("sources cover %d of %d word ids", covered, len(tm.targets))
	}
	for source, want := range [][]int32{{0, 9}, {20}, {31, 40, 300}} {
		if got := tm.lookup(source); !reflect.DeepEqual(got, want) {
			t.Fatalf("lookup(%d) mismatch: got %v, want %v", source, got, want)
		}
	}
}

func TestTargetMapLookupOutOfRange(t *testing.T) {
	tm := buildTargetMap(t, [][2]int{{0, 4}})
	for _, source := range []int{-1, 1, 100} {
		if got := tm.lookup(source); got != nil {
			t.Fatalf("lookup(%d) should be empty, is %v", source, got)
		}
	}
}

func TestTargetMapEmpty(t *testing.T) {
	tm := buildTargetMap(t, nil)
	if n := tm.sourceCount(); n != 0 {
		t.Fatalf("expected empty map, have %d sources", n)
	}
}

func TestTargetMapBuilderRejectsGaps(t *testing.T) {
	var b targetMapBuilder
	if err := b.put(0, 1); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := b.put(2, 5); !errors.Is(err, ErrIllegalEntry) {
		t.Fatalf("expected error for source gap, got %v", err)
	}
	if err := b.put(1, 0); !errors.Is(err, ErrIllegalEntry) {
		t.Fatalf("expected error for descending word id, got %v", err)
	}
	if err := b.put(-1, 0); !errors.Is(err, ErrIllegalEntry) {
		t.Fatalf("expected error for negative source, got %v", err)
	}
}

func TestTargetMapCorrupt(t *testing.T) {
	header := func() *dataOutput {
		var o dataOutput
		o.writeHeader(targetMapCodec, formatVersion)
		return &o
	}
	tooManySources := header()
	tooManySources.writeVInt(2)
	tooManySources.writeVInt(2)
	tooManySources.writeVInt(1)
	tooManySources.writeVInt(1)
	missingSource := header()
	missingSource.writeVInt(1)
	missingSource.writeVInt(3)
	missingSource.writeVInt(1)
	truncated := header()
	truncated.writeVInt(5)
	truncated.writeVInt(2)
	truncated.writeVInt(1)
	for name, data := range map[string][]byte{
		"too many sources": tooManySources.Bytes(),
		"missing source":   missingSource.Bytes(),
		"truncated":        truncated.Bytes(),
	} {
		if _, err := readTargetMap(data); !errors.Is(err, ErrCorruptData) {
			t.Fatalf("%s: expected corrupt data error, got %v", name, err)
		}
	}
}
