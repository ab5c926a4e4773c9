package dict

import (
	"bytes"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

type writtenDictionary struct {
	d   *BinaryDictionary
	ids []int
}

func writeDictionary(t *testing.T, entries []Entry) writtenDictionary {
	t.Helper()
	w := NewBinaryDictionaryWriter()
	var ids []int
	for i, e := range entries {
		id, err := w.Put(e)
		require.NoError(t, err, spew.Sdump(e))
		require.NoError(t, w.AddMapping(i, id))
		ids = append(ids, id)
	}
	var tm, buf, pos bytes.Buffer
	require.NoError(t, w.WriteTargetMap(&tm))
	require.NoError(t, w.WriteDictionary(&buf))
	require.NoError(t, w.WritePOSDict(&pos))
	d, err := NewBinaryDictionary(tm.Bytes(), buf.Bytes(), pos.Bytes())
	require.NoError(t, err)
	return writtenDictionary{d: d, ids: ids}
}

func TestEntryAttributes(t *testing.T) {
	entries := []Entry{
		{Surface: "食べた", ContextID: 12, Cost: 3000, PartOfSpeech: "動詞-自立",
			InflectionType: "一段", InflectionForm: "連用形", BaseForm: "食べる", Reading: "タベタ"},
		{Surface: "東京", ContextID: 7, Cost: -200, PartOfSpeech: "名詞-固有名詞",
			Reading: "トウキョウ", Pronunciation: "トーキョー"},
		{Surface: "ひらがな", ContextID: 3, Cost: 10, PartOfSpeech: "名詞"},
		{Surface: "NHK", ContextID: 3, Cost: 10, PartOfSpeech: "名詞", Reading: "エヌエイチケー"},
		{Surface: "𠮷野家", ContextID: 7, Cost: 0, PartOfSpeech: "名詞-固有名詞",
			BaseForm: "𠮷野屋", Reading: "よしのや"},
	}
	wd := writeDictionary(t, entries)
	d := wd.d
	tests := []struct {
		base, reading, pron string
	}{
		{"食べる", "タベタ", "タベタ"},
		{"東京", "トウキョウ", "トーキョー"},
		{"ひらがな", "ヒラガナ", "ヒラガナ"},
		{"NHK", "エヌエイチケー", "エヌエイチケー"},
		{"𠮷野屋", "よしのや", "よしのや"},
	}
	for i, tt := range tests {
		id, e := wd.ids[i], entries[i]
		surface := []rune(e.Surface)
		require.Equal(t, e.ContextID, d.LeftID(id), e.Surface)
		require.Equal(t, e.ContextID, d.RightID(id), e.Surface)
		require.Equal(t, int(e.Cost), d.WordCost(id), e.Surface)
		require.Equal(t, tt.base, d.BaseForm(id, surface), e.Surface)
		require.Equal(t, tt.reading, d.Reading(id, surface), e.Surface)
		require.Equal(t, tt.pron, d.Pronunciation(id, surface), e.Surface)
		require.Equal(t, e.PartOfSpeech, d.PartOfSpeech(id), e.Surface)
		require.Equal(t, e.InflectionType, d.InflectionType(id), e.Surface)
		require.Equal(t, e.InflectionForm, d.InflectionForm(id), e.Surface)
		require.Equal(t, []int32{int32(id)}, d.LookupWordIDs(i))
	}
	require.Equal(t, len(entries), d.SourceCount())
}

func TestEntryRejected(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"no POS", Entry{Surface: "x", ContextID: 1}},
		{"context id", Entry{Surface: "x", ContextID: maxContextID + 1, PartOfSpeech: "名詞"}},
		{"negative context id", Entry{Surface: "x", ContextID: -1, PartOfSpeech: "名詞"}},
		{"long base form", Entry{Surface: "x", ContextID: 1, PartOfSpeech: "名詞",
			BaseForm: "abcdefghijklmnopqrstuvwxyz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBinaryDictionaryWriter().Put(tt.entry)
			require.ErrorIs(t, err, ErrIllegalEntry)
		})
	}
}

func TestEntryPOSConflict(t *testing.T) {
	w := NewBinaryDictionaryWriter()
	_, err := w.Put(Entry{Surface: "a", ContextID: 4, PartOfSpeech: "名詞"})
	require.NoError(t, err)
	_, err = w.Put(Entry{Surface: "b", ContextID: 4, PartOfSpeech: "動詞"})
	require.ErrorIs(t, err, ErrIllegalEntry)
}

func TestBinaryDictionaryCorrupt(t *testing.T) {
	w := NewBinaryDictionaryWriter()
	id, err := w.Put(Entry{Surface: "a", ContextID: 4, PartOfSpeech: "名詞"})
	require.NoError(t, err)
	require.NoError(t, w.AddMapping(0, id))
	require.NoError(t, w.AddMapping(0, id+100))
	var tm, buf, pos bytes.Buffer
	require.NoError(t, w.WriteTargetMap(&tm))
	require.NoError(t, w.WriteDictionary(&buf))
	require.NoError(t, w.WritePOSDict(&pos))
	_, err = NewBinaryDictionary(tm.Bytes(), buf.Bytes(), pos.Bytes())
	require.ErrorIs(t, err, ErrCorruptData, "word id beyond buffer")

	var good BinaryDictionaryWriter
	id, err = good.Put(Entry{Surface: "a", ContextID: 4, PartOfSpeech: "名詞"})
	require.NoError(t, err)
	require.NoError(t, good.AddMapping(0, id))
	tm.Reset()
	pos.Reset()
	buf.Reset()
	require.NoError(t, good.WriteTargetMap(&tm))
	require.NoError(t, good.WriteDictionary(&buf))
	require.NoError(t, good.WritePOSDict(&pos))
	_, err = NewBinaryDictionary(tm.Bytes(), buf.Bytes(), pos.Bytes()[:pos.Len()-2])
	require.ErrorIs(t, err, ErrCorruptData, "truncated POS table")

	d, err := NewBinaryDictionary(tm.Bytes(), buf.Bytes(), nil)
	require.NoError(t, err)
	require.Equal(t, "", d.PartOfSpeech(id))
}

func TestUTF16Prefix(t *testing.T) {
	s := []rune("𠮷野家")
	require.Equal(t, "", string(utf16Prefix(s, 0)))
	require.Equal(t, "𠮷", string(utf16Prefix(s, 2)))
	require.Equal(t, "𠮷野", string(utf16Prefix(s, 3)))
	require.Equal(t, "𠮷野家", string(utf16Prefix(s, 10)))
}
