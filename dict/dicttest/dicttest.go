/*
Package dicttest builds small synthetic dictionaries for tests.

A Builder collects system words, connection costs and character classes and
writes them through the regular resource writers, so everything loaded from
it has passed the same binary round trip as a production dictionary.
*/
package dicttest

import (
	"bytes"
	"io"
	"sort"
	"testing"
	"unicode"

	"github.com/npillmayer/morph/dict"
	"github.com/npillmayer/morph/fst"
)

// Context ids reserved by the builder. Context 0 marks the beginning and end
// of the input.
const (
	BoundaryContextID = 0
	UnknownContextID  = 1
)

// Word is a system dictionary word.
type Word struct {
	Surface       string
	ContextID     int
	Cost          int16
	POS           string
	BaseForm      string
	Reading       string
	Pronunciation string
}

// Builder assembles a synthetic resource set.
type Builder struct {
	words       []Word
	costs       map[[2]int]int16
	unknownCost int16
	charDef     *dict.CharacterDefinitionWriter
}

// New creates a builder with a character definition covering ASCII, kana and
// CJK ideographs, and an unknown-word cost of 10000.
func New() *Builder {
	cd := dict.NewCharacterDefinitionWriter()
	cd.PutTable(unicode.Zs, dict.SPACE)
	cd.PutRange('\t', '\r', dict.SPACE)
	cd.PutTable(unicode.P, dict.SYMBOL)
	cd.PutTable(unicode.S, dict.SYMBOL)
	cd.PutRange('0', '9', dict.NUMERIC)
	cd.PutRange('A', 'Z', dict.ALPHA)
	cd.PutRange('a', 'z', dict.ALPHA)
	cd.PutRange(0x0391, 0x03C9, dict.GREEK)
	cd.PutRange(0x0400, 0x04FF, dict.CYRILLIC)
	cd.PutRange(0x3041, 0x309F, dict.HIRAGANA)
	cd.PutRange(0x30A1, 0x30FF, dict.KATAKANA)
	cd.PutRange(0x4E00, 0x9FFF, dict.KANJI)
	for _, r := range "〇一二三四五六七八九十百千万億兆" {
		cd.PutRange(r, r, dict.KANJINUMERIC)
	}
	cd.PutFlags(dict.DEFAULT, false, true)
	cd.PutFlags(dict.SPACE, false, true)
	cd.PutFlags(dict.SYMBOL, true, true)
	cd.PutFlags(dict.NUMERIC, true, true)
	cd.PutFlags(dict.ALPHA, false, true)
	cd.PutFlags(dict.CYRILLIC, true, true)
	cd.PutFlags(dict.GREEK, true, true)
	cd.PutFlags(dict.HIRAGANA, false, true)
	cd.PutFlags(dict.KATAKANA, true, true)
	cd.PutFlags(dict.KANJI, false, false)
	cd.PutFlags(dict.KANJINUMERIC, true, true)
	return &Builder{
		costs:       make(map[[2]int]int16),
		unknownCost: 10000,
		charDef:     cd,
	}
}

// Word adds a system word with reading and base form defaulted.
func (b *Builder) Word(surface string, contextID int, cost int16, pos string) *Builder {
	return b.AddWord(Word{Surface: surface, ContextID: contextID, Cost: cost, POS: pos})
}

// AddWord adds a system word.
func (b *Builder) AddWord(w Word) *Builder {
	b.words = append(b.words, w)
	return b
}

// Connect sets the cost of a word with right context rightID followed by a
// word with left context leftID. Unset pairs cost 0.
func (b *Builder) Connect(rightID, leftID int, cost int16) *Builder {
	b.costs[[2]int{rightID, leftID}] = cost
	return b
}

// UnknownCost sets the word cost of all unknown-word entries.
func (b *Builder) UnknownCost(cost int16) *Builder {
	b.unknownCost = cost
	return b
}

// CharacterDefinition gives access to the character classes for tweaking.
func (b *Builder) CharacterDefinition() *dict.CharacterDefinitionWriter {
	return b.charDef
}

// Files writes all resources.
func (b *Builder) Files() (dict.Files, error) {
	files := make(dict.Files)
	write := func(name string, f func(io.Writer) error) error {
		var buf bytes.Buffer
		if err := f(&buf); err != nil {
			return err
		}
		files[name] = buf.Bytes()
		return nil
	}
	contexts := max(dict.UserContextID, UnknownContextID) + 1
	for _, w := range b.words {
		contexts = max(contexts, w.ContextID+1)
	}
	for k := range b.costs {
		contexts = max(contexts, k[0]+1, k[1]+1)
	}
	cc := dict.NewConnectionCostsWriter(contexts, contexts)
	for k, cost := range b.costs {
		cc.Add(k[0], k[1], cost)
	}
	if err := write(dict.ConnectionCostsFile, func(w io.Writer) error {
		_, err := cc.WriteTo(w)
		return err
	}); err != nil {
		return nil, err
	}
	if err := write(dict.CharacterDefinitionFile, func(w io.Writer) error {
		_, err := b.charDef.WriteTo(w)
		return err
	}); err != nil {
		return nil, err
	}
	system, surfaces, err := b.systemDictionary()
	if err != nil {
		return nil, err
	}
	ords := make([]uint64, len(surfaces))
	for i := range ords {
		ords[i] = uint64(i)
	}
	unknown, err := b.unknownDictionary()
	if err != nil {
		return nil, err
	}
	for _, step := range []struct {
		name string
		f    func(io.Writer) error
	}{
		{dict.TokenInfoTargetMapFile, system.WriteTargetMap},
		{dict.TokenInfoBufferFile, system.WriteDictionary},
		{dict.TokenInfoPOSDictFile, system.WritePOSDict},
		{dict.TokenInfoFSTFile, func(w io.Writer) error { return dict.WriteLexicon(w, surfaces, ords) }},
		{dict.UnknownTargetMapFile, unknown.WriteTargetMap},
		{dict.UnknownBufferFile, unknown.WriteDictionary},
		{dict.UnknownPOSDictFile, unknown.WritePOSDict},
	} {
		if err := write(step.name, step.f); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// systemDictionary writes the words grouped by surface; the ordinal of a
// surface in sort order is its source id.
func (b *Builder) systemDictionary() (*dict.BinaryDictionaryWriter, []string, error) {
	words := make([]Word, len(b.words))
	copy(words, b.words)
	sort.SliceStable(words, func(i, j int) bool { return words[i].Surface < words[j].Surface })
	w := dict.NewBinaryDictionaryWriter()
	var surfaces []string
	for _, word := range words {
		if len(surfaces) == 0 || surfaces[len(surfaces)-1] != word.Surface {
			surfaces = append(surfaces, word.Surface)
		}
		pos := word.POS
		if pos == "" {
			pos = "名詞"
		}
		wordID, err := w.Put(dict.Entry{
			Surface:       word.Surface,
			ContextID:     word.ContextID,
			Cost:          word.Cost,
			PartOfSpeech:  pos,
			BaseForm:      word.BaseForm,
			Reading:       word.Reading,
			Pronunciation: word.Pronunciation,
		})
		if err != nil {
			return nil, nil, err
		}
		if err = w.AddMapping(len(surfaces)-1, wordID); err != nil {
			return nil, nil, err
		}
	}
	return w, surfaces, nil
}

// unknownDictionary writes one entry per character class.
func (b *Builder) unknownDictionary() (*dict.BinaryDictionaryWriter, error) {
	w := dict.NewBinaryDictionaryWriter()
	for class := 0; class < dict.ClassCount; class++ {
		wordID, err := w.Put(dict.Entry{
			Surface:      "*",
			ContextID:    UnknownContextID,
			Cost:         b.unknownCost,
			PartOfSpeech: "名詞-未知語",
		})
		if err != nil {
			return nil, err
		}
		if err = w.AddMapping(class, wordID); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Build writes and loads the resources.
func (b *Builder) Build() (*dict.Resources, error) {
	files, err := b.Files()
	if err != nil {
		return nil, err
	}
	return dict.Load(files, fst.KanaCache)
}

// MustBuild is Build for tests.
func (b *Builder) MustBuild(t testing.TB) *dict.Resources {
	t.Helper()
	r, err := b.Build()
	if err != nil {
		t.Fatalf("cannot build test dictionary: %v", err)
	}
	return r
}
