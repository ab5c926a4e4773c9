package dict

import (
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/derekparker/trie"
	"github.com/npillmayer/morph/fst"
	"github.com/pkg/errors"
)

// Fixed context ids and cost of user dictionary words. The cost is low
// enough for a user phrase to beat any system dictionary segmentation.
const (
	UserContextID = 5
	UserWordCost  = -100000
)

// UserEntry is one phrase of a user dictionary: the surface form, its
// segmentation into words, one reading per segment and a POS tag shared by
// all segments.
type UserEntry struct {
	Surface      string
	Segments     []string
	Readings     []string
	PartOfSpeech string
	Line         int // source line, for messages
}

// UserEntryReader yields user dictionary entries one-by-one.
// It should return io.EOF when the stream is exhausted.
type UserEntryReader interface {
	Next() (UserEntry, error)
}

// UserDictionary maps user phrases to their custom segmentation.
//
// The lexicon output of a phrase is its ordinal in surface order. Every
// segment of a phrase is a word of its own; the word ids of a phrase's
// segments are consecutive.
type UserDictionary struct {
	lexicon       *fst.Lexicon
	segmentations [][]int // per ordinal: first word id, then segment lengths in runes
	readings      []string
	pos           []string
}

var _ Dictionary = (*UserDictionary)(nil)

// LoadUserDictionary compiles the entries of reader. Whitespace is removed
// from surfaces; entries are staged in a prefix tree, which rejects duplicate
// surfaces. A source without entries
// yields a nil dictionary.
func LoadUserDictionary(reader UserEntryReader) (*UserDictionary, error) {
	staging := trie.New()
	for {
		entry, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err = validateUserEntry(entry); err != nil {
			return nil, err
		}
		key := stripSpace(entry.Surface)
		if node, found := staging.Find(key); found {
			prev := node.Meta().(UserEntry)
			return nil, errors.Wrapf(ErrIllegalEntry, "line %d: duplicate user dictionary term %q (first seen in line %d)",
				entry.Line, key, prev.Line)
		}
		staging.Add(key, entry)
	}
	surfaces := staging.Keys()
	if len(surfaces) == 0 {
		tracer().Infof("user dictionary is empty")
		return nil, nil
	}
	sort.Strings(surfaces)
	u := &UserDictionary{segmentations: make([][]int, len(surfaces))}
	ords := make([]uint64, len(surfaces))
	for ord, surface := range surfaces {
		node, _ := staging.Find(surface)
		entry := node.Meta().(UserEntry)
		seg := make([]int, 0, len(entry.Segments)+1)
		seg = append(seg, len(u.readings))
		for i, s := range entry.Segments {
			seg = append(seg, utf8.RuneCountInString(s))
			u.readings = append(u.readings, entry.Readings[i])
			u.pos = append(u.pos, entry.PartOfSpeech)
		}
		u.segmentations[ord] = seg
		ords[ord] = uint64(ord)
	}
	lex, err := fst.BuildLexicon(surfaces, ords, fst.KanaCache)
	if err != nil {
		return nil, err
	}
	u.lexicon = lex
	tracer().Infof("user dictionary: %d phrases, %d words", len(surfaces), len(u.readings))
	return u, nil
}

func validateUserEntry(e UserEntry) error {
	if stripSpace(e.Surface) == "" || len(e.Segments) == 0 {
		return errors.Wrapf(ErrIllegalEntry, "line %d: empty user dictionary entry", e.Line)
	}
	if len(e.Segments) != len(e.Readings) {
		return errors.Wrapf(ErrIllegalEntry,
			"line %d: %q has %d segments but %d readings", e.Line, e.Surface, len(e.Segments), len(e.Readings))
	}
	if concat := strings.Join(e.Segments, ""); concat != stripSpace(e.Surface) {
		return errors.Wrapf(ErrIllegalEntry,
			"line %d: concatenated segmentation %q does not match surface form %q", e.Line, concat, e.Surface)
	}
	return nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Lexicon returns the automaton mapping phrases to ordinals.
func (u *UserDictionary) Lexicon() *fst.Lexicon {
	return u.lexicon
}

// LookupSegmentation returns the first word id and the segment lengths of a
// phrase.
func (u *UserDictionary) LookupSegmentation(phraseID int) []int {
	return u.segmentations[phraseID]
}

func (u *UserDictionary) LeftID(int) int   { return UserContextID }
func (u *UserDictionary) RightID(int) int  { return UserContextID }
func (u *UserDictionary) WordCost(int) int { return UserWordCost }

func (u *UserDictionary) BaseForm(wordID int, surface []rune) string {
	return string(surface)
}

func (u *UserDictionary) Reading(wordID int, surface []rune) string {
	return u.readings[wordID]
}

func (u *UserDictionary) Pronunciation(wordID int, surface []rune) string {
	return u.readings[wordID]
}

func (u *UserDictionary) PartOfSpeech(wordID int) string {
	return u.pos[wordID]
}

func (u *UserDictionary) InflectionType(int) string { return "" }
func (u *UserDictionary) InflectionForm(int) string { return "" }
