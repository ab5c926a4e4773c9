package fst

import (
	"bytes"
	"io"
	"sort"
	"unicode/utf8"

	"github.com/blevesearch/vellum"
	"github.com/pkg/errors"
)

// CacheRange is the (inclusive) range of runes whose root transitions are
// cached.
type CacheRange struct {
	Floor, Ceiling rune
}

// Cache ranges for common scripts.
var (
	// Hiragana and katakana.
	KanaCache = CacheRange{0x3040, 0x30FF}
	// Kana, CJK symbols and the unified ideographs; needs about 1 MB.
	JapaneseCache = CacheRange{0x3040, 0x9FFF}
	// Hangul syllables.
	HangulCache = CacheRange{0xAC00, 0xD7A3}
)

// Arc is the result of following a transition. Output is the output
// collected on the transition; if Final is set, the rune sequence leading
// here is a complete key and FinalOutput must be added to the accumulated
// output to yield the key's value.
type Arc struct {
	state       int
	Output      uint64
	Final       bool
	FinalOutput uint64
}

// Lexicon is a read-only automaton with a character-level transition API.
// It is safe for concurrent use.
type Lexicon struct {
	fst       *vellum.FST
	root      Arc
	cache     CacheRange
	rootCache []Arc
	rootHit   []bool
}

// Load decodes an automaton built with Build. data is retained.
func Load(data []byte, cache CacheRange) (*Lexicon, error) {
	f, err := vellum.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot load lexicon automaton")
	}
	return newLexicon(f, cache), nil
}

func newLexicon(f *vellum.FST, cache CacheRange) *Lexicon {
	lex := &Lexicon{fst: f, cache: cache}
	start := f.Start()
	final, out := f.IsMatchWithVal(start)
	lex.root = Arc{state: start, Final: final, FinalOutput: out}
	if cache.Ceiling >= cache.Floor {
		n := int(cache.Ceiling-cache.Floor) + 1
		lex.rootCache = make([]Arc, n)
		lex.rootHit = make([]bool, n)
		hits := 0
		for i := 0; i < n; i++ {
			if arc, ok := lex.follow(cache.Floor+rune(i), lex.root); ok {
				lex.rootCache[i], lex.rootHit[i] = arc, true
				hits++
			}
		}
		tracer().Debugf("lexicon root cache %U..%U: %d of %d runes start a key",
			cache.Floor, cache.Ceiling, hits, n)
	}
	return lex
}

// FirstArc returns the root of the automaton.
func (lex *Lexicon) FirstArc() Arc {
	return lex.root
}

// FindTargetArc follows the transition labeled r out of from. It returns
// false if there is no such transition. useCache must only be set if from is
// the root arc.
func (lex *Lexicon) FindTargetArc(r rune, from Arc, useCache bool) (Arc, bool) {
	if useCache && r >= lex.cache.Floor && r <= lex.cache.Ceiling && lex.rootCache != nil {
		assert(from.state == lex.root.state, "cached lookup must start at the root")
		i := r - lex.cache.Floor
		return lex.rootCache[i], lex.rootHit[i]
	}
	return lex.follow(r, from)
}

// follow walks the UTF-8 bytes of r.
func (lex *Lexicon) follow(r rune, from Arc) (Arc, bool) {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	state := from.state
	var out uint64
	for _, b := range buf[:n] {
		next, val := lex.fst.AcceptWithVal(state, b)
		if !lex.fst.CanMatch(next) {
			return Arc{}, false
		}
		state = next
		out += val
	}
	final, finalOut := lex.fst.IsMatchWithVal(state)
	return Arc{state: state, Output: out, Final: final, FinalOutput: finalOut}, true
}

// Get returns the value of a complete key.
func (lex *Lexicon) Get(key string) (uint64, bool) {
	v, ok, err := lex.fst.Get([]byte(key))
	if err != nil {
		return 0, false
	}
	return v, ok
}

// Len returns the number of keys.
func (lex *Lexicon) Len() int {
	return lex.fst.Len()
}

// Stats reports density metrics of the root cache.
func (lex *Lexicon) Stats() Stats {
	s := Stats{Keys: lex.fst.Len(), CacheSlots: len(lex.rootHit)}
	for _, hit := range lex.rootHit {
		if hit {
			s.CacheHits++
		}
	}
	return s
}

// Stats describes a lexicon.
type Stats struct {
	Keys       int
	CacheSlots int
	CacheHits  int
}

// FillRatio is the share of cached root transitions which lead somewhere.
func (s Stats) FillRatio() float64 {
	if s.CacheSlots == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(s.CacheSlots)
}

// Build writes an automaton mapping keys[i] to values[i]. Keys must be unique;
// they need not be sorted.
func Build(w io.Writer, keys []string, values []uint64) error {
	if len(keys) != len(values) {
		return errors.Errorf("%d keys, but %d values", len(keys), len(values))
	}
	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
	builder, err := vellum.New(w, nil)
	if err != nil {
		return errors.Wrap(err, "cannot create automaton builder")
	}
	for _, i := range order {
		if err := builder.Insert([]byte(keys[i]), values[i]); err != nil {
			return errors.Wrapf(err, "cannot insert key %q", keys[i])
		}
	}
	return errors.Wrap(builder.Close(), "cannot finish automaton")
}

// BuildLexicon builds an automaton in memory and loads it.
func BuildLexicon(keys []string, values []uint64, cache CacheRange) (*Lexicon, error) {
	var buf bytes.Buffer
	if err := Build(&buf, keys, values); err != nil {
		return nil, err
	}
	return Load(buf.Bytes(), cache)
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
