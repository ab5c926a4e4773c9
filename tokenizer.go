package morph

import (
	"bufio"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/morph/dict"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Mode selects how the tokenizer treats long words.
type Mode uint8

const (
	// Normal emits the best segmentation as is.
	Normal Mode = iota
	// Search decompounds long words into their parts and emits the compound
	// as an alternate token spanning them.
	Search
	// Extended is Search and, in addition, splits unknown words into
	// single characters.
	Extended
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Search:
		return "search"
	case Extended:
		return "extended"
	}
	return "Mode(?)"
}

// ParseMode returns the mode named s.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "normal":
		return Normal, nil
	case "search":
		return Search, nil
	case "extended":
		return Extended, nil
	}
	return Normal, errors.Errorf("unknown tokenizer mode %q", s)
}

// DictionaryProvider resolves the dictionary holding the words of a token
// type.
type DictionaryProvider interface {
	Dictionary(typ TokenType) dict.Dictionary
}

// Tokenizer segments text into tokens. A tokenizer holds the lattice of the
// text it currently works on and is not safe for concurrent use; the
// dictionaries it uses may be shared by many tokenizers.
type Tokenizer struct {
	system  *dict.TokenInfoDictionary
	user    *dict.UserDictionary
	costs   *dict.ConnectionCosts
	charDef *dict.CharacterDefinition
	unknown UnknownWordHandler

	mode                 Mode
	discardPunctuation   bool
	discardCompoundToken bool
	longestUserOnly      bool
	spacePenalty         SpacePenalty
	normalization        *norm.Form
	nbestCost            int
	lattice              *lattice
	dot                  *GraphvizFormatter

	buffer              rollingBuffer
	positions           positionArray
	pos                 int
	lastBackTracePos    int
	unknownWordEndIndex int
	end                 bool
	pending             []*Token
	lastTokenPos        int
}

// Option configures a tokenizer.
type Option func(*Tokenizer)

// WithMode sets the segmentation mode. The default is Search.
func WithMode(mode Mode) Option {
	return func(t *Tokenizer) { t.mode = mode }
}

// WithUserDictionary adds a user dictionary. A nil dictionary is ignored.
func WithUserDictionary(user *dict.UserDictionary) Option {
	return func(t *Tokenizer) { t.user = user }
}

// WithDiscardPunctuation drops punctuation tokens. The default is true.
func WithDiscardPunctuation(discard bool) Option {
	return func(t *Tokenizer) { t.discardPunctuation = discard }
}

// WithDiscardCompoundToken drops the compound token of decompounded words in
// search mode, keeping the parts only.
func WithDiscardCompoundToken(discard bool) Option {
	return func(t *Tokenizer) { t.discardCompoundToken = discard }
}

// WithLongestUserEntryOnly makes only the longest user phrase starting at an
// offset a lattice candidate.
func WithLongestUserEntryOnly(longest bool) Option {
	return func(t *Tokenizer) { t.longestUserOnly = longest }
}

// WithSpacePenalty treats a single space in front of a word as part of the
// word's path and charges penalty for the word. This is how Korean text,
// which separates phrases by spaces, is scored.
func WithSpacePenalty(penalty SpacePenalty) Option {
	return func(t *Tokenizer) { t.spacePenalty = penalty }
}

// WithNBestCost enables N-best output: every segmentation costing at most
// cost more than the best one contributes its tokens. 0 disables N-best.
func WithNBestCost(cost int) Option {
	return func(t *Tokenizer) { t.nbestCost = max(0, cost) }
}

// WithUnknownWordHandler replaces the default unknown-word strategy.
func WithUnknownWordHandler(h UnknownWordHandler) Option {
	return func(t *Tokenizer) { t.unknown = h }
}

// WithNormalization normalizes input text with form before segmentation.
// Token offsets then refer to the normalized text.
func WithNormalization(form norm.Form) Option {
	return func(t *Tokenizer) { t.normalization = &form }
}

// WithGraphviz records every flushed lattice section with g.
func WithGraphviz(g *GraphvizFormatter) Option {
	return func(t *Tokenizer) { t.dot = g }
}

// NewTokenizer creates a tokenizer working on res. Call Reset before
// reading tokens.
func NewTokenizer(res *dict.Resources, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		system:             res.System,
		costs:              res.Costs,
		charDef:            res.CharacterDefinition(),
		mode:               Search,
		discardPunctuation: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.unknown == nil {
		t.unknown = NewCharClassUnknownWords(res.Unknown)
	}
	t.Reset(strings.NewReader(""))
	return t
}

// Dictionary implements DictionaryProvider.
func (t *Tokenizer) Dictionary(typ TokenType) dict.Dictionary {
	switch typ {
	case Known:
		return t.system
	case Unknown:
		return t.unknown.Dictionary()
	case User:
		if t.user != nil {
			return t.user
		}
	}
	return nil
}

// Reset discards all state and starts over on input r.
func (t *Tokenizer) Reset(r io.Reader) {
	if t.normalization != nil {
		r = t.normalization.Reader(r)
	}
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	t.buffer.reset(rr)
	t.resetState()
}

func (t *Tokenizer) resetState() {
	t.positions.reset()
	t.pos = 0
	t.lastBackTracePos = 0
	t.unknownWordEndIndex = -1
	t.end = false
	t.pending = t.pending[:0]
	t.lastTokenPos = -1
	t.positions.get(0).add(0, 0, -1, -1, -1, -1, Known)
}

// Next returns the next token. At the end of input it returns io.EOF.
//
// Tokens are returned in input order. Alternate tokens (compounds in search
// mode, alternatives in N-best mode) follow the first token starting at the
// same offset and have a position increment of 0.
func (t *Tokenizer) Next() (*Token, error) {
	for len(t.pending) == 0 {
		if t.end {
			return nil, io.EOF
		}
		if err := t.forward(); err != nil {
			return nil, err
		}
	}
	tok := t.pending[len(t.pending)-1]
	t.pending = t.pending[:len(t.pending)-1]
	switch {
	case tok.position == t.lastTokenPos:
		tok.posInc = 0
	case t.nbestCost > 0:
		tok.posInc = 1
	default:
		tok.posInc = 1
		tok.posLen = 1
	}
	if tok.posLen == 0 {
		tok.posLen = 1
	}
	t.lastTokenPos = tok.position
	return tok, nil
}

// Tokenize segments text and returns all tokens.
func (t *Tokenizer) Tokenize(text string) ([]*Token, error) {
	t.Reset(strings.NewReader(text))
	var tokens []*Token
	for {
		tok, err := t.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}

// SetNBestCost changes the N-best cost threshold. It takes effect with the
// next lattice section.
func (t *Tokenizer) SetNBestCost(cost int) {
	t.nbestCost = max(0, cost)
}

// CalcNBestCost finds the N-best cost needed to produce expected tokens.
// examples is a '/'-separated list of "text-token" pairs; for each, the cost
// difference between the best path through text and the cheapest path
// containing token is measured. The largest difference is returned.
func (t *Tokenizer) CalcNBestCost(examples string) (int, error) {
	maxDelta := 0
	for _, example := range strings.Split(examples, "/") {
		if example == "" {
			continue
		}
		pair := strings.Split(example, "-")
		if len(pair) != 2 {
			return 0, errors.Errorf("malformed N-best example %q, expected text-token", example)
		}
		delta, err := t.probeDelta(pair[0], pair[1])
		if err != nil {
			return 0, err
		}
		if delta == -1 {
			tracer().Infof("N-best example %q: token not found in any lattice", example)
			continue
		}
		maxDelta = max(maxDelta, delta)
	}
	return maxDelta, nil
}

// probeDelta tokenizes text with minimal N-best search and measures the cost
// of the cheapest path through token. It returns -1 if no lattice section
// contains the token.
func (t *Tokenizer) probeDelta(text, token string) (int, error) {
	start := strings.Index(text, token)
	if start < 0 {
		return 0, errors.Errorf("N-best example: %q does not contain %q", text, token)
	}
	start = utf8.RuneCountInString(text[:start])
	end := start + utf8.RuneCountInString(token)
	saved := t.nbestCost
	defer func() { t.nbestCost = saved }()
	t.nbestCost = 1
	t.lattice = nil
	t.Reset(strings.NewReader(text))
	delta := -1
	prevBase := -1
	for {
		_, err := t.Next()
		if t.lattice != nil && t.lattice.rootBase != prevBase {
			prevBase = t.lattice.rootBase
			if d := t.lattice.probeDelta(start, end); d >= 0 && d != math.MaxInt && (delta < 0 || d < delta) {
				delta = d
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	t.Reset(strings.NewReader(""))
	return delta, nil
}
