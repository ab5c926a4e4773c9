package morph

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/npillmayer/morph/dict"
	"github.com/npillmayer/morph/dict/dicttest"
	"github.com/npillmayer/morph/userdict"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

// tokenSummary is the observable shape of a token.
type tokenSummary struct {
	Surface string
	PosInc  int
	PosLen  int
	Type    TokenType
}

func summarize(tokens []*Token) []tokenSummary {
	s := make([]tokenSummary, len(tokens))
	for i, tok := range tokens {
		s[i] = tokenSummary{tok.Surface(), tok.PositionIncrement(), tok.PositionLength(), tok.Type()}
	}
	return s
}

func surfaces(tokens []*Token) []string {
	s := make([]string, len(tokens))
	for i, tok := range tokens {
		s[i] = tok.Surface()
	}
	return s
}

func tokenize(t *testing.T, tk *Tokenizer, text string) []*Token {
	t.Helper()
	tokens, err := tk.Tokenize(text)
	require.NoError(t, err, text)
	return tokens
}

func airportDictionary(t *testing.T) *dict.Resources {
	return dicttest.New().
		Word("関西", 2, 2000, "").
		Word("国際", 2, 2000, "").
		Word("空港", 2, 2000, "").
		Word("関西国際空港", 2, 1000, "").
		MustBuild(t)
}

func TestEmptyInput(t *testing.T) {
	tk := NewTokenizer(airportDictionary(t))
	require.Empty(t, tokenize(t, tk, ""))
}

func TestNormalModeKeepsCompound(t *testing.T) {
	tk := NewTokenizer(airportDictionary(t), WithMode(Normal))
	tokens := tokenize(t, tk, "関西国際空港")
	require.Equal(t, []tokenSummary{{"関西国際空港", 1, 1, Known}}, summarize(tokens))
	require.Equal(t, 0, tokens[0].Start())
	require.Equal(t, 6, tokens[0].End())
}

func TestSearchModeDecompounds(t *testing.T) {
	tk := NewTokenizer(airportDictionary(t), WithMode(Search))
	tokens := tokenize(t, tk, "関西国際空港")
	want := []tokenSummary{
		{"関西", 1, 1, Known},
		{"関西国際空港", 0, 3, Known},
		{"国際", 1, 1, Known},
		{"空港", 1, 1, Known},
	}
	if !require.Equal(t, want, summarize(tokens)) {
		t.Log(spew.Sdump(summarize(tokens)))
	}

	tk = NewTokenizer(airportDictionary(t), WithMode(Search), WithDiscardCompoundToken(true))
	require.Equal(t, []string{"関西", "国際", "空港"}, surfaces(tokenize(t, tk, "関西国際空港")))
}

func TestTokenAttributes(t *testing.T) {
	res := dicttest.New().
		AddWord(dicttest.Word{Surface: "食べ", ContextID: 2, Cost: 100, POS: "動詞-自立",
			BaseForm: "食べる", Reading: "タベ"}).
		Word("た", 3, 100, "助動詞").
		MustBuild(t)
	tokens := tokenize(t, NewTokenizer(res), "食べた")
	require.Len(t, tokens, 2)
	require.Equal(t, "食べる", tokens[0].BaseForm())
	require.Equal(t, "タベ", tokens[0].Reading())
	require.Equal(t, "動詞-自立", tokens[0].PartOfSpeech())
	require.Equal(t, "た", tokens[1].BaseForm())
	require.Equal(t, "タ", tokens[1].Reading())
	require.Equal(t, "助動詞", tokens[1].PartOfSpeech())
	require.Same(t, res.System, tokens[0].Dictionary())
}

func TestUnknownWords(t *testing.T) {
	res := dicttest.New().Word("東京", 2, 100, "").MustBuild(t)
	tk := NewTokenizer(res, WithMode(Normal))
	tokens := tokenize(t, tk, "xyz東京")
	require.Equal(t, []tokenSummary{{"xyz", 1, 1, Unknown}, {"東京", 1, 1, Known}}, summarize(tokens))
	require.Equal(t, "名詞-未知語", tokens[0].PartOfSpeech())
	require.Equal(t, "xyz", tokens[0].Reading())

	// kanji are not grouped
	require.Equal(t, []string{"大", "阪"}, surfaces(tokenize(t, tk, "大阪")))
}

// twoCharUnknowns proposes one and two character unknown words at 'x' and
// single characters elsewhere, recording where it was asked.
type twoCharUnknowns struct {
	*CharClassUnknownWords
	wordID int
	asked  []int
}

func (u *twoCharUnknowns) ProcessUnknownWord(text RuneSource, pos int, anyMatches bool,
	emit func(length, wordID int)) int {
	if anyMatches {
		return 0
	}
	u.asked = append(u.asked, pos)
	emit(1, u.wordID)
	if text.RuneAt(pos) == 'x' {
		emit(2, u.wordID)
		return 2
	}
	return 1
}

func TestUnknownWordAfterSpaceCoversItsText(t *testing.T) {
	res := dicttest.New().Word("東京", 2, 100, "").MustBuild(t)
	class := res.CharacterDefinition().Class('x')
	handler := &twoCharUnknowns{
		CharClassUnknownWords: NewCharClassUnknownWords(res.Unknown),
		wordID:                int(res.Unknown.LookupWordIDs(int(class))[0]),
	}
	tk := NewTokenizer(res, WithMode(Normal), WithUnknownWordHandler(handler),
		WithSpacePenalty(POSSpacePenalty(1000, "助詞")))
	tokens := tokenize(t, tk, "東京 xyz")
	// offset 4 lies inside the unknown word "xy" starting after the space
	require.Equal(t, []int{3, 5}, handler.asked)
	require.Equal(t, "z", tokens[len(tokens)-1].Surface())
}

func TestExtendedModeUnigrams(t *testing.T) {
	res := dicttest.New().Word("東京", 2, 100, "").MustBuild(t)
	tk := NewTokenizer(res, WithMode(Extended))
	tokens := tokenize(t, tk, "xyz東京")
	require.Equal(t, []tokenSummary{
		{"x", 1, 1, Unknown},
		{"y", 1, 1, Unknown},
		{"z", 1, 1, Unknown},
		{"東京", 1, 1, Known},
	}, summarize(tokens))
}

func TestDiscardPunctuation(t *testing.T) {
	res := dicttest.New().Word("東京", 2, 100, "").Word("京都", 2, 100, "").MustBuild(t)
	tk := NewTokenizer(res)
	require.Equal(t, []string{"東京", "京都"}, surfaces(tokenize(t, tk, "東京、京都。")))

	tk = NewTokenizer(res, WithDiscardPunctuation(false))
	tokens := tokenize(t, tk, "東京、京都。")
	require.Equal(t, []string{"東京", "、", "京都", "。"}, surfaces(tokens))
	require.Equal(t, 2, tokens[1].Start())
	require.Equal(t, 3, tokens[2].Start())
}

func TestSpacePenalty(t *testing.T) {
	res := dicttest.New().
		Word("東京", 2, 100, "名詞").
		Word("は", 3, 100, "助詞").
		Word("し", 4, 100, "動詞").
		Word("はし", 2, 500, "名詞").
		MustBuild(t)
	tk := NewTokenizer(res)
	require.Equal(t, []string{"東京", "は", "し"}, surfaces(tokenize(t, tk, "東京 はし")))

	penalty := POSSpacePenalty(1000, "助詞", "助動詞")
	tk = NewTokenizer(res, WithSpacePenalty(penalty))
	require.Equal(t, []string{"東京", "はし"}, surfaces(tokenize(t, tk, "東京 はし")))

	tk = NewTokenizer(res, WithSpacePenalty(penalty), WithDiscardPunctuation(false))
	tokens := tokenize(t, tk, "東京 はし")
	require.Equal(t, []string{"東京", " ", "はし"}, surfaces(tokens))
	require.Equal(t, Unknown, tokens[1].Type())
	require.Equal(t, 3, tokens[2].Start())
}

func TestUserDictionary(t *testing.T) {
	user, err := userdict.Load(strings.NewReader("関西国際空港,関西 国際 空港,カンサイ コクサイ クウコウ,カスタム名詞\n"))
	require.NoError(t, err)
	tk := NewTokenizer(airportDictionary(t), WithUserDictionary(user))
	tokens := tokenize(t, tk, "関西国際空港")
	require.Equal(t, []tokenSummary{
		{"関西", 1, 1, User},
		{"国際", 1, 1, User},
		{"空港", 1, 1, User},
	}, summarize(tokens))
	require.Equal(t, "コクサイ", tokens[1].Reading())
	require.Equal(t, "カスタム名詞", tokens[2].PartOfSpeech())
	require.Equal(t, 4, tokens[2].Start())
}

func TestUserPhraseWithSpace(t *testing.T) {
	user, err := userdict.Load(strings.NewReader("関西 国際空港,関西 国際空港,カンサイ コクサイクウコウ,カスタム名詞\n"))
	require.NoError(t, err)
	tk := NewTokenizer(airportDictionary(t), WithUserDictionary(user))
	tokens := tokenize(t, tk, "関西国際空港")
	require.Equal(t, []tokenSummary{
		{"関西", 1, 1, User},
		{"国際空港", 1, 1, User},
	}, summarize(tokens))
	require.Equal(t, 2, tokens[1].Start())
	require.Equal(t, "コクサイクウコウ", tokens[1].Reading())

	// no character of the input is lost
	var text strings.Builder
	for _, tok := range tokenize(t, tk, "関西 国際空港") {
		text.WriteString(strings.TrimSpace(tok.Surface()))
	}
	require.Equal(t, "関西国際空港", text.String())
}

func TestResetReusesTokenizer(t *testing.T) {
	tk := NewTokenizer(airportDictionary(t), WithMode(Normal))
	first := surfaces(tokenize(t, tk, "関西国際空港"))
	tk.Reset(strings.NewReader("国際空港"))
	tok, err := tk.Next()
	require.NoError(t, err)
	require.Equal(t, "国際", tok.Surface())
	require.Equal(t, first, surfaces(tokenize(t, tk, "関西国際空港")))
}

func TestNormalization(t *testing.T) {
	res := dicttest.New().Word("カナ", 2, 100, "").MustBuild(t)
	tk := NewTokenizer(res, WithNormalization(norm.NFKC))
	require.Equal(t, []string{"カナ"}, surfaces(tokenize(t, tk, "ｶﾅ")))
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Normal, Search, Extended} {
		parsed, err := ParseMode(strings.ToUpper(m.String()))
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	}
	_, err := ParseMode("fast")
	require.Error(t, err)
}

// bruteForceCost enumerates all segmentations of text into dictionary words
// and returns the cost of the cheapest one.
func bruteForceCost(res *dict.Resources, text []rune) int {
	lex := res.System.Lexicon()
	var best func(pos, rightID int) int
	best = func(pos, rightID int) int {
		if pos == len(text) {
			return res.Costs.Get(rightID, 0)
		}
		least := -1
		for end := pos + 1; end <= len(text); end++ {
			ord, ok := lex.Get(string(text[pos:end]))
			if !ok {
				continue
			}
			for _, id := range res.System.LookupWordIDs(int(ord)) {
				w := int(id)
				cost := res.Costs.Get(rightID, res.System.LeftID(w)) + res.System.WordCost(w) +
					best(end, res.System.RightID(w))
				if least < 0 || cost < least {
					least = cost
				}
			}
		}
		return least
	}
	return best(0, 0)
}

func pathCost(res *dict.Resources, tokens []*Token) int {
	cost, rightID := 0, 0
	for _, tok := range tokens {
		d := tok.Dictionary()
		cost += res.Costs.Get(rightID, d.LeftID(tok.WordID())) + d.WordCost(tok.WordID())
		rightID = d.RightID(tok.WordID())
	}
	return cost + res.Costs.Get(rightID, 0)
}

func TestViterbiFindsCheapestPath(t *testing.T) {
	res := dicttest.New().
		Word("a", 2, 300, "").
		Word("a", 4, 350, "").
		Word("b", 3, 250, "").
		Word("ab", 4, 400, "").
		Word("ba", 2, 520, "").
		Word("aba", 3, 600, "").
		Word("bb", 4, 450, "").
		Connect(2, 3, -100).
		Connect(3, 2, 200).
		Connect(4, 4, 150).
		Connect(2, 2, 80).
		Connect(3, 4, -40).
		Connect(4, 2, 60).
		Connect(0, 4, 30).
		Connect(4, 0, 70).
		Connect(3, 0, -20).
		MustBuild(t)
	tk := NewTokenizer(res, WithMode(Normal))
	for n := 1; n <= 8; n++ {
		for bits := 0; bits < 1<<n; bits++ {
			text := make([]rune, n)
			for i := range text {
				text[i] = 'a' + rune(bits>>i&1)
			}
			tokens := tokenize(t, tk, string(text))
			if got := strings.Join(surfaces(tokens), ""); got != string(text) {
				t.Fatalf("%s: tokens do not cover input: %v", string(text), surfaces(tokens))
			}
			if want, got := bruteForceCost(res, text), pathCost(res, tokens); got != want {
				t.Fatalf("%s: path %v costs %d, cheapest is %d", string(text), surfaces(tokens), got, want)
			}
		}
	}
}

func TestLongInputIsFlushed(t *testing.T) {
	res := dicttest.New().Word("a", 2, 10, "").Word("aa", 2, 15, "").MustBuild(t)
	tk := NewTokenizer(res, WithMode(Normal))
	text := strings.Repeat("a", 3*maxBacktraceGap+17)
	tokens := tokenize(t, tk, text)
	require.Equal(t, text, strings.Join(surfaces(tokens), ""))
	end := 0
	for _, tok := range tokens {
		require.LessOrEqual(t, tok.Len(), 2)
		require.Equal(t, end, tok.Start())
		end = tok.End()
	}
	require.LessOrEqual(t, len(tk.positions.slots), 2*maxBacktraceGap)
}
