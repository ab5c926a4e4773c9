package morph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGraphviz(t *testing.T) {
	res := abDictionary(t)
	dot := NewGraphvizFormatter(res.Costs)
	tk := NewTokenizer(res, WithMode(Normal), WithGraphviz(dot))
	tokenize(t, tk, "AB")
	out := dot.Finish()
	require.True(t, strings.HasPrefix(out, "digraph viterbi {"))
	require.True(t, strings.HasSuffix(out, "}\n"))
	require.Contains(t, out, `0.0 -> 2.0 [label="AB 10+0" color="#40e050"`)
	require.Contains(t, out, `1.0 -> 2.1 [label="B 6+1"]`)
	require.Contains(t, out, `0.0 -> 1.0 [label="A 6+0"]`)
	require.Contains(t, out, `2.0 -> fini [label="EOS"]`)
}
