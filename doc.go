/*
Package morph is a morphological analyzer for Japanese (and, with a suitable
dictionary, Korean) text. It segments a stream of characters into words and
annotates every word with the data its dictionary holds: part-of-speech,
base form, reading and pronunciation.

Segmentation is a Viterbi search over a lattice of candidate words. Candidates
come from three sources:

  - the system dictionary, a lexicon automaton over surface forms (package fst)
    plus a compact binary entry store (package dict);
  - an optional user dictionary, whose phrases carry their own segmentation and
    win over system words;
  - an unknown-word strategy proposing words from character classes when the
    dictionaries have nothing (or not enough) to offer.

Every path through the lattice is scored with word costs and connection costs
between adjacent words; the cheapest path wins. The search is incremental:
whenever all surviving paths pass through a single lattice node, the path up
to that node is final and its tokens are emitted, so memory stays bounded by
the length of the longest ambiguous stretch of input (and never grows beyond
a fixed gap of 1024 characters).

Besides the best path, the tokenizer optionally emits near-best alternative
segmentations (N-best) as a token graph, decompounds long words (search mode)
and can render each lattice section as a Graphviz graph.

Offsets and lengths of tokens count characters (runes), not bytes.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package morph

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'morph'
func tracer() tracing.Trace {
	return tracing.Select("morph")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
