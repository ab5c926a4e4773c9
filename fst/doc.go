/*
Package fst provides the lexicon automaton of the morphological analyzer: a
minimal finite state transducer mapping surface forms to integer outputs.

The automaton itself is a vellum FST over UTF-8 bytes. Lexicon adds a
character-level view on top of it: FindTargetArc follows one rune at a time,
accumulating outputs along the way, and answers transitions out of the root
for a configured character range from a precomputed cache. That range is
where nearly every lookup of Japanese or Korean text starts.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package fst

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'morph.fst'
func tracer() tracing.Trace {
	return tracing.Select("morph.fst")
}
