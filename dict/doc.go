/*
Package dict holds the read-only lexical resources of the morphological
analyzer: the compact binary word dictionary, the connection-cost matrix,
the character-class table, the unknown-word dictionary and the user
dictionary.

All binary resources start with a codec header (magic number, codec name and
format version). Integers are big-endian unless written as variable-length
ints (7-bit groups, least significant group first); signed deltas use the
zig-zag transform on top of that.

Resources may be loaded from byte slices or memory-mapped from a directory
(see OpenDir). Loaded resources are immutable and may be shared between any
number of concurrently running tokenizers.

----------------------------------------------------------------------

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer@com>

All rights reserved.

License information is available in the LICENSE file.
*/
package dict

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'morph.dict'
func tracer() tracing.Trace {
	return tracing.Select("morph.dict")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
