package dict

import "github.com/pkg/errors"

var (
	// ErrFormat flags a resource whose codec header does not match the expected
	// magic number, codec name or version range.
	ErrFormat = errors.New("dict: unknown resource format")

	// ErrCorruptData flags a resource that is structurally inconsistent or
	// truncated.
	ErrCorruptData = errors.New("dict: corrupt resource data")

	// ErrIllegalEntry flags an entry rejected while building a dictionary.
	ErrIllegalEntry = errors.New("dict: illegal dictionary entry")
)
