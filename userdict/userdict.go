/*
Package userdict reads user dictionaries in CSV format.

Every non-empty line holds one phrase with four fields:

	surface,segmentation,readings,part-of-speech

for example

	関西国際空港,関西 国際 空港,カンサイ コクサイ クウコウ,カスタム名詞

Segments and readings are separated by spaces; there must be one reading per
segment, and the segments must spell out the surface. Fields may be quoted
the usual CSV way. A '#' starts a comment running to the end of the line.
*/
package userdict

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"

	"github.com/npillmayer/morph/dict"
	"github.com/pkg/errors"
)

// Reader streams user dictionary entries from CSV source.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a reader on CSV source.
func NewReader(reader io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(reader)}
}

// Load parses CSV source and compiles it into a user dictionary. Source
// without entries yields a nil dictionary.
func Load(reader io.Reader) (*dict.UserDictionary, error) {
	return dict.LoadUserDictionary(NewReader(reader))
}

// Next returns the next entry. It returns io.EOF when exhausted.
func (r *Reader) Next() (dict.UserEntry, error) {
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields, err := parseCSVLine(line)
		if err != nil {
			return dict.UserEntry{}, errors.Wrapf(dict.ErrIllegalEntry, "line %d: %v", r.line, err)
		}
		if len(fields) != 4 {
			return dict.UserEntry{}, errors.Wrapf(dict.ErrIllegalEntry,
				"line %d: malformed user dictionary entry %q, expected 4 fields", r.line, line)
		}
		return dict.UserEntry{
			Surface:      fields[0],
			Segments:     strings.Fields(fields[1]),
			Readings:     strings.Fields(fields[2]),
			PartOfSpeech: fields[3],
			Line:         r.line,
		}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return dict.UserEntry{}, err
	}
	return dict.UserEntry{}, io.EOF
}

func parseCSVLine(line string) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr.Read()
}
