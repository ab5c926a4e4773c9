package dict

import (
	"io"

	"github.com/npillmayer/morph/fst"
	"github.com/pkg/errors"
)

// TokenInfoDictionary is the system dictionary: a BinaryDictionary whose
// source ids are the outputs of a lexicon automaton over surface forms.
type TokenInfoDictionary struct {
	*BinaryDictionary
	lexicon *fst.Lexicon
}

// NewTokenInfoDictionary loads the system dictionary resources. Root
// transitions of the lexicon are cached for runes in cache.
func NewTokenInfoDictionary(targetMapData, dictData, posData, fstData []byte, cache fst.CacheRange) (*TokenInfoDictionary, error) {
	bd, err := NewBinaryDictionary(targetMapData, dictData, posData)
	if err != nil {
		return nil, err
	}
	lex, err := readLexicon(fstData, cache)
	if err != nil {
		return nil, err
	}
	tracer().Infof("system dictionary: %d surface forms, %d source ids", lex.Len(), bd.SourceCount())
	return &TokenInfoDictionary{BinaryDictionary: bd, lexicon: lex}, nil
}

// Lexicon returns the automaton mapping surface forms to source ids.
func (d *TokenInfoDictionary) Lexicon() *fst.Lexicon {
	return d.lexicon
}

func readLexicon(data []byte, cache fst.CacheRange) (*fst.Lexicon, error) {
	payload, err := stripHeader(data, fstCodec)
	if err != nil {
		return nil, err
	}
	lex, err := fst.Load(payload, cache)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptData, "lexicon: %v", err)
	}
	return lex, nil
}

// WriteLexicon writes the lexicon resource mapping surfaces[i] to ords[i].
func WriteLexicon(w io.Writer, surfaces []string, ords []uint64) error {
	if err := writeHeader(w, fstCodec); err != nil {
		return err
	}
	return fst.Build(w, surfaces, ords)
}

// UnknownDictionary holds the fallback entries for words not found in the
// system dictionary. Its source ids are character classes.
type UnknownDictionary struct {
	*BinaryDictionary
	charDef *CharacterDefinition
}

// NewUnknownDictionary loads the unknown-word dictionary resources.
func NewUnknownDictionary(targetMapData, dictData, posData []byte, charDef *CharacterDefinition) (*UnknownDictionary, error) {
	bd, err := NewBinaryDictionary(targetMapData, dictData, posData)
	if err != nil {
		return nil, err
	}
	if bd.SourceCount() > ClassCount {
		return nil, errors.Wrapf(ErrCorruptData, "unknown dictionary maps %d classes, expected at most %d",
			bd.SourceCount(), ClassCount)
	}
	return &UnknownDictionary{BinaryDictionary: bd, charDef: charDef}, nil
}

// CharacterDefinition returns the character classes the dictionary is keyed
// by.
func (d *UnknownDictionary) CharacterDefinition() *CharacterDefinition {
	return d.charDef
}
