/*
Package config reads tokenizer settings from TOML files and turns them into
tokenizer options.

	dictionary_dir = "/usr/share/morph/ipadic"
	user_dictionary = "userdict.csv"
	mode = "search"
	discard_punctuation = true
	nbest_cost = 2000
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/morph"
	"github.com/npillmayer/morph/dict"
	"github.com/npillmayer/morph/fst"
	"github.com/npillmayer/morph/userdict"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// tracer writes to trace with key 'morph'
func tracer() tracing.Trace {
	return tracing.Select("morph")
}

// Config holds the settings of a tokenizer.
type Config struct {
	DictionaryDir        string   `toml:"dictionary_dir"`
	UserDictionary       string   `toml:"user_dictionary"`
	Mode                 string   `toml:"mode"`
	DiscardPunctuation   bool     `toml:"discard_punctuation"`
	DiscardCompoundToken bool     `toml:"discard_compound_token"`
	NBestCost            int      `toml:"nbest_cost"`
	NBestExamples        string   `toml:"nbest_examples"`
	Normalize            bool     `toml:"normalize"`
	LongestUserEntryOnly bool     `toml:"longest_user_entry_only"`
	SpacePenalty         int      `toml:"space_penalty"`
	SpacePenaltyPOS      []string `toml:"space_penalty_pos"`
	Cache                string   `toml:"cache"`
}

// Default returns the settings used for keys missing from a file.
func Default() Config {
	return Config{
		Mode:               "search",
		DiscardPunctuation: true,
		Cache:              "japanese",
	}
}

// Load reads a TOML file. Relative paths in it are resolved against the
// file's directory.
func Load(path string) (Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, errors.Wrapf(err, "cannot read configuration %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return c, errors.Errorf("%s: unknown configuration key %q", path, undecoded[0].String())
	}
	base := filepath.Dir(path)
	c.DictionaryDir = resolve(base, c.DictionaryDir)
	c.UserDictionary = resolve(base, c.UserDictionary)
	tracer().Debugf("configuration %s: %+v", path, c)
	return c, c.validate()
}

// Parse reads TOML settings from a string.
func Parse(data string) (Config, error) {
	c := Default()
	md, err := toml.Decode(data, &c)
	if err != nil {
		return c, errors.Wrap(err, "cannot parse configuration")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return c, errors.Errorf("unknown configuration key %q", undecoded[0].String())
	}
	return c, c.validate()
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (c Config) validate() error {
	if _, err := morph.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := c.cacheRange(); err != nil {
		return err
	}
	if c.NBestCost < 0 {
		return errors.Errorf("nbest_cost must not be negative, is %d", c.NBestCost)
	}
	return nil
}

func (c Config) cacheRange() (fst.CacheRange, error) {
	switch c.Cache {
	case "japanese", "":
		return fst.JapaneseCache, nil
	case "kana":
		return fst.KanaCache, nil
	case "hangul":
		return fst.HangulCache, nil
	}
	return fst.CacheRange{}, errors.Errorf("unknown lexicon cache range %q", c.Cache)
}

// Open loads the dictionary directory and the user dictionary, if any.
// The resources must be closed by the caller.
func (c Config) Open() (*dict.Resources, *dict.UserDictionary, error) {
	if c.DictionaryDir == "" {
		return nil, nil, errors.New("no dictionary directory configured")
	}
	cache, err := c.cacheRange()
	if err != nil {
		return nil, nil, err
	}
	res, err := dict.OpenDir(c.DictionaryDir, cache)
	if err != nil {
		return nil, nil, err
	}
	if c.UserDictionary == "" {
		return res, nil, nil
	}
	f, err := os.Open(c.UserDictionary)
	if err != nil {
		res.Close()
		return nil, nil, err
	}
	defer f.Close()
	user, err := userdict.Load(f)
	if err != nil {
		res.Close()
		return nil, nil, errors.WithMessage(err, c.UserDictionary)
	}
	return res, user, nil
}

// Options translates the settings into tokenizer options.
func (c Config) Options(user *dict.UserDictionary) ([]morph.Option, error) {
	mode, err := morph.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	opts := []morph.Option{
		morph.WithMode(mode),
		morph.WithDiscardPunctuation(c.DiscardPunctuation),
		morph.WithDiscardCompoundToken(c.DiscardCompoundToken),
		morph.WithLongestUserEntryOnly(c.LongestUserEntryOnly),
		morph.WithNBestCost(c.NBestCost),
	}
	if user != nil {
		opts = append(opts, morph.WithUserDictionary(user))
	}
	if c.Normalize {
		opts = append(opts, morph.WithNormalization(norm.NFKC))
	}
	if c.SpacePenalty > 0 {
		opts = append(opts, morph.WithSpacePenalty(morph.POSSpacePenalty(c.SpacePenalty, c.SpacePenaltyPOS...)))
	}
	return opts, nil
}

// NewTokenizer creates a tokenizer from the settings. If N-best examples
// are configured, the N-best cost is raised to cover them. Options in extra
// are applied after the configured ones.
func (c Config) NewTokenizer(res *dict.Resources, user *dict.UserDictionary, extra ...morph.Option) (*morph.Tokenizer, error) {
	opts, err := c.Options(user)
	if err != nil {
		return nil, err
	}
	t := morph.NewTokenizer(res, append(opts, extra...)...)
	if c.NBestExamples != "" {
		cost, err := t.CalcNBestCost(c.NBestExamples)
		if err != nil {
			return nil, err
		}
		t.SetNBestCost(max(c.NBestCost, cost))
		tracer().Infof("N-best cost %d", max(c.NBestCost, cost))
	}
	return t, nil
}
