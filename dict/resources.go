package dict

import (
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/npillmayer/morph/fst"
	"github.com/pkg/errors"
)

// Resource file names.
const (
	TokenInfoTargetMapFile  = "TokenInfoDictionary$targetMap.dat"
	TokenInfoBufferFile     = "TokenInfoDictionary$buffer.dat"
	TokenInfoPOSDictFile    = "TokenInfoDictionary$posDict.dat"
	TokenInfoFSTFile        = "TokenInfoDictionary$fst.dat"
	UnknownTargetMapFile    = "UnknownDictionary$targetMap.dat"
	UnknownBufferFile       = "UnknownDictionary$buffer.dat"
	UnknownPOSDictFile      = "UnknownDictionary$posDict.dat"
	ConnectionCostsFile     = "ConnectionCosts.dat"
	CharacterDefinitionFile = "CharacterDefinition.dat"
)

// ResourceFiles lists all files making up a dictionary.
var ResourceFiles = []string{
	TokenInfoTargetMapFile, TokenInfoBufferFile, TokenInfoPOSDictFile, TokenInfoFSTFile,
	UnknownTargetMapFile, UnknownBufferFile, UnknownPOSDictFile,
	ConnectionCostsFile, CharacterDefinitionFile,
}

// Files holds resource contents by file name.
type Files map[string][]byte

// WriteDir stores all files in directory dir.
func (files Files) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return errors.Wrapf(err, "cannot write resource %s", name)
		}
	}
	return nil
}

// Resources bundles the dictionaries needed by a tokenizer.
type Resources struct {
	System  *TokenInfoDictionary
	Unknown *UnknownDictionary
	Costs   *ConnectionCosts
	maps    []mmap.MMap
}

// CharacterDefinition returns the character classes of the resources.
func (r *Resources) CharacterDefinition() *CharacterDefinition {
	return r.Unknown.CharacterDefinition()
}

// Load decodes a complete resource set. The byte slices are retained.
func Load(files Files, cache fst.CacheRange) (*Resources, error) {
	for _, name := range ResourceFiles {
		if _, ok := files[name]; !ok {
			return nil, errors.Errorf("missing dictionary resource %s", name)
		}
	}
	var err error
	r := &Resources{}
	if r.Costs, err = NewConnectionCosts(files[ConnectionCostsFile]); err != nil {
		return nil, errors.WithMessage(err, ConnectionCostsFile)
	}
	charDef, err := NewCharacterDefinition(files[CharacterDefinitionFile])
	if err != nil {
		return nil, errors.WithMessage(err, CharacterDefinitionFile)
	}
	r.System, err = NewTokenInfoDictionary(files[TokenInfoTargetMapFile], files[TokenInfoBufferFile],
		files[TokenInfoPOSDictFile], files[TokenInfoFSTFile], cache)
	if err != nil {
		return nil, errors.WithMessage(err, "system dictionary")
	}
	r.Unknown, err = NewUnknownDictionary(files[UnknownTargetMapFile], files[UnknownBufferFile],
		files[UnknownPOSDictFile], charDef)
	if err != nil {
		return nil, errors.WithMessage(err, "unknown dictionary")
	}
	return r, nil
}

// OpenDir memory-maps the resource files in dir and decodes them. The
// resources must be closed to release the mappings.
func OpenDir(dir string, cache fst.CacheRange) (*Resources, error) {
	files := make(Files, len(ResourceFiles))
	var maps []mmap.MMap
	release := func() {
		for _, m := range maps {
			m.Unmap()
		}
	}
	for _, name := range ResourceFiles {
		m, err := mapFile(filepath.Join(dir, name))
		if err != nil {
			release()
			return nil, err
		}
		if len(m) > 0 {
			maps = append(maps, m)
		}
		files[name] = []byte(m)
	}
	r, err := Load(files, cache)
	if err != nil {
		release()
		return nil, errors.WithMessagef(err, "dictionary %s", dir)
	}
	r.maps = maps
	tracer().Infof("opened dictionary %s", dir)
	return r, nil
}

func mapFile(path string) (mmap.MMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() == 0 {
		return mmap.MMap{}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot map %s", path)
	}
	return m, nil
}

// Close releases memory mappings. Resources must not be used afterwards.
func (r *Resources) Close() error {
	var first error
	for _, m := range r.maps {
		if err := m.Unmap(); err != nil && first == nil {
			first = err
		}
	}
	r.maps = nil
	return first
}
