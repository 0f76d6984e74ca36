package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const snapshotVersion = 1

// Entry is one vocabulary symbol in a Snapshot.
type Entry struct {
	ID    int32  `json:"id" yaml:"id" cbor:"id"`
	Value string `json:"value" yaml:"value" cbor:"value"`
	Type  int32  `json:"type" yaml:"type" cbor:"type"`
}

// Snapshot is the persisted form of a trained vocabulary. Importing an
// exported snapshot reproduces Encode output exactly.
type Snapshot struct {
	Version    int     `json:"version" yaml:"version" cbor:"version"`
	ID         string  `json:"id,omitempty" yaml:"id,omitempty" cbor:"id,omitempty"`
	Config     Config  `json:"config" yaml:"config" cbor:"config"`
	Vocabulary []Entry `json:"vocabulary" yaml:"vocabulary" cbor:"vocabulary"`
	Merges     []Merge `json:"merges" yaml:"merges" cbor:"merges"`
}

// Export returns the current vocabulary. An untrained tokenizer exports its
// configuration only.
func (bpe *BytePairEncoding) Export() Snapshot {
	st := bpe.current()
	if st == nil {
		c := bpe.config
		c.SpecialTokens = slices.Clone(c.SpecialTokens)
		return Snapshot{Version: snapshotVersion, Config: c}
	}

	s := Snapshot{
		Version:    snapshotVersion,
		ID:         st.id.String(),
		Config:     st.config,
		Vocabulary: make([]Entry, len(st.vocab.Values)),
		Merges:     slices.Clone(st.vocab.Merges),
	}

	s.Config.SpecialTokens = slices.Clone(st.config.SpecialTokens)
	for i, value := range st.vocab.Values {
		s.Vocabulary[i] = Entry{ID: int32(i), Value: value, Type: st.vocab.Types[i]}
	}

	return s
}

// Import replaces the current vocabulary and configuration with s. An
// invalid snapshot leaves the tokenizer unchanged.
func (bpe *BytePairEncoding) Import(s Snapshot) error {
	st, err := s.state(bpe.config.CacheSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	bpe.training.Lock()
	defer bpe.training.Unlock()

	bpe.swap(st)
	return nil
}

func (s Snapshot) state(cacheSize int) (*bpeState, error) {
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported version %d", s.Version)
	}

	id := uuid.New()
	if s.ID != "" {
		var err error
		if id, err = uuid.Parse(s.ID); err != nil {
			return nil, err
		}
	}

	vocab, err := s.vocabulary()
	if err != nil {
		return nil, err
	}

	c := s.Config
	c.CacheSize = cacheSize
	c = c.withDefaults()
	return newBPEState(id, c, vocab)
}

// vocabulary rebuilds a Vocabulary, checking that ids are dense and unique,
// symbols are distinct and every merge refers to known symbols.
func (s Snapshot) vocabulary() (*Vocabulary, error) {
	if len(s.Vocabulary) == 0 {
		return nil, errors.New("empty vocabulary")
	}

	entries := slices.Clone(s.Vocabulary)
	slices.SortFunc(entries, func(a, b Entry) int { return int(a.ID) - int(b.ID) })

	vocab := newVocabulary(len(entries))
	for i, e := range entries {
		switch {
		case e.ID != int32(i):
			return nil, fmt.Errorf("ids are not dense: expected %d, got %d", i, e.ID)
		case e.Value == "":
			return nil, fmt.Errorf("id %d: empty symbol", e.ID)
		case e.Type < TOKEN_TYPE_NORMAL || e.Type > TOKEN_TYPE_BOUNDARY:
			return nil, fmt.Errorf("id %d: unknown token type %d", e.ID, e.Type)
		}

		if _, ok := vocab.add(e.Value, e.Type); !ok {
			return nil, fmt.Errorf("id %d: duplicate symbol %q", e.ID, e.Value)
		}
	}

	for i, m := range s.Merges {
		for _, symbol := range []string{m.Left, m.Right, m.String()} {
			if vocab.Encode(symbol) < 0 {
				return nil, fmt.Errorf("merge %d: unknown symbol %q", i, symbol)
			}
		}
	}

	vocab.Merges = slices.Clone(s.Merges)
	return vocab, nil
}

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// FormatFromPath picks a snapshot format by file extension. Paths without an
// extension are JSON.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case "", ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unsupported snapshot extension %q", ext)
	}
}

func WriteSnapshot(w io.Writer, s Snapshot, f Format) error {
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}

		return enc.Close()
	case FormatCBOR:
		return cbor.NewEncoder(w).Encode(s)
	default:
		return fmt.Errorf("unsupported snapshot format %q", f)
	}
}

func ReadSnapshot(r io.Reader, f Format) (Snapshot, error) {
	var s Snapshot
	var err error
	switch f {
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(&s)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&s)
	case FormatCBOR:
		err = cbor.NewDecoder(r).Decode(&s)
	default:
		return s, fmt.Errorf("unsupported snapshot format %q", f)
	}

	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	return s, nil
}

// WriteSnapshotFile writes s to path in the format its extension names. The
// file is written to a temporary name first and renamed into place.
func WriteSnapshotFile(path string, s Snapshot) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.partial")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteSnapshot(tmp, s, f); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

func ReadSnapshotFile(path string) (Snapshot, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return Snapshot{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer file.Close()

	return ReadSnapshot(file, f)
}
