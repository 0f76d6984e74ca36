package tokenizer

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidInput    = errors.New("training text cannot be empty")
	ErrNotTrained      = errors.New("tokenizer not trained")
	ErrInvalidSnapshot = errors.New("invalid vocabulary snapshot")
)

const (
	DefaultVocabSize    = 1000
	DefaultPretokenizer = `\S+`
	DefaultCacheSize    = 4096

	// EndOfWord terminates every word representation.
	EndOfWord = "</w>"

	// placeholder is emitted by Decode for ids with no vocabulary entry.
	placeholder = "�"
)

// TextProcessor is implemented by every tokenizer in this package.
type TextProcessor interface {
	Train(ctx context.Context, text string) error
	Encode(s string) ([]int32, error)
	Decode(ids []int32) string
	Vocabulary() *Vocabulary
}

var (
	_ TextProcessor = (*BytePairEncoding)(nil)
	_ TextProcessor = (*WordLevel)(nil)
	_ TextProcessor = (*Character)(nil)
)

// Config is fixed for the lifetime of a trained vocabulary.
type Config struct {
	VocabSize     int      `json:"vocab_size" yaml:"vocab_size" cbor:"vocab_size"`
	SpecialTokens []string `json:"special_tokens" yaml:"special_tokens" cbor:"special_tokens"`
	UnknownToken  string   `json:"unk_token" yaml:"unk_token" cbor:"unk_token"`
	PadToken      string   `json:"pad_token" yaml:"pad_token" cbor:"pad_token"`

	// Pretokenizer is a regexp2 pattern; each match is one word.
	Pretokenizer string `json:"pretokenizer,omitempty" yaml:"pretokenizer,omitempty" cbor:"pretokenizer,omitempty"`

	// ParseSpecial makes Encode emit special tokens written literally in the input.
	ParseSpecial bool `json:"parse_special,omitempty" yaml:"parse_special,omitempty" cbor:"parse_special,omitempty"`

	// CacheSize bounds the per-word encode cache. Negative disables it.
	CacheSize int `json:"-" yaml:"-" cbor:"-"`
}

func DefaultConfig() Config {
	return Config{
		VocabSize:     DefaultVocabSize,
		SpecialTokens: []string{"<pad>", "<unk>", "<s>", "</s>"},
		UnknownToken:  "<unk>",
		PadToken:      "<pad>",
		Pretokenizer:  DefaultPretokenizer,
		CacheSize:     DefaultCacheSize,
	}
}

func (c Config) withDefaults() Config {
	if c.VocabSize <= 0 {
		c.VocabSize = DefaultVocabSize
	}

	if c.Pretokenizer == "" {
		c.Pretokenizer = DefaultPretokenizer
	}

	if c.CacheSize == 0 {
		c.CacheSize = DefaultCacheSize
	}

	c.SpecialTokens = slices.Clone(c.SpecialTokens)
	return c
}

func (c Config) isSpecial(s string) bool {
	return slices.Contains(c.SpecialTokens, s)
}

// New constructs a tokenizer by kind: "bpe", "word" or "char".
func New(kind string, c Config) (TextProcessor, error) {
	switch kind {
	case "bpe", "":
		return NewBytePairEncoding(c)
	case "word":
		return NewWordLevel(c)
	case "char", "character":
		return NewCharacter(c), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer kind %q", kind)
	}
}
