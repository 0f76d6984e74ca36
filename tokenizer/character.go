package tokenizer

import (
	"context"
	"strings"
	"sync"
)

// Character assigns one id per distinct rune. Text is not case folded, so a
// round trip over trained characters is exact.
type Character struct {
	config Config

	mu      sync.RWMutex
	vocab   *Vocabulary
	unknown int32
}

func NewCharacter(c Config) *Character {
	return &Character{config: c.withDefaults(), unknown: -1}
}

func (ch *Character) Train(ctx context.Context, text string) error {
	if len(text) == 0 {
		return ErrInvalidInput
	}

	seen := make(map[rune]struct{})
	var chars []string
	for _, r := range text {
		if _, ok := seen[r]; !ok {
			seen[r] = struct{}{}
			chars = append(chars, string(r))
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	vocab := seedVocabulary(ch.config, chars, "")

	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.vocab = vocab
	ch.unknown = vocab.Encode(ch.config.UnknownToken)
	return nil
}

func (ch *Character) Encode(s string) ([]int32, error) {
	if len(s) == 0 {
		return []int32{}, nil
	}

	ch.mu.RLock()
	defer ch.mu.RUnlock()
	if ch.vocab.Size() == 0 {
		return nil, ErrNotTrained
	}

	ids := make([]int32, 0, len(s))
	for _, r := range s {
		if id := ch.vocab.Encode(string(r)); id >= 0 {
			ids = append(ids, id)
		} else if ch.unknown >= 0 {
			ids = append(ids, ch.unknown)
		}
	}

	return ids, nil
}

func (ch *Character) Decode(ids []int32) string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	var sb strings.Builder
	for _, id := range ids {
		s, ok := ch.vocab.Decode(id)
		switch {
		case !ok:
			sb.WriteString(placeholder)
		case ch.config.isSpecial(s):
		default:
			sb.WriteString(s)
		}
	}

	return sb.String()
}

func (ch *Character) Vocabulary() *Vocabulary {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return ch.vocab.clone()
}
