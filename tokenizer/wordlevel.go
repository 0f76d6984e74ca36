package tokenizer

import (
	"context"
	"strings"
	"sync"
)

// WordLevel assigns one id per distinct normalized word.
type WordLevel struct {
	config Config
	pre    pretokenizer

	mu      sync.RWMutex
	vocab   *Vocabulary
	unknown int32
}

func NewWordLevel(c Config) (*WordLevel, error) {
	c = c.withDefaults()
	pre, err := newPretokenizer(c.Pretokenizer)
	if err != nil {
		return nil, err
	}

	return &WordLevel{config: c, pre: pre, unknown: -1}, nil
}

func (wl *WordLevel) Train(ctx context.Context, text string) error {
	if len(text) == 0 {
		return ErrInvalidInput
	}

	seen := make(map[string]struct{})
	var words []string
	for w := range wl.pre.words(lower(text)) {
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			words = append(words, w)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	vocab := seedVocabulary(wl.config, words, "")

	wl.mu.Lock()
	defer wl.mu.Unlock()
	wl.vocab = vocab
	wl.unknown = vocab.Encode(wl.config.UnknownToken)
	return nil
}

func (wl *WordLevel) Encode(s string) ([]int32, error) {
	if len(s) == 0 {
		return []int32{}, nil
	}

	wl.mu.RLock()
	defer wl.mu.RUnlock()
	if wl.vocab.Size() == 0 {
		return nil, ErrNotTrained
	}

	ids := []int32{}
	for w := range wl.pre.words(lower(s)) {
		if id := wl.vocab.Encode(w); id >= 0 {
			ids = append(ids, id)
		} else if wl.unknown >= 0 {
			ids = append(ids, wl.unknown)
		}
	}

	return ids, nil
}

func (wl *WordLevel) Decode(ids []int32) string {
	wl.mu.RLock()
	defer wl.mu.RUnlock()

	words := make([]string, 0, len(ids))
	for _, id := range ids {
		w, ok := wl.vocab.Decode(id)
		switch {
		case !ok:
			words = append(words, placeholder)
		case wl.config.isSpecial(w):
		default:
			words = append(words, w)
		}
	}

	return strings.Join(words, " ")
}

func (wl *WordLevel) Vocabulary() *Vocabulary {
	wl.mu.RLock()
	defer wl.mu.RUnlock()
	return wl.vocab.clone()
}
