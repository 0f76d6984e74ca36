package tokenizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jmorganca/subword/logutil"
)

// BytePairEncoding learns merges from a corpus and replays them to encode
// text. A trained vocabulary is immutable; Train and Import build a new one
// and swap it in, so concurrent Encode and Decode calls never see a partial
// vocabulary.
type BytePairEncoding struct {
	config Config
	pre    pretokenizer

	// training serializes Train and Import
	training sync.Mutex

	mu    sync.RWMutex
	state *bpeState
}

type bpeState struct {
	id      uuid.UUID
	config  Config
	vocab   *Vocabulary
	pre     pretokenizer
	unknown int32
	pad     int32

	// cache memoizes encoded words; it belongs to this vocabulary only
	cache *lru.Cache[string, []int32]
}

func NewBytePairEncoding(c Config) (*BytePairEncoding, error) {
	c = c.withDefaults()
	pre, err := newPretokenizer(c.Pretokenizer)
	if err != nil {
		return nil, err
	}

	return &BytePairEncoding{config: c, pre: pre}, nil
}

func newBPEState(id uuid.UUID, c Config, vocab *Vocabulary) (*bpeState, error) {
	pre, err := newPretokenizer(c.Pretokenizer)
	if err != nil {
		return nil, err
	}

	st := &bpeState{
		id:      id,
		config:  c,
		vocab:   vocab,
		pre:     pre,
		unknown: vocab.Encode(c.UnknownToken),
		pad:     vocab.Encode(c.PadToken),
	}

	if c.CacheSize > 0 {
		if st.cache, err = lru.New[string, []int32](c.CacheSize); err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (bpe *BytePairEncoding) current() *bpeState {
	bpe.mu.RLock()
	defer bpe.mu.RUnlock()
	return bpe.state
}

func (bpe *BytePairEncoding) swap(st *bpeState) {
	bpe.mu.Lock()
	defer bpe.mu.Unlock()
	bpe.state = st
}

// Config returns the configuration of the current vocabulary, or the
// construction configuration when untrained.
func (bpe *BytePairEncoding) Config() Config {
	if st := bpe.current(); st != nil {
		return st.config
	}

	return bpe.config
}

// Train discards any previous vocabulary and learns a new one from text.
// On error the previous vocabulary is kept.
func (bpe *BytePairEncoding) Train(ctx context.Context, text string) error {
	if len(text) == 0 {
		return ErrInvalidInput
	}

	bpe.training.Lock()
	defer bpe.training.Unlock()

	started := time.Now()
	words := bpe.countWords(text)

	t := trainer{
		target: bpe.config.VocabSize,
		vocab:  seedVocabulary(bpe.config, words.chars(), EndOfWord),
		words:  words,
	}

	seed := t.vocab.Size()
	if err := t.run(ctx); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	st, err := newBPEState(uuid.New(), bpe.config, t.vocab)
	if err != nil {
		return err
	}

	bpe.swap(st)
	slog.Debug("trained vocabulary", "id", st.id, "words", len(words.symbols), "seed", seed,
		"size", t.vocab.Size(), "merges", len(t.vocab.Merges), "elapsed", time.Since(started))
	return nil
}

func (bpe *BytePairEncoding) countWords(text string) *wordTable {
	return countWords(bpe.pre, text)
}

// Encode maps text to token ids by replaying the learned merges in order.
func (bpe *BytePairEncoding) Encode(s string) ([]int32, error) {
	if len(s) == 0 {
		return []int32{}, nil
	}

	st := bpe.current()
	if st == nil || st.vocab.Size() == 0 {
		return nil, ErrNotTrained
	}

	ids := make([]int32, 0, len(s))
	for _, frag := range st.fragments(s) {
		if len(frag.ids) > 0 {
			ids = append(ids, frag.ids...)
			continue
		}

		for word := range st.pre.words(lower(frag.value)) {
			ids = append(ids, st.encodeWord(word)...)
		}
	}

	logutil.Trace("encoded", "string", s, "ids", ids)
	return ids, nil
}

func (st *bpeState) encodeWord(word string) []int32 {
	if st.cache != nil {
		if ids, ok := st.cache.Get(word); ok {
			return ids
		}
	}

	symbols := wordSymbols(word)
	for _, m := range st.vocab.Merges {
		if len(symbols) < 2 {
			break
		}

		symbols = mergePair(symbols, m.Left, m.Right)
	}

	ids := make([]int32, 0, len(symbols))
	for _, symbol := range symbols {
		if id := st.vocab.Encode(symbol); id >= 0 {
			ids = append(ids, id)
			continue
		}

		logutil.Trace("unmappable symbol", "symbol", symbol, "unknown", st.unknown)
		if st.unknown >= 0 {
			ids = append(ids, st.unknown)
		}
	}

	if st.cache != nil {
		st.cache.Add(word, ids)
	}

	return ids
}

// Decode maps ids back to text. Words end at the end-of-word marker, special
// tokens are dropped and ids without a vocabulary entry decode to U+FFFD.
func (bpe *BytePairEncoding) Decode(ids []int32) string {
	st := bpe.current()

	c, vocab := bpe.config, (*Vocabulary)(nil)
	if st != nil {
		c, vocab = st.config, st.vocab
	}

	var words []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			words = append(words, sb.String())
			sb.Reset()
		}
	}

	for _, id := range ids {
		symbol, ok := vocab.Decode(id)
		if !ok {
			logutil.Trace("unknown id", "id", id)
			symbol = placeholder
		}

		switch {
		case strings.HasSuffix(symbol, EndOfWord):
			sb.WriteString(strings.TrimSuffix(symbol, EndOfWord))
			flush()
		case c.isSpecial(symbol):
			// dropped
		default:
			sb.WriteString(symbol)
		}
	}

	flush()

	text := strings.Join(words, " ")
	logutil.Trace("decoded", "string", text, "from", lazyIdsString{ids: ids})
	return text
}

type lazyIdsString struct {
	ids []int32
}

func (l lazyIdsString) LogValue() slog.Value {
	return slog.AnyValue(fmt.Sprint(l.ids))
}

// Normalize returns the text a round trip through this tokenizer reproduces.
func (bpe *BytePairEncoding) Normalize(text string) string {
	if st := bpe.current(); st != nil {
		return st.pre.normalize(text)
	}

	return bpe.pre.normalize(text)
}

// Vocabulary returns a copy of the current vocabulary.
func (bpe *BytePairEncoding) Vocabulary() *Vocabulary {
	if st := bpe.current(); st != nil {
		return st.vocab.clone()
	}

	return newVocabulary(0)
}

// Pad appends the pad token until ids has length n. It returns ids unchanged
// when the vocabulary has no pad token.
func (bpe *BytePairEncoding) Pad(ids []int32, n int) []int32 {
	st := bpe.current()
	if st == nil || st.pad < 0 {
		return ids
	}

	for len(ids) < n {
		ids = append(ids, st.pad)
	}

	return ids
}
