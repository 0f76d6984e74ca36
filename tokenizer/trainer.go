package tokenizer

import (
	"context"
	"log/slog"

	"github.com/emirpasic/gods/v2/maps/linkedhashmap"

	"github.com/jmorganca/subword/logutil"
)

// TrainProgress is reported after the vocabulary is seeded and after every
// learned merge.
type TrainProgress struct {
	VocabSize int
	Target    int
	Merges    int
	MaxMerges int

	// Merge and Count describe the most recent merge, if any.
	Merge Merge
	Count int
}

type progressKey struct{}

// WithProgress returns a context that makes Train report its progress to fn.
func WithProgress(ctx context.Context, fn func(TrainProgress)) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

func progressFrom(ctx context.Context) func(TrainProgress) {
	if fn, ok := ctx.Value(progressKey{}).(func(TrainProgress)); ok && fn != nil {
		return fn
	}

	return func(TrainProgress) {}
}

type trainer struct {
	target int
	vocab  *Vocabulary
	words  *wordTable
}

// pairCounts tallies every adjacent pair weighted by word frequency. The map
// keeps insertion order: words in first-occurrence order, pairs left to right.
func (t *trainer) pairCounts() *linkedhashmap.Map[Merge, int] {
	counts := linkedhashmap.New[Merge, int]()
	for i, symbols := range t.words.symbols {
		freq := t.words.freqs[i]
		for j := 0; j+1 < len(symbols); j++ {
			pair := Merge{Left: symbols[j], Right: symbols[j+1]}
			n, _ := counts.Get(pair)
			counts.Put(pair, n+freq)
		}
	}

	return counts
}

// best picks the pair with the strictly highest count. Among equal counts
// the pair inserted first into counts wins.
func best(counts *linkedhashmap.Map[Merge, int]) (Merge, int) {
	var winner Merge
	var most int
	it := counts.Iterator()
	for it.Next() {
		if it.Value() > most {
			winner, most = it.Key(), it.Value()
		}
	}

	return winner, most
}

func (t *trainer) apply(m Merge) {
	for i, symbols := range t.words.symbols {
		t.words.symbols[i] = mergePair(symbols, m.Left, m.Right)
	}
}

func (t *trainer) run(ctx context.Context) error {
	report := progressFrom(ctx)

	maxMerges := max(t.target-t.vocab.Size(), 0)
	report(TrainProgress{VocabSize: t.vocab.Size(), Target: t.target, MaxMerges: maxMerges})

	for len(t.vocab.Merges) < maxMerges && t.vocab.Size() < t.target {
		if err := ctx.Err(); err != nil {
			return err
		}

		counts := t.pairCounts()
		if counts.Empty() {
			slog.Debug("no pairs left to merge", "merges", len(t.vocab.Merges))
			break
		}

		m, n := best(counts)
		if n < 2 {
			slog.Debug("most frequent pair occurs once", "merges", len(t.vocab.Merges))
			break
		}

		t.vocab.Merges = append(t.vocab.Merges, m)
		t.apply(m)

		_, added := t.vocab.add(m.String(), TOKEN_TYPE_NORMAL)
		logutil.Trace("merged", "left", m.Left, "right", m.Right, "count", n, "new", added)

		report(TrainProgress{
			VocabSize: t.vocab.Size(),
			Target:    t.target,
			Merges:    len(t.vocab.Merges),
			MaxMerges: maxMerges,
			Merge:     m,
			Count:     n,
		})
	}

	return nil
}
