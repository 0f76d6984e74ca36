package tokenizer

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// RoundTrip is the result of encoding and decoding one text.
type RoundTrip struct {
	Original      string  `json:"original"`
	Expected      string  `json:"expected"`
	Reconstructed string  `json:"reconstructed"`
	IDs           []int32 `json:"ids"`
	IsValid       bool    `json:"is_valid"`
}

// ValidateRoundTrip encodes text, decodes the ids and compares the result to
// the normalized text.
func (bpe *BytePairEncoding) ValidateRoundTrip(text string) (RoundTrip, error) {
	ids, err := bpe.Encode(text)
	if err != nil {
		return RoundTrip{}, err
	}

	rt := RoundTrip{
		Original:      text,
		Expected:      bpe.Normalize(text),
		Reconstructed: bpe.Decode(ids),
		IDs:           ids,
	}

	rt.IsValid = rt.Reconstructed == rt.Expected
	return rt, nil
}

type BenchmarkResult struct {
	TotalTexts              int           `json:"total_texts"`
	RoundTripAccuracy       float64       `json:"round_trip_accuracy"`
	AverageCompressionRatio float64       `json:"average_compression_ratio"`
	TotalTokens             int           `json:"total_tokens"`
	TotalCharacters         int           `json:"total_characters"`
	Elapsed                 time.Duration `json:"elapsed"`
}

// Benchmark round trips every text and reports accuracy and compression. An
// untrained tokenizer is first trained on the texts joined by newlines.
// Compression is characters per token, averaged over texts that produced at
// least one token.
func (bpe *BytePairEncoding) Benchmark(ctx context.Context, texts []string) (BenchmarkResult, error) {
	started := time.Now()
	if bpe.current() == nil {
		corpus := strings.Join(texts, "\n")
		if strings.TrimSpace(corpus) == "" {
			return BenchmarkResult{TotalTexts: len(texts)}, nil
		}

		slog.Debug("benchmark training untrained tokenizer", "texts", len(texts))
		if err := bpe.Train(ctx, corpus); err != nil {
			return BenchmarkResult{}, err
		}
	}

	results := make([]RoundTrip, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rt, err := bpe.ValidateRoundTrip(text)
			if err != nil {
				return err
			}

			results[i] = rt
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BenchmarkResult{}, err
	}

	r := BenchmarkResult{TotalTexts: len(texts)}

	var valid, measured int
	var ratios float64
	for i, rt := range results {
		if rt.IsValid {
			valid++
		}

		chars := runeLen(texts[i])
		r.TotalCharacters += chars
		r.TotalTokens += len(rt.IDs)
		if len(rt.IDs) > 0 {
			ratios += float64(chars) / float64(len(rt.IDs))
			measured++
		}
	}

	if len(texts) > 0 {
		r.RoundTripAccuracy = float64(valid) / float64(len(texts))
	}

	if measured > 0 {
		r.AverageCompressionRatio = ratios / float64(measured)
	}

	r.Elapsed = time.Since(started)
	return r, nil
}
