package tokenizer

import (
	"cmp"
	"slices"
	"strings"

	"github.com/emirpasic/gods/v2/trees/binaryheap"
)

const DefaultLongest = 10

type Info struct {
	Size          int      `json:"size"`
	Merges        int      `json:"merges"`
	SpecialTokens []string `json:"special_tokens"`
	Target        int      `json:"target"`
	ID            string   `json:"id,omitempty"`
}

// Analysis describes the learned entries of a vocabulary. Special tokens and
// the end-of-word marker are not counted as character or subword tokens.
type Analysis struct {
	TotalTokens        int      `json:"total_tokens"`
	MergeOperations    int      `json:"merge_operations"`
	CharacterTokens    int      `json:"character_tokens"`
	SubwordTokens      int      `json:"subword_tokens"`
	AverageTokenLength float64  `json:"average_token_length"`
	Longest            []string `json:"longest"`
}

// surface is the text a symbol contributes to a word.
func surface(symbol string) string {
	return strings.TrimSuffix(symbol, EndOfWord)
}

// Analyze reports counts over the normal entries of v and its n longest
// subwords. Lengths are in runes and exclude the end-of-word marker.
func (v *Vocabulary) Analyze(n int) Analysis {
	a := Analysis{TotalTokens: v.Size()}
	if v == nil {
		return a
	}

	a.MergeOperations = len(v.Merges)

	var runes int
	for i, value := range v.Values {
		if v.Types[i] != TOKEN_TYPE_NORMAL {
			continue
		}

		if runeLen(value) == 1 {
			a.CharacterTokens++
		} else {
			a.SubwordTokens++
		}

		runes += runeLen(surface(value))
	}

	if entries := a.CharacterTokens + a.SubwordTokens; entries > 0 {
		a.AverageTokenLength = float64(runes) / float64(entries)
	}

	a.Longest = v.LongestTokens(n)
	return a
}

type ranked struct {
	value string
	n     int
	id    int32
}

// compareRanked orders the shortest entry first, breaking ties so that later
// ids sort first. The heap root is then the entry to evict.
func compareRanked(a, b ranked) int {
	if c := cmp.Compare(a.n, b.n); c != 0 {
		return c
	}

	return cmp.Compare(b.id, a.id)
}

// LongestTokens returns up to n multi-rune normal entries, longest first.
// Entries of equal length keep id order.
func (v *Vocabulary) LongestTokens(n int) []string {
	if v == nil || n <= 0 {
		return nil
	}

	heap := binaryheap.NewWith(compareRanked)
	for i, value := range v.Values {
		if v.Types[i] != TOKEN_TYPE_NORMAL || runeLen(value) < 2 {
			continue
		}

		heap.Push(ranked{value: value, n: runeLen(surface(value)), id: int32(i)})
		if heap.Size() > n {
			heap.Pop()
		}
	}

	entries := make([]ranked, 0, heap.Size())
	for !heap.Empty() {
		r, _ := heap.Pop()
		entries = append(entries, r)
	}

	slices.Reverse(entries)

	longest := make([]string, len(entries))
	for i, r := range entries {
		longest[i] = r.value
	}

	return longest
}

// Info summarizes the current vocabulary. It is available before training.
func (bpe *BytePairEncoding) Info() Info {
	st := bpe.current()
	if st == nil {
		return Info{SpecialTokens: slices.Clone(bpe.config.SpecialTokens), Target: bpe.config.VocabSize}
	}

	return Info{
		Size:          st.vocab.Size(),
		Merges:        len(st.vocab.Merges),
		SpecialTokens: slices.Clone(st.config.SpecialTokens),
		Target:        st.config.VocabSize,
		ID:            st.id.String(),
	}
}

// Analysis reports zeros before training.
func (bpe *BytePairEncoding) Analysis() Analysis {
	return bpe.Analyze(DefaultLongest)
}

func (bpe *BytePairEncoding) Analyze(n int) Analysis {
	st := bpe.current()
	if st == nil {
		return Analysis{}
	}

	return st.vocab.Analyze(n)
}
