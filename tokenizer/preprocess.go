package tokenizer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lower case-folds s. A Caser is stateful so one is created per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

type pretokenizer struct {
	re *regexp2.Regexp
}

func newPretokenizer(pattern string) (pretokenizer, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return pretokenizer{}, fmt.Errorf("pretokenizer %q: %w", pattern, err)
	}

	return pretokenizer{re: re}, nil
}

// words yields every non-empty match of the pretokenizer in s.
func (p pretokenizer) words(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		m, _ := p.re.FindStringMatch(s)
		for m != nil {
			if w := m.String(); w != "" {
				if !yield(w) {
					return
				}
			}

			m, _ = p.re.FindNextMatch(m)
		}
	}
}

// normalize lower-cases s and joins its words with single spaces. This is
// what a round trip through a trained tokenizer is expected to reproduce.
func (p pretokenizer) normalize(s string) string {
	var sb strings.Builder
	for w := range p.words(lower(s)) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(w)
	}

	return sb.String()
}

var defaultPretokenizer = func() pretokenizer {
	p, err := newPretokenizer(DefaultPretokenizer)
	if err != nil {
		panic(err)
	}

	return p
}()

// Normalize lower-cases text, collapses whitespace runs to single spaces and
// trims the ends.
func Normalize(text string) string {
	return defaultPretokenizer.normalize(text)
}

// wordSymbols splits a word into one symbol per rune followed by EndOfWord.
func wordSymbols(word string) []string {
	symbols := make([]string, 0, len(word)+1)
	for _, r := range word {
		symbols = append(symbols, string(r))
	}

	return append(symbols, EndOfWord)
}

// wordTable holds the distinct words of a corpus in first-occurrence order.
// The key of a word never changes: merging symbols preserves their
// concatenation, so symbols[i] is rewritten in place.
type wordTable struct {
	symbols [][]string
	freqs   []int
	index   map[string]int
}

func countWords(p pretokenizer, text string) *wordTable {
	t := &wordTable{index: make(map[string]int)}
	for w := range p.words(lower(text)) {
		if i, ok := t.index[w]; ok {
			t.freqs[i]++
			continue
		}

		t.index[w] = len(t.symbols)
		t.symbols = append(t.symbols, wordSymbols(w))
		t.freqs = append(t.freqs, 1)
	}

	return t
}

// chars returns the distinct single-character symbols in the table.
func (t *wordTable) chars() []string {
	seen := make(map[string]struct{})
	var chars []string
	for _, symbols := range t.symbols {
		for _, s := range symbols {
			if s == EndOfWord {
				continue
			}

			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				chars = append(chars, s)
			}
		}
	}

	return chars
}

// mergePair replaces every non-overlapping occurrence of left, right in
// symbols with their concatenation, scanning left to right. The result
// reuses the backing array of symbols.
func mergePair(symbols []string, left, right string) []string {
	out := symbols[:0]
	for i := 0; i < len(symbols); i++ {
		if i+1 < len(symbols) && symbols[i] == left && symbols[i+1] == right {
			out = append(out, left+right)
			i++
			continue
		}

		out = append(out, symbols[i])
	}

	return out
}
