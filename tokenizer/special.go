package tokenizer

import (
	"slices"
	"strings"
)

// fragment is a string fragment and, for special tokens, its token ID
type fragment struct {
	value string
	ids   []int32
}

// fragments returns s unchanged unless ParseSpecial is set, in which case
// special tokens written literally in s are split out with their ids.
func (st *bpeState) fragments(s string) []fragment {
	if !st.config.ParseSpecial {
		return []fragment{{value: s}}
	}

	return splitSpecialTokens(s, st.config.SpecialTokens, st.vocab)
}

// splitSpecialTokens splits s into fragments, extracting the given special
// tokens. Specials are processed in list order; earlier tokens take priority
// at overlapping positions. Specials missing from vocab are ignored.
func splitSpecialTokens(s string, specials []string, vocab *Vocabulary) []fragment {
	fragments := []fragment{{value: s}}
	for _, special := range specials {
		if special == "" || !strings.Contains(s, special) {
			continue
		}

		id := vocab.Encode(special)
		if id < 0 {
			continue
		}

		for i := 0; i < len(fragments); i++ {
			frag := fragments[i]
			if len(frag.ids) > 0 {
				continue
			}

			var middle []fragment
			switch idx := strings.Index(frag.value, special); {
			case idx < 0:
				middle = append(middle, frag)
			case idx > 0:
				middle = append(middle, fragment{value: frag.value[:idx]})
				fallthrough
			default:
				middle = append(middle, fragment{value: special, ids: []int32{id}})
				if rest := frag.value[idx+len(special):]; rest != "" {
					middle = append(middle, fragment{value: rest})
				}
			}

			fragments = slices.Replace(fragments, i, i+1, middle...)
		}
	}

	return fragments
}
