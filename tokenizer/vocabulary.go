package tokenizer

import (
	"slices"
	"unicode/utf8"
)

const (
	TOKEN_TYPE_NORMAL = iota + 1
	TOKEN_TYPE_UNKNOWN
	TOKEN_TYPE_CONTROL
	TOKEN_TYPE_BOUNDARY
)

// Merge is one learned rule: Left followed by Right becomes Left+Right.
type Merge struct {
	Left  string `json:"left" yaml:"left" cbor:"left"`
	Right string `json:"right" yaml:"right" cbor:"right"`
}

func (m Merge) String() string {
	return m.Left + m.Right
}

// Vocabulary maps symbols to ids and back. Values is the reverse vocabulary:
// Values[id] is the symbol for id. Merges are kept in the order they were
// learned.
type Vocabulary struct {
	Values []string
	Types  []int32
	Merges []Merge

	values map[string]int32
}

func newVocabulary(capacity int) *Vocabulary {
	return &Vocabulary{
		Values: make([]string, 0, capacity),
		Types:  make([]int32, 0, capacity),
		values: make(map[string]int32, capacity),
	}
}

// add inserts s with the next id unless it is already present. Both
// directions of the mapping are updated together.
func (v *Vocabulary) add(s string, typ int32) (int32, bool) {
	if id, ok := v.values[s]; ok {
		return id, false
	}

	id := int32(len(v.Values))
	v.Values = append(v.Values, s)
	v.Types = append(v.Types, typ)
	v.values[s] = id
	return id, true
}

func (v *Vocabulary) Size() int {
	if v == nil {
		return 0
	}

	return len(v.Values)
}

// Encode returns the id for s or -1.
func (v *Vocabulary) Encode(s string) int32 {
	if v == nil {
		return -1
	}

	if id, ok := v.values[s]; ok {
		return id
	}

	return -1
}

// Decode returns the symbol for id.
func (v *Vocabulary) Decode(id int32) (string, bool) {
	if v == nil || id < 0 || int(id) >= len(v.Values) {
		return "", false
	}

	return v.Values[id], true
}

func (v *Vocabulary) Is(id int32, typ int32) bool {
	return v != nil && id >= 0 && int(id) < len(v.Types) && v.Types[id] == typ
}

// SpecialVocabulary lists the control and unknown symbols in id order.
func (v *Vocabulary) SpecialVocabulary() []string {
	var special []string
	for i, value := range v.Values {
		if v.Types[i] == TOKEN_TYPE_CONTROL || v.Types[i] == TOKEN_TYPE_UNKNOWN {
			special = append(special, value)
		}
	}

	return special
}

func (v *Vocabulary) clone() *Vocabulary {
	if v == nil {
		return newVocabulary(0)
	}

	c := &Vocabulary{
		Values: slices.Clone(v.Values),
		Types:  slices.Clone(v.Types),
		Merges: slices.Clone(v.Merges),
		values: make(map[string]int32, len(v.values)),
	}

	for k, id := range v.values {
		c.values[k] = id
	}

	return c
}

// seedVocabulary inserts the special tokens, the sorted distinct characters
// and the end-of-word marker, in that order.
func seedVocabulary(c Config, chars []string, boundary string) *Vocabulary {
	v := newVocabulary(len(c.SpecialTokens) + len(chars) + 1)
	for _, special := range c.SpecialTokens {
		typ := int32(TOKEN_TYPE_CONTROL)
		if special == c.UnknownToken {
			typ = TOKEN_TYPE_UNKNOWN
		}

		v.add(special, typ)
	}

	chars = slices.Clone(chars)
	slices.Sort(chars)
	for _, char := range chars {
		v.add(char, TOKEN_TYPE_NORMAL)
	}

	if boundary != "" {
		v.add(boundary, TOKEN_TYPE_BOUNDARY)
	}

	return v
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
