package tokenizer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysis(t *testing.T) {
	bpe := train(t, DefaultConfig(), "hello hello world world")

	got := bpe.Analyze(3)
	want := Analysis{
		TotalTokens:        22,
		MergeOperations:    10,
		CharacterTokens:    7,
		SubwordTokens:      10,
		AverageTokenLength: 45.0 / 17.0,
		Longest:            []string{"hello", "hello</w>", "world"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("analysis mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, bpe.Analysis().Longest, 10)
}

func TestAnalysisUntrained(t *testing.T) {
	bpe, err := NewBytePairEncoding(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, Analysis{}, bpe.Analysis())

	info := bpe.Info()
	assert.Equal(t, Info{SpecialTokens: []string{"<pad>", "<unk>", "<s>", "</s>"}, Target: 1000}, info)
}

func TestAnalysisScenarios(t *testing.T) {
	bpe := train(t, Config{VocabSize: 300}, "The quick brown fox jumps over the lazy dog. "+
		"Pack my box with five dozen liquor jugs. "+
		"How vexingly quick daft zebras jump!")

	a := bpe.Analysis()
	assert.Positive(t, a.MergeOperations)
	assert.Positive(t, a.CharacterTokens)
	assert.Positive(t, a.SubwordTokens)
	assert.Greater(t, a.AverageTokenLength, 1.0)
	assert.Less(t, a.AverageTokenLength, 10.0)
}

func TestInfo(t *testing.T) {
	c := DefaultConfig()
	c.VocabSize = 14
	bpe := train(t, c, "hello hello world world")

	info := bpe.Info()
	assert.Equal(t, 14, info.Size)
	assert.Equal(t, 2, info.Merges)
	assert.Equal(t, 14, info.Target)
	assert.Equal(t, c.SpecialTokens, info.SpecialTokens)
	assert.NotEmpty(t, info.ID)
}

func TestLongestTokens(t *testing.T) {
	vocab := newVocabulary(8)
	vocab.add("<pad>", TOKEN_TYPE_CONTROL)
	vocab.add("a", TOKEN_TYPE_NORMAL)
	vocab.add("ab", TOKEN_TYPE_NORMAL)
	vocab.add("abc", TOKEN_TYPE_NORMAL)
	vocab.add("xyz", TOKEN_TYPE_NORMAL)
	vocab.add("ab</w>", TOKEN_TYPE_NORMAL)
	vocab.add("北京大学", TOKEN_TYPE_NORMAL)

	cases := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{1, []string{"北京大学"}},
		{3, []string{"北京大学", "abc", "xyz"}},
		{10, []string{"北京大学", "abc", "xyz", "ab", "ab</w>"}},
	}

	for _, tt := range cases {
		if diff := cmp.Diff(tt.want, vocab.LongestTokens(tt.n)); diff != "" {
			t.Errorf("LongestTokens(%d) mismatch (-want +got):\n%s", tt.n, diff)
		}
	}
}
