package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorganca/subword/logutil"
)

// isolate clears every variable and points HOME at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SUBWORD_CONFIG", "")
	for _, v := range variables {
		t.Setenv(v.name, "")
	}

	return home
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	s, err := Load()
	require.NoError(t, err)

	want := Settings{
		VocabSize:     1000,
		SpecialTokens: []string{"<pad>", "<unk>", "<s>", "</s>"},
		UnkToken:      "<unk>",
		PadToken:      "<pad>",
		Pretokenizer:  `\S+`,
		CacheSize:     4096,
	}

	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, slog.LevelInfo, s.LogLevel())
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("SUBWORD_DEBUG", "2")
	t.Setenv("SUBWORD_VOCAB_SIZE", " 250 ")
	t.Setenv("SUBWORD_SPECIAL_TOKENS", "\"<pad>, <bos>,,<eos>\"")
	t.Setenv("SUBWORD_UNK_TOKEN", "'[UNK]'")
	t.Setenv("SUBWORD_CACHE_SIZE", "-1")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 250, s.VocabSize)
	assert.Equal(t, []string{"<pad>", "<bos>", "<eos>"}, s.SpecialTokens)
	assert.Equal(t, "[UNK]", s.UnkToken)
	assert.Equal(t, "<pad>", s.PadToken)
	assert.Equal(t, -1, s.CacheSize)
	assert.Equal(t, logutil.LevelTrace, s.LogLevel())
	assert.Equal(t, logutil.LevelTrace, LogLevel())
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"SUBWORD_VOCAB_SIZE": "lots",
		"SUBWORD_CACHE_SIZE": "1.5k",
	}

	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			t.Setenv(name, value)

			_, err := Load()
			require.Error(t, err)
		})
	}

	t.Run("zero vocab size", func(t *testing.T) {
		isolate(t)
		t.Setenv("SUBWORD_VOCAB_SIZE", "0")

		_, err := Load()
		require.ErrorContains(t, err, "vocab_size")
	})
}

func TestLoadFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".subword", "config.toml")
	writeConfig(t, path, `
[tokenizer]
vocab_size = 500
special_tokens = ["<unk>"]
pad_token = ""

[logging]
debug = true
`)

	t.Setenv("SUBWORD_VOCAB_SIZE", "600")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, path, s.ConfigFile)
	assert.Equal(t, 600, s.VocabSize, "environment overrides file")
	assert.Equal(t, []string{"<unk>"}, s.SpecialTokens)
	assert.Equal(t, "", s.PadToken)
	assert.Equal(t, "<unk>", s.UnkToken)
	assert.Equal(t, slog.LevelDebug, s.LogLevel())
}

func TestLoadExplicitFile(t *testing.T) {
	home := isolate(t)
	writeConfig(t, filepath.Join(home, ".subword", "config.toml"), "[tokenizer]\nvocab_size = 500\n")

	path := filepath.Join(t.TempDir(), "custom.toml")
	writeConfig(t, path, "[tokenizer]\nvocab_size = 700\n")
	t.Setenv("SUBWORD_CONFIG", path)

	assert.Equal(t, []string{path}, ConfigPaths())

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 700, s.VocabSize)

	t.Setenv("SUBWORD_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	_, err = Load()
	require.Error(t, err)
}

func TestLoadFileUnknownKey(t *testing.T) {
	cases := map[string]string{
		"tokenizer": "[tokenizer]\nvocab = 10\n",
		"logging":   "[logging]\nlevel = \"debug\"\n",
		"section":   "[server]\nhost = \"localhost\"\n",
		"syntax":    "[tokenizer\n",
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(isolate(t), "config.toml")
			writeConfig(t, path, content)
			t.Setenv("SUBWORD_CONFIG", path)

			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestGenerateExampleConfig(t *testing.T) {
	path := filepath.Join(isolate(t), "example.toml")
	writeConfig(t, path, GenerateExampleConfig())
	t.Setenv("SUBWORD_CONFIG", path)

	var raw map[string]any
	_, err := toml.Decode(GenerateExampleConfig(), &raw)
	require.NoError(t, err)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, s.VocabSize)
	assert.Equal(t, `\S+`, s.Pretokenizer)
	assert.Equal(t, slog.LevelInfo, s.LogLevel())
}

func TestAsMap(t *testing.T) {
	isolate(t)
	t.Setenv("SUBWORD_VOCAB_SIZE", "42")

	s, err := Load()
	require.NoError(t, err)

	m := AsMap(s)
	assert.Len(t, m, len(variables)+1)
	for name, v := range m {
		assert.Equal(t, name, v.Name)
		assert.NotEmpty(t, v.Description, name)
	}

	vals := Values(s)
	assert.Equal(t, "42", vals["SUBWORD_VOCAB_SIZE"])
	assert.Equal(t, "<pad>,<unk>,<s>,</s>", vals["SUBWORD_SPECIAL_TOKENS"])
}
