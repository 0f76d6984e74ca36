package envconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileConfig is the layout of a TOML config file.
type fileConfig struct {
	Tokenizer map[string]any `toml:"tokenizer"`

	Logging struct {
		Debug any `toml:"debug"`
	} `toml:"logging"`
}

// ConfigPaths returns the config file locations in search order.
// SUBWORD_CONFIG, when set, is the only location searched.
func ConfigPaths() []string {
	if path := clean("SUBWORD_CONFIG"); path != "" {
		return []string{path}
	}

	paths := []string{"subword.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".subword", "config.toml"))
	}

	return paths
}

// loadConfigFile reads the first config file that exists. A missing file
// named by SUBWORD_CONFIG is an error.
func loadConfigFile() (map[string]any, string, error) {
	explicit := clean("SUBWORD_CONFIG") != ""
	for _, path := range ConfigPaths() {
		var cfg fileConfig
		md, err := toml.DecodeFile(path, &cfg)
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			continue
		} else if err != nil {
			return nil, "", fmt.Errorf("error parsing config file %s: %w", path, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, "", fmt.Errorf("error parsing config file %s: unknown key %q", path, undecoded[0].String())
		}

		values := make(map[string]any, len(cfg.Tokenizer)+1)
		for k, v := range cfg.Tokenizer {
			values[k] = v
		}

		if cfg.Logging.Debug != nil {
			values["debug"] = cfg.Logging.Debug
		}

		slog.Debug("loaded config file", "path", path)
		return values, path, nil
	}

	return nil, "", nil
}

// GenerateExampleConfig returns a commented example TOML configuration
func GenerateExampleConfig() string {
	return `# subword configuration file
# Environment variables (SUBWORD_*) take precedence over these values.

[tokenizer]
# Target vocabulary size (default: 1000)
vocab_size = 1000
# Special tokens, inserted first with ids from 0
special_tokens = ["<pad>", "<unk>", "<s>", "</s>"]
# Symbol emitted for characters outside the vocabulary
unk_token = "<unk>"
# Symbol used to pad id sequences
pad_token = "<pad>"
# Pattern whose matches are words (regexp2 syntax)
pretokenizer = '\S+'
# Number of encoded words to cache, negative to disable
cache_size = 4096

[logging]
# 0 for info, 1 for debug, 2 for trace
debug = 0
`
}
