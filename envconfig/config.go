package envconfig

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jmorganca/subword/logutil"
)

// Settings is the resolved configuration. Values come from, in increasing
// priority, defaults, the config file and the environment.
type Settings struct {
	Debug         string   `mapstructure:"debug"`
	VocabSize     int      `mapstructure:"vocab_size"`
	SpecialTokens []string `mapstructure:"special_tokens"`
	UnkToken      string   `mapstructure:"unk_token"`
	PadToken      string   `mapstructure:"pad_token"`
	Pretokenizer  string   `mapstructure:"pretokenizer"`
	CacheSize     int      `mapstructure:"cache_size"`

	// ConfigFile is the file the settings were read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// LogLevel returns the log level for Debug.
func (s Settings) LogLevel() slog.Level {
	return logutil.ParseLevel(s.Debug)
}

type variable struct {
	name        string
	key         string
	description string
}

var variables = []variable{
	{"SUBWORD_DEBUG", "debug", "Show additional debug information (e.g. SUBWORD_DEBUG=1, 2 for trace)"},
	{"SUBWORD_VOCAB_SIZE", "vocab_size", "Target vocabulary size (default 1000)"},
	{"SUBWORD_SPECIAL_TOKENS", "special_tokens", "A comma separated list of special tokens"},
	{"SUBWORD_UNK_TOKEN", "unk_token", "Symbol emitted for characters outside the vocabulary (default \"<unk>\")"},
	{"SUBWORD_PAD_TOKEN", "pad_token", "Symbol used to pad id sequences (default \"<pad>\")"},
	{"SUBWORD_PRETOKENIZER", "pretokenizer", "Pattern whose matches are words (default \\S+)"},
	{"SUBWORD_CACHE_SIZE", "cache_size", "Number of encoded words to cache, negative to disable (default 4096)"},
}

func defaults() map[string]any {
	return map[string]any{
		"debug":          "",
		"vocab_size":     1000,
		"special_tokens": []string{"<pad>", "<unk>", "<s>", "</s>"},
		"unk_token":      "<unk>",
		"pad_token":      "<pad>",
		"pretokenizer":   `\S+`,
		"cache_size":     4096,
	}
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

// Var returns an environment variable stripped of leading and trailing quotes or spaces
func Var(key string) string {
	return clean(key)
}

// LogLevel reads SUBWORD_DEBUG from the environment only. It is used before
// the config file is loaded.
func LogLevel() slog.Level {
	return logutil.ParseLevel(clean("SUBWORD_DEBUG"))
}

// Load resolves Settings from defaults, the first config file found and the
// environment.
func Load() (Settings, error) {
	values := defaults()

	file, path, err := loadConfigFile()
	if err != nil {
		return Settings{}, err
	}

	maps.Copy(values, file)

	for _, v := range variables {
		if s := clean(v.name); s != "" {
			values[v.key] = s
		}
	}

	s, err := decode(values)
	if err != nil {
		return Settings{}, err
	}

	s.ConfigFile = path
	return s, nil
}

func decode(values map[string]any) (Settings, error) {
	var s Settings
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &s,
	})
	if err != nil {
		return Settings{}, err
	}

	if err := d.Decode(values); err != nil {
		return Settings{}, fmt.Errorf("invalid setting: %w", err)
	}

	tokens := s.SpecialTokens[:0]
	for _, t := range s.SpecialTokens {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}

	s.SpecialTokens = tokens
	if s.VocabSize <= 0 {
		return Settings{}, fmt.Errorf("invalid setting: vocab_size must be greater than zero, got %d", s.VocabSize)
	}

	return s, nil
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap describes every variable with its resolved value.
func AsMap(s Settings) map[string]EnvVar {
	values := map[string]any{
		"debug":          s.Debug,
		"vocab_size":     s.VocabSize,
		"special_tokens": strings.Join(s.SpecialTokens, ","),
		"unk_token":      s.UnkToken,
		"pad_token":      s.PadToken,
		"pretokenizer":   s.Pretokenizer,
		"cache_size":     s.CacheSize,
	}

	m := make(map[string]EnvVar, len(variables)+1)
	for _, v := range variables {
		m[v.name] = EnvVar{v.name, values[v.key], v.description}
	}

	m["SUBWORD_CONFIG"] = EnvVar{"SUBWORD_CONFIG", s.ConfigFile, "Path to a TOML config file"}
	return m
}

func Values(s Settings) map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap(s) {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
