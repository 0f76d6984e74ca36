package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jmorganca/subword/envconfig"
	"github.com/jmorganca/subword/logutil"
	"github.com/jmorganca/subword/tokenizer"
	"github.com/jmorganca/subword/version"
)

type settingsKey struct{}

func settingsFrom(ctx context.Context) envconfig.Settings {
	if s, ok := ctx.Value(settingsKey{}).(envconfig.Settings); ok {
		return s
	}

	return envconfig.Settings{}
}

func tokenizerConfig(s envconfig.Settings) tokenizer.Config {
	return tokenizer.Config{
		VocabSize:     s.VocabSize,
		SpecialTokens: s.SpecialTokens,
		UnknownToken:  s.UnkToken,
		PadToken:      s.PadToken,
		Pretokenizer:  s.Pretokenizer,
		CacheSize:     s.CacheSize,
	}
}

// loadTokenizer imports the snapshot named by the --vocab flag. An empty
// path returns an untrained tokenizer.
func loadTokenizer(cmd *cobra.Command) (*tokenizer.BytePairEncoding, error) {
	bpe, err := tokenizer.NewBytePairEncoding(tokenizerConfig(settingsFrom(cmd.Context())))
	if err != nil {
		return nil, err
	}

	path, err := cmd.Flags().GetString("vocab")
	if err != nil {
		return nil, err
	}

	if path == "" {
		return bpe, nil
	}

	snap, err := tokenizer.ReadSnapshotFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("vocabulary %s not found, run 'subword train' first", path)
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := bpe.Import(snap); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	slog.Debug("loaded vocabulary", "path", path, "id", snap.ID, "size", len(snap.Vocabulary))
	return bpe, nil
}

// readText joins args with spaces, or reads all of in when there are none.
func readText(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	b, err := io.ReadAll(in)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(string(b), "\r\n"), nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	if len(header) > 0 {
		table.SetHeader(header)
	}
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func addVocabFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("vocab", "v", "vocab.json", "Vocabulary snapshot (.json, .yaml or .cbor)")
}

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "subword",
		Short:   "Train and run byte pair encoding tokenizers",
		Version: version.Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			s, err := envconfig.Load()
			if err != nil {
				return err
			}

			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), s.LogLevel()))
			if s.ConfigFile != "" {
				slog.Debug("using config file", "path", s.ConfigFile)
			}

			cmd.SetContext(context.WithValue(cmd.Context(), settingsKey{}, s))
			return nil
		},
	}

	cobra.EnableCommandSorting = false

	trainCmd := &cobra.Command{
		Use:   "train CORPUS...",
		Short: "Learn a vocabulary from one or more corpus files",
		Long:  "Learn a vocabulary from one or more corpus files. Use - to read the corpus from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  TrainHandler,
	}

	trainCmd.Flags().StringP("output", "o", "vocab.json", "Snapshot path (.json, .yaml or .cbor)")
	trainCmd.Flags().Int("vocab-size", 0, "Target vocabulary size (default from SUBWORD_VOCAB_SIZE)")
	trainCmd.Flags().StringSlice("special", nil, "Special tokens (default from SUBWORD_SPECIAL_TOKENS)")
	trainCmd.Flags().Bool("parse-special", false, "Encode special tokens written literally in text")

	encodeCmd := &cobra.Command{
		Use:   "encode [TEXT...]",
		Short: "Print the token ids for text",
		Long:  "Print the token ids for text. Text is read from stdin when no arguments are given.",
		RunE:  EncodeHandler,
	}

	addVocabFlag(encodeCmd)
	encodeCmd.Flags().Int("pad", 0, "Pad the ids to this length with the pad token")

	decodeCmd := &cobra.Command{
		Use:   "decode IDS...",
		Short: "Print the text for token ids",
		Args:  cobra.MinimumNArgs(1),
		RunE:  DecodeHandler,
	}

	addVocabFlag(decodeCmd)

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show vocabulary information",
		Args:  cobra.NoArgs,
		RunE:  InfoHandler,
	}

	addVocabFlag(infoCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show vocabulary composition and the longest subwords",
		Args:  cobra.NoArgs,
		RunE:  AnalyzeHandler,
	}

	addVocabFlag(analyzeCmd)
	analyzeCmd.Flags().Int("top", tokenizer.DefaultLongest, "Number of longest subwords to show")

	benchCmd := &cobra.Command{
		Use:   "bench FILE...",
		Short: "Measure round trip accuracy and compression",
		Long:  "Measure round trip accuracy and compression over every non-empty line of the given files. With --vocab \"\" a vocabulary is first trained on the lines.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  BenchHandler,
	}

	addVocabFlag(benchCmd)

	validateCmd := &cobra.Command{
		Use:   "validate [TEXT...]",
		Short: "Check that text survives an encode and decode round trip",
		RunE:  ValidateHandler,
	}

	addVocabFlag(validateCmd)

	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Show configuration",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}

	envCmd.Flags().Bool("example", false, "Print an example config file")

	rootCmd.AddCommand(
		trainCmd,
		encodeCmd,
		decodeCmd,
		infoCmd,
		analyzeCmd,
		benchCmd,
		validateCmd,
		envCmd,
	)

	return rootCmd
}
