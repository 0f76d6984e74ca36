package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmorganca/subword/format"
	"github.com/jmorganca/subword/progress"
	"github.com/jmorganca/subword/tokenizer"
)

// readCorpus concatenates the named files, one per line. "-" reads stdin.
func readCorpus(in io.Reader, paths []string) (string, error) {
	var sb strings.Builder
	for _, path := range paths {
		var b []byte
		var err error
		if path == "-" {
			b, err = io.ReadAll(in)
		} else {
			b, err = os.ReadFile(path)
		}

		if err != nil {
			return "", err
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}

		sb.Write(b)
	}

	return sb.String(), nil
}

func TrainHandler(cmd *cobra.Command, args []string) error {
	c := tokenizerConfig(settingsFrom(cmd.Context()))
	if n, _ := cmd.Flags().GetInt("vocab-size"); n > 0 {
		c.VocabSize = n
	}

	if cmd.Flags().Changed("special") {
		c.SpecialTokens, _ = cmd.Flags().GetStringSlice("special")
	}

	c.ParseSpecial, _ = cmd.Flags().GetBool("parse-special")

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	// fail before training rather than after
	if _, err := tokenizer.FormatFromPath(output); err != nil {
		return err
	}

	bpe, err := tokenizer.NewBytePairEncoding(c)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var p *progress.Progress
	var bar *progress.Bar
	if progress.IsTerminal(cmd.ErrOrStderr()) {
		p = progress.NewProgress(cmd.ErrOrStderr())
		defer p.Stop()

		spinner := progress.NewSpinner("reading corpus")
		p.Add(spinner)
		defer spinner.Stop()

		ctx = tokenizer.WithProgress(ctx, func(tp tokenizer.TrainProgress) {
			if bar == nil {
				spinner.Stop()
				bar = progress.NewBar("learning merges", "merges", int64(tp.MaxMerges), 0)
				p.Add(bar)
			}

			bar.Set(int64(tp.Merges))
		})
	}

	corpus, err := readCorpus(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	started := time.Now()
	if err := bpe.Train(ctx, corpus); err != nil {
		return err
	}

	info := bpe.Info()
	if bar != nil {
		bar.SetMax(int64(info.Merges))
	}

	if p != nil {
		p.Stop()
	}

	if err := tokenizer.WriteSnapshotFile(output, bpe.Export()); err != nil {
		return err
	}

	slog.Info("wrote vocabulary", "path", output, "id", info.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "trained %s tokens with %s merges in %s\n",
		format.HumanNumber(uint64(info.Size)), format.HumanNumber(uint64(info.Merges)), format.Duration(time.Since(started)))
	return nil
}
