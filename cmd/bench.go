package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmorganca/subword/format"
	"github.com/jmorganca/subword/progress"
)

var errRoundTrip = errors.New("round trip mismatch")

// readLines returns the non-empty lines of the named files.
func readLines(paths []string) ([]string, error) {
	var lines []string
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			if line := scanner.Text(); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}

		err = scanner.Err()
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	return lines, nil
}

func BenchHandler(cmd *cobra.Command, args []string) error {
	texts, err := readLines(args)
	if err != nil {
		return err
	}

	bpe, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}

	if progress.IsTerminal(cmd.ErrOrStderr()) {
		p := progress.NewProgress(cmd.ErrOrStderr())
		p.Add(progress.NewSpinner(fmt.Sprintf("benchmarking %s texts", format.HumanNumber(uint64(len(texts))))))
		defer p.StopAndClear()
	}

	r, err := bpe.Benchmark(cmd.Context(), texts)
	if err != nil {
		return err
	}

	table := newTable(cmd.OutOrStdout(), "TEXTS", "ACCURACY", "COMPRESSION", "TOKENS", "CHARACTERS", "ELAPSED")
	table.Append([]string{
		strconv.Itoa(r.TotalTexts),
		format.Percent(r.RoundTripAccuracy),
		format.Ratio(r.AverageCompressionRatio),
		format.HumanNumber(uint64(r.TotalTokens)),
		format.HumanNumber(uint64(r.TotalCharacters)),
		format.Duration(r.Elapsed),
	})
	table.Render()
	return nil
}

func ValidateHandler(cmd *cobra.Command, args []string) error {
	bpe, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}

	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	rt, err := bpe.ValidateRoundTrip(text)
	if err != nil {
		return err
	}

	table := newTable(cmd.OutOrStdout())
	table.AppendBulk([][]string{
		{"Original:", strconv.Quote(rt.Original)},
		{"Expected:", strconv.Quote(rt.Expected)},
		{"Reconstructed:", strconv.Quote(rt.Reconstructed)},
		{"Tokens:", strconv.Itoa(len(rt.IDs))},
		{"Valid:", strconv.FormatBool(rt.IsValid)},
	})
	table.Render()

	if !rt.IsValid {
		return errRoundTrip
	}

	return nil
}
