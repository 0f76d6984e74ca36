package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmorganca/subword/format"
)

func InfoHandler(cmd *cobra.Command, args []string) error {
	bpe, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}

	info := bpe.Info()
	path, _ := cmd.Flags().GetString("vocab")

	table := newTable(cmd.OutOrStdout())
	table.AppendBulk([][]string{
		{"Vocabulary:", path},
		{"ID:", info.ID},
		{"Size:", format.HumanNumber(uint64(info.Size))},
		{"Target:", format.HumanNumber(uint64(info.Target))},
		{"Merges:", format.HumanNumber(uint64(info.Merges))},
		{"Special tokens:", strings.Join(info.SpecialTokens, " ")},
	})

	if fi, err := os.Stat(path); err == nil {
		table.Append([]string{"File size:", format.HumanBytes(fi.Size())})
	}

	table.Render()
	return nil
}

func AnalyzeHandler(cmd *cobra.Command, args []string) error {
	bpe, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	a := bpe.Analyze(top)

	out := cmd.OutOrStdout()
	table := newTable(out)
	table.AppendBulk([][]string{
		{"Total tokens:", strconv.Itoa(a.TotalTokens)},
		{"Merge operations:", strconv.Itoa(a.MergeOperations)},
		{"Character tokens:", strconv.Itoa(a.CharacterTokens)},
		{"Subword tokens:", strconv.Itoa(a.SubwordTokens)},
		{"Average length:", fmt.Sprintf("%.2f", a.AverageTokenLength)},
	})
	table.Render()

	if len(a.Longest) == 0 {
		return nil
	}

	fmt.Fprintln(out)

	vocab := bpe.Vocabulary()
	longest := newTable(out, "RANK", "ID", "TOKEN")
	for i, token := range a.Longest {
		longest.Append([]string{strconv.Itoa(i + 1), strconv.Itoa(int(vocab.Encode(token))), strconv.Quote(token)})
	}
	longest.Render()
	return nil
}
