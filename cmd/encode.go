package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func EncodeHandler(cmd *cobra.Command, args []string) error {
	bpe, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}

	text, err := readText(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ids, err := bpe.Encode(text)
	if err != nil {
		return err
	}

	if n, _ := cmd.Flags().GetInt("pad"); n > 0 {
		ids = bpe.Pad(ids, n)
	}

	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.FormatInt(int64(id), 10)
	}

	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(s, " "))
	return nil
}

// parseIDs accepts ids separated by spaces or commas.
func parseIDs(args []string) ([]int32, error) {
	var ids []int32
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			id, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid token id %q", field)
			}

			ids = append(ids, int32(id))
		}
	}

	return ids, nil
}

func DecodeHandler(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}

	bpe, err := loadTokenizer(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), bpe.Decode(ids))
	return nil
}
