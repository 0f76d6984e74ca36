package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmorganca/subword/envconfig"
)

func EnvHandler(cmd *cobra.Command, args []string) error {
	if example, _ := cmd.Flags().GetBool("example"); example {
		fmt.Fprint(cmd.OutOrStdout(), envconfig.GenerateExampleConfig())
		return nil
	}

	vars := envconfig.AsMap(settingsFrom(cmd.Context()))
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)

	table := newTable(cmd.OutOrStdout(), "NAME", "VALUE", "DESCRIPTION")
	for _, name := range names {
		v := vars[name]
		table.Append([]string{v.Name, fmt.Sprintf("%v", v.Value), v.Description})
	}
	table.Render()
	return nil
}
