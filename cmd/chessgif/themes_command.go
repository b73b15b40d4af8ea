package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chessgif/internal/colors"
)

func newThemesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List board themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			current := strings.ToLower(cfg.Board.Theme)

			var rows [][]string
			for _, theme := range colors.Themes() {
				rows = append(rows, []string{
					theme.Name,
					theme.Label(),
					theme.Dark,
					theme.Light,
					yesNo(theme.Name == current),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Name"},
				{title: "Label"},
				{title: "Dark"},
				{title: "Light"},
				{title: "Default"},
			}, rows))
			return nil
		},
	}
}
