package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(_ *commandContext) *cobra.Command {
	var draftPath string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the fields of a class draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDraft(draftPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, classRows(d.Class())))
			return nil
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "Class draft file (TOML)")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}
