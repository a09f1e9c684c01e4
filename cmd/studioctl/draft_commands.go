package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newRemoveVideoCommand(ctx *commandContext) *cobra.Command {
	var (
		draftPath string
		localOnly bool
	)
	cmd := &cobra.Command{
		Use:   "remove-video",
		Short: "Clear the video of a class draft",
		Long:  "Clears every video field of the draft. When the draft belongs to a saved class the video is removed from the class as well. Running it twice has no further effect.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDraft(draftPath, func(d *draft) error {
				if classID := d.ClassID(); classID != "" && !localOnly {
					client, err := ctx.apiClient()
					if err != nil {
						return err
					}
					if err := client.RemoveClassVideo(cmd.Context(), classID); err != nil {
						return fmt.Errorf("remove video from class %s: %w", classID, err)
					}
				}
				d.Store().Reset()
				fmt.Fprintln(cmd.OutOrStdout(), "Video removed")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "Class draft file (TOML)")
	cmd.Flags().BoolVar(&localOnly, "local", false, "Only clear the draft, leave the saved class untouched")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func newSaveCommand(ctx *commandContext) *cobra.Command {
	var (
		draftPath string
		classID   string
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or update the class described by a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDraft(draftPath, func(d *draft) error {
				class := d.Class()
				if id := strings.TrimSpace(classID); id != "" {
					class.ID = id
				}
				if status := class.Status(); status.IsPending() {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: video is still %s; the worker will finish it after saving\n", status)
				}
				client, err := ctx.apiClient()
				if err != nil {
					return err
				}
				saved, err := client.SaveClass(cmd.Context(), class)
				if err != nil {
					return err
				}
				if err := d.Adopt(saved); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved class %s\n", saved.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "Class draft file (TOML)")
	cmd.Flags().StringVar(&classID, "class-id", "", "Update this class instead of the one recorded in the draft")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}
