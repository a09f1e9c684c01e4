package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"studio/internal/domain"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <upload-id>",
		Short: "Check the processing status of an upload once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploadID := strings.TrimSpace(args[0])
			if uploadID == "" {
				return fmt.Errorf("upload id is required")
			}
			client, err := ctx.apiClient()
			if err != nil {
				return err
			}
			state, err := client.UploadStatus(cmd.Context(), uploadID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Upload", "Status", "Asset", "Playback"}, [][]string{statusRow(uploadID, state)}))
			return nil
		},
	}
}

func statusRow(uploadID string, state domain.UploadState) []string {
	status := state.Status
	if local, ok := domain.StatusFromRemote(state.Status); ok {
		status = string(local)
	}
	return []string{uploadID, status, dash(state.AssetID), dash(state.PlaybackID)}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
