package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"studio/internal/domain"
	"studio/internal/upload"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var draftPath string
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a video for a class draft and wait until it is processed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}

			return ctx.withDraft(draftPath, func(d *draft) error {
				rec, err := ctx.newReconciler(d, newProgressWidget(upload.NewHTTPTransfer(absPath, nil), cmd.ErrOrStderr()))
				if err != nil {
					return err
				}
				defer rec.Stop()

				cfg, _ := ctx.ensureConfig()
				session, err := rec.Begin(cmd.Context(), cfg.CORSOrigin, absPath)
				if err != nil {
					return fmt.Errorf("start upload: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploading %s as %s\n", filepath.Base(absPath), session.UploadID)
				return waitAndReport(cmd.Context(), cmd.OutOrStdout(), rec, d)
			})
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "Class draft file (TOML)")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var draftPath string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Resume polling an upload recorded in a draft",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDraft(draftPath, func(d *draft) error {
				video := d.Video()
				status := video.Status()
				if video.MuxUploadID == nil || *video.MuxUploadID == "" {
					return errors.New("draft has no upload to watch")
				}
				if status.IsTerminal() {
					fmt.Fprintf(cmd.OutOrStdout(), "Upload already %s\n", status)
					return nil
				}

				rec, err := ctx.newReconciler(d, nil)
				if err != nil {
					return err
				}
				defer rec.Stop()

				rec.Track(cmd.Context(), domain.UploadJob{ID: *video.MuxUploadID, Status: status})
				return waitAndReport(cmd.Context(), cmd.OutOrStdout(), rec, d)
			})
		},
	}
	cmd.Flags().StringVar(&draftPath, "draft", "", "Class draft file (TOML)")
	_ = cmd.MarkFlagRequired("draft")
	return cmd
}

func (c *commandContext) newReconciler(d *draft, widget upload.Widget) (*upload.Reconciler, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	client, err := c.apiClient()
	if err != nil {
		return nil, err
	}
	return upload.NewReconciler(upload.ReconcilerOptions{
		Initiator: upload.NewInitiator(client),
		Poller:    upload.NewPoller(client, cfg.policy(), c.log()),
		Widget:    widget,
		Store:     d.Store(),
		Logger:    c.log(),
	}), nil
}

// withDraft opens and locks the draft for the duration of fn.
func (c *commandContext) withDraft(path string, fn func(*draft) error) error {
	d, err := openDraft(path)
	if err != nil {
		return err
	}
	if err := d.Lock(); err != nil {
		return err
	}
	defer d.Unlock()
	if err := fn(d); err != nil {
		return err
	}
	return d.Err()
}

func waitAndReport(ctx context.Context, out io.Writer, rec *upload.Reconciler, d *draft) error {
	job, err := rec.Wait(ctx)
	if err != nil && !errors.Is(err, domain.ErrStalled) {
		return err
	}
	if len(videoRows(d.Video())) > 0 {
		fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, videoRows(d.Video())))
	}
	switch job.Status {
	case domain.UploadStatusReady:
		fmt.Fprintln(out, "Video is ready. Run `studioctl save` to store it on the class.")
		return nil
	case domain.UploadStatusStalled:
		return fmt.Errorf("upload %s stalled after repeated status failures; run `studioctl watch` to resume", job.ID)
	case domain.UploadStatusErrored:
		return fmt.Errorf("upload %s failed during processing", job.ID)
	default:
		return fmt.Errorf("upload %s ended in status %q", job.ID, job.Status)
	}
}
