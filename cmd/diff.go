package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pkubaj/fastfetch/internal/state"
	"github.com/pkubaj/fastfetch/internal/system"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff [snapshot-id]",
	Short: "Compare a saved snapshot with the current session",
	Long: `Runs detection and shows what changed since the given snapshot
(the latest one when no ID is given). IDs may be abbreviated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		mgr, err := state.NewManager(s.statePath(), nil)
		if err != nil {
			return err
		}

		var snap state.Snapshot
		if len(args) == 1 {
			snap, err = mgr.Snapshot(args[0])
		} else {
			snap, err = mgr.Latest()
		}
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		opts, err := s.detectOptions(cmd)
		if err != nil {
			return err
		}
		res := system.Detect(ctx, opts)

		before, err := marshalYAML(snap.Identity)
		if err != nil {
			return err
		}
		after, err := marshalYAML(res.Identity)
		if err != nil {
			return err
		}

		d := core.GenerateDiff(before, after)
		if d.Changes == 0 {
			s.ui.Success("No changes since snapshot " + snap.ID)
			return nil
		}
		s.ui.Section("Changes since " + snap.Timestamp.Format("2006-01-02 15:04:05"))
		s.ui.Printf("%s", d.Text)
		return nil
	},
}

func init() {
	diffCmd.Flags().Duration("timeout", 0, "timeout for each external command and compositor round-trip")
	diffCmd.Flags().Bool("allow-slow", false, "run slow version lookups")
	diffCmd.Flags().Bool("detect-name", true, "query output names from the compositor")
	rootCmd.AddCommand(diffCmd)
}
