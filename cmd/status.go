package cmd

import (
	"errors"
	"time"

	"github.com/pkubaj/fastfetch/internal/state"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last saved identity snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		mgr, err := state.NewManager(s.statePath(), nil)
		if err != nil {
			return err
		}

		snap, err := mgr.Latest()
		if errors.Is(err, state.ErrNoSnapshots) {
			s.ui.Info("No snapshot saved yet. Run 'fastfetch detect --save' first.")
			return nil
		}
		if err != nil {
			return err
		}

		s.ui.Section("Snapshot " + snap.ID)
		s.ui.Printf("Saved: %s (last run %s)\n\n", snap.Timestamp.Format(time.RFC822), mgr.Current.LastRun.Format(time.RFC822))
		return s.ui.Table(identityRows(snap.Identity))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
