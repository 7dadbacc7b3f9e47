package cmd

import (
	"fmt"

	"github.com/pkubaj/fastfetch/internal/state"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List saved identity snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		mgr, err := state.NewManager(s.statePath(), nil)
		if err != nil {
			return err
		}

		history := mgr.Snapshots()
		if len(history) == 0 {
			s.ui.Info("No snapshots found.")
			return nil
		}

		s.ui.Title("Snapshot Log")

		tableData := [][]string{{"ID", "Date", "Protocol", "WM", "DE", "Displays"}}

		// Show latest first (reverse iteration)
		for i := len(history) - 1; i >= 0; i-- {
			snap := history[i]
			protocolStyle := pterm.NewStyle(pterm.FgGreen)
			if snap.Identity.WM.ProtocolName == "" {
				protocolStyle = pterm.NewStyle(pterm.FgYellow)
			}
			tableData = append(tableData, []string{
				snap.ID[:min(8, len(snap.ID))],
				snap.Timestamp.Format("2006-01-02 15:04:05"),
				protocolStyle.Sprint(orUnknown(snap.Identity.WM.ProtocolName)),
				orUnknown(snap.Identity.WM.PrettyName),
				orUnknown(snap.Identity.DE.PrettyName),
				fmt.Sprintf("%d", len(snap.Identity.Displays)),
			})
		}

		return s.ui.Table(tableData)
	},
}

func orUnknown(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func init() {
	rootCmd.AddCommand(logCmd)
}
