package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/hashicorp/go-multierror"
	"github.com/pkubaj/fastfetch/internal/identity"
	"github.com/pkubaj/fastfetch/internal/state"
	"github.com/pkubaj/fastfetch/internal/system"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the display server identity of this session",
	RunE:  runDetect,
}

func init() {
	addDetectFlags(detectCmd)
	rootCmd.AddCommand(detectCmd)
}

func addDetectFlags(c *cobra.Command) {
	c.Flags().StringP("output", "o", "table", "output format: table, yaml or json")
	c.Flags().StringP("format", "f", "", "Go template rendered with the identity record (sprig functions available)")
	c.Flags().Bool("save", false, "append the result to the snapshot history")
	c.Flags().Bool("diagnostics", false, "print everything that went wrong during detection")
	c.Flags().Duration("timeout", 0, "timeout for each external command and compositor round-trip")
	c.Flags().Bool("allow-slow", false, "run slow version lookups (e.g. plasmashell --version)")
	c.Flags().Bool("detect-name", true, "query output names from the compositor")
}

func runDetect(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
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
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	if showDiag, _ := cmd.Flags().GetBool("diagnostics"); showDiag {
		printDiagnostics(s, res.Diagnostics)
	} else if res.Diagnostics != nil {
		s.log.Debug("Detection finished with diagnostics", "error", res.Diagnostics)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		mgr, err := state.NewManager(s.statePath(), nil)
		if err != nil {
			return err
		}
		snap, err := mgr.AddSnapshot(res.Identity)
		if err != nil {
			return err
		}
		s.log.Info("Snapshot saved", "id", snap.ID, "path", s.statePath())
	}

	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = s.cfg.Format
	}
	return render(s.ui, res.Identity, output, format)
}

// detectOptions merges configuration, environment and command line flags.
func (s *session) detectOptions(cmd *cobra.Command) (system.Options, error) {
	rules, err := s.cfg.Rules()
	if err != nil {
		return system.Options{}, err
	}

	opts := system.DefaultOptions()
	opts.Env = s.env
	opts.Timeout = s.cfg.ProcessingTimeout
	opts.DetectName = s.cfg.DisplayDetectName
	opts.AllowSlow = s.cfg.AllowSlowOperations
	opts.Wayland = s.cfg.Probes.Wayland
	opts.X11 = s.cfg.Probes.X11
	opts.Rules = rules
	opts.Logger = s.log

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		opts.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("allow-slow") {
		opts.AllowSlow, _ = flags.GetBool("allow-slow")
	}
	if flags.Changed("detect-name") {
		opts.DetectName, _ = flags.GetBool("detect-name")
	}
	return opts, nil
}

func printDiagnostics(s *session, err error) {
	if err == nil {
		s.ui.Success("No detection problems")
		return
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			s.ui.Warning(e.Error())
		}
		return
	}
	s.ui.Warning(err.Error())
}

// identityRows flattens a record into the rows of the detect table.
func identityRows(rec identity.Record) [][]string {
	rows := [][]string{{"Field", "Value"}}
	add := func(k, v string) {
		if v != "" {
			rows = append(rows, []string{k, v})
		}
	}
	add("Protocol", rec.WM.ProtocolName)
	add("WM", rec.WM.PrettyName)
	de := rec.DE.PrettyName
	if de != "" && rec.DE.Version != "" {
		de += " " + rec.DE.Version
	}
	add("DE", de)
	for i, d := range rec.Displays {
		add(displayLabel(i, d), displayValue(d))
	}
	return rows
}
