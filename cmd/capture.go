package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/pkubaj/fastfetch/internal/capture"
	"github.com/spf13/cobra"
)

var captureCmd = &cobra.Command{
	Use:   "capture [flags] -- program [args...]",
	Short: "Run a program and print one of its output streams",
	Long: `Runs the program the same way version lookups do: the selected stream is
captured, the other one is discarded, and every wait is bounded by the timeout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		req := capture.StdoutRequest(s.cfg.ProcessingTimeout, args...)
		if stderr, _ := cmd.Flags().GetBool("stderr"); stderr {
			req.Stream = capture.Stderr
		}
		if cmd.Flags().Changed("timeout") {
			req.Timeout, _ = cmd.Flags().GetDuration("timeout")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		s.log.Debug("Capturing", "argv", args, "stream", req.Stream, "timeout", req.Timeout)
		out, err := capture.CommandRunner.Capture(ctx, req)
		if err != nil {
			return err
		}
		s.ui.Printf("%s", out)
		return nil
	},
}

func init() {
	captureCmd.Flags().Bool("stderr", false, "capture standard error instead of standard output")
	captureCmd.Flags().Duration("timeout", 0, "inactivity timeout, negative waits forever (default: processing_timeout)")
	rootCmd.AddCommand(captureCmd)
}
