package cmd

import (
	"fmt"
	"os"

	"github.com/pkubaj/fastfetch/internal/adapters/ui"
	"github.com/pkubaj/fastfetch/internal/config"
	"github.com/pkubaj/fastfetch/internal/core"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fastfetch",
	Short: "Identify the display server, window manager and desktop of this session",
	Long: `fastfetch talks to the running compositor or X server, reads the process
table and the session environment, and reports which window manager and
desktop environment are in use together with every connected display.`,
	SilenceUsage: true,
	RunE:         runDetect,
}

var (
	verboseCount int
	configPath   string
	envFile      string
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// PTerm output to Stderr (to keep Stdout clean for piping)
	pterm.SetDefaultOutput(os.Stderr)
	pterm.Success.Writer = os.Stderr
	pterm.Info.Writer = os.Stderr
	pterm.Error.Writer = os.Stderr
	pterm.Warning.Writer = os.Stderr
	pterm.DefaultHeader.Writer = os.Stderr

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default $XDG_CONFIG_HOME/fastfetch/fastfetch.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "Increase verbosity level (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "read the session environment from a dotenv file")
	addDetectFlags(rootCmd)
}

// session is what every subcommand needs: the effective environment,
// configuration, logger and output.
type session struct {
	env core.Env
	cfg *config.Config
	log core.Logger
	ui  core.UI
}

func newSession(cmd *cobra.Command) (*session, error) {
	log := core.NewDefaultLogger(os.Stderr, core.LevelFromVerbosity(verboseCount))

	var env core.Env = core.OSEnv{}
	if envFile != "" {
		e, err := core.LoadEnvFile(envFile, env)
		if err != nil {
			return nil, err
		}
		env = e
		log.Debug("Environment loaded", "file", envFile)
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath(env)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log.Debug("Configuration loaded", "path", path)

	return &session{
		env: env,
		cfg: cfg,
		log: log,
		ui:  ui.NewPtermUI().WithWriter(cmd.OutOrStdout()),
	}, nil
}

func (s *session) statePath() string {
	if s.cfg.StateFile != "" {
		return s.cfg.StateFile
	}
	return config.DefaultStatePath(s.env)
}
