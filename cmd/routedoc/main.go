// Command routedoc serves, generates and validates the OpenAPI document of
// the example application.
package main

import (
	"maps"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitalvas/routedoc/internal/config"
	"github.com/vitalvas/routedoc/internal/logging"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
}

// load binds the flags of cmd, reads the configuration and sets up logging.
func (a *app) load(cmd *cobra.Command, keys map[string]string) error {
	bound := map[string]string{
		"log.level":  "log-level",
		"log.pretty": "log-pretty",
	}
	maps.Copy(bound, keys)

	if err := config.BindFlags(a.v, cmd.Flags(), bound); err != nil {
		return err
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Pretty, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), logger: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:           "routedoc",
		Short:         "OpenAPI documentation generated from a route tree",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./routedoc.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "human-readable console logs instead of JSON")

	rootCmd.AddCommand(
		newServeCmd(a),
		newGenerateCmd(a),
		newValidateCmd(a),
	)

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("command failed")
	}
}
