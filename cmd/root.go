package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sayraos/sayra/core/config"
	"github.com/sayraos/sayra/pkg/utils"
)

var (
	flagPort  string
	flagDebug bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sayra",
	Short: "Personal assistant core",
	Long: `Sayra is a personal voice and text assistant: it routes utterances
through a reflex/keyword/model intent pipeline, answers with a hybrid
local/cloud brain, and runs guardian watchers over the event bus.`,
}

func init() {
	utils.LoadConfig(".")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	initFlags()
	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
}

func initApp() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := os.MkdirAll(cfg.Paths.BaseDir, 0o755); err != nil {
		logrus.Fatalf("Cannot create base dir %s: %v", cfg.Paths.BaseDir, err)
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
