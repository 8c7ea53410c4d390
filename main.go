package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mbolis/survey-publisher/config"
	"github.com/mbolis/survey-publisher/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error("main:", err)
		os.Exit(1)
	}
}

// cli carries the configuration resolved before any subcommand runs.
type cli struct {
	configPath string
	flags      *config.Flags
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "quick-survey",
		Short:         "Generate, preview and publish surveys",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "qsurvey.yaml", "YAML configuration file")
	c.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCmd(c),
		newRenderCmd(c),
		newPublishCmd(c),
		newSentCmd(c),
	)
	return root
}

func (c *cli) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err = cfg.ApplyEnv(); err != nil {
		return err
	}
	c.flags.Apply(&cfg)

	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	c.cfg = cfg
	return nil
}
