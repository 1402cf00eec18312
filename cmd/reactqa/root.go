package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rickchristie/reactqa/config"
	"github.com/rickchristie/reactqa/logging"
)

// app carries the resolved configuration from the root command to the subcommands.
type app struct {
	v   *viper.Viper
	cfg *config.Config

	configFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:           "reactqa",
		Short:         "Answer questions with a ReAct agent and a small set of tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.load()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./reactqa.yaml)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.String(flagName(config.KeyProvider), config.DefaultProvider, "model provider: gemini, openai or github")
	flags.String(flagName(config.KeyModel), "", "model name (default depends on the provider)")
	flags.String(flagName(config.KeyBaseURL), "", "endpoint override for OpenAI compatible providers")
	flags.Duration(flagName(config.KeyPacingDelay), config.DefaultPacingDelay, "pause before every model call")
	flags.Int(flagName(config.KeyMaxIterations), config.DefaultMaxIterations, "iteration cap per question")
	flags.Bool(flagName(config.KeyMemoryEnabled), true, "remember earlier questions and answers")
	flags.String(flagName(config.KeyStepMode), config.StepModeText, "step mode: text or function")
	flags.Duration(flagName(config.KeyTimeout), config.DefaultTimeout, "time limit per question, 0 disables it")
	flags.StringSlice(flagName(config.KeyTools), nil, "enabled tools (default web_search,calculator,get_datetime)")
	flags.String(flagName(config.KeyLogLevel), "info", "log level: trace, debug, info, warn, error")
	flags.String(flagName(config.KeyLogFormat), "text", "log format: text or json")
	flags.String(flagName(config.KeyMetricsAddr), "", "serve Prometheus metrics on this address, e.g. :9090")

	for _, key := range []string{
		config.KeyProvider, config.KeyModel, config.KeyBaseURL, config.KeyPacingDelay,
		config.KeyMaxIterations, config.KeyMemoryEnabled, config.KeyStepMode, config.KeyTimeout,
		config.KeyTools, config.KeyLogLevel, config.KeyLogFormat, config.KeyMetricsAddr,
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flagName(key))); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", key, err))
		}
	}

	cmd.AddCommand(newChatCmd(a), newAskCmd(a), newToolsCmd())
	return cmd
}

// flagName maps a config key to its command line flag, e.g. step_mode to --step-mode.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// load resolves the configuration and initializes logging. The .env file is read
// first so its variables are visible to viper.
func (a *app) load() error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, os.Stderr); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}
