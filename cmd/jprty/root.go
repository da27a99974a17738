package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/soohoonc/jprty/internal/config"
	"github.com/soohoonc/jprty/internal/server"
)

type cliFlags struct {
	port        string
	databaseURL string
	verbose     bool
}

func newCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("JPRTY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cli := &cliFlags{}

	cmd := &cobra.Command{
		Use:           "jprty",
		Short:         "Realtime buzzer trivia server: rooms, boards, scoring over a websocket.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if cli.verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level}))
			slog.SetDefault(logger)

			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = cli.port
			}
			if cmd.Flags().Changed("database-url") {
				cfg.DatabaseURL = cli.databaseURL
			}

			return server.Run(cfg, logger)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cli.port, "port", "p", "8080", "port to listen on (env: JPRTY_PORT)")
	fs.StringVar(&cli.databaseURL, "database-url", "", "postgres dsn, omit to run without persistence (env: JPRTY_DATABASE_URL)")
	fs.BoolVarP(&cli.verbose, "verbose", "v", false, "debug logging (env: JPRTY_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("jprty v{{.Version}}\n")

	return cmd
}
