package cmd

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dmarkhas/templua/catalog"
)

var rootCmd = &cobra.Command{
	Use:   "templua",
	Short: "Inspect, check, and render script templates outside the host",
	Long: `templua works on a directory of script templates and their companion
settings files. It lists what the catalog would discover, validates that
every template compiles, and renders a single template against a static
context for quick iteration without the host application.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "template directory")
	flags.String("script-ext", catalog.DefaultScriptExt, "script file extension")
	flags.String("settings-ext", catalog.DefaultSettingsExt, "settings file extension")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write JSON logs to this file")
	viper.SetEnvPrefix("TEMPLUA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	cobra.CheckErr(viper.BindPFlags(flags))
}

func setupLogging() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log-level"))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}),
	}
	if logPath := viper.GetString("log-file"); logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	slog.SetDefault(slog.New(slogmulti.Fanout(handlers...)))
	return nil
}

// newCatalog builds the catalog over the configured directory. The returned
// filesystem is the one descriptor script paths resolve against.
func newCatalog() (*catalog.Catalog, fs.FS) {
	fsys := os.DirFS(viper.GetString("dir"))
	cat := catalog.New(fsys, ".",
		catalog.WithScriptExt(viper.GetString("script-ext")),
		catalog.WithSettingsExt(viper.GetString("settings-ext")),
	)
	return cat, fsys
}
