package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/graticard/internal/config"
	"github.com/JonMunkholm/graticard/internal/logging"
	"github.com/JonMunkholm/graticard/internal/source"
)

// app carries state shared by all subcommands.
type app struct {
	cfg       *config.Config
	logLevel  string
	logFormat string
	encoding  string
}

// loader builds a source loader from config, honoring --encoding.
func (a *app) loader() *source.Loader {
	enc := a.cfg.Source.Encoding
	if a.encoding != "" {
		enc = a.encoding
	}
	return source.NewLoader(source.Options{
		MaxFileSize: a.cfg.Source.MaxFileSize,
		Encoding:    enc,
		Concurrency: a.cfg.Source.LoadConcurrency,
	}, nil)
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "graticard",
		Short: "Match gift notes to a recipient list",
		Long: `graticard reads a recipient list (CSV or TSV) and a gift document (DOCX),
maps their columns onto a fixed vocabulary, and matches each recipient to a
gift by name. Names that differ slightly are matched by fuzzy scoring above a
confidence floor.`,
		PersistentPreRunE: a.setup,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text, json")
	root.PersistentFlags().StringVar(&a.encoding, "encoding", "", "CSV/TSV encoding: latin-1, utf-8 (default from SOURCE_ENCODING)")

	root.AddCommand(
		newMergeCommand(a),
		newValidateCommand(a),
		newPreviewCommand(a),
	)
	return root
}

// setup loads .env and configuration and installs the logger on stderr.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// A missing .env file is normal for the CLI.
	_ = godotenv.Load()

	logging.SetupWriter(cmd.ErrOrStderr(), a.logLevel, a.logFormat)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}
