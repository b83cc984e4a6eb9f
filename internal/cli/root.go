// Package cli provides the command-line interface for docfields.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/gork-labs/docfields/pkg/docgen"
)

// Execute creates and runs the root command over docgen.Default.
func Execute() error {
	return NewRootCommand(docgen.Default).Execute()
}

// NewRootCommand builds the command tree documenting the types in reg.
func NewRootCommand(reg *docgen.Registry) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "docfields",
		Short:         "Document the fields of Go types",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	logger := func(cmd *cobra.Command) *slog.Logger {
		return newLogger(cmd.ErrOrStderr(), verbose)
	}
	rootCmd.AddCommand(newGenerateCommand(reg, logger))
	rootCmd.AddCommand(newConfigCommand(logger))

	return rootCmd
}

// newLogger returns a tint logger writing to w, coloured only on terminals.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd())
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}))
}
