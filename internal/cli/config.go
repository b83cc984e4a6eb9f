package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gork-labs/docfields/pkg/extension"
)

func newConfigCommand(logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check FILE",
		Short: "Validate a .docfields.yml file and print the effective settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return CheckConfig(args[0], logger(cmd), cmd.OutOrStdout())
		},
	})
	return cmd
}

type effectiveConfig struct {
	Source  string           `yaml:"source,omitempty"`
	Output  string           `yaml:"output,omitempty"`
	Format  string           `yaml:"format,omitempty"`
	Options extension.Config `yaml:"options"`
}

// CheckConfig validates the config file at path, warning about unknown
// option keys, and writes the effective settings to out as YAML.
func CheckConfig(path string, logger *slog.Logger, out io.Writer) error {
	cfg, opts, unknown, err := readConfigFile(path)
	for _, key := range unknown {
		logger.Warn("unknown option in config file", "config", path, "key", key)
	}
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]effectiveConfig{"docfields": {
		Source:  cfg.Docfields.Source,
		Output:  cfg.Docfields.Output,
		Format:  cfg.Docfields.Format,
		Options: opts,
	}}); err != nil {
		return err
	}
	return enc.Close()
}
