package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/gork-labs/docfields/pkg/docgen"
	"github.com/gork-labs/docfields/pkg/docmodel"
	"github.com/gork-labs/docfields/pkg/extension"
)

// DefaultConfigPath is read when --config is not given and the file exists.
const DefaultConfigPath = ".docfields.yml"

// GenerateConfig holds configuration for documentation generation.
type GenerateConfig struct {
	SourcePath string
	OutputPath string
	Format     string
	ConfigPath string
	Options    extension.Config
}

func newGenerateCommand(reg *docgen.Registry, logger func(*cobra.Command) *slog.Logger) *cobra.Command {
	config := GenerateConfig{Options: extension.DefaultConfig()}
	var target string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate documentation for the registered types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.Options.AddFieldsTo = extension.Target(target)
			return GenerateDocs(&config, reg, flagsChanged(cmd), logger(cmd), cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&config.SourcePath, "source", ".", "Directory containing Go source code for doc comment extraction")
	flags.StringVar(&config.OutputPath, "output", "-", "Path to output file or '-' for stdout")
	flags.StringVar(&config.Format, "format", "json", "Output format: json or yaml")
	flags.StringVar(&config.ConfigPath, "config", "", "Path to .docfields.yml config file")

	flags.BoolVar(&config.Options.IncludeInherited, "include-inherited", false, "Include fields declared by embedded types")
	flags.BoolVar(&config.Options.IncludePrivate, "include-private", false, "Include unexported and underscore-prefixed fields")
	flags.StringVar(&target, "add-fields-to", string(extension.DocstringParameters),
		"Where fields go: docstring-parameters, docstring-attributes or class-attributes")
	flags.BoolVar(&config.Options.RemoveFieldsFromMembers, "remove-fields-from-members", false, "Remove attribute members documented as fields")
	flags.BoolVar(&config.Options.StripAnnotated, "strip-annotated", false, "Show the inner type of Annotated fields")
	flags.StringSliceVar(&config.Options.ObjectPaths, "object-path", nil, "Only document these class paths (repeatable)")

	return cmd
}

func flagsChanged(cmd *cobra.Command) func(string) bool {
	return func(name string) bool { return cmd.Flags().Changed(name) }
}

// GenerateDocs documents the types in reg and writes the result.
func GenerateDocs(config *GenerateConfig, reg *docgen.Registry, changed func(string) bool, logger *slog.Logger, stdout io.Writer) error {
	if err := loadConfigFile(config, changed, logger); err != nil {
		return err
	}
	if config.Format != "json" && config.Format != "yaml" {
		return errors.Errorf("unsupported format %q: use json or yaml", config.Format)
	}
	ext, err := extension.New(config.Options, extension.WithLogger(logger))
	if err != nil {
		return err
	}

	docs := docgen.NewSourceDocs()
	if config.SourcePath != "" {
		if err := docs.ParseDirectory(config.SourcePath); err != nil {
			return errors.Errorf("parse source %s: %w", config.SourcePath, err)
		}
	}

	if reg.Len() == 0 {
		logger.Warn("no types registered, output will be empty")
	}
	mod := docgen.NewGenerator(docgen.NewLoader(docs), logger, ext).Run(reg)
	logger.Info("documented types", "classes", len(mod.Classes), "target", string(ext.Config().AddFieldsTo), "output", config.OutputPath)

	return writeOutput(mod, config, stdout)
}

type fileConfig struct {
	Docfields struct {
		Source  string    `yaml:"source"`
		Output  string    `yaml:"output"`
		Format  string    `yaml:"format"`
		Options yaml.Node `yaml:"options"`
	} `yaml:"docfields"`
}

// readConfigFile parses a configuration file. It returns the run settings,
// the validated extension options and the option keys it did not recognize.
func readConfigFile(path string) (*fileConfig, extension.Config, []string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, extension.Config{}, nil, errors.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, extension.Config{}, nil, errors.Errorf("parse config: %w", err)
	}

	var optionsData []byte
	if !cfg.Docfields.Options.IsZero() {
		optionsData, err = yaml.Marshal(&cfg.Docfields.Options)
		if err != nil {
			return nil, extension.Config{}, nil, errors.Errorf("parse config options: %w", err)
		}
	}
	opts, unknown, err := extension.DecodeConfig(optionsData)
	if err != nil {
		return nil, extension.Config{}, unknown, errors.Errorf("config %s: %w", path, err)
	}
	return &cfg, opts, unknown, nil
}

// loadConfigFile applies the config file to config wherever the matching
// flag was not set explicitly.
func loadConfigFile(config *GenerateConfig, changed func(string) bool, logger *slog.Logger) error {
	path := config.ConfigPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigPath); err != nil {
			return nil
		}
		path = DefaultConfigPath
	}

	cfg, opts, unknown, err := readConfigFile(path)
	for _, key := range unknown {
		logger.Warn("unknown option in config file", "config", path, "key", key)
	}
	if err != nil {
		return err
	}

	if !changed("source") && cfg.Docfields.Source != "" {
		config.SourcePath = cfg.Docfields.Source
	}
	if !changed("output") && cfg.Docfields.Output != "" {
		config.OutputPath = cfg.Docfields.Output
	}
	if !changed("format") && cfg.Docfields.Format != "" {
		config.Format = cfg.Docfields.Format
	}

	o := &config.Options
	if !changed("include-inherited") {
		o.IncludeInherited = opts.IncludeInherited
	}
	if !changed("include-private") {
		o.IncludePrivate = opts.IncludePrivate
	}
	if !changed("add-fields-to") {
		o.AddFieldsTo = opts.AddFieldsTo
	}
	if !changed("remove-fields-from-members") {
		o.RemoveFieldsFromMembers = opts.RemoveFieldsFromMembers
	}
	if !changed("strip-annotated") {
		o.StripAnnotated = opts.StripAnnotated
	}
	if !changed("object-path") {
		o.ObjectPaths = opts.ObjectPaths
	}
	return nil
}

func writeOutput(mod *docmodel.Module, config *GenerateConfig, stdout io.Writer) error {
	if config.OutputPath == "-" || config.OutputPath == "" {
		return docgen.Write(stdout, mod, config.Format)
	}

	outDir := filepath.Dir(config.OutputPath)
	if fi, err := os.Stat(outDir); err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("output directory %s does not exist, please create it first", outDir)
		}
		return err
	} else if !fi.IsDir() {
		return errors.Errorf("output path %s is not a directory", outDir)
	}

	f, err := os.Create(config.OutputPath) // #nosec G304
	if err != nil {
		return err
	}
	if err := docgen.Write(f, mod, config.Format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
