package extension

import (
	"bytes"
	"sort"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Target says where extracted fields are projected.
type Target string

const (
	// DocstringParameters merges fields into the Parameters section.
	DocstringParameters Target = "docstring-parameters"
	// DocstringAttributes merges fields into the Attributes section.
	DocstringAttributes Target = "docstring-attributes"
	// ClassAttributes adds fields as attribute members of the class.
	ClassAttributes Target = "class-attributes"
)

// ErrInvalidOptions is returned for configuration the extension cannot run
// with.
var ErrInvalidOptions = errors.Base("invalid docfields options")

// Config holds the extension options.
type Config struct {
	IncludeInherited        bool     `yaml:"include_inherited"`
	IncludePrivate          bool     `yaml:"include_private"`
	AddFieldsTo             Target   `yaml:"add_fields_to"`
	RemoveFieldsFromMembers bool     `yaml:"remove_fields_from_members"`
	StripAnnotated          bool     `yaml:"strip_annotated"`
	ObjectPaths             []string `yaml:"object_paths,omitempty"`
}

// DefaultConfig returns the default options: fields go to the Parameters
// section, own public fields only.
func DefaultConfig() Config {
	return Config{AddFieldsTo: DocstringParameters}
}

// Validate checks the options before any class is processed.
func (c Config) Validate() error {
	switch c.AddFieldsTo {
	case DocstringParameters, DocstringAttributes, ClassAttributes:
		return nil
	}
	return errors.WithDetails(ErrInvalidOptions,
		"add_fields_to", string(c.AddFieldsTo),
		"allowed", []string{string(DocstringParameters), string(DocstringAttributes), string(ClassAttributes)},
	)
}

// DecodeConfig reads options from YAML mapping data on top of DefaultConfig.
// It returns the keys it did not recognize, sorted, so the caller can warn
// about them. The result is validated.
func DecodeConfig(data []byte) (Config, []string, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil, nil
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, nil, errors.WithDetails(ErrInvalidOptions, "cause", err.Error())
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, nil, errors.WithDetails(ErrInvalidOptions, "cause", err.Error())
	}

	known := map[string]bool{}
	for _, k := range configKeys {
		known[k] = true
	}
	var unknown []string
	for k := range raw {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)

	if err := cfg.Validate(); err != nil {
		return Config{}, unknown, err
	}
	return cfg, unknown, nil
}

var configKeys = []string{
	"include_inherited",
	"include_private",
	"add_fields_to",
	"remove_fields_from_members",
	"strip_annotated",
	"object_paths",
}

// wants reports whether the class at path is in scope.
func (c Config) wants(path string) bool {
	if len(c.ObjectPaths) == 0 {
		return true
	}
	for _, p := range c.ObjectPaths {
		if p == path {
			return true
		}
	}
	return false
}
