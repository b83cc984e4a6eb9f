package docgen

import (
	"encoding/json"
	"io"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/gork-labs/docfields/pkg/docmodel"
)

// ErrUnknownFormat is returned by Write for formats other than json and yaml.
var ErrUnknownFormat = errors.Base("unknown output format")

type moduleView struct {
	Classes []classView `json:"classes" yaml:"classes"`
}

type classView struct {
	Name      string              `json:"name" yaml:"name"`
	Path      string              `json:"path" yaml:"path"`
	Bases     []string            `json:"bases,omitempty" yaml:"bases,omitempty"`
	Docstring *docmodel.Docstring `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Members   []*docmodel.Member  `json:"members,omitempty" yaml:"members,omitempty"`
}

func view(m *docmodel.Module) moduleView {
	out := moduleView{Classes: make([]classView, 0, len(m.Classes))}
	for _, c := range m.Classes {
		cv := classView{Name: c.Name, Path: c.Path, Docstring: c.Docstring, Members: c.Members}
		for _, b := range c.Bases {
			cv.Bases = append(cv.Bases, b.Path)
		}
		out.Classes = append(out.Classes, cv)
	}
	return out
}

// Write encodes m to w as indented JSON or as YAML.
func Write(w io.Writer, m *docmodel.Module, format string) error {
	v := view(m)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encode json: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return errors.WithDetails(ErrUnknownFormat, "format", format)
}
