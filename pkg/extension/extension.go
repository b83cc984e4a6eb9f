// Package extension injects the fields of field-bearing types into their
// documentation: docstring Parameters/Attributes sections and class members.
package extension

import (
	"log/slog"

	"gitlab.com/tozd/go/errors"

	"github.com/gork-labs/docfields/pkg/docmodel"
	"github.com/gork-labs/docfields/pkg/fields"
)

// Extension is the documentation hook. Create one per documentation run.
type Extension struct {
	cfg     Config
	logger  *slog.Logger
	in      *fields.Introspector
	visited map[*docmodel.Class]bool
}

// Option configures an Extension.
type Option func(*Extension)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extension) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIntrospector replaces the default field introspector.
func WithIntrospector(in *fields.Introspector) Option {
	return func(e *Extension) {
		if in != nil {
			e.in = in
		}
	}
}

// New validates cfg and returns an Extension using it.
func New(cfg Config, opts ...Option) (*Extension, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ObjectPaths = append([]string(nil), cfg.ObjectPaths...)
	e := &Extension{
		cfg:     cfg,
		logger:  slog.New(slog.DiscardHandler),
		visited: map[*docmodel.Class]bool{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.in == nil {
		e.in = fields.NewIntrospector()
	}
	return e, nil
}

// Config returns the options the extension runs with.
func (e *Extension) Config() Config { return e.cfg }

// OnClassMembers projects the fields of cls into its documentation. It runs
// once per class; later calls for the same class do nothing. Types that are
// not field-bearing are skipped, and extraction failures are logged and leave
// cls untouched.
func (e *Extension) OnClassMembers(cls *docmodel.Class) {
	if cls == nil || e.visited[cls] {
		return
	}
	e.visited[cls] = true

	if !e.cfg.wants(cls.Path) {
		return
	}

	descs, err := e.in.Extract(cls.Type, fields.Filter{
		IncludeInherited: e.cfg.IncludeInherited,
		IncludePrivate:   e.cfg.IncludePrivate,
	})
	if errors.Is(err, fields.ErrNotFieldBearing) {
		return
	}
	if err != nil {
		e.logger.Debug("skipping class, field extraction failed", "class", cls.Path, "error", err)
		return
	}

	if cls.Docstring == nil {
		cls.Docstring = &docmodel.Docstring{}
	}
	for i := range descs {
		if descs[i].Description != "" {
			continue
		}
		if m := cls.Member(descs[i].Name); m != nil && m.Kind == docmodel.KindAttribute {
			descs[i].Description = m.Doc()
		}
	}

	e.project(cls, descs)
	e.logger.Debug("documented fields", "class", cls.Path, "fields", len(descs), "target", string(e.cfg.AddFieldsTo))
}

func (e *Extension) project(cls *docmodel.Class, descs []fields.Descriptor) {
	strip := e.cfg.StripAnnotated
	switch e.cfg.AddFieldsTo {
	case ClassAttributes:
	case DocstringAttributes:
		if len(descs) > 0 {
			MergeInto(cls.Docstring, docmodel.SectionAttributes, descs, strip)
		}
	default:
		var params, attrs []fields.Descriptor
		for _, d := range descs {
			if d.Init {
				params = append(params, d)
			} else {
				attrs = append(attrs, d)
			}
		}
		if len(params) > 0 {
			MergeInto(cls.Docstring, docmodel.SectionParameters, params, strip)
		}
		if len(attrs) > 0 {
			MergeInto(cls.Docstring, docmodel.SectionAttributes, attrs, strip)
		}
	}
	ApplyMembers(cls, descs, e.cfg)
}

// OnClass runs once the whole class graph is built. With IncludeInherited it
// fills empty Parameters and Attributes descriptions of cls from its
// ancestors, nearest first: their docstring sections, then their attribute
// member docstrings.
func (e *Extension) OnClass(cls *docmodel.Class) {
	if !e.cfg.IncludeInherited || cls == nil || cls.Docstring == nil {
		return
	}

	empty := map[string]*docmodel.Entry{}
	for _, s := range cls.Docstring.Sections {
		if !isFieldSection(s.Kind) {
			continue
		}
		for i := range s.Entries {
			if s.Entries[i].Description == "" {
				if _, seen := empty[s.Entries[i].Name]; !seen {
					empty[s.Entries[i].Name] = &s.Entries[i]
				}
			}
		}
	}
	if len(empty) == 0 {
		return
	}

	for _, anc := range cls.Ancestors() {
		if anc.Docstring != nil {
			for _, s := range anc.Docstring.Sections {
				if !isFieldSection(s.Kind) {
					continue
				}
				for _, item := range s.Entries {
					if target, ok := empty[item.Name]; ok && item.Description != "" {
						target.Description = item.Description
						delete(empty, item.Name)
					}
				}
			}
		}
		for name, target := range empty {
			if doc := anc.Member(name).Doc(); doc != "" {
				target.Description = doc
				delete(empty, name)
			}
		}
		if len(empty) == 0 {
			return
		}
	}
}

func isFieldSection(kind docmodel.SectionKind) bool {
	return kind == docmodel.SectionParameters || kind == docmodel.SectionAttributes
}
