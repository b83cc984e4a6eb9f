package extension

import (
	"github.com/gork-labs/docfields/pkg/docmodel"
	"github.com/gork-labs/docfields/pkg/fields"
)

// ApplyMembers updates the member list of cls for descs.
//
// With ClassAttributes every field gets an attribute member, updated in place
// when one already exists; a non-empty member docstring is kept. Otherwise,
// with RemoveFieldsFromMembers, attribute members named like a field are
// removed, inherited ones included. Functions and nested classes are never
// removed.
func ApplyMembers(cls *docmodel.Class, descs []fields.Descriptor, cfg Config) {
	if cfg.AddFieldsTo == ClassAttributes {
		for _, d := range descs {
			upsertAttribute(cls, d, cfg.StripAnnotated)
		}
		return
	}
	if !cfg.RemoveFieldsFromMembers {
		return
	}
	names := make(map[string]bool, len(descs))
	for _, d := range descs {
		names[d.Name] = true
	}
	cls.RemoveMembers(func(m *docmodel.Member) bool {
		return m.Kind == docmodel.KindAttribute && names[m.Name]
	})
}

func upsertAttribute(cls *docmodel.Class, d fields.Descriptor, strip bool) {
	e := Entry(d, strip)
	m := cls.Member(d.Name)
	if m == nil || m.Kind != docmodel.KindAttribute {
		if m != nil {
			// A function or nested class owns the name; leave it alone.
			return
		}
		m = &docmodel.Member{Name: d.Name, Kind: docmodel.KindAttribute}
		cls.Members = append(cls.Members, m)
	}
	m.Annotation = e.Annotation
	m.Value = e.Value
	if m.Doc() == "" && e.Description != "" {
		m.Docstring = &docmodel.Docstring{Value: e.Description}
	}
}
