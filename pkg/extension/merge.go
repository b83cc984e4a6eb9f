package extension

import (
	"strings"

	"github.com/gork-labs/docfields/pkg/docmodel"
	"github.com/gork-labs/docfields/pkg/fields"
)

// Entry projects d into a docstring entry: name, display type, default repr
// and description.
func Entry(d fields.Descriptor, stripAnnotated bool) docmodel.Entry {
	return docmodel.Entry{
		Name:        d.Name,
		Annotation:  fields.DisplayType(d, stripAnnotated).String(),
		Value:       d.Default.Repr(),
		Description: strings.TrimSpace(d.Description),
	}
}

// MergeSection merges field entries into existing and returns the result;
// existing is not modified and may be nil.
//
// An existing entry named like a field keeps its description when it has
// one; its empty annotation, value and description are filled from the
// field entry. Fields without an existing entry are added. Field entries
// appear in field order. Entries that match no field are hand-authored and
// stay at their original index, or are appended after the fields when the
// merged section is shorter than that index. Merging the result again with
// the same fields returns it unchanged.
func MergeSection(existing *docmodel.Section, kind docmodel.SectionKind, entries []docmodel.Entry) *docmodel.Section {
	current := map[string]docmodel.Entry{}
	if existing != nil {
		for _, e := range existing.Entries {
			if _, dup := current[e.Name]; !dup {
				current[e.Name] = e
			}
		}
	}

	isField := map[string]bool{}
	var fieldEntries []docmodel.Entry
	for _, e := range entries {
		if isField[e.Name] {
			continue
		}
		isField[e.Name] = true
		if cur, ok := current[e.Name]; ok {
			e = reconcile(cur, e)
		}
		fieldEntries = append(fieldEntries, e)
	}

	type pinnedEntry struct {
		index int
		entry docmodel.Entry
	}
	var pinned []pinnedEntry
	if existing != nil {
		for i, e := range existing.Entries {
			if !isField[e.Name] {
				pinned = append(pinned, pinnedEntry{index: i, entry: e})
			}
		}
	}

	out := &docmodel.Section{Kind: kind}
	if existing != nil {
		out.Text = existing.Text
	}
	total := len(fieldEntries) + len(pinned)
	if total > 0 {
		out.Entries = make([]docmodel.Entry, 0, total)
	}
	p, f := 0, 0
	for i := 0; i < total; i++ {
		if p < len(pinned) && (pinned[p].index <= i || f == len(fieldEntries)) {
			out.Entries = append(out.Entries, pinned[p].entry)
			p++
			continue
		}
		out.Entries = append(out.Entries, fieldEntries[f])
		f++
	}
	return out
}

// reconcile keeps the hand-authored entry and fills what it lacks.
func reconcile(cur, field docmodel.Entry) docmodel.Entry {
	if cur.Description == "" {
		cur.Description = field.Description
	}
	if cur.Annotation == "" {
		cur.Annotation = field.Annotation
	}
	if cur.Value == "" {
		cur.Value = field.Value
	}
	return cur
}

// MergeInto merges descs into the section of kind of doc, creating it when
// absent. Entries named like one of descs are removed from the other of the
// Parameters and Attributes sections, so a field is documented once.
func MergeInto(doc *docmodel.Docstring, kind docmodel.SectionKind, descs []fields.Descriptor, stripAnnotated bool) {
	entries := make([]docmodel.Entry, 0, len(descs))
	names := make(map[string]bool, len(descs))
	for _, d := range descs {
		entries = append(entries, Entry(d, stripAnnotated))
		names[d.Name] = true
	}
	doc.SetSection(kind, MergeSection(doc.Section(kind), kind, entries))

	other := otherSection(kind)
	if s := doc.Section(other); s != nil {
		pruned := s.Clone()
		pruned.Entries = pruned.Entries[:0]
		for _, e := range s.Entries {
			if !names[e.Name] {
				pruned.Entries = append(pruned.Entries, e)
			}
		}
		doc.SetSection(other, pruned)
	}
}

func otherSection(kind docmodel.SectionKind) docmodel.SectionKind {
	if kind == docmodel.SectionParameters {
		return docmodel.SectionAttributes
	}
	return docmodel.SectionParameters
}
