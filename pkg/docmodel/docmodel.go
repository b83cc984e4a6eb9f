// Package docmodel is the documentation object model: classes with their
// docstrings, parsed docstring sections and members.
package docmodel

import "reflect"

// SectionKind identifies a docstring section.
type SectionKind string

const (
	SectionText       SectionKind = "text"
	SectionParameters SectionKind = "parameters"
	SectionAttributes SectionKind = "attributes"
)

// Entry is one named item of a Parameters or Attributes section.
type Entry struct {
	Name        string `json:"name" yaml:"name"`
	Annotation  string `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Value       string `json:"value,omitempty" yaml:"value,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Section is a docstring section. Text sections carry Text; the others
// carry Entries.
type Section struct {
	Kind    SectionKind `json:"kind" yaml:"kind"`
	Text    string      `json:"text,omitempty" yaml:"text,omitempty"`
	Entries []Entry     `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// Entry returns the entry called name and its index, or nil and -1.
func (s *Section) Entry(name string) (*Entry, int) {
	if s == nil {
		return nil, -1
	}
	for i := range s.Entries {
		if s.Entries[i].Name == name {
			return &s.Entries[i], i
		}
	}
	return nil, -1
}

// Clone returns a deep copy of s.
func (s *Section) Clone() *Section {
	if s == nil {
		return nil
	}
	c := *s
	c.Entries = append([]Entry(nil), s.Entries...)
	return &c
}

// Docstring is the raw doc comment of an object and its parsed sections.
type Docstring struct {
	Value    string     `json:"value" yaml:"value"`
	Sections []*Section `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Section returns the first section of kind, or nil.
func (d *Docstring) Section(kind SectionKind) *Section {
	if d == nil {
		return nil
	}
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

// SetSection replaces the first section of kind with s, or appends s. A nil
// s removes the section.
func (d *Docstring) SetSection(kind SectionKind, s *Section) {
	for i, cur := range d.Sections {
		if cur.Kind != kind {
			continue
		}
		if s == nil {
			d.Sections = append(d.Sections[:i], d.Sections[i+1:]...)
		} else {
			d.Sections[i] = s
		}
		return
	}
	if s != nil {
		d.Sections = append(d.Sections, s)
	}
}

// MemberKind classifies a class member.
type MemberKind string

const (
	KindAttribute MemberKind = "attribute"
	KindFunction  MemberKind = "function"
	KindClass     MemberKind = "class"
)

// Member is a named member of a class.
type Member struct {
	Name       string     `json:"name" yaml:"name"`
	Kind       MemberKind `json:"kind" yaml:"kind"`
	Annotation string     `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Value      string     `json:"value,omitempty" yaml:"value,omitempty"`
	Docstring  *Docstring `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	// Inherited is set for members promoted from an ancestor.
	Inherited bool `json:"inherited,omitempty" yaml:"inherited,omitempty"`
}

// Doc returns the member's docstring text, or "".
func (m *Member) Doc() string {
	if m == nil || m.Docstring == nil {
		return ""
	}
	return m.Docstring.Value
}

// Class is the documentation state of one type.
type Class struct {
	Name string `json:"name" yaml:"name"`
	// Path is the fully qualified name, import path then type name.
	Path      string       `json:"path" yaml:"path"`
	Type      reflect.Type `json:"-" yaml:"-"`
	Bases     []*Class     `json:"-" yaml:"-"`
	Docstring *Docstring   `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Members   []*Member    `json:"members,omitempty" yaml:"members,omitempty"`
}

// Member returns the member called name, or nil.
func (c *Class) Member(name string) *Member {
	for _, m := range c.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// SetMember replaces the member with m's name in place, or appends m.
func (c *Class) SetMember(m *Member) {
	for i, cur := range c.Members {
		if cur.Name == m.Name {
			c.Members[i] = m
			return
		}
	}
	c.Members = append(c.Members, m)
}

// RemoveMembers drops every member for which drop returns true.
func (c *Class) RemoveMembers(drop func(*Member) bool) {
	kept := c.Members[:0]
	for _, m := range c.Members {
		if !drop(m) {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(c.Members); i++ {
		c.Members[i] = nil
	}
	c.Members = kept
}

// Ancestors returns the ancestors of c, nearest first: a breadth-first walk
// of Bases in declaration order with each class listed once.
func (c *Class) Ancestors() []*Class {
	var out []*Class
	seen := map[*Class]bool{c: true}
	queue := append([]*Class(nil), c.Bases...)
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if b == nil || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
		queue = append(queue, b.Bases...)
	}
	return out
}

// Module is the output of one documentation run.
type Module struct {
	Classes []*Class `json:"classes" yaml:"classes"`
}

// Class returns the class with path, or nil.
func (m *Module) Class(path string) *Class {
	for _, c := range m.Classes {
		if c.Path == path {
			return c
		}
	}
	return nil
}
