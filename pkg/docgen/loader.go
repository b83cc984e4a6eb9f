package docgen

import (
	"reflect"

	"github.com/gork-labs/docfields/pkg/docmodel"
	"github.com/gork-labs/docfields/pkg/typeexpr"
)

// Loader builds documentation classes for registered types.
type Loader struct {
	docs *SourceDocs
}

// NewLoader returns a loader reading doc comments from docs, which may be
// nil.
func NewLoader(docs *SourceDocs) *Loader {
	return &Loader{docs: docs}
}

// ClassPath is the documentation path of t: import path, a dot, type name.
func ClassPath(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Load returns one class per registered type, in registration order. A
// class's bases are the registered types its struct embeds.
func (l *Loader) Load(reg *Registry) []*docmodel.Class {
	types := reg.Types()
	classes := make([]*docmodel.Class, 0, len(types))
	byType := make(map[reflect.Type]*docmodel.Class, len(types))
	for _, t := range types {
		cls := l.class(t)
		classes = append(classes, cls)
		byType[t] = cls
	}
	for _, cls := range classes {
		for _, et := range embedded(cls.Type) {
			if base, ok := byType[et]; ok {
				cls.Bases = append(cls.Bases, base)
			}
		}
	}
	return classes
}

func (l *Loader) class(t reflect.Type) *docmodel.Class {
	cls := &docmodel.Class{Name: t.Name(), Path: ClassPath(t), Type: t}
	if td, ok := l.docs.Lookup(t.PkgPath(), t.Name()); ok && td.Doc != "" {
		cls.Docstring = ParseDocstring(td.Doc)
	}
	if t.Kind() == reflect.Struct {
		cls.Members = append(cls.Members, l.fieldMembers(t)...)
	}
	cls.Members = append(cls.Members, l.methodMembers(t)...)
	return cls
}

// fieldMembers lists the fields visible on t, promoted ones flagged as
// inherited. Embedded structs themselves are not members.
func (l *Loader) fieldMembers(t reflect.Type) []*docmodel.Member {
	var out []*docmodel.Member
	for _, sf := range reflect.VisibleFields(t) {
		if sf.Anonymous && indirect(sf.Type).Kind() == reflect.Struct {
			continue
		}
		owner := t
		if len(sf.Index) > 1 {
			owner = indirect(t.FieldByIndex(sf.Index[:len(sf.Index)-1]).Type)
		}
		m := &docmodel.Member{
			Name:       sf.Name,
			Kind:       docmodel.KindAttribute,
			Annotation: typeexpr.FromType(sf.Type).String(),
			Inherited:  len(sf.Index) > 1,
		}
		if td, ok := l.docs.Lookup(owner.PkgPath(), owner.Name()); ok {
			if doc := td.Fields[sf.Name]; doc != "" {
				m.Docstring = &docmodel.Docstring{Value: doc}
			}
		}
		out = append(out, m)
	}
	return out
}

// methodMembers lists the exported methods of *t. A method is inherited when
// an embedded type provides it and t's source does not declare it.
func (l *Loader) methodMembers(t reflect.Type) []*docmodel.Member {
	mt := t
	if t.Kind() != reflect.Interface {
		mt = reflect.PointerTo(t)
	}
	own, _ := l.docs.Lookup(t.PkgPath(), t.Name())

	var out []*docmodel.Member
	for i := 0; i < mt.NumMethod(); i++ {
		method := mt.Method(i)
		if !method.IsExported() {
			continue
		}
		m := &docmodel.Member{Name: method.Name, Kind: docmodel.KindFunction}
		doc, declared := "", false
		if own != nil {
			doc, declared = own.Methods[method.Name]
		}
		if !declared {
			if et, ok := promotedFrom(t, method.Name); ok {
				m.Inherited = true
				if td, ok := l.docs.Lookup(et.PkgPath(), et.Name()); ok {
					doc = td.Methods[method.Name]
				}
			}
		}
		if doc != "" {
			m.Docstring = &docmodel.Docstring{Value: doc}
		}
		out = append(out, m)
	}
	return out
}

// promotedFrom returns the embedded type whose method set provides name.
func promotedFrom(t reflect.Type, name string) (reflect.Type, bool) {
	for _, et := range embedded(t) {
		if _, ok := reflect.PointerTo(et).MethodByName(name); ok {
			return et, true
		}
	}
	return nil, false
}

// embedded returns the struct types t embeds directly, in field order.
func embedded(t reflect.Type) []reflect.Type {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var out []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		if et := indirect(sf.Type); et.Kind() == reflect.Struct {
			out = append(out, et)
		}
	}
	return out
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
