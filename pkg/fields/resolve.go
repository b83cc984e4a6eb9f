package fields

import (
	"reflect"

	"gitlab.com/tozd/go/errors"

	"github.com/gork-labs/docfields/pkg/typeexpr"
)

// fieldBuilder turns one declared struct field into a descriptor. It returns
// ok=false for fields the convention does not treat as part of the record.
type fieldBuilder func(owner reflect.Type, sf reflect.StructField) (d Descriptor, ok bool, err error)

// resolver collects the resolved field set of a struct: fields of embedded
// ancestors first (depth-first, in embedding order), then the struct's own
// fields in declaration order. Adding a name that is already present drops
// the earlier descriptor.
type resolver struct {
	build    fieldBuilder
	visiting map[reflect.Type]bool
	out      []Descriptor
}

func resolveStruct(t reflect.Type, build fieldBuilder) ([]Descriptor, error) {
	r := &resolver{build: build, visiting: map[reflect.Type]bool{}}
	if err := r.walk(indirect(t)); err != nil {
		return nil, err
	}
	return r.out, nil
}

func (r *resolver) add(d Descriptor) {
	for i := range r.out {
		if r.out[i].Name == d.Name {
			r.out = append(r.out[:i], r.out[i+1:]...)
			break
		}
	}
	r.out = append(r.out, d)
}

func (r *resolver) walk(t reflect.Type) error {
	if r.visiting[t] {
		return nil
	}
	r.visiting[t] = true
	defer delete(r.visiting, t)

	var own []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if parseFieldTag(sf.Tag.Get(FieldTagKey)).Skip {
			continue
		}
		if sf.Anonymous {
			if et := indirect(sf.Type); et.Kind() == reflect.Struct {
				if isMarker(et) {
					continue
				}
				if err := r.walk(et); err != nil {
					return err
				}
				continue
			}
		}
		own = append(own, sf)
	}

	for _, sf := range own {
		d, ok, err := r.build(t, sf)
		if err != nil {
			return errors.Errorf("field %s.%s: %w", t.Name(), sf.Name, err)
		}
		if !ok {
			continue
		}
		if parseFieldTag(sf.Tag.Get(FieldTagKey)).NoInit {
			d.Init = false
		}
		r.add(d)
	}
	return nil
}

// structDescriptor fills the parts every struct-based convention shares.
func structDescriptor(owner reflect.Type, sf reflect.StructField, conv Convention) (Descriptor, error) {
	d := Descriptor{
		Name:        sf.Name,
		Type:        typeexpr.FromType(sf.Type),
		Description: tagDescription(sf.Tag),
		Owner:       owner,
		Visibility:  visibilityOfIdent(sf.Name),
		Init:        true,
		Convention:  conv,
	}
	if raw, ok := sf.Tag.Lookup("default"); ok {
		v, err := decodeDefault(sf.Type, raw)
		if err != nil {
			return Descriptor{}, err
		}
		d.Default = Value(v)
	}
	return d, nil
}

// anyField reports whether t or one of its embedded ancestors has a field
// matching pred.
func anyField(t reflect.Type, pred func(reflect.StructField) bool) bool {
	return anyFieldSeen(indirect(t), pred, map[reflect.Type]bool{})
}

func anyFieldSeen(t reflect.Type, pred func(reflect.StructField) bool, seen map[reflect.Type]bool) bool {
	if t.Kind() != reflect.Struct || seen[t] {
		return false
	}
	seen[t] = true
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if pred(sf) {
			return true
		}
		if sf.Anonymous && anyFieldSeen(indirect(sf.Type), pred, seen) {
			return true
		}
	}
	return false
}
