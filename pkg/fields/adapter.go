package fields

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gitlab.com/tozd/go/errors"

	"github.com/gork-labs/docfields/pkg/typeexpr"
)

// Adapter reads the fields of types declared through one convention.
type Adapter interface {
	// Convention names the declaration style.
	Convention() Convention
	// Supports is the capability check: whether t is declared this way.
	Supports(t reflect.Type) bool
	// Fields returns the resolved field set of t, inherited and private
	// fields included, with Owner set on every descriptor.
	Fields(t reflect.Type) ([]Descriptor, error)
}

// RecordAdapter handles plain structs. Defaults come from `default` tags and
// descriptions from `description` or `doc` tags.
type RecordAdapter struct{}

func (RecordAdapter) Convention() Convention { return ConventionRecord }

func (RecordAdapter) Supports(t reflect.Type) bool {
	t = indirect(t)
	return t != nil && t.Kind() == reflect.Struct && t.NumField() > 0
}

func (RecordAdapter) Fields(t reflect.Type) ([]Descriptor, error) {
	return resolveStruct(t, func(owner reflect.Type, sf reflect.StructField) (Descriptor, bool, error) {
		d, err := structDescriptor(owner, sf, ConventionRecord)
		return d, err == nil, err
	})
}

// ValidatedAdapter handles structs whose fields carry go-playground/validator
// rules in `validate` tags. A declared default must satisfy its field's rule;
// one that does not, or a rule the validator does not know, makes the model
// malformed.
type ValidatedAdapter struct {
	once     sync.Once
	validate *validator.Validate
}

// NewValidatedAdapter uses v to check defaults; nil means a fresh validator.
func NewValidatedAdapter(v *validator.Validate) *ValidatedAdapter {
	return &ValidatedAdapter{validate: v}
}

func (a *ValidatedAdapter) instance() *validator.Validate {
	a.once.Do(func() {
		if a.validate == nil {
			a.validate = validator.New()
		}
	})
	return a.validate
}

func (*ValidatedAdapter) Convention() Convention { return ConventionValidated }

func (*ValidatedAdapter) Supports(t reflect.Type) bool {
	return anyField(t, func(sf reflect.StructField) bool {
		rule, ok := sf.Tag.Lookup("validate")
		return ok && rule != "" && rule != "-"
	})
}

func (a *ValidatedAdapter) Fields(t reflect.Type) ([]Descriptor, error) {
	return resolveStruct(t, func(owner reflect.Type, sf reflect.StructField) (Descriptor, bool, error) {
		d, err := structDescriptor(owner, sf, ConventionValidated)
		if err != nil {
			return Descriptor{}, false, err
		}
		rule := sf.Tag.Get("validate")
		if rule == "" || rule == "-" {
			return d, true, nil
		}
		if err := a.checkRule(sf, d.Default, rule); err != nil {
			return Descriptor{}, false, err
		}
		return d, true, nil
	})
}

// checkRule validates the declared default against rule. Without a default,
// or when the rule compares against sibling fields, the rule is only parsed,
// so an undefined rule is still reported here.
func (a *ValidatedAdapter) checkRule(sf reflect.StructField, def Default, rule string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("invalid validate rule %q: %v", rule, r)
		}
	}()
	v := a.instance()
	if !def.IsSet() || crossFieldRule(rule) {
		zero := unwrap(reflect.Zero(sf.Type).Interface())
		if reflect.ValueOf(zero).Kind() != reflect.Struct {
			// omitempty short-circuits on the zero value once the tag is parsed.
			_ = v.Var(zero, "omitempty,"+rule)
		}
		return nil
	}
	if verr := v.Var(unwrap(def.value), rule); verr != nil {
		return errors.Errorf("default %s violates rule %q: %w", def.Repr(), rule, verr)
	}
	return nil
}

// crossFieldTags need the parent struct; Validate.Var cannot evaluate them.
var crossFieldTags = map[string]bool{
	"eqfield": true, "nefield": true, "gtfield": true, "gtefield": true,
	"ltfield": true, "ltefield": true, "eqcsfield": true, "necsfield": true,
	"gtcsfield": true, "gtecsfield": true, "ltcsfield": true, "ltecsfield": true,
	"fieldcontains": true, "fieldexcludes": true,
	"required_if": true, "required_unless": true, "required_with": true,
	"required_with_all": true, "required_without": true, "required_without_all": true,
	"excluded_if": true, "excluded_unless": true, "excluded_with": true,
	"excluded_with_all": true, "excluded_without": true, "excluded_without_all": true,
	"skip_unless": true,
}

func crossFieldRule(rule string) bool {
	for _, tag := range strings.FieldsFunc(rule, func(r rune) bool { return r == ',' || r == '|' }) {
		name, _, _ := strings.Cut(strings.TrimSpace(tag), "=")
		if crossFieldTags[name] {
			return true
		}
	}
	return false
}

func unwrap(v any) any {
	if a, ok := v.(annotatedValue); ok {
		return a.annotatedValue()
	}
	return v
}

// CompactAdapter handles structs embedding the Compact marker. A wire name
// of "-" leaves the field out; omitempty makes it optional with the zero
// value as default.
type CompactAdapter struct{}

func (CompactAdapter) Convention() Convention { return ConventionCompact }

func (CompactAdapter) Supports(t reflect.Type) bool {
	return anyField(t, func(sf reflect.StructField) bool {
		return sf.Anonymous && isMarker(indirect(sf.Type))
	})
}

func (CompactAdapter) Fields(t reflect.Type) ([]Descriptor, error) {
	return resolveStruct(t, func(owner reflect.Type, sf reflect.StructField) (Descriptor, bool, error) {
		name, omitEmpty, tagged := wireTag(sf.Tag)
		if tagged && name == "-" {
			return Descriptor{}, false, nil
		}
		d, err := structDescriptor(owner, sf, ConventionCompact)
		if err != nil {
			return Descriptor{}, false, err
		}
		if omitEmpty && !d.Default.IsSet() {
			d.Default = Value(reflect.Zero(sf.Type).Interface())
		}
		return d, true, nil
	})
}

// Attr declares one field of a declarative type.
type Attr struct {
	Name string
	// Type is a reflect.Type, a typeexpr.Expr, or a type expression string.
	Type    any
	Default Default
	Doc     string
	NoInit  bool
}

// Declarations maps types to their declared attributes.
type Declarations struct {
	mu    sync.RWMutex
	attrs map[reflect.Type][]Attr
}

// NewDeclarations returns an empty set of declarations.
func NewDeclarations() *Declarations {
	return &Declarations{attrs: map[reflect.Type][]Attr{}}
}

// DefaultDeclarations backs Declare and the default introspector.
var DefaultDeclarations = NewDeclarations()

// Declare registers the attributes declared by T in DefaultDeclarations.
// Call it from an init function next to the type.
func Declare[T any](attrs ...Attr) {
	DefaultDeclarations.Add(reflect.TypeOf((*T)(nil)).Elem(), attrs...)
}

// Add records attrs as the fields declared by t itself. A second call for
// the same type replaces the first.
func (d *Declarations) Add(t reflect.Type, attrs ...Attr) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attrs[indirect(t)] = append([]Attr(nil), attrs...)
}

func (d *Declarations) lookup(t reflect.Type) ([]Attr, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	attrs, ok := d.attrs[indirect(t)]
	return attrs, ok
}

// DeclarativeAdapter handles types registered in a Declarations set.
// Registered structs inherit the declarations of the registered structs
// they embed.
type DeclarativeAdapter struct {
	decls *Declarations
}

// NewDeclarativeAdapter reads from decls; nil means DefaultDeclarations.
func NewDeclarativeAdapter(decls *Declarations) *DeclarativeAdapter {
	if decls == nil {
		decls = DefaultDeclarations
	}
	return &DeclarativeAdapter{decls: decls}
}

func (*DeclarativeAdapter) Convention() Convention { return ConventionDeclarative }

func (a *DeclarativeAdapter) Supports(t reflect.Type) bool {
	_, ok := a.decls.lookup(t)
	return ok
}

func (a *DeclarativeAdapter) Fields(t reflect.Type) ([]Descriptor, error) {
	r := &resolver{visiting: map[reflect.Type]bool{}}
	if err := a.walk(r, indirect(t)); err != nil {
		return nil, err
	}
	return r.out, nil
}

func (a *DeclarativeAdapter) walk(r *resolver, t reflect.Type) error {
	if r.visiting[t] {
		return nil
	}
	r.visiting[t] = true
	defer delete(r.visiting, t)

	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if !sf.Anonymous {
				continue
			}
			if et := indirect(sf.Type); a.Supports(et) {
				if err := a.walk(r, et); err != nil {
					return err
				}
			}
		}
	}

	attrs, _ := a.decls.lookup(t)
	for _, attr := range attrs {
		d, err := attrDescriptor(t, attr)
		if err != nil {
			return errors.Errorf("attribute %s.%s: %w", t.Name(), attr.Name, err)
		}
		r.add(d)
	}
	return nil
}

func attrDescriptor(owner reflect.Type, attr Attr) (Descriptor, error) {
	if strings.TrimSpace(attr.Name) == "" {
		return Descriptor{}, errors.New("attribute without a name")
	}
	typ, err := attrType(attr.Type)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Name:        attr.Name,
		Type:        typ,
		Default:     attr.Default,
		Description: attr.Doc,
		Owner:       owner,
		Visibility:  visibilityOfName(attr.Name),
		Init:        !attr.NoInit,
		Convention:  ConventionDeclarative,
	}, nil
}

func attrType(v any) (typeexpr.Expr, error) {
	switch t := v.(type) {
	case typeexpr.Expr:
		return t, nil
	case reflect.Type:
		return typeexpr.FromType(t), nil
	case string:
		return typeexpr.Parse(t)
	case nil:
		return typeexpr.Ident("any"), nil
	}
	return typeexpr.Expr{}, errors.Errorf("unsupported attribute type %T", v)
}
