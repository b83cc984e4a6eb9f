// Package fields normalizes the fields of Go types declared through several
// conventions (plain records, validated models, declarative attribute types
// and compact wire records) into one Descriptor model.
//
// A type is field-bearing when one of the registered adapters supports it.
// Adapters are selected by a runtime capability check, in order:
//
//	DeclarativeAdapter  types registered with Declare
//	CompactAdapter      structs embedding the Compact marker
//	ValidatedAdapter    structs whose fields carry `validate` rules
//	RecordAdapter       any other struct with at least one field
//
// Struct embedding plays the role of inheritance: an embedded struct is an
// ancestor, its fields are inherited, and a field redeclared by the embedding
// struct shadows the ancestor's field of the same name.
package fields

import (
	"fmt"
	"go/token"
	"reflect"
	"strconv"
	"strings"

	"github.com/gork-labs/docfields/pkg/typeexpr"
)

// Convention names the declaration style a descriptor was read from.
type Convention string

const (
	ConventionRecord      Convention = "record"
	ConventionValidated   Convention = "validated"
	ConventionDeclarative Convention = "declarative"
	ConventionCompact     Convention = "compact"
)

// Visibility of a field.
type Visibility int

const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	if v == Private {
		return "private"
	}
	return "public"
}

// visibilityOfName applies the leading-underscore convention used by
// declared (non-struct) attribute names.
func visibilityOfName(name string) Visibility {
	if strings.HasPrefix(name, "_") {
		return Private
	}
	return Public
}

// visibilityOfIdent treats unexported Go identifiers as private.
func visibilityOfIdent(name string) Visibility {
	if !token.IsExported(name) {
		return Private
	}
	return Public
}

// Descriptor is the normalized metadata of one field.
type Descriptor struct {
	Name        string
	Type        typeexpr.Expr
	Default     Default
	Description string
	// Owner is the type that declared the field.
	Owner      reflect.Type
	Visibility Visibility
	// Init is false for fields that are not set through construction; they
	// are documented as attributes, never as parameters.
	Init       bool
	Convention Convention
}

// Required reports whether the field has no default.
func (d Descriptor) Required() bool { return !d.Default.IsSet() }

// IsPrivate reports whether the field is private.
func (d Descriptor) IsPrivate() bool { return d.Visibility == Private }

// DisplayType returns the type shown for d in documentation.
func DisplayType(d Descriptor, stripAnnotated bool) typeexpr.Expr {
	return typeexpr.Display(d.Type, stripAnnotated)
}

type defaultKind int

const (
	noDefault defaultKind = iota
	valueDefault
	factoryDefault
)

// DynamicRepr is shown for defaults produced by a factory that cannot be
// evaluated ahead of time.
const DynamicRepr = "<dynamic>"

// Default is a field default: absent, a literal value, or a factory.
type Default struct {
	kind    defaultKind
	value   any
	factory any
}

// NoDefault is the absent default.
func NoDefault() Default { return Default{} }

// Value is a literal default.
func Value(v any) Default { return Default{kind: valueDefault, value: v} }

// Factory is a default produced by calling fn. Niladic functions are called
// to render the default; anything else renders as DynamicRepr.
func Factory(fn any) Default { return Default{kind: factoryDefault, factory: fn} }

// IsSet reports whether a default exists.
func (d Default) IsSet() bool { return d.kind != noDefault }

// IsFactory reports whether the default comes from a factory.
func (d Default) IsFactory() bool { return d.kind == factoryDefault }

// Repr renders the default for documentation, or "" when there is none.
func (d Default) Repr() string {
	switch d.kind {
	case valueDefault:
		return formatValue(d.value)
	case factoryDefault:
		return callFactory(d.factory)
	}
	return ""
}

func callFactory(fn any) (repr string) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return formatValue(fn)
	}
	if rv.Type().NumIn() != 0 || rv.Type().NumOut() == 0 {
		return DynamicRepr
	}
	defer func() {
		if recover() != nil {
			repr = DynamicRepr
		}
	}()
	return formatValue(rv.Call(nil)[0].Interface())
}

// annotatedValue is implemented by Annotated so defaults render as the
// wrapped value.
type annotatedValue interface {
	annotatedValue() any
}

func formatValue(v any) string {
	if a, ok := v.(annotatedValue); ok {
		v = a.annotatedValue()
	}
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return "nil"
		}
	}
	if s, ok := v.(fmt.Stringer); ok {
		return stringerValue(s)
	}
	if rv.Kind() == reflect.Pointer {
		return formatValue(rv.Elem().Interface())
	}
	if rv.Kind() == reflect.String {
		return strconv.Quote(rv.String())
	}
	return fmt.Sprintf("%v", v)
}

// stringerValue calls String, rendering a panicking method as DynamicRepr.
func stringerValue(s fmt.Stringer) (repr string) {
	defer func() {
		if recover() != nil {
			repr = DynamicRepr
		}
	}()
	return s.String()
}
