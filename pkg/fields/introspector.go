package fields

import (
	"reflect"

	"gitlab.com/tozd/go/errors"
)

// Filter selects which resolved fields are reported.
type Filter struct {
	// IncludeInherited keeps fields declared by embedded ancestors. Off, only
	// fields owned by the inspected type remain.
	IncludeInherited bool
	// IncludePrivate keeps private fields. Off, they are dropped entirely.
	IncludePrivate bool
}

// Apply filters descs, the resolved field set of t. Order is preserved.
func (f Filter) Apply(t reflect.Type, descs []Descriptor) []Descriptor {
	t = indirect(t)
	out := make([]Descriptor, 0, len(descs))
	for _, d := range descs {
		if !f.IncludeInherited && d.Owner != t {
			continue
		}
		if !f.IncludePrivate && d.IsPrivate() {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Introspector answers whether a type is field-bearing and extracts its
// fields through the first adapter that supports it.
type Introspector struct {
	adapters []Adapter
}

// DefaultAdapters returns the built-in adapters in selection order.
func DefaultAdapters() []Adapter {
	return []Adapter{
		NewDeclarativeAdapter(DefaultDeclarations),
		CompactAdapter{},
		NewValidatedAdapter(nil),
		RecordAdapter{},
	}
}

// NewIntrospector creates an introspector over adapters, or over
// DefaultAdapters when none are given.
func NewIntrospector(adapters ...Adapter) *Introspector {
	if len(adapters) == 0 {
		adapters = DefaultAdapters()
	}
	return &Introspector{adapters: adapters}
}

// Lookup returns the adapter for t, or ErrNotFieldBearing.
func (in *Introspector) Lookup(t reflect.Type) (Adapter, error) {
	if t == nil {
		return nil, ErrNotFieldBearing
	}
	for _, a := range in.adapters {
		if a.Supports(t) {
			return a, nil
		}
	}
	return nil, ErrNotFieldBearing
}

// IsFieldBearing reports whether some adapter supports t.
func (in *Introspector) IsFieldBearing(t reflect.Type) bool {
	_, err := in.Lookup(t)
	return err == nil
}

// Extract returns the filtered fields of t. It returns ErrNotFieldBearing
// for unsupported types and an *ExtractionError when the adapter fails,
// panics included.
func (in *Introspector) Extract(t reflect.Type, f Filter) ([]Descriptor, error) {
	a, err := in.Lookup(t)
	if err != nil {
		return nil, err
	}
	descs, err := safeFields(a, t)
	if err != nil {
		return nil, &ExtractionError{Type: t, Convention: a.Convention(), Err: err}
	}
	return f.Apply(t, descs), nil
}

func safeFields(a Adapter, t reflect.Type) (descs []Descriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			descs, err = nil, errors.Errorf("panic: %v", r)
		}
	}()
	return a.Fields(t)
}

var defaultIntrospector = NewIntrospector()

// Lookup returns the default introspector's adapter for t.
func Lookup(t reflect.Type) (Adapter, error) { return defaultIntrospector.Lookup(t) }

// Extract extracts the fields of t with the default introspector.
func Extract(t reflect.Type, f Filter) ([]Descriptor, error) {
	return defaultIntrospector.Extract(t, f)
}
