package fields_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/gork-labs/docfields/pkg/fields"
)

type Base struct {
	A int `default:"0"`
	B string
}

type Derived struct {
	Base
	B string `default:"x"`
	C bool   `default:"false"`
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func names(descs []fields.Descriptor) []string {
	out := make([]string, 0, len(descs))
	for _, d := range descs {
		out = append(out, d.Name)
	}
	return out
}

func byName(t *testing.T, descs []fields.Descriptor, name string) fields.Descriptor {
	t.Helper()
	for _, d := range descs {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("field %s not found in %v", name, names(descs))
	return fields.Descriptor{}
}

func TestExtract_InheritanceExample(t *testing.T) {
	in := fields.NewIntrospector()

	all, err := in.Extract(typeOf[Derived](), fields.Filter{IncludeInherited: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(all))

	b := byName(t, all, "B")
	assert.Equal(t, typeOf[Derived](), b.Owner)
	assert.Equal(t, `"x"`, b.Default.Repr())
	assert.False(t, b.Required())
	assert.Equal(t, typeOf[Base](), byName(t, all, "A").Owner)
	assert.Equal(t, "0", byName(t, all, "A").Default.Repr())
	assert.Equal(t, "false", byName(t, all, "C").Default.Repr())

	own, err := in.Extract(typeOf[Derived](), fields.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, names(own))
}

func TestExtract_PointerTypeResolvesToStruct(t *testing.T) {
	descs, err := fields.Extract(reflect.TypeOf(&Derived{}), fields.Filter{IncludeInherited: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, names(descs))
}

type withPrivate struct {
	Public  string `doc:"shown"`
	private int
}

func TestExtract_PrivacyFilter(t *testing.T) {
	in := fields.NewIntrospector()
	typ := typeOf[withPrivate]()

	descs, err := in.Extract(typ, fields.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Public"}, names(descs))
	assert.Equal(t, "shown", descs[0].Description)

	descs, err = in.Extract(typ, fields.Filter{IncludePrivate: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Public", "private"}, names(descs))
	assert.Equal(t, fields.Private, descs[1].Visibility)
	assert.True(t, descs[1].Required())
}

type Gt struct{}

type annotatedRecord struct {
	Count fields.Annotated[int, Gt] `default:"3"`
}

func TestExtract_AnnotatedDisplay(t *testing.T) {
	descs, err := fields.Extract(typeOf[annotatedRecord](), fields.Filter{})
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.True(t, d.Type.IsAnnotated())
	assert.Equal(t, "int", fields.DisplayType(d, true).String())
	assert.Equal(t, "fields.Annotated[int, fields_test.Gt]", fields.DisplayType(d, false).String())
	assert.Equal(t, "3", d.Default.Repr())
}

type skipped struct {
	Kept    string
	Ignored string `fields:"-"`
	Derived string `fields:"noinit"`
	Other   string `fields:"init=false"`
}

func TestExtract_FieldTag(t *testing.T) {
	descs, err := fields.Extract(typeOf[skipped](), fields.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kept", "Derived", "Other"}, names(descs))
	assert.True(t, descs[0].Init)
	assert.False(t, descs[1].Init)
	assert.False(t, descs[2].Init)
}

type badDefault struct {
	N int `default:"not-a-number"`
}

func TestExtract_MalformedDefault(t *testing.T) {
	_, err := fields.Extract(typeOf[badDefault](), fields.Filter{})
	require.Error(t, err)

	var extErr *fields.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.True(t, errors.Is(err, fields.ErrExtraction))
	assert.Equal(t, fields.ConventionRecord, extErr.Convention)
	assert.Equal(t, typeOf[badDefault](), extErr.Type)
}

type validated struct {
	Name  string `validate:"required" default:"anon"`
	Port  int    `validate:"gte=1,lte=65535" default:"8080"`
	Limit int    `validate:"gte=0"`
}

type invalidDefault struct {
	Port int `validate:"gte=1" default:"0"`
}

type undefinedRule struct {
	Port int `validate:"no_such_rule"`
}

type signup struct {
	Email    string `validate:"omitempty,email"`
	Password string `validate:"required"`
	Confirm  string `validate:"eqfield=Password" default:"x"`
	Phone    string `validate:"required_without=Email" default:"none"`
}

type crossFieldUndefined struct {
	Password string
	Confirm  string `validate:"eqfield=Password,no_such_rule" default:"x"`
}

func TestValidatedAdapter(t *testing.T) {
	in := fields.NewIntrospector()

	a, err := in.Lookup(typeOf[validated]())
	require.NoError(t, err)
	assert.Equal(t, fields.ConventionValidated, a.Convention())

	descs, err := in.Extract(typeOf[validated](), fields.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Port", "Limit"}, names(descs))
	assert.Equal(t, `"anon"`, descs[0].Default.Repr())
	assert.Equal(t, "8080", descs[1].Default.Repr())
	assert.True(t, descs[2].Required())

	tests := []struct {
		name string
		typ  reflect.Type
	}{
		{"default violates rule", typeOf[invalidDefault]()},
		{"undefined rule", typeOf[undefinedRule]()},
		{"undefined rule next to a cross-field rule", typeOf[crossFieldUndefined]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := in.Extract(tt.typ, fields.Filter{})
			var extErr *fields.ExtractionError
			require.ErrorAs(t, err, &extErr)
			assert.Equal(t, fields.ConventionValidated, extErr.Convention)
		})
	}
}

func TestValidatedAdapter_CrossFieldDefaults(t *testing.T) {
	descs, err := fields.Extract(typeOf[signup](), fields.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Password", "Confirm", "Phone"}, names(descs))
	assert.Equal(t, `"x"`, descs[2].Default.Repr())
	assert.Equal(t, `"none"`, descs[3].Default.Repr())
}

type event struct {
	fields.Compact
	ID      string   `json:"id"`
	Tags    []string `json:"tags,omitempty"`
	Retries int      `msgpack:"retries,omitempty" default:"3"`
	Secret  string   `json:"-"`
}

func TestCompactAdapter(t *testing.T) {
	in := fields.NewIntrospector()

	a, err := in.Lookup(typeOf[event]())
	require.NoError(t, err)
	assert.Equal(t, fields.ConventionCompact, a.Convention())

	descs, err := in.Extract(typeOf[event](), fields.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Tags", "Retries"}, names(descs))
	assert.True(t, descs[0].Required())
	assert.Equal(t, "[]", descs[1].Default.Repr())
	assert.Equal(t, "3", descs[2].Default.Repr())
	assert.Equal(t, "[]string", descs[1].Type.String())
}

type timeouts struct {
	fields.Compact
	Timeout *time.Duration `json:"timeout,omitempty"`
}

type nullable struct {
	Wait  *time.Duration `default:"null"`
	Limit *int           `default:"5"`
}

func TestNilPointerDefaults(t *testing.T) {
	descs, err := fields.Extract(typeOf[timeouts](), fields.Filter{})
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.NotPanics(t, func() { assert.Equal(t, "nil", descs[0].Default.Repr()) })

	descs, err = fields.Extract(typeOf[nullable](), fields.Filter{})
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.NotPanics(t, func() { assert.Equal(t, "nil", descs[0].Default.Repr()) })
	assert.Equal(t, "5", descs[1].Default.Repr())
}

type shape struct{}

type circle struct {
	shape
}

type unregistered struct{}

func TestDeclarativeAdapter(t *testing.T) {
	decls := fields.NewDeclarations()
	decls.Add(typeOf[shape](),
		fields.Attr{Name: "name", Type: "str", Doc: "Display name."},
		fields.Attr{Name: "_cache", Type: typeOf[map[string]int]()},
	)
	decls.Add(typeOf[circle](),
		fields.Attr{Name: "radius", Type: "float", Default: fields.Value(1.5)},
		fields.Attr{Name: "name", Type: "str", Default: fields.Value("circle")},
		fields.Attr{Name: "area", Type: "float", NoInit: true},
	)
	in := fields.NewIntrospector(fields.NewDeclarativeAdapter(decls), fields.RecordAdapter{})

	a, err := in.Lookup(typeOf[circle]())
	require.NoError(t, err)
	assert.Equal(t, fields.ConventionDeclarative, a.Convention())

	descs, err := in.Extract(typeOf[circle](), fields.Filter{IncludeInherited: true, IncludePrivate: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"_cache", "radius", "name", "area"}, names(descs))
	assert.Equal(t, "map[string]int", descs[0].Type.String())
	assert.Equal(t, fields.Private, descs[0].Visibility)
	assert.Equal(t, typeOf[circle](), descs[2].Owner)
	assert.Equal(t, `"circle"`, descs[2].Default.Repr())
	assert.False(t, descs[3].Init)

	descs, err = in.Extract(typeOf[circle](), fields.Filter{IncludeInherited: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"radius", "name", "area"}, names(descs))

	assert.False(t, in.IsFieldBearing(typeOf[unregistered]()))
}

func TestDeclarativeAdapter_MalformedAttribute(t *testing.T) {
	decls := fields.NewDeclarations()
	decls.Add(typeOf[shape](), fields.Attr{Name: "", Type: "int"})
	in := fields.NewIntrospector(fields.NewDeclarativeAdapter(decls))

	_, err := in.Extract(typeOf[shape](), fields.Filter{})
	var extErr *fields.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, fields.ConventionDeclarative, extErr.Convention)
}

func TestLookup_NotFieldBearing(t *testing.T) {
	in := fields.NewIntrospector()
	for _, typ := range []reflect.Type{nil, typeOf[int](), typeOf[struct{}](), typeOf[[]Base]()} {
		_, err := in.Lookup(typ)
		assert.ErrorIs(t, err, fields.ErrNotFieldBearing, "%v", typ)

		_, err = in.Extract(typ, fields.Filter{})
		assert.ErrorIs(t, err, fields.ErrNotFieldBearing, "%v", typ)
	}
}

type panicky struct{}

type panicAdapter struct{}

func (panicAdapter) Convention() fields.Convention { return "panicky" }

func (panicAdapter) Supports(reflect.Type) bool { return true }

func (panicAdapter) Fields(reflect.Type) ([]fields.Descriptor, error) { panic("boom") }

func TestExtract_RecoversAdapterPanic(t *testing.T) {
	in := fields.NewIntrospector(panicAdapter{})
	_, err := in.Extract(typeOf[panicky](), fields.Filter{})
	var extErr *fields.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Contains(t, extErr.Error(), "boom")
}

type Grand struct {
	X int
	Y int
}

type Middle struct {
	Grand
	Y string
}

type Leaf struct {
	Middle
	X bool
}

func TestExtract_NamesUnique(t *testing.T) {
	descs, err := fields.Extract(typeOf[Leaf](), fields.Filter{IncludeInherited: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Y", "X"}, names(descs))
	assert.Equal(t, typeOf[Middle](), descs[0].Owner)
	assert.Equal(t, typeOf[Leaf](), descs[1].Owner)
}

type loudStringer struct{}

func (loudStringer) String() string { panic("loud") }

func TestDefaultRepr(t *testing.T) {
	seven := 7 * time.Nanosecond
	eight := 8
	calls := 0
	tests := []struct {
		name string
		def  fields.Default
		want string
	}{
		{"absent", fields.NoDefault(), ""},
		{"string", fields.Value("a b"), `"a b"`},
		{"int", fields.Value(42), "42"},
		{"nil", fields.Value(nil), "nil"},
		{"stringer", fields.Value(1500 * time.Millisecond), "1.5s"},
		{"factory", fields.Factory(func() []int { calls++; return []int{1, 2} }), "[1 2]"},
		{"factory with args", fields.Factory(func(int) int { return 0 }), fields.DynamicRepr},
		{"panicking factory", fields.Factory(func() int { panic("no") }), fields.DynamicRepr},
		{"nil stringer pointer", fields.Value((*time.Duration)(nil)), "nil"},
		{"stringer pointer", fields.Value(&seven), "7ns"},
		{"int pointer", fields.Value(&eight), "8"},
		{"panicking stringer", fields.Value(loudStringer{}), fields.DynamicRepr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.def.Repr())
		})
	}
	assert.Equal(t, 1, calls)
	assert.True(t, fields.Factory(time.Now).IsFactory())
}
