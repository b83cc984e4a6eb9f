package docgen_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gork-labs/docfields/pkg/docgen"
	"github.com/gork-labs/docfields/pkg/docmodel"
	"github.com/gork-labs/docfields/pkg/extension"
	"github.com/gork-labs/docfields/pkg/fields"
)

// Vehicle is anything with wheels.
type Vehicle struct {
	Wheels int `default:"4" doc:"Number of wheels."`
}

// Truck carries cargo.
type Truck struct {
	Vehicle
	Payload float64 `default:"1.5"`
	Wheels  int
}

type recorder struct {
	calls []string
}

func (r *recorder) OnClassMembers(cls *docmodel.Class) {
	r.calls = append(r.calls, "members:"+cls.Name)
}

func (r *recorder) OnClass(cls *docmodel.Class) { r.calls = append(r.calls, "class:"+cls.Name) }

func TestGenerator_HookOrder(t *testing.T) {
	reg := docgen.NewRegistry()
	reg.Register(Truck{}, Vehicle{})
	rec := &recorder{}

	mod := docgen.NewGenerator(nil, nil, rec).Run(reg)

	require.Len(t, mod.Classes, 2)
	assert.Equal(t, []string{"members:Truck", "members:Vehicle", "class:Truck", "class:Vehicle"}, rec.calls)
}

func TestGenerator_WithExtension(t *testing.T) {
	reg := docgen.NewRegistry()
	reg.Register(Vehicle{}, Truck{})

	cfg := extension.DefaultConfig()
	cfg.IncludeInherited = true
	ext, err := extension.New(cfg)
	require.NoError(t, err)

	mod := docgen.NewGenerator(docgen.NewLoader(nil), nil, ext).Run(reg)

	truck := mod.Class(docgen.ClassPath(reflectTypeOf[Truck]()))
	require.NotNil(t, truck)
	params := truck.Docstring.Section(docmodel.SectionParameters)
	require.NotNil(t, params)
	assert.Equal(t, []docmodel.Entry{
		{Name: "Payload", Annotation: "float64", Value: "1.5"},
		{Name: "Wheels", Annotation: "int", Description: "Number of wheels."},
	}, params.Entries)

	var buf bytes.Buffer
	require.NoError(t, docgen.Write(&buf, mod, "json"))
	var decoded struct {
		Classes []struct {
			Path  string   `json:"path"`
			Bases []string `json:"bases"`
		} `json:"classes"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Classes, 2)
	assert.Equal(t, []string{docgen.ClassPath(reflectTypeOf[Vehicle]())}, decoded.Classes[1].Bases)

	// Same input, same bytes.
	var again bytes.Buffer
	mod2 := docgen.NewGenerator(nil, nil, mustExt(t, cfg)).Run(reg)
	require.NoError(t, docgen.Write(&again, mod2, "json"))
	assert.Equal(t, buf.String(), again.String())

	buf.Reset()
	require.NoError(t, docgen.Write(&buf, mod, "yaml"))
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &y))
	assert.Len(t, y["classes"], 2)

	assert.ErrorIs(t, docgen.Write(&buf, mod, "toml"), docgen.ErrUnknownFormat)
}

// Crate has a default its field cannot hold.
type Crate struct {
	Weight int `default:"heavy"`
}

// Timer is a compact record whose zero timeout is a nil pointer.
type Timer struct {
	fields.Compact
	Timeout *time.Duration `json:"timeout,omitempty"`
}

func TestGenerator_FailingClassDoesNotStopRun(t *testing.T) {
	reg := docgen.NewRegistry()
	reg.Register(Vehicle{}, Crate{}, Timer{})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ext, err := extension.New(extension.DefaultConfig(), extension.WithLogger(logger))
	require.NoError(t, err)

	var mod *docmodel.Module
	require.NotPanics(t, func() {
		mod = docgen.NewGenerator(docgen.NewLoader(nil), logger, ext).Run(reg)
	})
	require.Len(t, mod.Classes, 3)

	vehicle := mod.Class(docgen.ClassPath(reflectTypeOf[Vehicle]()))
	require.NotNil(t, vehicle)
	params := vehicle.Docstring.Section(docmodel.SectionParameters)
	require.NotNil(t, params)
	assert.Equal(t, []docmodel.Entry{
		{Name: "Wheels", Annotation: "int", Value: "4", Description: "Number of wheels."},
	}, params.Entries)

	crate := mod.Class(docgen.ClassPath(reflectTypeOf[Crate]()))
	require.NotNil(t, crate)
	assert.Nil(t, crate.Docstring)
	assert.Contains(t, logs.String(), "field extraction failed")

	timer := mod.Class(docgen.ClassPath(reflectTypeOf[Timer]()))
	require.NotNil(t, timer)
	params = timer.Docstring.Section(docmodel.SectionParameters)
	require.NotNil(t, params)
	assert.Equal(t, []docmodel.Entry{
		{Name: "Timeout", Annotation: "*time.Duration", Value: "nil"},
	}, params.Entries)
}

func reflectTypeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func mustExt(t *testing.T, cfg extension.Config) *extension.Extension {
	t.Helper()
	ext, err := extension.New(cfg)
	require.NoError(t, err)
	return ext
}
