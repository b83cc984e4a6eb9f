package fields

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

// Compact marks a struct as a compact wire record. Embed it:
//
//	type Event struct {
//		fields.Compact
//		ID   string   `json:"id"`
//		Tags []string `json:"tags,omitempty"`
//	}
//
// Fields whose wire tag carries omitempty are optional and default to their
// zero value.
type Compact struct{}

// Annotated carries a value of type T together with metadata M that only
// documentation and validation tooling look at.
type Annotated[T any, M any] struct {
	Value T
}

// UnmarshalYAML decodes straight into the wrapped value, so `default` tags
// are written as they would be for T.
func (a *Annotated[T, M]) UnmarshalYAML(n *yaml.Node) error {
	return n.Decode(&a.Value)
}

func (a Annotated[T, M]) annotatedValue() any { return a.Value }

var compactType = reflect.TypeOf(Compact{})

func isMarker(t reflect.Type) bool {
	return t == compactType
}
