package fields

import (
	"reflect"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// FieldTagKey is the struct tag read for per-field options.
const FieldTagKey = "fields"

// fieldTagInfo holds options parsed from the `fields` struct tag.
type fieldTagInfo struct {
	Skip   bool // `fields:"-"`: not part of the record
	NoInit bool // `fields:"noinit"` or `fields:"init=false"`
}

// parseFieldTag parses a tag value like `noinit` or `init=false`. Items are
// comma-separated; a lone "-" skips the field.
func parseFieldTag(tag string) fieldTagInfo {
	var info fieldTagInfo
	if strings.TrimSpace(tag) == "-" {
		info.Skip = true
		return info
	}
	for _, p := range strings.Split(tag, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if kv := strings.SplitN(p, "=", 2); len(kv) == 2 {
			key := strings.TrimSpace(kv[0])
			val := strings.TrimSpace(kv[1])
			if key == "init" {
				info.NoInit = val == "false"
			}
			continue
		}
		if p == "noinit" {
			info.NoInit = true
		}
	}
	return info
}

// tagDescription returns the field's own description metadata.
func tagDescription(tag reflect.StructTag) string {
	if d := tag.Get("description"); d != "" {
		return d
	}
	return tag.Get("doc")
}

// decodeDefault reads a `default` tag into a value of the field's type, so
// that the rendered default matches what the field would hold.
func decodeDefault(t reflect.Type, raw string) (any, error) {
	ptr := reflect.New(t)
	if err := yaml.Unmarshal([]byte(raw), ptr.Interface()); err != nil {
		return nil, errors.Errorf("default %q is not a valid %s: %w", raw, t, err)
	}
	return ptr.Elem().Interface(), nil
}

// wireTag returns the name and omitempty flag of the first wire-format tag
// present on the field.
func wireTag(tag reflect.StructTag) (name string, omitEmpty bool, ok bool) {
	for _, key := range []string{"json", "msgpack", "yaml", "cbor"} {
		v, found := tag.Lookup(key)
		if !found {
			continue
		}
		parts := strings.Split(v, ",")
		for _, opt := range parts[1:] {
			if opt == "omitempty" || opt == "omitzero" {
				omitEmpty = true
			}
		}
		return parts[0], omitEmpty, true
	}
	return "", false, false
}

func indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
