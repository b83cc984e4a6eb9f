package docgen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/gork-labs/docfields/pkg/docmodel"
)

func TestParseDocstring(t *testing.T) {
	text := `Server settings.

Longer description
over two lines.

Parameters:
  Host (string): Listen address.
  Port: TCP port,
    defaults to 8080.

Attributes:
  - Started: Start time.
  - uptime (time.Duration): Time since start.

Trailing notes.`

	got := ParseDocstring(text)
	want := &docmodel.Docstring{
		Value: text,
		Sections: []*docmodel.Section{
			{Kind: docmodel.SectionText, Text: "Server settings.\n\nLonger description\nover two lines."},
			{Kind: docmodel.SectionParameters, Entries: []docmodel.Entry{
				{Name: "Host", Annotation: "string", Description: "Listen address."},
				{Name: "Port", Description: "TCP port, defaults to 8080."},
			}},
			{Kind: docmodel.SectionAttributes, Entries: []docmodel.Entry{
				{Name: "Started", Description: "Start time."},
				{Name: "uptime", Annotation: "time.Duration", Description: "Time since start."},
			}},
			{Kind: docmodel.SectionText, Text: "Trailing notes."},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDocstring() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocstring_HeadersAndPlainText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		kinds []docmodel.SectionKind
	}{
		{"plain", "Just text.", []docmodel.SectionKind{docmodel.SectionText}},
		{"empty", "", nil},
		{"args alias", "Args:\n  a: x", []docmodel.SectionKind{docmodel.SectionParameters}},
		{"fields alias", "Fields:\n  a: x", []docmodel.SectionKind{docmodel.SectionAttributes}},
		{"empty section", "Summary.\n\nParameters:", []docmodel.SectionKind{docmodel.SectionText, docmodel.SectionParameters}},
		{"header needs colon", "Parameters\n  a: x", []docmodel.SectionKind{docmodel.SectionText}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kinds []docmodel.SectionKind
			for _, s := range ParseDocstring(tt.text).Sections {
				kinds = append(kinds, s.Kind)
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}
