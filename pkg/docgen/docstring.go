package docgen

import (
	"regexp"
	"strings"

	"github.com/gork-labs/docfields/pkg/docmodel"
)

var sectionHeaders = map[string]docmodel.SectionKind{
	"parameters": docmodel.SectionParameters,
	"params":     docmodel.SectionParameters,
	"args":       docmodel.SectionParameters,
	"arguments":  docmodel.SectionParameters,
	"attributes": docmodel.SectionAttributes,
	"fields":     docmodel.SectionAttributes,
}

// entryLine matches "name (type): description" and "name: description",
// optionally bulleted with "-" or "*".
var entryLine = regexp.MustCompile(`^(?:[-*]\s+)?([A-Za-z_][A-Za-z0-9_]*)\s*(?:\(([^)]*)\))?\s*:(?:\s+(.*))?$`)

// ParseDocstring splits a doc comment into sections. Lines reading
// "Parameters:", "Params:", "Args:" or "Arguments:" open a Parameters
// section, "Attributes:" or "Fields:" an Attributes section. Inside them
// each entry starts on a line like
//
//	name (type): description
//
// and continues on the more indented lines below it. A line that is neither
// ends the section.
func ParseDocstring(text string) *docmodel.Docstring {
	doc := &docmodel.Docstring{Value: text}
	p := docParser{doc: doc}
	for _, line := range strings.Split(text, "\n") {
		p.line(line)
	}
	p.flushText()
	return doc
}

type docParser struct {
	doc     *docmodel.Docstring
	text    []string
	section *docmodel.Section
	indent  int // indentation of the section's entries, -1 before the first
}

func (p *docParser) line(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		if p.section == nil {
			p.text = append(p.text, "")
		}
		return
	}

	if kind, ok := header(trimmed); ok {
		p.flushText()
		p.section = p.doc.Section(kind)
		if p.section == nil {
			p.section = &docmodel.Section{Kind: kind}
			p.doc.Sections = append(p.doc.Sections, p.section)
		}
		p.indent = -1
		return
	}

	if p.section != nil {
		indent := indentation(line)
		if m := entryLine.FindStringSubmatch(trimmed); m != nil && (p.indent < 0 || indent <= p.indent) {
			p.indent = indent
			p.section.Entries = append(p.section.Entries, docmodel.Entry{
				Name:        m[1],
				Annotation:  strings.TrimSpace(m[2]),
				Description: strings.TrimSpace(m[3]),
			})
			return
		}
		if p.indent >= 0 && indent > p.indent {
			last := &p.section.Entries[len(p.section.Entries)-1]
			last.Description = strings.TrimSpace(last.Description + " " + trimmed)
			return
		}
		p.section = nil
	}
	p.text = append(p.text, trimmed)
}

func (p *docParser) flushText() {
	text := strings.TrimSpace(strings.Join(p.text, "\n"))
	p.text = nil
	if text == "" {
		return
	}
	p.doc.Sections = append(p.doc.Sections, &docmodel.Section{Kind: docmodel.SectionText, Text: text})
}

func header(trimmed string) (docmodel.SectionKind, bool) {
	if !strings.HasSuffix(trimmed, ":") {
		return "", false
	}
	kind, ok := sectionHeaders[strings.ToLower(strings.TrimSpace(strings.TrimSuffix(trimmed, ":")))]
	return kind, ok
}

func indentation(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}
