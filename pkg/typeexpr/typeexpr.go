// Package typeexpr models Go type expressions as small trees so that field
// types can be displayed, compared and rewritten without string surgery.
package typeexpr

import (
	"reflect"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Kind classifies an Expr node.
type Kind int

const (
	// Named is an identifier, optionally package-qualified and optionally
	// instantiated with type arguments (Args).
	Named Kind = iota
	// Pointer is *Args[0].
	Pointer
	// Slice is []Args[0].
	Slice
	// Array is [Name]Args[0].
	Array
	// Map is map[Args[0]]Args[1].
	Map
	// Raw is an expression kept verbatim in Name (func, struct, chan and
	// interface literals).
	Raw
)

// Expr is a type expression.
type Expr struct {
	Kind Kind
	Name string
	Args []Expr
}

// Ident returns a Named expression.
func Ident(name string, args ...Expr) Expr {
	return Expr{Kind: Named, Name: name, Args: args}
}

// IsZero reports whether e is the empty expression.
func (e Expr) IsZero() bool {
	return e.Kind == Named && e.Name == "" && len(e.Args) == 0
}

// BaseName returns the unqualified identifier of a Named expression.
func (e Expr) BaseName() string {
	if e.Kind != Named {
		return ""
	}
	if idx := strings.LastIndex(e.Name, "."); idx >= 0 {
		return e.Name[idx+1:]
	}
	return e.Name
}

// String renders e using Go syntax.
func (e Expr) String() string {
	var sb strings.Builder
	e.write(&sb)
	return sb.String()
}

func (e Expr) write(sb *strings.Builder) {
	switch e.Kind {
	case Pointer:
		sb.WriteString("*")
		e.elem().write(sb)
	case Slice:
		sb.WriteString("[]")
		e.elem().write(sb)
	case Array:
		sb.WriteString("[" + e.Name + "]")
		e.elem().write(sb)
	case Map:
		sb.WriteString("map[")
		e.arg(0).write(sb)
		sb.WriteString("]")
		e.arg(1).write(sb)
	case Raw:
		sb.WriteString(e.Name)
	default:
		sb.WriteString(e.Name)
		if len(e.Args) > 0 {
			sb.WriteString("[")
			for i, a := range e.Args {
				if i > 0 {
					sb.WriteString(", ")
				}
				a.write(sb)
			}
			sb.WriteString("]")
		}
	}
}

func (e Expr) elem() Expr { return e.arg(0) }

func (e Expr) arg(i int) Expr {
	if i < len(e.Args) {
		return e.Args[i]
	}
	return Expr{}
}

// importPath matches the import-path prefix reflect puts in front of
// package-qualified type arguments of generic instantiations.
var importPath = regexp.MustCompile(`(?:[A-Za-z0-9_.~\-]+/)+`)

// FromType builds the expression for a runtime type, using package names
// rather than import paths as qualifiers.
func FromType(t reflect.Type) Expr {
	if t == nil {
		return Ident("nil")
	}
	s := importPath.ReplaceAllString(t.String(), "")
	e, err := Parse(s)
	if err != nil {
		return Expr{Kind: Raw, Name: s}
	}
	return e
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// Parse reads a type expression such as "map[string][]Annotated[int, Gt(0)]".
// Type arguments that are not types (validator metadata and the like) are
// kept as Named leaves.
func Parse(s string) (Expr, error) {
	p := &parser{src: s}
	e, err := p.expr()
	if err != nil {
		return Expr{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Expr{}, errors.Errorf("typeexpr: unexpected %q at offset %d in %q", p.src[p.pos:], p.pos, s)
	}
	return e, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) expr() (Expr, error) {
	p.skipSpace()
	rest := p.rest()
	switch {
	case rest == "":
		return Expr{}, errors.Errorf("typeexpr: empty expression in %q", p.src)
	case strings.HasPrefix(rest, "*"):
		p.pos++
		elem, err := p.expr()
		return Expr{Kind: Pointer, Args: []Expr{elem}}, err
	case strings.HasPrefix(rest, "[]"):
		p.pos += 2
		elem, err := p.expr()
		return Expr{Kind: Slice, Args: []Expr{elem}}, err
	case strings.HasPrefix(rest, "["):
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return Expr{}, errors.Errorf("typeexpr: unterminated array length in %q", p.src)
		}
		length := strings.TrimSpace(rest[1:end])
		p.pos += end + 1
		elem, err := p.expr()
		return Expr{Kind: Array, Name: length, Args: []Expr{elem}}, err
	case strings.HasPrefix(rest, "map["):
		p.pos += len("map[")
		key, err := p.expr()
		if err != nil {
			return Expr{}, err
		}
		p.skipSpace()
		if !strings.HasPrefix(p.rest(), "]") {
			return Expr{}, errors.Errorf("typeexpr: unterminated map key in %q", p.src)
		}
		p.pos++
		val, err := p.expr()
		return Expr{Kind: Map, Args: []Expr{key, val}}, err
	case hasKeyword(rest, "func"), hasKeyword(rest, "struct"), hasKeyword(rest, "interface"), hasKeyword(rest, "chan"):
		return p.raw()
	}
	return p.named()
}

func hasKeyword(s, kw string) bool {
	if !strings.HasPrefix(s, kw) {
		return false
	}
	if len(s) == len(kw) {
		return true
	}
	c := s[len(kw)]
	return !(c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z')
}

// raw consumes a balanced run up to the next top-level ',' or ']'.
func (p *parser) raw() (Expr, error) {
	start := p.pos
	depth := 0
	for ; p.pos < len(p.src); p.pos++ {
		switch p.src[p.pos] {
		case '(', '[', '{':
			depth++
		case ')', '}':
			depth--
		case ']':
			if depth == 0 {
				return Expr{Kind: Raw, Name: strings.TrimSpace(p.src[start:p.pos])}, nil
			}
			depth--
		case ',':
			if depth == 0 {
				return Expr{Kind: Raw, Name: strings.TrimSpace(p.src[start:p.pos])}, nil
			}
		}
	}
	if depth != 0 {
		return Expr{}, errors.Errorf("typeexpr: unbalanced brackets in %q", p.src)
	}
	return Expr{Kind: Raw, Name: strings.TrimSpace(p.src[start:])}, nil
}

func (p *parser) named() (Expr, error) {
	start := p.pos
	depth := 0
scan:
	for ; p.pos < len(p.src); p.pos++ {
		switch c := p.src[p.pos]; c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return Expr{}, errors.Errorf("typeexpr: unbalanced parenthesis in %q", p.src)
			}
		case '[', ',', ']':
			if depth == 0 {
				break scan
			}
		}
	}
	if depth != 0 {
		return Expr{}, errors.Errorf("typeexpr: unbalanced parenthesis in %q", p.src)
	}
	name := strings.TrimSpace(p.src[start:p.pos])
	if name == "" {
		return Expr{}, errors.Errorf("typeexpr: missing identifier at offset %d in %q", start, p.src)
	}
	e := Expr{Kind: Named, Name: name}
	if !strings.HasPrefix(p.rest(), "[") {
		return e, nil
	}
	p.pos++
	for {
		arg, err := p.expr()
		if err != nil {
			return Expr{}, err
		}
		e.Args = append(e.Args, arg)
		p.skipSpace()
		switch {
		case strings.HasPrefix(p.rest(), ","):
			p.pos++
		case strings.HasPrefix(p.rest(), "]"):
			p.pos++
			return e, nil
		default:
			return Expr{}, errors.Errorf("typeexpr: unterminated type arguments in %q", p.src)
		}
	}
}
