package typeexpr

import (
	"regexp"
	"strings"
)

// AnnotatedName is the identifier of annotation-carrying wrapper types:
// Annotated[T, M...] holds a value of type T plus metadata M that is not part
// of the value's type.
const AnnotatedName = "Annotated"

// IsAnnotated reports whether e is an Annotated[...] wrapper, whatever package
// qualifies it.
func (e Expr) IsAnnotated() bool {
	return e.Kind == Named && e.BaseName() == AnnotatedName && len(e.Args) > 0
}

// StripAnnotated replaces every Annotated[T, ...] wrapper inside e with T.
// Nested wrappers are unwrapped too, so
// []Annotated[Annotated[int, A], B] becomes []int. Wrappers inside Raw
// expressions (func parameters and results, struct fields) are rewritten in
// the text.
func StripAnnotated(e Expr) Expr {
	if e.IsAnnotated() {
		return StripAnnotated(e.Args[0])
	}
	if e.Kind == Raw {
		return Expr{Kind: Raw, Name: stripRaw(e.Name)}
	}
	if len(e.Args) == 0 {
		return e
	}
	out := Expr{Kind: e.Kind, Name: e.Name, Args: make([]Expr, len(e.Args))}
	for i, a := range e.Args {
		out.Args[i] = StripAnnotated(a)
	}
	return out
}

// Display returns the expression shown in documentation: e itself, or e with
// Annotated wrappers removed when strip is set.
func Display(e Expr, strip bool) Expr {
	if strip {
		return StripAnnotated(e)
	}
	return e
}

var annotatedRef = regexp.MustCompile(`(?:[A-Za-z_][A-Za-z0-9_]*\.)?` + AnnotatedName + `\[`)

func stripRaw(s string) string {
	var sb strings.Builder
	for {
		start, open := findAnnotated(s)
		if start < 0 {
			break
		}
		end := closingBracket(s, open)
		if end < 0 {
			break
		}
		e, err := Parse(s[start : end+1])
		if err != nil || !e.IsAnnotated() {
			sb.WriteString(s[:open+1])
			s = s[open+1:]
			continue
		}
		sb.WriteString(s[:start])
		sb.WriteString(StripAnnotated(e).String())
		s = s[end+1:]
	}
	sb.WriteString(s)
	return sb.String()
}

// findAnnotated returns the offsets of the next Annotated identifier in s and
// of its opening bracket, or -1.
func findAnnotated(s string) (start, open int) {
	for off := 0; off < len(s); {
		loc := annotatedRef.FindStringIndex(s[off:])
		if loc == nil {
			break
		}
		start, open = off+loc[0], off+loc[1]-1
		if start == 0 || !isIdentByte(s[start-1]) {
			return start, open
		}
		off = open + 1
	}
	return -1, -1
}

func closingBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
			if depth == 0 {
				if s[i] != ']' {
					return -1
				}
				return i
			}
		}
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
