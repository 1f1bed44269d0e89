// Package labeltmpl renders label templates with $NAME placeholders.
//
// The grammar is $NAME, ${NAME} and $$ (a literal dollar). NAME matches
// [A-Za-z_][A-Za-z0-9_]*. Placeholders without a value render as the
// empty string; the names that were expected to have a value are
// reported through Policy.
package labeltmpl

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// ErrInvalidPlaceholder is returned by Parse for malformed placeholders.
var ErrInvalidPlaceholder = errors.New("invalid placeholder")

type segment struct {
	literal string
	name    string
}

// Template is a parsed label template. It is immutable and safe for
// concurrent use.
type Template struct {
	segments []segment
	names    []string
}

// Policy controls how missing placeholders are reported.
type Policy struct {
	// KnownGaps lists placeholders that are routinely absent from the
	// data and must not be reported.
	KnownGaps []string

	// OnSuspicious receives the missing placeholders outside KnownGaps,
	// sorted. It is not called when there are none.
	OnSuspicious func(names []string)
}

// Parse scans text for placeholders.
func Parse(text string) (*Template, error) {
	t := &Template{}
	seen := make(map[string]bool)
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		if c != '$' {
			lit.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(text) {
			return nil, fmt.Errorf("%w at offset %d: trailing $", ErrInvalidPlaceholder, i)
		}

		var name string
		switch next := text[i+1]; {
		case next == '$':
			lit.WriteByte('$')
			i += 2
			continue
		case next == '{':
			end := strings.IndexByte(text[i+2:], '}')
			if end < 0 {
				return nil, fmt.Errorf("%w at offset %d: unterminated ${", ErrInvalidPlaceholder, i)
			}
			name = text[i+2 : i+2+end]
			if !validName(name) {
				return nil, fmt.Errorf("%w at offset %d: bad name %q", ErrInvalidPlaceholder, i, name)
			}
			i += 2 + end + 1
		case isStart(next):
			j := i + 2
			for j < len(text) && isPart(text[j]) {
				j++
			}
			name = text[i+1 : j]
			i = j
		default:
			return nil, fmt.Errorf("%w at offset %d: unexpected %q after $", ErrInvalidPlaceholder, i, next)
		}

		flush()
		t.segments = append(t.segments, segment{name: name})
		if !seen[name] {
			seen[name] = true
			t.names = append(t.names, name)
		}
	}
	flush()
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) *Template {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Placeholders returns the distinct placeholder names in order of first
// appearance.
func (t *Template) Placeholders() []string {
	return slices.Clone(t.names)
}

// Missing returns the placeholders data has no value for, sorted.
func (t *Template) Missing(data map[string]string) []string {
	var missing []string
	for _, name := range t.names {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Render substitutes data into the template. Missing placeholders render
// empty.
func (t *Template) Render(data map[string]string, p Policy) string {
	if p.OnSuspicious != nil {
		var suspicious []string
		for _, name := range t.Missing(data) {
			if !slices.Contains(p.KnownGaps, name) {
				suspicious = append(suspicious, name)
			}
		}
		if len(suspicious) > 0 {
			p.OnSuspicious(suspicious)
		}
	}

	var b strings.Builder
	for _, s := range t.segments {
		if s.name == "" {
			b.WriteString(s.literal)
			continue
		}
		b.WriteString(data[s.name])
	}
	return b.String()
}

func validName(name string) bool {
	if name == "" || !isStart(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isPart(name[i]) {
			return false
		}
	}
	return true
}

func isStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isPart(c byte) bool {
	return isStart(c) || (c >= '0' && c <= '9')
}
