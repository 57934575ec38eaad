// Package bidi prepares right-to-left text for placement into documents that
// expect visually ordered, pre-shaped strings.
package bidi

import (
	"fmt"

	"github.com/johnquangdev/meeting-minutes/pkg/locale"
)

// Shape coerces v to a string, reshapes Arabic-script letters to their
// contextual forms and reorders the result into visual order using the
// Unicode bidirectional algorithm. A nil value yields "".
func Shape(v any) string {
	s := stringify(v)
	if s == "" {
		return ""
	}
	return Reorder(Reshape(s))
}

// Reorder returns s in visual (left-to-right display) order. The paragraph
// direction follows the first strong character and defaults to right-to-left
// when there is none. Explicit embeddings and isolates are not honoured.
func Reorder(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	levels := resolveLevels(runes)
	return string(reorderLine(runes, levels))
}

// Shaper applies shaping only when the bound locale is right-to-left
type Shaper struct {
	loc locale.Locale
}

// NewShaper creates a Shaper for loc
func NewShaper(loc locale.Locale) Shaper {
	return Shaper{loc: loc}
}

// Locale returns the bound locale
func (s Shaper) Locale() locale.Locale {
	return s.loc
}

// Text shapes v for right-to-left locales and only stringifies it otherwise
func (s Shaper) Text(v any) string {
	if !s.loc.IsRTL() {
		return stringify(v)
	}
	return Shape(v)
}

// Digits maps ASCII digits in v to the locale's native digits
func (s Shaper) Digits(v any) string {
	return s.loc.LocalDigits(stringify(v))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
