// Package locale resolves locale codes into the writing direction and digit
// system used when rendering user-facing documents.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Direction is a text writing direction
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// Default is the locale used when none or an unsupported one is requested
const Default = "en"

var rtlBases = map[string]bool{
	"fa": true,
	"ar": true,
	"he": true,
	"ur": true,
}

var nativeDigits = map[string]*strings.Replacer{
	"fa": strings.NewReplacer(
		"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
		"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
	),
	"ar": strings.NewReplacer(
		"0", "٠", "1", "١", "2", "٢", "3", "٣", "4", "٤",
		"5", "٥", "6", "٦", "7", "٧", "8", "٨", "9", "٩",
	),
}

// Locale is a resolved locale
type Locale struct {
	Code      string
	Direction Direction
}

// IsRTL reports whether the locale is written right-to-left
func (l Locale) IsRTL() bool {
	return l.Direction == RTL
}

// LocalDigits maps ASCII digits in s to the locale's native digit glyphs.
// Locales without native digits return s unchanged.
func (l Locale) LocalDigits(s string) string {
	if r, ok := nativeDigits[l.Code]; ok {
		return r.Replace(s)
	}
	return s
}

// Base returns the base language of a BCP 47 code ("fa-IR" -> "fa").
// Unparseable input yields an empty string.
func Base(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// Resolve returns the Locale for code if its base language is one of supported,
// otherwise the Locale for fallback.
func Resolve(code string, supported []string, fallback string) Locale {
	base := Base(code)
	for _, s := range supported {
		if base != "" && Base(s) == base {
			return New(base)
		}
	}
	if b := Base(fallback); b != "" {
		return New(b)
	}
	return New(Default)
}

// New builds a Locale from an already normalised base code
func New(code string) Locale {
	dir := LTR
	if rtlBases[code] {
		dir = RTL
	}
	return Locale{Code: code, Direction: dir}
}
