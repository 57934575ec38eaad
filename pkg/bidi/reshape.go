package bidi

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/unicode/runenames"
)

type joinKind uint8

const (
	joinNone  joinKind = iota // never connects
	joinRight                 // connects to the preceding letter only: isolated, final
	joinDual                  // isolated, final, initial, medial
)

type formIndex uint8

const (
	formIsolated formIndex = iota
	formFinal
	formInitial
	formMedial
)

var formSuffixes = [...]string{
	formIsolated: " ISOLATED FORM",
	formFinal:    " FINAL FORM",
	formInitial:  " INITIAL FORM",
	formMedial:   " MEDIAL FORM",
}

// joining holds the contextual presentation forms of a letter, indexed by
// formIndex. A zero entry means the letter has no such form.
type joining struct {
	forms [4]rune
	kind  joinKind
}

func (j joining) form(i formIndex) rune {
	if r := j.forms[i]; r != 0 {
		return r
	}
	return j.forms[formIsolated]
}

// presentation form blocks A and B
var presentationBlocks = [...][2]rune{
	{0xFB50, 0xFDFF},
	{0xFE70, 0xFEFF},
}

var (
	joiningForms = map[rune]joining{}
	// lam-alef ligatures keyed by the alef variant: isolated, final
	lamAlef = map[rune][2]rune{}
)

const lam = 'ل'

// The tables are read out of the Unicode character database: every
// presentation form is named "ARABIC LETTER <X> <FORM> FORM" and its
// compatibility mapping is the nominal letter.
func init() {
	for _, block := range presentationBlocks {
		for r := block[0]; r <= block[1]; r++ {
			name := runenames.Name(r)
			form, ok := presentationForm(name)
			if !ok {
				continue
			}
			base := []rune(norm.NFKC.String(string(r)))

			switch {
			case strings.HasPrefix(name, "ARABIC LETTER ") && len(base) == 1:
				j := joiningForms[base[0]]
				if j.forms[form] == 0 {
					j.forms[form] = r
				}
				joiningForms[base[0]] = j
			case strings.HasPrefix(name, "ARABIC LIGATURE LAM WITH ALEF") &&
				len(base) == 2 && base[0] == lam && form <= formFinal:
				lig := lamAlef[base[1]]
				if lig[form] == 0 {
					lig[form] = r
				}
				lamAlef[base[1]] = lig
			}
		}
	}

	for base, j := range joiningForms {
		switch {
		case j.forms[formInitial] != 0 || j.forms[formMedial] != 0:
			j.kind = joinDual
		case j.forms[formFinal] != 0:
			j.kind = joinRight
		default:
			j.kind = joinNone
		}
		joiningForms[base] = j
	}
}

func presentationForm(name string) (formIndex, bool) {
	for i, suffix := range formSuffixes {
		if strings.HasSuffix(name, suffix) {
			return formIndex(i), true
		}
	}
	return 0, false
}

// harakat and other marks that are transparent to joining
func isTransparent(r rune) bool {
	return (r >= 0x064B && r <= 0x065F) || r == 0x0670
}

// Reshape replaces Arabic-script letters with their contextual presentation
// forms so that text renders connected without a shaping engine. Logical order
// is preserved; visual reordering is a separate step.
func Reshape(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		letter, ok := joiningForms[r]
		if !ok || letter.kind == joinNone {
			if ok {
				r = letter.form(formIsolated)
			}
			b.WriteRune(r)
			continue
		}

		joinsPrev := prevJoins(runes, i)

		if r == lam {
			if j := nextLetter(runes, i); j >= 0 {
				if lig, ok := lamAlef[runes[j]]; ok && lig[formIsolated] != 0 {
					out := lig[formIsolated]
					if joinsPrev && lig[formFinal] != 0 {
						out = lig[formFinal]
					}
					b.WriteRune(out)
					// keep marks that sat between lam and alef
					for k := i + 1; k < j; k++ {
						b.WriteRune(runes[k])
					}
					i = j
					continue
				}
			}
		}

		joinsNext := false
		if letter.kind == joinDual {
			if j := nextLetter(runes, i); j >= 0 {
				next, ok := joiningForms[runes[j]]
				joinsNext = ok && next.kind != joinNone
			}
		}

		switch {
		case joinsPrev && joinsNext:
			b.WriteRune(letter.form(formMedial))
		case joinsPrev:
			b.WriteRune(letter.form(formFinal))
		case joinsNext:
			b.WriteRune(letter.form(formInitial))
		default:
			b.WriteRune(letter.form(formIsolated))
		}
	}
	return b.String()
}

// prevJoins reports whether the letter before i connects forward to it
func prevJoins(runes []rune, i int) bool {
	for k := i - 1; k >= 0; k-- {
		if isTransparent(runes[k]) {
			continue
		}
		f, ok := joiningForms[runes[k]]
		return ok && f.kind == joinDual
	}
	return false
}

// nextLetter returns the index of the next non-transparent rune after i, or -1
func nextLetter(runes []rune, i int) int {
	for k := i + 1; k < len(runes); k++ {
		if isTransparent(runes[k]) {
			continue
		}
		return k
	}
	return -1
}
