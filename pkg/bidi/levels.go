package bidi

import xbidi "golang.org/x/text/unicode/bidi"

func classOf(r rune) xbidi.Class {
	p, _ := xbidi.LookupRune(r)
	return p.Class()
}

// X9: formatting characters that do not take part in resolution
func removedByX9(c xbidi.Class) bool {
	switch c {
	case xbidi.BN, xbidi.LRE, xbidi.RLE, xbidi.LRO, xbidi.RLO, xbidi.PDF:
		return true
	}
	return false
}

func isIsolate(c xbidi.Class) bool {
	switch c {
	case xbidi.LRI, xbidi.RLI, xbidi.FSI, xbidi.PDI:
		return true
	}
	return false
}

func isNeutral(c xbidi.Class) bool {
	switch c {
	case xbidi.B, xbidi.S, xbidi.WS, xbidi.ON:
		return true
	}
	return false
}

// paragraphLevel applies P2 and P3; text without a strong character is
// treated as right-to-left.
func paragraphLevel(classes []xbidi.Class) int {
	for _, c := range classes {
		switch c {
		case xbidi.L:
			return 0
		case xbidi.R, xbidi.AL:
			return 1
		}
	}
	return 1
}

func directionOf(lvl int) xbidi.Class {
	if lvl%2 == 0 {
		return xbidi.L
	}
	return xbidi.R
}

// resolveLevels returns the embedding level of every rune of a single
// paragraph after the weak, neutral and implicit rules and L1.
func resolveLevels(runes []rune) []int {
	n := len(runes)
	orig := make([]xbidi.Class, n)
	for i, r := range runes {
		orig[i] = classOf(r)
	}
	base := paragraphLevel(orig)
	sos := directionOf(base)

	idx := make([]int, 0, n)
	types := make([]xbidi.Class, 0, n)
	for i, c := range orig {
		if removedByX9(c) {
			continue
		}
		if isIsolate(c) {
			c = xbidi.ON
		}
		idx = append(idx, i)
		types = append(types, c)
	}

	resolveWeak(types, sos)
	resolveNeutral(types, sos)

	levels := make([]int, n)
	for k, i := range idx {
		levels[i] = implicitLevel(types[k], base)
	}
	for i, c := range orig {
		if !removedByX9(c) {
			continue
		}
		if i == 0 {
			levels[i] = base
		} else {
			levels[i] = levels[i-1]
		}
	}

	// L1: separators and trailing whitespace return to the paragraph level
	trailing := true
	for i := n - 1; i >= 0; i-- {
		c := orig[i]
		switch {
		case c == xbidi.S || c == xbidi.B:
			levels[i] = base
			trailing = true
		case trailing && (c == xbidi.WS || isIsolate(c) || removedByX9(c)):
			levels[i] = base
		default:
			trailing = false
		}
	}
	return levels
}

// resolveWeak applies W1 to W7 to a single isolating run sequence
func resolveWeak(t []xbidi.Class, sos xbidi.Class) {
	n := len(t)
	for i := range t {
		if t[i] == xbidi.NSM {
			if i == 0 {
				t[i] = sos
			} else {
				t[i] = t[i-1]
			}
		}
	}

	last := sos
	for i, c := range t {
		switch c {
		case xbidi.L, xbidi.R, xbidi.AL:
			last = c
		case xbidi.EN:
			if last == xbidi.AL {
				t[i] = xbidi.AN
			}
		}
	}

	for i, c := range t {
		if c == xbidi.AL {
			t[i] = xbidi.R
		}
	}

	for i := 1; i < n-1; i++ {
		prev, next := t[i-1], t[i+1]
		switch {
		case t[i] == xbidi.ES && prev == xbidi.EN && next == xbidi.EN:
			t[i] = xbidi.EN
		case t[i] == xbidi.CS && prev == next && (prev == xbidi.EN || prev == xbidi.AN):
			t[i] = prev
		}
	}

	for i := 0; i < n; {
		if t[i] != xbidi.ET {
			i++
			continue
		}
		j := i
		for j < n && t[j] == xbidi.ET {
			j++
		}
		if (i > 0 && t[i-1] == xbidi.EN) || (j < n && t[j] == xbidi.EN) {
			for k := i; k < j; k++ {
				t[k] = xbidi.EN
			}
		}
		i = j
	}

	for i, c := range t {
		switch c {
		case xbidi.ES, xbidi.ET, xbidi.CS:
			t[i] = xbidi.ON
		}
	}

	last = sos
	for i, c := range t {
		switch c {
		case xbidi.L, xbidi.R:
			last = c
		case xbidi.EN:
			if last == xbidi.L {
				t[i] = xbidi.L
			}
		}
	}
}

// resolveNeutral applies N1 and N2. Numbers count as right-to-left.
func resolveNeutral(t []xbidi.Class, sos xbidi.Class) {
	strong := func(c xbidi.Class) xbidi.Class {
		if c == xbidi.L {
			return xbidi.L
		}
		return xbidi.R
	}

	n := len(t)
	for i := 0; i < n; {
		if !isNeutral(t[i]) {
			i++
			continue
		}
		j := i
		for j < n && isNeutral(t[j]) {
			j++
		}
		before, after := sos, sos
		if i > 0 {
			before = strong(t[i-1])
		}
		if j < n {
			after = strong(t[j])
		}
		dir := sos
		if before == after {
			dir = before
		}
		for k := i; k < j; k++ {
			t[k] = dir
		}
		i = j
	}
}

// implicitLevel applies I1 and I2
func implicitLevel(c xbidi.Class, base int) int {
	if base%2 == 0 {
		switch c {
		case xbidi.R:
			return base + 1
		case xbidi.EN, xbidi.AN:
			return base + 2
		}
		return base
	}
	switch c {
	case xbidi.L, xbidi.EN, xbidi.AN:
		return base + 1
	}
	return base
}

// reorderLine mirrors brackets at odd levels (L4) and then, from the highest
// level down to the lowest odd one, reverses every run at that level or
// above (L2).
func reorderLine(runes []rune, levels []int) []rune {
	out := append([]rune(nil), runes...)
	lv := append([]int(nil), levels...)

	highest, lowestOdd := 0, -1
	for i, l := range lv {
		if l > highest {
			highest = l
		}
		if l%2 == 1 {
			if lowestOdd < 0 || l < lowestOdd {
				lowestOdd = l
			}
			out[i] = mirror(out[i])
		}
	}
	if lowestOdd < 0 {
		return out
	}

	for l := highest; l >= lowestOdd; l-- {
		for i := 0; i < len(out); {
			if lv[i] < l {
				i++
				continue
			}
			j := i
			for j < len(out) && lv[j] >= l {
				j++
			}
			for a, b := i, j-1; a < b; a, b = a+1, b-1 {
				out[a], out[b] = out[b], out[a]
				lv[a], lv[b] = lv[b], lv[a]
			}
			i = j
		}
	}
	return out
}

func mirror(r rune) rune {
	if p, _ := xbidi.LookupRune(r); p.IsBracket() {
		return []rune(xbidi.ReverseString(string(r)))[0]
	}
	return r
}
