// Package jalali converts Gregorian calendar dates to the Jalali (Persian) calendar.
package jalali

import (
	"fmt"
	"time"
)

// cumulative day count at the start of each Gregorian month in a common year
var gregorianMonthOffset = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// Date is a Jalali calendar date
type Date struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as YYYY-MM-DD with a zero-padded 4 digit year
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// FromGregorian converts a Gregorian year/month/day to the Jalali calendar.
// The month must be in [1, 12]; any other value is reported as an error.
func FromGregorian(gy, gm, gd int) (Date, error) {
	if gm < 1 || gm > 12 {
		return Date{}, fmt.Errorf("invalid gregorian month %d", gm)
	}

	var jy int
	if gy > 1600 {
		jy = 979
		gy -= 1600
	} else {
		jy = 0
		gy -= 621
	}

	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}

	days := 365*gy + floorDiv(gy2+3, 4) - floorDiv(gy2+99, 100) + floorDiv(gy2+399, 400) -
		80 + gd + gregorianMonthOffset[gm-1]

	jy += 33 * floorDiv(days, 12053)
	days = floorMod(days, 12053)

	jy += 4 * floorDiv(days, 1461)
	days = floorMod(days, 1461)

	if days > 365 {
		jy += floorDiv(days-1, 365)
		days = floorMod(days-1, 365)
	}

	var jm, jd int
	if days < 186 {
		jm = 1 + days/31
		jd = 1 + days%31
	} else {
		jm = 7 + (days-186)/30
		jd = 1 + (days-186)%30
	}

	return Date{Year: jy, Month: jm, Day: jd}, nil
}

// FromTime converts the calendar date of t (in its own location) to Jalali
func FromTime(t time.Time) (Date, error) {
	return FromGregorian(t.Year(), int(t.Month()), t.Day())
}

// Format returns the Jalali date of t as YYYY-MM-DD.
// ok is false when no localized date is available.
func Format(t time.Time) (s string, ok bool) {
	if t.IsZero() {
		return "", false
	}
	d, err := FromTime(t)
	if err != nil {
		return "", false
	}
	return d.String(), true
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
