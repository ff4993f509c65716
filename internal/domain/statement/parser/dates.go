package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// CenturyPivot splits two-digit years: YY >= CenturyPivot is 19YY, below is 20YY.
// 69 follows the POSIX strptime convention (1969-2068).
const CenturyPivot = 69

var shortDate = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{2})$`)

// ParseShortDate parses an MM/DD/YY token into a UTC calendar date.
func ParseShortDate(s string) (time.Time, error) {
	m := shortDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want MM/DD/YY", s)
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	yy, _ := strconv.Atoi(m[3])

	year := 2000 + yy
	if yy >= CenturyPivot {
		year = 1900 + yy
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 02/30 into March; reject instead.
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %q: no such calendar day", s)
	}

	return t, nil
}
