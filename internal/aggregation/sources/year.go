package sources

import (
	"regexp"
	"strconv"
	"time"
)

var isoDatePrefix = regexp.MustCompile(`^(\d{4})-\d{2}-\d{2}`)
var leadingYear = regexp.MustCompile(`^\s*(\d{4})`)

// YearFromISODate reads YYYY from a YYYY-MM-DD prefix.
func YearFromISODate(s string) *int {
	m := isoDatePrefix.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return atoiPtr(m[1])
}

// YearFromDate reads the leading four digits of a date string ("2020", "2020-05-01", "2020 Q3").
func YearFromDate(s string) *int {
	m := leadingYear.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return atoiPtr(m[1])
}

// YearFromTimestamps returns the UTC year of the first positive unix timestamp.
func YearFromTimestamps(ts ...int64) *int {
	for _, t := range ts {
		if t > 0 {
			y := time.Unix(t, 0).UTC().Year()
			return &y
		}
	}
	return nil
}

func atoiPtr(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}
