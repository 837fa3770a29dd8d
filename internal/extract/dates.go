// Package extract turns raw message text into structured candidates:
// calendar dates, a price, destination mentions and a departure signal.
// All functions are pure; malformed fragments are dropped, never reported
// as errors, so a partially garbled message still yields whatever valid
// signals it carries.
package extract

import (
	"strconv"
	"strings"

	"dealwatch/internal/model"
	"dealwatch/internal/rules"
)

// Dates scans text for the three supported date shapes: numeric D.M with
// an optional year, "5 марта", and "march 5". Two-digit years normalize
// by adding 2000; dates without a year assume assumedYear. Candidates are
// deduplicated by the (day, month, year) triple.
func Dates(text string, rs *rules.Set, assumedYear int) []model.DateCandidate {
	var out []model.DateCandidate
	seen := make(map[[3]int]struct{})

	add := func(day, month, year int, span string) {
		if day < 1 || day > 31 || month < 1 || month > 12 {
			return
		}
		key := [3]int{day, month, year}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, model.DateCandidate{Day: day, Month: month, Year: year, Span: strings.TrimSpace(span)})
	}

	for _, m := range rs.NumericDate.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := assumedYear
		if m[3] != "" {
			y, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			if y < 100 {
				y += 2000
			}
			year = y
		}
		add(day, month, year, m[0])
	}

	lower := strings.ToLower(text)

	for _, m := range rs.DayMonthName.FindAllStringSubmatch(lower, -1) {
		month, ok := rs.MonthNumber(m[2])
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		add(day, month, assumedYear, m[0])
	}

	for _, m := range rs.MonthNameDay.FindAllStringSubmatch(lower, -1) {
		month, ok := rs.MonthNumber(m[1])
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(m[2])
		add(day, month, assumedYear, m[0])
	}

	return out
}

// Months returns the distinct month numbers mentioned by name anywhere in
// the text, independent of numeric dates.
func Months(text string, rs *rules.Set) []int {
	var out []int
	seen := make(map[int]struct{})
	for _, tok := range rules.Tokens(text) {
		m, ok := rs.MonthNumber(tok)
		if !ok {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
