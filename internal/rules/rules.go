// Package rules holds the compiled matching rules the extractors and the
// classifier run against: destination and departure-city terms, month name
// tables, exclusion keywords and the date/price patterns.
//
// A Set is built once from a Config and is immutable afterwards, so it can
// be shared freely between goroutines and swapped per test.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Config lists the term sets a rule Set is compiled from.
// Zero-value slices fall back to the built-in defaults.
type Config struct {
	// Destinations are matched as whole words, case-insensitive.
	// City names and 3-letter airport codes, Russian and English spellings.
	Destinations []string

	// DepartureCities are the terms that count as the target departure
	// area. Cyrillic entries are treated as stems so that inflected forms
	// ("Москвы", "Внукова") still match.
	DepartureCities []string

	// Exclusions are substrings that disqualify a message outright
	// (non-flight travel modes).
	Exclusions []string

	// DepartureStops are tokens that can never be a departure city even
	// when they follow a "вылет из" clause (generic marketing nouns).
	DepartureStops []string
}

// DefaultConfig returns the built-in term lists: India/Goa destinations,
// Moscow-area departures, cruise exclusions.
func DefaultConfig() Config {
	return Config{
		Destinations: []string{
			"индия", "india", "гоа", "goa",
			"дели", "delhi", "del",
			"мумбаи", "mumbai", "bom",
			"кожикоде", "calicut", "ccj",
		},
		DepartureCities: []string{
			"москв", "moscow", "msk", "mow",
			"внуков", "vko",
			"шереметьев", "svo",
			"домодедов", "dme",
			"жуковск", "zia",
		},
		Exclusions: []string{
			"круиз", "cruise", "корабль", "ship", "теплоход",
		},
		DepartureStops: []string{
			"перелетотель", "перелётотель", "перелет", "перелёт",
			"отель", "тур", "туры", "сибирь",
			"вылет", "вылета", "departure",
		},
	}
}

type monthStem struct {
	stem  string
	month int
}

// Russian month names are matched as prefixes to tolerate inflection
// ("марта", "мартовский"). English names and abbreviations are matched
// as exact tokens, since short stems like "mar" are prefixes of too many
// unrelated words.
var ruMonthStems = []monthStem{
	{"январ", 1}, {"феврал", 2}, {"март", 3}, {"апрел", 4},
	{"май", 5}, {"мая", 5}, {"мае", 5},
	{"июн", 6}, {"июл", 7}, {"август", 8},
	{"сентябр", 9}, {"октябр", 10}, {"ноябр", 11}, {"декабр", 12},
}

var enMonths = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// Set is the compiled, immutable rule table.
type Set struct {
	destinations map[string]struct{}
	depExact     map[string]struct{}
	depStems     []string
	exclusions   []string
	stops        map[string]struct{}

	// NumericDate matches D.M with an optional 2-4 digit year.
	NumericDate *regexp.Regexp
	// DayMonthName and MonthNameDay match "5 марта" / "march 5" shapes;
	// the word group still has to resolve through MonthNumber.
	DayMonthName *regexp.Regexp
	MonthNameDay *regexp.Regexp

	// PriceCurrency matches an amount followed by a currency marker
	// (руб/р./₽), with ./,/space thousands separators. PriceLatin catches
	// the "60500P" shape common in deal channels (Latin P for rubles).
	PriceCurrency *regexp.Regexp
	PriceLatin    *regexp.Regexp

	// DepartureClause extracts the remainder of a "вылет из ..." line.
	DepartureClause *regexp.Regexp
	HashtagToken    *regexp.Regexp
	WordToken       *regexp.Regexp
}

// New compiles a rule Set from cfg. Empty term lists take the defaults.
func New(cfg Config) (*Set, error) {
	def := DefaultConfig()
	if len(cfg.Destinations) == 0 {
		cfg.Destinations = def.Destinations
	}
	if len(cfg.DepartureCities) == 0 {
		cfg.DepartureCities = def.DepartureCities
	}
	if len(cfg.Exclusions) == 0 {
		cfg.Exclusions = def.Exclusions
	}
	if len(cfg.DepartureStops) == 0 {
		cfg.DepartureStops = def.DepartureStops
	}

	s := &Set{
		destinations: make(map[string]struct{}, len(cfg.Destinations)),
		depExact:     make(map[string]struct{}),
		stops:        make(map[string]struct{}, len(cfg.DepartureStops)),
	}
	for _, d := range cfg.Destinations {
		s.destinations[strings.ToLower(d)] = struct{}{}
	}
	for _, c := range cfg.DepartureCities {
		c = strings.ToLower(c)
		if isCyrillic(c) {
			s.depStems = append(s.depStems, c)
		} else {
			s.depExact[c] = struct{}{}
		}
	}
	for _, e := range cfg.Exclusions {
		s.exclusions = append(s.exclusions, strings.ToLower(e))
	}
	for _, w := range cfg.DepartureStops {
		s.stops[strings.ToLower(w)] = struct{}{}
	}

	patterns := []struct {
		dst  **regexp.Regexp
		expr string
	}{
		{&s.NumericDate, `\b(\d{1,2})[./](\d{1,2})(?:[./](\d{2,4}))?\b`},
		{&s.DayMonthName, `(\d{1,2})\s+(\p{L}+)`},
		{&s.MonthNameDay, `(\p{L}+)\s+(\d{1,2})\b`},
		{&s.PriceCurrency, `(?i)(\d{1,3}(?:[ .,]\d{3})+|\d+)(?:[.,]\d{2})?\s?(?:руб\p{L}*|₽|р\.|р(?:[^\p{L}\d]|$))`},
		{&s.PriceLatin, `(\d{4,6})\s?[pP]\b`},
		{&s.DepartureClause, `(?i)(?:вылет\p{L}*|departure)\s*(?:из|from)\s*[:\-]?\s*(.*)$`},
		{&s.HashtagToken, `#([\p{L}][\p{L}\d_\-]{2,})`},
		{&s.WordToken, `[\p{L}][\p{L}\-]{2,}`},
	}
	for _, p := range patterns {
		re, err := regexp.Compile(p.expr)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p.expr, err)
		}
		*p.dst = re
	}
	return s, nil
}

// IsDestination reports whether a lowercase token is a destination term.
func (s *Set) IsDestination(token string) bool {
	_, ok := s.destinations[token]
	return ok
}

// IsDepartureCity reports whether a lowercase token names the target
// departure area. Cyrillic terms match as stems of the token.
func (s *Set) IsDepartureCity(token string) bool {
	if _, ok := s.depExact[token]; ok {
		return true
	}
	for _, stem := range s.depStems {
		if strings.HasPrefix(token, stem) {
			return true
		}
	}
	return false
}

// IsStop reports whether a lowercase token is on the departure stop-list.
func (s *Set) IsStop(token string) bool {
	_, ok := s.stops[token]
	return ok
}

// HasExclusion reports whether the lowercased text contains any exclusion
// keyword as a substring.
func (s *Set) HasExclusion(lowerText string) bool {
	for _, e := range s.exclusions {
		if strings.Contains(lowerText, e) {
			return true
		}
	}
	return false
}

// MonthNumber resolves a lowercase word to a month number, or false when
// the word is not a month name in either rule language.
func (s *Set) MonthNumber(token string) (int, bool) {
	if m, ok := enMonths[token]; ok {
		return m, true
	}
	for _, ms := range ruMonthStems {
		if strings.HasPrefix(token, ms.stem) {
			return ms.month, true
		}
	}
	return 0, false
}

// Tokens splits text into lowercased maximal runs of letters and digits.
// Go's regexp \b is ASCII-only, so word-bounded matching of Cyrillic terms
// is done on tokens rather than with boundary assertions.
func Tokens(text string) []string {
	var out []string
	var b strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

func isCyrillic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return true
		}
	}
	return false
}
