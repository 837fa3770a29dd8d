package extract

import (
	"regexp"
	"strconv"
	"strings"

	"dealwatch/internal/rules"
)

// Plausible airfare range in rubles. Values outside it are treated as
// noise (phone numbers, percentages, years) and dropped.
const (
	MinPrice = 1000
	MaxPrice = 500000
)

var groupedThousands = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)

// Price returns the lowest plausible fare mentioned in the text, scanning
// currency-marked amounts and the bare "60500P" shape. Deal posts usually
// lead with the cheapest of several fares, so the minimum is the useful
// signal. The second return is false when no amount parses.
func Price(text string, rs *rules.Set) (int, bool) {
	best := 0

	consider := func(raw string) {
		v, ok := parseAmount(raw)
		if !ok || v < MinPrice || v > MaxPrice {
			return
		}
		if best == 0 || v < best {
			best = v
		}
	}

	for _, m := range rs.PriceCurrency.FindAllStringSubmatch(text, -1) {
		consider(m[1])
	}
	for _, m := range rs.PriceLatin.FindAllStringSubmatch(text, -1) {
		consider(m[1])
	}

	return best, best != 0
}

// parseAmount strips thousands separators (./,/space) and parses the rest.
func parseAmount(raw string) (int, bool) {
	raw = strings.ReplaceAll(raw, " ", "")
	if groupedThousands.MatchString(raw) {
		raw = strings.NewReplacer(".", "", ",", "").Replace(raw)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
