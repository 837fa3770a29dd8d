package extract

import (
	"strings"

	"dealwatch/internal/model"
	"dealwatch/internal/rules"
)

// Departure scans the text line by line for an explicit departure clause
// ("Вылет из ...", "Departure from ..."). Only the first qualifying line
// is consulted. A line qualifies when it carries both a departure keyword
// and a "from" keyword; the word "из"/"from" alone in running text never
// triggers the signal.
//
// Hashtag tokens after the clause take priority over plain words, and
// stop-listed tokens are skipped. A qualifying line whose every token is
// stop-listed yields Explicit=true, Resolved=false: the clause exists but
// the city is unresolved, which is deliberately kept distinct from both
// match and mismatch.
func Departure(text string, rs *rules.Set) model.DepartureSignal {
	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.ToLower(strings.TrimSpace(rawLine))
		if line == "" {
			continue
		}
		if !strings.Contains(line, "вылет") && !strings.Contains(line, "departure") {
			continue
		}
		if !strings.Contains(line, " из") && !strings.Contains(line, " from") &&
			!strings.HasPrefix(line, "из") && !strings.HasPrefix(line, "from") {
			continue
		}

		rest := line
		if m := rs.DepartureClause.FindStringSubmatch(line); m != nil {
			rest = m[1]
		}

		var candidates []string
		for _, m := range rs.HashtagToken.FindAllStringSubmatch(rest, -1) {
			candidates = append(candidates, m[1])
		}
		if len(candidates) == 0 {
			candidates = rs.WordToken.FindAllString(rest, -1)
		}

		var value string
		for _, c := range candidates {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "" || rs.IsStop(c) {
				continue
			}
			value = c
			break
		}

		if value == "" {
			return model.DepartureSignal{Explicit: true}
		}
		if rs.IsDepartureCity(value) || anyCityToken(rest, rs) {
			return model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: true, Value: value}
		}
		return model.DepartureSignal{Explicit: true, Resolved: true, FromTarget: false, Value: value}
	}
	return model.DepartureSignal{}
}

func anyCityToken(s string, rs *rules.Set) bool {
	for _, tok := range rules.Tokens(s) {
		if rs.IsDepartureCity(tok) {
			return true
		}
	}
	return false
}
