package extract

import "dealwatch/internal/rules"

// Destinations returns the distinct destination terms mentioned in the
// text as standalone words, lowercased, in order of first appearance.
// Matching is token-based so a 3-letter airport code inside an unrelated
// word never counts.
func Destinations(text string, rs *rules.Set) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range rules.Tokens(text) {
		if !rs.IsDestination(tok) {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
