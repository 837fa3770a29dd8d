// Package classify combines the extractor outputs into a relevance
// verdict for one message.
package classify

import (
	"strings"
	"unicode/utf8"

	"dealwatch/internal/extract"
	"dealwatch/internal/model"
	"dealwatch/internal/rules"
)

// Config holds the target travel window and the decision policy knobs.
type Config struct {
	// TargetMonth and TargetYear define the travel window a deal's dates
	// must fall in. TargetYear is also the assumed year for dates written
	// without one.
	TargetMonth int
	TargetYear  int

	// MinTextLength rejects texts shorter than this many runes outright.
	MinTextLength int

	// AcceptNoDate accepts messages that mention the target month by name
	// or carry no dates at all. A missed notification costs more than a
	// spurious one, so this defaults to on in the application config.
	AcceptNoDate bool

	// RejectUnresolvedDeparture rejects messages whose departure clause
	// is present but yields no resolvable city token. Off by default:
	// ambiguous-but-explicit is treated like unspecified.
	RejectUnresolvedDeparture bool
}

// Engine is a stateless classifier over a compiled rule set.
type Engine struct {
	rules *rules.Set
	cfg   Config
}

// New creates an Engine. The rule set must outlive the engine.
func New(rs *rules.Set, cfg Config) *Engine {
	return &Engine{rules: rs, cfg: cfg}
}

// Classify runs the ordered decision ladder over the text. The cheap,
// absolute gates come first (length, destination, exclusions, departure);
// date logic is last and most permissive. Evidence carries everything
// computed up to the point the ladder stopped.
func (e *Engine) Classify(text string) model.Verdict {
	var ev model.Evidence

	if utf8.RuneCountInString(text) < e.cfg.MinTextLength {
		return reject(model.ReasonTooShort, ev)
	}

	ev.Destinations = extract.Destinations(text, e.rules)
	if len(ev.Destinations) == 0 {
		return reject(model.ReasonNoDestination, ev)
	}

	lower := strings.ToLower(text)
	if e.rules.HasExclusion(lower) {
		return reject(model.ReasonExcludedKeyword, ev)
	}

	ev.Departure = extract.Departure(text, e.rules)
	if ev.Departure.Explicit {
		if ev.Departure.Resolved && !ev.Departure.FromTarget {
			return reject(model.ReasonOtherDeparture, ev)
		}
		if !ev.Departure.Resolved && e.cfg.RejectUnresolvedDeparture {
			return reject(model.ReasonOtherDeparture, ev)
		}
	}

	ev.Dates = extract.Dates(text, e.rules, e.cfg.TargetYear)
	if p, ok := extract.Price(text, e.rules); ok {
		ev.Price = p
	}
	for _, d := range ev.Dates {
		if d.Month == e.cfg.TargetMonth {
			ev.TargetDates = append(ev.TargetDates, d)
		}
	}

	switch {
	case len(ev.TargetDates) > 0:
		return accept(model.ReasonExactTargetDate, ev)
	case e.cfg.AcceptNoDate && mentionsMonth(lower, e.rules, e.cfg.TargetMonth):
		return accept(model.ReasonTargetMonthMentioned, ev)
	case e.cfg.AcceptNoDate && len(ev.Dates) == 0:
		return accept(model.ReasonNoDatePresent, ev)
	case len(ev.Dates) > 0:
		return reject(model.ReasonWrongMonth, ev)
	default:
		return reject(model.ReasonNoDatePresent, ev)
	}
}

func mentionsMonth(lowerText string, rs *rules.Set, month int) bool {
	for _, m := range extract.Months(lowerText, rs) {
		if m == month {
			return true
		}
	}
	return false
}

func accept(r model.Reason, ev model.Evidence) model.Verdict {
	return model.Verdict{Match: true, Reason: r, Evidence: ev}
}

func reject(r model.Reason, ev model.Evidence) model.Verdict {
	return model.Verdict{Match: false, Reason: r, Evidence: ev}
}
