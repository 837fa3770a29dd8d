// Package model defines the domain types used across the application.
package model

import "time"

// Message is a single post fetched from a monitored source.
type Message struct {
	SourceID string
	ID       int64
	Text     string
	SentAt   time.Time
}

// DateCandidate is one calendar date mentioned in a message.
// Day and Month are individually plausible (1-31 / 1-12); no further
// calendar validation is performed.
type DateCandidate struct {
	Day   int
	Month int
	Year  int
	Span  string
}

// DepartureSignal describes whether a message names its departure city.
//
// Explicit=false means no departure clause was found anywhere in the text.
// Explicit=true with Resolved=false means a clause was present but every
// candidate token was stop-listed. Only when Resolved=true does FromTarget
// carry meaning.
type DepartureSignal struct {
	Explicit   bool
	Resolved   bool
	FromTarget bool
	Value      string
}

// Reason explains a classification outcome.
type Reason string

// Classification reasons. The first three accept, the rest reject.
const (
	ReasonExactTargetDate      Reason = "exact_target_date"
	ReasonTargetMonthMentioned Reason = "target_month_mentioned"
	ReasonNoDatePresent        Reason = "no_date_present"
	ReasonWrongMonth           Reason = "wrong_month"
	ReasonOtherDeparture       Reason = "other_departure"
	ReasonExcludedKeyword      Reason = "excluded_keyword"
	ReasonTooShort             Reason = "too_short"
	ReasonNoDestination        Reason = "no_destination"
)

// Evidence carries the extracted signals a verdict was based on.
// Fields are populated as far as the decision ladder got before
// short-circuiting. Price is 0 when no price was found.
type Evidence struct {
	Destinations []string
	Dates        []DateCandidate
	TargetDates  []DateCandidate
	Price        int
	Departure    DepartureSignal
}

// Verdict is the immutable result of classifying one message.
type Verdict struct {
	Match    bool
	Reason   Reason
	Evidence Evidence
}

// SourceCursor tracks the highest message ID already fetched for a source.
type SourceCursor struct {
	SourceID    string
	LastSeenID  int64
	LastCheckAt time.Time
}
