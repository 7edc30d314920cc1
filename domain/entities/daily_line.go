package entities

import (
	"time"
)

// DateLayout is the format of line date keys
const DateLayout = "2006-01-02"

// DateKey returns the UTC calendar date of t as a line key
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Side is one of the two outcomes a bettor can choose
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// IsValid reports whether s is YES or NO
func (s Side) IsValid() bool {
	return s == SideYes || s == SideNo
}

// LineState is computed from the stored line and the current time, never persisted
type LineState string

const (
	LineStateOpen     LineState = "OPEN"
	LineStateClosed   LineState = "CLOSED"
	LineStateResolved LineState = "RESOLVED"
)

// DailyLine is the single proposition all bets of a day reference.
// Odds are American odds kept as the strings the admin entered.
type DailyLine struct {
	Date        string     `db:"line_date" json:"date"`
	Question    string     `db:"question" json:"question"`
	YesOdds     string     `db:"yes_odds" json:"yes_odds"`
	NoOdds      string     `db:"no_odds" json:"no_odds"`
	CutoffTime  time.Time  `db:"cutoff_time" json:"cutoff_time"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	WinningSide *Side      `db:"winning_side" json:"winning_side"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// StateAt returns the lifecycle state of the line at now
func (l *DailyLine) StateAt(now time.Time) LineState {
	if l.IsResolved() {
		return LineStateResolved
	}
	if now.Before(l.CutoffTime) {
		return LineStateOpen
	}
	return LineStateClosed
}

// IsResolved returns true once a winning side has been recorded
func (l *DailyLine) IsResolved() bool {
	return l.WinningSide != nil
}

// AcceptsBetsAt returns true if bets may be placed at now
func (l *DailyLine) AcceptsBetsAt(now time.Time) bool {
	return l.StateAt(now) == LineStateOpen
}

// OddsFor returns the American odds string for a side
func (l *DailyLine) OddsFor(side Side) string {
	if side == SideYes {
		return l.YesOdds
	}
	return l.NoOdds
}
