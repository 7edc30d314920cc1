package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus is a bet's outcome relative to its line
type BetStatus string

const (
	BetStatusPending BetStatus = "PENDING"
	BetStatusWon     BetStatus = "WON"
	BetStatusLost    BetStatus = "LOST"
)

// Bet is a stake on one side of a daily line. Bets are never updated.
type Bet struct {
	ID        string          `db:"id"`
	Username  string          `db:"username"`
	Choice    Side            `db:"choice"`
	Amount    decimal.Decimal `db:"amount"`
	LineDate  string          `db:"line_date"`
	CreatedAt time.Time       `db:"created_at"`
}

// StatusAgainst returns the bet outcome for line
func (b *Bet) StatusAgainst(line *DailyLine) BetStatus {
	if line == nil || line.WinningSide == nil {
		return BetStatusPending
	}
	if b.Choice == *line.WinningSide {
		return BetStatusWon
	}
	return BetStatusLost
}

// BetVolume aggregates the bets on one line
type BetVolume struct {
	TotalBets   int             `json:"total_bets"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
