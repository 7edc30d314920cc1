package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DepositTxid records a consumed on-chain transaction id
type DepositTxid struct {
	Txid      string          `db:"txid"`
	Username  string          `db:"username"`
	Amount    decimal.Decimal `db:"amount"`
	Confirmed bool            `db:"confirmed"`
	CreatedAt time.Time       `db:"created_at"`
}

// SenderRecord registers the address a user will deposit from
type SenderRecord struct {
	Username      string    `db:"username"`
	SenderAddress string    `db:"sender_address"`
	SubmittedAt   time.Time `db:"submitted_at"`
}

// ChainTransaction is what the blockchain lookup reports for a transaction id
type ChainTransaction struct {
	Hash        string
	From        string
	To          string
	Value       decimal.Decimal // in ETH
	BlockNumber string
	BlockTime   time.Time
}

// SentTo compares the destination case-insensitively
func (t *ChainTransaction) SentTo(address string) bool {
	return strings.EqualFold(t.To, address)
}

// SentFrom compares the source case-insensitively
func (t *ChainTransaction) SentFrom(address string) bool {
	return strings.EqualFold(t.From, address)
}
