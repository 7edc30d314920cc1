package api

import (
	"time"

	"dailybet/application"
	"dailybet/domain/entities"
	"dailybet/domain/interfaces"

	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token      string          `json:"token"`
	Username   string          `json:"username"`
	Balance    decimal.Decimal `json:"balance"`
	LastActive time.Time       `json:"last_active"`
	IsAdmin    bool            `json:"isAdmin"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type SetLineRequest struct {
	Question   string `json:"question" binding:"required"`
	YesOdds    string `json:"yes_odds" binding:"required"`
	NoOdds     string `json:"no_odds" binding:"required"`
	CutoffTime string `json:"cutoff_time" binding:"required"`
}

type ResolveRequest struct {
	Date        string `json:"date" binding:"required"`
	WinningSide string `json:"winning_side" binding:"required"`
}

type PlaceBetRequest struct {
	Choice string          `json:"choice" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type WithdrawRequest struct {
	WalletAddress string          `json:"wallet_address" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

type WithdrawalIDRequest struct {
	ID string `json:"id" binding:"required"`
}

type RegisterSenderRequest struct {
	SenderAddress string `json:"senderAddress" binding:"required"`
	SubmittedAt   string `json:"submittedAt" binding:"required"`
}

type VerifyDepositRequest struct {
	Txid          string `json:"txid" binding:"required"`
	SenderAddress string `json:"senderAddress" binding:"required"`
}

type LineResponse struct {
	Date        string             `json:"date"`
	Question    string             `json:"question"`
	YesOdds     string             `json:"yes_odds"`
	NoOdds      string             `json:"no_odds"`
	CutoffTime  time.Time          `json:"cutoff_time"`
	IsActive    bool               `json:"is_active"`
	WinningSide *entities.Side     `json:"winning_side"`
	State       entities.LineState `json:"state"`
}

func newLineResponse(line *entities.DailyLine, now time.Time) LineResponse {
	return LineResponse{
		Date:        line.Date,
		Question:    line.Question,
		YesOdds:     line.YesOdds,
		NoOdds:      line.NoOdds,
		CutoffTime:  line.CutoffTime,
		IsActive:    line.IsActive,
		WinningSide: line.WinningSide,
		State:       line.StateAt(now),
	}
}

type BetResponse struct {
	ID        string             `json:"id"`
	Username  string             `json:"username"`
	Choice    entities.Side      `json:"choice"`
	Amount    decimal.Decimal    `json:"amount"`
	Date      string             `json:"date"`
	Status    entities.BetStatus `json:"status,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func newBetResponse(bet *entities.Bet, status entities.BetStatus) BetResponse {
	return BetResponse{
		ID:        bet.ID,
		Username:  bet.Username,
		Choice:    bet.Choice,
		Amount:    bet.Amount,
		Date:      bet.LineDate,
		Status:    status,
		CreatedAt: bet.CreatedAt,
	}
}

type PlaceBetResponse struct {
	Bet     BetResponse         `json:"bet"`
	Balance decimal.Decimal     `json:"balance"`
	Volume  *entities.BetVolume `json:"volume"`
}

func newPlaceBetResponse(result *interfaces.PlaceBetResult) PlaceBetResponse {
	return PlaceBetResponse{
		Bet:     newBetResponse(result.Bet, entities.BetStatusPending),
		Balance: result.Balance,
		Volume:  result.Volume,
	}
}

type SettlementResponse struct {
	Date            string          `json:"date"`
	WinningSide     entities.Side   `json:"winning_side"`
	Multiplier      decimal.Decimal `json:"multiplier"`
	WinnersCredited int             `json:"winners_credited"`
	FailedCredits   int             `json:"failed_credits"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
}

func newSettlementResponse(summary *application.SettlementSummary) SettlementResponse {
	return SettlementResponse{
		Date:            summary.Line.Date,
		WinningSide:     summary.WinningSide,
		Multiplier:      summary.Multiplier,
		WinnersCredited: summary.WinnersCredited,
		FailedCredits:   summary.FailedCredits,
		TotalPaid:       summary.TotalPaid,
	}
}

type WithdrawalResponse struct {
	ID            string                    `json:"id"`
	Username      string                    `json:"username"`
	WalletAddress string                    `json:"wallet_address"`
	Amount        decimal.Decimal           `json:"amount"`
	Status        entities.WithdrawalStatus `json:"status"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func newWithdrawalResponse(w *entities.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:            w.ID,
		Username:      w.Username,
		WalletAddress: w.WalletAddress,
		Amount:        w.Amount,
		Status:        w.Status,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}
}

func newWithdrawalList(withdrawals []*entities.Withdrawal) []WithdrawalResponse {
	out := make([]WithdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		out = append(out, newWithdrawalResponse(w))
	}
	return out
}

type BalanceResponse struct {
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

type DepositResponse struct {
	Txid    string          `json:"txid"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (r SetLineRequest) toParams() interfaces.SetLineParams {
	return interfaces.SetLineParams{
		Question:   r.Question,
		YesOdds:    r.YesOdds,
		NoOdds:     r.NoOdds,
		CutoffTime: r.CutoffTime,
	}
}
