package api

import (
	"net/http"
	"time"

	"dailybet/domain/apperrors"

	"github.com/gin-gonic/gin"
)

func (s *Server) requestWithdrawal(c *gin.Context) {
	var req WithdrawRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	withdrawal, balance, err := s.deps.Wallet.RequestWithdrawal(c.Request.Context(), claims.Username, req.WalletAddress, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"withdrawal": newWithdrawalResponse(withdrawal),
		"balance":    balance,
	})
}

func (s *Server) cancelWithdrawal(c *gin.Context) {
	var req WithdrawalIDRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	withdrawal, err := s.deps.Wallet.CancelWithdrawal(c.Request.Context(), req.ID, claims.Username, claims.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalResponse(withdrawal))
}

func (s *Server) approveWithdrawal(c *gin.Context) {
	var req WithdrawalIDRequest
	if !bindJSON(c, &req) {
		return
	}

	withdrawal, err := s.deps.Wallet.ApproveWithdrawal(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalResponse(withdrawal))
}

func (s *Server) rejectWithdrawal(c *gin.Context) {
	var req WithdrawalIDRequest
	if !bindJSON(c, &req) {
		return
	}

	withdrawal, err := s.deps.Wallet.RejectWithdrawal(c.Request.Context(), req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalResponse(withdrawal))
}

func (s *Server) listWithdrawals(c *gin.Context) {
	withdrawals, err := s.deps.Wallet.ListWithdrawals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalList(withdrawals))
}

func (s *Server) listUserWithdrawals(c *gin.Context) {
	username := c.Param("username")
	if !s.authorizeOwner(c, username) {
		return
	}

	withdrawals, err := s.deps.Wallet.ListUserWithdrawals(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWithdrawalList(withdrawals))
}

func (s *Server) getDepositAddress(c *gin.Context) {
	address, err := s.deps.Wallet.DepositAddress()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": address})
}

func (s *Server) registerSender(c *gin.Context) {
	var req RegisterSenderRequest
	if !bindJSON(c, &req) {
		return
	}

	submittedAt, err := time.Parse(time.RFC3339, req.SubmittedAt)
	if err != nil {
		respondError(c, apperrors.Validation("submittedAt must be RFC3339"))
		return
	}

	claims := currentClaims(c)
	if err := s.deps.Wallet.RegisterSender(c.Request.Context(), claims.Username, req.SenderAddress, submittedAt); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "sender registered"})
}

func (s *Server) verifyDeposit(c *gin.Context) {
	var req VerifyDepositRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	deposit, balance, err := s.deps.Wallet.VerifyDeposit(c.Request.Context(), claims.Username, req.Txid, req.SenderAddress)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DepositResponse{
		Txid:    deposit.Txid,
		Amount:  deposit.Amount,
		Balance: balance,
	})
}
