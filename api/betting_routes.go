package api

import (
	"net/http"
	"strings"

	"dailybet/domain/entities"

	"github.com/gin-gonic/gin"
)

func (s *Server) getDailyLine(c *gin.Context) {
	line, err := s.deps.Betting.GetTodayLine(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLineResponse(line, s.now()))
}

func (s *Server) getBetVolume(c *gin.Context) {
	volume, err := s.deps.Betting.GetBetVolume(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, volume)
}

func (s *Server) setDailyLine(c *gin.Context) {
	var req SetLineRequest
	if !bindJSON(c, &req) {
		return
	}

	line, err := s.deps.Betting.SetDailyLine(c.Request.Context(), req.toParams())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLineResponse(line, s.now()))
}

func (s *Server) placeBet(c *gin.Context) {
	var req PlaceBetRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	choice := entities.Side(strings.ToUpper(strings.TrimSpace(req.Choice)))
	result, err := s.deps.Betting.PlaceBet(c.Request.Context(), claims.Username, choice, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPlaceBetResponse(result))
}

func (s *Server) listTodayBets(c *gin.Context) {
	views, err := s.deps.Betting.ListTodayBets(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	bets := make([]BetResponse, 0, len(views))
	for _, view := range views {
		bets = append(bets, newBetResponse(view.Bet, view.Status))
	}
	c.JSON(http.StatusOK, bets)
}

func (s *Server) resolveLine(c *gin.Context) {
	var req ResolveRequest
	if !bindJSON(c, &req) {
		return
	}

	side := entities.Side(strings.ToUpper(strings.TrimSpace(req.WinningSide)))
	summary, err := s.deps.Settlement.ResolveLine(c.Request.Context(), req.Date, side)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSettlementResponse(summary))
}
