package api

import (
	"context"
	"net/http"
	"time"

	"dailybet/application"
	"dailybet/config"
	"dailybet/domain/apperrors"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const readyTimeout = 2 * time.Second

// SocketServer upgrades a request into a notification connection for username
type SocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, username string) error
}

// HealthChecker reports whether a backing store is reachable
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// RequestRecorder receives one observation per served request
type RequestRecorder func(method, route string, status int, duration time.Duration)

// Dependencies holds what the HTTP surface delegates to
type Dependencies struct {
	Accounts   application.AccountHandler
	Betting    application.BettingHandler
	Settlement application.SettlementHandler
	Wallet     application.WalletHandler
	Tokens     *TokenManager
	Sockets    SocketServer
	Health     HealthChecker
	Recorder   RequestRecorder
	Config     *config.Config
}

// Server exposes the betting operations over HTTP
type Server struct {
	deps         Dependencies
	loginLimiter *IPRateLimiter
	now          func() time.Time
}

func NewServer(deps Dependencies) *Server {
	return &Server{
		deps:         deps,
		loginLimiter: NewIPRateLimiter(deps.Config.LoginRateLimit, deps.Config.LoginRateWindow),
		now:          time.Now,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Cors(s.deps.Config.IsOriginAllowed))
	router.Use(RequestLogger(s.deps.Recorder))

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/ws", s.websocket)

	api := router.Group("/api")
	{
		api.POST("/login", s.loginLimiter.Middleware(), s.login)
		api.GET("/daily-line", s.getDailyLine)
		api.GET("/bet-volume", s.getBetVolume)
		api.GET("/deposit-address", s.getDepositAddress)

		authed := api.Group("", RequireAuth(s.deps.Tokens))
		authed.POST("/place-bet", s.placeBet)
		authed.GET("/user/balance/:username", s.getBalance)
		authed.GET("/withdrawals/:username", s.listUserWithdrawals)
		authed.POST("/withdraw", s.requestWithdrawal)
		authed.POST("/withdrawals/cancel", s.cancelWithdrawal)
		authed.POST("/register-sender", s.registerSender)
		authed.POST("/verify-deposit", s.verifyDeposit)

		admin := api.Group("", RequireAuth(s.deps.Tokens), RequireAdmin())
		admin.POST("/admin/set-line", s.setDailyLine)
		admin.GET("/admin/bets", s.listTodayBets)
		admin.POST("/resolve-bet", s.resolveLine)
		admin.GET("/admin/users", s.listUsers)
		admin.POST("/admin/change-password", s.changePassword)
		admin.GET("/admin/withdrawals", s.listWithdrawals)
		admin.POST("/admin/withdrawals/approve", s.approveWithdrawal)
		admin.POST("/admin/withdrawals/reject", s.rejectWithdrawal)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	if err := s.deps.Health.Healthy(ctx); err != nil {
		log.WithError(err).Warn("Readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) websocket(c *gin.Context) {
	claims, err := s.deps.Tokens.Verify(c.Query("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Serve writes its own response on a failed upgrade
	if err := s.deps.Sockets.Serve(c.Writer, c.Request, claims.Username); err != nil {
		log.WithFields(log.Fields{
			"username": claims.Username,
			"error":    err,
		}).Debug("Websocket closed")
	}
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := s.deps.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	user := result.User
	token, err := s.deps.Tokens.Issue(user.Username, user.IsAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:      token,
		Username:   user.Username,
		Balance:    user.Balance,
		LastActive: user.LastActive,
		IsAdmin:    user.IsAdmin,
	})
}

func (s *Server) changePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	claims := currentClaims(c)
	if err := s.deps.Accounts.ChangePassword(c.Request.Context(), claims.Username, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}

func (s *Server) getBalance(c *gin.Context) {
	username := c.Param("username")
	if !s.authorizeOwner(c, username) {
		return
	}

	balance, err := s.deps.Accounts.GetBalance(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{Username: username, Balance: balance})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.deps.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// authorizeOwner lets a caller act on their own username, and an admin on anyone's
func (s *Server) authorizeOwner(c *gin.Context, username string) bool {
	claims := currentClaims(c)
	if claims.Username != username && !claims.IsAdmin {
		respondError(c, apperrors.Forbidden("cannot access another user's account"))
		return false
	}
	return true
}
