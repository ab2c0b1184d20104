package handler

import (
	"github.com/dafibh/budget-ledger/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the API handlers mounted by RegisterRoutes
type Handlers struct {
	Auth      *AuthHandler
	Ledger    *LedgerHandler
	Report    *ReportHandler
	WebSocket *WebSocketHandler
}

// RouteConfig holds the route-level middleware
type RouteConfig struct {
	Prefix         string
	AnonKey        string
	AuthMiddleware *middleware.AuthMiddleware
	SignupLimiter  *middleware.RateLimiter
}

// RegisterRoutes sets up all API routes under /<prefix>
func RegisterRoutes(e *echo.Echo, cfg RouteConfig, h Handlers) {
	api := e.Group("/" + cfg.Prefix)

	// Signup (anonymous key, rate limited)
	signupMiddleware := []echo.MiddlewareFunc{middleware.RequireAnonKey(cfg.AnonKey)}
	if cfg.SignupLimiter != nil {
		signupMiddleware = append(signupMiddleware, middleware.RateLimitMiddleware(cfg.SignupLimiter))
	}
	api.POST("/signup", h.Auth.SignUp, signupMiddleware...)

	// Collection routes (protected)
	protected := api.Group("")
	protected.Use(cfg.AuthMiddleware.Authenticate())
	protected.GET("/categories", h.Ledger.GetCategories)
	protected.POST("/categories", h.Ledger.SaveCategories)
	protected.GET("/expenses", h.Ledger.GetExpenses)
	protected.POST("/expenses", h.Ledger.SaveExpenses)
	protected.GET("/summary", h.Ledger.GetSummary)

	// Report routes (protected)
	protected.GET("/reports/:month", h.Report.Download)
	protected.POST("/reports/:month/archive", h.Report.Archive)

	// WebSocket change feed (token in query string)
	if h.WebSocket != nil {
		api.GET("/ws", h.WebSocket.HandleWS)
	}
}
