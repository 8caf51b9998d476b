package handler

import (
	"starmf-gateway/internal/adapter/http/middleware"
	"starmf-gateway/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	OrderSvc       ports.OrderService
	ClientSvc      ports.ClientService
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// Exchange session management is privileged: the passkey opens a
	// member-wide session, not a per-user one.
	auth.POST("/exchange-session", jwtAuth, authHandler.ExchangeSession)

	orderHandler := NewOrderHandler(deps.OrderSvc)
	orders := v1.Group("/orders", jwtAuth)
	{
		orders.POST("", orderHandler.PlaceOrder)
		orders.POST("/sip", orderHandler.PlaceSIPOrder)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:ref_no", orderHandler.GetOrder)
		orders.POST("/:ref_no/cancel", orderHandler.CancelOrder)
	}

	clientHandler := NewClientHandler(deps.ClientSvc)
	clients := v1.Group("/clients", jwtAuth)
	{
		clients.POST("", clientHandler.RegisterClient)
		clients.PUT("/:code", clientHandler.ModifyClient)
		clients.GET("/:code", clientHandler.GetClient)
	}

	return r
}
