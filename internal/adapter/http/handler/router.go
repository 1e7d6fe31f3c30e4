package handler

import (
	"lnledger/config"
	"lnledger/internal/adapter/http/middleware"
	redisStore "lnledger/internal/adapter/storage/redis"
	"lnledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PaymentSvc     ports.PaymentService
	AdminSvc       ports.AdminService
	RateSvc        ports.RateService // nil = rates endpoint disabled
	TokenSvc       ports.TokenService
	Bus            ports.EventBus
	Node           ports.LightningNode
	UserRepo       ports.UserRepository
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Server         config.ServerConfig
	Admin          config.AdminConfig
	Limits         config.LimitsConfig
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

	// Health check (deep: PostgreSQL + Redis + node)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// --- LNURL-pay / Lightning Address (public) ---
	lnurlHandler := NewLnurlHandler(deps.UserRepo, deps.PaymentSvc, deps.Server, deps.Limits)
	r.GET("/.well-known/lnurlp/:username", rl("lnurl"), lnurlHandler.PayInfo)
	r.GET("/lnurlp/callback/:username", rl("lnurl"), lnurlHandler.PayCallback)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	account := v1.Group("/account")
	{
		account.POST("/register", rl("account_register"), authHandler.Register)
		account.POST("/login", rl("account_login"), authHandler.Login)
	}

	if deps.RateSvc != nil {
		rateHandler := NewRateHandler(deps.RateSvc)
		v1.GET("/rates", rl("rates"), rateHandler.GetRates)
	}

	// --- JWT-authenticated routes ---
	userAuth := middleware.UserAuth(deps.TokenSvc, deps.Logger)
	userHandler := NewUserHandler(deps.PaymentSvc, deps.Bus)
	user := v1.Group("/user", userAuth)
	{
		user.GET("/balance", rl("user"), userHandler.GetBalance)
		user.GET("/payments", rl("user"), userHandler.ListPayments)
		user.POST("/invoices", rl("user_invoices"), userHandler.CreateInvoice)
		user.POST("/pay", rl("user_pay"), userHandler.Pay)
		user.POST("/quote", rl("user"), userHandler.Quote)
		user.GET("/events", userHandler.Events)
	}

	// --- Admin routes (static bearer token) ---
	adminAuth := middleware.AdminAuth(deps.Admin.Token, deps.Logger)
	adminHandler := NewAdminHandler(deps.AdminSvc, deps.Node)
	admin := v1.Group("/admin", adminAuth)
	{
		admin.POST("/users/credit", adminHandler.CreditUser)
		admin.GET("/users", adminHandler.ListUsers)

		node := admin.Group("/node")
		{
			node.GET("/id", adminHandler.NodeID)
			node.GET("/balances", adminHandler.NodeBalances)
			node.POST("/address", adminHandler.NewAddress)
			node.POST("/onchain/send", adminHandler.SendOnchain)
			node.GET("/channels", adminHandler.ListChannels)
			node.POST("/channels/open", adminHandler.OpenChannel)
			node.POST("/channels/close", adminHandler.CloseChannel)
			node.GET("/peers", adminHandler.ListPeers)
			node.POST("/peers/connect", adminHandler.ConnectPeer)
			node.POST("/peers/disconnect", adminHandler.DisconnectPeer)
		}
	}

	return r
}
