package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/middleware"
)

// APIPrefix is the root of every business route
const APIPrefix = "/api"

// Handlers groups the HTTP handlers mounted by SetupRoutes
type Handlers struct {
	Auth         *handler.AuthHandler
	Balance      *handler.BalanceHandler
	Beneficiary  *handler.BeneficiaryHandler
	Transaction  *handler.TransactionHandler
	Health       *handler.HealthHandler
	Metrics      http.Handler // nil disables /metrics
	MetricsPath  string
	RequireToken gin.HandlerFunc
	Clock        coreport.TimeProvider
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	requireToken := h.RequireToken
	if requireToken == nil {
		requireToken = func(c *gin.Context) { c.Next() }
	}

	api := router.Group(APIPrefix)

	api.GET("/health", h.Health.Live)
	api.GET("/health/storage", h.Health.Storage)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/verify-token", h.Auth.VerifyToken)
		auth.GET("/profile/:user_id", requireToken, h.Auth.Profile)
		auth.POST("/change-password/:user_id", requireToken, h.Auth.ChangePassword)
		auth.POST("/logout/:user_id", requireToken, h.Auth.Logout)
	}

	balance := api.Group("/balance", requireToken)
	{
		balance.GET("/check/:user_id", h.Balance.Check)
		balance.GET("/summary/:user_id", h.Balance.Summary)
		balance.POST("/deposit/:user_id", h.Balance.Deposit)
		balance.POST("/withdraw/:user_id", h.Balance.Withdraw)
		balance.GET("/history/:user_id", h.Balance.History)
		balance.PUT("/daily-limit/:user_id", h.Balance.UpdateDailyLimit)
	}

	beneficiaries := api.Group("/beneficiaries", requireToken)
	{
		beneficiaries.POST("/add/:user_id", h.Beneficiary.Add)
		beneficiaries.GET("/list/:user_id", h.Beneficiary.List)
		beneficiaries.GET("/search/:user_id", h.Beneficiary.Search)
		beneficiaries.GET("/:user_id/:beneficiary_id", h.Beneficiary.Get)
		beneficiaries.PUT("/update/:user_id/:beneficiary_id", h.Beneficiary.Update)
		beneficiaries.DELETE("/remove/:user_id/:beneficiary_id", h.Beneficiary.Remove)
	}

	transactions := api.Group("/transactions", requireToken)
	{
		transactions.POST("/send/:user_id", h.Transaction.Send)
		transactions.GET("/history/:user_id", h.Transaction.History)
		transactions.GET("/recent/:user_id", h.Transaction.Recent)
		transactions.GET("/status/:user_id/:transaction_id", h.Transaction.Status)
		transactions.GET("/limits/:user_id", h.Transaction.Limits)
	}

	if h.Metrics != nil {
		path := h.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(h.Metrics))
	}

	router.NoRoute(middleware.NotFound(h.Clock))
}

// MiddlewareOptions configures the global middleware chain
type MiddlewareOptions struct {
	Clock       coreport.TimeProvider
	CORSOrigins []string
	Metrics     middleware.HTTPObserver // nil disables request metrics
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, opts MiddlewareOptions) {
	router.Use(middleware.RequestMeta())
	router.Use(middleware.ErrorHandler(opts.Clock, logger))
	router.Use(middleware.Logger(logger))
	if opts.Metrics != nil {
		router.Use(middleware.Metrics(opts.Metrics))
	}
	router.Use(middleware.CORS(opts.CORSOrigins))
}
