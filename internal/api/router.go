package api

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/restaurant-pos/config"
	_ "github.com/d60-Lab/restaurant-pos/docs"
	"github.com/d60-Lab/restaurant-pos/internal/api/handler"
	"github.com/d60-Lab/restaurant-pos/internal/api/middleware"
	"github.com/d60-Lab/restaurant-pos/internal/auth"
	"github.com/d60-Lab/restaurant-pos/internal/model"
	"github.com/d60-Lab/restaurant-pos/pkg/monitoring"
	"github.com/d60-Lab/restaurant-pos/pkg/response"
)

// NewRouter 组装中间件与路由
func NewRouter(cfg *config.Config, h *handler.Handler, tokens *auth.TokenManager) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog())
	if monitoring.Enabled() {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		response.Abort(c, http.StatusInternalServerError, "internal server error")
	}))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.CORS(cfg.Server.CORSOrigins), gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, gin.H{"status": "ok"})
	})
	if cfg.Server.Mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	v1 := r.Group("/api/v1", limiter.Middleware())

	// 点餐端：桌边扫码，无需登录
	v1.POST("/auth/login", h.Login)
	v1.GET("/menu", h.Menu)
	v1.GET("/tables", h.ListTables)
	v1.GET("/members/lookup", h.LookupMember)
	v1.POST("/orders", h.CreateOrder)
	v1.GET("/orders/lookup", h.LookupOrder)
	v1.GET("/orders/:id", h.GetOrder)

	authed := v1.Group("", middleware.Auth(tokens))
	authed.GET("/auth/me", h.Me)

	kitchen := authed.Group("/kitchen", middleware.RequireRole(model.RoleKitchen))
	{
		kitchen.GET("/queue", h.KitchenQueue)
		kitchen.GET("/events", h.KitchenRecent)
		kitchen.POST("/orders/:id/status", h.AdvanceOrderStatus)
	}

	// 收银员可以查订单、退单、办会员、充值；其余后台操作仅 admin
	cashier := authed.Group("/admin", middleware.RequireRole(model.RoleCashier))
	{
		cashier.GET("/orders", h.ListOrders)
		cashier.POST("/orders/:id/cancel", h.CancelOrder)
		cashier.GET("/members", h.ListMembers)
		cashier.POST("/members", h.RegisterMember)
		cashier.GET("/members/:id", h.GetMember)
		cashier.GET("/members/:id/orders", h.MemberOrders)
		cashier.POST("/members/:id/recharge", h.RechargeMember)
		cashier.GET("/members/:id/recharges", h.ListRecharges)
	}

	admin := authed.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	{
		admin.GET("/dashboard", h.Dashboard)

		admin.PUT("/members/:id", h.UpdateMember)
		admin.PUT("/members/:id/status", h.SetMemberActive)

		admin.GET("/dishes", h.ListDishes)
		admin.POST("/dishes", h.CreateDish)
		admin.PUT("/dishes/:id", h.UpdateDish)
		admin.PUT("/dishes/:id/status", h.SetDishActive)

		admin.GET("/categories", h.ListCategories)
		admin.POST("/categories", h.CreateCategory)
		admin.PUT("/categories/:id", h.UpdateCategory)

		admin.GET("/tables", h.ListAllTables)
		admin.POST("/tables", h.CreateTable)
		admin.PUT("/tables/:id/status", h.SetTableActive)

		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
	}
	return r
}
