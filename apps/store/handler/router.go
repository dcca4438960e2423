package handler

import (
	"context"
	"net/http"
	"time"

	"go-grocery/apps/store/middleware"
	"go-grocery/pkg/jwt"
	"go-grocery/pkg/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterConfig is everything NewRouter wires together.
type RouterConfig struct {
	ServiceName string
	Catalog     *CatalogHandler
	Cart        *CartHandler
	Tokens      *jwt.Manager
	Users       middleware.UserLookup

	// Tracing adds the otelgin middleware.
	Tracing bool
	// RateLimitAddToCart puts the sentinel guard in front of POST add-to-cart;
	// the rule itself is loaded by middleware.InitSentinel.
	RateLimitAddToCart bool
	// Health backs GET /healthz; nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}))

	r.NoRoute(func(c *gin.Context) { response.Error(c, http.StatusNotFound, msgNotFound) })
	r.GET("/healthz", health(cfg.Health))

	// 公开接口
	r.GET("/categories/", cfg.Catalog.ListCategories)
	r.GET("/categories/:id/", cfg.Catalog.GetCategory)
	r.GET("/products/", cfg.Catalog.ListProducts)
	r.GET("/products/:id/", cfg.Catalog.GetProduct)

	// 需要登录
	authed := r.Group("/", middleware.AuthMiddleware(cfg.Tokens, cfg.Users))
	{
		add := []gin.HandlerFunc{cfg.Cart.Add}
		if cfg.RateLimitAddToCart {
			add = append([]gin.HandlerFunc{middleware.RateLimit(middleware.ResAddToCart)}, add...)
		}
		authed.POST("/products/:id/shopping_cart/", add...)
		authed.PATCH("/products/:id/shopping_cart/", cfg.Cart.SetQuantity)
		authed.DELETE("/products/:id/shopping_cart/", cfg.Cart.Remove)

		authed.GET("/shopping_cart/", cfg.Cart.View)
		authed.DELETE("/shopping_cart/", cfg.Cart.Clear)
	}
	return r
}

func health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				response.Error(c, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
