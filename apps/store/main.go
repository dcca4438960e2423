package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-grocery/apps/store/handler"
	"go-grocery/apps/store/middleware"
	"go-grocery/apps/store/model"
	"go-grocery/apps/store/repository"
	"go-grocery/apps/store/service"
	"go-grocery/pkg/cache"
	"go-grocery/pkg/config"
	"go-grocery/pkg/database"
	"go-grocery/pkg/discovery"
	"go-grocery/pkg/jwt"
	"go-grocery/pkg/logger"
	"go-grocery/pkg/mq"
	"go-grocery/pkg/search"
	"go-grocery/pkg/tracer"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	c, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(c.Service.Name, c.Log.Level, c.Log.Pretty)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. 初始化 Tracer
	tp, err := tracer.InitTracer(c.Service.Name, "dev", c.Tracing.Endpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init tracer")
	}
	if tp != nil {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 2. 数据库
	db, err := database.Open(c.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	if err := model.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	media := service.Media{BaseURL: c.Service.MediaURL}
	catalogRepo := repository.NewCatalogRepository(db)

	// 3. 可选组件: redis 缓存, ES 搜索, RabbitMQ 事件
	var catalogOpts []service.CatalogOption
	rdb, err := database.InitRedis(c.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	if rdb != nil {
		defer rdb.Close()
		catalogOpts = append(catalogOpts, service.WithCache(cache.NewRedisCache(rdb, c.Service.Name+":"), c.Redis.CacheTTL))
	}

	if c.Elastic.URL != "" {
		idx, err := search.NewProductIndex(c.Elastic.URL, c.Elastic.Index)
		if err != nil {
			// search falls back to SQL
			log.Error().Err(err).Str("url", c.Elastic.URL).Msg("elasticsearch unavailable")
		} else {
			catalogOpts = append(catalogOpts, service.WithSearcher(idx))
		}
	}

	var events service.EventPublisher
	if c.RabbitMQ.URL != "" {
		rabbit, err := mq.NewRabbit(c.RabbitMQ.URL, c.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		defer rabbit.Close()
		events = rabbit
	}

	catalogSvc := service.NewCatalogService(catalogRepo, media, catalogOpts...)
	cartSvc := service.NewCartService(db, repository.NewCartRepository(), catalogRepo, media, events)

	// 4. 限流
	rateLimited := c.RateLimit.AddToCartQPS > 0
	if rateLimited {
		if err := middleware.InitSentinel(map[string]float64{middleware.ResAddToCart: c.RateLimit.AddToCartQPS}); err != nil {
			log.Fatal().Err(err).Msg("failed to init sentinel")
		}
	}

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:        c.Service.Name,
		Catalog:            handler.NewCatalogHandler(catalogSvc, c.Service.PageSize),
		Cart:               handler.NewCartHandler(cartSvc),
		Tokens:             jwt.NewManager(c.Jwt.Secret, c.Jwt.Issuer, c.Jwt.TTL),
		Users:              repository.NewUserRepository(db),
		Tracing:            tp != nil,
		RateLimitAddToCart: rateLimited,
		Health: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", c.Service.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("store service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to serve")
		}
	}()

	// 5. 注册到 Consul
	var reg *discovery.Registration
	if c.Consul.Address != "" {
		reg, err = discovery.RegisterService(c.Service.Name, c.Service.Port, c.Consul.Address, "/healthz")
		if err != nil {
			log.Error().Err(err).Msg("failed to register service")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if err := reg.Deregister(); err != nil {
		log.Error().Err(err).Msg("failed to deregister service")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
