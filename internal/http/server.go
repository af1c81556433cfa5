package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Rogerio-auto/campaign-gateway/internal/config"
	"github.com/Rogerio-auto/campaign-gateway/internal/delivery"
	"github.com/Rogerio-auto/campaign-gateway/internal/events"
	"github.com/Rogerio-auto/campaign-gateway/internal/health"
	"github.com/Rogerio-auto/campaign-gateway/internal/http/middleware"
	"github.com/Rogerio-auto/campaign-gateway/internal/lifecycle"
	"github.com/Rogerio-auto/campaign-gateway/internal/logger"
	"github.com/Rogerio-auto/campaign-gateway/internal/metrics"
	"github.com/Rogerio-auto/campaign-gateway/internal/quota"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/Rogerio-auto/campaign-gateway/internal/safety"
	"github.com/Rogerio-auto/campaign-gateway/internal/upstream"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL)
	accountsRepo := repository.NewAccountsRepository(mysqlDB)
	campaignsRepo := repository.NewCampaignsRepository(mysqlDB)
	inboxesRepo := repository.NewInboxesRepository(mysqlDB)
	templatesRepo := repository.NewTemplatesRepository(mysqlDB)
	optInsRepo := repository.NewOptInsRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)

	// repos (ClickHouse)
	chDeliveriesRepo := repository.NewCHDeliveriesRepository(clickhouseDB)

	// services
	graphClient := upstream.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.TimeoutMs,
		cfg.Upstream.Breaker.FailThreshold,
		cfg.Upstream.Breaker.OpenForMs,
	)
	monitor := health.NewMonitor(inboxesRepo, graphClient,
		cfg.Health.RatingFreshness, cfg.Health.TierFreshness, logger.L())
	tracker := quota.NewTracker(campaignsRepo, cfg.Quota.DefaultDailyCap)
	calculator := delivery.NewCalculator(chDeliveriesRepo)
	validator := safety.NewValidator(campaignsRepo, templatesRepo, optInsRepo,
		monitor, cfg.Safety.TierWarnPercent, logger.L())
	publisher := events.NewOutboxPublisher(outboxRepo, cfg.Kafka.EventsTopic)
	controller := lifecycle.NewController(mysqlDB, campaignsRepo, validator, publisher, logger.L())

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	authMW := middleware.APIKeyMiddleware(accountsRepo)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:acct:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/campaigns/:id/validate", validateCampaignHandler(validator, campaignsRepo))
	v1.POST("/campaigns/:id/activate", activateCampaignHandler(controller, campaignsRepo))
	v1.POST("/campaigns/:id/pause", pauseCampaignHandler(controller, campaignsRepo))
	v1.POST("/campaigns/:id/resume", resumeCampaignHandler(controller, campaignsRepo))
	v1.GET("/campaigns/:id/quota", getQuotaHandler(tracker, campaignsRepo))
	v1.POST("/campaigns/:id/quota/increment", incrementQuotaHandler(tracker, campaignsRepo))
	v1.GET("/campaigns/:id/delivery-metrics", deliveryMetricsHandler(calculator, campaignsRepo))
	v1.GET("/inboxes/:id/health", inboxHealthHandler(monitor, inboxesRepo))
	v1.POST("/inboxes/:id/health/refresh", refreshInboxHealthHandler(monitor, inboxesRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
