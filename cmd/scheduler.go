package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rogerio-auto/campaign-gateway/internal/config"
	"github.com/Rogerio-auto/campaign-gateway/internal/db"
	"github.com/Rogerio-auto/campaign-gateway/internal/delivery"
	"github.com/Rogerio-auto/campaign-gateway/internal/events"
	"github.com/Rogerio-auto/campaign-gateway/internal/health"
	"github.com/Rogerio-auto/campaign-gateway/internal/kafka"
	"github.com/Rogerio-auto/campaign-gateway/internal/lifecycle"
	"github.com/Rogerio-auto/campaign-gateway/internal/logger"
	"github.com/Rogerio-auto/campaign-gateway/internal/repository"
	"github.com/Rogerio-auto/campaign-gateway/internal/safety"
	"github.com/Rogerio-auto/campaign-gateway/internal/scheduler"
	"github.com/Rogerio-auto/campaign-gateway/internal/upstream"
	"github.com/spf13/cobra"
)

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run background sweeps (auto-resume, health refresh, degradation, outbox relay)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)

		mysqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer mysqlDB.Close()

		chDB, err := db.NewClickHouseConnection(db.ClickHouseOpts{
			DSN:             cfg.ClickHouse.DSN,
			MaxOpenConns:    cfg.ClickHouse.MaxOpenConns,
			MaxIdleConns:    cfg.ClickHouse.MaxIdleConns,
			ConnMaxLifetime: cfg.ClickHouse.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ClickHouse.ConnMaxIdleTime,
			PingTimeout:     cfg.ClickHouse.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("clickhouse connect: %w", err)
		}
		defer func() { _ = chDB.Close() }()

		producer := kafka.NewProducerFromConfig(kafka.Config{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.EventsTopic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		defer func() { _ = producer.Close() }()

		campaignsRepo := repository.NewCampaignsRepository(mysqlDB)
		inboxesRepo := repository.NewInboxesRepository(mysqlDB)
		templatesRepo := repository.NewTemplatesRepository(mysqlDB)
		optInsRepo := repository.NewOptInsRepository(mysqlDB)
		outboxRepo := repository.NewOutboxRepository(mysqlDB)
		chDeliveriesRepo := repository.NewCHDeliveriesRepository(chDB)

		graphClient := upstream.NewClient(
			cfg.Upstream.BaseURL,
			cfg.Upstream.TimeoutMs,
			cfg.Upstream.Breaker.FailThreshold,
			cfg.Upstream.Breaker.OpenForMs,
		)
		monitor := health.NewMonitor(inboxesRepo, graphClient,
			cfg.Health.RatingFreshness, cfg.Health.TierFreshness, logger.L())
		calculator := delivery.NewCalculator(chDeliveriesRepo)
		validator := safety.NewValidator(campaignsRepo, templatesRepo, optInsRepo,
			monitor, cfg.Safety.TierWarnPercent, logger.L())
		publisher := events.NewOutboxPublisher(outboxRepo, cfg.Kafka.EventsTopic)
		controller := lifecycle.NewController(mysqlDB, campaignsRepo, validator, publisher, logger.L())
		relay := events.NewRelay(outboxRepo, producer, cfg.Scheduler.RelayBatchSize, logger.L())

		sched := scheduler.New(cfg, campaignsRepo, inboxesRepo, monitor,
			calculator, controller, relay, logger.L())
		if err := sched.Setup(); err != nil {
			return fmt.Errorf("scheduler setup: %w", err)
		}
		sched.Start()
		log.Println("scheduler started")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("signal received: %s, stopping scheduler...", sig)

		sched.Stop()
		return nil
	},
}
