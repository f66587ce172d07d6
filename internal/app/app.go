package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/linemk/ecommerce-api/internal/cache"
	"github.com/linemk/ecommerce-api/internal/config"
	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/events"
	"github.com/linemk/ecommerce-api/internal/lib/tracing"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
)

type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	DB        *sql.DB
	Redis     *redis.Client // nil, если кеш не настроен
	Publisher events.Publisher
	Router    http.Handler

	shutdownTracing func(context.Context) error
}

// DSN собирает строку подключения к postgres
func DSN(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.SSLMode,
	)
}

// NewApp создаёт новый экземпляр App: подключения к БД, redis, kafka и трейсинг.
// Redis, kafka и OTLP необязательны, пустой адрес их отключает.
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	app := &App{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Publisher: events.NopPublisher{},
	}

	shutdown, err := tracing.Setup(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.shutdownTracing = shutdown

	var productCache service.ProductCache
	if cfg.Redis.Address != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			app.Close(ctx)
			return nil, err
		}
		app.Redis = rdb
		productCache = cache.NewJSONCache[models.Product](log, rdb, "product", cfg.Redis.ProductTTL)
		log.Info("product cache enabled", slog.String("address", cfg.Redis.Address))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		app.Publisher = events.NewKafkaPublisher(log, cfg.Kafka.Brokers, cfg.Kafka.TransactionTopic, cfg.Kafka.ProductTopic)
		log.Info("event publishing enabled", slog.Any("brokers", cfg.Kafka.Brokers))
	}

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(db)
	productRepo := storage.NewProductRepository(db)
	txRepo := storage.NewTransactionRepository(db)
	itemRepo := storage.NewTransactionItemRepository(db)

	services := Services{
		Auth:        service.NewAuthService(log, userRepo, cfg.TokenTTL(), cfg.JWT.Secret),
		Catalog:     service.NewCatalogService(log, productRepo, productCache, app.Publisher, cfg.Catalog.ImageBaseURL),
		Checkout:    service.NewCheckoutService(log, db, productRepo, txRepo, itemRepo, app.Publisher),
		Transaction: service.NewTransactionService(log, db, txRepo, itemRepo, app.Publisher),
	}
	app.Router = NewRouter(log, cfg.JWT.Secret, services)

	return app, nil
}

// Close освобождает все внешние ресурсы приложения
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.shutdownTracing != nil {
		errs = append(errs, a.shutdownTracing(ctx))
	}
	if a.Publisher != nil {
		errs = append(errs, a.Publisher.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	errs = append(errs, a.DB.Close())
	return errors.Join(errs...)
}
