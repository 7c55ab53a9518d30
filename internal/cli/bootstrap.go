package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/cache"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/config"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/dataset"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/repository/csvfile"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/repository/postgres"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/service"
)

// deps is the wired object graph shared by every command
type deps struct {
	repo         service.ForecastRepository
	cache        service.Cache
	data         *dataset.Dataset
	forecastSvc  *service.ForecastService
	analyticsSvc *service.AnalyticsService

	closers []func()
}

// Close releases connections in reverse order of acquisition
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// bootstrap connects the optional backends, loads the dataset and builds the
// services. PostgreSQL and Redis are optional; without them the forecast log
// lives in memory and analytics are computed on every request.
func bootstrap(ctx context.Context, cfg config.Config) (*deps, error) {
	d := &deps{}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Database connection
	var pgRepo *postgres.PostgresRepository
	if cfg.DatabaseURL != "" {
		pool, err := connectPostgres(connectCtx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
		} else {
			d.closers = append(d.closers, pool.Close)
			pgRepo = postgres.NewPostgresRepository(pool)
			if err := pgRepo.Migrate(connectCtx); err != nil {
				d.Close()
				return nil, err
			}
			log.Println("Connected to PostgreSQL")
		}
	}

	if pgRepo != nil {
		d.repo = pgRepo
	} else {
		log.Println("Keeping forecast history in memory")
		d.repo = postgres.NewMemoryRepository()
	}

	// Analytics cache
	var analyticsCache service.Cache = cache.Nop{}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(connectCtx, cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Could not connect to Redis: %v", err)
		} else {
			d.closers = append(d.closers, func() { client.Close() })
			analyticsCache = cache.NewRedisCache(client)
			log.Println("Connected to Redis")
		}
	}

	// Dataset
	var src domain.OrderSource
	switch cfg.DatasetSource {
	case config.SourcePostgres:
		if pgRepo == nil {
			d.Close()
			return nil, fmt.Errorf("cli: dataset source %q needs a reachable DATABASE_URL", cfg.DatasetSource)
		}
		src = pgRepo
	default:
		src = csvfile.NewSource(cfg.OrdersCSV, cfg.ProductsCSV)
	}

	data, err := dataset.Load(ctx, src)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.data = data

	// Services
	d.forecastSvc = service.NewForecastService(data, d.repo, service.ForecastOptions{
		StoreModel:  cfg.StoreModel,
		GroupModel:  cfg.GroupModel,
		TopProducts: cfg.TopProducts,
	})
	d.cache = analyticsCache
	d.analyticsSvc = service.NewAnalyticsService(data, analyticsCache, cfg.AnalyticsCacheTTL)

	return d, nil
}

func connectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
