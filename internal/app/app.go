package app

import (
	"context"
	"fmt"
	"time"

	_ "address-api/docs" // registers the swagger spec
	"address-api/internal/config"
	"address-api/internal/handler"
	"address-api/internal/loader"
	"address-api/internal/metrics"
	"address-api/internal/middleware"
	"address-api/internal/repository"
	"address-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const connectTimeout = 10 * time.Second

// DBError represents a database-related error.
type DBError struct {
	Op  string
	Err error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("db error during %q: %v", e.Op, e.Err)
}

func (e *DBError) Unwrap() error { return e.Err }

// Store is the storage backend the application runs on.
type Store interface {
	service.AddressRepository
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// App holds the application-level dependencies.
type App struct {
	Store    Store
	Router   *gin.Engine
	Registry *prometheus.Registry
	logger   zerolog.Logger
}

// New opens the configured database, creates the schema, wires the address
// service and configures the HTTP engine with routes.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("driver", cfg.DBDriver).Msg("database connection established")

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, &DBError{Op: "migrate", Err: err}
	}
	logger.Info().Msg("database schema up to date")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := service.NewAddressService(store, loader.NewCSVSource(cfg.DataFile))

	return &App{
		Store:    store,
		Router:   NewRouter(svc, store, metrics.NewMetrics(reg), reg, cfg.RequestTimeout, logger),
		Registry: reg,
		logger:   logger,
	}, nil
}

// OpenStore connects to the backend selected by cfg.DBDriver.
func OpenStore(ctx context.Context, cfg config.Config) (Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := repository.NewDatabase(ctx, cfg.DBSource)
		if err != nil {
			return nil, &DBError{Op: "connect", Err: err}
		}
		return repository.NewRepository(pool), nil
	case config.DriverSQLite:
		repo, err := repository.NewSQLiteRepository(ctx, cfg.DBSource)
		if err != nil {
			return nil, &DBError{Op: "connect", Err: err}
		}
		return repo, nil
	default:
		return nil, &config.ConfigError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}
	}
}

// NewRouter builds the gin engine serving the address API.
func NewRouter(
	svc handler.AddressService,
	db handler.Pinger,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	requestTimeout time.Duration,
	logger zerolog.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(m))

	router.GET("/health", handler.Health(db))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h := handler.NewAddressHandler(svc, m)

	api := router.Group("/", middleware.Timeout(requestTimeout))
	{
		api.GET("/list", h.List)
		api.GET("/retrieve", h.Retrieve)
		api.POST("/create", h.Create)
		api.PUT("/update/:address_id", h.Update)
		api.DELETE("/delete/:address_id", h.Delete)
		api.DELETE("/delete_all", h.DeleteAll)
		api.POST("/load_data", h.LoadData)
	}

	return router
}

// Shutdown closes the database connection.
func (a *App) Shutdown() {
	if a.Store != nil {
		a.Store.Close()
		a.logger.Info().Msg("database connection closed")
	}
}
