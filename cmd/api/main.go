package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/cache"
	"github.com/georgemunganga/menu-backend/internal/config"
	"github.com/georgemunganga/menu-backend/internal/httpx"
	"github.com/georgemunganga/menu-backend/internal/migrate"
	"github.com/georgemunganga/menu-backend/internal/modules/auth"
	"github.com/georgemunganga/menu-backend/internal/modules/catalog"
	"github.com/georgemunganga/menu-backend/internal/modules/identity"
	"github.com/georgemunganga/menu-backend/internal/modules/order"
	"github.com/georgemunganga/menu-backend/internal/modules/partner"
	"github.com/georgemunganga/menu-backend/internal/modules/upload"
	"github.com/georgemunganga/menu-backend/internal/obs"
	"github.com/georgemunganga/menu-backend/migrations"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := obs.NewLogger("menu-api", cfg.Server.AppEnv, cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	// ── Database ─────────────────────────────────────────────
	db, err := sqlx.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database", zap.String("driver", cfg.Database.Driver))

	if cfg.Database.Migrate {
		applied, err := migrate.NewManager(db.DB, migrations.FS).Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", zap.Strings("names", applied))
		}
	}

	metrics := obs.NewMetrics()

	// ── Menu cache ───────────────────────────────────────────
	menuCache, closeCache, err := newCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()
	menuCache = cache.WithMetrics(menuCache, metrics.CacheRequests)

	// ── Object storage ───────────────────────────────────────
	store, closeStore, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── Router ───────────────────────────────────────────────
	limiter := httpx.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(obs.Middleware(logger, metrics))
	router.Use(limiter.Middleware)

	router.Handle("/metrics", metrics.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.Respond(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ── Identity & roles ─────────────────────────────────────
	identities := identity.NewService(identity.NewPostgresRepository(db), identity.Options{
		Secret:   []byte(cfg.Identity.Secret),
		Issuer:   cfg.Identity.Issuer,
		TokenTTL: cfg.Identity.TokenTTL,
	}, logger.Named("identity"))
	identity.NewHandler(identities).RegisterRoutes(router)

	resolver := auth.NewResolver(identities, auth.NewPostgresRoleStore(db), logger.Named("auth"))
	auth.NewHandler(resolver).RegisterRoutes(router)

	// ── Partners ─────────────────────────────────────────────
	partners := partner.NewService(partner.NewPostgresRepository(db), identities, logger.Named("partner"))
	if err := partners.EnsureAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	partner.NewHandler(partners, resolver).RegisterRoutes(router)

	// ── Catalog ──────────────────────────────────────────────
	menu := catalog.NewService(catalog.NewPostgresRepository(db), menuCache, logger.Named("catalog"))
	catalog.NewHandler(menu, resolver).RegisterRoutes(router)

	// ── Uploads ──────────────────────────────────────────────
	uploads := upload.NewService(store, upload.Options{
		MaxBytes: cfg.Upload.MaxBytes,
		CacheTTL: cfg.Upload.CacheTTL,
		Outcomes: metrics.UploadsTotal,
	}, logger.Named("upload"))
	upload.NewHandler(uploads, resolver, cfg.Upload.MaxBytes).RegisterRoutes(router)
	if cfg.Storage.Driver == "local" {
		router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(cfg.Storage.LocalDir))))
	}

	// ── Orders ───────────────────────────────────────────────
	orders := order.NewService(partners, menu, order.Options{
		CountryCode: cfg.Dispatch.CountryCode,
		TaxRate:     cfg.Dispatch.TaxRate,
		Links:       metrics.OrderLinksTotal,
	}, logger.Named("order"))
	order.NewHandler(orders).RegisterRoutes(router)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("menu API server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (cache.Cache, func(), error) {
	switch cfg.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return cache.NewRedis(client, cfg.TTL, logger.Named("cache")), func() { client.Close() }, nil
	case "none":
		return cache.Nop{}, func() {}, nil
	default:
		return cache.NewMemory(cfg.Size, cfg.TTL), func() {}, nil
	}
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig) (upload.ObjectStore, func(), error) {
	if cfg.Driver == "local" {
		return upload.NewLocalStore(cfg.LocalDir, cfg.LocalBaseURL), func() {}, nil
	}
	store, err := upload.NewGCSStore(ctx, cfg.Bucket, cfg.ServiceAccountJSON)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { store.Close() }, nil
}
