package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/shinmori2020/shop-portfolio-sub000/internal/cart/store"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/catalog/repository"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/checkout"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/events"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/httpapi"
	"github.com/shinmori2020/shop-portfolio-sub000/internal/storage"
)

type Config struct {
	HTTPPort       string
	DBPath         string
	MigrationsPath string
	CartDir        string
	RedisAddr      string
	KafkaBrokers   []string

	FreeShippingThreshold int64
	FlatShippingFee       int64
	TaxRate               float64

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		DBPath:                getEnv("CATALOG_DB_PATH", "storefront.db"),
		MigrationsPath:        getEnv("MIGRATIONS_PATH", "migrations"),
		CartDir:               getEnv("CART_DIR", "carts"),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		FreeShippingThreshold: getEnvInt64("FREE_SHIPPING_THRESHOLD", 5000),
		FlatShippingFee:       getEnvInt64("FLAT_SHIPPING_FEE", 500),
		TaxRate:               getEnvFloat("TAX_RATE", 0.1),
		RequestTimeout:        30 * time.Second,
		ShutdownTimeout:       10 * time.Second,
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func main() {
	cfg := loadConfig()

	repo, err := repository.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open catalog: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	carts := store.NewManager(cartStorageFactory(cfg))
	validator := checkout.NewValidator(checkout.NewBreakerGetter(repo))
	schedule := checkout.FeeSchedule{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
		TaxRate:               cfg.TaxRate,
	}

	var publisher httpapi.DraftPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	cartHandler := httpapi.NewCartHandler(carts, repo)
	productHandler := httpapi.NewProductHandler(repo, validator)
	checkoutHandler := httpapi.NewCheckoutHandler(carts, validator, publisher, schedule)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(httpapi.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.GetAllProducts)
			r.Get("/{product_id}", productHandler.GetProduct)
			r.Get("/{product_id}/stock", productHandler.CheckStock)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})
		r.Post("/checkout/validate", checkoutHandler.ValidateCart)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// cartStorageFactory picks the storage backend: Redis when configured,
// per-session JSON files otherwise.
func cartStorageFactory(cfg *Config) store.StorageFactory {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return func(sessionID string) store.CartStorage {
			return storage.NewCartStorage(storage.NewRedisBackend(client, sessionID))
		}
	}

	if err := os.MkdirAll(cfg.CartDir, 0o700); err != nil {
		log.Fatalf("failed to create cart dir: %v", err)
	}
	return func(sessionID string) store.CartStorage {
		return storage.NewCartStorage(storage.NewFileBackend(filepath.Join(cfg.CartDir, sessionID+".json")))
	}
}
