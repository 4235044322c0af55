package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sopissedoff/my-restaurant-app-online/internal/cache"
	"github.com/sopissedoff/my-restaurant-app-online/internal/cart"
	cartrepo "github.com/sopissedoff/my-restaurant-app-online/internal/cart/repository"
	"github.com/sopissedoff/my-restaurant-app-online/internal/catalog"
	"github.com/sopissedoff/my-restaurant-app-online/internal/checkout"
	"github.com/sopissedoff/my-restaurant-app-online/internal/domain"
	h "github.com/sopissedoff/my-restaurant-app-online/internal/http"
	"github.com/sopissedoff/my-restaurant-app-online/internal/orders"
	"github.com/sopissedoff/my-restaurant-app-online/internal/publisher"
	"github.com/sopissedoff/my-restaurant-app-online/internal/rewards"
)

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	CatalogDBPath         string
	CatalogMigrationsPath string
	CatalogRefresh        time.Duration

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	OrdersDB orders.Credentials

	KafkaBrokers []string

	TaxRate         decimal.Decimal
	RewardThreshold int
	RewardsFeedTick time.Duration
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		CatalogDBPath:         getEnv("CATALOG_DB_PATH", "menu.db"),
		CatalogMigrationsPath: getEnv("CATALOG_MIGRATIONS_PATH", "internal/catalog/migrations"),
		CatalogRefresh:        30 * time.Second,

		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "restaurantdb"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		OrdersDB: orders.Credentials{
			Host:              getEnv("POSTGRES_HOST", "localhost"),
			Port:              getEnvInt("POSTGRES_PORT", 5432),
			User:              getEnv("POSTGRES_USER", "postgres"),
			Password:          getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:            getEnv("POSTGRES_DB", "ordersdb"),
			MigrationsDirPath: getEnv("ORDERS_MIGRATIONS_PATH", "internal/orders/migrations"),
		},

		TaxRate:         domain.DefaultTaxRate,
		RewardThreshold: getEnvInt("REWARD_THRESHOLD", domain.DefaultRewardThreshold),
		RewardsFeedTick: 3 * time.Second,
	}

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if rate := getEnv("TAX_RATE", ""); rate != "" {
		parsed, err := decimal.NewFromString(rate)
		if err != nil {
			log.Fatalf("invalid TAX_RATE %q: %v", rate, err)
		}
		cfg.TaxRate = parsed
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s %q: %v", key, value, err)
	}
	return parsed
}

func main() {
	cfg := loadConfig()

	ctx := context.Background()
	runCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	// Catalog (sqlite)
	catalogRepo, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer catalogRepo.Close()
	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Printf("Catalog ready at %s", cfg.CatalogDBPath)

	watcher := catalog.NewWatcher(catalogRepo, cfg.CatalogRefresh)
	go watcher.Run(runCtx)

	// Carts (mongo + redis)
	mongoDB, err := cartrepo.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(ctx)
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	if err := cartrepo.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create cart indexes: %v", err)
	}
	if err := rewards.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create rewards indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	cartService := cart.NewService(
		cartrepo.NewMongoRepository(mongoDB),
		cache.NewRedisCache(redisClient),
	)

	// Orders (postgres + outbox)
	ordersRepo, err := orders.NewRepository(&cfg.OrdersDB)
	if err != nil {
		log.Fatalf("Failed to connect to orders database: %v", err)
	}
	defer ordersRepo.Close()
	if err := ordersRepo.RunMigrations(&cfg.OrdersDB); err != nil {
		log.Fatalf("Failed to run orders migrations: %v", err)
	}
	log.Printf("Connected to postgres at %s:%d", cfg.OrdersDB.Host, cfg.OrdersDB.Port)

	checkoutService := checkout.NewService(cartService, ordersRepo, domain.NewPricer(cfg.TaxRate))

	// Rewards
	rewardsStore := rewards.NewMongoStore(mongoDB)
	rewardsService := rewards.NewService(rewardsStore, cfg.RewardThreshold)
	rewardsFeed := rewards.NewFeed(rewardsStore, cfg.RewardsFeedTick)
	go rewardsFeed.Run(runCtx)

	// Event pipeline. Without brokers the order flow still works; points
	// simply stop accruing until Kafka comes back in the config.
	if len(cfg.KafkaBrokers) > 0 {
		poller := publisher.NewOutboxPoller(ordersRepo, cfg.KafkaBrokers...)
		go poller.Run(runCtx)

		consumer := rewards.NewConsumer(rewardsStore, publisher.Topic, cfg.KafkaBrokers...)
		defer consumer.Close()
		go consumer.Run(runCtx)

		log.Printf("Kafka pipeline enabled via %v", cfg.KafkaBrokers)
	} else {
		log.Printf("KAFKA_BROKERS not set, outbox publishing and rewards accrual disabled")
	}

	router := h.NewRouter(
		h.NewMenuHandler(watcher),
		h.NewCartHandler(cartService, watcher),
		h.NewCheckoutHandler(checkoutService),
		h.NewOrdersHandler(ordersRepo),
		h.NewRewardsHandler(rewardsService, rewardsFeed),
		cfg.RequestTimeout,
	)

	// No WriteTimeout: the rewards SSE stream stays open until the client
	// disconnects.
	srv := &http.Server{
		Addr:        ":" + cfg.HTTPPort,
		Handler:     otelhttp.NewHandler(router, "http.server"),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
