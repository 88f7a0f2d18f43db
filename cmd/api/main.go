package main

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mstore/shop-backend/internal/cart"
	"github.com/mstore/shop-backend/internal/config"
	"github.com/mstore/shop-backend/internal/email"
	"github.com/mstore/shop-backend/internal/event"
	"github.com/mstore/shop-backend/internal/order"
	"github.com/mstore/shop-backend/internal/payment"
	"github.com/mstore/shop-backend/internal/pkg/logging"
	"github.com/mstore/shop-backend/internal/product"
	"github.com/mstore/shop-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logging.MustNew("shop-backend", cfg.Env)
	defer log.Sync()

	db := mustOpenDB(cfg.DatabaseURL, log)
	defer db.Close()
	ensureSchema(db, log)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestLogger(log))

	// users
	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, cfg.JWTSecret)

	// products, optionally behind a Redis read-through cache
	var productRepo product.Repository = product.NewPostgresRepository(db)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Warn("redis unavailable, product cache disabled", zap.Error(err))
		} else {
			productRepo = product.NewCachedRepository(productRepo, client, cfg.CacheTTL, log)
			log.Info("product cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(productService, userService)

	// carts and the reservation reaper
	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo)
	cartHandler := cart.NewHandler(cartService)

	reaper := cart.NewReaper(cartRepo, cfg.CartReservationTTL, cfg.CartReapInterval, log)
	go reaper.Run(context.Background())

	// orders: payment gateway, confirmation email, lifecycle events
	gateway := payment.NewHTTPGateway(cfg.PaymentAPIURL, cfg.PaymentAPIKey, cfg.PaymentTimeout)

	var sender email.Sender = email.NopSender{}
	if cfg.EmailAPIKey != "" && cfg.SenderEmail != "" {
		sender = email.NewBrevoSender(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.SenderEmail)
	}

	var events order.EventPublisher
	if cfg.AmqpURL != "" {
		publisher, err := event.Dial(cfg.AmqpURL)
		if err != nil {
			log.Warn("rabbitmq unavailable, order events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			events = publisher
			log.Info("order events enabled")
		}
	}

	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, userService, gateway, sender, events, log,
		cfg.Currency, cfg.PaymentTimeout)
	orderHandler := order.NewHandler(orderService)

	// public routes are registered before the jwt middleware applies
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	log.Info("starting server", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func mustOpenDB(databaseURL string, log *zap.Logger) *sql.DB {
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database", zap.Error(err))
	}

	log.Info("connected to postgres")
	return db
}

func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("took", time.Since(start)))
		return err
	}
}
