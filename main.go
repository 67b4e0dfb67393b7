package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sufrahub/sufra/app"
	"github.com/sufrahub/sufra/app/admin"
	"github.com/sufrahub/sufra/app/auth"
	cartapp "github.com/sufrahub/sufra/app/cart"
	"github.com/sufrahub/sufra/app/catalog"
	"github.com/sufrahub/sufra/app/categories"
	"github.com/sufrahub/sufra/app/checkout"
	"github.com/sufrahub/sufra/app/orders"
	"github.com/sufrahub/sufra/app/reviews"
	"github.com/sufrahub/sufra/internal/cartstore"
	"github.com/sufrahub/sufra/internal/platform/config"
	"github.com/sufrahub/sufra/internal/platform/database"
	"github.com/sufrahub/sufra/internal/platform/httpserver"
	"github.com/sufrahub/sufra/internal/platform/images"
	"github.com/sufrahub/sufra/internal/platform/logger"
	"github.com/sufrahub/sufra/internal/platform/mail"
	"github.com/sufrahub/sufra/internal/platform/metrics"
	"github.com/sufrahub/sufra/internal/session"
	"github.com/sufrahub/sufra/models"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the app and models packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("database setup failed", "err", err)
		os.Exit(1)
	}

	// Stores: Redis when configured, in-process otherwise.
	var sessions session.Store = session.NewMemoryStore()
	var carts cartstore.Store = cartstore.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		sessions = session.NewRedisStore(client)
		carts = cartstore.NewRedisStore(client, cfg.SessionTTL)
	}

	var mailer mail.Mailer = mail.NewLogMailer(log)
	if cfg.SendGridAPIKey != "" {
		mailer = mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFrom)
	}

	m := metrics.New()

	productsRepo := models.NewProductsRepository(db)
	categoriesRepo := models.NewCategoriesRepository(db)
	usersRepo := models.NewUsersRepository(db)
	ordersRepo := models.NewOrdersRepository(db)
	reviewsRepo := models.NewReviewsRepository(db)

	composer := checkout.NewComposer(ordersRepo, cfg.DeliveryFee)

	handlers := app.Handlers{
		Catalog:    catalog.NewCatalogHandler(productsRepo),
		Categories: categories.NewCategoryHandler(categoriesRepo),
		Cart:       cartapp.NewCartHandler(productsRepo, carts),
		Checkout:   checkout.NewCheckoutHandler(composer, carts, log, m),
		Orders:     orders.NewOrdersHandler(ordersRepo),
		Auth:       auth.NewAuthHandler(usersRepo, sessions, mailer, log, cfg.SessionTTL, cfg.ResetTokenKey, cfg.ResetTokenTTL),
		Reviews:    reviews.NewReviewsHandler(reviewsRepo),
		Admin:      admin.NewAdminHandler(usersRepo, images.NewHostUploader(cfg.ImageHostURL, cfg.ImageHostKey)),
	}

	router := app.NewRouter(handlers, sessions, m)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting sufra", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		os.Exit(1)
	}
}
