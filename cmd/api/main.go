package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"omcis-store/internal/config"
	"omcis-store/internal/db"
	"omcis-store/internal/feed"
	"omcis-store/internal/httpserver"
	"omcis-store/internal/migrate"
	adminrepo "omcis-store/internal/repository/admin"
	categoryrepo "omcis-store/internal/repository/category"
	orderrepo "omcis-store/internal/repository/order"
	productrepo "omcis-store/internal/repository/product"
	tokenrepo "omcis-store/internal/repository/token"
	userrepo "omcis-store/internal/repository/user"
	adminsvc "omcis-store/internal/service/admin"
	authsvc "omcis-store/internal/service/auth"
	"omcis-store/internal/service/catalog"
	categorysvc "omcis-store/internal/service/category"
	"omcis-store/internal/service/checkout"
	"omcis-store/internal/service/gate"
	ordersvc "omcis-store/internal/service/order"
	productsvc "omcis-store/internal/service/product"
	"omcis-store/internal/service/session"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		config.Config{}.NewLogger("api").WithError(err).Fatal("load config")
	}
	logger := cfg.NewLogger("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.WithError(err).Fatal("connect to db")
	}
	defer dbpool.Close()

	version, err := migrate.Apply(ctx, dbpool)
	if err != nil {
		logger.WithError(err).Fatal("apply migrations")
	}
	logger.WithField("version", version).Info("schema up to date")

	productRepo := productrepo.NewPostgres(dbpool, logger)
	categoryRepo := categoryrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool, logger)
	adminRepo := adminrepo.NewPostgres(dbpool, logger)

	hub := feed.NewHub(logger)
	authService := authsvc.New(userRepo, tokenRepo, cfg.AuthTokenTTL, logger)
	catalogService := catalog.New(productRepo, hub, logger)
	sessions := session.NewManager(cfg.SessionTTL, authService, logger)

	var background sync.WaitGroup
	background.Add(4)
	go func() {
		defer background.Done()
		if err := hub.Serve(ctx, dbpool, cfg.FeedChannel); err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("change feed stopped")
		}
	}()
	go func() {
		defer background.Done()
		catalogService.Run(ctx)
	}()
	go func() {
		defer background.Done()
		sessions.Run(ctx, time.Minute)
	}()
	go func() {
		defer background.Done()
		authService.RunTokenPurge(ctx, time.Hour)
	}()

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions:       sessions,
		Auth:           authService,
		Catalog:        catalogService,
		Checkout:       checkout.New(orderRepo, logger),
		Gate:           gate.New(adminRepo, logger),
		Products:       productsvc.New(productRepo),
		Categories:     categorysvc.New(categoryRepo),
		Orders:         ordersvc.New(orderRepo, logger),
		Admins:         adminsvc.New(adminRepo, userRepo, logger),
		Feed:           hub,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logger.WithError(err).Fatal("init server")
	}

	if err := srv.Run(ctx, cfg.ShutdownTimeout); err != nil {
		logger.WithError(err).Error("http server stopped with error")
	}
	stop()
	background.Wait()
	sessions.Wait()
}
