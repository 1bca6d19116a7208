package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"aerium/internal/config"
	httpapi "aerium/internal/http"
	"aerium/internal/repository"
	"aerium/internal/service"

	_ "aerium/docs"
)

type repos struct {
	users    repository.UserRepository
	products repository.ProductRepository
	aromas   repository.AromaRepository
	groups   repository.GroupRepository
	cart     repository.CartRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
	close    func()
}

func buildRepos(ctx context.Context, cfg *config.Config) (*repos, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("AERIUM_DATABASE_URL not set, using in-memory store")
		store := repository.NewMemoryStore()
		return &repos{
			users:    repository.NewMemoryUsers(store),
			products: store,
			aromas:   repository.NewMemoryAromas(store),
			groups:   repository.NewMemoryGroups(store),
			cart:     repository.NewMemoryCart(store),
			orders:   repository.NewMemoryOrders(store),
			tx:       repository.NewMemoryTx(store),
			close:    func() {},
		}, nil
	}
	store, err := repository.NewPgStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &repos{
		users:    repository.NewPgUsers(store),
		products: store,
		aromas:   repository.NewPgAromas(store),
		groups:   repository.NewPgGroups(store),
		cart:     repository.NewPgCart(store),
		orders:   repository.NewPgOrders(store),
		tx:       repository.NewPgTx(store),
		close:    store.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	if cfg.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()
	r, err := buildRepos(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("init storage")
	}
	defer r.close()

	authSvc := service.NewAuthService(r.users, cfg.JWTSecret, cfg.TokenTTL)
	catalogSvc := service.NewCatalogService(r.products, r.aromas)
	configSvc := service.NewConfigurationService(r.products, r.groups, r.tx)
	cartSvc := service.NewCartService(r.products, r.aromas, r.groups, r.cart)
	orderSvc := service.NewOrderService(r.cart, r.orders, cartSvc, r.tx)

	srv := httpapi.NewServer(cfg.CORSOrigins, authSvc, catalogSvc, configSvc, cartSvc, orderSvc)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		log.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}
