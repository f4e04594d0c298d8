package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"noel_back_end/internal/cache"
	"noel_back_end/internal/cart"
	"noel_back_end/internal/checkout"
	"noel_back_end/internal/config"
	"noel_back_end/internal/database"
	"noel_back_end/internal/handlers"
	"noel_back_end/internal/middleware"
	"noel_back_end/internal/notify"
	"noel_back_end/internal/orders"
	"noel_back_end/internal/repository"
	"noel_back_end/internal/routes"
	"noel_back_end/internal/services"
	"noel_back_end/internal/storage"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Démarre l'API HTTP",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// dashboardSource : commandes et stock vivent dans deux keyspaces
type dashboardSource struct {
	*repository.OrderRepository
	*repository.ProductRepository
}

func serve(_ *cobra.Command, _ []string) error {
	config.Load()
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := database.ConnectDatabases(cfg); err != nil {
		return err
	}
	defer database.Close()

	productsSession, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	productRepo := repository.NewProductRepository(productsSession)
	orderRepo := repository.NewOrderRepository(ordersSession)
	siteConfig := cache.NewSiteConfig(database.Redis, repository.NewSiteConfigRepository(productsSession))

	carts, err := cart.NewRegistry(
		storage.NewRedisKV(database.Redis, cfg.Checkout.SessionMaxAge),
		cfg.Checkout.CartCacheSize,
		cart.PublishChanges(database.Redis, cfg.Checkout.CartDebounce),
	)
	if err != nil {
		return err
	}
	drafts := checkout.NewDraftSync(orderRepo,
		storage.NewRedisKV(database.Redis, cfg.Checkout.DraftTTL),
		cfg.Checkout.DraftTTL, cfg.Checkout.DraftDebounce)

	mailer := notify.NewMailer(notify.NewSender(cfg.SMTP), cfg.StoreName)
	orderService := orders.NewService(orderRepo, siteConfig, mailer, cfg.Checkout.DeliveryDates)

	deps := handlers.Deps{
		Config:     cfg,
		Catalog:    productRepo,
		SiteConfig: siteConfig,
		Orders:     orderService,
		Carts:      carts,
		Drafts:     drafts,
		Dashboard:  dashboardSource{orderRepo, productRepo},
		Mailer:     mailer,
		Redis:      database.Redis,
	}
	if database.MinIO != nil {
		deps.Images = services.NewImages(database.MinIO, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
	}
	if database.Elastic != nil {
		deps.Search = services.NewSearch(database.Elastic)
	}
	h := handlers.NewHandler(deps)

	sessions := checkout.NewSessions(cfg.SessionSecret, cfg.Checkout.SessionMaxAge, cfg.IsProduction())
	r := routes.NewRouter(cfg)
	routes.RegisterRoutes(r, h, cfg, sessions, middleware.NewRedisCounter(database.Redis))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("🚀 Serveur lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serveur HTTP: %w", err)
		}
	case sig := <-stop:
		log.Printf("🛑 Signal %s reçu, arrêt en cours", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Arrêt HTTP: %v", err)
	}

	// écritures différées et e-mails en cours avant la fermeture des bases
	carts.Close()
	drafts.Close()
	orderService.Wait()
	log.Println("👋 Serveur arrêté")
	return nil
}
