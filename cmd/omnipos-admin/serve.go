package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/fekuna/omnipos-admin-service/config"
	"github.com/fekuna/omnipos-admin-service/internal/category"
	catH "github.com/fekuna/omnipos-admin-service/internal/category/handler"
	"github.com/fekuna/omnipos-admin-service/internal/changefeed"
	custH "github.com/fekuna/omnipos-admin-service/internal/customer/handler"
	"github.com/fekuna/omnipos-admin-service/internal/dashboard"
	orderH "github.com/fekuna/omnipos-admin-service/internal/order/handler"
	"github.com/fekuna/omnipos-admin-service/internal/preference"
	"github.com/fekuna/omnipos-admin-service/internal/product"
	prodH "github.com/fekuna/omnipos-admin-service/internal/product/handler"
	"github.com/fekuna/omnipos-admin-service/internal/server"
	"github.com/fekuna/omnipos-admin-service/pkg/broker"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	// 1. Initialize Logger
	appLogger := newLogger(cfg)
	defer appLogger.Sync()

	// 2. Connect backing services and build use cases
	a, err := newApp(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Could not initialize application", zap.Error(err))
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 3. Change feed listener keeps caches of other replicas in step
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaConsumer := broker.NewConsumer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		defer kafkaConsumer.Close()

		listener := changefeed.NewListener(kafkaConsumer, appLogger)
		subscribeInvalidation(listener, a.categories, a.products)
		go listener.Start(ctx)
		appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 4. Initialize Handlers
	prefStore := preference.NewMemoryStore()
	if a.redis != nil {
		prefStore = preference.NewStore(a.redis)
	}

	checks := map[string]server.Pinger{
		"postgres": func(r *http.Request) error { return a.db.PingContext(r.Context()) },
	}
	if a.redis != nil {
		checks["redis"] = func(r *http.Request) error { return a.redis.Client.Ping(r.Context()).Err() }
	}

	router := server.NewRouter(server.Deps{
		Categories:  catH.NewCategoryHandler(a.categories, appLogger),
		Products:    prodH.NewProductHandler(a.products, appLogger),
		Orders:      orderH.NewOrderHandler(a.orders, appLogger),
		Customers:   custH.NewCustomerHandler(a.customers, appLogger),
		Importer:    a.importer,
		Preferences: prefStore,
		Dashboard:   dashboard.NewService(a.prodRepo, a.ordRepo, a.custRepo, cfg.Dashboard.LowStockThreshold),
		Health:      checks,
		Logger:      appLogger,
	})

	// 5. Start gRPC health server
	grpcLis, err := net.Listen("tcp", normalizePort(cfg.Server.GRPCPort))
	if err != nil {
		return err
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	go func() {
		appLogger.Info("Starting gRPC health server", zap.String("port", cfg.Server.GRPCPort))
		if err := grpcServer.Serve(grpcLis); err != nil {
			appLogger.Error("gRPC health server stopped", zap.Error(err))
		}
	}()

	// 6. Start HTTP server
	httpServer := &http.Server{
		Addr:              normalizePort(cfg.Server.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case err = <-errCh:
		appLogger.Error("HTTP server failed", zap.Error(err))
	}

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		appLogger.Warn("HTTP shutdown incomplete", zap.Error(serr))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
	return err
}

// subscribeInvalidation clears local caches when another replica changes
// the rows behind them. Product lists embed category names.
func subscribeInvalidation(l *changefeed.Listener, categories category.UseCase, products product.UseCase) {
	l.Subscribe(changefeed.TableCategories, func(ctx context.Context, _ changefeed.ChangeEvent) error {
		return categories.InvalidateTree(ctx)
	})
	invalidateProducts := func(ctx context.Context, _ changefeed.ChangeEvent) error {
		return products.InvalidateListCache(ctx)
	}
	l.Subscribe(changefeed.TableCategories, invalidateProducts)
	l.Subscribe(changefeed.TableProducts, invalidateProducts)
	l.Subscribe(changefeed.TableProductImages, invalidateProducts)
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
