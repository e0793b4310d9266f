package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/app/background"
	"github.com/LavaJover/shvark-paylater-service/internal/app/setup"
	"github.com/LavaJover/shvark-paylater-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-paylater-service/internal/delivery/http/server"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	if err := run(); err != nil {
		log.Fatalf("paylater-service: %v", err)
	}
}

// run starts the service and blocks until SIGINT or SIGTERM.
func run() error {
	deps, err := setup.InitializeDependencies()
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer deps.Close()

	cfg := deps.Config
	logger := deps.Logger

	useCases, err := setup.InitializeUseCases(deps)
	if err != nil {
		return fmt.Errorf("init usecases: %w", err)
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	// слушаем до старта фоновых задач
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// HTTP
	paylaterHandler, err := handlers.NewPayLaterHandler(
		useCases.OrderUsecase,
		deps.EventLogger,
		logger,
		cfg.URLs.FrontendURL+"/payment-cancelled",
	)
	if err != nil {
		lis.Close()
		return fmt.Errorf("init paylater handler: %w", err)
	}
	httpServer := server.NewServer(
		paylaterHandler,
		handlers.NewMerchantHandler(useCases.MerchantUsecase),
		handlers.NewHealthHandler(sqlDB),
		server.Options{
			Gatherer:   deps.Registry,
			AdminToken: cfg.HTTPServer.AdminToken,
			Logger:     logger,
		},
	)

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
		logger.Info("http server started", "addr", addr)
		if err := httpServer.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "error", err)
			stop()
		}
	}()

	// gRPC health
	grpcServer := grpc.NewServer()
	healthReporter := grpcapi.NewHealthReporter(sqlDB, 15*time.Second, logger)
	healthReporter.Register(grpcServer)
	go healthReporter.Run(ctx)

	go func() {
		logger.Info("gRPC server started", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", "error", err)
		}
	}()

	// Фоновые задачи
	tasks := background.NewBackgroundTasks(useCases.OrderUsecase, cfg.Scheduler.Interval, logger)
	tasks.StartAll(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	tasks.Wait()
	return nil
}
