package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	api "kanladin-backend/cmd/api"
	"kanladin-backend/internal/kanban/repository"
	"kanladin-backend/internal/kanban/scheduler"
	"kanladin-backend/internal/kanban/usecase"
	"kanladin-backend/pkg/config"
	"kanladin-backend/pkg/database"
	"kanladin-backend/pkg/events"
	"kanladin-backend/pkg/logger"
	"kanladin-backend/pkg/store"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	gw, err := openGateway(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize %s store: %v", cfg.StoreDriver, err)
	}
	defer gw.Close()
	log.Infof("Using %s store", cfg.StoreDriver)

	// Initialize repositories (dependency injection)
	boardRepo := repository.NewBoardRepository(gw)
	columnRepo := repository.NewColumnRepository(gw)
	cardRepo := repository.NewCardRepository(gw)

	if cfg.SeedData {
		if err := repository.Seed(ctx, boardRepo, columnRepo, cardRepo); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
	}

	mode, err := usecase.ParseOrderingMode(cfg.OrderingMode)
	if err != nil {
		log.Fatalf("Invalid ORDERING_MODE: %v", err)
	}
	engine := usecase.NewOrderingEngine(cardRepo, mode, cfg.OrderingMaxAttempts)
	log.Infof("Card ordering mode: %s (max attempts %d)", mode, cfg.OrderingMaxAttempts)

	// Change events are optional
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.Connect(cfg.NatsURL, cfg.NatsToken)
		if err != nil {
			log.Warnf("Failed to connect to NATS at %s, events disabled: %v", cfg.NatsURL, err)
		} else {
			publisher = natsPublisher
			log.Infof("Publishing change events to %s", cfg.NatsURL)
		}
	}
	defer publisher.Close()

	// Initialize use cases (dependency injection)
	boardUsecase := usecase.NewBoardUsecase(boardRepo, publisher)
	columnUsecase := usecase.NewColumnUsecase(columnRepo, boardRepo, publisher)
	cardUsecase := usecase.NewCardUsecase(cardRepo, columnRepo, engine, publisher)

	// Background check for card order drift
	sweeper := scheduler.NewOrderSweeper(columnUsecase, cardUsecase, cfg.SweepInterval, cfg.SweepAutoRepair)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize HTTP handler
	handler, err := api.NewHandler(boardUsecase, columnUsecase, cardUsecase, cfg)
	if err != nil {
		log.Fatalf("Failed to build GraphQL schema: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- handler.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Errorf("Server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := handler.Shutdown(shutdownCtx); err != nil {
			log.Errorf("Graceful shutdown failed: %v", err)
		}
	}
}

func openGateway(ctx context.Context, cfg *config.Config) (store.Gateway, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return store.NewMemoryGateway(), nil

	case config.StorePostgres:
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewGormGateway(db)

	case config.StoreDynamoDB:
		client, err := database.NewDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		gw := store.NewDynamoDBGateway(client, map[store.Table]string{
			store.Boards:  cfg.BoardsTable,
			store.Columns: cfg.ColumnsTable,
			store.Cards:   cfg.CardsTable,
		})
		if err := gw.EnsureTables(ctx, store.TableExistsWaiter(client, 30*time.Second)); err != nil {
			return nil, err
		}
		return gw, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
