package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	usecase "github.com/LavaJover/shvark-paylater-service/internal/usecase/order"
)

type BackgroundTasks struct {
	OrderUsecase usecase.OrderUsecase
	interval     time.Duration
	logger       *slog.Logger
	wg           sync.WaitGroup
}

func NewBackgroundTasks(orderUC usecase.OrderUsecase, interval time.Duration, logger *slog.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		OrderUsecase: orderUC,
		interval:     interval,
		logger:       logger,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	bt.wg.Add(1)
	go func() {
		defer bt.wg.Done()
		bt.startExpirySweep(ctx)
	}()
}

// Wait blocks until every task has returned after ctx was cancelled.
func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

func (bt *BackgroundTasks) startExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(bt.interval)
	defer ticker.Stop()

	bt.logger.Info("expiry sweep started", "interval", bt.interval)
	for {
		select {
		case <-ctx.Done():
			bt.logger.Info("expiry sweep stopped")
			return
		case <-ticker.C:
			if err := bt.OrderUsecase.RunExpirySweep(ctx); err != nil {
				bt.logger.Error("expiry sweep error", "error", err)
			}
		}
	}
}
