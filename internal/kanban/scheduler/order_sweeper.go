package scheduler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"kanladin-backend/internal/kanban/usecase"
)

// OrderSweeper periodically checks every column for card order drift,
// optionally repairing what it finds
type OrderSweeper struct {
	columnUsecase usecase.ColumnUsecase
	cardUsecase   usecase.CardUsecase
	interval      time.Duration
	repair        bool
	stopChan      chan struct{}
	logger        *log.Entry
}

// NewOrderSweeper creates a new sweeper. An interval of zero or less disables it.
func NewOrderSweeper(columns usecase.ColumnUsecase, cards usecase.CardUsecase, interval time.Duration, repair bool) *OrderSweeper {
	return &OrderSweeper{
		columnUsecase: columns,
		cardUsecase:   cards,
		interval:      interval,
		repair:        repair,
		stopChan:      make(chan struct{}),
		logger:        log.WithField("component", "order_sweeper"),
	}
}

// Start begins the sweep loop
func (s *OrderSweeper) Start() {
	if s.interval <= 0 {
		s.logger.Debug("order sweeper disabled")
		return
	}

	s.logger.Infof("starting order sweeper (interval: %s, repair: %t)", s.interval, s.repair)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), s.interval)
				if _, err := s.Sweep(ctx); err != nil {
					s.logger.Errorf("order sweep failed: %v", err)
				}
				cancel()
			case <-s.stopChan:
				s.logger.Info("order sweeper stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the sweeper
func (s *OrderSweeper) Stop() {
	close(s.stopChan)
}

// Sweep checks every column once and returns how many were inconsistent.
// A column that cannot be checked is logged and skipped.
func (s *OrderSweeper) Sweep(ctx context.Context) (int, error) {
	columns, err := s.columnUsecase.GetAllColumns(ctx)
	if err != nil {
		return 0, err
	}

	drifted := 0
	for _, column := range columns {
		report, err := s.cardUsecase.CheckColumnOrder(ctx, column.ID)
		if err != nil {
			s.logger.WithField("column", column.ID).Warnf("order check failed: %v", err)
			continue
		}
		if report.Consistent {
			continue
		}

		drifted++
		entry := s.logger.WithFields(log.Fields{
			"column":     column.ID,
			"duplicates": report.Duplicates,
			"gaps":       report.Gaps,
		})
		if !s.repair {
			entry.Warn("card orders drifted")
			continue
		}
		if _, err := s.cardUsecase.RepairColumnOrder(ctx, column.ID); err != nil {
			entry.Errorf("order repair failed: %v", err)
			continue
		}
		entry.Info("card orders repaired")
	}
	return drifted, nil
}
