package webhook

import (
	"context"
	"time"

	"github.com/luccasmb/chainhook/internal/pkg/logger"

	"github.com/google/uuid"
)

// Start implements Service. It launches the sweeper, the persistent entry
// path into the delivery engine: deliveries created but never attempted
// (e.g. after a crash) and deliveries whose retry is due are picked up here.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.closeFunc = func() { cancel() }

	go s.sweep(ctx)

	s.isStarted = true
	return nil
}

// Close implements Service.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

// sweep runs sweep cycles until ctx is canceled.
func (s *service) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepCycle(ctx)
		}
	}
}

// sweepCycle selects one batch of due deliveries and attempts each in its
// own goroutine, without waiting for completion of prior ones. Attempts for
// ids already being worked on collapse via the per-delivery lock.
func (s *service) sweepCycle(ctx context.Context) {
	due, err := s.deliveries.ListDueDeliveries(ctx, s.now().UTC(), s.sweepBatch)
	if err != nil {
		logger.Error(ctx, "listing due deliveries", "error", err)
		return
	}

	if len(due) == 0 {
		return
	}

	logger.Debug(ctx, "sweeping due deliveries", "count", len(due))

	// Attempts outlive the sweeper's lifecycle context: canceling a swept
	// attempt mid-flight would record a transport failure for a delivery
	// that was never actually refused.
	attemptCtx := context.WithoutCancel(ctx)
	for _, id := range due {
		go func(deliveryID uuid.UUID) {
			_ = s.Attempt(attemptCtx, deliveryID)
		}(id)
	}
}
