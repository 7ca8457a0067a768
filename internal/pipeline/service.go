// Package pipeline wires the change-detection, classification, and delivery
// stages into a single lifecycle: scanner output feeds the classifier, and
// every stored event feeds the webhook engine, whose sweeper runs alongside
// the scan loop on its own timer.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/luccasmb/chainhook/internal/chainscan"
	"github.com/luccasmb/chainhook/internal/webhook"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// Service runs the full watch-classify-deliver pipeline.
type Service interface {
	// Start launches the scan loop and the delivery sweeper. Returns
	// ErrServiceAlreadyStarted if already running.
	Start(ctx context.Context) error

	// Close stops both loops. Safe to call even if never started.
	Close()
}

type service struct {
	mu        sync.Mutex
	isStarted bool

	scanner  chainscan.Service
	delivery webhook.Service
}

var _ Service = (*service)(nil)

// New bundles the scanner and the delivery engine into one lifecycle. The
// data path between the stages is wired at construction time, through
// NewTransactionHandler and NewEventSink.
func New(scanner chainscan.Service, delivery webhook.Service) *service {
	return &service{
		scanner:  scanner,
		delivery: delivery,
	}
}

// Start implements Service.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	if err := s.delivery.Start(ctx); err != nil {
		return err
	}

	if err := s.scanner.Start(ctx); err != nil {
		s.delivery.Close()
		return err
	}

	s.isStarted = true
	return nil
}

// Close implements Service.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scanner.Close()
	s.delivery.Close()
	s.isStarted = false
}
