// Package services coordinates the side effects of a mutation once the
// finance API has answered: the local journal and the event stream.
package services

import (
	"context"
	"errors"
	"fmt"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

// Journal stores mutations for the activity page.
type Journal interface {
	Save(ctx context.Context, m core.Mutation) (int64, error)
	Recent(ctx context.Context, limit int) ([]storage.Entry, error)
	Ping(ctx context.Context) error
	Close() error
}

// Publisher announces accepted mutations to other services.
type Publisher interface {
	Publish(ctx context.Context, m core.Mutation) error
	Close() error
}

// MutationService fans a mutation out to the journal and the publisher.
// Either may be nil. Failures are logged and never reach the caller: the
// write already happened on the API.
type MutationService struct {
	journal   Journal
	publisher Publisher
	logger    *log.Logger
}

func NewMutationService(journal Journal, publisher Publisher, logger *log.Logger) *MutationService {
	if logger == nil {
		logger = log.Discard()
	}
	return &MutationService{journal: journal, publisher: publisher, logger: logger}
}

// Record journals m and, when the API accepted it, publishes it.
func (s *MutationService) Record(ctx context.Context, m core.Mutation) {
	// The request may be gone by now; the bookkeeping should still happen.
	ctx = context.WithoutCancel(ctx)

	if s.journal != nil {
		if _, err := s.journal.Save(ctx, m); err != nil {
			s.logger.WithComponent(log.ComponentStorage).ErrorContext(ctx, "Failed to journal mutation",
				log.NewFields().
					WithMutation(m.Resource, m.Operation, m.EntityID, m.Title).
					WithError(err).
					WithErrorType(log.ErrorTypeDatabase).
					ToSlice()...)
		}
	}

	if m.Failed() {
		return
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping mutation event")
		return
	}
	if err := s.publisher.Publish(ctx, m); err != nil {
		msg, errType := "Failed to publish mutation event", log.ErrorTypeMessaging
		if amqp.IsConnectionError(err) {
			msg, errType = "AMQP connection lost, mutation event dropped", log.ErrorTypeNetwork
		}
		s.logger.WithComponent(log.ComponentAMQP).ErrorContext(ctx, msg,
			log.NewFields().
				WithMutation(m.Resource, m.Operation, m.EntityID, m.Title).
				WithError(err).
				WithErrorType(errType).
				ToSlice()...)
	}
}

// Recent returns the latest journal entries, or none when no journal is
// configured.
func (s *MutationService) Recent(ctx context.Context, limit int) ([]storage.Entry, error) {
	if s.journal == nil {
		return nil, nil
	}
	return s.journal.Recent(ctx, limit)
}

// Enabled reports whether mutations are being journaled.
func (s *MutationService) Enabled() bool { return s.journal != nil }

// Ping checks the journal. Without one there is nothing to check.
func (s *MutationService) Ping(ctx context.Context) error {
	if s.journal == nil {
		return nil
	}
	return s.journal.Ping(ctx)
}

// Close closes both the journal and the publisher.
func (s *MutationService) Close() error {
	var errs []error
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}
