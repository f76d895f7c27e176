package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/storage"
)

type fakeJournal struct {
	saved    []core.Mutation
	err      error
	pingErr  error
	closeErr error
}

func (f *fakeJournal) Save(_ context.Context, m core.Mutation) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, m)
	return int64(len(f.saved)), nil
}

func (f *fakeJournal) Recent(_ context.Context, limit int) ([]storage.Entry, error) {
	var out []storage.Entry
	for i := len(f.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, storage.Entry{ID: int64(i + 1), Mutation: f.saved[i]})
	}
	return out, nil
}

func (f *fakeJournal) Ping(context.Context) error { return f.pingErr }

func (f *fakeJournal) Close() error { return f.closeErr }

type fakePublisher struct {
	published []core.Mutation
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, m core.Mutation) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, m)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func TestRecordJournalsAndPublishes(t *testing.T) {
	j, p := &fakeJournal{}, &fakePublisher{}
	s := NewMutationService(j, p, nil)

	s.Record(context.Background(), core.Mutation{Resource: core.ResourceCategory, Operation: core.OperationCreate, Outcome: core.OutcomeOK})
	if len(j.saved) != 1 || len(p.published) != 1 {
		t.Fatalf("saved %d, published %d; want 1, 1", len(j.saved), len(p.published))
	}
}

func TestRecordFailedMutationIsNotPublished(t *testing.T) {
	j, p := &fakeJournal{}, &fakePublisher{}
	s := NewMutationService(j, p, nil)

	s.Record(context.Background(), core.Mutation{Resource: core.ResourceCategory, Operation: core.OperationCreate, Outcome: core.OutcomeError, Error: "boom"})
	if len(j.saved) != 1 {
		t.Fatal("failed mutations should still be journaled")
	}
	if len(p.published) != 0 {
		t.Fatal("failed mutations must not be published")
	}
}

func TestRecordSurvivesSideEffectFailures(t *testing.T) {
	j := &fakeJournal{err: errors.New("disk full")}
	p := &fakePublisher{err: errors.New("broker down")}
	s := NewMutationService(j, p, nil)

	s.Record(context.Background(), core.Mutation{Resource: core.ResourceTransaction, Operation: core.OperationUpdate, Outcome: core.OutcomeOK})
}

func TestRecordWithoutBackends(t *testing.T) {
	s := NewMutationService(nil, nil, nil)
	s.Record(context.Background(), core.Mutation{Outcome: core.OutcomeOK})

	entries, err := s.Recent(context.Background(), 10)
	if err != nil || entries != nil {
		t.Fatalf("Recent = %v, %v", entries, err)
	}
	if s.Enabled() {
		t.Fatal("service without journal should report disabled")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRecent(t *testing.T) {
	j := &fakeJournal{}
	s := NewMutationService(j, nil, nil)
	for _, title := range []string{"a", "b", "c"} {
		s.Record(context.Background(), core.Mutation{Title: title, Outcome: core.OutcomeOK})
	}
	entries, err := s.Recent(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Title != "c" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestCloseJoinsErrors(t *testing.T) {
	s := NewMutationService(&fakeJournal{closeErr: errors.New("locked")}, &fakePublisher{}, nil)
	if err := s.Close(); err == nil {
		t.Fatal("expected close error")
	}
}

func TestRecordClassifiesPublishFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType string
		msg     string
	}{
		{"broker gone", amqp091.ErrClosed, log.ErrorTypeNetwork, "AMQP connection lost"},
		{"message rejected", errors.New("marshal message: bad"), log.ErrorTypeMessaging, "Failed to publish mutation event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := log.New(log.Config{Output: &buf})
			s := NewMutationService(nil, &fakePublisher{err: tt.err}, logger)

			s.Record(context.Background(), core.Mutation{Resource: core.ResourceCategory, Operation: core.OperationCreate, Outcome: core.OutcomeOK})

			out := buf.String()
			if !strings.Contains(out, "error_type="+tt.errType) || !strings.Contains(out, tt.msg) {
				t.Errorf("log output = %q, want %q and %q", out, tt.errType, tt.msg)
			}
		})
	}
}

func TestPing(t *testing.T) {
	if err := NewMutationService(nil, nil, nil).Ping(context.Background()); err != nil {
		t.Fatalf("Ping without journal = %v", err)
	}
	s := NewMutationService(&fakeJournal{pingErr: errors.New("database is locked")}, nil, nil)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected journal ping error")
	}
}
