package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"aulas/internal/core"
	"aulas/internal/log"
	"aulas/internal/storage"
)

// EventPublisher receives an event after every persisted mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev core.LedgerEvent) error
	Close() error
}

// Ledger owns the student and session collections and mirrors every
// mutation to its Store. Roster and Schedule are views over it.
type Ledger struct {
	mu       sync.RWMutex
	store    storage.Store
	events   EventPublisher
	logger   *log.Logger
	students []core.Student
	sessions []core.Session
	revision uint64
	now      func() time.Time
}

type Option func(*Ledger)

// WithEvents publishes ledger events through p. A nil publisher disables events.
func WithEvents(p EventPublisher) Option {
	return func(l *Ledger) { l.events = p }
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger.WithComponent(log.ComponentLedger)
		}
	}
}

// OpenLedger loads both collections from store.
func OpenLedger(ctx context.Context, store storage.Store, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, errors.New("ledger requires a store")
	}
	l := &Ledger{
		store:  store,
		logger: log.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	students, sessions, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	l.students = students
	l.sessions = sessions

	l.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldStudents, len(students),
		log.FieldSessions, len(sessions))
	return l, nil
}

func (l *Ledger) Roster() *Roster { return &Roster{ledger: l} }

func (l *Ledger) Schedule() *Schedule { return &Schedule{ledger: l} }

// Revision increases by one on every successful mutation.
func (l *Ledger) Revision() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.revision
}

// ClearAll empties both collections and persists the empty state.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	err := l.commitLocked(ctx, nil, nil)
	l.mu.Unlock()
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to clear ledger",
			log.FieldOperation, log.OpReset,
			log.FieldError, err)
		return err
	}

	l.logger.WarnContext(ctx, "Ledger cleared", log.FieldOperation, log.OpReset)
	l.publish(ctx, core.LedgerEvent{Type: core.EventLedgerCleared})
	return nil
}

// commitLocked saves the candidate collections and only then swaps them in,
// so a failed save leaves memory as it was. Caller holds the write lock.
func (l *Ledger) commitLocked(ctx context.Context, students []core.Student, sessions []core.Session) error {
	if err := l.store.Save(ctx, students, sessions); err != nil {
		return err
	}
	l.students = students
	l.sessions = sessions
	l.revision++
	return nil
}

// publish may block on the broker. Callers must not hold l.mu.
func (l *Ledger) publish(ctx context.Context, ev core.LedgerEvent) {
	if l.events == nil {
		return
	}
	ev.At = l.now()
	if err := l.events.PublishLedgerEvent(ctx, ev); err != nil {
		// The mutation is already on disk; a lost event is not fatal.
		l.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventType, string(ev.Type),
			log.FieldError, err)
	}
}

// Close closes both the store and the event publisher.
func (l *Ledger) Close() error {
	var errs []error

	if l.store != nil {
		if err := l.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if l.events != nil {
		if err := l.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}

	return errors.Join(errs...)
}

func appendStudent(in []core.Student, s core.Student) []core.Student {
	out := make([]core.Student, len(in), len(in)+1)
	copy(out, in)
	return append(out, s)
}

func appendSession(in []core.Session, s core.Session) []core.Session {
	out := make([]core.Session, len(in), len(in)+1)
	copy(out, in)
	return append(out, s)
}
