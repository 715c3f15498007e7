package backend

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"aulas/internal/services"
	"aulas/internal/storage"
)

// Result holds the persistence backend and the optional event publisher.
// Once a Ledger has been opened over them the Ledger owns both, and Cleanup
// must not be called.
type Result struct {
	Store  storage.Store
	Events services.EventPublisher
}

// Cleanup releases the store and the publisher. Use it only when opening
// the Ledger failed.
func (r *Result) Cleanup() error {
	var errs []error
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if r.Events != nil {
		if err := r.Events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LedgerOptions returns the options that wire the publisher into a Ledger.
func (r *Result) LedgerOptions() []services.Option {
	if r.Events == nil {
		return nil
	}
	return []services.Option{services.WithEvents(r.Events)}
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
