package services

import (
	"context"
	"slices"
	"strings"

	"aulas/internal/core"
	"aulas/internal/log"
)

// Roster is the registry of students.
type Roster struct {
	ledger *Ledger
}

// Register appends a student and persists the ledger. Registering an existing
// name appends another record; FindByName keeps returning the first one.
func (r *Roster) Register(ctx context.Context, name string, weeklyPackageSize int, price core.Money) (core.Student, error) {
	s := core.Student{
		Name:              strings.TrimSpace(name),
		WeeklyPackageSize: weeklyPackageSize,
		PackagePrice:      price,
	}
	if err := s.Validate(); err != nil {
		return core.Student{}, err
	}

	l := r.ledger
	l.mu.Lock()
	err := l.commitLocked(ctx, appendStudent(l.students, s), l.sessions)
	l.mu.Unlock()
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to register student",
			log.NewFields().
				WithStudent(s.Name, s.WeeklyPackageSize, s.PackagePrice.Cents).
				WithOperation(log.OpRegister).
				WithError(err).
				ToSlice()...)
		return core.Student{}, err
	}

	l.logger.InfoContext(ctx, "Student registered",
		log.NewFields().
			WithStudent(s.Name, s.WeeklyPackageSize, s.PackagePrice.Cents).
			WithOperation(log.OpRegister).
			ToSlice()...)
	l.publish(ctx, core.LedgerEvent{Type: core.EventStudentRegistered, Student: s.Name})
	return s, nil
}

// List returns every student in registration order.
func (r *Roster) List() []core.Student {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()
	return slices.Clone(r.ledger.students)
}

// FindByName returns the first student whose name matches exactly.
func (r *Roster) FindByName(name string) (core.Student, bool) {
	r.ledger.mu.RLock()
	defer r.ledger.mu.RUnlock()
	for _, s := range r.ledger.students {
		if s.Name == name {
			return s, true
		}
	}
	return core.Student{}, false
}
