package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"aulas/internal/core"
	"aulas/internal/log"
)

// Schedule is the registry of class sessions.
type Schedule struct {
	ledger *Ledger
}

// Book appends a session for an existing student and persists the ledger.
func (s *Schedule) Book(ctx context.Context, studentName string, date core.Date, at core.TimeOfDay) (core.Session, error) {
	sess := core.Session{
		StudentName: strings.TrimSpace(studentName),
		Date:        date,
		Time:        at,
	}
	if err := sess.Validate(); err != nil {
		return core.Session{}, err
	}

	l := s.ledger
	l.mu.Lock()
	if !hasStudent(l.students, sess.StudentName) {
		l.mu.Unlock()
		return core.Session{}, fmt.Errorf("%w: %q", core.ErrUnknownStudent, sess.StudentName)
	}
	err := l.commitLocked(ctx, l.students, appendSession(l.sessions, sess))
	l.mu.Unlock()

	fields := log.NewFields().
		WithSession(sess.StudentName, sess.Date.String(), sess.Time.String()).
		WithOperation(log.OpBook)

	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to book session", fields.WithError(err).ToSlice()...)
		return core.Session{}, err
	}

	l.logger.InfoContext(ctx, "Session booked", fields.ToSlice()...)
	l.publish(ctx, core.LedgerEvent{
		Type:    core.EventSessionBooked,
		Student: sess.StudentName,
		Date:    sess.Date.String(),
		Time:    sess.Time.String(),
	})
	return sess, nil
}

// ListAll returns every session in booking order.
func (s *Schedule) ListAll() []core.Session {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	return slices.Clone(s.ledger.sessions)
}

// ListForStudent returns the sessions booked for name, in booking order.
func (s *Schedule) ListForStudent(name string) []core.Session {
	return s.filter(func(sess core.Session) bool {
		return sess.StudentName == name
	})
}

// ListForStudentAndMonth narrows ListForStudent to one calendar month.
func (s *Schedule) ListForStudentAndMonth(name string, month core.YearMonth) []core.Session {
	return s.filter(func(sess core.Session) bool {
		return sess.StudentName == name && month.Contains(sess.Date)
	})
}

func (s *Schedule) filter(keep func(core.Session) bool) []core.Session {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	out := []core.Session{}
	for _, sess := range s.ledger.sessions {
		if keep(sess) {
			out = append(out, sess)
		}
	}
	return out
}

func hasStudent(students []core.Student, name string) bool {
	for _, st := range students {
		if st.Name == name {
			return true
		}
	}
	return false
}
