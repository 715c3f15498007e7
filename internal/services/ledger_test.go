package services

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aulas/internal/core"
	"aulas/internal/storage"
)

// memStore is an in-memory storage.Store that counts saves and can be told to fail.
type memStore struct {
	students []core.Student
	sessions []core.Session
	saves    int
	saveErr  error
	loadErr  error
	closed   bool
}

func (m *memStore) Load(context.Context) ([]core.Student, []core.Session, error) {
	if m.loadErr != nil {
		return nil, nil, m.loadErr
	}
	return slices.Clone(m.students), slices.Clone(m.sessions), nil
}

func (m *memStore) Save(_ context.Context, st []core.Student, se []core.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.students = slices.Clone(st)
	m.sessions = slices.Clone(se)
	return nil
}

func (m *memStore) Close() error {
	m.closed = true
	return nil
}

type recordingPublisher struct {
	events []core.LedgerEvent
	err    error
	closed bool
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev core.LedgerEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

// blockingPublisher holds every publish until release is closed.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (p *blockingPublisher) PublishLedgerEvent(ctx context.Context, _ core.LedgerEvent) error {
	p.started <- struct{}{}
	select {
	case <-p.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *blockingPublisher) Close() error { return nil }

func openLedger(t *testing.T, store storage.Store, opts ...Option) *Ledger {
	t.Helper()
	l, err := OpenLedger(context.Background(), store, opts...)
	require.NoError(t, err)
	return l
}

func price(cents int64) core.Money { return core.Money{Cents: cents} }

func TestOpenLedger(t *testing.T) {
	t.Run("nil store", func(t *testing.T) {
		_, err := OpenLedger(context.Background(), nil)
		require.Error(t, err)
	})

	t.Run("load failure", func(t *testing.T) {
		cause := core.PersistenceError("load students", errors.New("boom"))
		_, err := OpenLedger(context.Background(), &memStore{loadErr: cause})
		require.ErrorIs(t, err, core.ErrPersistence)
	})

	t.Run("loads existing data", func(t *testing.T) {
		store := &memStore{
			students: []core.Student{{Name: "Ana", WeeklyPackageSize: 1, PackagePrice: price(100)}},
			sessions: []core.Session{{StudentName: "Ana", Date: core.NewDate(2024, 1, 5)}},
		}
		l := openLedger(t, store)
		assert.Len(t, l.Roster().List(), 1)
		assert.Len(t, l.Schedule().ListAll(), 1)
		assert.Zero(t, l.Revision())
	})
}

func TestRosterRegister(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	l := openLedger(t, store)
	roster := l.Roster()

	s, err := roster.Register(ctx, "  Ana ", 2, price(10000))
	require.NoError(t, err)
	assert.Equal(t, "Ana", s.Name)
	assert.Equal(t, 1, store.saves)
	assert.Equal(t, uint64(1), l.Revision())

	_, err = roster.Register(ctx, "Bruno", 1, price(0))
	require.NoError(t, err)

	got := roster.List()
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "Bruno", got[1].Name)
	assert.Equal(t, store.students, got, "store mirrors memory after every mutation")
}

func TestRosterRegisterRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name    string
		student string
		size    int
		price   core.Money
		want    error
	}{
		{"empty name", "", 1, price(100), core.ErrEmptyName},
		{"blank name", "   ", 1, price(100), core.ErrEmptyName},
		{"zero package", "Ana", 0, price(100), core.ErrInvalidPackage},
		{"negative package", "Ana", -1, price(100), core.ErrInvalidPackage},
		{"negative price", "Ana", 1, price(-1), core.ErrInvalidPrice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{}
			l := openLedger(t, store)

			_, err := l.Roster().Register(ctx, tc.student, tc.size, tc.price)
			require.ErrorIs(t, err, tc.want)
			require.ErrorIs(t, err, core.ErrValidation)
			assert.Empty(t, l.Roster().List())
			assert.Zero(t, store.saves, "rejected registration must not save")
			assert.Zero(t, l.Revision())
		})
	}
}

func TestRosterFindByNameFirstMatch(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, &memStore{})
	roster := l.Roster()

	_, err := roster.Register(ctx, "Ana", 1, price(8000))
	require.NoError(t, err)
	_, err = roster.Register(ctx, "Ana", 3, price(20000))
	require.NoError(t, err)

	assert.Len(t, roster.List(), 2, "re-registration appends")

	s, ok := roster.FindByName("Ana")
	require.True(t, ok)
	assert.Equal(t, int64(8000), s.PackagePrice.Cents)

	_, ok = roster.FindByName("ana")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestScheduleBook(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	l := openLedger(t, store)
	_, err := l.Roster().Register(ctx, "Ana", 1, price(10000))
	require.NoError(t, err)

	sess, err := l.Schedule().Book(ctx, "Ana", core.NewDate(2024, 1, 5), core.TimeOfDay{Hour: 14, Minute: 30})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", sess.Date.String())
	assert.Equal(t, 2, store.saves)
	assert.Len(t, store.sessions, 1)

	t.Run("unknown student", func(t *testing.T) {
		_, err := l.Schedule().Book(ctx, "Carla", core.NewDate(2024, 1, 6), core.TimeOfDay{Hour: 9})
		require.ErrorIs(t, err, core.ErrUnknownStudent)
		require.ErrorIs(t, err, core.ErrValidation)
		assert.Len(t, l.Schedule().ListAll(), 1)
		assert.Equal(t, 2, store.saves)
	})

	t.Run("missing date", func(t *testing.T) {
		_, err := l.Schedule().Book(ctx, "Ana", core.Date{}, core.TimeOfDay{Hour: 9})
		require.ErrorIs(t, err, core.ErrInvalidDate)
	})
}

func TestScheduleListForStudentAndMonth(t *testing.T) {
	ctx := context.Background()
	l := openLedger(t, &memStore{})
	_, err := l.Roster().Register(ctx, "Ana", 1, price(10000))
	require.NoError(t, err)
	_, err = l.Roster().Register(ctx, "Bruno", 1, price(5000))
	require.NoError(t, err)

	sched := l.Schedule()
	for _, b := range []struct {
		name string
		date core.Date
	}{
		{"Ana", core.NewDate(2024, 1, 5)},
		{"Ana", core.NewDate(2024, 2, 10)},
		{"Bruno", core.NewDate(2024, 1, 7)},
		{"Ana", core.NewDate(2024, 1, 20)},
	} {
		_, err := sched.Book(ctx, b.name, b.date, core.TimeOfDay{Hour: 10})
		require.NoError(t, err)
	}

	jan := core.YearMonth{Year: 2024, Month: time.January}
	got := sched.ListForStudentAndMonth("Ana", jan)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-05", got[0].Date.String())
	assert.Equal(t, "2024-01-20", got[1].Date.String())

	assert.Len(t, sched.ListForStudent("Ana"), 3)
	assert.Len(t, sched.ListAll(), 4)
	assert.Empty(t, sched.ListForStudentAndMonth("Ana", core.YearMonth{Year: 2023, Month: time.January}))
}

func TestSaveFailureLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	l := openLedger(t, store)
	_, err := l.Roster().Register(ctx, "Ana", 1, price(10000))
	require.NoError(t, err)

	store.saveErr = core.PersistenceError("save students", errors.New("disk full"))

	_, err = l.Roster().Register(ctx, "Bruno", 1, price(100))
	require.ErrorIs(t, err, core.ErrPersistence)
	assert.Len(t, l.Roster().List(), 1)

	_, err = l.Schedule().Book(ctx, "Ana", core.NewDate(2024, 1, 5), core.TimeOfDay{})
	require.ErrorIs(t, err, core.ErrPersistence)
	assert.Empty(t, l.Schedule().ListAll())

	require.ErrorIs(t, l.ClearAll(ctx), core.ErrPersistence)
	assert.Len(t, l.Roster().List(), 1)
	assert.Equal(t, uint64(1), l.Revision())
}

func TestClearAllIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	l := openLedger(t, store)

	_, err = l.Roster().Register(ctx, "Ana", 1, price(10000))
	require.NoError(t, err)
	_, err = l.Schedule().Book(ctx, "Ana", core.NewDate(2024, 1, 5), core.TimeOfDay{Hour: 8})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, l.ClearAll(ctx))
		assert.Empty(t, l.Roster().List())
		assert.Empty(t, l.Schedule().ListAll())

		students, sessions, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, students)
		assert.Empty(t, sessions)
	}

	// A fresh ledger over the same store sees the empty state.
	reopened := openLedger(t, store)
	assert.Empty(t, reopened.Roster().List())
}

func TestLedgerEvents(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	l := openLedger(t, &memStore{}, WithEvents(pub))
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	_, err := l.Roster().Register(ctx, "Ana", 1, price(100))
	require.NoError(t, err)
	_, err = l.Schedule().Book(ctx, "Ana", core.NewDate(2024, 1, 5), core.TimeOfDay{Hour: 14, Minute: 30})
	require.NoError(t, err)
	_, err = l.Roster().Register(ctx, "", 1, price(100))
	require.Error(t, err)
	require.NoError(t, l.ClearAll(ctx))

	require.Len(t, pub.events, 3)
	assert.Equal(t, core.EventStudentRegistered, pub.events[0].Type)
	assert.Equal(t, core.LedgerEvent{
		Type:    core.EventSessionBooked,
		Student: "Ana",
		Date:    "2024-01-05",
		Time:    "14:30:00",
		At:      fixed,
	}, pub.events[1])
	assert.Equal(t, core.EventLedgerCleared, pub.events[2].Type)

	t.Run("publish failure does not fail the mutation", func(t *testing.T) {
		pub.err = errors.New("broker down")
		_, err := l.Roster().Register(ctx, "Bruno", 1, price(100))
		require.NoError(t, err)
		assert.Len(t, l.Roster().List(), 1)
	})
}

func TestSlowPublisherDoesNotBlockReads(t *testing.T) {
	ctx := context.Background()
	pub := &blockingPublisher{started: make(chan struct{}, 1), release: make(chan struct{})}
	l := openLedger(t, &memStore{}, WithEvents(pub))

	done := make(chan error, 1)
	go func() {
		_, err := l.Roster().Register(ctx, "Ana", 1, price(100))
		done <- err
	}()

	select {
	case <-pub.started:
	case <-time.After(2 * time.Second):
		t.Fatal("publish never started")
	}

	// Register is still inside publish here.
	read := make(chan []core.Student, 1)
	go func() { read <- l.Roster().List() }()
	select {
	case students := <-read:
		require.Len(t, students, 1)
		assert.Equal(t, "Ana", students[0].Name)
	case <-time.After(time.Second):
		t.Fatal("Roster.List blocked while an event was being published")
	}
	assert.Equal(t, uint64(1), l.Revision())

	close(pub.release)
	require.NoError(t, <-done)
}

func TestLedgerClose(t *testing.T) {
	store := &memStore{}
	pub := &recordingPublisher{}
	l := openLedger(t, store, WithEvents(pub))
	require.NoError(t, l.Close())
	assert.True(t, store.closed)
	assert.True(t, pub.closed)
}
