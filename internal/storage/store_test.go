package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"aulas/internal/core"
)

func sampleLedger() ([]core.Student, []core.Session) {
	students := []core.Student{
		{Name: "Ana", WeeklyPackageSize: 2, PackagePrice: core.Money{Cents: 10000}},
		{Name: "Bruno", WeeklyPackageSize: 1, PackagePrice: core.Money{Cents: 0}},
		{Name: "Ana", WeeklyPackageSize: 3, PackagePrice: core.Money{Cents: 15050}},
	}
	sessions := []core.Session{
		{StudentName: "Ana", Date: core.NewDate(2024, 1, 5), Time: core.TimeOfDay{Hour: 14, Minute: 30}},
		{StudentName: "Ana", Date: core.NewDate(2024, 2, 10), Time: core.TimeOfDay{Hour: 9}},
		{StudentName: "Bruno", Date: core.NewDate(2024, 1, 20), Time: core.TimeOfDay{Hour: 18, Minute: 15, Second: 30}},
	}
	return students, sessions
}

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
			if err != nil {
				t.Fatalf("new file store: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "aulas.db"))
			if err != nil {
				t.Fatalf("new sqlite store: %v", err)
			}
			return s
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()

			students, sessions := sampleLedger()
			if err := s.Save(ctx, students, sessions); err != nil {
				t.Fatalf("save: %v", err)
			}
			gotStudents, gotSessions, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !reflect.DeepEqual(gotStudents, students) {
				t.Fatalf("students mismatch:\n got  %+v\n want %+v", gotStudents, students)
			}
			if !reflect.DeepEqual(gotSessions, sessions) {
				t.Fatalf("sessions mismatch:\n got  %+v\n want %+v", gotSessions, sessions)
			}
		})
	}
}

func TestStoreEmptyAndOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()

			// First run: nothing persisted yet.
			students, sessions, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("first load should not fail: %v", err)
			}
			if len(students) != 0 || len(sessions) != 0 {
				t.Fatalf("expected empty ledger, got %d students %d sessions", len(students), len(sessions))
			}

			st, se := sampleLedger()
			if err := s.Save(ctx, st, se); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Save(ctx, nil, nil); err != nil {
				t.Fatalf("save empty: %v", err)
			}
			students, sessions, err = s.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(students) != 0 || len(sessions) != 0 {
				t.Fatalf("expected overwrite with empty, got %d students %d sessions", len(students), len(sessions))
			}
		})
	}
}

func TestFileStoreFormat(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	students, sessions := sampleLedger()
	if err := s.Save(context.Background(), students, sessions); err != nil {
		t.Fatalf("save: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, StudentsFile))
	if err != nil {
		t.Fatalf("read students: %v", err)
	}
	for _, want := range []string{`"Nome": "Ana"`, `"Pacote": 2`, `"Valor": 100.00`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("students file missing %s:\n%s", want, b)
		}
	}

	b, err = os.ReadFile(filepath.Join(dir, SessionsFile))
	if err != nil {
		t.Fatalf("read sessions: %v", err)
	}
	for _, want := range []string{`"Data": "2024-01-05"`, `"Hora": "14:30:00"`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("sessions file missing %s:\n%s", want, b)
		}
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileStoreOnlyOneFilePresent(t *testing.T) {
	dir := t.TempDir()
	content := `[{"Nome": "Ana", "Pacote": 1, "Valor": 80}]`
	if err := os.WriteFile(filepath.Join(dir, StudentsFile), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, _ := NewFileStore(dir)
	students, sessions, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(students) != 1 || students[0].PackagePrice.Cents != 8000 {
		t.Fatalf("unexpected students: %+v", students)
	}
	if len(sessions) != 0 {
		t.Fatalf("missing sessions file should load empty, got %+v", sessions)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, SessionsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, _ := NewFileStore(dir)
	_, _, err := s.Load(context.Background())
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestFileStoreSaveFailure(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewFileStore(dir)
	// Replace the directory with a file so writes fail.
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	students, sessions := sampleLedger()
	err := s.Save(context.Background(), students, sessions)
	if !errors.Is(err, core.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
