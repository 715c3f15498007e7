package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"aulas/internal/core"
)

const (
	StudentsFile = "alunos.json"
	SessionsFile = "aulas.json"
)

// FileStore keeps each collection in its own JSON file under a directory.
// Each file is replaced atomically via rename; the pair is not.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, core.PersistenceError("create data directory", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Load(ctx context.Context) ([]core.Student, []core.Session, error) {
	var studentRecs []studentRecord
	if err := readJSON(filepath.Join(s.dir, StudentsFile), &studentRecs); err != nil {
		return nil, nil, core.PersistenceError("load students", err)
	}
	var sessionRecs []sessionRecord
	if err := readJSON(filepath.Join(s.dir, SessionsFile), &sessionRecs); err != nil {
		return nil, nil, core.PersistenceError("load sessions", err)
	}

	students, err := fromStudentRecords(studentRecs)
	if err != nil {
		return nil, nil, core.PersistenceError("decode students", err)
	}
	sessions, err := fromSessionRecords(sessionRecs)
	if err != nil {
		return nil, nil, core.PersistenceError("decode sessions", err)
	}

	slog.DebugContext(ctx, "Ledger loaded from files",
		"dir", s.dir,
		"students", len(students),
		"sessions", len(sessions))
	return students, sessions, nil
}

func (s *FileStore) Save(ctx context.Context, students []core.Student, sessions []core.Session) error {
	if err := writeJSONAtomic(filepath.Join(s.dir, StudentsFile), toStudentRecords(students)); err != nil {
		return core.PersistenceError("save students", err)
	}
	if err := writeJSONAtomic(filepath.Join(s.dir, SessionsFile), toSessionRecords(sessions)); err != nil {
		return core.PersistenceError("save sessions", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// readJSON leaves v untouched when path does not exist.
func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSONAtomic(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
