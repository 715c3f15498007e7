package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"aulas/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the two collections in the alunos and aulas tables.
// Rows are read back in id order, which is insertion order.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (r *SQLiteStore) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteStore) Load(ctx context.Context) ([]core.Student, []core.Session, error) {
	studentRecs, err := r.loadStudents(ctx)
	if err != nil {
		return nil, nil, core.PersistenceError("load students", err)
	}
	sessionRecs, err := r.loadSessions(ctx)
	if err != nil {
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

	slog.DebugContext(ctx, "Ledger loaded from SQLite",
		"students", len(students),
		"sessions", len(sessions))
	return students, sessions, nil
}

func (r *SQLiteStore) loadStudents(ctx context.Context) ([]studentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT nome, pacote, valor_cents FROM alunos ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []studentRecord
	for rows.Next() {
		var (
			rec   studentRecord
			cents int64
		)
		if err := rows.Scan(&rec.Nome, &rec.Pacote, &cents); err != nil {
			return nil, err
		}
		rec.Valor = jsonCents(cents)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteStore) loadSessions(ctx context.Context) ([]sessionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT nome, data, hora FROM aulas ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sessionRecord
	for rows.Next() {
		var rec sessionRecord
		if err := rows.Scan(&rec.Nome, &rec.Data, &rec.Hora); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Save replaces both tables inside one transaction.
func (r *SQLiteStore) Save(ctx context.Context, students []core.Student, sessions []core.Session) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.PersistenceError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alunos`); err != nil {
		return core.PersistenceError("clear students", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM aulas`); err != nil {
		return core.PersistenceError("clear sessions", err)
	}

	for _, s := range students {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO alunos (nome, pacote, valor_cents) VALUES (?, ?, ?)`,
			s.Name, s.WeeklyPackageSize, s.PackagePrice.Cents); err != nil {
			return core.PersistenceError("save students", err)
		}
	}
	for _, s := range toSessionRecords(sessions) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO aulas (nome, data, hora) VALUES (?, ?, ?)`,
			s.Nome, s.Data, s.Hora); err != nil {
			return core.PersistenceError("save sessions", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.PersistenceError("commit", err)
	}
	return nil
}
