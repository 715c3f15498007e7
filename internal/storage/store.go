// Package storage persists the two ledger collections, students and sessions.
//
// A Store always rewrites both collections in full; there is no partial
// update. A location that does not exist yet loads as an empty collection.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"aulas/internal/core"
)

type Store interface {
	Load(ctx context.Context) ([]core.Student, []core.Session, error)
	Save(ctx context.Context, students []core.Student, sessions []core.Session) error
	Close() error
}

// studentRecord and sessionRecord are the persisted shapes. Field names are
// part of the on-disk format.
type studentRecord struct {
	Nome   string      `json:"Nome"`
	Pacote int         `json:"Pacote"`
	Valor  json.Number `json:"Valor"`
}

type sessionRecord struct {
	Nome string `json:"Nome"`
	Data string `json:"Data"`
	Hora string `json:"Hora"`
}

func toStudentRecords(in []core.Student) []studentRecord {
	out := make([]studentRecord, len(in))
	for i, s := range in {
		out[i] = studentRecord{
			Nome:   s.Name,
			Pacote: s.WeeklyPackageSize,
			Valor:  jsonCents(s.PackagePrice.Cents),
		}
	}
	return out
}

// jsonCents renders cents as a two-decimal JSON number, e.g. 100.00.
func jsonCents(cents int64) json.Number {
	return json.Number(core.Money{Cents: cents}.String())
}

func fromStudentRecords(in []studentRecord) ([]core.Student, error) {
	out := make([]core.Student, len(in))
	for i, r := range in {
		price, err := core.ParseMoney(string(r.Valor))
		if err != nil {
			return nil, fmt.Errorf("student %d (%s): valor %q: %w", i, r.Nome, r.Valor, err)
		}
		out[i] = core.Student{Name: r.Nome, WeeklyPackageSize: r.Pacote, PackagePrice: price}
	}
	return out, nil
}

func toSessionRecords(in []core.Session) []sessionRecord {
	out := make([]sessionRecord, len(in))
	for i, s := range in {
		out[i] = sessionRecord{Nome: s.StudentName, Data: s.Date.String(), Hora: s.Time.String()}
	}
	return out
}

func fromSessionRecords(in []sessionRecord) ([]core.Session, error) {
	out := make([]core.Session, len(in))
	for i, r := range in {
		d, err := core.ParseDate(r.Data)
		if err != nil {
			return nil, fmt.Errorf("session %d (%s): %w", i, r.Nome, err)
		}
		t, err := core.ParseTimeOfDay(r.Hora)
		if err != nil {
			return nil, fmt.Errorf("session %d (%s): %w", i, r.Nome, err)
		}
		out[i] = core.Session{StudentName: r.Nome, Date: d, Time: t}
	}
	return out, nil
}
