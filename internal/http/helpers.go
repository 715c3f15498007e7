package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"aulas/internal/core"
	"aulas/internal/log"
)

// sanitizeInput trims whitespace and drops control characters other than
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// statusForError maps the core error categories to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// messageForError is the user-facing text for err. Internal failures are
// not echoed back.
func messageForError(err error) string {
	switch {
	case errors.Is(err, core.ErrValidation):
		return "Dados inválidos: " + err.Error()
	case errors.Is(err, core.ErrNotFound):
		return "Aluno não encontrado"
	default:
		return "Erro ao salvar os dados"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldError, err)
	}
	ErrorResponse(status, messageForError(err)).Write(w)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response", log.FieldError, err)
	}
}

// studentJSON and sessionJSON keep the field names of the on-disk records.
type studentJSON struct {
	Nome   string      `json:"Nome"`
	Pacote int         `json:"Pacote"`
	Valor  json.Number `json:"Valor"`
}

type sessionJSON struct {
	Nome string `json:"Nome"`
	Data string `json:"Data"`
	Hora string `json:"Hora"`
}

func toStudentJSON(in []core.Student) []studentJSON {
	out := make([]studentJSON, 0, len(in))
	for _, s := range in {
		out = append(out, studentJSON{Nome: s.Name, Pacote: s.WeeklyPackageSize, Valor: json.Number(s.PackagePrice.String())})
	}
	return out
}

func toSessionJSON(in []core.Session) []sessionJSON {
	out := make([]sessionJSON, 0, len(in))
	for _, s := range in {
		out = append(out, sessionJSON{Nome: s.StudentName, Data: s.Date.String(), Hora: s.Time.String()})
	}
	return out
}
