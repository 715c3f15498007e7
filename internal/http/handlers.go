package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"aulas/internal/core"
	"aulas/internal/log"
	"aulas/internal/report"
)

type indexData struct {
	Today    string
	Month    string
	Students []studentJSON
	Sessions []sessionJSON
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := s.now()
	data := indexData{
		Today:    now.Format("2006-01-02"),
		Month:    core.YearMonth{Year: now.Year(), Month: now.Month()}.String(),
		Students: toStudentJSON(s.ledger.Roster().List()),
		Sessions: toSessionJSON(s.ledger.Schedule().ListAll()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Index template execution failed",
			log.FieldError, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady reports templates, ledger state and rate limiter state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, httpStatus := "ready", http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ledger == nil {
		checks["ledger"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["ledger"] = map[string]any{
			"status":   "ok",
			"revision": s.ledger.Revision(),
		}
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.activeClients(),
		"status":         "ok",
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, toStudentJSON(s.ledger.Roster().List()))
}

func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if p.Err() != nil {
		writeParseError(w, p)
		return
	}

	form, err := parseStudentForm(p)
	if err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}

	st, err := s.ledger.Roster().Register(r.Context(), form.Name, form.PackageSize, form.Price)
	if err != nil {
		writeError(w, r, log.OpRegister, err)
		return
	}

	SuccessResponse(fmt.Sprintf("Aluno %s cadastrado: %d aulas por semana, R$%s", st.Name, st.WeeklyPackageSize, st.PackagePrice)).
		TriggerLedgerChanged("student", st.Name).
		TriggerFormReset().
		Write(w)
}

// handleListSessions accepts optional student and month filters.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	student := sanitizeInput(q.Get("student"))

	var (
		month    core.YearMonth
		hasMonth bool
	)
	if strings.TrimSpace(q.Get("month")) != "" {
		m, err := core.ParseYearMonth(q.Get("month"))
		if err != nil {
			writeError(w, r, log.OpList, err)
			return
		}
		month, hasMonth = m, true
	}

	schedule := s.ledger.Schedule()
	var sessions []core.Session
	switch {
	case student != "" && hasMonth:
		sessions = schedule.ListForStudentAndMonth(student, month)
	case student != "":
		sessions = schedule.ListForStudent(student)
	case hasMonth:
		for _, se := range schedule.ListAll() {
			if month.Contains(se.Date) {
				sessions = append(sessions, se)
			}
		}
	default:
		sessions = schedule.ListAll()
	}

	writeJSON(w, r, http.StatusOK, toSessionJSON(sessions))
}

func (s *Server) handleBookSession(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if p.Err() != nil {
		writeParseError(w, p)
		return
	}

	form, err := parseSessionForm(p)
	if err != nil {
		writeError(w, r, log.OpBook, err)
		return
	}

	se, err := s.ledger.Schedule().Book(r.Context(), form.Student, form.Date, form.Time)
	if err != nil {
		writeError(w, r, log.OpBook, err)
		return
	}

	SuccessResponse(fmt.Sprintf("Aula agendada para %s em %s às %s", se.StudentName, se.Date, se.Time)).
		TriggerLedgerChanged("session", se.StudentName).
		TriggerFormReset().
		Write(w)
}

// handleReport streams the monthly report of one student as an attachment.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	month, err := parseMonthQuery(q, s.now())
	if err != nil {
		writeError(w, r, log.OpRender, err)
		return
	}
	format, err := report.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, r, log.OpRender, err)
		return
	}

	doc, err := s.reports.Document(r.Context(), sanitizeInput(q.Get("student")), month, format)
	if err != nil {
		writeError(w, r, log.OpRender, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s",
		asciiFilename(doc.Filename), url.PathEscape(doc.Filename)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.ClearAll(r.Context()); err != nil {
		writeError(w, r, log.OpReset, err)
		return
	}
	SuccessResponse("Todos os dados foram apagados").
		TriggerLedgerChanged("reset", "").
		Write(w)
}

// asciiFilename replaces non-ASCII runes for the plain filename parameter;
// filename* carries the exact name.
func asciiFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
}
