package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aulas/internal/core"
)

const maxBodyBytes = 1 << 16

// RequestBodyParser reads a form-encoded or JSON body once and serves its
// fields as sanitized strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	err      error
}

// NewRequestBodyParser rejects bodies over maxBodyBytes instead of truncating
// them; see TooLarge.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		return p
	}

	if len(p.body) > 0 && (p.body[0] == '{' || strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")) {
		p.jsonData = make(map[string]any)
		p.err = json.Unmarshal(p.body, &p.jsonData)
		return p
	}
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p
}

func (p *RequestBodyParser) Err() error { return p.err }

// TooLarge reports whether the body exceeded maxBodyBytes.
func (p *RequestBodyParser) TooLarge() bool {
	var maxErr *http.MaxBytesError
	return errors.As(p.err, &maxErr)
}

// writeParseError answers a body that could not be read or decoded.
func writeParseError(w http.ResponseWriter, p *RequestBodyParser) {
	if p.TooLarge() {
		ErrorResponse(http.StatusRequestEntityTooLarge, "Requisição muito grande").Write(w)
		return
	}
	ErrorResponse(http.StatusBadRequest, "Formato de requisição inválido").Write(w)
}

// Get returns a field from the JSON object or the form, whichever was sent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	return sanitizeInput(p.formData.Get(key))
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

type studentForm struct {
	Name        string
	PackageSize int
	Price       core.Money
}

// parseStudentForm reads name, package and price.
func parseStudentForm(p *RequestBodyParser) (studentForm, error) {
	f := studentForm{Name: p.Get("name")}

	pkg := p.Get("package")
	size, err := strconv.Atoi(pkg)
	if err != nil {
		return studentForm{}, fmt.Errorf("%w: %q", core.ErrInvalidPackage, pkg)
	}
	f.PackageSize = size

	if f.Price, err = core.ParseMoney(p.Get("price")); err != nil {
		return studentForm{}, err
	}
	return f, nil
}

type sessionForm struct {
	Student string
	Date    core.Date
	Time    core.TimeOfDay
}

// parseSessionForm reads student, date (AAAA-MM-DD) and time (HH:MM[:SS]).
func parseSessionForm(p *RequestBodyParser) (sessionForm, error) {
	f := sessionForm{Student: p.Get("student")}
	var err error
	if f.Date, err = core.ParseDate(p.Get("date")); err != nil {
		return sessionForm{}, err
	}
	if f.Time, err = core.ParseTimeOfDay(p.Get("time")); err != nil {
		return sessionForm{}, err
	}
	return f, nil
}

// parseMonthQuery reads the month parameter, defaulting to the month of now.
func parseMonthQuery(query url.Values, now time.Time) (core.YearMonth, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.YearMonth{Year: now.Year(), Month: now.Month()}, nil
	}
	return core.ParseYearMonth(v)
}
