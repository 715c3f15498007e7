// Package report builds the monthly per-student class report and renders it
// into downloadable documents.
//
// Billing is flat: the month total is always the student's package price,
// whatever the number of sessions booked in that month.
package report

import (
	"fmt"

	"aulas/internal/core"
)

// StudentFinder resolves a student by exact name.
type StudentFinder interface {
	FindByName(name string) (core.Student, bool)
}

// SessionLister lists one student's sessions in a month, in booking order.
type SessionLister interface {
	ListForStudentAndMonth(name string, month core.YearMonth) []core.Session
}

// Report is the data behind one monthly document.
type Report struct {
	Student  core.Student
	Month    core.YearMonth
	Sessions []core.Session
}

func (r Report) SessionCount() int { return len(r.Sessions) }

// Total is what the student owes for the month.
func (r Report) Total() core.Money { return r.Student.PackagePrice }

func (r Report) Title() string {
	return "Relatório de Aulas - " + r.Student.Name
}

// Header returns the summary lines that precede the session details.
func (r Report) Header() []string {
	return []string{
		r.Title(),
		"Mês: " + r.Month.String(),
		fmt.Sprintf("Total de Aulas no Mês: %d", r.SessionCount()),
		"Valor Total das Aulas: R$" + r.Total().String(),
		"Valor do Pacote Mensal: R$" + r.Student.PackagePrice.String(),
		"Detalhes das Aulas:",
	}
}

// SessionLine formats one entry of the details list.
func SessionLine(s core.Session) string {
	return fmt.Sprintf("Data: %s - Hora: %s", s.Date, s.Time)
}

// Lines is the full text of the report, one entry per printed line.
func (r Report) Lines() []string {
	lines := r.Header()
	for _, s := range r.Sessions {
		lines = append(lines, SessionLine(s))
	}
	return lines
}

// Generator assembles reports from the roster and the schedule.
type Generator struct {
	students StudentFinder
	sessions SessionLister
}

func NewGenerator(students StudentFinder, sessions SessionLister) *Generator {
	return &Generator{students: students, sessions: sessions}
}

// Generate returns core.ErrStudentNotFound when no student has that name.
// A month without sessions is still a valid report.
func (g *Generator) Generate(studentName string, month core.YearMonth) (Report, error) {
	student, ok := g.students.FindByName(studentName)
	if !ok {
		return Report{}, fmt.Errorf("%w: %q", core.ErrStudentNotFound, studentName)
	}
	return Report{
		Student:  student,
		Month:    month,
		Sessions: g.sessions.ListForStudentAndMonth(studentName, month),
	}, nil
}
