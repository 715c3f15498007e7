package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type (
	Date struct {
		time.Time
	}

	// TimeOfDay is a wall clock time without a date.
	TimeOfDay struct {
		Hour   int
		Minute int
		Second int
	}

	Student struct {
		Name              string
		WeeklyPackageSize int
		PackagePrice      Money // flat monthly fee
	}

	Session struct {
		StudentName string
		Date        Date
		Time        TimeOfDay
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in AAAA-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date as AAAA-MM-DD, the form sessions are stored and compared in.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth returns the month the date falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	layout := timeLayout
	if strings.Count(s, ":") == 1 {
		layout = "15:04"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return ErrInvalidTime
	}
	return nil
}

// String renders HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.WeeklyPackageSize <= 0 {
		return ErrInvalidPackage
	}
	if err := s.PackagePrice.Validate(); err != nil {
		return err
	}
	return nil
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.StudentName) == "" {
		return ErrEmptyName
	}
	if err := s.Date.Validate(); err != nil {
		return err
	}
	return s.Time.Validate()
}
