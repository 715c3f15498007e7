package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// YearMonth identifies a calendar month for reporting.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ParseYearMonth reads MM-AAAA. AAAA-MM is accepted as well since older
// forms asked for it.
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	monthPart, yearPart := parts[0], parts[1]
	if len(monthPart) == 4 && len(yearPart) == 2 {
		monthPart, yearPart = yearPart, monthPart
	}
	if len(monthPart) != 2 || len(yearPart) != 4 || !allDigits(monthPart) || !allDigits(yearPart) {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || year < 1 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders MM-AAAA.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%02d-%04d", int(ym.Month), ym.Year)
}

// Key renders AAAA-MM, the prefix of a stored session date.
func (ym YearMonth) Key() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Contains reports whether d falls inside the month.
func (ym YearMonth) Contains(d Date) bool {
	return strings.HasPrefix(d.String(), ym.Key())
}
