package core

import "time"

type EventType string

const (
	EventStudentRegistered EventType = "student.registered"
	EventSessionBooked     EventType = "session.booked"
	EventLedgerCleared     EventType = "ledger.cleared"
)

// LedgerEvent describes a mutation that has already been persisted.
type LedgerEvent struct {
	Type    EventType
	Student string
	Date    string // AAAA-MM-DD, session events only
	Time    string // HH:MM:SS, session events only
	At      time.Time
}
