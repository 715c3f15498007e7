package amqp

import (
	"encoding/json"
	"time"

	"aulas/internal/core"
)

// LedgerEventMessage is the wire form of a core.LedgerEvent.
type LedgerEventMessage struct {
	Type      string    `json:"type"`
	Student   string    `json:"student,omitempty"`
	Date      string    `json:"date,omitempty"`
	Time      string    `json:"time,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEventMessage(ev core.LedgerEvent) *LedgerEventMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LedgerEventMessage{
		Type:      string(ev.Type),
		Student:   ev.Student,
		Date:      ev.Date,
		Time:      ev.Time,
		Timestamp: ts.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes a message body.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
