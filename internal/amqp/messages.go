package amqp

import (
	"encoding/json"
	"time"

	"tabung/internal/services"
)

// LedgerEvent is the wire form of a committed ledger mutation. Consumers
// read the affected rows back from the ledger; the message carries only
// identifiers.
type LedgerEvent struct {
	Type        string    `json:"type"`
	ID          int64     `json:"id,omitempty"`
	ArchiveDate time.Time `json:"archive_date,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(eventType string, id int64) *LedgerEvent {
	return &LedgerEvent{
		Type:      eventType,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// FromServiceEvent converts a ledger event into its wire form.
func FromServiceEvent(ev services.Event) *LedgerEvent {
	msg := &LedgerEvent{
		Type:        ev.Type,
		ID:          ev.ID,
		ArchiveDate: ev.ArchiveDate,
		Timestamp:   ev.Timestamp,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON creates a message from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
