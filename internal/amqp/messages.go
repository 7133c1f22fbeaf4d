package amqp

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventCreated  EventType = "transaction.created"
	EventUpdated  EventType = "transaction.updated"
	EventDeleted  EventType = "transaction.deleted"
	EventImported EventType = "transactions.imported"
	EventCleared  EventType = "transactions.cleared"
)

// TransactionEvent tells consumers that stored transactions changed.
// It carries only the ID; consumers read the current state from the database.
type TransactionEvent struct {
	Type      EventType `json:"type"`
	ID        int64     `json:"id,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(t EventType, id int64) *TransactionEvent {
	return &TransactionEvent{
		Type:      t,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewBatchEvent describes a change to count transactions at once.
func NewBatchEvent(t EventType, count int) *TransactionEvent {
	return &TransactionEvent{
		Type:      t,
		Count:     count,
		Timestamp: time.Now(),
	}
}

func (m *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var msg TransactionEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
