package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/core"
)

// EventKind names what happened to a ledger row.
type EventKind string

const (
	KindRecorded EventKind = "transaction.recorded"
	KindDeleted  EventKind = "transaction.deleted"
)

// LedgerEvent is published after a successful insert or delete. Amount is
// the signed stored amount as a decimal string; it is empty for deletes.
type LedgerEvent struct {
	EventID       string    `json:"event_id"`
	Kind          EventKind `json:"kind"`
	TransactionID int64     `json:"transaction_id"`
	Date          string    `json:"date,omitempty"`
	Type          string    `json:"type,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewRecordedEvent(tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          KindRecorded,
		TransactionID: tx.ID,
		Date:          tx.Date,
		Type:          tx.Type.String(),
		Amount:        tx.Amount.StringFixed(2),
		Timestamp:     time.Now().UTC(),
	}
}

func NewDeletedEvent(id int64) *LedgerEvent {
	return &LedgerEvent{
		EventID:       uuid.NewString(),
		Kind:          KindDeleted,
		TransactionID: id,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects unknown kinds.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	switch ev.Kind {
	case KindRecorded, KindDeleted:
	default:
		return nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if _, err := uuid.Parse(ev.EventID); err != nil {
		return nil, fmt.Errorf("invalid event id %q: %w", ev.EventID, err)
	}
	return &ev, nil
}
