// Package events announces committed ledger changes to interested
// consumers: the audit log and, when configured, an AMQP exchange.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names what happened.
type Type string

const (
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
	TransferCreated    Type = "transfer.created"
	ImportCompleted    Type = "import.completed"
)

// Event is a committed ledger change.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       Type              `json:"type"`
	OrgID      int64             `json:"org_id"`
	EntityID   int64             `json:"entity_id"`
	Amount     decimal.Decimal   `json:"amount"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// New stamps an event with a fresh ID and the current time.
func New(typ Type, orgID, entityID int64, amount decimal.Decimal, payload map[string]string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       typ,
		OrgID:      orgID,
		EntityID:   entityID,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Decode parses a JSON-encoded event.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decoding event: %w", err)
	}
	if e.ID == uuid.Nil {
		return Event{}, errors.New("decoding event: missing id")
	}
	return e, nil
}

// Publisher delivers events. Publishers are called after the change has
// been committed; a failed publish does not undo it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi delivers each event to every publisher, in order, and reports all
// failures together.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
