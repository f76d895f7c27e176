package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"financas/internal/core"
)

// MutationMessage announces a category or transaction write that the
// finance API accepted.
type MutationMessage struct {
	ID        string    `json:"id"`
	Resource  string    `json:"resource"`
	Operation string    `json:"operation"`
	EntityID  *int64    `json:"entityId,omitempty"`
	Title     string    `json:"title,omitempty"`
	At        time.Time `json:"at"`
}

// NewMutationMessage builds a message with a fresh event id.
func NewMutationMessage(m core.Mutation) *MutationMessage {
	at := m.At
	if at.IsZero() {
		at = time.Now()
	}
	return &MutationMessage{
		ID:        uuid.NewString(),
		Resource:  m.Resource,
		Operation: m.Operation,
		EntityID:  m.EntityID,
		Title:     m.Title,
		At:        at.UTC(),
	}
}

// RoutingKey is "<resource>.<operation>".
func (m *MutationMessage) RoutingKey() string {
	return core.Mutation{Resource: m.Resource, Operation: m.Operation}.RoutingKey()
}

// ToJSON converts the message to JSON bytes
func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
