package core

import "time"

// Resources and operations a Mutation can describe.
const (
	ResourceCategory    = "category"
	ResourceTransaction = "transaction"

	OperationCreate = "create"
	OperationUpdate = "update"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Mutation records one create or update sent to the finance API.
type Mutation struct {
	Resource  string
	Operation string
	EntityID  *int64
	Title     string
	Outcome   string
	Error     string
	At        time.Time
}

// Failed reports whether the API rejected the mutation.
func (m Mutation) Failed() bool { return m.Outcome == OutcomeError }

// RoutingKey is "<resource>.<operation>", e.g. "category.create".
func (m Mutation) RoutingKey() string { return m.Resource + "." + m.Operation }
