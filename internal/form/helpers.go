package form

import (
	"time"

	"financas/internal/core"
	"financas/internal/schema"
)

// keepValues copies the submitted text back into the form so a rejected
// submit re-renders what the user typed.
func keepValues(values map[string]string, in schema.Input, fields ...string) {
	for _, k := range fields {
		if s, ok := in.String(k); ok {
			values[k] = s
		} else {
			values[k] = ""
		}
	}
}

func firstID(ids ...*int64) *int64 {
	for _, id := range ids {
		if id != nil {
			return id
		}
	}
	return nil
}

func now(fn func() time.Time) time.Time {
	if fn != nil {
		return fn()
	}
	return time.Now()
}

func withOutcome(m core.Mutation, err error) core.Mutation {
	if err != nil {
		m.Outcome = core.OutcomeError
		m.Error = err.Error()
		return m
	}
	m.Outcome = core.OutcomeOK
	return m
}
