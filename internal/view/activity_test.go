package view

import (
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/storage"
)

func TestActivityTable(t *testing.T) {
	at := time.Date(2024, 5, 10, 12, 30, 0, 0, time.Local)
	entries := []storage.Entry{
		{ID: 2, Mutation: core.Mutation{
			Resource: core.ResourceTransaction, Operation: core.OperationUpdate,
			EntityID: core.Int64(9), Title: "Luz", Outcome: core.OutcomeError, Error: "status 500", At: at,
		}},
		{ID: 1, Mutation: core.Mutation{
			Resource: core.ResourceCategory, Operation: core.OperationCreate,
			Title: "Casa", Outcome: core.OutcomeOK, At: at,
		}},
	}

	table := NewTable(entries, ActivityColumns())
	if len(table.Rows) != 2 {
		t.Fatalf("rows = %d", len(table.Rows))
	}

	failed := table.Rows[0].Cells
	if failed[0].Text != "10/05/2024 12:30" {
		t.Errorf("when = %q", failed[0].Text)
	}
	if failed[1].Text != "Transação" || failed[2].Text != "Atualização" || failed[3].Text != "9" {
		t.Errorf("failed row = %+v", failed)
	}
	if failed[5].Text != "Erro: status 500" || failed[5].Class != "outcome-error" {
		t.Errorf("outcome = %+v", failed[5])
	}

	ok := table.Rows[1].Cells
	if ok[1].Text != "Categoria" || ok[2].Text != "Criação" || ok[3].Text != "" || ok[5].Text != "OK" {
		t.Errorf("ok row = %+v", ok)
	}
}
