package view

import (
	"financas/internal/core"
	"financas/internal/storage"
)

func resourceLabel(resource string) string {
	switch resource {
	case core.ResourceCategory:
		return "Categoria"
	case core.ResourceTransaction:
		return "Transação"
	}
	return resource
}

func operationLabel(op string) string {
	switch op {
	case core.OperationCreate:
		return "Criação"
	case core.OperationUpdate:
		return "Atualização"
	}
	return op
}

// ActivityColumns renders journal entries: when, what, which record and how
// it went. Failed entries carry the API error.
func ActivityColumns() []Column[storage.Entry] {
	return []Column[storage.Entry]{
		{Header: "Quando", Cell: func(e storage.Entry) Cell {
			return Cell{Text: e.At.Local().Format("02/01/2006 15:04")}
		}},
		{Header: "Recurso", Cell: func(e storage.Entry) Cell { return Cell{Text: resourceLabel(e.Resource)} }},
		{Header: "Operação", Cell: func(e storage.Entry) Cell { return Cell{Text: operationLabel(e.Operation)} }},
		{Header: "ID", Cell: func(e storage.Entry) Cell { return Cell{Text: idText(e.EntityID)} }},
		{Header: "Título", Cell: func(e storage.Entry) Cell { return Cell{Text: e.Title} }},
		{Header: "Resultado", Cell: func(e storage.Entry) Cell {
			if e.Failed() {
				return Cell{Text: "Erro: " + e.Error, Class: "outcome-error"}
			}
			return Cell{Text: "OK", Class: "outcome-ok"}
		}},
	}
}
