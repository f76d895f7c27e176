// Package view turns fetched data into the rows, cards and bars the
// templates render. Nothing here talks to the API; every function is a pure
// transformation of values already loaded.
package view

import (
	"strconv"

	"financas/internal/core"
)

// EmptyPlaceholder is shown instead of a table with no rows.
const EmptyPlaceholder = "Nenhum registro encontrado"

// State of the fetch behind a table or chart.
type State int

const (
	Pending State = iota
	Loaded
	Failed
)

// Cell is one rendered table cell. Cells with an Href render as the row's
// edit action.
type Cell struct {
	Text  string
	Href  string
	Class string
}

type Row struct {
	Cells []Cell
}

// Column describes how to render one column of a collection of T.
type Column[T any] struct {
	Header string
	Cell   func(T) Cell
}

// Table is what the table partial template consumes.
type Table struct {
	Headers []string
	Rows    []Row
	State   State
	Err     string
}

// Empty reports whether a loaded table has no rows.
func (t Table) Empty() bool { return t.State == Loaded && len(t.Rows) == 0 }

func (t Table) Placeholder() string { return EmptyPlaceholder }

func (t Table) Loading() bool { return t.State == Pending }

func (t Table) Failed() bool { return t.State == Failed }

func headers[T any](cols []Column[T]) []string {
	h := make([]string, len(cols))
	for i, c := range cols {
		h[i] = c.Header
	}
	return h
}

// NewTable renders items with cols.
func NewTable[T any](items []T, cols []Column[T]) Table {
	t := Table{Headers: headers(cols), State: Loaded, Rows: make([]Row, 0, len(items))}
	for _, item := range items {
		row := Row{Cells: make([]Cell, len(cols))}
		for i, c := range cols {
			row.Cells[i] = c.Cell(item)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ErrorTable is the table shown when the collection could not be fetched.
func ErrorTable[T any](cols []Column[T], err error) Table {
	msg := "Não foi possível carregar os dados"
	if err != nil {
		msg += ": " + err.Error()
	}
	return Table{Headers: headers(cols), State: Failed, Err: msg}
}

// PendingTable is the placeholder rendered before the first fetch completes.
func PendingTable[T any](cols []Column[T]) Table {
	return Table{Headers: headers(cols), State: Pending}
}

// YesNo renders a boolean as a pt-BR label.
func YesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

func idText(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func editCell(base string, id *int64) Cell {
	if id == nil {
		return Cell{}
	}
	return Cell{Text: "Editar", Href: base + "/" + idText(id) + "/edit", Class: "action"}
}

// CategoryColumns: ID, Título, Descrição, Ações.
func CategoryColumns() []Column[core.Category] {
	return []Column[core.Category]{
		{Header: "ID", Cell: func(c core.Category) Cell { return Cell{Text: idText(c.ID)} }},
		{Header: "Título", Cell: func(c core.Category) Cell { return Cell{Text: c.Title} }},
		{Header: "Descrição", Cell: func(c core.Category) Cell { return Cell{Text: c.Description} }},
		{Header: "Ações", Cell: func(c core.Category) Cell { return editCell("/categories", c.ID) }},
	}
}

// TransactionColumns renders transactions. The category title comes from the
// denormalized category when the API sent one and from categories otherwise.
func TransactionColumns(categories []core.Category) []Column[core.Transaction] {
	titles := make(map[int64]string, len(categories))
	for _, c := range categories {
		if c.ID != nil {
			titles[*c.ID] = c.Title
		}
	}
	categoryTitle := func(t core.Transaction) string {
		if title := t.CategoryTitle(); title != "" {
			return title
		}
		return titles[t.CategoryID]
	}
	date := func(d *core.Date) string {
		if d == nil {
			return ""
		}
		return d.Display()
	}

	return []Column[core.Transaction]{
		{Header: "ID", Cell: func(t core.Transaction) Cell { return Cell{Text: idText(t.ID)} }},
		{Header: "Título", Cell: func(t core.Transaction) Cell { return Cell{Text: t.Title} }},
		{Header: "Categoria", Cell: func(t core.Transaction) Cell { return Cell{Text: categoryTitle(t)} }},
		{Header: "Movimentação", Cell: func(t core.Transaction) Cell {
			return Cell{Text: t.Movement.Label(), Class: "movement-" + string(t.Movement)}
		}},
		{Header: "Valor", Cell: func(t core.Transaction) Cell {
			return Cell{Text: core.FormatBRL(t.ValueInCents), Class: "money"}
		}},
		{Header: "Data", Cell: func(t core.Transaction) Cell { return Cell{Text: date(t.Date)} }},
		{Header: "Vencimento", Cell: func(t core.Transaction) Cell { return Cell{Text: date(t.DueDate)} }},
		{Header: "Fixa", Cell: func(t core.Transaction) Cell { return Cell{Text: YesNo(t.IsFixed)} }},
		{Header: "Paga", Cell: func(t core.Transaction) Cell { return Cell{Text: YesNo(t.IsPaid)} }},
		{Header: "Ações", Cell: func(t core.Transaction) Cell { return editCell("/transactions", t.ID) }},
	}
}
