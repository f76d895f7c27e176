package view

import "financas/internal/core"

type Card struct {
	Title string
	Value string
}

// Cards returns the three summary cards of the dashboard.
func Cards(d core.Dashboard) []Card {
	return []Card{
		{Title: "Despesas Fixas", Value: core.FormatBRL(d.FixedExpenses)},
		{Title: "Despesas Mensais", Value: core.FormatBRL(d.MonthlyExpenses)},
		{Title: "Despesas do Próximo Mês", Value: core.FormatBRL(d.NextMonthExpenses)},
	}
}

type Bar struct {
	Label   string
	Value   string
	Cents   int64
	Percent int
}

type Chart struct {
	Title string
	Bars  []Bar
}

func (c Chart) Empty() bool { return len(c.Bars) == 0 }

// BarChart scales each bar against the largest spend. Non-zero bars are at
// least 2% tall so they stay visible.
func BarChart(spents []core.CategorySpend) Chart {
	var maxCents int64
	for _, s := range spents {
		if s.Spent > maxCents {
			maxCents = s.Spent
		}
	}

	chart := Chart{Title: "Gastos por categoria", Bars: make([]Bar, 0, len(spents))}
	for _, s := range spents {
		percent := 0
		if maxCents > 0 && s.Spent > 0 {
			percent = int((s.Spent*100 + maxCents/2) / maxCents)
			if percent < 2 {
				percent = 2
			}
			if percent > 100 {
				percent = 100
			}
		}
		chart.Bars = append(chart.Bars, Bar{
			Label:   s.Category,
			Value:   core.FormatBRL(s.Spent),
			Cents:   s.Spent,
			Percent: percent,
		})
	}
	return chart
}

// Dashboard is what the dashboard partial template consumes.
type Dashboard struct {
	Cards []Card
	Chart Chart
	State State
	Err   string
}

func (d Dashboard) Failed() bool { return d.State == Failed }

func NewDashboard(d core.Dashboard) Dashboard {
	return Dashboard{Cards: Cards(d), Chart: BarChart(d.SpentsByCategory), State: Loaded}
}

func ErrorDashboard(err error) Dashboard {
	msg := "Não foi possível carregar o painel"
	if err != nil {
		msg += ": " + err.Error()
	}
	return Dashboard{State: Failed, Err: msg}
}
