package batch

import (
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"suaplinks/internal/processo"
)

// Report summarizes a finished run.
type Report struct {
	OutputPath string
	Outcomes   []processo.Outcome
	Total      int
	Found      int
	Elapsed    time.Duration
}

// Missing returns how many identifiers ended without a link.
func (r *Report) Missing() int {
	return r.Total - r.Found
}

// Table renders the summary for the terminal.
func (r *Report) Table() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Resumo", "Valor"})
	tw.AppendRows([]table.Row{
		{"Processos", strconv.Itoa(r.Total)},
		{"Encontrados", strconv.Itoa(r.Found)},
		{processo.NotFound, strconv.Itoa(r.Missing())},
		{"Duração", r.Elapsed.Round(time.Second).String()},
		{"Arquivo", r.OutputPath},
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
