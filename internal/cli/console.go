package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/service"
)

const barWidth = 40

// statusHandle reports progress through a spinner on interactive terminals
// and through plain pterm messages otherwise.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// spinnerEnabled reports whether an animated spinner can be shown. The
// spinner redraws from its own goroutine, so it stays off when output is
// disabled or stdout is not a terminal.
func spinnerEnabled() bool {
	return pterm.Output && term.IsTerminal(int(os.Stdout.Fd()))
}

func newStatus(message string) *statusHandle {
	if !spinnerEnabled() {
		pterm.Info.Println(message)
		return &statusHandle{}
	}
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
		return
	}
	pterm.Info.Println(message)
}

func (h *statusHandle) Success(message string) {
	if h.spinner != nil {
		h.spinner.Success(message)
		return
	}
	pterm.Success.Println(message)
}

func (h *statusHandle) Fail(message string) {
	if h.spinner != nil {
		h.spinner.Fail(message)
		return
	}
	pterm.Error.Println(message)
}

var forecastHeader = []string{"Key", "Last", "Last Value", "Next", "Predicted", "Growth", "R2", "MAPE"}

func forecastRow(key string, res domain.ForecastResult) []string {
	growth := fmt.Sprintf("%+.2f%%", res.GrowthRate*100)
	switch {
	case res.GrowthRate > 0:
		growth = pterm.FgGreen.Sprint(growth)
	case res.GrowthRate < 0:
		growth = pterm.FgRed.Sprint(growth)
	}
	return []string{
		key,
		res.LastPeriod.String(),
		fmt.Sprintf("%.2f", res.LastValue),
		res.PredictedPeriod.String(),
		fmt.Sprintf("%.2f", res.PredictedValue),
		growth,
		fmt.Sprintf("%.3f", res.R2),
		fmt.Sprintf("%.1f%%", res.MAPE*100),
	}
}

// snapshotTables lays a snapshot out as one table per forecast kind
func snapshotTables(snap service.Snapshot) map[domain.ForecastKind]pterm.TableData {
	out := make(map[domain.ForecastKind]pterm.TableData, 3)

	store := pterm.TableData{forecastHeader}
	if snap.Sales != nil {
		store = append(store, forecastRow("store", *snap.Sales))
	}
	out[domain.KindSales] = store

	for kind, batch := range map[domain.ForecastKind]domain.GroupForecastBatch{
		domain.KindCategorySales: snap.CategorySales,
		domain.KindProductDemand: snap.ProductDemand,
	} {
		data := pterm.TableData{forecastHeader}
		for _, g := range batch.Results {
			data = append(data, forecastRow(g.Key, g.ForecastResult))
		}
		out[kind] = data
	}
	return out
}

// summaryTable shows recent months as bars with month-over-month change
func summaryTable(sum domain.MonthlySummary) pterm.TableData {
	data := pterm.TableData{{"Month", "Revenue", "", "MoM Change"}}

	maxValue := 0.0
	for _, p := range sum.Recent {
		if p.Value > maxValue {
			maxValue = p.Value
		}
	}

	for i, p := range sum.Recent {
		bar := ""
		if maxValue > 0 && p.Value > 0 {
			bar = pterm.FgBlue.Sprint(strings.Repeat("█", int(p.Value/maxValue*barWidth)))
		}
		change := ""
		if i > 0 {
			prev := sum.Recent[i-1].Value
			switch {
			case prev == 0:
				change = "N/A"
			default:
				pct := (p.Value - prev) / prev * 100
				if pct >= 0 {
					change = pterm.FgGreen.Sprintf("+%.2f%%", pct)
				} else {
					change = pterm.FgRed.Sprintf("%.2f%%", pct)
				}
			}
		}
		data = append(data, []string{p.Period.String(), fmt.Sprintf("$%.2f", p.Value), bar, change})
	}
	return data
}

func renderTable(w io.Writer, title string, data pterm.TableData) {
	if len(data) <= 1 {
		pterm.Warning.Printfln("%s: nothing to show", title)
		return
	}
	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(data).
		Srender()
	if err != nil {
		pterm.Error.Printfln("%s: %v", title, err)
		return
	}
	fmt.Fprintln(w, pterm.DefaultSection.Sprint(title))
	fmt.Fprintln(w, table)
}

// printSnapshot writes every forecast table followed by the keys left out
func printSnapshot(w io.Writer, snap service.Snapshot) {
	tables := snapshotTables(snap)

	renderTable(w, "Whole-store revenue", tables[domain.KindSales])
	if snap.SalesError != "" {
		pterm.Warning.Printfln("Store forecast unavailable: %s", snap.SalesError)
	}
	renderTable(w, "Revenue by category", tables[domain.KindCategorySales])
	renderTable(w, "Demand for top products (units)", tables[domain.KindProductDemand])

	for _, batch := range []domain.GroupForecastBatch{snap.CategorySales, snap.ProductDemand} {
		for _, s := range batch.Skipped {
			pterm.Info.Printfln("Skipped %s %q: %s", batch.GroupBy, s.Key, s.Reason)
		}
	}
	fmt.Fprintln(w, pterm.FgGray.Sprint(domain.MetricsNote))
}

// printSummary writes the recent monthly revenue panel
func printSummary(w io.Writer, sum domain.MonthlySummary) {
	table, err := pterm.DefaultTable.WithHasHeader().WithData(summaryTable(sum)).Srender()
	if err != nil {
		pterm.Error.Printfln("summary: %v", err)
		return
	}
	footer := fmt.Sprintf("\n3-month average: $%.2f\n6-month average: $%.2f\nData range: %s to %s (%d months)",
		sum.Avg3, sum.Avg6, sum.FirstDate.Format("2006-01-02"), sum.LastDate.Format("2006-01-02"), sum.Months)

	panel := pterm.DefaultBox.
		WithTitle("Recent Monthly Revenue").
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Sprint(table + footer)
	fmt.Fprintln(w, "\n"+panel)
}
