// Package export writes forecast snapshots as CSV, JSON or PDF reports.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/domain"
	"github.com/RahulBhaskar05/lugXieee-datathon/internal/service"
)

// Supported formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatPDF  = "pdf"
)

// Exporter writes reports into a directory
type Exporter struct {
	dir string
}

// NewExporter creates an exporter. An empty dir means the working directory.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes snap in every requested format and returns the absolute paths
func (e *Exporter) Export(snap service.Snapshot, base string, formats ...string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(f) {
		case FormatCSV:
			path, err = e.ToCSV(snap, base)
		case FormatJSON:
			path, err = e.ToJSON(snap, base)
		case FormatPDF:
			path, err = e.ToPDF(snap, base)
		default:
			err = fmt.Errorf("export: unsupported format %q", f)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// row is one line of the flat report
type row struct {
	kind   domain.ForecastKind
	key    string
	status string
	res    *domain.ForecastResult
	note   string
}

func rows(snap service.Snapshot) []row {
	var out []row
	if snap.Sales != nil {
		out = append(out, row{kind: domain.KindSales, key: "store", status: "ok", res: snap.Sales})
	} else if snap.SalesError != "" {
		out = append(out, row{kind: domain.KindSales, key: "store", status: "error", note: snap.SalesError})
	}
	for _, b := range []struct {
		kind  domain.ForecastKind
		batch domain.GroupForecastBatch
	}{
		{domain.KindCategorySales, snap.CategorySales},
		{domain.KindProductDemand, snap.ProductDemand},
	} {
		for i := range b.batch.Results {
			g := &b.batch.Results[i]
			out = append(out, row{kind: b.kind, key: g.Key, status: "ok", res: &g.ForecastResult})
		}
		for _, s := range b.batch.Skipped {
			out = append(out, row{kind: b.kind, key: s.Key, status: "skipped", note: s.Reason})
		}
	}
	return out
}

var csvHeader = []string{
	"Kind", "Key", "Status", "Metric", "Last Period", "Last Value",
	"Predicted Period", "Predicted Value", "Growth Rate", "R2", "MAE", "RMSE", "MAPE", "Model", "Note",
}

// ToCSV writes one line per forecast or skipped key
func (e *Exporter) ToCSV(snap service.Snapshot, base string) (string, error) {
	outputFilename, err := generateFilename(base, e.dir, FormatCSV, snap)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("export: failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", fmt.Errorf("export: failed to write CSV header: %w", err)
	}
	for _, r := range rows(snap) {
		record := []string{string(r.kind), r.key, r.status, "", "", "", "", "", "", "", "", "", "", "", r.note}
		if res := r.res; res != nil {
			record[3] = string(res.Metric)
			record[4] = res.LastPeriod.String()
			record[5] = ftoa(res.LastValue)
			record[6] = res.PredictedPeriod.String()
			record[7] = ftoa(res.PredictedValue)
			record[8] = ftoa(res.GrowthRate)
			record[9] = ftoa(res.R2)
			record[10] = ftoa(res.MAE)
			record[11] = ftoa(res.RMSE)
			record[12] = ftoa(res.MAPE)
			record[13] = res.Model
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("export: failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("export: failed to flush CSV: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ToJSON writes the snapshot as indented JSON
func (e *Exporter) ToJSON(snap service.Snapshot, base string) (string, error) {
	outputFilename, err := generateFilename(base, e.dir, FormatJSON, snap)
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("export: failed to create JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return "", fmt.Errorf("export: failed to encode JSON: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ToPDF renders a one-section-per-kind report
func (e *Exporter) ToPDF(snap service.Snapshot, base string) (string, error) {
	outputFilename, err := generateFilename(base, e.dir, FormatPDF, snap)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, tr(domain.MetricsNote), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Sales Forecast Report"), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Generated %s from %d orders (last order %s)",
		snap.GeneratedAt.Format("2006-01-02 15:04 MST"), snap.DatasetOrders, snap.DatasetLastDate.Format("2006-01-02"))),
		"", 1, "L", true, 0, "")
	pdf.Ln(6)

	widths := []float64{60, 22, 30, 22, 30, 26}
	header := []string{"Key", "Last", "Last Value", "Next", "Predicted", "Growth"}

	section := func(title string, kind domain.ForecastKind) {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		for i, h := range header {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		var notes []string
		for _, r := range rows(snap) {
			if r.kind != kind {
				continue
			}
			if r.res == nil {
				notes = append(notes, fmt.Sprintf("%s: %s", r.key, r.note))
				continue
			}
			pdf.CellFormat(widths[0], 6, tr(truncate(r.key, 34)), "1", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 6, r.res.LastPeriod.String(), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", r.res.LastValue), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[3], 6, r.res.PredictedPeriod.String(), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", r.res.PredictedValue), "1", 0, "R", false, 0, "")
			pdf.CellFormat(widths[5], 6, fmt.Sprintf("%+.1f%%", r.res.GrowthRate*100), "1", 1, "R", false, 0, "")
		}
		if len(notes) > 0 {
			pdf.SetFont("Arial", "I", 8)
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(190, 4, tr("Not forecast: "+strings.Join(notes, "; ")), "", "L", false)
		}
		pdf.Ln(6)
	}

	section("Whole-store revenue", domain.KindSales)
	section("Revenue by category", domain.KindCategorySales)
	section("Demand for top products (units)", domain.KindProductDemand)

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("export: failed to write PDF: %w", err)
	}
	return filepath.Abs(outputFilename)
}

func generateFilename(base, dir, ext string, snap service.Snapshot) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("export: could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: failed to create output directory %q: %w", dir, err)
	}
	if base == "" {
		base = "forecast"
	}
	filename := fmt.Sprintf("%s_%s.%s", base, snap.GeneratedAt.Format("20060102_150405"), ext)
	return filepath.Join(dir, filename), nil
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
