// Package export renders a statement's transactions as CSV or XLSX downloads.
package export

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
)

// Format is a supported export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
	amountFormat      = "#,##0.00"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat resolves a format query value. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX), "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName derives the download name from the uploaded file name.
func (f Format) FileName(original string) string {
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "statement"
	}
	return base + "_transactions." + string(f)
}

// Row is one exported transaction.
type Row struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
	Category    string `csv:"category"`
}

// Rows flattens the record's transactions in document order. A missing amount
// exports as an empty cell.
func Rows(rec parser.StatementRecord) []Row {
	rows := make([]Row, 0, len(rec.Transactions))
	for _, tx := range rec.Transactions {
		row := Row{Date: tx.Date, Description: tx.Description, Category: tx.Category}
		if tx.Amount != nil {
			row.Amount = *tx.Amount
		}
		rows = append(rows, row)
	}
	return rows
}

// Write renders rec in the given format.
func Write(w io.Writer, format Format, rec parser.StatementRecord) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rec)
	case FormatXLSX:
		return WriteXLSX(w, rec)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// WriteCSV writes a header line and one line per transaction.
func WriteCSV(w io.Writer, rec parser.StatementRecord) error {
	rows := Rows(rec)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a Transactions sheet and a Summary sheet of
// bucket totals.
func WriteXLSX(w io.Writer, rec parser.StatementRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeTransactions(f, styles, rec); err != nil {
		return err
	}
	if err := writeSummary(f, styles, rec); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write XLSX: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header int
	amount int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	format := amountFormat
	amount, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create amount style: %w", err)
	}
	return sheetStyles{header: header, amount: amount}, nil
}

func writeTransactions(f *excelize.File, styles sheetStyles, rec parser.StatementRecord) error {
	header := []interface{}{"Date", "Description", "Amount", "Category"}
	if err := f.SetSheetRow(transactionsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(transactionsSheet, "A1", "D1", styles.header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, tx := range rec.Transactions {
		rowNum := i + 2
		row := []interface{}{tx.Date, tx.Description, nil, tx.Category}
		if tx.Amount != nil {
			amount, err := decimal.NewFromString(*tx.Amount)
			if err != nil {
				return fmt.Errorf("invalid amount on row %d: %w", rowNum, err)
			}
			row[2] = amount.InexactFloat64()
		}

		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(transactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
	}

	if n := len(rec.Transactions); n > 0 {
		last, _ := excelize.CoordinatesToCellName(3, n+1)
		if err := f.SetCellStyle(transactionsSheet, "C2", last, styles.amount); err != nil {
			return fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	if err := f.SetColWidth(transactionsSheet, "B", "B", 48); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	return f.SetColWidth(transactionsSheet, "D", "D", 18)
}

func writeSummary(f *excelize.File, styles sheetStyles, rec parser.StatementRecord) error {
	header := []interface{}{"Category", "Total"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", styles.header); err != nil {
		return fmt.Errorf("failed to style summary header: %w", err)
	}

	type line struct {
		label string
		value string
	}
	lines := make([]line, 0, len(parser.Categories)+2)
	for _, c := range parser.Categories {
		lines = append(lines, line{label: string(c), value: rec.Categorized[string(c)]})
	}
	lines = append(lines,
		line{label: "total_incoming", value: rec.TotalIncoming},
		line{label: "total_outgoing", value: rec.TotalOutgoing},
	)

	rowNum := 2
	for _, l := range lines {
		total := decimal.Zero
		if l.value != "" {
			d, err := decimal.NewFromString(l.value)
			if err != nil {
				return fmt.Errorf("invalid total for %s: %w", l.label, err)
			}
			total = d
		}
		row := []interface{}{l.label, total.InexactFloat64()}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
		rowNum++
	}

	last, _ := excelize.CoordinatesToCellName(2, rowNum-1)
	if err := f.SetCellStyle(summarySheet, "B2", last, styles.amount); err != nil {
		return fmt.Errorf("failed to style totals: %w", err)
	}

	if rec.PeriodStart != nil && rec.PeriodEnd != nil {
		period := []interface{}{"period", *rec.PeriodStart + " - " + *rec.PeriodEnd}
		cell, _ := excelize.CoordinatesToCellName(1, rowNum+1)
		if err := f.SetSheetRow(summarySheet, cell, &period); err != nil {
			return fmt.Errorf("failed to write period: %w", err)
		}
	}

	return f.SetColWidth(summarySheet, "A", "A", 20)
}
