// Package writer renders extraction results as CSV for export.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

// CSVWriter writes parsed installments to CSV format.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the result to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, res *models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, res)
}

// Write writes the result in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, res *models.ExtractionResult) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	// Write run metadata as comment rows before the table.
	if w.IncludeHeader {
		writer.Write([]string{"# Date Locale", string(res.DateLocale)})
		writer.Write([]string{"# Duplicates Removed", strconv.Itoa(res.DuplicatesRemoved)})
		writer.Write([]string{"# Unparsed Blocks", strconv.Itoa(len(res.Issues))})
	}

	header := []string{"Provider", "Installment", "Due Date", "Amount", "Currency", "Autopay", "Late Fee", "Confidence"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range res.Items {
		row := []string{
			item.Provider,
			strconv.Itoa(item.InstallmentNo),
			item.DueDate,
			formatAmount(item.Amount),
			item.Currency,
			strconv.FormatBool(item.Autopay),
			formatAmount(item.LateFee),
			strconv.FormatFloat(item.Confidence, 'f', 2, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
