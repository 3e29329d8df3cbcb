package writer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/mmtuentertainment/PayPlan-sub009/internal/models"
)

func sampleResult() *models.ExtractionResult {
	return &models.ExtractionResult{
		Items: []models.Item{
			{
				ID:            "a1",
				Provider:      "Klarna",
				InstallmentNo: 2,
				DueDate:       "2025-10-06",
				Amount:        45,
				Currency:      "USD",
				Autopay:       true,
				LateFee:       0,
				Confidence:    1,
			},
			{
				ID:            "b2",
				Provider:      "Affirm",
				InstallmentNo: 1,
				DueDate:       "2025-10-20",
				Amount:        58.5,
				Currency:      "USD",
				Autopay:       false,
				LateFee:       7,
				Confidence:    0.8,
			},
		},
		Issues:            []models.Issue{{ID: "i1", Reason: "oops"}},
		DuplicatesRemoved: 1,
		DateLocale:        models.LocaleUS,
	}
}

func TestWriteWithHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true}
	if err := w.Write(&buf, sampleResult()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("got %d rows, want 6 (3 meta + header + 2 items)", len(records))
	}

	if records[0][0] != "# Date Locale" || records[0][1] != "US" {
		t.Errorf("meta row = %v", records[0])
	}
	if records[1][1] != "1" {
		t.Errorf("duplicates removed = %q, want 1", records[1][1])
	}
	if records[2][1] != "1" {
		t.Errorf("unparsed blocks = %q, want 1", records[2][1])
	}

	wantHeader := "Provider,Installment,Due Date,Amount,Currency,Autopay,Late Fee,Confidence"
	if got := strings.Join(records[3], ","); got != wantHeader {
		t.Errorf("header = %q, want %q", got, wantHeader)
	}

	klarna := records[4]
	want := []string{"Klarna", "2", "2025-10-06", "45.00", "USD", "true", "0.00", "1.00"}
	for i, col := range want {
		if klarna[i] != col {
			t.Errorf("row column %d = %q, want %q", i, klarna[i], col)
		}
	}
	if records[5][3] != "58.50" {
		t.Errorf("amount column = %q, want 58.50", records[5][3])
	}
}

func TestWriteWithoutHeaderRows(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.Write(&buf, sampleResult()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want 3 (header + 2 items)", len(records))
	}
	if records[0][0] != "Provider" {
		t.Errorf("first row = %v, want column header", records[0])
	}
}

func TestWriteEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	res := &models.ExtractionResult{DateLocale: models.LocaleEU}
	if err := w.Write(&buf, res); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("got %d rows, want header only", len(records))
	}
}

func TestWriteToFile(t *testing.T) {
	path := t.TempDir() + "/out.csv"
	w := &CSVWriter{IncludeHeader: true}
	if err := w.WriteToFile(path, sampleResult()); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}
}
