package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/insightdelivered/releve-converter/internal/models"
)

const separator = ';'

var (
	baseHeader        = []string{"ACCOUNT", "DATE", "LABEL1", "LABEL2", "VALUE"}
	categorizedHeader = append(append([]string{}, baseHeader...), "CATEGORY1", "CATEGORY2")
)

// CSVWriter writes transactions as semicolon-separated values.
type CSVWriter struct {
	// Categorized adds the CATEGORY1 and CATEGORY2 columns.
	Categorized bool
}

// WriteToFile writes transactions to path, creating its directory if needed.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %q: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, txns); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the header and one row per transaction to out.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(out)
	writer.Comma = separator

	header := baseHeader
	if w.Categorized {
		header = categorizedHeader
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range txns {
		row := []string{
			txn.Account,
			txn.Date,
			txn.Label1,
			txn.Label2,
			FormatValue(txn),
		}
		if w.Categorized {
			row = append(row, txn.Category1, txn.Category2)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatValue renders the signed amount with two decimals and a comma
// separator: "-50,00" for a debit, "1234,56" for a credit.
func FormatValue(txn models.Transaction) string {
	if txn.ParseError {
		return "NaN"
	}
	s := strings.Replace(strconv.FormatFloat(txn.Value, 'f', 2, 64), ".", ",", 1)
	if !txn.IsCredit {
		s = "-" + s
	}
	return s
}
