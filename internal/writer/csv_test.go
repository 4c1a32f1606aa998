package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/releve-converter/internal/models"
)

var sample = []models.Transaction{
	{Account: "ACC1", Date: "2023-12-1", Label1: "VIREMENT", Label2: "SALAIRE", Value: 1234.56, IsCredit: true, Category1: "VIREMENT EXTERNE", Category2: "OTHERS"},
	{Account: "ACC1", Date: "2024-1-15", Label1: "CHEQUE", Label2: "FOURNISSEUR", Value: 50, Category1: "CHEQUE", Category2: "??"},
	{Account: "ACC1", Date: "2024-1-20", Label1: "FRAIS", Label2: "INCONNU", Value: 2.5},
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, sample))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ACCOUNT;DATE;LABEL1;LABEL2;VALUE", lines[0])
	assert.Equal(t, "ACC1;2023-12-1;VIREMENT;SALAIRE;1234,56", lines[1])
	assert.Equal(t, "ACC1;2024-1-15;CHEQUE;FOURNISSEUR;-50,00", lines[2])
	assert.Equal(t, "ACC1;2024-1-20;FRAIS;INCONNU;-2,50", lines[3])
}

func TestCSVWriter_WriteCategorized(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{Categorized: true}
	require.NoError(t, w.Write(&buf, sample))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "ACCOUNT;DATE;LABEL1;LABEL2;VALUE;CATEGORY1;CATEGORY2", lines[0])
	assert.Equal(t, "ACC1;2023-12-1;VIREMENT;SALAIRE;1234,56;VIREMENT EXTERNE;OTHERS", lines[1])
	assert.Equal(t, "ACC1;2024-1-15;CHEQUE;FOURNISSEUR;-50,00;CHEQUE;??", lines[2])
	assert.Equal(t, "ACC1;2024-1-20;FRAIS;INCONNU;-2,50;;", lines[3])
}

func TestCSVWriter_WriteToFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "data.csv")
	w := &CSVWriter{}
	require.NoError(t, w.WriteToFile(path, sample[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ACCOUNT;DATE;LABEL1;LABEL2;VALUE\nACC1;2023-12-1;VIREMENT;SALAIRE;1234,56\n", string(data))
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		txn      models.Transaction
		expected string
	}{
		{models.Transaction{Value: 25.99}, "-25,99"},
		{models.Transaction{Value: 25.99, IsCredit: true}, "25,99"},
		{models.Transaction{Value: 0, IsCredit: true}, "0,00"},
		{models.Transaction{Value: 1234567.8, IsCredit: true}, "1234567,80"},
		{models.Transaction{ParseError: true}, "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatValue(tt.txn))
		})
	}
}

func TestFormatValue_RoundTrip(t *testing.T) {
	values := []float64{0.01, 0.5, 3.001, 10.005, 50, 99.994, 1234.56, 98765.4321}
	for _, v := range values {
		for _, isCredit := range []bool{true, false} {
			s := FormatValue(models.Transaction{Value: v, IsCredit: isCredit})
			s = strings.TrimPrefix(s, "-")
			got, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
			require.NoError(t, err)
			assert.InDelta(t, v, got, 0.005, "value %v formatted as %q", v, s)
		}
	}
}
