package balance

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/releve-converter/internal/models"
)

const centPlaces = 2

// Compute sums credits and debits separately and rounds each total to the
// cent, half away from zero. Entries whose value failed to parse are skipped.
func Compute(txns []models.Transaction) models.Balance {
	credit, debit := decimal.Zero, decimal.Zero
	for _, t := range txns {
		if t.ParseError {
			continue
		}
		v := decimal.NewFromFloat(t.Value)
		if t.IsCredit {
			credit = credit.Add(v)
		} else {
			debit = debit.Add(v)
		}
	}
	return models.Balance{
		Credit: credit.Round(centPlaces),
		Debit:  debit.Round(centPlaces),
	}
}
