package categorizer

import (
	"github.com/insightdelivered/releve-converter/internal/models"
)

// Categorizer applies a RuleSet to transactions.
type Categorizer struct {
	rules RuleSet
}

// New returns a Categorizer for the given rules.
func New(rules RuleSet) *Categorizer {
	return &Categorizer{rules: rules}
}

// Report lists the transactions that need manual review.
type Report struct {
	Uncategorized []models.Transaction
}

// Count is the number of uncategorized transactions.
func (r Report) Count() int {
	return len(r.Uncategorized)
}

// Warnings converts the report into uncategorized warnings.
func (r Report) Warnings() []models.Warning {
	warnings := make([]models.Warning, 0, len(r.Uncategorized))
	for i := range r.Uncategorized {
		t := r.Uncategorized[i]
		warnings = append(warnings, models.Warning{
			Kind:        models.WarnUncategorized,
			File:        t.Source,
			Message:     "no category rule matched",
			Transaction: &t,
		})
	}
	return warnings
}

// Categorize sets Category1/Category2 on every transaction in place.
func (c *Categorizer) Categorize(txns []models.Transaction) Report {
	var report Report
	for i := range txns {
		cat, ok := c.rules.Classify(txns[i])
		if !ok {
			report.Uncategorized = append(report.Uncategorized, txns[i])
			continue
		}
		txns[i].Category1 = cat.Primary
		txns[i].Category2 = cat.Secondary
	}
	return report
}
