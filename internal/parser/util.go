package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Credit labels on the generic completion path. Anything else is a debit.
const (
	transferPrefix         = "VIREMENT"
	outgoingTransferPrefix = "VIREMENT POUR"
	cardCreditLabel        = "CREDIT CARTE BANCAIRE"
	thresholdRebateLabel   = "4 AVANTAGE SEUIL DE NON-PERCEPTION"
)

// ParseValue converts a statement amount like "1 234,56" to a float64.
// Spaces are thousands separators and the comma is the decimal separator.
// Amounts are unsigned; a leading sign is rejected since the polarity comes
// from the label.
func ParseValue(s string) (float64, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(s)
	if strings.HasPrefix(clean, "-") || strings.HasPrefix(clean, "+") {
		return 0, fmt.Errorf("signed amount %q", s)
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// IsCredit decides the polarity of an entry from its primary label.
// Rules are evaluated in order; the first one that holds wins.
func IsCredit(label1 string) bool {
	switch {
	case strings.HasPrefix(label1, transferPrefix) && !strings.HasPrefix(label1, outgoingTransferPrefix):
		return true
	case label1 == cardCreditLabel:
		return true
	case label1 == thresholdRebateLabel:
		return true
	}
	return false
}

// ResolveYear picks the calendar year of an entry month within a statement
// whose period may straddle New Year.
func ResolveYear(entryMonth, statementYear, statementMonth int) int {
	switch {
	case entryMonth == 12 && statementMonth == 1:
		return statementYear - 1
	case entryMonth == 1 && statementMonth == 12:
		return statementYear + 1
	}
	return statementYear
}
