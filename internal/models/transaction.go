package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Date is a fully resolved transaction date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as Y-M-D without zero padding (e.g. "2023-12-1").
func (d Date) String() string {
	return fmt.Sprintf("%d-%d-%d", d.Year, d.Month, d.Day)
}

// Transaction is one reconstructed statement entry.
type Transaction struct {
	Account    string  `json:"account"`
	Date       string  `json:"date"`
	Label1     string  `json:"label1"`
	Label2     string  `json:"label2"`
	Value      float64 `json:"value"` // never negative; sign is IsCredit
	ValueRaw   string  `json:"valueRaw,omitempty"`
	IsCredit   bool    `json:"isCredit"`
	ParseError bool    `json:"parseError,omitempty"` // value text was not a number, Value is 0
	Category1  string  `json:"category1,omitempty"`
	Category2  string  `json:"category2,omitempty"`
	// Source is the statement file the entry was read from.
	Source     string  `json:"source,omitempty"`
}

// Categorized reports whether a category has been assigned.
func (t Transaction) Categorized() bool {
	return t.Category1 != ""
}

// Balance holds the per-statement totals, rounded to cents.
type Balance struct {
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
}

// Statement holds everything extracted from one statement file.
type Statement struct {
	File         string        `json:"file"`
	Account      string        `json:"account"`
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	Pages        int           `json:"pages"`
	Transactions []Transaction `json:"transactions"`
	Balance      Balance       `json:"balance"`
}

// WarningKind classifies non-fatal data-quality problems.
type WarningKind string

const (
	WarnInvalidValue    WarningKind = "invalid-value"
	WarnIncompleteEntry WarningKind = "incomplete-entry"
	WarnUncategorized   WarningKind = "uncategorized"
)

// Warning records a data-quality problem that did not stop processing.
type Warning struct {
	Kind        WarningKind  `json:"kind"`
	File        string       `json:"file,omitempty"`
	Page        int          `json:"page,omitempty"`
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction,omitempty"`
}
