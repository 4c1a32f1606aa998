package parser

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/insightdelivered/releve-converter/internal/models"
)

// Statement file names look like releve_<account>_<YYYYMM>.pdf.
const (
	fileNamePrefix = "releve_"
	fileNameSuffix = ".pdf"
)

// Reference identifies a statement: which account and which month it covers.
type Reference struct {
	File    string
	Account string
	Year    int
	Month   int
}

// ParseFileName extracts the account and statement month from a file path.
func ParseFileName(path string) (Reference, error) {
	base := filepath.Base(path)
	if !strings.HasPrefix(base, fileNamePrefix) || !strings.HasSuffix(strings.ToLower(base), fileNameSuffix) {
		return Reference{}, fmt.Errorf("file name %q does not match %s<account>_<YYYYMM>%s", base, fileNamePrefix, fileNameSuffix)
	}
	stem := strings.TrimPrefix(base[:len(base)-len(fileNameSuffix)], fileNamePrefix)

	sep := strings.LastIndex(stem, "_")
	if sep <= 0 {
		return Reference{}, fmt.Errorf("file name %q has no account/month separator", base)
	}
	account, period := stem[:sep], stem[sep+1:]

	if len(period) != 6 {
		return Reference{}, fmt.Errorf("file name %q: statement month %q is not YYYYMM", base, period)
	}
	year, err := strconv.Atoi(period[:4])
	if err != nil {
		return Reference{}, fmt.Errorf("file name %q: bad year: %w", base, err)
	}
	month, err := strconv.Atoi(period[4:])
	if err != nil || month < 1 || month > 12 {
		return Reference{}, fmt.Errorf("file name %q: bad month %q", base, period[4:])
	}

	return Reference{File: path, Account: account, Year: year, Month: month}, nil
}

// ResolveDate attaches the resolved year to an entry's day and month.
func ResolveDate(day, month int, ref Reference) models.Date {
	return models.Date{
		Year:  ResolveYear(month, ref.Year, ref.Month),
		Month: month,
		Day:   day,
	}
}

// StatementParser turns the fragment pages of one statement into transactions.
// It performs no I/O; data-quality problems come back as warnings.
type StatementParser struct{}

// Parse scans pages in order and finalizes every reconstructed entry.
func (p *StatementParser) Parse(ref Reference, pages [][]string) (*models.Statement, []models.Warning) {
	stmt := &models.Statement{
		File:    ref.File,
		Account: ref.Account,
		Year:    ref.Year,
		Month:   ref.Month,
		Pages:   len(pages),
	}
	var warnings []models.Warning

	for i, fragments := range pages {
		page := i + 1
		res := ScanPage(fragments)

		for _, e := range res.Entries {
			txn := finalize(e, ref)
			if e.ValueErr != nil {
				w := txn
				warnings = append(warnings, models.Warning{
					Kind:        models.WarnInvalidValue,
					File:        ref.File,
					Page:        page,
					Message:     e.ValueErr.Error(),
					Transaction: &w,
				})
			}
			stmt.Transactions = append(stmt.Transactions, txn)
		}

		if res.Incomplete {
			e := res.IncompleteEntry
			warnings = append(warnings, models.Warning{
				Kind: models.WarnIncompleteEntry,
				File: ref.File,
				Page: page,
				Message: fmt.Sprintf("page ended in state %s, entry %02d/%02d %q discarded",
					res.IncompleteState, e.Day, e.Month, e.Label1),
			})
		}
	}

	return stmt, warnings
}

func finalize(e Entry, ref Reference) models.Transaction {
	return models.Transaction{
		Account:    ref.Account,
		Date:       ResolveDate(e.Day, e.Month, ref).String(),
		Label1:     e.Label1,
		Label2:     e.Label2,
		Value:      e.Value,
		ValueRaw:   e.ValueRaw,
		IsCredit:   e.IsCredit,
		ParseError: e.ValueErr != nil,
		Source:     ref.File,
	}
}
