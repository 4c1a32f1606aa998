// Package converter drives a conversion run: it lists the statement files,
// turns each one into transactions, then categorizes everything at once.
// Files are processed one after another, pages in order.
package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/releve-converter/internal/balance"
	"github.com/insightdelivered/releve-converter/internal/categorizer"
	"github.com/insightdelivered/releve-converter/internal/models"
	"github.com/insightdelivered/releve-converter/internal/parser"
)

// ErrNotDirectory is returned when the input path is not a directory.
var ErrNotDirectory = errors.New("must be a directory")

// Source yields the text fragments of each page of a statement document.
type Source interface {
	Pages(path string) ([][]string, error)
}

// Result is everything a run produced.
type Result struct {
	RunID         string
	Statements    []*models.Statement
	Records       []models.Transaction
	Warnings      []models.Warning
	Uncategorized []models.Transaction
}

// UncategorizedCount is the number of records no rule classified.
func (r *Result) UncategorizedCount() int {
	return len(r.Uncategorized)
}

// Converter wires the fragment source, the statement parser and the
// categorizer together.
type Converter struct {
	Source      Source
	Parser      *parser.StatementParser
	Categorizer *categorizer.Categorizer
	Log         zerolog.Logger
}

// New returns a Converter with the default parser.
func New(src Source, cat *categorizer.Categorizer, log zerolog.Logger) *Converter {
	return &Converter{
		Source:      src,
		Parser:      &parser.StatementParser{},
		Categorizer: cat,
		Log:         log,
	}
}

// ListStatements returns the PDF files of dir in name order.
func (c *Converter) ListStatements(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s %w", dir, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			c.Log.Debug().Str("file", e.Name()).Msg("skipping non-PDF file")
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// Run converts every statement in dir, then categorizes all records.
// Any error aborts the run; data-quality problems are reported in the Result.
func (c *Converter) Run(dir string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := c.Log.With().Str("run_id", res.RunID).Logger()

	files, err := c.ListStatements(dir)
	if err != nil {
		return nil, err
	}
	log.Info().Str("input", dir).Int("files", len(files)).Msg("starting conversion")

	for _, path := range files {
		stmt, warnings, err := c.ConvertFile(path)
		if err != nil {
			return nil, err
		}
		res.Statements = append(res.Statements, stmt)
		res.Records = append(res.Records, stmt.Transactions...)
		res.Warnings = append(res.Warnings, warnings...)
	}

	report := c.categorize(log, res.Records)
	res.Uncategorized = report.Uncategorized
	res.Warnings = append(res.Warnings, report.Warnings()...)

	log.Info().
		Int("records", len(res.Records)).
		Int("warnings", len(res.Warnings)).
		Int("uncategorized", res.UncategorizedCount()).
		Msg("conversion finished")
	return res, nil
}

// ConvertFile reads one statement from disk.
func (c *Converter) ConvertFile(path string) (*models.Statement, []models.Warning, error) {
	ref, err := parser.ParseFileName(path)
	if err != nil {
		return nil, nil, err
	}
	pages, err := c.Source.Pages(path)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	stmt, warnings := c.convert(ref, pages)
	return stmt, warnings, nil
}

// ConvertPages converts a statement whose pages were already extracted.
// name must follow the statement file naming convention.
func (c *Converter) ConvertPages(name string, pages [][]string) (*models.Statement, []models.Warning, error) {
	ref, err := parser.ParseFileName(name)
	if err != nil {
		return nil, nil, err
	}
	stmt, warnings := c.convert(ref, pages)
	return stmt, warnings, nil
}

// Categorize classifies records in place and logs the ones left for review.
func (c *Converter) Categorize(records []models.Transaction) categorizer.Report {
	return c.categorize(c.Log, records)
}

func (c *Converter) convert(ref parser.Reference, pages [][]string) (*models.Statement, []models.Warning) {
	stmt, warnings := c.Parser.Parse(ref, pages)
	stmt.Balance = balance.Compute(stmt.Transactions)

	for _, w := range warnings {
		logWarning(c.Log, w)
	}
	c.Log.Debug().
		Str("file", ref.File).
		Str("account", ref.Account).
		Int("pages", len(pages)).
		Int("entries", len(stmt.Transactions)).
		Msg("statement parsed")
	return stmt, warnings
}

func (c *Converter) categorize(log zerolog.Logger, records []models.Transaction) categorizer.Report {
	report := c.Categorizer.Categorize(records)
	for _, w := range report.Warnings() {
		logWarning(log, w)
	}
	return report
}

func logWarning(log zerolog.Logger, w models.Warning) {
	ev := log.Warn().Str("kind", string(w.Kind))
	if w.File != "" {
		ev = ev.Str("file", w.File)
	}
	if w.Page > 0 {
		ev = ev.Int("page", w.Page)
	}
	if t := w.Transaction; t != nil {
		ev = ev.Str("account", t.Account).
			Str("date", t.Date).
			Str("label1", t.Label1).
			Str("label2", t.Label2).
			Bool("credit", t.IsCredit)
		if t.ValueRaw != "" {
			ev = ev.Str("value_raw", t.ValueRaw)
		}
	}
	ev.Msg(w.Message)
}
