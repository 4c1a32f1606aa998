package converter

import (
	"fmt"
	"io"
)

// WriteSummary prints one line per statement (file, entry count, total debit,
// total credit) followed by the uncategorized count.
func WriteSummary(w io.Writer, res *Result) error {
	for _, s := range res.Statements {
		_, err := fmt.Fprintf(w, "%s %d -%s +%s\n",
			s.File, len(s.Transactions), s.Balance.Debit.StringFixed(2), s.Balance.Credit.StringFixed(2))
		if err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "count %d\n", res.UncategorizedCount())
	return err
}
