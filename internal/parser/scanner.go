package parser

import (
	"strconv"
	"strings"
)

// Labels that cut the statement template short: they carry no second label
// block and their value follows the first blank separator directly.
const (
	checkPrefix       = "CHEQUE"
	agioRebateLabel   = "4 REMISE COMMERCIALE D'AGIOS"
	dateTokenLength   = 5
	dateTokenSepIndex = 2
)

// state is the position of the scanner within the entry template:
//
//	date, filler, label1 lines, blank, label2 lines, blank, value
type state int

const (
	seekDate state = iota
	skipFiller
	startLabel1
	continueLabel1
	branchLabel1
	continueLabel2
	finalizeValue
)

func (s state) String() string {
	switch s {
	case seekDate:
		return "seek-date"
	case skipFiller:
		return "skip-filler"
	case startLabel1:
		return "start-label1"
	case continueLabel1:
		return "continue-label1"
	case branchLabel1:
		return "branch-label1"
	case continueLabel2:
		return "continue-label2"
	case finalizeValue:
		return "finalize-value"
	}
	return "unknown"
}

// Entry is a reconstructed entry before year resolution.
type Entry struct {
	Day      int
	Month    int
	Label1   string
	Label2   string
	Value    float64
	ValueRaw string
	ValueErr error // non-nil when the value text was not a number
	IsCredit bool
}

// Scanner rebuilds entries from the ordered text fragments of one page.
// The zero value is ready to use.
type Scanner struct {
	state state
	cur   Entry
}

// Feed consumes one fragment and returns the entry it completes, if any.
func (s *Scanner) Feed(fragment string) (Entry, bool) {
	switch s.state {
	case seekDate:
		if day, month, ok := parseDateToken(fragment); ok {
			s.cur = Entry{Day: day, Month: month}
			s.state = skipFiller
		}
	case skipFiller:
		s.state = startLabel1
	case startLabel1:
		s.cur.Label1 = fragment
		s.state = continueLabel1
	case continueLabel1:
		if strings.TrimSpace(fragment) != "" {
			s.cur.Label1 += " " + fragment
		} else {
			s.state = branchLabel1
		}
	case branchLabel1:
		switch {
		case strings.HasPrefix(s.cur.Label1, checkPrefix):
			s.setValue(strings.TrimRight(fragment, " \t\u00a0"))
			s.cur.Label1, s.cur.Label2 = splitCheckLabel(s.cur.Label1)
			s.cur.IsCredit = false
			return s.emit(), true
		case s.cur.Label1 == agioRebateLabel:
			s.setValue(strings.TrimRight(fragment, " \t\u00a0"))
			s.cur.Label2 = ""
			s.cur.IsCredit = true
			return s.emit(), true
		default:
			s.cur.Label2 = fragment
			s.state = continueLabel2
		}
	case continueLabel2:
		if strings.TrimSpace(fragment) != "" {
			s.cur.Label2 += " " + fragment
		} else {
			s.state = finalizeValue
		}
	case finalizeValue:
		s.setValue(fragment)
		s.cur.ValueRaw = fragment
		s.cur.IsCredit = IsCredit(s.cur.Label1)
		return s.emit(), true
	}
	return Entry{}, false
}

// Pending reports whether an entry has been started but not completed.
func (s *Scanner) Pending() bool {
	return s.state != seekDate
}

// Partial returns the entry in progress and the state it stopped in.
func (s *Scanner) Partial() (Entry, string) {
	return s.cur, s.state.String()
}

func (s *Scanner) setValue(text string) {
	v, err := ParseValue(text)
	s.cur.Value = v
	s.cur.ValueErr = err
}

func (s *Scanner) emit() Entry {
	e := s.cur
	s.cur = Entry{}
	s.state = seekDate
	return e
}

// parseDateToken recognizes "DD/MM" fragments. A half may be padded with a
// space, as in " 1/12".
func parseDateToken(fragment string) (day, month int, ok bool) {
	r := []rune(fragment)
	if len(r) != dateTokenLength || r[dateTokenSepIndex] != '/' {
		return 0, 0, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(string(r[:dateTokenSepIndex])))
	if err != nil {
		return 0, 0, false
	}
	month, err = strconv.Atoi(strings.TrimSpace(string(r[dateTokenSepIndex+1:])))
	if err != nil {
		return 0, 0, false
	}
	return day, month, true
}

// splitCheckLabel splits "CHEQUE <number> <payee>" into prefix and payee.
func splitCheckLabel(label string) (prefix, payee string) {
	parts := strings.SplitN(label, " ", 3)
	prefix = parts[0]
	if len(parts) == 3 {
		payee = parts[2]
	}
	return prefix, payee
}

// PageResult is what scanning one page produced.
type PageResult struct {
	Entries []Entry
	// Incomplete is set when the page ended in the middle of an entry; the
	// partial entry is dropped.
	Incomplete      bool
	IncompleteEntry Entry
	IncompleteState string
}

// ScanPage runs a fresh scanner over one page's fragments.
func ScanPage(fragments []string) PageResult {
	var (
		s   Scanner
		res PageResult
	)
	for _, f := range fragments {
		if e, ok := s.Feed(f); ok {
			res.Entries = append(res.Entries, e)
		}
	}
	if s.Pending() {
		res.Incomplete = true
		res.IncompleteEntry, res.IncompleteState = s.Partial()
	}
	return res
}
