// Package categorizer assigns a two-level category to transactions using an
// ordered table of substring rules. The table is data (rules.yaml); the
// matching policy lives here: polarity first, then declaration order, and the
// first matching rule wins.
package categorizer

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/insightdelivered/releve-converter/internal/models"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Polarity selects which transactions a rule applies to.
type Polarity string

const (
	Credit Polarity = "credit"
	Debit  Polarity = "debit"
)

// Category is a two-level classification bucket.
type Category struct {
	Primary   string `yaml:"category1" json:"category1"`
	Secondary string `yaml:"category2" json:"category2"`
}

// Rule maps label substrings to a category.
type Rule struct {
	Polarity Polarity `yaml:"polarity"`
	// Label1Prefix, when set, must prefix label1 for the rule to apply.
	Label1Prefix string   `yaml:"label1_prefix,omitempty"`
	Match        []string `yaml:"match"`
	Category     `yaml:",inline"`
}

// Matches reports whether the rule applies to the transaction.
func (r Rule) Matches(t models.Transaction) bool {
	if (r.Polarity == Credit) != t.IsCredit {
		return false
	}
	if r.Label1Prefix != "" && !strings.HasPrefix(t.Label1, r.Label1Prefix) {
		return false
	}
	label1 := strings.ToUpper(t.Label1)
	label2 := strings.ToUpper(t.Label2)
	for _, m := range r.Match {
		needle := strings.ToUpper(m)
		if strings.Contains(label1, needle) || strings.Contains(label2, needle) {
			return true
		}
	}
	return false
}

// RuleSet is an ordered rule table plus the per-polarity fallbacks.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
	// CreditDefault is applied to credits no rule matched.
	CreditDefault *Category `yaml:"credit_default,omitempty"`
	// DebitDefault is applied to debits no rule matched; when nil such
	// debits stay uncategorized.
	DebitDefault *Category `yaml:"debit_default,omitempty"`
}

// Classify returns the category for t. ok is false when t stays uncategorized.
func (rs RuleSet) Classify(t models.Transaction) (cat Category, ok bool) {
	for _, r := range rs.Rules {
		if r.Matches(t) {
			return r.Category, true
		}
	}
	fallback := rs.DebitDefault
	if t.IsCredit {
		fallback = rs.CreditDefault
	}
	if fallback == nil {
		return Category{}, false
	}
	return *fallback, true
}

// Validate checks that every rule can ever match and names a category.
func (rs RuleSet) Validate() error {
	var errs []error
	for i, r := range rs.Rules {
		if r.Polarity != Credit && r.Polarity != Debit {
			errs = append(errs, fmt.Errorf("rule %d: polarity %q must be %q or %q", i+1, r.Polarity, Credit, Debit))
		}
		if len(r.Match) == 0 {
			errs = append(errs, fmt.Errorf("rule %d: no match strings", i+1))
		}
		for _, m := range r.Match {
			if m == "" {
				errs = append(errs, fmt.Errorf("rule %d: empty match string", i+1))
			}
		}
		if r.Primary == "" {
			errs = append(errs, fmt.Errorf("rule %d: category1 is required", i+1))
		}
	}
	if rs.CreditDefault != nil && rs.CreditDefault.Primary == "" {
		errs = append(errs, errors.New("credit_default: category1 is required"))
	}
	if rs.DebitDefault != nil && rs.DebitDefault.Primary == "" {
		errs = append(errs, errors.New("debit_default: category1 is required"))
	}
	return errors.Join(errs...)
}

// ParseRules decodes and validates a YAML rule table.
func ParseRules(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parsing rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rs, nil
}

// LoadRules reads a YAML rule table from disk.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("reading rules: %w", err)
	}
	return ParseRules(data)
}

// DefaultRules returns the built-in rule table.
func DefaultRules() RuleSet {
	rs, err := ParseRules(defaultRulesYAML)
	if err != nil {
		panic("embedded rules.yaml: " + err.Error())
	}
	return rs
}

// Marshal encodes the rule table as YAML.
func (rs RuleSet) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("marshaling rules: %w", err)
	}
	return data, nil
}
