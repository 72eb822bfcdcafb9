package detect

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Alonso-droid/mpedge-app/internal/infrastructure/registry"
)

// Rule maps a keyword to the chapter it suggests. Rule order is significant:
// the first keyword found as a case-insensitive substring of the query wins.
type Rule struct {
	Keyword string `yaml:"keyword"`
	Chapter string `yaml:"chapter"`
}

// Detector is a deterministic keyword heuristic, not a classifier. It carries
// no confidence score and never ranks competing matches.
type Detector struct {
	rules []Rule
}

func New(rules []Rule) *Detector {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keyword := strings.ToLower(strings.TrimSpace(r.Keyword))
		chapter := strings.TrimSpace(r.Chapter)
		if keyword == "" || chapter == "" {
			continue
		}
		out = append(out, Rule{Keyword: keyword, Chapter: chapter})
	}
	return &Detector{rules: out}
}

func (d *Detector) Detect(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, rule := range d.rules {
		if strings.Contains(q, rule.Keyword) {
			return rule.Chapter, true
		}
	}
	return "", false
}

// LoadRules reads an ordered keyword table from a YAML file, so deployments
// can tune detection without a rebuild.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("keyword table %s is empty", path)
	}
	return rules, nil
}

// BuiltinRules covers the built-in chapter table. More specific keywords come
// first so they win over broad ones.
func BuiltinRules() []Rule {
	pairs := []struct {
		keyword string
		number  string
		title   string
	}{
		{"patent term adjustment", "2700", "Patent Terms, Adjustments, and Extensions"},
		{"term extension", "2700", "Patent Terms, Adjustments, and Extensions"},
		{"adjustment", "2700", "Patent Terms, Adjustments, and Extensions"},
		{"maintenance fee", "2500", "Maintenance Fees"},
		{"double patenting", "0800", "Restriction in Applications; Double Patenting"},
		{"restriction requirement", "0800", "Restriction in Applications; Double Patenting"},
		{"duty of disclosure", "2000", "Duty of Disclosure"},
		{"inequitable conduct", "2000", "Duty of Disclosure"},
		{"supplemental examination", "2800", "Supplemental Examination"},
		{"inter partes reexamination", "2600", "Optional Inter Partes Reexamination"},
		{"reexamination", "2200", "Citation of Prior Art and Ex Parte Reexamination"},
		{"interference", "2300", "Interference and Derivation Proceedings"},
		{"derivation", "2300", "Interference and Derivation Proceedings"},
		{"design patent", "1500", "Design Patents"},
		{"plant patent", "1600", "Plant Patents"},
		{"pct", "1800", "Patent Cooperation Treaty"},
		{"international application", "1800", "Patent Cooperation Treaty"},
		{"hague", "2900", "International Design Applications"},
		{"appeal", "1200", "Appeal"},
		{"protest", "1900", "Protest"},
		{"reissue", "1400", "Correction of Patents"},
		{"certificate of correction", "1400", "Correction of Patents"},
		{"allowance", "1300", "Allowance and Issue"},
		{"issue fee", "1300", "Allowance and Issue"},
		{"assignment", "0300", "Ownership and Assignment"},
		{"ownership", "0300", "Ownership and Assignment"},
		{"power of attorney", "0400", "Representative of Applicant or Owner"},
		{"secrecy order", "0100", "Secrecy, Access, National Security, and Foreign Filing"},
		{"foreign filing license", "0100", "Secrecy, Access, National Security, and Foreign Filing"},
		{"obviousness", "2100", "Patentability"},
		{"eligibility", "2100", "Patentability"},
		{"patentability", "2100", "Patentability"},
		{"anticipation", "2100", "Patentability"},
		{"enablement", "2100", "Patentability"},
		{"written description", "2100", "Patentability"},
		{"prior art", "0900", "Prior Art, Classification, and Search"},
		{"biotechnology", "2400", "Biotechnology"},
		{"sequence listing", "2400", "Biotechnology"},
		{"provisional application", "0200", "Types and Status of Application; Benefit and Priority Claims"},
		{"continuation", "0200", "Types and Status of Application; Benefit and Priority Claims"},
		{"priority claim", "0200", "Types and Status of Application; Benefit and Priority Claims"},
		{"specification", "0600", "Parts, Form, and Content of Application"},
		{"oath or declaration", "0600", "Parts, Form, and Content of Application"},
		{"examination", "0700", "Examination of Applications"},
		{"office action", "0700", "Examination of Applications"},
	}

	rules := make([]Rule, 0, len(pairs))
	for _, p := range pairs {
		rules = append(rules, Rule{
			Keyword: p.keyword,
			Chapter: registry.DisplayName(p.number, p.title),
		})
	}
	return rules
}
