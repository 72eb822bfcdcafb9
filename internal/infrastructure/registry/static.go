package registry

import "fmt"

// BuiltinEntries is the compiled-in MPEP chapter table, used when no external
// index file is configured.
func BuiltinEntries() []Entry {
	chapters := []struct {
		number string
		title  string
	}{
		{"0100", "Secrecy, Access, National Security, and Foreign Filing"},
		{"0200", "Types and Status of Application; Benefit and Priority Claims"},
		{"0300", "Ownership and Assignment"},
		{"0400", "Representative of Applicant or Owner"},
		{"0500", "Receipt and Handling of Mail and Papers"},
		{"0600", "Parts, Form, and Content of Application"},
		{"0700", "Examination of Applications"},
		{"0800", "Restriction in Applications; Double Patenting"},
		{"0900", "Prior Art, Classification, and Search"},
		{"1000", "Matters Decided by Various USPTO Officials"},
		{"1100", "Statutory Invention Registration; Pre-Grant Publication"},
		{"1200", "Appeal"},
		{"1300", "Allowance and Issue"},
		{"1400", "Correction of Patents"},
		{"1500", "Design Patents"},
		{"1600", "Plant Patents"},
		{"1700", "Miscellaneous"},
		{"1800", "Patent Cooperation Treaty"},
		{"1900", "Protest"},
		{"2000", "Duty of Disclosure"},
		{"2100", "Patentability"},
		{"2200", "Citation of Prior Art and Ex Parte Reexamination"},
		{"2300", "Interference and Derivation Proceedings"},
		{"2400", "Biotechnology"},
		{"2500", "Maintenance Fees"},
		{"2600", "Optional Inter Partes Reexamination"},
		{"2700", "Patent Terms, Adjustments, and Extensions"},
		{"2800", "Supplemental Examination"},
		{"2900", "International Design Applications"},
	}

	entries := make([]Entry, 0, len(chapters))
	for _, ch := range chapters {
		entries = append(entries, Entry{
			Label: DisplayName(ch.number, ch.title),
			URL:   fmt.Sprintf("https://www.uspto.gov/web/offices/pac/mpep/mpep-%s.pdf", ch.number),
		})
	}
	return entries
}

// DisplayName composes the canonical chapter label shown to users.
func DisplayName(number, title string) string {
	return fmt.Sprintf("Chapter %s – %s", number, title)
}
