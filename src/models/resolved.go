package models

import "time"

// TermSource identifies the document a resolved or overridden term came from.
// It carries everything a citation needs so consumers never re-query.
type TermSource struct {
	DocumentID    int64      `json:"documentId"`
	DocumentTitle string     `json:"documentTitle"`
	DocumentType  string     `json:"documentType"`
	Priority      int        `json:"priority"`
	EffectiveDate *time.Time `json:"effectiveDate"`
}

// ResolvedTerm is the single controlling term for one clause type after
// precedence resolution.
type ResolvedTerm struct {
	ClauseID   int64      `json:"clauseId"`
	ClauseType string     `json:"clauseType"`
	Term
	SectionRef string     `json:"sectionRef"`
	ClauseText string     `json:"clauseText"`
	Source     TermSource `json:"source"`
}

// OverriddenTerm records a clause that lost precedence for its clause type,
// with a human-readable reason for the audit trail.
type OverriddenTerm struct {
	ClauseID   int64      `json:"clauseId"`
	ClauseType string     `json:"clauseType"`
	Term
	SectionRef string     `json:"sectionRef"`
	ClauseText string     `json:"clauseText"`
	Source     TermSource `json:"source"`
	Reason     string     `json:"reason"`
}

// ResolvedTerms is the full output of one resolution pass: the current
// winner per clause type plus every term it displaced. Recomputed fresh on
// every call; never persisted.
type ResolvedTerms struct {
	Effective  map[string]ResolvedTerm     `json:"terms"`
	Overridden map[string][]OverriddenTerm `json:"overridden"`
}

// TermSummaryEntry is a display-oriented digest of one effective term for
// the investor overview.
type TermSummaryEntry struct {
	Value        string `json:"value"`
	Source       string `json:"source"`
	DocumentType string `json:"documentType"`
}
