package processors

import (
	"errors"
	"fmt"
	"time"

	"github.com/username/termtrack/backend/src/models"
)

var (
	// ErrInvestorRequired is returned when a resolution is requested without
	// an investor id. Caller-input validation, never recovered internally.
	ErrInvestorRequired = errors.New("investorId is required")

	// ErrUnknownDocument is returned when a clause references a document that
	// was not supplied. Resolving around it could misstate the effective
	// terms, so it is reported instead of skipped.
	ErrUnknownDocument = errors.New("clause references unknown document")
)

type termsResolverImpl struct{}

func NewTermsResolver() TermsResolver {
	return &termsResolverImpl{}
}

// Resolve applies documents in ascending (effective date, priority) order and
// lets each later document's clauses overwrite the running effective map for
// their clause type. Whatever a clause displaces moves into the overridden
// list with a reason, so the audit trail is a first-class output rather than
// a side effect.
//
// Documents with status Superseded never contribute. When fundID is given,
// only documents tagged with that fund are in scope; fund-less documents are
// excluded by the filter, matching the upstream narrowing semantics. The
// caller's input order is not trusted beyond breaking exact ties.
func (r *termsResolverImpl) Resolve(documents []models.Document, clauses []models.Clause, investorID int64, fundID *int64) (*models.ResolvedTerms, error) {
	if investorID <= 0 {
		return nil, ErrInvestorRequired
	}

	docByID := make(map[int64]models.Document, len(documents))
	for _, doc := range documents {
		docByID[doc.ID] = doc
	}
	for _, clause := range clauses {
		if _, ok := docByID[clause.DocumentID]; !ok {
			return nil, fmt.Errorf("%w: clause %d references document %d", ErrUnknownDocument, clause.ID, clause.DocumentID)
		}
	}

	var eligible []models.Document
	for _, doc := range documents {
		if doc.InvestorID != investorID {
			continue
		}
		if doc.Status == models.StatusSuperseded {
			continue
		}
		if fundID != nil && (doc.FundID == nil || *doc.FundID != *fundID) {
			continue
		}
		eligible = append(eligible, doc)
	}

	clausesByDoc := make(map[int64][]models.Clause, len(eligible))
	for _, clause := range clauses {
		clausesByDoc[clause.DocumentID] = append(clausesByDoc[clause.DocumentID], clause)
	}

	result := &models.ResolvedTerms{
		Effective:  make(map[string]models.ResolvedTerm),
		Overridden: make(map[string][]models.OverriddenTerm),
	}

	for _, doc := range SortDocumentsForResolution(eligible) {
		for _, clause := range clausesByDoc[doc.ID] {
			candidate := resolvedTermFrom(clause, doc)
			if prev, ok := result.Effective[clause.ClauseType]; ok {
				result.Overridden[clause.ClauseType] = append(
					result.Overridden[clause.ClauseType],
					overriddenFrom(prev, overrideReason(candidate.Source, prev.Source)),
				)
			}
			result.Effective[clause.ClauseType] = candidate
		}
	}

	return result, nil
}

func resolvedTermFrom(clause models.Clause, doc models.Document) models.ResolvedTerm {
	return models.ResolvedTerm{
		ClauseID:   clause.ID,
		ClauseType: clause.ClauseType,
		Term:       clause.Term,
		SectionRef: clause.SectionRef,
		ClauseText: clause.ClauseText,
		Source: models.TermSource{
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
			DocumentType:  doc.DocType,
			Priority:      PriorityOf(doc),
			EffectiveDate: doc.EffectiveDate,
		},
	}
}

func overriddenFrom(term models.ResolvedTerm, reason string) models.OverriddenTerm {
	return models.OverriddenTerm{
		ClauseID:   term.ClauseID,
		ClauseType: term.ClauseType,
		Term:       term.Term,
		SectionRef: term.SectionRef,
		ClauseText: term.ClauseText,
		Source:     term.Source,
		Reason:     reason,
	}
}

// overrideReason explains why loser lost to winner. The date comparison
// takes precedence in the wording; priority is only cited when the dates are
// equal, and exact ties fall back to entry order.
func overrideReason(winner, loser models.TermSource) string {
	winnerDate := dateOrZero(winner)
	loserDate := dateOrZero(loser)

	switch {
	case winnerDate.After(loserDate):
		return "superseded by later effective date"
	case winnerDate.Equal(loserDate) && winner.Priority != loser.Priority:
		return "superseded by higher priority document with same effective date"
	default:
		return "superseded by more recently entered document with same effective date and priority"
	}
}

func dateOrZero(src models.TermSource) time.Time {
	if src.EffectiveDate != nil {
		return *src.EffectiveDate
	}
	return time.Time{}
}
