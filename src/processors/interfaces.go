package processors

import (
	"github.com/username/termtrack/backend/src/models"
)

// TermsResolver reconciles an investor's documents and clauses into one
// controlling term per clause type, plus the audit trail of displaced terms.
type TermsResolver interface {
	Resolve(documents []models.Document, clauses []models.Clause, investorID int64, fundID *int64) (*models.ResolvedTerms, error)
}

// FeeCalculator turns a resolved term map into a concrete fee projection for
// a hypothetical commitment at a given investment year.
type FeeCalculator interface {
	Calculate(resolved map[string]models.ResolvedTerm, commitment float64, investmentYear int) models.FeeCalculation
}
