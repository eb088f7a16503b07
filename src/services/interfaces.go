package services

import (
	"errors"

	"github.com/username/termtrack/backend/src/models"
)

var (
	ErrInvestorNotFound = errors.New("investor not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrClauseNotFound   = errors.New("clause not found")
	ErrFundNotFound     = errors.New("fund not found")
)

// EffectiveTermsResult is the payload served by the effective-terms
// endpoint: the controlling term per clause type, the audit trail of
// displaced terms, and the display summary.
type EffectiveTermsResult struct {
	Terms      map[string]models.ResolvedTerm     `json:"terms"`
	Overridden map[string][]models.OverriddenTerm `json:"overridden"`
	Summary    map[string]models.TermSummaryEntry `json:"summary"`
}

// AgreementService owns persistence of investors, funds, documents and
// clauses. Every write invalidates the affected investor's cached terms.
type AgreementService interface {
	ListInvestors() ([]models.Investor, error)
	GetInvestor(id int64) (*models.Investor, error)
	CreateInvestor(investor *models.Investor) error
	UpdateInvestor(investor *models.Investor) error
	DeleteInvestor(id int64) error

	ListFunds() ([]models.Fund, error)
	CreateFund(fund *models.Fund) error
	DeleteFund(id int64) error

	ListDocuments(investorID *int64) ([]models.Document, error)
	GetDocument(id int64) (*models.Document, error)
	CreateDocument(doc *models.Document) error
	UpdateDocumentStatus(id int64, status string) error
	AttachDocumentFile(id int64, fileName, filePath string) error
	DeleteDocument(id int64) error

	ListClauses(documentID int64) ([]models.Clause, error)
	CreateClause(clause *models.Clause) error
	DeleteClause(id int64) error
}

// TermsService serves resolved effective terms and fee projections.
// Resolution is recomputed from storage on every cache miss; the cache is
// purely a caller-side optimization keyed per investor and fund.
type TermsService interface {
	GetEffectiveTerms(investorID int64, fundID *int64) (*EffectiveTermsResult, error)
	CalculateFees(terms map[string]models.ResolvedTerm, commitment float64, investmentYear int) models.FeeCalculation
	CalculateFeesForInvestor(investorID int64, fundID *int64, commitment float64, investmentYear int) (*models.FeeCalculation, error)
	InvalidateInvestorCache(investorID int64)
}
