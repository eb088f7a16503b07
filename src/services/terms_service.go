package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/termtrack/backend/src/database"
	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/models"
	"github.com/username/termtrack/backend/src/processors"
	"github.com/username/termtrack/backend/src/utils"
)

const (
	// Cache key per investor and fund scope. The fund part is "all" when no
	// fund filter applies, so invalidation can sweep by investor prefix.
	ckEffectiveTerms = "effective_terms_inv_%d_fund_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type termsServiceImpl struct {
	resolver   processors.TermsResolver
	calculator processors.FeeCalculator
	termsCache *cache.Cache
}

func NewTermsService(resolver processors.TermsResolver, calculator processors.FeeCalculator, termsCache *cache.Cache) TermsService {
	return &termsServiceImpl{
		resolver:   resolver,
		calculator: calculator,
		termsCache: termsCache,
	}
}

func termsCacheKey(investorID int64, fundID *int64) string {
	fundPart := "all"
	if fundID != nil {
		fundPart = fmt.Sprintf("%d", *fundID)
	}
	return fmt.Sprintf(ckEffectiveTerms, investorID, fundPart)
}

func (s *termsServiceImpl) GetEffectiveTerms(investorID int64, fundID *int64) (*EffectiveTermsResult, error) {
	cacheKey := termsCacheKey(investorID, fundID)
	if cached, found := s.termsCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for effective terms", "investorID", investorID)
		return cached.(*EffectiveTermsResult), nil
	}
	logger.L.Info("Cache miss for effective terms, resolving from DB", "investorID", investorID, "fundID", fundID)

	documents, err := fetchInvestorDocuments(investorID)
	if err != nil {
		return nil, err
	}
	clauses, err := fetchClausesForDocuments(documents)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolver.Resolve(documents, clauses, investorID, fundID)
	if err != nil {
		return nil, fmt.Errorf("resolving effective terms for investor %d: %w", investorID, err)
	}

	result := &EffectiveTermsResult{
		Terms:      resolved.Effective,
		Overridden: resolved.Overridden,
		Summary:    processors.BuildTermsSummary(resolved.Effective),
	}
	s.termsCache.Set(cacheKey, result, DefaultCacheExpiration)
	return result, nil
}

func (s *termsServiceImpl) CalculateFees(terms map[string]models.ResolvedTerm, commitment float64, investmentYear int) models.FeeCalculation {
	return s.calculator.Calculate(terms, commitment, investmentYear)
}

func (s *termsServiceImpl) CalculateFeesForInvestor(investorID int64, fundID *int64, commitment float64, investmentYear int) (*models.FeeCalculation, error) {
	resolved, err := s.GetEffectiveTerms(investorID, fundID)
	if err != nil {
		return nil, err
	}
	calculation := s.calculator.Calculate(resolved.Terms, commitment, investmentYear)
	return &calculation, nil
}

// InvalidateInvestorCache drops every cached fund scope for the investor.
// Called after any document or clause write touching that investor.
func (s *termsServiceImpl) InvalidateInvestorCache(investorID int64) {
	prefix := fmt.Sprintf("effective_terms_inv_%d_", investorID)
	for key := range s.termsCache.Items() {
		if strings.HasPrefix(key, prefix) {
			s.termsCache.Delete(key)
		}
	}
	logger.L.Debug("Invalidated effective terms cache", "investorID", investorID)
}

// fetchInvestorDocuments loads all of an investor's documents, regardless of
// status; the resolver itself excludes Superseded ones so they can still be
// reported on elsewhere.
func fetchInvestorDocuments(investorID int64) ([]models.Document, error) {
	rows, err := database.DB.Query(
		`SELECT id, investor_id, fund_id, title, doc_type, status, effective_date, supersedes_id, priority, file_name, file_path, created_at, updated_at
		 FROM documents WHERE investor_id = ? ORDER BY id ASC`, investorID)
	if err != nil {
		return nil, fmt.Errorf("error querying documents for investor %d: %w", investorID, err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document row for investor %d: %w", investorID, err)
		}
		documents = append(documents, doc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over document rows for investor %d: %w", investorID, err)
	}
	return documents, nil
}

func fetchClausesForDocuments(documents []models.Document) ([]models.Clause, error) {
	if len(documents) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(documents))
	args := make([]interface{}, len(documents))
	for i, doc := range documents {
		placeholders[i] = "?"
		args[i] = doc.ID
	}

	rows, err := database.DB.Query(
		`SELECT id, document_id, clause_type, clause_text, rate, discount, threshold, threshold_amount, section_ref, page_number, notes, created_at
		 FROM clauses WHERE document_id IN (`+strings.Join(placeholders, ",")+`) ORDER BY id ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying clauses: %w", err)
	}
	defer rows.Close()

	var clauses []models.Clause
	for rows.Next() {
		clause, err := scanClause(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning clause row: %w", err)
		}
		clauses = append(clauses, clause)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over clause rows: %w", err)
	}
	return clauses, nil
}

func scanDocument(rows *sql.Rows) (models.Document, error) {
	var doc models.Document
	var fundID, supersedesID sql.NullInt64
	var docType, status, effectiveDate, fileName, filePath sql.NullString

	err := rows.Scan(&doc.ID, &doc.InvestorID, &fundID, &doc.Title, &docType, &status,
		&effectiveDate, &supersedesID, &doc.Priority, &fileName, &filePath, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return doc, err
	}

	if fundID.Valid {
		doc.FundID = &fundID.Int64
	}
	if supersedesID.Valid {
		doc.SupersedesID = &supersedesID.Int64
	}
	doc.DocType = docType.String
	doc.Status = status.String
	doc.EffectiveDate = utils.ParseEffectiveDate(effectiveDate.String)
	doc.FileName = fileName.String
	doc.FilePath = filePath.String
	return doc, nil
}

func scanClause(rows *sql.Rows) (models.Clause, error) {
	var clause models.Clause
	var clauseText, threshold, sectionRef, notes sql.NullString
	var rate, discount, thresholdAmount sql.NullFloat64
	var pageNumber sql.NullInt64

	err := rows.Scan(&clause.ID, &clause.DocumentID, &clause.ClauseType, &clauseText,
		&rate, &discount, &threshold, &thresholdAmount, &sectionRef, &pageNumber, &notes, &clause.CreatedAt)
	if err != nil {
		return clause, err
	}

	clause.ClauseText = clauseText.String
	clause.Threshold = threshold.String
	clause.SectionRef = sectionRef.String
	clause.Notes = notes.String
	if rate.Valid {
		clause.Rate = &rate.Float64
	}
	if discount.Valid {
		clause.Discount = &discount.Float64
	}
	if thresholdAmount.Valid {
		clause.ThresholdAmount = &thresholdAmount.Float64
	}
	if pageNumber.Valid {
		p := int(pageNumber.Int64)
		clause.PageNumber = &p
	}
	return clause, nil
}
