package services

import (
	"database/sql"
	"fmt"

	"github.com/username/termtrack/backend/src/database"
	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/models"
	"github.com/username/termtrack/backend/src/security/validation"
	"github.com/username/termtrack/backend/src/utils"
)

type agreementServiceImpl struct {
	termsService TermsService
}

// NewAgreementService wires the CRUD layer to the terms service so every
// write invalidates the affected investor's cached resolution.
func NewAgreementService(termsService TermsService) AgreementService {
	return &agreementServiceImpl{termsService: termsService}
}

// --- Investors ---

func (s *agreementServiceImpl) ListInvestors() ([]models.Investor, error) {
	rows, err := database.DB.Query(
		`SELECT id, name, investor_type, commitment_amount, currency, fund, relationship_notes, internal_notes, created_at, updated_at
		 FROM investors ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying investors: %w", err)
	}
	defer rows.Close()

	var investors []models.Investor
	for rows.Next() {
		var inv models.Investor
		var investorType, currency, fund, relationshipNotes, internalNotes sql.NullString
		var commitment sql.NullFloat64
		if err := rows.Scan(&inv.ID, &inv.Name, &investorType, &commitment, &currency,
			&fund, &relationshipNotes, &internalNotes, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning investor row: %w", err)
		}
		inv.InvestorType = investorType.String
		inv.Currency = currency.String
		inv.Fund = fund.String
		inv.RelationshipNotes = relationshipNotes.String
		inv.InternalNotes = internalNotes.String
		if commitment.Valid {
			inv.CommitmentAmount = &commitment.Float64
		}
		investors = append(investors, inv)
	}
	return investors, rows.Err()
}

func (s *agreementServiceImpl) GetInvestor(id int64) (*models.Investor, error) {
	var inv models.Investor
	var investorType, currency, fund, relationshipNotes, internalNotes sql.NullString
	var commitment sql.NullFloat64
	err := database.DB.QueryRow(
		`SELECT id, name, investor_type, commitment_amount, currency, fund, relationship_notes, internal_notes, created_at, updated_at
		 FROM investors WHERE id = ?`, id).
		Scan(&inv.ID, &inv.Name, &investorType, &commitment, &currency,
			&fund, &relationshipNotes, &internalNotes, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvestorNotFound
		}
		return nil, fmt.Errorf("error querying investor %d: %w", id, err)
	}
	inv.InvestorType = investorType.String
	inv.Currency = currency.String
	inv.Fund = fund.String
	inv.RelationshipNotes = relationshipNotes.String
	inv.InternalNotes = internalNotes.String
	if commitment.Valid {
		inv.CommitmentAmount = &commitment.Float64
	}
	return &inv, nil
}

func (s *agreementServiceImpl) CreateInvestor(investor *models.Investor) error {
	if investor.Currency == "" {
		investor.Currency = "USD"
	}
	investor.RelationshipNotes = validation.CleanFreeText(investor.RelationshipNotes)
	investor.InternalNotes = validation.CleanFreeText(investor.InternalNotes)

	res, err := database.DB.Exec(
		`INSERT INTO investors (name, investor_type, commitment_amount, currency, fund, relationship_notes, internal_notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		investor.Name, investor.InvestorType, investor.CommitmentAmount, investor.Currency,
		investor.Fund, investor.RelationshipNotes, investor.InternalNotes)
	if err != nil {
		return fmt.Errorf("error inserting investor: %w", err)
	}
	investor.ID, err = res.LastInsertId()
	return err
}

func (s *agreementServiceImpl) UpdateInvestor(investor *models.Investor) error {
	investor.RelationshipNotes = validation.CleanFreeText(investor.RelationshipNotes)
	investor.InternalNotes = validation.CleanFreeText(investor.InternalNotes)

	res, err := database.DB.Exec(
		`UPDATE investors SET name = ?, investor_type = ?, commitment_amount = ?, currency = ?, fund = ?, relationship_notes = ?, internal_notes = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		investor.Name, investor.InvestorType, investor.CommitmentAmount, investor.Currency,
		investor.Fund, investor.RelationshipNotes, investor.InternalNotes, investor.ID)
	if err != nil {
		return fmt.Errorf("error updating investor %d: %w", investor.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvestorNotFound
	}
	return nil
}

func (s *agreementServiceImpl) DeleteInvestor(id int64) error {
	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning delete transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM clauses WHERE document_id IN (SELECT id FROM documents WHERE investor_id = ?)`, id); err != nil {
		return fmt.Errorf("error deleting clauses for investor %d: %w", id, err)
	}
	if _, err := dbTx.Exec(`DELETE FROM documents WHERE investor_id = ?`, id); err != nil {
		return fmt.Errorf("error deleting documents for investor %d: %w", id, err)
	}
	res, err := dbTx.Exec(`DELETE FROM investors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting investor %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrInvestorNotFound
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing investor delete: %w", err)
	}

	s.termsService.InvalidateInvestorCache(id)
	logger.L.Info("Deleted investor with all documents and clauses", "investorID", id)
	return nil
}

// --- Funds ---

func (s *agreementServiceImpl) ListFunds() ([]models.Fund, error) {
	rows, err := database.DB.Query(`SELECT id, name, vehicle_type, vintage_year, created_at FROM funds ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying funds: %w", err)
	}
	defer rows.Close()

	var funds []models.Fund
	for rows.Next() {
		var fund models.Fund
		var vehicleType sql.NullString
		var vintageYear sql.NullInt64
		if err := rows.Scan(&fund.ID, &fund.Name, &vehicleType, &vintageYear, &fund.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning fund row: %w", err)
		}
		fund.VehicleType = vehicleType.String
		if vintageYear.Valid {
			y := int(vintageYear.Int64)
			fund.VintageYear = &y
		}
		funds = append(funds, fund)
	}
	return funds, rows.Err()
}

func (s *agreementServiceImpl) CreateFund(fund *models.Fund) error {
	res, err := database.DB.Exec(
		`INSERT INTO funds (name, vehicle_type, vintage_year) VALUES (?, ?, ?)`,
		fund.Name, fund.VehicleType, fund.VintageYear)
	if err != nil {
		return fmt.Errorf("error inserting fund: %w", err)
	}
	fund.ID, err = res.LastInsertId()
	return err
}

func (s *agreementServiceImpl) DeleteFund(id int64) error {
	res, err := database.DB.Exec(`DELETE FROM funds WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting fund %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrFundNotFound
	}
	return nil
}

// --- Documents ---

func (s *agreementServiceImpl) ListDocuments(investorID *int64) ([]models.Document, error) {
	query := `SELECT id, investor_id, fund_id, title, doc_type, status, effective_date, supersedes_id, priority, file_name, file_path, created_at, updated_at
	          FROM documents`
	var args []interface{}
	if investorID != nil {
		query += ` WHERE investor_id = ?`
		args = append(args, *investorID)
	}
	query += ` ORDER BY effective_date DESC, id DESC`

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document row: %w", err)
		}
		documents = append(documents, doc)
	}
	return documents, rows.Err()
}

func (s *agreementServiceImpl) GetDocument(id int64) (*models.Document, error) {
	rows, err := database.DB.Query(
		`SELECT id, investor_id, fund_id, title, doc_type, status, effective_date, supersedes_id, priority, file_name, file_path, created_at, updated_at
		 FROM documents WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("error querying document %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrDocumentNotFound
	}
	doc, err := scanDocument(rows)
	if err != nil {
		return nil, fmt.Errorf("error scanning document %d: %w", id, err)
	}
	return &doc, nil
}

func (s *agreementServiceImpl) CreateDocument(doc *models.Document) error {
	if doc.Status == "" {
		doc.Status = models.StatusActive
	}
	res, err := database.DB.Exec(
		`INSERT INTO documents (investor_id, fund_id, title, doc_type, status, effective_date, supersedes_id, priority, file_name, file_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.InvestorID, doc.FundID, doc.Title, doc.DocType, doc.Status,
		utils.FormatEffectiveDate(doc.EffectiveDate), doc.SupersedesID, doc.Priority,
		doc.FileName, doc.FilePath)
	if err != nil {
		return fmt.Errorf("error inserting document: %w", err)
	}
	doc.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	s.termsService.InvalidateInvestorCache(doc.InvestorID)
	return nil
}

func (s *agreementServiceImpl) UpdateDocumentStatus(id int64, status string) error {
	doc, err := s.GetDocument(id)
	if err != nil {
		return err
	}
	if _, err := database.DB.Exec(
		`UPDATE documents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id); err != nil {
		return fmt.Errorf("error updating status of document %d: %w", id, err)
	}
	s.termsService.InvalidateInvestorCache(doc.InvestorID)
	return nil
}

func (s *agreementServiceImpl) AttachDocumentFile(id int64, fileName, filePath string) error {
	if _, err := s.GetDocument(id); err != nil {
		return err
	}
	if _, err := database.DB.Exec(
		`UPDATE documents SET file_name = ?, file_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		fileName, filePath, id); err != nil {
		return fmt.Errorf("error attaching file to document %d: %w", id, err)
	}
	logger.L.Info("Attached file to document", "documentID", id, "fileName", fileName)
	return nil
}

func (s *agreementServiceImpl) DeleteDocument(id int64) error {
	doc, err := s.GetDocument(id)
	if err != nil {
		return err
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return fmt.Errorf("error beginning delete transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.Exec(`DELETE FROM clauses WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("error deleting clauses of document %d: %w", id, err)
	}
	if _, err := dbTx.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting document %d: %w", id, err)
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("error committing document delete: %w", err)
	}

	s.termsService.InvalidateInvestorCache(doc.InvestorID)
	return nil
}

// --- Clauses ---

func (s *agreementServiceImpl) ListClauses(documentID int64) ([]models.Clause, error) {
	rows, err := database.DB.Query(
		`SELECT id, document_id, clause_type, clause_text, rate, discount, threshold, threshold_amount, section_ref, page_number, notes, created_at
		 FROM clauses WHERE document_id = ? ORDER BY id ASC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("error querying clauses for document %d: %w", documentID, err)
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
	return clauses, rows.Err()
}

func (s *agreementServiceImpl) CreateClause(clause *models.Clause) error {
	doc, err := s.GetDocument(clause.DocumentID)
	if err != nil {
		return err
	}

	clause.ClauseText = validation.CleanFreeText(clause.ClauseText)
	clause.Threshold = validation.CleanFreeText(clause.Threshold)
	clause.Notes = validation.CleanFreeText(clause.Notes)

	res, err := database.DB.Exec(
		`INSERT INTO clauses (document_id, clause_type, clause_text, rate, discount, threshold, threshold_amount, section_ref, page_number, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		clause.DocumentID, clause.ClauseType, clause.ClauseText, clause.Rate, clause.Discount,
		clause.Threshold, clause.ThresholdAmount, clause.SectionRef, clause.PageNumber, clause.Notes)
	if err != nil {
		return fmt.Errorf("error inserting clause: %w", err)
	}
	clause.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	s.termsService.InvalidateInvestorCache(doc.InvestorID)
	return nil
}

func (s *agreementServiceImpl) DeleteClause(id int64) error {
	var documentID int64
	err := database.DB.QueryRow(`SELECT document_id FROM clauses WHERE id = ?`, id).Scan(&documentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrClauseNotFound
		}
		return fmt.Errorf("error looking up clause %d: %w", id, err)
	}
	doc, err := s.GetDocument(documentID)
	if err != nil {
		return err
	}
	if _, err := database.DB.Exec(`DELETE FROM clauses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting clause %d: %w", id, err)
	}
	s.termsService.InvalidateInvestorCache(doc.InvestorID)
	return nil
}
