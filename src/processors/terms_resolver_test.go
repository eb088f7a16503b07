package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/termtrack/backend/src/models"
)

func floatPtr(v float64) *float64 { return &v }

func int64Ptr(v int64) *int64 { return &v }

func feeClause(id, docID int64, rate float64) models.Clause {
	return models.Clause{
		ID:         id,
		DocumentID: docID,
		ClauseType: models.ClauseTypeManagementFee,
		Term:       models.Term{Rate: floatPtr(rate)},
	}
}

func TestResolveRequiresInvestor(t *testing.T) {
	resolver := NewTermsResolver()

	_, err := resolver.Resolve(nil, nil, 0, nil)
	assert.ErrorIs(t, err, ErrInvestorRequired)

	_, err = resolver.Resolve(nil, nil, -3, nil)
	assert.ErrorIs(t, err, ErrInvestorRequired)
}

func TestResolveRejectsOrphanedClause(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{{ID: 1, InvestorID: 7, Status: models.StatusActive}}
	clauses := []models.Clause{feeClause(1, 99, 2.0)}

	_, err := resolver.Resolve(docs, clauses, 7, nil)
	assert.ErrorIs(t, err, ErrUnknownDocument)
	assert.Contains(t, err.Error(), "document 99")
}

func TestResolveOrphanCheckCoversFilteredDocuments(t *testing.T) {
	// The clause references a superseded document. The document is supplied,
	// so this is not an integrity failure; the clause just never resolves.
	resolver := NewTermsResolver()
	docs := []models.Document{{ID: 1, InvestorID: 7, Status: models.StatusSuperseded}}
	clauses := []models.Clause{feeClause(1, 1, 2.0)}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Effective)
	assert.Empty(t, result.Overridden)
}

func TestResolveEmptyInputs(t *testing.T) {
	resolver := NewTermsResolver()

	result, err := resolver.Resolve(nil, nil, 7, nil)
	require.NoError(t, err)
	assert.NotNil(t, result.Effective)
	assert.NotNil(t, result.Overridden)
	assert.Empty(t, result.Effective)
	assert.Empty(t, result.Overridden)
}

func TestResolveSingleClausePerType(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{{
		ID: 1, InvestorID: 7, Status: models.StatusActive,
		DocType: models.DocTypeSubscription, Title: "Sub Agreement",
	}}
	clauses := []models.Clause{feeClause(1, 1, 2.0)}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)
	require.Contains(t, result.Effective, models.ClauseTypeManagementFee)
	assert.Empty(t, result.Overridden)

	term := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, int64(1), term.ClauseID)
	assert.Equal(t, 2.0, *term.Rate)
	assert.Equal(t, "Sub Agreement", term.Source.DocumentTitle)
	assert.Equal(t, 2, term.Source.Priority)
}

func TestResolveLaterEffectiveDateWins(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeAmendment,
			Title: "First Amendment", EffectiveDate: datePtr(t, "2024-01-15")},
		{ID: 2, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSubscription,
			Title: "Sub Agreement", EffectiveDate: datePtr(t, "2024-03-01")},
	}
	clauses := []models.Clause{feeClause(1, 1, 1.5), feeClause(2, 2, 2.0)}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)

	// The later-dated Subscription Agreement controls even though the
	// Amendment outranks it on document type.
	effective := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, int64(2), effective.Source.DocumentID)
	assert.Equal(t, 2.0, *effective.Rate)

	overridden := result.Overridden[models.ClauseTypeManagementFee]
	require.Len(t, overridden, 1)
	assert.Equal(t, int64(1), overridden[0].Source.DocumentID)
	assert.Equal(t, "superseded by later effective date", overridden[0].Reason)
}

func TestResolveHigherPriorityWinsOnDateTie(t *testing.T) {
	resolver := NewTermsResolver()
	date := "2024-03-01"
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSideLetter,
			Title: "Side Letter", EffectiveDate: datePtr(t, date)},
		{ID: 2, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSubscription,
			Title: "Sub Agreement", EffectiveDate: datePtr(t, date)},
	}
	clauses := []models.Clause{feeClause(1, 1, 1.75), feeClause(2, 2, 2.0)}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)

	effective := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, int64(1), effective.Source.DocumentID)

	overridden := result.Overridden[models.ClauseTypeManagementFee]
	require.Len(t, overridden, 1)
	assert.Equal(t, "superseded by higher priority document with same effective date", overridden[0].Reason)
}

func TestResolveEntryOrderBreaksExactTies(t *testing.T) {
	resolver := NewTermsResolver()
	date := "2024-03-01"
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSideLetter,
			Title: "Side Letter A", EffectiveDate: datePtr(t, date)},
		{ID: 2, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeFeeSchedule,
			Title: "Fee Schedule B", EffectiveDate: datePtr(t, date)},
	}
	clauses := []models.Clause{feeClause(1, 1, 1.75), feeClause(2, 2, 1.5)}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)

	effective := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, int64(2), effective.Source.DocumentID)

	overridden := result.Overridden[models.ClauseTypeManagementFee]
	require.Len(t, overridden, 1)
	assert.Equal(t, "superseded by more recently entered document with same effective date and priority", overridden[0].Reason)
}

func TestResolveExcludesSupersededAndOtherInvestors(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusSuperseded, DocType: models.DocTypeAmendment,
			EffectiveDate: datePtr(t, "2024-06-01")},
		{ID: 2, InvestorID: 8, Status: models.StatusActive, DocType: models.DocTypeAmendment,
			EffectiveDate: datePtr(t, "2024-06-01")},
		{ID: 3, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSubscription,
			EffectiveDate: datePtr(t, "2024-01-15")},
	}
	clauses := []models.Clause{feeClause(1, 1, 0.5), feeClause(2, 2, 0.75), feeClause(3, 3, 2.0)}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)

	effective := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, int64(3), effective.Source.DocumentID)
	assert.Empty(t, result.Overridden)
}

func TestResolveFundFilterExcludesUntaggedDocuments(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusActive, FundID: int64Ptr(3),
			DocType: models.DocTypeSideLetter, EffectiveDate: datePtr(t, "2024-03-01")},
		{ID: 2, InvestorID: 7, Status: models.StatusActive,
			DocType: models.DocTypeAmendment, EffectiveDate: datePtr(t, "2024-06-01")},
		{ID: 3, InvestorID: 7, Status: models.StatusActive, FundID: int64Ptr(4),
			DocType: models.DocTypeAmendment, EffectiveDate: datePtr(t, "2024-06-01")},
	}
	clauses := []models.Clause{feeClause(1, 1, 1.75), feeClause(2, 2, 1.0), feeClause(3, 3, 1.25)}

	result, err := resolver.Resolve(docs, clauses, 7, int64Ptr(3))
	require.NoError(t, err)

	// Only the fund 3 side letter is in scope; fund-less and other-fund
	// documents are excluded entirely.
	effective := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, int64(1), effective.Source.DocumentID)
	assert.Empty(t, result.Overridden)
}

func TestResolveNilDateSortsFirst(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeAmendment},
		{ID: 2, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypePPM,
			EffectiveDate: datePtr(t, "2024-01-15")},
	}
	clauses := []models.Clause{feeClause(1, 1, 1.0), feeClause(2, 2, 2.0)}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)

	// The undated Amendment is treated as the oldest document, so the dated
	// PPM displaces it despite its lower type rank.
	effective := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, int64(2), effective.Source.DocumentID)

	overridden := result.Overridden[models.ClauseTypeManagementFee]
	require.Len(t, overridden, 1)
	assert.Equal(t, "superseded by later effective date", overridden[0].Reason)
}

func TestResolveIsDeterministic(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSubscription,
			Title: "Sub Agreement", EffectiveDate: datePtr(t, "2024-01-15")},
		{ID: 2, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSideLetter,
			Title: "Side Letter", EffectiveDate: datePtr(t, "2024-03-01")},
	}
	clauses := []models.Clause{
		feeClause(1, 1, 2.0),
		feeClause(2, 2, 1.75),
		{ID: 3, DocumentID: 2, ClauseType: models.ClauseTypeFeeStepDown,
			Term: models.Term{Discount: floatPtr(0.25), Threshold: "Year 4"}},
	}

	first, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)
	second, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveSideLetterScenario(t *testing.T) {
	resolver := NewTermsResolver()
	docs := []models.Document{
		{ID: 1, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSubscription,
			Title: "Subscription Agreement", EffectiveDate: datePtr(t, "2024-01-15")},
		{ID: 2, InvestorID: 7, Status: models.StatusActive, DocType: models.DocTypeSideLetter,
			Title: "Side Letter", EffectiveDate: datePtr(t, "2024-03-01")},
	}
	clauses := []models.Clause{
		feeClause(1, 1, 2.0),
		feeClause(2, 2, 1.75),
		{ID: 3, DocumentID: 2, ClauseType: models.ClauseTypeFeeStepDown,
			Term: models.Term{Discount: floatPtr(0.25), Threshold: "Year 4"}},
	}

	result, err := resolver.Resolve(docs, clauses, 7, nil)
	require.NoError(t, err)

	fee := result.Effective[models.ClauseTypeManagementFee]
	assert.Equal(t, 1.75, *fee.Rate)
	assert.Equal(t, "Side Letter", fee.Source.DocumentTitle)

	stepDown := result.Effective[models.ClauseTypeFeeStepDown]
	assert.Equal(t, 0.25, *stepDown.Discount)
	assert.Equal(t, "Year 4", stepDown.Threshold)

	overridden := result.Overridden[models.ClauseTypeManagementFee]
	require.Len(t, overridden, 1)
	assert.Equal(t, 2.0, *overridden[0].Rate)
	assert.Equal(t, "Subscription Agreement", overridden[0].Source.DocumentTitle)
	assert.Equal(t, "superseded by later effective date", overridden[0].Reason)
	assert.NotContains(t, result.Overridden, models.ClauseTypeFeeStepDown)
}
