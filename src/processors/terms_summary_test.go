package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/termtrack/backend/src/models"
)

func TestBuildTermsSummaryHeadlineValues(t *testing.T) {
	effective := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: {
			Term:   models.Term{Rate: floatPtr(1.75)},
			Source: models.TermSource{DocumentTitle: "Side Letter", DocumentType: models.DocTypeSideLetter},
		},
		models.ClauseTypeFeeStepDown: {
			Term:   models.Term{Discount: floatPtr(0.25), Threshold: "Year 4"},
			Source: models.TermSource{DocumentTitle: "Side Letter", DocumentType: models.DocTypeSideLetter},
		},
		models.ClauseTypeMFN: {
			Source: models.TermSource{DocumentTitle: "Side Letter", DocumentType: models.DocTypeSideLetter},
		},
		models.ClauseTypeCarryTerms: {
			Term:   models.Term{Rate: floatPtr(20.0)},
			Source: models.TermSource{DocumentTitle: "PPM", DocumentType: models.DocTypePPM},
		},
	}

	summary := BuildTermsSummary(effective)

	require.Contains(t, summary, "managementFee")
	assert.Equal(t, "1.75%", summary["managementFee"].Value)
	assert.Equal(t, "Side Letter", summary["managementFee"].Source)
	assert.Equal(t, models.DocTypeSideLetter, summary["managementFee"].DocumentType)

	require.Contains(t, summary, "feeStepDown")
	assert.Equal(t, "−0.25% at Year 4", summary["feeStepDown"].Value)

	require.Contains(t, summary, "mfnProtection")
	assert.Equal(t, "Enabled", summary["mfnProtection"].Value)

	require.Contains(t, summary, "carryTerms")
	assert.Equal(t, "20.00%", summary["carryTerms"].Value)

	assert.NotContains(t, summary, "preferredReturn")
	assert.NotContains(t, summary, "feeWaiver")
	assert.NotContains(t, summary, "coInvestment")
}

func TestBuildTermsSummaryMissingValuesRenderAsDash(t *testing.T) {
	effective := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: {Source: models.TermSource{DocumentTitle: "PPM"}},
		models.ClauseTypeFeeWaiver:     {Source: models.TermSource{DocumentTitle: "Side Letter"}},
	}

	summary := BuildTermsSummary(effective)

	assert.Equal(t, "—", summary["managementFee"].Value)
	assert.Equal(t, "—", summary["feeWaiver"].Value)
}

func TestBuildTermsSummaryEmptyInput(t *testing.T) {
	summary := BuildTermsSummary(map[string]models.ResolvedTerm{})
	assert.Empty(t, summary)
}
