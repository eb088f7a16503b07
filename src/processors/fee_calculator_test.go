package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/termtrack/backend/src/models"
)

func managementFeeTerm(rate float64) models.ResolvedTerm {
	return models.ResolvedTerm{
		ClauseType: models.ClauseTypeManagementFee,
		Term:       models.Term{Rate: floatPtr(rate)},
		SectionRef: "2.1",
		Source:     models.TermSource{DocumentID: 1, DocumentType: models.DocTypeSideLetter},
	}
}

func waiverTerm(discount float64) models.ResolvedTerm {
	return models.ResolvedTerm{
		ClauseType: models.ClauseTypeFeeWaiver,
		Term:       models.Term{Discount: floatPtr(discount)},
		SectionRef: "3.4",
		Source:     models.TermSource{DocumentID: 2, DocumentType: models.DocTypeSideLetter},
	}
}

func stepDownTerm(discount float64, threshold string) models.ResolvedTerm {
	return models.ResolvedTerm{
		ClauseType: models.ClauseTypeFeeStepDown,
		Term:       models.Term{Discount: floatPtr(discount), Threshold: threshold},
		Source:     models.TermSource{DocumentID: 3, DocumentType: models.DocTypeFeeSchedule},
	}
}

func newTestCalculator() FeeCalculator {
	return NewFeeCalculator(2.0, 4)
}

func TestCalculateDefaultsWithNoTerms(t *testing.T) {
	calc := newTestCalculator()

	result := calc.Calculate(map[string]models.ResolvedTerm{}, 100_000_000, 1)

	assert.Equal(t, 2.0, result.BaseRate)
	assert.Equal(t, 2.0, result.EffectiveRate)
	assert.Equal(t, 2_000_000.0, result.AnnualFee)
	assert.Empty(t, result.Discounts)
	assert.Empty(t, result.StepDowns)
}

func TestCalculateUsesResolvedBaseRate(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(1.75),
	}

	result := calc.Calculate(terms, 100_000_000, 1)

	assert.Equal(t, 1.75, result.BaseRate)
	assert.Equal(t, 1.75, result.EffectiveRate)
	assert.Equal(t, 1_750_000.0, result.AnnualFee)
}

func TestCalculateWaiverStacksAdditively(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(2.0),
		models.ClauseTypeFeeWaiver:     waiverTerm(0.25),
	}

	result := calc.Calculate(terms, 100_000_000, 1)

	assert.Equal(t, 2.0, result.BaseRate)
	assert.Equal(t, 1.75, result.EffectiveRate)
	assert.Equal(t, 1_750_000.0, result.AnnualFee)

	require.Len(t, result.Discounts, 1)
	assert.Equal(t, "Fee Discount", result.Discounts[0].Label)
	assert.Equal(t, 0.25, result.Discounts[0].Rate)
	assert.Equal(t, "Side Letter §3.4", result.Discounts[0].Source)
}

func TestCalculateStepDownBeforeThresholdYear(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(1.75),
		models.ClauseTypeFeeStepDown:   stepDownTerm(0.25, "Year 4"),
	}

	result := calc.Calculate(terms, 100_000_000, 3)

	// Year 3 is still in the pre-step-down period: no step-down discount in
	// the flat list, but both projection rows are present.
	assert.Equal(t, 1.75, result.EffectiveRate)
	assert.Equal(t, 1_750_000.0, result.AnnualFee)
	assert.Empty(t, result.Discounts)

	require.Len(t, result.StepDowns, 2)
	assert.Equal(t, "Years 1-3", result.StepDowns[0].YearRange)
	assert.Equal(t, 1.75, result.StepDowns[0].Rate)
	assert.Equal(t, 1_750_000.0, result.StepDowns[0].AnnualFee)
	assert.Equal(t, "Years 4+", result.StepDowns[1].YearRange)
	assert.Equal(t, 1.5, result.StepDowns[1].Rate)
	assert.Equal(t, 1_500_000.0, result.StepDowns[1].AnnualFee)
}

func TestCalculateStepDownAtThresholdYear(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(1.75),
		models.ClauseTypeFeeStepDown:   stepDownTerm(0.25, "Year 4"),
	}

	result := calc.Calculate(terms, 100_000_000, 4)

	assert.Equal(t, 1.5, result.EffectiveRate)
	assert.Equal(t, 1_500_000.0, result.AnnualFee)

	require.Len(t, result.Discounts, 1)
	assert.Equal(t, "Step-Down (Year 4+)", result.Discounts[0].Label)
	assert.Equal(t, 0.25, result.Discounts[0].Rate)

	// Once the step-down year is reached the pre-period row is dropped.
	require.Len(t, result.StepDowns, 1)
	assert.Equal(t, "Years 4+", result.StepDowns[0].YearRange)
}

func TestCalculateStepDownAfterThresholdYear(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(1.75),
		models.ClauseTypeFeeStepDown:   stepDownTerm(0.25, "Year 4"),
	}

	result := calc.Calculate(terms, 100_000_000, 5)

	assert.Equal(t, 1.5, result.EffectiveRate)
	assert.Equal(t, 1_500_000.0, result.AnnualFee)
}

func TestCalculateStepDownThresholdParsing(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name      string
		threshold string
		wantRange string
	}{
		{"plain year", "Year 6", "Years 6+"},
		{"embedded digits", "beginning in year 3 of the fund", "Years 3+"},
		{"no digits falls back to default", "after the investment period", "Years 4+"},
		{"zero falls back to default", "Year 0", "Years 4+"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := map[string]models.ResolvedTerm{
				models.ClauseTypeFeeStepDown: stepDownTerm(0.25, tt.threshold),
			}
			result := calc.Calculate(terms, 1_000_000, 1)
			require.NotEmpty(t, result.StepDowns)
			last := result.StepDowns[len(result.StepDowns)-1]
			assert.Equal(t, tt.wantRange, last.YearRange)
		})
	}
}

func TestCalculateStepDownIgnoredWithoutDiscountOrThreshold(t *testing.T) {
	calc := newTestCalculator()

	noDiscount := models.ResolvedTerm{
		ClauseType: models.ClauseTypeFeeStepDown,
		Term:       models.Term{Threshold: "Year 4"},
	}
	result := calc.Calculate(map[string]models.ResolvedTerm{models.ClauseTypeFeeStepDown: noDiscount}, 1_000_000, 5)
	assert.Empty(t, result.StepDowns)
	assert.Empty(t, result.Discounts)

	noThreshold := models.ResolvedTerm{
		ClauseType: models.ClauseTypeFeeStepDown,
		Term:       models.Term{Discount: floatPtr(0.25)},
	}
	result = calc.Calculate(map[string]models.ResolvedTerm{models.ClauseTypeFeeStepDown: noThreshold}, 1_000_000, 5)
	assert.Empty(t, result.StepDowns)
	assert.Empty(t, result.Discounts)
}

func TestCalculateWaiverAndStepDownCombine(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(2.0),
		models.ClauseTypeFeeWaiver:     waiverTerm(0.25),
		models.ClauseTypeFeeStepDown:   stepDownTerm(0.5, "Year 4"),
	}

	result := calc.Calculate(terms, 100_000_000, 4)

	require.Len(t, result.Discounts, 2)
	assert.Equal(t, 1.25, result.EffectiveRate)
	assert.Equal(t, 1_250_000.0, result.AnnualFee)
}

func TestCalculateNegativeEffectiveRateSurfaces(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(0.5),
		models.ClauseTypeFeeWaiver:     waiverTerm(0.75),
	}

	result := calc.Calculate(terms, 1_000_000, 1)

	assert.Equal(t, -0.25, result.EffectiveRate)
	assert.Equal(t, -2_500.0, result.AnnualFee)
}

func TestCalculateZeroCommitment(t *testing.T) {
	calc := newTestCalculator()
	terms := map[string]models.ResolvedTerm{
		models.ClauseTypeManagementFee: managementFeeTerm(2.0),
	}

	result := calc.Calculate(terms, 0, 1)

	assert.Equal(t, 2.0, result.EffectiveRate)
	assert.Equal(t, 0.0, result.AnnualFee)
}

func TestCalculateCitationUsesDashWhenNoSection(t *testing.T) {
	calc := newTestCalculator()
	term := waiverTerm(0.1)
	term.SectionRef = ""
	terms := map[string]models.ResolvedTerm{models.ClauseTypeFeeWaiver: term}

	result := calc.Calculate(terms, 1_000_000, 1)

	require.Len(t, result.Discounts, 1)
	assert.Equal(t, "Side Letter §—", result.Discounts[0].Source)
}
