package processors

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/username/termtrack/backend/src/models"
	"github.com/username/termtrack/backend/src/utils"
)

// firstIntegerPattern pulls the step-down year out of a free-text threshold
// like "Year 4" or "beginning in year four (4)". Known approximation: a
// threshold with no digits falls back to the configured default year.
var firstIntegerPattern = regexp.MustCompile(`\d+`)

type feeCalculatorImpl struct {
	defaultBaseRate     float64
	defaultStepDownYear int
}

// NewFeeCalculator builds a calculator with explicit defaults (normally
// config.Cfg.DefaultBaseRate / DefaultStepDownYear) so the engine stays
// testable without shared state.
func NewFeeCalculator(defaultBaseRate float64, defaultStepDownYear int) FeeCalculator {
	return &feeCalculatorImpl{
		defaultBaseRate:     defaultBaseRate,
		defaultStepDownYear: defaultStepDownYear,
	}
}

// Calculate projects the annual management fee for a commitment at a given
// investment year, from the resolved term map.
//
// Discounts stack additively: a waiver and a step-down both subtract their
// full percentage points from the same base rate. That mirrors the observed
// upstream behavior and is not validated as contractual intent. The
// effective rate is never clamped at zero; a negative rate signals a
// drafting or data problem and is surfaced as-is.
func (c *feeCalculatorImpl) Calculate(resolved map[string]models.ResolvedTerm, commitment float64, investmentYear int) models.FeeCalculation {
	baseRate := c.defaultBaseRate
	if term, ok := resolved[models.ClauseTypeManagementFee]; ok && term.Rate != nil {
		baseRate = *term.Rate
	}

	discounts := []models.FeeDiscount{}
	if term, ok := resolved[models.ClauseTypeFeeWaiver]; ok && term.Discount != nil {
		discounts = append(discounts, models.FeeDiscount{
			Label:      "Fee Discount",
			Rate:       *term.Discount,
			Source:     citationLabel(term),
			DocumentID: term.Source.DocumentID,
		})
	}

	stepDowns := []models.FeeStepDown{}
	stepDownTerm, hasStepDown := resolved[models.ClauseTypeFeeStepDown]
	stepDownApplies := hasStepDown && stepDownTerm.Discount != nil && stepDownTerm.Threshold != ""
	if stepDownApplies {
		stepDownYear := c.stepDownYear(stepDownTerm.Threshold)
		preStepDownRate := baseRate - totalDiscount(discounts)
		postStepDownRate := preStepDownRate - *stepDownTerm.Discount

		// Only forward-looking ranges: once the step-down year is reached,
		// the pre-period row is irrelevant to the caller.
		if investmentYear < stepDownYear {
			stepDowns = append(stepDowns, models.FeeStepDown{
				YearRange: fmt.Sprintf("Years 1-%d", stepDownYear-1),
				Rate:      utils.RoundFloat(preStepDownRate, 4),
				AnnualFee: commitment * preStepDownRate / 100,
			})
		}
		stepDowns = append(stepDowns, models.FeeStepDown{
			YearRange: fmt.Sprintf("Years %d+", stepDownYear),
			Rate:      utils.RoundFloat(postStepDownRate, 4),
			AnnualFee: commitment * postStepDownRate / 100,
		})

		if investmentYear >= stepDownYear {
			discounts = append(discounts, models.FeeDiscount{
				Label:      fmt.Sprintf("Step-Down (Year %d+)", stepDownYear),
				Rate:       *stepDownTerm.Discount,
				Source:     citationLabel(stepDownTerm),
				DocumentID: stepDownTerm.Source.DocumentID,
			})
		}
	}

	effectiveRate := baseRate - totalDiscount(discounts)

	return models.FeeCalculation{
		BaseRate:      baseRate,
		Discounts:     discounts,
		EffectiveRate: utils.RoundFloat(effectiveRate, 4),
		AnnualFee:     commitment * effectiveRate / 100,
		StepDowns:     stepDowns,
	}
}

func (c *feeCalculatorImpl) stepDownYear(threshold string) int {
	match := firstIntegerPattern.FindString(threshold)
	if match == "" {
		return c.defaultStepDownYear
	}
	year, err := strconv.Atoi(match)
	if err != nil || year < 1 {
		return c.defaultStepDownYear
	}
	return year
}

func totalDiscount(discounts []models.FeeDiscount) float64 {
	var sum float64
	for _, d := range discounts {
		sum += d.Rate
	}
	return sum
}

func citationLabel(term models.ResolvedTerm) string {
	sectionRef := term.SectionRef
	if sectionRef == "" {
		sectionRef = "—"
	}
	return fmt.Sprintf("%s §%s", term.Source.DocumentType, sectionRef)
}
