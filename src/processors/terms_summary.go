package processors

import (
	"fmt"

	"github.com/username/termtrack/backend/src/models"
)

// BuildTermsSummary condenses an effective term map into the handful of
// headline values the investor overview shows. Clause types without a
// display rule here simply do not appear in the summary.
func BuildTermsSummary(effective map[string]models.ResolvedTerm) map[string]models.TermSummaryEntry {
	summary := make(map[string]models.TermSummaryEntry)

	if term, ok := effective[models.ClauseTypeManagementFee]; ok {
		summary["managementFee"] = summaryEntry(term, rateValue(term.Rate))
	}
	if term, ok := effective[models.ClauseTypeFeeStepDown]; ok {
		value := "—"
		if term.Threshold != "" {
			value = term.Threshold
		}
		if term.Discount != nil {
			if term.Threshold != "" {
				value = fmt.Sprintf("−%.2f%% at %s", *term.Discount, term.Threshold)
			} else {
				value = fmt.Sprintf("−%.2f%%", *term.Discount)
			}
		}
		summary["feeStepDown"] = summaryEntry(term, value)
	}
	if term, ok := effective[models.ClauseTypeMFN]; ok {
		summary["mfnProtection"] = summaryEntry(term, "Enabled")
	}
	if term, ok := effective[models.ClauseTypeCarryTerms]; ok {
		summary["carryTerms"] = summaryEntry(term, rateValue(term.Rate))
	}
	if term, ok := effective[models.ClauseTypePreferredReturn]; ok {
		summary["preferredReturn"] = summaryEntry(term, rateValue(term.Rate))
	}
	if term, ok := effective[models.ClauseTypeFeeWaiver]; ok {
		value := "—"
		if term.Discount != nil {
			value = fmt.Sprintf("%.2f%% discount", *term.Discount)
		}
		summary["feeWaiver"] = summaryEntry(term, value)
	}
	if term, ok := effective[models.ClauseTypeCoInvestment]; ok {
		summary["coInvestment"] = summaryEntry(term, "Enabled")
	}

	return summary
}

func summaryEntry(term models.ResolvedTerm, value string) models.TermSummaryEntry {
	return models.TermSummaryEntry{
		Value:        value,
		Source:       term.Source.DocumentTitle,
		DocumentType: term.Source.DocumentType,
	}
}

func rateValue(rate *float64) string {
	if rate == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f%%", *rate)
}
