package models

// FeeDiscount is one percentage-point reduction applied to the base rate.
// Rate is the positive number of points subtracted.
type FeeDiscount struct {
	Label      string  `json:"label"`
	Rate       float64 `json:"rate"`
	Source     string  `json:"source"`
	DocumentID int64   `json:"documentId,omitempty"`
}

// FeeStepDown is one row of the year-by-year projection.
type FeeStepDown struct {
	YearRange string  `json:"yearRange"`
	Rate      float64 `json:"rate"`
	AnnualFee float64 `json:"annualFee"`
}

// FeeCalculation is the fee projection for a hypothetical commitment at a
// given investment year. EffectiveRate may go negative when stacked
// discounts exceed the base rate; that is surfaced as-is so contract
// drafting errors stay visible.
type FeeCalculation struct {
	BaseRate      float64       `json:"baseRate"`
	Discounts     []FeeDiscount `json:"discounts"`
	EffectiveRate float64       `json:"effectiveRate"`
	AnnualFee     float64       `json:"annualFee"`
	StepDowns     []FeeStepDown `json:"stepDowns"`
}
