package models

import "time"

// Document statuses as stored in the documents table.
const (
	StatusDraft      = "Draft"
	StatusActive     = "Active"
	StatusSuperseded = "Superseded"
)

// Known document types. Anything else is valid input and ranks lowest.
const (
	DocTypeAmendment    = "Amendment"
	DocTypeSideLetter   = "Side Letter"
	DocTypeFeeSchedule  = "Fee Schedule"
	DocTypeSubscription = "Subscription Agreement"
	DocTypePPM          = "PPM"
	DocTypeOther        = "Other"
)

// Conventional clause types. clause_type is free-form; these are the values
// the fee calculator and the terms summary know about.
const (
	ClauseTypeManagementFee   = "Management Fee"
	ClauseTypeCarryTerms      = "Carry Terms"
	ClauseTypeMFN             = "MFN (Most Favored Nation)"
	ClauseTypeFeeWaiver       = "Fee Waiver/Discount"
	ClauseTypeCoInvestment    = "Co-investment Rights"
	ClauseTypeFeeStepDown     = "Fee Step-Down"
	ClauseTypePreferredReturn = "Preferred Return"
	ClauseTypeOther           = "Other"
)

type Investor struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	InvestorType     string    `json:"investorType"`
	CommitmentAmount *float64  `json:"commitmentAmount"`
	Currency         string    `json:"currency"`
	Fund             string    `json:"fund"`
	RelationshipNotes string   `json:"relationshipNotes"`
	InternalNotes    string    `json:"internalNotes"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type Fund struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	VehicleType string    `json:"vehicleType"`
	VintageYear *int      `json:"vintageYear"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document is one legal agreement on file for an investor. EffectiveDate is
// nil when the agreement carries no dated effect; the resolver treats that as
// the earliest possible date. Priority 0 means "not set explicitly" and the
// ranking table derives one from DocType. SupersedesID is informational
// lifecycle metadata only; the resolver ranks by status, date and priority.
type Document struct {
	ID            int64      `json:"id"`
	InvestorID    int64      `json:"investorId"`
	FundID        *int64     `json:"fundId"`
	Title         string     `json:"title"`
	DocType       string     `json:"docType"`
	Status        string     `json:"status"`
	EffectiveDate *time.Time `json:"effectiveDate"`
	SupersedesID  *int64     `json:"supersedesId"`
	Priority      int        `json:"priority"`
	FileName      string     `json:"fileName"`
	FilePath      string     `json:"-"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Term holds the structured fields extracted from a clause. All numeric
// fields are nullable; a clause carries at most one meaningful term.
type Term struct {
	Rate            *float64 `json:"rate"`
	Discount        *float64 `json:"discount"`
	Threshold       string   `json:"threshold"`
	ThresholdAmount *float64 `json:"thresholdAmount"`
}

// Clause belongs to exactly one Document. ClauseText is the verbatim source
// text, carried for citation; the engine never parses it apart from the
// step-down year extraction on Threshold.
type Clause struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"documentId"`
	ClauseType string `json:"clauseType"`
	Term
	SectionRef string    `json:"sectionRef"`
	PageNumber *int      `json:"pageNumber"`
	ClauseText string    `json:"clauseText"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}
