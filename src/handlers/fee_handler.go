package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/models"
	"github.com/username/termtrack/backend/src/processors"
	"github.com/username/termtrack/backend/src/services"
	"github.com/username/termtrack/backend/src/utils"
)

type FeeHandler struct {
	termsService services.TermsService
}

func NewFeeHandler(termsService services.TermsService) *FeeHandler {
	return &FeeHandler{termsService: termsService}
}

// HandleCalculateFees projects management fees for a commitment. The caller
// either names an investor (terms are resolved from storage) or supplies a
// resolved terms map directly, which makes what-if runs possible without
// touching the database.
func (h *FeeHandler) HandleCalculateFees(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		InvestorID     int64                          `json:"investorId"`
		FundID         *int64                         `json:"fundId"`
		Commitment     float64                        `json:"commitment"`
		InvestmentYear int                            `json:"investmentYear"`
		Terms          map[string]models.ResolvedTerm `json:"terms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if payload.Commitment < 0 {
		utils.SendJSONError(w, "commitment must not be negative", http.StatusBadRequest)
		return
	}
	if payload.InvestmentYear < 1 {
		payload.InvestmentYear = 1
	}

	if payload.Terms != nil {
		calculation := h.termsService.CalculateFees(payload.Terms, payload.Commitment, payload.InvestmentYear)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(calculation)
		return
	}

	if payload.InvestorID <= 0 {
		utils.SendJSONError(w, "investorId or terms is required", http.StatusBadRequest)
		return
	}

	calculation, err := h.termsService.CalculateFeesForInvestor(payload.InvestorID, payload.FundID, payload.Commitment, payload.InvestmentYear)
	if err != nil {
		if errors.Is(err, processors.ErrInvestorRequired) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if errors.Is(err, processors.ErrUnknownDocument) {
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.L.Error("Failed to calculate fees", "investorID", payload.InvestorID, "error", err)
		utils.SendJSONError(w, "Failed to calculate fees", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(calculation); err != nil {
		logger.L.Error("Error encoding fee calculation response", "investorID", payload.InvestorID, "error", err)
	}
}
