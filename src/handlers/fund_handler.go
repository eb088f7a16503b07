package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/models"
	"github.com/username/termtrack/backend/src/services"
	"github.com/username/termtrack/backend/src/utils"
)

type FundHandler struct {
	agreementService services.AgreementService
}

func NewFundHandler(agreementService services.AgreementService) *FundHandler {
	return &FundHandler{agreementService: agreementService}
}

func (h *FundHandler) HandleListFunds(w http.ResponseWriter, r *http.Request) {
	funds, err := h.agreementService.ListFunds()
	if err != nil {
		logger.L.Error("Failed to list funds", "error", err)
		utils.SendJSONError(w, "Failed to retrieve funds", http.StatusInternalServerError)
		return
	}
	if funds == nil {
		funds = []models.Fund{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(funds)
}

func (h *FundHandler) HandleCreateFund(w http.ResponseWriter, r *http.Request) {
	var fund models.Fund
	if err := json.NewDecoder(r.Body).Decode(&fund); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fund.Name = strings.TrimSpace(fund.Name)
	if fund.Name == "" {
		utils.SendJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.CreateFund(&fund); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			utils.SendJSONError(w, "A fund with that name already exists", http.StatusConflict)
			return
		}
		logger.L.Error("Failed to create fund", "name", fund.Name, "error", err)
		utils.SendJSONError(w, "Failed to create fund", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(fund)
}

func (h *FundHandler) HandleDeleteFund(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid fund id", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.DeleteFund(id); err != nil {
		if errors.Is(err, services.ErrFundNotFound) {
			utils.SendJSONError(w, "Fund not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete fund", "fundID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete fund", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
