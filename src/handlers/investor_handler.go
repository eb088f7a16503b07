package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/models"
	"github.com/username/termtrack/backend/src/services"
	"github.com/username/termtrack/backend/src/utils"
)

type InvestorHandler struct {
	agreementService services.AgreementService
}

func NewInvestorHandler(agreementService services.AgreementService) *InvestorHandler {
	return &InvestorHandler{agreementService: agreementService}
}

func parseIDPathValue(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (h *InvestorHandler) HandleListInvestors(w http.ResponseWriter, r *http.Request) {
	investors, err := h.agreementService.ListInvestors()
	if err != nil {
		logger.L.Error("Failed to list investors", "error", err)
		utils.SendJSONError(w, "Failed to retrieve investors", http.StatusInternalServerError)
		return
	}
	if investors == nil {
		investors = []models.Investor{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(investors)
}

func (h *InvestorHandler) HandleGetInvestor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid investor id", http.StatusBadRequest)
		return
	}

	investor, err := h.agreementService.GetInvestor(id)
	if err != nil {
		if errors.Is(err, services.ErrInvestorNotFound) {
			utils.SendJSONError(w, "Investor not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get investor", "investorID", id, "error", err)
		utils.SendJSONError(w, "Failed to retrieve investor", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(investor)
}

func (h *InvestorHandler) HandleCreateInvestor(w http.ResponseWriter, r *http.Request) {
	var investor models.Investor
	if err := json.NewDecoder(r.Body).Decode(&investor); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	investor.Name = strings.TrimSpace(investor.Name)
	if investor.Name == "" {
		utils.SendJSONError(w, "name is required", http.StatusBadRequest)
		return
	}
	if investor.CommitmentAmount != nil && *investor.CommitmentAmount < 0 {
		utils.SendJSONError(w, "commitmentAmount must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.CreateInvestor(&investor); err != nil {
		logger.L.Error("Failed to create investor", "name", investor.Name, "error", err)
		utils.SendJSONError(w, "Failed to create investor", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Investor created", "investorID", investor.ID, "name", investor.Name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(investor)
}

func (h *InvestorHandler) HandleUpdateInvestor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid investor id", http.StatusBadRequest)
		return
	}

	var investor models.Investor
	if err := json.NewDecoder(r.Body).Decode(&investor); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	investor.ID = id

	investor.Name = strings.TrimSpace(investor.Name)
	if investor.Name == "" {
		utils.SendJSONError(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.UpdateInvestor(&investor); err != nil {
		if errors.Is(err, services.ErrInvestorNotFound) {
			utils.SendJSONError(w, "Investor not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update investor", "investorID", id, "error", err)
		utils.SendJSONError(w, "Failed to update investor", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(investor)
}

func (h *InvestorHandler) HandleDeleteInvestor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid investor id", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.DeleteInvestor(id); err != nil {
		if errors.Is(err, services.ErrInvestorNotFound) {
			utils.SendJSONError(w, "Investor not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete investor", "investorID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete investor", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Investor deleted with all documents and clauses", "investorID", id)
	w.WriteHeader(http.StatusNoContent)
}
