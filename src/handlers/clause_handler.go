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

type ClauseHandler struct {
	agreementService services.AgreementService
}

func NewClauseHandler(agreementService services.AgreementService) *ClauseHandler {
	return &ClauseHandler{agreementService: agreementService}
}

func (h *ClauseHandler) HandleListClauses(w http.ResponseWriter, r *http.Request) {
	documentIDStr := r.URL.Query().Get("documentId")
	if documentIDStr == "" {
		utils.SendJSONError(w, "documentId query parameter is required", http.StatusBadRequest)
		return
	}
	documentID, err := strconv.ParseInt(documentIDStr, 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid documentId query parameter", http.StatusBadRequest)
		return
	}

	clauses, err := h.agreementService.ListClauses(documentID)
	if err != nil {
		logger.L.Error("Failed to list clauses", "documentID", documentID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve clauses", http.StatusInternalServerError)
		return
	}
	if clauses == nil {
		clauses = []models.Clause{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clauses)
}

func (h *ClauseHandler) HandleCreateClause(w http.ResponseWriter, r *http.Request) {
	var clause models.Clause
	if err := json.NewDecoder(r.Body).Decode(&clause); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	clause.ClauseType = strings.TrimSpace(clause.ClauseType)
	if clause.DocumentID <= 0 {
		utils.SendJSONError(w, "documentId is required", http.StatusBadRequest)
		return
	}
	if clause.ClauseType == "" {
		utils.SendJSONError(w, "clauseType is required", http.StatusBadRequest)
		return
	}
	if clause.Rate != nil && *clause.Rate < 0 {
		utils.SendJSONError(w, "rate must not be negative", http.StatusBadRequest)
		return
	}
	if clause.Discount != nil && *clause.Discount < 0 {
		utils.SendJSONError(w, "discount must not be negative", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.CreateClause(&clause); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			utils.SendJSONError(w, "Document not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to create clause", "documentID", clause.DocumentID, "error", err)
		utils.SendJSONError(w, "Failed to create clause", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Clause created", "clauseID", clause.ID, "documentID", clause.DocumentID, "clauseType", clause.ClauseType)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(clause)
}

func (h *ClauseHandler) HandleDeleteClause(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid clause id", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.DeleteClause(id); err != nil {
		if errors.Is(err, services.ErrClauseNotFound) {
			utils.SendJSONError(w, "Clause not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete clause", "clauseID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete clause", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
