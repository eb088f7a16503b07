package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/processors"
	"github.com/username/termtrack/backend/src/services"
	"github.com/username/termtrack/backend/src/utils"
)

type TermsHandler struct {
	termsService services.TermsService
}

func NewTermsHandler(termsService services.TermsService) *TermsHandler {
	return &TermsHandler{termsService: termsService}
}

func parseScopeParams(r *http.Request) (int64, *int64, error) {
	investorIDStr := r.URL.Query().Get("investorId")
	if investorIDStr == "" {
		return 0, nil, processors.ErrInvestorRequired
	}
	investorID, err := strconv.ParseInt(investorIDStr, 10, 64)
	if err != nil || investorID <= 0 {
		return 0, nil, processors.ErrInvestorRequired
	}

	var fundID *int64
	if fundIDStr := r.URL.Query().Get("fundId"); fundIDStr != "" {
		id, err := strconv.ParseInt(fundIDStr, 10, 64)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid fundId query parameter")
		}
		fundID = &id
	}
	return investorID, fundID, nil
}

// HandleGetEffectiveTerms serves the resolved controlling terms for one
// investor, with ETag support so polling clients mostly get 304s.
func (h *TermsHandler) HandleGetEffectiveTerms(w http.ResponseWriter, r *http.Request) {
	investorID, fundID, err := parseScopeParams(r)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.termsService.GetEffectiveTerms(investorID, fundID)
	if err != nil {
		if errors.Is(err, processors.ErrUnknownDocument) {
			logger.L.Warn("Effective terms resolution hit orphaned clause", "investorID", investorID, "error", err)
			utils.SendJSONError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.L.Error("Failed to resolve effective terms", "investorID", investorID, "error", err)
		utils.SendJSONError(w, "Failed to resolve effective terms", http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(result)
	if etagErr != nil {
		logger.L.Error("Failed to generate ETag for effective terms", "investorID", investorID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		clientETag := r.Header.Get("If-None-Match")
		for _, cETag := range strings.Split(clientETag, ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				logger.L.Debug("ETag match for effective terms", "investorID", investorID, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.L.Error("Error encoding effective terms response", "investorID", investorID, "error", err)
	}
}
