package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/username/termtrack/backend/src/config"
	"github.com/username/termtrack/backend/src/logger"
	"github.com/username/termtrack/backend/src/models"
	"github.com/username/termtrack/backend/src/security/validation"
	"github.com/username/termtrack/backend/src/services"
	"github.com/username/termtrack/backend/src/utils"
)

type DocumentHandler struct {
	agreementService services.AgreementService
}

func NewDocumentHandler(agreementService services.AgreementService) *DocumentHandler {
	return &DocumentHandler{agreementService: agreementService}
}

var validStatuses = map[string]bool{
	models.StatusDraft:      true,
	models.StatusActive:     true,
	models.StatusSuperseded: true,
}

func (h *DocumentHandler) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	var investorID *int64
	if idStr := r.URL.Query().Get("investorId"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			utils.SendJSONError(w, "Invalid investorId query parameter", http.StatusBadRequest)
			return
		}
		investorID = &id
	}

	documents, err := h.agreementService.ListDocuments(investorID)
	if err != nil {
		logger.L.Error("Failed to list documents", "error", err)
		utils.SendJSONError(w, "Failed to retrieve documents", http.StatusInternalServerError)
		return
	}
	if documents == nil {
		documents = []models.Document{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(documents)
}

func (h *DocumentHandler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid document id", http.StatusBadRequest)
		return
	}

	doc, err := h.agreementService.GetDocument(id)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			utils.SendJSONError(w, "Document not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to get document", "documentID", id, "error", err)
		utils.SendJSONError(w, "Failed to retrieve document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) HandleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		InvestorID    int64  `json:"investorId"`
		FundID        *int64 `json:"fundId"`
		Title         string `json:"title"`
		DocType       string `json:"docType"`
		Status        string `json:"status"`
		EffectiveDate string `json:"effectiveDate"`
		SupersedesID  *int64 `json:"supersedesId"`
		Priority      int    `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload.Title = strings.TrimSpace(payload.Title)
	if payload.InvestorID <= 0 {
		utils.SendJSONError(w, "investorId is required", http.StatusBadRequest)
		return
	}
	if payload.Title == "" || payload.DocType == "" {
		utils.SendJSONError(w, "title and docType are required", http.StatusBadRequest)
		return
	}
	if payload.Status != "" && !validStatuses[payload.Status] {
		utils.SendJSONError(w, "status must be one of Draft, Active, Superseded", http.StatusBadRequest)
		return
	}
	if payload.EffectiveDate != "" && utils.ParseEffectiveDate(payload.EffectiveDate) == nil {
		utils.SendJSONError(w, "effectiveDate must be in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}

	doc := models.Document{
		InvestorID:    payload.InvestorID,
		FundID:        payload.FundID,
		Title:         payload.Title,
		DocType:       payload.DocType,
		Status:        payload.Status,
		EffectiveDate: utils.ParseEffectiveDate(payload.EffectiveDate),
		SupersedesID:  payload.SupersedesID,
		Priority:      payload.Priority,
	}

	if err := h.agreementService.CreateDocument(&doc); err != nil {
		if errors.Is(err, services.ErrInvestorNotFound) {
			utils.SendJSONError(w, "Investor not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to create document", "investorID", doc.InvestorID, "error", err)
		utils.SendJSONError(w, "Failed to create document", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Document created", "documentID", doc.ID, "investorID", doc.InvestorID, "docType", doc.DocType)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

func (h *DocumentHandler) HandleUpdateDocumentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid document id", http.StatusBadRequest)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !validStatuses[payload.Status] {
		utils.SendJSONError(w, "status must be one of Draft, Active, Superseded", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.UpdateDocumentStatus(id, payload.Status); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			utils.SendJSONError(w, "Document not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to update document status", "documentID", id, "status", payload.Status, "error", err)
		utils.SendJSONError(w, "Failed to update document status", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Document status updated", "documentID", id, "status", payload.Status)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Document status updated"})
}

// HandleUploadDocumentFile attaches the original agreement file (usually a
// PDF) to an existing document record.
func (h *DocumentHandler) HandleUploadDocumentFile(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid document id", http.StatusBadRequest)
		return
	}

	if _, err := h.agreementService.GetDocument(id); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			utils.SendJSONError(w, "Document not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to look up document before upload", "documentID", id, "error", err)
		utils.SendJSONError(w, "Failed to retrieve document", http.StatusInternalServerError)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "documentID", id, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "documentID", id, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side file content validation failed", "documentID", id, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("File content validated by magic bytes", "documentID", id, "filename", fileHeader.Filename, "detectedType", detectedContentType)

	if err := os.MkdirAll(config.Cfg.UploadDir, 0o750); err != nil {
		logger.L.Error("Failed to create upload directory", "dir", config.Cfg.UploadDir, "error", err)
		utils.SendJSONError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	// Stored under a generated name so client filenames never touch the
	// filesystem; the original name is kept on the document record.
	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	storedPath := filepath.Join(config.Cfg.UploadDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		logger.L.Error("Failed to create stored file", "path", storedPath, "error", err)
		utils.SendJSONError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		logger.L.Error("Failed to write stored file", "path", storedPath, "error", err)
		os.Remove(storedPath)
		utils.SendJSONError(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	if err := h.agreementService.AttachDocumentFile(id, fileHeader.Filename, storedPath); err != nil {
		logger.L.Error("Failed to attach file to document", "documentID", id, "error", err)
		os.Remove(storedPath)
		utils.SendJSONError(w, "Failed to attach file to document", http.StatusInternalServerError)
		return
	}

	logger.L.Info("Document file attached", "documentID", id, "filename", fileHeader.Filename)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "File uploaded successfully",
		"fileName": fileHeader.Filename,
	})
}

func (h *DocumentHandler) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDPathValue(r)
	if err != nil {
		utils.SendJSONError(w, "Invalid document id", http.StatusBadRequest)
		return
	}

	if err := h.agreementService.DeleteDocument(id); err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			utils.SendJSONError(w, "Document not found", http.StatusNotFound)
			return
		}
		logger.L.Error("Failed to delete document", "documentID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
