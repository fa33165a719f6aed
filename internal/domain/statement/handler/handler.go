// Package handler exposes the statement feature over HTTP.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/export"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/parser"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/repository"
	"github.com/FACorreiaa/pesa-insights/internal/domain/statement/service"
	"github.com/FACorreiaa/pesa-insights/pkg/interceptors"
)

const (
	formFileField     = "pdf_file"
	formPasswordField = "password"
)

// Service is the statement service as used by the handlers.
type Service interface {
	Upload(ctx context.Context, in service.UploadInput) (*repository.Statement, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*repository.Statement, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*repository.Statement, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Insights(ctx context.Context, userID uuid.UUID) (*service.Insights, error)
	SearchTransactions(ctx context.Context, userID, id uuid.UUID, query string) ([]parser.TransactionRecord, error)
	AdminList(ctx context.Context, search string, page int) (*service.AdminPage, error)
}

// StatementHandler implements the statement HTTP endpoints
type StatementHandler struct {
	svc            Service
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewStatementHandler constructs a new handler
func NewStatementHandler(svc Service, maxUploadBytes int64, logger *slog.Logger) *StatementHandler {
	return &StatementHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload handles POST /api/statements
func (h *StatementHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("statement exceeds %d MB", h.maxUploadBytes>>20))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid upload form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(formFileField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no statement file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	st, err := h.svc.Upload(r.Context(), service.UploadInput{
		UserID:   userID,
		FileName: header.Filename,
		Data:     data,
		Password: r.FormValue(formPasswordField),
	})
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toStatementResponse(st, true))
}

func (h *StatementHandler) writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrInvalidUpload) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var perr *parser.ParseError
	if errors.As(err, &perr) {
		resp := errorResponse{Error: perr.Error()}
		switch perr.Kind {
		case parser.KindEncryptionRequired:
			resp.Error = perr.Message
			resp.NeedsPassword = true
		case parser.KindWrongPassword:
			resp.Error = perr.Message
			resp.NeedsPassword = true
			resp.WrongPassword = true
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	h.logger.Error("statement upload failed", slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, "failed to process statement")
}

// List handles GET /api/statements
func (h *StatementHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	statements, err := h.svc.List(r.Context(), userID, limit, offset)
	if err != nil {
		h.internalError(w, "failed to list statements", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"statements": toStatementList(statements),
		"count":      len(statements),
	})
}

// Get handles GET /api/statements/{id}
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, ok := h.statement(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toStatementResponse(st, true))
}

// Delete handles DELETE /api/statements/{id}
func (h *StatementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, ok := statementID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "statement not found")
			return
		}
		h.internalError(w, "failed to delete statement", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchTransactions handles GET /api/statements/{id}/transactions
func (h *StatementHandler) SearchTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, ok := statementID(w, r)
	if !ok {
		return
	}

	txs, err := h.svc.SearchTransactions(r.Context(), userID, id, r.URL.Query().Get("q"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "statement not found")
			return
		}
		h.internalError(w, "failed to search transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Export handles GET /api/statements/{id}/export
func (h *StatementHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, ok := h.statement(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, st.ParsedData); err != nil {
		h.internalError(w, "failed to export statement", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(st.FileName)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Insights handles GET /api/insights
func (h *StatementHandler) Insights(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	insights, err := h.svc.Insights(r.Context(), userID)
	if err != nil {
		h.internalError(w, "failed to load insights", err)
		return
	}

	writeJSON(w, http.StatusOK, toInsightsResponse(insights))
}

// AdminList handles GET /api/admin/statements
func (h *StatementHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid page")
		return
	}

	result, err := h.svc.AdminList(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		h.internalError(w, "failed to list statements", err)
		return
	}

	writeJSON(w, http.StatusOK, toAdminPageResponse(result))
}

func (h *StatementHandler) statement(w http.ResponseWriter, r *http.Request) (*repository.Statement, bool) {
	userID, ok := h.userID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := statementID(w, r)
	if !ok {
		return nil, false
	}

	st, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(w, http.StatusNotFound, "statement not found")
			return nil, false
		}
		h.internalError(w, "failed to load statement", err)
		return nil, false
	}
	return st, true
}

func (h *StatementHandler) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userIDStr, ok := interceptors.GetUserIDFromContext(r.Context())
	if !ok || userIDStr == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid user ID")
		return uuid.Nil, false
	}
	return userID, true
}

func (h *StatementHandler) internalError(w http.ResponseWriter, message string, err error) {
	h.logger.Error(message, slog.Any("error", err))
	writeError(w, http.StatusInternalServerError, message)
}

func statementID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid statement ID")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
