package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/username/duitdash/src/models"
	"github.com/username/duitdash/src/services"
	"github.com/username/duitdash/src/utils"
)

type TransactionHandler struct {
	ledgerService services.LedgerService
}

func NewTransactionHandler(ledgerService services.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerService: ledgerService}
}

// filterFromQuery builds a transaction filter from request query params.
// Unknown or missing periods fall back to "all".
func filterFromQuery(q url.Values) models.TransactionFilter {
	filter := models.TransactionFilter{
		Period:   models.Period(q.Get("period")),
		From:     q.Get("from"),
		To:       q.Get("to"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
	}
	if filter.Period == "" {
		filter.Period = models.PeriodAll
	}
	return filter
}

func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	txs, err := h.ledgerService.ListTransactions(userID, filterFromQuery(r.URL.Query()))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	if notModified(w, r, txs) {
		return
	}
	utils.SendJSON(w, txs, http.StatusOK)
}

// notModified sets the ETag header for payload and reports whether the
// client's If-None-Match already covers it, in which case a 304 was written.
func notModified(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	etag, err := utils.GenerateETag(payload)
	if err != nil || etag == "" {
		return false
	}
	quoted := fmt.Sprintf("%q", etag)
	w.Header().Set("Cache-Control", "no-cache, private")
	w.Header().Set("ETag", quoted)
	for _, clientETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		if strings.TrimSpace(clientETag) == quoted {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req services.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.ledgerService.CreateTransaction(userID, req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, tx, http.StatusCreated)
}

func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	var req services.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tx, err := h.ledgerService.UpdateTransaction(userID, id, req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, tx, http.StatusOK)
}

func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	if err := h.ledgerService.DeleteTransaction(userID, id); err != nil {
		sendServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TransactionHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.ledgerService.GetReport(userID, filterFromQuery(r.URL.Query()))
	if err != nil {
		sendServiceError(w, err)
		return
	}
	if notModified(w, r, report) {
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}
