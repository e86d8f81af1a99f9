package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/duitdash/src/services"
	"github.com/username/duitdash/src/utils"
)

type AccountHandler struct {
	ledgerService services.LedgerService
}

func NewAccountHandler(ledgerService services.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerService: ledgerService}
}

func (h *AccountHandler) HandleGetBalances(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	balances, err := h.ledgerService.GetAccountBalances(userID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, balances, http.StatusOK)
}

func (h *AccountHandler) HandleSetInitialBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		InitialBalance int64 `json:"initialBalance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.ledgerService.SetInitialBalance(userID, r.PathValue("accountId"), req.InitialBalance); err != nil {
		sendServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) HandleGetExchangeRate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	rate, err := h.ledgerService.GetExchangeRate(userID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, map[string]float64{"usdIdrRate": rate}, http.StatusOK)
}

func (h *AccountHandler) HandleSetExchangeRate(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req struct {
		USDIDRRate float64 `json:"usdIdrRate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.ledgerService.SetExchangeRate(userID, req.USDIDRRate); err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, map[string]float64{"usdIdrRate": req.USDIDRRate}, http.StatusOK)
}
