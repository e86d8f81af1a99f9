package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/duitdash/src/services"
	"github.com/username/duitdash/src/utils"
)

type InvestmentHandler struct {
	investmentService services.InvestmentService
}

func NewInvestmentHandler(investmentService services.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

func (h *InvestmentHandler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	holdings, err := h.investmentService.ListHoldings(userID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, holdings, http.StatusOK)
}

func (h *InvestmentHandler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req services.BuyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	holding, err := h.investmentService.Buy(userID, req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, holding, http.StatusCreated)
}

func (h *InvestmentHandler) HandleSell(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req services.SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.investmentService.Sell(userID, r.PathValue("id"), req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *InvestmentHandler) HandleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req services.UpdateHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	holding, err := h.investmentService.UpdateHolding(userID, r.PathValue("id"), req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, holding, http.StatusOK)
}

func (h *InvestmentHandler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.investmentService.DeleteHolding(userID, r.PathValue("id")); err != nil {
		sendServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvestmentHandler) HandleListWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	wallets, err := h.investmentService.ListWallets(userID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, wallets, http.StatusOK)
}

func (h *InvestmentHandler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req services.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	wallet, err := h.investmentService.Deposit(userID, req)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, wallet, http.StatusOK)
}

func (h *InvestmentHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	txs, err := h.investmentService.ListTransactions(userID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, txs, http.StatusOK)
}

func (h *InvestmentHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.investmentService.DeleteTransaction(userID, r.PathValue("id")); err != nil {
		sendServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InvestmentHandler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	deleted, err := h.investmentService.ClearHistory(userID)
	if err != nil {
		sendServiceError(w, err)
		return
	}
	utils.SendJSON(w, map[string]int64{"deleted": deleted}, http.StatusOK)
}
