package services

import (
	"errors"

	"github.com/username/duitdash/src/models"
	"github.com/username/duitdash/src/processors"
)

// Validation errors surface before any store I/O; business-rule errors
// surface after a read but before any write. I/O errors pass through
// wrapped.
var (
	ErrValidationFailed    = errors.New("validation failed")
	ErrNotFound            = errors.New("record not found")
	ErrWalletNotFound      = errors.New("investment wallet not found")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrSellExceedsHolding  = errors.New("sell amount exceeds held amount")
)

// CreateTransactionRequest is the payload for creating or updating a
// cash-flow transaction. Amount is in the request currency; USD amounts are
// converted to whole rupiah at the user's stored rate before anything is
// written.
type CreateTransactionRequest struct {
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Currency    string  `json:"currency" validate:"omitempty,oneof=IDR USD"`
	Category    string  `json:"category" validate:"required"`
	AccountID   string  `json:"accountId" validate:"required,oneof=bank ewallet cash"`
	Description string  `json:"description"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// LedgerReport bundles the filtered aggregates with their health rating.
type LedgerReport struct {
	Summary processors.Summary     `json:"summary"`
	Health  processors.HealthReport `json:"health"`
}

// LedgerService owns the cash-flow side: transactions, account snapshots,
// derived balances, summaries, and the user's exchange-rate setting.
type LedgerService interface {
	CreateTransaction(userID int64, req CreateTransactionRequest) (*models.Transaction, error)
	UpdateTransaction(userID, id int64, req CreateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(userID, id int64) error
	ListTransactions(userID int64, filter models.TransactionFilter) ([]models.Transaction, error)
	GetReport(userID int64, filter models.TransactionFilter) (*LedgerReport, error)
	GetAccountBalances(userID int64) ([]models.AccountBalance, error)
	SetInitialBalance(userID int64, accountID string, balance int64) error
	GetExchangeRate(userID int64) (float64, error)
	SetExchangeRate(userID int64, rate float64) error
}

// BuyRequest opens a new holding funded from the matching wallet.
type BuyRequest struct {
	Name      string  `json:"name" validate:"required"`
	Ticker    string  `json:"ticker"`
	AssetType string  `json:"type" validate:"required,oneof=crypto stock gold other"`
	Platform  string  `json:"platform"`
	Price     int64   `json:"price" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Notes     string  `json:"notes"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// SellRequest sells part or all of a holding.
type SellRequest struct {
	Price  int64   `json:"price" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
}

// SellResult reports the outcome of a sell. Holding is nil when the
// position was fully closed and deleted.
type SellResult struct {
	PnL     int64           `json:"pnl"`
	Closed  bool            `json:"closed"`
	Holding *models.Holding `json:"holding,omitempty"`
}

// DepositRequest funds or resets an investment wallet. The mode is chosen
// by the caller, never inferred: "add" increments the balance and logs a
// DEPOSIT; "set" overwrites it and logs a RESET.
type DepositRequest struct {
	AssetType string `json:"type" validate:"required,oneof=crypto stock gold other"`
	Mode      string `json:"mode" validate:"required,oneof=add set"`
	Amount    int64  `json:"amount" validate:"gte=0"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
}

// UpdateHoldingRequest refreshes the mutable display fields of a holding.
type UpdateHoldingRequest struct {
	CurrentPrice int64  `json:"currentPrice" validate:"required,gt=0"`
	Notes        string `json:"notes"`
}

// InvestmentService owns holdings, wallets, and the append-only investment
// transaction log. Every multi-step mutation runs inside a single database
// transaction; a rejected operation performs zero writes.
type InvestmentService interface {
	Buy(userID int64, req BuyRequest) (*models.Holding, error)
	Sell(userID int64, holdingID string, req SellRequest) (*SellResult, error)
	Deposit(userID int64, req DepositRequest) (*models.Wallet, error)
	UpdateHolding(userID int64, holdingID string, req UpdateHoldingRequest) (*models.Holding, error)
	DeleteHolding(userID int64, holdingID string) error
	ListHoldings(userID int64) ([]models.Holding, error)
	ListWallets(userID int64) ([]models.Wallet, error)
	ListTransactions(userID int64) ([]models.InvestmentTransaction, error)
	DeleteTransaction(userID int64, txID string) error
	ClearHistory(userID int64) (int64, error)
}
