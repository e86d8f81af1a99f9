package services

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/username/duitdash/src/database"
	"github.com/username/duitdash/src/logger"
	"github.com/username/duitdash/src/models"
	"github.com/username/duitdash/src/security/validation"
	"github.com/username/duitdash/src/store"
	"github.com/username/duitdash/src/utils"
)

// sellEpsilon tolerates floating-point residue when deciding whether a sell
// closes the whole position.
const sellEpsilon = 1e-9

type investmentServiceImpl struct {
	notifier *store.Notifier
}

func NewInvestmentService(notifier *store.Notifier) InvestmentService {
	return &investmentServiceImpl{notifier: notifier}
}

// Buy funds a new holding from the matching wallet. The read-check-write
// sequence runs inside one database transaction: a rejected buy leaves zero
// writes behind.
func (s *investmentServiceImpl) Buy(userID int64, req BuyRequest) (*models.Holding, error) {
	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validation.Describe(errs))
	}

	cost := utils.RoundToInt64(float64(req.Price) * req.Amount)

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning buy transaction: %w", err)
	}
	defer dbTx.Rollback()

	wallet, err := getWalletForUpdate(dbTx, userID, req.AssetType)
	if err != nil {
		return nil, err
	}
	if wallet.Balance < cost {
		return nil, fmt.Errorf("%w: need %s, wallet has %s",
			ErrInsufficientBalance, utils.FormatIDR(cost), utils.FormatIDR(wallet.Balance))
	}

	if _, err := dbTx.Exec(`UPDATE investment_wallets SET balance = balance - ? WHERE id = ?`,
		cost, wallet.ID); err != nil {
		return nil, fmt.Errorf("error debiting wallet %s: %w", wallet.ID, err)
	}

	holding := &models.Holding{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         req.Name,
		Ticker:       req.Ticker,
		AssetType:    req.AssetType,
		Platform:     req.Platform,
		AvgBuyPrice:  req.Price,
		CurrentPrice: req.Price,
		Amount:       req.Amount,
		Notes:        validation.SanitizeDescription(req.Notes),
		CreatedAt:    time.Now().Format(time.RFC3339),
	}
	if _, err := dbTx.Exec(`
		INSERT INTO investment_holdings (id, user_id, name, ticker, asset_type, platform, avg_buy_price, current_price, amount, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		holding.ID, holding.UserID, holding.Name, holding.Ticker, holding.AssetType,
		holding.Platform, holding.AvgBuyPrice, holding.CurrentPrice, holding.Amount,
		holding.Notes, holding.CreatedAt); err != nil {
		return nil, fmt.Errorf("error inserting holding: %w", err)
	}

	if err := appendLog(dbTx, &models.InvestmentTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      models.InvTxBuy,
		AssetName: req.Name,
		AssetType: req.AssetType,
		Amount:    req.Amount,
		Price:     req.Price,
		Total:     cost,
		Date:      req.Date,
	}); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing buy: %w", err)
	}

	s.publishInvestmentChange(userID)
	logger.L.Info("Holding bought", "userID", userID, "holdingID", holding.ID, "cost", cost)
	return holding, nil
}

// Sell credits the wallet with the proceeds and records the realized PnL.
// Selling the full held amount (within a small epsilon) deletes the
// holding; a partial sell decrements it.
func (s *investmentServiceImpl) Sell(userID int64, holdingID string, req SellRequest) (*SellResult, error) {
	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validation.Describe(errs))
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning sell transaction: %w", err)
	}
	defer dbTx.Rollback()

	holding, err := getHoldingForUpdate(dbTx, userID, holdingID)
	if err != nil {
		return nil, err
	}
	if req.Amount > holding.Amount+sellEpsilon {
		return nil, fmt.Errorf("%w: held %g, requested %g", ErrSellExceedsHolding, holding.Amount, req.Amount)
	}

	proceeds := utils.RoundToInt64(float64(req.Price) * req.Amount)
	pnl := utils.RoundToInt64(float64(req.Price-holding.AvgBuyPrice) * req.Amount)

	if err := creditWallet(dbTx, userID, holding.AssetType, proceeds); err != nil {
		return nil, err
	}

	if err := appendLog(dbTx, &models.InvestmentTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      models.InvTxSell,
		AssetName: holding.Name,
		AssetType: holding.AssetType,
		Amount:    req.Amount,
		Price:     req.Price,
		Total:     proceeds,
		PnL:       &pnl,
		Date:      req.Date,
	}); err != nil {
		return nil, err
	}

	result := &SellResult{PnL: pnl}
	if math.Abs(holding.Amount-req.Amount) < sellEpsilon {
		if _, err := dbTx.Exec(`DELETE FROM investment_holdings WHERE id = ?`, holding.ID); err != nil {
			return nil, fmt.Errorf("error deleting closed holding %s: %w", holding.ID, err)
		}
		result.Closed = true
	} else {
		remaining := holding.Amount - req.Amount
		if _, err := dbTx.Exec(`UPDATE investment_holdings SET amount = ? WHERE id = ?`,
			remaining, holding.ID); err != nil {
			return nil, fmt.Errorf("error decrementing holding %s: %w", holding.ID, err)
		}
		holding.Amount = remaining
		result.Holding = holding
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing sell: %w", err)
	}

	s.publishInvestmentChange(userID)
	logger.L.Info("Holding sold", "userID", userID, "holdingID", holdingID, "pnl", pnl, "closed", result.Closed)
	return result, nil
}

// Deposit funds a wallet. The mode is explicit: "add" increments and logs a
// DEPOSIT row, "set" overwrites and logs a RESET row.
func (s *investmentServiceImpl) Deposit(userID int64, req DepositRequest) (*models.Wallet, error) {
	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validation.Describe(errs))
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning deposit transaction: %w", err)
	}
	defer dbTx.Rollback()

	logType := models.InvTxDeposit
	if req.Mode == "set" {
		logType = models.InvTxReset
		if err := setWalletBalance(dbTx, userID, req.AssetType, req.Amount); err != nil {
			return nil, err
		}
	} else {
		if err := creditWallet(dbTx, userID, req.AssetType, req.Amount); err != nil {
			return nil, err
		}
	}

	if err := appendLog(dbTx, &models.InvestmentTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      logType,
		AssetName: req.AssetType + " wallet",
		AssetType: req.AssetType,
		Amount:    0,
		Price:     0,
		Total:     req.Amount,
		Date:      req.Date,
	}); err != nil {
		return nil, err
	}

	wallet, err := getWalletForUpdate(dbTx, userID, req.AssetType)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing deposit: %w", err)
	}

	s.publishInvestmentChange(userID)
	logger.L.Info("Wallet funded", "userID", userID, "assetType", req.AssetType, "mode", req.Mode, "amount", req.Amount)
	return wallet, nil
}

func (s *investmentServiceImpl) UpdateHolding(userID int64, holdingID string, req UpdateHoldingRequest) (*models.Holding, error) {
	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validation.Describe(errs))
	}

	res, err := database.DB.Exec(`
		UPDATE investment_holdings SET current_price = ?, notes = ?
		WHERE id = ? AND user_id = ?`,
		req.CurrentPrice, validation.SanitizeDescription(req.Notes), holdingID, userID)
	if err != nil {
		return nil, fmt.Errorf("error updating holding %s: %w", holdingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	s.notifier.Publish(userID, store.CollectionHoldings)
	return s.getHolding(userID, holdingID)
}

// DeleteHolding removes a position without touching the wallet or the log,
// mirroring an explicit "remove row" action rather than a sale.
func (s *investmentServiceImpl) DeleteHolding(userID int64, holdingID string) error {
	res, err := database.DB.Exec(`DELETE FROM investment_holdings WHERE id = ? AND user_id = ?`, holdingID, userID)
	if err != nil {
		return fmt.Errorf("error deleting holding %s: %w", holdingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.notifier.Publish(userID, store.CollectionHoldings)
	return nil
}

func (s *investmentServiceImpl) ListHoldings(userID int64) ([]models.Holding, error) {
	rows, err := database.DB.Query(`
		SELECT id, user_id, name, ticker, asset_type, platform, avg_buy_price, current_price, amount, notes, created_at
		FROM investment_holdings
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying holdings for userID %d: %w", userID, err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Ticker, &h.AssetType, &h.Platform,
			&h.AvgBuyPrice, &h.CurrentPrice, &h.Amount, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning holding row for userID %d: %w", userID, err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (s *investmentServiceImpl) ListWallets(userID int64) ([]models.Wallet, error) {
	rows, err := database.DB.Query(`
		SELECT id, user_id, asset_type, balance FROM investment_wallets
		WHERE user_id = ? ORDER BY asset_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying wallets for userID %d: %w", userID, err)
	}
	defer rows.Close()

	wallets := []models.Wallet{}
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.AssetType, &w.Balance); err != nil {
			return nil, fmt.Errorf("error scanning wallet row for userID %d: %w", userID, err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

func (s *investmentServiceImpl) ListTransactions(userID int64) ([]models.InvestmentTransaction, error) {
	rows, err := database.DB.Query(`
		SELECT id, user_id, type, asset_name, asset_type, amount, price, total, pnl, date, created_at
		FROM investment_transactions
		WHERE user_id = ?
		ORDER BY date DESC, created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying investment transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	txs := []models.InvestmentTransaction{}
	for rows.Next() {
		var tx models.InvestmentTransaction
		var pnl sql.NullInt64
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.AssetName, &tx.AssetType,
			&tx.Amount, &tx.Price, &tx.Total, &pnl, &tx.Date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning investment transaction row for userID %d: %w", userID, err)
		}
		if pnl.Valid {
			v := pnl.Int64
			tx.PnL = &v
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func (s *investmentServiceImpl) DeleteTransaction(userID int64, txID string) error {
	res, err := database.DB.Exec(`DELETE FROM investment_transactions WHERE id = ? AND user_id = ?`, txID, userID)
	if err != nil {
		return fmt.Errorf("error deleting investment transaction %s: %w", txID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.notifier.Publish(userID, store.CollectionInvestmentLog)
	return nil
}

// ClearHistory bulk-deletes the user's whole investment log in one
// statement, so the wipe is all-or-nothing.
func (s *investmentServiceImpl) ClearHistory(userID int64) (int64, error) {
	res, err := database.DB.Exec(`DELETE FROM investment_transactions WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("error clearing investment history for userID %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	s.notifier.Publish(userID, store.CollectionInvestmentLog)
	logger.L.Info("Investment history cleared", "userID", userID, "deleted", n)
	return n, nil
}

func (s *investmentServiceImpl) getHolding(userID int64, holdingID string) (*models.Holding, error) {
	row := database.DB.QueryRow(`
		SELECT id, user_id, name, ticker, asset_type, platform, avg_buy_price, current_price, amount, notes, created_at
		FROM investment_holdings WHERE id = ? AND user_id = ?`, holdingID, userID)
	var h models.Holding
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Ticker, &h.AssetType, &h.Platform,
		&h.AvgBuyPrice, &h.CurrentPrice, &h.Amount, &h.Notes, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (s *investmentServiceImpl) publishInvestmentChange(userID int64) {
	s.notifier.Publish(userID, store.CollectionWallets)
	s.notifier.Publish(userID, store.CollectionHoldings)
	s.notifier.Publish(userID, store.CollectionInvestmentLog)
}

func getWalletForUpdate(dbTx *sql.Tx, userID int64, assetType string) (*models.Wallet, error) {
	row := dbTx.QueryRow(`
		SELECT id, user_id, asset_type, balance FROM investment_wallets
		WHERE user_id = ? AND asset_type = ?`, userID, assetType)
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.AssetType, &w.Balance)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no %s wallet", ErrWalletNotFound, assetType)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s wallet for userID %d: %w", assetType, userID, err)
	}
	return &w, nil
}

func getHoldingForUpdate(dbTx *sql.Tx, userID int64, holdingID string) (*models.Holding, error) {
	row := dbTx.QueryRow(`
		SELECT id, user_id, name, ticker, asset_type, platform, avg_buy_price, current_price, amount, notes, created_at
		FROM investment_holdings WHERE id = ? AND user_id = ?`, holdingID, userID)
	var h models.Holding
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Ticker, &h.AssetType, &h.Platform,
		&h.AvgBuyPrice, &h.CurrentPrice, &h.Amount, &h.Notes, &h.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error reading holding %s for userID %d: %w", holdingID, userID, err)
	}
	return &h, nil
}

// creditWallet adds to the wallet balance, creating the wallet on first use.
func creditWallet(dbTx *sql.Tx, userID int64, assetType string, amount int64) error {
	_, err := dbTx.Exec(`
		INSERT INTO investment_wallets (id, user_id, asset_type, balance) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, asset_type) DO UPDATE SET balance = balance + excluded.balance`,
		uuid.NewString(), userID, assetType, amount)
	if err != nil {
		return fmt.Errorf("error crediting %s wallet for userID %d: %w", assetType, userID, err)
	}
	return nil
}

// setWalletBalance overwrites the wallet balance, creating the wallet when
// missing.
func setWalletBalance(dbTx *sql.Tx, userID int64, assetType string, balance int64) error {
	_, err := dbTx.Exec(`
		INSERT INTO investment_wallets (id, user_id, asset_type, balance) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, asset_type) DO UPDATE SET balance = excluded.balance`,
		uuid.NewString(), userID, assetType, balance)
	if err != nil {
		return fmt.Errorf("error resetting %s wallet for userID %d: %w", assetType, userID, err)
	}
	return nil
}

func appendLog(dbTx *sql.Tx, tx *models.InvestmentTransaction) error {
	tx.CreatedAt = time.Now().Format(time.RFC3339)
	_, err := dbTx.Exec(`
		INSERT INTO investment_transactions (id, user_id, type, asset_name, asset_type, amount, price, total, pnl, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.UserID, tx.Type, tx.AssetName, tx.AssetType, tx.Amount, tx.Price, tx.Total, tx.PnL, tx.Date, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("error appending investment log row: %w", err)
	}
	return nil
}
