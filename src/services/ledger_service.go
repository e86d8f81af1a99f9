package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/duitdash/src/config"
	"github.com/username/duitdash/src/database"
	"github.com/username/duitdash/src/logger"
	"github.com/username/duitdash/src/models"
	"github.com/username/duitdash/src/processors"
	"github.com/username/duitdash/src/security/validation"
	"github.com/username/duitdash/src/store"
	"github.com/username/duitdash/src/utils"
)

const (
	ckUserTransactions = "ledger_txs_user_%d"
	ckAccountSnapshot  = "ledger_snapshot_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type ledgerServiceImpl struct {
	balanceProcessor processors.BalanceProcessor
	summaryProcessor processors.SummaryProcessor
	healthProcessor  processors.HealthProcessor
	reportCache      *cache.Cache
	notifier         *store.Notifier
}

func NewLedgerService(
	balanceProcessor processors.BalanceProcessor,
	summaryProcessor processors.SummaryProcessor,
	healthProcessor processors.HealthProcessor,
	reportCache *cache.Cache,
	notifier *store.Notifier,
) LedgerService {
	return &ledgerServiceImpl{
		balanceProcessor: balanceProcessor,
		summaryProcessor: summaryProcessor,
		healthProcessor:  healthProcessor,
		reportCache:      reportCache,
		notifier:         notifier,
	}
}

func (s *ledgerServiceImpl) CreateTransaction(userID int64, req CreateTransactionRequest) (*models.Transaction, error) {
	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validation.Describe(errs))
	}

	amount, err := s.resolveAmount(userID, req)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:      userID,
		Type:        req.Type,
		Amount:      amount,
		Category:    req.Category,
		AccountID:   req.AccountID,
		Description: validation.SanitizeDescription(req.Description),
		Date:        req.Date,
		CreatedAt:   time.Now().Format(time.RFC3339),
	}

	res, err := database.DB.Exec(`
		INSERT INTO transactions (user_id, type, amount, category, account_id, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Type, tx.Amount, tx.Category, tx.AccountID, tx.Description, tx.Date, tx.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error inserting transaction for userID %d: %w", userID, err)
	}
	tx.ID, err = res.LastInsertId()
	if err != nil {
		return nil, err
	}

	s.invalidateUserCache(userID)
	s.notifier.Publish(userID, store.CollectionTransactions)
	logger.L.Info("Transaction created", "userID", userID, "txID", tx.ID, "type", tx.Type, "amount", tx.Amount)
	return tx, nil
}

func (s *ledgerServiceImpl) UpdateTransaction(userID, id int64, req CreateTransactionRequest) (*models.Transaction, error) {
	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, validation.Describe(errs))
	}

	amount, err := s.resolveAmount(userID, req)
	if err != nil {
		return nil, err
	}

	// Edits always write the canonical account column, upgrading legacy
	// rows as they are touched.
	res, err := database.DB.Exec(`
		UPDATE transactions
		SET type = ?, amount = ?, category = ?, account_id = ?, description = ?, date = ?
		WHERE id = ? AND user_id = ?`,
		req.Type, amount, req.Category, req.AccountID,
		validation.SanitizeDescription(req.Description), req.Date, id, userID)
	if err != nil {
		return nil, fmt.Errorf("error updating transaction %d for userID %d: %w", id, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	s.invalidateUserCache(userID)
	s.notifier.Publish(userID, store.CollectionTransactions)

	updated := &models.Transaction{
		ID:          id,
		UserID:      userID,
		Type:        req.Type,
		Amount:      amount,
		Category:    req.Category,
		AccountID:   req.AccountID,
		Description: validation.SanitizeDescription(req.Description),
		Date:        req.Date,
	}
	return updated, nil
}

func (s *ledgerServiceImpl) DeleteTransaction(userID, id int64) error {
	res, err := database.DB.Exec(`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting transaction %d for userID %d: %w", id, userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	s.invalidateUserCache(userID)
	s.notifier.Publish(userID, store.CollectionTransactions)
	return nil
}

func (s *ledgerServiceImpl) ListTransactions(userID int64, filter models.TransactionFilter) ([]models.Transaction, error) {
	txs, err := s.fetchUserTransactions(userID)
	if err != nil {
		return nil, err
	}
	return s.summaryProcessor.Filter(txs, filter, time.Now()), nil
}

func (s *ledgerServiceImpl) GetReport(userID int64, filter models.TransactionFilter) (*LedgerReport, error) {
	txs, err := s.fetchUserTransactions(userID)
	if err != nil {
		return nil, err
	}
	summary := s.summaryProcessor.Process(txs, filter, time.Now())
	return &LedgerReport{
		Summary: summary,
		Health:  s.healthProcessor.Score(summary),
	}, nil
}

func (s *ledgerServiceImpl) GetAccountBalances(userID int64) ([]models.AccountBalance, error) {
	snapshot, err := s.fetchAccountSnapshot(userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.fetchUserTransactions(userID)
	if err != nil {
		return nil, err
	}
	return s.balanceProcessor.Process(snapshot, txs), nil
}

func (s *ledgerServiceImpl) SetInitialBalance(userID int64, accountID string, balance int64) error {
	known := false
	for _, a := range models.KnownAccounts {
		if a == accountID {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown account '%s'", ErrValidationFailed, accountID)
	}

	_, err := database.DB.Exec(`
		INSERT INTO account_snapshots (user_id, account_id, initial_balance, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, account_id) DO UPDATE SET initial_balance = excluded.initial_balance, updated_at = excluded.updated_at`,
		userID, accountID, balance, time.Now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error setting initial balance for userID %d account %s: %w", userID, accountID, err)
	}

	s.invalidateUserCache(userID)
	s.notifier.Publish(userID, store.CollectionAccountSnapshots)
	logger.L.Info("Initial balance set", "userID", userID, "accountID", accountID, "balance", balance)
	return nil
}

func (s *ledgerServiceImpl) GetExchangeRate(userID int64) (float64, error) {
	return models.GetUSDIDRRate(database.DB, userID, defaultUSDIDRRate())
}

func (s *ledgerServiceImpl) SetExchangeRate(userID int64, rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("%w: exchange rate must be positive", ErrValidationFailed)
	}
	return models.SetUSDIDRRate(database.DB, userID, rate)
}

// resolveAmount normalizes the request amount to whole rupiah. USD input is
// converted at the user's stored rate at input time; stored values are
// always IDR.
func (s *ledgerServiceImpl) resolveAmount(userID int64, req CreateTransactionRequest) (int64, error) {
	if req.Currency == "USD" {
		rate, err := models.GetUSDIDRRate(database.DB, userID, defaultUSDIDRRate())
		if err != nil {
			return 0, fmt.Errorf("error reading exchange rate for userID %d: %w", userID, err)
		}
		return utils.USDToIDR(req.Amount, rate), nil
	}
	return utils.RoundToInt64(req.Amount), nil
}

func defaultUSDIDRRate() float64 {
	if config.Cfg != nil {
		return config.Cfg.DefaultUSDIDRRate
	}
	return 16000
}

func (s *ledgerServiceImpl) invalidateUserCache(userID int64) {
	s.reportCache.Delete(fmt.Sprintf(ckUserTransactions, userID))
	s.reportCache.Delete(fmt.Sprintf(ckAccountSnapshot, userID))
}

// fetchUserTransactions returns the user's full transaction list, newest
// first. Downstream processors always work on this full set; there are no
// delta reads.
func (s *ledgerServiceImpl) fetchUserTransactions(userID int64) ([]models.Transaction, error) {
	cacheKey := fmt.Sprintf(ckUserTransactions, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.([]models.Transaction), nil
	}

	rows, err := database.DB.Query(`
		SELECT id, user_id, type, amount, category, account_id, payment_method, description, date, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for userID %d: %w", userID, err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var accountID, paymentMethod, description sql.NullString
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Category,
			&accountID, &paymentMethod, &description, &tx.Date, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning transaction row for userID %d: %w", userID, err)
		}
		tx.AccountID = accountID.String
		tx.PaymentMethod = paymentMethod.String
		tx.Description = description.String
		transactions = append(transactions, tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over transaction rows for userID %d: %w", userID, err)
	}

	s.reportCache.Set(cacheKey, transactions, DefaultCacheExpiration)
	return transactions, nil
}

func (s *ledgerServiceImpl) fetchAccountSnapshot(userID int64) (models.AccountSnapshot, error) {
	cacheKey := fmt.Sprintf(ckAccountSnapshot, userID)
	if cached, found := s.reportCache.Get(cacheKey); found {
		return cached.(models.AccountSnapshot), nil
	}

	rows, err := database.DB.Query(`
		SELECT account_id, initial_balance FROM account_snapshots WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying account snapshot for userID %d: %w", userID, err)
	}
	defer rows.Close()

	snapshot := make(models.AccountSnapshot)
	for rows.Next() {
		var accountID string
		var balance int64
		if err := rows.Scan(&accountID, &balance); err != nil {
			return nil, fmt.Errorf("error scanning snapshot row for userID %d: %w", userID, err)
		}
		snapshot[accountID] = balance
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over snapshot rows for userID %d: %w", userID, err)
	}

	s.reportCache.Set(cacheKey, snapshot, DefaultCacheExpiration)
	return snapshot, nil
}
