package services

import (
	"errors"
	"testing"

	"github.com/username/duitdash/src/database"
	"github.com/username/duitdash/src/models"
)

func TestCreateTransactionStoresWholeRupiah(t *testing.T) {
	svc := newLedgerService(t)

	tx, err := svc.CreateTransaction(testUserID, CreateTransactionRequest{
		Type:      models.TxExpense,
		Amount:    50_000.4,
		Category:  "food",
		AccountID: models.AccountBank,
		Date:      "2025-08-13",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.Amount != 50_000 {
		t.Errorf("Amount = %d, want rounded 50000", tx.Amount)
	}
	if tx.ID == 0 {
		t.Error("expected assigned id")
	}

	listed, err := svc.ListTransactions(testUserID, models.TransactionFilter{Period: models.PeriodAll})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != tx.ID {
		t.Fatalf("listed = %+v", listed)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	svc := newLedgerService(t)

	tests := []struct {
		name string
		req  CreateTransactionRequest
	}{
		{"bad type", CreateTransactionRequest{Type: "transfer", Amount: 100, Category: "x", AccountID: "bank", Date: "2025-08-13"}},
		{"zero amount", CreateTransactionRequest{Type: "expense", Amount: 0, Category: "x", AccountID: "bank", Date: "2025-08-13"}},
		{"negative amount", CreateTransactionRequest{Type: "expense", Amount: -5, Category: "x", AccountID: "bank", Date: "2025-08-13"}},
		{"unknown account", CreateTransactionRequest{Type: "expense", Amount: 100, Category: "x", AccountID: "paypal", Date: "2025-08-13"}},
		{"bad date", CreateTransactionRequest{Type: "expense", Amount: 100, Category: "x", AccountID: "bank", Date: "13-08-2025"}},
		{"bad currency", CreateTransactionRequest{Type: "expense", Amount: 100, Currency: "EUR", Category: "x", AccountID: "bank", Date: "2025-08-13"}},
		{"missing category", CreateTransactionRequest{Type: "expense", Amount: 100, AccountID: "bank", Date: "2025-08-13"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTransaction(testUserID, tt.req); !errors.Is(err, ErrValidationFailed) {
				t.Errorf("err = %v, want ErrValidationFailed", err)
			}
		})
	}
}

func TestUSDConversionAtInputTime(t *testing.T) {
	svc := newLedgerService(t)

	// No stored rate: the 16000 default applies.
	tx, err := svc.CreateTransaction(testUserID, CreateTransactionRequest{
		Type:      models.TxIncome,
		Amount:    100,
		Currency:  "USD",
		Category:  "freelance",
		AccountID: models.AccountBank,
		Date:      "2025-08-13",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.Amount != 1_600_000 {
		t.Errorf("Amount = %d, want 1600000 at default rate", tx.Amount)
	}

	if err := svc.SetExchangeRate(testUserID, 15_500); err != nil {
		t.Fatalf("SetExchangeRate: %v", err)
	}
	rate, err := svc.GetExchangeRate(testUserID)
	if err != nil || rate != 15_500 {
		t.Fatalf("GetExchangeRate = %v, %v; want 15500", rate, err)
	}

	tx, err = svc.CreateTransaction(testUserID, CreateTransactionRequest{
		Type:      models.TxIncome,
		Amount:    10,
		Currency:  "USD",
		Category:  "freelance",
		AccountID: models.AccountBank,
		Date:      "2025-08-14",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.Amount != 155_000 {
		t.Errorf("Amount = %d, want 155000 at stored rate", tx.Amount)
	}

	// A later rate change never rewrites stored rows.
	if err := svc.SetExchangeRate(testUserID, 17_000); err != nil {
		t.Fatalf("SetExchangeRate: %v", err)
	}
	listed, _ := svc.ListTransactions(testUserID, models.TransactionFilter{Period: models.PeriodAll})
	for _, m := range listed {
		if m.Amount != 1_600_000 && m.Amount != 155_000 {
			t.Errorf("stored amount changed: %+v", m)
		}
	}
}

func TestSetExchangeRateValidation(t *testing.T) {
	svc := newLedgerService(t)

	if err := svc.SetExchangeRate(testUserID, 0); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("zero rate err = %v, want ErrValidationFailed", err)
	}
	if err := svc.SetExchangeRate(testUserID, -1); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("negative rate err = %v, want ErrValidationFailed", err)
	}
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	svc := newLedgerService(t)

	tx, err := svc.CreateTransaction(testUserID, CreateTransactionRequest{
		Type:      models.TxExpense,
		Amount:    20_000,
		Category:  "food",
		AccountID: models.AccountCash,
		Date:      "2025-08-13",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	updated, err := svc.UpdateTransaction(testUserID, tx.ID, CreateTransactionRequest{
		Type:      models.TxExpense,
		Amount:    25_000,
		Category:  "transport",
		AccountID: models.AccountEWallet,
		Date:      "2025-08-14",
	})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Amount != 25_000 || updated.Category != "transport" || updated.AccountID != models.AccountEWallet {
		t.Errorf("updated = %+v", updated)
	}

	// Mutations must be visible immediately despite the read cache.
	listed, _ := svc.ListTransactions(testUserID, models.TransactionFilter{Period: models.PeriodAll})
	if len(listed) != 1 || listed[0].Category != "transport" {
		t.Fatalf("listed after update = %+v", listed)
	}

	if _, err := svc.UpdateTransaction(testUserID, 9999, CreateTransactionRequest{
		Type: models.TxExpense, Amount: 1, Category: "x", AccountID: "bank", Date: "2025-08-14",
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update missing err = %v, want ErrNotFound", err)
	}

	if err := svc.DeleteTransaction(testUserID, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := svc.DeleteTransaction(testUserID, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	listed, _ = svc.ListTransactions(testUserID, models.TransactionFilter{Period: models.PeriodAll})
	if len(listed) != 0 {
		t.Errorf("listed after delete = %+v", listed)
	}
}

func TestUserIsolation(t *testing.T) {
	svc := newLedgerService(t)

	tx, err := svc.CreateTransaction(testUserID, CreateTransactionRequest{
		Type:      models.TxExpense,
		Amount:    10_000,
		Category:  "food",
		AccountID: models.AccountBank,
		Date:      "2025-08-13",
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	otherUser := int64(2)
	if listed, _ := svc.ListTransactions(otherUser, models.TransactionFilter{Period: models.PeriodAll}); len(listed) != 0 {
		t.Errorf("other user sees %+v", listed)
	}
	if err := svc.DeleteTransaction(otherUser, tx.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-user delete err = %v, want ErrNotFound", err)
	}
}

func TestAccountBalancesFromSnapshotAndHistory(t *testing.T) {
	svc := newLedgerService(t)

	if err := svc.SetInitialBalance(testUserID, models.AccountBank, 1_000_000); err != nil {
		t.Fatalf("SetInitialBalance: %v", err)
	}
	if err := svc.SetInitialBalance(testUserID, "paypal", 10); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("unknown account err = %v, want ErrValidationFailed", err)
	}

	if _, err := svc.CreateTransaction(testUserID, CreateTransactionRequest{
		Type: models.TxIncome, Amount: 500_000, Category: "salary",
		AccountID: models.AccountBank, Date: "2025-08-13",
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if _, err := svc.CreateTransaction(testUserID, CreateTransactionRequest{
		Type: models.TxExpense, Amount: 50_000, Category: "food",
		AccountID: models.AccountCash, Date: "2025-08-13",
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	balances, err := svc.GetAccountBalances(testUserID)
	if err != nil {
		t.Fatalf("GetAccountBalances: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("balances = %+v, want bank and cash", balances)
	}
	if balances[0].AccountID != models.AccountBank || balances[0].Balance != 1_500_000 {
		t.Errorf("bank = %+v, want 1500000", balances[0])
	}
	if balances[1].AccountID != models.AccountCash || balances[1].Balance != -50_000 {
		t.Errorf("cash = %+v, want -50000", balances[1])
	}

	// Re-setting an initial balance replaces, not accumulates.
	if err := svc.SetInitialBalance(testUserID, models.AccountBank, 2_000_000); err != nil {
		t.Fatalf("SetInitialBalance: %v", err)
	}
	balances, _ = svc.GetAccountBalances(testUserID)
	if balances[0].Balance != 2_500_000 {
		t.Errorf("bank after reset = %+v, want 2500000", balances[0])
	}
}

func TestLegacyPaymentMethodRowsStillCount(t *testing.T) {
	svc := newLedgerService(t)

	// Simulate a first-generation row: account only under payment_method.
	if _, err := database.DB.Exec(`
		INSERT INTO transactions (user_id, type, amount, category, payment_method, description, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		testUserID, models.TxIncome, 70_000, "salary", models.AccountCash, "old row", "2025-08-01", "2025-08-01T00:00:00Z",
	); err != nil {
		t.Fatalf("seeding legacy row: %v", err)
	}

	balances, err := svc.GetAccountBalances(testUserID)
	if err != nil {
		t.Fatalf("GetAccountBalances: %v", err)
	}
	if len(balances) != 1 || balances[0].AccountID != models.AccountCash || balances[0].Balance != 70_000 {
		t.Fatalf("balances = %+v, want cash 70000 from legacy row", balances)
	}

	listed, _ := svc.ListTransactions(testUserID, models.TransactionFilter{Period: models.PeriodAll})
	if len(listed) != 1 || listed[0].Account() != models.AccountCash {
		t.Fatalf("listed = %+v, want legacy row resolving to cash", listed)
	}
}

func TestGetReport(t *testing.T) {
	svc := newLedgerService(t)

	seed := []CreateTransactionRequest{
		{Type: models.TxIncome, Amount: 1_000_000, Category: "salary", AccountID: "bank", Date: "2025-08-01"},
		{Type: models.TxExpense, Amount: 1_200_000, Category: "rent", AccountID: "bank", Date: "2025-08-05"},
	}
	for _, req := range seed {
		if _, err := svc.CreateTransaction(testUserID, req); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	report, err := svc.GetReport(testUserID, models.TransactionFilter{Period: models.PeriodAll})
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if report.Summary.TotalIncome != 1_000_000 || report.Summary.TotalExpense != 1_200_000 {
		t.Errorf("summary = %+v", report.Summary)
	}
	if report.Summary.Balance != -200_000 {
		t.Errorf("Balance = %d, want -200000", report.Summary.Balance)
	}
	if report.Health.Score != 60 || report.Health.Status != "good" {
		t.Errorf("health = %+v, want score 60 good", report.Health)
	}
}
