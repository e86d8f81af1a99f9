package processors

import (
	"reflect"
	"testing"

	"github.com/username/duitdash/src/models"
)

func TestBalanceReconstruction(t *testing.T) {
	p := NewBalanceProcessor()

	snapshot := models.AccountSnapshot{
		models.AccountBank: 1_000_000,
		models.AccountCash: 50_000,
	}
	txs := []models.Transaction{
		{Type: models.TxIncome, Amount: 500_000, AccountID: models.AccountBank},
		{Type: models.TxExpense, Amount: 200_000, AccountID: models.AccountBank},
		{Type: models.TxExpense, Amount: 30_000, AccountID: models.AccountCash},
		{Type: models.TxIncome, Amount: 100_000, AccountID: models.AccountEWallet},
	}

	got := p.Process(snapshot, txs)
	want := []models.AccountBalance{
		{AccountID: models.AccountBank, InitialBalance: 1_000_000, Balance: 1_300_000},
		{AccountID: models.AccountEWallet, InitialBalance: 0, Balance: 100_000},
		{AccountID: models.AccountCash, InitialBalance: 50_000, Balance: 20_000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %+v, want %+v", got, want)
	}
}

func TestBalanceVisibility(t *testing.T) {
	p := NewBalanceProcessor()

	// No snapshot entry and no transactions: the account stays hidden.
	got := p.Process(models.AccountSnapshot{}, nil)
	if len(got) != 0 {
		t.Fatalf("expected no visible accounts, got %+v", got)
	}

	// A snapshot entry alone makes the account visible, even at zero.
	got = p.Process(models.AccountSnapshot{models.AccountEWallet: 0}, nil)
	if len(got) != 1 || got[0].AccountID != models.AccountEWallet || got[0].Balance != 0 {
		t.Fatalf("expected visible ewallet at zero, got %+v", got)
	}
}

func TestBalanceIsRecomputedWholesale(t *testing.T) {
	p := NewBalanceProcessor()

	snapshot := models.AccountSnapshot{models.AccountBank: 100_000}
	txs := []models.Transaction{
		{Type: models.TxExpense, Amount: 40_000, AccountID: models.AccountBank},
	}

	first := p.Process(snapshot, txs)
	second := p.Process(snapshot, txs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Process() diverged: %+v vs %+v", first, second)
	}
	if first[0].Balance != 60_000 {
		t.Errorf("Balance = %d, want 60000", first[0].Balance)
	}
}

func TestBalanceLegacyAccountColumn(t *testing.T) {
	p := NewBalanceProcessor()

	// Old rows carry only payment_method; they must still count, and a
	// non-canonical name sorts after the known accounts.
	txs := []models.Transaction{
		{Type: models.TxIncome, Amount: 75_000, PaymentMethod: models.AccountCash},
		{Type: models.TxIncome, Amount: 10_000, PaymentMethod: "gopay"},
	}

	got := p.Process(models.AccountSnapshot{}, txs)
	want := []models.AccountBalance{
		{AccountID: models.AccountCash, Balance: 75_000},
		{AccountID: "gopay", Balance: 10_000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %+v, want %+v", got, want)
	}
}
