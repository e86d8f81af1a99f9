package processors

import (
	"testing"
	"time"

	"github.com/username/duitdash/src/models"
)

// fixedNow is a Wednesday in mid-August.
var fixedNow = time.Date(2025, time.August, 13, 14, 30, 0, 0, time.Local)

func tx(id int64, txType string, amount int64, category, description, date string) models.Transaction {
	return models.Transaction{
		ID:          id,
		Type:        txType,
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		AccountID:   models.AccountBank,
	}
}

func TestFilterPeriods(t *testing.T) {
	p := NewSummaryProcessor()

	txs := []models.Transaction{
		tx(1, models.TxExpense, 10_000, "food", "lunch today", "2025-08-13"),
		tx(2, models.TxExpense, 20_000, "food", "groceries sunday", "2025-08-10"),
		tx(3, models.TxExpense, 30_000, "transport", "fuel first of month", "2025-08-01"),
		tx(4, models.TxExpense, 40_000, "transport", "july trip", "2025-07-20"),
		tx(5, models.TxIncome, 50_000, "salary", "january bonus", "2025-01-02"),
		tx(6, models.TxExpense, 60_000, "other", "last year", "2024-12-31"),
	}

	tests := []struct {
		name    string
		filter  models.TransactionFilter
		wantIDs []int64
	}{
		{"daily", models.TransactionFilter{Period: models.PeriodDaily}, []int64{1}},
		// Week starts on the most recent Sunday, 2025-08-10.
		{"weekly", models.TransactionFilter{Period: models.PeriodWeekly}, []int64{1, 2}},
		{"monthly", models.TransactionFilter{Period: models.PeriodMonthly}, []int64{1, 2, 3}},
		{"yearly", models.TransactionFilter{Period: models.PeriodYearly}, []int64{1, 2, 3, 4, 5}},
		{"all", models.TransactionFilter{Period: models.PeriodAll}, []int64{1, 2, 3, 4, 5, 6}},
		{"unknown period is unbounded", models.TransactionFilter{Period: "fortnightly"}, []int64{1, 2, 3, 4, 5, 6}},
		{
			"custom inclusive end",
			models.TransactionFilter{Period: models.PeriodCustom, From: "2025-07-20", To: "2025-08-01"},
			[]int64{3, 4},
		},
		{
			"custom with only from",
			models.TransactionFilter{Period: models.PeriodCustom, From: "2025-08-01"},
			[]int64{1, 2, 3},
		},
		{
			"custom without dates is unbounded",
			models.TransactionFilter{Period: models.PeriodCustom},
			[]int64{1, 2, 3, 4, 5, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Filter(txs, tt.filter, fixedNow)
			gotIDs := make([]int64, 0, len(got))
			for _, m := range got {
				gotIDs = append(gotIDs, m.ID)
			}
			if len(gotIDs) != len(tt.wantIDs) {
				t.Fatalf("got ids %v, want %v", gotIDs, tt.wantIDs)
			}
			for i := range gotIDs {
				if gotIDs[i] != tt.wantIDs[i] {
					t.Fatalf("got ids %v, want %v", gotIDs, tt.wantIDs)
				}
			}
		})
	}
}

func TestFilterCategoryAndQuery(t *testing.T) {
	p := NewSummaryProcessor()

	txs := []models.Transaction{
		tx(1, models.TxExpense, 10_000, "food", "Warung lunch", "2025-08-13"),
		tx(2, models.TxExpense, 20_000, "transport", "Grab ride", "2025-08-13"),
		tx(3, models.TxExpense, 30_000, "food", "Coffee", "2025-08-13"),
	}

	got := p.Filter(txs, models.TransactionFilter{Period: models.PeriodAll, Category: "food"}, fixedNow)
	if len(got) != 2 {
		t.Fatalf("category filter: got %d, want 2", len(got))
	}

	// "all" category means no restriction.
	got = p.Filter(txs, models.TransactionFilter{Period: models.PeriodAll, Category: "all"}, fixedNow)
	if len(got) != 3 {
		t.Fatalf("category all: got %d, want 3", len(got))
	}

	// Query matches description and category, case-insensitively.
	got = p.Filter(txs, models.TransactionFilter{Period: models.PeriodAll, Query: "WARUNG"}, fixedNow)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("query on description: got %+v", got)
	}
	got = p.Filter(txs, models.TransactionFilter{Period: models.PeriodAll, Query: "transport"}, fixedNow)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("query on category: got %+v", got)
	}

	// Predicates are ANDed.
	got = p.Filter(txs, models.TransactionFilter{Period: models.PeriodAll, Category: "food", Query: "coffee"}, fixedNow)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("combined predicates: got %+v", got)
	}
}

func TestFilterSkipsUnparseableDates(t *testing.T) {
	p := NewSummaryProcessor()

	txs := []models.Transaction{
		tx(1, models.TxExpense, 10_000, "food", "good row", "2025-08-13"),
		tx(2, models.TxExpense, 20_000, "food", "bad row", "not-a-date"),
	}

	got := p.Filter(txs, models.TransactionFilter{Period: models.PeriodMonthly}, fixedNow)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected only the parseable row, got %+v", got)
	}

	// Unbounded filters never parse dates, so the bad row survives.
	got = p.Filter(txs, models.TransactionFilter{Period: models.PeriodAll}, fixedNow)
	if len(got) != 2 {
		t.Fatalf("all period should keep both rows, got %+v", got)
	}
}

func TestProcessBreakdown(t *testing.T) {
	p := NewSummaryProcessor()

	txs := []models.Transaction{
		tx(1, models.TxIncome, 1_000_000, "salary", "payday", "2025-08-13"),
		tx(2, models.TxExpense, 300_000, "food", "", "2025-08-13"),
		tx(3, models.TxExpense, 100_000, "food", "", "2025-08-13"),
		tx(4, models.TxExpense, 400_000, "rent", "", "2025-08-13"),
		tx(5, models.TxExpense, 200_000, "transport", "", "2025-08-13"),
	}

	summary := p.Process(txs, models.TransactionFilter{Period: models.PeriodAll}, fixedNow)

	if summary.TotalIncome != 1_000_000 {
		t.Errorf("TotalIncome = %d, want 1000000", summary.TotalIncome)
	}
	if summary.TotalExpense != 1_000_000 {
		t.Errorf("TotalExpense = %d, want 1000000", summary.TotalExpense)
	}
	if summary.Balance != 0 {
		t.Errorf("Balance = %d, want 0", summary.Balance)
	}

	wantOrder := []string{"food", "rent", "transport"}
	if len(summary.Breakdown) != len(wantOrder) {
		t.Fatalf("breakdown rows = %d, want %d", len(summary.Breakdown), len(wantOrder))
	}
	for i, category := range wantOrder {
		if summary.Breakdown[i].Category != category {
			t.Errorf("breakdown[%d] = %q, want %q", i, summary.Breakdown[i].Category, category)
		}
	}
	if summary.Breakdown[0].Amount != 400_000 || summary.Breakdown[0].Share != 40 {
		t.Errorf("food row = %+v, want amount 400000 share 40", summary.Breakdown[0])
	}
}

func TestProcessBreakdownTiebreak(t *testing.T) {
	p := NewSummaryProcessor()

	txs := []models.Transaction{
		tx(1, models.TxExpense, 100_000, "zeta", "", "2025-08-13"),
		tx(2, models.TxExpense, 100_000, "alpha", "", "2025-08-13"),
	}

	summary := p.Process(txs, models.TransactionFilter{Period: models.PeriodAll}, fixedNow)
	if summary.Breakdown[0].Category != "alpha" || summary.Breakdown[1].Category != "zeta" {
		t.Errorf("equal amounts should order by category name, got %+v", summary.Breakdown)
	}
}
