package processors

import (
	"time"

	"github.com/username/duitdash/src/models"
)

// CategoryAmount is one row of the expense-by-category breakdown. Share is
// the category's percentage of total expense.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   int64   `json:"amount"`
	Share    float64 `json:"share"`
}

// Summary holds the aggregates over a filtered transaction set.
type Summary struct {
	TotalIncome  int64            `json:"totalIncome"`
	TotalExpense int64            `json:"totalExpense"`
	Balance      int64            `json:"balance"`
	Breakdown    []CategoryAmount `json:"breakdown"`
}

// Suggestion is one qualitative line of the health report.
type Suggestion struct {
	Type  string `json:"type"` // warning, tip, success
	Title string `json:"title"`
	Text  string `json:"text"`
}

// HealthReport is the 0-100 heuristic rating of a summary.
type HealthReport struct {
	Score       int          `json:"score"`
	Status      string       `json:"status"` // excellent, good, fair, poor
	Suggestions []Suggestion `json:"suggestions"`
}

// BalanceProcessor reconstructs per-account balances from the initial
// balance snapshot and the full transaction log.
type BalanceProcessor interface {
	Process(snapshot models.AccountSnapshot, txs []models.Transaction) []models.AccountBalance
}

// SummaryProcessor filters a transaction set and computes its aggregates.
type SummaryProcessor interface {
	Filter(txs []models.Transaction, filter models.TransactionFilter, now time.Time) []models.Transaction
	Process(txs []models.Transaction, filter models.TransactionFilter, now time.Time) Summary
}

// HealthProcessor scores a summary.
type HealthProcessor interface {
	Score(summary Summary) HealthReport
}
