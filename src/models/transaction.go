package models

// Cash-flow transaction types.
const (
	TxIncome  = "income"
	TxExpense = "expense"
)

// Account identifiers. An account is a named cash bucket with an
// independently tracked balance.
const (
	AccountBank    = "bank"
	AccountEWallet = "ewallet"
	AccountCash    = "cash"
)

// KnownAccounts lists every account id in display order.
var KnownAccounts = []string{AccountBank, AccountEWallet, AccountCash}

// Transaction is a single cash-flow record. Amounts are whole rupiah stored
// as int64; display formatting happens at the boundary.
type Transaction struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"-"`
	Type        string `json:"type"`
	Amount      int64  `json:"amount"`
	Category    string `json:"category"`
	AccountID   string `json:"accountId"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	CreatedAt   string `json:"createdAt"`

	// PaymentMethod is the first-generation column name for the account.
	// It is read for old rows and never written; see Account().
	PaymentMethod string `json:"-"`
}

// Account returns the canonical account id, falling back to the legacy
// payment_method column for rows written by the first schema generation.
func (t *Transaction) Account() string {
	if t.AccountID != "" {
		return t.AccountID
	}
	return t.PaymentMethod
}

// AccountSnapshot is the per-user map of stored initial balances, one entry
// per account that has ever had its starting balance set.
type AccountSnapshot map[string]int64

// AccountBalance is a derived per-account balance. Never persisted; always
// recomputed from the snapshot plus the full transaction list.
type AccountBalance struct {
	AccountID      string `json:"accountId"`
	InitialBalance int64  `json:"initialBalance"`
	Balance        int64  `json:"balance"`
}

// Period selects the relative date range of a transaction filter.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodCustom  Period = "custom"
	PeriodAll     Period = "all"
)

// TransactionFilter restricts a transaction set. All predicates are ANDed;
// zero values mean "no restriction" except Period, which defaults to all.
type TransactionFilter struct {
	Period   Period `json:"period"`
	From     string `json:"from,omitempty"` // YYYY-MM-DD, custom period only
	To       string `json:"to,omitempty"`   // inclusive through end of day
	Category string `json:"category,omitempty"`
	Query    string `json:"query,omitempty"`
}
