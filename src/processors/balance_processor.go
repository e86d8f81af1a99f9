package processors

import (
	"sort"

	"github.com/username/duitdash/src/models"
)

type balanceProcessor struct{}

func NewBalanceProcessor() BalanceProcessor {
	return &balanceProcessor{}
}

// Process folds the full transaction list over the stored initial balances.
// The result is a pure function of its inputs: balances are recomputed
// wholesale on every call, never patched incrementally, so they always agree
// with the visible history.
//
// An account appears in the result only once it has a stored initial balance
// or at least one transaction; untouched accounts are omitted.
func (p *balanceProcessor) Process(snapshot models.AccountSnapshot, txs []models.Transaction) []models.AccountBalance {
	balances := make(map[string]int64, len(snapshot))
	hasData := make(map[string]bool, len(snapshot))

	for account, initial := range snapshot {
		balances[account] = initial
		hasData[account] = true
	}

	for i := range txs {
		account := txs[i].Account()
		if account == "" {
			continue
		}
		hasData[account] = true
		switch txs[i].Type {
		case models.TxIncome:
			balances[account] += txs[i].Amount
		case models.TxExpense:
			balances[account] -= txs[i].Amount
		}
	}

	result := make([]models.AccountBalance, 0, len(hasData))
	for _, account := range orderedAccounts(hasData) {
		result = append(result, models.AccountBalance{
			AccountID:      account,
			InitialBalance: snapshot[account],
			Balance:        balances[account],
		})
	}
	return result
}

// orderedAccounts returns the visible accounts in display order: the known
// accounts first, then any legacy account names alphabetically.
func orderedAccounts(hasData map[string]bool) []string {
	var ordered []string
	seen := make(map[string]bool, len(hasData))
	for _, account := range models.KnownAccounts {
		if hasData[account] {
			ordered = append(ordered, account)
			seen[account] = true
		}
	}

	var rest []string
	for account := range hasData {
		if !seen[account] {
			rest = append(rest, account)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}
