package processors

import (
	"sort"
	"strings"
	"time"

	"github.com/username/duitdash/src/logger"
	"github.com/username/duitdash/src/models"
	"github.com/username/duitdash/src/utils"
)

type summaryProcessor struct{}

func NewSummaryProcessor() SummaryProcessor {
	return &summaryProcessor{}
}

// Filter returns the subset of txs matching every predicate of the filter.
// The input slice is never mutated.
func (p *summaryProcessor) Filter(txs []models.Transaction, filter models.TransactionFilter, now time.Time) []models.Transaction {
	start, end, bounded := periodRange(filter, now)
	category := strings.TrimSpace(filter.Category)
	query := strings.ToLower(strings.TrimSpace(filter.Query))

	matched := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if bounded {
			date, err := utils.ParseDate(tx.Date)
			if err != nil {
				if logger.L != nil {
					logger.L.Warn("Skipping transaction with unparseable date", "id", tx.ID, "date", tx.Date)
				}
				continue
			}
			if date.Before(start) || date.After(end) {
				continue
			}
		}
		if category != "" && category != "all" && tx.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(tx.Description), query) &&
			!strings.Contains(strings.ToLower(tx.Category), query) {
			continue
		}
		matched = append(matched, tx)
	}
	return matched
}

// Process filters txs and computes income/expense totals plus the expense
// category breakdown, sorted descending by amount.
func (p *summaryProcessor) Process(txs []models.Transaction, filter models.TransactionFilter, now time.Time) Summary {
	var summary Summary
	byCategory := make(map[string]int64)

	for _, tx := range p.Filter(txs, filter, now) {
		switch tx.Type {
		case models.TxIncome:
			summary.TotalIncome += tx.Amount
		case models.TxExpense:
			summary.TotalExpense += tx.Amount
			byCategory[tx.Category] += tx.Amount
		}
	}
	summary.Balance = summary.TotalIncome - summary.TotalExpense

	summary.Breakdown = make([]CategoryAmount, 0, len(byCategory))
	for category, amount := range byCategory {
		share := 0.0
		if summary.TotalExpense > 0 {
			share = float64(amount) / float64(summary.TotalExpense) * 100
		}
		summary.Breakdown = append(summary.Breakdown, CategoryAmount{
			Category: category,
			Amount:   amount,
			Share:    share,
		})
	}
	sort.Slice(summary.Breakdown, func(i, j int) bool {
		if summary.Breakdown[i].Amount != summary.Breakdown[j].Amount {
			return summary.Breakdown[i].Amount > summary.Breakdown[j].Amount
		}
		return summary.Breakdown[i].Category < summary.Breakdown[j].Category
	})

	return summary
}

// periodRange resolves the filter's period to an inclusive [start, end]
// window. bounded is false for the all period and for a custom period with
// no dates, meaning no date restriction at all.
func periodRange(filter models.TransactionFilter, now time.Time) (start, end time.Time, bounded bool) {
	end = utils.EndOfDay(now)

	switch filter.Period {
	case models.PeriodDaily:
		return utils.StartOfDay(now), end, true
	case models.PeriodWeekly:
		return utils.StartOfWeek(now), end, true
	case models.PeriodMonthly:
		return utils.StartOfMonth(now), end, true
	case models.PeriodYearly:
		return utils.StartOfYear(now), end, true
	case models.PeriodCustom:
		from, errFrom := utils.ParseDate(filter.From)
		to, errTo := utils.ParseDate(filter.To)
		if errFrom != nil && errTo != nil {
			return time.Time{}, time.Time{}, false
		}
		if errFrom != nil {
			from = time.Time{}
		}
		if errTo != nil {
			to = now
		}
		// The end date is inclusive through the last instant of its day.
		return utils.StartOfDay(from), utils.EndOfDay(to), true
	default: // models.PeriodAll and unknown values
		return time.Time{}, time.Time{}, false
	}
}
