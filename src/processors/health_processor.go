package processors

import (
	"fmt"

	"github.com/username/duitdash/src/utils"
)

// Expense categories with dedicated concentration checks.
const (
	CategoryFood          = "food"
	CategoryEntertainment = "entertainment"
)

// Suggestion types.
const (
	SuggestionWarning = "warning"
	SuggestionTip     = "tip"
	SuggestionSuccess = "success"
)

// Health statuses by score band.
const (
	StatusExcellent = "excellent" // >= 80
	StatusGood      = "good"      // >= 60
	StatusFair      = "fair"      // >= 40
	StatusPoor      = "poor"
)

type healthProcessor struct{}

func NewHealthProcessor() HealthProcessor {
	return &healthProcessor{}
}

// Score rates a summary with a fixed additive-penalty heuristic starting at
// 100. The order of the checks and the suggestion ordering are part of the
// contract; clients render the suggestions as-is.
func (p *healthProcessor) Score(summary Summary) HealthReport {
	score := 100
	var suggestions []Suggestion

	income := summary.TotalIncome
	expense := summary.TotalExpense

	savingsRate := 0.0
	if income > 0 {
		savingsRate = float64(income-expense) / float64(income)
	}

	if expense > income {
		score -= 40
		suggestions = append(suggestions, Suggestion{
			Type:  SuggestionWarning,
			Title: "Spending exceeds income",
			Text: fmt.Sprintf("Your expenses exceed your income by %s. Reduce spending by at least that amount.",
				utils.FormatIDR(expense-income)),
		})
	} else if income > 0 && savingsRate < 0.20 {
		score -= 20
		suggestions = append(suggestions, Suggestion{
			Type:  SuggestionTip,
			Title: "Low savings rate",
			Text: fmt.Sprintf("You are saving less than 20%% of your income. Aim to set aside at least %s.",
				utils.FormatIDR(income/5)),
		})
	}

	if expense > 0 {
		for _, row := range summary.Breakdown {
			switch row.Category {
			case CategoryFood:
				if row.Share > 40 {
					score -= 10
					suggestions = append(suggestions, Suggestion{
						Type:  SuggestionTip,
						Title: "Food spending is high",
						Text: fmt.Sprintf("Food makes up %.0f%% of your expenses (%s). Try keeping it under 40%%.",
							row.Share, utils.FormatIDR(row.Amount)),
					})
				}
			case CategoryEntertainment:
				if row.Share > 20 {
					score -= 10
					suggestions = append(suggestions, Suggestion{
						Type:  SuggestionTip,
						Title: "Entertainment spending is high",
						Text: fmt.Sprintf("You spent %s on entertainment, more than 20%% of your expenses.",
							utils.FormatIDR(row.Amount)),
					})
				}
			}
		}
	}

	if summary.Balance > 0 && savingsRate >= 0.30 {
		suggestions = append(suggestions, Suggestion{
			Type:  SuggestionSuccess,
			Title: "Great savings discipline",
			Text:  "You are saving 30% or more of your income. Keep it up.",
		})
	} else if summary.Balance > 0 {
		suggestions = append(suggestions, Suggestion{
			Type:  SuggestionSuccess,
			Title: "Positive cash flow",
			Text:  "You spent less than you earned this period.",
		})
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return HealthReport{
		Score:       score,
		Status:      statusFor(score),
		Suggestions: suggestions,
	}
}

func statusFor(score int) string {
	switch {
	case score >= 80:
		return StatusExcellent
	case score >= 60:
		return StatusGood
	case score >= 40:
		return StatusFair
	default:
		return StatusPoor
	}
}
