package processors

import (
	"testing"
)

func TestScoreBands(t *testing.T) {
	p := NewHealthProcessor()

	tests := []struct {
		name       string
		summary    Summary
		wantScore  int
		wantStatus string
	}{
		{
			name: "healthy saver",
			summary: Summary{
				TotalIncome:  10_000_000,
				TotalExpense: 6_000_000,
				Balance:      4_000_000,
			},
			wantScore:  100,
			wantStatus: StatusExcellent,
		},
		{
			name: "overspending",
			summary: Summary{
				TotalIncome:  1_000_000,
				TotalExpense: 1_200_000,
				Balance:      -200_000,
			},
			wantScore:  60,
			wantStatus: StatusGood,
		},
		{
			name: "low savings rate",
			summary: Summary{
				TotalIncome:  10_000_000,
				TotalExpense: 9_000_000,
				Balance:      1_000_000,
			},
			wantScore:  80,
			wantStatus: StatusExcellent,
		},
		{
			name: "zero activity",
			summary: Summary{},
			// No income, no expense: nothing to penalize.
			wantScore:  100,
			wantStatus: StatusExcellent,
		},
		{
			name: "every penalty at once",
			summary: Summary{
				TotalIncome:  1_000_000,
				TotalExpense: 2_000_000,
				Balance:      -1_000_000,
				Breakdown: []CategoryAmount{
					{Category: CategoryFood, Amount: 1_000_000, Share: 50},
					{Category: CategoryEntertainment, Amount: 600_000, Share: 30},
				},
			},
			wantScore:  40,
			wantStatus: StatusFair,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := p.Score(tt.summary)
			if report.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", report.Score, tt.wantScore)
			}
			if report.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", report.Status, tt.wantStatus)
			}
		})
	}
}

func TestOverspendingAndLowSavingsAreExclusive(t *testing.T) {
	p := NewHealthProcessor()

	// expense > income implies a negative savings rate; only the overspending
	// penalty may fire, never both.
	report := p.Score(Summary{
		TotalIncome:  1_000_000,
		TotalExpense: 1_200_000,
		Balance:      -200_000,
	})

	if report.Score != 60 {
		t.Fatalf("Score = %d, want 60", report.Score)
	}
	if len(report.Suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1: %+v", len(report.Suggestions), report.Suggestions)
	}
	s := report.Suggestions[0]
	if s.Type != SuggestionWarning || s.Title != "Spending exceeds income" {
		t.Errorf("unexpected suggestion: %+v", s)
	}
	if want := "Your expenses exceed your income by Rp 200.000. Reduce spending by at least that amount."; s.Text != want {
		t.Errorf("Text = %q, want %q", s.Text, want)
	}
}

func TestFoodConcentrationTip(t *testing.T) {
	p := NewHealthProcessor()

	report := p.Score(Summary{
		TotalIncome:  5_000_000,
		TotalExpense: 2_000_000,
		Balance:      3_000_000,
		Breakdown: []CategoryAmount{
			{Category: CategoryFood, Amount: 1_000_000, Share: 50},
			{Category: "transport", Amount: 1_000_000, Share: 50},
		},
	})

	if report.Score != 90 {
		t.Fatalf("Score = %d, want 90", report.Score)
	}

	var foundFood, foundSuccess bool
	for _, s := range report.Suggestions {
		switch s.Title {
		case "Food spending is high":
			foundFood = true
		case "Great savings discipline":
			foundSuccess = true
		}
	}
	if !foundFood {
		t.Error("expected food concentration tip")
	}
	if !foundSuccess {
		t.Error("expected strong savings success suggestion for 60% savings rate")
	}
}

func TestSuccessSuggestionTiers(t *testing.T) {
	p := NewHealthProcessor()

	// 10% savings rate: positive balance but below the 30% bar.
	report := p.Score(Summary{
		TotalIncome:  1_000_000,
		TotalExpense: 900_000,
		Balance:      100_000,
	})

	var last Suggestion
	if len(report.Suggestions) == 0 {
		t.Fatal("expected at least one suggestion")
	}
	last = report.Suggestions[len(report.Suggestions)-1]
	if last.Type != SuggestionSuccess || last.Title != "Positive cash flow" {
		t.Errorf("unexpected final suggestion: %+v", last)
	}
}
