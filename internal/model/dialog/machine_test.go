package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/advisor-bot/internal/entity/finance"
	"max.ks1230/advisor-bot/internal/model/extract"
)

type appConfigStub struct{}

func (appConfigStub) CurrencySymbol() string { return "S/" }

// fakeExtractor lets each test script exactly the extractions it expects.
// Unset methods fail the test so no step extracts more than declared.
type fakeExtractor struct {
	t             *testing.T
	income        func(text string) (extract.Income, error)
	categories    func(text string) (extract.Categories, error)
	expenseAmount func(text, category string) (extract.Amount, error)
	yesNo         func(text string) (extract.Decision, error)
	savingsGoal   func(text string, at time.Time) (extract.SavingsGoal, error)
	purchase      func(text string) (extract.Purchase, error)
}

func (f *fakeExtractor) Income(_ context.Context, text string) (extract.Income, error) {
	require.NotNil(f.t, f.income, "unexpected income extraction")
	return f.income(text)
}

func (f *fakeExtractor) Categories(_ context.Context, text string) (extract.Categories, error) {
	require.NotNil(f.t, f.categories, "unexpected categories extraction")
	return f.categories(text)
}

func (f *fakeExtractor) ExpenseAmount(_ context.Context, text, category string) (extract.Amount, error) {
	require.NotNil(f.t, f.expenseAmount, "unexpected amount extraction")
	return f.expenseAmount(text, category)
}

func (f *fakeExtractor) YesNo(_ context.Context, text string) (extract.Decision, error) {
	require.NotNil(f.t, f.yesNo, "unexpected yes/no extraction")
	return f.yesNo(text)
}

func (f *fakeExtractor) SavingsGoal(_ context.Context, text string, at time.Time) (extract.SavingsGoal, error) {
	require.NotNil(f.t, f.savingsGoal, "unexpected savings goal extraction")
	return f.savingsGoal(text, at)
}

func (f *fakeExtractor) Purchase(_ context.Context, text string) (extract.Purchase, error) {
	require.NotNil(f.t, f.purchase, "unexpected purchase extraction")
	return f.purchase(text)
}

func newTestMachine(ex extract.Extractor) *Machine {
	m := NewMachine(ex, appConfigStub{})
	m.now = func() time.Time {
		return time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	}
	return m
}

func recordAt(step finance.Step) *finance.Record {
	rec := finance.NewRecord()
	rec.Step = step
	return rec
}

func Test_Open_ShouldEnterIncomeStep(t *testing.T) {
	m := newTestMachine(&fakeExtractor{t: t})
	rec := finance.NewRecord()

	directive := m.Open(rec)

	assert.Equal(t, finance.StepAskIncome, rec.Step)
	assert.Contains(t, directive, "ingreso mensual neto")
}

func Test_OnIncome_ShouldStoreAndAskCategories(t *testing.T) {
	ex := &fakeExtractor{t: t, income: func(string) (extract.Income, error) {
		return extract.Income{Income: 3000}, nil
	}}
	rec := recordAt(finance.StepAskIncome)

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "gano 3000 soles")

	require.NoError(t, err)
	assert.Equal(t, 3000.0, rec.Income)
	assert.Equal(t, finance.StepAskCategories, rec.Step)
	assert.Contains(t, directive, "S/ 3000.00")
	assert.Contains(t, directive, "categorías")
}

func Test_OnIncome_MissKeepsStepAndRecord(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) (extract.Income, error)
	}{
		{"not found", func(string) (extract.Income, error) {
			return extract.Income{}, extract.ErrNotFound
		}},
		{"non-positive", func(string) (extract.Income, error) {
			return extract.Income{Income: -50}, nil
		}},
		{"transport error", func(string) (extract.Income, error) {
			return extract.Income{}, assert.AnError
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordAt(finance.StepAskIncome)
			directive, err := newTestMachine(&fakeExtractor{t: t, income: tc.fn}).
				Advance(context.Background(), rec, "mucho")

			require.NoError(t, err)
			assert.Equal(t, finance.StepAskIncome, rec.Step)
			assert.Equal(t, 0.0, rec.Income)
			assert.Equal(t, repeatIncomeDirective, directive)
		})
	}
}

func Test_OnCategories_ShouldPreserveOrderAndAskFirstAmount(t *testing.T) {
	ex := &fakeExtractor{t: t, categories: func(string) (extract.Categories, error) {
		return extract.Categories{Categories: []string{"Alquiler", "Comida", "Transporte"}}, nil
	}}
	rec := recordAt(finance.StepAskCategories)

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "alquiler, comida y transporte")

	require.NoError(t, err)
	assert.Equal(t, []string{"Alquiler", "Comida", "Transporte"}, rec.Categories)
	assert.Equal(t, finance.StepAskExpenses, rec.Step)
	assert.Contains(t, directive, `"Alquiler"`)
}

func Test_OnCategories_EmptyListIsAMiss(t *testing.T) {
	ex := &fakeExtractor{t: t, categories: func(string) (extract.Categories, error) {
		return extract.Categories{}, nil
	}}
	rec := recordAt(finance.StepAskCategories)

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "no sé")

	require.NoError(t, err)
	assert.Equal(t, finance.StepAskCategories, rec.Step)
	assert.Empty(t, rec.Categories)
	assert.Equal(t, repeatCategoriesDirective, directive)
}

func Test_ExpensesLoop_ShouldWalkCategoriesInOrder(t *testing.T) {
	amounts := map[string]float64{"Alquiler": 1000, "Comida": 500}
	ex := &fakeExtractor{t: t, expenseAmount: func(_, category string) (extract.Amount, error) {
		return extract.Amount{Amount: amounts[category]}, nil
	}}
	m := newTestMachine(ex)
	rec := recordAt(finance.StepAskExpenses)
	rec.Categories = []string{"Alquiler", "Comida"}

	directive, err := m.Advance(context.Background(), rec, "unos 1000")
	require.NoError(t, err)
	assert.Equal(t, finance.StepAskExpenses, rec.Step)
	assert.Contains(t, directive, `"Comida"`)

	directive, err = m.Advance(context.Background(), rec, "500 al mes")
	require.NoError(t, err)

	assert.Equal(t, finance.StepAskSavingsGoalBool, rec.Step)
	require.Len(t, rec.Expenses, 2)
	for i, category := range rec.Categories {
		assert.Equal(t, category, rec.Expenses[i].Category)
		assert.Equal(t, amounts[category], rec.Expenses[i].Amount)
	}
	assert.Equal(t, askSavingsDirective, directive)
}

func Test_ExpensesLoop_UnreadableAmountIsZeroFilled(t *testing.T) {
	ex := &fakeExtractor{t: t, expenseAmount: func(_, _ string) (extract.Amount, error) {
		return extract.Amount{}, extract.ErrNotFound
	}}
	rec := recordAt(finance.StepAskExpenses)
	rec.Categories = []string{"Alquiler", "Comida"}

	_, err := newTestMachine(ex).Advance(context.Background(), rec, "ni idea")

	require.NoError(t, err)
	// the loop still advances, recording zero
	require.Len(t, rec.Expenses, 1)
	assert.Equal(t, finance.Expense{Category: "Alquiler", Amount: 0}, rec.Expenses[0])
	assert.Equal(t, finance.StepAskExpenses, rec.Step)
}

func Test_OnSavingsBool_YesAsksForDetails(t *testing.T) {
	ex := &fakeExtractor{t: t, yesNo: func(string) (extract.Decision, error) {
		return extract.Decision{Decision: true}, nil
	}}
	rec := recordAt(finance.StepAskSavingsGoalBool)

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "sí, por favor")

	require.NoError(t, err)
	assert.Equal(t, finance.StepAskSavingsGoalDetail, rec.Step)
	assert.Equal(t, askGoalDetailsDirective, directive)
}

func Test_OnSavingsBool_NoOrFailureSkipsToExtraPurchase(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) (extract.Decision, error)
	}{
		{"no", func(string) (extract.Decision, error) {
			return extract.Decision{Decision: false}, nil
		}},
		{"extractor failure defaults to no", func(string) (extract.Decision, error) {
			return extract.Decision{}, assert.AnError
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordAt(finance.StepAskSavingsGoalBool)
			directive, err := newTestMachine(&fakeExtractor{t: t, yesNo: tc.fn}).
				Advance(context.Background(), rec, "no")

			require.NoError(t, err)
			assert.Equal(t, finance.StepAskExtraBool, rec.Step)
			assert.Equal(t, askExtraDirective, directive)
			assert.Nil(t, rec.SavingsGoal)
		})
	}
}

func Test_OnSavingsDetails_ShouldComputeContribution(t *testing.T) {
	ex := &fakeExtractor{t: t, savingsGoal: func(_ string, _ time.Time) (extract.SavingsGoal, error) {
		return extract.SavingsGoal{Name: "Viaje", TargetAmount: 1200, TargetDate: "2025-03-15"}, nil
	}}
	rec := recordAt(finance.StepAskSavingsGoalDetail)

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "viaje, 1200 en un año")

	require.NoError(t, err)
	require.NotNil(t, rec.SavingsGoal)
	assert.Equal(t, "Viaje", rec.SavingsGoal.Name)
	assert.Equal(t, 100.0, rec.SavingsGoal.MonthlyAmount)
	assert.Equal(t, finance.StepAskExtraBool, rec.Step)
	assert.Contains(t, directive, "S/100.00/mes")
}

func Test_OnSavingsDetails_MissReasks(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string, time.Time) (extract.SavingsGoal, error)
	}{
		{"not found", func(string, time.Time) (extract.SavingsGoal, error) {
			return extract.SavingsGoal{}, extract.ErrNotFound
		}},
		{"missing name", func(string, time.Time) (extract.SavingsGoal, error) {
			return extract.SavingsGoal{TargetAmount: 500, TargetDate: "2024-09-01"}, nil
		}},
		{"non-positive amount", func(string, time.Time) (extract.SavingsGoal, error) {
			return extract.SavingsGoal{Name: "Viaje", TargetAmount: 0, TargetDate: "2024-09-01"}, nil
		}},
		{"unparseable date", func(string, time.Time) (extract.SavingsGoal, error) {
			return extract.SavingsGoal{Name: "Viaje", TargetAmount: 500, TargetDate: "pronto"}, nil
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordAt(finance.StepAskSavingsGoalDetail)
			directive, err := newTestMachine(&fakeExtractor{t: t, savingsGoal: tc.fn}).
				Advance(context.Background(), rec, "...")

			require.NoError(t, err)
			assert.Equal(t, finance.StepAskSavingsGoalDetail, rec.Step)
			assert.Nil(t, rec.SavingsGoal)
			assert.Equal(t, repeatGoalDirective, directive)
		})
	}
}

func Test_OnExtraBool_NoCompletesSession(t *testing.T) {
	ex := &fakeExtractor{t: t, yesNo: func(string) (extract.Decision, error) {
		return extract.Decision{Decision: false}, nil
	}}
	rec := recordAt(finance.StepAskExtraBool)

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "no, gracias")

	require.NoError(t, err)
	assert.Equal(t, finance.StepCompleted, rec.Step)
	assert.Equal(t, closeSessionDirective, directive)
}

func Test_OnExtraDetails_AffordablePurchase(t *testing.T) {
	ex := &fakeExtractor{t: t, purchase: func(string) (extract.Purchase, error) {
		return extract.Purchase{Name: "Laptop", Cost: 1800}, nil
	}}
	rec := recordAt(finance.StepAskExtraDetail)
	rec.Income = 3000
	rec.Expenses = []finance.Expense{{Category: "Alquiler", Amount: 1000}, {Category: "Comida", Amount: 500}}

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "una laptop de 1800")

	require.NoError(t, err)
	require.NotNil(t, rec.ExtraPurchase)
	assert.True(t, rec.ExtraPurchase.Affordable)
	require.NotNil(t, rec.ExtraPurchase.RemainingBudget)
	assert.Equal(t, 300.0, *rec.ExtraPurchase.RemainingBudget)
	assert.Nil(t, rec.ExtraPurchase.Shortfall)
	assert.Equal(t, finance.StepCompleted, rec.Step)
	assert.Contains(t, directive, "Es viable.")
}

func Test_OnExtraDetails_UnaffordablePurchase(t *testing.T) {
	ex := &fakeExtractor{t: t, purchase: func(string) (extract.Purchase, error) {
		return extract.Purchase{Name: "Moto", Cost: 2000}, nil
	}}
	rec := recordAt(finance.StepAskExtraDetail)
	rec.Income = 3000
	rec.Expenses = []finance.Expense{{Category: "Alquiler", Amount: 1000}, {Category: "Comida", Amount: 500}}

	directive, err := newTestMachine(ex).Advance(context.Background(), rec, "una moto")

	require.NoError(t, err)
	require.NotNil(t, rec.ExtraPurchase)
	assert.False(t, rec.ExtraPurchase.Affordable)
	require.NotNil(t, rec.ExtraPurchase.Shortfall)
	assert.Equal(t, 500.0, *rec.ExtraPurchase.Shortfall)
	assert.Nil(t, rec.ExtraPurchase.RemainingBudget)
	assert.Contains(t, directive, "No es viable.")
}

func Test_OnExtraDetails_SavingsContributionReducesBudget(t *testing.T) {
	ex := &fakeExtractor{t: t, purchase: func(string) (extract.Purchase, error) {
		return extract.Purchase{Name: "Laptop", Cost: 1450}, nil
	}}
	rec := recordAt(finance.StepAskExtraDetail)
	rec.Income = 3000
	rec.Expenses = []finance.Expense{{Category: "Alquiler", Amount: 1000}, {Category: "Comida", Amount: 500}}
	rec.SavingsGoal = &finance.SavingsGoal{Name: "Viaje", TargetAmount: 1200, MonthlyAmount: 100}

	_, err := newTestMachine(ex).Advance(context.Background(), rec, "laptop 1450")

	require.NoError(t, err)
	require.NotNil(t, rec.ExtraPurchase)
	// disposable = 3000 - 1500 - 100 = 1400 < 1450
	assert.False(t, rec.ExtraPurchase.Affordable)
	assert.Equal(t, 50.0, *rec.ExtraPurchase.Shortfall)
}

func Test_Advance_OnCompletedStepIsAnError(t *testing.T) {
	rec := recordAt(finance.StepCompleted)

	_, err := newTestMachine(&fakeExtractor{t: t}).Advance(context.Background(), rec, "hola")

	assert.Error(t, err)
}

func Test_EndToEnd_DeclinedGoalAffordableLaptop(t *testing.T) {
	amounts := []float64{1000, 500}
	callNo := 0
	ex := &fakeExtractor{
		t: t,
		income: func(string) (extract.Income, error) {
			return extract.Income{Income: 3000}, nil
		},
		categories: func(string) (extract.Categories, error) {
			return extract.Categories{Categories: []string{"Alquiler", "Comida"}}, nil
		},
		expenseAmount: func(_, _ string) (extract.Amount, error) {
			amount := amounts[callNo]
			callNo++
			return extract.Amount{Amount: amount}, nil
		},
		yesNo: func(text string) (extract.Decision, error) {
			return extract.Decision{Decision: text == "sí"}, nil
		},
		purchase: func(string) (extract.Purchase, error) {
			return extract.Purchase{Name: "Laptop", Cost: 1800}, nil
		},
	}
	m := newTestMachine(ex)
	rec := finance.NewRecord()
	m.Open(rec)

	for _, text := range []string{"3000", "alquiler y comida", "1000", "500", "no", "sí", "laptop 1800"} {
		_, err := m.Advance(context.Background(), rec, text)
		require.NoError(t, err)
	}

	assert.Equal(t, finance.StepCompleted, rec.Step)
	assert.Equal(t, 1500.0, rec.DisposableIncome())
	assert.Nil(t, rec.SavingsGoal)
	require.NotNil(t, rec.ExtraPurchase)
	assert.True(t, rec.ExtraPurchase.Affordable)
	assert.Equal(t, 300.0, *rec.ExtraPurchase.RemainingBudget)
}
