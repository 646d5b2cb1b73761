package finance

// Step identifies the phase of the advisory conversation. Values match
// the step tags used by the plan dashboard, so they survive JSON export.
type Step string

const (
	StepIntroduction         Step = "INTRO"
	StepAskIncome            Step = "ASK_INCOME"
	StepAskCategories        Step = "ASK_CATEGORIES"
	StepAskExpenses          Step = "ASK_EXPENSES"
	StepAskSavingsGoalBool   Step = "ASK_SAVINGS_BOOL"
	StepAskSavingsGoalDetail Step = "ASK_SAVINGS_DETAILS"
	StepAskExtraBool         Step = "ASK_EXTRA_BOOL"
	StepAskExtraDetail       Step = "ASK_EXTRA_DETAILS"
	StepCompleted            Step = "COMPLETED"
)

type Expense struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type SavingsGoal struct {
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	TargetDate    string  `json:"targetDate"` // YYYY-MM-DD
	MonthlyAmount float64 `json:"monthlyContribution"`
}

type ExtraPurchase struct {
	Name            string   `json:"name"`
	Cost            float64  `json:"cost"`
	Affordable      bool     `json:"affordable"`
	RemainingBudget *float64 `json:"remainingBudget,omitempty"`
	Shortfall       *float64 `json:"shortfall,omitempty"`
}

// Record accumulates everything the advisor learns during one session.
// It is mutated by the dialog machine only, one turn at a time.
type Record struct {
	Income        float64        `json:"income"`
	Categories    []string       `json:"categories"`
	Expenses      []Expense      `json:"expenses"`
	SavingsGoal   *SavingsGoal   `json:"savingsGoal,omitempty"`
	ExtraPurchase *ExtraPurchase `json:"extraPurchase,omitempty"`
	Step          Step           `json:"step"`
}

func NewRecord() *Record {
	return &Record{Step: StepIntroduction}
}

func (r *Record) TotalExpenses() float64 {
	total := 0.0
	for _, exp := range r.Expenses {
		total += exp.Amount
	}
	return total
}

// DisposableIncome is what remains after committed expenses and the
// savings contribution, if a goal was set.
func (r *Record) DisposableIncome() float64 {
	contribution := 0.0
	if r.SavingsGoal != nil {
		contribution = r.SavingsGoal.MonthlyAmount
	}
	return r.Income - r.TotalExpenses() - contribution
}

// NextCategory is the category the expenses loop is currently asking
// about. Empty when every category already has an amount.
func (r *Record) NextCategory() string {
	if len(r.Expenses) < len(r.Categories) {
		return r.Categories[len(r.Expenses)]
	}
	return ""
}

// Clone returns a deep copy safe to hand to presentation code.
func (r *Record) Clone() Record {
	cp := *r
	cp.Categories = append([]string(nil), r.Categories...)
	cp.Expenses = append([]Expense(nil), r.Expenses...)
	if r.SavingsGoal != nil {
		goal := *r.SavingsGoal
		cp.SavingsGoal = &goal
	}
	if r.ExtraPurchase != nil {
		purchase := *r.ExtraPurchase
		if r.ExtraPurchase.RemainingBudget != nil {
			v := *r.ExtraPurchase.RemainingBudget
			purchase.RemainingBudget = &v
		}
		if r.ExtraPurchase.Shortfall != nil {
			v := *r.ExtraPurchase.Shortfall
			purchase.Shortfall = &v
		}
		cp.ExtraPurchase = &purchase
	}
	return cp
}
