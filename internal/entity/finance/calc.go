package finance

import (
	"time"

	"github.com/jinzhu/now"
)

// MonthlyContribution splits a savings target over the calendar months
// left until the target date. The horizon counts whole months regardless
// of the day of month and never drops below one, so an elapsed or
// same-month target yields the full amount in a single contribution.
func MonthlyContribution(targetAmount float64, targetDate, at time.Time) float64 {
	target := now.New(targetDate).BeginningOfMonth()
	current := now.New(at).BeginningOfMonth()

	months := (target.Year()-current.Year())*12 + int(target.Month()-current.Month())
	if months < 1 {
		months = 1
	}
	return targetAmount / float64(months)
}

// Verdict is the outcome of an affordability check. Exactly one of
// RemainingBudget and Shortfall is set, depending on Affordable.
type Verdict struct {
	Affordable      bool
	RemainingBudget *float64
	Shortfall       *float64
}

// Affordability compares a one-off cost against the disposable income
// left this month.
func Affordability(disposableIncome, cost float64) Verdict {
	if disposableIncome >= cost {
		remaining := disposableIncome - cost
		return Verdict{Affordable: true, RemainingBudget: &remaining}
	}
	shortfall := cost - disposableIncome
	return Verdict{Affordable: false, Shortfall: &shortfall}
}
