// Package extract declares the typed contract between the dialog
// machine and the free-text extractor capability. The shapes carry no
// logic; validation of extracted values belongs to the machine.
package extract

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound signals that the target value could not be recovered from
// the user's text. The extractor maps malformed or ambiguous input here
// instead of returning partially filled shapes.
var ErrNotFound = errors.New("value not found in text")

type Income struct {
	Income float64 `json:"income"`
}

type Categories struct {
	Categories []string `json:"categories"`
}

type Amount struct {
	Amount float64 `json:"amount"`
}

type Decision struct {
	Decision bool `json:"decision"`
}

type SavingsGoal struct {
	Name         string  `json:"name"`
	TargetAmount float64 `json:"targetAmount"`
	TargetDate   string  `json:"targetDate"` // YYYY-MM-DD, relative phrasing resolved against "now"
}

type Purchase struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// Extractor turns one user utterance into one typed value. Every method
// either returns a value with all required fields present or ErrNotFound;
// transport failures surface as ordinary errors.
type Extractor interface {
	Income(ctx context.Context, text string) (Income, error)
	Categories(ctx context.Context, text string) (Categories, error)
	ExpenseAmount(ctx context.Context, text, category string) (Amount, error)
	YesNo(ctx context.Context, text string) (Decision, error)
	SavingsGoal(ctx context.Context, text string, at time.Time) (SavingsGoal, error)
	Purchase(ctx context.Context, text string) (Purchase, error)
}
