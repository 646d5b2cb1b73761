package dialog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/advisor-bot/internal/entity/finance"
	"max.ks1230/advisor-bot/internal/model/extract"
)

const targetDateLayout = "2006-01-02"

// Directives are instructions for the responder, never user-facing text.
// The responder owns tone and phrasing; the machine owns facts and flow.
const (
	openDirective = `Preséntate como un asesor financiero de élite y pregunta formalmente ` +
		`cuál es el ingreso mensual neto del usuario en Soles.`

	repeatIncomeDirective = `El usuario no dio un número válido. Pídele cortésmente que ` +
		`repita su ingreso mensual en números.`
	repeatCategoriesDirective = `No se entendieron las categorías. Pídele que las liste ` +
		`separadas por comas.`
	repeatGoalDirective = `No se pudieron extraer todos los detalles (nombre, monto, fecha). ` +
		`Pídele amablemente que repita los detalles de la meta de ahorro.`
	repeatPurchaseDirective = `No entendí el costo o nombre. Pídele que repita el nombre y ` +
		`precio de la compra extra.`

	askSavingsDirective = `Se han registrado todos los gastos. Ahora pregunta formalmente ` +
		`si desea establecer una meta de ahorro específica.`
	askGoalDetailsDirective = `El usuario quiere ahorrar. Pídele el nombre de la meta, ` +
		`el monto total objetivo y la fecha límite deseada (o en cuántos meses).`
	askExtraDirective = `El usuario no quiere meta de ahorro por ahora. Pregunta si tiene ` +
		`planeado realizar alguna compra extra o capricho pronto para analizar su viabilidad.`
	askPurchaseDetailsDirective = `Pídele el nombre del producto/servicio y su costo aproximado.`
	closeSessionDirective       = `El usuario ha terminado. Preséntale un resumen final formal, ` +
		`confirmando que su plan de gastos está listo y visible en el panel. Despídete con elegancia.`
)

type config interface {
	CurrencySymbol() string
}

type stepFunc func(ctx context.Context, rec *finance.Record, text string) (string, error)

type stepMap map[finance.Step]stepFunc

// Machine is the conversation state machine. Given the current record
// and one user utterance it invokes exactly one extraction, mutates the
// record on validated success and returns the directive for the next
// advisor message.
type Machine struct {
	steps     stepMap
	extractor extract.Extractor
	currency  string
	now       func() time.Time
}

func NewMachine(extractor extract.Extractor, cfg config) *Machine {
	m := &Machine{
		extractor: extractor,
		currency:  cfg.CurrencySymbol(),
		now:       time.Now,
	}
	m.steps = newStepMap(m)
	return m
}

func newStepMap(m *Machine) stepMap {
	s := make(stepMap)
	s[finance.StepAskIncome] = m.stepIncome
	s[finance.StepAskCategories] = m.stepCategories
	s[finance.StepAskExpenses] = m.stepExpenses
	s[finance.StepAskSavingsGoalBool] = m.stepSavingsBool
	s[finance.StepAskSavingsGoalDetail] = m.stepSavingsDetails
	s[finance.StepAskExtraBool] = m.stepExtraBool
	s[finance.StepAskExtraDetail] = m.stepExtraDetails
	return s
}

// Open moves a fresh record out of the introduction phase and returns
// the directive for the advisor's greeting. No extraction is involved.
func (m *Machine) Open(rec *finance.Record) string {
	rec.Step = finance.StepAskIncome
	return openDirective
}

// Advance runs one turn of the conversation. The record is left
// untouched when extraction or validation fails; the returned directive
// then re-asks the same question.
func (m *Machine) Advance(ctx context.Context, rec *finance.Record, text string) (string, error) {
	step, ok := m.steps[rec.Step]
	if !ok {
		return "", errors.Errorf("no turn expected in step %s", rec.Step)
	}
	return step(ctx, rec, text)
}

func (m *Machine) stepIncome(ctx context.Context, rec *finance.Record, text string) (string, error) {
	value, err := m.extractor.Income(ctx, text)
	if err != nil || value.Income <= 0 {
		return repeatIncomeDirective, nil
	}

	rec.Income = value.Income
	rec.Step = finance.StepAskCategories
	return fmt.Sprintf(
		`El usuario ha indicado ingresos de %s %.2f. Ahora, pídele que enumere sus categorías `+
			`de gastos personalizadas (ej: Alquiler, Comida, Transporte), separadas por comas.`,
		m.currency, value.Income), nil
}

func (m *Machine) stepCategories(ctx context.Context, rec *finance.Record, text string) (string, error) {
	value, err := m.extractor.Categories(ctx, text)
	if err != nil || len(value.Categories) == 0 {
		return repeatCategoriesDirective, nil
	}

	rec.Categories = value.Categories
	rec.Step = finance.StepAskExpenses
	return fmt.Sprintf(
		`El usuario definió estas categorías: %s. Pregunta cuánto gasta mensualmente en la `+
			`PRIMERA categoría: "%s". Sé directo.`,
		strings.Join(value.Categories, ", "), value.Categories[0]), nil
}

// stepExpenses is the one state without a re-ask branch: an amount the
// extractor cannot recover is recorded as 0 and the loop advances anyway.
// Carried over from the shipped product; see DESIGN.md before changing.
func (m *Machine) stepExpenses(ctx context.Context, rec *finance.Record, text string) (string, error) {
	category := rec.NextCategory()

	amount := 0.0
	if value, err := m.extractor.ExpenseAmount(ctx, text, category); err == nil && value.Amount > 0 {
		amount = value.Amount
	}
	rec.Expenses = append(rec.Expenses, finance.Expense{Category: category, Amount: amount})

	if next := rec.NextCategory(); next != "" {
		return fmt.Sprintf(
			`El usuario indicó %s %.2f para %s. Ahora pregunta cuánto gasta en "%s".`,
			m.currency, amount, category, next), nil
	}

	rec.Step = finance.StepAskSavingsGoalBool
	return askSavingsDirective, nil
}

func (m *Machine) stepSavingsBool(ctx context.Context, rec *finance.Record, text string) (string, error) {
	// boolean extraction has no miss branch: any failure means "no"
	value, err := m.extractor.YesNo(ctx, text)
	if err == nil && value.Decision {
		rec.Step = finance.StepAskSavingsGoalDetail
		return askGoalDetailsDirective, nil
	}

	rec.Step = finance.StepAskExtraBool
	return askExtraDirective, nil
}

func (m *Machine) stepSavingsDetails(ctx context.Context, rec *finance.Record, text string) (string, error) {
	value, err := m.extractor.SavingsGoal(ctx, text, m.now())
	if err != nil || value.Name == "" || value.TargetAmount <= 0 {
		return repeatGoalDirective, nil
	}
	targetDate, err := time.Parse(targetDateLayout, value.TargetDate)
	if err != nil {
		return repeatGoalDirective, nil
	}

	contribution := finance.MonthlyContribution(value.TargetAmount, targetDate, m.now())
	rec.SavingsGoal = &finance.SavingsGoal{
		Name:          value.Name,
		TargetAmount:  value.TargetAmount,
		TargetDate:    value.TargetDate,
		MonthlyAmount: contribution,
	}
	rec.Step = finance.StepAskExtraBool
	return fmt.Sprintf(
		`Meta de ahorro calculada (%s: %s%.2f/mes). Ahora pregunta si desea analizar alguna `+
			`compra extra puntual.`,
		value.Name, m.currency, contribution), nil
}

func (m *Machine) stepExtraBool(ctx context.Context, rec *finance.Record, text string) (string, error) {
	value, err := m.extractor.YesNo(ctx, text)
	if err == nil && value.Decision {
		rec.Step = finance.StepAskExtraDetail
		return askPurchaseDetailsDirective, nil
	}

	rec.Step = finance.StepCompleted
	return closeSessionDirective, nil
}

func (m *Machine) stepExtraDetails(ctx context.Context, rec *finance.Record, text string) (string, error) {
	value, err := m.extractor.Purchase(ctx, text)
	if err != nil || value.Name == "" || value.Cost <= 0 {
		return repeatPurchaseDirective, nil
	}

	disposable := rec.DisposableIncome()
	verdict := finance.Affordability(disposable, value.Cost)
	rec.ExtraPurchase = &finance.ExtraPurchase{
		Name:            value.Name,
		Cost:            value.Cost,
		Affordable:      verdict.Affordable,
		RemainingBudget: verdict.RemainingBudget,
		Shortfall:       verdict.Shortfall,
	}
	rec.Step = finance.StepCompleted

	outcome := "No es viable."
	if verdict.Affordable {
		outcome = "Es viable."
	}
	return fmt.Sprintf(
		`Analiza la compra extra (%s: %s%.2f). Ingresos disponibles tras gastos y ahorro: %s%.2f. `+
			`%s Comunica el resultado formalmente y da una recomendación final. Avisa que el `+
			`resumen completo está en el panel.`,
		value.Name, m.currency, value.Cost, m.currency, disposable, outcome), nil
}
