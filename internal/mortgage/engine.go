// Package mortgage implements fixed-rate amortizing loan mathematics: the
// equated monthly installment (EMI), a schedule preview, aggregate totals and
// loan-to-value ratios. Every function is pure and safe for concurrent use.
package mortgage

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	monthsPerYear = 12
	// SchedulePreviewPeriods bounds the returned schedule to the first year
	SchedulePreviewPeriods = 12
)

// LoanRequest holds the parameters of a single loan
type LoanRequest struct {
	Principal         float64
	AnnualRatePercent float64
	TenureYears       float64
	PropertyPrice     *float64
	DownPayment       *float64
}

// PeriodicPayment is one row of the amortization schedule, rounded to whole units
type PeriodicPayment struct {
	Period           int
	Payment          int64
	PrincipalPart    int64
	InterestPart     int64
	RemainingBalance int64
}

// AmortizationResult summarises a loan. Monetary values are rounded to whole
// units, the two percentages to two decimal places.
type AmortizationResult struct {
	Payment            int64
	TotalPeriods       int
	TotalPaid          int64
	TotalInterest      int64
	Principal          float64
	LoanToValuePercent *float64
	DownPaymentPercent *float64
	Schedule           []PeriodicPayment
}

// Scenario is a named loan request inside a comparison batch
type Scenario struct {
	Name string
	LoanRequest
}

// ScenarioResult is the summary of one compared scenario
type ScenarioResult struct {
	ScenarioID        int
	Name              string
	Payment           int64
	TotalInterest     int64
	TotalPaid         int64
	AnnualRatePercent float64
	TenureYears       float64
}

// ScenarioComparison lists scenario results in input order
type ScenarioComparison []ScenarioResult

// totals are the unrounded figures every operation is derived from
type totals struct {
	monthlyRate   float64
	periods       int
	payment       float64
	totalPaid     float64
	totalInterest float64
}

// Calculate computes the EMI, totals, ratios and a first-year schedule for req
func Calculate(req LoanRequest) (AmortizationResult, error) {
	if err := Validate(req); err != nil {
		return AmortizationResult{}, err
	}

	t, err := computeTotals(req)
	if err != nil {
		return AmortizationResult{}, err
	}

	res := AmortizationResult{
		Payment:       roundUnit(t.payment),
		TotalPeriods:  t.periods,
		TotalPaid:     roundUnit(t.totalPaid),
		TotalInterest: roundUnit(t.totalInterest),
		Principal:     req.Principal,
		Schedule:      buildSchedule(req.Principal, t),
	}

	if req.PropertyPrice != nil {
		ltv := roundPercent(req.Principal / *req.PropertyPrice * 100)
		res.LoanToValuePercent = &ltv
		if req.DownPayment != nil {
			dp := roundPercent(*req.DownPayment / *req.PropertyPrice * 100)
			res.DownPaymentPercent = &dp
		}
	}

	return res, nil
}

// Compare summarises every scenario without a schedule. The batch is
// validated as a whole: a single invalid scenario rejects it, and the error
// lists the violations of all scenarios.
func Compare(scenarios []Scenario) (ScenarioComparison, error) {
	verr := &ValidationError{}
	for i, s := range scenarios {
		validateInto(verr, ScenarioField(i, ""), s.LoanRequest)
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	out := make(ScenarioComparison, 0, len(scenarios))
	for i, s := range scenarios {
		t, err := computeTotals(s.LoanRequest)
		if err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i+1, err)
		}
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("Scenario %d", i+1)
		}
		out = append(out, ScenarioResult{
			ScenarioID:        i + 1,
			Name:              name,
			Payment:           roundUnit(t.payment),
			TotalInterest:     roundUnit(t.totalInterest),
			TotalPaid:         roundUnit(t.totalPaid),
			AnnualRatePercent: s.AnnualRatePercent,
			TenureYears:       s.TenureYears,
		})
	}
	return out, nil
}

// EMI returns the unrounded fixed monthly payment for an already validated loan.
// (1+r)^n - 1 is taken as expm1(n*log1p(r)) so tiny rates do not cancel to zero.
// The payment never drops below straight-line repayment.
func EMI(principal, monthlyRate float64, periods int) float64 {
	straight := principal / float64(periods)
	if monthlyRate <= 0 {
		return straight
	}
	growth := math.Expm1(float64(periods) * math.Log1p(monthlyRate))
	if !(growth > 0) || math.IsInf(growth, 0) {
		return straight
	}
	payment := principal * monthlyRate * (1 + growth) / growth
	if !(payment >= straight) {
		return straight
	}
	return payment
}

func computeTotals(req LoanRequest) (totals, error) {
	t := totals{
		monthlyRate: req.AnnualRatePercent / (monthsPerYear * 100),
		periods:     int(req.TenureYears) * monthsPerYear,
	}
	if t.periods < 1 {
		return totals{}, fmt.Errorf("%w: %d payment periods", ErrComputation, t.periods)
	}

	t.payment = EMI(req.Principal, t.monthlyRate, t.periods)
	t.totalPaid = t.payment * float64(t.periods)
	t.totalInterest = t.totalPaid - req.Principal

	if !finite(t.payment) || !finite(t.totalPaid) {
		return totals{}, fmt.Errorf("%w: non-finite payment for principal %v", ErrComputation, req.Principal)
	}
	return t, nil
}

func buildSchedule(principal float64, t totals) []PeriodicPayment {
	n := min(SchedulePreviewPeriods, t.periods)
	schedule := make([]PeriodicPayment, 0, n)
	balance := principal
	for period := 1; period <= n; period++ {
		interest := balance * t.monthlyRate
		principalPart := t.payment - interest
		balance -= principalPart

		schedule = append(schedule, PeriodicPayment{
			Period:           period,
			Payment:          roundUnit(t.payment),
			PrincipalPart:    roundUnit(principalPart),
			InterestPart:     roundUnit(interest),
			RemainingBalance: roundUnit(balance),
		})
	}
	return schedule
}

// roundUnit rounds to the nearest whole unit, halves towards +inf
func roundUnit(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

func roundPercent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
