package models

import "github.com/Dan9191/property-insights/internal/mortgage"

// MortgageRequest is the body of a mortgage calculation
type MortgageRequest struct {
	LoanAmount    Number `json:"loanAmount"`
	InterestRate  Number `json:"interestRate"`
	LoanTenure    Number `json:"loanTenure"`
	PropertyPrice Number `json:"propertyPrice"`
	DownPayment   Number `json:"downPayment"`
}

// ScenarioRequest is one entry of a comparison request
type ScenarioRequest struct {
	Name         string `json:"name"`
	LoanAmount   Number `json:"loanAmount"`
	InterestRate Number `json:"interestRate"`
	LoanTenure   Number `json:"loanTenure"`
}

// AmortizationRow is one schedule row on the wire
type AmortizationRow struct {
	Month     int   `json:"month"`
	EMI       int64 `json:"emi"`
	Principal int64 `json:"principal"`
	Interest  int64 `json:"interest"`
	Balance   int64 `json:"balance"`
}

// MortgageSummary repeats the headline figures of a calculation
type MortgageSummary struct {
	MonthlyPayment int64   `json:"monthlyPayment"`
	TotalPayments  int     `json:"totalPayments"`
	TotalCost      int64   `json:"totalCost"`
	InterestPaid   int64   `json:"interestPaid"`
	PrincipalPaid  float64 `json:"principalPaid"`
}

// MortgageResults is the body of a successful calculation
type MortgageResults struct {
	EMI                   int64             `json:"emi"`
	TotalAmount           int64             `json:"totalAmount"`
	TotalInterest         int64             `json:"totalInterest"`
	PrincipalAmount       float64           `json:"principalAmount"`
	LoanToValue           *float64          `json:"loanToValue"`
	DownPaymentPercentage *float64          `json:"downPaymentPercentage"`
	AmortizationSchedule  []AmortizationRow `json:"amortizationSchedule"`
	Summary               MortgageSummary   `json:"summary"`
}

// ScenarioComparison is one compared scenario on the wire
type ScenarioComparison struct {
	ScenarioID    int     `json:"scenarioId"`
	Name          string  `json:"name"`
	EMI           int64   `json:"emi"`
	TotalInterest int64   `json:"totalInterest"`
	TotalAmount   int64   `json:"totalAmount"`
	InterestRate  float64 `json:"interestRate"`
	Tenure        float64 `json:"tenure"`
}

// ReferenceRate is the central bank key rate plus the bank margin
type ReferenceRate struct {
	KeyRate       float64 `json:"keyRate"`
	Margin        float64 `json:"margin"`
	Rate          float64 `json:"rate"`
	EffectiveDate string  `json:"effectiveDate"`
	FetchedAt     string  `json:"fetchedAt"`
}

// Loan converts the request for the engine. Missing or non-numeric values
// become NaN so the engine reports them alongside range violations.
func (r MortgageRequest) Loan() mortgage.LoanRequest {
	return mortgage.LoanRequest{
		Principal:         r.LoanAmount.Float(),
		AnnualRatePercent: r.InterestRate.Float(),
		TenureYears:       r.LoanTenure.Float(),
		PropertyPrice:     r.PropertyPrice.Optional(),
		DownPayment:       r.DownPayment.Optional(),
	}
}

// Scenario converts the entry for the engine
func (r ScenarioRequest) Scenario() mortgage.Scenario {
	return mortgage.Scenario{
		Name: r.Name,
		LoanRequest: mortgage.LoanRequest{
			Principal:         r.LoanAmount.Float(),
			AnnualRatePercent: r.InterestRate.Float(),
			TenureYears:       r.LoanTenure.Float(),
		},
	}
}

// NewMortgageResults maps an engine result to its wire shape
func NewMortgageResults(res mortgage.AmortizationResult) MortgageResults {
	rows := make([]AmortizationRow, 0, len(res.Schedule))
	for _, p := range res.Schedule {
		rows = append(rows, AmortizationRow{
			Month:     p.Period,
			EMI:       p.Payment,
			Principal: p.PrincipalPart,
			Interest:  p.InterestPart,
			Balance:   p.RemainingBalance,
		})
	}
	return MortgageResults{
		EMI:                   res.Payment,
		TotalAmount:           res.TotalPaid,
		TotalInterest:         res.TotalInterest,
		PrincipalAmount:       res.Principal,
		LoanToValue:           res.LoanToValuePercent,
		DownPaymentPercentage: res.DownPaymentPercent,
		AmortizationSchedule:  rows,
		Summary: MortgageSummary{
			MonthlyPayment: res.Payment,
			TotalPayments:  res.TotalPeriods,
			TotalCost:      res.TotalPaid,
			InterestPaid:   res.TotalInterest,
			PrincipalPaid:  res.Principal,
		},
	}
}

// NewScenarioComparisons maps engine comparison results to their wire shape
func NewScenarioComparisons(results mortgage.ScenarioComparison) []ScenarioComparison {
	out := make([]ScenarioComparison, 0, len(results))
	for _, r := range results {
		out = append(out, ScenarioComparison{
			ScenarioID:    r.ScenarioID,
			Name:          r.Name,
			EMI:           r.Payment,
			TotalInterest: r.TotalInterest,
			TotalAmount:   r.TotalPaid,
			InterestRate:  r.AnnualRatePercent,
			Tenure:        r.TenureYears,
		})
	}
	return out
}
