package mortgage

import (
	"fmt"
	"math"
)

// Request field names as they appear on the wire
const (
	FieldLoanAmount    = "loanAmount"
	FieldInterestRate  = "interestRate"
	FieldLoanTenure    = "loanTenure"
	FieldPropertyPrice = "propertyPrice"
	FieldDownPayment   = "downPayment"
)

// Upper bounds keep (1+r)^n finite for every accepted request.
const (
	MaxTenureYears       = 50
	MaxAnnualRatePercent = 100.0
)

// Validate checks a loan request and reports every violated field
func Validate(req LoanRequest) error {
	verr := &ValidationError{}
	validateInto(verr, "", req)
	return verr.errOrNil()
}

// ScenarioField returns the wire path of a field inside a compare request
func ScenarioField(index int, field string) string {
	return fmt.Sprintf("scenarios[%d].%s", index, field)
}

func validateInto(verr *ValidationError, prefix string, req LoanRequest) {
	name := func(field string) string { return prefix + field }

	switch {
	case !finite(req.Principal):
		verr.add(name(FieldLoanAmount), "Loan amount must be a number")
	case req.Principal <= 0:
		verr.add(name(FieldLoanAmount), "Loan amount must be greater than zero")
	}

	switch {
	case !finite(req.AnnualRatePercent):
		verr.add(name(FieldInterestRate), "Interest rate must be a number")
	case req.AnnualRatePercent < 0:
		verr.add(name(FieldInterestRate), "Interest rate must not be negative")
	case req.AnnualRatePercent > MaxAnnualRatePercent:
		verr.add(name(FieldInterestRate), fmt.Sprintf("Interest rate must not exceed %.0f%%", MaxAnnualRatePercent))
	}

	switch {
	case !finite(req.TenureYears):
		verr.add(name(FieldLoanTenure), "Loan tenure must be a number")
	case req.TenureYears <= 0:
		verr.add(name(FieldLoanTenure), "Loan tenure must be greater than zero")
	case req.TenureYears != math.Trunc(req.TenureYears):
		verr.add(name(FieldLoanTenure), "Loan tenure must be a whole number of years")
	case req.TenureYears > MaxTenureYears:
		verr.add(name(FieldLoanTenure), fmt.Sprintf("Loan tenure must not exceed %d years", MaxTenureYears))
	}

	priceOK := false
	if req.PropertyPrice != nil {
		switch {
		case !finite(*req.PropertyPrice):
			verr.add(name(FieldPropertyPrice), "Property price must be a number")
		case *req.PropertyPrice <= 0:
			verr.add(name(FieldPropertyPrice), "Property price must be greater than zero")
		default:
			priceOK = true
		}
	}

	if req.DownPayment != nil {
		switch {
		case !finite(*req.DownPayment):
			verr.add(name(FieldDownPayment), "Down payment must be a number")
		case *req.DownPayment < 0:
			verr.add(name(FieldDownPayment), "Down payment must not be negative")
		case priceOK && *req.DownPayment > *req.PropertyPrice:
			verr.add(name(FieldDownPayment), "Down payment must not exceed property price")
		}
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
