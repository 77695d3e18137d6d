package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/sirupsen/logrus"
)

// PropertyMortgage finances a stored property. The property price is used as
// the ratio base; without an explicit loan amount the principal is the price
// less the down payment.
func (s *Service) PropertyMortgage(ctx context.Context, userID, propertyID int64, req models.MortgageRequest) (mortgage.LoanRequest, mortgage.AmortizationResult, error) {
	p, err := s.repo.FindProperty(ctx, userID, propertyID)
	if err != nil {
		return mortgage.LoanRequest{}, mortgage.AmortizationResult{}, err
	}

	if !p.Price.IsPositive() {
		return mortgage.LoanRequest{}, mortgage.AmortizationResult{}, &mortgage.ValidationError{Fields: []mortgage.FieldError{{
			Field:   "price",
			Message: "Property price must be greater than zero to calculate a mortgage",
		}}}
	}

	price := p.Price.InexactFloat64()
	loan := req.Loan()
	loan.PropertyPrice = &price
	if !req.LoanAmount.Set {
		down := 0.0
		if loan.DownPayment != nil {
			down = *loan.DownPayment
		}
		loan.Principal = price - down
	}

	res, err := mortgage.Calculate(loan)
	if err != nil {
		return loan, mortgage.AmortizationResult{}, err
	}
	return loan, res, nil
}

// ShareMortgage calculates the loan and e-mails the summary to the user
func (s *Service) ShareMortgage(ctx context.Context, userID int64, loan mortgage.LoanRequest) (mortgage.AmortizationResult, error) {
	res, err := mortgage.Calculate(loan)
	if err != nil {
		return mortgage.AmortizationResult{}, err
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return mortgage.AmortizationResult{}, err
	}
	if err := s.mail.SendMortgageSummary(user.Email, user.Username, loan, res); err != nil {
		return mortgage.AmortizationResult{}, fmt.Errorf("failed to share mortgage summary: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"emi":     res.Payment,
	}).Info("Mortgage summary shared")
	return res, nil
}
