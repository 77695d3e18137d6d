package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendWelcome greets a newly registered user
func (s *Sender) SendWelcome(to, username string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Welcome to Property Insights"
	e.Text = []byte(fmt.Sprintf(
		"Dear %s,\n\nYour account has been created. You can now list properties and plan their financing.\n"+
			"\nBest regards,\nProperty Insights", username))
	return s.deliver(e)
}

// SendMortgageSummary sends the result of a mortgage calculation
func (s *Sender) SendMortgageSummary(to, username string, req mortgage.LoanRequest, res mortgage.AmortizationResult) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Your mortgage estimate: %d per month", res.Payment)
	e.Text = []byte(MortgageSummaryText(username, req, res))
	return s.deliver(e)
}

// MortgageSummaryText renders the plain-text body of a mortgage summary
func MortgageSummaryText(username string, req mortgage.LoanRequest, res mortgage.AmortizationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", username)
	fmt.Fprintf(&b, "Loan amount: %.2f\n", req.Principal)
	fmt.Fprintf(&b, "Interest rate: %.2f%% per year\n", req.AnnualRatePercent)
	fmt.Fprintf(&b, "Tenure: %.0f years (%d payments)\n\n", req.TenureYears, res.TotalPeriods)
	fmt.Fprintf(&b, "Monthly payment: %d\n", res.Payment)
	fmt.Fprintf(&b, "Total interest: %d\n", res.TotalInterest)
	fmt.Fprintf(&b, "Total payable: %d\n", res.TotalPaid)
	if res.LoanToValuePercent != nil {
		fmt.Fprintf(&b, "Loan to value: %.2f%%\n", *res.LoanToValuePercent)
	}
	if res.DownPaymentPercent != nil {
		fmt.Fprintf(&b, "Down payment: %.2f%%\n", *res.DownPaymentPercent)
	}

	b.WriteString("\nMonth  Payment  Principal  Interest  Balance\n")
	for _, p := range res.Schedule {
		fmt.Fprintf(&b, "%5d  %7d  %9d  %8d  %7d\n", p.Period, p.Payment, p.PrincipalPart, p.InterestPart, p.RemainingBalance)
	}
	b.WriteString("\nBest regards,\nProperty Insights")
	return b.String()
}

func (s *Sender) deliver(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", strings.Join(e.To, ","), err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", strings.Join(e.To, ","), e.Subject)
	return nil
}
