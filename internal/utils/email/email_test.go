package email

import (
	"errors"
	"io"
	"net/smtp"
	"testing"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(send func(e *email.Email, addr string, auth smtp.Auth) error) *Sender {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := NewSender(&config.Config{SMTPHost: "smtp.test", SMTPPort: "2525", SenderEmail: "bot@test"}, log)
	s.send = send
	return s
}

func TestSendMortgageSummary(t *testing.T) {
	var sent *email.Email
	var gotAddr string
	s := newTestSender(func(e *email.Email, addr string, auth smtp.Auth) error {
		sent, gotAddr = e, addr
		assert.Nil(t, auth)
		return nil
	})

	price := 5_000_000.0
	req := mortgage.LoanRequest{Principal: 4_000_000, AnnualRatePercent: 8.5, TenureYears: 20, PropertyPrice: &price}
	res, err := mortgage.Calculate(req)
	require.NoError(t, err)

	require.NoError(t, s.SendMortgageSummary("anna@test", "anna", req, res))
	require.NotNil(t, sent)
	assert.Equal(t, "smtp.test:2525", gotAddr)
	assert.Equal(t, []string{"anna@test"}, sent.To)
	assert.Equal(t, "bot@test", sent.From)
	assert.Equal(t, "Your mortgage estimate: 34713 per month", sent.Subject)

	body := string(sent.Text)
	assert.Contains(t, body, "Dear anna,")
	assert.Contains(t, body, "Monthly payment: 34713")
	assert.Contains(t, body, "Loan to value: 80.00%")
	assert.NotContains(t, body, "Down payment:")
	assert.Contains(t, body, "Tenure: 20 years (240 payments)")
}

func TestSendWelcome_Failure(t *testing.T) {
	s := newTestSender(func(*email.Email, string, smtp.Auth) error {
		return errors.New("connection refused")
	})

	err := s.SendWelcome("bob@test", "bob")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMortgageSummaryText_Schedule(t *testing.T) {
	req := mortgage.LoanRequest{Principal: 1_200_000, TenureYears: 10}
	res, err := mortgage.Calculate(req)
	require.NoError(t, err)

	body := MortgageSummaryText("carol", req, res)
	assert.Contains(t, body, "    1    10000      10000         0  1190000")
	assert.Contains(t, body, "   12    10000      10000         0  1080000")
}
