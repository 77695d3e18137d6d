package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/Dan9191/property-insights/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	welcomed  []string
	summaries []mortgage.AmortizationResult
	err       error
}

func (f *fakeMailer) SendWelcome(to, _ string) error {
	f.welcomed = append(f.welcomed, to)
	return f.err
}

func (f *fakeMailer) SendMortgageSummary(_, _ string, _ mortgage.LoanRequest, res mortgage.AmortizationResult) error {
	if f.err != nil {
		return f.err
	}
	f.summaries = append(f.summaries, res)
	return nil
}

func newTestService() (*Service, *repository.MemoryRepository, *fakeMailer) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	store := repository.NewMemoryRepository()
	mailer := &fakeMailer{}
	cfg := &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour}
	return NewService(store, mailer, log, cfg), store, mailer
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, mailer := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, " anna ", "Anna@Example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "anna", user.Username)
	assert.Equal(t, "anna@example.com", user.Email)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)
	assert.Equal(t, []string{"anna@example.com"}, mailer.welcomed)

	token, logged, err := svc.Login(ctx, "anna@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(user.ID), claims.Subject)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), "", "not-an-email", "123")
	require.ErrorIs(t, err, mortgage.ErrInvalidInput)

	fields := mortgage.FieldErrors(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "username", fields[0].Field)
	assert.Equal(t, "email", fields[1].Field)
	assert.Equal(t, "password", fields[2].Field)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "anna", "anna@example.com", "secret-pass")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "anna2", "anna@example.com", "secret-pass")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRegister_WelcomeFailureIsNotFatal(t *testing.T) {
	svc, _, mailer := newTestService()
	mailer.err = errors.New("smtp down")

	_, err := svc.Register(context.Background(), "anna", "anna@example.com", "secret-pass")
	assert.NoError(t, err)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, "anna", "anna@example.com", "secret-pass")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "anna@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateProperty(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, 7, PropertyInput{
		Location:     "  Pune ",
		Area:         models.NewNumber(1200),
		Price:        models.NewNumber(5_000_000.456),
		PropertyType: "Apartment",
		Amenities:    []string{"Gym", " ", "Pool"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pune", p.Location)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("5000000.46")))
	assert.Equal(t, []string{"Gym", "Pool"}, p.Amenities)

	list, err := svc.ListProperties(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetProperty(ctx, 8, p.ID)
	assert.ErrorIs(t, err, ErrNotFound, "other users must not see the property")

	require.NoError(t, svc.DeleteProperty(ctx, 7, p.ID))
	assert.ErrorIs(t, svc.DeleteProperty(ctx, 7, p.ID), ErrNotFound)
}

func TestCreateProperty_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	long := make([]byte, models.MaxDescriptionLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := svc.CreateProperty(context.Background(), 7, PropertyInput{
		Area:         models.Number{Set: true},
		Price:        models.NewNumber(-1),
		PropertyType: "Castle",
		Description:  string(long),
	})
	require.ErrorIs(t, err, mortgage.ErrInvalidInput)

	var got []string
	for _, f := range mortgage.FieldErrors(err) {
		got = append(got, f.Field)
	}
	assert.Equal(t, []string{"location", "area", "price", "propertyType", "description"}, got)
}

func TestPropertyMortgage_DerivesPrincipal(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	p, err := svc.CreateProperty(ctx, 7, PropertyInput{
		Location: "Pune", Area: models.NewNumber(900), Price: models.NewNumber(5_000_000), PropertyType: "House",
	})
	require.NoError(t, err)

	loan, res, err := svc.PropertyMortgage(ctx, 7, p.ID, models.MortgageRequest{
		InterestRate: models.NewNumber(8.5),
		LoanTenure:   models.NewNumber(20),
		DownPayment:  models.NewNumber(1_000_000),
	})
	require.NoError(t, err)
	assert.Equal(t, 4_000_000.0, loan.Principal)
	assert.Equal(t, 80.0, *res.LoanToValuePercent)
	assert.Equal(t, 20.0, *res.DownPaymentPercent)
	assert.InDelta(t, 34713, res.Payment, 1)
}

func TestPropertyMortgage_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, _, err := svc.PropertyMortgage(context.Background(), 7, 99, models.MortgageRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShareMortgage(t *testing.T) {
	svc, _, mailer := newTestService()
	ctx := context.Background()
	user, err := svc.Register(ctx, "anna", "anna@example.com", "secret-pass")
	require.NoError(t, err)

	res, err := svc.ShareMortgage(ctx, user.ID, mortgage.LoanRequest{Principal: 1_200_000, TenureYears: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), res.Payment)
	require.Len(t, mailer.summaries, 1)

	_, err = svc.ShareMortgage(ctx, user.ID, mortgage.LoanRequest{})
	assert.ErrorIs(t, err, mortgage.ErrInvalidInput)
	assert.Len(t, mailer.summaries, 1)
}

func TestPropertyMortgage_ZeroPrice(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	p, err := svc.CreateProperty(ctx, 7, PropertyInput{
		Location: "Pune", Area: models.NewNumber(900), Price: models.NewNumber(0), PropertyType: "Plot",
	})
	require.NoError(t, err)

	_, _, err = svc.PropertyMortgage(ctx, 7, p.ID, models.MortgageRequest{
		InterestRate: models.NewNumber(8.5),
		LoanTenure:   models.NewNumber(20),
	})
	require.ErrorIs(t, err, mortgage.ErrInvalidInput)
	fields := mortgage.FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "price", fields[0].Field)
}

func TestShareMortgage_UnknownUser(t *testing.T) {
	svc, _, mailer := newTestService()

	_, err := svc.ShareMortgage(context.Background(), 42, mortgage.LoanRequest{Principal: 1_200_000, TenureYears: 10})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, mailer.summaries)
}

func createProperty(t *testing.T, svc *Service, userID int64, price, area float64) int64 {
	t.Helper()
	p, err := svc.CreateProperty(context.Background(), userID, PropertyInput{
		Location:     "Pune",
		Area:         models.NewNumber(area),
		Price:        models.NewNumber(price),
		PropertyType: "Apartment",
	})
	require.NoError(t, err)
	return p.ID
}

func TestCompareProperties(t *testing.T) {
	svc, _, _ := newTestService()
	a := createProperty(t, svc, 7, 5_000_000, 1000)
	b := createProperty(t, svc, 7, 3_000_000, 1500)
	c := createProperty(t, svc, 7, 1_000_000, 0)

	cmp, err := svc.CompareProperties(context.Background(), 7, []int64{b, a, c})
	require.NoError(t, err)

	require.Len(t, cmp.Properties, 3)
	assert.Equal(t, []int64{b, a, c}, []int64{cmp.Properties[0].ID, cmp.Properties[1].ID, cmp.Properties[2].ID})
	assert.Equal(t, "2000", cmp.Properties[0].PricePerSqFt.String())
	assert.Equal(t, "5000", cmp.Properties[1].PricePerSqFt.String())
	assert.Nil(t, cmp.Properties[2].PricePerSqFt, "zero area has no price per sq ft")
	assert.Equal(t, []string{}, cmp.Properties[2].Amenities)

	an := cmp.Analytics
	assert.Equal(t, "3000000", an.AvgPrice.String())
	assert.Equal(t, 833.0, an.AvgArea)
	require.NotNil(t, an.AvgPricePerSqFt)
	assert.Equal(t, "3500", an.AvgPricePerSqFt.String())
	assert.Equal(t, "1000000", an.MinPrice.String())
	assert.Equal(t, "5000000", an.MaxPrice.String())
	assert.Equal(t, 0.0, an.MinArea)
	assert.Equal(t, 1500.0, an.MaxArea)
}

func TestCompareProperties_RoundsPricePerSqFt(t *testing.T) {
	svc, _, _ := newTestService()
	a := createProperty(t, svc, 7, 1_000_001, 3)
	b := createProperty(t, svc, 7, 0, 0)

	cmp, err := svc.CompareProperties(context.Background(), 7, []int64{a, b})
	require.NoError(t, err)
	assert.Equal(t, "333334", cmp.Properties[0].PricePerSqFt.String())
	assert.Equal(t, "333334", cmp.Analytics.AvgPricePerSqFt.String())
	assert.Equal(t, "500001", cmp.Analytics.AvgPrice.String())
}

func TestCompareProperties_Errors(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	a := createProperty(t, svc, 7, 100, 10)
	b := createProperty(t, svc, 7, 200, 10)
	foreign := createProperty(t, svc, 8, 300, 10)

	tests := []struct {
		name    string
		ids     []int64
		message string
	}{
		{"one id", []int64{a}, "At least 2 properties are required for comparison"},
		{"no ids", nil, "At least 2 properties are required for comparison"},
		{"five ids", []int64{a, b, 3, 4, 5}, "Maximum 4 properties can be compared at once"},
		{"duplicate", []int64{a, a}, "Property IDs must be unique"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CompareProperties(ctx, 7, tt.ids)
			require.ErrorIs(t, err, mortgage.ErrInvalidInput)
			fields := mortgage.FieldErrors(err)
			require.Len(t, fields, 1)
			assert.Equal(t, "propertyIds", fields[0].Field)
			assert.Equal(t, tt.message, fields[0].Message)
		})
	}

	_, err := svc.CompareProperties(ctx, 7, []int64{a, foreign})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CompareProperties(ctx, 7, []int64{a, 0})
	assert.ErrorIs(t, err, ErrNotFound)
}
