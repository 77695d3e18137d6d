package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/shopspring/decimal"
)

// CompareProperties lines up between two and four of the user's properties
// and aggregates their prices and areas. Ids are returned in request order.
func (s *Service) CompareProperties(ctx context.Context, userID int64, ids []int64) (*models.PropertyComparison, error) {
	switch {
	case len(ids) < models.MinComparedProperties:
		return nil, comparisonError(fmt.Sprintf("At least %d properties are required for comparison", models.MinComparedProperties))
	case len(ids) > models.MaxComparedProperties:
		return nil, comparisonError(fmt.Sprintf("Maximum %d properties can be compared at once", models.MaxComparedProperties))
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if id > 0 && seen[id] {
			return nil, comparisonError("Property IDs must be unique")
		}
		seen[id] = true
	}

	properties := make([]models.Property, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
		}
		p, err := s.repo.FindProperty(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}

	return compareProperties(properties), nil
}

func comparisonError(msg string) error {
	return &mortgage.ValidationError{Fields: []mortgage.FieldError{{Field: "propertyIds", Message: msg}}}
}

// compareProperties expects at least one property
func compareProperties(properties []models.Property) *models.PropertyComparison {
	out := &models.PropertyComparison{Properties: make([]models.ComparedProperty, 0, len(properties))}

	var (
		prices       = make([]decimal.Decimal, 0, len(properties))
		totalPrice   decimal.Decimal
		totalArea    float64
		totalPerSqFt decimal.Decimal
		withArea     int64
	)
	a := &out.Analytics
	a.MinArea, a.MaxArea = properties[0].Area, properties[0].Area

	for _, p := range properties {
		cp := models.ComparedProperty{
			ID:           p.ID,
			PropertyType: p.PropertyType,
			Location:     p.Location,
			Price:        p.Price,
			Area:         p.Area,
			Amenities:    p.Amenities,
			CreatedAt:    p.CreatedAt,
		}
		if cp.Amenities == nil {
			cp.Amenities = []string{}
		}
		if p.Area > 0 {
			perSqFt := p.Price.Div(decimal.NewFromFloat(p.Area))
			rounded := perSqFt.Round(0)
			cp.PricePerSqFt = &rounded
			totalPerSqFt = totalPerSqFt.Add(perSqFt)
			withArea++
		}
		out.Properties = append(out.Properties, cp)

		prices = append(prices, p.Price)
		totalPrice = totalPrice.Add(p.Price)
		totalArea += p.Area
		a.MinArea = math.Min(a.MinArea, p.Area)
		a.MaxArea = math.Max(a.MaxArea, p.Area)
	}

	n := int64(len(properties))
	a.AvgPrice = totalPrice.Div(decimal.NewFromInt(n)).Round(0)
	a.AvgArea = math.Round(totalArea / float64(n))
	a.MinPrice = decimal.Min(prices[0], prices[1:]...)
	a.MaxPrice = decimal.Max(prices[0], prices[1:]...)
	if withArea > 0 {
		avg := totalPerSqFt.Div(decimal.NewFromInt(withArea)).Round(0)
		a.AvgPricePerSqFt = &avg
	}
	return out
}
