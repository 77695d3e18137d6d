package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Property types accepted on creation
var PropertyTypes = []string{"Apartment", "Villa", "House", "Plot", "Commercial", "Office"}

// MaxDescriptionLength limits the free-text property description
const MaxDescriptionLength = 500

// Property represents a listed property owned by a user
type Property struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"userId"`
	Location     string          `json:"location"`
	Area         float64         `json:"area"`
	Price        decimal.Decimal `json:"price"`
	PropertyType string          `json:"propertyType"`
	Amenities    []string        `json:"amenities"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// IsPropertyType reports whether t is one of PropertyTypes
func IsPropertyType(t string) bool {
	for _, pt := range PropertyTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// Bounds on the number of properties compared at once
const (
	MinComparedProperties = 2
	MaxComparedProperties = 4
)

// ComparedProperty is one property in a comparison. PricePerSqFt is null
// when the area is zero.
type ComparedProperty struct {
	ID           int64            `json:"id"`
	PropertyType string           `json:"propertyType"`
	Location     string           `json:"location"`
	Price        decimal.Decimal  `json:"price"`
	Area         float64          `json:"area"`
	PricePerSqFt *decimal.Decimal `json:"pricePerSqFt"`
	Amenities    []string         `json:"amenities"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// PropertyAnalytics aggregates the compared properties
type PropertyAnalytics struct {
	AvgPrice        decimal.Decimal  `json:"avgPrice"`
	AvgArea         float64          `json:"avgArea"`
	AvgPricePerSqFt *decimal.Decimal `json:"avgPricePerSqFt"`
	MinPrice        decimal.Decimal  `json:"minPrice"`
	MaxPrice        decimal.Decimal  `json:"maxPrice"`
	MinArea         float64          `json:"minArea"`
	MaxArea         float64          `json:"maxArea"`
}

// PropertyComparison is the result of comparing several properties
type PropertyComparison struct {
	Properties []ComparedProperty `json:"properties"`
	Analytics  PropertyAnalytics  `json:"analytics"`
}
