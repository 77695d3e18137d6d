package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/shopspring/decimal"
)

// PropertyInput is a property creation request as decoded from the client
type PropertyInput struct {
	Location         string
	Area             models.Number
	Price            models.Number
	PropertyType     string
	Amenities        []string
	AmenitiesInvalid bool // amenities was present but not a list of strings
	Description      string
}

// CreateProperty validates and stores a property for the user
func (s *Service) CreateProperty(ctx context.Context, userID int64, in PropertyInput) (*models.Property, error) {
	verr := &mortgage.ValidationError{}
	add := func(field, msg string) {
		verr.Fields = append(verr.Fields, mortgage.FieldError{Field: field, Message: msg})
	}

	location := strings.TrimSpace(in.Location)
	if location == "" {
		add("location", "Location is required")
	}
	if !in.Area.Set || !in.Area.Valid {
		add("area", "Area must be a number")
	} else if in.Area.Value < 0 {
		add("area", "Area must not be negative")
	}
	if !in.Price.Set || !in.Price.Valid {
		add("price", "Price must be a number")
	} else if in.Price.Value < 0 {
		add("price", "Price must not be negative")
	}
	if strings.TrimSpace(in.PropertyType) == "" {
		add("propertyType", "Property type is required")
	} else if !models.IsPropertyType(in.PropertyType) {
		add("propertyType", fmt.Sprintf("Property type must be one of %s", strings.Join(models.PropertyTypes, ", ")))
	}
	if in.AmenitiesInvalid {
		add("amenities", "Amenities must be an array")
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > models.MaxDescriptionLength {
		add("description", fmt.Sprintf("Description cannot exceed %d characters", models.MaxDescriptionLength))
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	amenities := make([]string, 0, len(in.Amenities))
	for _, a := range in.Amenities {
		if a = strings.TrimSpace(a); a != "" {
			amenities = append(amenities, a)
		}
	}

	p := &models.Property{
		UserID:       userID,
		Location:     location,
		Area:         in.Area.Value,
		Price:        decimal.NewFromFloat(in.Price.Value).Round(2),
		PropertyType: in.PropertyType,
		Amenities:    amenities,
		Description:  description,
	}
	if err := s.repo.CreateProperty(ctx, p); err != nil {
		return nil, err
	}

	s.log.Infof("Property %d created for user %d", p.ID, userID)
	return p, nil
}

// ListProperties returns the user's properties, newest first
func (s *Service) ListProperties(ctx context.Context, userID int64) ([]models.Property, error) {
	return s.repo.ListProperties(ctx, userID)
}

// GetProperty returns one of the user's properties
func (s *Service) GetProperty(ctx context.Context, userID, id int64) (*models.Property, error) {
	return s.repo.FindProperty(ctx, userID, id)
}

// DeleteProperty removes one of the user's properties
func (s *Service) DeleteProperty(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteProperty(ctx, userID, id); err != nil {
		return err
	}
	s.log.Infof("Property %d deleted by user %d", id, userID)
	return nil
}
