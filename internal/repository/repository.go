package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/property-insights/internal/models"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row does not exist or belongs to another user
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned on a unique constraint violation
	ErrDuplicate = errors.New("already exists")
)

const uniqueViolation = "23505"

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO realty.users (username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM realty.users
		WHERE email = $1`
	return r.findUser(ctx, query, email)
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, created_at, updated_at
		FROM realty.users
		WHERE id = $1`
	return r.findUser(ctx, query, id)
}

func (r *Repository) findUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CreateProperty stores a new property
func (r *Repository) CreateProperty(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO realty.properties (user_id, location, area, price, property_type, amenities, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		p.UserID, p.Location, p.Area, p.Price, p.PropertyType, pq.Array(p.Amenities), p.Description).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	return nil
}

// ListProperties returns the user's properties, newest first
func (r *Repository) ListProperties(ctx context.Context, userID int64) ([]models.Property, error) {
	query := `
		SELECT id, user_id, location, area, price, property_type, amenities, description, created_at
		FROM realty.properties
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	properties := []models.Property{}
	for rows.Next() {
		var p models.Property
		if err := scanProperty(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// FindProperty retrieves a property owned by the user
func (r *Repository) FindProperty(ctx context.Context, userID, id int64) (*models.Property, error) {
	query := `
		SELECT id, user_id, location, area, price, property_type, amenities, description, created_at
		FROM realty.properties
		WHERE id = $1 AND user_id = $2`
	var p models.Property
	err := scanProperty(r.db.QueryRowContext(ctx, query, id, userID), &p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find property: %w", err)
	}
	return &p, nil
}

// DeleteProperty removes a property owned by the user
func (r *Repository) DeleteProperty(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM realty.properties WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("property %d: %w", id, ErrNotFound)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(s scanner, p *models.Property) error {
	var amenities []string
	var description sql.NullString
	if err := s.Scan(&p.ID, &p.UserID, &p.Location, &p.Area, &p.Price, &p.PropertyType,
		pq.Array(&amenities), &description, &p.CreatedAt); err != nil {
		return err
	}
	if amenities == nil {
		amenities = []string{}
	}
	p.Amenities = amenities
	p.Description = description.String
	return nil
}
