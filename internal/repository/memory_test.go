package repository

import (
	"context"
	"testing"

	"github.com/Dan9191/property-insights/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Users(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u := &models.User{Email: "anna@example.com", Username: "anna", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)

	err := repo.CreateUser(ctx, &models.User{Email: "anna@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	found, err := repo.FindUserByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_Properties(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first := &models.Property{UserID: 1, Location: "Pune", Price: decimal.NewFromInt(100)}
	second := &models.Property{UserID: 1, Location: "Goa", Price: decimal.NewFromInt(200)}
	foreign := &models.Property{UserID: 2, Location: "Delhi"}
	for _, p := range []*models.Property{first, second, foreign} {
		require.NoError(t, repo.CreateProperty(ctx, p))
	}

	list, err := repo.ListProperties(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Goa", list[0].Location)

	_, err = repo.FindProperty(ctx, 1, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.DeleteProperty(ctx, 1, first.ID))
	assert.ErrorIs(t, repo.DeleteProperty(ctx, 1, first.ID), ErrNotFound)

	list, err = repo.ListProperties(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
