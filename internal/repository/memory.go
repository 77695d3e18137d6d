package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/property-insights/internal/models"
)

// MemoryRepository keeps users and properties in process memory
type MemoryRepository struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	properties map[int64]*models.Property
	nextID     int64
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: map[int64]*models.User{}, properties: map[int64]*models.Property{}}
}

func (m *MemoryRepository) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user %s: %w", u.Email, ErrDuplicate)
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *MemoryRepository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) CreateProperty(_ context.Context, p *models.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	cp := *p
	m.properties[p.ID] = &cp
	return nil
}

func (m *MemoryRepository) ListProperties(_ context.Context, userID int64) ([]models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Property{}
	for _, p := range m.properties {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryRepository) FindProperty(_ context.Context, userID, id int64) (*models.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.properties[id]; ok && p.UserID == userID {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("property %d: %w", id, ErrNotFound)
}

func (m *MemoryRepository) DeleteProperty(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.properties[id]; ok && p.UserID == userID {
		delete(m.properties, id)
		return nil
	}
	return fmt.Errorf("property %d: %w", id, ErrNotFound)
}
