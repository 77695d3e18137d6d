package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/property-insights/internal/config"
	"github.com/Dan9191/property-insights/internal/models"
	"github.com/Dan9191/property-insights/internal/mortgage"
	"github.com/Dan9191/property-insights/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrConflict           = repository.ErrDuplicate
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const minPasswordLength = 6

// Store is the persistence the service relies on
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateProperty(ctx context.Context, p *models.Property) error
	ListProperties(ctx context.Context, userID int64) ([]models.Property, error)
	FindProperty(ctx context.Context, userID, id int64) (*models.Property, error)
	DeleteProperty(ctx context.Context, userID, id int64) error
}

// Notifier sends user-facing e-mails
type Notifier interface {
	SendWelcome(to, username string) error
	SendMortgageSummary(to, username string, req mortgage.LoanRequest, res mortgage.AmortizationResult) error
}

// Service handles business logic
type Service struct {
	repo   Store
	mail   Notifier
	log    *logrus.Logger
	config *config.Config
	now    func() time.Time
}

// NewService initializes a new service
func NewService(repo Store, mail Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, mail: mail, log: log, config: cfg, now: time.Now}
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	verr := &mortgage.ValidationError{}
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" {
		verr.Fields = append(verr.Fields, mortgage.FieldError{Field: "username", Message: "Username is required"})
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		verr.Fields = append(verr.Fields, mortgage.FieldError{Field: "email", Message: "Valid email is required"})
	}
	if len(password) < minPasswordLength {
		verr.Fields = append(verr.Fields, mortgage.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength),
		})
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if s.mail != nil {
		if err := s.mail.SendWelcome(user.Email, user.Username); err != nil {
			s.log.WithError(err).Warnf("Welcome email not sent to %s", user.Email)
		}
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Infof("User logged in: %s", user.Email)
	return token, user, nil
}

// IssueToken signs a JWT for the user
func (s *Service) IssueToken(userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(s.config.TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// CurrentUser returns the authenticated user
func (s *Service) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.repo.FindUserByID(ctx, userID)
}
