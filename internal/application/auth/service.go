package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bryanwahyu/ventur-api/internal/application"
	"github.com/bryanwahyu/ventur-api/internal/domain/users"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrValidation         = errors.New("invalid input")
)

// Service implements register/login/me on top of the user repository.
type Service struct {
	Users    users.Repository
	Secret   []byte
	TokenTTL time.Duration
	Clock    application.Clock
}

func NewService(repo users.Repository, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{Users: repo, Secret: []byte(secret), TokenTTL: ttl, Clock: application.SystemClock{}}
}

type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResult is what register and login hand back: the signed bearer
// token plus the public view of the account.
type TokenResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *users.User `json:"user"`
}

// Register creates the account and logs it in immediately.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*TokenResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrValidation)
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &users.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		CompanyName:  strings.TrimSpace(in.CompanyName),
		CreatedAt:    s.Clock.Now().UTC(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.tokenResult(u)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*TokenResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.tokenResult(u)
}

// Me resolves the authenticated user from the token subject.
func (s *Service) Me(ctx context.Context, userID string) (*users.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *Service) tokenResult(u *users.User) (*TokenResult, error) {
	now := s.Clock.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"exp":   now.Add(s.TokenTTL).Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.Secret)
	if err != nil {
		return nil, err
	}
	return &TokenResult{AccessToken: signed, TokenType: "bearer", User: u}, nil
}

// ParseToken validates an HS256 bearer token and returns the user id.
func (s *Service) ParseToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
