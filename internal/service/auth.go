package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"artmarket/internal/config"
	"artmarket/internal/model"
	"artmarket/internal/pkg/jwthelper"
	"artmarket/internal/repository"
)

var errWeakPassword = errors.New("password must be at least 8 characters with a letter and a digit")

// SignupInput is the public registration form. Admins cannot self-register.
type SignupInput struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
}

func (in *SignupInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Password, validation.Required, validation.By(strongPassword)),
		validation.Field(&in.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&in.Role, validation.In(model.RoleBuyer, model.RoleSeller)),
	)
}

func strongPassword(v any) error {
	s, _ := v.(string)
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len(s) < 8 || !letter || !digit {
		return errWeakPassword
	}
	return nil
}

// AuthResult is returned by a successful login.
type AuthResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// AuthService registers accounts and issues access tokens.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users repository.UserRepository
	key   []byte
	ttl   time.Duration
	cost  int
	now   func() time.Time
}

func NewAuthService(users repository.UserRepository, cfg config.AuthConfig) AuthService {
	return &authService{
		users: users,
		key:   []byte(cfg.JWTSigningKey),
		ttl:   cfg.TokenTTL,
		cost:  bcrypt.DefaultCost,
		now:   time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Role == "" {
		in.Role = model.RoleBuyer
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &model.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, err := jwthelper.GenerateToken(s.key, u.ID, string(u.Role), s.ttl, now)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: now.Add(s.ttl).UTC(), User: u}, nil
}
