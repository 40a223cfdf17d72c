package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

const minPasswordLength = 6

// Provider issues and verifies identities. The rest of the service treats it
// as an opaque collaborator.
type Provider interface {
	// CreateUser provisions a credential tagged with role and returns its uid.
	CreateUser(ctx context.Context, email, password, role string) (string, error)
	// DeleteUser removes a credential. Deleting an unknown uid is not an error.
	DeleteUser(ctx context.Context, uid string) error
	// FindByEmail looks a credential up by its email address.
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	// SignIn checks a password and issues a bearer token.
	SignIn(ctx context.Context, email, password string) (*Token, error)
	// VerifyToken checks signature, issuer and expiry of a bearer token.
	VerifyToken(ctx context.Context, raw string) (*Claims, error)
}

type Options struct {
	Secret     []byte
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

type service struct {
	repo   Repository
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new identity provider backed by repo.
func NewService(repo Repository, opts Options, logger *zap.Logger) Provider {
	if opts.Issuer == "" {
		opts.Issuer = "menu-backend"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &service{repo: repo, opts: opts, logger: logger, now: time.Now}
}

func (s *service) CreateUser(ctx context.Context, email, password, role string) (string, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Wrap(apperr.KindCreation, "invalid email", err)
	}
	if len(password) < minPasswordLength {
		return "", apperr.New(apperr.KindCreation, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", apperr.Wrap(apperr.KindCreation, "hash password", err)
	}

	c := &Credential{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		RoleClaim:    role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return "", apperr.Wrap(apperr.KindCreation, "create identity", err)
	}
	s.logger.Info("identity created", zap.String("uid", c.UID), zap.String("role", role))
	return c.UID, nil
}

func (s *service) DeleteUser(ctx context.Context, uid string) error {
	if err := s.repo.Delete(ctx, uid); err != nil {
		return apperr.Upstream("delete identity", err)
	}
	return nil
}

func (s *service) FindByEmail(ctx context.Context, email string) (*Credential, error) {
	return s.repo.GetByEmail(ctx, normalizeEmail(email))
}

func (s *service) SignIn(ctx context.Context, email, password string) (*Token, error) {
	c, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
		}
		return nil, apperr.Upstream("load identity", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.opts.TokenTTL)
	claims := Claims{
		Role: c.RoleClaim,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.opts.Issuer,
			Subject:   c.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Token: signed, ExpiresAt: expiresAt}, nil
}

func (s *service) VerifyToken(_ context.Context, raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.opts.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidToken, "invalid token", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, apperr.ErrInvalidToken
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
