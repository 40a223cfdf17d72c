package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/modules/identity"
)

const bearerPrefix = "Bearer "

// TokenVerifier is the part of the identity provider the resolver needs.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, raw string) (*identity.Claims, error)
}

// Resolver turns a bearer credential into a Principal. It does not cache.
type Resolver struct {
	verifier TokenVerifier
	roles    RoleStore
	logger   *zap.Logger
}

func NewResolver(verifier TokenVerifier, roles RoleStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{verifier: verifier, roles: roles, logger: logger}
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", apperr.ErrUnauthenticated
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", apperr.ErrUnauthenticated
	}
	return token, nil
}

// ResolveHeader extracts, verifies and resolves an Authorization header.
func (r *Resolver) ResolveHeader(ctx context.Context, header string) (Principal, error) {
	token, err := ExtractBearer(header)
	if err != nil {
		return Principal{}, err
	}
	return r.Resolve(ctx, token)
}

// Resolve verifies token and looks up the caller's role.
func (r *Resolver) Resolve(ctx context.Context, token string) (Principal, error) {
	claims, err := r.verifier.VerifyToken(ctx, token)
	if err != nil {
		return Principal{}, err
	}
	rec, err := r.roles.Lookup(ctx, claims.Subject)
	if err != nil {
		return Principal{}, apperr.Upstream("look up role", err)
	}
	p := Principal{UID: claims.Subject, Role: rec.Resolve()}
	r.logger.Debug("principal resolved",
		zap.String("uid", p.UID),
		zap.String("role", string(p.Role)),
		zap.Stringer("source", rec.Source),
	)
	return p, nil
}
