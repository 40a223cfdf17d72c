// Package authtest provides in-memory token verification and role lookup for
// handler tests.
package authtest

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/modules/auth"
	"github.com/georgemunganga/menu-backend/internal/modules/identity"
)

// Tokens maps raw bearer tokens to identity ids.
type Tokens map[string]string

func (t Tokens) VerifyToken(_ context.Context, raw string) (*identity.Claims, error) {
	uid, ok := t[raw]
	if !ok {
		return nil, apperr.ErrInvalidToken
	}
	return &identity.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uid}}, nil
}

// Roles maps identity ids to embedded role records.
type Roles map[string]string

func (r Roles) Lookup(_ context.Context, uid string) (auth.RoleRecord, error) {
	role, ok := r[uid]
	if !ok {
		return auth.RoleRecord{Source: auth.SourceNone}, nil
	}
	return auth.RoleRecord{Source: auth.SourceEmbedded, Role: role}, nil
}

// NewResolver builds a resolver over the given tokens and roles.
func NewResolver(tokens Tokens, roles Roles) *auth.Resolver {
	return auth.NewResolver(tokens, roles, zap.NewNop())
}
