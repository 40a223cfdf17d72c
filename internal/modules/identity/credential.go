package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is a sign-in identity. Its UID is the id partners and catalog
// records are owned by.
type Credential struct {
	UID          string    `db:"uid" json:"uid"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	RoleClaim    string    `db:"role_claim" json:"role,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Token is a signed bearer token handed to a client after sign-in.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are the JWT claims issued by this provider.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
