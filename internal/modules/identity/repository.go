package identity

import "context"

// Repository defines the interface for credential storage.
type Repository interface {
	Create(ctx context.Context, c *Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	GetByUID(ctx context.Context, uid string) (*Credential, error)
	Delete(ctx context.Context, uid string) error
}
