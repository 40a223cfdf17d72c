package partner

import "context"

// Repository defines the interface for partner profile storage.
type Repository interface {
	Create(ctx context.Context, p *Partner) error
	GetByID(ctx context.Context, id string) (*Partner, error)
	List(ctx context.Context) ([]*Partner, error)
	Delete(ctx context.Context, id string) error
	// DeleteLegacyRole removes the role record kept outside the profile.
	DeleteLegacyRole(ctx context.Context, id string) error
}
