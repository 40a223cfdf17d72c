package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/modules/identity"
)

// Identities is the part of the identity provider the directory drives.
type Identities interface {
	CreateUser(ctx context.Context, email, password, role string) (string, error)
	DeleteUser(ctx context.Context, uid string) error
	FindByEmail(ctx context.Context, email string) (*identity.Credential, error)
}

type Service interface {
	ListPartners(ctx context.Context) ([]*Partner, error)
	GetPartner(ctx context.Context, id string) (*Partner, error)

	// CreatePartner provisions an identity and then writes the profile. A failed
	// profile write removes the identity again; if that also fails the error is
	// PartiallyCompleted.
	CreatePartner(ctx context.Context, req CreatePartnerRequest) (*Partner, error)

	// DeletePartner removes the profile and then the legacy role record. A failed
	// role removal restores the profile; if that also fails the error is
	// PartiallyCompleted.
	DeletePartner(ctx context.Context, id string) error

	// EnsureAdmin provisions an admin account for email unless one exists.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type service struct {
	repo       Repository
	identities Identities
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(repo Repository, identities Identities, logger *zap.Logger) Service {
	return &service{repo: repo, identities: identities, logger: logger, now: time.Now}
}

func (s *service) ListPartners(ctx context.Context) ([]*Partner, error) {
	partners, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list partners", err)
	}
	return partners, nil
}

func (s *service) GetPartner(ctx context.Context, id string) (*Partner, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("partner id is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Upstream("load partner", err)
	}
	return p, nil
}

func (s *service) CreatePartner(ctx context.Context, req CreatePartnerRequest) (*Partner, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	return s.provision(ctx, req, RolePartner)
}

func (s *service) provision(ctx context.Context, req CreatePartnerRequest, role Role) (*Partner, error) {
	uid, err := s.identities.CreateUser(ctx, req.Email, req.Password, string(role))
	if err != nil {
		if errors.Is(err, apperr.ErrCreation) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindCreation, "create identity", err)
	}

	p := &Partner{
		ID:        uid,
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     trimmed(req.Phone),
		ShopName:  trimmed(req.ShopName),
		Location:  trimmed(req.Location),
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		// Compensate even if the caller has gone away.
		cctx := context.WithoutCancel(ctx)
		if cerr := s.identities.DeleteUser(cctx, uid); cerr != nil {
			s.logger.Error("partner create left an orphaned identity",
				zap.String("uid", uid), zap.Error(err), zap.NamedError("compensation_error", cerr))
			return nil, apperr.Wrap(apperr.KindPartiallyCompleted,
				fmt.Sprintf("identity %s was created but its profile was not", uid), errors.Join(err, cerr))
		}
		return nil, apperr.Upstream("write partner profile", err)
	}

	s.logger.Info("partner created", zap.String("uid", uid), zap.String("role", string(role)))
	return p, nil
}

func (s *service) DeletePartner(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("uid is required")
	}
	p, err := s.GetPartner(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Upstream("delete partner profile", err)
	}

	if err := s.repo.DeleteLegacyRole(ctx, id); err != nil {
		cctx := context.WithoutCancel(ctx)
		if rerr := s.repo.Create(cctx, p); rerr != nil {
			s.logger.Error("partner delete left an orphaned role record",
				zap.String("uid", id), zap.Error(err), zap.NamedError("compensation_error", rerr))
			return apperr.Wrap(apperr.KindPartiallyCompleted,
				fmt.Sprintf("profile %s was deleted but its role record was not", id), errors.Join(err, rerr))
		}
		return apperr.Upstream("delete role record", err)
	}

	s.logger.Info("partner deleted", zap.String("uid", id))
	return nil
}

func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	cred, err := s.identities.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		_, err := s.provision(ctx, CreatePartnerRequest{Email: email, Password: password}, RoleAdmin)
		return err
	case err != nil:
		return apperr.Upstream("look up admin identity", err)
	}

	p, err := s.repo.GetByID(ctx, cred.UID)
	switch {
	case err == nil:
		if p.Role != RoleAdmin {
			s.logger.Warn("bootstrap admin email belongs to a non-admin profile",
				zap.String("uid", cred.UID), zap.String("role", string(p.Role)))
		}
		return nil
	case !errors.Is(err, apperr.ErrNotFound):
		return apperr.Upstream("load admin profile", err)
	}

	return s.repo.Create(ctx, &Partner{
		ID:        cred.UID,
		Email:     cred.Email,
		Role:      RoleAdmin,
		CreatedAt: s.now().UTC(),
	})
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
