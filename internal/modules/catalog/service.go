package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/cache"
	"github.com/georgemunganga/menu-backend/internal/modules/auth"
)

// Service defines catalog business logic. List calls take the partner whose
// menu is read; an empty partner id lists every partner and skips the cache.
type Service interface {
	ListCategories(ctx context.Context, partnerID string) ([]*Category, error)
	CreateCategory(ctx context.Context, caller auth.Principal, name string) (*Category, error)

	ListItems(ctx context.Context, partnerID string, filter ItemFilter) ([]*Item, error)
	CreateItem(ctx context.Context, caller auth.Principal, in ItemInput) (*Item, error)
	UpdateItem(ctx context.Context, caller auth.Principal, in ItemInput) (*Item, error)
	DeleteItem(ctx context.Context, caller auth.Principal, id string) error
}

type service struct {
	repo   Repository
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	// epochs counts invalidations per cache key. A load only repopulates
	// its key if no invalidation landed while it ran.
	mu     sync.Mutex
	epochs map[string]uint64
}

func NewService(repo Repository, c cache.Cache, logger *zap.Logger) Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &service{
		repo:   repo,
		cache:  c,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return ulid.Make().String() },
		epochs: map[string]uint64{},
	}
}

func (s *service) epoch(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs[key]
}

func (s *service) invalidate(ctx context.Context, key string) {
	s.mu.Lock()
	s.epochs[key]++
	s.mu.Unlock()
	s.cache.Delete(ctx, key)
}

func categoriesKey(partnerID string) string { return "menu:categories:" + partnerID }
func itemsKey(partnerID string) string { return "menu:items:" + partnerID }

func (s *service) ListCategories(ctx context.Context, partnerID string) ([]*Category, error) {
	return cached(ctx, s, categoriesKey(partnerID), partnerID, s.repo.ListCategories)
}

func (s *service) CreateCategory(ctx context.Context, caller auth.Principal, name string) (*Category, error) {
	if caller.Role != auth.RolePartner {
		return nil, apperr.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	c := &Category{
		ID:        s.newID(),
		Name:      name,
		PartnerID: caller.UID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, apperr.Upstream("create category", err)
	}
	s.invalidate(ctx, categoriesKey(caller.UID))
	return c, nil
}

func (s *service) ListItems(ctx context.Context, partnerID string, filter ItemFilter) ([]*Item, error) {
	items, err := cached(ctx, s, itemsKey(partnerID), partnerID, s.repo.ListItems)
	if err != nil {
		return nil, err
	}
	if !filter.MustTry && filter.Query == "" {
		return items, nil
	}

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		if filter.MustTry && !it.MustTry {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(it.Name), q) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *service) CreateItem(ctx context.Context, caller auth.Principal, in ItemInput) (*Item, error) {
	if caller.Role != auth.RolePartner {
		return nil, apperr.ErrUnauthorized
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.Price == nil {
		return nil, apperr.Validation("price is required")
	}
	if in.Category == nil || strings.TrimSpace(*in.Category) == "" {
		return nil, apperr.Validation("category is required")
	}

	now := s.now().UTC()
	it := &Item{
		ID:        s.newID(),
		PartnerID: caller.UID,
		CreatedAt: now,
	}
	if err := apply(it, in); err != nil {
		return nil, err
	}
	it.UpdatedAt = now

	if err := s.repo.CreateItem(ctx, it); err != nil {
		return nil, apperr.Upstream("create item", err)
	}
	s.invalidate(ctx, itemsKey(caller.UID))
	return it, nil
}

func (s *service) UpdateItem(ctx context.Context, caller auth.Principal, in ItemInput) (*Item, error) {
	it, err := s.owned(ctx, caller, in.ID)
	if err != nil {
		return nil, err
	}
	if err := apply(it, in); err != nil {
		return nil, err
	}
	it.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateItem(ctx, it); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Upstream("update item", err)
	}
	s.invalidate(ctx, itemsKey(it.PartnerID))
	return it, nil
}

func (s *service) DeleteItem(ctx context.Context, caller auth.Principal, id string) error {
	it, err := s.owned(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, it.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return apperr.Upstream("delete item", err)
	}
	s.invalidate(ctx, itemsKey(it.PartnerID))
	return nil
}

// owned loads an item and checks that caller is its partner.
func (s *service) owned(ctx context.Context, caller auth.Principal, id string) (*Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validation("id is required")
	}
	it, err := s.repo.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		return nil, apperr.Upstream("load item", err)
	}
	if it.PartnerID != caller.UID {
		return nil, apperr.ErrForbidden
	}
	return it, nil
}

// apply copies the non-nil fields of in onto it.
func apply(it *Item, in ItemInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return apperr.Validation("name must not be empty")
		}
		it.Name = name
	}
	if in.Price != nil {
		if *in.Price < 0 || math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) {
			return apperr.Validation("price must be a non-negative number")
		}
		it.Price = *in.Price
	}
	if in.Category != nil {
		category := strings.TrimSpace(*in.Category)
		if category == "" {
			return apperr.Validation("category must not be empty")
		}
		it.Category = category
	}
	if in.Description != nil {
		it.Description = optional(*in.Description)
	}
	if in.Image != nil {
		it.Image = optional(*in.Image)
	}
	if in.MustTry != nil {
		it.MustTry = *in.MustTry
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// cached reads a partner-scoped list through the menu cache. Cross-partner
// listings always go to the repository. Replicas sharing a Redis cache do not
// see each other's epochs, so a racing load there stays stale for at most the
// cache TTL.
func cached[T any](ctx context.Context, s *service, key, partnerID string, load func(context.Context, string) ([]T, error)) ([]T, error) {
	if partnerID != "" {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var out []T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
			s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
	}

	epoch := s.epoch(key)
	out, err := load(ctx, partnerID)
	if err != nil {
		return nil, apperr.Upstream("load menu", err)
	}

	if partnerID != "" && s.epoch(key) == epoch {
		if raw, err := json.Marshal(out); err == nil {
			s.cache.Set(ctx, key, raw)
		}
	}
	return out, nil
}
