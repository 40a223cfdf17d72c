package order

import (
	"context"
	"sort"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/modules/catalog"
	"github.com/georgemunganga/menu-backend/internal/modules/partner"
)

const defaultShopName = "Restaurant"

// Partners loads the profile whose phone receives the order.
type Partners interface {
	GetPartner(ctx context.Context, id string) (*partner.Partner, error)
}

// Menu lists the items a cart is priced against.
type Menu interface {
	ListItems(ctx context.Context, partnerID string, filter catalog.ItemFilter) ([]*catalog.Item, error)
}

// LinkRequest is a cart as the menu page holds it.
type LinkRequest struct {
	PartnerID  string         `json:"partnerId"`
	Quantities map[string]int `json:"quantities"`
}

// Link is a ready-to-open order deep link. Nothing about it is stored.
type Link struct {
	Message    string  `json:"message"`
	URL        string  `json:"url"`
	TotalItems int     `json:"totalItems"`
	TotalPrice float64 `json:"totalPrice"`
}

type Service interface {
	BuildLink(ctx context.Context, req LinkRequest) (*Link, error)
}

type Options struct {
	CountryCode string
	TaxRate     float64
	// Links counts generated links. Optional.
	Links prometheus.Counter
}

type service struct {
	partners Partners
	menu     Menu
	opts     Options
	logger   *zap.Logger
}

func NewService(partners Partners, menu Menu, opts Options, logger *zap.Logger) Service {
	if opts.CountryCode == "" {
		opts.CountryCode = DefaultCountryCode
	}
	if opts.TaxRate < 0 {
		opts.TaxRate = 0
	}
	return &service{partners: partners, menu: menu, opts: opts, logger: logger}
}

func (s *service) BuildLink(ctx context.Context, req LinkRequest) (*Link, error) {
	if req.PartnerID == "" {
		return nil, apperr.Validation("partnerId is required")
	}
	for id, qty := range req.Quantities {
		if qty < 0 {
			return nil, apperr.Validation("quantity of " + id + " must not be negative")
		}
		if qty > MaxQuantity {
			return nil, apperr.Validation("quantity of " + id + " must not exceed " + strconv.Itoa(MaxQuantity))
		}
	}

	p, err := s.partners.GetPartner(ctx, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if p.Phone == nil || *p.Phone == "" {
		return nil, apperr.Validation("partner has no phone number")
	}

	items, err := s.menu.ListItems(ctx, req.PartnerID, catalog.ItemFilter{})
	if err != nil {
		return nil, err
	}
	menu := make([]MenuItem, 0, len(items))
	for _, it := range items {
		menu = append(menu, MenuItem{ID: it.ID, Name: it.Name, Price: it.Price})
	}

	cart := NewCart(menu)
	ids := make([]string, 0, len(req.Quantities))
	for id := range req.Quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		cart.Adjust(id, req.Quantities[id])
	}

	shop := defaultShopName
	if p.ShopName != nil && *p.ShopName != "" {
		shop = *p.ShopName
	}
	msg := BuildOrderMessage(cart, shop, s.opts.TaxRate)
	link, err := BuildDeepLink(*p.Phone, EncodeOrderMessage(msg), s.opts.CountryCode)
	if err != nil {
		return nil, err
	}

	if s.opts.Links != nil {
		s.opts.Links.Inc()
	}
	s.logger.Debug("order link built",
		zap.String("partner_id", req.PartnerID),
		zap.Int("total_items", cart.TotalItems()),
	)
	return &Link{
		Message:    msg,
		URL:        link,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}, nil
}
