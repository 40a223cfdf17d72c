package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/modules/catalog"
	"github.com/georgemunganga/menu-backend/internal/modules/partner"
)

type fakePartners map[string]*partner.Partner

func (f fakePartners) GetPartner(_ context.Context, id string) (*partner.Partner, error) {
	p, ok := f[id]
	if !ok {
		return nil, apperr.NotFound("partner not found")
	}
	return p, nil
}

type fakeMenu map[string][]*catalog.Item

func (f fakeMenu) ListItems(_ context.Context, partnerID string, _ catalog.ItemFilter) ([]*catalog.Item, error) {
	return f[partnerID], nil
}

func strPtr(s string) *string { return &s }

func newTestService(links prometheus.Counter) Service {
	partners := fakePartners{
		"P1": {ID: "P1", Phone: strPtr("09876543210"), ShopName: strPtr("Blue Cafe")},
		"P2": {ID: "P2", Phone: strPtr("9876500000")},
		"P3": {ID: "P3", ShopName: strPtr("No Phone")},
	}
	items := fakeMenu{
		"P1": {
			{ID: "i1", Name: "Idli", Price: 40, PartnerID: "P1"},
			{ID: "i2", Name: "Vada", Price: 35, PartnerID: "P1"},
		},
	}
	return NewService(partners, items, Options{CountryCode: "91", TaxRate: 0.05, Links: links}, zap.NewNop())
}

func TestBuildLink(t *testing.T) {
	links := prometheus.NewCounter(prometheus.CounterOpts{Name: "order_links_total"})
	svc := newTestService(links)

	link, err := svc.BuildLink(context.Background(), LinkRequest{
		PartnerID:  "P1",
		Quantities: map[string]int{"i1": 2, "i2": 1, "gone": 4, "i3": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, link.TotalItems)
	assert.InDelta(t, 115, link.TotalPrice, 1e-9)
	assert.True(t, strings.HasPrefix(link.URL, "https://wa.me/919876543210?text="))
	assert.Contains(t, link.Message, "2x Idli - ₹40 each")
	assert.NotContains(t, link.Message, "gone")

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, link.Message, u.Query().Get("text"))
	assert.Equal(t, 1.0, testutil.ToFloat64(links))
}

func TestBuildLinkDefaults(t *testing.T) {
	svc := newTestService(nil)
	link, err := svc.BuildLink(context.Background(), LinkRequest{PartnerID: "P2"})
	require.NoError(t, err)
	assert.Equal(t, "I'm interested in ordering from your menu", link.Message)
	assert.Equal(t, "https://wa.me/919876500000?text=I'm%20interested%20in%20ordering%20from%20your%20menu", link.URL)
}

func TestBuildLinkErrors(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	_, err := svc.BuildLink(ctx, LinkRequest{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.BuildLink(ctx, LinkRequest{PartnerID: "P1", Quantities: map[string]int{"i1": -1}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.BuildLink(ctx, LinkRequest{PartnerID: "P1", Quantities: map[string]int{"i1": MaxQuantity + 1}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.BuildLink(ctx, LinkRequest{PartnerID: "P3"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.BuildLink(ctx, LinkRequest{PartnerID: "nobody"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestHandlerBuildLink(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(newTestService(nil)).RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/order/link", strings.NewReader(`{"partnerId":"P1","quantities":{"i2":3}}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var link Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))
	assert.Equal(t, 3, link.TotalItems)
	assert.InDelta(t, 105, link.TotalPrice, 1e-9)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/order/link", strings.NewReader(`{"partnerId":"P1","quantities":{"i1":9223372036854775807,"i2":1}}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/order/link", strings.NewReader(`{"partnerId":"P3"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ValidationError")
}
