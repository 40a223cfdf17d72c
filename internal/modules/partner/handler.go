package partner

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/menu-backend/internal/httpx"
	"github.com/georgemunganga/menu-backend/internal/modules/auth"
)

type Handler struct {
	service  Service
	resolver *auth.Resolver
}

func NewHandler(service Service, resolver *auth.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/partner", func(r chi.Router) {
		r.Get("/{id}", h.getPartner) // public menu page

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(h.resolver), auth.RequireRole(auth.RoleAdmin))
			r.Get("/", h.listPartners)
			r.Post("/", h.createPartner)
			r.Delete("/", h.deletePartner)
		})
	})
}

func (h *Handler) listPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.service.ListPartners(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"partners": partners})
}

func (h *Handler) getPartner(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPartner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"partner": p.Public()})
}

func (h *Handler) createPartner(w http.ResponseWriter, r *http.Request) {
	var req CreatePartnerRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.service.CreatePartner(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, map[string]string{
		"uid":     p.ID,
		"message": "Partner created successfully",
	})
}

func (h *Handler) deletePartner(w http.ResponseWriter, r *http.Request) {
	type request struct {
		UID string `json:"uid"`
	}

	var req request
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.service.DeletePartner(r.Context(), req.UID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]string{"message": "Partner deleted successfully"})
}
