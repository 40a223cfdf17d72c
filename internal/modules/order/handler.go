package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/menu-backend/internal/httpx"
)

// Handler serves order links to the public menu page; no token is needed.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Post("/api/v1/order/link", h.buildLink)
}

func (h *Handler) buildLink(w http.ResponseWriter, r *http.Request) {
	var req LinkRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	link, err := h.service.BuildLink(r.Context(), req)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, link)
}
