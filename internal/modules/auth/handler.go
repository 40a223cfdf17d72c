package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/menu-backend/internal/httpx"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Get("/api/v1/auth", h.getRole)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolver.ResolveHeader(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]Role{"role": p.Role})
}
