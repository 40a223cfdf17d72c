package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/httpx"
	"github.com/georgemunganga/menu-backend/internal/modules/auth"
)

// Handler exposes category and item endpoints. Reads are public when a
// partnerId is given; writes need a bearer token.
type Handler struct {
	service  Service
	resolver *auth.Resolver
}

func NewHandler(service Service, resolver *auth.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.Route("/api/v1/category", func(r chi.Router) {
		r.With(auth.Optional(h.resolver)).Get("/", h.listCategories)
		r.With(auth.Authenticate(h.resolver)).Post("/", h.createCategory)
	})
	router.Route("/api/v1/item", func(r chi.Router) {
		r.With(auth.Optional(h.resolver)).Get("/", h.listItems)
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(h.resolver))
			r.Post("/", h.createItem)
			r.Put("/", h.updateItem)
			r.Delete("/", h.deleteItem)
		})
	})
}

// scope picks whose menu a list call reads: the partnerId query parameter,
// else the calling partner, else everything for an admin.
func scope(r *http.Request) (string, error) {
	if pid := strings.TrimSpace(r.URL.Query().Get("partnerId")); pid != "" {
		return pid, nil
	}
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return "", apperr.Validation("partnerId is required")
	}
	switch p.Role {
	case auth.RoleAdmin:
		return "", nil
	case auth.RolePartner:
		return p.UID, nil
	default:
		return "", apperr.Validation("partnerId is required")
	}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	pid, err := scope(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	categories, err := h.service.ListCategories(r.Context(), pid)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	caller, _ := auth.PrincipalFromContext(r.Context())
	c, err := h.service.CreateCategory(r.Context(), caller, req.Name)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, c)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	pid, err := scope(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	filter := ItemFilter{Query: r.URL.Query().Get("q")}
	if v := r.URL.Query().Get("mustTry"); v != "" {
		mustTry, err := strconv.ParseBool(v)
		if err != nil {
			httpx.Error(w, r, apperr.Validation("mustTry must be a boolean"))
			return
		}
		filter.MustTry = mustTry
	}

	items, err := h.service.ListItems(r.Context(), pid, filter)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	caller, _ := auth.PrincipalFromContext(r.Context())
	it, err := h.service.CreateItem(r.Context(), caller, in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, it)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var in ItemInput
	if err := httpx.Decode(w, r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	caller, _ := auth.PrincipalFromContext(r.Context())
	it, err := h.service.UpdateItem(r.Context(), caller, in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, it)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	caller, _ := auth.PrincipalFromContext(r.Context())
	if err := h.service.DeleteItem(r.Context(), caller, req.ID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}
