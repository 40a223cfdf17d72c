package upload

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/httpx"
	"github.com/georgemunganga/menu-backend/internal/modules/auth"
)

// formOverhead is the room left for multipart framing above the file limit.
const formOverhead = 1 << 20

type Handler struct {
	service  Service
	resolver *auth.Resolver
	maxBytes int64
}

func NewHandler(service Service, resolver *auth.Resolver, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Handler{service: service, resolver: resolver, maxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(router *chi.Mux) {
	router.With(auth.Authenticate(h.resolver)).Post("/api/v1/upload", h.upload)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+formOverhead)
	if err := r.ParseMultipartForm(h.maxBytes + formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Error(w, r, apperr.Wrap(apperr.KindPayloadTooLarge, "request body too large", err))
			return
		}
		httpx.Error(w, r, apperr.Wrap(apperr.KindValidation, "invalid multipart form", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.Error(w, r, apperr.Validation("no image file provided"))
		return
	}
	defer file.Close()

	contentType, err := detectType(file, header.Header.Get("Content-Type"))
	if err != nil {
		httpx.Error(w, r, apperr.Wrap(apperr.KindValidation, "read image", err))
		return
	}

	caller, _ := auth.PrincipalFromContext(r.Context())
	res, err := h.service.Upload(r.Context(), caller.UID, File{
		Name:        header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", res.CacheControl+", immutable")
	httpx.Respond(w, http.StatusOK, map[string]string{
		"message":  "Image uploaded successfully",
		"imageUrl": res.URL,
	})
}

// detectType returns the declared media type of a part, sniffing the content
// when the client sent none or a generic one.
func detectType(f io.ReadSeeker, declared string) (string, error) {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt, nil
		}
	}
	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(buf[:n]))
	return mt, nil
}
