package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
	"github.com/georgemunganga/menu-backend/internal/modules/auth/authtest"
)

type recordingStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]Object
	err     error
}

func newRecordingStore() *recordingStore {
	return &recordingStore{objects: map[string][]byte{}, meta: map[string]Object{}}
}

func (s *recordingStore) Put(_ context.Context, obj Object) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return "", err
	}
	s.objects[obj.Name] = data
	s.meta[obj.Name] = obj
	return "https://cdn.test/" + obj.Name, nil
}

func newTestService(store ObjectStore, outcomes *prometheus.CounterVec) *service {
	s := NewService(store, Options{Outcomes: outcomes}, zap.NewNop()).(*service)
	s.now = func() time.Time { return time.Date(2025, 5, 10, 19, 53, 7, 0, time.UTC) }
	s.newID = func() string { return "0b8f4c1e-1111-4222-8333-444455556666" }
	return s
}

func jpeg(size int) []byte {
	b := bytes.Repeat([]byte{0}, size)
	copy(b, []byte{0xFF, 0xD8, 0xFF, 0xE0})
	return b
}

func TestUploadStoresObject(t *testing.T) {
	store := newRecordingStore()
	svc := newTestService(store, nil)
	body := jpeg(1024)

	res, err := svc.Upload(context.Background(), "P1", File{Name: "dish.jpeg", ContentType: "image/jpeg", Size: int64(len(body)), Body: bytes.NewReader(body)})
	require.NoError(t, err)

	name := "items/20250510/0b8f4c1e-1111-4222-8333-444455556666.jpg"
	assert.Equal(t, "https://cdn.test/"+name, res.URL)
	assert.Equal(t, "public, max-age=172800, s-maxage=172800", res.CacheControl)
	assert.Equal(t, body, store.objects[name])

	obj := store.meta[name]
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, "P1", obj.Metadata["uploadedBy"])
	assert.Equal(t, "2025-05-10T19:53:07Z", obj.Metadata["uploadedAt"])
}

func TestUploadRejections(t *testing.T) {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "uploads_total"}, []string{"outcome"})
	store := newRecordingStore()
	svc := newTestService(store, outcomes)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "P1", File{ContentType: "image/svg+xml", Size: 10, Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, apperr.ErrUnsupportedType)

	_, err = svc.Upload(ctx, "P1", File{ContentType: "image/png", Size: 500*1024 + 1, Body: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, apperr.ErrPayloadTooLarge)

	_, err = svc.Upload(ctx, "P1", File{ContentType: "image/png", Size: 500 * 1024, Body: bytes.NewReader(nil)})
	assert.NoError(t, err)

	store.err = errors.New("bucket unavailable")
	_, err = svc.Upload(ctx, "P1", File{ContentType: "image/gif", Size: 1, Body: bytes.NewReader([]byte{1})})
	assert.ErrorIs(t, err, apperr.ErrUpstream)

	assert.Equal(t, 1.0, testutil.ToFloat64(outcomes.WithLabelValues("unsupported_type")))
	assert.Equal(t, 1.0, testutil.ToFloat64(outcomes.WithLabelValues("too_large")))
	assert.Equal(t, 1.0, testutil.ToFloat64(outcomes.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(outcomes.WithLabelValues("error")))
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080/assets/")

	url, err := store.Put(context.Background(), Object{Name: "items/20250510/a.png", Body: bytes.NewReader([]byte("png"))})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/assets/items/20250510/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "items", "20250510", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func newTestRouter(store ObjectStore) *chi.Mux {
	res := authtest.NewResolver(authtest.Tokens{"p1-token": "P1"}, authtest.Roles{"P1": "partner"})
	r := chi.NewRouter()
	NewHandler(newTestService(store, nil), res, DefaultMaxBytes).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func post(t *testing.T, h http.Handler, token string, body io.Reader, contentType string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHandlerUpload(t *testing.T) {
	store := newRecordingStore()
	r := newTestRouter(store)

	body, ct := multipartBody(t, "image", "dish.jpg", "image/jpeg", jpeg(2048))
	rec, out := post(t, r, "p1-token", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Image uploaded successfully", out["message"])
	assert.Contains(t, out["imageUrl"], "https://cdn.test/items/20250510/")
	assert.Equal(t, "public, max-age=172800, s-maxage=172800, immutable", rec.Header().Get("Cache-Control"))
	assert.Len(t, store.objects, 1)
}

func TestHandlerSniffsGenericType(t *testing.T) {
	store := newRecordingStore()
	r := newTestRouter(store)

	body, ct := multipartBody(t, "image", "dish", "application/octet-stream", jpeg(2048))
	rec, _ := post(t, r, "p1-token", body, ct)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, obj := range store.meta {
		assert.Equal(t, "image/jpeg", obj.ContentType)
	}
}

func TestHandlerRejectsOversizedJPEG(t *testing.T) {
	store := newRecordingStore()
	r := newTestRouter(store)

	body, ct := multipartBody(t, "image", "big.jpg", "image/jpeg", jpeg(600*1024))
	rec, out := post(t, r, "p1-token", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "PayloadTooLarge", out["error"])
	assert.Empty(t, store.objects)
}

func TestHandlerRejectsUnsupportedType(t *testing.T) {
	r := newTestRouter(newRecordingStore())
	body, ct := multipartBody(t, "image", "notes.txt", "text/plain", []byte("hello"))
	rec, out := post(t, r, "p1-token", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UnsupportedType", out["error"])
}

func TestHandlerMissingField(t *testing.T) {
	r := newTestRouter(newRecordingStore())
	body, ct := multipartBody(t, "photo", "dish.jpg", "image/jpeg", jpeg(10))
	rec, out := post(t, r, "p1-token", body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ValidationError", out["error"])
}

func TestHandlerRequiresToken(t *testing.T) {
	r := newTestRouter(newRecordingStore())
	body, ct := multipartBody(t, "image", "dish.jpg", "image/jpeg", jpeg(10))
	rec, out := post(t, r, "", body, ct)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthenticated", out["error"])
}
