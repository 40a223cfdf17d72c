package upload

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/georgemunganga/menu-backend/internal/apperr"
)

const (
	DefaultMaxBytes = 500 * 1024
	DefaultCacheTTL = 48 * time.Hour
)

// extensions is the allow-list of image types and the extension each is stored under.
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// File is an uploaded image as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Result describes a stored image.
type Result struct {
	URL          string
	CacheControl string
}

type Service interface {
	Upload(ctx context.Context, uploadedBy string, f File) (*Result, error)
}

type Options struct {
	MaxBytes int64
	CacheTTL time.Duration
	// Outcomes counts uploads by outcome. Optional.
	Outcomes *prometheus.CounterVec
}

type service struct {
	store  ObjectStore
	opts   Options
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewService(store ObjectStore, opts Options, logger *zap.Logger) Service {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &service{store: store, opts: opts, logger: logger, now: time.Now, newID: uuid.NewString}
}

// cacheControl is the directive stored on every object and echoed to the client.
func (s *service) cacheControl() string {
	secs := int64(s.opts.CacheTTL / time.Second)
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d", secs, secs)
}

func (s *service) Upload(ctx context.Context, uploadedBy string, f File) (*Result, error) {
	ext, ok := extensions[f.ContentType]
	if !ok {
		s.count("unsupported_type")
		return nil, apperr.New(apperr.KindUnsupportedType,
			"invalid file type; only JPEG, PNG, GIF and WebP are allowed")
	}
	if f.Size > s.opts.MaxBytes {
		s.count("too_large")
		return nil, apperr.New(apperr.KindPayloadTooLarge,
			fmt.Sprintf("file size %d exceeds the %d byte limit", f.Size, s.opts.MaxBytes))
	}

	now := s.now().UTC()
	obj := Object{
		Name:         fmt.Sprintf("items/%s/%s.%s", now.Format("20060102"), s.newID(), ext),
		ContentType:  f.ContentType,
		CacheControl: s.cacheControl(),
		Metadata: map[string]string{
			"uploadedBy": uploadedBy,
			"uploadedAt": now.Format(time.RFC3339),
		},
		// Guard against a body longer than its declared size.
		Body: io.LimitReader(f.Body, s.opts.MaxBytes),
	}

	url, err := s.store.Put(ctx, obj)
	if err != nil {
		s.count("error")
		return nil, apperr.Upstream("store image", err)
	}

	s.count("ok")
	s.logger.Info("image uploaded",
		zap.String("object", obj.Name),
		zap.String("uploaded_by", uploadedBy),
		zap.Int64("size", f.Size),
	)
	return &Result{URL: url, CacheControl: obj.CacheControl}, nil
}

func (s *service) count(outcome string) {
	if s.opts.Outcomes != nil {
		s.opts.Outcomes.WithLabelValues(outcome).Inc()
	}
}
