package upload

import (
	"context"
	"io"
)

// Object is a file ready to be written to object storage.
type Object struct {
	Name         string
	ContentType  string
	CacheControl string
	Metadata     map[string]string
	Body         io.Reader
}

// ObjectStore writes publicly readable objects and returns their URL.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) (string, error)
}
