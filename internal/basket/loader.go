package basket

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/specialistvlad/checkout/internal/ctxlog"
)

// Loader reads basket documents from local files or S3 objects.
type Loader struct {
	mu      sync.Mutex
	objects ObjectGetter
	newS3   func(ctx context.Context) (ObjectGetter, error)
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithObjectGetter makes the loader use the given S3 client instead of one
// built from the default AWS configuration chain.
func WithObjectGetter(g ObjectGetter) LoaderOption {
	return func(l *Loader) {
		l.objects = g
	}
}

// NewLoader creates a Loader. The S3 client is only built on the first
// s3:// location, so local runs never need AWS credentials.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{newS3: newDefaultObjectGetter}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and decodes the basket at location, which is either a file
// path or an s3://bucket/key URI. The format follows the file extension.
func (l *Loader) Load(ctx context.Context, location string) (Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading basket.", "location", location)

	data, name, err := l.read(ctx, location)
	if err != nil {
		return nil, err
	}

	format := FormatFor(name)
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}

	logger.Debug("Basket loaded.", "location", location, "format", format, "keys", len(doc))
	return doc, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, string, error) {
	obj, isS3, err := parseS3URI(location)
	if err != nil {
		return nil, "", err
	}
	if !isS3 {
		// The *PathError already names the file.
		data, err := os.ReadFile(location)
		return data, location, err
	}

	getter, err := l.objectGetter(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create S3 client: %w", err)
	}
	data, err := fetchObject(ctx, getter, obj)
	if err != nil {
		return nil, "", err
	}
	return data, obj.Key, nil
}

func (l *Loader) objectGetter(ctx context.Context) (ObjectGetter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.objects != nil {
		return l.objects, nil
	}
	g, err := l.newS3(ctx)
	if err != nil {
		return nil, err
	}
	l.objects = g
	return g, nil
}
