package jsonschema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches raw schema documents for the adapter and the resolver.
// Implementations live in internal/jsonschema/loader.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures the default loader construction.
type LoaderOptions struct {
	// FileSystem backs fs-kind sources.
	FileSystem fs.FS
	// HTTPClient, when set, enables url-kind sources with this client.
	HTTPClient *http.Client
	// AllowHTTPFallback enables url-kind sources with a default client.
	AllowHTTPFallback bool
	// RequestTimeout bounds each HTTP fetch.
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem supplies the fs.FS used for fs-kind sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient enables HTTP loading with a caller-owned client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// ResolveLoaderOptions folds option functions into a LoaderOptions value.
func ResolveLoaderOptions(options ...LoaderOption) LoaderOptions {
	opts := LoaderOptions{}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}
