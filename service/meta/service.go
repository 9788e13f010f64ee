package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads YAML (or JSON) documents from any afs supported storage,
// expanding ${env.KEY} expressions before decoding.
type Service struct {
	fs      afs.Service
	baseURL string
	options []storage.Option
}

// New creates a meta service; relative locations resolve against baseURL.
// options are passed to every storage call (e.g. an embed.FS for embed:// URLs).
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, baseURL: baseURL, options: options}
}

// URL resolves location against the base URL.
func (s *Service) URL(location string) string {
	if s.baseURL == "" || strings.Contains(location, "://") || strings.HasPrefix(location, "/") {
		return location
	}
	return url.Join(s.baseURL, location)
}

// Load decodes the document at location into target.
func (s *Service) Load(ctx context.Context, location string, target interface{}) error {
	URL := s.URL(location)
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return fmt.Errorf("failed to download %v: %w", URL, err)
	}
	if err = yaml.Unmarshal([]byte(Expand(string(data))), target); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}

// Exists reports whether a document is present at location.
func (s *Service) Exists(ctx context.Context, location string) (bool, error) {
	return s.fs.Exists(ctx, s.URL(location), s.options...)
}

// Save encodes source as YAML at location.
func (s *Service) Save(ctx context.Context, location string, source interface{}) error {
	data, err := yaml.Marshal(source)
	if err != nil {
		return err
	}
	URL := s.URL(location)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(string(data)), s.options...); err != nil {
		return fmt.Errorf("failed to upload %v: %w", URL, err)
	}
	return nil
}
