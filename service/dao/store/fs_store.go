package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/pocketflow/service/dao"
)

// FSStore is a dao.Service persisting each entity as a JSON object under a
// base URL, in any afs supported storage.
type FSStore[T any] struct {
	baseURL     string
	fs          afs.Service
	keySelector func(*T) string
	matcher     Matcher[T]
	mu          sync.RWMutex
}

// NewFSStore creates the base location if needed.
func NewFSStore[T any](ctx context.Context, fs afs.Service, baseURL string, keySelector func(*T) string) (*FSStore[T], error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	baseURL = strings.TrimRight(baseURL, "/")
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base location %s: %w", baseURL, err)
		}
	}
	return &FSStore[T]{baseURL: baseURL, fs: fs, keySelector: keySelector}, nil
}

// WithMatcher sets the List filter.
func (s *FSStore[T]) WithMatcher(matcher Matcher[T]) *FSStore[T] {
	s.matcher = matcher
	return s
}

// Save persists v, overwriting any previous version.
func (s *FSStore[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	if key == "" {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %v: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.fs.Upload(ctx, s.objectURL(key), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save %v: %w", key, err)
	}
	return nil
}

// Load reads the entity stored under key.
func (s *FSStore[T]) Load(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	URL := s.objectURL(key)
	if exists, _ := s.fs.Exists(ctx, URL); !exists {
		return nil, dao.ErrNotFound
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", key, err)
	}
	ret := new(T)
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %v: %w", key, err)
	}
	return ret, nil
}

// Delete removes the entity stored under key.
func (s *FSStore[T]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.objectURL(key)
	if exists, _ := s.fs.Exists(ctx, URL); !exists {
		return dao.ErrNotFound
	}
	return s.fs.Delete(ctx, URL)
}

// List returns stored entities matching parameters, ordered by key.
func (s *FSStore[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list %v: %w", s.baseURL, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name() < objects[j].Name() })
	var ret []*T
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read %v: %w", object.URL(), err)
		}
		v := new(T)
		if err = json.Unmarshal(data, v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %v: %w", object.URL(), err)
		}
		if s.matcher != nil && !s.matcher(v, parameters) {
			continue
		}
		ret = append(ret, v)
	}
	return ret, nil
}

func (s *FSStore[T]) objectURL(key string) string {
	return url.Join(s.baseURL, key+".json")
}

// ensure FSStore implements dao.Service interface
var _ dao.Service[string, struct{}] = (*FSStore[struct{}])(nil)
