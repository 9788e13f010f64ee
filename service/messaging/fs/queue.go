package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/pocketflow/internal/clock"
	"github.com/viant/pocketflow/internal/idgen"
	"github.com/viant/pocketflow/service/messaging"
)

const ext = ".json"

// Config holds configuration for filesystem queue
type Config struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"` // storage location of buffered items, e.g. file:///tmp/q or mem://localhost/q
}

// Message is the persisted form of a buffered item.
type Message[T any] struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	Data      T         `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// Queue is a messaging.Queue whose backlog lives in afs storage; objects are
// named by a zero padded sequence, so listing order is FIFO order. Waiters
// are in-memory: an item put while someone waits is handed over directly and
// never persisted.
type Queue[T any] struct {
	fs      afs.Service
	baseURL string
	mu      sync.Mutex
	seq     uint64
	waiters messaging.Waiters[T]
}

// NewQueue opens a queue under config.BaseURL, resuming any persisted backlog.
func NewQueue[T any](ctx context.Context, fs afs.Service, config Config) (*Queue[T], error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	q := &Queue[T]{fs: fs, baseURL: strings.TrimRight(config.BaseURL, "/")}
	exists, _ := fs.Exists(ctx, q.baseURL)
	if !exists {
		if err := fs.Create(ctx, q.baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create queue location %s: %w", q.baseURL, err)
		}
	}
	backlog, err := q.backlog(ctx)
	if err != nil {
		return nil, err
	}
	if count := len(backlog); count > 0 {
		name := strings.TrimSuffix(backlog[count-1].Name(), ext)
		if q.seq, err = strconv.ParseUint(name, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid queue object %s: %w", backlog[count-1].URL(), err)
		}
	}
	return q, nil
}

// Put hands item to the earliest waiter, or persists it at the end of the
// backlog.
func (q *Queue[T]) Put(ctx context.Context, item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.waiters.Deliver(item) {
		return nil
	}
	message := &Message[T]{ID: idgen.New(), Seq: q.seq + 1, Data: item, CreatedAt: clock.Now()}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err = q.fs.Upload(ctx, q.objectURL(message.Seq), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write message %v: %w", message.Seq, err)
	}
	q.seq = message.Seq
	return nil
}

// Get removes and returns the oldest persisted item, or waits for the next Put.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	q.mu.Lock()
	backlog, err := q.backlog(ctx)
	if err != nil {
		q.mu.Unlock()
		return zero, err
	}
	if len(backlog) > 0 {
		message, err := q.take(ctx, backlog[0])
		q.mu.Unlock()
		if err != nil {
			return zero, err
		}
		return message.Data, nil
	}
	ch := q.waiters.Add()
	q.mu.Unlock()
	return messaging.Await[T](ctx, &q.mu, &q.waiters, ch)
}

// Len returns the number of persisted items.
func (q *Queue[T]) Len(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	backlog, err := q.backlog(ctx)
	return len(backlog), err
}

// Waiting returns the number of blocked Get calls.
func (q *Queue[T]) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.waiters.Len()
}

func (q *Queue[T]) take(ctx context.Context, object storage.Object) (*Message[T], error) {
	data, err := q.fs.Download(ctx, object)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", object.URL(), err)
	}
	message := &Message[T]{}
	if err = json.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", object.URL(), err)
	}
	if err = q.fs.Delete(ctx, object.URL()); err != nil {
		return nil, fmt.Errorf("failed to delete message %s: %w", object.URL(), err)
	}
	return message, nil
}

// backlog lists persisted messages, oldest first.
func (q *Queue[T]) backlog(ctx context.Context) ([]storage.Object, error) {
	objects, err := q.fs.List(ctx, q.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	var ret []storage.Object
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ext) {
			continue
		}
		ret = append(ret, object)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name() < ret[j].Name() })
	return ret, nil
}

func (q *Queue[T]) objectURL(seq uint64) string {
	return url.Join(q.baseURL, fmt.Sprintf("%020d%s", seq, ext))
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
