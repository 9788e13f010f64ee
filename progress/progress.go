package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted while a run
// progresses.
type Delta struct {
	Steps     int
	Retries   int
	Fallbacks int
	Failed    int
	Passes    int
	Unmatched int
}

// Counters is a point-in-time copy of the tracker counters.
type Counters struct {
	Steps     int `json:"steps" yaml:"steps"`
	Retries   int `json:"retries" yaml:"retries"`
	Fallbacks int `json:"fallbacks" yaml:"fallbacks"`
	Failed    int `json:"failed" yaml:"failed"`
	Passes    int `json:"passes" yaml:"passes"`
	Unmatched int `json:"unmatched" yaml:"unmatched"`
}

func (c *Counters) apply(d Delta) {
	c.Steps += d.Steps
	c.Retries += d.Retries
	c.Fallbacks += d.Fallbacks
	c.Failed += d.Failed
	c.Passes += d.Passes
	c.Unmatched += d.Unmatched
}

// Progress aggregates counters of one run. It is safe for concurrent use.
type Progress struct {
	RunID     string
	Unit      string
	StartedAt time.Time

	mu       sync.Mutex
	counters Counters
	onChange func(Counters)
}

// Update applies the supplied delta. The onChange callback, if any, is
// invoked outside the critical section with a copy of the counters.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.counters.apply(d)
	snapshot := p.counters
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters.
func (p *Progress) Snapshot() Counters {
	if p == nil {
		return Counters{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters
}

// OnChange registers a callback invoked after every Update. Passing nil
// disables it.
func (p *Progress) OnChange(cb func(Counters)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a tracker, embeds it in a derived context and
// returns both.
func WithNewTracker(ctx context.Context, runID, unit string, onChange func(Counters)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tr := &Progress{
		RunID:     runID,
		Unit:      unit,
		StartedAt: time.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tr), tr
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx applies the delta to the tracker carried by ctx, if any.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
