package policy

import (
	"context"
	"fmt"
	"strings"
)

// Diagnostic identifies a condition the engine reports without failing by default.
type Diagnostic string

const (
	// Overwrite is raised when a successor label is registered twice on one unit.
	Overwrite Diagnostic = "overwrite"
	// Unmatched is raised when a flow ends because the returned action matched
	// none of the unit's registered successors.
	Unmatched Diagnostic = "unmatched"
	// Detached is raised when Run is called directly on a unit that has
	// successors; only that unit executes.
	Detached Diagnostic = "detached"
)

// Reporting modes.
const (
	ModeWarn   = "warn"   // log and continue (default)
	ModeFail   = "fail"   // turn the diagnostic into an error
	ModeIgnore = "ignore" // continue silently
)

// NotifyFunc is invoked for every diagnostic reported in warn mode, after it
// has been logged.
type NotifyFunc func(ctx context.Context, diagnostic Diagnostic, err error)

// Policy holds the reporting mode of each diagnostic.
//
// A nil *Policy, or an empty mode, means ModeWarn.
type Policy struct {
	Overwrite string
	Unmatched string
	Detached  string
	Notify    NotifyFunc
}

// Strict returns a policy failing on every diagnostic.
func Strict() *Policy {
	return &Policy{Overwrite: ModeFail, Unmatched: ModeFail, Detached: ModeFail}
}

// Mode returns the normalised reporting mode for the diagnostic.
func (p *Policy) Mode(diagnostic Diagnostic) string {
	if p == nil {
		return ModeWarn
	}
	var mode string
	switch diagnostic {
	case Overwrite:
		mode = p.Overwrite
	case Unmatched:
		mode = p.Unmatched
	case Detached:
		mode = p.Detached
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeFail:
		return ModeFail
	case ModeIgnore:
		return ModeIgnore
	default:
		return ModeWarn
	}
}

// Config is the serialisable part of a Policy.
type Config struct {
	Overwrite string `json:"overwrite,omitempty" yaml:"overwrite,omitempty"`
	Unmatched string `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
	Detached  string `json:"detached,omitempty" yaml:"detached,omitempty"`
}

// Validate reports unknown modes.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	for name, mode := range map[string]string{
		string(Overwrite): c.Overwrite,
		string(Unmatched): c.Unmatched,
		string(Detached):  c.Detached,
	} {
		switch strings.ToLower(strings.TrimSpace(mode)) {
		case "", ModeWarn, ModeFail, ModeIgnore:
		default:
			return fmt.Errorf("diagnostics.%s: unsupported mode %q", name, mode)
		}
	}
	return nil
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{Overwrite: p.Overwrite, Unmatched: p.Unmatched, Detached: p.Detached}
}

// FromConfig converts a stored Config back to a runtime Policy (without Notify).
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{Overwrite: c.Overwrite, Unmatched: c.Unmatched, Detached: c.Detached}
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext returns the policy carried by ctx or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
