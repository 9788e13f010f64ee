package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("pocketflow", "0.0.1", fname))

	ctx, parent := StartSpan(context.Background(), "flow.run qa")
	parent.WithAttributes(map[string]string{"node": "qa"}).WithInt("steps", 2)
	_, child := StartSpan(ctx, "node.run answer")
	child.AddEvent("retry", map[string]string{"attempt": "1"})
	EndSpan(child, errors.New("boom"))
	EndSpan(parent, nil)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "node.run answer")
	assert.Contains(t, string(data), "flow.run qa")
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"a": "b"}))
	assert.Nil(t, span.WithInt("a", 1))
	span.AddEvent("x", nil)
	EndSpan(span, nil)
}
