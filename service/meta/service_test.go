package meta

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

func TestService_LoadSave(t *testing.T) {
	type document struct {
		Name  string `yaml:"name"`
		Level string `yaml:"level"`
	}
	ctx := context.Background()
	fs := afs.New()
	t.Setenv("POCKETFLOW_LEVEL", "debug")
	require.NoError(t, fs.Upload(ctx, "mem://localhost/meta/doc.yaml", 0644, stringsReader("name: demo\nlevel: ${env.POCKETFLOW_LEVEL}\n")))

	srv := New(fs, "mem://localhost/meta")
	exists, err := srv.Exists(ctx, "doc.yaml")
	require.NoError(t, err)
	assert.True(t, exists)

	actual := &document{}
	require.NoError(t, srv.Load(ctx, "doc.yaml", actual))
	assert.Equal(t, &document{Name: "demo", Level: "debug"}, actual)

	require.NoError(t, srv.Save(ctx, "copy.yaml", actual))
	copied := &document{}
	require.NoError(t, srv.Load(ctx, "mem://localhost/meta/copy.yaml", copied))
	assert.Equal(t, actual, copied)

	assert.Error(t, srv.Load(ctx, "missing.yaml", copied))
}

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
