package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParams_Merge(t *testing.T) {
	own := Params{"a": 1, "b": "x"}
	merged := own.Merge(Params{"b": "y"}, Params{"c": true})
	assert.Equal(t, Params{"a": 1, "b": "y", "c": true}, merged)
	assert.Equal(t, Params{"a": 1, "b": "x"}, own)
	assert.Equal(t, Params{}, Params(nil).Clone())
}

func TestParams_Accessors(t *testing.T) {
	params := Params{"n": 3.0, "s": "7", "v": 12}
	assert.Equal(t, 3, params.Int("n"))
	assert.Equal(t, 7, params.Int("s"))
	assert.Equal(t, 0, params.Int("missing"))
	assert.Equal(t, "12", params.String("v"))
	assert.Equal(t, "", params.String("missing"))
	v, ok := params.Get("s")
	assert.True(t, ok)
	assert.Equal(t, "7", v)
}

func TestParams_Decode(t *testing.T) {
	type target struct {
		Filename string
		Limit    int
	}
	var actual target
	err := Params{"Filename": "a.txt", "Limit": 5, "Extra": "ignored"}.Decode(&actual)
	require.NoError(t, err)
	assert.Equal(t, target{Filename: "a.txt", Limit: 5}, actual)
}
