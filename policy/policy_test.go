package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Mode(t *testing.T) {
	var testCases = []struct {
		description string
		policy      *Policy
		diagnostic  Diagnostic
		expect      string
	}{
		{description: "nil policy warns", policy: nil, diagnostic: Overwrite, expect: ModeWarn},
		{description: "empty mode warns", policy: &Policy{}, diagnostic: Unmatched, expect: ModeWarn},
		{description: "fail", policy: &Policy{Unmatched: "FAIL"}, diagnostic: Unmatched, expect: ModeFail},
		{description: "ignore", policy: &Policy{Detached: " ignore "}, diagnostic: Detached, expect: ModeIgnore},
		{description: "unknown mode warns", policy: &Policy{Overwrite: "panic"}, diagnostic: Overwrite, expect: ModeWarn},
		{description: "strict", policy: Strict(), diagnostic: Detached, expect: ModeFail},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, testCase.policy.Mode(testCase.diagnostic), testCase.description)
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, (&Config{Overwrite: "warn", Unmatched: "fail", Detached: ""}).Validate())
	assert.Error(t, (&Config{Unmatched: "explode"}).Validate())
	var nilConfig *Config
	assert.NoError(t, nilConfig.Validate())
}

func TestConfigRoundTrip(t *testing.T) {
	p := &Policy{Overwrite: ModeFail, Unmatched: ModeIgnore, Notify: func(context.Context, Diagnostic, error) {}}
	restored := FromConfig(ToConfig(p))
	assert.Equal(t, ModeFail, restored.Mode(Overwrite))
	assert.Equal(t, ModeIgnore, restored.Mode(Unmatched))
	assert.Nil(t, restored.Notify)
	assert.Nil(t, ToConfig(nil))
	assert.Nil(t, FromConfig(nil))
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	p := Strict()
	ctx := WithPolicy(context.Background(), p)
	assert.Same(t, p, FromContext(ctx))
}
