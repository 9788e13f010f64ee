package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	var testCases = []struct {
		description string
		env         map[string]string
		document    string
		expect      string
	}{
		{
			description: "log level from env",
			env:         map[string]string{"PF_LEVEL": "debug"},
			document:    "level: ${env.PF_LEVEL}",
			expect:      "level: debug",
		},
		{
			description: "unset without fallback",
			document:    "level: ${env.PF_UNSET}",
			expect:      "level: ",
		},
		{
			description: "unset with fallback",
			document:    "wait: ${env.PF_UNSET:-250ms}",
			expect:      "wait: 250ms",
		},
		{
			description: "empty with fallback",
			env:         map[string]string{"PF_EMPTY": ""},
			document:    "unmatched: ${env.PF_EMPTY:-warn}",
			expect:      "unmatched: warn",
		},
		{
			description: "set value wins over fallback",
			env:         map[string]string{"PF_RETRIES": "5"},
			document:    "maxRetries: ${env.PF_RETRIES:-1}",
			expect:      "maxRetries: 5",
		},
		{
			description: "several references",
			env:         map[string]string{"PF_NS": "taboo", "PF_URL": "mem://localhost/runs"},
			document:    "namespace: ${env.PF_NS}\nurl: ${env.PF_URL}/${env.PF_NS}",
			expect:      "namespace: taboo\nurl: mem://localhost/runs/taboo",
		},
		{
			description: "non env expressions untouched",
			env:         map[string]string{"HOME": "/root"},
			document:    "a: $HOME b: ${HOME} c: ${env.} d: ${env.1X}",
			expect:      "a: $HOME b: ${HOME} c: ${env.} d: ${env.1X}",
		},
		{
			description: "unterminated reference untouched",
			env:         map[string]string{"PF_LEVEL": "debug"},
			document:    "level: ${env.PF_LEVEL",
			expect:      "level: ${env.PF_LEVEL",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			for k, v := range testCase.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, testCase.expect, Expand(testCase.document))
		})
	}
}
