package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/pocketflow/flow"
	"gopkg.in/yaml.v3"
)

func TestExtract(t *testing.T) {
	decide := flow.NewNode(nil, flow.WithName("decide"))
	search := flow.NewNode(nil, flow.WithName("search"))
	answer := flow.NewNode(nil, flow.WithName("answer"))
	decide.AddSuccessor(search, "search")
	decide.AddSuccessor(answer, "answer")
	search.AddSuccessor(decide, "decide")

	summarize := flow.NewNode(nil, flow.WithName("summarize"))
	inner := flow.NewFlow(summarize, flow.WithName("inner"))
	answer.AddSuccessor(inner)

	g := Extract(flow.NewFlow(decide))
	labels := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		labels[i] = n.Label
	}
	assert.Equal(t, []string{"decide", "answer", "inner", "summarize", "search"}, labels)
	require.NotNil(t, g.Nodes[2].Entry)
	assert.Equal(t, 3, *g.Nodes[2].Entry)
	assert.Equal(t, flow.KindFlow, g.Nodes[2].Kind)
	assert.Equal(t, []*Edge{
		{From: 1, To: 2},
		{From: 0, To: 1, Label: "answer"},
		{From: 4, To: 0, Label: "decide"},
		{From: 0, To: 4, Label: "search"},
	}, g.Edges)

	data, err := g.JSON()
	require.NoError(t, err)
	decoded := &Graph{}
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Len(t, decoded.Nodes, 5)

	data, err = g.YAML()
	require.NoError(t, err)
	asMap := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal(data, &asMap))
	assert.Len(t, asMap["edges"], 4)
}

func TestExtract_Empty(t *testing.T) {
	var testCases = []struct {
		description string
		unit        flow.Unit
		expectNodes int
	}{
		{description: "nil unit", unit: nil},
		{description: "typed nil node", unit: (*flow.Node)(nil)},
		{description: "flow with typed nil entry", unit: flow.NewFlow((*flow.Node)(nil))},
		{description: "flow with nil entry", unit: flow.NewFlow(nil)},
		{description: "nested flow with typed nil entry", unit: flow.NewFlow(flow.NewFlow((*flow.Node)(nil), flow.WithName("inner"))), expectNodes: 1},
	}
	for _, testCase := range testCases {
		g := Extract(testCase.unit)
		assert.Len(t, g.Nodes, testCase.expectNodes, testCase.description)
		assert.Empty(t, g.Edges, testCase.description)
		if testCase.expectNodes > 0 {
			assert.Nil(t, g.Nodes[0].Entry, testCase.description)
		}
	}
}
