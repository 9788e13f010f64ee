package graph

import (
	"encoding/json"
	"sort"

	"github.com/viant/pocketflow/flow"
	"gopkg.in/yaml.v3"
)

type (
	// Node is a unit of the extracted graph.
	Node struct {
		ID    int    `json:"id" yaml:"id"`
		Label string `json:"label" yaml:"label"`
		Kind  string `json:"kind" yaml:"kind"`
		Entry *int   `json:"entry,omitempty" yaml:"entry,omitempty"` // start unit of a nested flow
	}

	// Edge is a successor transition; Label is empty for the default action.
	Edge struct {
		From  int    `json:"from" yaml:"from"`
		To    int    `json:"to" yaml:"to"`
		Label string `json:"label,omitempty" yaml:"label,omitempty"`
	}

	// Graph is the static shape of a flow, suitable for visualisation.
	Graph struct {
		Nodes []*Node `json:"nodes" yaml:"nodes"`
		Edges []*Edge `json:"edges" yaml:"edges"`
	}
)

// Extract walks the units reachable from u. When u is a flow, the walk starts
// at its entry unit. Units are numbered in depth-first discovery order,
// visiting successors in sorted label order. Nil units, including a flow
// without an entry, are skipped.
func Extract(u flow.Unit) *Graph {
	ret := &Graph{Nodes: []*Node{}, Edges: []*Edge{}}
	if flow.IsNil(u) {
		return ret
	}
	if root, ok := u.(interface{ Start() flow.Unit }); ok {
		u = root.Start()
	}
	ids := map[flow.Unit]int{}
	var visit func(u flow.Unit) int
	visit = func(u flow.Unit) int {
		if id, ok := ids[u]; ok {
			return id
		}
		node := &Node{ID: len(ret.Nodes), Label: u.Name(), Kind: u.Kind()}
		ids[u] = node.ID
		ret.Nodes = append(ret.Nodes, node)
		if root, ok := u.(interface{ Start() flow.Unit }); ok && !flow.IsNil(root.Start()) {
			entry := visit(root.Start())
			node.Entry = &entry
		}
		successors := u.Successors()
		labels := make([]string, 0, len(successors))
		for label := range successors {
			labels = append(labels, string(label))
		}
		sort.Strings(labels)
		for _, label := range labels {
			next := successors[flow.Action(label)]
			if flow.IsNil(next) {
				continue
			}
			to := visit(next)
			edge := &Edge{From: node.ID, To: to}
			if label != string(flow.DefaultAction) {
				edge.Label = label
			}
			ret.Edges = append(ret.Edges, edge)
		}
		return node.ID
	}
	if !flow.IsNil(u) {
		visit(u)
	}
	return ret
}

// JSON encodes the graph.
func (g *Graph) JSON() ([]byte, error) {
	return json.Marshal(g)
}

// YAML encodes the graph.
func (g *Graph) YAML() ([]byte, error) {
	return yaml.Marshal(g)
}
