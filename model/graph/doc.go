// Package graph extracts the static shape of a flow: its units and the
// labelled transitions between them, exportable as JSON or YAML.
package graph
