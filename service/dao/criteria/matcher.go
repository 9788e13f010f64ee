package criteria

import (
	"slices"

	"github.com/viant/pocketflow/service/dao"
)

// Match reports whether value satisfies every parameter called name. A
// parameter value may be a string or a []string (any of). Without such a
// parameter everything matches.
func Match(name, value string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		if values := parameter.Values(); values != nil && !slices.Contains(values, value) {
			return false
		}
	}
	return true
}
