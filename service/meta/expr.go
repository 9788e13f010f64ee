package meta

import (
	"os"
	"regexp"
)

// envExpr matches ${env.KEY} and ${env.KEY:-fallback}.
var envExpr = regexp.MustCompile(`\$\{env\.([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Expand substitutes environment references in a config document:
// ${env.KEY} becomes the value of KEY ("" when unset) and
// ${env.KEY:-fallback} uses fallback when KEY is unset or empty. Other
// $-expressions are left untouched.
func Expand(document string) string {
	return envExpr.ReplaceAllStringFunc(document, func(expr string) string {
		match := envExpr.FindStringSubmatch(expr)
		if value := os.Getenv(match[1]); value != "" {
			return value
		}
		return match[2]
	})
}
