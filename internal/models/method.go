// internal/models/method.go
package models

import "fmt"

// FusionMethod selects how per-source evidence is combined into one score.
type FusionMethod string

const (
	MethodRRF     FusionMethod = "rrf"
	MethodCombSUM FusionMethod = "combsum"
)

// ParseMethod maps a config/API string to a FusionMethod. Unknown values
// are an error, never silently defaulted.
func ParseMethod(s string) (FusionMethod, error) {
	switch FusionMethod(s) {
	case MethodRRF:
		return MethodRRF, nil
	case MethodCombSUM:
		return MethodCombSUM, nil
	default:
		return "", fmt.Errorf("unknown fusion method %q", s)
	}
}
