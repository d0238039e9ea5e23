// internal/engine/fusion/config.go
package fusion

import "metasearch-engine/internal/models"

// DefaultRRFK is the conventional RRF smoothing constant; higher k dampens
// the influence of top ranks.
const DefaultRRFK = 60

// Params configures one fusion engine instance. It is passed in
// explicitly per instance so concurrent queries with different settings
// cannot interfere.
type Params struct {
	Method models.FusionMethod

	// K is the RRF constant. Must be > 0 when Method is MethodRRF; it is
	// never silently defaulted here. The config layer owns defaults.
	K int

	// MaxResults caps the returned ranking. Zero means no cap.
	MaxResults int
}

func DefaultParams() Params {
	return Params{
		Method: models.MethodRRF,
		K:      DefaultRRFK,
	}
}
