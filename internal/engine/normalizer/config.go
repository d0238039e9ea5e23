// internal/engine/normalizer/config.go
package normalizer

// Config carries the tracking-parameter strip-list. Matching is
// case-insensitive: StripParams are exact query-parameter names, Prefixes
// match any parameter starting with one of them (the utm_ family).
type Config struct {
	StripParams   []string
	StripPrefixes []string
}

func DefaultConfig() *Config {
	return &Config{
		StripParams:   []string{"gclid", "fbclid", "msclkid", "mc_eid", "igshid", "ref", "ref_src"},
		StripPrefixes: []string{"utm_"},
	}
}
