// internal/engine/normalizer/normalizer.go

// Package normalizer canonicalizes raw result URLs into comparable
// identity keys so near-duplicate URLs from different providers collapse
// to the same document.
package normalizer

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"metasearch-engine/internal/models"
)

var ErrInvalidURL = errors.New("INVALID_URL")

type Normalizer struct {
	strip    map[string]bool
	prefixes []string
}

func New(config *Config) *Normalizer {
	if config == nil {
		config = DefaultConfig()
	}

	strip := make(map[string]bool, len(config.StripParams))
	for _, p := range config.StripParams {
		strip[strings.ToLower(p)] = true
	}

	prefixes := make([]string, 0, len(config.StripPrefixes))
	for _, p := range config.StripPrefixes {
		prefixes = append(prefixes, strings.ToLower(p))
	}

	return &Normalizer{strip: strip, prefixes: prefixes}
}

// Normalize canonicalizes a raw URL into its identity key. It is a pure
// function of the input and idempotent: Normalize(Normalize(u)) yields the
// key unchanged. It fails with ErrInvalidURL only when the input cannot be
// parsed as a URL at all (empty string, missing scheme or host); those
// records are skipped upstream, not fatal to the run.
func (n *Normalizer) Normalize(raw string) (models.NormalizedKey, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: missing scheme or host in %q", ErrInvalidURL, trimmed)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	// Root path "/" becomes empty.
	path := strings.TrimSuffix(u.Path, "/")

	query := u.Query()
	for key := range query {
		if n.stripped(key) {
			query.Del(key)
		}
	}

	// Encode sorts parameters alphabetically by key, which makes
	// key-order-insensitive URLs equal. The fragment is dropped by never
	// being reassembled.
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if encoded := query.Encode(); encoded != "" {
		b.WriteString("?")
		b.WriteString(encoded)
	}

	return b.String(), nil
}

func (n *Normalizer) stripped(param string) bool {
	p := strings.ToLower(param)
	if n.strip[p] {
		return true
	}
	for _, prefix := range n.prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
