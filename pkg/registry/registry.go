// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "metasearch-engine/internal/common/errors"
)

// Load reads a registry file, validates it against the schema and decodes
// it. An invalid file is a startup error, never silently tolerated.
func Load(path string) (*ProviderRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes raw registry JSON.
func Parse(data []byte) (*ProviderRegistry, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(Schema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, stderrors.NewRegistryInvalidError(err.Error())
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, stderrors.NewRegistryInvalidError(strings.Join(details, "; "))
	}

	var reg ProviderRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, stderrors.NewRegistryInvalidError(err.Error())
	}

	if err := checkUniqueIDs(&reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Enabled returns the specs the server should build providers from.
func (r *ProviderRegistry) Enabled() []ProviderSpec {
	var enabled []ProviderSpec
	for _, p := range r.Providers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

func checkUniqueIDs(reg *ProviderRegistry) error {
	seen := make(map[string]bool, len(reg.Providers))
	for _, p := range reg.Providers {
		if seen[p.ID] {
			return stderrors.NewRegistryInvalidError(fmt.Sprintf("duplicate provider id %q", p.ID))
		}
		seen[p.ID] = true
	}
	return nil
}
