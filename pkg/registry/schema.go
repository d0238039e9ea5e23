// pkg/registry/schema.go
package registry

// ProviderRegistry is the on-disk catalog of search sources. The server
// builds its provider set from the enabled entries at startup.
type ProviderRegistry struct {
	Version     string         `json:"version"`
	LastUpdated string         `json:"lastUpdated"`
	Providers   []ProviderSpec `json:"providers"`
}

type ProviderSpec struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Type        string   `json:"type"` // serpapi, google_cse, elasticsearch, postgres
	Engine      string   `json:"engine,omitempty"`
	Enabled     bool     `json:"enabled"`
	Tags        []string `json:"tags,omitempty"`
}

// Schema is the JSON Schema every registry file must satisfy.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "providers"],
  "properties": {
    "version": {"type": "string"},
    "lastUpdated": {"type": "string"},
    "providers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "type", "enabled"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "displayName": {"type": "string"},
          "type": {"enum": ["serpapi", "google_cse", "elasticsearch", "postgres"]},
          "engine": {"type": "string"},
          "enabled": {"type": "boolean"},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`
