// internal/models/result.go
package models

// SourceResult is one entry as returned by a single search provider.
// Rank is the 1-based position in that provider's list and is unique
// within it. Score is the provider's raw relevance value on its own
// scale; nil when the provider exposes no numeric score.
type SourceResult struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Snippet  string   `json:"snippet"`
	SourceID string   `json:"sourceId"`
	Rank     int      `json:"rank"`
	Score    *float64 `json:"score,omitempty"`
}

// SourceList is one provider's ordered result list.
type SourceList struct {
	SourceID string         `json:"sourceId"`
	Results  []SourceResult `json:"results"`
}

// NormalizedKey is the canonical string identity of a URL. Two results
// with equal keys are the same document.
type NormalizedKey = string

// Evidence is one source's (rank, score) contribution to a merged
// document.
type Evidence struct {
	Rank  int      `json:"rank"`
	Score *float64 `json:"score,omitempty"`
}

// MergedDocument is one fused candidate: the canonical key, the display
// fields of the first record seen for that key, and per-source rank/score
// evidence with at most one entry per source. It lives for a single
// fusion run.
type MergedDocument struct {
	Key        NormalizedKey       `json:"normalizedKey"`
	DisplayURL string              `json:"displayUrl"`
	Title      string              `json:"title"`
	Snippet    string              `json:"snippet"`
	Evidence   map[string]Evidence `json:"evidence"`
}

// SourceIDs returns the ids of the sources contributing evidence, in no
// particular order.
func (d *MergedDocument) SourceIDs() []string {
	ids := make([]string, 0, len(d.Evidence))
	for id := range d.Evidence {
		ids = append(ids, id)
	}
	return ids
}

// RankedResult is one item of the final fused ranking.
type RankedResult struct {
	Document    *MergedDocument `json:"document"`
	FusionScore float64         `json:"fusionScore"`
	FinalRank   int             `json:"finalRank"`
}
