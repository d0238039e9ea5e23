// internal/engine/dedupe/dedupe.go

// Package dedupe groups per-source results that share a normalized URL
// identity into merged documents carrying per-source rank/score evidence.
package dedupe

import (
	"errors"

	"metasearch-engine/internal/engine/normalizer"
	"metasearch-engine/internal/models"
)

var ErrNilNormalizer = errors.New("normalizer cannot be nil")

// DropStats counts records skipped during a merge. Malformed records are
// dropped with a warning, never fatal to the run.
type DropStats struct {
	InvalidURLs int
}

type Deduper struct {
	normalizer *normalizer.Normalizer
}

func New(n *normalizer.Normalizer) (*Deduper, error) {
	if n == nil {
		return nil, ErrNilNormalizer
	}
	return &Deduper{normalizer: n}, nil
}

// Dedupe merges all source lists into one MergedDocument per normalized
// key. Iteration is stable: source order as given, then rank order within
// each source, so display fields are first-seen-wins regardless of how
// evidence arrives. The returned order is insertion order; ranking is the
// fusion engine's job.
func (d *Deduper) Dedupe(lists []models.SourceList) ([]*models.MergedDocument, DropStats) {
	var stats DropStats
	seen := make(map[models.NormalizedKey]*models.MergedDocument)
	var docs []*models.MergedDocument

	for _, list := range lists {
		for _, result := range list.Results {
			key, err := d.normalizer.Normalize(result.URL)
			if err != nil {
				stats.InvalidURLs++
				continue
			}

			doc, ok := seen[key]
			if !ok {
				doc = &models.MergedDocument{
					Key:        key,
					DisplayURL: result.URL,
					Title:      result.Title,
					Snippet:    result.Snippet,
					Evidence:   make(map[string]models.Evidence),
				}
				seen[key] = doc
				docs = append(docs, doc)
			}

			mergeEvidence(doc, list.SourceID, result)
		}
	}

	return docs, stats
}

// mergeEvidence records one source's contribution, keeping at most one
// entry per source. When the same provider lists the same key twice, the
// smaller rank wins together with its paired score; a strictly better
// score from the duplicate is kept even when its rank loses.
func mergeEvidence(doc *models.MergedDocument, sourceID string, result models.SourceResult) {
	existing, ok := doc.Evidence[sourceID]
	if !ok {
		doc.Evidence[sourceID] = models.Evidence{Rank: result.Rank, Score: result.Score}
		return
	}

	merged := existing
	if result.Rank < existing.Rank {
		merged.Rank = result.Rank
	}
	if betterScore(result.Score, existing.Score) {
		merged.Score = result.Score
	}
	doc.Evidence[sourceID] = merged
}

func betterScore(candidate, current *float64) bool {
	if candidate == nil {
		return false
	}
	if current == nil {
		return true
	}
	return *candidate > *current
}
