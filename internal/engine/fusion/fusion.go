// internal/engine/fusion/fusion.go

// Package fusion computes a consolidated ranking over merged documents
// from their per-source evidence, using Reciprocal Rank Fusion or CombSUM.
package fusion

import (
	"sort"
	"time"

	stderrors "metasearch-engine/internal/common/errors"
	"metasearch-engine/internal/common/logger"
	"metasearch-engine/internal/models"
)

type Engine struct {
	params Params
	logger logger.Logger
}

// New validates params once at construction. Fuse re-checks them so an
// Engine built from a zero Params still fails loudly instead of ranking
// garbage.
func New(params Params, log logger.Logger) (*Engine, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{
		params: params,
		logger: log.WithFields(map[string]interface{}{"method": string(params.Method)}),
	}, nil
}

func validateParams(params Params) error {
	switch params.Method {
	case models.MethodRRF:
		if params.K <= 0 {
			return stderrors.NewInvalidFusionParameterError("k", params.K)
		}
	case models.MethodCombSUM:
	default:
		return stderrors.NewUnknownFusionMethodError(string(params.Method))
	}
	return nil
}

// Fuse scores every document from its evidence, sorts descending by
// fusion score and assigns 1-based final ranks. Missing scores and empty
// source lists are never errors; an empty input yields an empty output.
func (e *Engine) Fuse(docs []*models.MergedDocument) ([]models.RankedResult, error) {
	if err := validateParams(e.params); err != nil {
		return nil, err
	}

	start := time.Now()

	results := make([]models.RankedResult, 0, len(docs))
	switch e.params.Method {
	case models.MethodRRF:
		for _, doc := range docs {
			results = append(results, models.RankedResult{
				Document:    doc,
				FusionScore: rrfScore(doc, e.params.K),
			})
		}
	case models.MethodCombSUM:
		norms := sourceNorms(docs)
		for _, doc := range docs {
			results = append(results, models.RankedResult{
				Document:    doc,
				FusionScore: combSumScore(doc, norms),
			})
		}
	}

	sortRanked(results)
	for i := range results {
		results[i].FinalRank = i + 1
	}

	if e.params.MaxResults > 0 && len(results) > e.params.MaxResults {
		results = results[:e.params.MaxResults]
	}

	duration := time.Since(start).Milliseconds()
	e.logger.Debug("fusion completed", map[string]interface{}{
		"inputCount":  len(docs),
		"outputCount": len(results),
		"durationMs":  duration,
	})
	if duration > 500 {
		e.logger.Warn("fusion exceeded 500ms", map[string]interface{}{
			"inputCount": len(docs),
			"durationMs": duration,
		})
	}

	return results, nil
}

// rrfScore sums 1/(k + rank) over the sources carrying the document.
// Sources where it does not appear simply contribute nothing; absence is
// not penalized further. Rank-only input keeps RRF scale-free across
// providers with incomparable raw scores.
func rrfScore(doc *models.MergedDocument, k int) float64 {
	score := 0.0
	for _, ev := range doc.Evidence {
		score += 1.0 / float64(k+ev.Rank)
	}
	return score
}

// sourceNorm holds one source's min-max bounds over the raw scores it
// supplied this run. Scored is false for providers that never expose a
// numeric score; those fall back to 1/rank uniformly.
type sourceNorm struct {
	lo, hi float64
	scored bool
}

func sourceNorms(docs []*models.MergedDocument) map[string]sourceNorm {
	norms := make(map[string]sourceNorm)
	for _, doc := range docs {
		for sourceID, ev := range doc.Evidence {
			if ev.Score == nil {
				continue
			}
			n, ok := norms[sourceID]
			if !ok {
				norms[sourceID] = sourceNorm{lo: *ev.Score, hi: *ev.Score, scored: true}
				continue
			}
			if *ev.Score < n.lo {
				n.lo = *ev.Score
			}
			if *ev.Score > n.hi {
				n.hi = *ev.Score
			}
			norms[sourceID] = n
		}
	}
	return norms
}

// combSumScore sums per-source relevance: the min-max normalized raw
// score when the source supplied one, otherwise 1/rank. Raw scores across
// providers use different scales and must not be compared directly, so
// each source is normalized before summing.
func combSumScore(doc *models.MergedDocument, norms map[string]sourceNorm) float64 {
	score := 0.0
	for sourceID, ev := range doc.Evidence {
		if ev.Score == nil {
			score += 1.0 / float64(ev.Rank)
			continue
		}

		n := norms[sourceID]
		if n.hi == n.lo {
			// A source whose scores are all identical carries no ordering
			// information; every scored document gets 1.0.
			score += 1.0
			continue
		}
		score += (*ev.Score - n.lo) / (n.hi - n.lo)
	}
	return score
}

// sortRanked orders by fusion score descending. On exact score equality
// broader consensus wins (more distinct contributing sources), then the
// normalized key ascending. The order is total and deterministic,
// independent of input iteration order.
func sortRanked(results []models.RankedResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FusionScore != b.FusionScore {
			return a.FusionScore > b.FusionScore
		}
		if len(a.Document.Evidence) != len(b.Document.Evidence) {
			return len(a.Document.Evidence) > len(b.Document.Evidence)
		}
		return a.Document.Key < b.Document.Key
	})
}
