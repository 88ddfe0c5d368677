package store

import (
	"math"
	"sort"
	"strings"
)

// Search scores, highest applicable tier wins; tiers are never summed.
const (
	scoreExact          = 100.0
	scoreQueryInEntity  = 80.0
	scoreEntityInQuery  = 70.0
	scoreShortEntity    = 45.0 // entity-in-query demoted for disproportionately short entities
	scoreTokensEqual    = 75.0
	scoreQueryTokensSub = 60.0
	scoreEntityTokenSub = 55.0
	scorePartialBase    = 50.0
	scoreTokenContains  = 30.0
	scoreTokenContained = 25.0
	trigramThreshold    = 0.3
	trigramBaseScore    = 20.0
)

// SearchResult is one fuzzy-search hit.
type SearchResult struct {
	Entity           string  `json:"entity"`
	Score            float64 `json:"score"`
	ChunkCount       int     `json:"chunk_count"`
	GraphConnections int     `json:"graph_connections"`
}

// SearchEntities performs tiered fuzzy matching of query against every
// known entity name. Tiers, highest applicable wins:
//
//  1. exact case-insensitive equality
//  2. substring containment either way, with a demotion when the entity
//     is disproportionately short relative to the query
//  3. CamelCase-aware token-set comparison
//  4. individual-token substring matches (tokens of length >= 3)
//  5. character-trigram Jaccard fallback above 0.3 similarity
//
// Results are ordered by score, then chunk-occurrence count, then name,
// and truncated to limit.
func (s *Store) SearchEntities(query string, limit int) []SearchResult {
	if limit <= 0 {
		limit = 20
	}
	qLower := strings.ToLower(query)
	qTokens := TokenSet(query)

	var results []SearchResult
	for entLC, canonical := range s.entityLC {
		score := scoreEntity(qLower, qTokens, entLC, s.entityTokens[entLC])
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			Entity:           canonical,
			Score:            math.Round(score*10) / 10,
			ChunkCount:       len(s.snap.Index[canonical]),
			GraphConnections: s.degree(canonical),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.ChunkCount != b.ChunkCount {
			return a.ChunkCount > b.ChunkCount
		}
		return a.Entity < b.Entity
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func scoreEntity(qLower string, qTokens map[string]struct{}, entLC string, entTokens map[string]struct{}) float64 {
	if qLower == entLC {
		return scoreExact
	}
	if strings.Contains(entLC, qLower) {
		return scoreQueryInEntity
	}
	if strings.Contains(qLower, entLC) {
		// Penalize very short entities swallowed by long queries:
		// "Biznes" inside "biznes validator" must rank below the full
		// token match.
		if float64(len(entLC)) < float64(len(qLower))*0.6 {
			return scoreShortEntity
		}
		return scoreEntityInQuery
	}

	overlap := intersectionSize(qTokens, entTokens)
	if overlap > 0 {
		switch {
		case overlap == len(qTokens) && overlap == len(entTokens):
			return scoreTokensEqual
		case overlap == len(qTokens):
			return scoreQueryTokensSub
		case overlap == len(entTokens):
			return scoreEntityTokenSub
		default:
			larger := len(qTokens)
			if len(entTokens) > larger {
				larger = len(entTokens)
			}
			return scorePartialBase * float64(overlap) / float64(larger)
		}
	}

	var score float64
	for qt := range qTokens {
		if len(qt) < 3 {
			continue
		}
		for et := range entTokens {
			if strings.Contains(et, qt) {
				score = math.Max(score, scoreTokenContains)
			} else if strings.Contains(qt, et) {
				score = math.Max(score, scoreTokenContained)
			}
		}
	}
	if score > 0 {
		return score
	}

	if sim := trigramSimilarity(qLower, entLC); sim > trigramThreshold {
		return trigramBaseScore * sim / trigramThreshold
	}
	return 0
}

func intersectionSize(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
