package scriptbuilder

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Default per-field weights for weighted scoring. Title and keywords carry
// the caller's own words, classification fields narrow the bucket, and the
// long procedural texts act as weak signals.
var defaultFieldWeights = map[string]int{
	"title":         3,
	"keywords":      3,
	"kb_id":         2,
	"tech_app":      2,
	"category":      2,
	"action":        2,
	"catalog":       1,
	"service_group": 1,
	"probing":       1,
	"steps":         1,
}

var articleGetters = map[string]func(Article) string{
	"kb_id":         func(a Article) string { return a.KBID },
	"title":         func(a Article) string { return a.Title },
	"keywords":      func(a Article) string { return a.Keywords },
	"catalog":       func(a Article) string { return a.Catalog },
	"service_group": func(a Article) string { return a.ServiceGroup },
	"category":      func(a Article) string { return a.Category },
	"action":        func(a Article) string { return a.Action },
	"tech_app":      func(a Article) string { return a.TechApp },
	"probing":       func(a Article) string { return a.Probing },
	"steps":         func(a Article) string { return a.Steps },
}

// mergeFieldWeights overlays user overrides onto the default weights.
// Unknown field names and non-positive weights are ignored.
func mergeFieldWeights(overrides map[string]int) map[string]int {
	merged := make(map[string]int, len(defaultFieldWeights))
	for field, w := range defaultFieldWeights {
		merged[field] = w
	}
	for field, w := range overrides {
		if w <= 0 {
			continue
		}
		if _, ok := articleGetters[field]; !ok {
			continue
		}
		merged[field] = w
	}
	return merged
}

// similarity is the 0-100 token-set ratio between two texts. Both sides go
// through NFKC normalization and the library's cleanse pass (lowercase,
// strip punctuation), so "racf;password;reset" and "RACF password reset"
// compare as the same token set.
func similarity(query, text string) int {
	return fuzzy.TokenSetRatio(NormalizeText(query), NormalizeText(text), true, true)
}

// WeightedScore computes the 0-100 weighted similarity between a query and
// an article. Empty fields contribute nothing to the numerator but keep
// their full weight in the denominator, so sparse rows score lower than
// complete ones.
func WeightedScore(query string, a Article, weights map[string]int) int {
	if len(weights) == 0 {
		weights = defaultFieldWeights
	}
	total := 0
	maxTotal := 0
	for field, w := range weights {
		get, ok := articleGetters[field]
		if !ok {
			continue
		}
		maxTotal += 100 * w
		text := get(a)
		if text == "" {
			continue
		}
		total += similarity(query, text) * w
	}
	if maxTotal == 0 {
		return 0
	}
	return total * 100 / maxTotal
}

// SimpleScore computes a single similarity against the concatenation of the
// identifying fields, with no per-field weighting.
func SimpleScore(query string, a Article) int {
	parts := make([]string, 0, 3)
	for _, text := range []string{a.KBID, a.Title, a.Keywords} {
		if text != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return 0
	}
	return similarity(query, strings.Join(parts, " "))
}

// MatchArticles scores every article against the query, keeps those at or
// above cfg.MinScore and returns at most cfg.AltCount matches sorted by
// descending score. The sort is stable: ties keep original row order.
func MatchArticles(query string, articles []Article, cfg Config) []Match {
	cfg.ApplyDefaults()
	weights := mergeFieldWeights(cfg.FieldWeights)
	matches := make([]Match, 0, len(articles))
	for i, a := range articles {
		var score int
		switch cfg.Mode {
		case ModeSimple:
			score = SimpleScore(query, a)
		default:
			score = WeightedScore(query, a, weights)
		}
		if score < cfg.MinScore {
			continue
		}
		matches = append(matches, Match{Index: i, Score: score, Article: a})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > cfg.AltCount {
		matches = matches[:cfg.AltCount]
	}
	return matches
}
