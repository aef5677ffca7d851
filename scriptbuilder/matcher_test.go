package scriptbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func racfArticle() Article {
	return Article{
		KBID:         "RACF-0001",
		Title:        "RACF Password Reset",
		Keywords:     "racf;password;pin;reset",
		Catalog:      "Accounts & Access",
		ServiceGroup: "Identity Management",
		Category:     "Password Reset",
		Action:       "Reset",
		TechApp:      "RACF",
		Probing:      "Do you know your PIN;When did it stop working",
		Steps:        "Verify identity;Reset RACF password;Confirm login",
	}
}

func printerArticle() Article {
	return Article{
		KBID:     "PRN-0040",
		Title:    "Printer Paper Jam",
		Keywords: "printer;jam;paper;tray",
		Catalog:  "Hardware",
		Category: "Printing",
		Action:   "Clear",
		TechApp:  "HP LaserJet",
		Steps:    "Open tray;Remove paper;Restart printer",
	}
}

func TestWeightedScoreRACFQuery(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	articles := []Article{printerArticle(), racfArticle()}
	matches := MatchArticles("RACF password reset, PIN known", articles, cfg)

	require.NotEmpty(t, matches)
	assert.Equal(t, "RACF-0001", matches[0].Article.KBID)
	assert.GreaterOrEqual(t, matches[0].Score, cfg.MinScore)
}

func TestWeightedScoreSelfMatchRanksFirst(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	cfg.MinScore = 1

	articles := []Article{printerArticle(), racfArticle()}
	for _, a := range articles {
		query := a.Title + " " + a.Keywords
		matches := MatchArticles(query, articles, cfg)
		require.NotEmpty(t, matches, "query %q", query)
		assert.Equal(t, a.KBID, matches[0].Article.KBID, "query %q", query)
	}
}

func TestWeightedScorePenalizesEmptyFields(t *testing.T) {
	full := racfArticle()
	sparse := Article{Title: full.Title, Keywords: full.Keywords}

	query := "RACF password reset, PIN known"
	fullScore := WeightedScore(query, full, nil)
	sparseScore := WeightedScore(query, sparse, nil)

	assert.Greater(t, fullScore, sparseScore)
}

func TestWeightedScoreEmptyArticle(t *testing.T) {
	assert.Equal(t, 0, WeightedScore("anything", Article{}, nil))
}

func TestSimpleScoreExactIdentity(t *testing.T) {
	a := printerArticle()
	assert.Equal(t, 100, SimpleScore("printer jam paper tray", a))
	assert.Equal(t, 0, SimpleScore("printer jam", Article{}))
}

func TestScoringIgnoresCaseAndPunctuation(t *testing.T) {
	a := printerArticle()
	assert.Equal(t, 100, SimpleScore("PRINTER jam, PAPER tray!", a))

	upper := WeightedScore("PRINTER PAPER JAM", a, nil)
	lower := WeightedScore("printer paper jam", a, nil)
	assert.Equal(t, lower, upper)
	assert.Greater(t, upper, 0)
}

func TestScoringNormalizesFieldText(t *testing.T) {
	a := Article{KBID: "KB1", Title: "ＰＲＩＮＴＥＲ　ＪＡＭ"}
	assert.Equal(t, 100, SimpleScore("printer jam", a))
}

func TestMatchArticlesThresholdAndTruncation(t *testing.T) {
	cfg := Config{Mode: ModeSimple, MinScore: 70, AltCount: 2}

	identical := printerArticle()
	articles := []Article{identical, identical, identical, identical, identical}
	matches := MatchArticles("printer jam", articles, cfg)

	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, cfg.MinScore)
	}
}

func TestMatchArticlesStableDescendingOrder(t *testing.T) {
	cfg := Config{Mode: ModeSimple, MinScore: 10, AltCount: 5}

	articles := []Article{printerArticle(), racfArticle(), printerArticle()}
	matches := MatchArticles("printer paper jam", articles, cfg)

	require.NotEmpty(t, matches)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
		if matches[i-1].Score == matches[i].Score {
			assert.Less(t, matches[i-1].Index, matches[i].Index, "ties keep row order")
		}
	}
	assert.Equal(t, 0, matches[0].Index)
}

func TestMatchArticlesEmptyTable(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	assert.Empty(t, MatchArticles("any query at all", nil, cfg))
	assert.Empty(t, MatchArticles("any query at all", []Article{}, cfg))
}

func TestMatchArticlesBelowThreshold(t *testing.T) {
	cfg := Config{Mode: ModeSimple, MinScore: 70, AltCount: 5}

	matches := MatchArticles("totally unrelated zebra migration", []Article{printerArticle()}, cfg)
	assert.Empty(t, matches)
}

func TestMergeFieldWeights(t *testing.T) {
	merged := mergeFieldWeights(map[string]int{
		"title":    5,
		"unknown":  9,
		"keywords": 0,
	})

	assert.Equal(t, 5, merged["title"])
	assert.Equal(t, defaultFieldWeights["keywords"], merged["keywords"])
	assert.NotContains(t, merged, "unknown")
	assert.Len(t, merged, len(defaultFieldWeights))
}
