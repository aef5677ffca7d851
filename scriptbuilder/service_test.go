package scriptbuilder

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config) (*Service, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	svc, err := NewService(cfg, logger)
	require.NoError(t, err)
	return svc, &buf
}

func TestBuildScriptEmptyQuery(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	svc.ReplaceKB([]Article{printerArticle()})

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := svc.BuildScript(BuildInput{Query: query})
		assert.ErrorIs(t, err, ErrEmptyQuery, "query %q", query)
	}
}

func TestBuildScriptNoKB(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	_, err := svc.BuildScript(BuildInput{Query: "printer jam"})
	assert.ErrorIs(t, err, ErrNoKB)
}

func TestBuildScriptNoMatch(t *testing.T) {
	svc, _ := newTestService(t, Config{Mode: ModeSimple})
	svc.ReplaceKB([]Article{printerArticle()})

	_, err := svc.BuildScript(BuildInput{Query: "totally unrelated zebra migration"})
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestBuildScriptBestMatch(t *testing.T) {
	svc, _ := newTestService(t, Config{Mode: ModeSimple})
	svc.ReplaceKB([]Article{racfArticle(), printerArticle()})

	before := time.Now().Add(-time.Second)
	result, err := svc.BuildScript(BuildInput{
		Query:        "printer jam paper tray",
		AgentName:    "Dana",
		TicketNumber: "INC0012345",
	})
	require.NoError(t, err)

	assert.Equal(t, "PRN-0040", result.Best.Article.KBID)
	assert.Contains(t, result.Script, "My name is Dana.")
	assert.Contains(t, result.Script, "the ticket number is INC0012345.")
	assert.Contains(t, result.Script, "[GREETING]")

	assert.Equal(t, "PRN-0040", result.Metadata["kb_id"])
	matchedAt, err := time.Parse(time.RFC3339, result.Metadata["matched_at"])
	require.NoError(t, err)
	assert.False(t, matchedAt.Before(before))
	assert.False(t, matchedAt.After(time.Now().Add(time.Second)))
}

func TestBuildScriptAlternativesCarryScripts(t *testing.T) {
	svc, _ := newTestService(t, Config{Mode: ModeSimple, AltCount: 5, MinScore: 70})
	a := printerArticle()
	svc.ReplaceKB([]Article{a, a, a})

	result, err := svc.BuildScript(BuildInput{Query: "printer jam"})
	require.NoError(t, err)

	require.Len(t, result.Alternatives, 2)
	for _, alt := range result.Alternatives {
		assert.Contains(t, alt.Script, "[GREETING]")
		assert.GreaterOrEqual(t, alt.Match.Score, 70)
	}
}

func TestLoadKBBytesUsesContentCache(t *testing.T) {
	svc, buf := newTestService(t, Config{})
	data := []byte("kb_id,title,keywords\nKB1,VPN Drops,vpn;wifi\n")

	n, err := svc.LoadKBBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, buf.String(), "kb cache hit")

	n, err = svc.LoadKBBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "kb cache hit")

	// A single changed byte is a different table.
	buf.Reset()
	changed := []byte("kb_id,title,keywords\nKB1,VPN Drops,vpn;lan\n")
	_, err = svc.LoadKBBytes(changed)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "kb cache hit")
}

func TestLoadKBFileTSV(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	path := filepath.Join(t.TempDir(), "kb.tsv")
	data := "kb_id\ttitle\tkeywords\nKB9\tEmail Bounce\temail;bounce\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	n, err := svc.LoadKBFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "Email Bounce", svc.Articles()[0].Title)
}

func TestLoadKBBytesNamedHonorsExtension(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	tsv := []byte("kb_id\ttitle\nKB9\tEmail Bounce\n")

	n, err := svc.LoadKBBytesNamed("upload/kb.tsv", tsv)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The same bytes read as CSV collapse to one unmapped column.
	csvRead, err := svc.LoadKBBytes(tsv)
	require.NoError(t, err)
	assert.Equal(t, 0, csvRead)
}

func TestLoadKBBytesParseError(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	_, err := svc.LoadKBBytes(nil)
	assert.Error(t, err)
	assert.Equal(t, 0, svc.ArticleCount())
}

func TestUpdateConfigAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t, Config{})

	got := svc.UpdateConfig(Config{MinScore: -5, AltCount: 0})
	assert.Equal(t, ModeWeighted, got.Mode)
	assert.Equal(t, 70, got.MinScore)
	assert.Equal(t, 5, got.AltCount)
	assert.Equal(t, got, svc.Config())
}

func TestArticlesReturnsSnapshot(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	svc.ReplaceKB([]Article{printerArticle()})

	snapshot := svc.Articles()
	snapshot[0].Title = "mutated"
	assert.Equal(t, "Printer Paper Jam", svc.Articles()[0].Title)
}
