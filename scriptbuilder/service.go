package scriptbuilder

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Service orchestrates loading, matching and rendering for one knowledge
// base. The parsed-table cache is explicit and per-service, keyed by the
// SHA-1 of the raw bytes: re-uploading identical content skips the parse,
// while any byte change misses. Two logically different tables with the
// same bytes are indistinguishable by design of the key.
type Service struct {
	cfgMu sync.RWMutex
	cfg   Config

	kbMu     sync.RWMutex
	articles []Article

	kbCache *lru.Cache[string, []Article]

	logger *log.Logger
}

// NewService constructs a service with the given configuration.
func NewService(cfg Config, logger *log.Logger) (*Service, error) {
	cfg.ApplyDefaults()
	cache, err := lru.New[string, []Article](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create kb cache: %w", err)
	}
	return &Service{cfg: cfg, kbCache: cache, logger: logger}, nil
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration and returns the sanitized copy.
func (s *Service) UpdateConfig(cfg Config) Config {
	cfg.ApplyDefaults()
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
	return cfg
}

// ReplaceKB swaps the loaded knowledge base.
func (s *Service) ReplaceKB(articles []Article) {
	copied := make([]Article, len(articles))
	copy(copied, articles)
	s.kbMu.Lock()
	s.articles = copied
	s.kbMu.Unlock()
	s.logf("knowledge base replaced (%d articles)", len(copied))
}

// Articles returns a snapshot of the loaded knowledge base.
func (s *Service) Articles() []Article {
	s.kbMu.RLock()
	defer s.kbMu.RUnlock()
	out := make([]Article, len(s.articles))
	copy(out, s.articles)
	return out
}

// ArticleCount returns how many rows are loaded.
func (s *Service) ArticleCount() int {
	s.kbMu.RLock()
	defer s.kbMu.RUnlock()
	return len(s.articles)
}

// LoadKBFile reads a knowledge-base file and makes it current. The delimiter
// follows the file extension, same as ParseKBFile.
func (s *Service) LoadKBFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read kb file: %w", err)
	}
	return s.loadKB(data, delimiterFor(path))
}

// LoadKBBytes parses uploaded CSV bytes and makes the table current,
// consulting the content-keyed cache first.
func (s *Service) LoadKBBytes(data []byte) (int, error) {
	return s.loadKB(data, ',')
}

// LoadKBBytesNamed parses uploaded bytes using the delimiter implied by the
// source file name, so a .tsv upload is read as tab-separated.
func (s *Service) LoadKBBytesNamed(name string, data []byte) (int, error) {
	return s.loadKB(data, delimiterFor(name))
}

func (s *Service) loadKB(data []byte, comma rune) (int, error) {
	key := contentKey(data, comma)
	if articles, ok := s.kbCache.Get(key); ok {
		s.logf("kb cache hit (%d articles)", len(articles))
		s.ReplaceKB(articles)
		return len(articles), nil
	}
	articles, err := parseKB(bytes.NewReader(data), comma, KBParseOptions{})
	if err != nil {
		return 0, fmt.Errorf("parse kb: %w", err)
	}
	s.kbCache.Add(key, articles)
	s.ReplaceKB(articles)
	return len(articles), nil
}

// contentKey includes the delimiter: the same bytes read as CSV and as TSV
// are different tables.
func contentKey(data []byte, comma rune) string {
	sum := sha1.Sum(data)
	return string(comma) + hex.EncodeToString(sum[:])
}

// BuildScript runs one request: validate the query, rank the knowledge base
// and render the best match plus alternatives. The three failure modes keep
// distinct sentinels so the UI can word each one differently.
func (s *Service) BuildScript(in BuildInput) (*BuildResult, error) {
	query := NormalizeText(in.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	cfg := s.Config()
	articles := s.Articles()
	if len(articles) == 0 {
		return nil, ErrNoKB
	}

	start := time.Now()
	matches := MatchArticles(query, articles, cfg)
	if len(matches) == 0 {
		s.logf("no match >= %d across %d articles", cfg.MinScore, len(articles))
		return nil, ErrNoMatch
	}
	matchedAt := time.Now()

	input := ScriptInput{AgentName: in.AgentName, TicketNumber: in.TicketNumber}
	best := matches[0]
	script, err := RenderScript(best.Article, input, cfg.Mode)
	if err != nil {
		return nil, err
	}
	alternatives := make([]Alternative, 0, len(matches)-1)
	for _, m := range matches[1:] {
		alt, err := RenderScript(m.Article, input, cfg.Mode)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, Alternative{Match: m, Script: alt})
	}

	s.logf("matched %s (score %d, %d alternatives, %.0fms)",
		best.Article.KBID, best.Score, len(alternatives),
		float64(time.Since(start).Microseconds())/1000)
	return &BuildResult{
		Best:         best,
		Script:       script,
		Alternatives: alternatives,
		Metadata:     ArticleMetadata(best.Article, matchedAt),
	}, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
