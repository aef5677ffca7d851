package scriptbuilder

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// KBParseOptions lets callers pin fields to explicit columns. Keys are the
// canonical field names; values are header names or 1-based "#N" indices.
// Fields left out are auto-detected from the header row.
type KBParseOptions struct {
	Columns map[string]string
}

// KBFileMetadata provides header information and the detected field mapping.
type KBFileMetadata struct {
	Columns  []string
	Detected map[string]string
}

var articleSetters = map[string]func(*Article, string){
	"kb_id":           func(a *Article, v string) { a.KBID = v },
	"title":           func(a *Article, v string) { a.Title = v },
	"keywords":        func(a *Article, v string) { a.Keywords = v },
	"catalog":         func(a *Article, v string) { a.Catalog = v },
	"service_group":   func(a *Article, v string) { a.ServiceGroup = v },
	"category":        func(a *Article, v string) { a.Category = v },
	"action":          func(a *Article, v string) { a.Action = v },
	"tech_app":        func(a *Article, v string) { a.TechApp = v },
	"os":              func(a *Article, v string) { a.OS = v },
	"probing":         func(a *Article, v string) { a.Probing = v },
	"steps":           func(a *Article, v string) { a.Steps = v },
	"urls":            func(a *Article, v string) { a.URLs = v },
	"routing_group":   func(a *Article, v string) { a.RoutingGroup = v },
	"routing_notes":   func(a *Article, v string) { a.RoutingNotes = v },
	"required_fields": func(a *Article, v string) { a.RequiredFields = v },
	"cause_code":      func(a *Article, v string) { a.CauseCode = v },
	"resolution_code": func(a *Article, v string) { a.ResolutionCode = v },
	"hours":           func(a *Article, v string) { a.Hours = v },
	"contacts":        func(a *Article, v string) { a.Contacts = v },
	"kb_sources":      func(a *Article, v string) { a.KBSources = v },
}

// ParseKBFile reads a CSV or TSV knowledge base from disk.
func ParseKBFile(path string) ([]Article, error) {
	return ParseKBFileWithOptions(path, KBParseOptions{})
}

// ParseKBFileWithOptions reads a knowledge base honoring explicit column picks.
func ParseKBFileWithOptions(path string, opts KBParseOptions) ([]Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return parseKB(f, delimiterFor(path), opts)
}

// ParseKBBytes reads a CSV knowledge base from uploaded raw bytes.
func ParseKBBytes(data []byte) ([]Article, error) {
	return parseKB(bytes.NewReader(data), ',', KBParseOptions{})
}

func delimiterFor(path string) rune {
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseKB(r io.Reader, comma rune, opts KBParseOptions) ([]Article, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty table")
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	mapping, err := resolveArticleColumns(header, opts)
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var a Article
		for field, col := range mapping {
			if col < 0 || col >= len(row) {
				continue
			}
			articleSetters[field](&a, cleanCell(row[col]))
		}
		if a.Empty() {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// resolveArticleColumns maps each canonical field to a header column index,
// or -1 when the column is absent. Absent columns are not an error; their
// fields stay empty for every row.
func resolveArticleColumns(header []string, opts KBParseOptions) (map[string]int, error) {
	candidates := getColumnCandidates()
	mapping := make(map[string]int, len(articleFields))
	for _, field := range articleFields {
		explicit := ""
		if opts.Columns != nil {
			explicit = strings.TrimSpace(opts.Columns[field])
		}
		if explicit != "" {
			idx, err := matchExplicitColumn(header, explicit)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field, err)
			}
			mapping[field] = idx
			continue
		}
		mapping[field] = findColumn(header, candidates[field])
	}
	return mapping, nil
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		for _, cand := range candidates {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

func matchExplicitColumn(header []string, explicit string) (int, error) {
	for i, col := range header {
		if strings.EqualFold(col, explicit) {
			return i, nil
		}
	}
	if strings.HasPrefix(explicit, "#") {
		idx, err := parseColumnIndex(explicit)
		if err != nil {
			return -1, err
		}
		if idx >= len(header) {
			return -1, fmt.Errorf("column index %s is out of range", explicit)
		}
		return idx, nil
	}
	return -1, fmt.Errorf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\uFEFF")
	return v
}

// ReadKBFileMetadata returns the header row and the detected field mapping
// without loading the whole table.
func ReadKBFileMetadata(path string) (KBFileMetadata, error) {
	meta := KBFileMetadata{}
	f, err := os.Open(path)
	if err != nil {
		return meta, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = delimiterFor(path)
	reader.FieldsPerRecord = -1
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return meta, nil
		}
		return meta, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = cleanCell(cell)
	}
	meta.Columns = header
	mapping, err := resolveArticleColumns(header, KBParseOptions{})
	if err != nil {
		return meta, err
	}
	meta.Detected = make(map[string]string, len(mapping))
	for field, idx := range mapping {
		if idx < 0 {
			continue
		}
		name := header[idx]
		if name == "" {
			name = fmt.Sprintf("#%d", idx+1)
		}
		meta.Detected[field] = name
	}
	return meta, nil
}
