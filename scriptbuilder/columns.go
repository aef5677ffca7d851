package scriptbuilder

import "sync"

// Canonical field names of the v3 knowledge-base schema, in CSV order.
var articleFields = []string{
	"kb_id", "title", "keywords", "catalog", "service_group", "category",
	"action", "tech_app", "os", "probing", "steps", "urls", "routing_group",
	"routing_notes", "required_fields", "cause_code", "resolution_code",
	"hours", "contacts", "kb_sources",
}

// ColumnCandidates maps canonical field names to acceptable header spellings.
// Headers are matched case-insensitively.
type ColumnCandidates map[string][]string

var (
	columnCandidatesMu  sync.RWMutex
	activeColumnOptions = defaultColumnCandidates()
)

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		"kb_id":           {"kb_id", "kb id", "id", "article_id"},
		"title":           {"title", "name", "issue"},
		"keywords":        {"keywords", "keyword", "tags"},
		"catalog":         {"catalog"},
		"service_group":   {"service_group", "service group"},
		"category":        {"category"},
		"action":          {"action"},
		"tech_app":        {"tech_app", "technology", "application", "tech/app"},
		"os":              {"os", "operating_system"},
		"probing":         {"probing", "probing_questions", "questions"},
		"steps":           {"steps", "resolution_steps", "resolution"},
		"urls":            {"urls", "url", "links", "forms"},
		"routing_group":   {"routing_group", "route_to", "assignment_group"},
		"routing_notes":   {"routing_notes", "routing note"},
		"required_fields": {"required_fields", "required_data"},
		"cause_code":      {"cause_code"},
		"resolution_code": {"resolution_code"},
		"hours":           {"hours", "schedule"},
		"contacts":        {"contacts", "contact"},
		"kb_sources":      {"kb_sources", "sources", "source"},
	}
}

// DefaultColumnCandidates returns the built-in header detection candidates.
func DefaultColumnCandidates() ColumnCandidates {
	return defaultColumnCandidates().clone()
}

// SetColumnCandidates overrides header spellings for the given fields.
// Fields left out keep the built-in defaults.
func SetColumnCandidates(overrides ColumnCandidates) {
	merged := defaultColumnCandidates()
	for field, names := range overrides {
		if len(names) == 0 {
			continue
		}
		merged[field] = cloneStrings(names)
	}
	columnCandidatesMu.Lock()
	defer columnCandidatesMu.Unlock()
	activeColumnOptions = merged
}

func getColumnCandidates() ColumnCandidates {
	columnCandidatesMu.RLock()
	defer columnCandidatesMu.RUnlock()
	return activeColumnOptions.clone()
}

func (c ColumnCandidates) clone() ColumnCandidates {
	out := make(ColumnCandidates, len(c))
	for field, names := range c {
		out[field] = cloneStrings(names)
	}
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
