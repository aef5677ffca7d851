package scriptbuilder

import "encoding/json"

// Mode represents the scoring mode used when matching articles.
type Mode string

const (
	// ModeWeighted scores every classification field with per-field weights.
	ModeWeighted Mode = "weighted"
	// ModeSimple scores a single concatenation of id, title and keywords.
	ModeSimple Mode = "simple"
)

// Article is one knowledge-base row. Every field is optional text; a missing
// CSV cell or column is stored as the empty string, never as a null marker.
type Article struct {
	KBID           string `json:"kb_id"`
	Title          string `json:"title"`
	Keywords       string `json:"keywords"`
	Catalog        string `json:"catalog"`
	ServiceGroup   string `json:"service_group"`
	Category       string `json:"category"`
	Action         string `json:"action"`
	TechApp        string `json:"tech_app"`
	OS             string `json:"os"`
	Probing        string `json:"probing"`
	Steps          string `json:"steps"`
	URLs           string `json:"urls"`
	RoutingGroup   string `json:"routing_group"`
	RoutingNotes   string `json:"routing_notes"`
	RequiredFields string `json:"required_fields"`
	CauseCode      string `json:"cause_code"`
	ResolutionCode string `json:"resolution_code"`
	Hours          string `json:"hours"`
	Contacts       string `json:"contacts"`
	KBSources      string `json:"kb_sources"`
}

// Empty reports whether every field of the article is blank.
func (a Article) Empty() bool {
	return a == Article{}
}

// Match pairs a knowledge-base row with its similarity score against a query.
// Index is the position of the row in the loaded table.
type Match struct {
	Index   int     `json:"index"`
	Score   int     `json:"score"`
	Article Article `json:"article"`
}

// ScriptInput carries the free-form per-call values substituted into a script.
type ScriptInput struct {
	AgentName    string `json:"agentName"`
	TicketNumber string `json:"ticketNumber"`
}

// BuildInput is one script-building request.
type BuildInput struct {
	Query        string `json:"query"`
	AgentName    string `json:"agentName"`
	TicketNumber string `json:"ticketNumber"`
}

// Alternative is a lower-ranked match with its rendered preview script.
type Alternative struct {
	Match  Match  `json:"match"`
	Script string `json:"script"`
}

// BuildResult holds everything the UI and CLI surface for one request.
type BuildResult struct {
	Best         Match             `json:"best"`
	Script       string            `json:"script"`
	Alternatives []Alternative     `json:"alternatives,omitempty"`
	Metadata     map[string]string `json:"metadata"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Mode         Mode           `json:"mode"`
	MinScore     int            `json:"minScore"`
	AltCount     int            `json:"altCount"`
	CacheSize    int            `json:"cacheSize"`
	KBPath       string         `json:"kbPath"`
	AgentName    string         `json:"agentName"`
	FieldWeights map[string]int `json:"fieldWeights,omitempty"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeWeighted
	}
	if c.MinScore <= 0 {
		c.MinScore = 70
	}
	if c.MinScore > 100 {
		c.MinScore = 100
	}
	if c.AltCount <= 0 {
		c.AltCount = 5
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 8
	}
}
