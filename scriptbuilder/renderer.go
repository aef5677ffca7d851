package scriptbuilder

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// The fixed call script. Section headers are part of the agent-facing
// contract and must survive rendering verbatim; only content lines vary.
const scriptTemplateText = `[GREETING]
Thank you for calling NYCPS Service Desk. My name is {{.AgentName}}. Are you calling for a new issue or an existing ticket?

[VERIFICATION - DOE 5-Point]
1) Full Name  2) DOE Email  3) Title  4) School DBN / Central Location  5) Callback #

[CLASSIFICATION - 4 Levels]
Catalog: {{.Catalog}}
Service Group: {{.ServiceGroup}}
Category: {{.Category}}
Action: {{.Action}}

[TECHNOLOGY]
Technology/Application: {{.TechApp}}
OS: {{.OS}}

[WHAT TO ASK (Probing)]
{{.ProbingBlock}}

[WHAT TO SAY / DO (Resolution Steps)]
{{.StepsBlock}}

[URLS / FORMS]
{{.URLsBlock}}

[ESCALATION / ROUTING]
- Route to: {{.RoutingGroup}}
- Routing Notes: {{.RoutingNotes}}

[REQUIRED DATA TO COLLECT]
{{.RequiredBlock}}

[CAUSE / RESOLUTION CODES]
- Cause Code: {{.CauseCode}}
- Resolution Code: {{.ResolutionCode}}

[HOURS / SCHEDULE]
{{.Hours}}

[CONTACTS]
{{.Contacts}}

[SOURCES]
{{.KBSources}}

[CLOSING]
For your reference, the ticket number is {{.TicketNumber}}. Thank you for calling and have a great day.`

var scriptTemplate = template.Must(template.New("script").Parse(scriptTemplateText))

// scriptData is the typed record of fully resolved display strings fed to
// the template. Everything is substituted here, not in the template, so a
// renamed field fails at compile time instead of leaking a raw token.
type scriptData struct {
	AgentName      string
	Catalog        string
	ServiceGroup   string
	Category       string
	Action         string
	TechApp        string
	OS             string
	ProbingBlock   string
	StepsBlock     string
	URLsBlock      string
	RoutingGroup   string
	RoutingNotes   string
	RequiredBlock  string
	CauseCode      string
	ResolutionCode string
	Hours          string
	Contacts       string
	KBSources      string
	TicketNumber   string
}

// RenderScript substitutes one article and the per-call inputs into the
// fixed script. Empty fields render as placeholders, never as blanks.
func RenderScript(a Article, in ScriptInput, mode Mode) (string, error) {
	stepsBlock := numberedBlock(a.Steps)
	if mode == ModeSimple {
		stepsBlock = threeStepBlock(a.Steps)
	}
	data := scriptData{
		AgentName:      orPlaceholder(in.AgentName, "[Your Name]"),
		Catalog:        orDash(a.Catalog),
		ServiceGroup:   orDash(a.ServiceGroup),
		Category:       orDash(a.Category),
		Action:         orDash(a.Action),
		TechApp:        orDash(a.TechApp),
		OS:             orPlaceholder(a.OS, "Any"),
		ProbingBlock:   bulletBlock(a.Probing),
		StepsBlock:     stepsBlock,
		URLsBlock:      bulletBlock(a.URLs),
		RoutingGroup:   orDash(a.RoutingGroup),
		RoutingNotes:   orDash(a.RoutingNotes),
		RequiredBlock:  bulletBlock(a.RequiredFields),
		CauseCode:      orDash(a.CauseCode),
		ResolutionCode: orDash(a.ResolutionCode),
		Hours:          orDash(a.Hours),
		Contacts:       orDash(a.Contacts),
		KBSources:      orDash(a.KBSources),
		TicketNumber:   orPlaceholder(in.TicketNumber, "[Ticket #]"),
	}
	var b strings.Builder
	if err := scriptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render script: %w", err)
	}
	return b.String(), nil
}

// ArticleMetadata exposes every raw field of an article plus the time the
// match occurred, for the metadata view.
func ArticleMetadata(a Article, matchedAt time.Time) map[string]string {
	meta := make(map[string]string, len(articleFields)+1)
	raw, _ := json.Marshal(a)
	_ = json.Unmarshal(raw, &meta)
	meta["matched_at"] = matchedAt.Format(time.RFC3339)
	return meta
}

func orDash(v string) string {
	return orPlaceholder(v, "-")
}

func orPlaceholder(v, placeholder string) string {
	if strings.TrimSpace(v) == "" {
		return placeholder
	}
	return strings.TrimSpace(v)
}

// splitList breaks a semicolon-delimited field into trimmed non-empty items.
func splitList(v string) []string {
	parts := strings.Split(v, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// bulletBlock renders a semicolon list as "- item" lines, or "-" when empty.
func bulletBlock(v string) string {
	items := splitList(v)
	if len(items) == 0 {
		return "-"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

// numberedBlock renders a semicolon list as "1) item" lines, or "-" when empty.
func numberedBlock(v string) string {
	items := splitList(v)
	if len(items) == 0 {
		return "-"
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%d) %s", i+1, item)
	}
	return strings.Join(lines, "\n")
}

// threeStepBlock renders exactly three numbered step slots, padding absent
// steps with "-". Used by the simple script variant.
func threeStepBlock(v string) string {
	items := splitList(v)
	lines := make([]string, 3)
	for i := 0; i < 3; i++ {
		step := "-"
		if i < len(items) {
			step = items[i]
		}
		lines[i] = fmt.Sprintf("%d) %s", i+1, step)
	}
	return strings.Join(lines, "\n")
}
