// ABOUTME: Advisor tool definitions and typed requests
// ABOUTME: ParseRequest validates raw JSON arguments against a tool's schema before dispatch
package advisor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/harper/podcast-wisdom/internal/models"
)

// Tool names
const (
	ToolSearchWisdom     = "search_wisdom"
	ToolGetAdvice        = "get_advice"
	ToolCompareExperts   = "compare_experts"
	ToolGeneratePlaybook = "generate_playbook"
	ToolFindMetrics      = "find_metrics"
	ToolListEpisodes     = "list_episodes"
)

var (
	// ErrUnknownTool is returned for a tool name with no definition
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArgument is returned when arguments fail schema validation
	ErrInvalidArgument = errors.New("invalid argument")
)

// MaxLimit caps any caller-supplied result limit
const MaxLimit = 100

// ParamType is a JSON schema primitive
type ParamType string

const (
	TypeString ParamType = "string"
	TypeNumber ParamType = "number"
	TypeArray  ParamType = "array"
)

// Param describes one tool argument
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Default     any       `json:"default,omitempty"`
}

// Definition describes a tool as advertised to clients
type Definition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
}

// InputSchema renders the definition as a JSON schema object
func (d Definition) InputSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := []string{}
	for _, p := range d.Params {
		prop := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Type == TypeArray {
			prop["items"] = map[string]any{"type": "string"}
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// RequiredParams lists the names of required arguments
func (d Definition) RequiredParams() []string {
	var names []string
	for _, p := range d.Params {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

var definitions = []Definition{
	{
		Name:        ToolSearchWisdom,
		Description: "Semantic search across podcast transcripts from top operators (Brian Chesky, Marty Cagan, Elena Verna, etc.). Use for finding expert opinions on specific topics.",
		Params: []Param{
			{Name: "query", Type: TypeString, Required: true, Description: "What you want to find (e.g., 'how to find product-market fit', 'hiring senior leaders')"},
			{Name: "limit", Type: TypeNumber, Default: 5, Description: "Number of results to return (default: 5)"},
		},
	},
	{
		Name:        ToolGetAdvice,
		Description: "Get synthesized C-level advice on a business challenge from multiple expert perspectives. Best for strategic questions about product, growth, leadership, etc.",
		Params: []Param{
			{Name: "challenge", Type: TypeString, Required: true, Description: "The business challenge or question you need advice on"},
			{Name: "context", Type: TypeString, Description: "Additional context about your company, stage, or situation"},
		},
	},
	{
		Name:        ToolCompareExperts,
		Description: "Compare different expert viewpoints on a topic. Useful for understanding different schools of thought or approaches.",
		Params: []Param{
			{Name: "topic", Type: TypeString, Required: true, Description: "The topic to compare viewpoints on"},
			{Name: "experts", Type: TypeArray, Description: "Optional list of specific experts to compare"},
		},
	},
	{
		Name:        ToolGeneratePlaybook,
		Description: "Generate an actionable playbook based on expert advice for a specific goal.",
		Params: []Param{
			{Name: "goal", Type: TypeString, Required: true, Description: "What you want to achieve (e.g., 'launch a PLG motion', 'build a product team')"},
			{Name: "constraints", Type: TypeString, Description: "Any constraints (budget, team size, timeline)"},
		},
	},
	{
		Name:        ToolFindMetrics,
		Description: "Find KPIs, benchmarks, and metrics recommended by experts for a given context.",
		Params: []Param{
			{Name: "category", Type: TypeString, Required: true, Description: "Category of metrics (e.g., 'retention', 'growth', 'product', 'sales')"},
			{Name: "context", Type: TypeString, Description: "Specific context (e.g., 'B2B SaaS', 'marketplace', 'consumer app')"},
		},
	},
	{
		Name:        ToolListEpisodes,
		Description: "Browse and filter episodes by guest or topic. Returns episode metadata.",
		Params: []Param{
			{Name: "guest", Type: TypeString, Description: "Filter by guest name"},
			{Name: "search", Type: TypeString, Description: "Search in episode titles/descriptions"},
			{Name: "sort", Type: TypeString, Default: string(models.SortByViews), Enum: []string{string(models.SortByViews), string(models.SortByDuration), string(models.SortByRecent)}, Description: "Sort order"},
			{Name: "limit", Type: TypeNumber, Default: 10, Description: "Number of episodes to return"},
		},
	},
}

// Definitions returns every tool definition in registration order
func Definitions() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup finds a definition by tool name
func Lookup(name string) (Definition, bool) {
	for _, d := range definitions {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Request is a validated, typed tool call
type Request interface {
	ToolName() string
}

type SearchWisdomRequest struct {
	Query string
	Limit int
}

type GetAdviceRequest struct {
	Challenge string
	Context   string
}

type CompareExpertsRequest struct {
	Topic   string
	Experts []string
}

type GeneratePlaybookRequest struct {
	Goal        string
	Constraints string
}

type FindMetricsRequest struct {
	Category string
	Context  string
}

type ListEpisodesRequest struct {
	Guest  string
	Search string
	Sort   models.EpisodeSort
	Limit  int
}

func (SearchWisdomRequest) ToolName() string     { return ToolSearchWisdom }
func (GetAdviceRequest) ToolName() string        { return ToolGetAdvice }
func (CompareExpertsRequest) ToolName() string   { return ToolCompareExperts }
func (GeneratePlaybookRequest) ToolName() string { return ToolGeneratePlaybook }
func (FindMetricsRequest) ToolName() string      { return ToolFindMetrics }
func (ListEpisodesRequest) ToolName() string     { return ToolListEpisodes }

// ParseRequest validates args for the named tool and returns its typed request.
// Missing optional arguments take the definition's default.
func ParseRequest(name string, args map[string]any) (Request, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	a := argReader{def: def, args: args}
	var req Request
	switch name {
	case ToolSearchWisdom:
		req = SearchWisdomRequest{Query: a.str("query"), Limit: a.limit("limit")}
	case ToolGetAdvice:
		req = GetAdviceRequest{Challenge: a.str("challenge"), Context: a.str("context")}
	case ToolCompareExperts:
		req = CompareExpertsRequest{Topic: a.str("topic"), Experts: a.strs("experts")}
	case ToolGeneratePlaybook:
		req = GeneratePlaybookRequest{Goal: a.str("goal"), Constraints: a.str("constraints")}
	case ToolFindMetrics:
		req = FindMetricsRequest{Category: a.str("category"), Context: a.str("context")}
	case ToolListEpisodes:
		req = ListEpisodesRequest{
			Guest:  a.str("guest"),
			Search: a.str("search"),
			Sort:   models.EpisodeSort(a.str("sort")),
			Limit:  a.limit("limit"),
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return req, nil
}

// argReader extracts typed values and keeps the first validation error
type argReader struct {
	def  Definition
	args map[string]any
	err  error
}

func (a *argReader) param(key string) Param {
	for _, p := range a.def.Params {
		if p.Name == key {
			return p
		}
	}
	return Param{Name: key}
}

func (a *argReader) fail(format string, v ...any) {
	if a.err == nil {
		a.err = fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, v...))
	}
}

// lookup returns the raw value, or nil when absent. A missing required
// argument is recorded as an error.
func (a *argReader) lookup(key string) any {
	p := a.param(key)
	raw, ok := a.args[key]
	if !ok || raw == nil {
		if p.Required {
			a.fail("%s is required", key)
		}
		return p.Default
	}
	return raw
}

func (a *argReader) str(key string) string {
	p := a.param(key)
	raw := a.lookup(key)
	if raw == nil {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		a.fail("%s must be a string", key)
		return ""
	}
	s = strings.TrimSpace(s)
	if p.Required && s == "" {
		a.fail("%s must not be empty", key)
	}
	if s == "" && p.Default != nil {
		s, _ = p.Default.(string)
	}
	if len(p.Enum) > 0 && !contains(p.Enum, s) {
		a.fail("%s must be one of %s, got %q", key, strings.Join(p.Enum, ", "), s)
	}
	return s
}

func (a *argReader) strs(key string) []string {
	raw := a.lookup(key)
	if raw == nil {
		return nil
	}
	var out []string
	switch v := raw.(type) {
	case []string:
		out = v
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				a.fail("%s must be an array of strings", key)
				return nil
			}
			out = append(out, s)
		}
	default:
		a.fail("%s must be an array of strings", key)
		return nil
	}

	cleaned := make([]string, 0, len(out))
	for _, s := range out {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}

// limit reads a positive whole number no larger than MaxLimit
func (a *argReader) limit(key string) int {
	raw := a.lookup(key)
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			a.fail("%s must be a number", key)
			return 0
		}
		f = parsed
	default:
		a.fail("%s must be a number", key)
		return 0
	}
	if f != math.Trunc(f) || f < 1 || f > MaxLimit {
		a.fail("%s must be a whole number between 1 and %d", key, MaxLimit)
		return 0
	}
	return int(f)
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
