// ABOUTME: Retrieval benchmark scenarios for the transcript corpus
// ABOUTME: Defines queries, expected guests and context, and loads scenario files from YAML

package ragas

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLimit is the search limit used when a scenario does not set one
const DefaultLimit = 5

// TestScenario is one retrieval benchmark: a query and what it should surface
type TestScenario struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Query       string      `yaml:"query" json:"query"`
	Limit       int         `yaml:"limit,omitempty" json:"limit,omitempty"`
	GroundTruth GroundTruth `yaml:"ground_truth" json:"ground_truth"`
}

// GroundTruth defines the expected retrieval outcome for a scenario
type GroundTruth struct {
	// Guests whose excerpts should appear among the matches
	ExpectedGuests []string `yaml:"expected_guests,omitempty" json:"expected_guests,omitempty"`
	// Guests whose excerpts must not appear
	ForbiddenGuests []string `yaml:"forbidden_guests,omitempty" json:"forbidden_guests,omitempty"`
	// Phrases that should occur somewhere in the retrieved excerpts
	ExpectedContextItems []string `yaml:"expected_context,omitempty" json:"expected_context,omitempty"`
}

// TestResult is the outcome of one benchmark scenario
type TestResult struct {
	TestID             string         `json:"test_id"`
	TestName           string         `json:"test_name"`
	FaithfulnessScore  float64        `json:"faithfulness"`
	ContextRecallScore float64        `json:"context_recall"`
	OverallScore       float64        `json:"overall"`
	Status             string         `json:"status"`
	Details            map[string]any `json:"details,omitempty"`
	ErrorMessage       string         `json:"error,omitempty"`
}

// Passed reports whether the scenario met the pass threshold
func (r TestResult) Passed() bool {
	return r.Status == StatusPass
}

// scenarioFile is the on-disk layout of a scenario file
type scenarioFile struct {
	Scenarios []TestScenario `yaml:"scenarios"`
}

// LoadScenarios reads scenarios from a YAML file
func LoadScenarios(path string) ([]TestScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes and validates YAML scenario data
func ParseScenarios(data []byte) ([]TestScenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("parse scenarios: no scenarios defined")
	}

	seen := make(map[string]bool, len(file.Scenarios))
	for i := range file.Scenarios {
		s := &file.Scenarios[i]
		s.ID = strings.TrimSpace(s.ID)
		s.Query = strings.TrimSpace(s.Query)
		if s.ID == "" {
			return nil, fmt.Errorf("parse scenarios: scenario %d has no id", i+1)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("parse scenarios: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
		if s.Query == "" {
			return nil, fmt.Errorf("parse scenarios: scenario %q has no query", s.ID)
		}
		if s.Limit < 0 {
			return nil, fmt.Errorf("parse scenarios: scenario %q has negative limit", s.ID)
		}
		if s.Name == "" {
			s.Name = s.ID
		}
	}
	return file.Scenarios, nil
}

// FindScenario returns the scenario with the given id
func FindScenario(scenarios []TestScenario, id string) (TestScenario, bool) {
	for _, s := range scenarios {
		if strings.EqualFold(s.ID, id) {
			return s, true
		}
	}
	return TestScenario{}, false
}

// DefaultScenarios is the built-in suite, written against the Lenny's Podcast corpus
func DefaultScenarios() []TestScenario {
	return []TestScenario{
		{
			ID:          "founder-mode",
			Name:        "Founder mode",
			Description: "Leadership in the details should surface Brian Chesky",
			Query:       "founder mode being in the details as a CEO",
			GroundTruth: GroundTruth{
				ExpectedGuests:       []string{"Brian Chesky"},
				ExpectedContextItems: []string{"details"},
			},
		},
		{
			ID:          "pricing",
			Name:        "Pricing strategy",
			Description: "Willingness-to-pay questions should surface pricing experts",
			Query:       "how to talk to customers about willingness to pay before building",
			GroundTruth: GroundTruth{
				ExpectedGuests:       []string{"Madhavan Ramanujam"},
				ExpectedContextItems: []string{"willingness to pay"},
			},
		},
		{
			ID:          "retention",
			Name:        "Retention and growth loops",
			Description: "Growth questions should retrieve retention discussion",
			Query:       "retention is the foundation of growth",
			Limit:       8,
			GroundTruth: GroundTruth{
				ExpectedGuests:       []string{"Elena Verna"},
				ExpectedContextItems: []string{"retention"},
			},
		},
	}
}
