// ABOUTME: RAGAS-style metrics for retrieval quality over transcript excerpts
// ABOUTME: Deterministic scoring of guest attribution and context recall against ground truth

package ragas

import (
	"fmt"
	"strings"

	"github.com/harper/podcast-wisdom/internal/models"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"

	// DefaultPassThreshold is the score both metrics must reach
	DefaultPassThreshold = 0.9
)

// MetricsCalculator computes RAGAS scores for benchmark scenarios
type MetricsCalculator struct {
	passThreshold float64
}

// NewMetricsCalculator creates a calculator; a non-positive threshold uses the default
func NewMetricsCalculator(passThreshold float64) *MetricsCalculator {
	if passThreshold <= 0 {
		passThreshold = DefaultPassThreshold
	}
	return &MetricsCalculator{passThreshold: passThreshold}
}

// CalculateFaithfulness scores guest attribution (0.0-1.0).
// Full marks need every expected guest among the matches and no forbidden guest.
func (m *MetricsCalculator) CalculateFaithfulness(
	matches []models.ChunkMatch,
	expectedGuests []string,
	forbiddenGuests []string,
) (float64, string) {
	if len(matches) == 0 {
		if len(expectedGuests) == 0 {
			return 1.0, "No matches and none expected"
		}
		return 0.0, "No matches retrieved"
	}

	missing := []string{}
	for _, guest := range expectedGuests {
		if !anyGuest(matches, guest) {
			missing = append(missing, guest)
		}
	}
	forbiddenFound := []string{}
	for _, guest := range forbiddenGuests {
		if anyGuest(matches, guest) {
			forbiddenFound = append(forbiddenFound, guest)
		}
	}

	switch {
	case len(missing) == 0 && len(forbiddenFound) == 0:
		return 1.0, "All expected guests retrieved"
	case len(missing) > 0 && len(forbiddenFound) > 0:
		return 0.0, fmt.Sprintf("Missing guests: %v, forbidden guests found: %v", missing, forbiddenFound)
	case len(forbiddenFound) > 0:
		return 0.5, fmt.Sprintf("Forbidden guests found: %v", forbiddenFound)
	}

	found := len(expectedGuests) - len(missing)
	score := float64(found) / float64(len(expectedGuests))
	return score, fmt.Sprintf("Missing guests: %v", missing)
}

// CalculateContextRecall scores how many expected phrases occur in the excerpts (0.0-1.0)
func (m *MetricsCalculator) CalculateContextRecall(
	matches []models.ChunkMatch,
	expectedContextItems []string,
) (float64, string) {
	if len(expectedContextItems) == 0 {
		return 1.0, "No context retrieval required"
	}

	contents := make([]string, len(matches))
	for i, match := range matches {
		contents[i] = match.Content
	}
	allContext := strings.ToLower(strings.Join(contents, " "))

	foundCount := 0
	missing := []string{}
	for _, item := range expectedContextItems {
		if strings.Contains(allContext, strings.ToLower(item)) {
			foundCount++
		} else {
			missing = append(missing, item)
		}
	}

	recall := float64(foundCount) / float64(len(expectedContextItems))
	if recall == 1.0 {
		return 1.0, "All expected context retrieved"
	}
	return recall, fmt.Sprintf("Partial context recall (%.2f) - missing: %v", recall, missing)
}

// EvaluateTest scores one scenario against the matches it retrieved
func (m *MetricsCalculator) EvaluateTest(scenario TestScenario, matches []models.ChunkMatch) TestResult {
	faithfulness, faithfulnessDetail := m.CalculateFaithfulness(
		matches,
		scenario.GroundTruth.ExpectedGuests,
		scenario.GroundTruth.ForbiddenGuests,
	)
	recall, recallDetail := m.CalculateContextRecall(matches, scenario.GroundTruth.ExpectedContextItems)

	status := StatusFail
	if faithfulness >= m.passThreshold && recall >= m.passThreshold {
		status = StatusPass
	}

	return TestResult{
		TestID:             scenario.ID,
		TestName:           scenario.Name,
		FaithfulnessScore:  faithfulness,
		ContextRecallScore: recall,
		OverallScore:       (faithfulness + recall) / 2.0,
		Status:             status,
		Details: map[string]any{
			"faithfulness_detail": faithfulnessDetail,
			"recall_detail":       recallDetail,
			"matches":             len(matches),
			"top_similarity":      topSimilarity(matches),
			"guests":              retrievedGuests(matches),
		},
	}
}

// anyGuest reports whether a match is attributed to the guest, by name or speaker
func anyGuest(matches []models.ChunkMatch, guest string) bool {
	needle := strings.ToLower(strings.TrimSpace(guest))
	if needle == "" {
		return false
	}
	for _, match := range matches {
		if strings.Contains(strings.ToLower(match.GuestName), needle) ||
			strings.Contains(strings.ToLower(match.Speaker), needle) {
			return true
		}
	}
	return false
}

func topSimilarity(matches []models.ChunkMatch) float64 {
	top := 0.0
	for _, match := range matches {
		if match.Similarity > top {
			top = match.Similarity
		}
	}
	return top
}

// retrievedGuests lists distinct guest names in retrieval order
func retrievedGuests(matches []models.ChunkMatch) []string {
	seen := map[string]bool{}
	guests := []string{}
	for _, match := range matches {
		if match.GuestName == "" || seen[match.GuestName] {
			continue
		}
		seen[match.GuestName] = true
		guests = append(guests, match.GuestName)
	}
	return guests
}
