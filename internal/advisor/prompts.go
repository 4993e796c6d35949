// ABOUTME: Prompt templates and result formatting for the advisor tools
// ABOUTME: Expert context blocks attribute every excerpt to its guest and episode
package advisor

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/harper/podcast-wisdom/internal/models"
)

// Messages returned when a tool finds nothing to work with
const (
	NoSearchResults    = "No relevant results found."
	NoAdviceInsights   = "No relevant expert insights found for this challenge."
	NoExpertViewpoints = "No relevant expert viewpoints found."
	NoPlaybookInsights = "No relevant expert insights found for this goal."
	NoMetrics          = "No relevant metrics or benchmarks found."
	NoEpisodes         = "No episodes found."
)

// excerptRunes bounds the excerpt shown per search hit
const excerptRunes = 500

const synthesisTemplate = `You are a C-level advisor with access to wisdom from podcast episodes featuring top operators like Brian Chesky, Marty Cagan, Elena Verna, Shreyas Doshi, and more.

Based on the following expert insights, provide helpful, actionable advice. Always attribute specific insights to the speaker who said them.

CONTEXT FROM EXPERT INTERVIEWS:
%s

USER QUESTION: %s

Provide a thoughtful, well-structured response that synthesizes the expert perspectives. Include specific quotes and attributions where relevant.`

// SynthesisPrompt wraps a question with the expert excerpts it should draw on
func SynthesisPrompt(question string, matches []models.ChunkMatch) string {
	return fmt.Sprintf(synthesisTemplate, ExpertContext(matches), question)
}

// ExpertContext renders matches as attributed blocks separated by blank lines
func ExpertContext(matches []models.ChunkMatch) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, fmt.Sprintf("**%s** (%s):\n%s", m.GuestName, m.EpisodeTitle, m.Content))
	}
	return strings.Join(blocks, "\n\n")
}

func comparisonQuestion(topic string) string {
	return "Compare the different expert viewpoints on: " + topic
}

func playbookQuestion(goal, constraints string) string {
	if constraints == "" {
		constraints = "None specified"
	}
	return fmt.Sprintf(`Generate a step-by-step playbook for: %s

Constraints: %s

Structure the playbook with:
1. Key principles from experts
2. Step-by-step actions
3. Common pitfalls to avoid
4. Success metrics to track`, goal, constraints)
}

func metricsQuestion(category, context string) string {
	if context == "" {
		context = "General"
	}
	return fmt.Sprintf(`Extract and summarize the key metrics, KPIs, and benchmarks mentioned for:
Category: %s
Context: %s

Include specific numbers and targets where mentioned.`, category, context)
}

// FormatMatches renders search hits for display
func FormatMatches(matches []models.ChunkMatch) string {
	if len(matches) == 0 {
		return NoSearchResults
	}
	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, fmt.Sprintf("**%s** in *%s* (%s):\n> %s\n(Similarity: %.2f)",
			m.GuestName, m.EpisodeTitle, m.TimestampStart, excerpt(m.Content), m.Similarity))
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// FormatEpisodes renders an episode listing for display
func FormatEpisodes(episodes []models.Episode) string {
	if len(episodes) == 0 {
		return NoEpisodes
	}
	parts := make([]string, 0, len(episodes))
	for _, ep := range episodes {
		parts = append(parts, fmt.Sprintf("**%s**\nDuration: %s | Views: %s\nURL: %s",
			ep.Title, ep.DurationDisplay, Thousands(ep.ViewCount), ep.YouTubeURL))
	}
	return strings.Join(parts, "\n\n")
}

func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptRunes {
		return content
	}
	return string(runes[:excerptRunes]) + "..."
}

// Thousands formats n with comma group separators
func Thousands(n int) string {
	return humanize.Comma(int64(n))
}
