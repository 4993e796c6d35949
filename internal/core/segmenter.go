// ABOUTME: Turn segmenter splits raw transcript text at speaker/timestamp markers
// ABOUTME: Markers look like "Name (HH:MM:SS):" or "(H:MM:SS):" at the start of a line
package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harper/podcast-wisdom/internal/models"
)

// turnMarker matches a line-leading turn marker. Group 1 is the optional speaker
// name, group 2 the timestamp. Names stay on one line.
var turnMarker = regexp.MustCompile(`(?m)(?:^|\n)(?:([A-Za-z][A-Za-z \t.'\-]*?)[ \t]*)?\((\d{1,2}:\d{2}:\d{2})\):\s*`)

// SegmentTurns splits a raw transcript into ordered speaker turns.
// A marker without a name inherits the last explicit speaker; turns whose
// content is empty after trimming are dropped.
func SegmentTurns(raw string) []models.Turn {
	matches := turnMarker.FindAllStringSubmatchIndex(raw, -1)
	turns := make([]models.Turn, 0, len(matches))
	current := models.UnknownSpeaker

	for i, m := range matches {
		speaker := current
		if m[2] >= 0 {
			if name := strings.TrimSpace(raw[m[2]:m[3]]); name != "" {
				speaker = name
			}
		}
		current = speaker

		timestamp := raw[m[4]:m[5]]

		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		content := strings.TrimSpace(raw[m[1]:end])
		if content == "" {
			continue
		}

		turns = append(turns, models.Turn{
			Speaker:          speaker,
			Timestamp:        timestamp,
			TimestampSeconds: ParseTimestamp(timestamp),
			Content:          content,
		})
	}

	return turns
}

// ParseTimestamp converts "H:MM:SS" or "MM:SS" (optionally parenthesized) to
// seconds. Any other shape yields 0.
func ParseTimestamp(ts string) int {
	parts := strings.Split(strings.Trim(strings.TrimSpace(ts), "()"), ":")

	nums := make([]int, len(parts))
	for i, p := range parts {
		if !allDigits(p) {
			return 0
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0
		}
		nums[i] = n
	}

	switch len(nums) {
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		return nums[0]*60 + nums[1]
	default:
		return 0
	}
}

// allDigits reports whether s is a non-empty run of ASCII digits
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
