// ABOUTME: Guest name parsing and slug normalization
// ABOUTME: GuestCache maps guest slugs to store IDs for the duration of one ingestion run
package core

import (
	"regexp"
	"strings"
)

// guestSeparators are applied in order; each pass splits every name produced so far
var guestSeparators = []string{" and ", " & ", ", ", " with "}

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
)

// ParseGuestNames splits a free-text guest field into individual names
func ParseGuestNames(guest string) []string {
	names := []string{guest}
	for _, sep := range guestSeparators {
		var split []string
		for _, name := range names {
			split = append(split, strings.Split(name, sep)...)
		}
		names = split
	}

	result := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			result = append(result, name)
		}
	}
	return result
}

// Slugify lowercases a name, drops everything but ASCII letters, digits,
// whitespace and hyphens, and joins the words with hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// GuestCache remembers guest IDs by slug. It is not safe for concurrent use;
// ingestion is sequential.
type GuestCache struct {
	ids map[string]string
}

// NewGuestCache creates an empty cache
func NewGuestCache() *GuestCache {
	return &GuestCache{ids: make(map[string]string)}
}

// Get returns the cached ID for slug
func (c *GuestCache) Get(slug string) (string, bool) {
	id, ok := c.ids[slug]
	return id, ok
}

// Put records the ID for slug
func (c *GuestCache) Put(slug, id string) {
	c.ids[slug] = id
}

// Len returns the number of cached guests
func (c *GuestCache) Len() int {
	return len(c.ids)
}

// Clear empties the cache
func (c *GuestCache) Clear() {
	c.ids = make(map[string]string)
}
