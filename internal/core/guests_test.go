// ABOUTME: Tests for guest name splitting, slug generation and the guest cache
// ABOUTME: Separators are applied in order so mixed lists split fully

package core

import (
	"reflect"
	"testing"
)

func TestParseGuestNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Brian Chesky", []string{"Brian Chesky"}},
		{"Brian Chesky and Elena Verna", []string{"Brian Chesky", "Elena Verna"}},
		{"A & B", []string{"A", "B"}},
		{"A, B and C", []string{"A", "B", "C"}},
		{"Host with Guest", []string{"Host", "Guest"}},
		{"A, B & C with D", []string{"A", "B", "C", "D"}},
		{"  padded  ", []string{"padded"}},
		{"A and  and B", []string{"A", "B"}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseGuestNames(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseGuestNames(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Brian Chesky", "brian-chesky"},
		{"Conan O'Brien", "conan-obrien"},
		{"Jean-Luc  Picard", "jean-luc-picard"},
		{"  Dr. Ada Lovelace ", "dr-ada-lovelace"},
		{"-Edge-", "edge"},
		{"José", "jos"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGuestCache(t *testing.T) {
	c := NewGuestCache()
	if c.Len() != 0 {
		t.Fatalf("new cache Len() = %d", c.Len())
	}

	if _, ok := c.Get("brian-chesky"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Put("brian-chesky", "id-1")
	c.Put("elena-verna", "id-2")
	if id, ok := c.Get("brian-chesky"); !ok || id != "id-1" {
		t.Errorf("Get() = %q, %v", id, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if _, ok := c.Get("elena-verna"); ok {
		t.Error("expected miss after Clear")
	}
}
