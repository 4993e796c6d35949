// ABOUTME: Tests for SQLite corpus writes, listing and stats
// ABOUTME: Verifies upserts are idempotent on natural keys
package sqlite

import (
	"testing"

	"github.com/harper/podcast-wisdom/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedEpisode(t *testing.T, s *Store, ep *models.Episode, guests ...string) string {
	t.Helper()
	ctx := t.Context()

	epID, err := s.UpsertEpisode(ctx, ep)
	if err != nil {
		t.Fatalf("UpsertEpisode(%s) error = %v", ep.Slug, err)
	}
	for _, name := range guests {
		guestID, err := s.UpsertGuest(ctx, name, slugOf(name))
		if err != nil {
			t.Fatalf("UpsertGuest(%s) error = %v", name, err)
		}
		if err := s.LinkEpisodeGuest(ctx, epID, guestID); err != nil {
			t.Fatalf("LinkEpisodeGuest() error = %v", err)
		}
	}
	return epID
}

func slugOf(name string) string {
	b := []byte(name)
	for i, c := range b {
		switch {
		case c == ' ':
			b[i] = '-'
		case c >= 'A' && c <= 'Z':
			b[i] = c + 32
		}
	}
	return string(b)
}

func TestUpsertGuest_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	id1, err := s.UpsertGuest(ctx, "Brian Chesky", "brian-chesky")
	if err != nil {
		t.Fatalf("UpsertGuest() error = %v", err)
	}
	id2, err := s.UpsertGuest(ctx, "Brian  Chesky", "brian-chesky")
	if err != nil {
		t.Fatalf("UpsertGuest() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected same ID for same slug, got %s and %s", id1, id2)
	}

	var name string
	if err := s.Conn().QueryRow("SELECT name FROM guests WHERE slug = ?", "brian-chesky").Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "Brian  Chesky" {
		t.Errorf("name = %q, want the latest value", name)
	}
}

func TestUpsertEpisode_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	ep := &models.Episode{Slug: "ep-1", Title: "First", ViewCount: 10}
	id1, err := s.UpsertEpisode(ctx, ep)
	if err != nil {
		t.Fatalf("UpsertEpisode() error = %v", err)
	}

	ep.Title = "First (updated)"
	id2, err := s.UpsertEpisode(ctx, ep)
	if err != nil {
		t.Fatalf("UpsertEpisode() error = %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected stable ID, got %s and %s", id1, id2)
	}

	episodes, err := s.ListEpisodes(ctx, models.EpisodeFilter{})
	if err != nil {
		t.Fatalf("ListEpisodes() error = %v", err)
	}
	if len(episodes) != 1 || episodes[0].Title != "First (updated)" {
		t.Errorf("unexpected episodes: %+v", episodes)
	}
}

func TestLinkAndChunks_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	epID := seedEpisode(t, s, &models.Episode{Slug: "ep-1"}, "Elena Verna")
	guestID, _ := s.UpsertGuest(ctx, "Elena Verna", "elena-verna")
	if err := s.LinkEpisodeGuest(ctx, epID, guestID); err != nil {
		t.Fatalf("second LinkEpisodeGuest() error = %v", err)
	}

	chunk := models.Chunk{Index: 0, Speaker: "Elena Verna", Content: "Growth is a system.", WordCount: 4, Embedding: []float32{1, 0}}
	for i := 0; i < 2; i++ {
		if err := s.UpsertChunk(ctx, epID, chunk); err != nil {
			t.Fatalf("UpsertChunk() error = %v", err)
		}
	}
	chunk.Index = 1
	chunk.Embedding = nil
	if err := s.UpsertChunk(ctx, epID, chunk); err != nil {
		t.Fatalf("UpsertChunk() without embedding error = %v", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	want := models.Stats{Guests: 1, Episodes: 1, EpisodeGuests: 1, Chunks: 2}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}
}

func TestUpsertChunk_UnknownEpisode(t *testing.T) {
	s := newTestStore(t)
	err := s.UpsertChunk(t.Context(), "missing", models.Chunk{Content: "x"})
	if err == nil {
		t.Error("expected foreign key error for unknown episode")
	}
}

func TestListEpisodes_FiltersAndSort(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	seedEpisode(t, s, &models.Episode{Slug: "a", Title: "Founder mode", ViewCount: 500, DurationSeconds: 3000}, "Brian Chesky")
	seedEpisode(t, s, &models.Episode{Slug: "b", Title: "Growth loops", Description: "PLG and founder-led sales", ViewCount: 900, DurationSeconds: 1000}, "Elena Verna")
	seedEpisode(t, s, &models.Episode{Slug: "c", Title: "Product discovery", ViewCount: 100, DurationSeconds: 5000}, "Marty Cagan", "Brian Chesky")

	tests := []struct {
		name   string
		filter models.EpisodeFilter
		want   []string
	}{
		{"default sort is views", models.EpisodeFilter{}, []string{"b", "a", "c"}},
		{"sort by duration", models.EpisodeFilter{Sort: models.SortByDuration}, []string{"c", "a", "b"}},
		{"limit", models.EpisodeFilter{Limit: 2}, []string{"b", "a"}},
		{"search title or description", models.EpisodeFilter{Search: "FOUNDER"}, []string{"b", "a"}},
		{"guest substring", models.EpisodeFilter{Guest: "chesky"}, []string{"a", "c"}},
		{"guest filter before limit", models.EpisodeFilter{Guest: "cagan", Limit: 1}, []string{"c"}},
		{"guest and search", models.EpisodeFilter{Guest: "chesky", Search: "discovery"}, []string{"c"}},
		{"no match", models.EpisodeFilter{Guest: "nobody"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			episodes, err := s.ListEpisodes(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEpisodes() error = %v", err)
			}
			var got []string
			for _, ep := range episodes {
				got = append(got, ep.Slug)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestListEpisodes_RecentAndGuestNames(t *testing.T) {
	s := newTestStore(t)
	ctx := t.Context()

	seedEpisode(t, s, &models.Episode{Slug: "old"}, "Annie Duke")
	seedEpisode(t, s, &models.Episode{Slug: "new"}, "Julie Zhuo")
	// touching "old" again makes it the most recently updated
	seedEpisode(t, s, &models.Episode{Slug: "old"})

	episodes, err := s.ListEpisodes(ctx, models.EpisodeFilter{Sort: models.SortByRecent})
	if err != nil {
		t.Fatalf("ListEpisodes() error = %v", err)
	}
	if len(episodes) != 2 || episodes[0].Slug != "old" {
		t.Fatalf("unexpected order: %+v", episodes)
	}
	if episodes[0].Guest != "Annie Duke" {
		t.Errorf("Guest = %q, want Annie Duke", episodes[0].Guest)
	}
	if episodes[0].UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}
