// ABOUTME: Vector search for the SQLite store
// ABOUTME: Embeddings are float32 BLOBs ranked by cosine similarity in process
package sqlite

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/harper/podcast-wisdom/internal/models"
)

// SearchChunks scores every embedded chunk against query and returns the best
// matches above threshold, highest similarity first.
func (s *Store) SearchChunks(ctx context.Context, query []float32, threshold float64, limit int) ([]models.ChunkMatch, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT c.id, c.content, c.speaker, c.timestamp_start, c.timestamp_seconds,
			e.title, e.slug, e.youtube_url, `+guestNamesExpr+`, c.embedding
		FROM transcript_chunks c
		JOIN episodes e ON e.id = c.episode_id
		WHERE c.embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.ChunkMatch

	for rows.Next() {
		var (
			m    models.ChunkMatch
			blob []byte
		)
		if err := rows.Scan(&m.ChunkID, &m.Content, &m.Speaker, &m.TimestampStart, &m.TimestampSeconds,
			&m.EpisodeTitle, &m.EpisodeSlug, &m.YouTubeURL, &m.GuestName, &blob); err != nil {
			return nil, err
		}

		m.Similarity = CosineSimilarity(query, blobToVector(blob))
		if m.Similarity <= threshold {
			continue
		}
		results = append(results, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// vectorToBlob converts a float32 slice to a little-endian binary blob
func vectorToBlob(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to a float32 slice
func blobToVector(blob []byte) []float32 {
	count := len(blob) / 4
	vector := make([]float32, count)
	for i := 0; i < count; i++ {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}

// CosineSimilarity calculates cosine similarity between two vectors.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
