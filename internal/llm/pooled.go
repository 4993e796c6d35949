// ABOUTME: PooledEmbedder fans a batch out to a bounded ants worker pool
// ABOUTME: Sub-batch results are reassembled in input order
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// PooledEmbedder splits large batches into sub-batches embedded concurrently
type PooledEmbedder struct {
	inner     Embedder
	pool      *ants.Pool
	chunkSize int
}

// NewPooledEmbedder creates a pool of workers goroutines. Each sub-batch holds
// at most chunkSize texts.
func NewPooledEmbedder(inner Embedder, workers, chunkSize int) (*PooledEmbedder, error) {
	if workers < 1 {
		workers = 1
	}
	if chunkSize < 1 {
		chunkSize = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}

	return &PooledEmbedder{inner: inner, pool: pool, chunkSize: chunkSize}, nil
}

// Release stops the pool's workers
func (p *PooledEmbedder) Release() {
	p.pool.Release()
}

// EmbedBatch embeds texts in sub-batches and returns vectors in input order.
// The first sub-batch error cancels the remaining work.
func (p *PooledEmbedder) EmbedBatch(ctx context.Context, texts []string, intent Intent) ([][]float32, error) {
	if len(texts) <= p.chunkSize {
		return p.inner.EmbedBatch(ctx, texts, intent)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		vectors  = make([][]float32, len(texts))
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(texts); start += p.chunkSize {
		end := min(start+p.chunkSize, len(texts))
		start, part := start, texts[start:end]

		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			out, err := p.inner.EmbedBatch(ctx, part, intent)
			if err == nil {
				err = checkCount(part, out)
			}
			if err != nil {
				fail(fmt.Errorf("sub-batch at %d: %w", start, err))
				return
			}
			copy(vectors[start:], out)
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submit sub-batch at %d: %w", start, err))
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
