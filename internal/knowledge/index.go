package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	embedBatchSize   = 64
	embedConcurrency = 4
)

// Embedder turns texts into embedding vectors, one per text and in order
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Index is an in-memory embedding index over documents
type Index struct {
	embedder Embedder
	docs     []Document
	vectors  [][]float32
}

// Build embeds every document and returns the searchable index
func Build(ctx context.Context, embedder Embedder, docs []Document) (*Index, error) {
	if len(docs) == 0 {
		return nil, errors.New("knowledge base is empty")
	}

	vectors := make([][]float32, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)

	for start := 0; start < len(docs); start += embedBatchSize {
		end := min(start+embedBatchSize, len(docs))
		g.Go(func() error {
			texts := make([]string, 0, end-start)
			for _, d := range docs[start:end] {
				texts = append(texts, d.PageContent)
			}
			batch, err := embedder.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed documents %d-%d: %w", start, end-1, err)
			}
			if len(batch) != len(texts) {
				return fmt.Errorf("embedder returned %d vectors for %d documents", len(batch), len(texts))
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.WithField("documents", len(docs)).Info("knowledge base indexed")

	return &Index{embedder: embedder, docs: docs, vectors: vectors}, nil
}

// Len returns the number of indexed documents
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Search returns the k documents most similar to query, best first.
// Equal scores keep document order.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]Document, error) {
	if k <= 0 {
		return nil, nil
	}

	qv, err := idx.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for the query", len(qv))
	}

	order := make([]int, len(idx.docs))
	scores := make([]float64, len(idx.docs))
	for i, v := range idx.vectors {
		order[i] = i
		scores[i] = cosine(qv[0], v)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	k = min(k, len(order))
	out := make([]Document, 0, k)
	for _, i := range order[:k] {
		out = append(out, idx.docs[i])
	}
	return out, nil
}

// cosine returns the cosine similarity of a and b; zero vectors score 0
func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
