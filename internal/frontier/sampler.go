package frontier

import (
	"errors"
	"math/rand"

	"github.com/nordbil/carcatalog/internal/domain"
)

// ErrInvalidBatchSize is returned when a batch size of zero or less is requested.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// Sampler selects processing batches that spread fairly across the whole
// frontier instead of always draining its head. Discovery appends entries in
// source-walk order, so head-only batches would starve later segments.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler using the given random source. Pass a seeded
// source in tests for determinism.
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// SelectBatch returns up to batchSize entries. A frontier that fits in one
// batch is returned whole. A larger frontier is partitioned, in stored order,
// into batchSize contiguous buckets of ceil(len/batchSize) width (the last
// bucket may be short) and one entry is drawn at random from each bucket.
// Entries removed after processing shrink later bucket widths, so repeated
// cycles converge to full coverage.
func (s *Sampler) SelectBatch(entries []domain.FrontierEntry, batchSize int) ([]domain.FrontierEntry, error) {
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}

	if len(entries) <= batchSize {
		return entries, nil
	}

	width := (len(entries) + batchSize - 1) / batchSize

	batch := make([]domain.FrontierEntry, 0, batchSize)
	for start := 0; start < len(entries); start += width {
		end := start + width
		if end > len(entries) {
			end = len(entries)
		}
		batch = append(batch, entries[start+s.rng.Intn(end-start)])
	}

	return batch, nil
}
