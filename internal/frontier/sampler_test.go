package frontier

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/nordbil/carcatalog/internal/domain"
)

func makeEntries(n int) []domain.FrontierEntry {
	entries := make([]domain.FrontierEntry, n)
	for i := range entries {
		entries[i] = domain.FrontierEntry{
			Source:    "hekla",
			Reference: fmt.Sprintf("%06d", i),
			URL:       fmt.Sprintf("https://hekla.is/bilar/%06d", i),
		}
	}
	return entries
}

func TestSelectBatch_SmallFrontierReturnedWhole(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(1)))
	entries := makeEntries(10)

	batch, err := sampler.SelectBatch(entries, 25)
	if err != nil {
		t.Fatalf("SelectBatch() error = %v", err)
	}
	if len(batch) != len(entries) {
		t.Errorf("SelectBatch() returned %d entries, want %d", len(batch), len(entries))
	}
}

func TestSelectBatch_InvalidBatchSize(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(1)))

	for _, size := range []int{0, -5} {
		if _, err := sampler.SelectBatch(makeEntries(10), size); err == nil {
			t.Errorf("SelectBatch(size=%d) expected error", size)
		}
	}
}

func TestSelectBatch_SpreadsAcrossFrontier(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(42)))
	entries := makeEntries(1000)
	batchSize := 100

	batch, err := sampler.SelectBatch(entries, batchSize)
	if err != nil {
		t.Fatalf("SelectBatch() error = %v", err)
	}
	if len(batch) != batchSize {
		t.Fatalf("SelectBatch() returned %d entries, want %d", len(batch), batchSize)
	}

	// One pick must land in every contiguous bucket, including the tail.
	width := len(entries) / batchSize
	for i, entry := range batch {
		idx := indexOf(entries, entry.Reference)
		if idx < i*width || idx >= (i+1)*width {
			t.Errorf("batch[%d] drawn from index %d, want bucket [%d, %d)", i, idx, i*width, (i+1)*width)
		}
	}
}

func TestSelectBatch_ShortTailBucket(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(7)))

	// 103 entries with batch size 10 gives width 11: nine full buckets and a
	// four entry tail, so only ten picks come back.
	batch, err := sampler.SelectBatch(makeEntries(103), 10)
	if err != nil {
		t.Fatalf("SelectBatch() error = %v", err)
	}
	if len(batch) != 10 {
		t.Errorf("SelectBatch() returned %d entries, want 10", len(batch))
	}
}

func TestSelectBatch_RepeatedCyclesCoverEverything(t *testing.T) {
	sampler := NewSampler(rand.New(rand.NewSource(3)))
	entries := makeEntries(200)
	remaining := make([]domain.FrontierEntry, len(entries))
	copy(remaining, entries)

	// Simulate cycles: every sampled entry is resolved and removed. The
	// frontier must drain completely, never stalling.
	cycles := 0
	for len(remaining) > 0 {
		batch, err := sampler.SelectBatch(remaining, 25)
		if err != nil {
			t.Fatalf("SelectBatch() error = %v", err)
		}
		if len(batch) == 0 {
			t.Fatal("SelectBatch() returned empty batch for non-empty frontier")
		}

		picked := make(map[string]struct{}, len(batch))
		for _, e := range batch {
			picked[e.Reference] = struct{}{}
		}

		next := remaining[:0]
		for _, e := range remaining {
			if _, ok := picked[e.Reference]; !ok {
				next = append(next, e)
			}
		}
		remaining = next
		cycles++
		if cycles > 50 {
			t.Fatalf("frontier not drained after %d cycles, %d left", cycles, len(remaining))
		}
	}
}

func indexOf(entries []domain.FrontierEntry, reference string) int {
	for i := range entries {
		if entries[i].Reference == reference {
			return i
		}
	}
	return -1
}
