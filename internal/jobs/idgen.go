package jobs

import (
	"strconv"
	"sync/atomic"
	"time"
)

// IDGenerator hands out job identifiers that are unique for the life of the
// generator.
type IDGenerator interface {
	Next() string
}

// SequenceIDGenerator produces ids of the form job-<epoch_ms>-<seq>. The
// sequence is monotonic per generator, so two ids minted in the same
// millisecond still differ.
type SequenceIDGenerator struct {
	now func() time.Time
	seq atomic.Uint64
}

// NewSequenceIDGenerator returns a generator using the wall clock.
func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{now: time.Now}
}

// NewSequenceIDGeneratorWithClock returns a generator reading time from now.
func NewSequenceIDGeneratorWithClock(now func() time.Time) *SequenceIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &SequenceIDGenerator{now: now}
}

// Next returns a fresh identifier.
func (g *SequenceIDGenerator) Next() string {
	seq := g.seq.Add(1)
	return "job-" + strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + strconv.FormatUint(seq, 10)
}
