package column

import (
	"math"
	"sync/atomic"

	hll "github.com/axiomhq/hyperloglog"

	"github.com/daviszhen/blobvec/pkg/util"
)

const (
	SampleRate float64 = 0.1
)

// DistinctStats estimates the number of distinct logical values fed
// through Update. Cheap enough to maintain while a batch is built,
// used by planners to size hash tables.
type DistinctStats struct {
	log         *hll.Sketch
	sampleCount atomic.Uint64
	totalCount  atomic.Uint64
}

func NewDistinctStats() *DistinctStats {
	ret := &DistinctStats{
		log: hll.New14(),
	}
	return ret
}

// Update feeds the first count rows of col into the sketch. With
// sample set, only a rate bounded prefix is hashed and Count
// extrapolates.
func (stats *DistinctStats) Update(col *Blob, count int, sample bool) {
	if count == 0 {
		return
	}
	count = min(count, col.Size())
	stats.totalCount.Add(uint64(count))
	if sample {
		mval := int(float64(max(util.DefaultVectorSize, count)) * SampleRate)
		count = min(mval, count)
	}
	stats.sampleCount.Add(uint64(count))
	for i := 0; i < count; i++ {
		stats.log.InsertHash(util.HashBytes(col.LogicalAt(i)))
	}
}

func (stats *DistinctStats) Count() uint64 {
	if stats.sampleCount.Load() == 0 ||
		stats.totalCount.Load() == 0 {
		return 0
	}
	cnt := stats.log.Estimate()
	u := float64(min(cnt, stats.sampleCount.Load()))
	s := float64(stats.sampleCount.Load())
	n := float64(stats.totalCount.Load())
	u1 := math.Pow(u/s, 2) * u
	est := u + u1/s*(n-s)
	return min(uint64(est), stats.totalCount.Load())
}

func (stats *DistinctStats) Copy() *DistinctStats {
	ret := &DistinctStats{
		log: stats.log.Clone(),
	}
	ret.sampleCount.Store(stats.sampleCount.Load())
	ret.totalCount.Store(stats.totalCount.Load())
	return ret
}

func (stats *DistinctStats) Merge(other *DistinctStats) {
	_ = stats.log.Merge(other.log)
	stats.sampleCount.Add(other.sampleCount.Load())
	stats.totalCount.Add(other.totalCount.Load())
}
