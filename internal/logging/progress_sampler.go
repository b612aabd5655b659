package logging

import "sync"

// ProgressSampler thins page-completion logs to one line per percentage
// bucket. It is safe for concurrent use by page workers.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize float64
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when completion crosses
// a bucket boundary (default 25%).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// Observe records that done of total units finished and reports whether
// the caller should log it. The first and the final observation always log.
func (s *ProgressSampler) Observe(done, total int) bool {
	if s == nil || total <= 0 {
		return true
	}
	percent := 100 * float64(done) / float64(total)
	bucket := int(percent / s.bucketSize)
	if done >= total {
		bucket = int(100/s.bucketSize) + 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket > s.lastBucket {
		s.lastBucket = bucket
		return true
	}
	return false
}

// Reset clears the sampler state for a new run.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.lastBucket = -1
	s.mu.Unlock()
}
