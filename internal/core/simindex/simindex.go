// Package simindex implements the LSH-banded approximate similarity index.
// One shard per owner; cross-owner queries are impossible by construction
// because a shard only ever sees its own owner's sketches
package simindex

import (
	"sort"
	"sync"

	"dejavu/internal/core/fingerprint"
	perr "dejavu/internal/platform/errors"
)

// Candidate is a script version sharing at least one band bucket with the
// query, scored by full-sketch comparison
type Candidate struct {
	ID    string
	Score float64
}

// Index holds the per-owner shards. Shards are created on demand and proceed
// fully in parallel; only same-shard operations serialize
type Index struct {
	ex *fingerprint.Extractor

	mu     sync.RWMutex
	shards map[string]*Shard
}

// New constructs an empty Index under a fixed sketch geometry
func New(ex *fingerprint.Extractor) *Index {
	return &Index{ex: ex, shards: make(map[string]*Shard)}
}

// Shard returns the owner's shard, creating it if absent
func (x *Index) Shard(owner string) *Shard {
	x.mu.RLock()
	s, ok := x.shards[owner]
	x.mu.RUnlock()
	if ok {
		return s
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if s, ok = x.shards[owner]; ok {
		return s
	}
	s = newShard(x.ex)
	x.shards[owner] = s
	return s
}

// Drop discards an owner's shard entirely (used before a rebuild)
func (x *Index) Drop(owner string) {
	x.mu.Lock()
	delete(x.shards, owner)
	x.mu.Unlock()
}

// Shard is a single owner's banded index. Inserts and supersession marks are
// single-writer; candidate queries take snapshot reads. Buckets are
// append-only on the hot path; physical removal happens only in Compact
type Shard struct {
	ex *fingerprint.Extractor

	mu         sync.RWMutex
	buckets    map[uint64]map[string]struct{}
	sketches   map[string]fingerprint.Sketch
	superseded map[string]struct{}
}

func newShard(ex *fingerprint.Extractor) *Shard {
	return &Shard{
		ex:         ex,
		buckets:    make(map[uint64]map[string]struct{}),
		sketches:   make(map[string]fingerprint.Sketch),
		superseded: make(map[string]struct{}),
	}
}

// Insert adds the script version to every band bucket derived from its
// sketch. Re-inserting the same id is a no-op (sketches are pure functions of
// content, so the buckets would not change). A sketch whose length disagrees
// with the active geometry (truncated row, or parameters changed without a
// reindex) is corruption, not a panic
func (s *Shard) Insert(id string, sk fingerprint.Sketch) error {
	if got, want := len(sk.Values), s.ex.Params().Hashes; got != want {
		return perr.IndexCorruptf("sketch %s has %d values, geometry wants %d", id, got, want)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sketches[id]; ok {
		return nil
	}
	s.sketches[id] = sk
	for b := 0; b < s.ex.Params().Bands; b++ {
		key := s.ex.BandKey(sk, b)
		bucket, ok := s.buckets[key]
		if !ok {
			bucket = make(map[string]struct{})
			s.buckets[key] = bucket
		}
		bucket[id] = struct{}{}
	}
	return nil
}

// MarkSuperseded hides an id from future candidate queries without touching
// the buckets; physical removal is Compact's job
func (s *Shard) MarkSuperseded(id string) {
	s.mu.Lock()
	s.superseded[id] = struct{}{}
	s.mu.Unlock()
}

// Candidates returns every non-superseded script version sharing at least one
// band bucket with the query sketch, excluding selfID, scored by element-wise
// sketch comparison. Cost is proportional to the candidate set, never the
// corpus
func (s *Shard) Candidates(sk fingerprint.Sketch, selfID string) []Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for b := 0; b < s.ex.Params().Bands; b++ {
		key := s.ex.BandKey(sk, b)
		for id := range s.buckets[key] {
			if id == selfID {
				continue
			}
			if _, gone := s.superseded[id]; gone {
				continue
			}
			seen[id] = struct{}{}
		}
	}

	out := make([]Candidate, 0, len(seen))
	for id := range seen {
		other, ok := s.sketches[id]
		if !ok {
			continue
		}
		out = append(out, Candidate{ID: id, Score: fingerprint.Estimate(sk, other)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Compact rebuilds the bucket maps without superseded ids. It assembles the
// replacement off to the side and swaps it in under the write lock, so
// concurrent queries only ever see a complete snapshot
func (s *Shard) Compact() {
	s.mu.RLock()
	gone := make(map[string]struct{}, len(s.superseded))
	for id := range s.superseded {
		gone[id] = struct{}{}
	}
	live := make(map[string]fingerprint.Sketch, len(s.sketches))
	for id, sk := range s.sketches {
		if _, dead := gone[id]; !dead {
			live[id] = sk
		}
	}
	s.mu.RUnlock()

	buckets := make(map[uint64]map[string]struct{})
	for id, sk := range live {
		for b := 0; b < s.ex.Params().Bands; b++ {
			key := s.ex.BandKey(sk, b)
			bucket, ok := buckets[key]
			if !ok {
				bucket = make(map[string]struct{})
				buckets[key] = bucket
			}
			bucket[id] = struct{}{}
		}
	}

	s.mu.Lock()
	// ids inserted between the snapshot and the swap are folded in here; the
	// write lock makes this the only mutation point
	for id, sk := range s.sketches {
		if _, had := live[id]; had {
			continue
		}
		if _, dead := s.superseded[id]; dead {
			continue
		}
		for b := 0; b < s.ex.Params().Bands; b++ {
			key := s.ex.BandKey(sk, b)
			bucket, ok := buckets[key]
			if !ok {
				bucket = make(map[string]struct{})
				buckets[key] = bucket
			}
			bucket[id] = struct{}{}
		}
		live[id] = sk
	}
	// marks that landed while the buckets were rebuilding name ids the
	// snapshot still saw as live; drop them from the replacement maps so
	// clearing the mark set below cannot resurrect them
	for id := range s.superseded {
		sk, had := live[id]
		if !had {
			continue
		}
		delete(live, id)
		for b := 0; b < s.ex.Params().Bands; b++ {
			key := s.ex.BandKey(sk, b)
			if bucket, ok := buckets[key]; ok {
				delete(bucket, id)
				if len(bucket) == 0 {
					delete(buckets, key)
				}
			}
		}
	}
	s.buckets = buckets
	s.sketches = live
	s.superseded = make(map[string]struct{})
	s.mu.Unlock()
}

// Check runs the shard's internal consistency validation: every bucket member
// must have a stored sketch of the configured length, and every live sketch
// must be reachable from all of its band buckets
func (s *Shard) Check() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.ex.Params().Hashes
	for id, sk := range s.sketches {
		if len(sk.Values) != h {
			return perr.IndexCorruptf("sketch %s has %d values, want %d", id, len(sk.Values), h)
		}
		for b := 0; b < s.ex.Params().Bands; b++ {
			key := s.ex.BandKey(sk, b)
			if _, ok := s.buckets[key][id]; !ok {
				return perr.IndexCorruptf("sketch %s missing from band %d bucket", id, b)
			}
		}
	}
	for key, bucket := range s.buckets {
		for id := range bucket {
			if _, ok := s.sketches[id]; !ok {
				return perr.IndexCorruptf("bucket %x references unknown id %s", key, id)
			}
		}
	}
	return nil
}

// Len reports the number of indexed (including superseded) script versions
func (s *Shard) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sketches)
}

// Superseded reports how many hidden ids are awaiting physical removal;
// callers use it to decide when a Compact pass is worth running
func (s *Shard) Superseded() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.superseded)
}
