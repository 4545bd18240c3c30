// Package fingerprint derives fixed-size MinHash sketches from normalized
// operation-token sequences. Sketches are pure functions of (document, params)
// and approximate Jaccard similarity between shingle sets
package fingerprint

import (
	"hash/fnv"

	"dejavu/internal/core/normalize"
	perr "dejavu/internal/platform/errors"
)

// Params fixes the sketch geometry for one index generation. Changing any
// field invalidates every stored sketch and requires a full reindex
type Params struct {
	ShingleK int // tokens per shingle
	Hashes   int // minhash functions (Bands * Rows)
	Bands    int
	Rows     int
}

// DefaultParams is the shipped generation: k=5 shingles, 128 hashes as
// 16 bands of 8 rows
func DefaultParams() Params {
	return Params{ShingleK: 5, Hashes: 128, Bands: 16, Rows: 8}
}

// Validate rejects geometries that cannot band correctly
func (p Params) Validate() error {
	if p.ShingleK < 1 {
		return perr.InvalidArgf("shingle k must be >= 1, got %d", p.ShingleK)
	}
	if p.Hashes < 1 || p.Bands < 1 || p.Rows < 1 {
		return perr.InvalidArgf("hashes/bands/rows must be positive")
	}
	if p.Bands*p.Rows != p.Hashes {
		return perr.InvalidArgf("bands*rows must equal hashes: %d*%d != %d", p.Bands, p.Rows, p.Hashes)
	}
	return nil
}

// Sketch is an ordered vector of minhash values; never mutated after creation
type Sketch struct {
	Values []uint64
}

// Extractor computes sketches under a fixed Params
type Extractor struct {
	p     Params
	seeds []uint64
}

// New constructs an Extractor; Params are validated once here so the hot path
// can assume them
func New(p Params) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{p: p, seeds: deriveSeeds(p.Hashes)}, nil
}

// Params returns the fixed geometry
func (e *Extractor) Params() Params { return e.p }

// Sketch computes the MinHash sketch of doc. Documents shorter than k tokens
// carry insufficient signal and fail with ErrorCodeMalformedScript
func (e *Extractor) Sketch(doc *normalize.Document) (Sketch, error) {
	k := e.p.ShingleK
	if len(doc.Tokens) < k {
		return Sketch{}, perr.MalformedScriptf("document has %d tokens, need at least %d", len(doc.Tokens), k)
	}

	mins := make([]uint64, e.p.Hashes)
	for i := range mins {
		mins[i] = ^uint64(0)
	}

	for i := 0; i+k <= len(doc.Tokens); i++ {
		base := shingleHash(doc.Tokens[i : i+k])
		for j, seed := range e.seeds {
			// h_j(x) = mix(base ^ seed_j); cheap family of independent hashes
			h := mix(base ^ seed)
			if h < mins[j] {
				mins[j] = h
			}
		}
	}
	return Sketch{Values: mins}, nil
}

// BandKey returns a single hash identifying band b of the sketch; documents
// sharing any band key become similarity candidates
func (e *Extractor) BandKey(s Sketch, b int) uint64 {
	r := e.p.Rows
	h := uint64(b) + 0x9e3779b97f4a7c15
	for _, v := range s.Values[b*r : (b+1)*r] {
		h = mix(h ^ v)
	}
	return h
}

// Estimate returns the fraction of matching sketch positions, an unbiased
// estimator of Jaccard similarity. Symmetric by construction
func Estimate(a, b Sketch) float64 {
	if len(a.Values) == 0 || len(a.Values) != len(b.Values) {
		return 0
	}
	same := 0
	for i := range a.Values {
		if a.Values[i] == b.Values[i] {
			same++
		}
	}
	return float64(same) / float64(len(a.Values))
}

// shingleHash folds the shingle's tokens into one 64-bit FNV-1a value with a
// separator byte so token boundaries cannot alias
func shingleHash(toks []string) uint64 {
	h := fnv.New64a()
	for _, t := range toks {
		_, _ = h.Write([]byte(t))
		_, _ = h.Write([]byte{0x1f})
	}
	return h.Sum64()
}

// deriveSeeds expands one splitmix64 stream into per-function seeds, keeping
// the whole family reproducible from the geometry alone
func deriveSeeds(n int) []uint64 {
	seeds := make([]uint64, n)
	x := uint64(0x006e6f74656b6f74) // fixed stream seed; part of the generation
	for i := range seeds {
		x += 0x9e3779b97f4a7c15
		seeds[i] = mix(x)
	}
	return seeds
}

// mix is the splitmix64 finalizer
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
