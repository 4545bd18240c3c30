// Package decide turns scored similarity candidates into alert decisions
// using tiered thresholds and supersession tie-break rules
package decide

// Tier names a similarity bracket that warrants an alert
type Tier string

const (
	// TierLikelyDuplicate is score >= Thresholds.Likely
	TierLikelyDuplicate Tier = "likely_duplicate"
	// TierSimilar is Thresholds.Similar <= score < Thresholds.Likely
	TierSimilar Tier = "similar"
)

// Thresholds are the tier cut points. Likely must be >= Similar
type Thresholds struct {
	Likely  float64
	Similar float64
}

// DefaultThresholds are the shipped cut points
func DefaultThresholds() Thresholds { return Thresholds{Likely: 0.85, Similar: 0.60} }

// Tier maps a score to its tier; ok is false below the alerting floor
func (t Thresholds) Tier(score float64) (Tier, bool) {
	switch {
	case score >= t.Likely:
		return TierLikelyDuplicate, true
	case score >= t.Similar:
		return TierSimilar, true
	}
	return "", false
}

// Subject is the script version that triggered the decision
type Subject struct {
	ID     string
	RepoID string
	Path   string
}

// Candidate is one scored prior script version from the index
type Candidate struct {
	ID     string
	RepoID string
	Path   string
	Score  float64
}

// Decision is one alert upsert the caller should apply. A and B are the two
// script version ids; pair identity normalization (unordered) is the alert
// store's concern
type Decision struct {
	SubjectID   string
	CandidateID string
	Score       float64
	Tier        Tier
}

// Engine applies thresholds and tie-breaks. Stateless; safe for concurrent use
type Engine struct {
	th Thresholds
}

// New constructs an Engine; zero thresholds fall back to the defaults
func New(th Thresholds) *Engine {
	if th.Likely == 0 && th.Similar == 0 {
		th = DefaultThresholds()
	}
	return &Engine{th: th}
}

// Decide scores candidates against the subject and emits zero or more
// decisions. A candidate at the subject's own path in the same repository is
// an earlier version of the same evolving analysis: supersession is not
// duplication, so it is suppressed. The same path in a different repository
// is a genuine duplicate-work signal and alerts normally
func (e *Engine) Decide(sub Subject, cands []Candidate) []Decision {
	var out []Decision
	for _, c := range cands {
		if c.ID == sub.ID || (c.RepoID == sub.RepoID && c.Path == sub.Path) {
			continue
		}
		tier, ok := e.th.Tier(c.Score)
		if !ok {
			continue
		}
		out = append(out, Decision{
			SubjectID:   sub.ID,
			CandidateID: c.ID,
			Score:       c.Score,
			Tier:        tier,
		})
	}
	return out
}
