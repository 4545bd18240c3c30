// Package domain defines the duplicate alert lifecycle types
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// State is the lifecycle state of an alert
type State string

// Alert lifecycle states. Open alerts were raised and not yet acted on;
// merged and skipped are terminal operator verdicts; expired means both
// sides of the pair were superseded before anyone acted
const (
	StateOpen    State = "open"
	StateMerged  State = "merged"
	StateSkipped State = "skipped"
	StateExpired State = "expired"
)

// Terminal reports whether no further transitions are allowed from s
func (s State) Terminal() bool {
	return s == StateMerged || s == StateSkipped || s == StateExpired
}

// Tier labels how strong the similarity evidence is
type Tier string

// Alert tiers, strongest first
const (
	TierLikelyDuplicate Tier = "likely_duplicate"
	TierSimilar         Tier = "similar"
)

// Alert is one raised duplicate-work finding between two script versions
// within a single owner's corpus
type Alert struct {
	ID          string
	OwnerID     string
	PairKey     string
	SubjectID   string
	CandidateID string
	Score       float64
	Tier        Tier
	State       State
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time // nil while the alert is open
}

// Upsert is the write payload for raising an alert. SubjectOps is the
// subject's recognized-operation summary (e.g. "load/transform/fit"), used
// only for the description
type Upsert struct {
	OwnerID     string
	SubjectID   string
	CandidateID string
	SubjectKey  PairSide
	Candidate   PairSide
	Score       float64
	Tier        Tier
	SubjectOps  string
}

// Describe renders the human-readable summary shown alongside an alert
func Describe(in Upsert) string {
	verdict := "repeats"
	if in.Tier == TierSimilar {
		verdict = "resembles"
	}
	what := "analysis"
	if in.SubjectOps != "" {
		what = in.SubjectOps + " analysis"
	}
	return fmt.Sprintf("%s in %s %s earlier work in %s (%.0f%% similar)",
		what, in.SubjectKey.Path, verdict, in.Candidate.Path, in.Score*100)
}

// PairSide identifies one side of an alert pair by repo, path, and content
// hash; a new script version at the same path carries a new hash and
// therefore forms a new pair identity
type PairSide struct {
	RepoID      string
	Path        string
	ContentHash string
}

// PairKey derives the stable identity of an unordered pair. Skipping a pair
// silences exactly this identity; any material change to either side yields
// a different key and may alert again
func PairKey(a, b PairSide) string {
	ka := a.RepoID + "\x00" + a.Path + "\x00" + a.ContentHash
	kb := b.RepoID + "\x00" + b.Path + "\x00" + b.ContentHash
	if kb < ka {
		ka, kb = kb, ka
	}
	sum := sha256.Sum256([]byte(ka + "\x01" + kb))
	return hex.EncodeToString(sum[:])
}

// ListFilter narrows List results
type ListFilter struct {
	State State // zero value means any state
	Limit int
}
