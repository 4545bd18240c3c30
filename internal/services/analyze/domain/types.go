// Package domain defines the analysis pipeline types
package domain

import "dejavu/internal/core/normalize"

// ProcessInput is one script revision to run through the pipeline
type ProcessInput struct {
	OwnerID   string
	RepoID    string
	Path      string
	CommitSHA string
	Format    normalize.FormatTag
	Content   []byte
}

// Report summarizes one pipeline run
type Report struct {
	ScriptID     string
	Replayed     bool // commit was already ingested; nothing changed
	Candidates   int
	AlertsRaised int
}

// Measurement is one scored candidate comparison, shipped to the columnar
// sink when one is wired
type Measurement struct {
	OwnerID     string
	SubjectID   string
	CandidateID string
	Score       float64
	Tier        string
}

// Row flattens the measurement in sink column order
// (owner_id, subject_id, candidate_id, score, tier)
func (m Measurement) Row() []any {
	return []any{m.OwnerID, m.SubjectID, m.CandidateID, m.Score, m.Tier}
}
