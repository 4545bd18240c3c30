// Package domain defines the ingest wire types
package domain

// ChangeEvent is one committed script revision pushed by a repo hook or
// poller. Content rides inline; scripts are small by definition and the
// normalizer enforces the size cap
type ChangeEvent struct {
	RepoID    string `json:"repo_id" validate:"required,min=1,max=200" example:"lab-analytics"`
	Path      string `json:"path" validate:"required,min=1,max=512" example:"alice/etl.py"`
	CommitSHA string `json:"commit_sha" validate:"required,min=7,max=64" example:"4f2b9d0c1a"`
	Format    string `json:"format" validate:"required,oneof=generic-script notebook-cell-sequence" example:"generic-script"`
	Content   string `json:"content" validate:"required" example:"import pandas as pd"`
}

// EnqueueReceipt acknowledges an accepted event
type EnqueueReceipt struct {
	JobID string `json:"job_id"`
}
