// Package repo persists analysis job audit records
package repo

import (
	"context"

	"dejavu/internal/modkit/repokit"
	"dejavu/internal/services/jobs/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the job audit surface. Records trail the in-memory queue; they
// exist for operators, not for scheduling
type Storage interface {
	Insert(ctx context.Context, j domain.Job) error
	SetState(ctx context.Context, id string, state domain.State, attempts int, lastError string) error
	Replace(ctx context.Context, id, commitSHA string) error
	List(ctx context.Context, ownerID string, state domain.State, limit int) ([]domain.Job, error)
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, j domain.Job) error {
	const sqlq = `INSERT INTO analysis_jobs
		(id, owner_id, repo_id, path, commit_sha, state, attempts, last_error, submitted_by, enqueued_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`
	_, err := s.q.Exec(ctx, sqlq,
		j.ID, j.OwnerID, j.RepoID, j.Path, j.CommitSHA,
		string(j.State), j.Attempts, j.LastError, j.SubmittedBy, j.EnqueuedAt,
	)
	return err
}

// SetState implements Storage
func (s *pg) SetState(ctx context.Context, id string, state domain.State, attempts int, lastError string) error {
	const sqlq = `UPDATE analysis_jobs
		SET state = $2, attempts = $3, last_error = $4, updated_at = now()
		WHERE id = $1`
	_, err := s.q.Exec(ctx, sqlq, id, string(state), attempts, lastError)
	return err
}

// Replace implements Storage: a queued job absorbed a newer commit in place
func (s *pg) Replace(ctx context.Context, id, commitSHA string) error {
	const sqlq = `UPDATE analysis_jobs
		SET commit_sha = $2, updated_at = now()
		WHERE id = $1 AND state = 'queued'`
	_, err := s.q.Exec(ctx, sqlq, id, commitSHA)
	return err
}

// List implements Storage
func (s *pg) List(ctx context.Context, ownerID string, state domain.State, limit int) ([]domain.Job, error) {
	const sqlq = `SELECT id::text, owner_id, repo_id, path, commit_sha, state, attempts,
			last_error, submitted_by, enqueued_at, updated_at
		FROM analysis_jobs
		WHERE owner_id = $1 AND ($2 = '' OR state = $2)
		ORDER BY enqueued_at DESC
		LIMIT $3`
	rows, err := s.q.Query(ctx, sqlq, ownerID, string(state), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Job
	for rows.Next() {
		var j domain.Job
		var st string
		if err := rows.Scan(
			&j.ID, &j.OwnerID, &j.RepoID, &j.Path, &j.CommitSHA, &st,
			&j.Attempts, &j.LastError, &j.SubmittedBy, &j.EnqueuedAt, &j.UpdatedAt,
		); err != nil {
			return nil, err
		}
		j.State = domain.State(st)
		out = append(out, j)
	}
	return out, rows.Err()
}
