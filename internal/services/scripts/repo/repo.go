// Package repo provides the script version repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"

	"dejavu/internal/core/normalize"
	"dejavu/internal/modkit/repokit"
	"dejavu/internal/services/scripts/domain"

	"github.com/jackc/pgx/v5"
)

func isNoRows(err error) bool {
	return errors.Is(err, stdsql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the script version repository
type Storage interface {
	FindByCommit(ctx context.Context, ownerID, repoID, path, commitSHA string) (*domain.ScriptVersion, error)
	FindActiveByPath(ctx context.Context, ownerID, repoID, path string) (*domain.ScriptVersion, error)
	Insert(ctx context.Context, v domain.ScriptVersion, sketch []uint64) error
	Supersede(ctx context.Context, priorID, byID string) error
	Get(ctx context.Context, id string) (domain.ScriptVersion, error)
	Identities(ctx context.Context, ownerID string, ids []string) (map[string]domain.Identity, error)
	ActiveSketches(ctx context.Context, ownerID string) ([]domain.StoredSketch, error)
	Owners(ctx context.Context) ([]string, error)
}

const versionCols = `id::text, owner_id, repo_id, path, commit_sha, content_hash, format, superseded_by::text, ingested_at`

func scanVersion(row repokit.Row) (domain.ScriptVersion, error) {
	var v domain.ScriptVersion
	var format string
	err := row.Scan(
		&v.ID, &v.OwnerID, &v.RepoID, &v.Path, &v.CommitSHA,
		&v.ContentHash, &format, &v.SupersededBy, &v.IngestedAt,
	)
	v.Format = normalize.FormatTag(format)
	return v, err
}

// FindByCommit implements Storage
func (s *pg) FindByCommit(ctx context.Context, ownerID, repoID, path, commitSHA string) (*domain.ScriptVersion, error) {
	const sqlq = `SELECT ` + versionCols + ` FROM script_versions
		WHERE owner_id = $1 AND repo_id = $2 AND path = $3 AND commit_sha = $4`
	v, err := scanVersion(s.q.QueryRow(ctx, sqlq, ownerID, repoID, path, commitSHA))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// FindActiveByPath implements Storage
func (s *pg) FindActiveByPath(ctx context.Context, ownerID, repoID, path string) (*domain.ScriptVersion, error) {
	const sqlq = `SELECT ` + versionCols + ` FROM script_versions
		WHERE owner_id = $1 AND repo_id = $2 AND path = $3 AND superseded_by IS NULL
		ORDER BY ingested_at DESC LIMIT 1`
	v, err := scanVersion(s.q.QueryRow(ctx, sqlq, ownerID, repoID, path))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Insert implements Storage
func (s *pg) Insert(ctx context.Context, v domain.ScriptVersion, sketch []uint64) error {
	const sqlq = `INSERT INTO script_versions
		(id, owner_id, repo_id, path, commit_sha, content_hash, format, sketch, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.q.Exec(ctx, sqlq,
		v.ID, v.OwnerID, v.RepoID, v.Path, v.CommitSHA,
		v.ContentHash, string(v.Format), domain.EncodeSketch(sketch), v.IngestedAt,
	)
	return err
}

// Supersede implements Storage
func (s *pg) Supersede(ctx context.Context, priorID, byID string) error {
	const sqlq = `UPDATE script_versions SET superseded_by = $2 WHERE id = $1 AND superseded_by IS NULL`
	_, err := s.q.Exec(ctx, sqlq, priorID, byID)
	return err
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, id string) (domain.ScriptVersion, error) {
	const sqlq = `SELECT ` + versionCols + ` FROM script_versions WHERE id = $1`
	return scanVersion(s.q.QueryRow(ctx, sqlq, id))
}

// Identities implements Storage
func (s *pg) Identities(ctx context.Context, ownerID string, ids []string) (map[string]domain.Identity, error) {
	out := make(map[string]domain.Identity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const sqlq = `SELECT id::text, repo_id, path, content_hash FROM script_versions
		WHERE owner_id = $1 AND id = ANY($2::uuid[])`
	rows, err := s.q.Query(ctx, sqlq, ownerID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ident domain.Identity
		if err := rows.Scan(&ident.ID, &ident.RepoID, &ident.Path, &ident.ContentHash); err != nil {
			return nil, err
		}
		out[ident.ID] = ident
	}
	return out, rows.Err()
}

// ActiveSketches implements Storage
func (s *pg) ActiveSketches(ctx context.Context, ownerID string) ([]domain.StoredSketch, error) {
	const sqlq = `SELECT id::text, path, sketch FROM script_versions
		WHERE owner_id = $1 AND superseded_by IS NULL`
	rows, err := s.q.Query(ctx, sqlq, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.StoredSketch
	for rows.Next() {
		var sk domain.StoredSketch
		var raw []byte
		if err := rows.Scan(&sk.ScriptID, &sk.Path, &raw); err != nil {
			return nil, err
		}
		sk.Values = domain.DecodeSketch(raw)
		out = append(out, sk)
	}
	return out, rows.Err()
}

// Owners implements Storage
func (s *pg) Owners(ctx context.Context) ([]string, error) {
	const sqlq = `SELECT DISTINCT owner_id FROM script_versions WHERE superseded_by IS NULL`
	rows, err := s.q.Query(ctx, sqlq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
