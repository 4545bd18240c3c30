// Package repo provides the duplicate alert repository implementation
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"strconv"

	"dejavu/internal/modkit/repokit"
	ptime "dejavu/internal/platform/time"
	"dejavu/internal/services/alerts/domain"

	"github.com/jackc/pgx/v5"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the alert persistence surface used by the service layer
type Storage interface {
	FindByPairKey(ctx context.Context, ownerID, pairKey string) (*domain.Alert, error)
	Get(ctx context.Context, id string) (domain.Alert, error)
	Insert(ctx context.Context, a domain.Alert) (bool, error)
	BumpScore(ctx context.Context, id string, score float64, tier domain.Tier) error
	SetState(ctx context.Context, id string, state domain.State) error
	List(ctx context.Context, ownerID string, f domain.ListFilter) ([]domain.Alert, error)
	ExpireSuperseded(ctx context.Context, ownerID, scriptID string) (int, error)
}

func isNoRows(err error) bool {
	return errors.Is(err, stdsql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}

const alertCols = `id::text, owner_id, pair_key, subject_id::text, candidate_id::text,
	score, tier, state, description, created_at, updated_at, resolved_at`

func scanAlert(row repokit.Row) (domain.Alert, error) {
	var a domain.Alert
	var tier, state string
	var resolved stdsql.NullTime
	err := row.Scan(
		&a.ID, &a.OwnerID, &a.PairKey, &a.SubjectID, &a.CandidateID,
		&a.Score, &tier, &state, &a.Description, &a.CreatedAt, &a.UpdatedAt, &resolved,
	)
	a.Tier = domain.Tier(tier)
	a.State = domain.State(state)
	a.ResolvedAt = ptime.Ptr(resolved.Time) // NULL scans as the zero time
	return a, err
}

// FindByPairKey implements Storage
func (s *pg) FindByPairKey(ctx context.Context, ownerID, pairKey string) (*domain.Alert, error) {
	const sqlq = `SELECT ` + alertCols + ` FROM duplicate_alerts
		WHERE owner_id = $1 AND pair_key = $2`
	a, err := scanAlert(s.q.QueryRow(ctx, sqlq, ownerID, pairKey))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, id string) (domain.Alert, error) {
	const sqlq = `SELECT ` + alertCols + ` FROM duplicate_alerts WHERE id = $1`
	return scanAlert(s.q.QueryRow(ctx, sqlq, id))
}

// Insert implements Storage. Returns false when the pair identity already
// has a row; callers re-read and branch on its state
func (s *pg) Insert(ctx context.Context, a domain.Alert) (bool, error) {
	const sqlq = `INSERT INTO duplicate_alerts
		(id, owner_id, pair_key, subject_id, candidate_id, score, tier, state, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (owner_id, pair_key) DO NOTHING`
	tag, err := s.q.Exec(ctx, sqlq,
		a.ID, a.OwnerID, a.PairKey, a.SubjectID, a.CandidateID,
		a.Score, string(a.Tier), string(a.State), a.Description, a.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// BumpScore implements Storage; only open alerts move, and only upward
func (s *pg) BumpScore(ctx context.Context, id string, score float64, tier domain.Tier) error {
	const sqlq = `UPDATE duplicate_alerts
		SET score = $2, tier = $3, updated_at = now()
		WHERE id = $1 AND state = 'open' AND score < $2`
	_, err := s.q.Exec(ctx, sqlq, id, score, string(tier))
	return err
}

// SetState implements Storage. Every state it is asked to write is terminal,
// so the resolution timestamp lands in the same statement
func (s *pg) SetState(ctx context.Context, id string, state domain.State) error {
	const sqlq = `UPDATE duplicate_alerts
		SET state = $2, updated_at = now(), resolved_at = now()
		WHERE id = $1`
	_, err := s.q.Exec(ctx, sqlq, id, string(state))
	return err
}

// List implements Storage
func (s *pg) List(ctx context.Context, ownerID string, f domain.ListFilter) ([]domain.Alert, error) {
	sqlq := `SELECT ` + alertCols + ` FROM duplicate_alerts WHERE owner_id = $1`
	args := []any{ownerID}
	if f.State != "" {
		sqlq += ` AND state = $2`
		args = append(args, string(f.State))
	}
	sqlq += ` ORDER BY created_at DESC, id`
	if f.Limit > 0 {
		sqlq += ` LIMIT ` + strconv.Itoa(f.Limit)
	}
	rows, err := s.q.Query(ctx, sqlq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ExpireSuperseded implements Storage: open alerts where the given script is
// one side and both sides are superseded flip to expired
func (s *pg) ExpireSuperseded(ctx context.Context, ownerID, scriptID string) (int, error) {
	const sqlq = `UPDATE duplicate_alerts a
		SET state = 'expired', updated_at = now(), resolved_at = now()
		WHERE a.owner_id = $1
		  AND a.state = 'open'
		  AND (a.subject_id = $2::uuid OR a.candidate_id = $2::uuid)
		  AND NOT EXISTS (
			SELECT 1 FROM script_versions v
			WHERE v.id IN (a.subject_id, a.candidate_id)
			  AND v.superseded_by IS NULL
		  )`
	tag, err := s.q.Exec(ctx, sqlq, ownerID, scriptID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
