// Package service implements the analysis job coordinator
package service

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"dejavu/internal/modkit/repokit"
	"dejavu/internal/modkit/scope"
	perr "dejavu/internal/platform/errors"
	"dejavu/internal/platform/logger"
	adom "dejavu/internal/services/analyze/domain"
	"dejavu/internal/services/jobs/domain"
	"dejavu/internal/services/jobs/repo"

	"github.com/google/uuid"
)

// Config for the coordinator
type Config struct {
	// Capacity bounds the queue; Enqueue fails with a capacity error beyond it
	Capacity int
	// Workers is the number of concurrent pipeline runners
	Workers int
	// MaxAttempts bounds retries for transient failures
	MaxAttempts int
	// RetryBase is the first backoff delay; it doubles per attempt
	RetryBase time.Duration
	// JobTimeout caps the wall clock of one pipeline run; a run that exceeds
	// it fails (retryable) without taking the worker down
	JobTimeout time.Duration
}

func (c *Config) defaults() {
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 4
	}
	if c.RetryBase <= 0 {
		c.RetryBase = 250 * time.Millisecond
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = 30 * time.Second
	}
}

// task is one queued analysis; ev is replaced in place when a newer commit
// for the same path arrives while the task is still queued
type task struct {
	id       string
	ev       domain.Event
	attempts int
}

// Coordinator implements domain.EnqueuePort and domain.RunnerPort
type Coordinator struct {
	proc    adom.ProcessorPort
	rebuild adom.RebuildPort

	db     repokit.TxRunner // optional audit trail
	binder repokit.Binder[repo.Storage]

	log logger.Logger
	cfg Config

	queue chan *task

	mu       sync.Mutex
	pending  map[string]*task    // queued tasks by (owner, repo, path)
	inflight map[string]struct{} // keys currently being processed
}

// New constructs a coordinator; db may be nil to skip the audit trail
func New(
	proc adom.ProcessorPort,
	rebuild adom.RebuildPort,
	db repokit.TxRunner,
	b repokit.Binder[repo.Storage],
	log logger.Logger,
	cfg Config,
) *Coordinator {
	cfg.defaults()
	return &Coordinator{
		proc:     proc,
		rebuild:  rebuild,
		db:       db,
		binder:   b,
		log:      log.With().Str("component", "jobs").Logger(),
		cfg:      cfg,
		queue:    make(chan *task, cfg.Capacity),
		pending:  make(map[string]*task),
		inflight: make(map[string]struct{}),
	}
}

func key(ev domain.Event) string {
	return ev.OwnerID + "\x00" + ev.RepoID + "\x00" + ev.Path
}

// Enqueue implements domain.EnqueuePort. A queued event for the same
// (owner, repo, path) is replaced rather than duplicated; a full queue is a
// capacity error the caller must surface as backpressure
func (c *Coordinator) Enqueue(ctx context.Context, ev domain.Event) (string, error) {
	if ev.OwnerID == "" || ev.Path == "" {
		return "", perr.InvalidArgf("enqueue requires owner and path")
	}
	k := key(ev)

	c.mu.Lock()
	if t, ok := c.pending[k]; ok {
		t.ev = ev
		id := t.id
		c.mu.Unlock()
		c.auditReplace(ctx, id, ev.CommitSHA)
		return id, nil
	}
	t := &task{id: uuid.NewString(), ev: ev}
	select {
	case c.queue <- t:
		c.pending[k] = t
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		return "", perr.Capacityf("analysis queue is full (%d)", c.cfg.Capacity)
	}

	c.auditInsert(ctx, t)
	return t.id, nil
}

// Run implements domain.RunnerPort
func (c *Coordinator) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-c.queue:
					c.work(ctx, t)
				}
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}

// work runs one task through the pipeline with retry and corruption recovery
func (c *Coordinator) work(ctx context.Context, t *task) {
	k := key(t.ev)

	c.mu.Lock()
	if _, busy := c.inflight[k]; busy {
		// same path is already running; settle ordering by waiting a beat
		c.mu.Unlock()
		c.later(ctx, t, c.cfg.RetryBase)
		return
	}
	if c.pending[k] == t {
		delete(c.pending, k)
	}
	c.inflight[k] = struct{}{}
	ev := t.ev
	c.mu.Unlock()

	c.auditState(ctx, t, domain.StateRunning, "")
	err := c.process(ctx, ev)

	if perr.CodeOf(err) == perr.ErrorCodeIndexCorrupt && c.rebuild != nil {
		c.log.Warn().Err(err).Str("owner_id", ev.OwnerID).Msg("index corrupt; rebuilding shard")
		if rerr := c.rebuild.RebuildShard(ctx, ev.OwnerID); rerr != nil {
			err = rerr
		} else {
			err = c.process(ctx, ev)
		}
	}

	c.mu.Lock()
	delete(c.inflight, k)
	c.mu.Unlock()

	switch {
	case err == nil:
		c.auditState(ctx, t, domain.StateSucceeded, "")
	case perr.Retryable(err) && t.attempts+1 < c.cfg.MaxAttempts:
		t.attempts++
		c.auditState(ctx, t, domain.StateFailed, err.Error())
		c.later(ctx, t, c.cfg.RetryBase<<uint(t.attempts-1))
	default:
		c.log.Error().Err(err).
			Str("owner_id", ev.OwnerID).
			Str("path", ev.Path).
			Int("attempts", t.attempts+1).
			Msg("analysis job dead")
		c.auditState(ctx, t, domain.StateDead, errString(err))
	}
}

// process runs one pipeline pass under the configured wall-clock cap. An
// overrun fails only this job and is surfaced as a transient failure
func (c *Coordinator) process(ctx context.Context, ev domain.Event) error {
	jctx, cancel := context.WithTimeout(ctx, c.cfg.JobTimeout)
	defer cancel()
	_, err := c.proc.Process(jctx, ev)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return perr.Unavailablef("analysis timed out after %s", c.cfg.JobTimeout)
	}
	return err
}

// later re-queues a task after a delay. A different task queued for the same
// path meanwhile supersedes this one and the retry is dropped; the task's own
// pending entry (left in place while it waits out a busy path) does not
func (c *Coordinator) later(ctx context.Context, t *task, d time.Duration) {
	time.AfterFunc(d, func() {
		k := key(t.ev)
		c.mu.Lock()
		if cur, ok := c.pending[k]; ok && cur != t {
			c.mu.Unlock()
			c.auditState(ctx, t, domain.StateDead, "superseded by a newer event")
			return
		}
		select {
		case c.queue <- t:
			c.pending[k] = t
			c.mu.Unlock()
		default:
			if c.pending[k] == t {
				delete(c.pending, k)
			}
			c.mu.Unlock()
			c.auditState(ctx, t, domain.StateDead, "queue full on retry")
		}
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// QueueDepth reports how many tasks are waiting; used by health endpoints
func (c *Coordinator) QueueDepth() int { return len(c.queue) }

// audit helpers; no-ops without a database

func (c *Coordinator) auditInsert(ctx context.Context, t *task) {
	if c.db == nil {
		return
	}
	now := time.Now().UTC()
	by, _ := scope.Get(ctx, "user_id")
	j := domain.Job{
		ID:          t.id,
		OwnerID:     t.ev.OwnerID,
		RepoID:      t.ev.RepoID,
		Path:        t.ev.Path,
		CommitSHA:   t.ev.CommitSHA,
		State:       domain.StateQueued,
		SubmittedBy: by,
		EnqueuedAt:  now,
		UpdatedAt:   now,
	}
	err := repokit.WithTx(ctx, c.db, func(q repokit.Queryer) error {
		return c.binder.Bind(q).Insert(ctx, j)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("job_id", t.id).Msg("job audit insert failed")
	}
}

func (c *Coordinator) auditReplace(ctx context.Context, id, commitSHA string) {
	if c.db == nil {
		return
	}
	err := repokit.WithTx(ctx, c.db, func(q repokit.Queryer) error {
		return c.binder.Bind(q).Replace(ctx, id, commitSHA)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("job_id", id).Msg("job audit replace failed")
	}
}

func (c *Coordinator) auditState(ctx context.Context, t *task, st domain.State, lastErr string) {
	if c.db == nil {
		return
	}
	err := repokit.WithTx(ctx, c.db, func(q repokit.Queryer) error {
		return c.binder.Bind(q).SetState(ctx, t.id, st, t.attempts, lastErr)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("job_id", t.id).Msg("job audit update failed")
	}
}
