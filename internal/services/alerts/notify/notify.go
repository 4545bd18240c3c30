// Package notify delivers new-alert notifications
package notify

import (
	"context"

	"dejavu/internal/platform/logger"
	"dejavu/internal/services/alerts/domain"
)

// Log emits one structured log line per newly opened alert. Downstream
// shippers tail these; until a push channel exists this is the whole
// notification story
type Log struct {
	log logger.Logger
}

// NewLog constructs a log notifier
func NewLog(l logger.Logger) *Log {
	sub := l.With().Str("component", "alert_notify").Logger()
	return &Log{log: sub}
}

// NotifyOpened implements domain.NotifierPort
func (n *Log) NotifyOpened(ctx context.Context, a domain.Alert) {
	n.log.Info().
		Str("alert_id", a.ID).
		Str("owner_id", a.OwnerID).
		Str("subject_id", a.SubjectID).
		Str("candidate_id", a.CandidateID).
		Str("tier", string(a.Tier)).
		Float64("score", a.Score).
		Msg(a.Description)
}
