package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/enerdesk/backoffice/internal/data"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/model"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// AuditDispatcher forwards an activity entry to configured webhook sinks.
type AuditDispatcher interface {
	Dispatch(ctx context.Context, entry model.ActivityEntry)
}

// ActivityServiceOptions groups dependencies for ActivityService.
type ActivityServiceOptions struct {
	Store      ActivityStore
	Dispatcher AuditDispatcher
	Logger     *slog.Logger

	// RecordTimeout bounds the background write so a stalled database
	// cannot pile up goroutines. Defaults to 5s.
	RecordTimeout time.Duration
}

// ActivityService writes the audit trail. Recording is best-effort: a failed
// write is logged and swallowed so it can never fail the business operation
// that produced it.
type ActivityService struct {
	store      ActivityStore
	dispatcher AuditDispatcher
	logger     *slog.Logger
	timeout    time.Duration
}

// NewActivityService constructs a new ActivityService.
func NewActivityService(opts ActivityServiceOptions) *ActivityService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RecordTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ActivityService{
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		logger:     logger,
		timeout:    timeout,
	}
}

// Record appends one entry and forwards it to the webhook sinks. The write
// is detached from the caller's context so a cancelled request cannot abort
// the audit trail.
func (s *ActivityService) Record(ctx context.Context, actorID, action, detail, origin string) {
	entry := model.ActivityEntry{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Detail:    detail,
		Origin:    origin,
		CreatedAt: time.Now().UTC(),
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.store.Insert(writeCtx, &entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record activity",
			"action", action, "actor_id", actorID, "error", err)
		return
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(writeCtx, entry)
	}
}

// List returns the activity log, newest first. Reading the log requires the
// manager role.
func (s *ActivityService) List(ctx context.Context, sess domainauth.Session, opts data.ActivityListOptions) ([]*model.ActivityEntry, int, error) {
	if !sess.Role.Satisfies(domainauth.RoleManager) {
		return nil, 0, apperrors.InsufficientRole()
	}
	return s.store.List(ctx, opts)
}
