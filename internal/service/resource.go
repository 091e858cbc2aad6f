package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// ActivityRecorder records a best-effort audit trail entry. Implementations
// must never fail the calling operation.
type ActivityRecorder interface {
	Record(ctx context.Context, actorID, action, detail, origin string)
}

// ResourceServiceOptions groups dependencies for ResourceService.
type ResourceServiceOptions struct {
	Store    ResourceStore
	Activity ActivityRecorder
	Logger   *slog.Logger
}

// ResourceService is the single write path for every schema-described
// resource. It authorizes the session role, validates input against the
// schema, drives the lifecycle state machine, and records activity.
type ResourceService struct {
	store    ResourceStore
	activity ActivityRecorder
	logger   *slog.Logger
}

// NewResourceService constructs a new ResourceService.
func NewResourceService(opts ResourceServiceOptions) *ResourceService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResourceService{store: opts.Store, activity: opts.Activity, logger: logger}
}

// List returns one shaped page of rows plus pagination metadata.
func (s *ResourceService) List(ctx context.Context, sess domainauth.Session, schema *resource.Schema, q resource.ListQuery) ([]map[string]any, resource.Pagination, error) {
	if !sess.Role.Satisfies(schema.ReadRole) {
		return nil, resource.Pagination{}, apperrors.InsufficientRole()
	}

	rows, total, err := s.store.List(ctx, schema, q)
	if err != nil {
		return nil, resource.Pagination{}, err
	}

	shaped := make([]map[string]any, len(rows))
	for i, row := range rows {
		shaped[i] = schema.ShapeRow(row)
	}
	return shaped, resource.NewPagination(q, total), nil
}

// Get returns one shaped row.
func (s *ResourceService) Get(ctx context.Context, sess domainauth.Session, schema *resource.Schema, id string) (map[string]any, error) {
	if !sess.Role.Satisfies(schema.ReadRole) {
		return nil, apperrors.InsufficientRole()
	}

	row, err := s.store.GetByID(ctx, schema, id)
	if err != nil {
		return nil, err
	}
	return schema.ShapeRow(row), nil
}

// Create validates raw form input and inserts a new row. Transactional
// resources get a generated identifier when none is supplied and always
// start in the lifecycle's initial state.
func (s *ResourceService) Create(ctx context.Context, sess domainauth.Session, schema *resource.Schema, input map[string]string) (map[string]any, error) {
	if !sess.Role.Satisfies(schema.WriteRole) {
		return nil, apperrors.InsufficientRole()
	}

	values, err := schema.ValidateCreate(input)
	if err != nil {
		return nil, err
	}

	if schema.CodePrefix != "" && valueAbsent(values, schema.UniqueKey) {
		code, genErr := resource.GenerateCode(schema.CodePrefix, time.Now().UTC())
		if genErr != nil {
			return nil, fmt.Errorf("generate %s code: %w", schema.Singular, genErr)
		}
		values[schema.UniqueKey] = code
	}

	if schema.States != nil {
		initial := schema.States.Initial
		if provided, ok := values[schema.StatusField]; ok {
			if str, _ := provided.(string); str != initial {
				return nil, apperrors.BusinessStatef("New %s must start as %s.", schema.Singular, initial)
			}
		} else {
			values[schema.StatusField] = initial
		}
	}

	row, err := s.store.Create(ctx, schema, uuid.NewString(), values)
	if err != nil {
		return nil, err
	}

	s.record(ctx, sess, schema, "create", row)
	return schema.ShapeRow(row), nil
}

// Update validates a partial update and applies it. Terminal-state rows are
// frozen, and status changes must follow the lifecycle transitions.
func (s *ResourceService) Update(ctx context.Context, sess domainauth.Session, schema *resource.Schema, id string, input map[string]string) (map[string]any, error) {
	if !sess.Role.Satisfies(schema.WriteRole) {
		return nil, apperrors.InsufficientRole()
	}

	values, err := schema.ValidateUpdate(input)
	if err != nil {
		return nil, err
	}

	row, err := s.store.Update(ctx, schema, id, values, s.updateGuard(schema, values))
	if err != nil {
		return nil, err
	}

	s.record(ctx, sess, schema, "update", row)
	return schema.ShapeRow(row), nil
}

func (s *ResourceService) updateGuard(schema *resource.Schema, values map[string]any) func(current map[string]any) error {
	if schema.States == nil {
		return nil
	}
	return func(current map[string]any) error {
		from, _ := current[schema.StatusField].(string)
		if schema.States.IsTerminal(from) {
			return apperrors.BusinessStatef("A %s %s cannot be modified.", from, schema.Singular)
		}
		next, touched := values[schema.StatusField]
		if !touched {
			return nil
		}
		to, _ := next.(string)
		if to == from {
			return nil
		}
		if !schema.States.CanTransition(from, to) {
			return apperrors.BusinessStatef("A %s %s cannot move to %s.", from, schema.Singular, to)
		}
		return nil
	}
}

// Delete removes a row. Terminal-state rows are frozen; cancelled rows may
// be deleted.
func (s *ResourceService) Delete(ctx context.Context, sess domainauth.Session, schema *resource.Schema, id string) error {
	if !sess.Role.Satisfies(schema.WriteRole) {
		return apperrors.InsufficientRole()
	}

	var deleted map[string]any
	guard := func(current map[string]any) error {
		if schema.States != nil {
			if state, _ := current[schema.StatusField].(string); schema.States.IsTerminal(state) {
				return apperrors.BusinessStatef("A %s %s cannot be deleted.", state, schema.Singular)
			}
		}
		deleted = current
		return nil
	}

	if err := s.store.Delete(ctx, schema, id, guard); err != nil {
		return err
	}

	s.record(ctx, sess, schema, "delete", deleted)
	return nil
}

// record writes the audit trail entry for a completed mutation. The origin
// is the client address the HTTP layer stashed in the context; the area goes
// into the detail text.
func (s *ResourceService) record(ctx context.Context, sess domainauth.Session, schema *resource.Schema, action string, row map[string]any) {
	if s.activity == nil {
		return
	}
	detail := rowLabel(schema, row)
	if detail == "" {
		detail = schema.Area
	} else {
		detail += " in " + schema.Area
	}
	s.activity.Record(ctx, sess.UserID, action+" "+schema.Singular, detail, RequestOrigin(ctx))
}

// rowLabel picks a human-readable handle for the audit entry: the unique key
// value when the schema has one, the id otherwise.
func rowLabel(schema *resource.Schema, row map[string]any) string {
	if row == nil {
		return ""
	}
	if schema.UniqueKey != "" {
		if v, ok := row[schema.UniqueKey].(string); ok && v != "" {
			return v
		}
	}
	if id, ok := row["id"].(string); ok {
		return id
	}
	return fmt.Sprintf("%v", row["id"])
}

func valueAbsent(values map[string]any, key string) bool {
	v, ok := values[key]
	if !ok {
		return true
	}
	s, isStr := v.(string)
	return v == nil || (isStr && s == "")
}
