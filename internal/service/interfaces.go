package service

// Repository interfaces consumed by the services. The concrete
// implementations live in internal/data; mocks are generated into
// internal/mocks for service tests.

import (
	"context"

	"github.com/enerdesk/backoffice/internal/data"
	"github.com/enerdesk/backoffice/internal/domain/model"
	"github.com/enerdesk/backoffice/internal/domain/resource"
)

// CredentialStore persists user accounts and password hashes.
type CredentialStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, opts data.UserListOptions) ([]*model.User, int, error)
	Update(ctx context.Context, req *model.UpdateUserRequest) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CountActiveAdmins(ctx context.Context, excludeID string) (int, error)
}

// ResourceStore persists schema-described resources.
type ResourceStore interface {
	List(ctx context.Context, s *resource.Schema, q resource.ListQuery) ([]map[string]any, int, error)
	GetByID(ctx context.Context, s *resource.Schema, id string) (map[string]any, error)
	Create(ctx context.Context, s *resource.Schema, id string, values map[string]any) (map[string]any, error)
	Update(ctx context.Context, s *resource.Schema, id string, values map[string]any, guard func(current map[string]any) error) (map[string]any, error)
	Delete(ctx context.Context, s *resource.Schema, id string, guard func(current map[string]any) error) error
}

// ActivityStore persists the append-only activity log.
type ActivityStore interface {
	Insert(ctx context.Context, e *model.ActivityEntry) error
	List(ctx context.Context, opts data.ActivityListOptions) ([]*model.ActivityEntry, int, error)
}

// AuditSinkStore reads webhook sink configuration.
type AuditSinkStore interface {
	ListActive(ctx context.Context) ([]*model.AuditSink, error)
}
