package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/enerdesk/backoffice/internal/data/pgxutil"
	"github.com/enerdesk/backoffice/internal/domain/model"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// AuditSinkRepo reads webhook sink configuration for the activity
// dispatcher. Sink CRUD goes through the generic resource path; this repo
// only serves the dispatch side.
type AuditSinkRepo struct {
	DB *sql.DB
}

// NewAuditSinkRepo creates an AuditSinkRepo over the shared pool.
func NewAuditSinkRepo(db *sql.DB) *AuditSinkRepo {
	return &AuditSinkRepo{DB: db}
}

// ListActive returns every enabled sink.
func (r *AuditSinkRepo) ListActive(ctx context.Context) ([]*model.AuditSink, error) {
	var sinks []model.AuditSink
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx, `
			SELECT id, name, url, match, status, created_at, updated_at
			FROM audit_sinks
			WHERE status = 'active'
			ORDER BY name`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		sinks, collectErr = pgx.CollectRows(rows, pgx.RowToStructByName[model.AuditSink])
		return collectErr
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}

	out := make([]*model.AuditSink, len(sinks))
	for i := range sinks {
		out[i] = &sinks[i]
	}
	return out, nil
}
