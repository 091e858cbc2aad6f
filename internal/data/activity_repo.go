package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/enerdesk/backoffice/internal/data/database"
	"github.com/enerdesk/backoffice/internal/data/pgxutil"
	"github.com/enerdesk/backoffice/internal/domain/model"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// ActivityRepo stores the append-only activity log.
type ActivityRepo struct {
	DB *sql.DB
}

// NewActivityRepo creates an ActivityRepo over the shared pool.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{DB: db}
}

// Insert appends one entry. Entries are never updated or deleted.
func (r *ActivityRepo) Insert(ctx context.Context, e *model.ActivityEntry) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO activity_log (id, actor_id, action, detail, origin)
			VALUES ($1, $2, $3, $4, $5)`,
			e.ID, e.ActorID, e.Action, e.Detail, e.Origin,
		)
		return execErr
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// ActivityListOptions filters and paginates the activity log.
type ActivityListOptions struct {
	ActorID string
	Action  string
	Search  string
	Limit   int
	Offset  int
}

// List returns entries newest first plus the unpaginated total.
func (r *ActivityRepo) List(ctx context.Context, opts ActivityListOptions) ([]*model.ActivityEntry, int, error) {
	conds := []database.Condition{
		database.SearchCond([]string{"action", "detail"}, opts.Search),
	}
	if opts.ActorID != "" {
		conds = append(conds, database.WhereCond("actor_id", database.Equal, opts.ActorID))
	}
	if opts.Action != "" {
		conds = append(conds, database.WhereCond("action", database.Equal, opts.Action))
	}

	listQuery, listArgs := database.BuildListQuery(database.NewListQueryOptions("activity_log",
		database.WithColumns("id", "actor_id", "action", "detail", "origin", "created_at"),
		database.WithConditions(conds...),
		database.WithOrderBy("created_at", "desc"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	))
	countQuery, countArgs := database.BuildListQuery(database.NewListQueryOptions("activity_log",
		database.WithConditions(conds...),
		database.WithCountOnly(),
	))

	var (
		entries []model.ActivityEntry
		total   int
	)
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		if scanErr := conn.QueryRow(ctx, countQuery, countArgs...).Scan(&total); scanErr != nil {
			return scanErr
		}
		rows, queryErr := conn.Query(ctx, listQuery, listArgs...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		entries, collectErr = pgx.CollectRows(rows, pgx.RowToStructByName[model.ActivityEntry])
		return collectErr
	})
	if err != nil {
		return nil, 0, apperrors.MapDBError(err)
	}

	out := make([]*model.ActivityEntry, len(entries))
	for i := range entries {
		out[i] = &entries[i]
	}
	return out, total, nil
}
