package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/enerdesk/backoffice/internal/data/database"
	"github.com/enerdesk/backoffice/internal/data/pgxutil"
	"github.com/enerdesk/backoffice/internal/domain/model"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

const userColumns = "id, username, password_hash, role, status, department, created_at, updated_at"

// UserRepo is the credential store: durable usernames, password hashes,
// roles, and statuses.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a UserRepo over the shared pool.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// Create inserts a new user record.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO users (id, username, password_hash, role, status, department)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			u.ID, u.Username, u.PasswordHash, u.Role, u.Status, u.Department,
		)
		return execErr
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// GetByUsername fetches a user by canonical (lower-cased) username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username = $1", strings.ToLower(strings.TrimSpace(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *UserRepo) getBy(ctx context.Context, predicate string, arg any) (*model.User, error) {
	var out model.User
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, queryErr := conn.Query(ctx,
			fmt.Sprintf("SELECT %s FROM users WHERE %s", userColumns, predicate), arg)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		out, collectErr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.User])
		return collectErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("User not found.")
		}
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// UserListOptions filters and paginates the user list.
type UserListOptions struct {
	Search string
	Role   string
	Status string
	Limit  int
	Offset int
}

// List returns users matching the options plus the unpaginated total.
func (r *UserRepo) List(ctx context.Context, opts UserListOptions) ([]*model.User, int, error) {
	conds := []database.Condition{
		database.SearchCond([]string{"username", "department"}, opts.Search),
	}
	if opts.Role != "" {
		conds = append(conds, database.WhereCond("role", database.Equal, opts.Role))
	}
	if opts.Status != "" {
		conds = append(conds, database.WhereCond("status", database.Equal, opts.Status))
	}

	listQuery, listArgs := database.BuildListQuery(database.NewListQueryOptions("users",
		database.WithColumns(strings.Split(userColumns, ", ")...),
		database.WithConditions(conds...),
		database.WithOrderBy("username", "asc"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	))
	countQuery, countArgs := database.BuildListQuery(database.NewListQueryOptions("users",
		database.WithConditions(conds...),
		database.WithCountOnly(),
	))

	var (
		users []model.User
		total int
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
		users, collectErr = pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
		return collectErr
	})
	if err != nil {
		return nil, 0, apperrors.MapDBError(err)
	}

	out := make([]*model.User, len(users))
	for i := range users {
		out[i] = &users[i]
	}
	return out, total, nil
}

// Update applies the non-nil fields of req.
func (r *UserRepo) Update(ctx context.Context, req *model.UpdateUserRequest) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	n := 1
	appendSet := func(col string, v any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, v)
		n++
	}
	if req.Role != nil {
		appendSet("role", *req.Role)
	}
	if req.Status != nil {
		appendSet("status", *req.Status)
	}
	if req.Department != nil {
		appendSet("department", *req.Department)
	}
	if len(sets) == 0 {
		return apperrors.Validation("At least one field must be updated.")
	}
	args = append(args, req.ID)

	query := fmt.Sprintf("UPDATE users SET %s, updated_at = now() WHERE id = $%d",
		strings.Join(sets, ", "), n)
	return r.exec(ctx, query, args, "User not found.")
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx,
		"UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2",
		[]any{passwordHash, id}, "User not found.")
}

// CountActiveAdmins counts active admin accounts, optionally excluding one
// user. The last-active-admin invariant is enforced in the service on top of
// this count.
func (r *UserRepo) CountActiveAdmins(ctx context.Context, excludeID string) (int, error) {
	var count int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT COUNT(*) FROM users
			WHERE role = 'admin' AND status = 'active' AND id <> $1`, excludeID).Scan(&count)
	})
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return count, nil
}

func (r *UserRepo) exec(ctx context.Context, query string, args []any, missingMsg string) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, execErr := conn.Exec(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NotFound(missingMsg)
		}
		return nil
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}
