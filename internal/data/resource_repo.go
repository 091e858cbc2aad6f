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
	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// ResourceRepo persists any schema-described resource. One repo serves every
// table; the schema carries the table name, columns, uniqueness rule, and
// dependent scan list.
//
// Uniqueness and reference pre-checks run inside the same transaction as the
// write so their messages are friendly, while the database constraints stay
// authoritative for races (MapDBError converts a constraint violation into
// the same error codes the pre-checks produce).
type ResourceRepo struct {
	DB *sql.DB
}

// NewResourceRepo creates a ResourceRepo over the shared pool.
func NewResourceRepo(db *sql.DB) *ResourceRepo {
	return &ResourceRepo{DB: db}
}

func selectColumns(s *resource.Schema) []string {
	cols := make([]string, 0, len(s.Fields)+3)
	cols = append(cols, "id")
	cols = append(cols, s.ColumnNames()...)
	cols = append(cols, "created_at", "updated_at")
	return cols
}

// List returns one page of rows plus the unpaginated total for the same
// filters.
func (r *ResourceRepo) List(ctx context.Context, s *resource.Schema, q resource.ListQuery) ([]map[string]any, int, error) {
	conds := []database.Condition{
		database.SearchCond(s.SearchColumns, q.Search),
	}
	for _, field := range s.EqualsFilters {
		if v, ok := q.Equals[field]; ok && v != "" {
			conds = append(conds, database.WhereCond(field, database.Equal, v))
		}
	}

	listQuery, listArgs := database.BuildListQuery(database.NewListQueryOptions(s.Table,
		database.WithColumns(selectColumns(s)...),
		database.WithConditions(conds...),
		database.WithOrderBy("created_at", "desc"),
		database.WithLimit(q.Limit),
		database.WithOffset(q.Offset()),
	))
	countQuery, countArgs := database.BuildListQuery(database.NewListQueryOptions(s.Table,
		database.WithConditions(conds...),
		database.WithCountOnly(),
	))

	var (
		items []map[string]any
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
		items, collectErr = pgx.CollectRows(rows, pgx.RowToMap)
		return collectErr
	})
	if err != nil {
		return nil, 0, apperrors.MapDBError(err)
	}
	return items, total, nil
}

// GetByID fetches one row by primary key.
func (r *ResourceRepo) GetByID(ctx context.Context, s *resource.Schema, id string) (map[string]any, error) {
	var row map[string]any
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var getErr error
		row, getErr = fetchRow(ctx, conn, s, id, false)
		return getErr
	})
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
			return nil, err
		}
		return nil, apperrors.MapDBError(err)
	}
	return row, nil
}

// Create inserts a new row and returns it as stored. values holds validated,
// typed column values keyed by field name; the caller supplies id.
func (r *ResourceRepo) Create(ctx context.Context, s *resource.Schema, id string, values map[string]any) (map[string]any, error) {
	var row map[string]any
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		if checkErr := r.checkUnique(ctx, tx, s, values, ""); checkErr != nil {
			return checkErr
		}
		if checkErr := r.checkReferences(ctx, tx, s, values); checkErr != nil {
			return checkErr
		}

		cols := []string{"id"}
		args := []any{id}
		for _, f := range s.Fields {
			if v, ok := values[f.Name]; ok {
				cols = append(cols, f.Name)
				args = append(args, v)
			}
		}
		placeholders := make([]string, len(cols))
		quoted := make([]string, len(cols))
		for i, col := range cols {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			quoted[i] = pgx.Identifier{col}.Sanitize()
		}
		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			pgx.Identifier{s.Table}.Sanitize(),
			strings.Join(quoted, ", "),
			strings.Join(placeholders, ", "),
			quoteColumns(selectColumns(s)))

		rows, queryErr := tx.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		row, collectErr = pgx.CollectOneRow(rows, pgx.RowToMap)
		return collectErr
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return row, nil
}

// Update applies the touched columns to an existing row and returns the
// updated row. guard, when non-nil, runs against the current row while it is
// locked, before any write; a guard error aborts the transaction.
func (r *ResourceRepo) Update(ctx context.Context, s *resource.Schema, id string, values map[string]any, guard func(current map[string]any) error) (map[string]any, error) {
	var row map[string]any
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		current, fetchErr := fetchRow(ctx, tx, s, id, true)
		if fetchErr != nil {
			return fetchErr
		}
		if guard != nil {
			if guardErr := guard(current); guardErr != nil {
				return guardErr
			}
		}
		if checkErr := r.checkUnique(ctx, tx, s, values, id); checkErr != nil {
			return checkErr
		}
		if checkErr := r.checkReferences(ctx, tx, s, values); checkErr != nil {
			return checkErr
		}

		sets := make([]string, 0, len(values))
		args := make([]any, 0, len(values)+1)
		n := 1
		for _, f := range s.Fields {
			if v, ok := values[f.Name]; ok {
				sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{f.Name}.Sanitize(), n))
				args = append(args, v)
				n++
			}
		}
		if len(sets) == 0 {
			return apperrors.Validation("At least one field must be updated.")
		}
		args = append(args, id)

		query := fmt.Sprintf("UPDATE %s SET %s, updated_at = now() WHERE id = $%d RETURNING %s",
			pgx.Identifier{s.Table}.Sanitize(),
			strings.Join(sets, ", "), n,
			quoteColumns(selectColumns(s)))

		rows, queryErr := tx.Query(ctx, query, args...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		row, collectErr = pgx.CollectOneRow(rows, pgx.RowToMap)
		return collectErr
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return row, nil
}

// Delete removes a row after verifying nothing depends on it. guard runs
// against the locked current row before the dependent scan.
func (r *ResourceRepo) Delete(ctx context.Context, s *resource.Schema, id string, guard func(current map[string]any) error) error {
	err := pgxutil.WithPgxTx(ctx, r.DB, func(tx pgx.Tx) error {
		current, fetchErr := fetchRow(ctx, tx, s, id, true)
		if fetchErr != nil {
			return fetchErr
		}
		if guard != nil {
			if guardErr := guard(current); guardErr != nil {
				return guardErr
			}
		}
		for _, dep := range s.Dependents {
			var exists bool
			query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)",
				pgx.Identifier{dep.Table}.Sanitize(), pgx.Identifier{dep.Column}.Sanitize())
			if scanErr := tx.QueryRow(ctx, query, id).Scan(&exists); scanErr != nil {
				return scanErr
			}
			if exists {
				return apperrors.Referencedf("%s has associated %s.", upperFirst(s.Singular), dep.Label)
			}
		}

		tag, execErr := tx.Exec(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE id = $1", pgx.Identifier{s.Table}.Sanitize()), id)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return notFoundFor(s)
		}
		return nil
	})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// RefExists reports whether the target table holds the given id. Used for
// reference validation outside a write transaction.
func (r *ResourceRepo) RefExists(ctx context.Context, table, id string) (bool, error) {
	var exists bool
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)",
			pgx.Identifier{table}.Sanitize())
		return conn.QueryRow(ctx, query, id).Scan(&exists)
	})
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	return exists, nil
}

func (r *ResourceRepo) checkUnique(ctx context.Context, tx pgx.Tx, s *resource.Schema, values map[string]any, excludeID string) error {
	if s.UniqueKey == "" {
		return nil
	}
	v, ok := values[s.UniqueKey]
	if !ok || v == nil {
		return nil
	}

	col := pgx.Identifier{s.UniqueKey}.Sanitize()
	predicate := col + " = $1"
	if s.UniqueKeyFold {
		predicate = fmt.Sprintf("lower(%s) = lower($1)", col)
	}
	args := []any{v}
	if excludeID != "" {
		predicate += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists bool
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)",
		pgx.Identifier{s.Table}.Sanitize(), predicate)
	if err := tx.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return apperrors.Duplicate(s.UniqueKey,
			fmt.Sprintf("%s %s already exists.", upperFirst(s.Singular), strings.ReplaceAll(s.UniqueKey, "_", " ")))
	}
	return nil
}

func (r *ResourceRepo) checkReferences(ctx context.Context, tx pgx.Tx, s *resource.Schema, values map[string]any) error {
	for _, ref := range s.References() {
		v, ok := values[ref.Name]
		if !ok || v == nil {
			continue
		}
		var exists bool
		query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)",
			pgx.Identifier{ref.Ref.Table}.Sanitize())
		if err := tx.QueryRow(ctx, query, v).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return apperrors.ValidationField(ref.Name,
				fmt.Sprintf("Referenced %s does not exist.", ref.Ref.Label))
		}
	}
	return nil
}

// rowQuerier is the slice of pgx.Conn and pgx.Tx that row fetching needs.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchRow(ctx context.Context, q rowQuerier, s *resource.Schema, id string, forUpdate bool) (map[string]any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		quoteColumns(selectColumns(s)), pgx.Identifier{s.Table}.Sanitize())
	if forUpdate {
		query += " FOR UPDATE"
	}
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundFor(s)
		}
		return nil, err
	}
	return row, nil
}

func notFoundFor(s *resource.Schema) error {
	return apperrors.NotFoundf("%s not found.", upperFirst(s.Singular))
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = pgx.Identifier{col}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
