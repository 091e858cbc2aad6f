// Package database builds parameterized list and count queries from declared
// conditions. Identifiers are quoted through pgx; values only ever travel as
// bound parameters, never interpolated into the SQL text.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the comparison operator of a condition.
type ConditionType string

const (
	Equal  ConditionType = "="
	ILike  ConditionType = "ILIKE"
	In     ConditionType = "IN"
	Custom ConditionType = "CUSTOM"
)

const (
	unsetLimit  = -1
	unsetOffset = -1
)

// Condition is one WHERE predicate. All conditions are ANDed; OR groups are
// expressed as a single Custom condition.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery string
}

// WhereCond builds a standard field comparison.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond builds a raw predicate with its own $1..$n placeholders, which
// are renumbered into the surrounding query. The raw SQL must come from the
// application, never from request input.
func WhereRawCond(rawQuery string, params ...any) Condition {
	return Condition{Type: Custom, rawQuery: rawQuery, Value: params}
}

// SearchCond builds a case-insensitive substring match ORed across the given
// columns, the shape every resource's free-text search shares.
func SearchCond(columns []string, term string) Condition {
	if len(columns) == 0 || term == "" {
		return Condition{}
	}
	preds := make([]string, len(columns))
	for i, col := range columns {
		preds[i] = sanitizeIdentifier(col) + " ILIKE $1"
	}
	pattern := "%" + escapeLikeTerm(term) + "%"
	return WhereRawCond("("+strings.Join(preds, " OR ")+")", pattern)
}

// escapeLikeTerm neutralizes LIKE metacharacters in a user-supplied term.
func escapeLikeTerm(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// ListQueryOptions assembles a SELECT (or COUNT) over one table.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions builds options for table with the given modifiers.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  unsetLimit,
		Offset: unsetOffset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select; empty means *.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithCondition appends one condition. Zero-value conditions are dropped.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		if cond.Type == "" {
			return
		}
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithConditions appends several conditions.
func WithConditions(conds ...Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		for _, cond := range conds {
			if cond.Type != "" {
				o.Conditions = append(o.Conditions, cond)
			}
		}
	}
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the LIMIT. Negative values leave it unset.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the OFFSET. Negative values leave it unset.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly switches the query to SELECT COUNT(*), dropping ordering and
// pagination. This is how the count twin of a list query is produced: same
// conditions, no LIMIT/OFFSET.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) { o.CountOnly = true }
}

// BuildListQuery renders the options into SQL text plus bound arguments in
// clause order.
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(buildSelectClause(options))
	query.WriteString("FROM ")
	query.WriteString(sanitizeIdentifier(options.Table))

	whereClause, args, nextParam := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	if options.CountOnly {
		return query.String(), args
	}

	if options.OrderBy != "" {
		query.WriteString(" ORDER BY ")
		query.WriteString(sanitizeIdentifier(options.OrderBy))
		if dir := strings.ToUpper(options.OrderDir); dir == "ASC" || dir == "DESC" {
			query.WriteString(" ")
			query.WriteString(dir)
		}
	}

	if options.Limit != unsetLimit {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", nextParam))
		args = append(args, options.Limit)
		nextParam++
	}
	if options.Offset != unsetOffset {
		query.WriteString(fmt.Sprintf(" OFFSET $%d", nextParam))
		args = append(args, options.Offset)
	}

	return query.String(), args
}

func buildSelectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*) "
	}
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeIdentifier(col)
	}
	return "SELECT " + strings.Join(cols, ", ") + " "
}

func buildWhereClause(inputConditions []Condition, startParam int) (string, []any, int) {
	predicates := make([]string, 0, len(inputConditions))
	args := []any{}
	param := startParam

	for _, cond := range inputConditions {
		var (
			sql      string
			condArgs []any
		)
		switch cond.Type {
		case Custom:
			sql, condArgs, param = renderCustomCondition(cond, param)
		case In:
			sql, condArgs, param = renderInCondition(cond, param)
		case Equal, ILike:
			if cond.Field == "" {
				continue
			}
			sql = fmt.Sprintf("%s %s $%d", sanitizeIdentifier(cond.Field), cond.Type, param)
			condArgs = []any{cond.Value}
			param++
		default:
			continue
		}
		if sql == "" {
			continue
		}
		predicates = append(predicates, sql)
		args = append(args, condArgs...)
	}

	if len(predicates) == 0 {
		return "", args, param
	}
	return "WHERE " + strings.Join(predicates, " AND "), args, param
}

func renderInCondition(cond Condition, param int) (string, []any, int) {
	if cond.Field == "" {
		return "", nil, param
	}
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", nil, param
	}
	placeholders := make([]string, rv.Len())
	args := make([]any, rv.Len())
	for i := range rv.Len() {
		placeholders[i] = fmt.Sprintf("$%d", param)
		args[i] = rv.Index(i).Interface()
		param++
	}
	sql := fmt.Sprintf("%s IN (%s)", sanitizeIdentifier(cond.Field), strings.Join(placeholders, ", "))
	return sql, args, param
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// renderCustomCondition renumbers the raw predicate's $1..$n placeholders to
// follow the parameters already consumed by earlier conditions. A placeholder
// referenced more than once binds a single argument.
func renderCustomCondition(cond Condition, param int) (string, []any, int) {
	if cond.rawQuery == "" {
		return "", nil, param
	}
	params, _ := cond.Value.([]any)

	args := []any{}
	seen := make(map[int]int)
	sql := placeholderRe.ReplaceAllStringFunc(cond.rawQuery, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, ok := seen[n]; !ok {
			seen[n] = param
			args = append(args, params[n-1])
			param++
		}
		return fmt.Sprintf("$%d", seen[n])
	})
	return sql, args, param
}

// sanitizeIdentifier quotes an identifier, splitting qualified names on dots.
func sanitizeIdentifier(ident string) string {
	if strings.Contains(ident, ".") {
		return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
	}
	return pgx.Identifier{ident}.Sanitize()
}
