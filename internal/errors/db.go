package errors

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Regular expressions for parsing PgError.Detail messages.
var (
	// reKeyField extracts the field name from a unique violation detail:
	// "Key (field)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reReferencedFrom detects a blocked parent deletion:
	// "... is still referenced from table ...".
	reReferencedFrom = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
	// reNotPresent detects a dangling child reference:
	// "... is not present in table ...".
	reNotPresent = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
)

// MapDBError converts database failures into AppError values. The database
// constraints are the authoritative guard for uniqueness and referential
// integrity; application-level pre-checks exist only to produce friendlier
// messages, so a race that slips past a pre-check still surfaces as the same
// Duplicate or Referenced error here.
//
// Unrecognized errors are wrapped as Storage so no raw database text ever
// reaches a client.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{Code: ErrCodeTimeout, Message: "Request timed out. Please try again.", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{Code: ErrCodeCanceled, Message: "Request was canceled.", Cause: err}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{Code: ErrCodeNotFound, Message: "Record not found.", Cause: err}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return Storage(err)
}

func mapPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return mapForeignKeyViolation(pgErr)
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		return mapConstraintViolation(pgErr)
	default:
		return Storage(pgErr)
	}
}

// mapUniqueViolation maps unique constraint violations to Duplicate errors.
func mapUniqueViolation(pgErr *pgconn.PgError) error {
	field := pgErr.ColumnName
	if field == "" && pgErr.Detail != "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}
	if field == "" {
		field = inferFieldFromConstraint(pgErr.ConstraintName)
	}

	// Expression indexes such as lower(name) report "lower(name::text)".
	if i := strings.Index(field, "("); i >= 0 {
		inner := field[i+1:]
		if j := strings.IndexAny(inner, ":)"); j >= 0 {
			field = inner[:j]
		}
	}

	return &AppError{
		Code:    ErrCodeDuplicate,
		Message: "This value already exists. Please choose a different one.",
		Field:   field,
		Cause:   pgErr,
	}
}

// mapForeignKeyViolation distinguishes a blocked parent deletion (Referenced)
// from a dangling child reference (Validation).
func mapForeignKeyViolation(pgErr *pgconn.PgError) error {
	if pgErr.Detail != "" {
		if m := reReferencedFrom.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return &AppError{
				Code:    ErrCodeReferenced,
				Message: "Cannot delete because this record has associated " + tableLabel(m[1]) + ".",
				Cause:   pgErr,
			}
		}
		if m := reNotPresent.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			return &AppError{
				Code:    ErrCodeValidation,
				Message: "The referenced " + singularLabel(m[1]) + " does not exist.",
				Cause:   pgErr,
			}
		}
	}

	if pgErr.TableName != "" {
		return &AppError{
			Code:    ErrCodeReferenced,
			Message: "Cannot complete the operation because this record is in use by " + tableLabel(pgErr.TableName) + ".",
			Cause:   pgErr,
		}
	}

	return &AppError{
		Code:    ErrCodeReferenced,
		Message: "Cannot complete the operation because this record is still referenced.",
		Cause:   pgErr,
	}
}

// mapConstraintViolation maps CHECK and NOT NULL violations to Validation errors.
func mapConstraintViolation(pgErr *pgconn.PgError) error {
	if pgErr.ColumnName != "" {
		return &AppError{
			Code:    ErrCodeValidation,
			Message: "This field has an invalid or missing value.",
			Field:   pgErr.ColumnName,
			Cause:   pgErr,
		}
	}
	return &AppError{
		Code:    ErrCodeValidation,
		Message: "Invalid data. Please check your input.",
		Cause:   pgErr,
	}
}

// inferFieldFromConstraint attempts to infer the field name from a constraint
// name like "brokers_code_key". Multi-column and expression constraints are
// ambiguous and yield an empty string.
func inferFieldFromConstraint(constraintName string) string {
	if constraintName == "" {
		return ""
	}
	parts := strings.Split(constraintName, "_")
	if len(parts) != 3 {
		return ""
	}
	candidate := parts[1]
	if candidate == "lower" || candidate == "upper" {
		return ""
	}
	return candidate
}

// tableLabels maps table names to the plural domain label used in messages.
var tableLabels = map[string]string{
	"users":          "users",
	"brokers":        "brokers",
	"products":       "products",
	"counterparties": "counterparties",
	"ports":          "ports",
	"vessels":        "vessels",
	"tariffs":        "tariffs",
	"trades":         "trades",
	"invoices":       "invoices",
	"shipments":      "shipments",
	"settlements":    "settlements",
	"audit_sinks":    "audit sinks",
	"activity_logs":  "activity log entries",
}

// singularLabels covers the labels whose singular form is not just the plural
// minus a trailing "s".
var singularLabels = map[string]string{
	"counterparties": "counterparty",
	"audit_sinks":    "audit sink",
	"activity_logs":  "activity log entry",
}

func tableLabel(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if label, ok := tableLabels[table]; ok {
		return label
	}
	return strings.ReplaceAll(table, "_", " ")
}

func singularLabel(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if label, ok := singularLabels[table]; ok {
		return label
	}
	label := tableLabel(table)
	return strings.TrimSuffix(label, "s")
}
