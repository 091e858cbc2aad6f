// Package resource defines the declarative schema that drives the generic
// CRUD controller: field lists with types and defaults, uniqueness keys,
// foreign-key references, delete guards, lifecycle state machines, and list
// filter/search declarations. Adding a resource to the application means
// adding a Schema to the registry, not writing another handler.
package resource

import (
	"github.com/enerdesk/backoffice/internal/domain/auth"
)

// FieldType determines parsing, validation, and list-output formatting for a
// field.
type FieldType string

const (
	// Text is a free-form string.
	Text FieldType = "text"
	// Code is a short uppercase identifier (trade/invoice numbers, product codes).
	Code FieldType = "code"
	// Email is an RFC-shape checked address.
	Email FieldType = "email"
	// Numeric is a plain number.
	Numeric FieldType = "numeric"
	// Currency is a number formatted with two decimals in list output.
	Currency FieldType = "currency"
	// Percent is a number formatted as a percentage in list output.
	Percent FieldType = "percent"
	// Date is a calendar date in YYYY-MM-DD form.
	Date FieldType = "date"
	// Enum is one of a declared set of values.
	Enum FieldType = "enum"
	// Bool is a boolean flag.
	Bool FieldType = "bool"
	// Ref is a foreign key to another resource's id.
	Ref FieldType = "ref"
)

// Reference declares a foreign key to another table. Existence is pre-checked
// on create/update so a dangling id produces a validation message naming the
// referenced resource; the database FK constraint remains authoritative.
type Reference struct {
	// Table is the referenced table; the referenced column is always id.
	Table string
	// Label names the referenced resource in user-facing messages.
	Label string
}

// Dependent declares a table whose rows may point at this resource. Delete is
// refused while any dependent row exists.
type Dependent struct {
	Table  string
	Column string
	// Label names the dependency class in the ReferencedError message.
	Label string
}

// Field declares one column of a resource.
type Field struct {
	// Name is both the column name and the JSON/form parameter name.
	Name     string
	Type     FieldType
	Required bool
	// Default is applied on create when the field is absent. Ignored for
	// required fields.
	Default any
	// Enum lists allowed values for Enum fields.
	Enum []string
	// Min and Max bound Numeric, Currency, and Percent fields.
	Min *float64
	Max *float64
	// MaxLen bounds Text and Code fields in runes. Zero means the type default.
	MaxLen int
	// Ref is set for Ref fields.
	Ref *Reference
	// Check is an optional extra validator run after type validation, for
	// constraints the declarative attributes cannot express (e.g. compiling a
	// JMESPath expression).
	Check func(value string) error
}

// Schema declares a resource for the generic controller.
type Schema struct {
	// Name is the plural URL segment ("brokers").
	Name string
	// Singular is used in messages ("broker").
	Singular string
	// Table is the backing table.
	Table string
	// Area is the URL area segment ("masterdata", "trading", ...).
	Area string

	Fields []Field

	// UniqueKey names the field whose value must be unique across the table.
	UniqueKey string
	// UniqueKeyFold makes the uniqueness check case-insensitive.
	UniqueKeyFold bool

	// CodePrefix enables generated short identifiers for the unique key of
	// transactional resources ("TRD", "INV", ...). Empty means the caller must
	// supply the unique key.
	CodePrefix string

	// EqualsFilters lists fields usable as exact-match query parameters.
	EqualsFilters []string
	// SearchColumns lists the columns the free-text search matches against,
	// case-insensitively, ORed together.
	SearchColumns []string

	// StatusField names the lifecycle column. Empty means the resource has no
	// status handling.
	StatusField string
	// States is the lifecycle machine for transactional resources; nil for
	// master data.
	States *StateMachine

	// Dependents are scanned before delete.
	Dependents []Dependent

	// ReadRole and WriteRole are the minimum roles for list and for
	// create/update/delete. Admin always qualifies.
	ReadRole  auth.Role
	WriteRole auth.Role
}

// FieldByName returns the declared field, or nil when the schema does not
// know it.
func (s *Schema) FieldByName(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}

// ColumnNames returns all declared column names, id and timestamps excluded.
func (s *Schema) ColumnNames() []string {
	cols := make([]string, 0, len(s.Fields))
	for i := range s.Fields {
		cols = append(cols, s.Fields[i].Name)
	}
	return cols
}

// References returns the declared foreign-key fields.
func (s *Schema) References() []Field {
	var refs []Field
	for i := range s.Fields {
		if s.Fields[i].Type == Ref && s.Fields[i].Ref != nil {
			refs = append(refs, s.Fields[i])
		}
	}
	return refs
}
