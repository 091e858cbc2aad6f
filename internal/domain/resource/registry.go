package resource

import (
	"errors"
	"net/url"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/enerdesk/backoffice/internal/domain/auth"
)

// Registry resolves schemas by area and name for routing and holds the full
// set for migrations and seeding.
type Registry struct {
	schemas []*Schema
	byPath  map[string]*Schema
}

// NewRegistry indexes the given schemas.
func NewRegistry(schemas []*Schema) *Registry {
	r := &Registry{schemas: schemas, byPath: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		r.byPath[s.Area+"/"+s.Name] = s
	}
	return r
}

// Lookup returns the schema mounted at area/name, or nil.
func (r *Registry) Lookup(area, name string) *Schema {
	return r.byPath[area+"/"+name]
}

// All returns every registered schema.
func (r *Registry) All() []*Schema {
	return r.schemas
}

func fptr(v float64) *float64 { return &v }

// checkJMESPath validates a sink match expression at write time so a broken
// expression fails the create, not every later dispatch.
func checkJMESPath(expr string) error {
	if _, err := jmespath.Compile(expr); err != nil {
		return errors.New("Match must be a valid JMESPath expression.")
	}
	return nil
}

// checkSinkURL requires an absolute http(s) URL with a host.
func checkSinkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("Url must be an absolute http or https URL.")
	}
	return nil
}

const statusField = "status"

var activeInactive = []string{"active", "inactive"}

// DefaultSchemas declares every resource the back office manages. Master
// data carries caller-supplied uniqueness keys; transactional resources get
// generated short identifiers and a lifecycle machine.
func DefaultSchemas() []*Schema {
	return []*Schema{
		brokers(),
		products(),
		counterparties(),
		ports(),
		vessels(),
		tariffs(),
		trades(),
		invoices(),
		shipments(),
		settlements(),
		auditSinks(),
	}
}

func brokers() *Schema {
	return &Schema{
		Name:     "brokers",
		Singular: "broker",
		Table:    "brokers",
		Area:     "masterdata",
		Fields: []Field{
			{Name: "name", Type: Text, Required: true, MaxLen: 120},
			{Name: "commission_rate", Type: Percent, Min: fptr(0), Max: fptr(100)},
			{Name: "contact_email", Type: Email},
			{Name: "phone", Type: Text, MaxLen: 40},
			{Name: statusField, Type: Enum, Enum: activeInactive, Default: "active"},
		},
		UniqueKey:     "name",
		UniqueKeyFold: true,
		EqualsFilters: []string{statusField},
		SearchColumns: []string{"name", "contact_email"},
		StatusField:   statusField,
		Dependents: []Dependent{
			{Table: "trades", Column: "broker_id", Label: "trades"},
		},
		ReadRole:  auth.RoleViewer,
		WriteRole: auth.RoleManager,
	}
}

func products() *Schema {
	return &Schema{
		Name:     "products",
		Singular: "product",
		Table:    "products",
		Area:     "masterdata",
		Fields: []Field{
			{Name: "code", Type: Code, Required: true},
			{Name: "name", Type: Text, Required: true, MaxLen: 120},
			{Name: "unit", Type: Enum, Required: true, Enum: []string{"mwh", "bbl", "mt", "mmbtu"}},
			{Name: "grade", Type: Text, MaxLen: 60},
			{Name: statusField, Type: Enum, Enum: activeInactive, Default: "active"},
		},
		UniqueKey:     "code",
		UniqueKeyFold: true,
		EqualsFilters: []string{statusField, "unit"},
		SearchColumns: []string{"code", "name"},
		StatusField:   statusField,
		Dependents: []Dependent{
			{Table: "trades", Column: "product_id", Label: "trades"},
			{Table: "tariffs", Column: "product_id", Label: "tariffs"},
		},
		ReadRole:  auth.RoleViewer,
		WriteRole: auth.RoleManager,
	}
}

func counterparties() *Schema {
	return &Schema{
		Name:     "counterparties",
		Singular: "counterparty",
		Table:    "counterparties",
		Area:     "masterdata",
		Fields: []Field{
			{Name: "name", Type: Text, Required: true, MaxLen: 160},
			{Name: "country", Type: Text, MaxLen: 60},
			{Name: "credit_limit", Type: Currency, Min: fptr(0)},
			{Name: "contact_email", Type: Email},
			{Name: statusField, Type: Enum, Enum: activeInactive, Default: "active"},
		},
		UniqueKey:     "name",
		UniqueKeyFold: true,
		EqualsFilters: []string{statusField, "country"},
		SearchColumns: []string{"name", "contact_email"},
		StatusField:   statusField,
		Dependents: []Dependent{
			{Table: "trades", Column: "counterparty_id", Label: "trades"},
			{Table: "invoices", Column: "counterparty_id", Label: "invoices"},
			{Table: "settlements", Column: "counterparty_id", Label: "settlements"},
		},
		ReadRole:  auth.RoleViewer,
		WriteRole: auth.RoleManager,
	}
}

func ports() *Schema {
	return &Schema{
		Name:     "ports",
		Singular: "port",
		Table:    "ports",
		Area:     "masterdata",
		Fields: []Field{
			{Name: "name", Type: Text, Required: true, MaxLen: 120},
			{Name: "country", Type: Text, MaxLen: 60},
			{Name: "port_type", Type: Enum, Enum: []string{"loading", "discharge", "both"}, Default: "both"},
			{Name: statusField, Type: Enum, Enum: activeInactive, Default: "active"},
		},
		UniqueKey:     "name",
		UniqueKeyFold: true,
		EqualsFilters: []string{statusField, "port_type", "country"},
		SearchColumns: []string{"name", "country"},
		StatusField:   statusField,
		Dependents: []Dependent{
			{Table: "shipments", Column: "load_port_id", Label: "shipments"},
			{Table: "shipments", Column: "discharge_port_id", Label: "shipments"},
		},
		ReadRole:  auth.RoleViewer,
		WriteRole: auth.RoleManager,
	}
}

func vessels() *Schema {
	return &Schema{
		Name:     "vessels",
		Singular: "vessel",
		Table:    "vessels",
		Area:     "masterdata",
		Fields: []Field{
			{Name: "name", Type: Text, Required: true, MaxLen: 120},
			{Name: "imo_number", Type: Code},
			{Name: "capacity_dwt", Type: Numeric, Min: fptr(0)},
			{Name: statusField, Type: Enum, Enum: activeInactive, Default: "active"},
		},
		UniqueKey:     "name",
		UniqueKeyFold: true,
		EqualsFilters: []string{statusField},
		SearchColumns: []string{"name", "imo_number"},
		StatusField:   statusField,
		Dependents: []Dependent{
			{Table: "shipments", Column: "vessel_id", Label: "shipments"},
		},
		ReadRole:  auth.RoleViewer,
		WriteRole: auth.RoleManager,
	}
}

func tariffs() *Schema {
	return &Schema{
		Name:     "tariffs",
		Singular: "tariff",
		Table:    "tariffs",
		Area:     "masterdata",
		Fields: []Field{
			{Name: "code", Type: Code, Required: true},
			{Name: "product_id", Type: Ref, Required: true, Ref: &Reference{Table: "products", Label: "product"}},
			{Name: "rate", Type: Currency, Required: true, Min: fptr(0)},
			{Name: "valid_from", Type: Date},
			{Name: "valid_to", Type: Date},
			{Name: statusField, Type: Enum, Enum: activeInactive, Default: "active"},
		},
		UniqueKey:     "code",
		UniqueKeyFold: true,
		EqualsFilters: []string{statusField, "product_id"},
		SearchColumns: []string{"code"},
		StatusField:   statusField,
		ReadRole:      auth.RoleViewer,
		WriteRole:     auth.RoleManager,
	}
}

func trades() *Schema {
	return &Schema{
		Name:     "trades",
		Singular: "trade",
		Table:    "trades",
		Area:     "trading",
		Fields: []Field{
			{Name: "code", Type: Code},
			{Name: "counterparty_id", Type: Ref, Required: true, Ref: &Reference{Table: "counterparties", Label: "counterparty"}},
			{Name: "product_id", Type: Ref, Required: true, Ref: &Reference{Table: "products", Label: "product"}},
			{Name: "broker_id", Type: Ref, Ref: &Reference{Table: "brokers", Label: "broker"}},
			{Name: "direction", Type: Enum, Required: true, Enum: []string{"buy", "sell"}},
			{Name: "quantity", Type: Numeric, Required: true, Min: fptr(0.001)},
			{Name: "price", Type: Currency, Required: true, Min: fptr(0)},
			{Name: "trade_date", Type: Date, Required: true},
			{Name: statusField, Type: Enum, Enum: []string{"draft", "confirmed", "executed", "cancelled"}},
		},
		UniqueKey:     "code",
		CodePrefix:    "TRD",
		EqualsFilters: []string{statusField, "counterparty_id", "product_id", "direction"},
		SearchColumns: []string{"code"},
		StatusField:   statusField,
		States:        Lifecycle("draft", "confirmed", "executed"),
		Dependents: []Dependent{
			{Table: "invoices", Column: "trade_id", Label: "invoices"},
			{Table: "shipments", Column: "trade_id", Label: "shipments"},
		},
		ReadRole:  auth.RoleViewer,
		WriteRole: auth.RoleTrader,
	}
}

func invoices() *Schema {
	return &Schema{
		Name:     "invoices",
		Singular: "invoice",
		Table:    "invoices",
		Area:     "finance",
		Fields: []Field{
			{Name: "code", Type: Code},
			{Name: "trade_id", Type: Ref, Required: true, Ref: &Reference{Table: "trades", Label: "trade"}},
			{Name: "counterparty_id", Type: Ref, Required: true, Ref: &Reference{Table: "counterparties", Label: "counterparty"}},
			{Name: "amount", Type: Currency, Required: true, Min: fptr(0)},
			{Name: "due_date", Type: Date},
			{Name: statusField, Type: Enum, Enum: []string{"pending", "confirmed", "paid", "cancelled"}},
		},
		UniqueKey:     "code",
		CodePrefix:    "INV",
		EqualsFilters: []string{statusField, "counterparty_id", "trade_id"},
		SearchColumns: []string{"code"},
		StatusField:   statusField,
		States:        Lifecycle("pending", "confirmed", "paid"),
		Dependents: []Dependent{
			{Table: "settlements", Column: "invoice_id", Label: "settlements"},
		},
		ReadRole:  auth.RoleAnalyst,
		WriteRole: auth.RoleManager,
	}
}

func shipments() *Schema {
	return &Schema{
		Name:     "shipments",
		Singular: "shipment",
		Table:    "shipments",
		Area:     "logistics",
		Fields: []Field{
			{Name: "code", Type: Code},
			{Name: "trade_id", Type: Ref, Required: true, Ref: &Reference{Table: "trades", Label: "trade"}},
			{Name: "vessel_id", Type: Ref, Ref: &Reference{Table: "vessels", Label: "vessel"}},
			{Name: "load_port_id", Type: Ref, Ref: &Reference{Table: "ports", Label: "port"}},
			{Name: "discharge_port_id", Type: Ref, Ref: &Reference{Table: "ports", Label: "port"}},
			{Name: "laycan_start", Type: Date},
			{Name: "laycan_end", Type: Date},
			{Name: statusField, Type: Enum, Enum: []string{"pending", "in_transit", "delivered", "cancelled"}},
		},
		UniqueKey:     "code",
		CodePrefix:    "SHP",
		EqualsFilters: []string{statusField, "trade_id", "vessel_id"},
		SearchColumns: []string{"code"},
		StatusField:   statusField,
		States:        Lifecycle("pending", "in_transit", "delivered"),
		ReadRole:      auth.RoleViewer,
		WriteRole:     auth.RoleTrader,
	}
}

func settlements() *Schema {
	return &Schema{
		Name:     "settlements",
		Singular: "settlement",
		Table:    "settlements",
		Area:     "finance",
		Fields: []Field{
			{Name: "code", Type: Code},
			{Name: "invoice_id", Type: Ref, Required: true, Ref: &Reference{Table: "invoices", Label: "invoice"}},
			{Name: "counterparty_id", Type: Ref, Required: true, Ref: &Reference{Table: "counterparties", Label: "counterparty"}},
			{Name: "amount", Type: Currency, Required: true, Min: fptr(0)},
			{Name: "settled_date", Type: Date},
			{Name: statusField, Type: Enum, Enum: []string{"pending", "confirmed", "completed", "cancelled"}},
		},
		UniqueKey:     "code",
		CodePrefix:    "STL",
		EqualsFilters: []string{statusField, "counterparty_id", "invoice_id"},
		SearchColumns: []string{"code"},
		StatusField:   statusField,
		States:        Lifecycle("pending", "confirmed", "completed"),
		ReadRole:      auth.RoleAnalyst,
		WriteRole:     auth.RoleManager,
	}
}

func auditSinks() *Schema {
	return &Schema{
		Name:     "audit-sinks",
		Singular: "audit sink",
		Table:    "audit_sinks",
		Area:     "admin",
		Fields: []Field{
			{Name: "name", Type: Text, Required: true, MaxLen: 120},
			{Name: "url", Type: Text, Required: true, MaxLen: 500, Check: checkSinkURL},
			{Name: "match", Type: Text, MaxLen: 500, Check: checkJMESPath},
			{Name: statusField, Type: Enum, Enum: []string{"active", "disabled"}, Default: "active"},
		},
		UniqueKey:     "name",
		UniqueKeyFold: true,
		EqualsFilters: []string{statusField},
		SearchColumns: []string{"name", "url"},
		StatusField:   statusField,
		ReadRole:      auth.RoleAdmin,
		WriteRole:     auth.RoleAdmin,
	}
}
