// Package devseed loads a small demo dataset for local development: an
// admin account, master data, and a couple of trades. Master data seeding
// is idempotent; trades are only created when the book is empty, since
// their codes are generated server-side.
package devseed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/enerdesk/backoffice/internal/data"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/model"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
	"github.com/enerdesk/backoffice/internal/service"
)

// DefaultAdminUsername is the account created by Seed for first login.
const DefaultAdminUsername = "admin"

// Services bundles the dependencies needed for seeding.
type Services struct {
	userRepo  *data.UserRepo
	users     *service.UserService
	resources *service.ResourceService
	registry  *resource.Registry
}

// NewServices constructs the seeding services over the provided DB.
func NewServices(db *sql.DB, logger *slog.Logger) Services {
	userRepo := data.NewUserRepo(db)
	return Services{
		userRepo: userRepo,
		users: service.NewUserService(service.UserServiceOptions{
			Users:  userRepo,
			Logger: logger,
		}),
		resources: service.NewResourceService(service.ResourceServiceOptions{
			Store:  data.NewResourceRepo(db),
			Logger: logger,
		}),
		registry: resource.NewRegistry(resource.DefaultSchemas()),
	}
}

// Seed loads the demo dataset. The admin password is caller-supplied so it
// never lands in source control.
func (s Services) Seed(ctx context.Context, logger *slog.Logger, adminPassword string) error {
	adminID, err := s.ensureAdmin(ctx, logger, adminPassword)
	if err != nil {
		return err
	}

	// Resource writes go through the service so validation, generated
	// codes, and lifecycle defaults match what the API would produce.
	sess := domainauth.Session{UserID: adminID, Username: DefaultAdminUsername, Role: domainauth.RoleAdmin}

	ids := map[string]string{}
	for _, row := range masterRows() {
		id, ensureErr := s.ensureRow(ctx, sess, row, ids)
		if ensureErr != nil {
			return fmt.Errorf("seed %s %q: %w", row.schema, row.key, ensureErr)
		}
		ids[row.schema+"/"+row.key] = id
		logger.InfoContext(ctx, "seeded", "resource", row.schema, "key", row.key)
	}

	return s.seedTrades(ctx, logger, sess, ids)
}

func (s Services) ensureAdmin(ctx context.Context, logger *slog.Logger, password string) (string, error) {
	user, err := s.users.Create(ctx, &model.CreateUserRequest{
		Username: DefaultAdminUsername,
		Password: password,
		Role:     string(domainauth.RoleAdmin),
	})
	if err == nil {
		logger.InfoContext(ctx, "created admin account", "username", DefaultAdminUsername)
		return user.ID, nil
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeDuplicate) {
		return "", fmt.Errorf("create admin: %w", err)
	}

	existing, getErr := s.userRepo.GetByUsername(ctx, DefaultAdminUsername)
	if getErr != nil {
		return "", fmt.Errorf("look up admin: %w", getErr)
	}
	return existing.ID, nil
}

// seedRow is one demo record. key is the unique-key value used both for
// idempotency lookup and for resolving references from later rows.
type seedRow struct {
	area   string
	schema string
	key    string
	values map[string]string

	// refs maps a field name to "schema/key" of an earlier row whose
	// generated id fills that field.
	refs map[string]string
}

func (s Services) ensureRow(ctx context.Context, sess domainauth.Session, row seedRow, ids map[string]string) (string, error) {
	schema := s.registry.Lookup(row.area, row.schema)
	if schema == nil {
		return "", fmt.Errorf("unknown schema %q", row.schema)
	}

	input, err := resolveRefs(row, ids)
	if err != nil {
		return "", err
	}

	created, err := s.resources.Create(ctx, sess, schema, input)
	if err == nil {
		id, _ := created["id"].(string)
		return id, nil
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeDuplicate) {
		return "", err
	}

	// Already present from an earlier run; find it by its unique key.
	return s.findByKey(ctx, sess, schema, row.key)
}

func (s Services) seedTrades(ctx context.Context, logger *slog.Logger, sess domainauth.Session, ids map[string]string) error {
	schema := s.registry.Lookup("trading", "trades")
	if schema == nil {
		return fmt.Errorf("trades schema not registered")
	}

	_, page, err := s.resources.List(ctx, sess, schema, resource.ListQuery{Page: 1, Limit: 1})
	if err != nil {
		return fmt.Errorf("inspect trade book: %w", err)
	}
	if page.Total > 0 {
		logger.InfoContext(ctx, "trade book not empty; skipping demo trades", "total", page.Total)
		return nil
	}

	for _, row := range demoTrades() {
		input, resolveErr := resolveRefs(row, ids)
		if resolveErr != nil {
			return resolveErr
		}
		created, createErr := s.resources.Create(ctx, sess, schema, input)
		if createErr != nil {
			return fmt.Errorf("seed trade: %w", createErr)
		}
		logger.InfoContext(ctx, "seeded", "resource", "trades", "code", created["code"])
	}
	return nil
}

func resolveRefs(row seedRow, ids map[string]string) (map[string]string, error) {
	input := make(map[string]string, len(row.values)+len(row.refs))
	for k, v := range row.values {
		input[k] = v
	}
	for field, target := range row.refs {
		id, found := ids[target]
		if !found {
			return nil, fmt.Errorf("reference %q not seeded yet", target)
		}
		input[field] = id
	}
	return input, nil
}

func (s Services) findByKey(ctx context.Context, sess domainauth.Session, schema *resource.Schema, key string) (string, error) {
	rows, _, err := s.resources.List(ctx, sess, schema, resource.ListQuery{Search: key, Page: 1, Limit: 50})
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		if v, ok := row[schema.UniqueKey].(string); ok && strings.EqualFold(v, key) {
			if id, idOK := row["id"].(string); idOK {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("existing %s %q not found by search", schema.Singular, key)
}

func masterRows() []seedRow {
	return []seedRow{
		{area: "masterdata", schema: "brokers", key: "Marex Spectron", values: map[string]string{
			"name": "Marex Spectron", "commission_rate": "0.25", "contact_email": "desk@marex.example",
		}},
		{area: "masterdata", schema: "products", key: "BRN", values: map[string]string{
			"code": "BRN", "name": "Brent Crude", "unit": "bbl",
		}},
		{area: "masterdata", schema: "products", key: "TTF", values: map[string]string{
			"code": "TTF", "name": "Dutch TTF Gas", "unit": "mwh",
		}},
		{area: "masterdata", schema: "counterparties", key: "Vitol SA", values: map[string]string{
			"name": "Vitol SA", "country": "CH", "credit_limit": "25000000",
		}},
		{area: "masterdata", schema: "counterparties", key: "Glencore plc", values: map[string]string{
			"name": "Glencore plc", "country": "GB", "credit_limit": "40000000",
		}},
		{area: "masterdata", schema: "ports", key: "Rotterdam", values: map[string]string{
			"name": "Rotterdam", "country": "NL", "port_type": "both",
		}},
		{area: "masterdata", schema: "ports", key: "Houston", values: map[string]string{
			"name": "Houston", "country": "US", "port_type": "loading",
		}},
		{area: "masterdata", schema: "vessels", key: "Seaways Athena", values: map[string]string{
			"name": "Seaways Athena", "imo_number": "9834227", "capacity_dwt": "115000",
		}},
		{area: "masterdata", schema: "tariffs", key: "TTF-TRANSPORT", values: map[string]string{
			"code": "TTF-TRANSPORT", "rate": "1.85", "valid_from": "2026-01-01",
		}, refs: map[string]string{"product_id": "products/TTF"}},
	}
}

func demoTrades() []seedRow {
	return []seedRow{
		{values: map[string]string{
			"direction": "buy", "quantity": "50000", "price": "71.35", "trade_date": "2026-08-03",
		}, refs: map[string]string{
			"counterparty_id": "counterparties/Vitol SA",
			"product_id":      "products/BRN",
			"broker_id":       "brokers/Marex Spectron",
		}},
		{values: map[string]string{
			"direction": "sell", "quantity": "12000", "price": "33.10", "trade_date": "2026-08-11",
		}, refs: map[string]string{
			"counterparty_id": "counterparties/Glencore plc",
			"product_id":      "products/TTF",
		}},
	}
}
