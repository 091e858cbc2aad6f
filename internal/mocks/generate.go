// Package mocks provides mock implementations for testing the services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the repository interfaces in internal/service. Hand-written doubles for the
// auth ports live in the auth subpackage.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockCredentialStore(ctrl)
//	store.EXPECT().GetByUsername(gomock.Any(), "ops").Return(user, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=credential_store_mock.go github.com/enerdesk/backoffice/internal/service CredentialStore

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=resource_store_mock.go github.com/enerdesk/backoffice/internal/service ResourceStore

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=activity_store_mock.go github.com/enerdesk/backoffice/internal/service ActivityStore

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=audit_sink_store_mock.go github.com/enerdesk/backoffice/internal/service AuditSinkStore
