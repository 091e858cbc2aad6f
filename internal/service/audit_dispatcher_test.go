package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/enerdesk/backoffice/internal/domain/model"
	"github.com/enerdesk/backoffice/internal/mocks"
	"github.com/enerdesk/backoffice/internal/service"
)

type sinkRecorder struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (r *sinkRecorder) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(req.Body).Decode(&body)
		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		r.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (r *sinkRecorder) received() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.bodies...)
}

func testEntry() model.ActivityEntry {
	return model.ActivityEntry{
		ID:        "entry-1",
		ActorID:   "user-1",
		Action:    "delete trade",
		Detail:    "TRD20260828-1a2b",
		Origin:    "trading",
		CreatedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
	}
}

func newDispatchFixture(t *testing.T) (*service.AuditDispatchService, *mocks.MockAuditSinkStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	sinks := mocks.NewMockAuditSinkStore(ctrl)
	svc := service.NewAuditDispatchService(service.AuditDispatchServiceOptions{Sinks: sinks})
	return svc, sinks
}

func TestAuditDispatch_DeliversToMatchingSink(t *testing.T) {
	t.Parallel()

	recorder := &sinkRecorder{}
	server := httptest.NewServer(recorder.handler(http.StatusOK))
	defer server.Close()

	svc, sinks := newDispatchFixture(t)
	sinks.EXPECT().ListActive(gomock.Any()).Return([]*model.AuditSink{
		{Name: "all-activity", URL: server.URL, Match: ""},
	}, nil)

	svc.Dispatch(context.Background(), testEntry())

	bodies := recorder.received()
	require.Len(t, bodies, 1)
	assert.Equal(t, "entry-1", bodies[0]["id"])
	assert.Equal(t, "delete trade", bodies[0]["action"])
	assert.Equal(t, "2026-08-28T09:00:00Z", bodies[0]["created_at"])
}

func TestAuditDispatch_MatchExpressionFilters(t *testing.T) {
	t.Parallel()

	matched := &sinkRecorder{}
	matchedServer := httptest.NewServer(matched.handler(http.StatusOK))
	defer matchedServer.Close()

	skipped := &sinkRecorder{}
	skippedServer := httptest.NewServer(skipped.handler(http.StatusOK))
	defer skippedServer.Close()

	svc, sinks := newDispatchFixture(t)
	sinks.EXPECT().ListActive(gomock.Any()).Return([]*model.AuditSink{
		{Name: "trade-deletes", URL: matchedServer.URL, Match: "action == 'delete trade'"},
		{Name: "logins-only", URL: skippedServer.URL, Match: "action == 'login'"},
	}, nil)

	svc.Dispatch(context.Background(), testEntry())

	assert.Len(t, matched.received(), 1)
	assert.Empty(t, skipped.received())
}

func TestAuditDispatch_FailedSinkDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	healthy := &sinkRecorder{}
	healthyServer := httptest.NewServer(healthy.handler(http.StatusOK))
	defer healthyServer.Close()

	broken := &sinkRecorder{}
	brokenServer := httptest.NewServer(broken.handler(http.StatusBadGateway))
	defer brokenServer.Close()

	svc, sinks := newDispatchFixture(t)
	sinks.EXPECT().ListActive(gomock.Any()).Return([]*model.AuditSink{
		{Name: "broken", URL: brokenServer.URL},
		{Name: "healthy", URL: healthyServer.URL},
	}, nil)

	svc.Dispatch(context.Background(), testEntry())

	assert.Len(t, healthy.received(), 1)
}

func TestAuditDispatch_BadMatchExpressionSkipsSink(t *testing.T) {
	t.Parallel()

	recorder := &sinkRecorder{}
	server := httptest.NewServer(recorder.handler(http.StatusOK))
	defer server.Close()

	svc, sinks := newDispatchFixture(t)
	sinks.EXPECT().ListActive(gomock.Any()).Return([]*model.AuditSink{
		{Name: "bad-expr", URL: server.URL, Match: "((("},
	}, nil)

	svc.Dispatch(context.Background(), testEntry())
	assert.Empty(t, recorder.received())
}

func TestAuditDispatch_NoSinksIsANoop(t *testing.T) {
	t.Parallel()

	svc, sinks := newDispatchFixture(t)
	sinks.EXPECT().ListActive(gomock.Any()).Return(nil, nil)

	svc.Dispatch(context.Background(), testEntry())
}
