package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/enerdesk/backoffice/internal/domain/model"
)

// JMESPathEvaluator abstracts JMESPath evaluation for testability.
type JMESPathEvaluator interface {
	Evaluate(expr string, data any) (any, error)
}

type jmespathLibEvaluator struct{}

func (jmespathLibEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

// AuditDispatchServiceOptions configures the audit dispatch service.
type AuditDispatchServiceOptions struct {
	Sinks      AuditSinkStore
	Evaluator  JMESPathEvaluator
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// AuditDispatchService posts activity entries to active webhook sinks whose
// match expression accepts the entry payload. Delivery is best-effort: a
// failed sink is logged and skipped.
type AuditDispatchService struct {
	sinks  AuditSinkStore
	jems   JMESPathEvaluator
	client *http.Client
	logger *slog.Logger
}

// NewAuditDispatchService creates a new audit dispatch service.
func NewAuditDispatchService(opts AuditDispatchServiceOptions) *AuditDispatchService {
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditDispatchService{
		sinks:  opts.Sinks,
		jems:   jems,
		client: client,
		logger: logger,
	}
}

// Dispatch delivers one entry to every matching active sink.
func (s *AuditDispatchService) Dispatch(ctx context.Context, entry model.ActivityEntry) {
	sinks, err := s.sinks.ListActive(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load audit sinks", "error", err)
		return
	}
	if len(sinks) == 0 {
		return
	}

	payload := entry.Payload()
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode activity payload",
			"entry_id", entry.ID, "error", err)
		return
	}

	delivered := 0
	for _, sink := range sinks {
		matched, matchErr := s.matches(sink, payload)
		if matchErr != nil {
			s.logger.WarnContext(ctx, "audit sink match expression failed",
				"sink", sink.Name, "error", matchErr)
			continue
		}
		if !matched {
			continue
		}
		if postErr := s.post(ctx, sink, body); postErr != nil {
			s.logger.WarnContext(ctx, "audit sink delivery failed",
				"sink", sink.Name, "entry_id", entry.ID, "error", postErr)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		s.logger.DebugContext(ctx, "activity entry dispatched",
			"entry_id", entry.ID, "sinks", delivered)
	}
}

// matches evaluates the sink's JMESPath expression against the payload. An
// empty expression matches everything.
func (s *AuditDispatchService) matches(sink *model.AuditSink, payload map[string]any) (bool, error) {
	expr := strings.TrimSpace(sink.Match)
	if expr == "" {
		return true, nil
	}
	result, err := s.jems.Evaluate(expr, payload)
	if err != nil {
		return false, err
	}
	return isTruthy(result), nil
}

func (s *AuditDispatchService) post(ctx context.Context, sink *model.AuditSink, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sink.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sink responded %d", resp.StatusCode)
	}
	return nil
}

// isTruthy follows JMESPath truthiness: nil, false, empty strings, and empty
// collections are false.
func isTruthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
