package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/enerdesk/backoffice/internal/data"
	domainauth "github.com/enerdesk/backoffice/internal/domain/auth"
	"github.com/enerdesk/backoffice/internal/domain/model"
	"github.com/enerdesk/backoffice/internal/domain/resource"
	apperrors "github.com/enerdesk/backoffice/internal/errors"
)

// ActivityAPI is the slice of the activity service the handlers need.
type ActivityAPI interface {
	List(ctx context.Context, sess domainauth.Session, opts data.ActivityListOptions) ([]*model.ActivityEntry, int, error)
}

// ActivityHandlers serves the audit trail, newest first.
type ActivityHandlers struct {
	Svc ActivityAPI
}

// List returns a page of activity entries, filterable by actor, action, and
// a search term over action and detail.
// GET /api/admin/activity?page=&limit=&search=&actor_id=&action=.
func (h *ActivityHandlers) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.AuthRequired())
		return
	}

	q := resource.ParsePageQuery(r.URL.Query())
	opts := data.ActivityListOptions{
		ActorID: strings.TrimSpace(r.URL.Query().Get("actor_id")),
		Action:  strings.TrimSpace(r.URL.Query().Get("action")),
		Search:  q.Search,
		Limit:   q.Limit,
		Offset:  q.Offset(),
	}

	entries, total, err := h.Svc.List(r.Context(), sess, opts)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteList(w, entries, resource.NewPagination(q, total))
}
