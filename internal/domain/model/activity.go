package model

import "time"

// ActivityEntry is an append-only audit record of who did what. Entries are
// immutable once written; the application never updates or deletes them.
type ActivityEntry struct {
	ID        string    `json:"id"         db:"id"`
	ActorID   string    `json:"actor_id"   db:"actor_id"`
	Action    string    `json:"action"     db:"action"`
	Detail    string    `json:"detail"     db:"detail"`
	Origin    string    `json:"origin"     db:"origin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Payload renders the entry as a flat map suitable for JMESPath matching and
// webhook bodies.
func (e ActivityEntry) Payload() map[string]any {
	return map[string]any{
		"id":         e.ID,
		"actor_id":   e.ActorID,
		"action":     e.Action,
		"detail":     e.Detail,
		"origin":     e.Origin,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
