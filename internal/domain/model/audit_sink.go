package model

import "time"

// AuditSink is a webhook target for activity log dispatch. Match is an
// optional JMESPath expression evaluated against the entry payload; the entry
// is delivered when the expression yields a truthy value, or unconditionally
// when Match is empty.
type AuditSink struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	URL       string    `json:"url"        db:"url"`
	Match     string    `json:"match"      db:"match"`
	Status    string    `json:"status"     db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
