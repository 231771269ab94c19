package models

import "time"

// AuditEntry maps to the audit_entries table. Detail is stored as JSONB.
type AuditEntry struct {
	EntryID     string         `json:"entryID" db:"entry_id"`
	BoxID       *string        `json:"boxID,omitempty" db:"box_id"`
	Action      string         `json:"action" db:"action"`
	Description string         `json:"description" db:"description"`
	Detail      map[string]any `json:"detail,omitempty" db:"detail"`
	PerformedBy string         `json:"performedBy" db:"performed_by"`
	PerformedAt time.Time      `json:"performedAt" db:"performed_at"`
}
