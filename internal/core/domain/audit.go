package domain

import "time"

// AuditAction names what a bitácora entry records.
type AuditAction string

const (
	AuditBoxOpened          AuditAction = "BOX_OPENED"
	AuditBoxClosed          AuditAction = "BOX_CLOSED"
	AuditControlCount       AuditAction = "CONTROL_COUNT"
	AuditLegalization       AuditAction = "LEGALIZATION"
	AuditWithholdingChanged AuditAction = "WITHHOLDING_CHANGED"
)

// AuditEntry is one append-only bitácora record. Nothing in the core reads these
// back; they exist for after-the-fact review.
type AuditEntry struct {
	EntryID     string         `json:"entryID"` // Primary Key (UUID)
	BoxID       *string        `json:"boxID,omitempty"`
	Action      AuditAction    `json:"action"`
	Description string         `json:"description"`
	// Detail carries structured context, e.g. the verified denomination
	// breakdown of an opening or closing count.
	Detail      map[string]any `json:"detail,omitempty"`
	PerformedBy string         `json:"performedBy"`
	PerformedAt time.Time      `json:"performedAt"`
}
