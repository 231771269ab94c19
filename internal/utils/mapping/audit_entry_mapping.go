package mapping

import (
	"github.com/quipufin/cajachica_backend/internal/core/domain"
	"github.com/quipufin/cajachica_backend/internal/models"
)

// ToModelAuditEntry converts a domain AuditEntry to a model AuditEntry
func ToModelAuditEntry(d domain.AuditEntry) models.AuditEntry {
	return models.AuditEntry{
		EntryID:     d.EntryID,
		BoxID:       d.BoxID,
		Action:      string(d.Action),
		Description: d.Description,
		Detail:      d.Detail,
		PerformedBy: d.PerformedBy,
		PerformedAt: d.PerformedAt,
	}
}
