package gateway

import (
	"context"

	"github.com/dejargonator/dejargonator/internal/models"
)

// AnalysisGateway is the boundary to the hosted analyses table. Every
// operation is scoped to one owner; the gateway, not its callers, enforces
// that a caller never reads or writes another user's rows.
type AnalysisGateway interface {
	// ListByOwner returns all of ownerID's rows ordered created_at descending.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Analysis, error)

	// Insert persists a new row, assigning ID and CreatedAt server-side.
	// row.OwnerID must already be set to the calling user.
	Insert(ctx context.Context, row *models.Analysis) error

	// UpdateStatus sets the persisted stage of ownerID's row id.
	UpdateStatus(ctx context.Context, ownerID string, id int64, status string) error

	// Delete permanently removes ownerID's row id. There is no soft delete.
	Delete(ctx context.Context, ownerID string, id int64) error
}
