package gateway

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dejargonator/dejargonator/internal/apperrors"
	"github.com/dejargonator/dejargonator/internal/models"
)

// GormGateway implements AnalysisGateway against Postgres through gorm.
type GormGateway struct {
	DB *gorm.DB
}

func NewGormGateway(db *gorm.DB) *GormGateway {
	return &GormGateway{DB: db}
}

func (g *GormGateway) ListByOwner(ctx context.Context, ownerID string) ([]models.Analysis, error) {
	var rows []models.Analysis
	err := g.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.Unavailable("list analyses", err)
	}
	return rows, nil
}

func (g *GormGateway) Insert(ctx context.Context, row *models.Analysis) error {
	if row.OwnerID == "" {
		return apperrors.Unauthenticated("insert without owner", nil)
	}
	// The server assigns identity: never trust a client-side temporary id.
	row.ID = 0
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := g.DB.WithContext(ctx).Create(row).Error; err != nil {
		return apperrors.Unavailable("insert analysis", err)
	}
	return nil
}

func (g *GormGateway) UpdateStatus(ctx context.Context, ownerID string, id int64, status string) error {
	res := g.DB.WithContext(ctx).
		Model(&models.Analysis{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("status", status)
	if res.Error != nil {
		return apperrors.Unavailable("update analysis status", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("analysis row not found", nil)
	}
	return nil
}

func (g *GormGateway) Delete(ctx context.Context, ownerID string, id int64) error {
	res := g.DB.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Analysis{})
	if res.Error != nil {
		return apperrors.Unavailable("delete analysis", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("analysis row not found", nil)
	}
	return nil
}
