package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/accounts/internal/models"
	"github.com/Skotchmaster/accounts/internal/domain"
)

// Revoke records jti as revoked. Revoking an already revoked jti is a no-op.
func (r *GormRepo) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	row := models.RevokedToken{JTI: jti, ExpiresAt: expiresAt.UTC()}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return domain.NewStoreError("revoke token", err)
	}
	return nil
}

func (r *GormRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).
		Model(&models.RevokedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, domain.NewStoreError("check revoked", err)
	}
	return count > 0, nil
}

// PurgeExpired drops entries whose token expired before the given time.
// Such tokens already fail expiry validation, so the entry is redundant.
func (r *GormRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("expires_at < ?", before.UTC()).
		Delete(&models.RevokedToken{})
	if res.Error != nil {
		return 0, domain.NewStoreError("purge revoked", res.Error)
	}
	return res.RowsAffected, nil
}
