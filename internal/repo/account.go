package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/accounts/internal/domain"
	"github.com/Skotchmaster/accounts/internal/models"
)

// CreateAccount inserts the account and links it to the default role when
// that role exists. Duplicate email or username yields domain.ErrConflict.
func (r *GormRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.RoleID == nil {
			var role models.Role
			err := tx.Where("name = ?", models.RoleUser).Limit(1).Find(&role).Error
			if err != nil {
				return err
			}
			if role.ID != 0 {
				a.RoleID = &role.ID
			}
		}
		return tx.Create(a).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return domain.NewStoreError("create account", err)
	}
	return nil
}

func (r *GormRepo) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.DB.WithContext(ctx).Preload("Role").Where("username = ?", username).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.NewStoreError("find account", err)
	}
	return &account, nil
}

func (r *GormRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.DB.WithContext(ctx).Preload("Role").Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, domain.NewStoreError("list accounts", err)
	}
	return accounts, nil
}

func (r *GormRepo) DeleteAll(ctx context.Context) (int64, error) {
	res := r.DB.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Account{})
	if res.Error != nil {
		return 0, domain.NewStoreError("delete accounts", res.Error)
	}
	return res.RowsAffected, nil
}
