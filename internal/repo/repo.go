package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/accounts/internal/models"
)

const pgUniqueViolation = "23505"

type GormRepo struct {
	DB *gorm.DB
}

var defaultRoles = []models.Role{
	{Name: models.RoleUser, Description: "Regular account"},
	{Name: models.RoleAdmin, Description: "Account administration"},
}

// Migrate creates the tables and seeds the default roles. Safe to run on
// every start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.Role{}, &models.Account{}, &models.RevokedToken{}); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	roles := make([]models.Role, len(defaultRoles))
	copy(roles, defaultRoles)
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&roles).Error; err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
