package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/accounts/internal/models"
)

type AccountStore interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Blacklist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}
