package storage

import (
	"context"
	"time"

	"github.com/Whateverdoa/vertical-slice-service/internals/storage/models"
	"github.com/google/uuid"
)

type UserStorage interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, offset int, limit int) ([]models.User, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, update models.UserUpdate) (models.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type UserCache interface {
	GetUser(ctx context.Context, userID uuid.UUID) (models.User, bool, error)
	SetUser(ctx context.Context, user models.User) error
	InvalidateUser(ctx context.Context, userID uuid.UUID) error
}

type SessionStore interface {
	DenylistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenDenylisted(ctx context.Context, tokenID string) (bool, error)
	RevokeUserSessions(ctx context.Context, userID uuid.UUID, revokedAt time.Time, ttl time.Duration) error
	UserRevokedAfter(ctx context.Context, userID uuid.UUID) (time.Time, bool, error)
}
