package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Whateverdoa/vertical-slice-service/internals/storage/models"
	"github.com/google/uuid"
)

type MockUserStorage struct {
	mu                 sync.RWMutex
	Users              map[uuid.UUID]models.User
	CreateUserFunc     func(ctx context.Context, user models.User) (models.User, error)
	GetUserByIDFunc    func(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmailFunc func(ctx context.Context, email string) (models.User, error)
	ListUsersFunc      func(ctx context.Context, offset int, limit int) ([]models.User, error)
	UpdateUserFunc     func(ctx context.Context, userID uuid.UUID, update models.UserUpdate) (models.User, error)
	DeleteUserFunc     func(ctx context.Context, userID uuid.UUID) error
}

func NewMockUserStorage() *MockUserStorage {
	return &MockUserStorage{
		Users: make(map[uuid.UUID]models.User),
	}
}

func (m *MockUserStorage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Users {
		if existing.Email == user.Email {
			return models.User{}, errors.New("EMAIL_EXISTS")
		}
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.Users[user.ID] = user
	return user, nil
}

func (m *MockUserStorage) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.Users[userID]
	if !exists {
		return models.User{}, errors.New("NOT_FOUND")
	}
	return user, nil
}

func (m *MockUserStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, errors.New("NOT_FOUND")
}

func (m *MockUserStorage) ListUsers(ctx context.Context, offset int, limit int) ([]models.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, offset, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]models.User, 0, len(m.Users))
	for _, user := range m.Users {
		users = append(users, user)
	}

	if offset >= len(users) {
		return []models.User{}, nil
	}
	users = users[offset:]
	if limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}

func (m *MockUserStorage) UpdateUser(ctx context.Context, userID uuid.UUID, update models.UserUpdate) (models.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, userID, update)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Users[userID]
	if !exists {
		return models.User{}, errors.New("NOT_FOUND")
	}

	if update.Email != nil && *update.Email != user.Email {
		for id, other := range m.Users {
			if id != userID && other.Email == *update.Email {
				return models.User{}, errors.New("EMAIL_EXISTS")
			}
		}
		user.Email = *update.Email
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}

	user.UpdatedAt = time.Now()
	m.Users[userID] = user
	return user, nil
}

func (m *MockUserStorage) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Users[userID]; !exists {
		return errors.New("NOT_FOUND")
	}
	delete(m.Users, userID)
	return nil
}

type MockUserCache struct {
	mu                 sync.RWMutex
	Cached             map[uuid.UUID]models.User
	Hits               int
	Misses             int
	GetUserFunc        func(ctx context.Context, userID uuid.UUID) (models.User, bool, error)
	SetUserFunc        func(ctx context.Context, user models.User) error
	InvalidateUserFunc func(ctx context.Context, userID uuid.UUID) error
}

func NewMockUserCache() *MockUserCache {
	return &MockUserCache{
		Cached: make(map[uuid.UUID]models.User),
	}
}

func (m *MockUserCache) GetUser(ctx context.Context, userID uuid.UUID) (models.User, bool, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Cached[userID]
	if !exists {
		m.Misses++
		return models.User{}, false, nil
	}
	m.Hits++
	return user, true, nil
}

func (m *MockUserCache) SetUser(ctx context.Context, user models.User) error {
	if m.SetUserFunc != nil {
		return m.SetUserFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Cached[user.ID] = user
	return nil
}

func (m *MockUserCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	if m.InvalidateUserFunc != nil {
		return m.InvalidateUserFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Cached, userID)
	return nil
}

type MockSessionStore struct {
	mu                     sync.RWMutex
	Denylisted             map[string]bool
	Revoked                map[uuid.UUID]time.Time
	DenylistTokenFunc      func(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenDenylistedFunc  func(ctx context.Context, tokenID string) (bool, error)
	RevokeUserSessionsFunc func(ctx context.Context, userID uuid.UUID, revokedAt time.Time, ttl time.Duration) error
	UserRevokedAfterFunc   func(ctx context.Context, userID uuid.UUID) (time.Time, bool, error)
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		Denylisted: make(map[string]bool),
		Revoked:    make(map[uuid.UUID]time.Time),
	}
}

func (m *MockSessionStore) DenylistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if m.DenylistTokenFunc != nil {
		return m.DenylistTokenFunc(ctx, tokenID, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Denylisted[tokenID] = true
	return nil
}

func (m *MockSessionStore) IsTokenDenylisted(ctx context.Context, tokenID string) (bool, error) {
	if m.IsTokenDenylistedFunc != nil {
		return m.IsTokenDenylistedFunc(ctx, tokenID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.Denylisted[tokenID], nil
}

func (m *MockSessionStore) RevokeUserSessions(ctx context.Context, userID uuid.UUID, revokedAt time.Time, ttl time.Duration) error {
	if m.RevokeUserSessionsFunc != nil {
		return m.RevokeUserSessionsFunc(ctx, userID, revokedAt, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Revoked[userID] = revokedAt
	return nil
}

func (m *MockSessionStore) UserRevokedAfter(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	if m.UserRevokedAfterFunc != nil {
		return m.UserRevokedAfterFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	revokedAt, exists := m.Revoked[userID]
	return revokedAt, exists, nil
}
