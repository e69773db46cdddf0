package user

import "context"

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, filter ListFilter) ([]User, error)
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id string) (bool, error)
}

// PasswordHasher hides the hashing scheme from the service.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Cache holds recently resolved users for the auth middleware.
type Cache interface {
	Get(userID string) (*User, bool)
	Set(user *User)
	Delete(userID string)
}

type noopCache struct{}

func (noopCache) Get(string) (*User, bool) {
	return nil, false
}

func (noopCache) Set(*User) {}

func (noopCache) Delete(string) {}
