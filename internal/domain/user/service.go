package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"helphands-go/internal/domain/access"
	"helphands-go/internal/domain/validation"
)

type Service struct {
	repo   Repository
	hasher PasswordHasher
	cache  Cache
}

func NewService(repo Repository, hasher PasswordHasher, cache Cache) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{repo: repo, hasher: hasher, cache: cache}
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	return s.create(ctx, User{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Address: input.Address,
		Role:    access.RoleVolunteer,
		Status:  StatusActive,
	}, input.Password)
}

// EnsureAdmin creates an admin account unless one with the same email
// already exists. The bool reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, input SeedAdminInput) (*User, bool, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, false, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	created, err := s.create(ctx, User{
		Name:   input.Name,
		Email:  input.Email,
		Role:   access.RoleAdmin,
		Status: StatusActive,
	}, input.Password)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *Service) create(ctx context.Context, user User, password string) (*User, error) {
	if _, err := s.repo.GetUserByEmail(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user.ID = uuid.NewString()
	user.PasswordHash = hash
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == StatusInactive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// Resolve loads the current state of a token subject, consulting the
// cache first.
func (s *Service) Resolve(ctx context.Context, id string) (*User, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached, nil
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(user)
	return user, nil
}

func (s *Service) Get(ctx context.Context, caller *access.Caller, id string) (*User, error) {
	if err := access.Authorize(caller, access.ActionUserRead, access.Target{OwnerID: id}); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

func (s *Service) List(ctx context.Context, caller *access.Caller, filter ListFilter) ([]User, error) {
	if err := access.Authorize(caller, access.ActionUserList, access.Target{}); err != nil {
		return nil, err
	}
	filter.Role = strings.ToLower(strings.TrimSpace(filter.Role))
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	return s.repo.ListUsers(ctx, filter)
}

// Update applies the supplied fields. Role and status are dropped unless
// the caller is an admin.
func (s *Service) Update(ctx context.Context, caller *access.Caller, input UpdateUserInput) (*User, error) {
	if err := access.Authorize(caller, access.ActionUserUpdate, access.Target{OwnerID: input.ID}); err != nil {
		return nil, err
	}

	if !access.CanManagePrivileged(caller) {
		input.Role = nil
		input.Status = nil
	}
	input.Name = validation.TrimPtr(input.Name)
	input.Phone = validation.TrimPtr(input.Phone)
	input.Address = validation.TrimPtr(input.Address)
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	if input.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*input.Role))
		input.Role = &role
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		input.Status = &status
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	changed := false
	if input.Name != nil && *input.Name != user.Name {
		user.Name = *input.Name
		changed = true
	}
	if input.Email != nil && *input.Email != user.Email {
		other, err := s.repo.GetUserByEmail(ctx, *input.Email)
		if err == nil && other.ID != user.ID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		user.Email = *input.Email
		changed = true
	}
	if input.Phone != nil && *input.Phone != user.Phone {
		user.Phone = *input.Phone
		changed = true
	}
	if input.Address != nil && *input.Address != user.Address {
		user.Address = *input.Address
		changed = true
	}
	if input.Role != nil && access.Role(*input.Role) != user.Role {
		user.Role = access.Role(*input.Role)
		changed = true
	}
	if input.Status != nil && *input.Status != user.Status {
		user.Status = *input.Status
		changed = true
	}

	if !changed {
		return user, nil
	}
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	s.cache.Delete(user.ID)
	return user, nil
}

func (s *Service) Delete(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.Authorize(caller, access.ActionUserDelete, access.Target{OwnerID: id}); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	s.cache.Delete(id)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
