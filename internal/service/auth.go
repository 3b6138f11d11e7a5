// Package service provides the business logic of the vault server: user
// registration over a UserRepository and vault operations over a Device.
package service

import (
	"context"
	"sync"
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// UserExists returns true if a user with the given login exists.
	UserExists(ctx context.Context, login string) (bool, error)
	// RegisterUser stores login with the next free uid not above maxUID.
	RegisterUser(ctx context.Context, login string, maxUID int) (int, error)
	// LookupUID returns the uid assigned to login.
	LookupUID(ctx context.Context, login string) (int, error)
}

// AuthService registers users and resolves logins to vault uids.
// Resolved uids are cached; an assignment never changes once made.
type AuthService struct {
	repo   UserRepository
	maxUID int
	uids   sync.Map // login -> int
}

// NewAuthService constructs an AuthService handing out uids 1..maxUID.
func NewAuthService(repo UserRepository, maxUID int) *AuthService {
	return &AuthService{repo: repo, maxUID: maxUID}
}

// UserExists checks whether a user with the specified login exists.
func (s *AuthService) UserExists(ctx context.Context, login string) (bool, error) {
	return s.repo.UserExists(ctx, login)
}

// RegisterUser registers login and returns its vault uid.
func (s *AuthService) RegisterUser(ctx context.Context, login string) (int, error) {
	uid, err := s.repo.RegisterUser(ctx, login, s.maxUID)
	if err != nil {
		return 0, err
	}
	s.uids.Store(login, uid)
	return uid, nil
}

// LookupUID returns the vault uid of login.
func (s *AuthService) LookupUID(ctx context.Context, login string) (int, error) {
	if uid, ok := s.uids.Load(login); ok {
		return uid.(int), nil
	}
	uid, err := s.repo.LookupUID(ctx, login)
	if err != nil {
		return 0, err
	}
	s.uids.Store(login, uid)
	return uid, nil
}
