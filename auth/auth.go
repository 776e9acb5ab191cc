// Package auth implements account authentication on top of the session
// middleware and the user store.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/Elizaveta2894/rgz-part2/middleware"
	"github.com/Elizaveta2894/rgz-part2/model"
	"github.com/Elizaveta2894/rgz-part2/store"
)

// ErrUsernameTaken is returned by Register when the name is already in use.
var ErrUsernameTaken = errors.New("Пользователь с таким именем уже существует")

// Service answers authentication and authorization questions. It satisfies
// the dispatcher's Authorizer interface.
type Service struct {
	store *store.FileStore
}

// NewService binds the auth service to the user store.
func NewService(st *store.FileStore) *Service {
	return &Service{store: st}
}

// Authenticate checks the credentials and returns the matching account.
func (s *Service) Authenticate(username, password string) (model.User, bool) {
	user, ok := s.store.UserByUsername(username)
	if !ok || !VerifyPassword(user.PasswordHash, password) {
		return model.User{}, false
	}
	return user, true
}

// Register creates a new account. The caller validates the fields first;
// Register only enforces name uniqueness and assigns the next id.
func (s *Service) Register(username, password, email string) (model.User, error) {
	if _, taken := s.store.UserByUsername(username); taken {
		return model.User{}, ErrUsernameTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return model.User{}, err
	}

	user := model.User{
		ID:           s.store.MaxUserID() + 1,
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		IsAdmin:      false,
		CreatedAt:    time.Now().Format(model.DateTimeLayout),
	}
	if err := s.store.AppendUser(user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// CurrentUser resolves the session identity against the store. The account
// must still exist under the same id and name; a deleted or renamed account
// yields no user even with a live session.
func (s *Service) CurrentUser(ctx context.Context) (model.User, bool) {
	sess := middleware.ContextSession(ctx)
	if sess == nil {
		return model.User{}, false
	}
	ident, ok := sess.Identity()
	if !ok {
		return model.User{}, false
	}
	user, ok := s.store.UserByID(ident.UserID)
	if !ok || user.Username != ident.Username {
		return model.User{}, false
	}
	return user, true
}

// Authenticated reports whether the request has a valid logged-in session.
func (s *Service) Authenticated(ctx context.Context) bool {
	_, ok := s.CurrentUser(ctx)
	return ok
}

// Admin reports whether the request belongs to an administrator.
func (s *Service) Admin(ctx context.Context) bool {
	user, ok := s.CurrentUser(ctx)
	return ok && user.IsAdmin
}

// Login binds user to the request session.
func (s *Service) Login(ctx context.Context, user model.User) {
	if sess := middleware.ContextSession(ctx); sess != nil {
		sess.Login(middleware.Identity{
			UserID:   user.ID,
			Username: user.Username,
			IsAdmin:  user.IsAdmin,
		})
	}
}

// Logout clears the request session.
func (s *Service) Logout(ctx context.Context) {
	if sess := middleware.ContextSession(ctx); sess != nil {
		sess.Logout()
	}
}
