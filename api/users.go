package api

import (
	"context"
	"strings"

	"github.com/Elizaveta2894/rgz-part2/auth"
	"github.com/Elizaveta2894/rgz-part2/jsonrpc"
	"github.com/Elizaveta2894/rgz-part2/model"
	"github.com/Elizaveta2894/rgz-part2/validate"
)

type anonymousInfo struct {
	Authenticated bool `json:"authenticated"`
}

type userInfoResult struct {
	Authenticated bool           `json:"authenticated"`
	User          model.SafeUser `json:"user"`
	IsAdmin       bool           `json:"is_admin"`
}

// GetUserInfo reports who the caller is. Anonymous callers get only the
// authenticated flag.
func (s *Service) GetUserInfo(ctx context.Context, _ *EmptyParams) (any, error) {
	user, ok := s.auth.CurrentUser(ctx)
	if !ok {
		return anonymousInfo{Authenticated: false}, nil
	}
	return userInfoResult{
		Authenticated: true,
		User:          user.Safe(),
		IsAdmin:       user.IsAdmin,
	}, nil
}

// ValidateLoginParams carries the credentials to check.
type ValidateLoginParams struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type validateLoginResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateLogin checks credential format only; it never touches stored
// accounts.
func (s *Service) ValidateLogin(ctx context.Context, p *ValidateLoginParams) (any, error) {
	if msg := validate.Username(p.Username); msg != "" {
		return validateLoginResult{Valid: false, Error: msg}, nil
	}
	if msg := validate.Password(p.Password); msg != "" {
		return validateLoginResult{Valid: false, Error: msg}, nil
	}
	return validateLoginResult{Valid: true}, nil
}

// AdminUsersParams filters and paginates the account listing.
type AdminUsersParams struct {
	Limit      *int   `json:"limit"`
	Offset     *int   `json:"offset"`
	Search     string `json:"search"`
	RoleFilter string `json:"role_filter"`
}

type adminUserEntry struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	CreatedAt    string `json:"created_at"`
	RecipesCount int    `json:"recipes_count"`
}

type adminUsersResult struct {
	Users  []adminUserEntry `json:"users"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// AdminGetAllUsers lists accounts with optional name search and role filter,
// paginated. Each entry carries the author's recipe count.
func (s *Service) AdminGetAllUsers(ctx context.Context, p *AdminUsersParams) (any, error) {
	limit, offset := 100, 0
	if p.Limit != nil {
		limit = *p.Limit
	}
	if p.Offset != nil {
		offset = *p.Offset
	}

	var filtered []model.User
	for _, u := range s.store.Users() {
		if p.Search != "" && !containsFold(u.Username, p.Search) {
			continue
		}
		switch p.RoleFilter {
		case "admin":
			if !u.IsAdmin {
				continue
			}
		case "user":
			if u.IsAdmin {
				continue
			}
		}
		filtered = append(filtered, u)
	}

	total := len(filtered)
	page := paginate(filtered, offset, limit)

	users := make([]adminUserEntry, 0, len(page))
	for _, u := range page {
		users = append(users, adminUserEntry{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			IsAdmin:      u.IsAdmin,
			CreatedAt:    u.CreatedAt,
			RecipesCount: s.store.CountRecipesByAuthor(u.Username),
		})
	}

	return adminUsersResult{
		Users:  users,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func paginate(users []model.User, offset, limit int) []model.User {
	if offset < 0 {
		offset = 0
	}
	if offset > len(users) || limit <= 0 {
		return nil
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	return users[offset:end]
}

// AdminUserIDParams identifies the account an admin operation targets.
type AdminUserIDParams struct {
	UserID any `json:"user_id"`
}

type adminDeleteResult struct {
	Success       bool `json:"success"`
	DeletedUserID int  `json:"deleted_user_id"`
}

// AdminDeleteUser removes an account and every recipe it authored. The
// caller cannot delete itself. Target errors use the invalid-params protocol
// code, unlike the recipe methods, because the admin UI treats them as
// request mistakes rather than domain outcomes.
func (s *Service) AdminDeleteUser(ctx context.Context, p *AdminUserIDParams) (any, error) {
	id, err := validate.ToInt(p.UserID)
	if err != nil {
		return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "ID пользователя должен быть числом")
	}

	if current, ok := s.auth.CurrentUser(ctx); ok && current.ID == id {
		return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Нельзя удалить самого себя")
	}

	target, ok := s.store.UserByID(id)
	if !ok {
		return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Пользователь не найден")
	}

	if _, err := s.store.DeleteUser(id); err != nil {
		return nil, err
	}
	if _, err := s.store.DeleteRecipesByAuthor(target.Username); err != nil {
		return nil, err
	}

	return adminDeleteResult{Success: true, DeletedUserID: id}, nil
}

// AdminUpdateUserParams toggles the admin flag and/or resets the password.
type AdminUpdateUserParams struct {
	UserID      any    `json:"user_id"`
	IsAdmin     any    `json:"is_admin"`
	NewPassword string `json:"new_password"`
}

type adminUpdateResult struct {
	Success       bool `json:"success"`
	UpdatedUserID int  `json:"updated_user_id"`
}

// AdminUpdateUser changes an account's admin flag or password.
func (s *Service) AdminUpdateUser(ctx context.Context, p *AdminUpdateUserParams) (any, error) {
	id, err := validate.ToInt(p.UserID)
	if err != nil {
		return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "ID пользователя должен быть числом")
	}

	var newHash string
	if p.NewPassword != "" {
		newHash, err = auth.HashPassword(p.NewPassword)
		if err != nil {
			return nil, err
		}
	}

	_, found, err := s.store.UpdateUser(id, func(u *model.User) {
		if p.IsAdmin != nil {
			u.IsAdmin = truthy(p.IsAdmin)
		}
		if newHash != "" {
			u.PasswordHash = newHash
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Пользователь не найден")
	}

	return adminUpdateResult{Success: true, UpdatedUserID: id}, nil
}

type deleteAccountResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeleteAccount removes the caller's own account and recipes, then ends the
// session. The built-in administrator cannot be removed.
func (s *Service) DeleteAccount(ctx context.Context, _ *EmptyParams) (any, error) {
	current, ok := s.auth.CurrentUser(ctx)
	if !ok {
		return nil, jsonrpc.NewError(jsonrpc.CodeUnauthorized, "Требуется авторизация")
	}

	if current.IsAdmin && current.Username == "admin" {
		return nil, jsonrpc.NewError(jsonrpc.CodeInvalidParams, "Нельзя удалить администратора системы")
	}

	if _, err := s.store.DeleteUser(current.ID); err != nil {
		return nil, err
	}
	if _, err := s.store.DeleteRecipesByAuthor(current.Username); err != nil {
		return nil, err
	}

	s.auth.Logout(ctx)

	return deleteAccountResult{Success: true, Message: "Аккаунт удален"}, nil
}
