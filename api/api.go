// Package api implements the JSON-RPC methods of the recipe catalog.
//
// Every method keeps domain failures out of the protocol channel: a bad
// filter value or a missing recipe comes back as a result object with an
// "error" member, while authorization and malformed-request failures travel
// in the JSON-RPC error envelope.
package api

import (
	"go.uber.org/zap"

	"github.com/Elizaveta2894/rgz-part2/auth"
	"github.com/Elizaveta2894/rgz-part2/jsonrpc"
	"github.com/Elizaveta2894/rgz-part2/store"
)

// Service holds the method implementations.
type Service struct {
	store *store.FileStore
	auth  *auth.Service
	log   *zap.Logger
}

// NewService wires the API onto the store and auth services.
func NewService(st *store.FileStore, authSvc *auth.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, auth: authSvc, log: log}
}

// RegisterMethods installs every catalog method on the dispatcher.
func (s *Service) RegisterMethods(d *jsonrpc.Dispatcher) {
	d.Register("search_recipes", jsonrpc.Public, jsonrpc.Method(s.SearchRecipes))
	d.Register("get_recipe", jsonrpc.Public, jsonrpc.Method(s.GetRecipe))
	d.Register("add_recipe", jsonrpc.RequiresAdmin, jsonrpc.Method(s.AddRecipe))
	d.Register("update_recipe", jsonrpc.RequiresAdmin, jsonrpc.Method(s.UpdateRecipe))
	d.Register("delete_recipe", jsonrpc.RequiresAdmin, jsonrpc.Method(s.DeleteRecipe))
	d.Register("get_categories", jsonrpc.Public, jsonrpc.Method(s.GetCategories))
	d.Register("get_recipes_count", jsonrpc.Public, jsonrpc.Method(s.GetRecipesCount))
	d.Register("get_user_info", jsonrpc.Public, jsonrpc.Method(s.GetUserInfo))
	d.Register("validate_login", jsonrpc.Public, jsonrpc.Method(s.ValidateLogin))
	d.Register("get_popular_recipes", jsonrpc.Public, jsonrpc.Method(s.GetPopularRecipes))
	d.Register("admin_get_all_users", jsonrpc.RequiresAdmin, jsonrpc.Method(s.AdminGetAllUsers))
	d.Register("admin_delete_user", jsonrpc.RequiresAdmin, jsonrpc.Method(s.AdminDeleteUser))
	d.Register("admin_update_user", jsonrpc.RequiresAdmin, jsonrpc.Method(s.AdminUpdateUser))
	d.Register("delete_account", jsonrpc.RequiresAuth, jsonrpc.Method(s.DeleteAccount))
}

// errorResult is the business-failure shape: a 200-OK result whose "error"
// member carries the message, optionally with per-field validation details.
type errorResult struct {
	Error            string            `json:"error"`
	ValidationErrors map[string]string `json:"validation_errors,omitempty"`
}

func businessErr(message string) errorResult {
	return errorResult{Error: message}
}

// truthy mirrors the loose presence checks of the wire protocol: absent
// values, zero numbers, empty strings and false all count as "not provided".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
