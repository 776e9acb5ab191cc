// Package store persists the catalog in two flat JSON files, users.json and
// recipes.json, kept fully in memory and rewritten on every change.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Elizaveta2894/rgz-part2/model"
)

const (
	usersFile   = "users.json"
	recipesFile = "recipes.json"
)

// FileStore holds the catalog in memory and mirrors every change to disk.
//
// The zero value is not usable; call Open. All methods are safe for
// concurrent use. Snapshot accessors return copies, so a caller can read and
// render without holding anything; the read-modify-write cycles of the API
// layer are intentionally not atomic across calls, mirroring the
// single-threaded origins of the data layout.
type FileStore struct {
	mu      sync.Mutex
	dir     string
	log     *zap.Logger
	users   []model.User
	recipes []model.Recipe
}

// Open loads (or seeds) the data directory and returns a ready store.
//
// Missing or corrupt files are replaced with seed data. A users file without
// an "admin" account and an empty recipes file are also reseeded, so the
// catalog always has its administrator and at least the built-in recipes.
func Open(dir string, log *zap.Logger) (*FileStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	s := &FileStore{dir: dir, log: log}
	if err := s.loadUsers(); err != nil {
		return nil, err
	}
	if err := s.loadRecipes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) loadUsers() error {
	path := filepath.Join(s.dir, usersFile)
	data, err := os.ReadFile(path)
	if err == nil {
		var users []model.User
		if jsonErr := json.Unmarshal(data, &users); jsonErr == nil {
			if hasAdmin(users) {
				s.users = users
				return nil
			}
			s.log.Warn("store: users file has no admin account, reseeding")
		} else {
			s.log.Warn("store: users file corrupt, reseeding", zap.Error(jsonErr))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: read %s: %w", usersFile, err)
	}

	users, err := seedUsers()
	if err != nil {
		return err
	}
	s.users = users
	return s.saveUsersLocked()
}

func (s *FileStore) loadRecipes() error {
	path := filepath.Join(s.dir, recipesFile)
	data, err := os.ReadFile(path)
	if err == nil {
		var recipes []model.Recipe
		if jsonErr := json.Unmarshal(data, &recipes); jsonErr == nil {
			if len(recipes) > 0 {
				s.recipes = recipes
				return nil
			}
			s.log.Warn("store: recipes file empty, reseeding")
		} else {
			s.log.Warn("store: recipes file corrupt, reseeding", zap.Error(jsonErr))
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: read %s: %w", recipesFile, err)
	}

	s.recipes = seedRecipes()
	return s.saveRecipesLocked()
}

func hasAdmin(users []model.User) bool {
	for _, u := range users {
		if u.Username == "admin" {
			return true
		}
	}
	return false
}

// writeJSON rewrites path with v, pretty-printed and without HTML escaping so
// the files stay hand-readable.
func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: write %s: %w", filepath.Base(path), err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("store: encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func (s *FileStore) saveUsersLocked() error {
	return writeJSON(filepath.Join(s.dir, usersFile), s.users)
}

func (s *FileStore) saveRecipesLocked() error {
	return writeJSON(filepath.Join(s.dir, recipesFile), s.recipes)
}

// Users returns a snapshot of all accounts.
func (s *FileStore) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

// Recipes returns a snapshot of all recipes.
func (s *FileStore) Recipes() []model.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

// UserByID looks up an account by id.
func (s *FileStore) UserByID(id int) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// UserByUsername looks up an account by name.
func (s *FileStore) UserByUsername(username string) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return model.User{}, false
}

// RecipeByID looks up a recipe by id.
func (s *FileStore) RecipeByID(id int) (model.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recipes {
		if r.ID == id {
			return r, true
		}
	}
	return model.Recipe{}, false
}

// MaxUserID returns the highest account id, 0 when there are none.
func (s *FileStore) MaxUserID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, u := range s.users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max
}

// MaxRecipeID returns the highest recipe id, 0 when there are none.
func (s *FileStore) MaxRecipeID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	max := 0
	for _, r := range s.recipes {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}

// AppendUser adds an account and persists.
func (s *FileStore) AppendUser(u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	return s.saveUsersLocked()
}

// AppendRecipe adds a recipe and persists.
func (s *FileStore) AppendRecipe(r model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append(s.recipes, r)
	return s.saveRecipesLocked()
}

// UpdateRecipe applies fn to the recipe with the given id and persists.
// Returns the updated recipe, or ok=false when no such recipe exists.
func (s *FileStore) UpdateRecipe(id int, fn func(*model.Recipe)) (model.Recipe, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recipes {
		if s.recipes[i].ID == id {
			fn(&s.recipes[i])
			return s.recipes[i], true, s.saveRecipesLocked()
		}
	}
	return model.Recipe{}, false, nil
}

// UpdateUser applies fn to the account with the given id and persists.
func (s *FileStore) UpdateUser(id int, fn func(*model.User)) (model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			fn(&s.users[i])
			return s.users[i], true, s.saveUsersLocked()
		}
	}
	return model.User{}, false, nil
}

// DeleteRecipe removes the recipe with the given id and persists. Returns
// false when no such recipe exists; nothing is written in that case.
func (s *FileStore) DeleteRecipe(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.recipes[:0:0]
	for _, r := range s.recipes {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(s.recipes) {
		return false, nil
	}
	s.recipes = kept
	return true, s.saveRecipesLocked()
}

// DeleteUser removes the account with the given id and persists.
func (s *FileStore) DeleteUser(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.users[:0:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(s.users) {
		return false, nil
	}
	s.users = kept
	return true, s.saveUsersLocked()
}

// DeleteRecipesByAuthor removes every recipe authored by username and
// persists. Returns the number removed.
func (s *FileStore) DeleteRecipesByAuthor(username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.recipes[:0:0]
	for _, r := range s.recipes {
		if r.Author != username {
			kept = append(kept, r)
		}
	}
	removed := len(s.recipes) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	s.recipes = kept
	return removed, s.saveRecipesLocked()
}

// RecipeCount returns the number of stored recipes.
func (s *FileStore) RecipeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recipes)
}

// CountRecipesByAuthor returns how many recipes username has authored.
func (s *FileStore) CountRecipesByAuthor(username string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.recipes {
		if r.Author == username {
			n++
		}
	}
	return n
}
