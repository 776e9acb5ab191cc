// Package model defines the persisted catalog entities.
package model

// Time layouts used by the catalog. Seed rows carry plain dates, rows created
// through the API carry full timestamps; both are stored as strings.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Categories lists the accepted recipe categories, in display order.
var Categories = []string{
	"Завтрак",
	"Обед",
	"Ужин",
	"Десерт",
	"Закуска",
	"Салат",
	"Суп",
	"Основное блюдо",
}

// Difficulties lists the accepted difficulty levels.
var Difficulties = []string{
	"Легкая",
	"Средняя",
	"Сложная",
}

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidDifficulty reports whether d is one of Difficulties.
func ValidDifficulty(d string) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// Recipe is one catalog entry.
type Recipe struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	CookingTime int      `json:"cooking_time"`
	Ingredients []string `json:"ingredients"`
	Steps       string   `json:"steps"`
	ImageURL    string   `json:"image_url"`
	Author      string   `json:"author"`
	CreatedAt   string   `json:"created_at"`
	Views       int      `json:"views"`
	Rating      float64  `json:"rating"`
}

// User is a registered account, including the password hash. Never expose it
// over the API directly; use Safe.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Email        string `json:"email"`
	IsAdmin      bool   `json:"is_admin"`
	CreatedAt    string `json:"created_at"`
}

// SafeUser is the API view of a User, with credentials stripped.
type SafeUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

// Safe returns the credential-free view of u.
func (u User) Safe() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}
