// Package validate holds the field validators for accounts and recipes.
//
// Each validator returns an empty string when the value is acceptable, or a
// user-facing message (in Russian, matching the UI language) describing the
// first violated rule.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Elizaveta2894/rgz-part2/model"
)

var (
	credentialPattern = regexp.MustCompile(`^[a-zA-Z0-9_!@#$%^&*()\-+=]+$`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	titlePattern      = regexp.MustCompile(`^[a-zA-Zа-яА-Я0-9\s\-_.,!?()":;'&]+$`)
)

// Username validates an account name: 3-50 characters from the latin
// alphanumeric set plus a fixed list of punctuation.
func Username(username string) string {
	if username == "" {
		return "Имя пользователя обязательно"
	}
	n := len([]rune(username))
	if n < 3 {
		return "Имя пользователя должно быть не менее 3 символов"
	}
	if n > 50 {
		return "Имя пользователя должно быть не более 50 символов"
	}
	if !credentialPattern.MatchString(username) {
		return "Имя пользователя может содержать только латинские буквы, цифры и символы: _!@#$%^&*()-+="
	}
	return ""
}

// Password validates a password: 6-100 characters from the same set as
// usernames.
func Password(password string) string {
	if password == "" {
		return "Пароль обязателен"
	}
	n := len([]rune(password))
	if n < 6 {
		return "Пароль должен быть не менее 6 символов"
	}
	if n > 100 {
		return "Пароль должен быть не более 100 символов"
	}
	if !credentialPattern.MatchString(password) {
		return "Пароль может содержать только латинские буквы, цифры и символы: _!@#$%^&*()-+="
	}
	return ""
}

// Email validates an optional e-mail address.
func Email(email string) string {
	if email == "" {
		return ""
	}
	if len([]rune(email)) > 100 {
		return "Email должен быть не более 100 символов"
	}
	if !emailPattern.MatchString(email) {
		return "Неверный формат email"
	}
	return ""
}

// RecipeTitle validates a recipe title: 3-200 characters, latin or cyrillic
// letters, digits and common punctuation.
func RecipeTitle(title string) string {
	if title == "" {
		return "Название рецепта обязательно"
	}
	n := len([]rune(title))
	if n < 3 {
		return "Название рецепта должно быть не менее 3 символов"
	}
	if n > 200 {
		return "Название рецепта должно быть не более 200 символов"
	}
	if !titlePattern.MatchString(title) {
		return "Название рецепта содержит недопустимые символы"
	}
	return ""
}

// RecipeDescription validates an optional description, at most 1000
// characters.
func RecipeDescription(description string) string {
	if description == "" {
		return ""
	}
	if len([]rune(description)) > 1000 {
		return "Описание рецепта должно быть не более 1000 символов"
	}
	return ""
}

// RecipeSteps validates the preparation steps: 10-5000 characters, required.
func RecipeSteps(steps string) string {
	if steps == "" {
		return "Шаги приготовления обязательны"
	}
	n := len([]rune(steps))
	if n < 10 {
		return "Шаги приготовления должны быть не менее 10 символов"
	}
	if n > 5000 {
		return "Шаги приготовления должны быть не более 5000 символов"
	}
	return ""
}

// CookingTime validates the cooking time in minutes: positive, at most a day.
func CookingTime(minutes int) string {
	if minutes <= 0 {
		return "Время приготовления должно быть положительным"
	}
	if minutes > 1440 {
		return "Время приготовления не может превышать 24 часа"
	}
	return ""
}

// Ingredients validates the ingredient list: 1-50 entries, each at most 200
// characters.
func Ingredients(ingredients []string) string {
	if len(ingredients) == 0 {
		return "Должен быть хотя бы один ингредиент"
	}
	if len(ingredients) > 50 {
		return "Не более 50 ингредиентов"
	}
	for _, ingredient := range ingredients {
		if len([]rune(ingredient)) > 200 {
			return fmt.Sprintf("Ингредиент слишком длинный: %s...", truncate(ingredient, 50))
		}
	}
	return ""
}

// ImageURL validates an optional image link: at most 500 characters, http or
// https.
func ImageURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if len([]rune(imageURL)) > 500 {
		return "URL изображения слишком длинный"
	}
	if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		return "URL должен начинаться с http:// или https://"
	}
	return ""
}

// Category validates that category is one of the known values.
func Category(category string) string {
	if category == "" {
		return "Категория обязательна"
	}
	if !model.ValidCategory(category) {
		return "Недопустимая категория. Допустимые значения: " + strings.Join(model.Categories, ", ")
	}
	return ""
}

// Difficulty validates that difficulty is one of the known values.
func Difficulty(difficulty string) string {
	if difficulty == "" {
		return "Сложность обязательна"
	}
	if !model.ValidDifficulty(difficulty) {
		return "Недопустимая сложность. Допустимые значения: " + strings.Join(model.Difficulties, ", ")
	}
	return ""
}

// Rating validates the rating range 0-5.
func Rating(rating float64) string {
	if rating < 0 || rating > 5 {
		return "Рейтинг должен быть от 0 до 5"
	}
	return ""
}

// SplitIngredients turns a newline-separated ingredient block into a list,
// trimming whitespace and dropping empty lines.
func SplitIngredients(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// RecipeData validates every recipe field present in data and returns a map
// of field name to message. Only fields present in the map are checked, so
// the same function serves both create (all fields supplied) and update
// (partial) paths. Optional fields with empty values are skipped.
//
// Accepted value shapes follow the wire format: strings for text fields,
// string or list for ingredients, and numbers or numeric strings for
// cooking_time and rating.
func RecipeData(data map[string]any) map[string]string {
	errors := make(map[string]string)

	if v, ok := data["title"]; ok {
		if msg := RecipeTitle(asString(v)); msg != "" {
			errors["title"] = msg
		}
	}

	if v, ok := data["description"]; ok && asString(v) != "" {
		if msg := RecipeDescription(asString(v)); msg != "" {
			errors["description"] = msg
		}
	}

	if v, ok := data["ingredients"]; ok {
		list, ok := ingredientList(v)
		if !ok {
			errors["ingredients"] = "Должен быть хотя бы один ингредиент"
		} else if msg := Ingredients(list); msg != "" {
			errors["ingredients"] = msg
		}
	}

	if v, ok := data["steps"]; ok {
		if msg := RecipeSteps(asString(v)); msg != "" {
			errors["steps"] = msg
		}
	}

	if v, ok := data["cooking_time"]; ok && v != nil {
		minutes, err := ToInt(v)
		if err != nil {
			errors["cooking_time"] = "Время приготовления должно быть числом"
		} else if msg := CookingTime(minutes); msg != "" {
			errors["cooking_time"] = msg
		}
	}

	if v, ok := data["image_url"]; ok && asString(v) != "" {
		if msg := ImageURL(asString(v)); msg != "" {
			errors["image_url"] = msg
		}
	}

	if v, ok := data["category"]; ok && asString(v) != "" {
		if msg := Category(asString(v)); msg != "" {
			errors["category"] = msg
		}
	}

	if v, ok := data["difficulty"]; ok && asString(v) != "" {
		if msg := Difficulty(asString(v)); msg != "" {
			errors["difficulty"] = msg
		}
	}

	if v, ok := data["rating"]; ok && v != nil {
		rating, err := ToFloat(v)
		if err != nil {
			errors["rating"] = "Рейтинг должен быть числом"
		} else if msg := Rating(rating); msg != "" {
			errors["rating"] = msg
		}
	}

	return errors
}

// ingredientList normalizes the two accepted ingredient shapes: a single
// newline-separated string or a list of strings.
func ingredientList(v any) ([]string, bool) {
	switch list := v.(type) {
	case string:
		return SplitIngredients(list), true
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
