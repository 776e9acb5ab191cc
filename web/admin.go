package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Elizaveta2894/rgz-part2/endpoint"
	"github.com/Elizaveta2894/rgz-part2/model"
	"github.com/Elizaveta2894/rgz-part2/validate"
)

type adminData struct {
	Recipes        []model.Recipe
	Users          []model.SafeUser
	InvalidRecipes []model.Recipe
}

func (s *Server) adminPanel(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	if deny := s.requireAdmin(r); deny != nil {
		return deny, nil
	}

	recipes := s.store.Recipes()

	var invalid []model.Recipe
	for _, recipe := range recipes {
		if recipe.CookingTime <= 0 {
			invalid = append(invalid, recipe)
		}
	}
	if len(invalid) > 10 {
		invalid = invalid[:10]
	}

	users := s.store.Users()
	safeUsers := make([]model.SafeUser, 0, len(users))
	for _, u := range users {
		safeUsers = append(safeUsers, u.Safe())
	}

	return s.render(r, "admin.html", "Админ-панель", adminData{
		Recipes:        recipes,
		Users:          safeUsers,
		InvalidRecipes: invalid,
	}), nil
}

// recipeForm carries the admin create/edit form fields. Numeric fields stay
// strings so a bad value reaches validation instead of failing decode.
type recipeForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	Ingredients string `form:"ingredients"`
	Steps       string `form:"steps"`
	ImageURL    string `form:"image_url"`
	CookingTime string `form:"cooking_time"`
	Category    string `form:"category"`
	Difficulty  string `form:"difficulty"`
	Rating      string `form:"rating"`
}

func (f *recipeForm) trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Ingredients = strings.TrimSpace(f.Ingredients)
	f.Steps = strings.TrimSpace(f.Steps)
	f.ImageURL = strings.TrimSpace(f.ImageURL)
	f.CookingTime = strings.TrimSpace(f.CookingTime)
	f.Category = strings.TrimSpace(f.Category)
	f.Difficulty = strings.TrimSpace(f.Difficulty)
	f.Rating = strings.TrimSpace(f.Rating)
}

type fieldError struct {
	Field   string
	Message string
}

// validateForm checks the shared form fields in a fixed order so flashes
// repeat predictably.
func (f *recipeForm) validateForm(timeRequired bool) []fieldError {
	var errs []fieldError
	appendErr := func(field, msg string) {
		if msg != "" {
			errs = append(errs, fieldError{Field: field, Message: msg})
		}
	}

	appendErr("title", validate.RecipeTitle(f.Title))
	appendErr("description", validate.RecipeDescription(f.Description))
	appendErr("ingredients", validate.Ingredients(validate.SplitIngredients(f.Ingredients)))
	appendErr("steps", validate.RecipeSteps(f.Steps))

	if f.CookingTime != "" {
		if minutes, err := strconv.Atoi(f.CookingTime); err != nil {
			appendErr("cooking_time", "Время приготовления должно быть числом")
		} else {
			appendErr("cooking_time", validate.CookingTime(minutes))
		}
	} else if timeRequired {
		appendErr("cooking_time", "Время приготовления обязательно")
	}

	if f.ImageURL != "" {
		appendErr("image_url", validate.ImageURL(f.ImageURL))
	}
	appendErr("category", validate.Category(f.Category))
	appendErr("difficulty", validate.Difficulty(f.Difficulty))

	if f.Rating != "" {
		if rating, err := strconv.ParseFloat(f.Rating, 64); err != nil {
			appendErr("rating", "Рейтинг должен быть числом")
		} else {
			appendErr("rating", validate.Rating(rating))
		}
	}

	return errs
}

type recipeFormData struct {
	Recipe       *model.Recipe
	Form         *recipeForm
	Categories   []string
	Difficulties []string
}

func (s *Server) createRecipePage(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	if deny := s.requireAdmin(r); deny != nil {
		return deny, nil
	}
	return s.render(r, "create_recipe.html", "Новый рецепт", recipeFormData{
		Categories:   model.Categories,
		Difficulties: model.Difficulties,
	}), nil
}

func (s *Server) createRecipeSubmit(w http.ResponseWriter, r *http.Request, f recipeForm) (endpoint.Renderer, error) {
	if deny := s.requireAdmin(r); deny != nil {
		return deny, nil
	}
	f.trim()

	if errs := f.validateForm(true); len(errs) > 0 {
		for _, e := range errs {
			flash(r, "danger", e.Field+": "+e.Message)
		}
		return s.render(r, "create_recipe.html", "Новый рецепт", recipeFormData{
			Form:         &f,
			Categories:   model.Categories,
			Difficulties: model.Difficulties,
		}), nil
	}

	newID := s.store.MaxRecipeID() + 1
	minutes, _ := strconv.Atoi(f.CookingTime)

	imageURL := f.ImageURL
	if imageURL == "" {
		imageURL = fmt.Sprintf("https://source.unsplash.com/300x200/?food,recipe&sig=%d", newID)
	}

	author := "admin"
	if user, ok := s.auth.CurrentUser(r.Context()); ok {
		author = user.Username
	}

	recipe := model.Recipe{
		ID:          newID,
		Title:       f.Title,
		Description: f.Description,
		Ingredients: validate.SplitIngredients(f.Ingredients),
		Steps:       f.Steps,
		ImageURL:    imageURL,
		CookingTime: minutes,
		Category:    f.Category,
		Difficulty:  f.Difficulty,
		Author:      author,
		Rating:      4.0,
		Views:       0,
		CreatedAt:   time.Now().Format(model.DateTimeLayout),
	}
	if err := s.store.AppendRecipe(recipe); err != nil {
		return nil, err
	}

	flash(r, "success", fmt.Sprintf("Рецепт %q успешно создан!", f.Title))
	return redirect("/admin"), nil
}

func (s *Server) editRecipePage(w http.ResponseWriter, r *http.Request, p recipeIDParams) (endpoint.Renderer, error) {
	if deny := s.requireAdmin(r); deny != nil {
		return deny, nil
	}

	recipe, found := s.store.RecipeByID(p.RecipeID)
	if !found {
		flash(r, "danger", "Рецепт не найден")
		return redirect("/admin"), nil
	}

	return s.render(r, "edit_recipe.html", "Редактирование рецепта", recipeFormData{
		Recipe:       &recipe,
		Categories:   model.Categories,
		Difficulties: model.Difficulties,
	}), nil
}

type editRecipeForm struct {
	recipeForm
	RecipeID int `path:"recipeID"`
}

func (s *Server) editRecipeSubmit(w http.ResponseWriter, r *http.Request, f editRecipeForm) (endpoint.Renderer, error) {
	if deny := s.requireAdmin(r); deny != nil {
		return deny, nil
	}

	recipe, found := s.store.RecipeByID(f.RecipeID)
	if !found {
		flash(r, "danger", "Рецепт не найден")
		return redirect("/admin"), nil
	}

	f.trim()

	if errs := f.validateForm(false); len(errs) > 0 {
		for _, e := range errs {
			flash(r, "danger", e.Field+": "+e.Message)
		}
		return s.render(r, "edit_recipe.html", "Редактирование рецепта", recipeFormData{
			Recipe:       &recipe,
			Form:         &f.recipeForm,
			Categories:   model.Categories,
			Difficulties: model.Difficulties,
		}), nil
	}

	_, _, err := s.store.UpdateRecipe(f.RecipeID, func(rec *model.Recipe) {
		rec.Title = f.Title
		rec.Description = f.Description
		rec.Ingredients = validate.SplitIngredients(f.Ingredients)
		rec.Steps = f.Steps
		if f.ImageURL != "" {
			rec.ImageURL = f.ImageURL
		}
		if f.CookingTime != "" {
			minutes, _ := strconv.Atoi(f.CookingTime)
			rec.CookingTime = minutes
		}
		rec.Category = f.Category
		rec.Difficulty = f.Difficulty
		if f.Rating != "" {
			rating, _ := strconv.ParseFloat(f.Rating, 64)
			rec.Rating = rating
		}
	})
	if err != nil {
		return nil, err
	}

	flash(r, "success", "Рецепт успешно обновлен!")
	return redirect("/admin"), nil
}

func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request, p recipeIDParams) (endpoint.Renderer, error) {
	if deny := s.requireAdmin(r); deny != nil {
		return deny, nil
	}

	deleted, err := s.store.DeleteRecipe(p.RecipeID)
	if err != nil {
		return nil, err
	}
	if deleted {
		flash(r, "success", fmt.Sprintf("Рецепт с ID %d успешно удален", p.RecipeID))
	} else {
		flash(r, "danger", fmt.Sprintf("Рецепт с ID %d не найден", p.RecipeID))
	}
	return redirect("/admin"), nil
}

func (s *Server) fixRecipe(w http.ResponseWriter, r *http.Request, p recipeIDParams) (endpoint.Renderer, error) {
	if deny := s.requireAdmin(r); deny != nil {
		return deny, nil
	}

	recipe, found := s.store.RecipeByID(p.RecipeID)
	if !found {
		flash(r, "danger", "Рецепт не найден")
		return redirect("/admin"), nil
	}

	if recipe.CookingTime <= 0 {
		if _, _, err := s.store.UpdateRecipe(p.RecipeID, func(rec *model.Recipe) {
			rec.CookingTime = 30
		}); err != nil {
			return nil, err
		}
		flash(r, "success", fmt.Sprintf("Время приготовления рецепта %q исправлено на 30 минут", recipe.Title))
	} else {
		flash(r, "info", "Рецепт не требует исправлений")
	}

	return redirect("/admin"), nil
}
