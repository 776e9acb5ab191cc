package api

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Elizaveta2894/rgz-part2/model"
	"github.com/Elizaveta2894/rgz-part2/validate"
)

// SearchParams filters the catalog. Ingredients accepts either a
// comma-separated string or a list of strings; MaxTime accepts a number or a
// numeric string.
type SearchParams struct {
	Title       string `json:"title"`
	Ingredients any    `json:"ingredients"`
	Mode        string `json:"mode"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	MaxTime     any    `json:"max_time"`
}

type searchFilters struct {
	Title            string `json:"title"`
	IngredientsCount int    `json:"ingredients_count"`
	Mode             string `json:"mode"`
	Category         string `json:"category"`
	Difficulty       string `json:"difficulty"`
	MaxTime          any    `json:"max_time"`
}

type searchResult struct {
	Recipes []model.Recipe `json:"recipes"`
	Count   int            `json:"count"`
	Filters searchFilters  `json:"filters_applied"`
}

// SearchRecipes filters the catalog by title substring, ingredients,
// category, difficulty and maximum cooking time, ordered by views. At most
// 100 recipes are returned; the count reflects all matches.
func (s *Service) SearchRecipes(ctx context.Context, p *SearchParams) (any, error) {
	titleFilter := strings.ToLower(strings.TrimSpace(p.Title))

	var ingredientsFilter []string
	switch ing := p.Ingredients.(type) {
	case string:
		for _, part := range strings.Split(ing, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ingredientsFilter = append(ingredientsFilter, part)
			}
		}
	case []any:
		for _, item := range ing {
			if str, ok := item.(string); ok {
				ingredientsFilter = append(ingredientsFilter, str)
			}
		}
	}

	mode := p.Mode
	if mode == "" {
		mode = "any"
	}

	var maxTime int
	var maxTimeEcho any
	if p.MaxTime != nil {
		var err error
		maxTime, err = validate.ToInt(p.MaxTime)
		if err != nil {
			return businessErr("Максимальное время приготовления должно быть числом"), nil
		}
		if maxTime <= 0 {
			return businessErr("Максимальное время приготовления должно быть положительным числом"), nil
		}
		maxTimeEcho = maxTime
	}

	filtered := make([]model.Recipe, 0)
	for _, recipe := range s.store.Recipes() {
		if titleFilter != "" && !strings.Contains(strings.ToLower(recipe.Title), titleFilter) {
			continue
		}
		if p.Category != "" && !strings.EqualFold(recipe.Category, p.Category) {
			continue
		}
		if p.Difficulty != "" && !strings.EqualFold(recipe.Difficulty, p.Difficulty) {
			continue
		}
		if maxTime > 0 && recipe.CookingTime > maxTime {
			continue
		}
		if len(ingredientsFilter) > 0 && !matchIngredients(recipe.Ingredients, ingredientsFilter, mode) {
			continue
		}
		filtered = append(filtered, recipe)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Views > filtered[j].Views
	})

	count := len(filtered)
	if count > 100 {
		filtered = filtered[:100]
	}

	return searchResult{
		Recipes: filtered,
		Count:   count,
		Filters: searchFilters{
			Title:            titleFilter,
			IngredientsCount: len(ingredientsFilter),
			Mode:             mode,
			Category:         p.Category,
			Difficulty:       p.Difficulty,
			MaxTime:          maxTimeEcho,
		},
	}, nil
}

// matchIngredients checks the filter terms against the recipe's ingredient
// lines joined into one lowercase string, so a term can match inside any
// line. mode "all" requires every term; anything else requires at least one.
func matchIngredients(recipeIngredients, filter []string, mode string) bool {
	joined := strings.ToLower(strings.Join(recipeIngredients, " "))
	if mode == "all" {
		for _, term := range filter {
			if !strings.Contains(joined, strings.ToLower(term)) {
				return false
			}
		}
		return true
	}
	for _, term := range filter {
		if strings.Contains(joined, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// GetRecipeParams identifies one recipe. The id accepts a number or a
// numeric string.
type GetRecipeParams struct {
	RecipeID any `json:"recipe_id"`
}

type recipeResult struct {
	Recipe model.Recipe `json:"recipe"`
}

// GetRecipe returns one recipe and bumps its view counter. The increment is
// persisted immediately.
func (s *Service) GetRecipe(ctx context.Context, p *GetRecipeParams) (any, error) {
	if !truthy(p.RecipeID) {
		return businessErr("Не указан ID рецепта"), nil
	}
	id, err := validate.ToInt(p.RecipeID)
	if err != nil {
		return businessErr("ID рецепта должен быть числом"), nil
	}

	recipe, found, err := s.store.UpdateRecipe(id, func(r *model.Recipe) {
		r.Views++
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return businessErr(fmt.Sprintf("Рецепт с ID %d не найден", id)), nil
	}
	return recipeResult{Recipe: recipe}, nil
}

// AddRecipeParams carries a full new recipe. Omitted cooking_time, category
// and difficulty get defaults; ingredients accepts a newline-separated string
// or a list of strings.
type AddRecipeParams struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Ingredients any     `json:"ingredients"`
	Steps       string  `json:"steps"`
	ImageURL    string  `json:"image_url"`
	CookingTime any     `json:"cooking_time"`
	Category    *string `json:"category"`
	Difficulty  *string `json:"difficulty"`
}

type addRecipeResult struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	RecipeID int          `json:"recipe_id"`
	Recipe   model.Recipe `json:"recipe"`
}

// AddRecipe validates and stores a new recipe with the next free id, authored
// by the calling administrator.
func (s *Service) AddRecipe(ctx context.Context, p *AddRecipeParams) (any, error) {
	cookingTime := p.CookingTime
	if cookingTime == nil {
		cookingTime = 30
	}
	category := "Основное блюдо"
	if p.Category != nil {
		category = *p.Category
	}
	difficulty := "Средняя"
	if p.Difficulty != nil {
		difficulty = *p.Difficulty
	}

	data := map[string]any{
		"title":        p.Title,
		"description":  p.Description,
		"ingredients":  p.Ingredients,
		"steps":        p.Steps,
		"image_url":    p.ImageURL,
		"cooking_time": cookingTime,
		"category":     category,
		"difficulty":   difficulty,
	}
	if errs := validate.RecipeData(data); len(errs) > 0 {
		return errorResult{Error: "Ошибки валидации", ValidationErrors: errs}, nil
	}

	ingredients := normalizeIngredients(p.Ingredients)
	minutes, err := validate.ToInt(cookingTime)
	if err != nil {
		return businessErr("Время приготовления должно быть числом"), nil
	}

	newID := s.store.MaxRecipeID() + 1

	imageURL := p.ImageURL
	if imageURL == "" {
		imageURL = fmt.Sprintf("https://source.unsplash.com/300x200/?food,recipe&sig=%d", newID)
	}

	author := "admin"
	if user, ok := s.auth.CurrentUser(ctx); ok {
		author = user.Username
	}

	recipe := model.Recipe{
		ID:          newID,
		Title:       p.Title,
		Description: p.Description,
		Ingredients: ingredients,
		Steps:       p.Steps,
		ImageURL:    imageURL,
		CookingTime: minutes,
		Category:    category,
		Difficulty:  difficulty,
		Author:      author,
		Rating:      4.0,
		Views:       0,
		CreatedAt:   time.Now().Format(model.DateTimeLayout),
	}
	if err := s.store.AppendRecipe(recipe); err != nil {
		return nil, err
	}

	return addRecipeResult{
		Success:  true,
		Message:  "Рецепт успешно добавлен",
		RecipeID: newID,
		Recipe:   recipe,
	}, nil
}

func normalizeIngredients(v any) []string {
	switch ing := v.(type) {
	case string:
		return validate.SplitIngredients(ing)
	case []any:
		out := make([]string, 0, len(ing))
		for _, item := range ing {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case []string:
		return ing
	default:
		return nil
	}
}

// UpdateRecipeParams carries a partial recipe update; only non-null fields
// are touched.
type UpdateRecipeParams struct {
	RecipeID    any     `json:"recipe_id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Ingredients any     `json:"ingredients"`
	Steps       *string `json:"steps"`
	ImageURL    *string `json:"image_url"`
	CookingTime any     `json:"cooking_time"`
	Category    *string `json:"category"`
	Difficulty  *string `json:"difficulty"`
	Rating      any     `json:"rating"`
}

type updateRecipeResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Recipe  model.Recipe `json:"recipe"`
}

// UpdateRecipe applies the supplied fields to an existing recipe after
// validating them, then persists.
func (s *Service) UpdateRecipe(ctx context.Context, p *UpdateRecipeParams) (any, error) {
	if !truthy(p.RecipeID) {
		return businessErr("Не указан ID рецепта"), nil
	}
	id, err := validate.ToInt(p.RecipeID)
	if err != nil {
		return businessErr("ID рецепта должен быть числом"), nil
	}

	data := map[string]any{}
	if p.Title != nil {
		data["title"] = *p.Title
	}
	if p.Description != nil {
		data["description"] = *p.Description
	}
	if p.Ingredients != nil {
		data["ingredients"] = p.Ingredients
	}
	if p.Steps != nil {
		data["steps"] = *p.Steps
	}
	if p.ImageURL != nil {
		data["image_url"] = *p.ImageURL
	}
	if p.CookingTime != nil {
		data["cooking_time"] = p.CookingTime
	}
	if p.Category != nil {
		data["category"] = *p.Category
	}
	if p.Difficulty != nil {
		data["difficulty"] = *p.Difficulty
	}
	if p.Rating != nil {
		data["rating"] = p.Rating
	}

	if errs := validate.RecipeData(data); len(errs) > 0 {
		return errorResult{Error: "Ошибки валидации", ValidationErrors: errs}, nil
	}

	updated, found, err := s.store.UpdateRecipe(id, func(r *model.Recipe) {
		if p.Title != nil {
			r.Title = *p.Title
		}
		if p.Description != nil {
			r.Description = *p.Description
		}
		if p.Ingredients != nil {
			r.Ingredients = normalizeIngredients(p.Ingredients)
		}
		if p.Steps != nil {
			r.Steps = *p.Steps
		}
		if p.ImageURL != nil {
			r.ImageURL = *p.ImageURL
		}
		if p.CookingTime != nil {
			// validated above, coercion cannot fail here
			minutes, _ := validate.ToInt(p.CookingTime)
			r.CookingTime = minutes
		}
		if p.Category != nil {
			r.Category = *p.Category
		}
		if p.Difficulty != nil {
			r.Difficulty = *p.Difficulty
		}
		if p.Rating != nil {
			rating, _ := validate.ToFloat(p.Rating)
			r.Rating = rating
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return businessErr(fmt.Sprintf("Рецепт с ID %d не найден", id)), nil
	}

	return updateRecipeResult{
		Success: true,
		Message: "Рецепт успешно обновлен",
		Recipe:  updated,
	}, nil
}

// DeleteRecipeParams identifies the recipe to remove.
type DeleteRecipeParams struct {
	RecipeID any `json:"recipe_id"`
}

type deleteRecipeResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	RemainingRecipes int    `json:"remaining_recipes"`
}

// DeleteRecipe removes one recipe by id.
func (s *Service) DeleteRecipe(ctx context.Context, p *DeleteRecipeParams) (any, error) {
	if !truthy(p.RecipeID) {
		return businessErr("Не указан ID рецепта"), nil
	}
	id, err := validate.ToInt(p.RecipeID)
	if err != nil {
		return businessErr("ID рецепта должен быть числом"), nil
	}

	deleted, err := s.store.DeleteRecipe(id)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return businessErr(fmt.Sprintf("Рецепт с ID %d не найден", id)), nil
	}
	return deleteRecipeResult{
		Success:          true,
		Message:          fmt.Sprintf("Рецепт с ID %d успешно удален", id),
		RemainingRecipes: s.store.RecipeCount(),
	}, nil
}

// EmptyParams is used by methods that take no arguments.
type EmptyParams struct{}

type categoriesResult struct {
	Categories      []string       `json:"categories"`
	Counts          map[string]int `json:"counts"`
	TotalCategories int            `json:"total_categories"`
}

// GetCategories returns the categories present in the catalog ordered by how
// many recipes each holds.
func (s *Service) GetCategories(ctx context.Context, _ *EmptyParams) (any, error) {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, recipe := range s.store.Recipes() {
		if _, seen := counts[recipe.Category]; !seen {
			order = append(order, recipe.Category)
		}
		counts[recipe.Category]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	return categoriesResult{
		Categories:      order,
		Counts:          counts,
		TotalCategories: len(counts),
	}, nil
}

type validationStats struct {
	RecipesWithNegativeTime int `json:"recipes_with_negative_time"`
	TotalValidRecipes       int `json:"total_valid_recipes"`
}

type recipesCountResult struct {
	Total            int             `json:"total"`
	Categories       map[string]int  `json:"categories"`
	Difficulties     map[string]int  `json:"difficulties"`
	TotalCookingTime int             `json:"total_cooking_time"`
	AvgCookingTime   float64         `json:"avg_cooking_time"`
	TotalViews       int             `json:"total_views"`
	AvgRating        float64         `json:"avg_rating"`
	ValidationStats  validationStats `json:"validation_stats"`
}

// GetRecipesCount returns aggregate catalog statistics.
func (s *Service) GetRecipesCount(ctx context.Context, _ *EmptyParams) (any, error) {
	recipes := s.store.Recipes()

	categories := make(map[string]int)
	difficulties := make(map[string]int)
	totalTime, totalViews, negativeTime := 0, 0, 0
	totalRating := 0.0

	for _, r := range recipes {
		categories[r.Category]++
		difficulties[r.Difficulty]++
		totalTime += r.CookingTime
		totalViews += r.Views
		totalRating += r.Rating
		if r.CookingTime <= 0 {
			negativeTime++
		}
	}

	avgTime, avgRating := 0.0, 0.0
	if len(recipes) > 0 {
		avgTime = roundTo(float64(totalTime)/float64(len(recipes)), 1)
		avgRating = roundTo(totalRating/float64(len(recipes)), 2)
	}

	return recipesCountResult{
		Total:            len(recipes),
		Categories:       categories,
		Difficulties:     difficulties,
		TotalCookingTime: totalTime,
		AvgCookingTime:   avgTime,
		TotalViews:       totalViews,
		AvgRating:        avgRating,
		ValidationStats: validationStats{
			RecipesWithNegativeTime: negativeTime,
			TotalValidRecipes:       len(recipes) - negativeTime,
		},
	}, nil
}

func roundTo(x float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(x*pow) / pow
}

// PopularParams bounds the number of recipes returned.
type PopularParams struct {
	Count any `json:"count"`
}

type popularResult struct {
	Recipes    []model.Recipe `json:"recipes"`
	Count      int            `json:"count"`
	TotalViews int            `json:"total_views"`
}

// GetPopularRecipes returns the most viewed recipes, rating as tiebreak.
// count defaults to 10 and is capped at 50.
func (s *Service) GetPopularRecipes(ctx context.Context, p *PopularParams) (any, error) {
	count := 10
	if p.Count != nil {
		var err error
		count, err = validate.ToInt(p.Count)
		if err != nil {
			return businessErr("Количество должно быть числом"), nil
		}
		if count <= 0 {
			return businessErr("Количество должно быть положительным числом"), nil
		}
		if count > 50 {
			count = 50
		}
	}

	recipes := s.store.Recipes()
	sort.SliceStable(recipes, func(i, j int) bool {
		if recipes[i].Views != recipes[j].Views {
			return recipes[i].Views > recipes[j].Views
		}
		return recipes[i].Rating > recipes[j].Rating
	})
	if count < len(recipes) {
		recipes = recipes[:count]
	}

	totalViews := 0
	for _, r := range recipes {
		totalViews += r.Views
	}

	return popularResult{
		Recipes:    recipes,
		Count:      len(recipes),
		TotalViews: totalViews,
	}, nil
}
