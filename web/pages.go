package web

import (
	"net/http"
	"sort"

	"github.com/Elizaveta2894/rgz-part2/endpoint"
	"github.com/Elizaveta2894/rgz-part2/model"
)

type noParams struct{}

type indexData struct {
	Recent  []model.Recipe
	Popular []model.Recipe
}

func (s *Server) indexPage(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	recipes := s.store.Recipes()

	recent := recipes
	if len(recent) > 12 {
		recent = recent[:12]
	}

	popular := make([]model.Recipe, len(recipes))
	copy(popular, recipes)
	sort.SliceStable(popular, func(i, j int) bool {
		return popular[i].Views > popular[j].Views
	})
	if len(popular) > 6 {
		popular = popular[:6]
	}

	return s.render(r, "index.html", "Кулинарные рецепты", indexData{
		Recent:  recent,
		Popular: popular,
	}), nil
}

type searchPageData struct {
	Categories   []string
	Difficulties []string
}

func (s *Server) searchPage(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	var categories, difficulties []string
	seenCat := make(map[string]struct{})
	seenDiff := make(map[string]struct{})
	for _, recipe := range s.store.Recipes() {
		if _, ok := seenCat[recipe.Category]; !ok {
			seenCat[recipe.Category] = struct{}{}
			categories = append(categories, recipe.Category)
		}
		if _, ok := seenDiff[recipe.Difficulty]; !ok {
			seenDiff[recipe.Difficulty] = struct{}{}
			difficulties = append(difficulties, recipe.Difficulty)
		}
	}

	return s.render(r, "search.html", "Поиск рецептов", searchPageData{
		Categories:   categories,
		Difficulties: difficulties,
	}), nil
}

type pageParams struct {
	Page int `query:"page"`
}

type allRecipesData struct {
	Recipes    []model.Recipe
	Page       int
	TotalPages int
}

const recipesPerPage = 12

func (s *Server) allRecipesPage(w http.ResponseWriter, r *http.Request, p pageParams) (endpoint.Renderer, error) {
	page := p.Page
	if page < 1 {
		page = 1
	}

	recipes := s.store.Recipes()
	start := (page - 1) * recipesPerPage
	end := start + recipesPerPage
	if start > len(recipes) {
		start = len(recipes)
	}
	if end > len(recipes) {
		end = len(recipes)
	}

	return s.render(r, "all_recipes.html", "Все рецепты", allRecipesData{
		Recipes:    recipes[start:end],
		Page:       page,
		TotalPages: (len(recipes) + recipesPerPage - 1) / recipesPerPage,
	}), nil
}

type recipeIDParams struct {
	RecipeID int `path:"recipeID"`
}

type recipeDetailData struct {
	Recipe model.Recipe
}

func (s *Server) recipeDetailPage(w http.ResponseWriter, r *http.Request, p recipeIDParams) (endpoint.Renderer, error) {
	recipe, found, err := s.store.UpdateRecipe(p.RecipeID, func(rec *model.Recipe) {
		rec.Views++
	})
	if err != nil {
		return nil, err
	}
	if !found {
		flash(r, "danger", "Рецепт не найден")
		return redirect("/"), nil
	}
	if recipe.CookingTime <= 0 {
		flash(r, "warning", "Внимание: время приготовления указано некорректно")
	}

	return s.render(r, "recipe_detail.html", recipe.Title, recipeDetailData{Recipe: recipe}), nil
}

func (s *Server) testAPIPage(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	return s.render(r, "test_api.html", "Тестирование API", nil), nil
}
