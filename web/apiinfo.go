package web

import (
	"net/http"
	"time"

	"github.com/Elizaveta2894/rgz-part2/endpoint"
	"github.com/Elizaveta2894/rgz-part2/model"
)

// Helper JSON routes used by the front-end scripts and smoke checks.

func (s *Server) apiTest(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	return &endpoint.JSONRenderer{Value: map[string]any{
		"status":  "OK",
		"message": "API работает корректно",
		"endpoints": map[string]string{
			"/api":      "JSON-RPC endpoint (POST)",
			"/api/test": "Тестовый endpoint (GET)",
		},
		"app_info": map[string]string{
			"name":    "Кулинарные рецепты",
			"version": "1.0.0",
		},
	}}, nil
}

func (s *Server) apiCurrentStats(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	st := s.currentStats()
	return &endpoint.JSONRenderer{Value: map[string]any{
		"success": true,
		"stats": map[string]int{
			"recipes":      st.RecipesCount,
			"users":        st.UsersCount,
			"cooking_time": st.TotalCookingTime,
			"categories":   st.CategoriesCount,
		},
		"updated_at": time.Now().Format(model.DateTimeLayout),
	}}, nil
}

func (s *Server) apiPing(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	return &endpoint.JSONRenderer{Value: map[string]string{
		"status":  "ok",
		"message": "API работает",
	}}, nil
}
