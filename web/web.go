// Package web serves the HTML pages of the recipe catalog and mounts the
// JSON-RPC endpoint.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Elizaveta2894/rgz-part2/api"
	"github.com/Elizaveta2894/rgz-part2/auth"
	"github.com/Elizaveta2894/rgz-part2/endpoint"
	"github.com/Elizaveta2894/rgz-part2/jsonrpc"
	"github.com/Elizaveta2894/rgz-part2/metrics"
	"github.com/Elizaveta2894/rgz-part2/middleware"
	"github.com/Elizaveta2894/rgz-part2/model"
	"github.com/Elizaveta2894/rgz-part2/store"
)

//go:embed templates static
var assets embed.FS

// pageFiles lists every page template; each is parsed together with the
// layout into its own template set.
var pageFiles = []string{
	"index.html",
	"search.html",
	"all_recipes.html",
	"recipe_detail.html",
	"login.html",
	"register.html",
	"admin.html",
	"create_recipe.html",
	"edit_recipe.html",
	"test_api.html",
}

// Server renders the HTML side of the catalog.
type Server struct {
	store     *store.FileStore
	auth      *auth.Service
	api       *api.Service
	log       *zap.Logger
	session   endpoint.Processor
	templates map[string]*template.Template
}

// NewServer builds the web server. session is the session processor shared
// with the RPC endpoint.
func NewServer(st *store.FileStore, authSvc *auth.Service, apiSvc *api.Service, session endpoint.Processor, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	templates := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		t, err := template.New("layout.html").Funcs(template.FuncMap{
			"add": func(a, b int) int { return a + b },
			"sub": func(a, b int) int { return a - b },
			"joinLines": func(items []string) string {
				return strings.Join(items, "\n")
			},
		}).ParseFS(assets, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, err
		}
		templates[page] = t
	}

	return &Server{
		store:     st,
		auth:      authSvc,
		api:       apiSvc,
		log:       log,
		session:   session,
		templates: templates,
	}, nil
}

// Router assembles the full HTTP surface: pages, the JSON-RPC endpoint, the
// helper JSON routes, static files and metrics.
func (s *Server) Router(dispatcher *jsonrpc.Dispatcher, m *metrics.Metrics) chi.Router {
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Use(middleware.Logging(s.log))
	r.Use(middleware.SecurityHeaders)

	// HTML pages
	r.Get("/", endpoint.HandleFunc(s.indexPage, s.session))
	r.Get("/search", endpoint.HandleFunc(s.searchPage, s.session))
	r.Get("/recipes", endpoint.HandleFunc(s.allRecipesPage, s.session))
	r.Get("/recipe/{recipeID}", endpoint.HandleFunc(s.recipeDetailPage, s.session))
	r.Get("/login", endpoint.HandleFunc(s.loginPage, s.session))
	r.Post("/login", endpoint.HandleFunc(s.loginSubmit, s.session))
	r.Get("/register", endpoint.HandleFunc(s.registerPage, s.session))
	r.Post("/register", endpoint.HandleFunc(s.registerSubmit, s.session))
	r.Get("/logout", endpoint.HandleFunc(s.logout, s.session))
	r.Post("/delete-account", endpoint.HandleFunc(s.deleteAccount, s.session))
	r.Get("/test-api", endpoint.HandleFunc(s.testAPIPage, s.session))

	// admin pages
	r.Get("/admin", endpoint.HandleFunc(s.adminPanel, s.session))
	r.Get("/admin/create-recipe", endpoint.HandleFunc(s.createRecipePage, s.session))
	r.Post("/admin/create-recipe", endpoint.HandleFunc(s.createRecipeSubmit, s.session))
	r.Get("/admin/edit-recipe/{recipeID}", endpoint.HandleFunc(s.editRecipePage, s.session))
	r.Post("/admin/edit-recipe/{recipeID}", endpoint.HandleFunc(s.editRecipeSubmit, s.session))
	r.Post("/admin/delete-recipe/{recipeID}", endpoint.HandleFunc(s.deleteRecipe, s.session))
	r.Post("/admin/fix-recipe/{recipeID}", endpoint.HandleFunc(s.fixRecipe, s.session))

	// JSON-RPC endpoint, with the session available for authorization
	r.Method(http.MethodPost, "/api", endpoint.Middleware(s.session)(dispatcher.Endpoint()))

	// helper JSON routes
	r.Get("/api/test", endpoint.HandleFunc(s.apiTest))
	r.Get("/api/current_stats", endpoint.HandleFunc(s.apiCurrentStats))
	r.Get("/api/ping", endpoint.HandleFunc(s.apiPing))

	// static assets and metrics
	staticFS, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	return r
}

// stats is the catalog summary injected into every page.
type stats struct {
	RecipesCount     int
	UsersCount       int
	TotalCookingTime int
	CategoriesCount  int
}

func (s *Server) currentStats() stats {
	recipes := s.store.Recipes()
	categories := make(map[string]struct{})
	totalTime := 0
	for _, r := range recipes {
		categories[r.Category] = struct{}{}
		totalTime += r.CookingTime
	}
	return stats{
		RecipesCount:     len(recipes),
		UsersCount:       len(s.store.Users()),
		TotalCookingTime: totalTime,
		CategoriesCount:  len(categories),
	}
}

// view is the data passed to every template: common chrome plus the
// page-specific Data.
type view struct {
	Title   string
	User    *model.SafeUser
	IsAdmin bool
	Flashes []middleware.FlashMessage
	Stats   stats
	Data    any
}

// render builds the common view around data and renders the page template.
func (s *Server) render(r *http.Request, page, title string, data any) endpoint.Renderer {
	v := view{
		Title: title,
		Stats: s.currentStats(),
		Data:  data,
	}
	if user, ok := s.auth.CurrentUser(r.Context()); ok {
		safe := user.Safe()
		v.User = &safe
		v.IsAdmin = user.IsAdmin
	}
	if sess := middleware.ContextSession(r.Context()); sess != nil {
		v.Flashes = sess.Flashes()
	}
	return &endpoint.HTMLTemplateRenderer{Template: s.templates[page], Values: v}
}

func flash(r *http.Request, category, message string) {
	if sess := middleware.ContextSession(r.Context()); sess != nil {
		sess.Flash(category, message)
	}
}

func redirect(url string) endpoint.Renderer {
	return &endpoint.RedirectRenderer{URL: url}
}

// requireLogin returns a redirect to the login page for anonymous requests,
// or nil when the caller is authenticated.
func (s *Server) requireLogin(r *http.Request) endpoint.Renderer {
	if s.auth.Authenticated(r.Context()) {
		return nil
	}
	flash(r, "danger", "Требуется авторизация")
	return redirect("/login?next=" + r.URL.Path)
}

// requireAdmin returns a redirect for anonymous or non-admin requests.
func (s *Server) requireAdmin(r *http.Request) endpoint.Renderer {
	if deny := s.requireLogin(r); deny != nil {
		return deny
	}
	if !s.auth.Admin(r.Context()) {
		flash(r, "danger", "Требуются права администратора")
		return redirect("/")
	}
	return nil
}
