package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Elizaveta2894/rgz-part2/api"
	"github.com/Elizaveta2894/rgz-part2/auth"
	"github.com/Elizaveta2894/rgz-part2/jsonrpc"
	"github.com/Elizaveta2894/rgz-part2/metrics"
	"github.com/Elizaveta2894/rgz-part2/middleware"
	"github.com/Elizaveta2894/rgz-part2/store"
)

type webHarness struct {
	store   *store.FileStore
	handler http.Handler
}

func newWebHarness(t *testing.T) *webHarness {
	t.Helper()
	st, err := store.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	authSvc := auth.NewService(st)
	apiSvc := api.NewService(st, authSvc, nil)

	m := metrics.New()
	d := jsonrpc.NewDispatcher(authSvc, jsonrpc.WithRecorder(m))
	apiSvc.RegisterMethods(d)

	cookie, err := middleware.NewSecureCookie("session", "v1",
		map[string][]byte{"v1": bytes.Repeat([]byte{0x41}, middleware.KeySize)},
		middleware.WithSecure(false),
	)
	if err != nil {
		t.Fatal(err)
	}
	session := middleware.SessionProcessor(cookie, time.Hour)

	server, err := NewServer(st, authSvc, apiSvc, session, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	return &webHarness{store: st, handler: server.Router(d, m)}
}

func (h *webHarness) get(t *testing.T, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *webHarness) postForm(t *testing.T, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

// loginAs performs the real login form post and returns the session cookies.
func (h *webHarness) loginAs(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	rec := h.postForm(t, "/login", url.Values{
		"username": {username},
		"password": {password},
	}, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("login: got status %d: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login set no cookies")
	}
	return cookies
}

func TestIndexPage(t *testing.T) {
	h := newWebHarness(t)

	rec := h.get(t, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Кулинарные рецепты") {
		t.Error("page is missing the site chrome")
	}
	if !strings.Contains(body, "Войти") {
		t.Error("anonymous page should offer a login link")
	}
}

func TestLoginLogoutFlow(t *testing.T) {
	h := newWebHarness(t)
	cookies := h.loginAs(t, "admin", "admin123")

	rec := h.get(t, "/", cookies)
	body := rec.Body.String()
	if !strings.Contains(body, "admin") {
		t.Error("logged-in page should show the username")
	}
	if !strings.Contains(body, "Вы успешно вошли в систему!") {
		t.Error("login flash missing")
	}

	// logout redirects home and drops the identity
	rec = h.get(t, "/logout", cookies)
	if rec.Code != http.StatusFound {
		t.Fatalf("logout: got status %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newWebHarness(t)

	rec := h.postForm(t, "/login", url.Values{
		"username": {"admin"},
		"password": {"wrongpass"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Неверное имя пользователя или пароль") {
		t.Error("expected the bad-credentials flash")
	}
}

func TestRegisterFlow(t *testing.T) {
	h := newWebHarness(t)

	rec := h.postForm(t, "/register", url.Values{
		"username":         {"newuser"},
		"password":         {"secret123"},
		"confirm_password": {"secret123"},
		"email":            {"new@example.com"},
	}, nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("got status %d: %s", rec.Code, rec.Body.String())
	}
	if _, found := h.store.UserByUsername("newuser"); !found {
		t.Error("account not created")
	}

	// mismatched confirmation re-renders the form
	rec = h.postForm(t, "/register", url.Values{
		"username":         {"another"},
		"password":         {"secret123"},
		"confirm_password": {"different"},
	}, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Пароли не совпадают") {
		t.Errorf("got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminPanelAccess(t *testing.T) {
	h := newWebHarness(t)

	// anonymous → login redirect
	rec := h.get(t, "/admin", nil)
	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), "/login") {
		t.Errorf("got %d → %q", rec.Code, rec.Header().Get("Location"))
	}

	// regular user → home redirect
	userCookies := h.loginAs(t, "user", "user123")
	rec = h.get(t, "/admin", userCookies)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Errorf("got %d → %q", rec.Code, rec.Header().Get("Location"))
	}

	// admin sees the panel
	adminCookies := h.loginAs(t, "admin", "admin123")
	rec = h.get(t, "/admin", adminCookies)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Админ-панель") {
		t.Errorf("got %d", rec.Code)
	}
}

func TestRecipeDetailIncrementsViews(t *testing.T) {
	h := newWebHarness(t)
	before, _ := h.store.RecipeByID(1)

	rec := h.get(t, "/recipe/1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), before.Title) {
		t.Error("page is missing the recipe title")
	}

	after, _ := h.store.RecipeByID(1)
	if after.Views != before.Views+1 {
		t.Errorf("views = %d, want %d", after.Views, before.Views+1)
	}
}

func TestRecipeDetailNotFound(t *testing.T) {
	h := newWebHarness(t)

	rec := h.get(t, "/recipe/99999", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Errorf("got %d → %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestCreateRecipeThroughForm(t *testing.T) {
	h := newWebHarness(t)
	cookies := h.loginAs(t, "admin", "admin123")

	rec := h.postForm(t, "/admin/create-recipe", url.Values{
		"title":        {"Рецепт из формы"},
		"description":  {"Описание"},
		"ingredients":  {"Мука - 200 г\nСоль - по вкусу"},
		"steps":        {"Шаг 1: Смешайте все ингредиенты."},
		"cooking_time": {"25"},
		"category":     {"Суп"},
		"difficulty":   {"Легкая"},
	}, cookies)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/admin" {
		t.Fatalf("got %d → %q: %s", rec.Code, rec.Header().Get("Location"), rec.Body.String())
	}

	created, found := h.store.RecipeByID(101)
	if !found {
		t.Fatal("recipe not created")
	}
	if created.Title != "Рецепт из формы" || created.CookingTime != 25 || created.Author != "admin" {
		t.Errorf("got %+v", created)
	}
}

func TestCreateRecipeValidationRerenders(t *testing.T) {
	h := newWebHarness(t)
	cookies := h.loginAs(t, "admin", "admin123")

	rec := h.postForm(t, "/admin/create-recipe", url.Values{
		"title":      {"аб"},
		"category":   {"Суп"},
		"difficulty": {"Легкая"},
	}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Название рецепта должно быть не менее 3 символов") {
		t.Error("validation flash missing")
	}
	if h.store.RecipeCount() != 100 {
		t.Error("invalid recipe must not be stored")
	}
}

func TestAPIMountedOnRouter(t *testing.T) {
	h := newWebHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api",
		strings.NewReader(`{"jsonrpc":"2.0","method":"get_recipes_count","id":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	result := resp["result"].(map[string]any)
	if result["total"].(float64) != 100 {
		t.Errorf("total = %v", result["total"])
	}
}

func TestAPISessionSharedWithPages(t *testing.T) {
	h := newWebHarness(t)
	cookies := h.loginAs(t, "admin", "admin123")

	req := httptest.NewRequest(http.MethodPost, "/api",
		strings.NewReader(`{"jsonrpc":"2.0","method":"get_user_info","id":1}`))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	result := resp["result"].(map[string]any)
	if result["authenticated"] != true {
		t.Errorf("the form login session should authenticate RPC calls: %v", result)
	}
}

func TestHelperJSONRoutes(t *testing.T) {
	h := newWebHarness(t)

	rec := h.get(t, "/api/ping", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("ping: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.get(t, "/api/current_stats", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("current_stats: %d %s", rec.Code, rec.Body.String())
	}

	rec = h.get(t, "/api/test", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "API работает корректно") {
		t.Errorf("test: %d %s", rec.Code, rec.Body.String())
	}
}

func TestStaticAndMetrics(t *testing.T) {
	h := newWebHarness(t)

	rec := h.get(t, "/static/style.css", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("static: got %d", rec.Code)
	}

	rec = h.get(t, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("metrics: got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := newWebHarness(t)

	rec := h.get(t, "/", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestAllRecipesPagination(t *testing.T) {
	h := newWebHarness(t)

	rec := h.get(t, "/recipes?page=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	// out-of-range pages clamp instead of failing
	rec = h.get(t, "/recipes?page=999", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d", rec.Code)
	}
}
