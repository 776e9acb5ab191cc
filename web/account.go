package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Elizaveta2894/rgz-part2/api"
	"github.com/Elizaveta2894/rgz-part2/auth"
	"github.com/Elizaveta2894/rgz-part2/endpoint"
	"github.com/Elizaveta2894/rgz-part2/validate"
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	if s.auth.Authenticated(r.Context()) {
		return redirect("/"), nil
	}
	return s.render(r, "login.html", "Вход", nil), nil
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `query:"next"`
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request, f loginForm) (endpoint.Renderer, error) {
	if s.auth.Authenticated(r.Context()) {
		return redirect("/"), nil
	}

	username := strings.TrimSpace(f.Username)
	password := strings.TrimSpace(f.Password)

	if msg := validate.Username(username); msg != "" {
		flash(r, "danger", "Ошибка валидации логина: "+msg)
		return s.render(r, "login.html", "Вход", nil), nil
	}
	if msg := validate.Password(password); msg != "" {
		flash(r, "danger", "Ошибка валидации пароля: "+msg)
		return s.render(r, "login.html", "Вход", nil), nil
	}

	user, ok := s.auth.Authenticate(username, password)
	if !ok {
		flash(r, "danger", "Неверное имя пользователя или пароль")
		return s.render(r, "login.html", "Вход", nil), nil
	}

	s.auth.Login(r.Context(), user)
	flash(r, "success", "Вы успешно вошли в систему!")

	if next := safeNext(f.Next); next != "" {
		return redirect(next), nil
	}
	return redirect("/"), nil
}

// safeNext only allows same-site relative targets for the post-login
// redirect.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return ""
}

func (s *Server) registerPage(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	if s.auth.Authenticated(r.Context()) {
		return redirect("/"), nil
	}
	return s.render(r, "register.html", "Регистрация", nil), nil
}

type registerForm struct {
	Username        string `form:"username"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirm_password"`
	Email           string `form:"email"`
}

func (s *Server) registerSubmit(w http.ResponseWriter, r *http.Request, f registerForm) (endpoint.Renderer, error) {
	if s.auth.Authenticated(r.Context()) {
		return redirect("/"), nil
	}

	username := strings.TrimSpace(f.Username)
	password := strings.TrimSpace(f.Password)
	confirm := strings.TrimSpace(f.ConfirmPassword)
	email := strings.TrimSpace(f.Email)

	if msg := validate.Username(username); msg != "" {
		flash(r, "danger", "Ошибка валидации логина: "+msg)
		return s.render(r, "register.html", "Регистрация", nil), nil
	}
	if msg := validate.Password(password); msg != "" {
		flash(r, "danger", "Ошибка валидации пароля: "+msg)
		return s.render(r, "register.html", "Регистрация", nil), nil
	}
	if password != confirm {
		flash(r, "danger", "Пароли не совпадают")
		return s.render(r, "register.html", "Регистрация", nil), nil
	}
	if msg := validate.Email(email); msg != "" {
		flash(r, "danger", "Ошибка валидации email: "+msg)
		return s.render(r, "register.html", "Регистрация", nil), nil
	}

	user, err := s.auth.Register(username, password, email)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			flash(r, "danger", err.Error())
			return s.render(r, "register.html", "Регистрация", nil), nil
		}
		return nil, err
	}

	s.auth.Login(r.Context(), user)
	flash(r, "success", "Регистрация успешна! Добро пожаловать!")
	return redirect("/"), nil
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	s.auth.Logout(r.Context())
	flash(r, "info", "Вы вышли из системы")
	return redirect("/"), nil
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request, _ noParams) (endpoint.Renderer, error) {
	if deny := s.requireLogin(r); deny != nil {
		return deny, nil
	}

	user, _ := s.auth.CurrentUser(r.Context())
	if user.IsAdmin && user.Username == "admin" {
		flash(r, "danger", "Нельзя удалить администратора системы")
		return redirect("/"), nil
	}

	// same operation the delete_account RPC method performs
	result, err := s.api.DeleteAccount(r.Context(), &api.EmptyParams{})
	if err != nil || result == nil {
		flash(r, "danger", "Ошибка при удалении аккаунта")
		return redirect("/"), nil
	}

	flash(r, "info", "Ваш аккаунт был успешно удален")
	return redirect("/"), nil
}
