package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bookms/bookms-admin/internal/domain/access"
	domainauth "github.com/bookms/bookms-admin/internal/domain/auth"
	apperrors "github.com/bookms/bookms-admin/internal/errors"
	"github.com/bookms/bookms-admin/internal/http/validation"
	"github.com/bookms/bookms-admin/internal/service"
)

// Login form bounds. Passwords are capped at bcrypt's 72 byte input.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
	MaxEmailLength    = 254
)

// ssoCookieTTL bounds how long an SSO round trip may take.
const ssoCookieTTL = 10 * time.Minute

// SSOFlow begins and completes provider redirects.
type SSOFlow interface {
	Begin(ctx context.Context, provider string) (service.SSOStart, error)
	Complete(ctx context.Context, in service.CallbackInput) (service.SSOCredential, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	T   *TemplateRenderer
	SSO SSOFlow
	// Providers are the SSO buttons offered on the login page.
	Providers    []domainauth.Provider
	CookieDomain string
	// DemoAccounts lists sign-in hints shown on the login page in development.
	DemoAccounts []DemoAccount
	Logger       *slog.Logger
}

// DemoAccount is a development sign-in hint.
type DemoAccount struct {
	Email    string
	Password string
	Role     string
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// ProviderLink is an SSO button on the login page.
type ProviderLink struct {
	Name  string
	Label string
	URL   string
}

// LoginView is the model of the login page.
type LoginView struct {
	Email        string
	From         string
	Providers    []ProviderLink
	DemoAccounts []DemoAccount
}

func (h *AuthHandlers) loginView(email, from string) LoginView {
	v := LoginView{Email: email, From: safeRedirectPath(from), DemoAccounts: h.DemoAccounts}
	for _, p := range h.Providers {
		link := "/auth/sso/" + string(p)
		if v.From != "" {
			link += "?" + url.Values{"from": {v.From}}.Encode()
		}
		v.Providers = append(v.Providers, ProviderLink{
			Name:  string(p),
			Label: "Continue with " + p.DisplayName(),
			URL:   link,
		})
	}
	return v
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, data PageData) {
	renderPage(h.T, w, r, data, h.logger())
}

func loginPageData(r *http.Request, view LoginView) PageData {
	data := newPageData(r, PageMeta{Title: "Sign in - BookMS", PageTitle: "Sign in", CurrentPage: PageLogin})
	data.Data = view
	return data
}

// LoginPage renders the sign-in form.
// GET /login?from=<path>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginPageData(r, h.loginView("", r.URL.Query().Get("from"))))
}

func validateLogin(email, password string) map[string]string {
	fv := validation.New().
		Validate("email", email,
			validation.Required("Email"), validation.MaxLength("Email", MaxEmailLength), validation.Email()).
		Validate("password", password,
			validation.Required("Password"),
			validation.MinLength("Password", MinPasswordLength),
			validation.MaxLength("Password", MaxPasswordLength))
	if fv.Valid() {
		return nil
	}
	return fv.Errors()
}

// Login handles the sign-in form.
// POST /login (email, password, from).
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	from := r.PostFormValue("from")

	data := loginPageData(r, h.loginView(email, from))
	if errs := validateLogin(email, password); errs != nil {
		data.Errors = errs
		data.Status = http.StatusUnprocessableEntity
		h.renderLogin(w, r, data)
		return
	}

	ctrl, ok := ControllerFromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	id, err := ctrl.Login(r.Context(), email, password)
	if err != nil {
		h.loginFailed(w, r, data, err)
		return
	}

	h.logger().InfoContext(r.Context(), "signed in",
		slog.String("identity_id", id.ID),
		slog.String("provider", string(id.Provider)))
	SetToast(w, Toast{Variant: "success", Title: "Welcome back!", Message: "Signed in as " + id.Name})
	redirect(w, r, postLoginPath(from))
}

func (h *AuthHandlers) loginFailed(w http.ResponseWriter, r *http.Request, data PageData, err error) {
	status, _ := statusForError(err)
	msg := apperrors.UserMessage(err, "Something went wrong")
	if status == http.StatusInternalServerError {
		h.logger().ErrorContext(r.Context(), "sign in failed", slog.Any("error", err))
		msg = "Something went wrong"
	}
	SetToast(w, Toast{Variant: "error", Title: "Sign in failed", Message: msg})
	data.Error = msg
	data.Status = status
	h.renderLogin(w, r, data)
}

// BeginSSO redirects to the provider's authorization page.
// GET /auth/sso/{provider}?from=<path>.
func (h *AuthHandlers) BeginSSO(w http.ResponseWriter, r *http.Request) {
	if h.SSO == nil {
		h.NotFound(w, r)
		return
	}
	start, err := h.SSO.Begin(r.Context(), r.PathValue("provider"))
	if err != nil {
		if apperrors.IsValidation(err) {
			h.NotFound(w, r)
			return
		}
		h.ssoFailed(w, r, err)
		return
	}
	h.setCookie(w, r, ssoStateCookie, start.State)
	h.setCookie(w, r, ssoNonceCookie, start.Nonce)
	if from := safeRedirectPath(r.URL.Query().Get("from")); from != "" {
		h.setCookie(w, r, ssoFromCookie, from)
	}
	redirect(w, r, start.AuthURL)
}

// SSOCallback completes the provider redirect and establishes the session.
// GET /auth/sso/{provider}/callback?code=&state=.
func (h *AuthHandlers) SSOCallback(w http.ResponseWriter, r *http.Request) {
	if h.SSO == nil {
		h.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	in := service.CallbackInput{
		Provider:      r.PathValue("provider"),
		Code:          q.Get("code"),
		State:         q.Get("state"),
		ExpectedState: cookieValue(r, ssoStateCookie),
		Nonce:         cookieValue(r, ssoNonceCookie),
		Error:         q.Get("error"),
	}
	from := cookieValue(r, ssoFromCookie)
	h.clearCookie(w, r, ssoStateCookie)
	h.clearCookie(w, r, ssoNonceCookie)
	h.clearCookie(w, r, ssoFromCookie)

	cred, err := h.SSO.Complete(r.Context(), in)
	if err != nil {
		h.ssoFailed(w, r, err)
		return
	}
	ctrl, ok := ControllerFromContext(r.Context())
	if !ok {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	id, err := ctrl.LoginWithSSO(r.Context(), cred)
	if err != nil {
		h.ssoFailed(w, r, err)
		return
	}
	h.logger().InfoContext(r.Context(), "signed in",
		slog.String("identity_id", id.ID),
		slog.String("provider", string(id.Provider)))
	http.Redirect(w, r, postLoginPath(from), http.StatusSeeOther)
}

func (h *AuthHandlers) ssoFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().WarnContext(r.Context(), "single sign-on failed", slog.Any("error", err))
	data := loginPageData(r, h.loginView("", ""))
	if !apperrors.IsSSOExchangeFailed(err) {
		err = apperrors.SSOExchangeFailed(err)
	}
	h.loginFailed(w, r, data, err)
}

// Logout ends the session and returns to the login page.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if ctrl, ok := ControllerFromContext(r.Context()); ok {
		if err := ctrl.Logout(r.Context()); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", slog.Any("error", err))
		}
	}
	redirect(w, r, access.LoginPath)
}

// NotFound renders the 404 page using the login handler's renderer.
func (h *AuthHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	(&UIHandlers{T: h.T, Logger: h.Logger}).NotFound(w, r)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Status        string               `json:"status"`
	Authenticated bool                 `json:"authenticated"`
	User          *domainauth.Identity `json:"user,omitempty"`
	Nav           []access.NavEntry    `json:"nav"`
	CSRFToken     string               `json:"csrfToken"`
}

func newSessionResponse(r *http.Request, s domainauth.Session) sessionResponse {
	resp := sessionResponse{
		Status:        s.Status.String(),
		Authenticated: s.Authenticated(),
		User:          s.Identity,
		Nav:           []access.NavEntry{},
		CSRFToken:     GetCSRFToken(r),
	}
	for e := range access.VisibleEntries(s, access.NavEntries()) {
		resp.Nav = append(resp.Nav, e)
	}
	return resp
}

// APISession returns the session snapshot with the navigation it may see.
// GET /api/session.
func (h *AuthHandlers) APISession(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, newSessionResponse(r, SessionFromContext(r.Context())))
}

// APILogin authenticates with email and password.
// POST /api/login.
func (h *AuthHandlers) APILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if errs := validateLogin(req.Email, req.Password); errs != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: string(apperrors.ErrCodeValidation),
			Err:     errors.New("invalid login request"),
			Fields:  errs,
		})
		return
	}
	ctrl, ok := ControllerFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("session unavailable"))
		return
	}
	if _, err := ctrl.Login(r.Context(), req.Email, req.Password); err != nil {
		if status, _ := statusForError(err); status == http.StatusInternalServerError {
			h.logger().ErrorContext(r.Context(), "api sign in failed", slog.Any("error", err))
		}
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newSessionResponse(r, ctrl.Snapshot()))
}

// APILogout ends the session.
// POST /api/logout.
func (h *AuthHandlers) APILogout(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := ControllerFromContext(r.Context())
	if ok {
		if err := ctrl.Logout(r.Context()); err != nil {
			h.logger().WarnContext(r.Context(), "api logout failed", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func cookieValue(r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil {
		return c.Value
	}
	return ""
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ssoCookieTTL.Seconds()),
	})
}

// clearCookie mirrors the attributes used by setCookie so browsers drop it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/auth/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
	})
}
