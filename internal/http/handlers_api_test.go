package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionJSON struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
	User          *struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Nav []struct {
		Path string `json:"path"`
	} `json:"nav"`
	CSRFToken string `json:"csrfToken"`
}

func decodeSession(t *testing.T, body string) sessionJSON {
	t.Helper()
	var s sessionJSON
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	return s
}

func TestAPI_SessionAnonymous(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	res := b.get("/api/session")
	require.Equal(t, http.StatusOK, res.Status)
	s := decodeSession(t, res.Body)
	assert.Equal(t, "resolved", s.Status)
	assert.False(t, s.Authenticated)
	assert.Nil(t, s.User)
	assert.NotEmpty(t, s.CSRFToken)

	var paths []string
	for _, e := range s.Nav {
		paths = append(paths, e.Path)
	}
	assert.Equal(t, []string{"/dashboard/books", "/dashboard/categories", "/dashboard/authors"}, paths)
}

func TestAPI_LoginSessionLogout(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	res := b.postJSON("/api/login", `{"email":"ADMIN@bookms.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.Status, res.Body)
	s := decodeSession(t, res.Body)
	assert.True(t, s.Authenticated)
	require.NotNil(t, s.User)
	assert.Equal(t, "SuperAdmin", s.User.Role)
	assert.Len(t, s.Nav, 5)

	res = b.get("/api/books?term=the")
	require.Equal(t, http.StatusOK, res.Status)
	var books struct {
		Signature string `json:"signature"`
		Page      struct {
			TotalCount int `json:"totalCount"`
			Page       int `json:"page"`
			Records    []struct {
				Title string `json:"title"`
			} `json:"records"`
		} `json:"page"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Body), &books))
	assert.Equal(t, 2, books.Page.TotalCount)
	assert.Equal(t, 1, books.Page.Page)
	assert.NotEmpty(t, books.Signature)

	res = b.get("/api/books/facets")
	require.Equal(t, http.StatusOK, res.Status)
	assert.JSONEq(t, `{
		"categories":["Fiction","Technology","Classic Literature","Drama","Programming","Software Engineering"],
		"years":[2020,2008,1960,1925]
	}`, res.Body)

	res = b.postJSON("/api/logout", `{}`)
	assert.Equal(t, http.StatusNoContent, res.Status)
	assert.Equal(t, http.StatusUnauthorized, b.get("/api/books").Status)
}

func TestAPI_BooksRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	res := b.get("/api/books")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.JSONEq(t, `{"error":"authentication_required","message":"authentication required"}`, res.Body)
}

func TestAPI_BooksRejectsOverlongTerm(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)
	b.login("user@bookms.com")

	res := b.get("/api/books?term=" + url.QueryEscape(strings.Repeat("a", MaxSearchTermLength+1)))
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Contains(t, res.Body, `"error":"validation"`)

	res = b.get("/api/books?term=" + url.QueryEscape(strings.Repeat("a", MaxSearchTermLength)))
	assert.Equal(t, http.StatusOK, res.Status)
}

func TestAPI_LoginErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"invalid credentials", `{"email":"admin@bookms.com","password":"nottheone"}`, http.StatusUnauthorized, "invalid_credentials"},
		{"deactivated", `{"email":"former@bookms.com","password":"password123"}`, http.StatusForbidden, "account_disabled"},
		{"validation", `{"email":"","password":""}`, http.StatusBadRequest, "validation"},
		{"password too long", `{"email":"admin@bookms.com","password":"` + strings.Repeat("p", MaxPasswordLength+1) + `"}`, http.StatusBadRequest, "validation"},
		{"unknown field", `{"username":"x"}`, http.StatusBadRequest, "invalid_json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			b := app.browser(t)

			res := b.postJSON("/api/login", tt.body)
			assert.Equal(t, tt.status, res.Status)
			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal([]byte(res.Body), &body))
			assert.Equal(t, tt.code, body.Error)
		})
	}
}

func TestAPI_LoginRequiresCSRF(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	req, err := http.NewRequest(http.MethodPost, b.base+"/api/login", nil)
	require.NoError(t, err)
	res := b.do(req)
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.Contains(t, res.Body, "csrf_failed")
}

func TestAPI_LoginWhileAuthenticated(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	res := b.postJSON("/api/login", `{"email":"user@bookms.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.Status, res.Body)

	res = b.postJSON("/api/login", `{"email":"admin@bookms.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Contains(t, res.Body, "already_authenticated")

	s := decodeSession(t, b.get("/api/session").Body)
	require.NotNil(t, s.User)
	assert.Equal(t, "user@bookms.com", s.User.Email)
}
