package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/config"
	"github.com/libraryhub/libraryhub/pkg/database"
	"github.com/libraryhub/libraryhub/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := config.NewForTest()
	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	e, err := newEcho(cfg, db)
	require.NoError(t, err)
	return e
}

func serve(e *echo.Echo, method, target, payload, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestServer_PublicRoutes(t *testing.T) {
	e := newTestEcho(t)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/version", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/books", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/authors", "", "").Code)

	rr := serve(e, http.MethodGet, "/nowhere", "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Page not found.")
}

func TestServer_CatalogWritesNeedStaff(t *testing.T) {
	e := newTestEcho(t)

	login := func(email string, staff bool) string {
		payload := `{"email":"` + email + `","password":"password123","is_staff":` + map[bool]string{true: "true", false: "false"}[staff] + `}`
		require.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/test/users", payload, "").Code)

		rr := serve(e, http.MethodPost, "/auth/login", `{"email":"`+email+`","password":"password123"}`, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp.Token
	}
	member := login("reader@example.com", false)
	staff := login("librarian@example.com", true)

	author := `{"first_name":"Ursula","last_name":"Le Guin"}`
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodPost, "/authors", author, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/authors", author, member).Code)

	rr := serve(e, http.MethodPost, "/authors", author, staff)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	book := `{"title":"The Dispossessed","authors":[` + jsonInt(created.ID) + `],"cover":"Hard","inventory":1,"daily_fee":"0.99"}`
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodPost, "/books", book, member).Code)
	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/books", book, staff).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/borrow", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/borrow", "", member).Code)
}

func jsonInt(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}
