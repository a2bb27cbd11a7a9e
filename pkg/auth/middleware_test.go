package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/libraryhub/libraryhub/pkg/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestContext(method string, setup func(req *http.Request)) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	if setup != nil {
		setup(req)
	}
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

func TestMiddlewareAuthenticate(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db, "test-secret", 0)
	m := NewMiddleware(svc)

	user := createUser(t, db, "reader@example.com", "securepassword123", false, true)
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	t.Run("accepts a bearer token", func(t *testing.T) {
		c, rr := newRequestContext(http.MethodGet, func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		})
		require.NoError(t, m.Authenticate(okHandler)(c))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, user.ID, GetUserFromContext(c).ID)
	})

	t.Run("accepts the session cookie", func(t *testing.T) {
		c, _ := newRequestContext(http.MethodGet, func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
		})
		require.NoError(t, m.Authenticate(okHandler)(c))
		id, ok := GetUserIDFromContext(c)
		assert.True(t, ok)
		assert.Equal(t, user.ID, id)
	})

	t.Run("rejects missing tokens", func(t *testing.T) {
		c, _ := newRequestContext(http.MethodGet, nil)
		err := m.Authenticate(okHandler)(c)
		var errResp *errcodes.Error
		require.ErrorAs(t, err, &errResp)
		assert.Equal(t, http.StatusUnauthorized, errResp.HTTPCode)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		other, err := NewService(db, "other-secret", 0).GenerateToken(user)
		require.NoError(t, err)
		c, _ := newRequestContext(http.MethodGet, func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+other)
		})
		err = m.Authenticate(okHandler)(c)
		var errResp *errcodes.Error
		require.ErrorAs(t, err, &errResp)
		assert.Equal(t, "Invalid or expired token", errResp.Message)
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		expired, err := NewService(db, "test-secret", time.Nanosecond).GenerateToken(user)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		c, _ := newRequestContext(http.MethodGet, func(req *http.Request) {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+expired)
		})
		err = m.Authenticate(okHandler)(c)
		require.Error(t, err)
	})
}

func TestMiddlewareAuthenticate_RejectsDeactivatedUser(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	svc := NewService(db, "test-secret", 0)
	m := NewMiddleware(svc)

	user := createUser(t, db, "reader@example.com", "securepassword123", false, true)
	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	_, err = db.NewUpdate().Model((*models.User)(nil)).Set("is_active = ?", false).Where("id = ?", user.ID).Exec(t.Context())
	require.NoError(t, err)

	c, _ := newRequestContext(http.MethodGet, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	})
	err = m.Authenticate(okHandler)(c)
	var errResp *errcodes.Error
	require.ErrorAs(t, err, &errResp)
	assert.Equal(t, http.StatusUnauthorized, errResp.HTTPCode)

	// The optional variant lets the request through anonymously.
	c, rr := newRequestContext(http.MethodGet, func(req *http.Request) {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	})
	require.NoError(t, m.AuthenticateOptional(okHandler)(c))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Nil(t, GetUserFromContext(c))
}

func TestMiddlewareRequirePermission(t *testing.T) {
	t.Parallel()
	m := NewMiddleware(nil)
	member := &models.User{ID: 1, IsActive: true}
	staff := &models.User{ID: 2, IsActive: true, IsStaff: true}

	cases := []struct {
		name      string
		user      *models.User
		method    string
		resource  string
		operation string
		code      int
	}{
		{"anonymous reads books", nil, http.MethodGet, policy.ResourceBooks, policy.OperationRead, http.StatusNoContent},
		{"anonymous creates a book", nil, http.MethodPost, policy.ResourceBooks, policy.OperationCreate, http.StatusUnauthorized},
		{"member creates a book", member, http.MethodPost, policy.ResourceBooks, policy.OperationCreate, http.StatusForbidden},
		{"staff creates a book", staff, http.MethodPost, policy.ResourceBooks, policy.OperationCreate, http.StatusNoContent},
		{"member returns a borrowing", member, http.MethodPatch, policy.ResourceBorrowings, policy.OperationReturn, http.StatusForbidden},
		{"staff deletes a borrowing", staff, http.MethodDelete, policy.ResourceBorrowings, policy.OperationDelete, http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rr := newRequestContext(tc.method, nil)
			if tc.user != nil {
				c.Set("user", tc.user)
			}
			err := m.RequirePermission(tc.resource, tc.operation)(okHandler)(c)
			if tc.code == http.StatusNoContent {
				require.NoError(t, err)
				assert.Equal(t, tc.code, rr.Code)
				return
			}
			var errResp *errcodes.Error
			require.ErrorAs(t, err, &errResp)
			assert.Equal(t, tc.code, errResp.HTTPCode)
		})
	}
}
