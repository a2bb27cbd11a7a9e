package borrowings

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/libraryhub/libraryhub/pkg/auth"
	"github.com/libraryhub/libraryhub/pkg/binder"
	"github.com/libraryhub/libraryhub/pkg/config"
	"github.com/libraryhub/libraryhub/pkg/errcodes"
	"github.com/libraryhub/libraryhub/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testServer struct {
	e           *echo.Echo
	authService *auth.Service
}

func newTestServer(t *testing.T, db *bun.DB) *testServer {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	cfg := config.NewForTest()
	authService := auth.NewService(db, cfg.JWTSecret, time.Hour)
	authMiddleware := auth.NewMiddleware(authService)

	g := e.Group("/borrow", authMiddleware.AuthenticateOptional)
	RegisterRoutesWithGroup(g, db, cfg, authMiddleware)

	return &testServer{e: e, authService: authService}
}

func (s *testServer) do(t *testing.T, user *models.User, method, target, payload string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if user != nil {
		token, err := s.authService.GenerateToken(user)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.e.ServeHTTP(rr, req)
	return rr
}

type borrowingResponse struct {
	ID                 int     `json:"id"`
	BorrowDate         string  `json:"borrow_date"`
	ExpectedReturnDate string  `json:"expected_return_date"`
	ActualReturnDate   *string `json:"actual_return_date"`
	BookID             int     `json:"book_id"`
	UserID             int     `json:"user_id"`
	Book               *struct {
		ID        int    `json:"id"`
		Inventory int    `json:"inventory"`
		DailyFee  string `json:"daily_fee"`
	} `json:"book"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func today() models.Date {
	return models.Today(time.Now(), time.UTC)
}

func borrowPayload(bookID int, expected models.Date) string {
	return `{"book":` + strconv.Itoa(bookID) + `,"expected_return_date":"` + expected.String() + `"}`
}

func TestRoutes_BorrowReturnScenario(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := newTestServer(t, db)

	member := createUser(t, db, "reader@example.com", false)
	staff := createUser(t, db, "librarian@example.com", true)
	book := createBook(t, db, 3)

	rr := s.do(t, member, http.MethodPost, "/borrow", borrowPayload(book.ID, today().AddDays(7)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var first borrowingResponse
	decode(t, rr, &first)
	assert.Equal(t, today().String(), first.BorrowDate)
	assert.Equal(t, today().AddDays(7).String(), first.ExpectedReturnDate)
	assert.Nil(t, first.ActualReturnDate)
	assert.Equal(t, member.ID, first.UserID)
	require.NotNil(t, first.Book)
	assert.Equal(t, 2, first.Book.Inventory)

	rr = s.do(t, member, http.MethodPost, "/borrow", borrowPayload(book.ID, today().AddDays(1)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 1, inventoryOf(t, db, book.ID))

	returnURL := "/borrow/" + strconv.Itoa(first.ID) + "/return"

	// Members can't return books themselves.
	rr = s.do(t, member, http.MethodPatch, returnURL, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, 1, inventoryOf(t, db, book.ID))

	rr = s.do(t, staff, http.MethodPatch, returnURL, `{"actual_return_date":"`+today().String()+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var returned borrowingResponse
	decode(t, rr, &returned)
	require.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, today().String(), *returned.ActualReturnDate)
	assert.Equal(t, 2, inventoryOf(t, db, book.ID))

	rr = s.do(t, staff, http.MethodPatch, returnURL, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var errResp errorResponse
	decode(t, rr, &errResp)
	assert.Equal(t, "Borrowing has already been returned", errResp.Error.Message)
	assert.Equal(t, 2, inventoryOf(t, db, book.ID))
}

func TestRoutes_CreateValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := newTestServer(t, db)

	member := createUser(t, db, "reader@example.com", false)
	book := createBook(t, db, 1)
	empty := createBook(t, db, 0)

	rr := s.do(t, nil, http.MethodPost, "/borrow", borrowPayload(book.ID, today().AddDays(7)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	cases := map[string]string{
		"expected today":  borrowPayload(book.ID, today()),
		"expected past":   borrowPayload(book.ID, today().AddDays(-3)),
		"bad date":        `{"book":` + strconv.Itoa(book.ID) + `,"expected_return_date":"next week"}`,
		"impossible date": `{"book":` + strconv.Itoa(book.ID) + `,"expected_return_date":"2099-02-31"}`,
		"out of stock":    borrowPayload(empty.ID, today().AddDays(7)),
		"unknown book":    borrowPayload(9999, today().AddDays(7)),
		"missing book":    `{"expected_return_date":"` + today().AddDays(7).String() + `"}`,
	}
	for name, payload := range cases {
		rr := s.do(t, member, http.MethodPost, "/borrow", payload)
		assert.Equal(t, http.StatusBadRequest, rr.Code, name)
	}

	assert.Equal(t, 1, inventoryOf(t, db, book.ID))
	assert.Equal(t, 0, inventoryOf(t, db, empty.ID))
}

func TestRoutes_BorrowerIsAlwaysRequester(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := newTestServer(t, db)

	member := createUser(t, db, "reader@example.com", false)
	other := createUser(t, db, "other@example.com", false)
	book := createBook(t, db, 1)

	payload := `{"book":` + strconv.Itoa(book.ID) + `,"expected_return_date":"` + today().AddDays(2).String() + `","user":` + strconv.Itoa(other.ID) + `}`
	rr := s.do(t, member, http.MethodPost, "/borrow", payload)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, member, http.MethodPost, "/borrow", borrowPayload(book.ID, today().AddDays(2)))
	require.Equal(t, http.StatusCreated, rr.Code)
	var created borrowingResponse
	decode(t, rr, &created)
	assert.Equal(t, member.ID, created.UserID)
}

func TestRoutes_ListScoping(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := newTestServer(t, db)
	engine := newTestEngine(db)

	alice := createUser(t, db, "alice@example.com", false)
	bob := createUser(t, db, "bob@example.com", false)
	carol := createUser(t, db, "carol@example.com", false)
	staff := createUser(t, db, "librarian@example.com", true)
	book := createBook(t, db, 10)

	borrow := func(user *models.User) *models.Borrowing {
		b, err := engine.CreateBorrowing(t.Context(), circulationOptions(user.ID, book.ID))
		require.NoError(t, err)
		return b
	}
	a := borrow(alice)
	borrow(bob)
	borrow(carol)
	borrow(alice)
	_, err := engine.ReturnBorrowing(t.Context(), returnOptions(a.ID))
	require.NoError(t, err)

	type listResponse struct {
		Borrowings []borrowingResponse `json:"borrowings"`
		Total      int                 `json:"total"`
	}
	userIDs := func(resp listResponse) []int {
		ids := []int{}
		for _, b := range resp.Borrowings {
			ids = append(ids, b.UserID)
		}
		return ids
	}

	// Members only see their own, whatever they ask for.
	rr := s.do(t, alice, http.MethodGet, "/borrow?users="+strconv.Itoa(bob.ID), "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp listResponse
	decode(t, rr, &resp)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []int{alice.ID, alice.ID}, userIDs(resp))

	rr = s.do(t, staff, http.MethodGet, "/borrow", "")
	resp = listResponse{}
	decode(t, rr, &resp)
	assert.Equal(t, 4, resp.Total)

	rr = s.do(t, staff, http.MethodGet, "/borrow?users="+strconv.Itoa(alice.ID)+","+strconv.Itoa(bob.ID), "")
	resp = listResponse{}
	decode(t, rr, &resp)
	assert.Equal(t, 3, resp.Total)
	assert.ElementsMatch(t, []int{alice.ID, alice.ID, bob.ID}, userIDs(resp))

	rr = s.do(t, staff, http.MethodGet, "/borrow?is_active=true&users="+strconv.Itoa(alice.ID), "")
	resp = listResponse{}
	decode(t, rr, &resp)
	require.Equal(t, 1, resp.Total)
	assert.Nil(t, resp.Borrowings[0].ActualReturnDate)

	rr = s.do(t, staff, http.MethodGet, "/borrow?is_active=false", "")
	resp = listResponse{}
	decode(t, rr, &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, a.ID, resp.Borrowings[0].ID)

	rr = s.do(t, staff, http.MethodGet, "/borrow?users=1,,2", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, nil, http.MethodGet, "/borrow", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_RetrieveHidesOthersBorrowings(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := newTestServer(t, db)
	engine := newTestEngine(db)

	owner := createUser(t, db, "owner@example.com", false)
	other := createUser(t, db, "other@example.com", false)
	staff := createUser(t, db, "librarian@example.com", true)
	book := createBook(t, db, 1)

	borrowing, err := engine.CreateBorrowing(t.Context(), circulationOptions(owner.ID, book.ID))
	require.NoError(t, err)
	target := "/borrow/" + strconv.Itoa(borrowing.ID)

	rr := s.do(t, owner, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp borrowingResponse
	decode(t, rr, &resp)
	assert.Equal(t, borrowing.ID, resp.ID)
	assert.Equal(t, borrowing.BorrowDate.String(), resp.BorrowDate)
	assert.Equal(t, borrowing.ExpectedReturnDate.String(), resp.ExpectedReturnDate)

	rr = s.do(t, staff, http.MethodGet, target, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, other, http.MethodGet, target, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(t, other, http.MethodGet, "/borrow/9999", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutes_DirectChangesNotAllowed(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	s := newTestServer(t, db)
	engine := newTestEngine(db)

	staff := createUser(t, db, "librarian@example.com", true)
	book := createBook(t, db, 1)
	borrowing, err := engine.CreateBorrowing(t.Context(), circulationOptions(staff.ID, book.ID))
	require.NoError(t, err)
	target := "/borrow/" + strconv.Itoa(borrowing.ID)

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rr := s.do(t, staff, method, target, `{"actual_return_date":null}`)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
	}

	exists, err := db.NewSelect().Model((*models.Borrowing)(nil)).Where("id = ?", borrowing.ID).Exists(t.Context())
	require.NoError(t, err)
	assert.True(t, exists)
}
