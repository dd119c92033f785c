package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boarddomain "github.com/alebedev/helpboard/internal/board/domain"
	boardservice "github.com/alebedev/helpboard/internal/board/service"
	"github.com/alebedev/helpboard/internal/common/crypto"
	"github.com/alebedev/helpboard/internal/common/logger"
	"github.com/alebedev/helpboard/internal/common/session"
	"github.com/alebedev/helpboard/internal/notify"
	"github.com/alebedev/helpboard/internal/storage/jsonfile"
	userdirectory "github.com/alebedev/helpboard/internal/user/directory"
	userdomain "github.com/alebedev/helpboard/internal/user/domain"
	userhttp "github.com/alebedev/helpboard/internal/user/http"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type noopPublisher struct{}

func (noopPublisher) Publish(notify.Event) {}

type fixture struct {
	handler http.Handler
	issuer  *session.Issuer
	board   *boardservice.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, err := logger.New("", "test", "ERROR")
	require.NoError(t, err)

	dir := t.TempDir()
	usersFile := jsonfile.New[map[string]userdomain.User](filepath.Join(dir, "users.json"))
	requestsFile := jsonfile.New[[]boarddomain.Request](filepath.Join(dir, "requests.json"))

	directory := userdirectory.New(nil, usersFile, &crypto.BcryptHasher{}, log)
	board := boardservice.New(nil, requestsFile, noopPublisher{}, log)
	issuer := session.NewIssuer(testSecret, time.Hour, crypto.NewUUIDGenerator())

	return &fixture{
		handler: userhttp.NewHandler(directory, board, issuer, testSecret, log),
		issuer:  issuer,
		board:   board,
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	r := httptest.NewRequest(method, path, &buf)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestSignup(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.Token)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestSignupDuplicateUsername(t *testing.T) {
	f := newFixture(t)
	creds := map[string]string{"username": "alice", "password": "secret123"}

	require.Equal(t, http.StatusCreated, doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", creds, "").Code)

	w := doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", creds, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupRejectsShortPassword(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "short",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupRejectsGetMethod(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.handler, http.MethodGet, "/api/auth/signup", nil, "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	creds := map[string]string{"username": "alice", "password": "secret123"}
	require.Equal(t, http.StatusCreated, doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", creds, "").Code)

	w := doJSON(t, f.handler, http.MethodPost, "/api/auth/login", creds, "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "").Code)

	w := doJSON(t, f.handler, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrongpass",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.handler, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "ghost",
		"password": "whatever1",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.handler, http.MethodPost, "/api/auth/logout", nil, "")

	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0 || cookies[0].Expires.Before(time.Now()))
}

func TestProfileIncludesAuthoredRequests(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "").Code)

	_, err := f.board.Create(t.Context(), "alice", "help", "details")
	require.NoError(t, err)
	_, err = f.board.Create(t.Context(), "bob", "other", "details")
	require.NoError(t, err)

	w := doJSON(t, f.handler, http.MethodGet, "/api/users/alice", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Username string                `json:"username"`
		Requests []boarddomain.Request `json:"requests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	require.Len(t, resp.Requests, 1)
	assert.Equal(t, "help", resp.Requests[0].Title)
}

func TestProfileUnknownUser(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.handler, http.MethodGet, "/api/users/ghost", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateOwnProfile(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusCreated, doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice",
		"password": "secret123",
	}, "").Code)

	token, _, err := f.issuer.Issue("alice")
	require.NoError(t, err)

	w := doJSON(t, f.handler, http.MethodPut, "/api/users/alice/profile", map[string]string{
		"bio":   "gopher",
		"email": "alice@example.com",
	}, token)
	require.Equal(t, http.StatusNoContent, w.Code)

	got := doJSON(t, f.handler, http.MethodGet, "/api/users/alice", nil, "")
	require.Equal(t, http.StatusOK, got.Code)
	var resp struct {
		Profile userdomain.Profile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(got.Body.Bytes(), &resp))
	assert.Equal(t, "gopher", resp.Profile.Bio)
}

func TestUpdateOtherUsersProfileIsForbidden(t *testing.T) {
	f := newFixture(t)
	for _, creds := range []map[string]string{
		{"username": "alice", "password": "secret123"},
		{"username": "bob", "password": "secret123"},
	} {
		require.Equal(t, http.StatusCreated, doJSON(t, f.handler, http.MethodPost, "/api/auth/signup", creds, "").Code)
	}

	token, _, err := f.issuer.Issue("bob")
	require.NoError(t, err)

	w := doJSON(t, f.handler, http.MethodPut, "/api/users/alice/profile", map[string]string{
		"bio": "hijacked",
	}, token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	f := newFixture(t)

	w := doJSON(t, f.handler, http.MethodPut, "/api/users/alice/profile", map[string]string{
		"bio": "anonymous",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
