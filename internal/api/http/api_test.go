package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/user-service/internal/api/http"
	"github.com/spec-kit/user-service/internal/api/http/handlers"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/observability"
	"github.com/spec-kit/user-service/internal/persistence"
	"github.com/spec-kit/user-service/internal/repository"
	"github.com/spec-kit/user-service/internal/service"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, repository.UserRepository) {
	t.Helper()

	authCfg := config.AuthConfig{
		JWTSecret:             testSecret,
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}

	repo := repository.NewMemoryUserRepository()
	authService := service.NewAuthService(authCfg, repo)
	userService := service.NewUserService(repo, authCfg.BcryptCost)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("user-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})
	return app, repo
}

func seed(t *testing.T, repo repository.UserRepository, name, email string) domain.User {
	t.Helper()
	user := domain.User{Name: name, Email: email}
	require.NoError(t, repo.Create(context.Background(), &user))
	return user
}

func login(t *testing.T, app *fiber.App, username, password string) (string, int) {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode
	}

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken, resp.StatusCode
}

func do(t *testing.T, app *fiber.App, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeUser(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error.Code
}

func TestLogin_UnknownUserUnauthorized(t *testing.T) {
	app, _ := newTestApp(t)

	for _, username := range []string{"99", "alice"} {
		_, status := login(t, app, username, "anything")
		require.Equal(t, http.StatusUnauthorized, status, "username %q", username)
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	app, _ := newTestApp(t)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/users"},
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/users/1"},
		{http.MethodPut, "/users/1"},
		{http.MethodDelete, "/users/1"},
	}
	for _, p := range paths {
		resp := do(t, app, p.method, p.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", p.method, p.path)
		require.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	app, repo := newTestApp(t)
	seed(t, repo, "Alice", "alice@example.com")

	claims := &jwt.RegisteredClaims{
		Subject:   "1",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp := do(t, app, http.MethodGet, "/users/1", expired, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEndToEndScenario(t *testing.T) {
	app, repo := newTestApp(t)
	alice := seed(t, repo, "Alice", "alice@example.com")

	token, status := login(t, app, fmt.Sprintf("%d", alice.ID), "anything")
	require.Equal(t, http.StatusOK, status)

	resp := do(t, app, http.MethodGet, "/users/1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeUser(t, resp)
	require.Equal(t, float64(1), body["id"])
	require.Equal(t, "Alice", body["name"])

	resp = do(t, app, http.MethodPut, "/users/1", token, map[string]any{
		"name":  "Bob",
		"email": "bob@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeUser(t, resp)
	require.Equal(t, float64(1), body["id"])
	require.Equal(t, "Bob", body["name"])

	resp = do(t, app, http.MethodDelete, "/users/1", token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/users/1", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestCreateUser(t *testing.T) {
	app, repo := newTestApp(t)
	bootstrap := seed(t, repo, "admin", "admin@example.com")
	token, _ := login(t, app, fmt.Sprintf("%d", bootstrap.ID), "x")

	resp := do(t, app, http.MethodPost, "/users", token, map[string]any{
		"name":  "Carol",
		"email": "carol@example.com",
		"age":   30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeUser(t, resp)
	require.Equal(t, "Carol", body["name"])
	require.Equal(t, "carol@example.com", body["email"])
	require.Equal(t, float64(30), body["age"])
	require.NotContains(t, body, "password_hash")

	// New rows can log in right away.
	id := int64(body["id"].(float64))
	_, status := login(t, app, fmt.Sprintf("%d", id), "anything")
	require.Equal(t, http.StatusOK, status)
}

func TestCreateUser_ValidationError(t *testing.T) {
	app, repo := newTestApp(t)
	bootstrap := seed(t, repo, "admin", "admin@example.com")
	token, _ := login(t, app, fmt.Sprintf("%d", bootstrap.ID), "x")

	resp := do(t, app, http.MethodPost, "/users", token, map[string]any{"name": "NoEmail"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "VALIDATION_FAILED", errorCode(t, resp))
}

func TestReadSelf(t *testing.T) {
	app, repo := newTestApp(t)
	alice := seed(t, repo, "Alice", "alice@example.com")
	token, _ := login(t, app, fmt.Sprintf("%d", alice.ID), "x")

	resp := do(t, app, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeUser(t, resp)
	require.Equal(t, float64(alice.ID), body["id"])
	require.Equal(t, "Alice", body["name"])
}

func TestReadSelf_OrphanedTokenNotFound(t *testing.T) {
	app, repo := newTestApp(t)
	alice := seed(t, repo, "Alice", "alice@example.com")
	token, _ := login(t, app, fmt.Sprintf("%d", alice.ID), "x")

	// Delete the row behind the still-valid token.
	resp := do(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestListCountsCreatesMinusDeletes(t *testing.T) {
	app, repo := newTestApp(t)
	bootstrap := seed(t, repo, "admin", "admin@example.com")
	token, _ := login(t, app, fmt.Sprintf("%d", bootstrap.ID), "x")

	created := make([]int64, 0, 4)
	for i := 0; i < 4; i++ {
		resp := do(t, app, http.MethodPost, "/users", token, map[string]any{
			"name":  fmt.Sprintf("user-%d", i),
			"email": fmt.Sprintf("user-%d@example.com", i),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		created = append(created, int64(decodeUser(t, resp)["id"].(float64)))
	}
	for _, id := range created[:2] {
		resp := do(t, app, http.MethodDelete, fmt.Sprintf("/users/%d", id), token, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp := do(t, app, http.MethodGet, "/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	// bootstrap + 4 created - 2 deleted
	require.Len(t, list, 3)
	require.Equal(t, float64(bootstrap.ID), list[0]["id"])
}

func TestHarnessPageServed(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(page), "/auth/login")
}

func TestHealthLive(t *testing.T) {
	app, _ := newTestApp(t)

	resp := do(t, app, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
