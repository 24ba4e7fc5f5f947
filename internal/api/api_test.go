package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/article-publishing-api/internal/api"
	"github.com/article-publishing-api/internal/config"
	"github.com/article-publishing-api/internal/mocks"
	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

type testEnv struct {
	router   *gin.Engine
	users    *mocks.MockUserRepository
	tokens   *mocks.MockTokenRepository
	articles *mocks.MockArticleRepository
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, users, tokens, articles := mocks.NewMockRepositories()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Auth:   config.AuthConfig{BcryptCost: bcrypt.MinCost},
	}
	log := zerolog.Nop()
	services := service.NewServices(repos, cfg, log)
	router := api.NewRouter(services, log)

	return &testEnv{router: router, users: users, tokens: tokens, articles: articles}
}

func (e *testEnv) seedUser(t *testing.T, username string, admin bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword failed: %v", err)
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create user failed: %v", err)
	}
	return user
}

func (e *testEnv) seedToken(t *testing.T, user *models.User, key string, createdAt time.Time) {
	t.Helper()
	err := e.tokens.Create(context.Background(), &models.Token{Key: key, UserID: user.ID, CreatedAt: createdAt})
	if err != nil {
		t.Fatalf("Create token failed: %v", err)
	}
}

func (e *testEnv) seedArticle(t *testing.T, user *models.User, title string, active bool, pubDate time.Time) *models.Article {
	t.Helper()
	article := &models.Article{
		ID:        uuid.New().String(),
		Title:     title,
		Body:      json.RawMessage(`{"blocks": []}`),
		PubDate:   pubDate,
		IsActive:  active,
		Slug:      models.MakeSlug(title, pubDate),
		UserID:    user.ID,
		CreatedAt: pubDate,
		UpdatedAt: pubDate,
	}
	if err := e.articles.Create(context.Background(), article); err != nil {
		t.Fatalf("Create article failed: %v", err)
	}
	return article
}

func (e *testEnv) do(method, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do("GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "article-publishing-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	user := env.seedUser(t, "alice", false)
	env.seedArticle(t, user, "Metrics Article", true, time.Now().Add(-time.Hour))

	w := env.do("GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	db := response["database"].(map[string]interface{})
	if db["users"].(float64) != 1 {
		t.Errorf("Expected 1 user, got %v", db["users"])
	}
	if db["articles"].(float64) != 1 {
		t.Errorf("Expected 1 article, got %v", db["articles"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.seedUser(t, "alice", false)

	// Missing fields: per-field validation detail
	w := env.do("POST", "/token/login", `{}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	var badResp struct {
		Errors map[string][]string `json:"errors"`
	}
	json.Unmarshal(w.Body.Bytes(), &badResp)
	if len(badResp.Errors["username"]) == 0 || len(badResp.Errors["password"]) == 0 {
		t.Errorf("Expected username and password errors, got %v", badResp.Errors)
	}

	// Wrong password and unknown user: identical opaque 404
	wrong := env.do("POST", "/token/login", `{"username": "alice", "password": "nope"}`, "")
	unknown := env.do("POST", "/token/login", `{"username": "ghost", "password": "nope"}`, "")
	if wrong.Code != http.StatusNotFound || unknown.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for both, got %d and %d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("Credential failures must be indistinguishable: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}

	// Success returns the prefixed key
	w = env.do("POST", "/token/login", fmt.Sprintf(`{"username": "alice", "password": %q}`, testPassword), "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var okResp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &okResp)
	if !strings.HasPrefix(okResp.Token, "Token ") {
		t.Errorf("Expected 'Token <key>' format, got %q", okResp.Token)
	}
}

func TestRefreshEndpointRotates(t *testing.T) {
	env := setupTestRouter(t)
	env.seedUser(t, "alice", false)
	creds := fmt.Sprintf(`{"username": "alice", "password": %q}`, testPassword)

	login := env.do("POST", "/token/login", creds, "")
	refresh := env.do("PUT", "/token/refresh", creds, "")
	if login.Code != http.StatusOK || refresh.Code != http.StatusOK {
		t.Fatalf("Expected 200s, got %d and %d", login.Code, refresh.Code)
	}
	if login.Body.String() == refresh.Body.String() {
		t.Error("Refresh must never return the prior key")
	}
}

func TestPublicArticles(t *testing.T) {
	env := setupTestRouter(t)
	user := env.seedUser(t, "alice", false)
	published := env.seedArticle(t, user, "Published", true, time.Now().Add(-time.Hour))
	draft := env.seedArticle(t, user, "Draft", false, time.Now().Add(-time.Hour))
	scheduled := env.seedArticle(t, user, "Scheduled", true, time.Now().Add(time.Hour))

	w := env.do("GET", "/articles", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var list []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Fatalf("Expected only the published article, got %d", len(list))
	}
	if list[0]["slug"] != published.Slug {
		t.Errorf("Expected slug %q, got %v", published.Slug, list[0]["slug"])
	}
	if _, leaked := list[0]["is_active"]; leaked {
		t.Error("Public representation must not expose is_active")
	}

	// Hidden slugs 404 even though they exist
	for _, a := range []*models.Article{draft, scheduled} {
		if w := env.do("GET", "/articles/"+a.Slug, "", ""); w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 for hidden slug %q, got %d", a.Slug, w.Code)
		}
	}
	if w := env.do("GET", "/articles/"+published.Slug, "", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for published slug, got %d", w.Code)
	}
}

func TestOwnerArticleLifecycle(t *testing.T) {
	env := setupTestRouter(t)
	user := env.seedUser(t, "alice", false)
	env.seedToken(t, user, "alicekey", time.Now())
	auth := "Token alicekey"

	// Create
	w := env.do("POST", "/user-article", `{"title": "My Post", "json_body": {"blocks": []}}`, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &created)
	slug, _ := created["slug"].(string)
	if slug == "" {
		t.Fatal("Expected a slug in the create response")
	}

	// Validation failure
	w = env.do("POST", "/user-article", `{"json_body": {"blocks": []}}`, auth)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}

	// Owner list includes the draft
	w = env.do("GET", "/user-article", "", auth)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var list []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Errorf("Expected 1 owned article, got %d", len(list))
	}

	// Retrieve
	if w := env.do("GET", "/user-article/"+slug, "", auth); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	// Update: 202, and the stored row is forced inactive
	for _, a := range env.articles.Articles {
		a.IsActive = true
	}
	w = env.do("PUT", "/user-article/"+slug, `{"title": "My Post", "json_body": {"blocks": [1]}}`, auth)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
	}
	for _, a := range env.articles.Articles {
		if a.IsActive {
			t.Error("Edit must force is_active back to false")
		}
	}

	// Delete, then the slug is gone
	if w := env.do("DELETE", "/user-article/"+slug, "", auth); w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", w.Code)
	}
	if w := env.do("GET", "/user-article/"+slug, "", auth); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", w.Code)
	}
}

func TestOwnerScopeIsOpaque(t *testing.T) {
	env := setupTestRouter(t)
	alice := env.seedUser(t, "alice", false)
	bob := env.seedUser(t, "bob", false)
	env.seedToken(t, bob, "bobkey", time.Now())
	article := env.seedArticle(t, alice, "Alice Only", false, time.Now().Add(-time.Hour))

	auth := "Token bobkey"
	if w := env.do("GET", "/user-article/"+article.Slug, "", auth); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 (never 403) for another user's article, got %d", w.Code)
	}
	if w := env.do("PUT", "/user-article/"+article.Slug, `{"title": "X", "json_body": {}}`, auth); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on foreign update, got %d", w.Code)
	}
	if w := env.do("DELETE", "/user-article/"+article.Slug, "", auth); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 on foreign delete, got %d", w.Code)
	}
}

func TestAuthStatusTaxonomy(t *testing.T) {
	env := setupTestRouter(t)
	user := env.seedUser(t, "alice", false)
	env.seedToken(t, user, "livekey", time.Now())
	env.seedToken(t, user, "oldkey", time.Now().Add(-16*time.Minute))

	tests := []struct {
		name   string
		auth   string
		path   string
		status int
	}{
		{"missing header", "", "/user-article", http.StatusNotFound},
		{"wrong scheme", "Bearer livekey", "/user-article", http.StatusNotFound},
		{"unknown key", "Token nosuchkey", "/user-article", http.StatusNotFound},
		{"expired key", "Token oldkey", "/user-article", http.StatusUnauthorized},
		{"valid key", "Token livekey", "/user-article", http.StatusOK},
		{"valid key without role", "Token livekey", "/admin-article/articles", http.StatusForbidden},
		{"expired key on admin path", "Token oldkey", "/admin-article/articles", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.do("GET", tt.path, "", tt.auth); w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestAdminEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	admin := env.seedUser(t, "root", true)
	author := env.seedUser(t, "alice", false)
	env.seedToken(t, admin, "rootkey", time.Now())
	article := env.seedArticle(t, author, "Needs Approval", false, time.Now().Add(-time.Hour))

	auth := "Token rootkey"

	// System-wide list with the admin representation
	w := env.do("GET", "/admin-article/articles", "", auth)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var list []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Fatalf("Expected 1 article, got %d", len(list))
	}
	if _, ok := list[0]["is_active"]; !ok {
		t.Error("Admin representation must expose is_active")
	}

	// Toggle requires the flag explicitly
	if w := env.do("POST", "/admin-article/"+article.Slug+"/active_article", `{}`, auth); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without is_active, got %d", w.Code)
	}

	// Toggle on
	if w := env.do("POST", "/admin-article/"+article.Slug+"/active_article", `{"is_active": true}`, auth); w.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", w.Code)
	}
	if !env.articles.Articles[article.ID].IsActive {
		t.Error("Article should be active after the admin toggle")
	}

	// Unknown slug
	if w := env.do("POST", "/admin-article/no-such/active_article", `{"is_active": true}`, auth); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown slug, got %d", w.Code)
	}
}
