package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/article-publishing-api/internal/models"
	"github.com/article-publishing-api/internal/repository"
)

// MockUserRepository is an in-memory implementation of UserRepository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*models.User
	ByUsername  map[string]*models.User
	CreateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[string]*models.User),
		ByUsername: make(map[string]*models.User),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	m.Users[user.ID] = user
	m.ByUsername[user.Username] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.ByUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Users), nil
}

// MockTokenRepository is an in-memory implementation of
// TokenRepository. Tokens are keyed by their opaque key; nothing
// prevents two rows for one user, mirroring the real schema.
type MockTokenRepository struct {
	mu     sync.Mutex
	Tokens map[string]*models.Token
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{Tokens: make(map[string]*models.Token)}
}

func (m *MockTokenRepository) Create(ctx context.Context, token *models.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens[token.Key] = token
	return nil
}

func (m *MockTokenRepository) GetByKey(ctx context.Context, key string) (*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.Tokens[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return token, nil
}

func (m *MockTokenRepository) GetByUserID(ctx context.Context, userID string) (*models.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.Tokens {
		if token.UserID == userID {
			return token, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, token := range m.Tokens {
		if token.UserID == userID {
			delete(m.Tokens, key)
		}
	}
	return nil
}

func (m *MockTokenRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Tokens), nil
}

// MockArticleRepository is an in-memory implementation of
// ArticleRepository
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[string]*models.Article
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[string]*models.Article)}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Title == article.Title {
			return repository.ErrDuplicateTitle
		}
		if a.Slug == article.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	m.Articles[article.ID] = cloneArticle(article)
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[article.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, a := range m.Articles {
		if a.ID == article.ID {
			continue
		}
		if a.Title == article.Title {
			return repository.ErrDuplicateTitle
		}
		if a.Slug == article.Slug {
			return repository.ErrDuplicateSlug
		}
	}
	m.Articles[article.ID] = cloneArticle(article)
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Slug == slug {
			return cloneArticle(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockArticleRepository) GetOwnedBySlug(ctx context.Context, slug string, userID string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Slug == slug && a.UserID == userID {
			return cloneArticle(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockArticleRepository) ListPublished(ctx context.Context, now time.Time) ([]*models.Article, error) {
	return m.listWhere(func(a *models.Article) bool {
		return a.IsActive && !a.PubDate.After(now)
	}), nil
}

func (m *MockArticleRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Article, error) {
	return m.listWhere(func(a *models.Article) bool {
		return a.UserID == userID
	}), nil
}

func (m *MockArticleRepository) ListAll(ctx context.Context) ([]*models.Article, error) {
	return m.listWhere(func(a *models.Article) bool { return true }), nil
}

func (m *MockArticleRepository) SetActive(ctx context.Context, slug string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Slug == slug {
			a.IsActive = active
			a.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockArticleRepository) TitleExists(ctx context.Context, title string, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if a.Title == title && a.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

func (m *MockArticleRepository) listWhere(match func(*models.Article) bool) []*models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Article
	for _, a := range m.Articles {
		if match(a) {
			out = append(out, cloneArticle(a))
		}
	}
	// Newest first, like the Postgres repositories
	sort.Slice(out, func(i, j int) bool {
		return out[i].PubDate.After(out[j].PubDate)
	})
	return out
}

func cloneArticle(a *models.Article) *models.Article {
	copied := *a
	return &copied
}

// NewMockRepositories bundles fresh mocks into a Repositories
// aggregate for wiring real services in tests
func NewMockRepositories() (*repository.Repositories, *MockUserRepository, *MockTokenRepository, *MockArticleRepository) {
	users := NewMockUserRepository()
	tokens := NewMockTokenRepository()
	articles := NewMockArticleRepository()
	return &repository.Repositories{
		User:    users,
		Token:   tokens,
		Article: articles,
	}, users, tokens, articles
}
