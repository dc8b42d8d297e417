// Package session tracks the logged-in user in the persisted namespace.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pingme/internal/kv"
	"pingme/internal/mockstore"
	"pingme/internal/models"
	"pingme/internal/observability"
	"pingme/internal/remote"
)

// Identity keys owned by the session.
const (
	KeyAccessToken = "access_token"
	KeyUserID      = "user_id"
	KeyLoggedIn    = "logado"
)

// Built-in test account. Logging in with it switches the client to mock mode.
const (
	TestEmail    = "admin@teste.com"
	TestPassword = "123456"
	MockToken    = "mock_token_123"
	TestUserID   = int64(1)
)

// Authenticator is the remote side of login and signup.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*remote.LoginResponse, error)
	Signup(ctx context.Context, name, email, password string) error
}

// SignupResult reports how a signup completed.
type SignupResult struct {
	// Simulated is true when the API was unreachable and the account was
	// not actually created.
	Simulated bool
	Message   string
}

// Manager owns the identity keys. It is safe for use by one process.
type Manager struct {
	kv   kv.Store
	mock *mockstore.Store
	auth Authenticator
	now  func() time.Time
}

// NewManager returns a Manager over store. mock receives the seeded data on
// test-credential login.
func NewManager(store kv.Store, mock *mockstore.Store, auth Authenticator) *Manager {
	return &Manager{kv: store, mock: mock, auth: auth, now: time.Now}
}

// TestUser is the fixed account behind the test credentials.
func TestUser() models.User {
	return models.User{
		ID:              TestUserID,
		Name:            "Test User",
		Email:           TestEmail,
		ProfilePhotoURL: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
		Bio:             "Application test user",
	}
}

// SeedPosts returns the example posts stored on first mock login.
func SeedPosts(user models.User, now time.Time) []models.Post {
	day := 24 * time.Hour
	return []models.Post{
		{
			ID:        1,
			Title:     "Welcome to PingMe!",
			Body:      "This is a sample post showing what the network can do. You can like, comment and share it!",
			Tags:      "example, test, social-network",
			PhotoURL:  "https://images.unsplash.com/photo-1611224923853-80b023f02d71?w=500&h=300&fit=crop",
			CreatedAt: now,
			AuthorID:  user.ID,
			Author:    user,
			LikeCount: 5,
		},
		{
			ID:        2,
			Title:     "Platform features",
			Body:      "Create posts, comment on them, customize your profile and much more!",
			Tags:      "features, platform, resources",
			PhotoURL:  "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=500&h=300&fit=crop",
			CreatedAt: now.Add(-day),
			AuthorID:  user.ID,
			Author:    user,
			LikeCount: 12,
		},
		{
			ID:        3,
			Title:     "Share your ideas",
			Body:      "Use PingMe to share ideas, connect with other people and discover interesting content!",
			Tags:      "ideas, share, community",
			CreatedAt: now.Add(-2 * day),
			AuthorID:  user.ID,
			Author:    user,
			LikeCount: 8,
		},
	}
}

// Login authenticates with the test credentials locally or with the remote
// API otherwise.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)

	if email == TestEmail && password == TestPassword {
		return m.loginMock(ctx)
	}

	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		observability.Logger.WarnContext(ctx, "remote login failed", "email", email, "error", err)
		if models.IsCode(err, models.CodeNetwork) && !isStatusError(err) {
			return nil, models.NewAuthError("login failed", err)
		}
		return nil, models.NewAuthError("incorrect email or password", err)
	}
	if resp.UserID == 0 {
		return nil, models.NewAuthError("login response without a user id", nil)
	}

	s := models.Session{UserID: int64(resp.UserID), AccessToken: resp.AccessToken, LoggedIn: true}
	if err := m.persist(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *Manager) loginMock(ctx context.Context) (*models.Session, error) {
	user := TestUser()
	if err := m.mock.Seed(ctx, user, SeedPosts(user, m.now())); err != nil {
		return nil, fmt.Errorf("seed mock data: %w", err)
	}

	s := models.Session{UserID: user.ID, AccessToken: MockToken, LoggedIn: true, Mock: true}
	if err := m.persist(ctx, s); err != nil {
		return nil, err
	}
	observability.Logger.InfoContext(ctx, "mock session started", "user_id", user.ID)
	return &s, nil
}

func (m *Manager) persist(ctx context.Context, s models.Session) error {
	pairs := [][2]string{
		{KeyAccessToken, s.AccessToken},
		{KeyUserID, strconv.FormatInt(s.UserID, 10)},
		{KeyLoggedIn, "true"},
	}
	for _, p := range pairs {
		if err := m.kv.Set(ctx, p[0], p[1]); err != nil {
			return fmt.Errorf("persist session: %w", err)
		}
	}
	return nil
}

// IsActive reports whether a user id is stored. Store failures count as
// inactive.
func (m *Manager) IsActive(ctx context.Context) bool {
	v, ok, err := m.kv.Get(ctx, KeyUserID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "session lookup failed", "error", err)
		return false
	}
	return ok && v != ""
}

// Current returns the stored session, or ErrLoginRequired when there is none.
func (m *Manager) Current(ctx context.Context) (*models.Session, error) {
	raw, ok, err := m.kv.Get(ctx, KeyUserID)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !ok || raw == "" {
		return nil, models.ErrLoginRequired
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, models.NewValidationError(fmt.Sprintf("stored user id %q is not a number", raw))
	}

	token, _, err := m.kv.Get(ctx, KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	loggedIn, _, err := m.kv.Get(ctx, KeyLoggedIn)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	return &models.Session{
		UserID:      userID,
		AccessToken: token,
		LoggedIn:    loggedIn == "true",
		Mock:        token == MockToken,
	}, nil
}

// RequireActive returns the current session or ErrLoginRequired. It gates
// every view; it is not a security boundary.
func (m *Manager) RequireActive(ctx context.Context) (*models.Session, error) {
	s, err := m.Current(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrLoginRequired) {
			observability.Logger.WarnContext(ctx, "session unreadable", "error", err)
		}
		return nil, models.ErrLoginRequired
	}
	return s, nil
}

// Logout clears the whole namespace, mock data included.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.kv.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Signup registers an account with the remote API. When the API cannot be
// reached the signup is reported as simulated.
func (m *Manager) Signup(ctx context.Context, name, email, password string) (*SignupResult, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, models.NewValidationError("name, email and password are required")
	}

	err := m.auth.Signup(ctx, name, email, password)
	switch {
	case err == nil:
		return &SignupResult{Message: "account created, you can now log in"}, nil
	case isStatusError(err):
		return nil, models.NewNetworkError("signup", fmt.Errorf("try again: %w", err))
	case models.IsCode(err, models.CodeNetwork):
		observability.Logger.WarnContext(ctx, "signup simulated, API unreachable", "email", email, "error", err)
		return &SignupResult{
			Simulated: true,
			Message:   "account created (simulated); " + models.TestCredentialsHint,
		}, nil
	default:
		return nil, err
	}
}

func isStatusError(err error) bool {
	var statusErr *remote.StatusError
	return errors.As(err, &statusErr)
}
