package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pingme/internal/kv"
	"pingme/internal/mockstore"
	"pingme/internal/models"
	"pingme/internal/provider"
	"pingme/internal/session"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:3000"

var errNetwork = models.NewNetworkError("test", errors.New("connection refused"))

// fixture is a logged-in mock-mode client.
type fixture struct {
	ctx     context.Context
	kv      *kv.MemoryStore
	store   *mockstore.Store
	session *session.Manager
	deps    Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := kv.NewMemoryStore()
	store := mockstore.New(mem)
	mgr := session.NewManager(mem, store, nil)
	_, err := mgr.Login(ctx, session.TestEmail, session.TestPassword)
	require.NoError(t, err)

	return &fixture{
		ctx:     ctx,
		kv:      mem,
		store:   store,
		session: mgr,
		deps: Deps{
			Session:  mgr,
			Provider: provider.NewMockProvider(store),
			Origin:   testOrigin,
		},
	}
}

// withProvider returns deps whose provider is wrapped by p.
func (f *fixture) withProvider(p provider.Provider) Deps {
	d := f.deps
	d.Provider = p
	return d
}

// stubProvider delegates to an inner provider unless a fn field is set.
type stubProvider struct {
	provider.Provider

	mu    sync.Mutex
	calls map[string]int

	createPostFn    func(ctx context.Context, authorID int64, in models.PostInput) (*models.Post, error)
	updatePostFn    func(ctx context.Context, authorID, id int64, in models.PostInput) (*models.Post, error)
	deletePostFn    func(ctx context.Context, id int64) error
	createCommentFn func(ctx context.Context, authorID, postID int64, body string) (*models.Comment, error)
	deleteCommentFn func(ctx context.Context, id int64) error
	toggleLikeFn    func(ctx context.Context, postID, userID int64) error
	updateUserFn    func(ctx context.Context, user models.User) (*models.User, error)
}

func newStubProvider(inner provider.Provider) *stubProvider {
	return &stubProvider{Provider: inner, calls: make(map[string]int)}
}

func (s *stubProvider) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *stubProvider) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubProvider) CreatePost(ctx context.Context, authorID int64, in models.PostInput) (*models.Post, error) {
	s.count("create_post")
	if s.createPostFn != nil {
		return s.createPostFn(ctx, authorID, in)
	}
	return s.Provider.CreatePost(ctx, authorID, in)
}

func (s *stubProvider) UpdatePost(ctx context.Context, authorID, id int64, in models.PostInput) (*models.Post, error) {
	s.count("update_post")
	if s.updatePostFn != nil {
		return s.updatePostFn(ctx, authorID, id, in)
	}
	return s.Provider.UpdatePost(ctx, authorID, id, in)
}

func (s *stubProvider) DeletePost(ctx context.Context, id int64) error {
	s.count("delete_post")
	if s.deletePostFn != nil {
		return s.deletePostFn(ctx, id)
	}
	return s.Provider.DeletePost(ctx, id)
}

func (s *stubProvider) CreateComment(ctx context.Context, authorID, postID int64, body string) (*models.Comment, error) {
	s.count("create_comment")
	if s.createCommentFn != nil {
		return s.createCommentFn(ctx, authorID, postID, body)
	}
	return s.Provider.CreateComment(ctx, authorID, postID, body)
}

func (s *stubProvider) DeleteComment(ctx context.Context, id int64) error {
	s.count("delete_comment")
	if s.deleteCommentFn != nil {
		return s.deleteCommentFn(ctx, id)
	}
	return s.Provider.DeleteComment(ctx, id)
}

func (s *stubProvider) ToggleLike(ctx context.Context, postID, userID int64) error {
	s.count("toggle_like")
	if s.toggleLikeFn != nil {
		return s.toggleLikeFn(ctx, postID, userID)
	}
	return s.Provider.ToggleLike(ctx, postID, userID)
}

func (s *stubProvider) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	s.count("update_user")
	if s.updateUserFn != nil {
		return s.updateUserFn(ctx, user)
	}
	return s.Provider.UpdateUser(ctx, user)
}

type mockClipboard struct{ mock.Mock }

func (m *mockClipboard) Copy(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, message string) {
	m.Called(ctx, message)
}

type mockSharer struct{ mock.Mock }

func (m *mockSharer) Share(ctx context.Context, title, url string) error {
	return m.Called(ctx, title, url).Error(0)
}

// blockingCall lets a test hold a provider call open.
type blockingCall struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingCall() *blockingCall {
	return &blockingCall{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingCall) wait() {
	b.once.Do(func() { close(b.started) })
	<-b.release
}

func waitStarted(t *testing.T, b *blockingCall) {
	t.Helper()
	select {
	case <-b.started:
	case <-time.After(2 * time.Second):
		t.Fatal("provider call never started")
	}
}
