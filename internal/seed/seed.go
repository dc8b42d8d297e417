// Package seed fills the mock API database with demo data. It is meant for
// development and tests only.
package seed

import (
	"context"
	"fmt"

	"pingme/internal/models"
	"pingme/internal/observability"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Demo account created by every run so the remote path can be logged into.
const (
	DemoEmail    = "demo@pingme.dev"
	DemoPassword = "pingme123"
	DemoName     = "Demo User"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	PostsPerUser    int
	CommentsPerPost int
	// LikeRatio is the chance, 0 to 1, that a given user likes a given post.
	LikeRatio   float64
	MaxDays     int
	Password    string
	SkipBcrypt  bool
	ShouldClean bool
	// RandSeed makes runs reproducible; 0 picks a random seed.
	RandSeed int64
}

func (o Options) withDefaults() Options {
	if o.NumUsers < 0 {
		o.NumUsers = 0
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 30
	}
	if o.Password == "" {
		o.Password = DemoPassword
	}
	if o.LikeRatio < 0 {
		o.LikeRatio = 0
	}
	if o.LikeRatio > 1 {
		o.LikeRatio = 1
	}
	return o
}

// Result counts what a run created.
type Result struct {
	Users    int
	Posts    int
	Comments int
	Likes    int
}

// Seed populates the database with demo data.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	db = db.WithContext(ctx)
	log := observability.Logger

	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return nil, err
		}
	}

	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	opts = f.opts
	res := &Result{}

	users := make([]*models.User, 0, opts.NumUsers+1)
	demo, err := f.demoUser()
	if err != nil {
		return nil, err
	}
	users = append(users, demo)

	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(i + 1)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
		res.Users++
	}
	log.InfoContext(ctx, "seeded users", "count", res.Users)

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			posts = append(posts, f.BuildPost(u))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	res.Posts = len(posts)
	log.InfoContext(ctx, "seeded posts", "count", res.Posts)

	var comments []*models.Comment
	var likes []*models.Like
	for _, p := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			author := users[f.faker.Number(0, len(users)-1)]
			comments = append(comments, f.BuildComment(p, author))
		}
		for _, u := range users {
			if f.faker.Float64Range(0, 1) < opts.LikeRatio {
				likes = append(likes, &models.Like{UserID: u.ID, PostID: p.ID})
			}
		}
	}
	if len(comments) > 0 {
		if err := db.Omit("Author").CreateInBatches(comments, 100).Error; err != nil {
			return nil, fmt.Errorf("failed to create comments: %w", err)
		}
	}
	if len(likes) > 0 {
		if err := db.Omit("User", "Post").CreateInBatches(likes, 100).Error; err != nil {
			return nil, fmt.Errorf("failed to create likes: %w", err)
		}
	}
	res.Comments = len(comments)
	res.Likes = len(likes)
	log.InfoContext(ctx, "seeding complete",
		"users", res.Users, "posts", res.Posts, "comments", res.Comments, "likes", res.Likes)
	return res, nil
}

// demoUser returns the demo account, creating it on first run. Its password
// is always a real bcrypt hash so it can log in even in fast mode.
func (f *Factory) demoUser() (*models.User, error) {
	var existing models.User
	err := f.db.Where("email = ?", DemoEmail).Limit(1).Find(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("look up demo user: %w", err)
	}
	if existing.ID != 0 {
		return &existing, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return f.CreateUser(0, func(u *models.User) {
		u.Name = DemoName
		u.Email = DemoEmail
		u.Password = string(hashed)
	})
}

// Clean removes every row the seeder can create, children first.
func Clean(db *gorm.DB) error {
	for _, model := range []any{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clean %T: %w", model, err)
		}
	}
	return nil
}
