package seed

import (
	"fmt"
	"strings"
	"time"

	"pingme/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	now   time.Time

	// bcrypt is slow; every fake account shares one hash.
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	opts = opts.withDefaults()
	f := &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(opts.RandSeed),
		now:   time.Now(),
	}

	if opts.SkipBcrypt {
		f.passwordHash = opts.Password
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		f.passwordHash = string(hashed)
	}
	return f, nil
}

// BuildUser constructs a sample user without saving it. seq keeps emails
// unique within one run.
func (f *Factory) BuildUser(seq int, overrides ...func(*models.User)) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	user := &models.User{
		Name:            first + " " + last,
		Email:           strings.ToLower(fmt.Sprintf("%s.%s.%d@pingme.dev", first, last, seq)),
		Password:        f.passwordHash,
		Bio:             f.faker.Sentence(10),
		ProfilePhotoURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(seq int, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(seq, overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return user, nil
}

// BuildPost constructs a post by author with a created_at spread over the
// last MaxDays days.
func (f *Factory) BuildPost(author *models.User) *models.Post {
	tags := make([]string, f.faker.Number(1, 3))
	for i := range tags {
		tags[i] = strings.ToLower(f.faker.HipsterWord())
	}

	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Body:      f.faker.Paragraph(1, 3, 12, "\n"),
		Tags:      strings.Join(tags, ", "),
		AuthorID:  author.ID,
		CreatedAt: f.pastTime(),
	}
	// About half of the posts carry a photo.
	if f.faker.Bool() {
		post.PhotoURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())
	}
	return post
}

// CreatePostsBatch persists posts in a single statement.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit("Author").CreateInBatches(posts, 100).Error
}

// BuildComment constructs a comment on post by author, after the post.
func (f *Factory) BuildComment(post *models.Post, author *models.User) *models.Comment {
	since := f.now.Sub(post.CreatedAt)
	offset := time.Duration(f.faker.Number(1, 1+int(since.Minutes()))) * time.Minute
	if offset > since {
		offset = since
	}
	return &models.Comment{
		Body:      f.faker.Sentence(f.faker.Number(4, 14)),
		PostID:    post.ID,
		AuthorID:  author.ID,
		CreatedAt: post.CreatedAt.Add(offset),
	}
}

func (f *Factory) pastTime() time.Time {
	minutes := f.faker.Number(0, f.opts.MaxDays*24*60)
	return f.now.Add(-time.Duration(minutes) * time.Minute)
}
