package seed

import (
	"context"
	"testing"

	"pingme/internal/database"
	"pingme/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeed_CreatesGraph(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	res, err := Seed(ctx, db, Options{
		NumUsers:        3,
		PostsPerUser:    2,
		CommentsPerPost: 2,
		LikeRatio:       1,
		SkipBcrypt:      true,
		RandSeed:        42,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Users)
	assert.Equal(t, 8, res.Posts, "demo user plus three fakes, two posts each")
	assert.Equal(t, 16, res.Comments)
	assert.Equal(t, 32, res.Likes, "every user likes every post")

	assert.Equal(t, int64(4), count(t, db, &models.User{}))
	assert.Equal(t, int64(8), count(t, db, &models.Post{}))
	assert.Equal(t, int64(16), count(t, db, &models.Comment{}))
	assert.Equal(t, int64(32), count(t, db, &models.Like{}))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Body)
		assert.NotEmpty(t, p.Tags)
	}
}

func TestSeed_DemoUserIsReusedAndLoginable(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := Seed(ctx, db, Options{NumUsers: 0, PostsPerUser: 1, SkipBcrypt: true})
	require.NoError(t, err)
	_, err = Seed(ctx, db, Options{NumUsers: 0, PostsPerUser: 1, SkipBcrypt: true})
	require.NoError(t, err)

	var demos []models.User
	require.NoError(t, db.Where("email = ?", DemoEmail).Find(&demos).Error)
	require.Len(t, demos, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(demos[0].Password), []byte(DemoPassword)))
	assert.Equal(t, int64(2), count(t, db, &models.Post{}))
}

func TestSeed_ShouldClean(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := Seed(ctx, db, Options{NumUsers: 2, PostsPerUser: 2, CommentsPerPost: 1, LikeRatio: 1, SkipBcrypt: true})
	require.NoError(t, err)

	res, err := Seed(ctx, db, Options{NumUsers: 1, PostsPerUser: 1, ShouldClean: true, SkipBcrypt: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Posts)
	assert.Equal(t, int64(2), count(t, db, &models.User{}))
	assert.Equal(t, int64(2), count(t, db, &models.Post{}))
	assert.Zero(t, count(t, db, &models.Comment{}))
	assert.Zero(t, count(t, db, &models.Like{}))
}

func TestBuildComment_AfterPost(t *testing.T) {
	f, err := NewFactory(nil, Options{SkipBcrypt: true, RandSeed: 7})
	require.NoError(t, err)

	author := f.BuildUser(1)
	author.ID = 1
	post := f.BuildPost(author)
	post.ID = 10

	c := f.BuildComment(post, author)
	assert.Equal(t, int64(10), c.PostID)
	assert.False(t, c.CreatedAt.Before(post.CreatedAt))
	assert.False(t, c.CreatedAt.After(f.now))
}
