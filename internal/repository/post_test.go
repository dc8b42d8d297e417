package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"pingme/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_Create_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	post := &models.Post{Title: "Hello", Body: "World", AuthorID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), post)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_ListWithLikeCounts(t *testing.T) {
	db := setupSQLiteDB(t)
	posts := NewPostRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	ana := createUser(t, db, "Ana", "ana@example.com")
	bia := createUser(t, db, "Bia", "bia@example.com")

	older := &models.Post{Title: "older", Body: "b", AuthorID: ana.ID, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Post{Title: "newer", Body: "b", AuthorID: bia.ID, CreatedAt: time.Now()}
	require.NoError(t, posts.Create(ctx, older))
	require.NoError(t, posts.Create(ctx, newer))

	_, err := likes.Toggle(ctx, ana.ID, older.ID)
	require.NoError(t, err)
	_, err = likes.Toggle(ctx, bia.ID, older.ID)
	require.NoError(t, err)

	all, err := posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Title)
	assert.Equal(t, "Bia", all[0].Author.Name)
	assert.Equal(t, 0, all[0].LikeCount)
	assert.Equal(t, 2, all[1].LikeCount)

	mine, err := posts.ListByAuthor(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, older.ID, mine[0].ID)

	one, err := posts.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, one.LikeCount)
	assert.Equal(t, ana.ID, one.Author.ID)
}

func TestPostRepository_UpdateAndDelete(t *testing.T) {
	db := setupSQLiteDB(t)
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	ana := createUser(t, db, "Ana", "ana@example.com")
	p := &models.Post{Title: "t", Body: "b", AuthorID: ana.ID}
	require.NoError(t, posts.Create(ctx, p))

	p.Title = "t2"
	p.Tags = "go, test"
	require.NoError(t, posts.Update(ctx, p))
	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Title)
	assert.Equal(t, "go, test", got.Tags)

	require.NoError(t, comments.Create(ctx, &models.Comment{Body: "c", PostID: p.ID, AuthorID: ana.ID}))
	_, err = likes.Toggle(ctx, ana.ID, p.ID)
	require.NoError(t, err)

	require.NoError(t, posts.Delete(ctx, p.ID))

	_, err = posts.GetByID(ctx, p.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	left, err := comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	remaining, err := likes.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	err = posts.Delete(ctx, p.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
