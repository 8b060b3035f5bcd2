package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPostRepository_GetBySlug(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.is_moderated) as comments_count FROM "posts" WHERE posts.slug = $1 ORDER BY "posts"."id" LIMIT $2`)).
		WithArgs("hello-world", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "author_id", "comments_count"}).
			AddRow(1, "Hello World", "hello-world", 7, 3))

	// Preload Author
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(7, "author"))

	// Preload Categories via join table
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "post_categories" WHERE "post_categories"."post_id" = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"post_id", "category_id"}).AddRow(1, 2))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE "categories"."id" = $1`)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "golang"))

	post, err := repo.GetBySlug(ctx, "hello-world")
	assert.NoError(t, err)
	assert.Equal(t, "hello-world", post.Slug)
	assert.Equal(t, 3, post.CommentsCount)
	assert.Equal(t, "author", post.Author.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_GetBySlug_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT posts.*,`)).
		WillReturnError(errors.New("record not found"))

	_, err := repo.GetBySlug(context.Background(), "missing")
	assert.Error(t, err)
}

func TestPostRepository_Count(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))

	total, err := repo.Count(ctx, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Count_WithSearch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "posts" WHERE LOWER(posts.title) LIKE $1 OR LOWER(posts.content) LIKE $2`)).
		WithArgs("%gorm%", "%gorm%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	total, err := repo.Count(ctx, "GORM")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{ID: 4, Slug: "doomed-post"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "comments" WHERE post_id = $1`)).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM post_categories WHERE post_id = $1`)).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "posts" WHERE "posts"."id" = $1`)).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(ctx, post)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
