package news_test

import (
	"context"
	"testing"
	"time"

	"github.com/furnishop/furniture-backend/internal/domain/news"
	"github.com/furnishop/furniture-backend/internal/infrastructure/database/memory"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/furnishop/furniture-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func article(title string, posted time.Time) *news.News {
	return &news.News{Title: title, Author: "Editor", Detail: "Body of " + title, PostTime: posted, Image: "cover.png"}
}

func TestNews_CreateStartsWithNoComments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := news.NewService(store, logger.Discard())

	n, err := svc.Create(ctx, &news.News{Title: "Spring sale", Author: "Editor", Detail: "20% off"})
	require.NoError(t, err)
	assert.False(t, n.PostTime.IsZero())

	doc, err := store.Get(ctx, news.Collection, n.ID)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, doc.Fields["comments"])

	_, err = svc.Create(ctx, &news.News{Title: "No author"})
	assert.ErrorIs(t, err, news.ErrInvalidNews)
}

func TestNews_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := news.NewService(store, logger.Discard())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		_, err := svc.Create(ctx, article(title, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	require.NoError(t, store.Set(ctx, news.Collection, "broken", docstore.Fields{"title": "no date"}))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0].Title)
	assert.Equal(t, "first", items[2].Title)
}

func TestNews_UpdateKeepsComments(t *testing.T) {
	ctx := context.Background()
	svc := news.NewService(memory.NewStore(), logger.Discard())

	n, err := svc.Create(ctx, article("draft", time.Now().UTC()))
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, n.ID, news.Comment{UserID: "u1", UserName: "Ada", Comment: "Nice"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, n.ID, &news.News{Title: "final", Author: "Editor", Detail: "Done"})
	require.NoError(t, err)
	assert.Equal(t, n.PostTime, updated.PostTime)

	got, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Title)
	assert.Len(t, got.Comments, 1)

	_, err = svc.Update(ctx, "missing", &news.News{Title: "x", Author: "y", Detail: "z"})
	assert.ErrorIs(t, err, news.ErrNewsNotFound)
}

func TestComments_AddListDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := news.NewService(store, logger.Discard())

	n, err := svc.Create(ctx, article("launch", time.Now().UTC()))
	require.NoError(t, err)

	first, err := svc.AddComment(ctx, n.ID, news.Comment{UserID: "u1", UserName: "Ada", Comment: "  First!  "})
	require.NoError(t, err)
	assert.Equal(t, "First!", first.Comment)
	assert.Equal(t, n.ID, first.NewsID)
	assert.NotEmpty(t, first.ID)

	time.Sleep(time.Millisecond)
	second, err := svc.AddComment(ctx, n.ID, news.Comment{UserID: "u2", UserName: "Bob", Comment: "Second"})
	require.NoError(t, err)

	listed, err := svc.ListComments(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)

	got, err := svc.GetComment(ctx, n.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)

	require.NoError(t, svc.DeleteComment(ctx, n.ID, first.ID))

	stored, err := svc.Get(ctx, n.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, second.ID, stored.Comments[0].ID)

	_, err = store.Get(ctx, news.CommentCollection, first.ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)

	_, err = svc.GetComment(ctx, n.ID, first.ID)
	assert.ErrorIs(t, err, news.ErrCommentNotFound)
}

func TestComments_Validation(t *testing.T) {
	ctx := context.Background()
	svc := news.NewService(memory.NewStore(), logger.Discard())

	_, err := svc.AddComment(ctx, "missing", news.Comment{UserID: "u1", Comment: "hi"})
	assert.ErrorIs(t, err, news.ErrNewsNotFound)

	n, err := svc.Create(ctx, article("launch", time.Now().UTC()))
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, n.ID, news.Comment{UserID: "u1", Comment: "   "})
	assert.ErrorIs(t, err, news.ErrInvalidComment)

	_, err = svc.AddComment(ctx, n.ID, news.Comment{Comment: "anonymous"})
	assert.ErrorIs(t, err, news.ErrInvalidComment)

	assert.ErrorIs(t, svc.DeleteComment(ctx, "missing", "c1"), news.ErrNewsNotFound)
}

func TestNews_DeleteRemovesComments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := news.NewService(store, logger.Discard())

	n, err := svc.Create(ctx, article("old", time.Now().UTC()))
	require.NoError(t, err)
	c, err := svc.AddComment(ctx, n.ID, news.Comment{UserID: "u1", Comment: "bye"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, n.ID))

	_, err = store.Get(ctx, news.CommentCollection, c.ID)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, n.ID), news.ErrNewsNotFound)
}
