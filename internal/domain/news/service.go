// internal/domain/news/service.go
package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service handles news and comment business logic
type Service struct {
	store    docstore.Store
	logger   *logrus.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a new news service
func NewService(store docstore.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		logger:   logger,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CommentRequest represents a new comment
type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// List returns every article, newest first
func (s *Service) List(ctx context.Context) ([]News, error) {
	docs, err := s.store.Query(ctx, Collection, docstore.Query{OrderBy: "postTime", Dir: docstore.Desc})
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch news")
		return nil, fmt.Errorf("failed to retrieve news: %w", err)
	}

	items := make([]News, 0, len(docs))
	for _, doc := range docs {
		n, err := decodeNews(doc)
		if err != nil {
			s.logSkipped(Collection, doc.ID, err)
			continue
		}
		items = append(items, *n)
	}
	return items, nil
}

// Get retrieves a single article with its embedded comments
func (s *Service) Get(ctx context.Context, id string) (*News, error) {
	doc, err := s.store.Get(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNewsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve news: %w", err)
	}
	return decodeNews(doc)
}

// Create publishes an article with no comments
func (s *Service) Create(ctx context.Context, n *News) (*News, error) {
	if err := s.validate.Struct(n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNews, err)
	}
	if n.PostTime.IsZero() {
		n.PostTime = s.now()
	}

	fields := n.articleFields()
	fields["comments"] = []interface{}{}

	id, err := s.store.Add(ctx, Collection, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create news: %w", err)
	}
	n.ID = id
	n.Comments = []Comment{}

	s.logger.WithFields(logrus.Fields{
		"news_id": id,
		"title":   n.Title,
	}).Info("News created")
	return n, nil
}

// Update edits an article's text fields, leaving its comments alone
func (s *Service) Update(ctx context.Context, id string, n *News) (*News, error) {
	if err := s.validate.Struct(n); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNews, err)
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.PostTime.IsZero() {
		n.PostTime = existing.PostTime
	}

	if err := s.store.Update(ctx, Collection, id, n.articleFields()); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to update news: %w", err)
	}
	n.ID = id
	n.Comments = existing.Comments
	return n, nil
}

// Delete removes an article and its stored comments
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	comments, err := s.store.Query(ctx, CommentCollection, docstore.Where("newsId", id))
	if err != nil {
		return fmt.Errorf("failed to retrieve comments: %w", err)
	}
	for _, c := range comments {
		if err := s.store.Delete(ctx, CommentCollection, c.ID); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
	}

	if err := s.store.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("failed to delete news: %w", err)
	}
	return nil
}

// AddComment appends a comment to the article and records it in the comments collection
func (s *Service) AddComment(ctx context.Context, newsID string, c Comment) (*Comment, error) {
	c.Comment = strings.TrimSpace(c.Comment)
	if err := s.validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidComment, err)
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidComment)
	}
	if _, err := s.store.Get(ctx, Collection, newsID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve news: %w", err)
	}

	c.ID = uuid.New().String()
	c.NewsID = newsID
	c.Timestamp = s.now()

	if err := s.store.ArrayUnion(ctx, Collection, newsID, "comments", c.toFields()); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	if err := s.store.Set(ctx, CommentCollection, c.ID, c.toFields()); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"news_id":    newsID,
		"comment_id": c.ID,
		"user_id":    c.UserID,
	}).Info("Comment added")
	return &c, nil
}

// GetComment finds a comment, falling back to the article for comments
// that were only ever embedded
func (s *Service) GetComment(ctx context.Context, newsID, commentID string) (*Comment, error) {
	doc, err := s.store.Get(ctx, CommentCollection, commentID)
	if err == nil {
		c, err := decodeComment(docstore.NewDecoder(CommentCollection, doc), doc.ID)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to retrieve comment: %w", err)
	}

	article, err := s.Get(ctx, newsID)
	if err != nil {
		return nil, err
	}
	for _, c := range article.Comments {
		if c.ID == commentID {
			return &c, nil
		}
	}
	return nil, ErrCommentNotFound
}

// DeleteComment removes the comment from the article and the comments collection
func (s *Service) DeleteComment(ctx context.Context, newsID, commentID string) error {
	err := s.store.ArrayRemove(ctx, Collection, newsID, "comments", docstore.Fields{"id": commentID})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNewsNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove comment: %w", err)
	}
	if err := s.store.Delete(ctx, CommentCollection, commentID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// ListComments returns an article's comments, oldest first
func (s *Service) ListComments(ctx context.Context, newsID string) ([]Comment, error) {
	q := docstore.Where("newsId", newsID)
	q.OrderBy = "timestamp"
	q.Dir = docstore.Asc

	docs, err := s.store.Query(ctx, CommentCollection, q)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve comments: %w", err)
	}

	comments := make([]Comment, 0, len(docs))
	for _, doc := range docs {
		c, err := decodeComment(docstore.NewDecoder(CommentCollection, doc), doc.ID)
		if err != nil {
			s.logSkipped(CommentCollection, doc.ID, err)
			continue
		}
		comments = append(comments, c)
	}
	return comments, nil
}

func (s *Service) logSkipped(collection, id string, err error) {
	entry := s.logger.WithError(err).WithFields(logrus.Fields{
		"collection": collection,
		"id":         id,
	})
	var de *docstore.DecodeError
	if errors.As(err, &de) {
		entry = entry.WithField("field", de.Field)
	}
	entry.Warn("Skipping malformed document")
}
