// internal/domain/news/entity.go
package news

import (
	"errors"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
)

// Collections
const (
	Collection        = "news"
	CommentCollection = "comments"
)

var (
	ErrNewsNotFound    = errors.New("news not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidNews     = errors.New("invalid news")
	ErrInvalidComment  = errors.New("invalid comment")
)

// Comment is a reader's comment on a news article
type Comment struct {
	ID        string    `json:"id"`
	NewsID    string    `json:"news_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Comment   string    `json:"comment" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// News represents a news article
type News struct {
	ID       string    `json:"id"`
	Title    string    `json:"title" validate:"required"`
	Author   string    `json:"author" validate:"required"`
	Detail   string    `json:"detail" validate:"required"`
	PostTime time.Time `json:"post_time"`
	Image    string    `json:"image"`
	Comments []Comment `json:"comments"`
}

func (c *Comment) toFields() docstore.Fields {
	return docstore.Fields{
		"id":        c.ID,
		"newsId":    c.NewsID,
		"userId":    c.UserID,
		"userName":  c.UserName,
		"comment":   c.Comment,
		"timestamp": c.Timestamp.UTC(),
	}
}

// articleFields holds everything but the comments array
func (n *News) articleFields() docstore.Fields {
	return docstore.Fields{
		"title":    n.Title,
		"author":   n.Author,
		"detail":   n.Detail,
		"postTime": n.PostTime.UTC(),
		"image":    n.Image,
	}
}

func decodeNews(doc docstore.Document) (*News, error) {
	d := docstore.NewDecoder(Collection, doc)
	n := &News{ID: doc.ID}

	var err error
	if n.Title, err = d.String("title"); err != nil {
		return nil, err
	}
	if n.Author, err = d.OptString("author"); err != nil {
		return nil, err
	}
	if n.Detail, err = d.OptString("detail"); err != nil {
		return nil, err
	}
	if n.PostTime, err = d.Time("postTime"); err != nil {
		return nil, err
	}
	if n.Image, err = d.OptString("image"); err != nil {
		return nil, err
	}

	items, err := d.OptSlice("comments")
	if err != nil {
		return nil, err
	}
	n.Comments = make([]Comment, 0, len(items))
	for i, item := range items {
		cd, err := d.Element("comments", i, item)
		if err != nil {
			return nil, err
		}
		c, err := decodeComment(cd, "")
		if err != nil {
			return nil, err
		}
		if c.NewsID == "" {
			c.NewsID = doc.ID
		}
		n.Comments = append(n.Comments, c)
	}
	return n, nil
}

// decodeComment reads a comment either embedded in a news document or stored
// on its own, where id is the document id
func decodeComment(d *docstore.Decoder, id string) (Comment, error) {
	c := Comment{ID: id}

	var err error
	if c.ID == "" {
		if c.ID, err = d.String("id"); err != nil {
			return c, err
		}
	}
	if c.NewsID, err = d.OptString("newsId"); err != nil {
		return c, err
	}
	if c.UserID, err = d.String("userId"); err != nil {
		return c, err
	}
	if c.UserName, err = d.OptString("userName"); err != nil {
		return c, err
	}
	if c.Comment, err = d.String("comment"); err != nil {
		return c, err
	}
	if c.Timestamp, err = d.Time("timestamp"); err != nil {
		return c, err
	}
	return c, nil
}
