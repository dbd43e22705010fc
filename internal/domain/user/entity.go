// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"gorm.io/gorm"
)

// Collections
const (
	Collection     = "users"
	RoleCollection = "roles"
)

// DefaultAvatar is shown for users that never uploaded a picture
const DefaultAvatar = "https://i.pinimg.com/736x/d9/7b/bb/d97bbb08017ac2309307f0822e63d082.jpg"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrRoleNotFound       = errors.New("user role not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Profile is the public user document. It never holds a password.
type Profile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image,omitempty"`
	Email       string    `json:"email"`
	Address     string    `json:"address,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Credential is the login principal kept in the relational auth store
type Credential struct {
	UserID       string    `gorm:"primaryKey;size:36" json:"user_id"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the table name for Credential
func (Credential) TableName() string {
	return "credentials"
}

// BeforeCreate lowercases the email before insert
func (c *Credential) BeforeCreate(tx *gorm.DB) error {
	c.Email = normalizeEmail(c.Email)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Profile) toFields() docstore.Fields {
	fields := docstore.Fields{
		"name":      p.Name,
		"email":     p.Email,
		"createdAt": p.CreatedAt.UTC(),
	}
	if p.Image != "" {
		fields["image"] = p.Image
	}
	if p.Address != "" {
		fields["address"] = p.Address
	}
	if p.PhoneNumber != "" {
		fields["phoneNumber"] = p.PhoneNumber
	}
	return fields
}

func decodeProfile(doc docstore.Document) (*Profile, error) {
	d := docstore.NewDecoder(Collection, doc)
	p := &Profile{ID: doc.ID}

	var err error
	if p.Name, err = d.String("name"); err != nil {
		return nil, err
	}
	if p.Email, err = d.OptString("email"); err != nil {
		return nil, err
	}
	if p.Image, err = d.OptString("image"); err != nil {
		return nil, err
	}
	if p.Address, err = d.OptString("address"); err != nil {
		return nil, err
	}
	if p.PhoneNumber, err = d.OptString("phoneNumber"); err != nil {
		return nil, err
	}
	if d.Has("createdAt") {
		if p.CreatedAt, err = d.Time("createdAt"); err != nil {
			return nil, err
		}
	}
	return p, nil
}
