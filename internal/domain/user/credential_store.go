// internal/domain/user/credential_store.go
package user

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CredentialStore persists login principals through gorm
type CredentialStore struct {
	db *gorm.DB
}

// NewCredentialStore creates a new credential store
func NewCredentialStore(db *gorm.DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Create inserts a credential, failing with ErrEmailTaken on a duplicate email
func (s *CredentialStore) Create(c *Credential) error {
	if _, err := s.FindByEmail(c.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// FindByEmail looks a credential up by its (case-insensitive) email
func (s *CredentialStore) FindByEmail(email string) (*Credential, error) {
	var c Credential
	err := s.db.Where("email = ?", normalizeEmail(email)).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return &c, nil
}

// FindByID looks a credential up by user id
func (s *CredentialStore) FindByID(userID string) (*Credential, error) {
	var c Credential
	err := s.db.Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	return &c, nil
}

// UpdatePassword stores a new password hash
func (s *CredentialStore) UpdatePassword(userID, hash string) error {
	return s.updateColumn(userID, "password_hash", hash)
}

// UpdateEmail changes the login email
func (s *CredentialStore) UpdateEmail(userID, email string) error {
	email = normalizeEmail(email)
	existing, err := s.FindByEmail(email)
	if err == nil && existing.UserID != userID {
		return ErrEmailTaken
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	return s.updateColumn(userID, "email", email)
}

func (s *CredentialStore) updateColumn(userID, column string, value interface{}) error {
	result := s.db.Model(&Credential{}).Where("user_id = ?", userID).Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update credential: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a credential. Deleting a missing credential is not an error.
func (s *CredentialStore) Delete(userID string) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&Credential{}).Error; err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// Ping checks the auth database connection
func (s *CredentialStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
