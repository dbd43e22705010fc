// internal/domain/user/admin_service.go
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/furnishop/furniture-backend/internal/pkg/auth"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/sirupsen/logrus"
)

// ordersCollection is counted per user for the admin list
const ordersCollection = "orders"

// AdminService handles admin user management operations
type AdminService struct {
	store       docstore.Store
	credentials *CredentialStore
	logger      *logrus.Logger
}

// NewAdminService creates a new admin user service
func NewAdminService(store docstore.Store, credentials *CredentialStore, logger *logrus.Logger) *AdminService {
	return &AdminService{
		store:       store,
		credentials: credentials,
		logger:      logger,
	}
}

// UserWithStats represents a user as the admin list shows it
type UserWithStats struct {
	Profile
	Role       string `json:"role"`
	OrderCount int64  `json:"order_count"`
}

// RoleRequest represents a role change
type RoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// List returns every user with role and order count. Missing avatars get DefaultAvatar.
func (s *AdminService) List(ctx context.Context) ([]UserWithStats, error) {
	docs, err := s.store.Query(ctx, Collection, docstore.Query{})
	if err != nil {
		s.logger.WithError(err).Error("Failed to fetch users")
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	roles, err := s.roleNames(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]UserWithStats, 0, len(docs))
	for _, doc := range docs {
		p, err := decodeProfile(doc)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"collection": Collection,
				"id":         doc.ID,
			}).Warn("Skipping malformed user")
			continue
		}
		if p.Image == "" {
			p.Image = DefaultAvatar
		}

		count, err := s.store.Count(ctx, ordersCollection, docstore.Where("userId", p.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to count orders: %w", err)
		}
		users = append(users, UserWithStats{Profile: *p, Role: roles[p.ID], OrderCount: count})
	}
	return users, nil
}

func (s *AdminService) roleNames(ctx context.Context) (map[string]string, error) {
	docs, err := s.store.Query(ctx, RoleCollection, docstore.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve roles: %w", err)
	}

	roles := make(map[string]string, len(docs))
	for _, doc := range docs {
		d := docstore.NewDecoder(RoleCollection, doc)
		userID, err := d.String("userId")
		if err != nil {
			continue
		}
		name, err := d.String("roleName")
		if err != nil {
			continue
		}
		roles[userID] = name
	}
	return roles, nil
}

// Delete removes the profile, the role documents and the login credential
func (s *AdminService) Delete(ctx context.Context, userID string) error {
	if _, err := s.store.Get(ctx, Collection, userID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	roles, err := s.store.Query(ctx, RoleCollection, docstore.Where("userId", userID))
	if err != nil {
		return fmt.Errorf("failed to retrieve roles: %w", err)
	}
	for _, r := range roles {
		if err := s.store.Delete(ctx, RoleCollection, r.ID); err != nil {
			return fmt.Errorf("failed to delete role: %w", err)
		}
	}

	if err := s.store.Delete(ctx, Collection, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.credentials.Delete(userID); err != nil {
		return err
	}

	s.logger.WithField("user_id", userID).Info("User deleted")
	return nil
}

// SetRole changes the user's role, creating the role document when missing
func (s *AdminService) SetRole(ctx context.Context, userID, roleName string) error {
	if roleName != auth.RoleUser && roleName != auth.RoleAdmin {
		return fmt.Errorf("%w: %q", ErrInvalidRole, roleName)
	}
	if _, err := s.store.Get(ctx, Collection, userID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := assignRole(ctx, s.store, userID, roleName); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"role":    roleName,
	}).Info("User role changed")
	return nil
}

// assignRole rewrites every role document of the user, adding one when none exists
func assignRole(ctx context.Context, store docstore.Store, userID, roleName string) error {
	roles, err := store.Query(ctx, RoleCollection, docstore.Where("userId", userID))
	if err != nil {
		return fmt.Errorf("failed to retrieve roles: %w", err)
	}
	if len(roles) == 0 {
		if _, err := store.Add(ctx, RoleCollection, docstore.Fields{"userId": userID, "roleName": roleName}); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}
		return nil
	}
	for _, r := range roles {
		if err := store.Update(ctx, RoleCollection, r.ID, docstore.Fields{"roleName": roleName}); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
	}
	return nil
}
