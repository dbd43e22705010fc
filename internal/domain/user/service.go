// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/furnishop/furniture-backend/internal/config"
	"github.com/furnishop/furniture-backend/internal/pkg/auth"
	"github.com/furnishop/furniture-backend/internal/pkg/docstore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service handles registration, login and profile logic
type Service struct {
	store           docstore.Store
	credentials     *CredentialStore
	revocations     auth.RevocationList
	config          *config.Config
	logger          *logrus.Logger
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service. revocations may be nil, which disables logout.
func NewService(store docstore.Store, credentials *CredentialStore, revocations auth.RevocationList, logger *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:           store,
		credentials:     credentials,
		revocations:     revocations,
		config:          cfg,
		logger:          logger,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
	Image       string `json:"image"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ProfileUpdate is a partial profile edit. Unknown keys such as password are ignored.
type ProfileUpdate struct {
	Name        *string `json:"name"`
	Image       *string `json:"image"`
	Address     *string `json:"address"`
	PhoneNumber *string `json:"phoneNumber"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangeEmailRequest represents an email change, confirmed with the password
type ChangeEmailRequest struct {
	Password string `json:"password" binding:"required"`
	NewEmail string `json:"new_email" binding:"required,email"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *Profile `json:"user"`
	Role         string   `json:"role"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
}

// Register creates the credential, the profile document and the default role
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	cred := &Credential{
		UserID:       uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.credentials.Create(cred); err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:          cred.UserID,
		Name:        strings.TrimSpace(req.Name),
		Email:       cred.Email,
		Image:       req.Image,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Set(ctx, Collection, profile.ID, profile.toFields()); err != nil {
		s.rollbackCredential(cred.UserID)
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	if _, err := s.store.Add(ctx, RoleCollection, docstore.Fields{
		"userId":   profile.ID,
		"roleName": auth.RoleUser,
	}); err != nil {
		s.rollbackCredential(cred.UserID)
		_ = s.store.Delete(ctx, Collection, profile.ID)
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": profile.ID,
		"email":   profile.Email,
	}).Info("User registered")

	return s.issueTokens(profile.ID, cred.Email, auth.RoleUser, profile)
}

func (s *Service) rollbackCredential(userID string) {
	if err := s.credentials.Delete(userID); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Failed to roll back credential")
	}
}

// Login checks the password and the user's role, then issues tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	cred, err := s.credentials.FindByEmail(req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.passwordManager.VerifyPassword(req.Password, cred.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	role, err := s.LookupRole(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, cred.UserID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": cred.UserID,
		"role":    role,
	}).Info("User logged in")

	return s.issueTokens(cred.UserID, cred.Email, role, profile)
}

// Refresh exchanges a refresh token for a new token pair. The old refresh token is revoked.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check token: %w", err)
		}
		if revoked {
			return nil, auth.ErrTokenRevoked
		}
	}

	cred, err := s.credentials.FindByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	role, err := s.LookupRole(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	profile, err := s.GetProfile(ctx, cred.UserID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	resp, err := s.issueTokens(cred.UserID, cred.Email, role, profile)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, claims)
	return resp, nil
}

// Logout revokes the access token in use and, when given, the refresh token
func (s *Service) Logout(ctx context.Context, access *auth.Claims, refreshToken string) error {
	if s.revocations == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, access.ID, access.RemainingTTL()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if refreshToken == "" {
		return nil
	}
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	if claims.UserID != access.UserID {
		return ErrInvalidToken
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Service) revoke(ctx context.Context, claims *auth.Claims) {
	if s.revocations == nil {
		return
	}
	if err := s.revocations.Revoke(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.WithError(err).WithField("user_id", claims.UserID).Warn("Failed to revoke refresh token")
	}
}

func (s *Service) issueTokens(userID, email, role string, profile *Profile) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(userID, email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         profile,
		Role:         role,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}

// LookupRole returns the user's role name from the roles collection
func (s *Service) LookupRole(ctx context.Context, userID string) (string, error) {
	q := docstore.Where("userId", userID)
	q.Limit = 1
	docs, err := s.store.Query(ctx, RoleCollection, q)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve role: %w", err)
	}
	if len(docs) == 0 {
		return "", ErrRoleNotFound
	}
	role, err := docstore.NewDecoder(RoleCollection, docs[0]).String("roleName")
	if err != nil {
		return "", err
	}
	return role, nil
}

// GetProfile gets a user profile by id
func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	doc, err := s.store.Get(ctx, Collection, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve profile: %w", err)
	}
	return decodeProfile(doc)
}

// UpdateProfile applies the fields present in update
func (s *Service) UpdateProfile(ctx context.Context, userID string, update *ProfileUpdate) (*Profile, error) {
	fields := docstore.Fields{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrNoFieldsToUpdate)
		}
		fields["name"] = name
	}
	if update.Image != nil {
		fields["image"] = *update.Image
	}
	if update.Address != nil {
		fields["address"] = *update.Address
	}
	if update.PhoneNumber != nil {
		fields["phoneNumber"] = *update.PhoneNumber
	}
	if len(fields) == 0 {
		return nil, ErrNoFieldsToUpdate
	}

	err := s.store.Update(ctx, Collection, userID, fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

// ChangePassword changes the credential password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	cred, err := s.credentials.FindByID(userID)
	if err != nil {
		return err
	}
	if err := s.passwordManager.VerifyPassword(req.CurrentPassword, cred.PasswordHash); err != nil {
		return ErrIncorrectPassword
	}

	hash, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.credentials.UpdatePassword(userID, hash); err != nil {
		return err
	}

	s.logger.WithField("user_id", userID).Info("Password changed")
	return nil
}

// ChangeEmail changes the login email after verifying the password
func (s *Service) ChangeEmail(ctx context.Context, userID string, req *ChangeEmailRequest) error {
	cred, err := s.credentials.FindByID(userID)
	if err != nil {
		return err
	}
	if err := s.passwordManager.VerifyPassword(req.Password, cred.PasswordHash); err != nil {
		return ErrIncorrectPassword
	}
	if err := s.credentials.UpdateEmail(userID, req.NewEmail); err != nil {
		return err
	}

	s.logger.WithField("user_id", userID).Info("Login email changed")
	return nil
}

// EnsureAdmin registers the account when the email is unknown and grants it the admin role.
// The password of an existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (string, error) {
	var userID string
	cred, err := s.credentials.FindByEmail(email)
	switch {
	case err == nil:
		userID = cred.UserID
	case errors.Is(err, ErrUserNotFound):
		resp, err := s.Register(ctx, &RegisterRequest{Name: name, Email: email, Password: password})
		if err != nil {
			return "", fmt.Errorf("failed to register admin: %w", err)
		}
		userID = resp.User.ID
	default:
		return "", err
	}

	if err := assignRole(ctx, s.store, userID, auth.RoleAdmin); err != nil {
		return "", err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"email":   normalizeEmail(email),
	}).Info("Admin account ensured")
	return userID, nil
}
