// Package session implements the authentication lifecycle: registration,
// login, refresh-rotation and logout. The refresh-token ledger in the database
// is the source of truth for revocation; issue is the single point that
// mutates it.
package session

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/newsphere/backend/internal/hash"
	"github.com/newsphere/backend/internal/httperr"
	"github.com/newsphere/backend/internal/models"
	"github.com/newsphere/backend/internal/tokens"
)

type Service struct {
	DB     *gorm.DB
	Tokens *tokens.Service
}

// TokenPair is a freshly signed access/refresh pair ready to be set as
// cookies.
type TokenPair struct {
	Access  string
	Refresh string
	JTI     string
}

func validateRegister(name, email, password string) map[string][]string {
	fields := map[string][]string{}
	if len(strings.TrimSpace(name)) < 2 {
		fields["name"] = append(fields["name"], "Name must be at least 2 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = append(fields["email"], "Invalid email address")
	}
	if len(password) < 6 {
		fields["password"] = append(fields["password"], "Password must be at least 6 characters")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Register creates a credential with a bcrypt-hashed password and default role
// USER, then opens a session chain for it.
func (s *Service) Register(ctx context.Context, name, email, password string) (*models.User, *TokenPair, error) {
	if fields := validateRegister(name, email, password); fields != nil {
		return nil, nil, httperr.Validation(fields)
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, nil, httperr.BadRequest("Email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, httperr.Internal(err)
	}

	passwordHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, nil, httperr.Internal(err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, nil, httperr.Internal(err)
	}

	pair, err := s.issue(ctx, user.ID, user.Role, user.Email, "")
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Login verifies the credential and opens a new session chain. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, httperr.Auth("Invalid credentials")
		}
		return nil, nil, httperr.Internal(err)
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, nil, httperr.Auth("Invalid credentials")
	}

	pair, err := s.issue(ctx, user.ID, user.Role, user.Email, "")
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Refresh rotates the session chain: the presented token must verify, be of
// refresh type, and pass every ledger invariant; its jti is revoked in the
// same transaction that records the replacement. Role and email are re-read
// from the store instead of trusting the old claims.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*models.User, *TokenPair, error) {
	claims, err := s.Tokens.Verify(rawRefresh)
	if err != nil {
		return nil, nil, httperr.Auth("Invalid or expired refresh token")
	}
	if claims.Type != tokens.TypeRefresh || claims.JTI == "" {
		return nil, nil, httperr.Auth("Invalid refresh token")
	}

	var record models.RefreshToken
	if err := s.DB.WithContext(ctx).Where("jti = ?", claims.JTI).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, httperr.Auth("Refresh token revoked/expired")
		}
		return nil, nil, httperr.Internal(err)
	}
	if record.Revoked || record.UserID != claims.UserID || time.Now().After(record.ExpiresAt) {
		return nil, nil, httperr.Auth("Refresh token revoked/expired")
	}

	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, httperr.Auth("User not found")
		}
		return nil, nil, httperr.Internal(err)
	}

	pair, err := s.issue(ctx, user.ID, user.Role, user.Email, claims.JTI)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Logout revokes the ledger record behind the presented refresh token.
// Malformed or expired tokens are ignored so logout stays idempotent.
func (s *Service) Logout(ctx context.Context, rawRefresh string) {
	if rawRefresh == "" {
		return
	}
	claims, err := s.Tokens.Verify(rawRefresh)
	if err != nil || claims.JTI == "" {
		return
	}
	s.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ? AND user_id = ? AND revoked = ?", claims.JTI, claims.UserID, false).
		Update("revoked", true)
}

// issue signs a new access/refresh pair and records the new jti in the
// ledger. When oldJTI is given, the prior record is revoked in the same
// transaction, so there is no window where both tokens are valid.
func (s *Service) issue(ctx context.Context, userID uint, role, email, oldJTI string) (*TokenPair, error) {
	jti := tokens.NewTokenID()

	access, err := s.Tokens.SignAccess(userID, role, email)
	if err != nil {
		return nil, httperr.Internal(err)
	}
	refresh, err := s.Tokens.SignRefresh(userID, role, email, jti)
	if err != nil {
		return nil, httperr.Internal(err)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if oldJTI != "" {
			if err := tx.Model(&models.RefreshToken{}).
				Where("jti = ? AND user_id = ? AND revoked = ?", oldJTI, userID, false).
				Update("revoked", true).Error; err != nil {
				return err
			}
		}
		return tx.Create(&models.RefreshToken{
			JTI:       jti,
			UserID:    userID,
			ExpiresAt: time.Now().Add(tokens.RefreshTTL),
			Revoked:   false,
		}).Error
	})
	if err != nil {
		return nil, httperr.Internal(err)
	}

	return &TokenPair{Access: access, Refresh: refresh, JTI: jti}, nil
}
