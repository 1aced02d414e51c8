// Package auth implements Authentication & Session (§4.8): PBKDF2-HMAC-SHA256
// password storage, opaque bearer session tokens, and the requireUser /
// requireRegionAdmin authorization checks consumed by the HTTP layer.
// Ported from garpr's dao.py gen_password/verify_password and server.py
// auth_user, using server-side opaque session tokens rather than JWTs.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"bracketrank/internal/models"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
	"bracketrank/pkg/logger"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes   = 16
	tokenBytes  = 128
	keyLen      = 32
)

type Service struct {
	store      store.Store
	iterations int
}

func New(s store.Store, iterations int) *Service {
	return &Service{store: s, iterations: iterations}
}

func (s *Service) hash(password, salt string) (string, error) {
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return "", err
	}
	derived := pbkdf2.Key([]byte(password), saltBytes, s.iterations, keyLen, sha256.New)
	return base64.StdEncoding.EncodeToString(derived), nil
}

// CreateUser hashes password with a fresh random salt and persists the user.
// Used by cmd/createuser for out-of-band region-admin provisioning.
func (s *Service) CreateUser(ctx context.Context, username, password string, adminRegions []string, adminLevel models.AdminLevel) (*models.User, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Internal(err)
	}
	saltB64 := base64.StdEncoding.EncodeToString(salt)

	hashed, err := s.hash(password, saltB64)
	if err != nil {
		return nil, errors.Internal(err)
	}

	u := &models.User{
		Username:       username,
		Salt:           saltB64,
		HashedPassword: hashed,
		AdminRegions:   adminRegions,
		AdminLevel:     adminLevel,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, errors.Internal(err)
	}
	return u, nil
}

// Login verifies username/password with a constant-time comparison, issues
// a fresh 128-byte random token, and evicts any prior session for the user
// (§4.8: at most one Session per user, enforced by replacement on login).
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if u == nil {
		return nil, errors.Unauthorized("invalid username or password")
	}

	computed, err := s.hash(password, u.Salt)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if subtle.ConstantTimeCompare([]byte(computed), []byte(u.HashedPassword)) != 1 {
		return nil, errors.Unauthorized("invalid username or password")
	}

	tokenRaw := make([]byte, tokenBytes)
	if _, err := rand.Read(tokenRaw); err != nil {
		return nil, errors.Internal(err)
	}
	token := base64.StdEncoding.EncodeToString(tokenRaw)

	if err := s.store.DeleteSessionsForUser(ctx, u.Username); err != nil {
		return nil, errors.Internal(err)
	}

	session := &models.Session{ID: token, User: u.Username}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, errors.Internal(err)
	}
	logger.Info("login succeeded", "user", u.Username)
	return session, nil
}

// Logout deletes the session bound to token; logging out an unknown or
// already-expired token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return errors.Internal(err)
	}
	return nil
}

// RequireUser resolves a session token to its user, or fails Unauthorized.
func (s *Service) RequireUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, errors.Unauthorized("no session token provided")
	}
	session, err := s.store.GetSessionByID(ctx, token)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if session == nil {
		return nil, errors.Unauthorized("session not found or expired")
	}
	u, err := s.store.GetUserByUsername(ctx, session.User)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if u == nil {
		return nil, errors.Unauthorized("session references an unknown user")
	}
	return u, nil
}

// RequireRegionAdmin reports whether user is authorized to administer
// region: either a SUPER admin, or region is in their admin_regions set.
func RequireRegionAdmin(user *models.User, region string) error {
	if user.AdminLevel == models.AdminLevelSuper {
		return nil
	}
	for _, r := range user.AdminRegions {
		if r == region {
			return nil
		}
	}
	return errors.Forbidden("user is not an administrator for region: " + region)
}
