// Package auth registers accounts, issues bearer tokens and turns a
// presented token back into a request session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/finsave/internal/lib/jwt"
	"github.com/magabrotheeeer/finsave/internal/lib/password"
	"github.com/magabrotheeeer/finsave/internal/models"
)

// UserRepository is the part of the store auth needs.
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Hasher hashes and checks passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// Revocations is the token denylist.
type Revocations interface {
	RevokeToken(ctx context.Context, jti string, until time.Time) error
	TokenRevoked(ctx context.Context, jti string) (bool, error)
	UserRevokedAt(ctx context.Context, userID int64) (time.Time, bool, error)
}

// AuthService handles registration, login, logout and token checks.
type AuthService struct {
	users       UserRepository
	hasher      Hasher
	jwtMaker    jwt.Maker
	revocations Revocations
	log         *slog.Logger
}

// NewAuthService creates an AuthService. With nil revocations logout is a
// no-op and tokens stay valid until they expire.
func NewAuthService(users UserRepository, hasher Hasher, jwtMaker jwt.Maker, revocations Revocations, log *slog.Logger) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		jwtMaker:    jwtMaker,
		revocations: revocations,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) issue(u *models.User) (*models.AuthResult, error) {
	token, claims, err := s.jwtMaker.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{
		User:      u.Public(),
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Register creates an account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResult, error) {
	const op = "services.auth.Register"

	if !req.Role.Valid() {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("role", "The selected role is invalid."))
	}
	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hashed,
		Role:         req.Role,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			err = models.NewValidationError("email", "The email has already been taken.")
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.Int64("id", u.ID), slog.String("role", string(u.Role)))

	res, err := s.issue(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResult, error) {
	const op = "services.auth.Login"

	u, err := s.users.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// Logout revokes the token of the session until it expires.
func (s *AuthService) Logout(ctx context.Context, sess models.Session) error {
	const op = "services.auth.Logout"
	if s.revocations == nil {
		return nil
	}
	if err := s.revocations.RevokeToken(ctx, sess.TokenID, sess.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Authenticate verifies a bearer token and loads the current role of its
// user. Revoked tokens, tokens of revoked or deleted users and malformed
// tokens all yield models.ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrUnauthenticated, err)
	}

	if s.revocations != nil {
		revoked, err := s.revocations.TokenRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if revoked {
			return nil, fmt.Errorf("%s: token revoked: %w", op, models.ErrUnauthenticated)
		}
		at, found, err := s.revocations.UserRevokedAt(ctx, claims.UserID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if found && claims.IssuedAt != nil && !claims.IssuedAt.After(at) {
			return nil, fmt.Errorf("%s: user revoked: %w", op, models.ErrUnauthenticated)
		}
	}

	u, err := s.users.GetUser(ctx, claims.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%s: user gone: %w", op, models.ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sess := &models.Session{UserID: u.ID, Role: u.Role, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}
