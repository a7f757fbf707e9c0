// Package auth is the owner directory: registration, credential checks and
// the session tokens that carry an authenticated Principal between requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/psycontrol/internal/lib/jwt"
	"github.com/magabrotheeeer/psycontrol/internal/lib/sl"
	"github.com/magabrotheeeer/psycontrol/internal/models"
)

// OwnerRepository persists owners.
type OwnerRepository interface {
	CreateOwner(ctx context.Context, owner models.Owner) (int64, error)
	GetOwnerByLogin(ctx context.Context, login string) (*models.Owner, error)
}

// Hasher is the credential primitive. Verify must fail closed.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// maxSecretBytes is the longest secret bcrypt accepts.
const maxSecretBytes = 72

// Service implements the owner directory.
type Service struct {
	owners  OwnerRepository
	hasher  Hasher
	tokens  jwt.Maker
	revoked RevocationStore
	log     *slog.Logger
}

// New returns a Service. revoked may be nil, in which case Logout is a no-op
// and tokens stay valid until they expire.
func New(log *slog.Logger, owners OwnerRepository, hasher Hasher, tokens jwt.Maker, revoked RevocationStore) *Service {
	return &Service{
		owners:  owners,
		hasher:  hasher,
		tokens:  tokens,
		revoked: revoked,
		log:     log,
	}
}

// Register stores a new owner with a hashed secret and returns its id.
func (s *Service) Register(ctx context.Context, name, login, secret string) (int64, error) {
	const op = "auth.Register"

	switch {
	case strings.TrimSpace(name) == "":
		return 0, fmt.Errorf("%s: %w", op, models.Invalid("name", "must not be blank"))
	case strings.TrimSpace(login) == "":
		return 0, fmt.Errorf("%s: %w", op, models.Invalid("login", "must not be blank"))
	case strings.TrimSpace(secret) == "":
		return 0, fmt.Errorf("%s: %w", op, models.Invalid("password", "must not be blank"))
	case len(secret) > maxSecretBytes:
		return 0, fmt.Errorf("%s: %w", op, models.Invalid("password", "must be at most %d bytes", maxSecretBytes))
	}

	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.owners.CreateOwner(ctx, models.Owner{
		Name:           name,
		Login:          login,
		PasswordDigest: digest,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("owner registered", sl.Owner(id))
	return id, nil
}

// Authenticate checks the secret against the stored digest.
func (s *Service) Authenticate(ctx context.Context, login, secret string) (models.Principal, error) {
	const op = "auth.Authenticate"

	owner, err := s.owners.GetOwnerByLogin(ctx, login)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if !s.hasher.Verify(secret, owner.PasswordDigest) {
		return models.Principal{}, fmt.Errorf("%s: %w", op, models.ErrInvalidCredential)
	}
	return models.Principal{OwnerID: owner.ID, Name: owner.Name}, nil
}

// IssueToken signs a session token for the principal and returns it with its expiry.
func (s *Service) IssueToken(principal models.Principal) (string, time.Time, error) {
	const op = "auth.IssueToken"

	token, claims, err := s.tokens.GenerateToken(principal.OwnerID, principal.Name)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// Resolve turns a session token back into its principal. Invalid, expired and
// revoked tokens yield ErrInvalidCredential.
func (s *Service) Resolve(ctx context.Context, token string) (models.Principal, error) {
	const op = "auth.Resolve"

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidCredential, err)
	}
	ownerID, err := claims.OwnerID()
	if err != nil {
		return models.Principal{}, fmt.Errorf("%s: %w: %w", op, models.ErrInvalidCredential, err)
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return models.Principal{}, fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
		}
		if revoked {
			return models.Principal{}, fmt.Errorf("%s: %w: token revoked", op, models.ErrInvalidCredential)
		}
	}

	return models.Principal{OwnerID: ownerID, Name: claims.Name}, nil
}

// Logout revokes the token until its natural expiry.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, models.ErrInvalidCredential, err)
	}
	if s.revoked == nil {
		return nil
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Errorf("%s: %w: %w", op, models.ErrStoreUnavailable, err)
	}

	ownerID, _ := claims.OwnerID()
	s.log.Info("owner logged out", sl.Owner(ownerID))
	return nil
}
