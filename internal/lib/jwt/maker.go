// Package jwt issues and parses the signed session tokens that carry an
// authenticated owner between requests.
package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the token payload. The subject is the owner id in decimal and the
// registered ID is a random token id used for revocation.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// OwnerID decodes the subject claim.
func (c *Claims) OwnerID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Maker describes token generation and parsing.
type Maker interface {
	GenerateToken(ownerID int64, name string) (string, *Claims, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl signs tokens with HS256 and a shared secret.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker returns a MakerImpl for the given secret and token lifetime.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}

// GenerateToken returns a signed token for the owner together with its claims.
func (j *MakerImpl) GenerateToken(ownerID int64, name string) (string, *Claims, error) {
	const op = "jwt.GenerateToken"
	now := j.now()
	claims := &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(ownerID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.secretKey))
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, claims, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func (j *MakerImpl) ParseToken(tokenStr string) (*Claims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if _, err := claims.OwnerID(); err != nil {
		return nil, fmt.Errorf("%s: bad subject: %w", op, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("missing token id"))
	}
	return claims, nil
}
