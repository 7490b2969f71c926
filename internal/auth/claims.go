package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL applies when GenerateToken is given a non-positive TTL.
const DefaultTokenTTL = 12 * time.Hour

// CustomClaims extends JWT standard claims with the caller's role.
type CustomClaims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// GenerateToken creates a signed HS256 token for subject with the given role.
//
// Parameters:
//   - subject: Caller identity, e.g. "workshop-laptop" or a vehicle ID
//   - role: One of ValidRoles
//   - secret: Shared HMAC secret
//   - issuer: Written to the iss claim; ParseToken requires it to match
//   - ttl: Token lifetime; DefaultTokenTTL when zero
//
// Returns:
//   - string: Signed compact JWT
//   - error: ErrInvalidRole, ErrNoSecret or a signing failure
func GenerateToken(subject string, role Role, secret, issuer string, ttl time.Duration) (string, error) {
	if !IsValidRole(role) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if secret == "" {
		return "", ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ParseToken validates and parses a token, returning the custom claims.
// It checks the signature, expiry, issuer (when non-empty) and role.
func ParseToken(tokenString, secret, issuer string) (*CustomClaims, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	if !IsValidRole(claims.Role) {
		return nil, fmt.Errorf("%w: role %q", ErrTokenInvalid, claims.Role)
	}

	return claims, nil
}
