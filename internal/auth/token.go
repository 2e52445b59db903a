// Package auth implements the authentication and authorization contract:
// issuing, verifying, and refreshing the signed tokens that identify an
// actor, and the single predicate deciding what an actor may do.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for any token that cannot be accepted:
// bad signature, malformed payload, expired beyond the refresh window, or
// a subject that is not a valid user id. Callers map it to a 401 without
// leaking which check failed.
var ErrInvalidToken = errors.New("invalid or expired authentication token")

// TokenService issues and validates HMAC-signed JWTs binding a user's
// identity. Verification is stateless and side-effect-free.
type TokenService struct {
	Secret        []byte        // HMAC signing key
	Issuer        string        // Value of the iss claim
	TTL           time.Duration // Lifetime of newly issued tokens
	RefreshWindow time.Duration // Grace period after expiry during which refresh is still allowed
}

// Issue creates a signed token asserting the given user's identity,
// valid from now until now+TTL.
func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// Verify validates the token's signature and expiry and returns the user id
// it asserts. Any failure is collapsed into ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (uuid.UUID, error) {
	claims, err := s.parse(tokenString, true)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return s.subject(claims)
}

// Refresh issues a renewed token for a still-valid token, or for an expired
// one whose expiry lies within the refresh window. The signature must always
// be valid; only the expiry check is relaxed.
func (s *TokenService) Refresh(tokenString string) (string, error) {
	claims, err := s.parse(tokenString, false)
	if err != nil {
		return "", ErrInvalidToken
	}

	if claims.ExpiresAt == nil {
		return "", ErrInvalidToken
	}
	if time.Since(claims.ExpiresAt.Time) > s.RefreshWindow {
		return "", ErrInvalidToken
	}

	userID, err := s.subject(claims)
	if err != nil {
		return "", err
	}
	return s.Issue(userID)
}

// parse checks the token signature and returns its registered claims.
// When checkExpiry is false the exp/nbf claims are not validated, which
// Refresh uses to accept recently expired tokens.
func (s *TokenService) parse(tokenString string, checkExpiry bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
	}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	// WithoutClaimsValidation skips the issuer check along with expiry, so
	// the refresh path repeats it here.
	if claims.Issuer != s.Issuer {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// subject parses the sub claim as a user id.
func (s *TokenService) subject(claims *jwt.RegisteredClaims) (uuid.UUID, error) {
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
