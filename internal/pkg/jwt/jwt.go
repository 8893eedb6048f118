package jwt

import (
	"errors"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSigningKeyEmpty is returned when no HMAC secret is configured.
	ErrSigningKeyEmpty = errors.New("jwt: signing key is empty")

	// ErrTokenExpired is returned when the assertion has expired.
	ErrTokenExpired = errors.New("jwt: token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// DefaultAssertionTTL is how long a signed assertion stays valid.
const DefaultAssertionTTL = 5 * time.Minute

// Signer produces and checks client assertions.
type Signer interface {
	// Sign returns an assertion whose issuer and subject are the client id.
	Sign() (string, error)
	// Verify parses and validates an assertion issued by this signer.
	Verify(token string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

// Config defines the inputs for building a Signer.
type Config struct {
	// Secret is the HMAC signing key.
	Secret []byte
	// ClientID is used as both issuer and subject.
	ClientID string
	// Audience is the authorization server that consumes the assertion.
	Audience string
	// TTL defaults to DefaultAssertionTTL.
	TTL time.Duration
	// Clock provides the current time source.
	Clock clocker
	// UUID generates token ids; optional.
	UUID generator
}

// Claims are the registered claims of an assertion.
type Claims struct {
	libJWT.RegisteredClaims
}
