package jwt

import (
	"errors"

	libJWT "github.com/golang-jwt/jwt/v5"
)

// Symmetric signs assertions with HS256.
type Symmetric struct {
	cfg Config
}

// NewHS256 constructs a Symmetric signer.
func NewHS256(cfg Config) (*Symmetric, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSigningKeyEmpty
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultAssertionTTL
	}

	return &Symmetric{cfg: cfg}, nil
}

func (s *Symmetric) Sign() (string, error) {
	now := s.cfg.Clock.Now()

	claims := Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Issuer:    s.cfg.ClientID,
			Subject:   s.cfg.ClientID,
			Audience:  libJWT.ClaimStrings{s.cfg.Audience},
			IssuedAt:  libJWT.NewNumericDate(now),
			ExpiresAt: libJWT.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}
	if s.cfg.UUID != nil {
		claims.ID = s.cfg.UUID.Generate()
	}

	return libJWT.NewWithClaims(libJWT.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

func (s *Symmetric) Verify(tokenStr string) (Claims, error) {
	var claims Claims

	token, err := libJWT.ParseWithClaims(tokenStr, &claims,
		func(*libJWT.Token) (any, error) { return s.cfg.Secret, nil },
		libJWT.WithIssuer(s.cfg.ClientID),
		libJWT.WithSubject(s.cfg.ClientID),
		libJWT.WithAudience(s.cfg.Audience),
		libJWT.WithValidMethods([]string{libJWT.SigningMethodHS256.Alg()}),
		libJWT.WithExpirationRequired(),
		libJWT.WithTimeFunc(s.cfg.Clock.Now),
	)
	if err != nil {
		if errors.Is(err, libJWT.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
