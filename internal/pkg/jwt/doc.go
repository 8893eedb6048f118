// Package jwt signs and verifies the short-lived HS256 assertions used for
// the OAuth 2.0 JWT-bearer grant (RFC 7523).
package jwt
