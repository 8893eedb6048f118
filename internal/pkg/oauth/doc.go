// Package oauth obtains bearer tokens for outbound provider calls.
//
// Three grant styles are supported: a JSON client-credentials request (SFMC),
// the JWT-bearer grant with an HS256 assertion, and the standard form-encoded
// client-credentials flow. Every source is wrapped in a Cache that reuses a
// token until fewer than the refresh margin remains before it expires.
package oauth
