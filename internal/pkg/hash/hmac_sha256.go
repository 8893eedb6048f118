package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HMACSHA256 stores the hex-encoded HMAC-SHA256 of the value keyed by a secret.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new keyed hasher.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{secret: []byte(secret)}
}

func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return []byte(hex.EncodeToString(s.mac(str))), nil
}

func (s *HMACSHA256) Verify(hashed, str string) bool {
	got, err := hex.DecodeString(hashed)
	if err != nil {
		return false
	}
	return hmac.Equal(got, s.mac(str))
}

func (s *HMACSHA256) mac(str string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(str))
	return h.Sum(nil)
}
