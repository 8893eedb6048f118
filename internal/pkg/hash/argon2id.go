package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id implements Hash using Argon2id in the PHC string format.
//
// Concurrent derivations are capped by a semaphore because each call holds
// memory KiB for its duration.
type Argon2id struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
	pepper      string
	sema        chan struct{}
}

type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// NewArgon2id returns an Argon2id hasher tuned for short-lived codes.
func NewArgon2id(pepper string) *Argon2id {
	return &Argon2id{
		memory:      16 * 1024,
		iterations:  2,
		parallelism: 2,
		saltLength:  16,
		keyLength:   32,
		pepper:      pepper,
		sema:        make(chan struct{}, 4),
	}
}

func (a *Argon2id) Hash(str string) ([]byte, error) {
	salt := make([]byte, a.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("hash: argon2id salt: %w", err)
	}

	key := a.derive(str, salt, a.iterations, a.memory, a.parallelism, a.keyLength)

	return fmt.Appendf(nil,
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.memory, a.iterations, a.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a *Argon2id) Verify(hashed, str string) bool {
	if hashed == "" || str == "" {
		return false
	}

	p, ok := parseArgon2id(hashed)
	if !ok {
		return false
	}

	computed := a.derive(str, p.salt, p.iterations, p.memory, p.parallelism, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(p.key, computed) == 1
}

func (a *Argon2id) derive(str string, salt []byte, t, m uint32, p uint8, n uint32) []byte {
	a.sema <- struct{}{}
	defer func() { <-a.sema }()

	return argon2.IDKey([]byte(str+a.pepper), salt, t, m, p, n)
}

func parseArgon2id(encoded string) (argon2Params, bool) {
	var p argon2Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, false
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, false
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, false
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return p, false
	}

	return p, true
}
