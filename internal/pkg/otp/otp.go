package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/pquerna/otp"
)

// Supported code lengths.
const (
	MinDigits = 4
	MaxDigits = 9
)

// ErrInvalidLength is returned for a length outside [MinDigits, MaxDigits].
var ErrInvalidLength = errors.New("otp: invalid code length")

// Generator creates numeric codes of a given length.
type Generator interface {
	Generate(length int) (string, error)
}

// Numeric draws uniformly random numeric codes.
type Numeric struct {
	reader io.Reader
}

// NewNumeric returns a Generator reading from crypto/rand.
func NewNumeric() *Numeric {
	return &Numeric{reader: rand.Reader}
}

// NewNumericFromReader is used by tests to get deterministic codes.
func NewNumericFromReader(r io.Reader) *Numeric {
	return &Numeric{reader: r}
}

// Generate returns a zero-padded code with exactly length digits.
func (n *Numeric) Generate(length int) (string, error) {
	if length < MinDigits || length > MaxDigits {
		return "", fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	v, err := rand.Int(n.reader, limit)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	return otp.Digits(length).Format(int32(v.Int64())), nil
}
