package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		algorithm string
		secret    string
		want      any
		wantErr   error
	}{
		{name: "disabled is plain", enabled: false, algorithm: "sha256", want: &Plain{}},
		{name: "default is sha256", enabled: true, algorithm: "", want: &SHA256{}},
		{name: "sha-256 alias", enabled: true, algorithm: "SHA-256", want: &SHA256{}},
		{name: "hmac", enabled: true, algorithm: "hmac-sha256", secret: "s3cr3t", want: &HMACSHA256{}},
		{name: "bcrypt", enabled: true, algorithm: "bcrypt", want: &Bcrypt{}},
		{name: "argon2id", enabled: true, algorithm: "argon2id", want: &Argon2id{}},
		{name: "unknown", enabled: true, algorithm: "md5", wantErr: ErrUnknownAlgorithm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.enabled, tt.algorithm, tt.secret)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestNew_HMACRequiresSecret(t *testing.T) {
	_, err := New(true, AlgorithmHMACSHA256, "")
	assert.Error(t, err)
}

func TestHashers_RoundTrip(t *testing.T) {
	hashers := map[string]Hash{
		"plain":    NewPlain(),
		"sha256":   NewSHA256(),
		"hmac":     NewHMACSHA256("secret"),
		"bcrypt":   NewBcrypt(4, "pepper"),
		"argon2id": NewArgon2id("pepper"),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			stored, err := h.Hash("004271")
			require.NoError(t, err)

			assert.True(t, h.Verify(string(stored), "004271"))
			assert.False(t, h.Verify(string(stored), "004272"))
			assert.False(t, h.Verify("", "004271"))
		})
	}
}

func TestSHA256_KnownDigest(t *testing.T) {
	got, err := NewSHA256().Hash("123456")
	require.NoError(t, err)
	assert.Equal(t, "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92", string(got))
}

func TestArgon2id_RejectsMalformed(t *testing.T) {
	h := NewArgon2id("")
	assert.False(t, h.Verify("$argon2i$v=19$m=1,t=1,p=1$AAAA$AAAA", "x"))
	assert.False(t, h.Verify("not-a-phc-string", "x"))
}
