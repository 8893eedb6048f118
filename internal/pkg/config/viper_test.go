package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
otp:
  length: 6
  expiry: 300
  cooldown: 30
  hash:
    enabled: true
    algorithm: sha256
notification:
  sender:
    simulation:
      delay: 250
      failure_rate: 0.25
      timeout: 2s
kafka:
  brokers: "k1:9092, k2:9092,"
nats:
  servers:
    - nats://a:4222
    - nats://b:4222
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample), WithDefaults(map[string]any{
		"notification.dispatch.workers": 16,
		"otp.length":                    8,
		"app.server.cors":               []string{" * ", ""},
	}))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cfg.Close()) })

	assert.Equal(t, 6, cfg.GetInt("otp.length"))
	assert.Equal(t, 300*time.Second, cfg.GetSecond("otp.expiry"))
	assert.Equal(t, 250*time.Millisecond, cfg.GetMillisecond("notification.sender.simulation.delay"))
	assert.Equal(t, 2*time.Second, cfg.GetDuration("notification.sender.simulation.timeout"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("notification.sender.simulation.failure_rate"), 1e-9)
	assert.True(t, cfg.GetBool("otp.hash.enabled"))
	assert.Equal(t, "sha256", cfg.GetString("otp.hash.algorithm"))
	assert.Equal(t, 16, cfg.GetInt("notification.dispatch.workers"))
	assert.True(t, cfg.IsSet("notification.dispatch.workers"))
	assert.False(t, cfg.IsSet("missing.key"))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.GetArray("kafka.brokers"))
	assert.Equal(t, []string{"nats://a:4222", "nats://b:4222"}, cfg.GetArray("nats.servers"))
	assert.Equal(t, []string{"*"}, cfg.GetArray("app.server.cors"))
}

func TestViperFromBytes_Env(t *testing.T) {
	t.Setenv("GOTP_OTP_HASH_ALGORITHM", "bcrypt")

	cfg, err := NewViperFromBytes("yaml", []byte(sample), WithEnvPrefix("GOTP"))
	require.NoError(t, err)

	assert.Equal(t, "bcrypt", cfg.GetString("otp.hash.algorithm"))
}

func TestViperFromBytes_Errors(t *testing.T) {
	_, err := NewViperFromBytes("", []byte(sample))
	assert.Error(t, err)

	_, err = NewViperFromBytes("yaml", []byte("otp: [unterminated"))
	assert.Error(t, err)
}
