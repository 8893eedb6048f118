package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID_Generate(t *testing.T) {
	g := NewUUID()

	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestSnowflake(t *testing.T) {
	_, err := NewSnowflake(5000)
	assert.Error(t, err)

	g, err := NewSnowflake(1)
	require.NoError(t, err)

	a, b := g.Generate(), g.Generate()
	assert.Positive(t, a)
	assert.Greater(t, b, a)
}
