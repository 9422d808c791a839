package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := NewMemory()

	_, ok, err := m.GetString("access_token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.SetString("access_token", "jwt"))
	require.NoError(t, m.SetBool("biometric", true))

	v, ok, err := m.GetString("access_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jwt", v)

	b, ok, err := m.GetBool("biometric")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	_, _, err = m.GetBool("access_token")
	assert.Error(t, err)

	require.NoError(t, m.Remove("access_token"))
	_, ok, _ = m.GetString("access_token")
	assert.False(t, ok)

	require.NoError(t, m.Clear())
	_, ok, _ = m.GetBool("biometric")
	assert.False(t, ok)
}
