package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Read("users.json")
	assert.ErrorIs(t, err, ErrNotExist)

	require.NoError(t, s.Save("users.json", []byte(`[{"id":"1"}]`)))
	require.NoError(t, s.Save("users.json", []byte(`[]`)))

	data, err := s.Read("users.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, s.Delete("users.json"))
	require.NoError(t, s.Delete("users.json"))
	_, err = s.Read("users.json")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, s.Save("../outside.json", []byte("x")))
	assert.Error(t, s.Save("/etc/passwd", []byte("x")))
}
