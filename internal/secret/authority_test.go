package secret

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-rsvp-service/internal/domain"
)

const testKey = "test-server-key"

func newTestAuthority(t *testing.T) *Authority {
	t.Helper()
	a, err := NewAuthority([]byte(testKey))
	require.NoError(t, err)
	return a
}

func TestNewAuthority_EmptyKey(t *testing.T) {
	a, err := NewAuthority(nil)
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Nil(t, a)

	_, err = NewAuthority([]byte{})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestDerive_KnownValues(t *testing.T) {
	a := newTestAuthority(t)

	// sha256("<uuid>" + "test-server-key")
	assert.Equal(t,
		"278155243c1e100cca4496ee87d0677817a141ee9b929f21a6b789ce13930157",
		a.Derive(uuid.Nil))
	assert.Equal(t,
		"b98566c147298ce47cfcc8dca7e1317da4348422cb33e425b7ee6fb7868fe5bb",
		a.Derive(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")))
}

func TestDerive_Deterministic(t *testing.T) {
	a := newTestAuthority(t)
	for i := 0; i < 100; i++ {
		id := uuid.New()
		first := a.Derive(id)
		require.Equal(t, first, a.Derive(id))
		require.Len(t, first, Length)
		require.Equal(t, strings.ToLower(first), first)
	}
}

func TestDerive_DependsOnKey(t *testing.T) {
	a := newTestAuthority(t)
	b, err := NewAuthority([]byte("another-key"))
	require.NoError(t, err)

	id := uuid.New()
	assert.NotEqual(t, a.Derive(id), b.Derive(id))
}

func TestNewAuthority_CopiesKey(t *testing.T) {
	key := []byte(testKey)
	a, err := NewAuthority(key)
	require.NoError(t, err)
	id := uuid.New()
	before := a.Derive(id)

	key[0] = 'X'
	assert.Equal(t, before, a.Derive(id))
}

func TestVerify(t *testing.T) {
	a := newTestAuthority(t)
	id := uuid.New()
	s := a.Derive(id)

	assert.True(t, a.Verify(id, s))
	assert.False(t, a.Verify(id, ""))
	assert.False(t, a.Verify(id, strings.ToUpper(s)))
	assert.False(t, a.Verify(id, s[:Length-1]))
	assert.False(t, a.Verify(id, s+"0"))
	assert.False(t, a.Verify(uuid.New(), s))

	random := make([]byte, 32)
	_, err := rand.Read(random)
	require.NoError(t, err)
	assert.False(t, a.Verify(id, hex.EncodeToString(random)))
}
