package ownership

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-rsvp-service/internal/domain"
	"event-rsvp-service/internal/secret"
	"event-rsvp-service/internal/shortid"
)

// mapSession はテスト用のセッション。
type mapSession struct {
	values map[string]string
	getErr error
	setErr error
	sets   int
}

func newMapSession() *mapSession {
	return &mapSession{values: make(map[string]string)}
}

func (m *mapSession) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapSession) Set(ctx context.Context, key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.values[key] = value
	return nil
}

func (m *mapSession) Contains(ctx context.Context, key string) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}

func newTestService(t *testing.T) (*Service, *secret.Authority) {
	t.Helper()
	a, err := secret.NewAuthority([]byte("test-server-key"))
	require.NoError(t, err)
	return NewService(a, "https://events.example.com/"), a
}

func TestSessionKey(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8_owner_secret", SessionKey(id))
}

func TestGrant(t *testing.T) {
	ctx := context.Background()
	svc, a := newTestService(t)
	sess := newMapSession()
	id := uuid.New()

	g, err := svc.Grant(ctx, sess, domain.ResourceKindEvent, id)
	require.NoError(t, err)

	assert.Equal(t, id, g.ID)
	assert.Equal(t, shortid.Encode(id), g.EncodedID)
	assert.Equal(t, a.Derive(id), g.Secret)
	assert.Equal(t, g.Secret, sess.values[SessionKey(id)])

	u, err := url.Parse(g.EditURL)
	require.NoError(t, err)
	assert.Equal(t, "events.example.com", u.Host)
	assert.Equal(t, "/v1/events/"+g.EncodedID, u.Path)
	assert.Equal(t, g.Secret, u.Query().Get(SecretParam))
}

func TestGrant_RSVPPath(t *testing.T) {
	svc, _ := newTestService(t)
	id := uuid.New()

	g, err := svc.Grant(context.Background(), newMapSession(), domain.ResourceKindRSVP, id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(g.EditURL, "https://events.example.com/v1/rsvps/"+shortid.Encode(id)+"?"))
}

func TestGrant_SessionError(t *testing.T) {
	svc, _ := newTestService(t)
	sess := newMapSession()
	sess.setErr = errors.New("store down")

	_, err := svc.Grant(context.Background(), sess, domain.ResourceKindEvent, uuid.New())
	require.Error(t, err)
}

func TestGrant_NoSession(t *testing.T) {
	svc, a := newTestService(t)
	id := uuid.New()

	g, err := svc.Grant(context.Background(), nil, domain.ResourceKindEvent, id)
	require.NoError(t, err)
	assert.Equal(t, a.Derive(id), g.Secret)
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()
	svc, a := newTestService(t)
	id := uuid.New()

	t.Run("correct secret without session data", func(t *testing.T) {
		sess := newMapSession()
		ok, err := svc.Authorize(ctx, sess, id, a.Derive(id))
		require.NoError(t, err)
		assert.True(t, ok)
		// 提示されたシークレットはセッションに記録される
		assert.Equal(t, a.Derive(id), sess.values[SessionKey(id)])
	})

	t.Run("incorrect secret", func(t *testing.T) {
		sess := newMapSession()
		ok, err := svc.Authorize(ctx, sess, id, a.Derive(uuid.New()))
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, sess.sets)
	})

	t.Run("empty secret", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, newMapSession(), id, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("session holds ownership key", func(t *testing.T) {
		sess := newMapSession()
		_, err := svc.Grant(ctx, sess, domain.ResourceKindEvent, id)
		require.NoError(t, err)

		for _, supplied := range []string{"", "wrong", a.Derive(id)} {
			ok, err := svc.Authorize(ctx, sess, id, supplied)
			require.NoError(t, err)
			assert.True(t, ok, "supplied=%q", supplied)
		}
	})

	t.Run("ownership of another resource does not carry over", func(t *testing.T) {
		sess := newMapSession()
		_, err := svc.Grant(ctx, sess, domain.ResourceKindEvent, uuid.New())
		require.NoError(t, err)

		ok, err := svc.Authorize(ctx, sess, id, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("no session", func(t *testing.T) {
		ok, err := svc.Authorize(ctx, nil, id, a.Derive(id))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = svc.Authorize(ctx, nil, id, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("session read error", func(t *testing.T) {
		sess := newMapSession()
		sess.getErr = errors.New("store down")
		ok, err := svc.Authorize(ctx, sess, id, a.Derive(id))
		require.Error(t, err)
		assert.False(t, ok)
	})
}

func TestRequire(t *testing.T) {
	ctx := context.Background()
	svc, a := newTestService(t)
	id := uuid.New()

	require.NoError(t, svc.Require(ctx, newMapSession(), id, a.Derive(id)))
	require.ErrorIs(t, svc.Require(ctx, newMapSession(), id, "nope"), domain.ErrUnauthorized)
}

// 作成 → 短縮IDとシークレットの受け取り → デコード → 検証 の一連の流れ
func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, a := newTestService(t)
	id := uuid.New()

	g, err := svc.Grant(ctx, newMapSession(), domain.ResourceKindEvent, id)
	require.NoError(t, err)

	decoded, err := shortid.Decode(g.EncodedID)
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
	assert.True(t, a.Verify(decoded, g.Secret))
	assert.False(t, a.Verify(decoded, a.Derive(uuid.New())))

	// 別ブラウザ（空のセッション）でも編集URLのシークレットで操作できる
	u, err := url.Parse(g.EditURL)
	require.NoError(t, err)
	ok, err := svc.Authorize(ctx, newMapSession(), decoded, u.Query().Get(SecretParam))
	require.NoError(t, err)
	assert.True(t, ok)
}
