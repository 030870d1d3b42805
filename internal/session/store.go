// Package session はクライアント単位のサーバー側キーバリューセッションを提供する。
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionIDSize = 32

// ErrStoreUnavailable はセッションストアへアクセスできない場合のエラー。
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store はセッションIDごとのキーバリューを保持するバックエンド。
type Store interface {
	Get(ctx context.Context, sid, key string) (string, bool, error)
	Set(ctx context.Context, sid, key, value string) error
}

// NewID はランダムなセッションIDを生成する（base64url, パディング無し）。
func NewID() (string, error) {
	var b [sessionIDSize]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// ValidID はsidがNewIDで生成された形式か判定する。
func ValidID(sid string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(sid)
	return err == nil && len(raw) == sessionIDSize
}

// MemoryStore はプロセス内メモリにセッションを保持する。単一インスタンス・開発用。
// 期限切れのセッションはttlごとにSetの中でまとめて破棄する。
type MemoryStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
	sessions  map[string]*memorySession
}

type memorySession struct {
	values    map[string]string
	expiresAt time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore は新しいMemoryStoreを生成する。ttlは最終書き込みからの有効期間。
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

// Get はセッションの値を取得する。期限切れのセッションは破棄する。
func (s *MemoryStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sid]
	if !ok {
		return "", false, nil
	}
	if s.ttl > 0 && !s.now().Before(sess.expiresAt) {
		delete(s.sessions, sid)
		return "", false, nil
	}
	value, ok := sess.values[key]
	return value, ok, nil
}

// Set はセッションに値を書き込み、有効期限を延長する。
func (s *MemoryStore) Set(ctx context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()

	sess, ok := s.sessions[sid]
	if !ok || (s.ttl > 0 && !s.now().Before(sess.expiresAt)) {
		sess = &memorySession{values: make(map[string]string)}
		s.sessions[sid] = sess
	}
	sess.values[key] = value
	sess.expiresAt = s.now().Add(s.ttl)
	return nil
}

// sweep は前回からttl以上経過していれば期限切れのセッションを破棄する。s.muを保持して呼ぶ。
func (s *MemoryStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	if now.Sub(s.lastSweep) < s.ttl {
		return
	}
	for sid, sess := range s.sessions {
		if !now.Before(sess.expiresAt) {
			delete(s.sessions, sid)
		}
	}
	s.lastSweep = now
}

// RedisStore はRedisのハッシュにセッションを保持する。
// キーは "<prefix>:<sid>"、フィールドがセッションキーになる。
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore は新しいRedisStoreを生成する。
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "session"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sid string) string {
	return s.prefix + ":" + sid
}

// Get はセッションの値を取得する。
func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	value, err := s.client.HGet(ctx, s.key(sid), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, true, nil
}

// Set はセッションに値を書き込み、有効期限を延長する。
func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	k := s.key(sid)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
