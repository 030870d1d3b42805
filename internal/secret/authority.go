// Package secret はリソースIDとサーバー鍵から所有者シークレットを導出・検証する。
//
// シークレットは保存されず、サーバー鍵を持つプロセスならいつでも再計算できる。
package secret

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"event-rsvp-service/internal/domain"
)

// Length はシークレット文字列の長さ（SHA-256の16進表現）。
const Length = sha256.Size * 2

// Authority はサーバー鍵を保持し、シークレットの導出と検証を行う。
// 生成後は読み取り専用のため、複数のgoroutineから同時に利用できる。
type Authority struct {
	key []byte
}

// NewAuthority はサーバー鍵からAuthorityを生成する。鍵が空の場合は設定エラー。
func NewAuthority(key []byte) (*Authority, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: server key is empty", domain.ErrConfiguration)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Authority{key: k}, nil
}

// Derive はidのシークレットを返す。
// SHA-256(idの正規文字列表現 || サーバー鍵) の小文字16進表現。
func (a *Authority) Derive(id uuid.UUID) string {
	h := sha256.New()
	h.Write([]byte(id.String()))
	h.Write(a.key)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify はcandidateがidのシークレットと一致するか定数時間で比較する。
func (a *Authority) Verify(id uuid.UUID, candidate string) bool {
	expected := a.Derive(id)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}
