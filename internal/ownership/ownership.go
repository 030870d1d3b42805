// Package ownership はシークレットの所持による所有確認をセッションと組み合わせて提供する。
//
// リソース作成時に導出したシークレットをセッションに記録し、以降の変更要求では
// セッション上の記録、またはリクエストで提示されたシークレットで所有を確認する。
package ownership

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"event-rsvp-service/internal/domain"
	"event-rsvp-service/internal/shortid"
)

// SecretParam は編集URLでシークレットを渡すクエリパラメータ名。
const SecretParam = "secret"

// Session はリクエスト単位のセッションへのアクセスを表す。
type Session interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Contains(ctx context.Context, key string) (bool, error)
}

// Authority はシークレットの導出と検証を行う。
type Authority interface {
	Derive(id uuid.UUID) string
	Verify(id uuid.UUID, candidate string) bool
}

// Grant はリソース作成時に発行される所有権情報。
type Grant struct {
	ID        uuid.UUID
	EncodedID string
	Secret    string
	EditURL   string
}

// Service は所有権の付与と確認を行う。
type Service struct {
	authority Authority
	baseURL   string
}

// NewService は新しいServiceを生成する。baseURLは編集URLの接頭辞（例: https://example.com）。
func NewService(authority Authority, baseURL string) *Service {
	return &Service{
		authority: authority,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// SessionKey はidの所有記録を保存するセッションキーを返す。
func SessionKey(id uuid.UUID) string {
	return id.String() + "_owner_secret"
}

// Grant はidのシークレットをセッションに記録し、編集URLを返す。
// sessがnilの場合は記録せず、編集URLのみで所有を示す。
func (s *Service) Grant(ctx context.Context, sess Session, kind domain.ResourceKind, id uuid.UUID) (*Grant, error) {
	secret := s.authority.Derive(id)
	if sess != nil {
		if err := sess.Set(ctx, SessionKey(id), secret); err != nil {
			return nil, fmt.Errorf("storing owner secret: %w", err)
		}
	}
	return &Grant{
		ID:        id,
		EncodedID: shortid.Encode(id),
		Secret:    secret,
		EditURL:   s.EditURL(kind, id),
	}, nil
}

// EditURL はシークレットをクエリに含めた編集URLを返す。
func (s *Service) EditURL(kind domain.ResourceKind, id uuid.UUID) string {
	q := url.Values{SecretParam: {s.authority.Derive(id)}}
	return s.baseURL + kind.Path() + shortid.Encode(id) + "?" + q.Encode()
}

// Authorize はセッションに所有記録があるか、suppliedが正しいシークレットであればtrueを返す。
// suppliedで確認できた場合はセッションにも記録し、以降の提示を不要にする。
func (s *Service) Authorize(ctx context.Context, sess Session, id uuid.UUID, supplied string) (bool, error) {
	if sess != nil {
		ok, err := sess.Contains(ctx, SessionKey(id))
		if err != nil {
			return false, fmt.Errorf("reading owner secret: %w", err)
		}
		if ok {
			return true, nil
		}
	}

	if supplied == "" || !s.authority.Verify(id, supplied) {
		return false, nil
	}

	if sess != nil {
		if err := sess.Set(ctx, SessionKey(id), supplied); err != nil {
			return false, fmt.Errorf("storing owner secret: %w", err)
		}
	}
	return true, nil
}

// Require はAuthorizeがfalseの場合に domain.ErrUnauthorized を返す。
func (s *Service) Require(ctx context.Context, sess Session, id uuid.UUID, supplied string) error {
	ok, err := s.Authorize(ctx, sess, id, supplied)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}
