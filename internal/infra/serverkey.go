package infra

import (
	"context"
	"fmt"

	"event-rsvp-service/config"
	"event-rsvp-service/internal/domain"
)

// Decrypter は暗号化されたサーバー鍵を復号する。KMSClientが実装する。
type Decrypter interface {
	DecryptServerKey(ctx context.Context, encoded string) ([]byte, error)
}

// ResolveServerKey はシークレット導出用のサーバー鍵を決定する。
// SECRET_KEY が優先され、無ければ SECRET_KEY_CIPHERTEXT をdecで復号する。
func ResolveServerKey(ctx context.Context, cfg *config.Config, dec Decrypter) ([]byte, error) {
	if cfg.SecretKey != "" {
		return []byte(cfg.SecretKey), nil
	}
	if cfg.SecretKeyCiphertext == "" {
		return nil, fmt.Errorf("%w: server key is not configured", domain.ErrConfiguration)
	}
	if dec == nil {
		return nil, fmt.Errorf("%w: no decrypter for SECRET_KEY_CIPHERTEXT", domain.ErrConfiguration)
	}

	key, err := dec.DecryptServerKey(ctx, cfg.SecretKeyCiphertext)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: decrypted server key is empty", domain.ErrConfiguration)
	}
	return key, nil
}
