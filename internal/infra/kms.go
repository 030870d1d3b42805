package infra

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"hash/crc32"

	kms "cloud.google.com/go/kms/apiv1"
	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"event-rsvp-service/internal/domain"
)

// ErrKMSIntegrity はKMSとの通信でチェックサムが一致しない場合のエラー。
var ErrKMSIntegrity = errors.New("kms integrity check failed")

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// kmsAPI はKMSClientが使うCloud KMS APIの範囲。
type kmsAPI interface {
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest, opts ...gax.CallOption) (*kmspb.DecryptResponse, error)
	Close() error
}

// KMSClient はサーバー鍵の復号に使うCloud KMSクライアント。
type KMSClient struct {
	client  kmsAPI
	keyName string
}

// NewKMSClient は指定された鍵名でKMSClientを生成する。
func NewKMSClient(ctx context.Context, keyName string) (*KMSClient, error) {
	if keyName == "" {
		return nil, fmt.Errorf("%w: KMS_KEY_NAME is required", domain.ErrConfiguration)
	}

	client, err := kms.NewKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating KMS client: %w", err)
	}
	return &KMSClient{client: client, keyName: keyName}, nil
}

func crc32c(b []byte) int64 {
	return int64(crc32.Checksum(b, crc32cTable))
}

// DecryptServerKey はbase64エンコードされた SECRET_KEY_CIPHERTEXT を復号する。
// 送受信の双方でCRC32Cを照合する。
func (c *KMSClient) DecryptServerKey(ctx context.Context, encoded string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: SECRET_KEY_CIPHERTEXT is not base64: %v", domain.ErrConfiguration, err)
	}

	resp, err := c.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:             c.keyName,
		Ciphertext:       ciphertext,
		CiphertextCrc32C: wrapperspb.Int64(crc32c(ciphertext)),
	})
	if err != nil {
		return nil, fmt.Errorf("decrypting server key: %w", err)
	}
	if resp.GetPlaintextCrc32C() == nil || resp.GetPlaintextCrc32C().GetValue() != crc32c(resp.GetPlaintext()) {
		return nil, fmt.Errorf("%w: plaintext checksum mismatch", ErrKMSIntegrity)
	}
	return resp.GetPlaintext(), nil
}

// Close はKMSクライアントを閉じる。
func (c *KMSClient) Close() error {
	return c.client.Close()
}
