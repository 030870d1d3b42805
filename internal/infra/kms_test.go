package infra

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"event-rsvp-service/internal/domain"
)

// fakeKMS はテスト用のCloud KMS API。
type fakeKMS struct {
	plaintext   []byte
	plainCRC    *wrapperspb.Int64Value
	err         error
	req         *kmspb.DecryptRequest
	closeCalled bool
}

func (f *fakeKMS) Decrypt(ctx context.Context, req *kmspb.DecryptRequest, opts ...gax.CallOption) (*kmspb.DecryptResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	crc := f.plainCRC
	if crc == nil {
		crc = wrapperspb.Int64(crc32c(f.plaintext))
	}
	return &kmspb.DecryptResponse{Plaintext: f.plaintext, PlaintextCrc32C: crc}, nil
}

func (f *fakeKMS) Close() error {
	f.closeCalled = true
	return nil
}

const testKeyName = "projects/p/locations/global/keyRings/r/cryptoKeys/server-key"

func TestKMSClient_DecryptServerKey(t *testing.T) {
	fake := &fakeKMS{plaintext: []byte("server-key")}
	c := &KMSClient{client: fake, keyName: testKeyName}

	key, err := c.DecryptServerKey(context.Background(), base64.StdEncoding.EncodeToString([]byte("cipher")))
	if err != nil {
		t.Fatalf("DecryptServerKey failed: %v", err)
	}
	if string(key) != "server-key" {
		t.Errorf("want server-key, got %q", key)
	}
	if fake.req.GetName() != testKeyName || string(fake.req.GetCiphertext()) != "cipher" {
		t.Errorf("unexpected request: %v", fake.req)
	}
	if fake.req.GetCiphertextCrc32C().GetValue() != crc32c([]byte("cipher")) {
		t.Error("expected ciphertext checksum in request")
	}

	if err := c.Close(); err != nil || !fake.closeCalled {
		t.Errorf("expected Close to reach the client, err=%v", err)
	}
}

func TestKMSClient_DecryptServerKey_Errors(t *testing.T) {
	ctx := context.Background()
	cipher := base64.StdEncoding.EncodeToString([]byte("cipher"))

	c := &KMSClient{client: &fakeKMS{}, keyName: testKeyName}
	if _, err := c.DecryptServerKey(ctx, "%%%"); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("want ErrConfiguration for bad base64, got %v", err)
	}

	c = &KMSClient{client: &fakeKMS{plaintext: []byte("server-key"), plainCRC: wrapperspb.Int64(1)}, keyName: testKeyName}
	if _, err := c.DecryptServerKey(ctx, cipher); !errors.Is(err, ErrKMSIntegrity) {
		t.Errorf("want ErrKMSIntegrity for checksum mismatch, got %v", err)
	}

	apiErr := errors.New("permission denied")
	c = &KMSClient{client: &fakeKMS{err: apiErr}, keyName: testKeyName}
	if _, err := c.DecryptServerKey(ctx, cipher); !errors.Is(err, apiErr) {
		t.Errorf("want wrapped API error, got %v", err)
	}
}

func TestNewKMSClient_RequiresKeyName(t *testing.T) {
	if _, err := NewKMSClient(context.Background(), ""); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("want ErrConfiguration, got %v", err)
	}
}
