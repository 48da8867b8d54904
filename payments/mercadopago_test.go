package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signManifest(secret, dataID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValidHeader(t *testing.T) {
	client := NewMercadoPagoClient("token", "segredo")

	v1 := signManifest("segredo", "12345", "req-abc", "1704908010")
	header := fmt.Sprintf("ts=1704908010,v1=%s", v1)

	assert.NoError(t, client.VerifySignature(header, "req-abc", "12345"))
}

func TestVerifySignatureToleratesSpacing(t *testing.T) {
	client := NewMercadoPagoClient("token", "segredo")

	v1 := signManifest("segredo", "12345", "req-abc", "1704908010")
	header := fmt.Sprintf("ts=1704908010, v1=%s", v1)

	assert.NoError(t, client.VerifySignature(header, "req-abc", "12345"))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	client := NewMercadoPagoClient("token", "segredo")

	v1 := signManifest("segredo", "12345", "req-abc", "1704908010")
	header := fmt.Sprintf("ts=1704908010,v1=%s", v1)

	// Signed for a different payment id.
	assert.ErrorIs(t, client.VerifySignature(header, "req-abc", "99999"), ErrMercadoPagoSignature)
	// Signed with a different secret.
	other := NewMercadoPagoClient("token", "outro-segredo")
	assert.ErrorIs(t, other.VerifySignature(header, "req-abc", "12345"), ErrMercadoPagoSignature)
	// Timestamp swapped after signing.
	forged := fmt.Sprintf("ts=1704999999,v1=%s", v1)
	assert.ErrorIs(t, client.VerifySignature(forged, "req-abc", "12345"), ErrMercadoPagoSignature)
}

func TestVerifySignatureRejectsMalformedHeader(t *testing.T) {
	client := NewMercadoPagoClient("token", "segredo")

	assert.ErrorIs(t, client.VerifySignature("", "req-abc", "12345"), ErrMercadoPagoSignature)
	assert.ErrorIs(t, client.VerifySignature("ts=1704908010", "req-abc", "12345"), ErrMercadoPagoSignature)
	assert.ErrorIs(t, client.VerifySignature("garbage", "req-abc", "12345"), ErrMercadoPagoSignature)
}
