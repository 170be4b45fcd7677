package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyOrderSignature(t *testing.T) {
	secret := "test-secret"
	good := sign("order_123|pay_456", secret)

	if !VerifyOrderSignature("order_123", "pay_456", good, secret) {
		t.Error("valid signature rejected")
	}
	if VerifyOrderSignature("order_123", "pay_456", good, "other-secret") {
		t.Error("signature accepted with wrong secret")
	}
	if VerifyOrderSignature("order_999", "pay_456", good, secret) {
		t.Error("signature accepted for a different order")
	}
	if VerifyOrderSignature("order_123", "pay_456", "", secret) {
		t.Error("empty signature accepted")
	}
}

func TestVerifyLinkSignature(t *testing.T) {
	secret := "test-secret"
	good := sign("plink_1|svc_1:multitrack|paid|pay_9", secret)

	if !VerifyLinkSignature("plink_1", "svc_1:multitrack", "paid", "pay_9", good, secret) {
		t.Error("valid signature rejected")
	}
	if VerifyLinkSignature("plink_1", "svc_1:multitrack", "expired", "pay_9", good, secret) {
		t.Error("signature accepted with altered status")
	}
	if VerifyLinkSignature("plink_1", "svc_2:multitrack", "paid", "pay_9", good, secret) {
		t.Error("signature accepted with altered reference")
	}
}
