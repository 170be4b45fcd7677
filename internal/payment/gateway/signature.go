package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyOrderSignature checks the callback signature for the checkout flow.
// The gateway signs "orderID|paymentID" with the key secret; the comparison
// is constant time.
func VerifyOrderSignature(orderID, paymentID, signature, secret string) bool {
	return verify(orderID+"|"+paymentID, signature, secret)
}

// VerifyLinkSignature checks the callback signature for the payment-link
// flow, signed over "linkID|referenceID|status|paymentID".
func VerifyLinkSignature(linkID, referenceID, status, paymentID, signature, secret string) bool {
	return verify(linkID+"|"+referenceID+"|"+status+"|"+paymentID, signature, secret)
}

func verify(payload, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
