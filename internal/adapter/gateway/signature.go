package gateway

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignNotification computes the Midtrans notification signature:
// lowercase hex SHA512(order_id + status_code + gross_amount + server_key).
func SignNotification(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks signature in constant time.
func VerifySignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	if signature == "" {
		return false
	}
	expected := SignNotification(orderID, statusCode, grossAmount, serverKey)
	return hmac.Equal([]byte(expected), []byte(signature))
}
