// Package signature проверяет подписи вебхуков платежного шлюза.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Compute вычисляет base64-подпись HMAC-SHA256 для тела запроса.
func Compute(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify сверяет подпись из заголовка с подписью сырого тела запроса.
// Сравнение выполняется за постоянное время.
func Verify(body []byte, header, secret string) bool {
	if header == "" {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(expected, mac.Sum(nil))
}
