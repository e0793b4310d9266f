package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
)

// SignPlatformBody returns the base64 HMAC-SHA256 of body under secret.
func SignPlatformBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyPlatformWebhook checks the platform's HMAC header against the exact
// raw request body.
func VerifyPlatformWebhook(rawBody []byte, headerB64, secret string) error {
	headerB64 = strings.TrimSpace(headerB64)
	if headerB64 == "" || secret == "" {
		return domain.ErrSignatureInvalid
	}
	got, err := base64.StdEncoding.DecodeString(headerB64)
	if err != nil {
		return domain.ErrSignatureInvalid
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return domain.ErrSignatureInvalid
	}
	return nil
}
