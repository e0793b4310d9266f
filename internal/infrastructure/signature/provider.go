package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
)

// ProviderFields are the signed parts of a provider webhook.
type ProviderFields struct {
	MerchantID string
	OrderID    string
	Status     string
	Timestamp  string
	Comments   string
	TxHash     string
	Signature  string
}

// ProviderTxHash is MD5 over the upper-cased concatenation of the signed fields.
func ProviderTxHash(f ProviderFields) string {
	data := strings.ToUpper(f.MerchantID + f.OrderID + f.Status + f.Timestamp + f.Comments)
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}

// ProviderSignature is the hex HMAC-SHA256 of txHash under the merchant secret.
func ProviderSignature(txHash, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(txHash))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyProviderWebhook recomputes txHash and signature and compares both in
// constant time. Both comparisons always run.
func VerifyProviderWebhook(f ProviderFields, secret string) error {
	txHash := ProviderTxHash(f)
	sig := ProviderSignature(txHash, secret)

	hashOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(f.TxHash)), []byte(txHash))
	sigOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(f.Signature)), []byte(sig))
	if hashOK&sigOK != 1 || secret == "" {
		return domain.ErrSignatureInvalid
	}
	return nil
}

// unknownMerchantSecret keys the verification run for merchants that do not
// exist so the miss costs the same as a real check.
const unknownMerchantSecret = "paylater-unknown-merchant"

// BurnProviderCheck performs a verification whose result is discarded.
func BurnProviderCheck(f ProviderFields) {
	_ = VerifyProviderWebhook(f, unknownMerchantSecret)
}
