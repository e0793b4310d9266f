package request

import orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"

// ProviderWebhookRequest is the provider's payment status callback. Ids and
// the timestamp may arrive as JSON numbers.
type ProviderWebhookRequest struct {
	MerchantID orderdto.FlexString `json:"merchantId"`
	OrderID    orderdto.FlexString `json:"orderId"`
	Status     string              `json:"status"`
	Timestamp  orderdto.FlexString `json:"timestamp"`
	TxHash     string              `json:"txHash"`
	Signature  string              `json:"signature"`
	Comments   string              `json:"comments"`
}

func (r *ProviderWebhookRequest) ToInput() *orderdto.ProviderWebhookInput {
	return &orderdto.ProviderWebhookInput{
		MerchantID: r.MerchantID.String(),
		OrderID:    r.OrderID.String(),
		Status:     r.Status,
		Timestamp:  r.Timestamp.String(),
		TxHash:     r.TxHash,
		Signature:  r.Signature,
		Comments:   r.Comments,
	}
}

type CheckoutRequest struct {
	OrderID            orderdto.FlexString `json:"orderId"`
	Amount             orderdto.FlexString `json:"amount"`
	PaylaterMerchantID orderdto.FlexString `json:"paylaterMerchantId"`
	Currency           string              `json:"currency"`
	Email              string              `json:"email"`
	Fullname           string              `json:"fullname"`
}

func (r *CheckoutRequest) ToInput() *orderdto.CheckoutInput {
	return &orderdto.CheckoutInput{
		ProviderMerchantID: r.PaylaterMerchantID.String(),
		PlatformOrderID:    r.OrderID.String(),
		Amount:             r.Amount.String(),
		Currency:           r.Currency,
		CustomerEmail:      r.Email,
		CustomerName:       r.Fullname,
	}
}
