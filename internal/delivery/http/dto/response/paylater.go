package response

type WebhookResponse struct {
	Status  string `json:"status"`
	OrderID string `json:"orderId,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type CheckoutResponse struct {
	OrderID         string `json:"orderId"`
	PaymentURL      string `json:"paymentUrl"`
	PaylaterOrderID string `json:"paylaterOrderId"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
