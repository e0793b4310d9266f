package notifier

type notificationPayload struct {
	AppID              string     `json:"app_id"`
	TemplateID         string     `json:"template_id"`
	IncludeEmailTokens []string   `json:"include_email_tokens"`
	CustomData         customData `json:"custom_data"`
}

type customData struct {
	User  userData  `json:"user"`
	Order orderData `json:"order"`
}

type userData struct {
	FullName string `json:"fullname"`
}

type orderData struct {
	OrderID       string `json:"orderid"`
	MerchantName  string `json:"merchantname"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	RemainingTime int    `json:"remainingtime,omitempty"`
	PaymentLink   string `json:"paymentlink,omitempty"`
	Status        string `json:"status"`
}

type notificationResponse struct {
	ID     string `json:"id"`
	Errors any    `json:"errors"`
}
