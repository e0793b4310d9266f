package orderdto

type PaymentLinkOutput struct {
	OrderID         string
	PaymentURL      string
	ProviderOrderID string
	Cached          bool
}

type WebhookOutcome string

const (
	OutcomeApplied WebhookOutcome = "applied"
	OutcomeStale   WebhookOutcome = "stale"
	OutcomeIgnored WebhookOutcome = "ignored"
)

type WebhookResult struct {
	Outcome WebhookOutcome
	OrderID string
	Reason  string
}

type CancelRedirectOutput struct {
	RedirectURL string
	Cancelled   bool
}
