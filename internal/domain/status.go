package domain

import "strings"

type PlatformStatus string

const (
	PlatformPending   PlatformStatus = "pending"
	PlatformPaid      PlatformStatus = "paid"
	PlatformFulfilled PlatformStatus = "fulfilled"
	PlatformCancelled PlatformStatus = "cancelled"
	// Returned by the normalizer only, never stored on an order.
	PlatformAuthorized PlatformStatus = "authorized"
)

type ProviderStatus string

const (
	ProviderPending    ProviderStatus = "pending"
	ProviderAuthorized ProviderStatus = "authorized"
	ProviderPaid       ProviderStatus = "paid"
	ProviderFailed     ProviderStatus = "failed"
)

var platformStatuses = map[string]PlatformStatus{
	"paid":           PlatformPaid,
	"partially_paid": PlatformPaid,
	"voided":         PlatformCancelled,
	"refunded":       PlatformCancelled,
	"cancelled":      PlatformCancelled,
	"failed":         PlatformCancelled,
	"fulfilled":      PlatformFulfilled,
	"authorized":     PlatformAuthorized,
}

var providerStatuses = map[string]ProviderStatus{
	"success":   ProviderPaid,
	"paid":      ProviderPaid,
	"completed": ProviderPaid,
	"failed":    ProviderFailed,
	"cancelled": ProviderFailed,
	"error":     ProviderFailed,
}

// NormalizePlatformStatus maps a platform financial status onto the closed set.
// Unknown or empty input yields PlatformPending.
func NormalizePlatformStatus(raw string) PlatformStatus {
	if s, ok := platformStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return PlatformPending
}

// NormalizeProviderStatus maps a provider payment status onto the closed set.
// Unknown or empty input yields ProviderPending.
func NormalizeProviderStatus(raw string) ProviderStatus {
	if s, ok := providerStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return ProviderPending
}

// IsTerminal reports whether the payment track is finished.
func (s ProviderStatus) IsTerminal() bool {
	return s == ProviderPaid || s == ProviderFailed
}

// Storable reports whether s may be persisted as an order's platform status.
func (s PlatformStatus) Storable() bool {
	switch s {
	case PlatformPending, PlatformPaid, PlatformFulfilled, PlatformCancelled:
		return true
	}
	return false
}

// AllowedAfterTerminal reports whether the platform may still move an order
// to s once its payment track is paid or failed.
func (s PlatformStatus) AllowedAfterTerminal() bool {
	return s == PlatformFulfilled || s == PlatformCancelled
}
