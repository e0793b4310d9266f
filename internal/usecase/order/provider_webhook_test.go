package usecase

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/LavaJover/shvark-paylater-service/internal/infrastructure/signature"
	orderdto "github.com/LavaJover/shvark-paylater-service/internal/usecase/dto/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerWebhook(orderID, status string, at time.Time, comments string) *orderdto.ProviderWebhookInput {
	in := &orderdto.ProviderWebhookInput{
		MerchantID: "138",
		OrderID:    orderID,
		Status:     status,
		Timestamp:  strconv.FormatInt(at.UnixMilli(), 10),
		Comments:   comments,
	}
	fields := signature.ProviderFields{
		MerchantID: in.MerchantID,
		OrderID:    in.OrderID,
		Status:     in.Status,
		Timestamp:  in.Timestamp,
		Comments:   in.Comments,
	}
	in.TxHash = signature.ProviderTxHash(fields)
	in.Signature = signature.ProviderSignature(in.TxHash, "whsec_test")
	return in
}

func TestProviderWebhook_PaidAppliesAndSyncsPlatform(t *testing.T) {
	f := newFixture(t)
	out := f.issue(t, "ORDER1001")

	res, err := f.uc.HandleProviderWebhook(context.Background(), providerWebhook("ORDER1001", "success", t0.Add(time.Minute), " ok "))
	require.NoError(t, err)
	assert.Equal(t, orderdto.OutcomeApplied, res.Outcome)

	order := f.reload(t, out.OrderID)
	assert.Equal(t, domain.ProviderPaid, order.ProviderStatus)
	assert.Equal(t, domain.PlatformPaid, order.PlatformStatus)
	assert.Equal(t, "ok", order.ProviderComments)
	require.NotNil(t, order.ProviderPaymentDate)
	assert.True(t, order.ProviderPaymentDate.Equal(t0.Add(time.Minute)))

	txid, err := f.vault.Open(order.ProviderTransactionID)
	require.NoError(t, err)
	assert.Equal(t, order.LastWebhookID, txid)

	assert.Equal(t, 1, f.platform.count("capture:ORDER1001:250.00"))
	assert.Equal(t, 1, f.platform.count("status:ORDER1001:paid"))
	assert.Contains(t, f.publisher.types(), domain.EventOrderPaid)
}

func TestProviderWebhook_ReplayAppliesOnce(t *testing.T) {
	f := newFixture(t)
	out := f.issue(t, "ORDER1002")
	hook := providerWebhook("ORDER1002", "failed", t0.Add(time.Minute), "")

	first, err := f.uc.HandleProviderWebhook(context.Background(), hook)
	require.NoError(t, err)
	second, err := f.uc.HandleProviderWebhook(context.Background(), hook)
	require.NoError(t, err)

	assert.Equal(t, orderdto.OutcomeApplied, first.Outcome)
	assert.Equal(t, orderdto.OutcomeStale, second.Outcome)

	order := f.reload(t, out.OrderID)
	assert.Equal(t, domain.ProviderFailed, order.ProviderStatus)
	assert.Equal(t, domain.PlatformCancelled, order.PlatformStatus)
	assert.True(t, order.CancelEmailSent)

	_, _, cancellations := f.notifier.counts()
	assert.Equal(t, 1, cancellations)
	assert.Equal(t, 1, f.platform.count("status:ORDER1002:cancelled"))
}

func TestProviderWebhook_StaleTimestampRejected(t *testing.T) {
	f := newFixture(t)
	out := f.issue(t, "ORDER1003")

	_, err := f.uc.HandleProviderWebhook(context.Background(), providerWebhook("ORDER1003", "authorized", t0.Add(2*time.Minute), ""))
	require.NoError(t, err)
	before := f.reload(t, out.OrderID)

	for _, at := range []time.Time{t0.Add(2 * time.Minute), t0.Add(time.Minute)} {
		res, err := f.uc.HandleProviderWebhook(context.Background(), providerWebhook("ORDER1003", "failed", at, ""))
		require.NoError(t, err)
		assert.Equal(t, orderdto.OutcomeStale, res.Outcome)
	}

	after := f.reload(t, out.OrderID)
	assert.Equal(t, before.ProviderStatus, after.ProviderStatus)
	assert.Equal(t, before.PlatformStatus, after.PlatformStatus)
	assert.Equal(t, before.LastWebhookAt, after.LastWebhookAt)
	_, _, cancellations := f.notifier.counts()
	assert.Zero(t, cancellations)
}

func TestProviderWebhook_SignatureMismatch(t *testing.T) {
	f := newFixture(t)
	out := f.issue(t, "ORDER1001")

	hook := providerWebhook("ORDER1001", "success", t0.Add(time.Minute), "")
	corrupted := *hook
	corrupted.Signature = strings.Repeat("0", len(hook.Signature))

	_, err := f.uc.HandleProviderWebhook(context.Background(), &corrupted)
	require.ErrorIs(t, err, domain.ErrSignatureInvalid)
	assert.Equal(t, domain.ProviderPending, f.reload(t, out.OrderID).ProviderStatus)

	_, err = f.uc.HandleProviderWebhook(context.Background(), hook)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderPaid, f.reload(t, out.OrderID).ProviderStatus)
}

func TestProviderWebhook_SignatureAcceptsUppercaseHex(t *testing.T) {
	f := newFixture(t)
	f.issue(t, "ORDER1004")

	hook := providerWebhook("ORDER1004", "success", t0.Add(time.Minute), "")
	hook.TxHash = strings.ToUpper(hook.TxHash)
	hook.Signature = strings.ToUpper(hook.Signature)

	res, err := f.uc.HandleProviderWebhook(context.Background(), hook)
	require.NoError(t, err)
	assert.Equal(t, orderdto.OutcomeApplied, res.Outcome)
}

func TestProviderWebhook_UnknownMerchantAndOrder(t *testing.T) {
	f := newFixture(t)

	hook := providerWebhook("ORDER1", "success", t0, "")
	hook.MerchantID = "404"
	_, err := f.uc.HandleProviderWebhook(context.Background(), hook)
	assert.ErrorIs(t, err, domain.ErrMerchantNotFound)

	res, err := f.uc.HandleProviderWebhook(context.Background(), providerWebhook("NOPE", "success", t0, ""))
	require.NoError(t, err)
	assert.Equal(t, orderdto.OutcomeIgnored, res.Outcome)
}

func TestProviderWebhook_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.HandleProviderWebhook(context.Background(), &orderdto.ProviderWebhookInput{MerchantID: "138"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	hook := providerWebhook("ORDER1", "success", t0, "")
	hook.Timestamp = "yesterday"
	_, err = f.uc.HandleProviderWebhook(context.Background(), hook)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProviderWebhook_CommentsTruncated(t *testing.T) {
	f := newFixture(t)
	out := f.issue(t, "ORDER1005")

	long := strings.Repeat("x", maxProviderComments+50)
	_, err := f.uc.HandleProviderWebhook(context.Background(), providerWebhook("ORDER1005", "pending", t0.Add(time.Minute), long))
	require.NoError(t, err)
	assert.Len(t, f.reload(t, out.OrderID).ProviderComments, maxProviderComments)
}

func TestProviderWebhook_PaidAfterPlatformPaidSkipsCapture(t *testing.T) {
	f := newFixture(t)
	out := f.issue(t, "ORDER1006")

	_, err := f.orders.ApplyPlatformStatus(context.Background(), out.OrderID, t0.Add(time.Second), domain.PlatformPaid)
	require.NoError(t, err)

	_, err = f.uc.HandleProviderWebhook(context.Background(), providerWebhook("ORDER1006", "paid", t0.Add(time.Minute), ""))
	require.NoError(t, err)
	assert.Zero(t, f.platform.count("capture:"))
	assert.Equal(t, domain.ProviderPaid, f.reload(t, out.OrderID).ProviderStatus)
}
