package orderdto

import (
	"encoding/json"
	"testing"

	"github.com/LavaJover/shvark-paylater-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1735689600000","b":1735689600000,"c":null}`), &v))
	assert.Equal(t, "1735689600000", v.A.String())
	assert.Equal(t, "1735689600000", v.B.String())
	assert.Empty(t, v.C.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a":{}}`), &v))
}

func TestProviderWebhookInputValidate(t *testing.T) {
	in := &ProviderWebhookInput{MerchantID: "138", OrderID: "ORDER1001", Status: "success"}
	err := in.Validate()
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "txHash")

	in.Timestamp, in.TxHash, in.Signature = "1", "h", "s"
	assert.NoError(t, in.Validate())
}
